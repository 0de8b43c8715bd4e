package profiles

import (
	"fmt"
	"net/url"
	"strings"

	"github.com/PuerkitoBio/goquery"

	"github.com/jonathan/aeroleads/internal/fetch"
)

// HarvestProfileLinks collects profile URLs from a rendered search results page.
// Links are resolved against searchURL, stripped of query and fragment, de-duplicated,
// and returned in document order. On generic sites only links inside schema.org
// Person containers count as profile links.
func HarvestProfileLinks(html, searchURL string) ([]string, error) {
	base, err := url.Parse(searchURL)
	if err != nil {
		return nil, &LinkHarvestError{
			Message: "failed to parse search URL",
			Cause:   err,
		}
	}
	if base.Scheme == "" || base.Host == "" {
		return nil, &LinkHarvestError{
			Message: fmt.Sprintf("invalid search URL: %s (must have scheme and host)", searchURL),
		}
	}

	doc, err := goquery.NewDocumentFromReader(strings.NewReader(html))
	if err != nil {
		return nil, &LinkHarvestError{
			Message: "failed to parse HTML",
			Cause:   err,
		}
	}

	anchors := "a[href]"
	if fetch.DetectPlatform(searchURL) == fetch.PlatformGeneric {
		anchors = personScope + " a[href]"
	}

	seen := make(map[string]bool)
	links := make([]string, 0)
	self := canonicalURL(base)

	doc.Find(anchors).Each(func(_ int, s *goquery.Selection) {
		href, _ := s.Attr("href")
		href = strings.TrimSpace(href)
		if href == "" || strings.HasPrefix(href, "#") || strings.HasPrefix(href, "javascript:") {
			return
		}

		linkURL, err := url.Parse(href)
		if err != nil {
			return
		}
		absolute := base.ResolveReference(linkURL)
		if absolute.Scheme != "http" && absolute.Scheme != "https" {
			return
		}

		platform := fetch.DetectPlatform(absolute.String())
		if !fetch.IsProfilePath(platform, absolute.Path) {
			return
		}

		link := canonicalURL(absolute)
		if link == self || seen[link] {
			return
		}
		seen[link] = true
		links = append(links, link)
	})

	return links, nil
}

// canonicalURL drops tracking query strings, fragments, and trailing slashes.
func canonicalURL(u *url.URL) string {
	c := *u
	c.RawQuery = ""
	c.Fragment = ""
	c.Host = strings.ToLower(c.Host)
	return strings.TrimSuffix(c.String(), "/")
}
