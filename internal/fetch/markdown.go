package fetch

import (
	"context"
	"fmt"
	"log"
	"strings"

	md "github.com/JohannesKaufmann/html-to-markdown"
	"github.com/PuerkitoBio/goquery"
)

// DefaultContextChars caps how much source material is handed to a prompt.
const DefaultContextChars = 8000

// ToMarkdown converts the main content of an HTML page to markdown.
// Relative links are resolved against pageURL when it is non-empty.
func ToMarkdown(html, pageURL string) (string, error) {
	doc, err := goquery.NewDocumentFromReader(strings.NewReader(html))
	if err != nil {
		return "", fmt.Errorf("failed to parse HTML: %w", err)
	}
	stripNoise(doc)

	domain := ""
	if pageURL != "" {
		domain = md.DomainFromURL(pageURL)
	}
	converter := md.NewConverter(domain, true, nil)

	markdown := converter.Convert(mainSelection(doc, DefaultTextSelectors()))
	return strings.TrimSpace(markdown), nil
}

// MarkdownContext fetches urlStr and returns its main content as markdown,
// truncated to maxChars. It is used as background material for generation prompts.
func MarkdownContext(ctx context.Context, urlStr string, maxChars int, opts *Options) (string, error) {
	result, err := URL(ctx, urlStr, opts)
	if err != nil {
		return "", err
	}

	markdown, err := ToMarkdown(result.HTML, urlStr)
	if err != nil {
		return "", &Error{URL: urlStr, Message: "markdown conversion failed", Cause: err}
	}

	if maxChars <= 0 {
		maxChars = DefaultContextChars
	}
	if len(markdown) > maxChars {
		markdown = truncateRunes(markdown, maxChars)
	}

	log.Printf("[FETCH] Source context from %s: %d chars", urlStr, len(markdown))
	return markdown, nil
}

// truncateRunes cuts s to at most maxBytes without splitting a UTF-8 sequence.
func truncateRunes(s string, maxBytes int) string {
	if len(s) <= maxBytes {
		return s
	}
	cut := 0
	for i := range s {
		if i > maxBytes {
			break
		}
		cut = i
	}
	return s[:cut]
}
