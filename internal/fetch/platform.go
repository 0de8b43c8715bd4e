// Package fetch - platform.go provides site detection for profile pages.
package fetch

import (
	"net/url"
	"strings"
)

// Platform represents a known profile-hosting site.
type Platform string

const (
	// PlatformLinkedIn is linkedin.com public and member profiles
	PlatformLinkedIn Platform = "linkedin"
	// PlatformGitHub is github.com user pages
	PlatformGitHub Platform = "github"
	// PlatformGeneric is any page exposing schema.org Person microdata or similar markup
	PlatformGeneric Platform = "generic"
)

// DetectPlatform identifies the profile site from a URL.
func DetectPlatform(urlStr string) Platform {
	parsed, err := url.Parse(urlStr)
	if err != nil {
		return PlatformGeneric
	}

	host := strings.TrimPrefix(strings.ToLower(parsed.Hostname()), "www.")

	switch {
	case host == "linkedin.com" || strings.HasSuffix(host, ".linkedin.com"):
		return PlatformLinkedIn
	case host == "github.com":
		return PlatformGitHub
	default:
		return PlatformGeneric
	}
}

// IsProfilePath reports whether a URL path on the given platform points at a
// single person's profile rather than a search, feed, or company page.
func IsProfilePath(platform Platform, path string) bool {
	segments := strings.Split(strings.Trim(path, "/"), "/")
	switch platform {
	case PlatformLinkedIn:
		return len(segments) >= 2 && segments[0] == "in" && segments[1] != ""
	case PlatformGitHub:
		if len(segments) != 1 || segments[0] == "" {
			return false
		}
		switch segments[0] {
		case "search", "orgs", "topics", "explore", "marketplace", "settings", "login", "features", "about":
			return false
		}
		return true
	default:
		return path != "" && path != "/"
	}
}

// PlatformNoiseSelectors returns elements to drop before extracting profile fields.
func PlatformNoiseSelectors(platform Platform) []string {
	common := []string{
		".cookie-banner",
		".cookie-consent",
		".gdpr-notice",
		".social-share",
		".share-buttons",
	}

	switch platform {
	case PlatformLinkedIn:
		return append(common,
			".global-nav",
			".authwall-join-form",
			".contextual-sign-in-modal",
			"aside",
		)
	case PlatformGitHub:
		return append(common,
			".js-header-wrapper",
			".footer",
			".flash",
		)
	default:
		return common
	}
}
