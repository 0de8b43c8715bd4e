package articles

import (
	"fmt"
	"regexp"
	"strings"
)

var nonSlugChars = regexp.MustCompile(`[^a-z0-9]+`)

// maxSlugLen keeps file names well under filesystem limits.
const maxSlugLen = 50

// Slugify turns a topic into a lowercase, hyphen-separated file name stem.
func Slugify(topic string) string {
	slug := nonSlugChars.ReplaceAllString(strings.ToLower(topic), "-")
	slug = strings.Trim(slug, "-")

	if len(slug) > maxSlugLen {
		slug = strings.Trim(slug[:maxSlugLen], "-")
	}

	if slug == "" {
		return "article"
	}
	return slug
}

// slugger hands out unique slugs within one run.
type slugger struct {
	seen map[string]int
}

func newSlugger() *slugger {
	return &slugger{seen: make(map[string]int)}
}

// next returns Slugify(topic), suffixed with -2, -3, ... on repeats.
func (s *slugger) next(topic string) string {
	base := Slugify(topic)
	s.seen[base]++
	n := s.seen[base]
	if n == 1 {
		return base
	}
	for {
		candidate := fmt.Sprintf("%s-%d", base, n)
		if s.seen[candidate] == 0 {
			s.seen[candidate] = 1
			return candidate
		}
		n++
	}
}
