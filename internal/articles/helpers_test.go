package articles

import (
	"fmt"
	"strings"

	"gopkg.in/yaml.v3"
)

// parseFrontMatter splits a rendered document back into its header and body.
func parseFrontMatter(doc []byte) (FrontMatter, string, error) {
	var meta FrontMatter
	text := string(doc)
	if !strings.HasPrefix(text, "---\n") {
		return meta, text, fmt.Errorf("document has no front matter")
	}
	rest := text[len("---\n"):]
	end := strings.Index(rest, "\n---\n")
	if end < 0 {
		return meta, text, fmt.Errorf("front matter is not terminated")
	}
	if err := yaml.Unmarshal([]byte(rest[:end]), &meta); err != nil {
		return meta, text, fmt.Errorf("failed to decode front matter: %w", err)
	}
	return meta, strings.TrimSpace(rest[end+len("\n---\n"):]), nil
}
