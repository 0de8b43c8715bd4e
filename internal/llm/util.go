// Package llm - util.go provides shared utilities for LLM response processing.
package llm

import "strings"

// wrapperLanguages are the fence labels models use when wrapping a whole document.
var wrapperLanguages = map[string]bool{"": true, "markdown": true, "md": true, "text": true}

// StripCodeFence removes a markdown code fence that wraps the whole response.
// Models often wrap articles in ```markdown ... ``` even when told not to.
// A response that starts with a fenced code sample in another language is left alone.
func StripCodeFence(text string) string {
	text = strings.TrimSpace(text)
	if len(text) < 6 || !strings.HasPrefix(text, "```") || !strings.HasSuffix(text, "```") {
		return text
	}

	inner := strings.TrimSuffix(strings.TrimPrefix(text, "```"), "```")
	idx := strings.Index(inner, "\n")
	if idx < 0 {
		return strings.TrimSpace(inner)
	}

	lang := strings.ToLower(strings.TrimSpace(inner[:idx]))
	if !wrapperLanguages[lang] {
		return text
	}
	return strings.TrimSpace(inner[idx+1:])
}
