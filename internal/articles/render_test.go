package articles

import (
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestSlugify(t *testing.T) {
	tests := map[string]string{
		"loops":                      "loops",
		"Error Handling":             "error-handling",
		"  C++ & Go: pointers!  ":    "c-go-pointers",
		"Big O notation (explained)": "big-o-notation-explained",
		"!!!":                        "article",
		"":                           "article",
		strings.Repeat("word ", 20):  "word-word-word-word-word-word-word-word-word-word",
	}
	for topic, want := range tests {
		assert.Equal(t, want, Slugify(topic), topic)
	}
}

func TestSlugger(t *testing.T) {
	s := newSlugger()
	assert.Equal(t, "loops", s.next("Loops"))
	assert.Equal(t, "loops-2", s.next("loops"))
	assert.Equal(t, "loops-2-2", s.next("loops 2"))
	assert.Equal(t, "loops-3", s.next("LOOPS"))
}

func TestExtractTitle(t *testing.T) {
	assert.Equal(t, "Loops in Go", ExtractTitle("Intro\n# Loops in Go\n## Sub"))
	assert.Equal(t, "", ExtractTitle("## Only a subheading"))
	assert.Equal(t, "Real", ExtractTitle("```bash\n# a shell comment\n```\n# Real"))
}

func TestTitleCase(t *testing.T) {
	assert.Equal(t, "Error Handling", TitleCase("error handling"))
	assert.Equal(t, "Über Closures", TitleCase("über  closures"))
}

func TestRenderDocument_RoundTrip(t *testing.T) {
	meta := FrontMatter{
		Title:       `Loops: "for" and beyond`,
		Topic:       "loops",
		Model:       "gemini-2.5-flash",
		GeneratedAt: time.Date(2025, 1, 2, 3, 4, 5, 0, time.UTC),
	}

	doc, err := RenderDocument(meta, "\n# Loops\n\nBody\n\n")
	require.NoError(t, err)
	assert.True(t, strings.HasPrefix(string(doc), "---\ntitle: "))
	assert.NotContains(t, string(doc), "source_url")

	parsed, body, err := parseFrontMatter(doc)
	require.NoError(t, err)
	assert.Equal(t, meta, parsed)
	assert.Equal(t, "# Loops\n\nBody", body)
}

func TestParseFrontMatter_Missing(t *testing.T) {
	_, _, err := parseFrontMatter([]byte("# Just markdown"))
	assert.Error(t, err)

	_, _, err = parseFrontMatter([]byte("---\ntitle: x\n"))
	assert.Error(t, err)
}
