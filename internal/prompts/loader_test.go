package prompts

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestGet_ValidPrompt(t *testing.T) {
	ClearCache()

	prompt, err := Get("articles.json", "article")
	require.NoError(t, err)
	assert.NotEmpty(t, prompt)
	assert.Contains(t, prompt, "{{.Topic}}")
}

func TestGet_InvalidFile(t *testing.T) {
	ClearCache()

	_, err := Get("nonexistent.json", "some-key")
	assert.Error(t, err)
	assert.Contains(t, err.Error(), "failed to read prompt file")
}

func TestGet_InvalidKey(t *testing.T) {
	ClearCache()

	_, err := Get("articles.json", "nonexistent-key")
	assert.Error(t, err)
	assert.Contains(t, err.Error(), "not found")
}

func TestMustGet_Panics(t *testing.T) {
	ClearCache()

	assert.Panics(t, func() {
		MustGet("nonexistent.json", "some-key")
	})
}

func TestMustGet_ValidPrompt(t *testing.T) {
	ClearCache()

	assert.NotPanics(t, func() {
		prompt := MustGet("articles.json", "article")
		assert.NotEmpty(t, prompt)
	})
}

func TestFormat(t *testing.T) {
	template := "Hello {{.Name}}, welcome to {{.Company}}!"
	data := map[string]string{
		"Name":    "Alice",
		"Company": "Acme Corp",
	}

	result := Format(template, data)
	assert.Equal(t, "Hello Alice, welcome to Acme Corp!", result)
}

func TestFormat_NoPlaceholders(t *testing.T) {
	template := "No placeholders here"
	data := map[string]string{"Key": "Value"}

	result := Format(template, data)
	assert.Equal(t, template, result)
}

func TestFormat_EmptyData(t *testing.T) {
	template := "Hello {{.Name}}"
	data := map[string]string{}

	result := Format(template, data)
	assert.Equal(t, template, result) // Placeholder remains
}

func TestList(t *testing.T) {
	ClearCache()

	keys, err := List("articles.json")
	require.NoError(t, err)
	assert.Equal(t, []string{"article", "article-with-source"}, keys)
}

func TestCaching(t *testing.T) {
	ClearCache()

	// First call loads from file
	prompt1, err := Get("articles.json", "article")
	require.NoError(t, err)

	// Second call should use cache
	prompt2, err := Get("articles.json", "article")
	require.NoError(t, err)

	assert.Equal(t, prompt1, prompt2)
}

func TestArticlePrompts_Placeholders(t *testing.T) {
	ClearCache()

	plain := MustGet("articles.json", "article")
	assert.Equal(t, []string{"Topic"}, Placeholders(plain))

	withSource := MustGet("articles.json", "article-with-source")
	assert.Equal(t, []string{"Context", "Topic"}, Placeholders(withSource))

	formatted := Format(withSource, map[string]string{"Topic": "Closures", "Context": "A closure is a function value."})
	assert.Empty(t, Placeholders(formatted))
	assert.Contains(t, formatted, "about: Closures")
}

func TestPlaceholders(t *testing.T) {
	assert.Equal(t, []string{"A", "B"}, Placeholders("{{.B}} {{.A}} {{.B}} {{ .C }} {{Topic}}"))
	assert.Empty(t, Placeholders("no placeholders"))
}

func TestFormat_ValuesAreNotRescanned(t *testing.T) {
	template := "Topic: {{.Topic}}\nContext: {{.Context}}"
	data := map[string]string{
		"Topic":   "Printing {{.Context}} in templates",
		"Context": "In html/template you write {{.Name}}.",
	}

	result := Format(template, data)
	assert.Equal(t, "Topic: Printing {{.Context}} in templates\nContext: In html/template you write {{.Name}}.", result)
}

func TestMissing(t *testing.T) {
	template := "{{.Topic}} {{.Context}}"

	assert.Equal(t, []string{"Context"}, Missing(template, map[string]string{"Topic": "{{.Context}}"}))
	assert.Empty(t, Missing(template, map[string]string{"Topic": "x", "Context": "{{.Name}}"}))
}
