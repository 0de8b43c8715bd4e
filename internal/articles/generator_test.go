package articles

import (
	"context"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"sort"
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/jonathan/aeroleads/internal/llm"
	"github.com/jonathan/aeroleads/internal/types"
)

// fakeLLM answers every prompt with a canned article unless the topic is listed in fail/empty.
type fakeLLM struct {
	prompts []string
	fail    map[string]error
	empty   map[string]bool
	reply   func(prompt string) string
}

func (f *fakeLLM) GenerateText(_ context.Context, prompt string, _ llm.ModelTier) (string, error) {
	f.prompts = append(f.prompts, prompt)
	for topic, err := range f.fail {
		if strings.Contains(prompt, "about: "+topic+"\n") {
			return "", err
		}
	}
	for topic := range f.empty {
		if strings.Contains(prompt, "about: "+topic+"\n") {
			return "  \n", nil
		}
	}
	if f.reply != nil {
		return f.reply(prompt), nil
	}
	return "# A Generated Article\n\nSome body text.", nil
}

func (f *fakeLLM) GetModel(llm.ModelTier) string { return "gemini-test" }
func (f *fakeLLM) Close() error                  { return nil }

func newTestGenerator(t *testing.T, client llm.Client) (*Generator, string) {
	t.Helper()
	dir := filepath.Join(t.TempDir(), "articles")
	g := NewGenerator(client, Options{OutputDir: dir})
	g.now = func() time.Time { return time.Date(2025, 1, 2, 3, 4, 5, 0, time.UTC) }
	return g, dir
}

func listFiles(t *testing.T, dir string) []string {
	t.Helper()
	entries, err := os.ReadDir(dir)
	require.NoError(t, err)
	var names []string
	for _, e := range entries {
		names = append(names, e.Name())
	}
	sort.Strings(names)
	return names
}

func TestGenerate_ThreeTopics(t *testing.T) {
	g, dir := newTestGenerator(t, &fakeLLM{})

	outputs, summary, err := g.Generate(context.Background(), SpecsFromTopics([]string{"loops", "recursion", "closures"}))
	require.NoError(t, err)

	assert.Equal(t, []string{"closures.md", "loops.md", "recursion.md"}, listFiles(t, dir))
	assert.Len(t, outputs, 3)
	assert.Equal(t, 3, summary.Succeeded)

	for _, name := range []string{"loops.md", "recursion.md", "closures.md"} {
		data, err := os.ReadFile(filepath.Join(dir, name))
		require.NoError(t, err)
		assert.NotEmpty(t, strings.TrimSpace(string(data)))
	}
}

func TestGenerate_ErrorsSkipTopics(t *testing.T) {
	client := &fakeLLM{
		fail:  map[string]error{"recursion": errors.New("quota exceeded")},
		empty: map[string]bool{"closures": true},
	}
	g, dir := newTestGenerator(t, client)

	var skipped []types.ItemOutcome
	g.opts.OnItem = func(o types.ItemOutcome) {
		if o.Status == types.ItemSkipped {
			skipped = append(skipped, o)
		}
	}

	topics := []string{"loops", "recursion", "closures", "pointers"}
	_, summary, err := g.Generate(context.Background(), SpecsFromTopics(topics))
	require.NoError(t, err)

	assert.Equal(t, []string{"loops.md", "pointers.md"}, listFiles(t, dir))
	assert.Equal(t, 2, summary.Succeeded)
	assert.Equal(t, 2, summary.Skipped)
	require.Len(t, skipped, 2)
	assert.Contains(t, skipped[0].Error, "quota exceeded")
	assert.Contains(t, skipped[1].Error, "empty response")
	assert.Len(t, client.prompts, 4, "one request per topic")
}

func TestGenerate_FrontMatterAndTitle(t *testing.T) {
	client := &fakeLLM{reply: func(string) string {
		return "```markdown\n# Understanding Loops\n\nLoops repeat work.\n```"
	}}
	g, dir := newTestGenerator(t, client)

	outputs, _, err := g.Generate(context.Background(), SpecsFromTopics([]string{"loops"}))
	require.NoError(t, err)
	require.Len(t, outputs, 1)
	assert.Equal(t, "Understanding Loops", outputs[0].Title)
	assert.Equal(t, filepath.Join(dir, "loops.md"), outputs[0].Path)

	data, err := os.ReadFile(outputs[0].Path)
	require.NoError(t, err)

	meta, body, err := parseFrontMatter(data)
	require.NoError(t, err)
	assert.Equal(t, "Understanding Loops", meta.Title)
	assert.Equal(t, "loops", meta.Topic)
	assert.Equal(t, "gemini-test", meta.Model)
	assert.Equal(t, time.Date(2025, 1, 2, 3, 4, 5, 0, time.UTC), meta.GeneratedAt)
	assert.Equal(t, "# Understanding Loops\n\nLoops repeat work.", body)
}

func TestGenerate_TitleFallsBackToTopic(t *testing.T) {
	client := &fakeLLM{reply: func(string) string { return "No heading, just prose." }}
	g, _ := newTestGenerator(t, client)

	outputs, _, err := g.Generate(context.Background(), SpecsFromTopics([]string{"error handling"}))
	require.NoError(t, err)
	assert.Equal(t, "Error Handling", outputs[0].Title)
	assert.True(t, strings.HasSuffix(outputs[0].Path, "error-handling.md"))
}

func TestGenerate_SlugCollisions(t *testing.T) {
	g, dir := newTestGenerator(t, &fakeLLM{})

	_, summary, err := g.Generate(context.Background(), SpecsFromTopics([]string{"Loops", "loops!", "LOOPS"}))
	require.NoError(t, err)
	assert.Equal(t, 3, summary.Succeeded)
	assert.Equal(t, []string{"loops-2.md", "loops-3.md", "loops.md"}, listFiles(t, dir))
}

func TestGenerate_OverwritesExistingFiles(t *testing.T) {
	g, dir := newTestGenerator(t, &fakeLLM{})
	require.NoError(t, os.MkdirAll(dir, 0755))
	require.NoError(t, os.WriteFile(filepath.Join(dir, "loops.md"), []byte("stale"), 0644))

	_, _, err := g.Generate(context.Background(), SpecsFromTopics([]string{"loops"}))
	require.NoError(t, err)

	data, err := os.ReadFile(filepath.Join(dir, "loops.md"))
	require.NoError(t, err)
	assert.NotContains(t, string(data), "stale")
}

func TestGenerate_SourceURLContext(t *testing.T) {
	client := &fakeLLM{}
	g, dir := newTestGenerator(t, client)
	g.fetchContext = func(_ context.Context, url string) (string, error) {
		if url == "https://example.com/broken" {
			return "", errors.New("HTTP status 404")
		}
		return "Closures capture variables by reference.", nil
	}

	specs := []types.ArticleSpec{
		{Topic: "closures", SourceURL: "https://example.com/closures"},
		{Topic: "recursion", SourceURL: "https://example.com/broken"},
	}
	_, summary, err := g.Generate(context.Background(), specs)
	require.NoError(t, err)

	assert.Equal(t, 1, summary.Succeeded)
	assert.Contains(t, summary.Items[1].Error, "failed to fetch source material")
	require.Len(t, client.prompts, 1, "a failed fetch skips the model call")
	assert.Contains(t, client.prompts[0], "Closures capture variables by reference.")
	assert.Equal(t, []string{"closures.md"}, listFiles(t, dir))

	data, err := os.ReadFile(filepath.Join(dir, "closures.md"))
	require.NoError(t, err)
	meta, _, err := parseFrontMatter(data)
	require.NoError(t, err)
	assert.Equal(t, "https://example.com/closures", meta.SourceURL)
}

func TestGenerate_CustomTemplate(t *testing.T) {
	client := &fakeLLM{}
	g, _ := newTestGenerator(t, client)

	specs := []types.ArticleSpec{
		{Topic: "loops", PromptTemplate: "Write a haiku about {{.Topic}}."},
		{Topic: "recursion", PromptTemplate: "Summarize {{.Context}} for {{.Topic}}."},
	}
	_, summary, err := g.Generate(context.Background(), specs)
	require.NoError(t, err)

	require.Len(t, client.prompts, 1)
	assert.Equal(t, "Write a haiku about loops.", client.prompts[0])
	assert.Contains(t, summary.Items[1].Error, "unfilled placeholders: Context")
}

func TestGenerate_UnwritableOutputIsFatal(t *testing.T) {
	file := filepath.Join(t.TempDir(), "not-a-dir")
	require.NoError(t, os.WriteFile(file, []byte("x"), 0644))

	g := NewGenerator(&fakeLLM{}, Options{OutputDir: file})
	_, _, err := g.Generate(context.Background(), SpecsFromTopics([]string{"loops"}))
	require.Error(t, err)
	assert.Contains(t, err.Error(), "failed to create output directory")
}

func TestGenerate_CancelledContext(t *testing.T) {
	client := &fakeLLM{}
	g, _ := newTestGenerator(t, client)

	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	_, _, err := g.Generate(ctx, SpecsFromTopics([]string{"loops"}))
	assert.ErrorIs(t, err, context.Canceled)
	assert.Empty(t, client.prompts)
}

func TestGenerate_EmptyResponseFromClient(t *testing.T) {
	client := &fakeLLM{fail: map[string]error{"loops": fmt.Errorf("no candidates: %w", llm.ErrEmptyResponse)}}
	g, _ := newTestGenerator(t, client)

	_, summary, err := g.Generate(context.Background(), SpecsFromTopics([]string{"loops"}))
	require.NoError(t, err)
	assert.Equal(t, 1, summary.Skipped)
	assert.Contains(t, summary.Items[0].Error, "empty response")
}

func TestGenerate_PlaceholderTextInTopicAndSource(t *testing.T) {
	client := &fakeLLM{}
	g, dir := newTestGenerator(t, client)
	g.fetchContext = func(context.Context, string) (string, error) {
		return "In html/template you write {{.Name}} to print a field.", nil
	}

	specs := []types.ArticleSpec{
		{Topic: "html templates", SourceURL: "https://pkg.go.dev/html/template"},
		{Topic: "Printing {{.Name}} in templates"},
	}
	_, summary, err := g.Generate(context.Background(), specs)
	require.NoError(t, err)

	assert.Equal(t, 2, summary.Succeeded)
	assert.Equal(t, 0, summary.Skipped)
	require.Len(t, client.prompts, 2)
	assert.Contains(t, client.prompts[0], "you write {{.Name}} to print")
	assert.Contains(t, client.prompts[1], "Printing {{.Name}} in templates")
	assert.Len(t, listFiles(t, dir), 2)
}
