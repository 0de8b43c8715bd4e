package articles

import (
	"context"
	"errors"
	"fmt"
	"log"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/jonathan/aeroleads/internal/fetch"
	"github.com/jonathan/aeroleads/internal/llm"
	"github.com/jonathan/aeroleads/internal/prompts"
	"github.com/jonathan/aeroleads/internal/types"
)

const promptFile = "articles.json"

// ContextFetcher returns background material for a topic's source URL.
type ContextFetcher func(ctx context.Context, url string) (string, error)

// Options configures a generation run.
type Options struct {
	OutputDir    string
	Tier         llm.ModelTier
	ContextChars int // Cap on source material passed to the prompt
	Verbose      bool
	OnItem       func(types.ItemOutcome)
}

// Generator requests one article per topic and writes each to its own file.
type Generator struct {
	client       llm.Client
	opts         Options
	fetchContext ContextFetcher
	now          func() time.Time
}

// NewGenerator creates a generator. Source URLs are fetched over HTTP and converted to markdown.
func NewGenerator(client llm.Client, opts Options) *Generator {
	if opts.Tier == "" {
		opts.Tier = llm.TierStandard
	}
	if opts.OutputDir == "" {
		opts.OutputDir = "articles"
	}
	g := &Generator{
		client: client,
		opts:   opts,
		now:    time.Now,
	}
	g.fetchContext = func(ctx context.Context, url string) (string, error) {
		return fetch.MarkdownContext(ctx, url, g.opts.ContextChars, nil)
	}
	return g
}

// Generate processes specs in order. A topic whose request fails or whose
// response is empty is skipped; the rest still run. Existing files are overwritten.
// Only an unusable output directory or a cancelled context ends the run with an error.
func (g *Generator) Generate(ctx context.Context, specs []types.ArticleSpec) ([]types.ArticleOutput, *types.RunSummary, error) {
	if err := os.MkdirAll(g.opts.OutputDir, 0755); err != nil {
		return nil, nil, fmt.Errorf("failed to create output directory %s: %w", g.opts.OutputDir, err)
	}

	outputs := make([]types.ArticleOutput, 0, len(specs))
	summary := types.NewRunSummary(types.JobArticles, len(specs))
	slugs := newSlugger()
	model := g.client.GetModel(g.opts.Tier)

	log.Printf("[ARTICLES] Generating %d articles with %s into %s", len(specs), model, g.opts.OutputDir)

	for i, spec := range specs {
		if err := ctx.Err(); err != nil {
			return outputs, summary, err
		}

		outcome := types.ItemOutcome{Index: i, Key: spec.Topic}
		out, err := g.generateOne(ctx, spec, slugs, model)
		if err != nil {
			var genErr *GenerationError
			if !errors.As(err, &genErr) {
				return outputs, summary, err
			}
			if ctx.Err() != nil {
				return outputs, summary, ctx.Err()
			}
			outcome.Status = types.ItemSkipped
			outcome.Error = genErr.Error()
			log.Printf("[ARTICLES] Skipped %q: %v", spec.Topic, err)
		} else {
			outputs = append(outputs, *out)
			outcome.Status = types.ItemDone
			outcome.Detail = out.Path
			log.Printf("[ARTICLES] Wrote %s (%q)", out.Path, out.Title)
		}

		summary.Record(outcome)
		if g.opts.OnItem != nil {
			g.opts.OnItem(outcome)
		}
	}

	log.Printf("[ARTICLES] Done: %d written, %d skipped", summary.Succeeded, summary.Skipped)
	return outputs, summary, nil
}

// generateOne returns a *GenerationError for per-topic failures and a plain error
// when the output file cannot be written.
func (g *Generator) generateOne(ctx context.Context, spec types.ArticleSpec, slugs *slugger, model string) (*types.ArticleOutput, error) {
	prompt, err := g.buildPrompt(ctx, spec)
	if err != nil {
		return nil, err
	}

	if g.opts.Verbose {
		log.Printf("[ARTICLES] Prompt for %q: %d chars", spec.Topic, len(prompt))
	}

	raw, err := g.client.GenerateText(ctx, prompt, g.opts.Tier)
	if err != nil {
		if errors.Is(err, llm.ErrEmptyResponse) {
			return nil, &GenerationError{Topic: spec.Topic, Message: "empty response", Cause: err}
		}
		return nil, &GenerationError{Topic: spec.Topic, Message: "generation request failed", Cause: err}
	}

	body := llm.StripCodeFence(raw)
	if body == "" {
		return nil, &GenerationError{Topic: spec.Topic, Message: "empty response"}
	}

	title := ExtractTitle(body)
	if title == "" {
		title = TitleCase(spec.Topic)
	}

	doc, err := RenderDocument(FrontMatter{
		Title:       title,
		Topic:       spec.Topic,
		Model:       model,
		GeneratedAt: g.now().UTC().Truncate(time.Second),
		SourceURL:   spec.SourceURL,
	}, body)
	if err != nil {
		return nil, &GenerationError{Topic: spec.Topic, Message: "render failed", Cause: err}
	}

	path := filepath.Join(g.opts.OutputDir, slugs.next(spec.Topic)+".md")
	if err := os.WriteFile(path, doc, 0644); err != nil {
		return nil, fmt.Errorf("failed to write %s: %w", path, err)
	}

	return &types.ArticleOutput{Title: title, Body: body, Path: path}, nil
}

// buildPrompt fills the topic's template, fetching source material first when the topic has a source URL.
func (g *Generator) buildPrompt(ctx context.Context, spec types.ArticleSpec) (string, error) {
	data := map[string]string{"Topic": spec.Topic}

	key := "article"
	if spec.SourceURL != "" {
		material, err := g.fetchContext(ctx, spec.SourceURL)
		if err != nil {
			return "", &GenerationError{Topic: spec.Topic, Message: "failed to fetch source material", Cause: err}
		}
		data["Context"] = material
		key = "article-with-source"
	}

	template := spec.PromptTemplate
	if template == "" {
		var err error
		template, err = prompts.Get(promptFile, key)
		if err != nil {
			return "", fmt.Errorf("failed to load prompt: %w", err)
		}
	}

	if missing := prompts.Missing(template, data); len(missing) > 0 {
		return "", &GenerationError{
			Topic:   spec.Topic,
			Message: fmt.Sprintf("prompt template has unfilled placeholders: %s", strings.Join(missing, ", ")),
		}
	}
	return prompts.Format(template, data), nil
}
