package main

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"

	"github.com/jonathan/aeroleads/internal/articles"
	"github.com/jonathan/aeroleads/internal/config"
	"github.com/jonathan/aeroleads/internal/llm"
	"github.com/jonathan/aeroleads/internal/observability"
	"github.com/jonathan/aeroleads/internal/types"
)

var generateArticlesCmd = &cobra.Command{
	Use:   "generate-articles",
	Short: "Generate one markdown article per topic",
	Long: `Sends one prompt per topic to Gemini (GEMINI_API_KEY) and writes each response to
<out>/<slug>.md with YAML front matter. Topics come from --topic, a --topics-file
(YAML or one topic per line), or a built-in list of programming topics.

A topic whose request fails or returns nothing is skipped; the others still run.
Re-running regenerates and overwrites every file.`,
	RunE: runGenerateArticles,
}

var (
	articlesTopicsFile string
	articlesTopics     []string
	articlesCount      int
	articlesOutputDir  string
	articlesModel      string
	articlesAPIKey     string
)

func init() {
	generateArticlesCmd.Flags().StringVarP(&articlesTopicsFile, "topics-file", "i", "", "YAML or text file of topics")
	generateArticlesCmd.Flags().StringArrayVar(&articlesTopics, "topic", nil, "Article topic (repeatable)")
	generateArticlesCmd.Flags().IntVarP(&articlesCount, "count", "n", 10, "Number of topics to process")
	generateArticlesCmd.Flags().StringVarP(&articlesOutputDir, "out", "o", "articles", "Output directory")
	generateArticlesCmd.Flags().StringVar(&articlesModel, "model", "", "Gemini model override")

	// API key can be passed as a flag, or read from env var GEMINI_API_KEY
	generateArticlesCmd.Flags().StringVar(&articlesAPIKey, "api-key", "", "Gemini API key (optional, defaults to GEMINI_API_KEY env var)")

	rootCmd.AddCommand(generateArticlesCmd)
}

func runGenerateArticles(cmd *cobra.Command, _ []string) error {
	fileCfg, err := loadFileConfig()
	if err != nil {
		return err
	}
	flags := cmd.Flags()

	if flags.Changed("topics-file") {
		fileCfg.Articles.TopicsFile = articlesTopicsFile
	}
	if flags.Changed("count") {
		fileCfg.Articles.Count = articlesCount
	}
	if flags.Changed("out") {
		fileCfg.Articles.OutputDir = articlesOutputDir
	}
	if flags.Changed("model") {
		fileCfg.Articles.Model = articlesModel
	}
	merged := fileCfg.MergeWithDefaults(config.Config{Articles: config.ArticlesConfig{
		Count:     articlesCount,
		OutputDir: articlesOutputDir,
	}})
	cfg := merged.Articles

	if cfg.Count < 1 {
		return fmt.Errorf("--count must be a positive integer, got %d", cfg.Count)
	}

	var specs []types.ArticleSpec
	if cfg.TopicsFile != "" {
		specs, err = articles.LoadTopics(cfg.TopicsFile)
		if err != nil {
			return err
		}
	}
	specs = append(specs, articles.SpecsFromTopics(articlesTopics)...)
	if len(specs) == 0 {
		specs = articles.SpecsFromTopics(articles.DefaultTopics)
	}
	specs, err = articles.SelectTopics(specs, cfg.Count)
	if err != nil {
		return err
	}

	apiKey := articlesAPIKey
	if apiKey == "" {
		creds := config.LoadCredentials()
		if err := creds.RequireGemini(); err != nil {
			return err
		}
		apiKey = creds.GeminiAPIKey
	}

	ctx, stop := interruptible()
	defer stop()

	llmConfig := llm.DefaultConfig()
	if cfg.Model != "" {
		llmConfig = llmConfig.WithModel(llm.TierStandard, cfg.Model)
	}
	client, err := llm.NewClient(ctx, llmConfig, apiKey)
	if err != nil {
		return fmt.Errorf("failed to create LLM client: %w", err)
	}
	defer func() { _ = client.Close() }()

	g := articles.NewGenerator(client, articles.Options{
		OutputDir: cfg.OutputDir,
		Tier:      llm.TierStandard,
		Verbose:   isVerbose(fileCfg),
	})
	outputs, summary, err := g.Generate(ctx, specs)
	if err != nil {
		return err
	}

	printer := observability.NewPrinter(os.Stdout)
	printer.PrintArticles(outputs)
	printer.PrintRunSummary(summary)
	return nil
}
