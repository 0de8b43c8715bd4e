package main

import (
	"context"
	"fmt"
	"log"
	"os"
	"time"

	"github.com/spf13/cobra"

	"github.com/jonathan/aeroleads/internal/config"
	"github.com/jonathan/aeroleads/internal/db"
	"github.com/jonathan/aeroleads/internal/fetch"
	"github.com/jonathan/aeroleads/internal/llm"
	"github.com/jonathan/aeroleads/internal/pipeline"
	"github.com/jonathan/aeroleads/internal/server"
	"github.com/jonathan/aeroleads/internal/server/ratelimit"
	"github.com/jonathan/aeroleads/internal/telephony"
)

var (
	serveAddr       string
	serveOutputRoot string
	serveLogin      bool
)

var serveCmd = &cobra.Command{
	Use:   "serve",
	Short: "Start the web UI",
	Long: `Start an HTTP server with a small web page and JSON API for triggering the three
pipelines and following their progress.

A pipeline whose credentials are missing is reported as unavailable. Set JWT_SECRET
and UI_PASSWORD_HASH (see hash-password) to require a login. Set DATABASE_URL to keep
run history in PostgreSQL instead of memory.`,
	RunE: runServe,
}

func init() {
	serveCmd.Flags().StringVar(&serveAddr, "addr", server.DefaultAddr, "Address to listen on")
	serveCmd.Flags().StringVar(&serveOutputRoot, "output-root", "output", "Directory that web-triggered runs write beneath")
	serveCmd.Flags().BoolVar(&serveLogin, "login", false, "Log in to the profile site with LINKEDIN_EMAIL / LINKEDIN_PASSWORD before each scrape")
	rootCmd.AddCommand(serveCmd)
}

func runServe(_ *cobra.Command, _ []string) error {
	fileCfg, err := loadFileConfig()
	if err != nil {
		return err
	}
	debug := isVerbose(fileCfg)

	ctx := context.Background()
	creds := config.LoadCredentials()

	deps, cleanup, err := buildDependencies(ctx, creds, fileCfg)
	if err != nil {
		return err
	}
	defer cleanup()

	cfg := server.Config{
		Addr:      serveAddr,
		Runner:    pipeline.NewRunner(deps),
		RateLimit: ratelimit.LoadConfig(),
		Verbose:   debug,
	}

	if creds.DatabaseURL != "" {
		database, err := db.Connect(ctx, creds.DatabaseURL)
		if err != nil {
			return err
		}
		defer database.Close()
		if err := database.Migrate(ctx); err != nil {
			return err
		}
		cfg.Store = database
		log.Printf("[SERVER] Run history stored in PostgreSQL")
	}

	if os.Getenv("JWT_SECRET") != "" {
		jwtCfg, err := config.NewJWTConfig()
		if err != nil {
			return err
		}
		passwords, err := config.NewPasswordConfig()
		if err != nil {
			return err
		}
		cfg.JWT = jwtCfg
		cfg.Passwords = passwords
	}

	srv, err := server.New(cfg)
	if err != nil {
		return fmt.Errorf("failed to create server: %w", err)
	}
	return srv.Start(ctx)
}

// buildDependencies creates the provider clients whose credentials are present.
// Missing credentials leave the matching pipeline disabled rather than failing startup.
func buildDependencies(ctx context.Context, creds *config.Credentials, fileCfg config.Config) (pipeline.Dependencies, func(), error) {
	cleanup := func() {}

	session := fetch.DefaultSessionOptions()
	session.PageTimeout = config.DurationOr(fileCfg.Profiles.PageTimeout, session.PageTimeout)
	deps := pipeline.Dependencies{
		Session:    session,
		Delay:      config.DurationOr(fileCfg.Profiles.Delay, 3*time.Second),
		Jitter:     config.DurationOr(fileCfg.Profiles.Jitter, 2*time.Second),
		TwimlURL:   fileCfg.Calls.TwimlURL,
		OutputRoot: serveOutputRoot,
	}

	if serveLogin {
		if err := creds.RequireSiteLogin(); err != nil {
			return deps, cleanup, err
		}
		form := fetch.LinkedInLoginForm(creds.SiteEmail, creds.SitePassword)
		deps.Login = &form
	}

	if err := creds.RequireTelephony(); err != nil {
		log.Printf("[SERVER] Call dispatcher disabled: %v", err)
	} else {
		client, err := telephony.NewClient(telephony.Config{
			AccountSID: creds.TwilioAccountSID,
			AuthToken:  creds.TwilioAuthToken,
			FromNumber: creds.TwilioFromNumber,
			BaseURL:    creds.TwilioBaseURL,
		})
		if err != nil {
			return deps, cleanup, err
		}
		deps.Caller = client
		deps.From = client.FromNumber()
	}

	if err := creds.RequireGemini(); err != nil {
		log.Printf("[SERVER] Article generator disabled: %v", err)
	} else {
		llmConfig := llm.DefaultConfig()
		if fileCfg.Articles.Model != "" {
			llmConfig = llmConfig.WithModel(llm.TierStandard, fileCfg.Articles.Model)
		}
		client, err := llm.NewClient(ctx, llmConfig, creds.GeminiAPIKey)
		if err != nil {
			return deps, cleanup, fmt.Errorf("failed to create LLM client: %w", err)
		}
		deps.LLM = client
		cleanup = func() { _ = client.Close() }
	}

	return deps, cleanup, nil
}
