package main

import (
	"fmt"
	"log"
	"os"
	"time"

	"github.com/spf13/cobra"

	"github.com/jonathan/aeroleads/internal/config"
	"github.com/jonathan/aeroleads/internal/fetch"
	"github.com/jonathan/aeroleads/internal/observability"
	"github.com/jonathan/aeroleads/internal/profiles"
)

var scrapeProfilesCmd = &cobra.Command{
	Use:   "scrape-profiles",
	Short: "Collect public profiles into a CSV file",
	Long: `Drives a headless Chrome session over a list of profile URLs (or the profile links
found on a search results page), extracts name, title, company and location from each
page, and appends one CSV row per complete profile as soon as it is read.

Pages that fail to load or lack a field are skipped. The run stops after --count
records or when the input is exhausted.`,
	RunE: runScrapeProfiles,
}

var (
	scrapeURLsFile    string
	scrapeURLs        []string
	scrapeSearchURL   string
	scrapeCount       int
	scrapeOutput      string
	scrapeDelay       time.Duration
	scrapeJitter      time.Duration
	scrapePageTimeout time.Duration
	scrapeHeadful     bool
	scrapeLogin       bool
)

func init() {
	scrapeProfilesCmd.Flags().StringVarP(&scrapeURLsFile, "urls-file", "i", "", "File with one profile URL per line (# comments allowed)")
	scrapeProfilesCmd.Flags().StringArrayVar(&scrapeURLs, "url", nil, "Profile URL (repeatable)")
	scrapeProfilesCmd.Flags().StringVar(&scrapeSearchURL, "search-url", "", "Search results page to harvest profile links from")
	scrapeProfilesCmd.Flags().IntVarP(&scrapeCount, "count", "n", 20, "Maximum number of profiles to collect")
	scrapeProfilesCmd.Flags().StringVarP(&scrapeOutput, "out", "o", "profiles.csv", "CSV output file (appended to)")
	scrapeProfilesCmd.Flags().DurationVar(&scrapeDelay, "delay", 3*time.Second, "Pause between page visits (0 disables)")
	scrapeProfilesCmd.Flags().DurationVar(&scrapeJitter, "jitter", 2*time.Second, "Random extra pause added to --delay")
	scrapeProfilesCmd.Flags().DurationVar(&scrapePageTimeout, "page-timeout", 30*time.Second, "Navigation and render budget per page")
	scrapeProfilesCmd.Flags().BoolVar(&scrapeHeadful, "headful", false, "Show the browser window")
	scrapeProfilesCmd.Flags().BoolVar(&scrapeLogin, "login", false, "Log in with LINKEDIN_EMAIL / LINKEDIN_PASSWORD before scraping")

	rootCmd.AddCommand(scrapeProfilesCmd)
}

func runScrapeProfiles(cmd *cobra.Command, _ []string) error {
	fileCfg, err := loadFileConfig()
	if err != nil {
		return err
	}
	flags := cmd.Flags()

	// Flags override the config file; flag defaults fill whatever is still unset.
	if flags.Changed("urls-file") {
		fileCfg.Profiles.URLsFile = scrapeURLsFile
	}
	if flags.Changed("search-url") {
		fileCfg.Profiles.SearchURL = scrapeSearchURL
	}
	if flags.Changed("count") {
		fileCfg.Profiles.Count = scrapeCount
	}
	if flags.Changed("out") {
		fileCfg.Profiles.Output = scrapeOutput
	}
	if flags.Changed("delay") {
		fileCfg.Profiles.Delay = scrapeDelay.String()
	}
	if flags.Changed("jitter") {
		fileCfg.Profiles.Jitter = scrapeJitter.String()
	}
	if flags.Changed("page-timeout") {
		fileCfg.Profiles.PageTimeout = scrapePageTimeout.String()
	}
	merged := fileCfg.MergeWithDefaults(config.Config{Profiles: config.ProfilesConfig{
		Count:  scrapeCount,
		Output: scrapeOutput,
	}})
	cfg := merged.Profiles
	delay := config.DurationOr(cfg.Delay, scrapeDelay)
	jitter := config.DurationOr(cfg.Jitter, scrapeJitter)
	pageTimeout := config.DurationOr(cfg.PageTimeout, scrapePageTimeout)
	headful := scrapeHeadful || cfg.Headful
	debug := isVerbose(fileCfg)

	if cfg.Count < 1 {
		return fmt.Errorf("--count must be a positive integer, got %d", cfg.Count)
	}

	var urls []string
	if cfg.URLsFile != "" {
		urls, err = profiles.ReadURLs(cfg.URLsFile)
		if err != nil {
			return err
		}
	}
	urls = profiles.MergeURLs(urls, scrapeURLs)
	if len(urls) == 0 && cfg.SearchURL == "" {
		return fmt.Errorf("provide profile URLs with --urls-file or --url, or a --search-url")
	}

	session := fetch.DefaultSessionOptions()
	session.Headless = !headful
	session.PageTimeout = pageTimeout
	session.Verbose = debug

	job := profiles.Job{
		URLs:      urls,
		SearchURL: cfg.SearchURL,
		Output:    cfg.Output,
		Session:   session,
		Options: profiles.Options{
			Count:   cfg.Count,
			Delay:   delay,
			Jitter:  jitter,
			Verbose: debug,
		},
	}

	if scrapeLogin {
		creds := config.LoadCredentials()
		if err := creds.RequireSiteLogin(); err != nil {
			return err
		}
		form := fetch.LinkedInLoginForm(creds.SiteEmail, creds.SitePassword)
		job.Login = &form
		log.Printf("[PROFILES] Logging in as %s", config.Redact(creds.SiteEmail))
	}

	ctx, stop := interruptible()
	defer stop()

	summary, err := profiles.RunJob(ctx, job, profiles.ChromeOpener)
	if err != nil {
		return err
	}

	printer := observability.NewPrinter(os.Stdout)
	if debug {
		printer.PrintItems(summary.Items)
	}
	printer.PrintRunSummary(summary)
	fmt.Fprintf(os.Stdout, "Wrote %d profiles to %s\n", summary.Succeeded, cfg.Output)
	return nil
}
