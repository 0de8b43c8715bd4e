package profiles

import (
	"context"
	"errors"
	"fmt"
	"log"
	"math/rand/v2"
	"time"

	"github.com/jonathan/aeroleads/internal/fetch"
	"github.com/jonathan/aeroleads/internal/types"
)

// PageLoader renders a page and returns its HTML.
type PageLoader interface {
	Render(ctx context.Context, url string) (string, error)
}

// Browser is a page loader that owns an automation session.
type Browser interface {
	PageLoader
	Login(ctx context.Context, form fetch.LoginForm) error
	Close() error
}

// BrowserOpener starts a browser session.
type BrowserOpener func(ctx context.Context, opts *fetch.SessionOptions) (Browser, error)

// ChromeOpener launches a local Chrome through chromedp.
func ChromeOpener(ctx context.Context, opts *fetch.SessionOptions) (Browser, error) {
	session, err := fetch.NewSession(ctx, opts)
	if err != nil {
		return nil, err
	}
	return session, nil
}

// Options configures a collection run.
type Options struct {
	Count   int           // Stop after this many records
	Delay   time.Duration // Pause between page visits
	Jitter  time.Duration // Random extra pause in [0, Jitter]
	Verbose bool
	OnItem  func(types.ItemOutcome)
}

// Collector visits profile pages in order and streams complete records to a sink.
type Collector struct {
	loader PageLoader
	sink   Sink
	opts   Options
	sleep  func(ctx context.Context, d time.Duration) error
}

// NewCollector creates a collector.
func NewCollector(loader PageLoader, sink Sink, opts Options) *Collector {
	return &Collector{
		loader: loader,
		sink:   sink,
		opts:   opts,
		sleep:  sleepContext,
	}
}

// Run visits urls in order until Count records are written or the list is exhausted.
// A page that fails to load or lacks a field is skipped. Only a sink failure or a
// cancelled context stops the run early with an error.
func (c *Collector) Run(ctx context.Context, urls []string) (*types.RunSummary, error) {
	if c.opts.Count < 1 {
		return nil, fmt.Errorf("count must be a positive integer, got %d", c.opts.Count)
	}

	summary := types.NewRunSummary(types.JobProfiles, c.opts.Count)
	log.Printf("[PROFILES] Collecting up to %d profiles from %d URLs", c.opts.Count, len(urls))

	for i, pageURL := range urls {
		if summary.Succeeded >= c.opts.Count {
			break
		}

		if i > 0 {
			if err := c.sleep(ctx, c.pause()); err != nil {
				return summary, err
			}
		}

		outcome := types.ItemOutcome{Index: i, Key: pageURL}
		record, err := c.collectOne(ctx, pageURL)
		if err != nil {
			if ctx.Err() != nil {
				return summary, ctx.Err()
			}
			outcome.Status = types.ItemSkipped
			outcome.Error = err.Error()
			log.Printf("[PROFILES] Skipped %s: %v", pageURL, err)
			c.record(summary, outcome)
			continue
		}

		if err := c.sink.Write(record); err != nil {
			return summary, fmt.Errorf("failed to persist profile %s: %w", pageURL, err)
		}

		outcome.Status = types.ItemDone
		outcome.Detail = record.Name
		if c.opts.Verbose {
			log.Printf("[PROFILES] %d/%d %s (%s at %s)", summary.Succeeded+1, c.opts.Count, record.Name, record.Title, record.Company)
		}
		c.record(summary, outcome)
	}

	log.Printf("[PROFILES] Done: %d collected, %d skipped", summary.Succeeded, summary.Skipped)
	return summary, nil
}

func (c *Collector) collectOne(ctx context.Context, pageURL string) (types.ProfileRecord, error) {
	if err := fetch.ValidateURL(pageURL); err != nil {
		return types.ProfileRecord{}, err
	}
	html, err := c.loader.Render(ctx, pageURL)
	if err != nil {
		return types.ProfileRecord{}, err
	}
	return ParseProfile(html, pageURL)
}

func (c *Collector) record(summary *types.RunSummary, outcome types.ItemOutcome) {
	summary.Record(outcome)
	if c.opts.OnItem != nil {
		c.opts.OnItem(outcome)
	}
}

// pause returns the politeness delay before the next page visit.
func (c *Collector) pause() time.Duration {
	d := c.opts.Delay
	if c.opts.Jitter > 0 {
		d += rand.N(c.opts.Jitter + 1)
	}
	return d
}

func sleepContext(ctx context.Context, d time.Duration) error {
	if d <= 0 {
		return ctx.Err()
	}
	timer := time.NewTimer(d)
	defer timer.Stop()
	select {
	case <-ctx.Done():
		return ctx.Err()
	case <-timer.C:
		return nil
	}
}

// Job describes one complete collection run.
type Job struct {
	URLs      []string
	SearchURL string
	Output    string
	Options   Options
	Session   *fetch.SessionOptions
	Login     *fetch.LoginForm
}

// RunJob opens a browser, optionally logs in, resolves the URL list, and collects
// profiles into the CSV at job.Output. The browser is closed on every exit path.
func RunJob(ctx context.Context, job Job, open BrowserOpener) (*types.RunSummary, error) {
	if job.Options.Count < 1 {
		return nil, fmt.Errorf("count must be a positive integer, got %d", job.Options.Count)
	}
	if len(job.URLs) == 0 && job.SearchURL == "" {
		return nil, errors.New("no profile URLs or search URL given")
	}
	if job.Output == "" {
		return nil, errors.New("output path is required")
	}

	browser, err := open(ctx, job.Session)
	if err != nil {
		return nil, err
	}
	defer func() { _ = browser.Close() }()

	if job.Login != nil {
		if err := browser.Login(ctx, *job.Login); err != nil {
			return nil, fmt.Errorf("site login failed: %w", err)
		}
	}

	urls := job.URLs
	if job.SearchURL != "" {
		html, err := browser.Render(ctx, job.SearchURL)
		if err != nil {
			return nil, fmt.Errorf("failed to load search page: %w", err)
		}
		harvested, err := HarvestProfileLinks(html, job.SearchURL)
		if err != nil {
			return nil, err
		}
		log.Printf("[PROFILES] Found %d profile links on search page", len(harvested))
		urls = MergeURLs(job.URLs, harvested)
	}

	sink, err := OpenCSVSink(job.Output)
	if err != nil {
		return nil, err
	}
	defer func() { _ = sink.Close() }()

	return NewCollector(browser, sink, job.Options).Run(ctx, urls)
}
