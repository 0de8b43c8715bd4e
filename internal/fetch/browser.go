// Package fetch - browser.go provides a headless browser session for rendering profile pages.
package fetch

import (
	"context"
	"fmt"
	"log"
	"math/rand/v2"
	"strings"
	"sync"
	"time"

	"github.com/chromedp/chromedp"
)

// SessionOptions configures the browser session.
type SessionOptions struct {
	Headless    bool
	UserAgent   string // Empty picks one from userAgents per session
	PageTimeout time.Duration // Navigation + render budget per page
	SettleDelay time.Duration // Extra wait for client-side rendering after body is ready
	Verbose     bool
}

// DefaultSessionOptions returns sensible defaults for a scraping session.
func DefaultSessionOptions() *SessionOptions {
	return &SessionOptions{
		Headless:    true,
		PageTimeout: 30 * time.Second,
		SettleDelay: 2 * time.Second,
	}
}

// userAgents are current desktop browsers; each session presents one of them.
var userAgents = []string{
	DefaultUserAgent,
	"Mozilla/5.0 (Macintosh; Intel Mac OS X 10_15_7) AppleWebKit/537.36 (KHTML, like Gecko) Chrome/124.0 Safari/537.36",
	"Mozilla/5.0 (X11; Linux x86_64) AppleWebKit/537.36 (KHTML, like Gecko) Chrome/123.0 Safari/537.36",
	"Mozilla/5.0 (Windows NT 10.0; Win64; x64) AppleWebKit/537.36 (KHTML, like Gecko) Chrome/124.0 Safari/537.36 Edg/124.0",
	"Mozilla/5.0 (Macintosh; Intel Mac OS X 10_15_7) AppleWebKit/605.1.15 (KHTML, like Gecko) Version/17.4 Safari/605.1.15",
}

// RandomUserAgent returns a user agent from the session pool.
func RandomUserAgent() string {
	return userAgents[rand.IntN(len(userAgents))]
}

// LoginForm describes a username/password form to submit before scraping.
type LoginForm struct {
	URL              string
	Email            string
	Password         string
	EmailSelector    string
	PasswordSelector string
	SubmitSelector   string
}

// LinkedInLoginForm returns the login form layout of linkedin.com.
func LinkedInLoginForm(email, password string) LoginForm {
	return LoginForm{
		URL:              "https://www.linkedin.com/login",
		Email:            email,
		Password:         password,
		EmailSelector:    "#username",
		PasswordSelector: "#password",
		SubmitSelector:   `button[type="submit"]`,
	}
}

// Session owns one browser process for the lifetime of a scraper run.
// Close must be called on every exit path; it is safe to call more than once.
type Session struct {
	ctx       context.Context
	cancel    context.CancelFunc
	allocStop context.CancelFunc
	opts      *SessionOptions
	closeOnce sync.Once
}

// NewSession launches the browser. Failing to start it is a setup error.
// Requires Chrome/Chromium to be installed on the system.
func NewSession(ctx context.Context, opts *SessionOptions) (*Session, error) {
	if opts == nil {
		opts = DefaultSessionOptions()
	}
	if opts.PageTimeout <= 0 {
		opts.PageTimeout = DefaultTimeout
	}

	allocOpts := append(chromedp.DefaultExecAllocatorOptions[:],
		chromedp.Flag("headless", opts.Headless),
		chromedp.Flag("disable-gpu", true),
		chromedp.Flag("no-sandbox", true),
		chromedp.Flag("disable-dev-shm-usage", true),
		chromedp.Flag("blink-settings", "imagesEnabled=false"),
		chromedp.WindowSize(1200, 900),
	)
	userAgent := opts.UserAgent
	if userAgent == "" {
		userAgent = RandomUserAgent()
	}
	allocOpts = append(allocOpts, chromedp.UserAgent(userAgent))

	allocCtx, allocStop := chromedp.NewExecAllocator(ctx, allocOpts...)
	browserCtx, cancel := chromedp.NewContext(allocCtx)

	// An empty Run starts the browser so launch failures surface here.
	if err := chromedp.Run(browserCtx); err != nil {
		cancel()
		allocStop()
		return nil, &Error{
			URL:     "(browser)",
			Message: "failed to start browser session",
			Cause:   err,
		}
	}

	if opts.Verbose {
		log.Printf("[BROWSER] Session started (headless=%v, user agent %q)", opts.Headless, userAgent)
	}

	return &Session{
		ctx:       browserCtx,
		cancel:    cancel,
		allocStop: allocStop,
		opts:      opts,
	}, nil
}

// Close tears down the browser process.
func (s *Session) Close() error {
	s.closeOnce.Do(func() {
		s.cancel()
		s.allocStop()
		if s.opts.Verbose {
			log.Printf("[BROWSER] Session closed")
		}
	})
	return nil
}

// pageContext derives a per-page context from the browser context that is also
// cancelled when the caller's context is.
func (s *Session) pageContext(ctx context.Context) (context.Context, context.CancelFunc) {
	pageCtx, cancel := context.WithTimeout(s.ctx, s.opts.PageTimeout)
	stop := context.AfterFunc(ctx, cancel)
	return pageCtx, func() {
		stop()
		cancel()
	}
}

// Render navigates to url in the session's tab and returns the rendered HTML.
func (s *Session) Render(ctx context.Context, url string) (string, error) {
	if s.opts.Verbose {
		log.Printf("[BROWSER] Visiting %s", url)
	}

	pageCtx, cancel := s.pageContext(ctx)
	defer cancel()

	var html string
	err := chromedp.Run(pageCtx,
		chromedp.Navigate(url),
		chromedp.WaitReady("body"),
		chromedp.Sleep(s.opts.SettleDelay),
		chromedp.OuterHTML("html", &html),
	)
	if err != nil {
		return "", &Error{
			URL:     url,
			Message: "browser rendering failed",
			Cause:   err,
		}
	}

	if s.opts.Verbose {
		log.Printf("[BROWSER] Rendered HTML: %d bytes", len(html))
	}

	return html, nil
}

// Login submits a username/password form and waits for the site to navigate away
// from it. Any page that still looks like a login or challenge page is an error.
func (s *Session) Login(ctx context.Context, form LoginForm) error {
	if form.Email == "" || form.Password == "" {
		return fmt.Errorf("login requires both email and password")
	}

	pageCtx, cancel := s.pageContext(ctx)
	defer cancel()

	var location string
	err := chromedp.Run(pageCtx,
		chromedp.Navigate(form.URL),
		chromedp.WaitVisible(form.EmailSelector),
		chromedp.SendKeys(form.EmailSelector, form.Email),
		chromedp.SendKeys(form.PasswordSelector, form.Password),
		chromedp.Click(form.SubmitSelector, chromedp.NodeVisible),
		chromedp.Sleep(s.opts.SettleDelay),
		chromedp.WaitReady("body"),
		chromedp.Location(&location),
	)
	if err != nil {
		return &Error{
			URL:     form.URL,
			Message: "login form submission failed",
			Cause:   err,
		}
	}

	if !LoginSucceeded(form.URL, location) {
		return &Error{
			URL:     form.URL,
			Message: fmt.Sprintf("login did not complete (landed on %s)", location),
		}
	}

	log.Printf("[BROWSER] Logged in")
	return nil
}

// LoginSucceeded reports whether the browser left the login form after submitting.
func LoginSucceeded(loginURL, landedURL string) bool {
	if landedURL == "" || strings.TrimSuffix(landedURL, "/") == strings.TrimSuffix(loginURL, "/") {
		return false
	}
	lower := strings.ToLower(landedURL)
	for _, marker := range []string{"/login", "/checkpoint", "/uas/", "captcha"} {
		if strings.Contains(lower, marker) {
			return false
		}
	}
	return true
}
