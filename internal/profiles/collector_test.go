package profiles

import (
	"context"
	"errors"
	"fmt"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/jonathan/aeroleads/internal/fetch"
	"github.com/jonathan/aeroleads/internal/types"
)

// fakeBrowser serves canned HTML per URL and records its lifecycle.
type fakeBrowser struct {
	pages    map[string]string
	failures map[string]error
	panicOn  string
	visited  []string
	loginErr error
	loggedIn bool
	closed   bool
}

func (b *fakeBrowser) Render(_ context.Context, url string) (string, error) {
	b.visited = append(b.visited, url)
	if url == b.panicOn {
		panic("renderer crashed")
	}
	if err, ok := b.failures[url]; ok {
		return "", err
	}
	html, ok := b.pages[url]
	if !ok {
		return "", fmt.Errorf("no page for %s", url)
	}
	return html, nil
}

func (b *fakeBrowser) Login(_ context.Context, _ fetch.LoginForm) error {
	if b.loginErr != nil {
		return b.loginErr
	}
	b.loggedIn = true
	return nil
}

func (b *fakeBrowser) Close() error {
	b.closed = true
	return nil
}

func (b *fakeBrowser) opener() BrowserOpener {
	return func(context.Context, *fetch.SessionOptions) (Browser, error) {
		return b, nil
	}
}

// memorySink keeps records in memory.
type memorySink struct {
	records []types.ProfileRecord
	err     error
}

func (s *memorySink) Write(record types.ProfileRecord) error {
	if s.err != nil {
		return s.err
	}
	s.records = append(s.records, record)
	return nil
}

func profilePage(name string) string {
	return fmt.Sprintf(`<html><body><div itemscope itemtype="https://schema.org/Person">
		<span itemprop="name">%s</span>
		<span itemprop="jobTitle">Engineer</span>
		<span itemprop="worksFor">Acme</span>
		<span itemprop="homeLocation">Remote</span>
	</div></body></html>`, name)
}

func noSleep(context.Context, time.Duration) error { return nil }

func TestCollector_SkipsBadPagesAndStopsAtCount(t *testing.T) {
	browser := &fakeBrowser{
		pages: map[string]string{
			"https://example.com/p/1": profilePage("One"),
			"https://example.com/p/2": `<html><body><h1>Not a profile</h1></body></html>`,
			"https://example.com/p/4": profilePage("Four"),
			"https://example.com/p/5": profilePage("Five"),
		},
		failures: map[string]error{
			"https://example.com/p/3": errors.New("navigation timeout"),
		},
	}
	sink := &memorySink{}

	var events []types.ItemOutcome
	c := NewCollector(browser, sink, Options{Count: 2, OnItem: func(o types.ItemOutcome) { events = append(events, o) }})
	c.sleep = noSleep

	summary, err := c.Run(context.Background(), []string{
		"https://example.com/p/1",
		"https://example.com/p/2",
		"https://example.com/p/3",
		"https://example.com/p/4",
		"https://example.com/p/5",
	})
	require.NoError(t, err)

	require.Len(t, sink.records, 2)
	assert.Equal(t, "One", sink.records[0].Name)
	assert.Equal(t, "Four", sink.records[1].Name)
	for _, r := range sink.records {
		assert.Empty(t, r.MissingFields())
	}

	assert.Equal(t, 2, summary.Succeeded)
	assert.Equal(t, 2, summary.Skipped)
	assert.Len(t, events, 4)
	assert.NotContains(t, browser.visited, "https://example.com/p/5", "collection stops once count is reached")
}

func TestCollector_InputExhaustedBeforeCount(t *testing.T) {
	browser := &fakeBrowser{pages: map[string]string{"https://example.com/p/1": profilePage("One")}}
	sink := &memorySink{}

	c := NewCollector(browser, sink, Options{Count: 10})
	c.sleep = noSleep

	summary, err := c.Run(context.Background(), []string{"https://example.com/p/1", "not-a-url"})
	require.NoError(t, err)
	assert.Equal(t, 1, summary.Succeeded)
	assert.Equal(t, 1, summary.Skipped)
	assert.Contains(t, summary.Items[1].Error, "invalid URL")
	assert.Equal(t, []string{"https://example.com/p/1"}, browser.visited, "invalid URLs are never loaded")
}

func TestCollector_RejectsNonPositiveCount(t *testing.T) {
	for _, count := range []int{0, -1} {
		c := NewCollector(&fakeBrowser{}, &memorySink{}, Options{Count: count})
		_, err := c.Run(context.Background(), []string{"https://example.com/p/1"})
		require.Error(t, err)
		assert.Contains(t, err.Error(), "positive integer")
	}
}

func TestCollector_SinkFailureAborts(t *testing.T) {
	browser := &fakeBrowser{pages: map[string]string{"https://example.com/p/1": profilePage("One")}}
	c := NewCollector(browser, &memorySink{err: errors.New("disk full")}, Options{Count: 1})
	c.sleep = noSleep

	_, err := c.Run(context.Background(), []string{"https://example.com/p/1"})
	require.Error(t, err)
	assert.Contains(t, err.Error(), "disk full")
}

func TestCollector_PausesBetweenPages(t *testing.T) {
	browser := &fakeBrowser{pages: map[string]string{
		"https://example.com/p/1": profilePage("One"),
		"https://example.com/p/2": profilePage("Two"),
	}}

	var pauses []time.Duration
	c := NewCollector(browser, &memorySink{}, Options{Count: 2, Delay: 4 * time.Second, Jitter: time.Second})
	c.sleep = func(_ context.Context, d time.Duration) error {
		pauses = append(pauses, d)
		return nil
	}

	_, err := c.Run(context.Background(), []string{"https://example.com/p/1", "https://example.com/p/2"})
	require.NoError(t, err)
	require.Len(t, pauses, 1, "no pause before the first page")
	assert.GreaterOrEqual(t, pauses[0], 4*time.Second)
	assert.LessOrEqual(t, pauses[0], 5*time.Second)
}

func TestCollector_CancelledContext(t *testing.T) {
	browser := &fakeBrowser{pages: map[string]string{"https://example.com/p/1": profilePage("One")}}
	c := NewCollector(browser, &memorySink{}, Options{Count: 5, Delay: time.Hour})

	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	_, err := c.Run(ctx, []string{"https://example.com/p/1", "https://example.com/p/2"})
	assert.ErrorIs(t, err, context.Canceled)
}

func TestRunJob_WritesCSVAndClosesBrowser(t *testing.T) {
	browser := &fakeBrowser{pages: map[string]string{
		"https://example.com/p/1": profilePage("One"),
		"https://example.com/p/2": profilePage("Two"),
	}}
	out := filepath.Join(t.TempDir(), "profiles.csv")

	summary, err := RunJob(context.Background(), Job{
		URLs:    []string{"https://example.com/p/1", "https://example.com/p/2"},
		Output:  out,
		Options: Options{Count: 2},
	}, browser.opener())
	require.NoError(t, err)
	assert.Equal(t, 2, summary.Succeeded)
	assert.True(t, browser.closed)

	rows := readCSV(t, out)
	require.Len(t, rows, 3)
	assert.Equal(t, "Two", rows[2][0])
}

func TestRunJob_SearchURLHarvest(t *testing.T) {
	search := "https://example.com/team"
	browser := &fakeBrowser{pages: map[string]string{
		search: `<html><body>
			<div itemscope itemtype="https://schema.org/Person"><a href="/team/one">One</a></div>
			<div itemscope itemtype="https://schema.org/Person"><a href="/team/two">Two</a></div>
		</body></html>`,
		"https://example.com/team/one": profilePage("One"),
		"https://example.com/team/two": profilePage("Two"),
	}}

	summary, err := RunJob(context.Background(), Job{
		SearchURL: search,
		Output:    filepath.Join(t.TempDir(), "profiles.csv"),
		Options:   Options{Count: 1},
	}, browser.opener())
	require.NoError(t, err)
	assert.Equal(t, 1, summary.Succeeded)
	assert.Equal(t, []string{search, "https://example.com/team/one"}, browser.visited)
}

func TestRunJob_ClosesBrowserOnPanic(t *testing.T) {
	browser := &fakeBrowser{panicOn: "https://example.com/p/1"}

	assert.Panics(t, func() {
		_, _ = RunJob(context.Background(), Job{
			URLs:    []string{"https://example.com/p/1"},
			Output:  filepath.Join(t.TempDir(), "profiles.csv"),
			Options: Options{Count: 1},
		}, browser.opener())
	})
	assert.True(t, browser.closed)
}

func TestRunJob_LoginFailureIsSetupError(t *testing.T) {
	browser := &fakeBrowser{loginErr: errors.New("checkpoint challenge")}
	form := fetch.LinkedInLoginForm("me@example.com", "secret")

	_, err := RunJob(context.Background(), Job{
		URLs:    []string{"https://www.linkedin.com/in/jane"},
		Output:  filepath.Join(t.TempDir(), "profiles.csv"),
		Options: Options{Count: 1},
		Login:   &form,
	}, browser.opener())
	require.Error(t, err)
	assert.Contains(t, err.Error(), "site login failed")
	assert.NotContains(t, err.Error(), "secret")
	assert.True(t, browser.closed)
	assert.Empty(t, browser.visited)
}

func TestRunJob_OpenFailure(t *testing.T) {
	open := func(context.Context, *fetch.SessionOptions) (Browser, error) {
		return nil, errors.New("chrome not found")
	}
	_, err := RunJob(context.Background(), Job{
		URLs:    []string{"https://example.com/p/1"},
		Output:  filepath.Join(t.TempDir(), "profiles.csv"),
		Options: Options{Count: 1},
	}, open)
	require.Error(t, err)
	assert.Contains(t, err.Error(), "chrome not found")
}
