package fetch

import (
	"context"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestURL_Success(t *testing.T) {
	var gotUA string
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		gotUA = r.Header.Get("User-Agent")
		w.Header().Set("Content-Type", "text/html")
		w.WriteHeader(http.StatusOK)
		_, _ = w.Write([]byte("<html><body><h1>Test</h1></body></html>"))
	}))
	defer server.Close()

	result, err := URL(context.Background(), server.URL, nil)
	require.NoError(t, err)
	assert.Equal(t, server.URL, result.URL)
	assert.Contains(t, result.HTML, "<h1>Test</h1>")
	assert.Equal(t, http.StatusOK, result.StatusCode)
	assert.Equal(t, DefaultUserAgent, gotUA)
}

func TestURL_InvalidURL(t *testing.T) {
	for _, raw := range []string{"not-a-valid-url", "ftp://example.com/file", ""} {
		_, err := URL(context.Background(), raw, nil)
		require.Error(t, err, raw)

		var fetchErr *Error
		assert.ErrorAs(t, err, &fetchErr)
		assert.Contains(t, err.Error(), "invalid URL")
	}
}

func TestURL_HTTPError(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
		w.WriteHeader(http.StatusNotFound)
	}))
	defer server.Close()

	result, err := URL(context.Background(), server.URL, nil)
	require.Error(t, err)
	assert.NotNil(t, result) // Result is returned even on error
	assert.Equal(t, http.StatusNotFound, result.StatusCode)

	var fetchErr *Error
	assert.ErrorAs(t, err, &fetchErr)
	assert.Contains(t, err.Error(), "404")
}

func TestURL_CustomHeaders(t *testing.T) {
	var gotLang string
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		gotLang = r.Header.Get("Accept-Language")
		_, _ = w.Write([]byte("ok"))
	}))
	defer server.Close()

	opts := DefaultOptions()
	opts.Headers = map[string]string{"Accept-Language": "en-US"}

	_, err := URL(context.Background(), server.URL, opts)
	require.NoError(t, err)
	assert.Equal(t, "en-US", gotLang)
}

func TestExtractMainText_WithMainElement(t *testing.T) {
	html := `
	<html>
		<body>
			<nav>Navigation</nav>
			<main>
				<h1>Main Content</h1>
				<p>This is the important text.</p>
			</main>
			<footer>Footer</footer>
		</body>
	</html>`

	text, err := ExtractMainText(html, DefaultTextSelectors())
	require.NoError(t, err)
	assert.Contains(t, text, "Main Content")
	assert.Contains(t, text, "important text")
	assert.NotContains(t, text, "Navigation")
	assert.NotContains(t, text, "Footer")
}

func TestExtractMainText_FallbackToBody(t *testing.T) {
	html := `
	<html>
		<body>
			<div>Some content here.</div>
		</body>
	</html>`

	text, err := ExtractMainText(html, DefaultTextSelectors())
	require.NoError(t, err)
	assert.Contains(t, text, "Some content here")
}

func TestExtractMainText_NoiseSelectors(t *testing.T) {
	html := `
	<html>
		<body>
			<article>
				<div class="share-bar">Share this</div>
				<p>Article body.</p>
			</article>
		</body>
	</html>`

	text, err := ExtractMainText(html, DefaultTextSelectors(), ".share-bar")
	require.NoError(t, err)
	assert.Contains(t, text, "Article body")
	assert.NotContains(t, text, "Share this")
}

func TestCleanWhitespace(t *testing.T) {
	assert.Equal(t, "a\nb", cleanWhitespace("  a  \n\n\t\n   b "))
}

func TestToMarkdown(t *testing.T) {
	html := `
	<html>
		<body>
			<nav>Home | About</nav>
			<main>
				<h1>Closures in Go</h1>
				<p>A closure captures <strong>variables</strong> from its scope.</p>
				<a href="/docs/closures">Read more</a>
			</main>
		</body>
	</html>`

	markdown, err := ToMarkdown(html, "https://example.com/blog/closures")
	require.NoError(t, err)
	assert.Contains(t, markdown, "# Closures in Go")
	assert.Contains(t, markdown, "**variables**")
	assert.Contains(t, markdown, "example.com/docs/closures")
	assert.NotContains(t, markdown, "Home | About")
}

func TestMarkdownContext_Truncates(t *testing.T) {
	body := "<html><body><main><p>" + strings.Repeat("word ", 200) + "</p></main></body></html>"
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
		_, _ = w.Write([]byte(body))
	}))
	defer server.Close()

	markdown, err := MarkdownContext(context.Background(), server.URL, 50, nil)
	require.NoError(t, err)
	assert.LessOrEqual(t, len(markdown), 50)
	assert.True(t, strings.HasPrefix(markdown, "word word"))
}

func TestMarkdownContext_FetchError(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
		w.WriteHeader(http.StatusInternalServerError)
	}))
	defer server.Close()

	_, err := MarkdownContext(context.Background(), server.URL, 0, nil)
	require.Error(t, err)
	assert.Contains(t, err.Error(), "HTTP status 500")
}

func TestTruncateRunes(t *testing.T) {
	assert.Equal(t, "héllo", truncateRunes("héllo", 10))
	// "é" is two bytes; cutting at 2 must not split it
	assert.Equal(t, "h", truncateRunes("héllo", 2))
}

func TestLoginSucceeded(t *testing.T) {
	login := "https://www.linkedin.com/login"
	assert.True(t, LoginSucceeded(login, "https://www.linkedin.com/feed/"))
	assert.False(t, LoginSucceeded(login, ""))
	assert.False(t, LoginSucceeded(login, "https://www.linkedin.com/login/"))
	assert.False(t, LoginSucceeded(login, "https://www.linkedin.com/checkpoint/challenge/123"))
}

func TestLinkedInLoginForm(t *testing.T) {
	form := LinkedInLoginForm("me@example.com", "pw")
	assert.Equal(t, "#username", form.EmailSelector)
	assert.Equal(t, "#password", form.PasswordSelector)
	assert.Equal(t, "me@example.com", form.Email)
}

func TestRandomUserAgent(t *testing.T) {
	assert.Empty(t, DefaultSessionOptions().UserAgent)

	seen := make(map[string]bool)
	for i := 0; i < 200; i++ {
		ua := RandomUserAgent()
		assert.Contains(t, userAgents, ua)
		seen[ua] = true
	}
	assert.Greater(t, len(seen), 1)
}
