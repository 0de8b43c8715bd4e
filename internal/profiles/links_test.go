package profiles

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestHarvestProfileLinks_LinkedInSearch(t *testing.T) {
	html := `
	<html><body>
		<ul class="reusable-search__entity-result-list">
			<li><a href="https://www.linkedin.com/in/jane-doe?miniProfileUrn=abc">Jane</a></li>
			<li><a href="/in/john-roe/">John</a></li>
			<li><a href="https://www.linkedin.com/in/jane-doe/">Jane again</a></li>
			<li><a href="/company/acme/">Acme</a></li>
			<li><a href="#">Next</a></li>
			<li><a href="javascript:void(0)">Connect</a></li>
		</ul>
	</body></html>`

	links, err := HarvestProfileLinks(html, "https://www.linkedin.com/search/results/people/?keywords=golang")
	require.NoError(t, err)
	assert.Equal(t, []string{
		"https://www.linkedin.com/in/jane-doe",
		"https://www.linkedin.com/in/john-roe",
	}, links)
}

func TestHarvestProfileLinks_GenericRequiresPersonScope(t *testing.T) {
	html := `
	<html><body>
		<a href="/about">About us</a>
		<div itemscope itemtype="https://schema.org/Person">
			<a href="/team/grace">Grace Hopper</a>
		</div>
		<div itemscope itemtype="https://schema.org/Person">
			<a href="https://example.com/team/alan#bio">Alan Turing</a>
		</div>
	</body></html>`

	links, err := HarvestProfileLinks(html, "https://example.com/team")
	require.NoError(t, err)
	assert.Equal(t, []string{
		"https://example.com/team/grace",
		"https://example.com/team/alan",
	}, links)
}

func TestHarvestProfileLinks_InvalidBase(t *testing.T) {
	_, err := HarvestProfileLinks("<html></html>", "not a url")
	require.Error(t, err)

	var harvestErr *LinkHarvestError
	assert.ErrorAs(t, err, &harvestErr)
}

func TestHarvestProfileLinks_NoLinks(t *testing.T) {
	links, err := HarvestProfileLinks("<html><body><p>No results</p></body></html>", "https://github.com/search?q=go&type=users")
	require.NoError(t, err)
	assert.Empty(t, links)
}
