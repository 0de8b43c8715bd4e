//nolint:revive // types is a standard Go package name pattern
package types

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestLoginRequest_Validation(t *testing.T) {
	assert.NoError(t, (&LoginRequest{Password: "hunter22"}).Validate())
	assert.Error(t, (&LoginRequest{}).Validate())
}

func TestProfilesRunRequest_Validation(t *testing.T) {
	tests := []struct {
		name    string
		request ProfilesRunRequest
		wantErr bool
		errMsg  string
	}{
		{
			name: "urls with count",
			request: ProfilesRunRequest{
				URLs:  []string{"https://www.linkedin.com/in/jane-doe"},
				Count: 5,
			},
		},
		{
			name: "search url only",
			request: ProfilesRunRequest{
				SearchURL: "https://www.linkedin.com/search/results/people/?keywords=go",
				Count:     20,
			},
		},
		{
			name:    "neither urls nor search url",
			request: ProfilesRunRequest{Count: 3},
			wantErr: true,
			errMsg:  "required_without",
		},
		{
			name: "zero count",
			request: ProfilesRunRequest{
				URLs: []string{"https://example.com/in/a"},
			},
			wantErr: true,
			errMsg:  "Count",
		},
		{
			name: "malformed entries are skipped by the collector",
			request: ProfilesRunRequest{
				URLs:  []string{"https://github.com/octocat", "not a url", ""},
				Count: 2,
			},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			err := tt.request.Validate()
			if tt.wantErr {
				assert.Error(t, err)
				assert.Contains(t, err.Error(), tt.errMsg)
				return
			}
			assert.NoError(t, err)
		})
	}
}

func TestCallsRunRequest_Validation(t *testing.T) {
	valid := CallsRunRequest{Numbers: []string{"+15551234567", "not-a-number"}}
	assert.NoError(t, valid.Validate(), "format is checked per item by the dispatcher, not here")

	empty := CallsRunRequest{}
	assert.Error(t, empty.Validate())

	blank := CallsRunRequest{Numbers: []string{"+15551234567", ""}}
	assert.NoError(t, blank.Validate(), "a blank entry fails as its own call result")
}

func TestArticlesRunRequest_Validation(t *testing.T) {
	assert.NoError(t, (&ArticlesRunRequest{Topics: []string{"loops", "recursion"}}).Validate())
	assert.Error(t, (&ArticlesRunRequest{}).Validate())
	assert.Error(t, (&ArticlesRunRequest{Topics: []string{"loops", ""}}).Validate())
}
