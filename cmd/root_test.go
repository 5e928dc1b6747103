package cmd

import (
	"context"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/rs/zerolog"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/s0up4200/zendesk/config"
	"github.com/s0up4200/zendesk/zendesk"
)

func testConfig(apiURL string) *config.Config {
	return &config.Config{
		Zendesk: config.ZendeskConfig{
			Subdomain: "acme",
			APIURL:    apiURL,
			Email:     "agent@example.com",
			Token:     "secret",
		},
		HTTP: config.HTTPConfig{
			TimeoutSeconds: 5,
			UserAgent:      "zendesk-cli-test",
			Concurrency:    2,
		},
	}
}

func TestClientOptions(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		user, pass, ok := r.BasicAuth()
		assert.True(t, ok)
		assert.Equal(t, "agent@example.com/token", user)
		assert.Equal(t, "secret", pass)
		assert.Equal(t, "zendesk-cli-test", r.Header.Get("User-Agent"))
		assert.Equal(t, "/api/v2/users/me.json", r.URL.Path)

		w.Header().Set("Content-Type", "application/json")
		_, _ = w.Write([]byte(`{"user":{"name":"Agent"}}`))
	}))
	defer server.Close()

	c, err := zendesk.NewClient("acme", zerolog.Nop(), clientOptions(testConfig(server.URL+"/api/v2"))...)
	require.NoError(t, err)
	assert.Equal(t, server.URL+"/api/v2", c.APIURL())

	resp, err := c.TestConnection(context.Background())
	require.NoError(t, err)
	assert.Equal(t, "Agent", resp["user"].(map[string]any)["name"])
}

func TestClientOptionsOAuthWins(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, "Bearer oauth-token", r.Header.Get("Authorization"))
		w.WriteHeader(http.StatusNoContent)
	}))
	defer server.Close()

	cfg := testConfig(server.URL)
	cfg.Zendesk.OAuthToken = "oauth-token"

	c, err := zendesk.NewClient("acme", zerolog.Nop(), clientOptions(cfg)...)
	require.NoError(t, err)

	resp, err := c.Get(context.Background(), "/tickets.json", nil)
	require.NoError(t, err)
	assert.Nil(t, resp)
}

func TestBuildQuery(t *testing.T) {
	it := zendesk.IteratorOptions{PerPage: 50, SortOrder: zendesk.SortDesc}

	query := buildQuery([]string{"users", "groups"}, it, map[string]string{"external_id": "42"})
	assert.Equal(t, zendesk.Params{
		"include":     "users,groups",
		"per_page":    50,
		"sort_order":  "desc",
		"external_id": "42",
	}, query)

	query = buildQuery(nil, zendesk.IteratorOptions{}, nil)
	assert.Empty(t, query)
	assert.NotContains(t, query, "include")
}

func TestParseData(t *testing.T) {
	fields, err := parseData(`{"ticket":{"subject":"Hello"}}`)
	require.NoError(t, err)
	assert.Equal(t, "Hello", fields["ticket"].(map[string]any)["subject"])

	fields, err = parseData("  ")
	require.NoError(t, err)
	assert.Nil(t, fields)

	_, err = parseData(`[1,2]`)
	assert.Error(t, err)
}

func TestIteratorOptions(t *testing.T) {
	defer func() {
		perPage, page, sortBy, sortOrder = 0, 0, "", ""
	}()

	perPage, page, sortBy, sortOrder = 25, 2, "created_at", "DESC"
	it, err := iteratorOptions()
	require.NoError(t, err)
	assert.Equal(t, zendesk.IteratorOptions{PerPage: 25, Page: 2, SortBy: "created_at", SortOrder: zendesk.SortDesc}, it)

	sortOrder = "sideways"
	_, err = iteratorOptions()
	assert.Error(t, err)
}

func TestCollectionKeyFor(t *testing.T) {
	tests := map[string]string{
		"/tickets.json":              "tickets",
		"/users/12/tickets.json":     "tickets",
		"/help_center/articles.json": "articles",
		"organizations":              "organizations",
	}
	for endpoint, want := range tests {
		assert.Equal(t, want, collectionKeyFor(endpoint), endpoint)
	}
}

func TestSummarize(t *testing.T) {
	assert.Equal(t, "#7 Printer on fire [open]", summarize(zendesk.Response{"id": float64(7), "subject": "Printer on fire", "status": "open"}))
	assert.Equal(t, "#3 Jane", summarize(zendesk.Response{"id": float64(3), "name": "Jane"}))
	assert.Equal(t, "#9", summarize(zendesk.Response{"id": float64(9)}))
}

func TestCurrentVersion(t *testing.T) {
	v, err := currentVersion("v1.2.3")
	require.NoError(t, err)
	assert.Equal(t, "1.2.3", v.String())

	_, err = currentVersion("dev")
	assert.Error(t, err)
}

func TestSetupLogger(t *testing.T) {
	defer zerolog.SetGlobalLevel(zerolog.InfoLevel)

	setupLogger(config.LoggingConfig{Level: "trace", Format: "console"})
	assert.Equal(t, zerolog.TraceLevel, zerolog.GlobalLevel())

	setupLogger(config.LoggingConfig{Level: "warn", Format: "json"})
	assert.Equal(t, zerolog.WarnLevel, zerolog.GlobalLevel())

	setupLogger(config.LoggingConfig{Level: "bogus"})
	assert.Equal(t, zerolog.InfoLevel, zerolog.GlobalLevel())
}
