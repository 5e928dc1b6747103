package cmd

import (
	"bytes"
	"context"
	"encoding/json"
	"io"
	"net/http"
	"net/http/httptest"
	"os"
	"path/filepath"
	"testing"

	"github.com/rs/zerolog"
	"github.com/spf13/cobra"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/s0up4200/zendesk/config"
	"github.com/s0up4200/zendesk/filter"
	"github.com/s0up4200/zendesk/zendesk"
)

func resetFlags() {
	dataJSON, uploadFile, contentType, queryPairs = "", "", "", nil
	include, perPage, page, sortBy, sortOrder, showDebug = nil, 0, 0, "", "", false
	collectionKey, filterExpr, preset, asJSON = "", "", "", false
	authCode, redirectURI = "", ""
}

// setupTestApp points the package level client at serverURL the same way
// initializeApp does from a config file.
func setupTestApp(t *testing.T, serverURL string) {
	t.Helper()

	cfg = testConfig(serverURL + "/api/v2")
	cfg.OAuth = config.OAuthConfig{
		ClientID:     "client-id",
		ClientSecret: "client-secret",
		RedirectURI:  "https://app.example.com/callback",
		TokenURL:     serverURL + "/oauth/tokens",
	}
	cfg.Filter.Presets = map[string]string{
		"urgent": `priority == "urgent"`,
	}
	logger = zerolog.Nop()

	var err error
	client, err = zendesk.NewClient(cfg.Zendesk.Subdomain, logger, clientOptions(cfg)...)
	require.NoError(t, err)

	filterManager = filter.NewManager()
	require.NoError(t, filterManager.RegisterFilters(cfg.Filter.Presets))

	resetFlags()
	t.Cleanup(resetFlags)
}

func newTestCommand() (*cobra.Command, *bytes.Buffer, *bytes.Buffer) {
	cmd := &cobra.Command{}
	cmd.SetContext(context.Background())
	out, errOut := &bytes.Buffer{}, &bytes.Buffer{}
	cmd.SetOut(out)
	cmd.SetErr(errOut)
	return cmd, out, errOut
}

func ticketsHandler(t *testing.T) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, "/api/v2/tickets.json", r.URL.Path)
		w.Header().Set("Content-Type", "application/json")
		_, _ = w.Write([]byte(`{
			"tickets": [
				{"id": 1, "subject": "Printer on fire", "status": "open", "priority": "high"},
				{"id": 2, "subject": "Password reset", "status": "pending", "priority": "low"},
				{"id": 3, "subject": "Site down", "status": "open", "priority": "urgent"}
			],
			"count": 3
		}`))
	}
}

func TestRunRequestPostData(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, http.MethodPost, r.Method)
		assert.Equal(t, "/api/v2/tickets.json", r.URL.Path)
		assert.Equal(t, "application/json", r.Header.Get("Content-Type"))

		var body map[string]any
		require.NoError(t, json.NewDecoder(r.Body).Decode(&body))
		assert.Equal(t, map[string]any{"ticket": map[string]any{"subject": "Hello"}}, body)

		w.Header().Set("Content-Type", "application/json")
		w.WriteHeader(http.StatusCreated)
		_, _ = w.Write([]byte(`{"ticket":{"id":42,"subject":"Hello"}}`))
	}))
	defer server.Close()

	setupTestApp(t, server.URL)
	dataJSON = `{"ticket":{"subject":"Hello"}}`
	showDebug = true

	cmd, out, errOut := newTestCommand()
	require.NoError(t, runRequest(cmd, []string{"post", "tickets.json"}))

	var resp map[string]any
	require.NoError(t, json.Unmarshal(out.Bytes(), &resp))
	assert.Equal(t, float64(42), resp["ticket"].(map[string]any)["id"])

	assert.Contains(t, errOut.String(), "Request: POST "+server.URL+"/api/v2/tickets.json")
	assert.Contains(t, errOut.String(), "Status: 201")
	assert.Contains(t, errOut.String(), "[redacted]")
	assert.NotContains(t, errOut.String(), "secret")
}

func TestRunRequestMissingFile(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, http.MethodPost, r.Method)
		assert.Equal(t, "/api/v2/uploads.json", r.URL.Path)
		assert.Equal(t, "shot.png", r.URL.Query().Get("filename"))
		assert.Equal(t, "image/png", r.Header.Get("Content-Type"))

		body, err := io.ReadAll(r.Body)
		require.NoError(t, err)
		assert.Empty(t, body)

		w.Header().Set("Content-Type", "application/json")
		_, _ = w.Write([]byte(`{"upload":{"token":"abc"}}`))
	}))
	defer server.Close()

	setupTestApp(t, server.URL)
	uploadFile = filepath.Join(t.TempDir(), "does-not-exist.png")
	contentType = "image/png"
	queryPairs = map[string]string{"filename": "shot.png"}

	cmd, out, _ := newTestCommand()
	require.NoError(t, runRequest(cmd, []string{"POST", "/uploads.json"}))
	assert.Contains(t, out.String(), `"token": "abc"`)
}

func TestRunRequestAPIError(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "application/json")
		w.WriteHeader(http.StatusNotFound)
		_, _ = w.Write([]byte(`{"error":"RecordNotFound","description":"Not found"}`))
	}))
	defer server.Close()

	setupTestApp(t, server.URL)
	showDebug = true

	cmd, out, errOut := newTestCommand()
	err := runRequest(cmd, []string{"GET", "/tickets/999.json"})

	var apiErr *zendesk.APIError
	require.ErrorAs(t, err, &apiErr)
	assert.True(t, apiErr.IsNotFound())
	assert.Empty(t, out.String())
	assert.Contains(t, errOut.String(), "API error:")
}

func TestRunListFilter(t *testing.T) {
	server := httptest.NewServer(ticketsHandler(t))
	defer server.Close()

	setupTestApp(t, server.URL)
	filterExpr = `status == "open"`

	cmd, out, _ := newTestCommand()
	require.NoError(t, runList(cmd, []string{"/tickets.json"}))

	assert.Contains(t, out.String(), "Found 2 tickets:")
	assert.Contains(t, out.String(), "#1 Printer on fire [open]")
	assert.Contains(t, out.String(), "#3 Site down [open]")
	assert.NotContains(t, out.String(), "Password reset")
}

func TestRunListNonBooleanFilter(t *testing.T) {
	server := httptest.NewServer(ticketsHandler(t))
	defer server.Close()

	setupTestApp(t, server.URL)
	filterExpr = "subject"

	cmd, out, _ := newTestCommand()
	require.NoError(t, runList(cmd, []string{"/tickets.json"}))
	assert.Contains(t, out.String(), "No records found matching the filter criteria.")
}

func TestRunListPreset(t *testing.T) {
	server := httptest.NewServer(ticketsHandler(t))
	defer server.Close()

	setupTestApp(t, server.URL)
	preset = "urgent"
	asJSON = true

	cmd, out, _ := newTestCommand()
	require.NoError(t, runList(cmd, []string{"/tickets.json"}))

	var records []map[string]any
	require.NoError(t, json.Unmarshal(out.Bytes(), &records))
	require.Len(t, records, 1)
	assert.Equal(t, "Site down", records[0]["subject"])
}

func TestRunListUnknownPreset(t *testing.T) {
	server := httptest.NewServer(ticketsHandler(t))
	defer server.Close()

	setupTestApp(t, server.URL)
	preset = "missing"

	cmd, _, _ := newTestCommand()
	err := runList(cmd, []string{"/tickets.json"})

	var notFound *filter.NotFoundError
	require.ErrorAs(t, err, &notFound)
	assert.Equal(t, "missing", notFound.Name)
}

func TestRunOAuth(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, http.MethodPost, r.Method)
		assert.Equal(t, "/oauth/tokens", r.URL.Path)

		var body map[string]string
		require.NoError(t, json.NewDecoder(r.Body).Decode(&body))
		assert.Equal(t, "the-code", body["code"])
		assert.Equal(t, "client-id", body["client_id"])
		assert.Equal(t, "https://cli.example.com/done", body["redirect_uri"])

		w.Header().Set("Content-Type", "application/json")
		_, _ = w.Write([]byte(`{"access_token":"tok","token_type":"bearer","scope":"read"}`))
	}))
	defer server.Close()

	setupTestApp(t, server.URL)
	authCode = "the-code"
	redirectURI = "https://cli.example.com/done"

	cmd, out, _ := newTestCommand()
	require.NoError(t, runOAuth(cmd, nil))

	var token map[string]any
	require.NoError(t, json.Unmarshal(out.Bytes(), &token))
	assert.Equal(t, "tok", token["access_token"])
	assert.Equal(t, "bearer", token["token_type"])
}

func TestRunOAuthMissingRedirectURI(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		t.Error("token endpoint must not be called")
	}))
	defer server.Close()

	setupTestApp(t, server.URL)
	cfg.OAuth.RedirectURI = ""
	authCode = "the-code"

	cmd, _, _ := newTestCommand()
	err := runOAuth(cmd, nil)
	assert.ErrorIs(t, err, zendesk.ErrInvalidConfig)
}

func TestRootCommandLoadsConfig(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, "/api/v2/users/me.json", r.URL.Path)
		w.Header().Set("Content-Type", "application/json")
		w.Header().Set("X-Rate-Limit-Remaining", "699")
		_, _ = w.Write([]byte(`{"user":{"name":"Agent Smith","email":"agent@example.com","role":"admin"}}`))
	}))
	defer server.Close()

	path := filepath.Join(t.TempDir(), "config.yaml")
	require.NoError(t, os.WriteFile(path, []byte(`
zendesk:
  subdomain: acme
  api_url: `+server.URL+`/api/v2
  email: agent@example.com
  token: secret
logging:
  level: error
`), 0o600))

	out := &bytes.Buffer{}
	rootCmd.SetOut(out)
	rootCmd.SetArgs([]string{"--config", path, "test"})
	t.Cleanup(func() {
		rootCmd.SetOut(nil)
		rootCmd.SetArgs(nil)
		cfgFile = ""
		zerolog.SetGlobalLevel(zerolog.InfoLevel)
	})

	require.NoError(t, rootCmd.Execute())

	assert.Contains(t, out.String(), "✓ Connection successful!")
	assert.Contains(t, out.String(), "- Name: Agent Smith")
	assert.Contains(t, out.String(), "- Rate limit remaining: 699")
	assert.Equal(t, "acme", client.Subdomain())
}
