package zendesk

import (
	"context"
	"crypto/tls"
	"fmt"
	"net/http"
	"strings"
	"sync"

	"github.com/go-resty/resty/v2"
	"github.com/rs/zerolog"
)

// Client represents a Zendesk API client
type Client struct {
	subdomain   string
	apiURL      string
	oauthURL    string
	http        *resty.Client
	oauthHTTP   *http.Client
	logger      zerolog.Logger
	concurrency int

	mu    sync.Mutex
	debug Debug
}

// NewClient creates a new Zendesk client for the given subdomain
func NewClient(subdomain string, logger zerolog.Logger, opts ...Option) (*Client, error) {
	subdomain = strings.TrimSpace(subdomain)
	if subdomain == "" {
		return nil, fmt.Errorf("%w: subdomain is required", ErrInvalidConfig)
	}

	o := defaultOptions()
	for _, opt := range opts {
		opt(&o)
	}

	if o.apiToken != "" && o.password != "" {
		return nil, fmt.Errorf("%w: api token and password are mutually exclusive", ErrInvalidConfig)
	}

	apiURL := o.apiURL
	if apiURL == "" {
		apiURL = fmt.Sprintf("https://%s.zendesk.com/api/v2", subdomain)
	}
	oauthURL := o.oauthURL
	if oauthURL == "" {
		oauthURL = fmt.Sprintf("https://%s.zendesk.com/oauth/tokens", subdomain)
	}

	oauthHTTP := o.oauthHTTPClient
	if oauthHTTP == nil {
		oauthHTTP = newOAuthHTTPClient(o.insecure)
	}

	c := &Client{
		subdomain:   subdomain,
		apiURL:      strings.TrimRight(apiURL, "/"),
		oauthURL:    oauthURL,
		http:        newRestyClient(o, logger),
		oauthHTTP:   oauthHTTP,
		logger:      logger.With().Str("component", "zendesk").Str("subdomain", subdomain).Logger(),
		concurrency: o.concurrency,
	}

	return c, nil
}

func newRestyClient(o clientOptions, logger zerolog.Logger) *resty.Client {
	var rc *resty.Client
	if o.httpClient != nil {
		rc = resty.NewWithClient(o.httpClient)
	} else {
		rc = resty.New()
		rc.SetTimeout(o.timeout)
		if o.insecure {
			rc.SetTLSClientConfig(&tls.Config{InsecureSkipVerify: true}) //nolint:gosec
		}
	}

	rc.SetLogger(restyLogger{logger: logger})
	rc.SetAllowGetMethodPayload(true)
	if o.userAgent != "" {
		rc.SetHeader("User-Agent", o.userAgent)
	}

	switch {
	case o.oauthToken != "":
		rc.SetAuthToken(o.oauthToken)
	case o.apiToken != "":
		rc.SetBasicAuth(o.email+"/token", o.apiToken)
	case o.password != "":
		rc.SetBasicAuth(o.email, o.password)
	}

	return rc
}

// Subdomain returns the account subdomain
func (c *Client) Subdomain() string {
	return c.subdomain
}

// APIURL returns the API base URL requests are sent to
func (c *Client) APIURL() string {
	return c.apiURL
}

// LastDebug returns a copy of the diagnostic snapshot of the last request
func (c *Client) LastDebug() Debug {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.debug.clone()
}

func (c *Client) setDebug(d Debug) {
	c.mu.Lock()
	c.debug = d
	c.mu.Unlock()
}

// TestConnection verifies the credentials by fetching the current user
func (c *Client) TestConnection(ctx context.Context) (Response, error) {
	resp, err := c.Get(ctx, "/users/me.json", nil)
	if err != nil {
		return nil, fmt.Errorf("failed to connect to Zendesk: %w", err)
	}
	return resp, nil
}

// restyLogger routes resty's internal warnings through zerolog
type restyLogger struct {
	logger zerolog.Logger
}

func (l restyLogger) Errorf(format string, v ...any) {
	l.logger.Error().Msgf(strings.TrimSpace(format), v...)
}

func (l restyLogger) Warnf(format string, v ...any) {
	l.logger.Warn().Msgf(strings.TrimSpace(format), v...)
}

func (l restyLogger) Debugf(format string, v ...any) {
	l.logger.Debug().Msgf(strings.TrimSpace(format), v...)
}
