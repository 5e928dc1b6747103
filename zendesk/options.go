package zendesk

import (
	"net/http"
	"time"
)

// Option configures a Client.
type Option func(*clientOptions)

// clientOptions holds configuration options for the Client.
type clientOptions struct {
	apiURL          string
	oauthURL        string
	timeout         time.Duration
	userAgent       string
	insecure        bool
	email           string
	apiToken        string
	password        string
	oauthToken      string
	httpClient      *http.Client
	oauthHTTPClient *http.Client
	concurrency     int
}

func defaultOptions() clientOptions {
	return clientOptions{
		timeout:     30 * time.Second,
		userAgent:   "zendesk-go",
		concurrency: 5,
	}
}

// WithAPIURL overrides the API base URL (default https://{subdomain}.zendesk.com/api/v2).
func WithAPIURL(apiURL string) Option {
	return func(o *clientOptions) {
		o.apiURL = apiURL
	}
}

// WithOAuthTokenURL overrides the OAuth token endpoint.
func WithOAuthTokenURL(tokenURL string) Option {
	return func(o *clientOptions) {
		o.oauthURL = tokenURL
	}
}

// WithTimeout sets the HTTP client timeout.
func WithTimeout(timeout time.Duration) Option {
	return func(o *clientOptions) {
		if timeout > 0 {
			o.timeout = timeout
		}
	}
}

// WithUserAgent sets a custom user agent string.
func WithUserAgent(userAgent string) Option {
	return func(o *clientOptions) {
		o.userAgent = userAgent
	}
}

// WithInsecureSkipVerify disables certificate verification.
// Use with caution and only for development/testing.
func WithInsecureSkipVerify() Option {
	return func(o *clientOptions) {
		o.insecure = true
	}
}

// WithAPIToken authenticates as "{email}/token" using an API token.
func WithAPIToken(email, token string) Option {
	return func(o *clientOptions) {
		o.email = email
		o.apiToken = token
	}
}

// WithPassword authenticates with an agent email and password.
func WithPassword(email, password string) Option {
	return func(o *clientOptions) {
		o.email = email
		o.password = password
	}
}

// WithOAuthToken authenticates with a bearer access token.
func WithOAuthToken(token string) Option {
	return func(o *clientOptions) {
		o.oauthToken = token
	}
}

// WithHTTPClient sets the http.Client resty sends requests through.
func WithHTTPClient(client *http.Client) Option {
	return func(o *clientOptions) {
		o.httpClient = client
	}
}

// WithOAuthHTTPClient sets the low-level http.Client used for the token exchange.
func WithOAuthHTTPClient(client *http.Client) Option {
	return func(o *clientOptions) {
		o.oauthHTTPClient = client
	}
}

// WithConcurrency limits how many pages FetchAll requests at once.
func WithConcurrency(n int) Option {
	return func(o *clientOptions) {
		if n > 0 {
			o.concurrency = n
		}
	}
}
