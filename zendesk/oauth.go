package zendesk

import (
	"bytes"
	"context"
	"crypto/tls"
	"encoding/json"
	"fmt"
	"io"
	"net"
	"net/http"
	"net/http/httptrace"
	"sync"
	"time"
)

const (
	oauthTimeout      = 30 * time.Second
	oauthMaxRedirects = 3
	oauthScope        = "read"
)

// OAuthCredentials identify the OAuth client performing the exchange
type OAuthCredentials struct {
	ClientID     string
	ClientSecret string
	RedirectURI  string
}

// tokenRequest is the JSON body posted to the token endpoint
type tokenRequest struct {
	GrantType    string `json:"grant_type"`
	Code         string `json:"code"`
	ClientID     string `json:"client_id"`
	ClientSecret string `json:"client_secret"`
	RedirectURI  string `json:"redirect_uri"`
	Scope        string `json:"scope"`
}

// newOAuthHTTPClient builds the low-level client used for token exchange:
// 30s connect and total timeouts, at most 3 redirects.
func newOAuthHTTPClient(insecure bool) *http.Client {
	dialer := &net.Dialer{Timeout: oauthTimeout}
	transport := &http.Transport{
		Proxy:               http.ProxyFromEnvironment,
		DialContext:         dialer.DialContext,
		TLSHandshakeTimeout: oauthTimeout,
		TLSClientConfig:     &tls.Config{InsecureSkipVerify: insecure}, //nolint:gosec
	}

	return &http.Client{
		Timeout:       oauthTimeout,
		Transport:     transport,
		CheckRedirect: limitRedirects(oauthMaxRedirects),
	}
}

func limitRedirects(max int) func(*http.Request, []*http.Request) error {
	return func(req *http.Request, via []*http.Request) error {
		if len(via) > max {
			return fmt.Errorf("stopped after %d redirects", max)
		}
		return nil
	}
}

// ExchangeOAuthCode exchanges an authorization code for an access token.
//
// The request bypasses the resty transport and goes through the client's
// low-level OAuth http.Client. Outbound headers are captured on the wire
// and recorded in the debug snapshot together with the raw header block of
// the response.
func (c *Client) ExchangeOAuthCode(ctx context.Context, code string, creds OAuthCredentials) (*Token, error) {
	if code == "" {
		return nil, fmt.Errorf("%w: authorization code is required", ErrInvalidConfig)
	}
	if creds.ClientID == "" || creds.ClientSecret == "" {
		return nil, fmt.Errorf("%w: oauth client id and secret are required", ErrInvalidConfig)
	}
	if creds.RedirectURI == "" {
		return nil, fmt.Errorf("%w: oauth redirect uri is required", ErrInvalidConfig)
	}

	payload, err := json.Marshal(tokenRequest{
		GrantType:    "authorization_code",
		Code:         code,
		ClientID:     creds.ClientID,
		ClientSecret: creds.ClientSecret,
		RedirectURI:  creds.RedirectURI,
		Scope:        oauthScope,
	})
	if err != nil {
		return nil, fmt.Errorf("failed to encode token request: %w", err)
	}

	capture := &headerCapture{}
	ctx = httptrace.WithClientTrace(ctx, c.traceRequest(capture))

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, c.oauthURL, bytes.NewReader(payload))
	if err != nil {
		return nil, fmt.Errorf("failed to create request: %w", err)
	}
	req.Header.Set("Content-Type", "application/json")

	c.logger.Debug().Str("url", c.oauthURL).Msg("Exchanging OAuth authorization code")

	resp, err := c.oauthHTTP.Do(req)
	if err != nil {
		return nil, fmt.Errorf("%w: oauth token exchange: %w", ErrTransport, err)
	}
	defer resp.Body.Close()

	headerBlock := rawHeaderBlock(resp)

	body, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, fmt.Errorf("%w: failed to read token response: %w", ErrTransport, err)
	}

	parsed, decodeErr := decodeResponse(body)

	debug := Debug{
		Method:          http.MethodPost,
		URL:             c.oauthURL,
		RequestHeaders:  redactHeaders(capture.headers()),
		ResponseHeaders: resp.Header.Clone(),
		StatusCode:      resp.StatusCode,
		Raw:             headerBlock,
	}
	if _, ok := parsed["error"]; ok {
		debug.Error = parsed
	}
	c.setDebug(debug)

	if debug.Error != nil || resp.StatusCode >= http.StatusBadRequest {
		return nil, newAPIError(resp.StatusCode, body, parsed)
	}
	if decodeErr != nil {
		return nil, decodeErr
	}

	token := &Token{Raw: parsed}
	if err := json.Unmarshal(body, token); err != nil {
		return nil, fmt.Errorf("%w: %w", ErrDecode, err)
	}

	c.logger.Info().Str("token_type", token.TokenType).Str("scope", token.Scope).Msg("OAuth token issued")
	return token, nil
}

// traceRequest logs connection events at trace level and records every
// header field written for the final request.
func (c *Client) traceRequest(capture *headerCapture) *httptrace.ClientTrace {
	return &httptrace.ClientTrace{
		GetConn: func(hostPort string) {
			capture.reset()
			c.logger.Trace().Str("host", hostPort).Msg("Acquiring connection")
		},
		GotConn: func(info httptrace.GotConnInfo) {
			c.logger.Trace().
				Str("remote", info.Conn.RemoteAddr().String()).
				Bool("reused", info.Reused).
				Msg("Connection established")
		},
		TLSHandshakeDone: func(state tls.ConnectionState, err error) {
			c.logger.Trace().Err(err).Uint16("version", state.Version).Msg("TLS handshake done")
		},
		WroteHeaderField: func(key string, value []string) {
			capture.add(key, value)
		},
		GotFirstResponseByte: func() {
			c.logger.Trace().Msg("Received first response byte")
		},
	}
}

// headerCapture accumulates the outbound header fields of a request
type headerCapture struct {
	mu sync.Mutex
	h  http.Header
}

func (hc *headerCapture) reset() {
	hc.mu.Lock()
	hc.h = http.Header{}
	hc.mu.Unlock()
}

func (hc *headerCapture) add(key string, value []string) {
	hc.mu.Lock()
	defer hc.mu.Unlock()
	if hc.h == nil {
		hc.h = http.Header{}
	}
	for _, v := range value {
		hc.h.Add(key, v)
	}
}

func (hc *headerCapture) headers() http.Header {
	hc.mu.Lock()
	defer hc.mu.Unlock()
	return hc.h.Clone()
}

// RedirectURIFromRequest rebuilds the URL of an incoming request, for use
// as the redirect_uri of a token exchange performed while handling it.
func RedirectURIFromRequest(r *http.Request) string {
	scheme := "http"
	if r.TLS != nil || r.Header.Get("X-Forwarded-Proto") == "https" {
		scheme = "https"
	}
	return scheme + "://" + r.Host + r.URL.Path
}
