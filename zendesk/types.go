package zendesk

import (
	"fmt"
	"net/http"
	"strings"
)

// Params is a flat set of unencoded key-value pairs. It is used for query
// parameters (e.g. {"ids": "1,2,3"}) and JSON post fields.
type Params map[string]any

// Response is a JSON-decoded response body. No schema is applied.
type Response map[string]any

// RequestOptions configures a single dispatched request. Zero-valued
// fields fall back to the defaults: GET, application/json, no body.
type RequestOptions struct {
	// Method is the HTTP verb, e.g. "GET" or "POST"
	Method string
	// ContentType is sent as the Content-Type header
	ContentType string
	// PostFields is JSON-encoded as the request body when non-empty
	PostFields Params
	// QueryParams is encoded into the query string
	QueryParams Params
	// File is streamed as the body when PostFields is empty and the file exists
	File string
}

const (
	defaultMethod      = http.MethodGet
	defaultContentType = "application/json"
)

func (o RequestOptions) withDefaults() RequestOptions {
	if o.Method == "" {
		o.Method = defaultMethod
	}
	o.Method = strings.ToUpper(o.Method)
	if o.ContentType == "" {
		o.ContentType = defaultContentType
	}
	return o
}

// values renders the params as query string values. Slices are joined by commas.
func (p Params) values() map[string]string {
	out := make(map[string]string, len(p))
	for k, v := range p {
		out[k] = formatParam(v)
	}
	return out
}

func formatParam(v any) string {
	switch val := v.(type) {
	case nil:
		return ""
	case string:
		return val
	case []string:
		return strings.Join(val, ",")
	case []int:
		parts := make([]string, len(val))
		for i, n := range val {
			parts[i] = fmt.Sprint(n)
		}
		return strings.Join(parts, ",")
	case []int64:
		parts := make([]string, len(val))
		for i, n := range val {
			parts[i] = fmt.Sprint(n)
		}
		return strings.Join(parts, ",")
	case []any:
		parts := make([]string, len(val))
		for i, n := range val {
			parts[i] = formatParam(n)
		}
		return strings.Join(parts, ",")
	default:
		return fmt.Sprint(val)
	}
}

// Debug is the diagnostic snapshot of the last request made by a Client
type Debug struct {
	RequestID       string
	Method          string
	URL             string
	RequestHeaders  http.Header
	ResponseHeaders http.Header
	StatusCode      int
	// Raw is the status line and header block of the response
	Raw string
	// Error is the error payload reported by the API, if any
	Error Response
}

func (d Debug) clone() Debug {
	d.RequestHeaders = d.RequestHeaders.Clone()
	d.ResponseHeaders = d.ResponseHeaders.Clone()
	return d
}

// Token is the response of the OAuth token endpoint
type Token struct {
	AccessToken  string `json:"access_token"`
	TokenType    string `json:"token_type"`
	Scope        string `json:"scope"`
	RefreshToken string `json:"refresh_token,omitempty"`
	ExpiresIn    int64  `json:"expires_in,omitempty"`
	// Raw holds the full decoded response
	Raw Response `json:"-"`
}
