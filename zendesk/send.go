package zendesk

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io/fs"
	"net/http"
	"net/http/httputil"
	"os"

	"github.com/google/uuid"
)

const headerRequestID = "X-Request-Id"

// Send dispatches a request to {apiURL}{endpoint}, e.g. "/tickets.json",
// and returns the decoded JSON body.
//
// Transport failures wrap ErrTransport. Responses with a status of 400 or
// above are returned as *APIError; the debug snapshot is recorded either way.
func (c *Client) Send(ctx context.Context, endpoint string, opts RequestOptions) (Response, error) {
	opts = opts.withDefaults()
	requestID := uuid.NewString()
	requestURL := c.apiURL + endpoint

	req := c.http.R().
		SetContext(ctx).
		SetHeader("Accept", "application/json").
		SetHeader("Content-Type", opts.ContentType).
		SetHeader(headerRequestID, requestID)

	if len(opts.QueryParams) > 0 {
		req.SetQueryParams(opts.QueryParams.values())
	}

	if len(opts.PostFields) > 0 {
		body, err := json.Marshal(opts.PostFields)
		if err != nil {
			return nil, fmt.Errorf("failed to encode post fields: %w", err)
		}
		req.SetBody(body)
	} else if opts.File != "" {
		file, err := openUpload(opts.File)
		if err != nil {
			return nil, err
		}
		if file != nil {
			defer file.Close()
			req.SetBody(file)
		} else {
			c.logger.Debug().Str("file", opts.File).Msg("Upload file does not exist, sending without body")
		}
	}

	c.logger.Debug().
		Str("method", opts.Method).
		Str("url", requestURL).
		Str("request_id", requestID).
		Msg("Making Zendesk API request")

	resp, err := req.Execute(opts.Method, requestURL)
	if err != nil {
		return nil, fmt.Errorf("%w: %s %s: %w", ErrTransport, opts.Method, endpoint, err)
	}

	debug := Debug{
		RequestID:       requestID,
		Method:          opts.Method,
		URL:             requestURL,
		ResponseHeaders: resp.Header().Clone(),
		StatusCode:      resp.StatusCode(),
		Raw:             rawHeaderBlock(resp.RawResponse),
	}
	if resp.Request != nil && resp.Request.RawRequest != nil {
		debug.RequestHeaders = redactHeaders(resp.Request.RawRequest.Header)
	}

	body := resp.Body()
	parsed, decodeErr := decodeResponse(body)

	if resp.StatusCode() >= http.StatusBadRequest {
		debug.Error = parsed
		c.setDebug(debug)
		apiErr := newAPIError(resp.StatusCode(), body, parsed)
		c.logger.Debug().
			Int("status", apiErr.StatusCode).
			Str("request_id", requestID).
			Str("message", apiErr.Message).
			Msg("Zendesk API returned an error")
		return nil, apiErr
	}

	c.setDebug(debug)

	if decodeErr != nil {
		return nil, decodeErr
	}
	return parsed, nil
}

// Get sends a GET request with the given query parameters
func (c *Client) Get(ctx context.Context, endpoint string, query Params) (Response, error) {
	return c.Send(ctx, endpoint, RequestOptions{Method: http.MethodGet, QueryParams: query})
}

// Post sends a POST request with body encoded as JSON
func (c *Client) Post(ctx context.Context, endpoint string, body Params) (Response, error) {
	return c.Send(ctx, endpoint, RequestOptions{Method: http.MethodPost, PostFields: body})
}

// Put sends a PUT request with body encoded as JSON
func (c *Client) Put(ctx context.Context, endpoint string, body Params) (Response, error) {
	return c.Send(ctx, endpoint, RequestOptions{Method: http.MethodPut, PostFields: body})
}

// Delete sends a DELETE request
func (c *Client) Delete(ctx context.Context, endpoint string) (Response, error) {
	return c.Send(ctx, endpoint, RequestOptions{Method: http.MethodDelete})
}

// Upload streams the file at path as the body of a POST request
func (c *Client) Upload(ctx context.Context, endpoint, path, contentType string, query Params) (Response, error) {
	return c.Send(ctx, endpoint, RequestOptions{
		Method:      http.MethodPost,
		ContentType: contentType,
		QueryParams: query,
		File:        path,
	})
}

// openUpload opens the file to stream. A missing file is not an error and
// yields a nil file.
func openUpload(path string) (*os.File, error) {
	file, err := os.Open(path)
	if errors.Is(err, fs.ErrNotExist) {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("failed to open upload file: %w", err)
	}
	return file, nil
}

// decodeResponse decodes a JSON object. An empty body yields a nil Response.
func decodeResponse(body []byte) (Response, error) {
	if len(bytes.TrimSpace(body)) == 0 {
		return nil, nil
	}
	var parsed Response
	if err := json.Unmarshal(body, &parsed); err != nil {
		return nil, fmt.Errorf("%w: %w", ErrDecode, err)
	}
	return parsed, nil
}

// rawHeaderBlock renders the status line and headers of resp
func rawHeaderBlock(resp *http.Response) string {
	if resp == nil {
		return ""
	}
	dump, err := httputil.DumpResponse(resp, false)
	if err != nil {
		return ""
	}
	return string(dump)
}

func redactHeaders(h http.Header) http.Header {
	out := h.Clone()
	if out.Get("Authorization") != "" {
		out.Set("Authorization", "[redacted]")
	}
	return out
}
