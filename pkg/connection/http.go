package connection

import (
	"bytes"
	"context"
	"encoding/json"
	"io"
	"net/http"
	"net/http/cookiejar"
	"net/url"
	"time"
)

// HTTP is the production Transport: a JSON POST client bound to a base
// service URL, with the session's query parameters, headers, and cookies
// attached to every request.
type HTTP struct {
	baseURL string
	query   url.Values
	headers http.Header

	httpClient *http.Client
}

// NewHTTPParams configures an HTTP transport.
type NewHTTPParams struct {
	// BaseURL is the service endpoint, without a trailing slash.
	BaseURL string
	// Query holds session query parameters appended to every request.
	Query url.Values
	// Headers holds session headers set on every request.
	Headers http.Header
	// Client optionally overrides the underlying http.Client.
	Client *http.Client
}

// NewHTTP builds an HTTP transport. When no client is supplied, one is
// created with a cookie jar and a default timeout so session cookies set
// by the server are carried across calls and no request hangs forever.
func NewHTTP(p NewHTTPParams) *HTTP {
	client := p.Client
	if client == nil {
		jar, _ := cookiejar.New(nil)
		client = &http.Client{
			Jar:     jar,
			Timeout: 30 * time.Second,
		}
	}
	return &HTTP{
		baseURL:    p.BaseURL,
		query:      p.Query,
		headers:    p.Headers,
		httpClient: client,
	}
}

// SetHTTPClient replaces the underlying http.Client, mainly for tests.
func (h *HTTP) SetHTTPClient(client *http.Client) *HTTP {
	h.httpClient = client
	return h
}

// Post implements Transport.
func (h *HTTP) Post(ctx context.Context, path string, body, out any) error {
	reqBody, err := json.Marshal(body)
	if err != nil {
		return &RequestError{Path: path, Err: err}
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, h.baseURL+path, bytes.NewReader(reqBody))
	if err != nil {
		return &RequestError{Path: path, Err: err}
	}
	if len(h.query) > 0 {
		q := req.URL.Query()
		for k, vs := range h.query {
			for _, v := range vs {
				q.Add(k, v)
			}
		}
		req.URL.RawQuery = q.Encode()
	}
	for k, vs := range h.headers {
		for _, v := range vs {
			req.Header.Add(k, v)
		}
	}
	req.Header.Set("Content-Type", "application/json")
	req.Header.Set("Accept", "application/json")

	resp, err := h.httpClient.Do(req)
	if err != nil {
		return &RequestError{Path: path, Err: err}
	}
	defer resp.Body.Close()

	respBody, err := io.ReadAll(resp.Body)
	if err != nil {
		return &RequestError{Path: path, StatusCode: resp.StatusCode, Err: err}
	}
	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		return &RequestError{Path: path, StatusCode: resp.StatusCode, Body: string(respBody)}
	}
	if out == nil {
		return nil
	}
	if err := json.Unmarshal(respBody, out); err != nil {
		return &RequestError{Path: path, StatusCode: resp.StatusCode, Err: err}
	}
	return nil
}
