// Package connection provides the transport the record-store client
// runs on: an already-authenticated HTTP session capable of issuing
// signed JSON POST requests against a base service URL, with query
// parameters, headers, and cookie state carried transparently.
//
// The outer session bootstrap (login, device trust, cookie acquisition)
// is out of scope; callers hand a ready session to NewHTTP.
package connection

import (
	"context"
	"fmt"
)

// Transport issues one JSON POST round trip. body is marshaled as the
// request body; the response body is unmarshaled into out when out is
// non-nil. A non-2xx status yields a *RequestError.
type Transport interface {
	Post(ctx context.Context, path string, body, out any) error
}

// RequestError reports a failed round trip: either a network failure or
// a non-2xx response. It is fatal for the enclosing call and never
// retried automatically.
type RequestError struct {
	Path       string
	StatusCode int
	Body       string
	Err        error
}

func (e *RequestError) Error() string {
	if e.Err != nil {
		return fmt.Sprintf("request %s failed: %v", e.Path, e.Err)
	}
	body := e.Body
	if len(body) > 200 {
		body = body[:200]
	}
	return fmt.Sprintf("request %s failed with status %d: %s", e.Path, e.StatusCode, body)
}

func (e *RequestError) Unwrap() error { return e.Err }
