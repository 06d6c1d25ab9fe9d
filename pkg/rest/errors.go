package rest

import (
	"errors"
	"fmt"
	"io"
	"net/http"
)

// maxErrorBody limits how much of an error response body is retained for
// diagnostics.
const maxErrorBody = 4096

// TransportError reports a network or connection failure before an HTTP
// response was received. It is not recoverable locally and is always
// propagated to the caller.
type TransportError struct {
	URL string
	Err error
}

func (e *TransportError) Error() string {
	return fmt.Sprintf("request to %s failed: %v", e.URL, e.Err)
}

func (e *TransportError) Unwrap() error {
	return e.Err
}

// HTTPStatusError reports a non-2xx HTTP response. Body holds an excerpt of
// the response payload for diagnosis without re-querying the server.
type HTTPStatusError struct {
	StatusCode int
	Status     string
	URL        string
	Body       []byte
}

func (e *HTTPStatusError) Error() string {
	msg := fmt.Sprintf("%s returned %s", e.URL, e.Status)
	if hint := e.Hint(); hint != "" {
		msg += " (" + hint + ")"
	}
	return msg
}

// Hint returns an explanation for misconfiguration classes this client can
// recognize, currently the 404 caused by a base URL without a trailing slash.
// It returns an empty string when no hint applies.
func (e *HTTPStatusError) Hint() string {
	if e.StatusCode == http.StatusNotFound {
		return "a 404 from the server root often means the base URL is missing its trailing slash"
	}
	return ""
}

// StatusError unwraps err as an *HTTPStatusError.
func StatusError(err error) (*HTTPStatusError, bool) {
	var se *HTTPStatusError
	ok := errors.As(err, &se)
	return se, ok
}

// IsNotFound reports whether err is an HTTP 404 response.
func IsNotFound(err error) bool {
	se, ok := StatusError(err)
	return ok && se.StatusCode == http.StatusNotFound
}

// newStatusError captures the response status and a bounded body excerpt.
// The response body is left for the caller to close.
func newStatusError(resp *http.Response) *HTTPStatusError {
	body, _ := io.ReadAll(io.LimitReader(resp.Body, maxErrorBody))
	return &HTTPStatusError{
		StatusCode: resp.StatusCode,
		Status:     resp.Status,
		URL:        resp.Request.URL.String(),
		Body:       body,
	}
}
