package lmsapi

import (
	"fmt"
	"net/http"
	"strings"

	"github.com/pkg/errors"
)

// RequestError is returned by every Client operation that did not get a 2xx response.
// StatusCode is 0 when no response was received at all.
type RequestError struct {
	Method     string
	Path       string
	StatusCode int
	Body       string
	Err        error
}

func (e *RequestError) Error() string {
	var b strings.Builder
	fmt.Fprintf(&b, "%s %s", e.Method, e.Path)
	if e.StatusCode != 0 {
		fmt.Fprintf(&b, ": %d %s", e.StatusCode, http.StatusText(e.StatusCode))
	}
	if body := strings.TrimSpace(e.Body); body != "" {
		fmt.Fprintf(&b, ": %s", body)
	}
	if e.Err != nil {
		fmt.Fprintf(&b, ": %v", e.Err)
	}
	return b.String()
}

// Unwrap exposes the transport error. There is no Cause method, so errors.Cause stops at a *RequestError.
func (e *RequestError) Unwrap() error { return e.Err }

// StatusCode returns the HTTP status carried by err, 0 if err is not a *RequestError or carries none.
func StatusCode(err error) int {
	var reqErr *RequestError
	if errors.As(err, &reqErr) {
		return reqErr.StatusCode
	}
	return 0
}

// IsNotFound reports whether err is a 404 from the API.
func IsNotFound(err error) bool {
	return StatusCode(err) == http.StatusNotFound
}
