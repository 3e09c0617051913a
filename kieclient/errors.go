package kieclient

import (
	"fmt"
	"net/http"

	"github.com/pkg/errors"
)

var (
	ErrBadRequest = errors.New("bad request")
	ErrNotFound   = errors.New("not found")
	ErrConflict   = errors.New("conflict")
	ErrServer     = errors.New("server error")
	ErrUnexpected = errors.New("unexpected response")
)

// ResponseError is returned for any response whose status is not 2xx. It unwraps to one of the
// sentinel errors above, so callers can use errors.Is.
type ResponseError struct {
	Method     string
	URL        string
	StatusCode int
	Body       string
	cause      error
}

func newResponseError(method, url string, status int, body []byte) *ResponseError {
	var sentinel error
	switch {
	case status == http.StatusBadRequest:
		sentinel = ErrBadRequest
	case status == http.StatusNotFound:
		sentinel = ErrNotFound
	case status == http.StatusConflict:
		sentinel = ErrConflict
	case status >= 500:
		sentinel = ErrServer
	default:
		sentinel = ErrUnexpected
	}
	return &ResponseError{
		Method:     method,
		URL:        url,
		StatusCode: status,
		Body:       string(body),
		cause:      errors.Wrapf(sentinel, "status %d", status),
	}
}

func (e *ResponseError) Error() string {
	return fmt.Sprintf("%s %s: %s", e.Method, e.URL, e.cause)
}

func (e *ResponseError) Unwrap() error { return e.cause }

// StatusCode returns the HTTP status of a *ResponseError anywhere in err's chain, or 0.
func StatusCode(err error) int {
	var re *ResponseError
	if errors.As(err, &re) {
		return re.StatusCode
	}
	return 0
}
