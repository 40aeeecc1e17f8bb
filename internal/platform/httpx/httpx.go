package httpx

import (
	"context"
	"errors"
	"net"
	"net/http"
	"strings"
)

type HTTPStatusCoder interface {
	HTTPStatusCode() int
}

func IsRetryableHTTPStatus(code int) bool {
	if code == http.StatusRequestTimeout || code == http.StatusTooManyRequests {
		return true
	}
	return code >= 500 && code <= 599
}

// IsTransient reports whether err looks like an upstream hiccup (timeouts,
// connection errors, 408/429/5xx) as opposed to a definitive answer.
func IsTransient(err error) bool {
	if err == nil {
		return false
	}
	if errors.Is(err, context.DeadlineExceeded) {
		return true
	}
	if errors.Is(err, context.Canceled) {
		return false
	}
	var netErr net.Error
	if errors.As(err, &netErr) {
		return true
	}
	var sc HTTPStatusCoder
	if errors.As(err, &sc) {
		return IsRetryableHTTPStatus(sc.HTTPStatusCode())
	}
	return false
}

// StatusCode extracts an upstream HTTP status from err, or 0.
func StatusCode(err error) int {
	var sc HTTPStatusCoder
	if errors.As(err, &sc) {
		return sc.HTTPStatusCode()
	}
	return 0
}

// Truncate trims an upstream body for error messages.
func Truncate(body []byte, max int) string {
	msg := strings.TrimSpace(string(body))
	if msg == "" {
		return "<empty body>"
	}
	if max > 0 && len(msg) > max {
		return msg[:max] + "..."
	}
	return msg
}
