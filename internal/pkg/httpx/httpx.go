package httpx

import (
	"context"
	"errors"
	"net"
	"net/http"
	"net/url"
	"strconv"
	"strings"
	"time"
)

type HTTPStatusCoder interface {
	HTTPStatusCode() int
}

// StatusCode reports the upstream HTTP status carried by err, if any.
func StatusCode(err error) (int, bool) {
	var sc HTTPStatusCoder
	if errors.As(err, &sc) {
		return sc.HTTPStatusCode(), true
	}
	return 0, false
}

func IsServerError(code int) bool {
	return code >= 500 && code <= 599
}

// IsReachableStatus is true for 2xx and 3xx.
func IsReachableStatus(code int) bool {
	return code >= 200 && code < 400
}

// IsMethodRejected covers servers that refuse HEAD outright.
func IsMethodRejected(code int) bool {
	return code == http.StatusMethodNotAllowed || code == http.StatusNotImplemented
}

// IsTransportError is true when err never produced an HTTP status: dial,
// TLS, timeout or a truncated response.
func IsTransportError(err error) bool {
	if err == nil {
		return false
	}
	if _, ok := StatusCode(err); ok {
		return false
	}
	if errors.Is(err, context.DeadlineExceeded) {
		return true
	}
	var netErr net.Error
	if errors.As(err, &netErr) {
		return true
	}
	var urlErr *url.Error
	return errors.As(err, &urlErr)
}

// RetryAfter parses a Retry-After header given in seconds.
func RetryAfter(h http.Header, max time.Duration) time.Duration {
	if h == nil {
		return 0
	}
	ra := strings.TrimSpace(h.Get("Retry-After"))
	if ra == "" {
		return 0
	}
	secs, err := strconv.Atoi(ra)
	if err != nil || secs <= 0 {
		return 0
	}
	d := time.Duration(secs) * time.Second
	if max > 0 && d > max {
		d = max
	}
	return d
}
