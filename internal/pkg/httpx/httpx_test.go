package httpx

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"net/url"
	"testing"
	"time"
)

type statusErr int

func (e statusErr) Error() string       { return fmt.Sprintf("status %d", int(e)) }
func (e statusErr) HTTPStatusCode() int { return int(e) }

func TestStatusCodeUnwraps(t *testing.T) {
	err := fmt.Errorf("call: %w", statusErr(429))
	code, ok := StatusCode(err)
	if !ok || code != 429 {
		t.Fatalf("code=%d ok=%v", code, ok)
	}
	if _, ok := StatusCode(errors.New("x")); ok {
		t.Fatalf("plain error should have no status")
	}
}

func TestIsTransportError(t *testing.T) {
	if !IsTransportError(&url.Error{Op: "Post", URL: "https://api.example", Err: errors.New("connection refused")}) {
		t.Fatalf("url.Error should be transport")
	}
	if !IsTransportError(fmt.Errorf("wrap: %w", context.DeadlineExceeded)) {
		t.Fatalf("deadline should be transport")
	}
	if IsTransportError(statusErr(503)) {
		t.Fatalf("status error is not transport")
	}
	if IsTransportError(nil) {
		t.Fatalf("nil is not transport")
	}
}

func TestStatusClasses(t *testing.T) {
	if !IsReachableStatus(200) || !IsReachableStatus(399) || IsReachableStatus(400) || IsReachableStatus(199) {
		t.Fatalf("reachable boundaries wrong")
	}
	if !IsMethodRejected(405) || !IsMethodRejected(501) || IsMethodRejected(404) {
		t.Fatalf("method rejected wrong")
	}
	if !IsServerError(500) || IsServerError(499) {
		t.Fatalf("server error wrong")
	}
}

func TestRetryAfter(t *testing.T) {
	h := http.Header{}
	h.Set("Retry-After", "120")
	if got := RetryAfter(h, time.Minute); got != time.Minute {
		t.Fatalf("got %v", got)
	}
	h.Set("Retry-After", "Wed, 21 Oct 2015 07:28:00 GMT")
	if got := RetryAfter(h, time.Minute); got != 0 {
		t.Fatalf("got %v", got)
	}
}
