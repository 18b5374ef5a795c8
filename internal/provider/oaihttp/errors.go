package oaihttp

import (
	"encoding/json"
	"fmt"
	"strings"
	"time"
)

type HTTPError struct {
	StatusCode int
	Message    string
	Body       string
	RetryAfter time.Duration
}

func (e *HTTPError) Error() string {
	if e == nil {
		return "upstream http error"
	}
	if e.Message != "" {
		return fmt.Sprintf("upstream http error: status=%d message=%s", e.StatusCode, e.Message)
	}
	if e.Body == "" {
		return fmt.Sprintf("upstream http error: status=%d", e.StatusCode)
	}
	return fmt.Sprintf("upstream http error: status=%d body=%s", e.StatusCode, e.Body)
}

func (e *HTTPError) HTTPStatusCode() int {
	if e == nil {
		return 0
	}
	return e.StatusCode
}

// UpstreamBody is the raw response body, used to recognise model rejections.
func (e *HTTPError) UpstreamBody() string {
	if e == nil {
		return ""
	}
	return e.Body
}

func (e *HTTPError) RetryAfterSeconds() int {
	if e == nil {
		return 0
	}
	return int(e.RetryAfter / time.Second)
}

func parseHTTPError(status int, raw []byte, retryAfter time.Duration) *HTTPError {
	body := strings.TrimSpace(string(raw))
	out := &HTTPError{StatusCode: status, Body: body, RetryAfter: retryAfter}

	var env struct {
		Error struct {
			Message string `json:"message"`
			Type    string `json:"type"`
			Code    any    `json:"code,omitempty"`
		} `json:"error"`
	}
	if err := json.Unmarshal(raw, &env); err == nil {
		out.Message = strings.TrimSpace(env.Error.Message)
	}
	return out
}
