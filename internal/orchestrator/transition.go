package orchestrator

import (
	"errors"
	"net/http"
	"strings"

	"github.com/sony/gobreaker"

	"github.com/yungbote/learnmap-backend/internal/pkg/httpx"
	"github.com/yungbote/learnmap-backend/internal/provider"
)

type State int

const (
	StateIdle State = iota
	StateTrying
	StateSuccess
	StateNextCandidate
	StateFatal
)

func (s State) String() string {
	switch s {
	case StateIdle:
		return "idle"
	case StateTrying:
		return "trying"
	case StateSuccess:
		return "success"
	case StateNextCandidate:
		return "next_candidate"
	case StateFatal:
		return "fatal"
	default:
		return "unknown"
	}
}

// Reason labels why an attempt ended the way it did. It is used in logs,
// metrics and the exhaustion error.
type Reason string

const (
	ReasonOK                  Reason = "success"
	ReasonModelRejected       Reason = "model_rejected"
	ReasonTransport           Reason = "transport"
	ReasonUpstreamUnavailable Reason = "upstream_unavailable"
	ReasonEmptyCompletion     Reason = "empty_completion"
	ReasonCircuitOpen         Reason = "circuit_open"
	ReasonUnauthorized        Reason = "unauthorized"
	ReasonBillingRequired     Reason = "billing_required"
	ReasonRateLimited         Reason = "rate_limited"
	ReasonRejected            Reason = "rejected"
	ReasonCanceled            Reason = "canceled"
)

// Attempt is everything Transition needs to know about one call.
// CallerErr is the caller context's error observed after the call.
type Attempt struct {
	Candidate Candidate
	Text      string
	Err       error
	CallerErr error
}

type upstreamBody interface {
	UpstreamBody() string
}

// Transition maps the result of trying one candidate to the next state.
func Transition(a Attempt) (State, Reason) {
	if a.CallerErr != nil {
		return StateFatal, ReasonCanceled
	}
	if a.Err == nil {
		if strings.TrimSpace(a.Text) == "" {
			return StateNextCandidate, ReasonEmptyCompletion
		}
		return StateSuccess, ReasonOK
	}
	if errors.Is(a.Err, gobreaker.ErrOpenState) || errors.Is(a.Err, gobreaker.ErrTooManyRequests) {
		return StateNextCandidate, ReasonCircuitOpen
	}
	if errors.Is(a.Err, provider.ErrEmptyCompletion) {
		return StateNextCandidate, ReasonEmptyCompletion
	}

	status, ok := httpx.StatusCode(a.Err)
	if !ok {
		return StateNextCandidate, ReasonTransport
	}
	switch {
	case status == http.StatusUnauthorized || status == http.StatusForbidden:
		return StateFatal, ReasonUnauthorized
	case status == http.StatusPaymentRequired:
		return StateFatal, ReasonBillingRequired
	case status == http.StatusTooManyRequests:
		return StateFatal, ReasonRateLimited
	case status == http.StatusRequestTimeout || httpx.IsServerError(status):
		return StateNextCandidate, ReasonUpstreamUnavailable
	case status == http.StatusBadRequest || status == http.StatusNotFound || status == http.StatusUnprocessableEntity:
		if isModelRejection(a.Err) {
			return StateNextCandidate, ReasonModelRejected
		}
		return StateFatal, ReasonRejected
	default:
		return StateFatal, ReasonRejected
	}
}

func isModelRejection(err error) bool {
	var b upstreamBody
	text := err.Error()
	if errors.As(err, &b) {
		text += " " + b.UpstreamBody()
	}
	text = strings.ToLower(text)
	return strings.Contains(text, "model") || strings.Contains(text, "invalid")
}
