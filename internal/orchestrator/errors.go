package orchestrator

import (
	"errors"
	"fmt"
	"strings"

	"github.com/yungbote/learnmap-backend/internal/pkg/httpx"
	"github.com/yungbote/learnmap-backend/internal/platform/apierr"
)

type AttemptFailure struct {
	Candidate Candidate
	Reason    Reason
	Status    int
	Err       error
}

func (f AttemptFailure) String() string {
	if f.Status != 0 {
		return fmt.Sprintf("%s: %s (status %d)", f.Candidate, f.Reason, f.Status)
	}
	return fmt.Sprintf("%s: %s", f.Candidate, f.Reason)
}

func newFailure(c Candidate, reason Reason, err error) AttemptFailure {
	f := AttemptFailure{Candidate: c, Reason: reason, Err: err}
	if status, ok := httpx.StatusCode(err); ok {
		f.Status = status
	}
	return f
}

// ExhaustedError means every candidate ended in NextCandidate.
type ExhaustedError struct {
	Failures []AttemptFailure
}

func (e *ExhaustedError) Error() string {
	if e == nil || len(e.Failures) == 0 {
		return "no provider candidates configured"
	}
	parts := make([]string, 0, len(e.Failures))
	for _, f := range e.Failures {
		parts = append(parts, f.String())
	}
	return fmt.Sprintf("all %d provider candidates failed: %s", len(e.Failures), strings.Join(parts, "; "))
}

func (e *ExhaustedError) Unwrap() []error {
	if e == nil {
		return nil
	}
	out := make([]error, 0, len(e.Failures))
	for _, f := range e.Failures {
		if f.Err != nil {
			out = append(out, f.Err)
		}
	}
	return out
}

func (e *ExhaustedError) allTransport() bool {
	if e == nil || len(e.Failures) == 0 {
		return false
	}
	for _, f := range e.Failures {
		if f.Reason != ReasonTransport {
			return false
		}
	}
	return true
}

func exhaustedError(ex *ExhaustedError) *apierr.Error {
	if ex.allTransport() {
		return apierr.New(apierr.KindTransport, "AI provider is unreachable. Please try again.", ex).WithDetails(ex.Error())
	}
	return apierr.New(apierr.KindUpstream, "All AI provider candidates failed", ex).WithDetails(ex.Error())
}

func fatalError(f AttemptFailure) *apierr.Error {
	switch f.Reason {
	case ReasonRateLimited:
		e := apierr.New(apierr.KindRateLimited, "Rate limit exceeded. Please try again in a moment.", f.Err)
		var ra interface{ RetryAfterSeconds() int }
		if errors.As(f.Err, &ra) && ra.RetryAfterSeconds() > 0 {
			e.Details = fmt.Sprintf("retry after %ds", ra.RetryAfterSeconds())
		}
		return e
	case ReasonBillingRequired:
		return apierr.New(apierr.KindBillingRequired, "AI service payment required. Please contact support.", f.Err)
	case ReasonUnauthorized:
		return apierr.New(apierr.KindConfiguration, "AI provider rejected the configured credentials", f.Err).
			WithDetails(f.String())
	case ReasonCanceled:
		return apierr.New(apierr.KindUpstream, "Request cancelled", f.Err)
	default:
		e := apierr.New(apierr.KindUpstream, fmt.Sprintf("AI Gateway error: %d", f.Status), f.Err)
		if f.Err != nil {
			e.Details = truncate(f.Err.Error(), 500)
		}
		return e
	}
}

func truncate(s string, n int) string {
	r := []rune(s)
	if len(r) <= n {
		return s
	}
	return string(r[:n])
}
