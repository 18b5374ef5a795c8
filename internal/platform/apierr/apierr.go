package apierr

import (
	"errors"
	"fmt"
	"net/http"
)

// Kind names a failure class surfaced to API callers.
type Kind string

const (
	KindInvalidRequest        Kind = "invalid_request"
	KindConfiguration         Kind = "configuration_error"
	KindRateLimited           Kind = "upstream_rate_limited"
	KindBillingRequired       Kind = "upstream_billing_required"
	KindExtraction            Kind = "extraction_failure"
	KindParse                 Kind = "parse_failure"
	KindInsufficientResources Kind = "insufficient_resources"
	KindTransport             Kind = "transport_failure"
	KindUpstream              Kind = "upstream_failure"
)

type Error struct {
	Kind    Kind
	Status  int
	Message string
	Details string
	Err     error
}

func (e *Error) Error() string {
	if e == nil {
		return ""
	}
	if e.Message != "" {
		return e.Message
	}
	if e.Err != nil {
		return e.Err.Error()
	}
	if e.Kind != "" {
		return string(e.Kind)
	}
	if e.Status != 0 {
		return fmt.Sprintf("api error (%d)", e.Status)
	}
	return "api error"
}

func (e *Error) Unwrap() error { return e.Err }

func (e *Error) HTTPStatusCode() int {
	if e == nil {
		return http.StatusInternalServerError
	}
	if e.Status != 0 {
		return e.Status
	}
	return StatusForKind(e.Kind)
}

func (e *Error) WithDetails(details string) *Error {
	if e == nil {
		return nil
	}
	e.Details = details
	return e
}

func New(kind Kind, message string, err error) *Error {
	return &Error{Kind: kind, Status: StatusForKind(kind), Message: message, Err: err}
}

func Newf(kind Kind, format string, args ...any) *Error {
	return New(kind, fmt.Sprintf(format, args...), nil)
}

func StatusForKind(kind Kind) int {
	switch kind {
	case KindInvalidRequest:
		return http.StatusBadRequest
	case KindRateLimited:
		return http.StatusTooManyRequests
	case KindBillingRequired:
		return http.StatusPaymentRequired
	default:
		return http.StatusInternalServerError
	}
}

func As(err error) (*Error, bool) {
	var e *Error
	if errors.As(err, &e) && e != nil {
		return e, true
	}
	return nil, false
}

// KindOf returns the kind of the first *Error in err's chain, or "" when none.
func KindOf(err error) Kind {
	if e, ok := As(err); ok {
		return e.Kind
	}
	return ""
}

func Is(err error, kind Kind) bool {
	return err != nil && KindOf(err) == kind
}
