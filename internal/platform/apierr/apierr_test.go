package apierr

import (
	"errors"
	"fmt"
	"net/http"
	"testing"
)

func TestStatusForKind(t *testing.T) {
	cases := map[Kind]int{
		KindInvalidRequest:        http.StatusBadRequest,
		KindRateLimited:           http.StatusTooManyRequests,
		KindBillingRequired:       http.StatusPaymentRequired,
		KindConfiguration:         http.StatusInternalServerError,
		KindExtraction:            http.StatusInternalServerError,
		KindParse:                 http.StatusInternalServerError,
		KindInsufficientResources: http.StatusInternalServerError,
		KindTransport:             http.StatusInternalServerError,
		KindUpstream:              http.StatusInternalServerError,
	}
	for kind, want := range cases {
		if got := New(kind, "x", nil).HTTPStatusCode(); got != want {
			t.Fatalf("%s: got %d want %d", kind, got, want)
		}
	}
}

func TestKindOfThroughWrapping(t *testing.T) {
	base := New(KindParse, "Failed to parse AI response", errors.New("unexpected character"))
	wrapped := fmt.Errorf("generate: %w", base)
	if KindOf(wrapped) != KindParse {
		t.Fatalf("kind=%q", KindOf(wrapped))
	}
	if !Is(wrapped, KindParse) || Is(nil, KindParse) {
		t.Fatalf("Is mismatch")
	}
	if KindOf(errors.New("plain")) != "" {
		t.Fatalf("plain error should have no kind")
	}
}

func TestErrorMessagePrecedence(t *testing.T) {
	e := New(KindUpstream, "", errors.New("boom"))
	if e.Error() != "boom" {
		t.Fatalf("got %q", e.Error())
	}
	e = New(KindUpstream, "upstream failed", errors.New("boom")).WithDetails("status=503")
	if e.Error() != "upstream failed" || e.Details != "status=503" {
		t.Fatalf("got %q / %q", e.Error(), e.Details)
	}
}
