package events

import (
	"context"
	"strings"
	"testing"
	"time"

	"github.com/yungbote/learnmap-backend/internal/platform/logger"
)

func TestEncodeDecode(t *testing.T) {
	raw, err := encode(Event{Type: MapGenerated, Topic: "Go", Probed: 4, Reachable: 3})
	if err != nil {
		t.Fatalf("encode: %v", err)
	}
	if !strings.Contains(string(raw), `"type":"map.generated"`) {
		t.Fatalf("unexpected payload %s", raw)
	}
	ev, err := decode(string(raw))
	if err != nil {
		t.Fatalf("decode: %v", err)
	}
	if ev.Topic != "Go" || ev.Reachable != 3 || ev.At.IsZero() {
		t.Fatalf("unexpected event %+v", ev)
	}
}

func TestDecodeRejectsUntyped(t *testing.T) {
	if _, err := decode(`{"topic":"Go"}`); err == nil {
		t.Fatalf("expected error for event without type")
	}
	if _, err := decode(`not json`); err == nil {
		t.Fatalf("expected error for invalid payload")
	}
}

func TestNopBus(t *testing.T) {
	var b Bus = NopBus{}
	if err := b.Publish(context.Background(), Event{Type: MapFailed}); err != nil {
		t.Fatalf("Publish: %v", err)
	}
	if err := b.StartForwarder(context.Background(), func(Event) {}); err != nil {
		t.Fatalf("StartForwarder: %v", err)
	}
	if err := b.Close(); err != nil {
		t.Fatalf("Close: %v", err)
	}
}

func TestNewRedisBusValidation(t *testing.T) {
	if _, err := NewRedisBus(nil, "127.0.0.1:6379", ""); err == nil {
		t.Fatalf("expected error without logger")
	}
	if _, err := NewRedisBus(logger.NewNop(), " ", ""); err == nil {
		t.Fatalf("expected error without addr")
	}
}

func TestNewRedisBusUnreachable(t *testing.T) {
	start := time.Now()
	// Port 1 on loopback refuses connections.
	if _, err := NewRedisBus(logger.NewNop(), "127.0.0.1:1", ""); err == nil {
		t.Fatalf("expected ping failure")
	}
	if time.Since(start) > 10*time.Second {
		t.Fatalf("ping did not respect its timeout")
	}
}
