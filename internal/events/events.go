package events

import (
	"context"
	"time"
)

type Type string

const (
	MapGenerated Type = "map.generated"
	MapFailed    Type = "map.failed"
)

// Event summarizes one map generation request. It never carries the map
// itself.
type Event struct {
	Type       Type      `json:"type"`
	RequestID  string    `json:"requestId,omitempty"`
	Topic      string    `json:"topic"`
	Level      string    `json:"level,omitempty"`
	Provider   string    `json:"provider,omitempty"`
	Model      string    `json:"model,omitempty"`
	Attempts   int       `json:"attempts,omitempty"`
	Nodes      int       `json:"nodes,omitempty"`
	Resources  int       `json:"resources,omitempty"`
	Probed     int       `json:"probed,omitempty"`
	Reachable  int       `json:"reachable,omitempty"`
	ErrorKind  string    `json:"errorKind,omitempty"`
	Error      string    `json:"error,omitempty"`
	DurationMS int64     `json:"durationMs"`
	At         time.Time `json:"at"`
}

type Bus interface {
	Publish(ctx context.Context, ev Event) error
	StartForwarder(ctx context.Context, onEvent func(Event)) error
	Close() error
}

// NopBus drops every event. It is used when no broker is configured.
type NopBus struct{}

func (NopBus) Publish(context.Context, Event) error { return nil }
func (NopBus) StartForwarder(context.Context, func(Event)) error { return nil }
func (NopBus) Close() error { return nil }
