package provider

import (
	"context"
	"errors"
)

type Message struct {
	Role    string
	Content string
}

type GenerateOptions struct {
	Temperature float64
	MaxTokens   int
}

// ErrEmptyCompletion is returned when the upstream answered 2xx with no text.
var ErrEmptyCompletion = errors.New("empty upstream completion")

type Engine interface {
	GenerateText(ctx context.Context, model string, messages []Message, opts GenerateOptions) (string, error)
}

// Endpoint is a named engine together with the models it may be asked for,
// in preference order.
type Endpoint struct {
	Name   string
	Engine Engine
	Models []string
}
