package orchestrator

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/sony/gobreaker"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/codes"
	"go.opentelemetry.io/otel/trace"

	"github.com/yungbote/learnmap-backend/internal/observability"
	"github.com/yungbote/learnmap-backend/internal/pkg/httpx"
	"github.com/yungbote/learnmap-backend/internal/platform/logger"
	"github.com/yungbote/learnmap-backend/internal/provider"
)

type BreakerOptions struct {
	Enabled             bool
	ConsecutiveFailures uint32
	Interval            time.Duration
	OpenTimeout         time.Duration
}

type Options struct {
	Breaker BreakerOptions
}

type Result struct {
	Candidate Candidate
	Text      string
	// Failures lists the candidates tried before the one that succeeded.
	Failures []AttemptFailure
}

// Orchestrator walks a fixed candidate list until one candidate produces
// text or a fatal outcome stops the walk. A candidate is never tried twice
// within one call.
type Orchestrator struct {
	log        *logger.Logger
	metrics    *observability.Metrics
	tracer     trace.Tracer
	engines    map[string]provider.Engine
	breakers   map[string]*gobreaker.CircuitBreaker
	candidates []Candidate
}

func New(log *logger.Logger, metrics *observability.Metrics, endpoints []provider.Endpoint, opts Options) (*Orchestrator, error) {
	if log == nil {
		log = logger.NewNop()
	}
	o := &Orchestrator{
		log:        log.With("service", "ProviderOrchestrator"),
		metrics:    metrics,
		tracer:     observability.Tracer("learnmap/orchestrator"),
		engines:    map[string]provider.Engine{},
		breakers:   map[string]*gobreaker.CircuitBreaker{},
		candidates: BuildCandidates(endpoints),
	}
	for _, ep := range endpoints {
		if ep.Engine == nil {
			return nil, fmt.Errorf("endpoint %q has no engine", ep.Name)
		}
		if _, dup := o.engines[ep.Name]; dup {
			return nil, fmt.Errorf("duplicate endpoint %q", ep.Name)
		}
		o.engines[ep.Name] = ep.Engine
		if opts.Breaker.Enabled {
			o.breakers[ep.Name] = o.newBreaker(ep.Name, opts.Breaker)
		}
	}
	if len(o.candidates) == 0 {
		return nil, errors.New("no provider candidates configured")
	}
	return o, nil
}

func (o *Orchestrator) newBreaker(name string, opts BreakerOptions) *gobreaker.CircuitBreaker {
	threshold := opts.ConsecutiveFailures
	if threshold == 0 {
		threshold = 5
	}
	return gobreaker.NewCircuitBreaker(gobreaker.Settings{
		Name:        name,
		MaxRequests: 1,
		Interval:    opts.Interval,
		Timeout:     opts.OpenTimeout,
		ReadyToTrip: func(counts gobreaker.Counts) bool {
			return counts.ConsecutiveFailures >= threshold
		},
		OnStateChange: func(name string, from gobreaker.State, to gobreaker.State) {
			o.log.Warn("provider circuit breaker state changed", "endpoint", name, "from", from.String(), "to", to.String())
			o.metrics.SetBreakerState(name, int(to))
		},
		// Only endpoint health trips the breaker; model and quota rejections do not.
		IsSuccessful: func(err error) bool {
			if err == nil || errors.Is(err, provider.ErrEmptyCompletion) || errors.Is(err, context.Canceled) {
				return true
			}
			if status, ok := httpx.StatusCode(err); ok {
				return !(httpx.IsServerError(status) || status == 408)
			}
			return false
		},
	})
}

func (o *Orchestrator) Candidates() []Candidate {
	out := make([]Candidate, len(o.candidates))
	copy(out, o.candidates)
	return out
}

func (o *Orchestrator) Generate(ctx context.Context, messages []provider.Message, opts provider.GenerateOptions) (Result, error) {
	var failures []AttemptFailure
	tried := make(map[Candidate]bool, len(o.candidates))

	for _, c := range o.candidates {
		if tried[c] {
			continue
		}
		tried[c] = true

		text, dur, err := o.attempt(ctx, c, messages, opts)
		state, reason := Transition(Attempt{Candidate: c, Text: text, Err: err, CallerErr: ctx.Err()})
		o.metrics.ObserveProviderAttempt(c.Endpoint, c.Model, string(reason), dur)

		switch state {
		case StateSuccess:
			o.log.Info("provider candidate succeeded",
				"endpoint", c.Endpoint,
				"model", c.Model,
				"failed_before", len(failures),
				"duration_ms", dur.Milliseconds(),
			)
			return Result{Candidate: c, Text: text, Failures: failures}, nil
		case StateNextCandidate:
			f := newFailure(c, reason, err)
			failures = append(failures, f)
			o.log.Warn("provider candidate failed, trying next",
				"endpoint", c.Endpoint,
				"model", c.Model,
				"reason", string(reason),
				"status", f.Status,
				"error", err,
			)
		default:
			f := newFailure(c, reason, err)
			o.log.Error("provider candidate failed fatally",
				"endpoint", c.Endpoint,
				"model", c.Model,
				"reason", string(reason),
				"status", f.Status,
				"error", err,
			)
			return Result{Failures: failures}, fatalError(f)
		}
	}

	ex := &ExhaustedError{Failures: failures}
	o.log.Error("provider candidates exhausted", "candidates", len(failures), "error", ex.Error())
	return Result{Failures: failures}, exhaustedError(ex)
}

func (o *Orchestrator) attempt(ctx context.Context, c Candidate, messages []provider.Message, opts provider.GenerateOptions) (string, time.Duration, error) {
	ctx, span := o.tracer.Start(ctx, "provider.attempt", trace.WithAttributes(
		attribute.String("provider.endpoint", c.Endpoint),
		attribute.String("provider.model", c.Model),
	))
	defer span.End()

	eng := o.engines[c.Endpoint]
	call := func() (any, error) {
		return eng.GenerateText(ctx, c.Model, messages, opts)
	}

	start := time.Now()
	var (
		out any
		err error
	)
	if cb := o.breakers[c.Endpoint]; cb != nil {
		out, err = cb.Execute(call)
	} else {
		out, err = call()
	}
	dur := time.Since(start)

	text, _ := out.(string)
	if err != nil {
		span.RecordError(err)
		span.SetStatus(codes.Error, "attempt failed")
	}
	return text, dur, err
}
