package learnmap

import (
	"context"
	"errors"
	"strings"
	"time"

	"github.com/yungbote/learnmap-backend/internal/events"
	"github.com/yungbote/learnmap-backend/internal/linkcheck"
	"github.com/yungbote/learnmap-backend/internal/observability"
	"github.com/yungbote/learnmap-backend/internal/orchestrator"
	"github.com/yungbote/learnmap-backend/internal/platform/apierr"
	"github.com/yungbote/learnmap-backend/internal/platform/ctxutil"
	"github.com/yungbote/learnmap-backend/internal/platform/logger"
	"github.com/yungbote/learnmap-backend/internal/prompts"
	"github.com/yungbote/learnmap-backend/internal/provider"
)

const (
	PolicyFail       = "fail"
	PolicyRegenerate = "regenerate"
)

type Generator interface {
	Generate(ctx context.Context, messages []provider.Message, opts provider.GenerateOptions) (orchestrator.Result, error)
}

type LinkVerifier interface {
	VerifyAll(ctx context.Context, urls []string) []linkcheck.Outcome
}

type GenerateRequest struct {
	Topic      string `json:"topic" binding:"required"`
	Level      string `json:"level"`
	VerifyURLs *bool  `json:"verifyUrls"`
}

type Meta struct {
	Provider         string `json:"provider"`
	Model            string `json:"model"`
	Verified         bool   `json:"verified"`
	VerificationRate *int   `json:"verificationRate"`
}

type Response struct {
	Map  *LearningMap `json:"map"`
	Meta Meta         `json:"meta"`
}

type Options struct {
	Temperature         float64
	MaxTokens           int
	InsufficientPolicy  string
	MaxAttempts         int
	VerifyByDefault     bool
	MaxResourcesPerNode int
	// CredentialErr is returned for every request while set; the service still
	// starts so health checks can report it.
	CredentialErr error
}

type Service struct {
	log      *logger.Logger
	metrics  *observability.Metrics
	gen      Generator
	verifier LinkVerifier
	bus      events.Bus
	opts     Options
}

func NewService(log *logger.Logger, metrics *observability.Metrics, gen Generator, verifier LinkVerifier, bus events.Bus, opts Options) *Service {
	if log == nil {
		log = logger.NewNop()
	}
	if bus == nil {
		bus = events.NopBus{}
	}
	if opts.MaxResourcesPerNode <= 0 || opts.MaxResourcesPerNode > MaxResourcesPerNode {
		opts.MaxResourcesPerNode = MaxResourcesPerNode
	}
	if opts.MaxAttempts <= 0 {
		opts.MaxAttempts = 1
	}
	if opts.InsufficientPolicy != PolicyRegenerate {
		opts.InsufficientPolicy = PolicyFail
		opts.MaxAttempts = 1
	}
	return &Service{
		log:      log.With("service", "LearningMapService"),
		metrics:  metrics,
		gen:      gen,
		verifier: verifier,
		bus:      bus,
		opts:     opts,
	}
}

// attemptResult is what one generate-and-sanitize round produced.
type attemptResult struct {
	candidate orchestrator.Candidate
	m         *LearningMap
	stats     Stats
	verified  bool
	removed   int
}

// Generate runs the whole pipeline for one request. Either a validated map or
// an *apierr.Error is returned, never both.
func (s *Service) Generate(ctx context.Context, req GenerateRequest) (*Response, error) {
	start := time.Now()
	topic := strings.TrimSpace(req.Topic)
	if topic == "" {
		return nil, apierr.Newf(apierr.KindInvalidRequest, "Topic is required")
	}
	level := LevelBeginner
	if strings.TrimSpace(req.Level) != "" {
		lvl, ok := ParseLevel(req.Level)
		if !ok {
			return nil, apierr.Newf(apierr.KindInvalidRequest, "Invalid level %q", req.Level).
				WithDetails("level must be one of beginner, intermediate, advanced")
		}
		level = lvl
	}
	verify := s.opts.VerifyByDefault
	if req.VerifyURLs != nil {
		verify = *req.VerifyURLs
	}

	ev := events.Event{
		RequestID: ctxutil.RequestID(ctx),
		Topic:     topic,
		Level:     string(level),
	}

	res, attempts, err := s.run(ctx, topic, level, verify)
	ev.Attempts = attempts
	ev.DurationMS = time.Since(start).Milliseconds()
	if err != nil {
		kind := apierr.KindOf(err)
		if kind == "" {
			kind = apierr.KindUpstream
			err = apierr.New(kind, "Failed to generate learning map", err)
		}
		s.metrics.IncMap(string(kind))
		ev.Type = events.MapFailed
		ev.ErrorKind = string(kind)
		ev.Error = err.Error()
		s.publish(ctx, ev)
		s.log.Warn("learning map failed", "topic", topic, "level", level, "kind", kind, "attempts", attempts, "error", err)
		return nil, err
	}

	s.metrics.IncMap("ok")
	s.metrics.ObserveMapDelivered(res.m.ResourceCount(), attempts, res.removed)
	if res.verified {
		s.metrics.ObserveVerification(res.stats.Probed, res.stats.Reachable)
	}

	ev.Type = events.MapGenerated
	ev.Provider = res.candidate.Endpoint
	ev.Model = res.candidate.Model
	ev.Nodes = res.m.NodeCount()
	ev.Resources = res.m.ResourceCount()
	ev.Probed = res.stats.Probed
	ev.Reachable = res.stats.Reachable
	s.publish(ctx, ev)

	s.log.Info("learning map generated",
		"topic", topic,
		"level", level,
		"endpoint", res.candidate.Endpoint,
		"model", res.candidate.Model,
		"nodes", ev.Nodes,
		"resources", ev.Resources,
		"attempts", attempts,
		"duration_ms", ev.DurationMS,
	)

	meta := Meta{
		Provider: res.candidate.Endpoint,
		Model:    res.candidate.Model,
		Verified: res.verified,
	}
	if res.verified {
		meta.VerificationRate = res.stats.Rate()
	}
	return &Response{Map: res.m, Meta: meta}, nil
}

// run retries generation only under the regenerate policy and only when the
// previous round ended with too few resources.
func (s *Service) run(ctx context.Context, topic string, level Level, verify bool) (*attemptResult, int, error) {
	if s.opts.CredentialErr != nil {
		return nil, 0, apierr.New(apierr.KindConfiguration, s.opts.CredentialErr.Error(), s.opts.CredentialErr)
	}
	if s.gen == nil {
		return nil, 0, apierr.Newf(apierr.KindConfiguration, "no language model provider configured")
	}

	p, err := prompts.Build(prompts.PromptLearningMap, prompts.Input{Topic: topic, Level: string(level)})
	if err != nil {
		return nil, 0, apierr.New(apierr.KindInvalidRequest, "Topic is required", err)
	}
	messages := []provider.Message{
		{Role: "system", Content: p.System},
		{Role: "user", Content: p.User},
	}
	genOpts := provider.GenerateOptions{Temperature: s.opts.Temperature, MaxTokens: s.opts.MaxTokens}

	var lastErr error
	for attempt := 1; attempt <= s.opts.MaxAttempts; attempt++ {
		out, err := s.gen.Generate(ctx, messages, genOpts)
		if err != nil {
			return nil, attempt, err
		}
		res, err := s.sanitize(ctx, out, topic, level, verify)
		if err == nil {
			return res, attempt, nil
		}
		lastErr = err
		if !apierr.Is(err, apierr.KindInsufficientResources) || ctx.Err() != nil {
			return nil, attempt, err
		}
		if attempt < s.opts.MaxAttempts {
			s.log.Warn("regenerating learning map after insufficient resources",
				"topic", topic,
				"attempt", attempt,
				"max_attempts", s.opts.MaxAttempts,
				"error", err,
			)
		}
	}
	return nil, s.opts.MaxAttempts, lastErr
}

func (s *Service) sanitize(ctx context.Context, out orchestrator.Result, topic string, level Level, verify bool) (*attemptResult, error) {
	raw, err := Extract(out.Text)
	if err != nil {
		return nil, err
	}
	draft, err := DecodeDraft(raw)
	if err != nil {
		return nil, err
	}
	if draft.Refusal != "" && len(draft.Branches) == 0 {
		return nil, insufficient(topic, draft.Refusal)
	}

	m := draft.Assemble(topic, level)
	removed := DedupeAcrossMap(m)
	s.log.Debug("learning map decoded",
		"topic", topic,
		"raw_resources", draft.RawResourceCount,
		"kept_resources", m.ResourceCount(),
		"cross_node_duplicates", removed,
	)

	res := &attemptResult{candidate: out.Candidate, m: m, removed: removed}
	if verify && s.verifier != nil {
		urls := m.ResourceURLs()
		outcomes := s.verifier.VerifyAll(ctx, urls)
		reachable := make(map[string]bool, len(outcomes))
		for _, o := range outcomes {
			if o.Reachable {
				reachable[o.URL] = true
				res.stats.Reachable++
			}
		}
		res.stats.Probed = len(outcomes)
		res.verified = true
		FilterReachable(m, reachable)
		if res.stats.Low() {
			s.log.Warn("low link reachability",
				"topic", topic,
				"probed", res.stats.Probed,
				"reachable", res.stats.Reachable,
				"rate", *res.stats.Rate(),
			)
		}
	}

	TruncateResources(m, s.opts.MaxResourcesPerNode)
	if err := Validate(m); err != nil {
		return nil, err
	}
	return res, nil
}

func (s *Service) publish(ctx context.Context, ev events.Event) {
	ev.At = time.Now().UTC()
	pctx, cancel := context.WithTimeout(context.WithoutCancel(ctx), 2*time.Second)
	defer cancel()
	if err := s.bus.Publish(pctx, ev); err != nil && !errors.Is(err, context.Canceled) {
		s.log.Warn("publish map event failed", "type", ev.Type, "error", err)
	}
}
