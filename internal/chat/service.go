package chat

import (
	"context"
	"errors"
	"strings"
	"time"

	"github.com/yungbote/learnmap-backend/internal/orchestrator"
	"github.com/yungbote/learnmap-backend/internal/platform/apierr"
	"github.com/yungbote/learnmap-backend/internal/platform/logger"
	"github.com/yungbote/learnmap-backend/internal/prompts"
	"github.com/yungbote/learnmap-backend/internal/provider"
)

// NoAnswer is returned when every provider answered with empty text.
const NoAnswer = "No response generated."

// MaxHistoryTurns bounds how much prior conversation is replayed.
const MaxHistoryTurns = 20

type Generator interface {
	Generate(ctx context.Context, messages []provider.Message, opts provider.GenerateOptions) (orchestrator.Result, error)
}

type Turn struct {
	Role    string `json:"role"`
	Content string `json:"content"`
}

type AskRequest struct {
	Topic               string `json:"topic"`
	LearningMapContext  string `json:"learningMapContext"`
	ConversationHistory []Turn `json:"conversationHistory"`
	Question            string `json:"question"`
}

type Answer struct {
	Answer string `json:"answer"`
	Model  string `json:"model"`
}

type Options struct {
	Temperature   float64
	MaxTokens     int
	CredentialErr error
}

type Service struct {
	log  *logger.Logger
	gen  Generator
	opts Options
}

func NewService(log *logger.Logger, gen Generator, opts Options) *Service {
	if log == nil {
		log = logger.NewNop()
	}
	return &Service{log: log.With("service", "FollowUpChatService"), gen: gen, opts: opts}
}

func (s *Service) Ask(ctx context.Context, req AskRequest) (*Answer, error) {
	topic := strings.TrimSpace(req.Topic)
	question := strings.TrimSpace(req.Question)
	if topic == "" || question == "" {
		return nil, apierr.Newf(apierr.KindInvalidRequest, "Question and topic are required")
	}
	if s.opts.CredentialErr != nil {
		return nil, apierr.New(apierr.KindConfiguration, s.opts.CredentialErr.Error(), s.opts.CredentialErr)
	}
	if s.gen == nil {
		return nil, apierr.Newf(apierr.KindConfiguration, "no language model provider configured")
	}

	p, err := prompts.Build(prompts.PromptFollowUp, prompts.Input{
		Topic:      topic,
		MapContext: strings.TrimSpace(req.LearningMapContext),
	})
	if err != nil {
		return nil, apierr.New(apierr.KindInvalidRequest, "Question and topic are required", err)
	}

	messages := []provider.Message{{Role: "system", Content: p.System}}
	messages = append(messages, history(req.ConversationHistory)...)
	messages = append(messages, provider.Message{Role: "user", Content: question})

	start := time.Now()
	res, err := s.gen.Generate(ctx, messages, provider.GenerateOptions{
		Temperature: s.opts.Temperature,
		MaxTokens:   s.opts.MaxTokens,
	})
	if err != nil {
		if model, ok := allEmpty(err); ok {
			s.log.Warn("follow-up answered with empty completions", "topic", topic, "model", model)
			return &Answer{Answer: NoAnswer, Model: model}, nil
		}
		s.log.Warn("follow-up failed", "topic", topic, "kind", apierr.KindOf(err), "error", err)
		if apierr.KindOf(err) == "" {
			return nil, apierr.New(apierr.KindUpstream, "Failed to process question", err)
		}
		return nil, err
	}

	answer := strings.TrimSpace(res.Text)
	if answer == "" {
		answer = NoAnswer
	}
	s.log.Info("follow-up answered",
		"topic", topic,
		"endpoint", res.Candidate.Endpoint,
		"model", res.Candidate.Model,
		"history", len(messages)-2,
		"duration_ms", time.Since(start).Milliseconds(),
	)
	return &Answer{Answer: answer, Model: res.Candidate.Model}, nil
}

// history keeps the most recent user and assistant turns with content.
func history(turns []Turn) []provider.Message {
	out := make([]provider.Message, 0, len(turns))
	for _, t := range turns {
		role := strings.ToLower(strings.TrimSpace(t.Role))
		if role != "user" && role != "assistant" {
			continue
		}
		if strings.TrimSpace(t.Content) == "" {
			continue
		}
		out = append(out, provider.Message{Role: role, Content: t.Content})
	}
	if len(out) > MaxHistoryTurns {
		out = out[len(out)-MaxHistoryTurns:]
	}
	return out
}

func allEmpty(err error) (string, bool) {
	var ex *orchestrator.ExhaustedError
	if !errors.As(err, &ex) || len(ex.Failures) == 0 {
		return "", false
	}
	for _, f := range ex.Failures {
		if f.Reason != orchestrator.ReasonEmptyCompletion {
			return "", false
		}
	}
	return ex.Failures[0].Candidate.Model, true
}
