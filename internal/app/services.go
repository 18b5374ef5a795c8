package app

import (
	"fmt"

	"github.com/yungbote/learnmap-backend/internal/chat"
	"github.com/yungbote/learnmap-backend/internal/config"
	"github.com/yungbote/learnmap-backend/internal/events"
	"github.com/yungbote/learnmap-backend/internal/learnmap"
	"github.com/yungbote/learnmap-backend/internal/linkcheck"
	"github.com/yungbote/learnmap-backend/internal/observability"
	"github.com/yungbote/learnmap-backend/internal/orchestrator"
	"github.com/yungbote/learnmap-backend/internal/platform/logger"
	"github.com/yungbote/learnmap-backend/internal/provider/router"
)

type Services struct {
	Orchestrator *orchestrator.Orchestrator
	Verifier     *linkcheck.Verifier
	Bus          events.Bus
	Maps         *learnmap.Service
	Chat         *chat.Service
}

func wireServices(log *logger.Logger, cfg *config.Config, metrics *observability.Metrics, credErr error) (Services, error) {
	log.Info("Wiring services...")

	endpoints, err := router.New(cfg.Provider)
	if err != nil {
		return Services{}, fmt.Errorf("provider endpoints: %w", err)
	}
	orch, err := orchestrator.New(log, metrics, endpoints, orchestrator.Options{
		Breaker: orchestrator.BreakerOptions{
			Enabled:             cfg.Breaker.Enabled,
			ConsecutiveFailures: cfg.Breaker.ConsecutiveFailures,
			Interval:            cfg.Breaker.Interval.Duration,
			OpenTimeout:         cfg.Breaker.OpenTimeout.Duration,
		},
	})
	if err != nil {
		return Services{}, fmt.Errorf("provider orchestrator: %w", err)
	}
	for _, c := range orch.Candidates() {
		log.Debug("provider candidate", "endpoint", c.Endpoint, "model", c.Model)
	}

	verifier := linkcheck.New(log, metrics, linkcheck.Options{
		Concurrency:       cfg.LinkCheck.Concurrency,
		Timeout:           cfg.LinkCheck.Timeout.Duration,
		MaxRedirects:      cfg.LinkCheck.MaxRedirects,
		UserAgent:         cfg.LinkCheck.UserAgent,
		BlockPrivateHosts: cfg.LinkCheck.BlockPrivateHosts,
	})

	var bus events.Bus = events.NopBus{}
	if cfg.Redis.Addr != "" {
		b, err := events.NewRedisBus(log, cfg.Redis.Addr, cfg.Redis.Channel)
		if err != nil {
			log.Warn("redis event bus unavailable, events disabled", "addr", cfg.Redis.Addr, "error", err)
		} else {
			bus = b
		}
	}

	maps := learnmap.NewService(log, metrics, orch, verifier, bus, learnmap.Options{
		Temperature:         cfg.Generation.Temperature,
		MaxTokens:           cfg.Generation.MaxTokens,
		InsufficientPolicy:  cfg.Generation.InsufficientPolicy,
		MaxAttempts:         cfg.Generation.MaxAttempts,
		VerifyByDefault:     cfg.Generation.VerifyByDefault,
		MaxResourcesPerNode: cfg.Generation.MaxResourcesPerNode,
		CredentialErr:       credErr,
	})
	chatSvc := chat.NewService(log, orch, chat.Options{
		Temperature:   cfg.Chat.Temperature,
		MaxTokens:     cfg.Chat.MaxTokens,
		CredentialErr: credErr,
	})

	return Services{
		Orchestrator: orch,
		Verifier:     verifier,
		Bus:          bus,
		Maps:         maps,
		Chat:         chatSvc,
	}, nil
}
