package app

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"time"

	"github.com/gin-gonic/gin"

	"github.com/yungbote/learnmap-backend/internal/config"
	"github.com/yungbote/learnmap-backend/internal/events"
	httpapi "github.com/yungbote/learnmap-backend/internal/http"
	"github.com/yungbote/learnmap-backend/internal/observability"
	"github.com/yungbote/learnmap-backend/internal/platform/logger"
)

type App struct {
	Log      *logger.Logger
	Config   *config.Config
	Metrics  *observability.Metrics
	Router   *gin.Engine
	Services Services

	server       *http.Server
	otelShutdown func(context.Context) error
}

// New loads configuration from the environment and wires the application.
func New(ctx context.Context) (*App, error) {
	cfg, err := config.Load()
	if err != nil {
		return nil, err
	}
	log, err := logger.New(cfg.Env)
	if err != nil {
		return nil, fmt.Errorf("init logger: %w", err)
	}
	a, err := NewWithConfig(ctx, cfg, log)
	if err != nil {
		log.Sync()
		return nil, err
	}
	return a, nil
}

// NewWithConfig wires the application around an already loaded config.
func NewWithConfig(ctx context.Context, cfg *config.Config, log *logger.Logger) (*App, error) {
	if cfg == nil {
		return nil, errors.New("config required")
	}
	if log == nil {
		log = logger.NewNop()
	}

	if cfg.Provider.RejectedModel != "" {
		log.Warn("model override not in allow-list, using default",
			"requested", cfg.Provider.RejectedModel,
			"model", cfg.Provider.Model,
		)
	}
	credErr := cfg.MissingCredential()
	if credErr != nil {
		log.Warn("provider credential missing; map and chat requests will fail", "error", credErr)
	}

	shutdown := observability.InitOTel(ctx, log, observability.OtelConfig{
		Enabled:     cfg.Otel.Enabled,
		ServiceName: cfg.Otel.ServiceName,
		Environment: cfg.Env,
	})

	var metrics *observability.Metrics
	if cfg.Metrics.Enabled {
		metrics = observability.NewMetrics(cfg.Metrics.Namespace)
	}

	services, err := wireServices(log, cfg, metrics, credErr)
	if err != nil {
		_ = shutdown(context.Background())
		return nil, err
	}

	tracingService := ""
	if cfg.Otel.Enabled {
		tracingService = cfg.Otel.ServiceName
	}
	handlers := wireHandlers(log, services, credErr)
	router := wireRouter(log, cfg, metrics, tracingService, handlers)

	return &App{
		Log:          log,
		Config:       cfg,
		Metrics:      metrics,
		Router:       router,
		Services:     services,
		server:       httpapi.NewServer(cfg.HTTP, router),
		otelShutdown: shutdown,
	}, nil
}

// Run serves HTTP until ctx is cancelled, then drains in-flight requests.
func (a *App) Run(ctx context.Context) error {
	if a == nil || a.server == nil {
		return errors.New("app not initialized")
	}
	errCh := make(chan error, 1)
	go func() {
		a.Log.Info("HTTP server listening", "addr", a.server.Addr)
		errCh <- a.server.ListenAndServe()
	}()

	select {
	case <-ctx.Done():
		a.Log.Info("shutting down HTTP server")
		shutdownCtx, cancel := context.WithTimeout(context.Background(), a.shutdownTimeout())
		defer cancel()
		if err := a.server.Shutdown(shutdownCtx); err != nil {
			a.Log.Warn("HTTP shutdown incomplete", "error", err)
		}
		return nil
	case err := <-errCh:
		if errors.Is(err, http.ErrServerClosed) {
			return nil
		}
		return err
	}
}

func (a *App) shutdownTimeout() time.Duration {
	if d := a.Config.HTTP.ShutdownTimeout.Duration; d > 0 {
		return d
	}
	return 15 * time.Second
}

func (a *App) Close() {
	if a == nil {
		return
	}
	if a.Services.Bus != nil {
		if err := a.Services.Bus.Close(); err != nil {
			a.Log.Warn("close event bus", "error", err)
		}
		a.Services.Bus = events.NopBus{}
	}
	if a.otelShutdown != nil {
		ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
		_ = a.otelShutdown(ctx)
		cancel()
		a.otelShutdown = nil
	}
	a.Log.Sync()
}
