package app

import (
	"github.com/gin-gonic/gin"

	"github.com/yungbote/learnmap-backend/internal/config"
	httpapi "github.com/yungbote/learnmap-backend/internal/http"
	httpH "github.com/yungbote/learnmap-backend/internal/http/handlers"
	"github.com/yungbote/learnmap-backend/internal/observability"
	"github.com/yungbote/learnmap-backend/internal/platform/logger"
)

type Handlers struct {
	Health *httpH.HealthHandler
	Map    *httpH.MapHandler
	Chat   *httpH.ChatHandler
}

func wireHandlers(log *logger.Logger, services Services, credErr error) Handlers {
	log.Info("Wiring handlers...")
	return Handlers{
		Health: httpH.NewHealthHandler(func() error { return credErr }),
		Map:    httpH.NewMapHandler(log, services.Maps),
		Chat:   httpH.NewChatHandler(log, services.Chat),
	}
}

func wireRouter(log *logger.Logger, cfg *config.Config, metrics *observability.Metrics, tracingService string, handlers Handlers) *gin.Engine {
	if cfg.Env == "production" {
		gin.SetMode(gin.ReleaseMode)
	}
	return httpapi.NewRouter(httpapi.RouterConfig{
		Log:             log,
		Metrics:         metrics,
		CORSOrigins:     cfg.HTTP.CORSOrigins,
		MaxRequestBytes: cfg.HTTP.MaxRequestBytes,
		TracingService:  tracingService,
		MapHandler:      handlers.Map,
		ChatHandler:     handlers.Chat,
		HealthHandler:   handlers.Health,
	})
}
