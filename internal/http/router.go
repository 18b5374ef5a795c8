package http

import (
	"github.com/gin-gonic/gin"
	"go.opentelemetry.io/contrib/instrumentation/github.com/gin-gonic/gin/otelgin"

	httpH "github.com/yungbote/learnmap-backend/internal/http/handlers"
	httpMW "github.com/yungbote/learnmap-backend/internal/http/middleware"
	"github.com/yungbote/learnmap-backend/internal/observability"
	"github.com/yungbote/learnmap-backend/internal/platform/logger"
)

type RouterConfig struct {
	Log     *logger.Logger
	Metrics *observability.Metrics

	CORSOrigins     []string
	MaxRequestBytes int64
	// TracingService names the otelgin server spans; empty disables them.
	TracingService string

	MapHandler    *httpH.MapHandler
	ChatHandler   *httpH.ChatHandler
	HealthHandler *httpH.HealthHandler
}

func NewRouter(cfg RouterConfig) *gin.Engine {
	r := gin.New()
	r.Use(httpMW.Recover(cfg.Log))
	if cfg.TracingService != "" {
		r.Use(otelgin.Middleware(cfg.TracingService))
	}
	r.Use(httpMW.AttachTraceContext())
	r.Use(httpMW.RequestLogger(cfg.Log))
	r.Use(httpMW.Metrics(cfg.Metrics))
	r.Use(httpMW.CORS(cfg.CORSOrigins))

	// Health
	if cfg.HealthHandler != nil {
		r.GET("/healthz", cfg.HealthHandler.Healthz)
		r.GET("/readyz", cfg.HealthHandler.Readyz)
	}
	if cfg.Metrics != nil {
		r.GET("/metrics", gin.WrapH(cfg.Metrics.Handler()))
	}

	api := r.Group("/api")
	api.Use(httpMW.BodyLimit(cfg.MaxRequestBytes))
	{
		if cfg.MapHandler != nil {
			api.POST("/generate-map", cfg.MapHandler.GenerateMap)
		}
		if cfg.ChatHandler != nil {
			api.POST("/follow-up-chat", cfg.ChatHandler.FollowUp)
		}
	}

	return r
}
