package middleware

import (
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/yungbote/learnmap-backend/internal/http/response"
	"github.com/yungbote/learnmap-backend/internal/platform/logger"
)

// Recover turns a handler panic into a 500 envelope.
func Recover(log *logger.Logger) gin.HandlerFunc {
	return gin.CustomRecoveryWithWriter(gin.DefaultErrorWriter, func(c *gin.Context, recovered any) {
		if log != nil {
			log.Error("panic in handler", "path", c.Request.URL.Path, "panic", recovered)
		}
		c.AbortWithStatusJSON(http.StatusInternalServerError, response.ErrorEnvelope{Error: "Internal server error"})
	})
}
