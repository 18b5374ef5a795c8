package middleware

import (
	"net/http"
	"slices"
	"time"

	"github.com/gin-contrib/cors"
	"github.com/gin-gonic/gin"
)

// CORS allows browser callers from origins. An empty list or "*" allows any
// origin, which is what the public map endpoints expect.
func CORS(origins []string) gin.HandlerFunc {
	cfg := cors.Config{
		AllowMethods:              []string{http.MethodPost, http.MethodOptions},
		AllowHeaders:              []string{"Authorization", "X-Client-Info", "Apikey", "Content-Type"},
		ExposeHeaders:             []string{headerRequestID, headerTraceID},
		MaxAge:                    12 * time.Hour,
		OptionsResponseStatusCode: http.StatusOK,
	}
	if len(origins) == 0 || slices.Contains(origins, "*") {
		cfg.AllowAllOrigins = true
	} else {
		cfg.AllowOrigins = origins
	}
	return cors.New(cfg)
}
