package handlers

import (
	"net/http"

	"github.com/gin-gonic/gin"
)

// ReadinessCheck returns nil when the service can serve map requests.
type ReadinessCheck func() error

type HealthHandler struct {
	ready ReadinessCheck
}

func NewHealthHandler(ready ReadinessCheck) *HealthHandler {
	return &HealthHandler{ready: ready}
}

func (h *HealthHandler) Healthz(c *gin.Context) {
	c.String(http.StatusOK, "ok")
}

// Readyz reports 503 with the reason while a required credential is missing.
func (h *HealthHandler) Readyz(c *gin.Context) {
	if h.ready != nil {
		if err := h.ready(); err != nil {
			c.JSON(http.StatusServiceUnavailable, gin.H{"status": "not_ready", "reason": err.Error()})
			return
		}
	}
	c.String(http.StatusOK, "ok")
}
