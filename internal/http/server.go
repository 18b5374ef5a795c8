package http

import (
	"net/http"

	"github.com/yungbote/learnmap-backend/internal/config"
)

func NewServer(cfg config.HTTPConfig, h http.Handler) *http.Server {
	return &http.Server{
		Addr:              cfg.Addr,
		Handler:           h,
		ReadHeaderTimeout: cfg.ReadHeaderTimeout.Duration,
		IdleTimeout:       cfg.IdleTimeout.Duration,
		// Map generation can outlast any sensible write deadline.
		WriteTimeout: 0,
	}
}
