package handlers

import (
	"context"

	"github.com/gin-gonic/gin"

	"github.com/yungbote/learnmap-backend/internal/http/response"
	"github.com/yungbote/learnmap-backend/internal/learnmap"
	"github.com/yungbote/learnmap-backend/internal/platform/logger"
)

type MapGenerator interface {
	Generate(ctx context.Context, req learnmap.GenerateRequest) (*learnmap.Response, error)
}

type MapHandler struct {
	log *logger.Logger
	svc MapGenerator
}

func NewMapHandler(log *logger.Logger, svc MapGenerator) *MapHandler {
	if log == nil {
		log = logger.NewNop()
	}
	return &MapHandler{log: log.With("handler", "MapHandler"), svc: svc}
}

// POST /api/generate-map
func (h *MapHandler) GenerateMap(c *gin.Context) {
	var req learnmap.GenerateRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		response.RespondError(c, bindError(err, "Topic is required"))
		return
	}
	resp, err := h.svc.Generate(c.Request.Context(), req)
	if err != nil {
		_ = c.Error(err)
		response.RespondError(c, err)
		return
	}
	response.RespondOK(c, resp)
}
