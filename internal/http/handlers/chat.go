package handlers

import (
	"context"

	"github.com/gin-gonic/gin"

	"github.com/yungbote/learnmap-backend/internal/chat"
	"github.com/yungbote/learnmap-backend/internal/http/response"
	"github.com/yungbote/learnmap-backend/internal/platform/logger"
)

type Asker interface {
	Ask(ctx context.Context, req chat.AskRequest) (*chat.Answer, error)
}

type ChatHandler struct {
	log *logger.Logger
	svc Asker
}

func NewChatHandler(log *logger.Logger, svc Asker) *ChatHandler {
	if log == nil {
		log = logger.NewNop()
	}
	return &ChatHandler{log: log.With("handler", "ChatHandler"), svc: svc}
}

// POST /api/follow-up-chat
func (h *ChatHandler) FollowUp(c *gin.Context) {
	var req chat.AskRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		response.RespondError(c, bindError(err, "Question and topic are required"))
		return
	}
	ans, err := h.svc.Ask(c.Request.Context(), req)
	if err != nil {
		_ = c.Error(err)
		response.RespondError(c, err)
		return
	}
	response.RespondOK(c, ans)
}
