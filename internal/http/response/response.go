package response

import (
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/yungbote/learnmap-backend/internal/platform/apierr"
)

// ErrorEnvelope is the only error shape the API emits.
type ErrorEnvelope struct {
	Error   string `json:"error"`
	Details string `json:"details,omitempty"`
}

// RespondError writes err as an ErrorEnvelope. Typed errors keep their own
// status and message; anything else is a 500 with a generic message.
func RespondError(c *gin.Context, err error) {
	if e, ok := apierr.As(err); ok {
		c.AbortWithStatusJSON(e.HTTPStatusCode(), ErrorEnvelope{Error: e.Message, Details: e.Details})
		return
	}
	details := ""
	if err != nil {
		details = err.Error()
	}
	c.AbortWithStatusJSON(http.StatusInternalServerError, ErrorEnvelope{Error: "Internal server error", Details: details})
}

func RespondOK(c *gin.Context, payload any) {
	c.JSON(http.StatusOK, payload)
}
