package response

import (
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/gin-gonic/gin"

	"github.com/yungbote/learnmap-backend/internal/platform/apierr"
)

func TestRespondError(t *testing.T) {
	gin.SetMode(gin.TestMode)
	cases := []struct {
		err     error
		status  int
		message string
		details string
	}{
		{apierr.Newf(apierr.KindRateLimited, "Rate limit exceeded. Please try again in a moment."), http.StatusTooManyRequests, "Rate limit exceeded. Please try again in a moment.", ""},
		{apierr.Newf(apierr.KindBillingRequired, "pay up"), http.StatusPaymentRequired, "pay up", ""},
		{fmt.Errorf("wrapped: %w", apierr.Newf(apierr.KindParse, "Failed to parse AI response").WithDetails("bad json")), http.StatusInternalServerError, "Failed to parse AI response", "bad json"},
		{errors.New("boom"), http.StatusInternalServerError, "Internal server error", "boom"},
	}
	for _, tc := range cases {
		rec := httptest.NewRecorder()
		c, _ := gin.CreateTestContext(rec)
		RespondError(c, tc.err)
		if rec.Code != tc.status {
			t.Fatalf("%v: status=%d want %d", tc.err, rec.Code, tc.status)
		}
		var env ErrorEnvelope
		if err := json.Unmarshal(rec.Body.Bytes(), &env); err != nil {
			t.Fatalf("decode: %v", err)
		}
		if env.Error != tc.message || env.Details != tc.details {
			t.Fatalf("%v: envelope %+v", tc.err, env)
		}
	}
}
