package http

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/gin-gonic/gin"

	"github.com/yungbote/learnmap-backend/internal/chat"
	httpH "github.com/yungbote/learnmap-backend/internal/http/handlers"
	"github.com/yungbote/learnmap-backend/internal/learnmap"
	"github.com/yungbote/learnmap-backend/internal/observability"
	"github.com/yungbote/learnmap-backend/internal/platform/apierr"
	"github.com/yungbote/learnmap-backend/internal/platform/logger"
)

type stubMaps struct {
	resp *learnmap.Response
	err  error
	got  learnmap.GenerateRequest
}

func (s *stubMaps) Generate(ctx context.Context, req learnmap.GenerateRequest) (*learnmap.Response, error) {
	s.got = req
	return s.resp, s.err
}

type stubChat struct {
	err error
	got chat.AskRequest
}

func (s *stubChat) Ask(ctx context.Context, req chat.AskRequest) (*chat.Answer, error) {
	s.got = req
	if s.err != nil {
		return nil, s.err
	}
	return &chat.Answer{Answer: "Use channels.", Model: "sonar-pro"}, nil
}

func testRouter(maps *stubMaps, ch *stubChat, ready httpH.ReadinessCheck) *gin.Engine {
	gin.SetMode(gin.TestMode)
	log := logger.NewNop()
	return NewRouter(RouterConfig{
		Log:             log,
		Metrics:         observability.NewMetrics("test"),
		MaxRequestBytes: 1 << 10,
		MapHandler:      httpH.NewMapHandler(log, maps),
		ChatHandler:     httpH.NewChatHandler(log, ch),
		HealthHandler:   httpH.NewHealthHandler(ready),
	})
}

func do(r http.Handler, method, path, body string) *httptest.ResponseRecorder {
	req := httptest.NewRequest(method, path, strings.NewReader(body))
	req.Header.Set("Content-Type", "application/json")
	rec := httptest.NewRecorder()
	r.ServeHTTP(rec, req)
	return rec
}

func TestGenerateMapOK(t *testing.T) {
	rate := 75
	maps := &stubMaps{resp: &learnmap.Response{
		Map:  &learnmap.LearningMap{Topic: "Go", Branches: []learnmap.Branch{}, RelatedTopics: []string{}},
		Meta: learnmap.Meta{Provider: "perplexity", Model: "sonar-pro", Verified: true, VerificationRate: &rate},
	}}
	r := testRouter(maps, &stubChat{}, nil)

	rec := do(r, http.MethodPost, "/api/generate-map", `{"topic":"Go","level":"advanced","verifyUrls":false}`)
	if rec.Code != http.StatusOK {
		t.Fatalf("status=%d body=%s", rec.Code, rec.Body.String())
	}
	if maps.got.Topic != "Go" || maps.got.Level != "advanced" || maps.got.VerifyURLs == nil || *maps.got.VerifyURLs {
		t.Fatalf("request not bound: %+v", maps.got)
	}
	var out struct {
		Map  map[string]any `json:"map"`
		Meta map[string]any `json:"meta"`
	}
	if err := json.Unmarshal(rec.Body.Bytes(), &out); err != nil {
		t.Fatalf("decode: %v", err)
	}
	if out.Map["topic"] != "Go" || out.Meta["verificationRate"] != float64(75) || out.Meta["provider"] != "perplexity" {
		t.Fatalf("unexpected body: %s", rec.Body.String())
	}
	if rec.Header().Get("X-Request-Id") == "" {
		t.Fatalf("missing request id header")
	}
}

func TestGenerateMapBadRequests(t *testing.T) {
	r := testRouter(&stubMaps{}, &stubChat{}, nil)
	cases := []struct {
		body string
		want string
	}{
		{``, "Topic is required"},
		{`{}`, "Topic is required"},
		{`{"level":"beginner"}`, "Topic is required"},
		{`{"topic":`, "Invalid request body"},
		{`{"topic":"` + strings.Repeat("x", 2048) + `"}`, "Request body too large"},
	}
	for _, tc := range cases {
		rec := do(r, http.MethodPost, "/api/generate-map", tc.body)
		if rec.Code != http.StatusBadRequest {
			t.Fatalf("body %.20q: status=%d", tc.body, rec.Code)
		}
		if !strings.Contains(rec.Body.String(), `"error":"`+tc.want+`"`) {
			t.Fatalf("body %.20q: response %s", tc.body, rec.Body.String())
		}
	}
}

func TestGenerateMapErrorStatuses(t *testing.T) {
	cases := []struct {
		err    error
		status int
	}{
		{apierr.Newf(apierr.KindRateLimited, "Rate limit exceeded. Please try again in a moment."), http.StatusTooManyRequests},
		{apierr.Newf(apierr.KindBillingRequired, "AI service payment required. Please contact support."), http.StatusPaymentRequired},
		{apierr.Newf(apierr.KindInsufficientResources, "Insufficient real resources found for Go."), http.StatusInternalServerError},
		{apierr.Newf(apierr.KindConfiguration, "PERPLEXITY_API_KEY is not configured"), http.StatusInternalServerError},
		{errors.New("boom"), http.StatusInternalServerError},
	}
	for _, tc := range cases {
		r := testRouter(&stubMaps{err: tc.err}, &stubChat{}, nil)
		rec := do(r, http.MethodPost, "/api/generate-map", `{"topic":"Go"}`)
		if rec.Code != tc.status {
			t.Fatalf("%v: status=%d want %d", tc.err, rec.Code, tc.status)
		}
		if strings.Contains(rec.Body.String(), `"map"`) {
			t.Fatalf("error response carries a map: %s", rec.Body.String())
		}
	}
}

func TestFollowUpChat(t *testing.T) {
	ch := &stubChat{}
	r := testRouter(&stubMaps{}, ch, nil)
	rec := do(r, http.MethodPost, "/api/follow-up-chat",
		`{"topic":"Go","question":"What next?","conversationHistory":[{"role":"user","content":"hi"}]}`)
	if rec.Code != http.StatusOK {
		t.Fatalf("status=%d body=%s", rec.Code, rec.Body.String())
	}
	if ch.got.Question != "What next?" || len(ch.got.ConversationHistory) != 1 {
		t.Fatalf("request not bound: %+v", ch.got)
	}
	if !strings.Contains(rec.Body.String(), `"answer":"Use channels."`) || !strings.Contains(rec.Body.String(), `"model":"sonar-pro"`) {
		t.Fatalf("body=%s", rec.Body.String())
	}

	ch.err = apierr.Newf(apierr.KindInvalidRequest, "Question and topic are required")
	rec = do(r, http.MethodPost, "/api/follow-up-chat", `{"topic":"Go"}`)
	if rec.Code != http.StatusBadRequest {
		t.Fatalf("status=%d", rec.Code)
	}
}

func TestHealthAndReadiness(t *testing.T) {
	ready := errors.New("PERPLEXITY_API_KEY is not configured")
	r := testRouter(&stubMaps{}, &stubChat{}, func() error { return ready })

	if rec := do(r, http.MethodGet, "/healthz", ""); rec.Code != http.StatusOK {
		t.Fatalf("healthz status=%d", rec.Code)
	}
	rec := do(r, http.MethodGet, "/readyz", "")
	if rec.Code != http.StatusServiceUnavailable || !strings.Contains(rec.Body.String(), "PERPLEXITY_API_KEY") {
		t.Fatalf("readyz status=%d body=%s", rec.Code, rec.Body.String())
	}
	ready = nil
	if rec := do(r, http.MethodGet, "/readyz", ""); rec.Code != http.StatusOK {
		t.Fatalf("readyz status=%d", rec.Code)
	}
}

func TestMetricsEndpoint(t *testing.T) {
	r := testRouter(&stubMaps{}, &stubChat{}, nil)
	do(r, http.MethodGet, "/healthz", "")
	rec := do(r, http.MethodGet, "/metrics", "")
	if rec.Code != http.StatusOK || !strings.Contains(rec.Body.String(), "test_http_requests_total") {
		t.Fatalf("metrics status=%d", rec.Code)
	}
}

func TestPreflight(t *testing.T) {
	r := testRouter(&stubMaps{}, &stubChat{}, nil)
	req := httptest.NewRequest(http.MethodOptions, "/api/generate-map", nil)
	req.Header.Set("Origin", "https://app.example")
	req.Header.Set("Access-Control-Request-Method", http.MethodPost)
	rec := httptest.NewRecorder()
	r.ServeHTTP(rec, req)
	if rec.Code != http.StatusOK || rec.Header().Get("Access-Control-Allow-Origin") != "*" {
		t.Fatalf("status=%d allow-origin=%q", rec.Code, rec.Header().Get("Access-Control-Allow-Origin"))
	}
}
