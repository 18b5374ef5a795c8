package router

import (
	"context"
	"reflect"
	"strings"
	"testing"

	"github.com/yungbote/learnmap-backend/internal/config"
	"github.com/yungbote/learnmap-backend/internal/provider"
)

func TestOrderModels(t *testing.T) {
	got := OrderModels("sonar-reasoning", config.DefaultAllowedModels)
	want := []string{"sonar-reasoning", "sonar", "sonar-pro", "sonar-reasoning-pro", "sonar-deep-research"}
	if !reflect.DeepEqual(got, want) {
		t.Fatalf("got %v", got)
	}
	// preferred outside the endpoint's own list is not injected
	got = OrderModels("sonar-pro", []string{"sonar"})
	if !reflect.DeepEqual(got, []string{"sonar"}) {
		t.Fatalf("got %v", got)
	}
}

func TestNewBuildsEndpointsInOrder(t *testing.T) {
	eps, err := New(config.ProviderConfig{
		Model:         "sonar-pro",
		AllowedModels: []string{"sonar", "sonar-pro"},
		Endpoints: []config.EndpointConfig{
			{Name: "primary", Type: config.EngineOAIHTTP, BaseURL: "https://api.perplexity.ai"},
			{Name: "offline", Type: config.EngineMock, Models: []string{"sonar"}},
		},
	})
	if err != nil {
		t.Fatalf("New: %v", err)
	}
	if len(eps) != 2 || eps[0].Name != "primary" || eps[1].Name != "offline" {
		t.Fatalf("eps=%+v", eps)
	}
	if !reflect.DeepEqual(eps[0].Models, []string{"sonar-pro", "sonar"}) {
		t.Fatalf("primary models=%v", eps[0].Models)
	}
	if !reflect.DeepEqual(eps[1].Models, []string{"sonar"}) {
		t.Fatalf("offline models=%v", eps[1].Models)
	}

	text, err := eps[1].Engine.GenerateText(context.Background(), "sonar", []provider.Message{
		{Role: "user", Content: `Create a comprehensive learning map for "Rust" at the advanced level.`},
	}, provider.GenerateOptions{})
	if err != nil {
		t.Fatalf("mock: %v", err)
	}
	if !strings.Contains(text, `"topic": "Rust"`) || !strings.Contains(text, `"level": "advanced"`) {
		t.Fatalf("mock text=%s", text)
	}
}

func TestNewRejectsUnknownEngine(t *testing.T) {
	_, err := New(config.ProviderConfig{Endpoints: []config.EndpointConfig{{Name: "x", Type: "grpc"}}})
	if err == nil {
		t.Fatalf("expected error")
	}
}
