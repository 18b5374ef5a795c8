package router

import (
	"fmt"
	"slices"
	"strings"

	"github.com/yungbote/learnmap-backend/internal/config"
	"github.com/yungbote/learnmap-backend/internal/provider"
	"github.com/yungbote/learnmap-backend/internal/provider/mock"
	"github.com/yungbote/learnmap-backend/internal/provider/oaihttp"
)

// New builds one provider.Endpoint per configured endpoint, in priority
// order. Each endpoint's model list starts with the preferred model and
// continues with the rest of its allow-list.
func New(cfg config.ProviderConfig) ([]provider.Endpoint, error) {
	out := make([]provider.Endpoint, 0, len(cfg.Endpoints))
	for _, ep := range cfg.Endpoints {
		var eng provider.Engine
		switch strings.ToLower(strings.TrimSpace(ep.Type)) {
		case config.EngineMock:
			eng = mock.New()
		case config.EngineOAIHTTP, "openai_http":
			e, err := oaihttp.New(ep)
			if err != nil {
				return nil, fmt.Errorf("endpoint %q: %w", ep.Name, err)
			}
			eng = e
		default:
			return nil, fmt.Errorf("unsupported engine type %q for endpoint %q", ep.Type, ep.Name)
		}

		allowed := ep.Models
		if len(allowed) == 0 {
			allowed = cfg.AllowedModels
		}
		out = append(out, provider.Endpoint{
			Name:   ep.Name,
			Engine: eng,
			Models: OrderModels(cfg.Model, allowed),
		})
	}
	return out, nil
}

// OrderModels puts preferred first (when allowed) followed by the remaining
// allow-list entries in their original order.
func OrderModels(preferred string, allowed []string) []string {
	out := make([]string, 0, len(allowed))
	if slices.Contains(allowed, preferred) {
		out = append(out, preferred)
	}
	for _, m := range allowed {
		if m != preferred {
			out = append(out, m)
		}
	}
	return out
}
