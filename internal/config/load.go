package config

import (
	"encoding/json"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"slices"
	"strconv"
	"strings"
	"time"

	"github.com/joho/godotenv"
	"gopkg.in/yaml.v3"

	"github.com/yungbote/learnmap-backend/internal/platform/envutil"
)

func (d *Duration) UnmarshalJSON(b []byte) error {
	s := strings.TrimSpace(string(b))
	if s == "" || s == "null" {
		d.Duration = 0
		return nil
	}
	if len(s) >= 2 && s[0] == '"' && s[len(s)-1] == '"' {
		u, err := strconv.Unquote(s)
		if err != nil {
			return err
		}
		return d.parse(u)
	}
	n, err := strconv.ParseInt(s, 10, 64)
	if err != nil {
		return fmt.Errorf("duration must be a JSON string like \"5s\" or an int nanoseconds: %w", err)
	}
	d.Duration = time.Duration(n)
	return nil
}

func (d *Duration) UnmarshalYAML(node *yaml.Node) error {
	if node.Kind != yaml.ScalarNode {
		return fmt.Errorf("line %d: duration must be a scalar", node.Line)
	}
	if n, err := strconv.ParseInt(strings.TrimSpace(node.Value), 10, 64); err == nil {
		d.Duration = time.Duration(n)
		return nil
	}
	return d.parse(node.Value)
}

func (d Duration) MarshalJSON() ([]byte, error) {
	return json.Marshal(d.Duration.String())
}

func (d *Duration) parse(s string) error {
	s = strings.TrimSpace(s)
	if s == "" {
		d.Duration = 0
		return nil
	}
	dd, err := time.ParseDuration(s)
	if err != nil {
		return err
	}
	d.Duration = dd
	return nil
}

func defaultConfig() *Config {
	return &Config{
		Env: "development",
		HTTP: HTTPConfig{
			Addr:              ":8080",
			ReadHeaderTimeout: Duration{Duration: 5 * time.Second},
			IdleTimeout:       Duration{Duration: 2 * time.Minute},
			ShutdownTimeout:   Duration{Duration: 15 * time.Second},
			MaxRequestBytes:   1 << 20,
			CORSOrigins:       []string{"*"},
		},
		Provider: ProviderConfig{
			DefaultModel:  DefaultModel,
			AllowedModels: slices.Clone(DefaultAllowedModels),
			Endpoints: []EndpointConfig{{
				Name:                "perplexity",
				Type:                EngineOAIHTTP,
				BaseURL:             "https://api.perplexity.ai",
				ChatCompletionsPath: "/chat/completions",
				Timeout:             Duration{Duration: 120 * time.Second},
			}},
		},
		Generation: GenerationConfig{
			Temperature:         0.2,
			MaxTokens:           10000,
			InsufficientPolicy:  PolicyFail,
			MaxAttempts:         2,
			VerifyByDefault:     true,
			MaxResourcesPerNode: 3,
		},
		Chat: ChatConfig{
			Temperature: 0.3,
			MaxTokens:   2000,
		},
		LinkCheck: LinkCheckConfig{
			Concurrency:       10,
			Timeout:           Duration{Duration: 5 * time.Second},
			MaxRedirects:      6,
			UserAgent:         "LearnmapLinkCheck/1.0 (+https://learnmap.app)",
			BlockPrivateHosts: true,
		},
		Breaker: BreakerConfig{
			Enabled:             true,
			ConsecutiveFailures: 5,
			Interval:            Duration{Duration: time.Minute},
			OpenTimeout:         Duration{Duration: 30 * time.Second},
		},
		Redis: RedisConfig{
			Channel: "learnmap:events",
		},
		Metrics: MetricsConfig{
			Enabled:   true,
			Namespace: "learnmap",
		},
		Otel: OtelConfig{
			ServiceName: "learnmap-backend",
		},
	}
}

// Load resolves configuration once: defaults, then an optional config file,
// then a .env file, then process environment.
func Load() (*Config, error) {
	cfg := defaultConfig()

	cfgPath, err := resolveConfigPath()
	if err != nil {
		return nil, err
	}
	if cfgPath != "" {
		if err := decodeFile(cfgPath, cfg); err != nil {
			return nil, fmt.Errorf("config %s: %w", cfgPath, err)
		}
	}

	envFile := envutil.String(".env", "LEARNMAP_ENV_FILE")
	if err := godotenv.Load(envFile); err != nil && !errors.Is(err, os.ErrNotExist) {
		return nil, fmt.Errorf("load %s: %w", envFile, err)
	}

	applyEnv(cfg)

	if err := normalize(cfg); err != nil {
		return nil, err
	}
	return cfg, nil
}

func resolveConfigPath() (string, error) {
	if p := strings.TrimSpace(os.Getenv("LEARNMAP_CONFIG_PATH")); p != "" {
		if _, err := os.Stat(p); err != nil {
			return "", fmt.Errorf("LEARNMAP_CONFIG_PATH: %w", err)
		}
		return p, nil
	}
	wd, err := os.Getwd()
	if err != nil {
		return "", nil
	}
	for _, name := range []string{"config.yaml", "config.yml", "config.json"} {
		p := filepath.Join(wd, "config", name)
		if _, err := os.Stat(p); err == nil {
			return p, nil
		}
	}
	return "", nil
}

func decodeFile(path string, cfg *Config) error {
	b, err := os.ReadFile(path)
	if err != nil {
		return err
	}
	switch strings.ToLower(filepath.Ext(path)) {
	case ".yaml", ".yml":
		return yaml.Unmarshal(b, cfg)
	default:
		return json.Unmarshal(b, cfg)
	}
}

func applyEnv(cfg *Config) {
	if v := strings.TrimSpace(os.Getenv("LOG_MODE")); v != "" {
		cfg.Env = v
	}
	if v := strings.TrimSpace(os.Getenv("LEARNMAP_HTTP_ADDR")); v != "" {
		cfg.HTTP.Addr = v
	}
	if v := strings.TrimSpace(os.Getenv("PERPLEXITY_API_KEY")); v != "" {
		cfg.Provider.APIKey = v
	}
	if v := envutil.String("", "PERPLEXITY_MODEL", "VITE_PERPLEXITY_MODEL"); v != "" {
		cfg.Provider.Model = v
	}
	if strings.EqualFold(strings.TrimSpace(os.Getenv("LEARNMAP_PROVIDER")), EngineMock) {
		cfg.Provider.Endpoints = []EndpointConfig{{Name: "mock", Type: EngineMock}}
	}
	if v := strings.TrimSpace(os.Getenv("LEARNMAP_INSUFFICIENT_POLICY")); v != "" {
		cfg.Generation.InsufficientPolicy = v
	}
	cfg.Generation.MaxAttempts = envutil.Int("LEARNMAP_MAX_GENERATION_ATTEMPTS", cfg.Generation.MaxAttempts)
	cfg.LinkCheck.Concurrency = envutil.Int("LINKCHECK_CONCURRENCY", cfg.LinkCheck.Concurrency)
	cfg.LinkCheck.Timeout.Duration = envutil.Duration("LINKCHECK_TIMEOUT", cfg.LinkCheck.Timeout.Duration)
	cfg.LinkCheck.BlockPrivateHosts = envutil.Bool("LINKCHECK_BLOCK_PRIVATE", cfg.LinkCheck.BlockPrivateHosts)
	if v := strings.TrimSpace(os.Getenv("REDIS_ADDR")); v != "" {
		cfg.Redis.Addr = v
	}
	if v := strings.TrimSpace(os.Getenv("REDIS_CHANNEL")); v != "" {
		cfg.Redis.Channel = v
	}
	cfg.Metrics.Enabled = envutil.Bool("METRICS_ENABLED", cfg.Metrics.Enabled)
	cfg.Otel.Enabled = envutil.Bool("OTEL_ENABLED", cfg.Otel.Enabled)
	if v := strings.TrimSpace(os.Getenv("OTEL_SERVICE_NAME")); v != "" {
		cfg.Otel.ServiceName = v
	}
}

func normalize(cfg *Config) error {
	if strings.TrimSpace(cfg.Env) == "" {
		cfg.Env = "development"
	}
	if strings.TrimSpace(cfg.HTTP.Addr) == "" {
		cfg.HTTP.Addr = ":8080"
	}
	if cfg.HTTP.MaxRequestBytes <= 0 {
		cfg.HTTP.MaxRequestBytes = 1 << 20
	}

	p := &cfg.Provider
	p.AllowedModels = cleanList(p.AllowedModels)
	if len(p.AllowedModels) == 0 {
		p.AllowedModels = slices.Clone(DefaultAllowedModels)
	}
	if !slices.Contains(p.AllowedModels, p.DefaultModel) {
		return fmt.Errorf("provider.default_model %q is not in provider.allowed_models", p.DefaultModel)
	}
	model, ok := ResolveModel(p.Model, p.AllowedModels, p.DefaultModel)
	if !ok {
		p.RejectedModel = p.Model
	}
	p.Model = model

	if len(p.Endpoints) == 0 {
		return errors.New("config must define at least one provider endpoint")
	}
	seen := map[string]bool{}
	for i := range p.Endpoints {
		ep := &p.Endpoints[i]
		ep.Name = strings.TrimSpace(ep.Name)
		if ep.Name == "" {
			return fmt.Errorf("provider.endpoints[%d] missing name", i)
		}
		if seen[ep.Name] {
			return fmt.Errorf("duplicate provider endpoint %q", ep.Name)
		}
		seen[ep.Name] = true
		ep.Models = cleanList(ep.Models)

		switch strings.ToLower(strings.TrimSpace(ep.Type)) {
		case EngineMock:
			ep.Type = EngineMock
		case EngineOAIHTTP, "openai_http", "":
			ep.Type = EngineOAIHTTP
			ep.BaseURL = strings.TrimRight(strings.TrimSpace(ep.BaseURL), "/")
			if ep.BaseURL == "" {
				return fmt.Errorf("endpoint %q (oai_http) missing base_url", ep.Name)
			}
			if strings.TrimSpace(ep.ChatCompletionsPath) == "" {
				ep.ChatCompletionsPath = "/chat/completions"
			}
			if ep.Timeout.Duration <= 0 {
				ep.Timeout = Duration{Duration: 120 * time.Second}
			}
			if strings.TrimSpace(ep.APIKey) == "" {
				ep.APIKey = p.APIKey
			}
		default:
			return fmt.Errorf("endpoint %q invalid type=%q", ep.Name, ep.Type)
		}
	}

	g := &cfg.Generation
	g.InsufficientPolicy = strings.ToLower(strings.TrimSpace(g.InsufficientPolicy))
	switch g.InsufficientPolicy {
	case "":
		g.InsufficientPolicy = PolicyFail
	case PolicyFail, PolicyRegenerate:
	default:
		return fmt.Errorf("invalid generation.insufficient_policy=%q", g.InsufficientPolicy)
	}
	if g.MaxAttempts <= 0 {
		g.MaxAttempts = 1
	}
	if g.MaxTokens <= 0 {
		g.MaxTokens = 10000
	}
	if g.MaxResourcesPerNode <= 0 {
		g.MaxResourcesPerNode = 3
	}
	if cfg.Chat.MaxTokens <= 0 {
		cfg.Chat.MaxTokens = 2000
	}

	lc := &cfg.LinkCheck
	if lc.Concurrency <= 0 {
		lc.Concurrency = 10
	}
	if lc.Timeout.Duration <= 0 {
		lc.Timeout = Duration{Duration: 5 * time.Second}
	}
	if lc.MaxRedirects <= 0 {
		lc.MaxRedirects = 6
	}

	if cfg.Breaker.ConsecutiveFailures == 0 {
		cfg.Breaker.ConsecutiveFailures = 5
	}
	if strings.TrimSpace(cfg.Redis.Channel) == "" {
		cfg.Redis.Channel = "learnmap:events"
	}
	if strings.TrimSpace(cfg.Metrics.Namespace) == "" {
		cfg.Metrics.Namespace = "learnmap"
	}
	return nil
}

// ResolveModel validates an override against the allow-list. An empty override
// selects def; an unknown one also selects def and reports false.
func ResolveModel(requested string, allowed []string, def string) (string, bool) {
	requested = strings.TrimSpace(requested)
	if requested == "" {
		return def, true
	}
	if slices.Contains(allowed, requested) {
		return requested, true
	}
	return def, false
}

// MissingCredential reports the first HTTP endpoint with no API key. It is
// surfaced per request rather than at startup.
func (c *Config) MissingCredential() error {
	for _, ep := range c.Provider.Endpoints {
		if ep.Type == EngineOAIHTTP && strings.TrimSpace(ep.APIKey) == "" {
			return fmt.Errorf("PERPLEXITY_API_KEY is not configured (endpoint %q)", ep.Name)
		}
	}
	return nil
}

func cleanList(in []string) []string {
	out := make([]string, 0, len(in))
	for _, s := range in {
		s = strings.TrimSpace(s)
		if s != "" && !slices.Contains(out, s) {
			out = append(out, s)
		}
	}
	return out
}
