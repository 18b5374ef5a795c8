package config

import "time"

type Duration struct {
	Duration time.Duration
}

const (
	EngineOAIHTTP = "oai_http"
	EngineMock    = "mock"

	PolicyFail       = "fail"
	PolicyRegenerate = "regenerate"
)

// DefaultAllowedModels is the provider's model allow-list, in fallback order.
var DefaultAllowedModels = []string{
	"sonar",
	"sonar-pro",
	"sonar-reasoning",
	"sonar-reasoning-pro",
	"sonar-deep-research",
}

const DefaultModel = "sonar-pro"

type HTTPConfig struct {
	Addr              string   `json:"addr" yaml:"addr"`
	ReadHeaderTimeout Duration `json:"read_header_timeout" yaml:"read_header_timeout"`
	IdleTimeout       Duration `json:"idle_timeout" yaml:"idle_timeout"`
	ShutdownTimeout   Duration `json:"shutdown_timeout" yaml:"shutdown_timeout"`
	MaxRequestBytes   int64    `json:"max_request_bytes" yaml:"max_request_bytes"`
	CORSOrigins       []string `json:"cors_origins" yaml:"cors_origins"`
}

type EndpointConfig struct {
	Name string `json:"name" yaml:"name"`
	Type string `json:"type" yaml:"type"`

	BaseURL             string `json:"base_url,omitempty" yaml:"base_url,omitempty"`
	ChatCompletionsPath string `json:"chat_completions_path,omitempty" yaml:"chat_completions_path,omitempty"`

	// APIKey falls back to provider.api_key when empty.
	APIKey  string   `json:"api_key,omitempty" yaml:"api_key,omitempty"`
	Timeout Duration `json:"timeout,omitempty" yaml:"timeout,omitempty"`

	// Models overrides the allow-list for this endpoint only.
	Models []string `json:"models,omitempty" yaml:"models,omitempty"`
}

type ProviderConfig struct {
	APIKey        string           `json:"api_key" yaml:"api_key"`
	Model         string           `json:"model" yaml:"model"`
	DefaultModel  string           `json:"default_model" yaml:"default_model"`
	AllowedModels []string         `json:"allowed_models" yaml:"allowed_models"`
	Endpoints     []EndpointConfig `json:"endpoints" yaml:"endpoints"`

	// RejectedModel holds an override that failed the allow-list, for logging.
	RejectedModel string `json:"-" yaml:"-"`
}

type GenerationConfig struct {
	Temperature         float64 `json:"temperature" yaml:"temperature"`
	MaxTokens           int     `json:"max_tokens" yaml:"max_tokens"`
	InsufficientPolicy  string  `json:"insufficient_policy" yaml:"insufficient_policy"`
	MaxAttempts         int     `json:"max_generation_attempts" yaml:"max_generation_attempts"`
	VerifyByDefault     bool    `json:"verify_by_default" yaml:"verify_by_default"`
	MaxResourcesPerNode int     `json:"max_resources_per_node" yaml:"max_resources_per_node"`
}

type ChatConfig struct {
	Temperature float64 `json:"temperature" yaml:"temperature"`
	MaxTokens   int     `json:"max_tokens" yaml:"max_tokens"`
}

type LinkCheckConfig struct {
	Concurrency       int      `json:"concurrency" yaml:"concurrency"`
	Timeout           Duration `json:"timeout" yaml:"timeout"`
	MaxRedirects      int      `json:"max_redirects" yaml:"max_redirects"`
	UserAgent         string   `json:"user_agent" yaml:"user_agent"`
	BlockPrivateHosts bool     `json:"block_private_hosts" yaml:"block_private_hosts"`
}

type BreakerConfig struct {
	Enabled             bool     `json:"enabled" yaml:"enabled"`
	ConsecutiveFailures uint32   `json:"consecutive_failures" yaml:"consecutive_failures"`
	Interval            Duration `json:"interval" yaml:"interval"`
	OpenTimeout         Duration `json:"open_timeout" yaml:"open_timeout"`
}

type RedisConfig struct {
	Addr    string `json:"addr" yaml:"addr"`
	Channel string `json:"channel" yaml:"channel"`
}

type MetricsConfig struct {
	Enabled   bool   `json:"enabled" yaml:"enabled"`
	Namespace string `json:"namespace" yaml:"namespace"`
}

type OtelConfig struct {
	Enabled     bool   `json:"enabled" yaml:"enabled"`
	ServiceName string `json:"service_name" yaml:"service_name"`
}

type Config struct {
	Env        string           `json:"env" yaml:"env"`
	HTTP       HTTPConfig       `json:"http" yaml:"http"`
	Provider   ProviderConfig   `json:"provider" yaml:"provider"`
	Generation GenerationConfig `json:"generation" yaml:"generation"`
	Chat       ChatConfig       `json:"chat" yaml:"chat"`
	LinkCheck  LinkCheckConfig  `json:"linkcheck" yaml:"linkcheck"`
	Breaker    BreakerConfig    `json:"breaker" yaml:"breaker"`
	Redis      RedisConfig      `json:"redis" yaml:"redis"`
	Metrics    MetricsConfig    `json:"metrics" yaml:"metrics"`
	Otel       OtelConfig       `json:"otel" yaml:"otel"`
}
