// Package config provides the configuration schema, loader, and provider
// registry for the vocalops speech-to-action pipeline.
package config

import (
	"github.com/nullshift/vocalops/internal/mcp"
)

// Config is the root configuration structure for the pipeline. It is
// typically loaded from a YAML file using [Load] or [LoadFromReader].
type Config struct {
	Server     ServerConfig     `yaml:"server"`
	Providers  ProvidersConfig  `yaml:"providers"`
	Router     RouterConfig     `yaml:"router"`
	Tools      ToolsConfig      `yaml:"tools"`
	Context    ContextConfig    `yaml:"context"`
	SessionLog SessionLogConfig `yaml:"session_log"`
	Events     EventsConfig     `yaml:"events"`
	Resilience ResilienceConfig `yaml:"resilience"`
}

// LogLevel is a validated logging verbosity.
type LogLevel string

// Valid LogLevel values.
const (
	LogLevelDebug LogLevel = "debug"
	LogLevelInfo  LogLevel = "info"
	LogLevelWarn  LogLevel = "warn"
	LogLevelError LogLevel = "error"
)

// IsValid reports whether l is one of the recognized level names. The zero
// value is not considered valid — callers should treat an empty LogLevel as
// "use the default" rather than passing it to IsValid.
func (l LogLevel) IsValid() bool {
	switch l {
	case LogLevelDebug, LogLevelInfo, LogLevelWarn, LogLevelError:
		return true
	default:
		return false
	}
}

// ServerConfig holds network and logging settings.
type ServerConfig struct {
	// ListenAddr is the TCP address the health endpoint listens on (e.g. ":8080").
	ListenAddr string `yaml:"listen_addr"`

	// LogLevel controls verbosity.
	LogLevel LogLevel `yaml:"log_level"`
}

// ProvidersConfig declares which provider implementation to use for each
// pipeline stage, plus any ordered fallback backends for the resilience
// wrappers (spec-agnostic ambient concern, see internal/resilience).
type ProvidersConfig struct {
	LLM        ProviderEntry `yaml:"llm"`
	Recognizer ProviderEntry `yaml:"recognizer"`
	VAD        ProviderEntry `yaml:"vad"`
	Audio      ProviderEntry `yaml:"audio"`

	LLMFallbacks        []ProviderEntry `yaml:"llm_fallbacks"`
	RecognizerFallbacks []ProviderEntry `yaml:"recognizer_fallbacks"`
}

// ProviderEntry is the common configuration block shared by all provider types.
// The Name field is used to look up the constructor in the [Registry].
type ProviderEntry struct {
	// Name selects the registered provider implementation (e.g., "openai", "whisper").
	Name string `yaml:"name"`

	// APIKey is the authentication key for the provider's API.
	APIKey string `yaml:"api_key"`

	// BaseURL overrides the provider's default API endpoint.
	BaseURL string `yaml:"base_url"`

	// Model selects a specific model within the provider (e.g., "gpt-4o", a
	// whisper.cpp model file path).
	Model string `yaml:"model"`

	// Options holds provider-specific configuration values not covered by the
	// standard fields above.
	Options map[string]any `yaml:"options"`
}

// RouterConfig overrides the action router's defaults (spec §4.8).
type RouterConfig struct {
	// DebounceMs overrides [router.DefaultDebounce]. Zero uses the default.
	DebounceMs int `yaml:"debounce_ms"`

	// MinConfidence overrides [router.DefaultMinConfidence]. Zero uses the default.
	MinConfidence float64 `yaml:"min_confidence"`

	// AutoRunEnabled gates auto-run for read_only tools.
	AutoRunEnabled bool `yaml:"auto_run_enabled"`

	// ToolTimeoutSeconds overrides [router.DefaultToolTimeout]. Zero uses the default.
	ToolTimeoutSeconds int `yaml:"tool_timeout_seconds"`

	// Manifest restricts the tools offered to the LLM to this subset of
	// names. Empty means no restriction.
	Manifest []string `yaml:"manifest"`
}

// ToolPolicyConfig is the YAML shape of one [types.ToolPolicy].
type ToolPolicyConfig struct {
	Name            string   `yaml:"name"`
	ReadOnly        bool     `yaml:"read_only"`
	AlwaysAsk       bool     `yaml:"always_ask"`
	AllowedModes    []string `yaml:"allowed_modes"`
	CooldownSeconds int      `yaml:"cooldown_seconds"`
}

// ToolsConfig holds the policy manifest and MCP server list for the tool
// registry (spec §4.9).
type ToolsConfig struct {
	Policies      []ToolPolicyConfig  `yaml:"policies"`
	MCP           MCPConfig           `yaml:"mcp"`
	SemanticCache SemanticCacheConfig `yaml:"semantic_cache"`
}

// SemanticCacheConfig holds settings for pgvector-backed near-duplicate
// cache key matching. Off by default. [Validate] checks them, but no
// package in this module reads them: the tool cache matches exact keys
// only.
type SemanticCacheConfig struct {
	Enabled     bool   `yaml:"enabled"`
	PostgresDSN string `yaml:"postgres_dsn"`
}

// MCPConfig holds the list of Model Context Protocol servers to connect to.
type MCPConfig struct {
	Servers []MCPServerConfig `yaml:"servers"`
}

// MCPServerConfig describes how to connect to a single MCP tool server.
type MCPServerConfig struct {
	// Name is a unique human-readable identifier for this server (used in logs).
	Name string `yaml:"name"`

	// Transport specifies the connection mechanism.
	Transport mcp.Transport `yaml:"transport"`

	// Command is the executable (with optional arguments) launched when
	// Transport is stdio. Ignored for streamable-http.
	Command string `yaml:"command"`

	// URL is the endpoint address used when Transport is streamable-http.
	URL string `yaml:"url"`

	// Env holds additional environment variables injected into the subprocess
	// when Transport is stdio. May be nil.
	Env map[string]string `yaml:"env"`
}

// ContextConfig configures the context monitor (spec §4.7).
type ContextConfig struct {
	// PollHz is the polling frequency. [Validate] rejects non-zero values
	// outside [contextmonitor.MinPollHz, contextmonitor.MaxPollHz]. Zero
	// uses [contextmonitor.DefaultPollHz].
	PollHz float64 `yaml:"poll_hz"`

	// MeetingApps, DevApps, WriterApps are sets of ActiveAppID values
	// recognized for each mode, evaluated in that priority order.
	MeetingApps []string `yaml:"meeting_apps"`
	DevApps     []string `yaml:"dev_apps"`
	WriterApps  []string `yaml:"writer_apps"`

	// PinnedMode, if set, overrides the derived mode unconditionally. One
	// of "global", "meeting", "dev", "writer".
	PinnedMode string `yaml:"pinned_mode"`
}

// SessionLogConfig configures the append-only session log (spec §6).
type SessionLogConfig struct {
	// PostgresDSN is the PostgreSQL connection string for the session log
	// store. Empty disables persistence — commits are still routed, just
	// not recorded.
	PostgresDSN string `yaml:"postgres_dsn"`
}

// EventsConfig configures the control-plane WebSocket event fan-out
// (internal/events).
type EventsConfig struct {
	// ListenAddr is the loopback address the event hub listens on (e.g.
	// "127.0.0.1:8090"). Empty disables the event server.
	ListenAddr string `yaml:"listen_addr"`
}

// ResilienceConfig configures the circuit breakers wrapping the recognizer
// and LLM intent proposer fallback chains.
type ResilienceConfig struct {
	MaxFailures         int     `yaml:"max_failures"`
	ResetTimeoutSeconds int     `yaml:"reset_timeout_seconds"`
	HalfOpenMaxCalls    int     `yaml:"half_open_max_calls"`
}
