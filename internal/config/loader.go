package config

import (
	"errors"
	"fmt"
	"io"
	"log/slog"
	"os"
	"slices"

	"github.com/nullshift/vocalops/internal/mcp"
	"gopkg.in/yaml.v3"
)

// ValidProviderNames lists known provider names per provider kind.
// Used by [Validate] to warn about unrecognised provider names.
var ValidProviderNames = map[string][]string{
	"llm":        {"openai", "anyllm", "anthropic", "ollama", "gemini", "deepseek", "mistral", "groq", "llamacpp", "llamafile"},
	"recognizer": {"whisper", "whisper-native", "mock"},
	"vad":        {"silero"},
	"audio":      {"pulse", "pipewire", "opus", "mock"},
}

// validModes lists the accepted values for context.pinned_mode.
var validModes = []string{"", "global", "meeting", "dev", "writer"}

// Load reads the YAML configuration file at path and returns a validated [Config].
// It is a convenience wrapper around [LoadFromReader] and [Validate].
func Load(path string) (*Config, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, fmt.Errorf("config: open %q: %w", path, err)
	}
	defer f.Close()

	cfg, err := LoadFromReader(f)
	if err != nil {
		return nil, fmt.Errorf("config: parse %q: %w", path, err)
	}
	return cfg, nil
}

// LoadFromReader decodes a YAML config from r and validates the result.
// Useful in tests where configs are constructed from string literals.
func LoadFromReader(r io.Reader) (*Config, error) {
	cfg := &Config{}
	dec := yaml.NewDecoder(r)
	dec.KnownFields(true)
	if err := dec.Decode(cfg); err != nil {
		return nil, fmt.Errorf("config: decode yaml: %w", err)
	}
	if err := Validate(cfg); err != nil {
		return nil, err
	}
	return cfg, nil
}

// Validate checks that cfg contains a coherent set of values.
// It returns a joined error listing all validation failures found.
func Validate(cfg *Config) error {
	var errs []error

	// Server
	if cfg.Server.LogLevel != "" && !cfg.Server.LogLevel.IsValid() {
		errs = append(errs, fmt.Errorf("server.log_level %q is invalid; valid values: debug, info, warn, error", cfg.Server.LogLevel))
	}

	// Provider name validation — warn for unknown provider names.
	validateProviderName("llm", cfg.Providers.LLM.Name)
	validateProviderName("recognizer", cfg.Providers.Recognizer.Name)
	validateProviderName("vad", cfg.Providers.VAD.Name)
	validateProviderName("audio", cfg.Providers.Audio.Name)
	for _, fb := range cfg.Providers.LLMFallbacks {
		validateProviderName("llm", fb.Name)
	}
	for _, fb := range cfg.Providers.RecognizerFallbacks {
		validateProviderName("recognizer", fb.Name)
	}

	if cfg.Providers.Recognizer.Name == "" {
		errs = append(errs, errors.New("providers.recognizer is required"))
	}

	// Router
	if cfg.Router.MinConfidence != 0 && (cfg.Router.MinConfidence < 0 || cfg.Router.MinConfidence > 1) {
		errs = append(errs, fmt.Errorf("router.min_confidence %.2f is out of range [0, 1]", cfg.Router.MinConfidence))
	}
	if cfg.Router.ToolTimeoutSeconds < 0 {
		errs = append(errs, fmt.Errorf("router.tool_timeout_seconds %d must not be negative", cfg.Router.ToolTimeoutSeconds))
	}

	// Tool policies
	policyNamesSeen := make(map[string]int, len(cfg.Tools.Policies))
	for i, p := range cfg.Tools.Policies {
		prefix := fmt.Sprintf("tools.policies[%d]", i)
		if p.Name == "" {
			errs = append(errs, fmt.Errorf("%s.name is required", prefix))
		} else {
			if prev, ok := policyNamesSeen[p.Name]; ok {
				errs = append(errs, fmt.Errorf("%s.name %q is a duplicate of tools.policies[%d]", prefix, p.Name, prev))
			}
			policyNamesSeen[p.Name] = i
		}
		for _, mode := range p.AllowedModes {
			if !slices.Contains(validModes[1:], mode) {
				errs = append(errs, fmt.Errorf("%s.allowed_modes contains %q; valid values: global, meeting, dev, writer", prefix, mode))
			}
		}
		if p.CooldownSeconds < 0 {
			errs = append(errs, fmt.Errorf("%s.cooldown_seconds %d must not be negative", prefix, p.CooldownSeconds))
		}
	}

	if cfg.Tools.SemanticCache.Enabled && cfg.Tools.SemanticCache.PostgresDSN == "" {
		errs = append(errs, errors.New("tools.semantic_cache.postgres_dsn is required when semantic_cache.enabled is true"))
	}

	// MCP servers
	mcpNamesSeen := make(map[string]int, len(cfg.Tools.MCP.Servers))
	for i, srv := range cfg.Tools.MCP.Servers {
		prefix := fmt.Sprintf("tools.mcp.servers[%d]", i)
		if srv.Name == "" {
			errs = append(errs, fmt.Errorf("%s.name is required", prefix))
		} else {
			if prev, ok := mcpNamesSeen[srv.Name]; ok {
				errs = append(errs, fmt.Errorf("%s.name %q is a duplicate of tools.mcp.servers[%d]", prefix, srv.Name, prev))
			}
			mcpNamesSeen[srv.Name] = i
		}
		if srv.Transport != "" && !srv.Transport.IsValid() {
			errs = append(errs, fmt.Errorf("%s.transport %q is invalid; valid values: stdio, streamable-http", prefix, srv.Transport))
		}
		if srv.Transport == mcp.TransportStdio && srv.Command == "" {
			errs = append(errs, fmt.Errorf("%s.command is required when transport is stdio", prefix))
		}
		if srv.Transport == mcp.TransportStreamableHTTP && srv.URL == "" {
			errs = append(errs, fmt.Errorf("%s.url is required when transport is streamable-http", prefix))
		}
	}

	// Context monitor
	if cfg.Context.PollHz != 0 && (cfg.Context.PollHz < 0.5 || cfg.Context.PollHz > 2.0) {
		errs = append(errs, fmt.Errorf("context.poll_hz %.2f is out of range [0.5, 2.0]", cfg.Context.PollHz))
	}
	if !slices.Contains(validModes, cfg.Context.PinnedMode) {
		errs = append(errs, fmt.Errorf("context.pinned_mode %q is invalid; valid values: global, meeting, dev, writer", cfg.Context.PinnedMode))
	}

	// Resilience
	if cfg.Resilience.MaxFailures < 0 {
		errs = append(errs, fmt.Errorf("resilience.max_failures %d must not be negative", cfg.Resilience.MaxFailures))
	}
	if cfg.Resilience.HalfOpenMaxCalls < 0 {
		errs = append(errs, fmt.Errorf("resilience.half_open_max_calls %d must not be negative", cfg.Resilience.HalfOpenMaxCalls))
	}

	if cfg.SessionLog.PostgresDSN == "" {
		slog.Warn("session_log.postgres_dsn is empty; committed transcript segments will not be persisted")
	}

	return errors.Join(errs...)
}

// validateProviderName logs a warning if name is non-empty and not found in
// the [ValidProviderNames] list for the given kind.
func validateProviderName(kind, name string) {
	if name == "" {
		return
	}
	known, ok := ValidProviderNames[kind]
	if !ok {
		return
	}
	if slices.Contains(known, name) {
		return
	}
	slog.Warn("unknown provider name — may be a typo or third-party provider",
		"kind", kind,
		"name", name,
		"known", known,
	)
}
