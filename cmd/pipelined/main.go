// Command pipelined is the main entry point for the vocalops speech-to-action
// pipeline.
package main

import (
	"context"
	"errors"
	"flag"
	"fmt"
	"log/slog"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/nullshift/vocalops/internal/app"
	"github.com/nullshift/vocalops/internal/config"
	"github.com/nullshift/vocalops/internal/observe"
	"github.com/nullshift/vocalops/internal/recognizer"
	"github.com/nullshift/vocalops/internal/recognizer/whisper"
	"github.com/nullshift/vocalops/internal/resilience"
	"github.com/nullshift/vocalops/pkg/audio"
	"github.com/nullshift/vocalops/pkg/audio/capture"
	"github.com/nullshift/vocalops/pkg/provider/llm"
	"github.com/nullshift/vocalops/pkg/provider/llm/anyllm"
	anyllmlib "github.com/mozilla-ai/any-llm-go"
	"github.com/nullshift/vocalops/pkg/provider/llm/openai"
	vadprovider "github.com/nullshift/vocalops/pkg/provider/vad"
	"github.com/nullshift/vocalops/pkg/provider/vad/silero"
)

// version is the pipeline build version reported in telemetry.
const version = "0.1.0"

func main() {
	os.Exit(run())
}

func run() int {
	// ── CLI flags ────────────────────────────────────────────────────────
	configPath := flag.String("config", "config.yaml", "path to the YAML configuration file")
	flag.Parse()

	// ── Load configuration ──────────────────────────────────────────────
	cfg, err := config.Load(*configPath)
	if err != nil {
		if errors.Is(err, os.ErrNotExist) {
			fmt.Fprintf(os.Stderr, "pipelined: config file %q not found — copy configs/example.yaml to get started\n", *configPath)
		} else {
			fmt.Fprintf(os.Stderr, "pipelined: %v\n", err)
		}
		return 1
	}

	// ── Logger ───────────────────────────────────────────────────────────
	logger := newLogger(cfg.Server.LogLevel)
	slog.SetDefault(logger)

	slog.Info("pipelined starting",
		"config", *configPath,
		"listen_addr", cfg.Server.ListenAddr,
		"log_level", cfg.Server.LogLevel,
	)

	// ── Telemetry ────────────────────────────────────────────────────────
	shutdownTelemetry, err := observe.InitProvider(context.Background(), observe.ProviderConfig{
		ServiceVersion: version,
	})
	if err != nil {
		slog.Error("failed to initialise telemetry", "err", err)
		return 1
	}
	defer func() {
		shutdownCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
		defer cancel()
		if err := shutdownTelemetry(shutdownCtx); err != nil {
			slog.Warn("telemetry shutdown error", "err", err)
		}
	}()

	// ── Provider registry ────────────────────────────────────────────────
	reg := config.NewRegistry()
	registerBuiltinProviders(reg)

	// ── Instantiate providers ────────────────────────────────────────────
	providers, err := buildProviders(cfg, reg)
	if err != nil {
		slog.Error("failed to build providers", "err", err)
		return 1
	}

	// ── Startup summary ──────────────────────────────────────────────────
	printStartupSummary(cfg)

	// ── Application wiring ───────────────────────────────────────────────
	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	application, err := app.New(ctx, cfg, providers)
	if err != nil {
		slog.Error("failed to initialise application", "err", err)
		return 1
	}

	slog.Info("pipeline ready — press Ctrl+C to shut down")

	if err := application.Run(ctx); err != nil && !errors.Is(err, context.Canceled) {
		slog.Error("run error", "err", err)
		return 1
	}

	// ── Graceful shutdown ────────────────────────────────────────────────
	shutdownCtx, cancel := context.WithTimeout(context.Background(), 15*time.Second)
	defer cancel()

	slog.Info("shutdown signal received, stopping…")
	if err := application.Shutdown(shutdownCtx); err != nil {
		slog.Error("shutdown error", "err", err)
		return 1
	}
	slog.Info("goodbye")
	return 0
}

// ── Provider wiring ─────────────────────────────────────────────────────

// builtinProviders maps provider category names to the implementations that
// ship with this pipeline. Used for startup logging.
var builtinProviders = map[string][]string{
	"llm":        {"openai", "anyllm"},
	"recognizer": {"whisper"},
	"vad":        {"silero"},
	"audio":      {"pulse", "pipewire", "opus", "mock"},
}

// registerBuiltinProviders wires every real factory this binary ships with
// into reg. Unlike the factories, the model-loading steps inside whisper's
// and silero's factories run lazily — only when a config entry actually
// selects that name.
func registerBuiltinProviders(reg *config.Registry) {
	reg.RegisterLLM("openai", func(e config.ProviderEntry) (llm.Provider, error) {
		var opts []openai.Option
		if e.BaseURL != "" {
			opts = append(opts, openai.WithBaseURL(e.BaseURL))
		}
		return openai.New(e.APIKey, e.Model, opts...)
	})
	reg.RegisterLLM("anyllm", func(e config.ProviderEntry) (llm.Provider, error) {
		backend, _ := e.Options["backend"].(string)
		if backend == "" {
			backend = "ollama"
		}
		var opts []anyllmlib.Option
		if e.APIKey != "" {
			opts = append(opts, anyllmlib.WithAPIKey(e.APIKey))
		}
		if e.BaseURL != "" {
			opts = append(opts, anyllmlib.WithBaseURL(e.BaseURL))
		}
		return anyllm.New(backend, e.Model, opts...)
	})

	reg.RegisterRecognizer("whisper", func(e config.ProviderEntry) (recognizer.Recognizer, error) {
		model, err := whisper.LoadModel(e.Model)
		if err != nil {
			return nil, fmt.Errorf("load whisper model %q: %w", e.Model, err)
		}
		var opts []whisper.Option
		if lang, _ := e.Options["language"].(string); lang != "" {
			opts = append(opts, whisper.WithLanguage(lang))
		}
		return whisper.New(model, opts...)
	})

	reg.RegisterVAD("silero", func(e config.ProviderEntry) (vadprovider.Engine, error) {
		return silero.New(e.Model)
	})

	reg.RegisterAudio("pulse", func(e config.ProviderEntry) (audio.Backend, error) {
		mic, _ := e.Options["mic_device"].(string)
		sys, _ := e.Options["system_device"].(string)
		return capture.NewPulseBackend(mic, sys), nil
	})
	reg.RegisterAudio("pipewire", func(e config.ProviderEntry) (audio.Backend, error) {
		mic, _ := e.Options["mic_target"].(string)
		sys, _ := e.Options["system_target"].(string)
		return capture.NewPipewireBackend(mic, sys), nil
	})
	reg.RegisterAudio("opus", func(e config.ProviderEntry) (audio.Backend, error) {
		socket, _ := e.Options["socket_path"].(string)
		return capture.NewOpusBackend(socket), nil
	})
	reg.RegisterAudio("mock", func(config.ProviderEntry) (audio.Backend, error) {
		return capture.NewMockBackend(), nil
	})

	for kind, names := range builtinProviders {
		for _, name := range names {
			slog.Debug("registered provider", "kind", kind, "name", name)
		}
	}
}

// buildProviders instantiates every provider named in cfg and wraps the LLM
// and Recognizer providers in their resilience fallback chains. Unlike the
// teacher (seven optional provider kinds), this pipeline has four kinds.
// The LLM is optional: when providers.llm.name is empty no LLM is created.
// Recognizer, VAD and Audio are required, so a missing or unregistered one
// is a hard failure rather than a soft skip.
func buildProviders(cfg *config.Config, reg *config.Registry) (*app.Providers, error) {
	ps := &app.Providers{}

	if cfg.Providers.LLM.Name != "" {
		primary, err := reg.CreateLLM(cfg.Providers.LLM)
		if err != nil {
			return nil, fmt.Errorf("create llm provider %q: %w", cfg.Providers.LLM.Name, err)
		}
		fallback := resilience.NewLLMFallback(primary, cfg.Providers.LLM.Name, fallbackConfig(cfg))
		for _, entry := range cfg.Providers.LLMFallbacks {
			p, err := reg.CreateLLM(entry)
			if err != nil {
				return nil, fmt.Errorf("create llm fallback %q: %w", entry.Name, err)
			}
			fallback.AddFallback(entry.Name, p)
		}
		ps.LLM = fallback
		slog.Info("provider created", "kind", "llm", "name", cfg.Providers.LLM.Name, "fallbacks", len(cfg.Providers.LLMFallbacks))
	}

	primaryRecognizer := recognizerFactory(reg, cfg.Providers.Recognizer)
	recognizerFallback := resilience.NewRecognizerFallback(primaryRecognizer, cfg.Providers.Recognizer.Name, fallbackConfig(cfg))
	for _, entry := range cfg.Providers.RecognizerFallbacks {
		recognizerFallback.AddFallback(entry.Name, recognizerFactory(reg, entry))
	}
	rec, err := recognizerFallback.New()
	if err != nil {
		return nil, fmt.Errorf("create recognizer %q: %w", cfg.Providers.Recognizer.Name, err)
	}
	ps.Recognizer = rec
	slog.Info("provider created", "kind", "recognizer", "name", cfg.Providers.Recognizer.Name, "fallbacks", len(cfg.Providers.RecognizerFallbacks))

	vadEngine, err := reg.CreateVAD(cfg.Providers.VAD)
	if err != nil {
		return nil, fmt.Errorf("create vad provider %q: %w", cfg.Providers.VAD.Name, err)
	}
	ps.VAD = vadEngine
	slog.Info("provider created", "kind", "vad", "name", cfg.Providers.VAD.Name)

	audioBackend, err := reg.CreateAudio(cfg.Providers.Audio)
	if err != nil {
		return nil, fmt.Errorf("create audio provider %q: %w", cfg.Providers.Audio.Name, err)
	}
	ps.Audio = audioBackend
	slog.Info("provider created", "kind", "audio", "name", cfg.Providers.Audio.Name)

	return ps, nil
}

// recognizerFactory closes over entry so resilience.RecognizerFallback can
// construct (and, on failover, reconstruct) a recognizer session lazily.
func recognizerFactory(reg *config.Registry, entry config.ProviderEntry) resilience.RecognizerFactory {
	return func() (recognizer.Recognizer, error) {
		return reg.CreateRecognizer(entry)
	}
}

// fallbackConfig builds a [resilience.FallbackConfig] from cfg.Resilience,
// falling back to the package defaults for any zero field.
func fallbackConfig(cfg *config.Config) resilience.FallbackConfig {
	fc := resilience.FallbackConfig{}
	if cfg.Resilience.MaxFailures > 0 {
		fc.CircuitBreaker.MaxFailures = cfg.Resilience.MaxFailures
	}
	if cfg.Resilience.ResetTimeoutSeconds > 0 {
		fc.CircuitBreaker.ResetTimeout = time.Duration(cfg.Resilience.ResetTimeoutSeconds) * time.Second
	}
	if cfg.Resilience.HalfOpenMaxCalls > 0 {
		fc.CircuitBreaker.HalfOpenMax = cfg.Resilience.HalfOpenMaxCalls
	}
	return fc
}

// ── Startup summary ──────────────────────────────────────────────────────

func printStartupSummary(cfg *config.Config) {
	fmt.Println("╔═══════════════════════════════════════╗")
	fmt.Println("║         vocalops — startup summary     ║")
	fmt.Println("╠═══════════════════════════════════════╣")
	printProvider("LLM", cfg.Providers.LLM.Name, cfg.Providers.LLM.Model)
	printProvider("Recognizer", cfg.Providers.Recognizer.Name, cfg.Providers.Recognizer.Model)
	printProvider("VAD", cfg.Providers.VAD.Name, "")
	printProvider("Audio", cfg.Providers.Audio.Name, "")
	fmt.Printf("║  Tool policies   : %-19d ║\n", len(cfg.Tools.Policies))
	fmt.Printf("║  MCP servers     : %-19d ║\n", len(cfg.Tools.MCP.Servers))
	if cfg.Server.ListenAddr != "" {
		fmt.Printf("║  Listen addr     : %-19s ║\n", cfg.Server.ListenAddr)
	}
	if cfg.Events.ListenAddr != "" {
		fmt.Printf("║  Events addr     : %-19s ║\n", cfg.Events.ListenAddr)
	}
	fmt.Println("╚═══════════════════════════════════════╝")
}

func printProvider(kind, name, model string) {
	value := name
	if value == "" {
		value = "(not configured)"
	} else if model != "" {
		value = name + " / " + model
	}
	if len(value) > 19 {
		value = value[:16] + "…"
	}
	fmt.Printf("║  %-12s    : %-19s ║\n", kind, value)
}

// ── Logger ────────────────────────────────────────────────────────────────

func newLogger(level config.LogLevel) *slog.Logger {
	var lvl slog.Level
	switch level {
	case config.LogLevelDebug:
		lvl = slog.LevelDebug
	case config.LogLevelWarn:
		lvl = slog.LevelWarn
	case config.LogLevelError:
		lvl = slog.LevelError
	default:
		lvl = slog.LevelInfo
	}
	return slog.New(slog.NewTextHandler(os.Stderr, &slog.HandlerOptions{Level: lvl}))
}
