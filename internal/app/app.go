// Package app wires the vocalops speech-to-action pipeline together.
//
// The App struct owns the full lifecycle: New creates and connects every
// subsystem (audio capture, VAD gate, streaming transcriber, action
// router, context monitor, event hub, session log, health endpoint), Run
// drives the pipeline until its context is cancelled, and Shutdown tears
// everything down in order.
//
// For testing, inject mock implementations via functional options. When an
// option is not provided, New builds the real subsystem from cfg.
package app

import (
	"context"
	"fmt"
	"log/slog"
	"net/http"
	"sync"
	"sync/atomic"
	"time"

	"github.com/nullshift/vocalops/internal/config"
	"github.com/nullshift/vocalops/internal/contextmonitor"
	"github.com/nullshift/vocalops/internal/contextmonitor/hyprland"
	"github.com/nullshift/vocalops/internal/events"
	"github.com/nullshift/vocalops/internal/health"
	"github.com/nullshift/vocalops/internal/intent"
	"github.com/nullshift/vocalops/internal/mcp"
	"github.com/nullshift/vocalops/internal/observe"
	"github.com/nullshift/vocalops/internal/pipelinestatus"
	"github.com/nullshift/vocalops/internal/recognizer"
	"github.com/nullshift/vocalops/internal/router"
	"github.com/nullshift/vocalops/internal/sessionlog/postgres"
	"github.com/nullshift/vocalops/internal/tools"
	"github.com/nullshift/vocalops/internal/transcriber"
	"github.com/nullshift/vocalops/internal/turnpredict"
	"github.com/nullshift/vocalops/internal/turnpredict/heuristic"
	"github.com/nullshift/vocalops/pkg/audio"
	"github.com/nullshift/vocalops/pkg/audio/bus"
	"github.com/nullshift/vocalops/pkg/provider/llm"
	vadprovider "github.com/nullshift/vocalops/pkg/provider/vad"
	"github.com/nullshift/vocalops/pkg/types"
	"github.com/nullshift/vocalops/pkg/vad"
)

// Providers holds one interface value per provider slot. Populated by
// cmd/pipelined via the config registry (and, for LLM/Recognizer, already
// wrapped in their resilience fallback chains — see
// internal/resilience.LLMFallback/RecognizerFallback). Nil Recognizer/VAD/
// Audio is a configuration error; New rejects it.
type Providers struct {
	LLM        llm.Provider
	Recognizer recognizer.Recognizer
	VAD        vadprovider.Engine
	Audio      audio.Backend
}

// SessionLogAppender persists committed segments. Satisfied by
// *sessionlog/postgres.Store. Injected as an interface so tests don't need
// a live Postgres instance.
type SessionLogAppender interface {
	Append(ctx context.Context, seg types.Segment) error
}

// App owns every subsystem's lifetime and drives the pipeline described in
// spec §2's dataflow: Mic → Capture/Hygiene → {VAD+Turn+Transcriber} →
// Router → Tools, with the Context Monitor publishing mode changes
// consumed by the Router, and every stage's events fanned out through the
// event hub.
type App struct {
	cfg       *config.Config
	providers *Providers

	source audio.Source

	contextPoller      contextmonitor.Poller
	sessionLogInjected bool

	capture      *audio.Capture
	bus          *bus.Bus
	vadSession   vadprovider.SessionHandle
	gate         *vad.Gate
	predictor    turnpredict.Predictor
	transcriber  *transcriber.Transcriber
	toolRegistry *tools.Registry
	toolCache    *tools.Cache
	executor     *tools.Executor
	mcpClient    *tools.MCPClient
	proposer     *intent.Proposer
	router       *router.Router
	monitor      *contextmonitor.Monitor
	hub          *events.Hub
	status       *pipelinestatus.Status
	sessionLog   SessionLogAppender
	healthH      *health.Handler

	httpServers []*http.Server

	// closers are called in reverse order during Shutdown.
	closers []func() error

	stopOnce sync.Once

	// currentMode mirrors the last mode published by the context monitor,
	// for labeling metrics recorded off the transcriber/router hot path.
	currentMode atomic.Int32

	metrics *observe.Metrics
}

// Option is a functional option for New. Use these to inject test doubles
// or override a subsystem that would otherwise be built from cfg.
type Option func(*App)

// WithSource overrides the audio source captured (default: microphone).
func WithSource(s audio.Source) Option {
	return func(a *App) { a.source = s }
}

// WithTurnPredictor injects a [turnpredict.Predictor] instead of the
// default heuristic.
func WithTurnPredictor(p turnpredict.Predictor) Option {
	return func(a *App) { a.predictor = p }
}

// WithContextPoller injects a [contextmonitor.Poller] instead of the
// platform default (Hyprland).
func WithContextPoller(p contextmonitor.Poller) Option {
	return func(a *App) { a.contextPoller = p }
}

// WithSessionLog injects a [SessionLogAppender] instead of connecting to
// cfg.SessionLog.PostgresDSN.
func WithSessionLog(s SessionLogAppender) Option {
	return func(a *App) { a.sessionLog = s; a.sessionLogInjected = true }
}

// ─── New ─────────────────────────────────────────────────────────────────

// New wires every subsystem together. providers must have non-nil
// Recognizer, VAD, and Audio fields; LLM may be nil only if cfg disables
// the action router entirely (cfg.Providers.LLM.Name == "").
func New(ctx context.Context, cfg *config.Config, providers *Providers, opts ...Option) (*App, error) {
	if providers.Recognizer == nil {
		return nil, fmt.Errorf("app: a Recognizer provider is required")
	}
	if providers.VAD == nil {
		return nil, fmt.Errorf("app: a VAD provider is required")
	}
	if providers.Audio == nil {
		return nil, fmt.Errorf("app: an Audio provider is required")
	}

	a := &App{
		cfg:       cfg,
		providers: providers,
		source:    audio.SourceMicrophone,
		status:    &pipelinestatus.Status{},
		metrics:   observe.DefaultMetrics(),
	}
	for _, o := range opts {
		o(a)
	}

	// ── 1. Audio capture + fan-out bus ───────────────────────────────────
	a.capture = audio.NewCapture(providers.Audio, audio.DefaultOptions())
	a.bus = bus.New()

	// ── 2. VAD engine session + gate ─────────────────────────────────────
	if err := a.initVAD(); err != nil {
		return nil, fmt.Errorf("app: init vad: %w", err)
	}

	// ── 3. Turn predictor ────────────────────────────────────────────────
	if a.predictor == nil {
		a.predictor = heuristic.New(heuristic.DefaultConfig())
	}

	// ── 4. Streaming transcriber ─────────────────────────────────────────
	a.transcriber = transcriber.New(providers.Recognizer, a.gate, a.predictor)

	// ── 5. Tool registry + executor ──────────────────────────────────────
	if err := a.initTools(ctx); err != nil {
		return nil, fmt.Errorf("app: init tools: %w", err)
	}

	// ── 6. Intent proposer + action router ───────────────────────────────
	a.initRouter()

	// ── 7. Context monitor ───────────────────────────────────────────────
	a.initContextMonitor()

	// ── 8. Event hub ─────────────────────────────────────────────────────
	a.hub = events.NewHub(slog.Default())

	// ── 9. Session log ───────────────────────────────────────────────────
	if err := a.initSessionLog(ctx); err != nil {
		return nil, fmt.Errorf("app: init session log: %w", err)
	}

	// ── 10. Health + HTTP servers ─────────────────────────────────────────
	a.initHealth()
	a.initHTTPServers()

	return a, nil
}

// defaultVADSpeechThreshold/defaultVADSilenceThreshold are the "Typical"
// values documented on [vadprovider.Config].
const (
	defaultVADSpeechThreshold  = 0.5
	defaultVADSilenceThreshold = 0.35
)

// initVAD builds a VAD engine session sized to the capture pipeline's
// fixed 50ms cadence and wraps it in a [vad.Gate].
func (a *App) initVAD() error {
	session, err := a.providers.VAD.NewSession(vadprovider.Config{
		SampleRate:       audio.InternalSampleRate,
		FrameSizeMs:      audio.FrameDurationMs,
		SpeechThreshold:  defaultVADSpeechThreshold,
		SilenceThreshold: defaultVADSilenceThreshold,
	})
	if err != nil {
		return fmt.Errorf("create vad session: %w", err)
	}
	a.vadSession = session
	a.gate = vad.NewGate(session, vad.DefaultConfig())
	a.closers = append(a.closers, session.Close)
	return nil
}

// initTools builds the registry with the builtin run_shell_command tool
// plus every policy-declared tool, wires the MCP client for any declared
// servers, and builds the cache + executor.
func (a *App) initTools(ctx context.Context) error {
	a.toolRegistry = tools.NewRegistry()
	a.toolCache = tools.NewCache(toolCacheTTL)

	policies := make(map[string]types.ToolPolicy, len(a.cfg.Tools.Policies))
	for _, p := range a.cfg.Tools.Policies {
		policy, err := toToolPolicy(p)
		if err != nil {
			return fmt.Errorf("tool policy %q: %w", p.Name, err)
		}
		policies[p.Name] = policy
	}

	if policy, ok := policies["run_shell_command"]; ok {
		if err := a.toolRegistry.Register(tools.RunShellCommandDefinition(), policy, tools.RunShellCommandHandler); err != nil {
			return fmt.Errorf("register run_shell_command: %w", err)
		}
	}

	if len(a.cfg.Tools.MCP.Servers) > 0 {
		a.mcpClient = tools.NewMCPClient("vocalops", "0.1.0")
		a.closers = append(a.closers, a.mcpClient.Close)

		policyFor := func(name string) types.ToolPolicy {
			if p, ok := policies[name]; ok {
				return p
			}
			return types.ToolPolicy{ToolName: name, AlwaysAsk: true}
		}

		for _, srv := range a.cfg.Tools.MCP.Servers {
			serverCfg := mcp.ServerConfig{
				Name:      srv.Name,
				Transport: srv.Transport,
				Command:   srv.Command,
				URL:       srv.URL,
				Env:       srv.Env,
			}
			if err := a.mcpClient.RegisterServer(ctx, serverCfg, a.toolRegistry, policyFor); err != nil {
				return fmt.Errorf("register mcp server %q: %w", srv.Name, err)
			}
			slog.Info("registered MCP server", "name", srv.Name)
		}
	}

	a.executor = tools.NewExecutor(a.toolRegistry, a.toolCache, slog.Default())
	return nil
}

// toolCacheTTL bounds how long a cached tool result is served before a
// fresh cooldown window starts; the per-call cooldown itself comes from
// each tool's ToolPolicy.CooldownSeconds.
const toolCacheTTL = 15 * time.Minute

// toToolPolicy converts the YAML policy shape into [types.ToolPolicy],
// parsing each AllowedModes string into a [types.Mode].
func toToolPolicy(p config.ToolPolicyConfig) (types.ToolPolicy, error) {
	allowed := make(map[types.Mode]struct{}, len(p.AllowedModes))
	for _, name := range p.AllowedModes {
		mode, err := parseMode(name)
		if err != nil {
			return types.ToolPolicy{}, err
		}
		allowed[mode] = struct{}{}
	}
	cooldown := p.CooldownSeconds
	if p.ReadOnly && cooldown == 0 {
		cooldown = int(tools.DefaultCooldown / time.Second)
	}
	return types.ToolPolicy{
		ToolName:        p.Name,
		ReadOnly:        p.ReadOnly,
		AlwaysAsk:       p.AlwaysAsk,
		AllowedModes:    allowed,
		CooldownSeconds: cooldown,
	}, nil
}

// parseMode parses a config mode string ("global", "meeting", "dev",
// "writer") into a [types.Mode]. This is the first point in the wiring
// layer that needs an actual types.Mode value rather than a validated
// string — internal/config's loader only validates the string against its
// own allow-list (see DESIGN.md's internal/config entry).
func parseMode(s string) (types.Mode, error) {
	switch s {
	case "global", "":
		return types.ModeGlobal, nil
	case "meeting":
		return types.ModeMeeting, nil
	case "dev":
		return types.ModeDev, nil
	case "writer":
		return types.ModeWriter, nil
	default:
		return 0, fmt.Errorf("unknown mode %q", s)
	}
}

// initRouter builds the intent proposer (nil if no LLM provider is
// configured, in which case the router runs with proposals always empty)
// and the action router itself.
func (a *App) initRouter() {
	var proposer router.IntentProposer
	if a.providers.LLM != nil {
		a.proposer = intent.New(a.providers.LLM)
		proposer = a.proposer
	} else {
		proposer = noopProposer{}
		slog.Warn("no LLM provider configured — action router will never propose tool calls")
	}

	cfg := router.DefaultConfig()
	if a.cfg.Router.DebounceMs > 0 {
		cfg.Debounce = time.Duration(a.cfg.Router.DebounceMs) * time.Millisecond
	}
	if a.cfg.Router.MinConfidence > 0 {
		cfg.MinConfidence = a.cfg.Router.MinConfidence
	}
	cfg.AutoRunEnabled = a.cfg.Router.AutoRunEnabled
	if a.cfg.Router.ToolTimeoutSeconds > 0 {
		cfg.ToolTimeout = time.Duration(a.cfg.Router.ToolTimeoutSeconds) * time.Second
	}
	if len(a.cfg.Router.Manifest) > 0 {
		cfg.Manifest = make(map[string]struct{}, len(a.cfg.Router.Manifest))
		for _, name := range a.cfg.Router.Manifest {
			cfg.Manifest[name] = struct{}{}
		}
	}

	a.router = router.New(proposer, a.executor, router.WithConfig(cfg))
}

// noopProposer implements [router.IntentProposer] as a permanent no-op, so
// the router still runs (debouncing and emitting commit events) when no
// LLM provider is configured.
type noopProposer struct{}

func (noopProposer) Propose(context.Context, []types.ToolDefinition, string) ([]types.ToolCallProposal, error) {
	return nil, nil
}
func (noopProposer) Cancel() {}

// initContextMonitor builds the context monitor over a.contextPoller (a
// Hyprland poller by default).
func (a *App) initContextMonitor() {
	poller := a.contextPollerOrDefault()

	toSet := func(names []string) map[string]struct{} {
		set := make(map[string]struct{}, len(names))
		for _, n := range names {
			set[n] = struct{}{}
		}
		return set
	}

	var pinned *types.Mode
	if a.cfg.Context.PinnedMode != "" {
		if mode, err := parseMode(a.cfg.Context.PinnedMode); err == nil {
			pinned = &mode
		}
	}

	a.monitor = contextmonitor.New(poller, contextmonitor.Config{
		PollHz:      a.cfg.Context.PollHz,
		MeetingApps: toSet(a.cfg.Context.MeetingApps),
		DevApps:     toSet(a.cfg.Context.DevApps),
		WriterApps:  toSet(a.cfg.Context.WriterApps),
		Pinned:      pinned,
		Logger:      slog.Default(),
	})
}

// initSessionLog connects to Postgres when cfg.SessionLog.PostgresDSN is
// set and no SessionLogAppender was injected. A nil sessionLog disables
// persistence; commits are still routed, just not recorded (per
// SessionLogConfig's doc comment).
func (a *App) initSessionLog(ctx context.Context) error {
	if a.sessionLogInjected {
		return nil
	}
	if a.cfg.SessionLog.PostgresDSN == "" {
		return nil
	}
	store, err := postgres.NewStore(ctx, a.cfg.SessionLog.PostgresDSN)
	if err != nil {
		return fmt.Errorf("connect session log: %w", err)
	}
	a.sessionLog = store
	a.closers = append(a.closers, func() error { store.Close(); return nil })
	return nil
}

// initHealth builds the health handler with liveness-only checks backing
// each required subsystem (there's no remote dependency to probe beyond
// the optional session log).
func (a *App) initHealth() {
	// The session log has no dedicated ping method, and probing it with a
	// real Append would leave junk rows behind on every readiness check —
	// so readiness only confirms the store connected successfully at
	// startup (see initSessionLog); there is no periodic check here.
	checkers := []health.Checker{
		{Name: "vad", Check: func(context.Context) error { return nil }},
	}
	a.healthH = health.New(checkers...)
}

// initHTTPServers starts the health endpoint (cfg.Server.ListenAddr) and,
// if configured, the event hub's WebSocket endpoint
// (cfg.Events.ListenAddr) as separate loopback listeners.
func (a *App) initHTTPServers() {
	instrument := observe.Middleware(a.metrics)
	if a.cfg.Server.ListenAddr != "" {
		mux := http.NewServeMux()
		a.healthH.Register(mux)
		srv := &http.Server{Addr: a.cfg.Server.ListenAddr, Handler: instrument(mux)}
		a.httpServers = append(a.httpServers, srv)
	}
	if a.cfg.Events.ListenAddr != "" {
		mux := http.NewServeMux()
		mux.Handle("/events", a.hub)
		srv := &http.Server{Addr: a.cfg.Events.ListenAddr, Handler: instrument(mux)}
		a.httpServers = append(a.httpServers, srv)
	}
}

func (a *App) contextPollerOrDefault() contextmonitor.Poller {
	if a.contextPoller != nil {
		return a.contextPoller
	}
	return hyprland.New()
}

// ─── Run ─────────────────────────────────────────────────────────────────

// Run starts every subsystem goroutine and blocks until ctx is cancelled
// or a fatal capture error occurs.
func (a *App) Run(ctx context.Context) error {
	frames, captureErrs, err := a.capture.Start(ctx, a.source)
	if err != nil {
		return fmt.Errorf("app: start capture: %w", err)
	}

	listener := a.bus.Subscribe()

	var wg sync.WaitGroup
	runErr := make(chan error, 1)

	wg.Go(func() { a.publishFrames(ctx, frames) })
	wg.Go(func() { a.pumpFrames(ctx, listener) })
	wg.Go(func() {
		if err := a.transcriber.Run(ctx); err != nil && ctx.Err() == nil {
			select {
			case runErr <- fmt.Errorf("transcriber: %w", err):
			default:
			}
		}
	})
	wg.Go(func() { a.drainTranscriberEvents(ctx) })
	wg.Go(func() {
		if err := a.router.Run(ctx); err != nil && ctx.Err() == nil {
			select {
			case runErr <- fmt.Errorf("router: %w", err):
			default:
			}
		}
	})
	wg.Go(func() { a.drainRouterEvents(ctx) })
	wg.Go(func() {
		if err := a.monitor.Run(ctx); err != nil && ctx.Err() == nil {
			select {
			case runErr <- fmt.Errorf("context monitor: %w", err):
			default:
			}
		}
	})
	wg.Go(func() { a.drainContextEvents(ctx) })
	wg.Go(func() { a.publishStatusLoop(ctx) })
	wg.Go(func() {
		select {
		case err := <-captureErrs:
			if err != nil {
				select {
				case runErr <- fmt.Errorf("capture: %w", err):
				default:
				}
			}
		case <-ctx.Done():
		}
	})

	for _, srv := range a.httpServers {
		srv := srv
		wg.Go(func() {
			if err := srv.ListenAndServe(); err != nil && err != http.ErrServerClosed {
				slog.Error("http server error", "addr", srv.Addr, "err", err)
			}
		})
	}

	slog.Info("pipeline running", "source", a.source.String())

	select {
	case <-ctx.Done():
		wg.Wait()
		listener.Close()
		return ctx.Err()
	case err := <-runErr:
		wg.Wait()
		listener.Close()
		return err
	}
}

// publishFrames relays raw capture output onto the audio bus (spec §4.2),
// fanning out to every subscribed listener. Publish never blocks the
// producer; a slow consumer drops frames from its own queue instead of
// back-pressuring capture.
func (a *App) publishFrames(ctx context.Context, frames <-chan audio.AudioFrame) {
	for {
		select {
		case <-ctx.Done():
			return
		case frame, ok := <-frames:
			if !ok {
				return
			}
			a.bus.Publish(frame)
		}
	}
}

// pumpFrames pulls frames from the transcriber's bus listener and forwards
// them into the transcriber, syncing the listener's cumulative drop and
// sequence-gap counters into a.status/a.metrics per spec §4.2's
// per-consumer accounting and §4.6's BusBackpressure policy.
//
// Recv, not DrainToLatest, is used here: the transcriber needs every frame
// to reconstruct a correct transcript, so skipping queued frames under
// backpressure would corrupt mid-utterance audio rather than merely delay
// it. DrainToLatest remains the right tool for a "now"-only consumer (e.g.
// a future live-VAD meter); this pipeline has none yet.
func (a *App) pumpFrames(ctx context.Context, listener *bus.Listener) {
	var lastDropped, lastGaps uint64
	syncCounters := func() {
		if d := listener.Dropped(); d > lastDropped {
			for range d - lastDropped {
				a.status.IncrDroppedChunks()
				a.metrics.RecordAudioChunkDropped(ctx, "bus")
			}
			lastDropped = d
		}
		if g := listener.GapsDetected(); g > lastGaps {
			for range g - lastGaps {
				a.status.IncrGapsDetected()
				a.metrics.RecordSequenceGap(ctx, "transcriber")
			}
			lastGaps = g
		}
	}

	for {
		frame, err := listener.Recv(ctx)
		syncCounters()
		if err != nil {
			return
		}
		a.status.RecordAudioProcessed(audio.FrameDurationMs)
		if err := a.transcriber.Push(frame); err != nil {
			a.status.IncrDroppedChunks()
			a.metrics.RecordAudioChunkDropped(ctx, "transcriber")
			continue
		}
		a.status.IncrChunksProcessed()
	}
}

// drainTranscriberEvents republishes every transcriber event through the
// hub, routes commits to the action router, and persists commits to the
// session log.
func (a *App) drainTranscriberEvents(ctx context.Context) {
	for {
		select {
		case <-ctx.Done():
			return
		case ev, ok := <-a.transcriber.Events():
			if !ok {
				return
			}
			switch {
			case ev.Partial != nil:
				a.hub.PublishPartial(*ev.Partial)
			case ev.Commit != nil:
				a.hub.PublishCommit(*ev.Commit)
				a.router.Push(*ev.Commit)
				a.metrics.RecordTranscriptCommitted(ctx, types.Mode(a.currentMode.Load()).String())
				if a.sessionLog != nil {
					if err := a.sessionLog.Append(ctx, *ev.Commit); err != nil {
						slog.Warn("session log append failed", "err", err)
					}
				}
			case ev.TurnPrediction != nil:
				a.hub.PublishTurnPrediction(*ev.TurnPrediction)
			}
		}
	}
}

// drainRouterEvents republishes every router status event through the hub.
func (a *App) drainRouterEvents(ctx context.Context) {
	for {
		select {
		case <-ctx.Done():
			return
		case ev, ok := <-a.router.Events():
			if !ok {
				return
			}
			a.hub.PublishRouterStatus(ev)
		}
	}
}

// drainContextEvents forwards context monitor changes to the router's
// mode gate and republishes them through the hub.
func (a *App) drainContextEvents(ctx context.Context) {
	for {
		select {
		case <-ctx.Done():
			return
		case c, ok := <-a.monitor.Events():
			if !ok {
				return
			}
			a.router.SetMode(c.Effective())
			a.currentMode.Store(int32(c.Effective()))
			a.hub.PublishContextChanged(c)
		}
	}
}

// publishStatusLoop publishes pipeline.status on a fixed interval, since
// spec §6 specifies it as polled rather than pushed.
func (a *App) publishStatusLoop(ctx context.Context) {
	const interval = 2 * time.Second
	ticker := time.NewTicker(interval)
	defer ticker.Stop()
	for {
		select {
		case <-ctx.Done():
			return
		case <-ticker.C:
			snap := a.status.Read()
			a.hub.PublishPipelineStatus(events.PipelineStatus{
				State:          a.transcriber.State().String(),
				BufferMs:       snap.AudioProcessedMs,
				DroppedFrames:  int64(snap.DroppedChunks),
				ReconnectCount: 0,
			})
		}
	}
}

// ─── Accessors ───────────────────────────────────────────────────────────

// Events returns the control-plane event hub, for embedding its ServeHTTP
// handler in a caller-owned mux.
func (a *App) Events() *events.Hub { return a.hub }

// Health returns the health/readiness handler.
func (a *App) Health() *health.Handler { return a.healthH }

// Status returns the pipeline status counters.
func (a *App) Status() *pipelinestatus.Status { return a.status }

// ─── Shutdown ──────────────────────────────────────────────────────────────

// Shutdown tears down every subsystem in reverse-init order, respecting
// ctx's deadline. Safe to call more than once; only the first call runs.
func (a *App) Shutdown(ctx context.Context) error {
	var shutdownErr error
	a.stopOnce.Do(func() {
		slog.Info("shutting down", "closers", len(a.closers))

		if err := a.capture.Stop(); err != nil {
			slog.Warn("capture stop error", "err", err)
		}
		if err := a.transcriber.Close(); err != nil {
			slog.Warn("transcriber close error", "err", err)
		}
		if err := a.router.Close(); err != nil {
			slog.Warn("router close error", "err", err)
		}

		for _, srv := range a.httpServers {
			shutdownCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
			if err := srv.Shutdown(shutdownCtx); err != nil {
				slog.Warn("http server shutdown error", "addr", srv.Addr, "err", err)
			}
			cancel()
		}

		for i := len(a.closers) - 1; i >= 0; i-- {
			select {
			case <-ctx.Done():
				slog.Warn("shutdown deadline exceeded", "remaining", i+1)
				shutdownErr = ctx.Err()
				return
			default:
			}
			if err := a.closers[i](); err != nil {
				slog.Warn("closer error", "index", i, "err", err)
			}
		}

		slog.Info("shutdown complete")
	})
	return shutdownErr
}
