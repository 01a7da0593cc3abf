// Package router implements the Action Router (spec §4.8): it turns
// committed text into at most one tool call per committed utterance,
// subject to debouncing, cancellable LLM inference, confidence selection,
// the policy gate, cooldown/cache (delegated to the ToolExecutor), and
// async execution with a depth-1 newest-wins execution queue.
package router

import (
	"context"
	"log/slog"
	"sync"
	"time"

	"github.com/nullshift/vocalops/pkg/types"
)

const defaultCommitBuffer = 1

// Option is a functional option for configuring a [Router].
type Option func(*Router)

// WithConfig overrides the default [Config].
func WithConfig(cfg Config) Option {
	return func(r *Router) { r.cfg = cfg }
}

// WithLogger overrides the default logger.
func WithLogger(l *slog.Logger) Option {
	return func(r *Router) { r.log = l }
}

// Router drives one session's commit-to-tool-call pipeline. One Router per
// session; its Run loop owns all routing state exclusively, so no internal
// locking is needed beyond what's documented below.
type Router struct {
	cfg      Config
	log      *slog.Logger
	proposer IntentProposer
	executor ToolExecutor

	commits chan types.Segment
	events  chan StatusEvent

	closeOnce sync.Once
	done      chan struct{}

	modeMu sync.RWMutex
	mode   types.Mode

	// Fields below are owned exclusively by the Run goroutine.
	pendingText    string
	inferenceDone  chan inferenceResult
	inferenceCancel context.CancelFunc
	executing      bool
	executionDone  chan executionResult
	queued         *pendingCall
}

type pendingCall struct {
	tool Tool
	args map[string]types.ArgValue
	text string
}

type inferenceResult struct {
	text       string
	proposals  []types.ToolCallProposal
	err        error
	cancelled  bool
}

type executionResult struct {
	tool   string
	args   map[string]types.ArgValue
	result ExecResult
	err    error
}

// New constructs a Router over proposer and executor.
func New(proposer IntentProposer, executor ToolExecutor, opts ...Option) *Router {
	r := &Router{
		cfg:           DefaultConfig(),
		log:           slog.Default(),
		proposer:      proposer,
		executor:      executor,
		commits:       make(chan types.Segment, defaultCommitBuffer),
		events:        make(chan StatusEvent, 16),
		done:          make(chan struct{}),
		inferenceDone: make(chan inferenceResult, 1),
		executionDone: make(chan executionResult, 1),
	}
	for _, o := range opts {
		o(r)
	}
	return r
}

// Events returns the channel on which router.status transitions are
// delivered, in emission order.
func (r *Router) Events() <-chan StatusEvent {
	return r.events
}

// SetMode updates the effective mode used for manifest assembly on the
// next commit. Safe for concurrent use; takes effect on the next Push.
func (r *Router) SetMode(mode types.Mode) {
	r.modeMu.Lock()
	defer r.modeMu.Unlock()
	r.mode = mode
}

func (r *Router) currentMode() types.Mode {
	r.modeMu.RLock()
	defer r.modeMu.RUnlock()
	return r.mode
}

// Push submits a newly-committed Segment. Per spec §4.8 step 1, only one
// pending commit is ever held: a commit arriving before the previous one
// was consumed by the Run loop replaces it (newest wins).
func (r *Router) Push(seg types.Segment) {
	select {
	case r.commits <- seg:
		return
	default:
	}
	select {
	case <-r.commits:
	default:
	}
	select {
	case r.commits <- seg:
	default:
	}
}

// Close stops accepting new commits.
func (r *Router) Close() error {
	r.closeOnce.Do(func() { close(r.commits) })
	return nil
}

// Run processes commits until ctx is cancelled or the commit channel is
// closed and drained.
func (r *Router) Run(ctx context.Context) error {
	defer close(r.done)
	defer close(r.events)

	var debounce *time.Timer
	var debounceC <-chan time.Time

	resetDebounce := func() {
		if debounce != nil {
			debounce.Stop()
		}
		debounce = time.NewTimer(r.cfg.Debounce)
		debounceC = debounce.C
	}

	for {
		select {
		case <-ctx.Done():
			r.cancelInference()
			return ctx.Err()

		case seg, ok := <-r.commits:
			if !ok {
				r.cancelInference()
				return nil
			}
			// Per spec §4.8 steps 1-2: any new commit resets the debounce
			// timer and cancels whatever inference was in flight for an
			// earlier commit. Tool execution already underway is not
			// cancelled — it queues its own successor (see scheduleExecution).
			r.pendingText = seg.Text
			r.cancelInference()
			resetDebounce()

		case <-debounceC:
			debounceC = nil
			r.emit(StatusEvent{Phase: PhaseDebounced, Text: r.pendingText})
			r.startInference(ctx, r.pendingText)

		case res := <-r.inferenceDone:
			r.inferenceCancel = nil
			if res.cancelled {
				continue
			}
			r.handleInferenceResult(ctx, res)

		case res := <-r.executionDone:
			r.executing = false
			r.handleExecutionResult(res)
			if r.queued != nil {
				next := r.queued
				r.queued = nil
				r.scheduleExecution(ctx, next.tool, next.args, next.text)
			}
		}
	}
}

func (r *Router) cancelInference() {
	if r.inferenceCancel != nil {
		r.inferenceCancel()
		r.inferenceCancel = nil
	}
}

func (r *Router) startInference(ctx context.Context, text string) {
	inferCtx, cancel := context.WithCancel(ctx)
	r.inferenceCancel = cancel

	manifest := assembleManifest(r.executor.Tools(), r.currentMode(), r.cfg.Manifest)
	defs := toDefinitions(manifest)

	r.emit(StatusEvent{Phase: PhaseInferring, Text: text})

	go func() {
		proposals, err := r.proposer.Propose(inferCtx, defs, text)
		result := inferenceResult{text: text, proposals: proposals, err: err}
		if inferCtx.Err() != nil {
			result.cancelled = true
		}
		select {
		case r.inferenceDone <- result:
		case <-ctx.Done():
		}
	}()
}

func (r *Router) handleInferenceResult(ctx context.Context, res inferenceResult) {
	if res.err != nil {
		r.emit(StatusEvent{Phase: PhaseNoMatch, Text: res.text, Reason: ReasonLLMError, Err: res.err})
		return
	}

	manifest := assembleManifest(r.executor.Tools(), r.currentMode(), r.cfg.Manifest)
	sel := selectProposal(res.proposals, manifest, r.cfg.MinConfidence)
	if !sel.Ok {
		r.emit(StatusEvent{Phase: PhaseNoMatch, Text: res.text, Reason: sel.Reason})
		return
	}

	pol := sel.Tool.Policy()
	switch {
	case pol.AlwaysAsk:
		r.emit(StatusEvent{Phase: PhaseProposed, Tool: pol.ToolName, Args: sel.Proposal.Args, Text: res.text})
	case pol.ReadOnly && r.cfg.AutoRunEnabled:
		r.scheduleExecution(ctx, sel.Tool, sel.Proposal.Args, res.text)
	default:
		r.emit(StatusEvent{Phase: PhaseProposed, Tool: pol.ToolName, Args: sel.Proposal.Args, Text: res.text})
	}
}

// scheduleExecution starts tool immediately if nothing else is executing,
// or replaces any previously-queued call otherwise (depth-1 newest-wins
// per spec §4.8 concurrency note).
func (r *Router) scheduleExecution(ctx context.Context, tool Tool, args map[string]types.ArgValue, text string) {
	if r.executing {
		r.queued = &pendingCall{tool: tool, args: args, text: text}
		return
	}

	r.executing = true
	name := tool.Definition().Name
	execCtx, cancel := context.WithTimeout(ctx, r.toolTimeout())

	r.emit(StatusEvent{Phase: PhaseInvoked, Tool: name, Args: args, Text: text})

	go func() {
		defer cancel()
		res, err := r.executor.Execute(execCtx, name, args)
		select {
		case r.executionDone <- executionResult{tool: name, args: args, result: res, err: err}:
		case <-ctx.Done():
		}
	}()
}

func (r *Router) handleExecutionResult(res executionResult) {
	if res.err != nil {
		r.emit(StatusEvent{Phase: PhaseError, Tool: res.tool, Args: res.args, Err: res.err})
		return
	}
	r.emit(StatusEvent{
		Phase:     PhaseResult,
		Tool:      res.tool,
		Args:      res.args,
		Result:    res.result.Value,
		FromCache: res.result.FromCache,
	})
}

func (r *Router) toolTimeout() time.Duration {
	if r.cfg.ToolTimeout <= 0 {
		return DefaultToolTimeout
	}
	return r.cfg.ToolTimeout
}

func (r *Router) emit(e StatusEvent) {
	select {
	case r.events <- e:
	default:
		r.log.Warn("router: event channel full, dropping router.status event")
	}
}
