package router

import (
	"context"

	"github.com/nullshift/vocalops/pkg/types"
)

// Tool is one registry entry: a name, description, and argument schema for
// prompt assembly, plus the policy gate the router evaluates before
// executing it. Tool implementations are fixed; only the policy varies by
// user manifest per spec §4.9.
type Tool interface {
	Definition() types.ToolDefinition
	Policy() types.ToolPolicy
}

// ExecResult is the outcome of a tool execution.
type ExecResult struct {
	// Value is the tool's JSON-serializable result payload.
	Value any

	// FromCache is true when Value was served from the tool cache rather
	// than a fresh execution (spec §4.9).
	FromCache bool
}

// ToolExecutor is the action router's view of the tool registry and
// executor (spec §4.9): Tools lists every registered tool in a stable,
// deterministic order — used both for manifest assembly and as the
// tie-break order for equal-confidence proposals (see Open Question
// resolution in DESIGN.md) — and Execute runs one call, applying cooldown
// and cache internally.
type ToolExecutor interface {
	// Tools returns the full registry in stable order. The router filters
	// this by mode and user manifest itself; ToolExecutor does not know
	// about either.
	Tools() []Tool

	// Execute runs name with args, honoring any internal cooldown/cache.
	// The router bounds each call by passing a ctx with the per-tool
	// timeout as its deadline; ctx cancellation (that deadline, or
	// Router.Close) must abort the call promptly.
	Execute(ctx context.Context, name string, args map[string]types.ArgValue) (ExecResult, error)
}

// IntentProposer wraps an LLM capable of proposing tool calls for a
// committed utterance (spec §6). Propose must return promptly after ctx is
// cancelled; Cancel is an additional out-of-band hint some backends use to
// abort a streaming call faster than context cancellation alone.
type IntentProposer interface {
	Propose(ctx context.Context, manifest []types.ToolDefinition, text string) ([]types.ToolCallProposal, error)
	Cancel()
}

// Phase identifies a router.status transition (spec §6).
type Phase int

const (
	PhaseDebounced Phase = iota
	PhaseInferring
	PhaseProposed
	PhaseInvoked
	PhaseResult
	PhaseError
	PhaseNoMatch
)

// String returns the wire name used in router.status events.
func (p Phase) String() string {
	switch p {
	case PhaseDebounced:
		return "debounced"
	case PhaseInferring:
		return "inferring"
	case PhaseProposed:
		return "proposed"
	case PhaseInvoked:
		return "invoked"
	case PhaseResult:
		return "result"
	case PhaseError:
		return "error"
	case PhaseNoMatch:
		return "no_match"
	default:
		return "unknown"
	}
}

// NoMatch reasons, per spec §7's error taxonomy.
const (
	ReasonConfidence = "confidence"
	ReasonSchema     = "schema"
	ReasonPolicy     = "policy"
	ReasonLLMError   = "llm_error"
	ReasonCancelled  = "cancelled"
)

// StatusEvent is one router.status transition.
type StatusEvent struct {
	Phase  Phase
	Tool   string
	Args   map[string]types.ArgValue
	Result any
	Err    error
	Text   string
	Reason string

	// FromCache mirrors ExecResult.FromCache on PhaseResult. PhaseInvoked
	// is emitted before Execute runs, so it always carries false, even for
	// a call that the cache then serves.
	FromCache bool
}
