// Package intent implements the LLM intent proposer (spec §6): a thin
// capability set — propose(manifest, text) → proposals, cancel() — wrapping
// an [llm.Provider] backend. It is the single concrete
// [router.IntentProposer] the action router drives.
package intent

import (
	"context"
	"encoding/json"
	"fmt"
	"log/slog"
	"sync"

	"github.com/nullshift/vocalops/pkg/provider/llm"
	"github.com/nullshift/vocalops/pkg/types"

	"github.com/nullshift/vocalops/internal/router"
)

const defaultSystemPrompt = `You are a voice-command intent classifier. Given a committed utterance and a manifest of available tools, decide whether the utterance requests one of them.

Respond ONLY by calling one of the offered tools, and only when the utterance clearly requests it. If the utterance does not call for any tool, do not call any tool. Every tool's argument schema includes a required "confidence" number between 0 and 1 — set it to your genuine confidence that this tool call is what the user wants.`

// Proposer wraps an [llm.Provider] to implement [router.IntentProposer].
// Grounded on the teacher's cascade.Engine: a Provider.Complete call with a
// Tools manifest, reading ToolCalls back off the response (see
// internal/engine/cascade/cascade.go's buildStrongPrompt/Process). Unlike
// the teacher, every offered tool's schema is cloned with an injected
// "confidence" property (see manifest.go) since native tool-calling APIs
// have no notion of a proposal's confidence and spec §6's ToolCallProposal
// requires one — recorded as a resolved Open Question in DESIGN.md.
type Proposer struct {
	provider     llm.Provider
	model        string
	systemPrompt string
	log          *slog.Logger

	mu     sync.Mutex
	cancel context.CancelFunc
}

var _ router.IntentProposer = (*Proposer)(nil)

// Option configures a Proposer at construction time.
type Option func(*Proposer)

// WithSystemPrompt overrides the default classifier instructions.
func WithSystemPrompt(prompt string) Option {
	return func(p *Proposer) { p.systemPrompt = prompt }
}

// WithLogger overrides the default logger.
func WithLogger(log *slog.Logger) Option {
	return func(p *Proposer) { p.log = log }
}

// New returns a Proposer backed by provider.
func New(provider llm.Provider, opts ...Option) *Proposer {
	p := &Proposer{
		provider:     provider,
		systemPrompt: defaultSystemPrompt,
		log:          slog.Default(),
	}
	for _, o := range opts {
		o(p)
	}
	return p
}

// Propose implements [router.IntentProposer]. It sends text as the sole
// user message alongside manifest (schema-augmented with a confidence
// property) and parses any resulting tool calls into proposals.
func (p *Proposer) Propose(ctx context.Context, manifest []types.ToolDefinition, text string) ([]types.ToolCallProposal, error) {
	if len(manifest) == 0 {
		return nil, nil
	}

	callCtx, cancel := context.WithCancel(ctx)
	p.mu.Lock()
	p.cancel = cancel
	p.mu.Unlock()
	defer func() {
		p.mu.Lock()
		p.cancel = nil
		p.mu.Unlock()
		cancel()
	}()

	req := llm.CompletionRequest{
		SystemPrompt: p.systemPrompt,
		Messages:     []types.Message{{Role: "user", Content: text}},
		Tools:        withConfidenceProperty(manifest),
		Temperature:  0,
	}

	resp, err := p.provider.Complete(callCtx, req)
	if err != nil {
		if callCtx.Err() != nil {
			return nil, fmt.Errorf("intent: propose cancelled: %w", callCtx.Err())
		}
		return nil, fmt.Errorf("intent: complete: %w", err)
	}

	proposals := make([]types.ToolCallProposal, 0, len(resp.ToolCalls))
	for _, tc := range resp.ToolCalls {
		proposal, err := parseToolCall(tc, text)
		if err != nil {
			p.log.Warn("intent: dropping malformed tool call", "tool", tc.Name, "error", err)
			continue
		}
		proposals = append(proposals, proposal)
	}
	return proposals, nil
}

// Cancel aborts any in-flight Propose call. It is an out-of-band hint on
// top of ctx cancellation — see [router.IntentProposer].
func (p *Proposer) Cancel() {
	p.mu.Lock()
	defer p.mu.Unlock()
	if p.cancel != nil {
		p.cancel()
	}
}

// parseToolCall converts one raw [types.ToolCall] into a
// [types.ToolCallProposal], pulling the injected confidence value out of
// the argument set and converting the remainder into [types.ArgValue]s.
func parseToolCall(tc types.ToolCall, sourceText string) (types.ToolCallProposal, error) {
	var raw map[string]any
	if tc.Arguments != "" {
		if err := json.Unmarshal([]byte(tc.Arguments), &raw); err != nil {
			return types.ToolCallProposal{}, fmt.Errorf("unmarshal arguments: %w", err)
		}
	}

	confidence, ok := extractConfidence(raw)
	if !ok {
		return types.ToolCallProposal{}, fmt.Errorf("missing or invalid %q argument", confidenceProperty)
	}
	delete(raw, confidenceProperty)

	args := make(map[string]types.ArgValue, len(raw))
	for k, v := range raw {
		av, ok := argFromAny(v)
		if !ok {
			return types.ToolCallProposal{}, fmt.Errorf("argument %q has unsupported type %T", k, v)
		}
		args[k] = av
	}

	return types.ToolCallProposal{
		ToolName:   tc.Name,
		Args:       args,
		Confidence: confidence,
		SourceText: sourceText,
	}, nil
}

func extractConfidence(raw map[string]any) (float64, bool) {
	v, ok := raw[confidenceProperty]
	if !ok {
		return 0, false
	}
	f, ok := v.(float64)
	if !ok || f < 0 || f > 1 {
		return 0, false
	}
	return f, true
}

// argFromAny converts a JSON-decoded value into an [types.ArgValue]. JSON
// numbers always decode as float64; a value with no fractional part is
// classified as an int, matching the common case of integer tool
// arguments round-tripping through JSON.
func argFromAny(v any) (types.ArgValue, bool) {
	switch val := v.(type) {
	case string:
		return types.ArgValue{Kind: types.ArgString, Str: val}, true
	case bool:
		return types.ArgValue{Kind: types.ArgBool, Bool: val}, true
	case float64:
		if val == float64(int64(val)) {
			return types.ArgValue{Kind: types.ArgInt, Int: int64(val)}, true
		}
		return types.ArgValue{Kind: types.ArgFloat, Float: val}, true
	case []any:
		strs := make([]string, 0, len(val))
		for _, e := range val {
			s, ok := e.(string)
			if !ok {
				return types.ArgValue{}, false
			}
			strs = append(strs, s)
		}
		return types.ArgValue{Kind: types.ArgStringList, Strs: strs}, true
	default:
		return types.ArgValue{}, false
	}
}
