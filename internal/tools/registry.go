// Package tools implements the Tool Registry, Executor, and Cache (spec
// §4.9): a name-keyed catalogue of tools exposing policy and a JSON-Schema
// argument shape, a TTL+cooldown result cache, a path-safety check for
// filesystem arguments, and an MCP client for externally-hosted tools.
package tools

import (
	"context"
	"fmt"
	"sync"

	"github.com/nullshift/vocalops/internal/router"
	"github.com/nullshift/vocalops/pkg/types"
)

// Handler executes one in-process tool call. MCP-routed tools use a
// Handler closure that forwards to the owning [MCPClient]; builtin tools
// supply their own.
type Handler func(ctx context.Context, args map[string]types.ArgValue) (any, error)

// Entry is one registry row. It implements [router.Tool] directly.
type Entry struct {
	def     types.ToolDefinition
	policy  types.ToolPolicy
	handler Handler
}

func (e Entry) Definition() types.ToolDefinition { return e.def }
func (e Entry) Policy() types.ToolPolicy         { return e.policy }

var _ router.Tool = Entry{}

// Registry is the concurrent-safe, insertion-ordered tool catalogue.
// Insertion order is preserved because it doubles as the router's
// tie-break order for equal-confidence proposals (spec §4.8 Open
// Question, recorded in DESIGN.md) — a plain map would make that order
// nondeterministic across runs.
type Registry struct {
	mu      sync.RWMutex
	order   []string
	entries map[string]Entry
}

// NewRegistry returns an empty Registry.
func NewRegistry() *Registry {
	return &Registry{entries: make(map[string]Entry)}
}

// Register adds or replaces a tool entry. Replacing an existing name keeps
// its original registry-order position.
func (r *Registry) Register(def types.ToolDefinition, policy types.ToolPolicy, handler Handler) error {
	if def.Name == "" {
		return fmt.Errorf("tools: registry entry must have a non-empty name")
	}
	if handler == nil {
		return fmt.Errorf("tools: registry entry %q must have a non-nil handler", def.Name)
	}
	policy.ToolName = def.Name

	r.mu.Lock()
	defer r.mu.Unlock()
	if _, exists := r.entries[def.Name]; !exists {
		r.order = append(r.order, def.Name)
	}
	r.entries[def.Name] = Entry{def: def, policy: policy, handler: handler}
	return nil
}

// Tools returns every registered entry in registry (insertion) order,
// implementing [router.ToolExecutor]'s Tools half of the contract.
func (r *Registry) Tools() []router.Tool {
	r.mu.RLock()
	defer r.mu.RUnlock()
	out := make([]router.Tool, 0, len(r.order))
	for _, name := range r.order {
		out = append(out, r.entries[name])
	}
	return out
}

func (r *Registry) lookup(name string) (Entry, bool) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	e, ok := r.entries[name]
	return e, ok
}
