// Package mock provides test doubles for [router.IntentProposer],
// [router.ToolExecutor], and [router.Tool].
package mock

import (
	"context"
	"sync"

	"github.com/nullshift/vocalops/internal/router"
	"github.com/nullshift/vocalops/pkg/types"
)

// Tool is a mock implementation of [router.Tool].
type Tool struct {
	Def types.ToolDefinition
	Pol types.ToolPolicy
}

func (t Tool) Definition() types.ToolDefinition { return t.Def }
func (t Tool) Policy() types.ToolPolicy         { return t.Pol }

var _ router.Tool = Tool{}

// Proposer is a mock implementation of [router.IntentProposer].
type Proposer struct {
	mu sync.Mutex

	// Proposals is returned by every Propose call.
	Proposals []types.ToolCallProposal

	// Err, if non-nil, is returned by every Propose call.
	Err error

	// Delay, if non-zero, blocks Propose until it elapses or ctx is done —
	// used to exercise cancellation.
	Delay func(ctx context.Context)

	// Calls records every invocation's text argument, in order.
	Calls []string

	CancelCount int
}

func (p *Proposer) Propose(ctx context.Context, manifest []types.ToolDefinition, text string) ([]types.ToolCallProposal, error) {
	p.mu.Lock()
	p.Calls = append(p.Calls, text)
	delay := p.Delay
	p.mu.Unlock()

	if delay != nil {
		delay(ctx)
	}
	if err := ctx.Err(); err != nil {
		return nil, err
	}

	p.mu.Lock()
	defer p.mu.Unlock()
	return p.Proposals, p.Err
}

func (p *Proposer) Cancel() {
	p.mu.Lock()
	defer p.mu.Unlock()
	p.CancelCount++
}

var _ router.IntentProposer = (*Proposer)(nil)

// Executor is a mock implementation of [router.ToolExecutor].
type Executor struct {
	mu sync.Mutex

	// Registry is returned by every Tools call.
	Registry []router.Tool

	// Result is returned by every Execute call.
	Result router.ExecResult

	// Err, if non-nil, is returned by every Execute call.
	Err error

	// Block, if non-nil, is received from before Execute returns — used to
	// hold an execution open so tests can observe queueing behavior.
	Block <-chan struct{}

	// Calls records every invocation, in order.
	Calls []ExecuteCall
}

// ExecuteCall records one Execute invocation.
type ExecuteCall struct {
	Name string
	Args map[string]types.ArgValue
}

func (e *Executor) Tools() []router.Tool {
	e.mu.Lock()
	defer e.mu.Unlock()
	return e.Registry
}

func (e *Executor) Execute(ctx context.Context, name string, args map[string]types.ArgValue) (router.ExecResult, error) {
	e.mu.Lock()
	e.Calls = append(e.Calls, ExecuteCall{Name: name, Args: args})
	block := e.Block
	result, err := e.Result, e.Err
	e.mu.Unlock()

	if block != nil {
		select {
		case <-block:
		case <-ctx.Done():
			return router.ExecResult{}, ctx.Err()
		}
	}
	return result, err
}

var _ router.ToolExecutor = (*Executor)(nil)
