package tools

import (
	"context"
	"fmt"
	"log/slog"
	"time"

	"github.com/nullshift/vocalops/internal/router"
	"github.com/nullshift/vocalops/pkg/types"
)

// Executor ties a [Registry], a [Cache], and the path-safety check into the
// concrete [router.ToolExecutor] the action router drives.
type Executor struct {
	registry *Registry
	cache    *Cache
	log      *slog.Logger
}

var _ router.ToolExecutor = (*Executor)(nil)

// NewExecutor returns an Executor backed by registry and cache. If log is
// nil, [slog.Default] is used.
func NewExecutor(registry *Registry, cache *Cache, log *slog.Logger) *Executor {
	if log == nil {
		log = slog.Default()
	}
	return &Executor{registry: registry, cache: cache, log: log}
}

// Tools satisfies [router.ToolExecutor].
func (e *Executor) Tools() []router.Tool {
	return e.registry.Tools()
}

// Execute satisfies [router.ToolExecutor]. A cache hit short-circuits the
// handler entirely, per spec §4.9's TTL+cooldown result cache; a miss runs
// the path-safety check, invokes the handler, and caches a successful
// result for later replay.
func (e *Executor) Execute(ctx context.Context, name string, args map[string]types.ArgValue) (router.ExecResult, error) {
	entry, ok := e.registry.lookup(name)
	if !ok {
		return router.ExecResult{}, fmt.Errorf("tools: unknown tool %q", name)
	}

	key := canonicalKey(name, args)
	cooldown := time.Duration(entry.policy.CooldownSeconds) * time.Second
	if v, hit := e.cache.get(key, cooldown); hit {
		e.log.Debug("tool cache hit", "tool", name)
		return router.ExecResult{Value: v, FromCache: true}, nil
	}

	if err := pathSafetyCheck(entry.def, args); err != nil {
		return router.ExecResult{}, err
	}

	value, err := entry.handler(ctx, args)
	if err != nil {
		return router.ExecResult{}, err
	}

	e.cache.set(key, value)
	return router.ExecResult{Value: value}, nil
}
