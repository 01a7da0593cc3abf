package router

import "time"

// Defaults per spec §4.8.
const (
	DefaultDebounce     = 650 * time.Millisecond
	DefaultMinConfidence = 0.35
	DefaultToolTimeout  = 30 * time.Second
)

// Config configures a [Router].
type Config struct {
	// Debounce is how long the router waits for a quiet period after the
	// most recent commit before invoking the intent proposer.
	Debounce time.Duration

	// MinConfidence is the lowest proposal confidence the selector accepts.
	MinConfidence float64

	// AutoRunEnabled gates the read_only auto-run policy branch (spec §4.8
	// step 6). When false, every tool waits for explicit approval
	// regardless of its ReadOnly flag.
	AutoRunEnabled bool

	// ToolTimeout bounds a single tool execution: the router passes Execute
	// a context with this deadline. Zero or a negative value uses
	// DefaultToolTimeout; no upper bound is applied.
	ToolTimeout time.Duration

	// Manifest restricts the tool registry to this subset of names. A nil
	// or empty Manifest means no restriction (the full registry, filtered
	// only by mode, is eligible).
	Manifest map[string]struct{}
}

// DefaultConfig returns the spec's §4.8 defaults.
func DefaultConfig() Config {
	return Config{
		Debounce:      DefaultDebounce,
		MinConfidence: DefaultMinConfidence,
		ToolTimeout:   DefaultToolTimeout,
	}
}
