package router

import "errors"

// ErrCommitsFull is returned by Push when the internal commit channel is
// saturated. The router's commit queue holds only the latest pending
// commit by design (see Push), so this should be rare — it indicates the
// Run goroutine is not draining at all, not ordinary debounce pressure.
var ErrCommitsFull = errors.New("router: commit channel full")
