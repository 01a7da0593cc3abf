package transcriber

import "github.com/nullshift/vocalops/pkg/types"

// State is one of the four explicit transcriber states (spec §4.5).
type State int

const (
	Idle State = iota
	Accumulating
	PendingCommit
	Committing
)

// String returns the state name.
func (s State) String() string {
	switch s {
	case Accumulating:
		return "accumulating"
	case PendingCommit:
		return "pending_commit"
	case Committing:
		return "committing"
	default:
		return "idle"
	}
}

// Event is emitted on the Transcriber's event channel. Exactly one field is
// set per Event, matching the control-plane table in spec §6.
type Event struct {
	Partial        *types.PartialUpdate
	Commit         *types.Segment
	TurnPrediction *types.TurnPrediction
}
