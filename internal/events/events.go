package events

import (
	"github.com/nullshift/vocalops/internal/router"
	"github.com/nullshift/vocalops/pkg/types"
)

// Event name constants, verbatim from spec §6's "Emitted events" table.
const (
	TypePartial        = "stt.partial"
	TypeCommit         = "stt.commit"
	TypeTurnPrediction = "stt.turn_prediction"
	TypePipelineStatus = "pipeline.status"
	TypeContextChanged = "context.changed"
	TypeRouterStatus   = "router.status"
	TypeToolProposed   = "tool.proposed"
	TypeToolInvoked    = "tool.invoked"
	TypeToolResult     = "tool.result"
	TypeToolError      = "tool.error"
)

// PublishPartial emits stt.partial: the transcriber's current best guess.
func (h *Hub) PublishPartial(u types.PartialUpdate) {
	h.Publish(TypePartial, u)
}

// PublishCommit emits stt.commit: a finalized Segment.
func (h *Hub) PublishCommit(seg types.Segment) {
	h.Publish(TypeCommit, seg)
}

// PublishTurnPrediction emits stt.turn_prediction, reported at each VAD
// SpeechEnd candidate.
func (h *Hub) PublishTurnPrediction(tp types.TurnPrediction) {
	h.Publish(TypeTurnPrediction, tp)
}

// PipelineStatus is the polled pipeline.status snapshot payload (spec §6:
// "polled, not pushed" — callers decide their own poll cadence and publish
// through this method on each tick).
type PipelineStatus struct {
	State           string `json:"state"`
	BufferMs        int64  `json:"buffer_ms"`
	DroppedFrames   int64  `json:"dropped_frames"`
	ReconnectCount  int    `json:"reconnect_count"`
	LastErrorReason string `json:"last_error_reason,omitempty"`
}

// PublishPipelineStatus emits pipeline.status.
func (h *Hub) PublishPipelineStatus(s PipelineStatus) {
	h.Publish(TypePipelineStatus, s)
}

// PublishContextChanged emits context.changed: a Context snapshot, published
// on effective-mode/active-app/meeting transitions.
func (h *Hub) PublishContextChanged(ctx types.Context) {
	h.Publish(TypeContextChanged, ctx)
}

// routerStatusPayload is the wire shape of a router.status event: argValues
// are converted to plain JSON values and errors to strings since neither
// marshals meaningfully as-is.
type routerStatusPayload struct {
	Phase     string         `json:"phase"`
	Tool      string         `json:"tool,omitempty"`
	Args      map[string]any `json:"args,omitempty"`
	Result    any            `json:"result,omitempty"`
	Error     string         `json:"error,omitempty"`
	Text      string         `json:"text,omitempty"`
	Reason    string         `json:"reason,omitempty"`
	FromCache bool           `json:"from_cache,omitempty"`
}

// PublishRouterStatus emits router.status, at each router phase transition.
// It also emits the more specific tool.proposed/tool.invoked/tool.result/
// tool.error events the phase implies, per spec §6.
func (h *Hub) PublishRouterStatus(e router.StatusEvent) {
	payload := routerStatusPayload{
		Phase:     e.Phase.String(),
		Tool:      e.Tool,
		Args:      argMapToAny(e.Args),
		Result:    e.Result,
		Text:      e.Text,
		Reason:    e.Reason,
		FromCache: e.FromCache,
	}
	if e.Err != nil {
		payload.Error = e.Err.Error()
	}
	h.Publish(TypeRouterStatus, payload)

	switch e.Phase {
	case router.PhaseProposed:
		h.Publish(TypeToolProposed, types.ToolCallProposal{
			ToolName:   e.Tool,
			Args:       e.Args,
			SourceText: e.Text,
		})
	case router.PhaseInvoked:
		h.Publish(TypeToolInvoked, map[string]any{
			"name":      e.Tool,
			"args":      argMapToAny(e.Args),
			"from_cache": e.FromCache,
		})
	case router.PhaseResult:
		h.Publish(TypeToolResult, map[string]any{
			"name":   e.Tool,
			"result": e.Result,
		})
	case router.PhaseError:
		h.Publish(TypeToolError, map[string]any{
			"name":  e.Tool,
			"error": payload.Error,
		})
	}
}

// argMapToAny converts router/tool call arguments to plain JSON-friendly
// values for wire transport.
func argMapToAny(args map[string]types.ArgValue) map[string]any {
	if args == nil {
		return nil
	}
	out := make(map[string]any, len(args))
	for k, v := range args {
		out[k] = argValueToAny(v)
	}
	return out
}

func argValueToAny(v types.ArgValue) any {
	switch v.Kind {
	case types.ArgInt:
		return v.Int
	case types.ArgFloat:
		return v.Float
	case types.ArgBool:
		return v.Bool
	case types.ArgStringList:
		return v.Strs
	default:
		return v.Str
	}
}
