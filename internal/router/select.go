package router

import "github.com/nullshift/vocalops/pkg/types"

// selection is the outcome of applying spec §4.8 step 5 to a proposal list.
type selection struct {
	Proposal types.ToolCallProposal
	Tool     Tool
	Ok       bool
	Reason   string // set when !Ok
}

// selectProposal takes the highest confidence among the proposals that
// clear minConfidence and considers only the proposals at that confidence.
// Ties are broken by manifest (registry) order — the first manifest entry
// whose name appears among the tied proposals wins, per the Open Question
// resolution recorded in DESIGN.md. The winner is validated against its
// tool's schema; a validation failure is a schema no-match, and
// lower-confidence proposals are not tried. When no proposal at that
// confidence names a manifest tool, the result is a policy no-match, even
// if a lower-confidence qualifying proposal names one.
func selectProposal(proposals []types.ToolCallProposal, manifest []Tool, minConfidence float64) selection {
	if len(proposals) == 0 {
		return selection{Ok: false, Reason: ReasonConfidence}
	}

	byName := make(map[string]types.ToolCallProposal, len(proposals))
	best := -1.0
	for _, p := range proposals {
		if p.Confidence < minConfidence {
			continue
		}
		if existing, ok := byName[p.ToolName]; !ok || p.Confidence > existing.Confidence {
			byName[p.ToolName] = p
		}
		if p.Confidence > best {
			best = p.Confidence
		}
	}
	if best < 0 {
		return selection{Ok: false, Reason: ReasonConfidence}
	}

	// Registry order is the tie-break: walk manifest in order, take the
	// first tool whose qualifying proposal is at the winning confidence.
	const epsilon = 1e-9
	for _, tool := range manifest {
		name := tool.Definition().Name
		p, ok := byName[name]
		if !ok {
			continue
		}
		if p.Confidence < best-epsilon {
			continue
		}
		if err := validateArgs(tool.Definition().Parameters, p.Args); err != nil {
			return selection{Ok: false, Reason: ReasonSchema}
		}
		return selection{Proposal: p, Tool: tool, Ok: true}
	}

	// No proposal at the winning confidence names a manifest tool.
	return selection{Ok: false, Reason: ReasonPolicy}
}
