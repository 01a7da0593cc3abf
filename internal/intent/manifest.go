package intent

import (
	"github.com/nullshift/vocalops/pkg/types"
)

// confidenceProperty is the synthetic required argument injected into every
// tool's schema so the model's native tool-calling response carries a
// proposal confidence (spec §6), which plain function-calling APIs have no
// other way to express.
const confidenceProperty = "confidence"

// withConfidenceProperty returns a copy of manifest whose tool schemas each
// require an additional "confidence" number property. The original
// manifest's Parameters maps are never mutated.
func withConfidenceProperty(manifest []types.ToolDefinition) []types.ToolDefinition {
	out := make([]types.ToolDefinition, len(manifest))
	for i, def := range manifest {
		out[i] = types.ToolDefinition{
			Name:        def.Name,
			Description: def.Description,
			Parameters:  augmentSchema(def.Parameters),
		}
	}
	return out
}

func augmentSchema(schema map[string]any) map[string]any {
	out := make(map[string]any, len(schema)+1)
	for k, v := range schema {
		out[k] = v
	}

	props, _ := out["properties"].(map[string]any)
	newProps := make(map[string]any, len(props)+1)
	for k, v := range props {
		newProps[k] = v
	}
	newProps[confidenceProperty] = map[string]any{
		"type":        "number",
		"description": "Your confidence, from 0 to 1, that this tool call is what the user wants.",
		"minimum":     0,
		"maximum":     1,
	}
	out["properties"] = newProps

	required, _ := out["required"].([]any)
	out["required"] = append(append([]any{}, required...), confidenceProperty)

	if out["type"] == nil {
		out["type"] = "object"
	}
	return out
}
