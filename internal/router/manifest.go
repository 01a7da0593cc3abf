package router

import "github.com/nullshift/vocalops/pkg/types"

// assembleManifest filters the registry by (a) current effective mode and
// (b) the user-provided manifest subset, per spec §4.8 step 3. The
// returned slice preserves tools' registry order, which doubles as the
// tie-break order for equal-confidence proposals (see DESIGN.md).
func assembleManifest(tools []Tool, mode types.Mode, userManifest map[string]struct{}) []Tool {
	out := make([]Tool, 0, len(tools))
	for _, tool := range tools {
		pol := tool.Policy()
		if !pol.AllowedInMode(mode) {
			continue
		}
		if len(userManifest) > 0 {
			if _, ok := userManifest[pol.ToolName]; !ok {
				continue
			}
		}
		out = append(out, tool)
	}
	return out
}

func toDefinitions(tools []Tool) []types.ToolDefinition {
	defs := make([]types.ToolDefinition, len(tools))
	for i, tool := range tools {
		defs[i] = tool.Definition()
	}
	return defs
}

func findTool(tools []Tool, name string) (Tool, bool) {
	for _, tool := range tools {
		if tool.Definition().Name == name {
			return tool, true
		}
	}
	return nil, false
}
