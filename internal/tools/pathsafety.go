package tools

import (
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"github.com/nullshift/vocalops/pkg/types"
)

// pathSafetyCheck applies the pre-execution path-safety check from spec
// §4.9: any string argument whose declared schema property carries
// `"format": "path"` must resolve to an absolute path that is a descendant
// of the user's home directory.
func pathSafetyCheck(def types.ToolDefinition, args map[string]types.ArgValue) error {
	props, _ := def.Parameters["properties"].(map[string]any)
	for name, val := range args {
		if !isPathProperty(props, name) {
			continue
		}
		if val.Kind != types.ArgString {
			continue
		}
		if err := assertWithinHome(val.Str); err != nil {
			return fmt.Errorf("tools: argument %q: %w", name, err)
		}
	}
	return nil
}

func isPathProperty(props map[string]any, name string) bool {
	propAny, ok := props[name]
	if !ok {
		return false
	}
	prop, ok := propAny.(map[string]any)
	if !ok {
		return false
	}
	format, _ := prop["format"].(string)
	return format == "path"
}

func assertWithinHome(p string) error {
	home, err := os.UserHomeDir()
	if err != nil {
		return fmt.Errorf("resolve home directory: %w", err)
	}
	abs, err := filepath.Abs(p)
	if err != nil {
		return fmt.Errorf("resolve absolute path for %q: %w", p, err)
	}
	rel, err := filepath.Rel(home, abs)
	if err != nil || rel == ".." || strings.HasPrefix(rel, ".."+string(filepath.Separator)) {
		return fmt.Errorf("path %q escapes home directory %q", abs, home)
	}
	return nil
}
