package tools

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/nullshift/vocalops/pkg/types"
)

func pathDef() types.ToolDefinition {
	return types.ToolDefinition{
		Name: "read_file",
		Parameters: map[string]any{
			"type": "object",
			"properties": map[string]any{
				"path": map[string]any{"type": "string", "format": "path"},
				"note": map[string]any{"type": "string"},
			},
		},
	}
}

func TestPathSafetyCheck_AllowsPathWithinHome(t *testing.T) {
	home, err := os.UserHomeDir()
	if err != nil {
		t.Skipf("no home directory: %v", err)
	}
	args := map[string]types.ArgValue{
		"path": {Kind: types.ArgString, Str: filepath.Join(home, "notes.txt")},
	}
	if err := pathSafetyCheck(pathDef(), args); err != nil {
		t.Errorf("expected path within home to be allowed, got: %v", err)
	}
}

func TestPathSafetyCheck_RejectsPathOutsideHome(t *testing.T) {
	args := map[string]types.ArgValue{
		"path": {Kind: types.ArgString, Str: "/etc/passwd"},
	}
	if err := pathSafetyCheck(pathDef(), args); err == nil {
		t.Error("expected path outside home to be rejected")
	}
}

func TestPathSafetyCheck_IgnoresArgsWithoutPathFormat(t *testing.T) {
	args := map[string]types.ArgValue{
		"note": {Kind: types.ArgString, Str: "/etc/passwd"},
	}
	if err := pathSafetyCheck(pathDef(), args); err != nil {
		t.Errorf("expected non-path-formatted arg to be ignored, got: %v", err)
	}
}

func TestPathSafetyCheck_RejectsTraversalEscape(t *testing.T) {
	home, err := os.UserHomeDir()
	if err != nil {
		t.Skipf("no home directory: %v", err)
	}
	args := map[string]types.ArgValue{
		"path": {Kind: types.ArgString, Str: filepath.Join(home, "..", "..", "etc", "passwd")},
	}
	if err := pathSafetyCheck(pathDef(), args); err == nil {
		t.Error("expected traversal escape to be rejected")
	}
}
