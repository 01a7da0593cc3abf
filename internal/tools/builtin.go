package tools

import (
	"bytes"
	"context"
	"fmt"
	"os/exec"
	"syscall"
	"time"

	"github.com/nullshift/vocalops/pkg/types"
)

// killGrace is the interval between a terminate signal and a forced kill
// for subprocess-backed builtin tools, per spec §5: "upon timeout, the
// executor issues a terminate signal, then a kill after a 5s grace period."
const killGrace = 5 * time.Second

// RunShellCommandDefinition describes the builtin "run_shell_command" tool.
func RunShellCommandDefinition() types.ToolDefinition {
	return types.ToolDefinition{
		Name:        "run_shell_command",
		Description: "Runs a single shell command and returns its combined output.",
		Parameters: map[string]any{
			"type": "object",
			"properties": map[string]any{
				"command": map[string]any{
					"type":        "string",
					"description": "The command line to execute.",
				},
			},
			"required": []any{"command"},
		},
	}
}

// RunShellCommandHandler executes args["command"] via /bin/sh -c, honoring
// ctx's deadline with a graceful SIGTERM followed by a SIGKILL after
// [killGrace] if the process has not exited. Grounded on the teacher's
// mcphost.BuiltinTool in-process-handler pattern, replacing its
// DeclaredP50/DeclaredMax budget fields (dropped, see DESIGN.md) with the
// process-lifecycle control the teacher never implemented.
func RunShellCommandHandler(ctx context.Context, args map[string]types.ArgValue) (any, error) {
	command, ok := args["command"]
	if !ok || command.Kind != types.ArgString || command.Str == "" {
		return nil, fmt.Errorf("tools: run_shell_command requires a non-empty string %q argument", "command")
	}

	cmd := exec.CommandContext(ctx, "/bin/sh", "-c", command.Str)

	// Default exec.CommandContext behavior on ctx cancellation is an
	// immediate SIGKILL. Overriding Cancel to send SIGTERM first, paired
	// with WaitDelay, gives the process killGrace to exit cleanly before
	// the runtime escalates to SIGKILL itself.
	cmd.Cancel = func() error {
		return cmd.Process.Signal(syscall.SIGTERM)
	}
	cmd.WaitDelay = killGrace

	var out bytes.Buffer
	cmd.Stdout = &out
	cmd.Stderr = &out

	if err := cmd.Run(); err != nil {
		return nil, fmt.Errorf("tools: run_shell_command: %w: %s", err, out.String())
	}
	return out.String(), nil
}
