package tools

import (
	"bytes"
	"context"
	"fmt"
	"os/exec"
	"strings"
	"time"
)

const defaultCommandTimeout = 30 * time.Second

// RunCommandTool executes shell commands from a fixed allow-list, with an
// enforced timeout and captured output.
type RunCommandTool struct {
	ws      *Workspace
	allowed []string
	timeout time.Duration
}

// NewRunCommandTool creates a new run_command tool. timeoutSeconds of zero
// means the 30 second default.
func NewRunCommandTool(ws *Workspace, allowed []string, timeoutSeconds int) *RunCommandTool {
	timeout := defaultCommandTimeout
	if timeoutSeconds > 0 {
		timeout = time.Duration(timeoutSeconds) * time.Second
	}
	return &RunCommandTool{ws: ws, allowed: allowed, timeout: timeout}
}

// Name returns the tool name.
func (t *RunCommandTool) Name() string {
	return ToolRunCommand
}

// Definition returns the tool definition for the model.
func (t *RunCommandTool) Definition() ToolDefinition {
	return ToolDefinition{
		Name:        ToolRunCommand,
		Description: "Run a command in a sandboxed environment. Only safe commands are allowed.",
		Parameters: InputSchema{
			Type: "object",
			Properties: map[string]Property{
				"command": {
					Type:        "string",
					Description: "The command to run.",
				},
			},
			Required: []string{"command"},
		},
	}
}

// Exec runs the command through the shell in the session directory. The
// command line must contain at least one allow-listed token.
func (t *RunCommandTool) Exec(ctx context.Context, args map[string]any) (string, error) {
	command, err := stringArg(args, "command")
	if err != nil {
		return "", err
	}

	if !t.isAllowed(command) {
		return "", fmt.Errorf("%w: %q", ErrCommandRejected, command)
	}

	execCtx, cancel := context.WithTimeout(ctx, t.timeout)
	defer cancel()

	cmd := exec.CommandContext(execCtx, "sh", "-c", command)
	cmd.Dir = t.ws.Dir(ctx)

	var stdout, stderr bytes.Buffer
	cmd.Stdout = &stdout
	cmd.Stderr = &stderr

	runErr := cmd.Run()
	if execCtx.Err() == context.DeadlineExceeded {
		return "", fmt.Errorf("command timed out after %s", t.timeout)
	}
	if runErr != nil {
		if _, ok := runErr.(*exec.ExitError); ok {
			return fmt.Sprintf("Command failed:\n%s", stderr.String()), nil
		}
		return "", fmt.Errorf("failed to execute command: %w", runErr)
	}
	return fmt.Sprintf("Command executed successfully:\n%s", stdout.String()), nil
}

func (t *RunCommandTool) isAllowed(command string) bool {
	lowered := strings.ToLower(command)
	for _, token := range t.allowed {
		if strings.Contains(lowered, token) {
			return true
		}
	}
	return false
}
