package tools

import (
	"context"
	"fmt"
	"os"
)

// CreateDirectoryTool creates a directory, including parents.
type CreateDirectoryTool struct {
	ws *Workspace
}

// NewCreateDirectoryTool creates a new create_directory tool.
func NewCreateDirectoryTool(ws *Workspace) *CreateDirectoryTool {
	return &CreateDirectoryTool{ws: ws}
}

// Name returns the tool name.
func (t *CreateDirectoryTool) Name() string {
	return ToolCreateDirectory
}

// Definition returns the tool definition for the model.
func (t *CreateDirectoryTool) Definition() ToolDefinition {
	return ToolDefinition{
		Name:        ToolCreateDirectory,
		Description: "Creates a new directory (folder). If the directory already exists, it will do nothing and report success. To create nested directories, provide the full path (e.g., 'parent/child').",
		Parameters: InputSchema{
			Type: "object",
			Properties: map[string]Property{
				"directory_name": {
					Type:        "string",
					Description: "The name or path of the directory to create.",
				},
			},
			Required: []string{"directory_name"},
		},
	}
}

// Exec creates the directory tree. Existing directories succeed silently.
func (t *CreateDirectoryTool) Exec(ctx context.Context, args map[string]any) (string, error) {
	name, err := stringArg(args, "directory_name")
	if err != nil {
		return "", err
	}
	path := t.ws.Resolve(ctx, name)

	if err := os.MkdirAll(path, 0o755); err != nil {
		return "", &PathError{Op: "creating directory", Path: name, Err: err}
	}
	return fmt.Sprintf("Successfully created directory %q.", name), nil
}
