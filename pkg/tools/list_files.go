package tools

import (
	"context"
	"os"
	"strings"
)

// ListFilesTool lists directory entries relative to the session directory.
type ListFilesTool struct {
	ws *Workspace
}

// NewListFilesTool creates a new list_files tool.
func NewListFilesTool(ws *Workspace) *ListFilesTool {
	return &ListFilesTool{ws: ws}
}

// Name returns the tool name.
func (t *ListFilesTool) Name() string {
	return ToolListFiles
}

// Definition returns the tool definition for the model.
func (t *ListFilesTool) Definition() ToolDefinition {
	return ToolDefinition{
		Name:        ToolListFiles,
		Description: "Lists all files in the current directory.",
		Parameters: InputSchema{
			Type: "object",
			Properties: map[string]Property{
				"directory": {
					Type:        "string",
					Description: "Directory to list files from",
				},
			},
			Required: []string{},
		},
	}
}

// Exec lists the entries of the requested directory.
func (t *ListFilesTool) Exec(ctx context.Context, args map[string]any) (string, error) {
	dir := t.ws.Resolve(ctx, optStringArg(args, "directory", "."))

	entries, err := os.ReadDir(dir)
	if err != nil {
		return "", &PathError{Op: "listing", Path: dir, Err: err}
	}

	names := make([]string, 0, len(entries))
	for _, e := range entries {
		if e.Name() == "__pycache__" {
			continue
		}
		names = append(names, e.Name())
	}
	if len(names) == 0 {
		return "The directory is empty.", nil
	}
	return "Files in the current directory:\n" + strings.Join(names, "\n"), nil
}
