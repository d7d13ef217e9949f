package tools

import (
	"context"
	"fmt"
	"os"

	"assistant/pkg/backup"
	"assistant/pkg/logx"
)

// DeleteFileTool removes a file, preserving its content in the backup store.
type DeleteFileTool struct {
	ws      *Workspace
	backups *backup.Store
	logger  *logx.Logger
}

// NewDeleteFileTool creates a new delete_file tool.
func NewDeleteFileTool(ws *Workspace, backups *backup.Store) *DeleteFileTool {
	return &DeleteFileTool{ws: ws, backups: backups, logger: logx.NewLogger("tools")}
}

// Name returns the tool name.
func (t *DeleteFileTool) Name() string {
	return ToolDeleteFile
}

// Definition returns the tool definition for the model.
func (t *DeleteFileTool) Definition() ToolDefinition {
	return ToolDefinition{
		Name:        ToolDeleteFile,
		Description: "Deletes a specified file from the directory.",
		Parameters: InputSchema{
			Type: "object",
			Properties: map[string]Property{
				"filename": {
					Type:        "string",
					Description: "The name of the file to delete.",
				},
			},
			Required: []string{"filename"},
		},
	}
}

// Exec deletes the file after backing up its content.
func (t *DeleteFileTool) Exec(ctx context.Context, args map[string]any) (string, error) {
	filename, err := stringArg(args, "filename")
	if err != nil {
		return "", err
	}
	path := t.ws.Resolve(ctx, filename)

	if t.backups != nil {
		if _, err := t.backups.Backup(path); err != nil {
			t.logger.Warn("backup of %s failed: %v", path, err)
		}
	}

	if err := os.Remove(path); err != nil {
		return "", &PathError{Op: "deleting", Path: filename, Err: err}
	}
	return fmt.Sprintf("Successfully deleted file %q.", filename), nil
}
