package tools

import (
	"context"
	"encoding/json"
	"fmt"
	"os"

	"assistant/pkg/backup"
	"assistant/pkg/logx"
)

// WriteFileTool creates or overwrites a file, backing up prior content.
type WriteFileTool struct {
	ws      *Workspace
	backups *backup.Store
	logger  *logx.Logger
}

// NewWriteFileTool creates a new write_file tool.
func NewWriteFileTool(ws *Workspace, backups *backup.Store) *WriteFileTool {
	return &WriteFileTool{ws: ws, backups: backups, logger: logx.NewLogger("tools")}
}

// Name returns the tool name.
func (t *WriteFileTool) Name() string {
	return ToolWriteFile
}

// Definition returns the tool definition for the model.
func (t *WriteFileTool) Definition() ToolDefinition {
	return ToolDefinition{
		Name:        ToolWriteFile,
		Description: "Creates or overwrites a file with new content. If content is an object or list, it's saved as a JSON file.",
		Parameters: InputSchema{
			Type: "object",
			Properties: map[string]Property{
				"filename": {
					Type:        "string",
					Description: "The name of the file to write to.",
				},
				"content": {
					Type:        "any",
					Description: "The content to write into the file (can be a string, or a JSON object).",
				},
			},
			Required: []string{"filename", "content"},
		},
	}
}

// Exec writes the file after preserving any existing content in the backup
// store. A backup failure is logged but never blocks the write.
func (t *WriteFileTool) Exec(ctx context.Context, args map[string]any) (string, error) {
	filename, err := stringArg(args, "filename")
	if err != nil {
		return "", err
	}
	raw, ok := args["content"]
	if !ok {
		return "", fmt.Errorf("missing required argument: content")
	}

	content, ok := raw.(string)
	if !ok {
		data, err := json.MarshalIndent(raw, "", "    ")
		if err != nil {
			return "", fmt.Errorf("content is neither a string nor JSON-encodable: %w", err)
		}
		content = string(data)
	}

	path := t.ws.Resolve(ctx, filename)
	t.backupExisting(path)

	if err := os.WriteFile(path, []byte(content), 0o644); err != nil {
		return "", &PathError{Op: "writing", Path: filename, Err: err}
	}
	return fmt.Sprintf("Successfully wrote content to %q.", filename), nil
}

func (t *WriteFileTool) backupExisting(path string) {
	if t.backups == nil {
		return
	}
	if _, err := t.backups.Backup(path); err != nil {
		t.logger.Warn("backup of %s failed: %v", path, err)
	}
}
