package tools

import (
	"context"
	"fmt"
	"os"
	"strings"

	"assistant/pkg/backup"
	"assistant/pkg/logx"
)

// ReplaceCodeTool replaces an exact block of existing code with a new block,
// re-indented to match the old block's leading whitespace.
type ReplaceCodeTool struct {
	ws      *Workspace
	backups *backup.Store
	logger  *logx.Logger
}

// NewReplaceCodeTool creates a new replace_code tool.
func NewReplaceCodeTool(ws *Workspace, backups *backup.Store) *ReplaceCodeTool {
	return &ReplaceCodeTool{ws: ws, backups: backups, logger: logx.NewLogger("tools")}
}

// Name returns the tool name.
func (t *ReplaceCodeTool) Name() string {
	return ToolReplaceCode
}

// Definition returns the tool definition for the model.
func (t *ReplaceCodeTool) Definition() ToolDefinition {
	return ToolDefinition{
		Name:        ToolReplaceCode,
		Description: "Replaces an *exact* block of existing code with a new block. To use this effectively, first `read_file` to copy the precise `old_code` block you want to replace. The `new_code` will be automatically indented to match the old code's level.",
		Parameters: InputSchema{
			Type: "object",
			Properties: map[string]Property{
				"filename": {
					Type:        "string",
					Description: "The name of the file to modify.",
				},
				"old_code": {
					Type:        "string",
					Description: "The exact string or code block to be replaced.",
				},
				"new_code": {
					Type:        "string",
					Description: "The new string or code block to replace the old one.",
				},
			},
			Required: []string{"filename", "old_code", "new_code"},
		},
	}
}

// Exec replaces every occurrence of old_code. The replacement is prefixed
// line-by-line with the indentation of old_code's first line before
// substitution.
func (t *ReplaceCodeTool) Exec(ctx context.Context, args map[string]any) (string, error) {
	filename, err := stringArg(args, "filename")
	if err != nil {
		return "", err
	}
	oldCode, err := stringArg(args, "old_code")
	if err != nil {
		return "", err
	}
	newCode, err := stringArg(args, "new_code")
	if err != nil {
		return "", err
	}

	path := t.ws.Resolve(ctx, filename)
	data, err := os.ReadFile(path)
	if err != nil {
		return "", &PathError{Op: "reading", Path: filename, Err: err}
	}
	content := string(data)

	if !strings.Contains(content, oldCode) {
		return "", fmt.Errorf("%w: %q in %q", ErrExactMatchNotFound, firstLine(oldCode), filename)
	}

	baseIndent := leadingWhitespace(firstLine(oldCode))
	indented := make([]string, 0, 4)
	for _, l := range blockLines(newCode) {
		indented = append(indented, baseIndent+l)
	}
	replacement := strings.Join(indented, "\n")

	if t.backups != nil {
		if _, err := t.backups.Backup(path); err != nil {
			t.logger.Warn("backup of %s failed: %v", path, err)
		}
	}

	updated := strings.ReplaceAll(content, oldCode, replacement)
	if err := os.WriteFile(path, []byte(updated), 0o644); err != nil {
		return "", &PathError{Op: "writing", Path: filename, Err: err}
	}
	return fmt.Sprintf("Successfully replaced code in %q.", filename), nil
}

func firstLine(s string) string {
	if i := strings.IndexByte(s, '\n'); i >= 0 {
		return s[:i]
	}
	return s
}
