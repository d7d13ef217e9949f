package tools

import (
	"context"
	"fmt"
	"os"
	"strings"

	"assistant/pkg/backup"
	"assistant/pkg/logx"
)

// InsertAtLineTool inserts a code block at a 1-indexed line number. The
// inserted block inherits the indentation of the line currently at that
// position.
type InsertAtLineTool struct {
	ws      *Workspace
	backups *backup.Store
	logger  *logx.Logger
}

// NewInsertAtLineTool creates a new insert_at_line tool.
func NewInsertAtLineTool(ws *Workspace, backups *backup.Store) *InsertAtLineTool {
	return &InsertAtLineTool{ws: ws, backups: backups, logger: logx.NewLogger("tools")}
}

// Name returns the tool name.
func (t *InsertAtLineTool) Name() string {
	return ToolInsertAtLine
}

// Definition returns the tool definition for the model.
func (t *InsertAtLineTool) Definition() ToolDefinition {
	return ToolDefinition{
		Name:        ToolInsertAtLine,
		Description: "Inserts a block of code at a specific line number. This is the preferred way to add new code.",
		Parameters: InputSchema{
			Type: "object",
			Properties: map[string]Property{
				"filename": {
					Type:        "string",
					Description: "The name of the file to modify.",
				},
				"code_to_insert": {
					Type:        "string",
					Description: "The block of code to add.",
				},
				"line_number": {
					Type:        "integer",
					Description: "The line number at which to insert the code.",
				},
			},
			Required: []string{"filename", "code_to_insert", "line_number"},
		},
	}
}

// Exec inserts the block, shifting the line currently at line_number (and
// everything below it) down. line_number may be line_count+1 to append at
// end-of-file.
func (t *InsertAtLineTool) Exec(ctx context.Context, args map[string]any) (string, error) {
	filename, err := stringArg(args, "filename")
	if err != nil {
		return "", err
	}
	code, err := stringArg(args, "code_to_insert")
	if err != nil {
		return "", err
	}
	lineNumber, err := intArg(args, "line_number")
	if err != nil {
		return "", err
	}

	path := t.ws.Resolve(ctx, filename)
	data, err := os.ReadFile(path)
	if err != nil {
		return "", &PathError{Op: "reading", Path: filename, Err: err}
	}

	lines := splitLines(string(data))
	idx := lineNumber - 1
	if idx < 0 || idx > len(lines) {
		return "", &OutOfBoundsError{Line: lineNumber, Lines: len(lines), File: filename}
	}

	baseIndent := ""
	if idx < len(lines) {
		baseIndent = leadingWhitespace(lines[idx])
	}

	var block []string
	for _, l := range blockLines(code) {
		block = append(block, baseIndent+l+"\n")
	}

	updated := make([]string, 0, len(lines)+len(block))
	updated = append(updated, lines[:idx]...)
	updated = append(updated, block...)
	updated = append(updated, lines[idx:]...)

	if t.backups != nil {
		if _, err := t.backups.Backup(path); err != nil {
			t.logger.Warn("backup of %s failed: %v", path, err)
		}
	}
	if err := os.WriteFile(path, []byte(strings.Join(updated, "")), 0o644); err != nil {
		return "", &PathError{Op: "writing", Path: filename, Err: err}
	}
	return fmt.Sprintf("Successfully inserted code at line %d in %q.", lineNumber, filename), nil
}

// blockLines splits a supplied code block into lines, dropping the empty
// segment a trailing newline would produce.
func blockLines(code string) []string {
	lines := strings.Split(code, "\n")
	if len(lines) > 1 && lines[len(lines)-1] == "" {
		lines = lines[:len(lines)-1]
	}
	return lines
}

// leadingWhitespace returns the run of spaces and tabs at the start of s.
func leadingWhitespace(s string) string {
	for i, r := range s {
		if r != ' ' && r != '\t' {
			return s[:i]
		}
	}
	return s
}
