package tools

import (
	"context"
	"fmt"
	"os"
	"strings"
)

// ReadFileTool reads a file, optionally restricted to a line range.
type ReadFileTool struct {
	ws *Workspace
}

// NewReadFileTool creates a new read_file tool.
func NewReadFileTool(ws *Workspace) *ReadFileTool {
	return &ReadFileTool{ws: ws}
}

// Name returns the tool name.
func (t *ReadFileTool) Name() string {
	return ToolReadFile
}

// Definition returns the tool definition for the model.
func (t *ReadFileTool) Definition() ToolDefinition {
	return ToolDefinition{
		Name:        ToolReadFile,
		Description: "Reads the content of a specified file, optionally from a start line to an end line.",
		Parameters: InputSchema{
			Type: "object",
			Properties: map[string]Property{
				"filename": {
					Type:        "string",
					Description: "The name of the file to read.",
				},
				"start_line": {
					Type:        "integer",
					Description: "Optional. The line number to start reading from.",
				},
				"end_line": {
					Type:        "integer",
					Description: "Optional. The line number to stop reading at.",
				},
			},
			Required: []string{"filename"},
		},
	}
}

// Exec reads the requested file or line range.
func (t *ReadFileTool) Exec(ctx context.Context, args map[string]any) (string, error) {
	filename, err := stringArg(args, "filename")
	if err != nil {
		return "", err
	}
	path := t.ws.Resolve(ctx, filename)

	data, err := os.ReadFile(path)
	if err != nil {
		return "", &PathError{Op: "reading", Path: filename, Err: err}
	}

	startLine, hasStart := optIntArg(args, "start_line")
	endLine, hasEnd := optIntArg(args, "end_line")
	if !hasStart && !hasEnd {
		return fmt.Sprintf("Content of %q:\n---\n%s\n---", filename, string(data)), nil
	}

	lines := splitLines(string(data))
	startIdx := 0
	if hasStart {
		startIdx = startLine - 1
	}
	if startIdx < 0 {
		startIdx = 0
	}
	endIdx := len(lines)
	if hasEnd && endLine < endIdx {
		endIdx = endLine
	}
	if startIdx > len(lines) {
		startIdx = len(lines)
	}
	if endIdx < startIdx {
		endIdx = startIdx
	}

	from := 1
	if hasStart {
		from = startLine
	}
	to := len(lines)
	if hasEnd {
		to = endLine
	}
	content := strings.Join(lines[startIdx:endIdx], "")
	return fmt.Sprintf("Content of %q from line %d to %d:\n---\n%s\n---", filename, from, to, content), nil
}

// splitLines splits content into newline-terminated segments, keeping the
// terminators, with a possible final unterminated segment.
func splitLines(content string) []string {
	if content == "" {
		return nil
	}
	lines := strings.SplitAfter(content, "\n")
	if lines[len(lines)-1] == "" {
		lines = lines[:len(lines)-1]
	}
	return lines
}
