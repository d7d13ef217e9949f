package tools

import (
	"context"
	"fmt"
	"io/fs"
	"os"
	"path/filepath"
	"regexp"
	"strings"

	gitignore "github.com/sabhiram/go-gitignore"
)

// SearchFilesTool scans a directory tree for a case-insensitive regex
// pattern, optionally filtered by a filename glob. Files matched by the
// search root's .gitignore are skipped.
type SearchFilesTool struct {
	ws *Workspace
}

// NewSearchFilesTool creates a new search_files tool.
func NewSearchFilesTool(ws *Workspace) *SearchFilesTool {
	return &SearchFilesTool{ws: ws}
}

// Name returns the tool name.
func (t *SearchFilesTool) Name() string {
	return ToolSearchFiles
}

// Definition returns the tool definition for the model.
func (t *SearchFilesTool) Definition() ToolDefinition {
	return ToolDefinition{
		Name:        ToolSearchFiles,
		Description: "Search for text in files using grep-like functionality with optional regex support.",
		Parameters: InputSchema{
			Type: "object",
			Properties: map[string]Property{
				"pattern": {
					Type:        "string",
					Description: "The search pattern (supports regex).",
				},
				"directory": {
					Type:        "string",
					Description: "Directory to search in (default: current directory).",
				},
				"file_pattern": {
					Type:        "string",
					Description: "File pattern to search in (e.g., '*.py', '*.js').",
				},
			},
			Required: []string{"pattern"},
		},
	}
}

// Exec walks the tree and reports files whose content matches the pattern.
// Unreadable files are skipped, never fatal.
func (t *SearchFilesTool) Exec(ctx context.Context, args map[string]any) (string, error) {
	pattern, err := stringArg(args, "pattern")
	if err != nil {
		return "", err
	}
	re, err := regexp.Compile("(?i)" + pattern)
	if err != nil {
		return "", fmt.Errorf("invalid search pattern %q: %w", pattern, err)
	}

	dir := t.ws.Resolve(ctx, optStringArg(args, "directory", "."))
	filePattern := optStringArg(args, "file_pattern", "")

	var ignore *gitignore.GitIgnore
	if gi, err := gitignore.CompileIgnoreFile(filepath.Join(dir, ".gitignore")); err == nil {
		ignore = gi
	}

	var results []string
	walkErr := filepath.WalkDir(dir, func(path string, d fs.DirEntry, err error) error {
		if err != nil {
			return nil //nolint:nilerr // unreadable entries are skipped
		}
		if d.IsDir() {
			if d.Name() == ".git" {
				return filepath.SkipDir
			}
			return nil
		}
		rel, relErr := filepath.Rel(dir, path)
		if relErr == nil && ignore != nil && ignore.MatchesPath(rel) {
			return nil
		}
		if filePattern != "" {
			if ok, _ := filepath.Match(filePattern, d.Name()); !ok {
				return nil
			}
		}
		data, readErr := os.ReadFile(path)
		if readErr != nil {
			return nil //nolint:nilerr // unreadable files are skipped
		}
		if re.Match(data) {
			results = append(results, "Found in "+path)
		}
		return nil
	})
	if walkErr != nil {
		return "", &PathError{Op: "searching", Path: dir, Err: walkErr}
	}

	if len(results) == 0 {
		return "No matches found.", nil
	}
	return "Search results:\n" + strings.Join(results, "\n"), nil
}
