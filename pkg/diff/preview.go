package diff

import (
	"fmt"
	"os"
	"strings"
)

// ReplacePreview holds the two diffs produced for a proposed replace_code
// call: the snippet-level diff and the whole-file before/after diff.
type ReplacePreview struct {
	SnippetDiff string `json:"snippet_diff"`
	FileDiff    string `json:"file_diff"`
}

// PreviewReplace computes diffs for replacing oldCode with newCode in the
// file at path, without writing anything. A missing file is an error: there
// is nothing to replace in.
func PreviewReplace(path, oldCode, newCode string) (*ReplacePreview, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		if os.IsNotExist(err) {
			return nil, fmt.Errorf("file %q not found: %w", path, os.ErrNotExist)
		}
		return nil, fmt.Errorf("failed to read %s: %w", path, err)
	}
	original := string(data)

	// Hypothetical result: same substring-replace semantics as the tool,
	// applied in memory only.
	wouldBe := strings.ReplaceAll(original, oldCode, newCode)

	return &ReplacePreview{
		SnippetDiff: Unified(oldCode, newCode, "old_code", "new_code"),
		FileDiff:    Unified(original, wouldBe, path+":original", path+":preview"),
	}, nil
}

// PreviewWrite computes the diff a full-content write would produce. A
// missing file is treated as an empty original, matching file creation.
func PreviewWrite(path, content string) (string, error) {
	original := ""
	data, err := os.ReadFile(path)
	switch {
	case err == nil:
		original = string(data)
	case os.IsNotExist(err):
		// creating a new file
	default:
		return "", fmt.Errorf("failed to read %s: %w", path, err)
	}

	return Unified(original, content, path+":original", path+":new"), nil
}
