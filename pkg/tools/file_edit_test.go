package tools

import (
	"context"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"assistant/pkg/backup"
)

func writeTemp(t *testing.T, dir, name, content string) string {
	t.Helper()
	path := filepath.Join(dir, name)
	require.NoError(t, os.WriteFile(path, []byte(content), 0o644))
	return path
}

func readBack(t *testing.T, path string) string {
	t.Helper()
	data, err := os.ReadFile(path)
	require.NoError(t, err)
	return string(data)
}

func TestInsertAtLineShiftsLinesDown(t *testing.T) {
	dir := t.TempDir()
	path := writeTemp(t, dir, "f.txt", "one\ntwo\nthree\n")

	tool := NewInsertAtLineTool(NewWorkspace(dir), nil)
	out, err := tool.Exec(context.Background(), map[string]any{
		"filename":       "f.txt",
		"code_to_insert": "zero",
		"line_number":    float64(1),
	})
	require.NoError(t, err)
	assert.Contains(t, out, "line 1")
	assert.Equal(t, "zero\none\ntwo\nthree\n", readBack(t, path))
}

func TestInsertAtLineAppendsAtEnd(t *testing.T) {
	dir := t.TempDir()
	path := writeTemp(t, dir, "f.txt", "one\ntwo\nthree\n")

	tool := NewInsertAtLineTool(NewWorkspace(dir), nil)
	_, err := tool.Exec(context.Background(), map[string]any{
		"filename":       "f.txt",
		"code_to_insert": "four",
		"line_number":    float64(4),
	})
	require.NoError(t, err)
	assert.Equal(t, "one\ntwo\nthree\nfour\n", readBack(t, path))
}

func TestInsertAtLineOutOfBounds(t *testing.T) {
	dir := t.TempDir()
	writeTemp(t, dir, "f.txt", "one\ntwo\nthree\n")

	tool := NewInsertAtLineTool(NewWorkspace(dir), nil)
	for _, line := range []int{0, 5, -3} {
		_, err := tool.Exec(context.Background(), map[string]any{
			"filename":       "f.txt",
			"code_to_insert": "x",
			"line_number":    float64(line),
		})
		require.Error(t, err, "line %d", line)
		var oob *OutOfBoundsError
		require.ErrorAs(t, err, &oob)
		assert.Equal(t, line, oob.Line)
		assert.Contains(t, err.Error(), "valid range: 1 to 4")
	}
}

func TestInsertAtLineInheritsIndentation(t *testing.T) {
	dir := t.TempDir()
	path := writeTemp(t, dir, "f.py", "def f():\n    return 1\n")

	tool := NewInsertAtLineTool(NewWorkspace(dir), nil)
	_, err := tool.Exec(context.Background(), map[string]any{
		"filename":       "f.py",
		"code_to_insert": "x = 2",
		"line_number":    float64(2),
	})
	require.NoError(t, err)
	assert.Equal(t, "def f():\n    x = 2\n    return 1\n", readBack(t, path))
}

func TestInsertAtLineDropsTrailingNewline(t *testing.T) {
	dir := t.TempDir()
	path := writeTemp(t, dir, "f.py", "    first()\n    second()\n")

	tool := NewInsertAtLineTool(NewWorkspace(dir), nil)
	_, err := tool.Exec(context.Background(), map[string]any{
		"filename":       "f.py",
		"code_to_insert": "between()\n",
		"line_number":    float64(2),
	})
	require.NoError(t, err)
	// no extra indented blank line from the block's trailing newline
	assert.Equal(t, "    first()\n    between()\n    second()\n", readBack(t, path))
}

func TestReplaceCodeReplacesAllOccurrences(t *testing.T) {
	dir := t.TempDir()
	path := writeTemp(t, dir, "f.txt", "foo()\nbar()\nfoo()\n")

	tool := NewReplaceCodeTool(NewWorkspace(dir), nil)
	_, err := tool.Exec(context.Background(), map[string]any{
		"filename": "f.txt",
		"old_code": "foo()",
		"new_code": "baz()",
	})
	require.NoError(t, err)
	assert.Equal(t, "baz()\nbar()\nbaz()\n", readBack(t, path))
}

func TestReplaceCodeReindentsToOldBlock(t *testing.T) {
	dir := t.TempDir()
	path := writeTemp(t, dir, "f.py", "def f():\n    old_call()\n")

	tool := NewReplaceCodeTool(NewWorkspace(dir), nil)
	_, err := tool.Exec(context.Background(), map[string]any{
		"filename": "f.py",
		"old_code": "    old_call()",
		"new_code": "new_call()",
	})
	require.NoError(t, err)
	assert.Equal(t, "def f():\n    new_call()\n", readBack(t, path))
}

func TestReplaceCodeDropsTrailingNewline(t *testing.T) {
	dir := t.TempDir()
	path := writeTemp(t, dir, "f.py", "def f():\n    old_call()\n")

	tool := NewReplaceCodeTool(NewWorkspace(dir), nil)
	_, err := tool.Exec(context.Background(), map[string]any{
		"filename": "f.py",
		"old_code": "    old_call()",
		"new_code": "new_call()\n",
	})
	require.NoError(t, err)
	// trailing newline in the block must not become an indented blank line
	assert.Equal(t, "def f():\n    new_call()\n", readBack(t, path))
}

func TestReplaceCodeExactMatchNotFound(t *testing.T) {
	dir := t.TempDir()
	path := writeTemp(t, dir, "f.txt", "hello\n")

	tool := NewReplaceCodeTool(NewWorkspace(dir), nil)
	_, err := tool.Exec(context.Background(), map[string]any{
		"filename": "f.txt",
		"old_code": "absent",
		"new_code": "x",
	})
	require.Error(t, err)
	assert.ErrorIs(t, err, ErrExactMatchNotFound)
	// file untouched
	assert.Equal(t, "hello\n", readBack(t, path))
}

func TestMutatingToolsWriteBackups(t *testing.T) {
	dir := t.TempDir()
	backupDir := filepath.Join(dir, "backups")
	writeTemp(t, dir, "f.txt", "before\n")

	store := backup.NewStore(backupDir)
	ws := NewWorkspace(dir)

	tool := NewWriteFileTool(ws, store)
	_, err := tool.Exec(context.Background(), map[string]any{
		"filename": "f.txt",
		"content":  "after\n",
	})
	require.NoError(t, err)

	entries, err := os.ReadDir(backupDir)
	require.NoError(t, err)
	require.Len(t, entries, 1)
	assert.Regexp(t, `^f\.txt\.\d+\.bak$`, entries[0].Name())
	assert.Equal(t, "before\n", readBack(t, filepath.Join(backupDir, entries[0].Name())))
}

func TestWriteFileEncodesStructuredContent(t *testing.T) {
	dir := t.TempDir()
	tool := NewWriteFileTool(NewWorkspace(dir), nil)
	_, err := tool.Exec(context.Background(), map[string]any{
		"filename": "data.json",
		"content":  map[string]any{"key": "value"},
	})
	require.NoError(t, err)
	assert.Contains(t, readBack(t, filepath.Join(dir, "data.json")), `"key": "value"`)
}

func TestDeleteFileMissing(t *testing.T) {
	tool := NewDeleteFileTool(NewWorkspace(t.TempDir()), nil)
	_, err := tool.Exec(context.Background(), map[string]any{"filename": "absent.txt"})
	require.Error(t, err)
	var perr *PathError
	assert.ErrorAs(t, err, &perr)
}
