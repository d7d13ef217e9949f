package conversation

import (
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"assistant/pkg/llm"
)

func TestLogOrderAndSnapshot(t *testing.T) {
	l := New("be helpful")
	l.AppendUser("list the files")
	l.AppendAssistant("calling list_files")
	l.AppendTool("list_files", "a.txt\nb.txt")
	l.AppendAssistant("there are two files")

	snap := l.Snapshot()
	require.Len(t, snap, 5)
	assert.Equal(t, llm.RoleSystem, snap[0].Role)
	assert.Equal(t, "be helpful", snap[0].Content)
	assert.Equal(t, llm.RoleTool, snap[3].Role)
	assert.Equal(t, "list_files", snap[3].Name)
	assert.Equal(t, llm.RoleAssistant, snap[4].Role)
}

func TestLogReset(t *testing.T) {
	l := New("system")
	l.AppendUser("hi")
	l.AppendAssistant("hello")
	require.Equal(t, 3, l.Len())

	l.Reset()
	require.Equal(t, 1, l.Len())
	assert.Equal(t, llm.RoleSystem, l.History()[0].Role)
	assert.Equal(t, "system", l.History()[0].Content)
}

func TestMarkdownRendering(t *testing.T) {
	l := New("system")
	l.AppendUser("hi")
	l.AppendTool("read_file", "contents")

	md := l.Markdown()
	assert.Contains(t, md, "## User\n\nhi")
	assert.Contains(t, md, "## Tool (read_file)\n\ncontents")
	assert.NotContains(t, md, "system")
}

func TestArchiveSaveNaming(t *testing.T) {
	dir := t.TempDir()
	a := NewArchive(filepath.Join(dir, "chats"))
	a.now = func() time.Time { return time.Date(2026, 8, 29, 10, 30, 0, 0, time.UTC) }

	name, err := a.Save("# transcript\n")
	require.NoError(t, err)
	assert.Equal(t, "chat_2026-08-29_10-30-00.md", name)

	content, err := a.Load(name)
	require.NoError(t, err)
	assert.Equal(t, "# transcript\n", content)
}

func TestArchiveRejectsEmpty(t *testing.T) {
	a := NewArchive(t.TempDir())
	_, err := a.Save("   \n")
	assert.ErrorIs(t, err, ErrEmptyTranscript)
}

func TestArchiveListFiltersAndSorts(t *testing.T) {
	dir := t.TempDir()
	require.NoError(t, os.WriteFile(filepath.Join(dir, "chat_b.md"), []byte("b"), 0o644))
	require.NoError(t, os.WriteFile(filepath.Join(dir, "chat_a.md"), []byte("a"), 0o644))
	require.NoError(t, os.WriteFile(filepath.Join(dir, "notes.txt"), []byte("x"), 0o644))

	a := NewArchive(dir)
	files, err := a.List()
	require.NoError(t, err)
	assert.Equal(t, []string{"chat_a.md", "chat_b.md"}, files)
}

func TestArchiveLoadStripsPath(t *testing.T) {
	dir := t.TempDir()
	require.NoError(t, os.WriteFile(filepath.Join(dir, "chat_x.md"), []byte("safe"), 0o644))

	a := NewArchive(dir)
	content, err := a.Load("../../chat_x.md")
	require.NoError(t, err)
	assert.Equal(t, "safe", content)

	_, err = a.Load("../../etc/passwd")
	assert.Error(t, err)
}

func TestArchiveListMissingDir(t *testing.T) {
	a := NewArchive(filepath.Join(t.TempDir(), "absent"))
	files, err := a.List()
	require.NoError(t, err)
	assert.Empty(t, files)
}
