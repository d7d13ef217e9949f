package backup

import (
	"os"
	"path/filepath"
	"regexp"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestBackupCopiesContent(t *testing.T) {
	dir := t.TempDir()
	src := filepath.Join(t.TempDir(), "notes.txt")
	require.NoError(t, os.WriteFile(src, []byte("original\n"), 0o644))

	store := NewStore(dir)
	store.now = func() time.Time { return time.Unix(1700000000, 0) }

	dst, err := store.Backup(src)
	require.NoError(t, err)
	assert.Equal(t, filepath.Join(dir, "notes.txt.1700000000.bak"), dst)

	data, err := os.ReadFile(dst)
	require.NoError(t, err)
	assert.Equal(t, "original\n", string(data))
}

func TestBackupMissingSourceIsNoop(t *testing.T) {
	store := NewStore(t.TempDir())
	dst, err := store.Backup(filepath.Join(t.TempDir(), "absent.txt"))
	require.NoError(t, err)
	assert.Empty(t, dst)
}

func TestBackupNamePattern(t *testing.T) {
	dir := t.TempDir()
	src := filepath.Join(t.TempDir(), "script.py")
	require.NoError(t, os.WriteFile(src, []byte("x"), 0o644))

	store := NewStore(dir)
	dst, err := store.Backup(src)
	require.NoError(t, err)
	assert.Regexp(t, regexp.MustCompile(`script\.py\.\d+\.bak$`), dst)
}

func TestBackupCreatesDirectoryLazily(t *testing.T) {
	dir := filepath.Join(t.TempDir(), "nested", "backups")
	src := filepath.Join(t.TempDir(), "f.txt")
	require.NoError(t, os.WriteFile(src, []byte("x"), 0o644))

	store := NewStore(dir)
	_, err := store.Backup(src)
	require.NoError(t, err)

	info, err := os.Stat(dir)
	require.NoError(t, err)
	assert.True(t, info.IsDir())
}
