// Package backup writes timestamped copies of files before mutating tools
// touch them. Backups are write-once and never read back by the service;
// recovery is a manual operation.
package backup

import (
	"fmt"
	"os"
	"path/filepath"
	"time"

	"assistant/pkg/logx"
)

// Store writes backup copies into a single backup directory.
type Store struct {
	dir    string
	logger *logx.Logger
	now    func() time.Time
}

// NewStore creates a backup store rooted at dir. The directory is created on
// first use.
func NewStore(dir string) *Store {
	return &Store{
		dir:    dir,
		logger: logx.NewLogger("backup"),
		now:    time.Now,
	}
}

// Backup copies the current content of path into the backup directory as
// <basename>.<unix_time>.bak. A missing source file is not an error: there is
// nothing to preserve and the returned path is empty.
func (s *Store) Backup(path string) (string, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		if os.IsNotExist(err) {
			return "", nil
		}
		return "", fmt.Errorf("failed to read %s for backup: %w", path, err)
	}

	if err := os.MkdirAll(s.dir, 0o755); err != nil {
		return "", fmt.Errorf("failed to create backup directory: %w", err)
	}

	name := fmt.Sprintf("%s.%d.bak", filepath.Base(path), s.now().Unix())
	dst := filepath.Join(s.dir, name)
	if err := os.WriteFile(dst, data, 0o644); err != nil {
		return "", fmt.Errorf("failed to write backup %s: %w", dst, err)
	}

	s.logger.Debug("backed up %s to %s", path, dst)
	return dst, nil
}

// Dir returns the backup directory.
func (s *Store) Dir() string {
	return s.dir
}
