package conversation

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"sort"
	"strings"
	"time"
)

// ErrEmptyTranscript is returned when a save request carries no content.
var ErrEmptyTranscript = errors.New("no markdown content provided")

// Archive persists chat transcripts as Markdown files named
// chat_<timestamp>.md under a single directory.
type Archive struct {
	dir string
	now func() time.Time
}

// NewArchive creates an archive rooted at dir. The directory is created
// lazily on first save.
func NewArchive(dir string) *Archive {
	return &Archive{dir: dir, now: time.Now}
}

// Save writes the transcript and returns the generated filename.
func (a *Archive) Save(markdown string) (string, error) {
	if strings.TrimSpace(markdown) == "" {
		return "", ErrEmptyTranscript
	}
	if err := os.MkdirAll(a.dir, 0o755); err != nil {
		return "", fmt.Errorf("creating chats directory: %w", err)
	}
	name := fmt.Sprintf("chat_%s.md", a.now().Format("2006-01-02_15-04-05"))
	if err := os.WriteFile(filepath.Join(a.dir, name), []byte(markdown), 0o644); err != nil {
		return "", fmt.Errorf("writing transcript: %w", err)
	}
	return name, nil
}

// List returns the saved transcript filenames in sorted order.
func (a *Archive) List() ([]string, error) {
	entries, err := os.ReadDir(a.dir)
	if os.IsNotExist(err) {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("listing chats directory: %w", err)
	}
	var files []string
	for _, e := range entries {
		if !e.IsDir() && strings.HasSuffix(strings.ToLower(e.Name()), ".md") {
			files = append(files, e.Name())
		}
	}
	sort.Strings(files)
	return files, nil
}

// Load reads a saved transcript. The filename is reduced to its base name so
// a caller-supplied path cannot escape the archive directory.
func (a *Archive) Load(filename string) (string, error) {
	safe := filepath.Base(filename)
	data, err := os.ReadFile(filepath.Join(a.dir, safe))
	if err != nil {
		return "", fmt.Errorf("reading transcript %s: %w", safe, err)
	}
	return string(data), nil
}
