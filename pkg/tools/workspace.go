package tools

import (
	"context"
	"path/filepath"
	"sync"
)

type sessionKey struct{}

// WithSession returns a context carrying the session ID used to scope
// relative path resolution.
func WithSession(ctx context.Context, sessionID string) context.Context {
	return context.WithValue(ctx, sessionKey{}, sessionID)
}

// SessionFromContext extracts the session ID, or "" when no session context
// exists.
func SessionFromContext(ctx context.Context) string {
	if v, ok := ctx.Value(sessionKey{}).(string); ok {
		return v
	}
	return ""
}

// Workspace tracks a current directory per session and resolves tool paths
// against it. Entries are created lazily on first navigation and never expire.
type Workspace struct {
	mu       sync.Mutex
	root     string
	sessions map[string]string
}

// NewWorkspace creates a workspace rooted at root; sessions without an
// explicit directory resolve against it.
func NewWorkspace(root string) *Workspace {
	if root == "" {
		root = "."
	}
	return &Workspace{
		root:     root,
		sessions: make(map[string]string),
	}
}

// Dir returns the current directory for the session in ctx.
func (w *Workspace) Dir(ctx context.Context) string {
	session := SessionFromContext(ctx)
	if session == "" {
		return w.root
	}

	w.mu.Lock()
	defer w.mu.Unlock()
	if dir, ok := w.sessions[session]; ok {
		return dir
	}
	return w.root
}

// SetDir records dir as the session's current directory.
func (w *Workspace) SetDir(ctx context.Context, dir string) {
	session := SessionFromContext(ctx)
	if session == "" {
		return
	}

	w.mu.Lock()
	defer w.mu.Unlock()
	w.sessions[session] = dir
}

// Resolve maps a tool-supplied path to an absolute-or-workspace path.
// Absolute paths are used as-is; relative paths resolve against the
// session's current directory.
func (w *Workspace) Resolve(ctx context.Context, path string) string {
	if path == "" {
		return w.Dir(ctx)
	}
	if filepath.IsAbs(path) {
		return path
	}
	return filepath.Join(w.Dir(ctx), path)
}
