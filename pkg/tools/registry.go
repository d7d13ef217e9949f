package tools

import (
	"encoding/json"
	"fmt"
	"sort"
	"sync"

	"assistant/pkg/backup"
)

// Registry is an instance-scoped, name-keyed tool catalog. It is populated
// once at construction and read-only afterwards.
type Registry struct {
	mu    sync.RWMutex
	tools map[string]Tool
}

// NewRegistry creates an empty registry.
func NewRegistry() *Registry {
	return &Registry{tools: make(map[string]Tool)}
}

// Register adds a tool. Duplicate names are an error.
func (r *Registry) Register(tool Tool) error {
	if tool == nil {
		return fmt.Errorf("tool cannot be nil")
	}
	name := tool.Name()
	if name == "" {
		return fmt.Errorf("tool name cannot be empty")
	}

	r.mu.Lock()
	defer r.mu.Unlock()
	if _, exists := r.tools[name]; exists {
		return fmt.Errorf("tool %s already registered", name)
	}
	r.tools[name] = tool
	return nil
}

// Get retrieves a tool by name.
func (r *Registry) Get(name string) (Tool, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	tool, exists := r.tools[name]
	if !exists {
		return nil, fmt.Errorf("%w: %q", ErrToolNotFound, name)
	}
	return tool, nil
}

// Definitions returns all tool definitions sorted by name, so the catalog
// block sent to the model is stable across calls.
func (r *Registry) Definitions() []ToolDefinition {
	r.mu.RLock()
	defer r.mu.RUnlock()

	defs := make([]ToolDefinition, 0, len(r.tools))
	for _, tool := range r.tools {
		defs = append(defs, tool.Definition())
	}
	sort.Slice(defs, func(i, j int) bool { return defs[i].Name < defs[j].Name })
	return defs
}

// CatalogJSON serializes the tool definitions for prompt construction.
func (r *Registry) CatalogJSON() string {
	data, err := json.MarshalIndent(r.Definitions(), "", "  ")
	if err != nil {
		return "[]"
	}
	return string(data)
}

// Options carries the dependencies shared by the catalog tools.
type Options struct {
	Workspace      *Workspace
	Backups        *backup.Store
	AllowedCmds    []string
	CommandTimeout int // seconds; zero means the default of 30
}

// NewCatalog builds the fixed nine-tool registry.
func NewCatalog(opts Options) (*Registry, error) {
	ws := opts.Workspace
	if ws == nil {
		ws = NewWorkspace(".")
	}

	r := NewRegistry()
	all := []Tool{
		NewListFilesTool(ws),
		NewReadFileTool(ws),
		NewWriteFileTool(ws, opts.Backups),
		NewDeleteFileTool(ws, opts.Backups),
		NewCreateDirectoryTool(ws),
		NewInsertAtLineTool(ws, opts.Backups),
		NewReplaceCodeTool(ws, opts.Backups),
		NewSearchFilesTool(ws),
		NewRunCommandTool(ws, opts.AllowedCmds, opts.CommandTimeout),
	}
	for _, tool := range all {
		if err := r.Register(tool); err != nil {
			return nil, err
		}
	}
	return r, nil
}
