// Package tools implements the assistant's tool catalog: file and directory
// primitives plus sandboxed command execution, dispatched by name through a
// registry. Every tool operates relative to a session-scoped current
// directory and returns a textual result suitable for appending to the
// conversation as a tool message.
package tools

import (
	"context"
	"fmt"
)

// Tool is the capability interface every catalog entry implements.
type Tool interface {
	// Name returns the tool's identifier.
	Name() string
	// Definition returns the schema advertised to the model.
	Definition() ToolDefinition
	// Exec runs the tool. The returned string is the result shown to the
	// model; errors are surfaced to the model as tool output, never fatal.
	Exec(ctx context.Context, args map[string]any) (string, error)
}

// ToolDefinition describes a tool for the model-facing catalog block.
type ToolDefinition struct {
	Name        string      `json:"name"`
	Description string      `json:"description"`
	Parameters  InputSchema `json:"parameters"`
}

// InputSchema is a JSON-schema-shaped parameter description.
type InputSchema struct {
	Type       string              `json:"type"`
	Properties map[string]Property `json:"properties"`
	Required   []string            `json:"required"`
}

// Property describes a single tool parameter.
type Property struct {
	Type        string `json:"type"`
	Description string `json:"description"`
}

// stringArg extracts a required string argument.
func stringArg(args map[string]any, key string) (string, error) {
	v, ok := args[key]
	if !ok {
		return "", fmt.Errorf("missing required argument: %s", key)
	}
	s, ok := v.(string)
	if !ok {
		return "", fmt.Errorf("argument %s must be a string", key)
	}
	return s, nil
}

// optStringArg extracts an optional string argument, returning def when absent.
func optStringArg(args map[string]any, key, def string) string {
	if v, ok := args[key]; ok {
		if s, ok := v.(string); ok && s != "" {
			return s
		}
	}
	return def
}

// intArg extracts a required integer argument. JSON numbers arrive as
// float64, so both forms are accepted.
func intArg(args map[string]any, key string) (int, error) {
	v, ok := args[key]
	if !ok {
		return 0, fmt.Errorf("missing required argument: %s", key)
	}
	switch n := v.(type) {
	case float64:
		return int(n), nil
	case int:
		return n, nil
	default:
		return 0, fmt.Errorf("argument %s must be an integer", key)
	}
}

// optIntArg extracts an optional integer argument, returning (def, false)
// when absent.
func optIntArg(args map[string]any, key string) (int, bool) {
	v, ok := args[key]
	if !ok {
		return 0, false
	}
	switch n := v.(type) {
	case float64:
		return int(n), true
	case int:
		return n, true
	default:
		return 0, false
	}
}
