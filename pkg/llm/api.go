// Package llm provides interfaces and types for language model client
// implementations.
package llm

import (
	"context"
	"io"
)

// CompletionRole represents the role of a message in a conversation.
type CompletionRole string

const (
	// RoleSystem indicates a system message that provides instructions or context.
	RoleSystem CompletionRole = "system"
	// RoleUser indicates a message from the human user.
	RoleUser CompletionRole = "user"
	// RoleAssistant indicates a message from the AI assistant.
	RoleAssistant CompletionRole = "assistant"
	// RoleTool indicates a tool result fed back to the model.
	RoleTool CompletionRole = "tool"
)

// CompletionMessage represents a message in a completion request.
type CompletionMessage struct {
	Role    CompletionRole `json:"role"`
	Content string         `json:"content"`
	// Name tags tool messages with the tool that produced them.
	Name string `json:"name,omitempty"`
}

// CompletionRequest represents a request to generate a completion.
type CompletionRequest struct {
	Messages []CompletionMessage
	Model    string
}

// CompletionResponse represents a response from a completion request.
type CompletionResponse struct {
	Content string
	Model   string // model that actually served the request
}

// StreamChunk represents a chunk of streamed completion response.
type StreamChunk struct {
	Error   error
	Content string
	Done    bool
}

// LLMClient defines the interface for language model interactions.
type LLMClient interface {
	// Complete generates a completion synchronously.
	Complete(ctx context.Context, in CompletionRequest) (CompletionResponse, error)

	// Stream generates a completion as a stream of chunks. The channel is
	// closed after the Done chunk.
	Stream(ctx context.Context, in CompletionRequest) (<-chan StreamChunk, error)

	// GetModelName returns the model name for this LLM client.
	GetModelName() string
}

// NewSystemMessage creates a new system message.
func NewSystemMessage(content string) CompletionMessage {
	return CompletionMessage{Role: RoleSystem, Content: content}
}

// NewUserMessage creates a new user message.
func NewUserMessage(content string) CompletionMessage {
	return CompletionMessage{Role: RoleUser, Content: content}
}

// NewToolMessage creates a tool result message attributed to toolName.
func NewToolMessage(toolName, content string) CompletionMessage {
	return CompletionMessage{Role: RoleTool, Content: content, Name: toolName}
}

// StreamToReader converts a stream channel to an io.Reader. A chunk error
// surfaces as the reader's error.
func StreamToReader(stream <-chan StreamChunk) io.Reader {
	pr, pw := io.Pipe()

	go func() {
		defer pw.Close()
		for chunk := range stream {
			if chunk.Error != nil {
				pw.CloseWithError(chunk.Error)
				return
			}
			if _, err := pw.Write([]byte(chunk.Content)); err != nil {
				pw.CloseWithError(err)
				return
			}
			if chunk.Done {
				return
			}
		}
	}()

	return pr
}

// Collect drains a stream into a single response, stopping on the first
// chunk error.
func Collect(stream <-chan StreamChunk) (CompletionResponse, error) {
	var out CompletionResponse
	for chunk := range stream {
		if chunk.Error != nil {
			return out, chunk.Error
		}
		out.Content += chunk.Content
		if chunk.Done {
			break
		}
	}
	return out, nil
}
