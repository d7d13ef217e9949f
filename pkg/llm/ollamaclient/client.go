// Package ollamaclient provides a local-model backend for the assistant via
// the Ollama runtime. Model IDs carrying an "ollama/" prefix route here.
package ollamaclient

import (
	"context"
	"fmt"
	"net/http"
	"net/url"
	"strings"

	"github.com/ollama/ollama/api"

	"assistant/pkg/llm"
)

// ModelPrefix marks model IDs served by a local Ollama runtime.
const ModelPrefix = "ollama/"

// DefaultHost is the standard local Ollama endpoint.
const DefaultHost = "http://localhost:11434"

// IsOllamaModel reports whether the model ID routes to Ollama.
func IsOllamaModel(model string) bool {
	return strings.HasPrefix(model, ModelPrefix)
}

// Client wraps the Ollama API client to implement llm.LLMClient.
type Client struct {
	client *api.Client
	model  string // upstream model name, prefix stripped
	id     string // full model ID including prefix
}

// New creates a client for the given model ID. host should be the Ollama
// server URL, e.g. "http://localhost:11434".
func New(host, modelID string) *Client {
	if host == "" {
		host = DefaultHost
	}
	parsedURL, err := url.Parse(host)
	if err != nil {
		parsedURL, _ = url.Parse(DefaultHost)
	}
	return &Client{
		client: api.NewClient(parsedURL, http.DefaultClient),
		model:  strings.TrimPrefix(modelID, ModelPrefix),
		id:     modelID,
	}
}

// GetModelName returns the full model ID including the "ollama/" prefix.
func (c *Client) GetModelName() string {
	return c.id
}

// Complete generates a completion synchronously.
func (c *Client) Complete(ctx context.Context, in llm.CompletionRequest) (llm.CompletionResponse, error) {
	stream := false
	req := &api.ChatRequest{
		Model:    c.model,
		Messages: convertMessages(in.Messages),
		Stream:   &stream,
	}

	var response api.ChatResponse
	err := c.client.Chat(ctx, req, func(resp api.ChatResponse) error {
		response = resp
		return nil
	})
	if err != nil {
		return llm.CompletionResponse{}, classifyError(err)
	}
	return llm.CompletionResponse{Content: response.Message.Content, Model: c.id}, nil
}

// Stream generates a completion as a stream of chunks.
func (c *Client) Stream(ctx context.Context, in llm.CompletionRequest) (<-chan llm.StreamChunk, error) {
	stream := true
	req := &api.ChatRequest{
		Model:    c.model,
		Messages: convertMessages(in.Messages),
		Stream:   &stream,
	}

	ch := make(chan llm.StreamChunk)
	go func() {
		defer close(ch)
		err := c.client.Chat(ctx, req, func(resp api.ChatResponse) error {
			if resp.Message.Content != "" {
				select {
				case ch <- llm.StreamChunk{Content: resp.Message.Content}:
				case <-ctx.Done():
					return ctx.Err()
				}
			}
			return nil
		})
		if err != nil {
			select {
			case ch <- llm.StreamChunk{Error: classifyError(err)}:
			case <-ctx.Done():
			}
			return
		}
		select {
		case ch <- llm.StreamChunk{Done: true}:
		case <-ctx.Done():
		}
	}()
	return ch, nil
}

// convertMessages maps conversation messages to Ollama's format. Ollama
// accepts the "tool" role natively.
func convertMessages(messages []llm.CompletionMessage) []api.Message {
	result := make([]api.Message, 0, len(messages))
	for _, m := range messages {
		result = append(result, api.Message{
			Role:    string(m.Role),
			Content: m.Content,
		})
	}
	return result
}

func classifyError(err error) error {
	if err == nil {
		return nil
	}
	errStr := err.Error()
	switch {
	case strings.Contains(errStr, "connection refused"):
		return fmt.Errorf("ollama server not reachable: %w", err)
	case strings.Contains(errStr, "not found"):
		return fmt.Errorf("ollama model not found: %w", err)
	default:
		return fmt.Errorf("ollama: %w", err)
	}
}
