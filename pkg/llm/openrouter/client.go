// Package openrouter implements an LLM client for OpenRouter-compatible
// chat completion APIs using server-sent event streaming.
package openrouter

import (
	"bufio"
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"strings"
	"time"

	"assistant/pkg/llm"
	"assistant/pkg/logx"
)

// DefaultBaseURL is the public OpenRouter endpoint.
const DefaultBaseURL = "https://openrouter.ai/api/v1"

const maxErrorBodyBytes = 2048

// Config configures an OpenRouter client for a single model.
type Config struct {
	BaseURL    string
	APIKey     string
	Model      string
	HTTPClient *http.Client

	// OnParseFailure is called for every malformed stream fragment.
	OnParseFailure func()
}

// Client is an llm.LLMClient backed by an OpenRouter-compatible endpoint.
type Client struct {
	baseURL        string
	apiKey         string
	model          string
	client         *http.Client
	logger         *logx.Logger
	onParseFailure func()
}

// New creates a client for the configured model.
func New(cfg Config) *Client {
	baseURL := cfg.BaseURL
	if baseURL == "" {
		baseURL = DefaultBaseURL
	}
	httpClient := cfg.HTTPClient
	if httpClient == nil {
		httpClient = &http.Client{Timeout: 600 * time.Second}
	}
	onParseFailure := cfg.OnParseFailure
	if onParseFailure == nil {
		onParseFailure = func() {}
	}
	return &Client{
		baseURL:        strings.TrimRight(baseURL, "/"),
		apiKey:         cfg.APIKey,
		model:          cfg.Model,
		client:         httpClient,
		logger:         logx.NewLogger("openrouter"),
		onParseFailure: onParseFailure,
	}
}

// GetModelName returns the model this client serves.
func (c *Client) GetModelName() string {
	return c.model
}

type wireMessage struct {
	Role    string `json:"role"`
	Content string `json:"content"`
	Name    string `json:"name,omitempty"`
}

type wireRequest struct {
	Model    string        `json:"model"`
	Messages []wireMessage `json:"messages"`
	Stream   bool          `json:"stream"`
}

// streamFragment is one `data:` JSON payload of the SSE response.
type streamFragment struct {
	Choices []struct {
		Delta struct {
			Content string `json:"content"`
		} `json:"delta"`
	} `json:"choices"`
}

// Complete generates a completion by draining the stream into a single
// response.
func (c *Client) Complete(ctx context.Context, in llm.CompletionRequest) (llm.CompletionResponse, error) {
	stream, err := c.Stream(ctx, in)
	if err != nil {
		return llm.CompletionResponse{}, err
	}
	resp, err := llm.Collect(stream)
	if err != nil {
		return llm.CompletionResponse{}, err
	}
	resp.Model = c.model
	return resp, nil
}

// Stream sends the completion request and emits content deltas as they
// arrive. Malformed stream fragments are skipped, never fatal.
func (c *Client) Stream(ctx context.Context, in llm.CompletionRequest) (<-chan llm.StreamChunk, error) {
	model := in.Model
	if model == "" {
		model = c.model
	}
	payload := wireRequest{
		Model:    model,
		Messages: make([]wireMessage, 0, len(in.Messages)),
		Stream:   true,
	}
	for _, m := range in.Messages {
		payload.Messages = append(payload.Messages, wireMessage{
			Role:    string(m.Role),
			Content: m.Content,
			Name:    m.Name,
		})
	}
	body, err := json.Marshal(payload)
	if err != nil {
		return nil, fmt.Errorf("encoding request: %w", err)
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, c.baseURL+"/chat/completions", bytes.NewReader(body))
	if err != nil {
		return nil, fmt.Errorf("building request: %w", err)
	}
	req.Header.Set("Authorization", "Bearer "+c.apiKey)
	req.Header.Set("Content-Type", "application/json")
	req.Header.Set("Accept", "text/event-stream")

	resp, err := c.client.Do(req)
	if err != nil {
		return nil, fmt.Errorf("calling %s: %w", model, err)
	}
	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		defer resp.Body.Close()
		detail, _ := io.ReadAll(io.LimitReader(resp.Body, maxErrorBodyBytes))
		return nil, fmt.Errorf("model %s returned status %d: %s", model, resp.StatusCode, strings.TrimSpace(string(detail)))
	}

	ch := make(chan llm.StreamChunk)
	go func() {
		defer close(ch)
		defer resp.Body.Close()

		scanner := bufio.NewScanner(resp.Body)
		scanner.Buffer(make([]byte, 0, 64*1024), 2*1024*1024)
		for scanner.Scan() {
			line := scanner.Text()
			if !strings.HasPrefix(line, "data:") {
				continue
			}
			data := strings.TrimSpace(strings.TrimPrefix(line, "data:"))
			if data == "" {
				continue
			}
			if data == "[DONE]" {
				break
			}
			var fragment streamFragment
			if err := json.Unmarshal([]byte(data), &fragment); err != nil {
				c.onParseFailure()
				c.logger.Debug("skipping malformed stream fragment: %v", err)
				continue
			}
			if len(fragment.Choices) == 0 {
				continue
			}
			delta := fragment.Choices[0].Delta.Content
			if delta == "" {
				continue
			}
			select {
			case ch <- llm.StreamChunk{Content: delta}:
			case <-ctx.Done():
				return
			}
		}
		if err := scanner.Err(); err != nil {
			select {
			case ch <- llm.StreamChunk{Error: fmt.Errorf("reading stream: %w", err)}:
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
