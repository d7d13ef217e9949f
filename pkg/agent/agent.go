// Package agent implements the assistant's turn loop: send the conversation
// to a model, extract an optional tool call from the reply, gate dangerous
// tools behind user confirmation, execute the rest, and feed results back
// for a follow-up response.
package agent

import (
	"context"
	"fmt"
	"sync"

	"github.com/google/uuid"

	"assistant/pkg/conversation"
	"assistant/pkg/diff"
	"assistant/pkg/llm"
	"assistant/pkg/logx"
	"assistant/pkg/metrics"
	"assistant/pkg/tools"
)

// ActionRequest asks the user to confirm a dangerous tool before it runs.
type ActionRequest struct {
	Name string         `json:"name"`
	Args map[string]any `json:"args"`
}

// Result is the outcome of a completed turn: either a plain reply or a
// pending action request.
type Result struct {
	Reply         string         `json:"reply,omitempty"`
	ActionRequest *ActionRequest `json:"action_request,omitempty"`
}

// StreamEvent is one event of a streamed turn.
type StreamEvent struct {
	Type     string    `json:"type"` // "content", "tool_call", "complete", "error"
	Content  string    `json:"content,omitempty"`
	Reply    string    `json:"reply,omitempty"`
	ToolCall *ToolCall `json:"tool_call,omitempty"`
	Error    string    `json:"error,omitempty"`
}

// Agent owns the conversation and the tool gateway. A single mutex
// serializes turns: the model call, extraction, and tool execution of one
// turn finish before the next begins.
type Agent struct {
	mu        sync.Mutex
	log       *conversation.Log
	client    llm.LLMClient
	registry  *tools.Registry
	workspace *tools.Workspace
	recorder  *metrics.Recorder
	logger    *logx.Logger
}

// Options carries the Agent's dependencies.
type Options struct {
	Client    llm.LLMClient
	Registry  *tools.Registry
	Workspace *tools.Workspace
	Recorder  *metrics.Recorder
	// SystemPrompt overrides DefaultSystemPrompt when set.
	SystemPrompt string
}

// New creates an agent with a fresh conversation.
func New(opts Options) *Agent {
	prompt := opts.SystemPrompt
	if prompt == "" {
		prompt = DefaultSystemPrompt
	}
	recorder := opts.Recorder
	if recorder == nil {
		recorder = metrics.NewRecorder(nil)
	}
	ws := opts.Workspace
	if ws == nil {
		ws = tools.NewWorkspace(".")
	}
	return &Agent{
		log:       conversation.New(prompt),
		client:    opts.Client,
		registry:  opts.Registry,
		workspace: ws,
		recorder:  recorder,
		logger:    logx.NewLogger("agent"),
	}
}

// Conversation exposes the message log for transcript rendering and reset.
func (a *Agent) Conversation() *conversation.Log {
	return a.log
}

// complete runs one model call over the flattened conversation.
func (a *Agent) complete(ctx context.Context, model string) (string, error) {
	req := llm.CompletionRequest{
		Messages: []llm.CompletionMessage{llm.NewUserMessage(buildPrompt(a.log, a.registry.CatalogJSON()))},
		Model:    model,
	}
	resp, err := a.client.Complete(ctx, req)
	if err != nil {
		return "", err
	}
	return resp.Content, nil
}

// ProcessMessage runs one full turn for a user message. The returned Result
// is either a reply or an action request awaiting confirmation.
func (a *Agent) ProcessMessage(ctx context.Context, userText string) (Result, error) {
	a.mu.Lock()
	defer a.mu.Unlock()

	requestID := requestIDFromContext(ctx)
	a.log.AppendUser(userText)

	full, err := a.complete(ctx, "")
	if err != nil {
		a.logger.ErrorReq(requestID, "model call failed: %v", err)
		return Result{}, err
	}
	a.log.AppendAssistant(full)

	call, status := ExtractToolCall(full)
	switch status {
	case ExtractFound:
		return a.handleToolCall(ctx, requestID, call)
	case ExtractParseError:
		a.recorder.IncParseFailure()
		a.logger.ErrorReq(requestID, "tool call block did not parse, returning raw reply")
		return Result{Reply: full}, nil
	default:
		return Result{Reply: full}, nil
	}
}

// ProcessMessageStream runs a turn and emits the model output as it
// arrives. Tool calls are reported as an event and left to the caller; no
// tool executes during a streamed turn.
func (a *Agent) ProcessMessageStream(ctx context.Context, userText string) <-chan StreamEvent {
	out := make(chan StreamEvent)
	go func() {
		defer close(out)
		a.mu.Lock()
		defer a.mu.Unlock()

		requestID := requestIDFromContext(ctx)
		a.log.AppendUser(userText)

		req := llm.CompletionRequest{
			Messages: []llm.CompletionMessage{llm.NewUserMessage(buildPrompt(a.log, a.registry.CatalogJSON()))},
		}
		stream, err := a.client.Stream(ctx, req)
		if err != nil {
			a.logger.ErrorReq(requestID, "model call failed: %v", err)
			out <- StreamEvent{Type: "error", Error: err.Error()}
			return
		}

		var full string
		for chunk := range stream {
			if chunk.Error != nil {
				a.logger.ErrorReq(requestID, "stream failed: %v", chunk.Error)
				out <- StreamEvent{Type: "error", Error: chunk.Error.Error()}
				return
			}
			if chunk.Content != "" {
				full += chunk.Content
				out <- StreamEvent{Type: "content", Content: chunk.Content}
			}
			if chunk.Done {
				break
			}
		}
		a.log.AppendAssistant(full)

		call, status := ExtractToolCall(full)
		switch status {
		case ExtractFound:
			out <- StreamEvent{Type: "tool_call", ToolCall: call}
		case ExtractParseError:
			a.recorder.IncParseFailure()
			out <- StreamEvent{Type: "complete", Reply: full}
		default:
			out <- StreamEvent{Type: "complete", Reply: full}
		}
	}()
	return out
}

// handleToolCall gates dangerous tools behind confirmation and executes the
// rest, feeding the result back for a follow-up reply. Execution errors are
// reported back to the model as the tool result, not returned.
func (a *Agent) handleToolCall(ctx context.Context, requestID string, call *ToolCall) (Result, error) {
	a.logger.InfoReq(requestID, "tool call requested: %s", call.Name)

	if tools.IsDangerous(call.Name) {
		return Result{ActionRequest: &ActionRequest{Name: call.Name, Args: call.Arguments}}, nil
	}

	var result string
	tool, err := a.registry.Get(call.Name)
	if err != nil {
		a.recorder.IncToolCall(call.Name, "error")
		result = fmt.Sprintf("Error: Tool %q not found.", call.Name)
	} else {
		result, err = tool.Exec(ctx, call.Arguments)
		if err != nil {
			a.recorder.IncToolCall(call.Name, "error")
			a.logger.ErrorReq(requestID, "tool %s failed: %v", call.Name, err)
			result = fmt.Sprintf("Error executing tool %s: %v", call.Name, err)
		} else {
			a.recorder.IncToolCall(call.Name, "success")
		}
	}

	return a.followUp(ctx, call.Name, result)
}

// ConfirmAction executes a previously requested dangerous tool after user
// confirmation, then asks the model for a follow-up reply. Execution errors
// are reported back to the model as the tool result, not returned.
func (a *Agent) ConfirmAction(ctx context.Context, name string, args map[string]any) (Result, error) {
	a.mu.Lock()
	defer a.mu.Unlock()

	requestID := requestIDFromContext(ctx)
	a.logger.InfoReq(requestID, "user confirmed execution of %s", name)

	var result string
	tool, err := a.registry.Get(name)
	if err != nil {
		a.recorder.IncToolCall(name, "error")
		result = fmt.Sprintf("Error: Tool %q not found.", name)
	} else {
		result, err = tool.Exec(ctx, args)
		if err != nil {
			a.recorder.IncToolCall(name, "error")
			result = fmt.Sprintf("Error executing tool %s: %v", name, err)
		} else {
			a.recorder.IncToolCall(name, "success")
		}
	}

	return a.followUp(ctx, name, result)
}

// followUp appends the tool result and asks the model to continue the turn.
func (a *Agent) followUp(ctx context.Context, toolName, result string) (Result, error) {
	a.log.AppendTool(toolName, result)

	full, err := a.complete(ctx, "")
	if err != nil {
		return Result{}, err
	}
	a.log.AppendAssistant(full)
	return Result{Reply: full}, nil
}

// PreviewReplace renders the diffs a replace_code call would produce,
// without mutating anything.
func (a *Agent) PreviewReplace(ctx context.Context, filename, oldCode, newCode string) (*diff.ReplacePreview, error) {
	return diff.PreviewReplace(a.workspace.Resolve(ctx, filename), oldCode, newCode)
}

// PreviewWrite renders the diff a write_file call would produce. A missing
// file previews as a creation.
func (a *Agent) PreviewWrite(ctx context.Context, filename, content string) (string, error) {
	return diff.PreviewWrite(a.workspace.Resolve(ctx, filename), content)
}

type requestIDKey struct{}

// WithRequestID attaches a correlation ID to the context, generating one
// when id is empty.
func WithRequestID(ctx context.Context, id string) context.Context {
	if id == "" {
		id = uuid.NewString()
	}
	return context.WithValue(ctx, requestIDKey{}, id)
}

// requestIDFromContext extracts the correlation ID, or "unknown".
func requestIDFromContext(ctx context.Context) string {
	if v, ok := ctx.Value(requestIDKey{}).(string); ok {
		return v
	}
	return "unknown"
}
