package agent

import (
	"context"
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"assistant/pkg/backup"
	"assistant/pkg/llm"
	"assistant/pkg/metrics"
	"assistant/pkg/tools"
)

// scriptedClient returns canned replies in order and records the prompts it
// was sent.
type scriptedClient struct {
	replies []string
	prompts []string
	err     error
}

func (s *scriptedClient) Complete(_ context.Context, req llm.CompletionRequest) (llm.CompletionResponse, error) {
	if s.err != nil {
		return llm.CompletionResponse{}, s.err
	}
	s.prompts = append(s.prompts, req.Messages[0].Content)
	reply := s.replies[0]
	if len(s.replies) > 1 {
		s.replies = s.replies[1:]
	}
	return llm.CompletionResponse{Content: reply}, nil
}

func (s *scriptedClient) Stream(ctx context.Context, req llm.CompletionRequest) (<-chan llm.StreamChunk, error) {
	resp, err := s.Complete(ctx, req)
	if err != nil {
		return nil, err
	}
	ch := make(chan llm.StreamChunk, len(resp.Content)+1)
	// emit in two chunks to exercise accumulation
	half := len(resp.Content) / 2
	ch <- llm.StreamChunk{Content: resp.Content[:half]}
	ch <- llm.StreamChunk{Content: resp.Content[half:]}
	ch <- llm.StreamChunk{Done: true}
	close(ch)
	return ch, nil
}

func (s *scriptedClient) GetModelName() string { return "scripted" }

func newTestAgent(t *testing.T, dir string, client llm.LLMClient) *Agent {
	t.Helper()
	ws := tools.NewWorkspace(dir)
	reg, err := tools.NewCatalog(tools.Options{
		Workspace:   ws,
		Backups:     backup.NewStore(filepath.Join(dir, "backups")),
		AllowedCmds: []string{"ls", "echo"},
	})
	require.NoError(t, err)
	return New(Options{
		Client:    client,
		Registry:  reg,
		Workspace: ws,
		Recorder:  metrics.NewRecorder(prometheus.NewRegistry()),
	})
}

func toolCallReply(name string, args string) string {
	return fmt.Sprintf("```json\n{\"tool_call\": {\"name\": %q, \"arguments\": %s}}\n```", name, args)
}

func TestProcessMessagePlainReply(t *testing.T) {
	client := &scriptedClient{replies: []string{"Just an answer."}}
	a := newTestAgent(t, t.TempDir(), client)

	res, err := a.ProcessMessage(context.Background(), "what is 2+2?")
	require.NoError(t, err)
	assert.Equal(t, "Just an answer.", res.Reply)
	assert.Nil(t, res.ActionRequest)

	// system + user + assistant
	assert.Equal(t, 3, a.Conversation().Len())
}

func TestProcessMessageSafeToolTurn(t *testing.T) {
	dir := t.TempDir()
	require.NoError(t, os.WriteFile(filepath.Join(dir, "notes.txt"), []byte("hello"), 0o644))

	client := &scriptedClient{replies: []string{
		toolCallReply("list_files", "{}"),
		"You have one file: notes.txt",
	}}
	a := newTestAgent(t, dir, client)

	res, err := a.ProcessMessage(context.Background(), "what files do I have?")
	require.NoError(t, err)
	assert.Equal(t, "You have one file: notes.txt", res.Reply)

	// system, user, assistant(tool call), tool result, assistant
	history := a.Conversation().History()
	require.Len(t, history, 5)
	assert.Equal(t, llm.RoleTool, history[3].Role)
	assert.Equal(t, "list_files", history[3].ToolName)
	assert.Contains(t, history[3].Content, "notes.txt")

	// follow-up prompt carried the tool result
	require.Len(t, client.prompts, 2)
	assert.Contains(t, client.prompts[1], "notes.txt")
}

func TestProcessMessageSafeToolErrorFedBackToModel(t *testing.T) {
	client := &scriptedClient{replies: []string{
		toolCallReply("run_command", `{"command": "rm -rf /"}`),
		"That command is not allowed here.",
	}}
	a := newTestAgent(t, t.TempDir(), client)

	res, err := a.ProcessMessage(context.Background(), "wipe the disk")
	require.NoError(t, err)
	assert.Equal(t, "That command is not allowed here.", res.Reply)

	// system, user, assistant(tool call), tool result, assistant
	history := a.Conversation().History()
	require.Len(t, history, 5)
	assert.Equal(t, llm.RoleTool, history[3].Role)
	assert.Contains(t, history[3].Content, "Error executing tool run_command")
	assert.Contains(t, history[3].Content, "command not allowed for security reasons")
}

func TestProcessMessageUnknownToolFedBackToModel(t *testing.T) {
	client := &scriptedClient{replies: []string{
		toolCallReply("format_disk", "{}"),
		"I do not have that tool.",
	}}
	a := newTestAgent(t, t.TempDir(), client)

	res, err := a.ProcessMessage(context.Background(), "format it")
	require.NoError(t, err)
	assert.Equal(t, "I do not have that tool.", res.Reply)

	history := a.Conversation().History()
	require.Len(t, history, 5)
	assert.Contains(t, history[3].Content, `Tool "format_disk" not found.`)
}

func TestProcessMessageDangerousToolGated(t *testing.T) {
	dir := t.TempDir()
	client := &scriptedClient{replies: []string{
		toolCallReply("write_file", `{"filename": "a.txt", "content": "hi"}`),
	}}
	a := newTestAgent(t, dir, client)

	res, err := a.ProcessMessage(context.Background(), "create a.txt")
	require.NoError(t, err)
	require.NotNil(t, res.ActionRequest)
	assert.Equal(t, "write_file", res.ActionRequest.Name)
	assert.Equal(t, "a.txt", res.ActionRequest.Args["filename"])
	assert.Empty(t, res.Reply)

	// nothing was written without confirmation
	_, statErr := os.Stat(filepath.Join(dir, "a.txt"))
	assert.True(t, os.IsNotExist(statErr))
}

func TestConfirmActionExecutesAndFollowsUp(t *testing.T) {
	dir := t.TempDir()
	client := &scriptedClient{replies: []string{"Done, I created a.txt."}}
	a := newTestAgent(t, dir, client)

	res, err := a.ConfirmAction(context.Background(), "write_file", map[string]any{
		"filename": "a.txt",
		"content":  "hi",
	})
	require.NoError(t, err)
	assert.Equal(t, "Done, I created a.txt.", res.Reply)

	data, err := os.ReadFile(filepath.Join(dir, "a.txt"))
	require.NoError(t, err)
	assert.Equal(t, "hi", string(data))
}

func TestConfirmActionReportsToolErrorToModel(t *testing.T) {
	dir := t.TempDir()
	client := &scriptedClient{replies: []string{"That file does not exist."}}
	a := newTestAgent(t, dir, client)

	res, err := a.ConfirmAction(context.Background(), "delete_file", map[string]any{
		"filename": "absent.txt",
	})
	require.NoError(t, err)
	assert.Equal(t, "That file does not exist.", res.Reply)

	history := a.Conversation().History()
	require.Len(t, history, 3) // system, tool result, assistant
	assert.Contains(t, history[1].Content, "Error executing tool delete_file")
}

func TestProcessMessageParseErrorDegradesToReply(t *testing.T) {
	malformed := "```json\n{\"tool_call\": {\"name\": \"read_file\",}\n```"
	client := &scriptedClient{replies: []string{malformed}}
	a := newTestAgent(t, t.TempDir(), client)

	res, err := a.ProcessMessage(context.Background(), "read something")
	require.NoError(t, err)
	assert.Equal(t, malformed, res.Reply)
	assert.Nil(t, res.ActionRequest)
}

func TestProcessMessageStream(t *testing.T) {
	client := &scriptedClient{replies: []string{"streamed answer"}}
	a := newTestAgent(t, t.TempDir(), client)

	var contents []string
	var final *StreamEvent
	for ev := range a.ProcessMessageStream(context.Background(), "hi") {
		ev := ev
		switch ev.Type {
		case "content":
			contents = append(contents, ev.Content)
		case "complete", "tool_call", "error":
			final = &ev
		}
	}
	require.NotNil(t, final)
	assert.Equal(t, "complete", final.Type)
	assert.Equal(t, "streamed answer", final.Reply)
	assert.Equal(t, "streamed answer", strings.Join(contents, ""))
}

func TestProcessMessageStreamToolCallEvent(t *testing.T) {
	client := &scriptedClient{replies: []string{toolCallReply("write_file", `{"filename":"x","content":"y"}`)}}
	a := newTestAgent(t, t.TempDir(), client)

	var final *StreamEvent
	for ev := range a.ProcessMessageStream(context.Background(), "write it") {
		ev := ev
		if ev.Type == "tool_call" {
			final = &ev
		}
	}
	require.NotNil(t, final)
	assert.Equal(t, "write_file", final.ToolCall.Name)
}

func TestPromptContainsCatalogAndHistory(t *testing.T) {
	client := &scriptedClient{replies: []string{"ok"}}
	a := newTestAgent(t, t.TempDir(), client)

	_, err := a.ProcessMessage(context.Background(), "hello there")
	require.NoError(t, err)

	require.Len(t, client.prompts, 1)
	prompt := client.prompts[0]
	assert.Contains(t, prompt, "**System Prompt:**")
	assert.Contains(t, prompt, "**Available Tools:**")
	assert.Contains(t, prompt, "\"run_command\"")
	assert.Contains(t, prompt, "**User**: hello there")
	assert.Contains(t, prompt, "**Your Task:**")
}

func TestPreviewWriteDoesNotMutate(t *testing.T) {
	dir := t.TempDir()
	client := &scriptedClient{replies: []string{"ok"}}
	a := newTestAgent(t, dir, client)

	out, err := a.PreviewWrite(context.Background(), "new.txt", "line\n")
	require.NoError(t, err)
	assert.Contains(t, out, "+line")

	_, statErr := os.Stat(filepath.Join(dir, "new.txt"))
	assert.True(t, os.IsNotExist(statErr))
}
