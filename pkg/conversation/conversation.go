// Package conversation holds the assistant's ordered message log and the
// Markdown transcript archive.
package conversation

import (
	"strings"
	"sync"

	"assistant/pkg/llm"
)

// Message is one entry of the conversation. ToolName is set on tool result
// messages only.
type Message struct {
	Role     llm.CompletionRole `json:"role"`
	Content  string             `json:"content"`
	ToolName string             `json:"tool_name,omitempty"`
}

// Log is the ordered conversation history. Index 0 is always the system
// message; Reset truncates back to it.
type Log struct {
	mu       sync.Mutex
	system   string
	messages []Message
}

// New creates a log seeded with the system prompt.
func New(systemPrompt string) *Log {
	l := &Log{system: systemPrompt}
	l.messages = []Message{{Role: llm.RoleSystem, Content: systemPrompt}}
	return l
}

// AppendUser records a user message.
func (l *Log) AppendUser(content string) {
	l.append(Message{Role: llm.RoleUser, Content: content})
}

// AppendAssistant records an assistant message.
func (l *Log) AppendAssistant(content string) {
	l.append(Message{Role: llm.RoleAssistant, Content: content})
}

// AppendTool records a tool result attributed to toolName.
func (l *Log) AppendTool(toolName, content string) {
	l.append(Message{Role: llm.RoleTool, Content: content, ToolName: toolName})
}

func (l *Log) append(msg Message) {
	l.mu.Lock()
	defer l.mu.Unlock()
	l.messages = append(l.messages, msg)
}

// Snapshot returns the history as completion messages, system prompt first.
func (l *Log) Snapshot() []llm.CompletionMessage {
	l.mu.Lock()
	defer l.mu.Unlock()

	out := make([]llm.CompletionMessage, 0, len(l.messages))
	for _, m := range l.messages {
		out = append(out, llm.CompletionMessage{Role: m.Role, Content: m.Content, Name: m.ToolName})
	}
	return out
}

// History returns a copy of all messages.
func (l *Log) History() []Message {
	l.mu.Lock()
	defer l.mu.Unlock()
	return append([]Message(nil), l.messages...)
}

// Len returns the number of messages including the system message.
func (l *Log) Len() int {
	l.mu.Lock()
	defer l.mu.Unlock()
	return len(l.messages)
}

// SystemPrompt returns the system message content.
func (l *Log) SystemPrompt() string {
	return l.system
}

// Reset truncates the history back to the system message.
func (l *Log) Reset() {
	l.mu.Lock()
	defer l.mu.Unlock()
	l.messages = []Message{{Role: llm.RoleSystem, Content: l.system}}
}

// Markdown renders the history (without the system message) as a transcript
// with one section per message.
func (l *Log) Markdown() string {
	l.mu.Lock()
	defer l.mu.Unlock()

	var b strings.Builder
	for _, m := range l.messages[1:] {
		title := capitalize(string(m.Role))
		if m.ToolName != "" {
			title += " (" + m.ToolName + ")"
		}
		b.WriteString("## " + title + "\n\n")
		b.WriteString(m.Content)
		b.WriteString("\n\n")
	}
	return strings.TrimRight(b.String(), "\n") + "\n"
}

func capitalize(s string) string {
	if s == "" {
		return s
	}
	return strings.ToUpper(s[:1]) + s[1:]
}
