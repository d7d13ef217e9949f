package agent

import (
	"fmt"
	"strings"

	"assistant/pkg/conversation"
)

// DefaultSystemPrompt is the assistant's standing instruction set.
const DefaultSystemPrompt = `You are an expert AI programmer and universal code assistant. Your goal is to help users by writing and editing code in any language. Follow these rules strictly:

1. **Match Indentation Style**: When editing a file, you MUST detect and match the existing indentation style.
2. **Use Precise Tools**: To add new code, use ` + "`insert_at_line`" + ` with a specific line number. To modify existing code, use ` + "`replace_code`" + ` by first reading the exact block to be replaced.
3. **Write Clean Code**: Generate clean, readable, and idiomatic code appropriate for the language you are writing.
4. **Complete Tasks**: Fulfill the user's request step-by-step. If you need to read a file first to understand the context, do so.
5. **Constitutional Rules**: Never touch files in the following patterns without explicit user permission:
   - System files (/, /etc, /usr, /var)
   - Hidden files (.git, .env, .config)
   - Backup files (*.bak, *.backup, *.old)
   - Lock files (*.lock, package-lock.json, yarn.lock)
   - Database files (*.db, *.sqlite)
   - Log files (*.log)
   - Temporary files (*.tmp, *.temp)

When you need to use a tool, respond with a JSON object inside a ` + "```json" + ` code block:
` + "```json" + `
{
  "tool_call": {
    "name": "<tool_name>",
    "arguments": {
      "<arg_name>": "<arg_value>"
    }
  }
}
` + "```"

// buildPrompt flattens the conversation into a single prompt: standing
// instructions, the tool catalog, the history, and the task framing. The
// whole thing is sent as one user message.
func buildPrompt(log *conversation.Log, toolCatalogJSON string) string {
	history := log.History()

	var lines []string
	for _, m := range history[1:] {
		lines = append(lines, fmt.Sprintf("**%s**: %s", capitalize(string(m.Role)), m.Content))
	}

	return fmt.Sprintf(`**System Prompt:**
%s

**Available Tools:**
`+"```json"+`
%s
`+"```"+`

**Conversation History:**
%s

**Your Task:**
Based on the conversation, provide a direct answer or call a tool if necessary. When you need to use a tool, respond with a JSON object inside a `+"```json"+` code block.
`, log.SystemPrompt(), toolCatalogJSON, strings.Join(lines, "\n"))
}

func capitalize(s string) string {
	if s == "" {
		return s
	}
	return strings.ToUpper(s[:1]) + s[1:]
}
