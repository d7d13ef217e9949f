package agent

import (
	"encoding/json"
	"regexp"
	"strings"
)

// ToolCall is a model-requested tool invocation.
type ToolCall struct {
	Name      string         `json:"name"`
	Arguments map[string]any `json:"arguments"`
}

// ExtractStatus classifies the outcome of tool call extraction.
type ExtractStatus int

const (
	// ExtractNotFound means the response contains no tool call; it is a
	// plain reply.
	ExtractNotFound ExtractStatus = iota
	// ExtractFound means a well-formed tool call was extracted.
	ExtractFound
	// ExtractParseError means a candidate block was found but its JSON did
	// not parse; the response degrades to a plain reply.
	ExtractParseError
)

// fencedJSON matches the first ```json fenced block holding a JSON object.
var fencedJSON = regexp.MustCompile("(?s)```json\\s*(\\{.*?\\})\\s*```")

type toolCallEnvelope struct {
	ToolCall *ToolCall `json:"tool_call"`
}

// ExtractToolCall pulls a tool call out of a model response. The primary
// form is a fenced ```json block with a top-level "tool_call" key; a bare
// JSON object response is accepted as a fallback.
func ExtractToolCall(response string) (*ToolCall, ExtractStatus) {
	if m := fencedJSON.FindStringSubmatch(response); m != nil {
		return parseEnvelope(m[1])
	}

	trimmed := strings.TrimSpace(response)
	if strings.HasPrefix(trimmed, "{") && strings.HasSuffix(trimmed, "}") {
		call, status := parseEnvelope(trimmed)
		if status == ExtractFound {
			return call, status
		}
	}
	return nil, ExtractNotFound
}

func parseEnvelope(raw string) (*ToolCall, ExtractStatus) {
	var env toolCallEnvelope
	if err := json.Unmarshal([]byte(raw), &env); err != nil {
		return nil, ExtractParseError
	}
	if env.ToolCall == nil || env.ToolCall.Name == "" {
		return nil, ExtractNotFound
	}
	if env.ToolCall.Arguments == nil {
		env.ToolCall.Arguments = map[string]any{}
	}
	return env.ToolCall, ExtractFound
}
