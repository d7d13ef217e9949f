package orchestrator

import (
	"github.com/tiktoken-go/tokenizer"

	"assistant/pkg/llm"
)

// TokenCounter estimates prompt sizes for the token metrics. All configured
// models are approximated with the GPT-4 encoding.
type TokenCounter struct {
	codec tokenizer.Codec
}

// NewTokenCounter creates a token counter. A codec construction failure is
// tolerated; counting then falls back to a character estimate.
func NewTokenCounter() *TokenCounter {
	codec, err := tokenizer.ForModel(tokenizer.GPT4)
	if err != nil {
		return &TokenCounter{}
	}
	return &TokenCounter{codec: codec}
}

// Count returns the number of tokens in text.
func (tc *TokenCounter) Count(text string) int {
	if tc.codec == nil {
		// 4 chars per token approximation
		return len(text) / 4
	}
	count, err := tc.codec.Count(text)
	if err != nil {
		return len(text) / 4
	}
	return count
}

// CountPrompt returns the token estimate for a whole request.
func (tc *TokenCounter) CountPrompt(messages []llm.CompletionMessage) int {
	var total int
	for i := range messages {
		total += tc.Count(messages[i].Content)
	}
	return total
}
