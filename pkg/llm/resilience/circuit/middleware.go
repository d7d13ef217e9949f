package circuit

import (
	"context"

	"assistant/pkg/llm"
)

// Middleware returns a middleware that wraps an LLM client with circuit
// breaker logic. If the circuit is OPEN, requests are rejected immediately
// without calling the underlying client.
func Middleware(breaker Breaker) llm.Middleware {
	return func(next llm.LLMClient) llm.LLMClient {
		return llm.WrapClient(
			func(ctx context.Context, req llm.CompletionRequest) (llm.CompletionResponse, error) {
				if !breaker.Allow() {
					return llm.CompletionResponse{}, &Error{State: breaker.GetState()}
				}
				resp, err := next.Complete(ctx, req)
				breaker.Record(err == nil)
				return resp, err //nolint:wrapcheck // middleware passes errors through unchanged
			},
			func(ctx context.Context, req llm.CompletionRequest) (<-chan llm.StreamChunk, error) {
				if !breaker.Allow() {
					return nil, &Error{State: breaker.GetState()}
				}
				// Stream establishment is what the breaker tracks;
				// individual chunks are not recorded.
				ch, err := next.Stream(ctx, req)
				breaker.Record(err == nil)
				return ch, err //nolint:wrapcheck // middleware passes errors through unchanged
			},
			next.GetModelName,
		)
	}
}
