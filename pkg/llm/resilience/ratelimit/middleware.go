package ratelimit

import (
	"context"

	"assistant/pkg/llm"
)

// Middleware returns a middleware that paces requests through the limiter
// before they reach the underlying client.
func Middleware(limiter Limiter) llm.Middleware {
	return func(next llm.LLMClient) llm.LLMClient {
		return llm.WrapClient(
			func(ctx context.Context, req llm.CompletionRequest) (llm.CompletionResponse, error) {
				if err := limiter.Wait(ctx); err != nil {
					return llm.CompletionResponse{}, err
				}
				return next.Complete(ctx, req) //nolint:wrapcheck // middleware passes errors through unchanged
			},
			func(ctx context.Context, req llm.CompletionRequest) (<-chan llm.StreamChunk, error) {
				if err := limiter.Wait(ctx); err != nil {
					return nil, err
				}
				return next.Stream(ctx, req) //nolint:wrapcheck // middleware passes errors through unchanged
			},
			next.GetModelName,
		)
	}
}
