package llm

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type mockLLMClient struct {
	completeFunc func(context.Context, CompletionRequest) (CompletionResponse, error)
	streamFunc   func(context.Context, CompletionRequest) (<-chan StreamChunk, error)
	modelName    string
}

func (m *mockLLMClient) Complete(ctx context.Context, req CompletionRequest) (CompletionResponse, error) {
	return m.completeFunc(ctx, req)
}

func (m *mockLLMClient) Stream(ctx context.Context, req CompletionRequest) (<-chan StreamChunk, error) {
	if m.streamFunc != nil {
		return m.streamFunc(ctx, req)
	}
	ch := make(chan StreamChunk)
	close(ch)
	return ch, nil
}

func (m *mockLLMClient) GetModelName() string {
	return m.modelName
}

func TestWrapClient(t *testing.T) {
	client := WrapClient(
		func(_ context.Context, _ CompletionRequest) (CompletionResponse, error) {
			return CompletionResponse{Content: "wrapped"}, nil
		},
		func(_ context.Context, _ CompletionRequest) (<-chan StreamChunk, error) {
			ch := make(chan StreamChunk)
			close(ch)
			return ch, nil
		},
		func() string { return "wrapped-model" },
	)

	resp, err := client.Complete(context.Background(), CompletionRequest{})
	require.NoError(t, err)
	assert.Equal(t, "wrapped", resp.Content)
	assert.Equal(t, "wrapped-model", client.GetModelName())
}

func TestChainOrdering(t *testing.T) {
	base := &mockLLMClient{
		completeFunc: func(_ context.Context, _ CompletionRequest) (CompletionResponse, error) {
			return CompletionResponse{Content: "base"}, nil
		},
		modelName: "base-model",
	}

	appending := func(tag string) Middleware {
		return func(next LLMClient) LLMClient {
			return WrapClient(
				func(ctx context.Context, req CompletionRequest) (CompletionResponse, error) {
					resp, err := next.Complete(ctx, req)
					resp.Content += ":" + tag
					return resp, err
				},
				next.Stream,
				next.GetModelName,
			)
		}
	}

	client := Chain(base, appending("outer"), appending("inner"))
	resp, err := client.Complete(context.Background(), CompletionRequest{})
	require.NoError(t, err)
	// inner wraps base, outer appends last
	assert.Equal(t, "base:inner:outer", resp.Content)
	assert.Equal(t, "base-model", client.GetModelName())
}

func TestCollect(t *testing.T) {
	ch := make(chan StreamChunk, 3)
	ch <- StreamChunk{Content: "hello "}
	ch <- StreamChunk{Content: "world"}
	ch <- StreamChunk{Done: true}
	close(ch)

	resp, err := Collect(ch)
	require.NoError(t, err)
	assert.Equal(t, "hello world", resp.Content)
}

func TestCollectSurfacesChunkError(t *testing.T) {
	ch := make(chan StreamChunk, 2)
	ch <- StreamChunk{Content: "partial"}
	ch <- StreamChunk{Error: assert.AnError}
	close(ch)

	_, err := Collect(ch)
	assert.ErrorIs(t, err, assert.AnError)
}
