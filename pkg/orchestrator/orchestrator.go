// Package orchestrator coordinates model calls: every request is paced by
// the rate limiter, gated by a shared circuit breaker, and failed over
// across the configured models in order until one succeeds.
package orchestrator

import (
	"context"
	"errors"
	"fmt"
	"time"

	"assistant/pkg/config"
	"assistant/pkg/llm"
	"assistant/pkg/llm/ollamaclient"
	"assistant/pkg/llm/openrouter"
	"assistant/pkg/llm/resilience/circuit"
	"assistant/pkg/llm/resilience/ratelimit"
	"assistant/pkg/logx"
	"assistant/pkg/metrics"
)

// ErrAllModelsFailed is returned when every candidate model was attempted
// and none produced a response.
var ErrAllModelsFailed = errors.New("all models failed to respond")

// ErrNoAPIKey is returned at construction when remote models are configured
// without an OpenRouter API key.
var ErrNoAPIKey = errors.New("OPENROUTER_API_KEY is not set")

// Orchestrator implements llm.LLMClient over an ordered list of backend
// models. The request's Model field, when set, names the preferred model to
// try first.
type Orchestrator struct {
	order    []string
	clients  map[string]llm.LLMClient
	breaker  circuit.Breaker
	limiter  ratelimit.Limiter
	recorder *metrics.Recorder
	tokens   *TokenCounter
	logger   *logx.Logger
}

// New builds an orchestrator from the configured model list. Models with an
// "ollama/" prefix are served locally; everything else goes through
// OpenRouter and requires an API key.
func New(cfg *config.Config, recorder *metrics.Recorder) (*Orchestrator, error) {
	if len(cfg.Models) == 0 {
		return nil, errors.New("no models configured")
	}

	breaker := circuit.New(circuit.Config{
		FailureThreshold: cfg.CircuitBreaker.FailureThreshold,
		RecoveryTimeout:  cfg.CircuitBreaker.RecoveryTimeout,
	})
	if recorder == nil {
		recorder = metrics.NewRecorder(nil)
	}

	o := &Orchestrator{
		order:    append([]string(nil), cfg.Models...),
		clients:  make(map[string]llm.LLMClient, len(cfg.Models)),
		breaker:  breaker,
		limiter:  ratelimit.NewIntervalLimiter(cfg.RequestInterval),
		recorder: recorder,
		tokens:   NewTokenCounter(),
		logger:   logx.NewLogger("orchestrator"),
	}

	for _, model := range cfg.Models {
		var base llm.LLMClient
		if ollamaclient.IsOllamaModel(model) {
			base = ollamaclient.New(cfg.Ollama.Host, model)
		} else {
			if cfg.OpenRouter.APIKey == "" {
				return nil, fmt.Errorf("%w: model %s needs OpenRouter access", ErrNoAPIKey, model)
			}
			base = openrouter.New(openrouter.Config{
				BaseURL:        cfg.OpenRouter.BaseURL,
				APIKey:         cfg.OpenRouter.APIKey,
				Model:          model,
				OnParseFailure: recorder.IncParseFailure,
			})
		}
		// Each attempt passes through the shared breaker so a failure on
		// any model counts toward the same threshold.
		o.clients[model] = llm.Chain(base, circuit.Middleware(breaker))
	}
	return o, nil
}

// GetModelName returns the first configured model.
func (o *Orchestrator) GetModelName() string {
	return o.order[0]
}

// Limiter exposes the request pacer for composition at the call site.
func (o *Orchestrator) Limiter() ratelimit.Limiter {
	return o.limiter
}

// BreakerState reports the shared circuit breaker state.
func (o *Orchestrator) BreakerState() circuit.State {
	return o.breaker.GetState()
}

// candidates returns the failover order for a request: the preferred model
// first, then the configured order with the duplicate skipped. An unknown
// preferred model is ignored with a warning.
func (o *Orchestrator) candidates(preferred string) []string {
	if preferred == "" {
		return o.order
	}
	if _, ok := o.clients[preferred]; !ok {
		o.logger.Warn("requested model %q is not configured, using the default order", preferred)
		return o.order
	}
	out := make([]string, 0, len(o.order))
	out = append(out, preferred)
	for _, m := range o.order {
		if m != preferred {
			out = append(out, m)
		}
	}
	return out
}

// Complete tries each candidate model in order and returns the first
// successful response. A circuit rejection is terminal and is never retried
// on another model.
func (o *Orchestrator) Complete(ctx context.Context, in llm.CompletionRequest) (llm.CompletionResponse, error) {
	if !o.breaker.Allow() {
		return llm.CompletionResponse{}, &circuit.Error{State: o.breaker.GetState()}
	}

	promptTokens := o.tokens.CountPrompt(in.Messages)
	var lastErr error
	for _, model := range o.candidates(in.Model) {
		o.recorder.ObservePromptTokens(model, promptTokens)

		start := time.Now()
		resp, err := o.clients[model].Complete(ctx, in)
		if err != nil {
			var cerr *circuit.Error
			if errors.As(err, &cerr) {
				return llm.CompletionResponse{}, err
			}
			o.logger.Warn("model %s failed: %v", model, err)
			lastErr = err
			if ctx.Err() != nil {
				return llm.CompletionResponse{}, ctx.Err()
			}
			continue
		}
		o.recorder.ObserveModelCall(model, time.Since(start))
		resp.Model = model
		return resp, nil
	}
	return llm.CompletionResponse{}, fmt.Errorf("%w: last error: %v", ErrAllModelsFailed, lastErr)
}

// Stream tries each candidate model until a stream is established. Failover
// covers establishment only; chunk errors after that surface to the caller.
func (o *Orchestrator) Stream(ctx context.Context, in llm.CompletionRequest) (<-chan llm.StreamChunk, error) {
	if !o.breaker.Allow() {
		return nil, &circuit.Error{State: o.breaker.GetState()}
	}

	promptTokens := o.tokens.CountPrompt(in.Messages)
	var lastErr error
	for _, model := range o.candidates(in.Model) {
		o.recorder.ObservePromptTokens(model, promptTokens)

		ch, err := o.clients[model].Stream(ctx, in)
		if err != nil {
			var cerr *circuit.Error
			if errors.As(err, &cerr) {
				return nil, err
			}
			o.logger.Warn("model %s failed to start stream: %v", model, err)
			lastErr = err
			if ctx.Err() != nil {
				return nil, ctx.Err()
			}
			continue
		}
		return ch, nil
	}
	return nil, fmt.Errorf("%w: last error: %v", ErrAllModelsFailed, lastErr)
}
