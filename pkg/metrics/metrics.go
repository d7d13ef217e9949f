// Package metrics provides Prometheus instrumentation for the assistant
// service: request counts and latencies, per-model call latencies, tool call
// outcomes, and JSON parse failures from lenient model-output parsing.
package metrics

import (
	"time"

	"github.com/prometheus/client_golang/prometheus"
)

// Recorder owns the service's Prometheus collectors. One instance is created
// per process and passed down explicitly rather than held in package globals.
type Recorder struct {
	requestsTotal     *prometheus.CounterVec
	requestDuration   *prometheus.HistogramVec
	modelCallDuration *prometheus.HistogramVec
	toolCallsTotal    *prometheus.CounterVec
	parseFailures     prometheus.Counter
	promptTokens      *prometheus.HistogramVec
}

// NewRecorder creates a Recorder registered against reg. Pass nil to use the
// default registerer.
func NewRecorder(reg prometheus.Registerer) *Recorder {
	if reg == nil {
		reg = prometheus.DefaultRegisterer
	}

	r := &Recorder{
		requestsTotal: prometheus.NewCounterVec(
			prometheus.CounterOpts{
				Name: "ai_assistant_requests_total",
				Help: "Total requests by endpoint and status",
			},
			[]string{"endpoint", "status"},
		),
		requestDuration: prometheus.NewHistogramVec(
			prometheus.HistogramOpts{
				Name:    "ai_assistant_request_duration_seconds",
				Help:    "Request latency by endpoint",
				Buckets: prometheus.DefBuckets,
			},
			[]string{"endpoint"},
		),
		modelCallDuration: prometheus.NewHistogramVec(
			prometheus.HistogramOpts{
				Name:    "ai_assistant_model_call_duration_seconds",
				Help:    "Model call latency by model",
				Buckets: prometheus.DefBuckets,
			},
			[]string{"model"},
		),
		toolCallsTotal: prometheus.NewCounterVec(
			prometheus.CounterOpts{
				Name: "ai_assistant_tool_calls_total",
				Help: "Tool call outcomes by tool name and status",
			},
			[]string{"tool_name", "status"},
		),
		parseFailures: prometheus.NewCounter(
			prometheus.CounterOpts{
				Name: "ai_assistant_json_parse_failures_total",
				Help: "JSON fragments from model output that failed to parse",
			},
		),
		promptTokens: prometheus.NewHistogramVec(
			prometheus.HistogramOpts{
				Name:    "ai_assistant_prompt_tokens",
				Help:    "Estimated prompt token counts per model call",
				Buckets: prometheus.ExponentialBuckets(64, 2, 12),
			},
			[]string{"model"},
		),
	}

	reg.MustRegister(
		r.requestsTotal,
		r.requestDuration,
		r.modelCallDuration,
		r.toolCallsTotal,
		r.parseFailures,
		r.promptTokens,
	)
	return r
}

// IncRequest counts a completed request with status "success" or "error".
func (r *Recorder) IncRequest(endpoint, status string) {
	r.requestsTotal.WithLabelValues(endpoint, status).Inc()
}

// ObserveRequest records the wall-clock latency of a request.
func (r *Recorder) ObserveRequest(endpoint string, d time.Duration) {
	r.requestDuration.WithLabelValues(endpoint).Observe(d.Seconds())
}

// ObserveModelCall records the latency of a successful model call.
func (r *Recorder) ObserveModelCall(model string, d time.Duration) {
	r.modelCallDuration.WithLabelValues(model).Observe(d.Seconds())
}

// IncToolCall counts a tool execution with status "success" or "error".
func (r *Recorder) IncToolCall(toolName, status string) {
	r.toolCallsTotal.WithLabelValues(toolName, status).Inc()
}

// IncParseFailure counts a skipped, unparseable JSON fragment.
func (r *Recorder) IncParseFailure() {
	r.parseFailures.Inc()
}

// ObservePromptTokens records the estimated token count of a prompt.
func (r *Recorder) ObservePromptTokens(model string, tokens int) {
	r.promptTokens.WithLabelValues(model).Observe(float64(tokens))
}
