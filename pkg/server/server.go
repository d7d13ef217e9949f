// Package server exposes the assistant over HTTP: chat (plain and SSE),
// action confirmation, previews, workspace browsing, and transcripts.
package server

import (
	"context"
	"encoding/json"
	"net/http"
	"time"

	"github.com/google/uuid"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"

	"assistant/pkg/agent"
	"assistant/pkg/conversation"
	"assistant/pkg/logx"
	"assistant/pkg/metrics"
	"assistant/pkg/tools"
)

// Server serves the assistant API.
type Server struct {
	agent     *agent.Agent
	archive   *conversation.Archive
	workspace *tools.Workspace
	recorder  *metrics.Recorder
	gatherer  prometheus.Gatherer
	logger    *logx.Logger
	srv       *http.Server
}

// Options carries the server's dependencies.
type Options struct {
	Agent     *agent.Agent
	Archive   *conversation.Archive
	Workspace *tools.Workspace
	Recorder  *metrics.Recorder
	Gatherer  prometheus.Gatherer
}

// New creates a server.
func New(opts Options) *Server {
	return &Server{
		agent:     opts.Agent,
		archive:   opts.Archive,
		workspace: opts.Workspace,
		recorder:  opts.Recorder,
		gatherer:  opts.Gatherer,
		logger:    logx.NewLogger("server"),
	}
}

// Handler builds the route table.
func (s *Server) Handler() http.Handler {
	mux := http.NewServeMux()

	mux.HandleFunc("GET /health", s.handleHealth)
	mux.Handle("GET /metrics", promhttp.HandlerFor(s.gatherer, promhttp.HandlerOpts{}))

	mux.HandleFunc("POST /api/chat", s.instrument("chat", s.handleChat))
	mux.HandleFunc("POST /api/chat/stream", s.instrument("chat_stream", s.handleChatStream))
	mux.HandleFunc("POST /api/execute_action", s.instrument("execute_action", s.handleExecuteAction))
	mux.HandleFunc("POST /api/preview_replace_diff", s.instrument("preview_replace_diff", s.handlePreviewReplace))
	mux.HandleFunc("POST /api/preview_write_diff", s.instrument("preview_write_diff", s.handlePreviewWrite))
	mux.HandleFunc("GET /api/tree", s.instrument("tree", s.handleTree))
	mux.HandleFunc("GET /api/file", s.instrument("file", s.handleFile))
	mux.HandleFunc("GET /api/chats", s.instrument("list_chats", s.handleListChats))
	mux.HandleFunc("GET /api/chats/{file}", s.instrument("get_chat", s.handleGetChat))
	mux.HandleFunc("POST /api/save_chat", s.instrument("save_chat", s.handleSaveChat))
	mux.HandleFunc("POST /api/reset", s.instrument("reset", s.handleReset))

	return mux
}

// Start runs the HTTP server until ctx is cancelled.
func (s *Server) Start(ctx context.Context, addr string) error {
	s.srv = &http.Server{
		Addr:              addr,
		Handler:           s.Handler(),
		ReadHeaderTimeout: 10 * time.Second,
	}

	errCh := make(chan error, 1)
	go func() {
		errCh <- s.srv.ListenAndServe()
	}()
	s.logger.Info("listening on %s", addr)

	select {
	case <-ctx.Done():
		shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
		defer cancel()
		return s.srv.Shutdown(shutdownCtx) //nolint:wrapcheck // shutdown error surfaces as-is
	case err := <-errCh:
		return err //nolint:wrapcheck // listen error surfaces as-is
	}
}

// instrument wraps a handler with request correlation, logging, and the
// request metrics.
func (s *Server) instrument(endpoint string, next http.HandlerFunc) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		requestID := r.Header.Get("X-Request-ID")
		if requestID == "" {
			requestID = uuid.NewString()
		}
		ctx := agent.WithRequestID(r.Context(), requestID)
		if session := r.Header.Get("X-Session-ID"); session != "" {
			ctx = tools.WithSession(ctx, session)
		}
		w.Header().Set("X-Request-ID", requestID)

		start := time.Now()
		rec := &statusRecorder{ResponseWriter: w, status: http.StatusOK}
		next(rec, r.WithContext(ctx))

		duration := time.Since(start)
		status := "success"
		if rec.status >= 400 {
			status = "error"
		}
		s.recorder.IncRequest(endpoint, status)
		s.recorder.ObserveRequest(endpoint, duration)
		s.logger.InfoReq(requestID, "%s completed in %s (%d)", endpoint, duration.Round(time.Millisecond), rec.status)
	}
}

// statusRecorder captures the response status for instrumentation. Flush is
// forwarded so SSE handlers keep working through the wrapper.
type statusRecorder struct {
	http.ResponseWriter
	status int
}

func (r *statusRecorder) WriteHeader(status int) {
	r.status = status
	r.ResponseWriter.WriteHeader(status)
}

func (r *statusRecorder) Flush() {
	if f, ok := r.ResponseWriter.(http.Flusher); ok {
		f.Flush()
	}
}

func (s *Server) jsonResponse(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	if err := json.NewEncoder(w).Encode(v); err != nil {
		s.logger.Error("encoding response: %v", err)
	}
}

func (s *Server) errorResponse(w http.ResponseWriter, status int, err error) {
	s.jsonResponse(w, status, map[string]string{"error": err.Error()})
}
