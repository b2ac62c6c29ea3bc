// Package worker exposes a tool catalog over HTTP: a health check, the
// catalog listing, and an invoke endpoint. Routes follow the
// /worker/... surface consumed by calling engines.
package worker

import (
	"context"
	"encoding/json"
	"errors"
	"log/slog"
	"net/http"
	"strings"
	"time"

	"github.com/toolcase/toolcase"
)

// Worker serves a catalog and executor over HTTP.
type Worker struct {
	catalog  *toolcase.Catalog
	executor *toolcase.Executor
	secret   string
	logger   *slog.Logger
}

// Option configures a Worker.
type Option func(*Worker)

// WithSecret requires "Authorization: Bearer <secret>" on every route except
// the health check. An empty secret disables the check.
func WithSecret(secret string) Option {
	return func(w *Worker) { w.secret = secret }
}

// WithLogger sets the worker's logger.
func WithLogger(logger *slog.Logger) Option {
	return func(w *Worker) { w.logger = logger }
}

// New creates a Worker over a catalog and executor.
func New(catalog *toolcase.Catalog, executor *toolcase.Executor, opts ...Option) *Worker {
	w := &Worker{
		catalog:  catalog,
		executor: executor,
		logger:   slog.Default(),
	}
	for _, opt := range opts {
		opt(w)
	}
	return w
}

// Handler returns the worker's HTTP handler. Each invoke runs on its own
// request goroutine, so one slow tool call never stalls others.
func (w *Worker) Handler() http.Handler {
	mux := http.NewServeMux()
	mux.HandleFunc("GET /worker/health", w.handleHealth)
	mux.HandleFunc("GET /worker/tools", w.authenticated(w.handleCatalog))
	mux.HandleFunc("POST /worker/tools/invoke", w.authenticated(w.handleInvoke))
	return mux
}

// HealthResponse is the JSON response for GET /worker/health.
type HealthResponse struct {
	Healthy   bool `json:"healthy"`
	ToolCount int  `json:"tool_count"`
}

// InvokeErrorResponse is the JSON body for request-level failures (bad
// payload, unknown tool). Execution failures travel inside the normal
// CallResponse envelope instead.
type InvokeErrorResponse struct {
	Message string `json:"message"`
}

func (w *Worker) authenticated(next http.HandlerFunc) http.HandlerFunc {
	return func(rw http.ResponseWriter, r *http.Request) {
		if w.secret != "" {
			token, ok := strings.CutPrefix(r.Header.Get("Authorization"), "Bearer ")
			if !ok || token != w.secret {
				writeJSON(rw, http.StatusUnauthorized, InvokeErrorResponse{Message: "invalid or missing worker secret"})
				return
			}
		}
		next(rw, r)
	}
}

func (w *Worker) handleHealth(rw http.ResponseWriter, _ *http.Request) {
	writeJSON(rw, http.StatusOK, HealthResponse{Healthy: true, ToolCount: w.catalog.Len()})
}

func (w *Worker) handleCatalog(rw http.ResponseWriter, r *http.Request) {
	toolkit := r.URL.Query().Get("toolkit")
	entries := w.catalog.List(toolkit)
	defs := make([]toolcase.ToolDefinition, 0, len(entries))
	for _, m := range entries {
		defs = append(defs, m.Definition)
	}
	writeJSON(rw, http.StatusOK, defs)
}

func (w *Worker) handleInvoke(rw http.ResponseWriter, r *http.Request) {
	var req toolcase.CallRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeJSON(rw, http.StatusBadRequest, InvokeErrorResponse{Message: "malformed request body: " + err.Error()})
		return
	}
	if req.ToolName == "" {
		writeJSON(rw, http.StatusBadRequest, InvokeErrorResponse{Message: "tool_name is required"})
		return
	}
	resp, err := w.executor.Call(r.Context(), req)
	switch {
	case errors.Is(err, toolcase.ErrToolNotFound):
		writeJSON(rw, http.StatusNotFound, InvokeErrorResponse{Message: err.Error()})
		return
	case errors.Is(err, toolcase.ErrShutdown):
		writeJSON(rw, http.StatusServiceUnavailable, InvokeErrorResponse{Message: err.Error()})
		return
	case err != nil:
		w.logger.ErrorContext(r.Context(), "invoke failed", "tool", req.ToolName, "error", err)
		writeJSON(rw, http.StatusInternalServerError, InvokeErrorResponse{Message: "internal error"})
		return
	}
	writeJSON(rw, http.StatusOK, resp)
}

func writeJSON(rw http.ResponseWriter, status int, v any) {
	rw.Header().Set("Content-Type", "application/json")
	rw.WriteHeader(status)
	_ = json.NewEncoder(rw).Encode(v)
}

// Serve runs an HTTP server on addr until ctx is cancelled, then shuts it
// down gracefully with a short drain deadline.
func (w *Worker) Serve(ctx context.Context, addr string) error {
	srv := &http.Server{
		Addr:              addr,
		Handler:           w.Handler(),
		ReadHeaderTimeout: 10 * time.Second,
	}
	errCh := make(chan error, 1)
	go func() {
		errCh <- srv.ListenAndServe()
	}()
	w.logger.InfoContext(ctx, "worker listening", "addr", addr)
	select {
	case <-ctx.Done():
		shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
		defer cancel()
		return srv.Shutdown(shutdownCtx)
	case err := <-errCh:
		return err
	}
}
