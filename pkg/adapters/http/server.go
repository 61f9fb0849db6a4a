// Package http serves slice views over HTTP: a JSON API described by an embedded
// OpenAPI document, a browser page per model and a server-sent change stream.
package http

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"log/slog"
	"net/http"
	"strings"

	"github.com/getkin/kin-openapi/openapi3"
	"github.com/go-chi/chi/v5"

	"github.com/aretw0/eventmodel"
	"github.com/aretw0/eventmodel/internal/compiler"
	"github.com/aretw0/eventmodel/internal/presentation/graph"
	"github.com/aretw0/eventmodel/pkg/domain"
	"github.com/aretw0/eventmodel/pkg/schema"
)

// Engine is the part of the eventmodel engine the server needs.
type Engine interface {
	Models() ([]string, error)
	Build(ctx context.Context, id string) (*domain.View, error)
	Compile(ctx context.Context, id string) (*domain.Model, *domain.View, error)
}

// Server holds the HTTP handlers.
type Server struct {
	Engine  Engine
	Streams *StreamManager
	metrics http.Handler
	doc     *openapi3.T
}

// Option configures a Server.
type Option func(*Server)

// WithMetrics exposes h on /metrics.
func WithMetrics(h http.Handler) Option {
	return func(s *Server) {
		s.metrics = h
	}
}

// NewServer creates a server for engine.
func NewServer(engine Engine, opts ...Option) (*Server, error) {
	doc, err := GetSwagger()
	if err != nil {
		return nil, err
	}
	s := &Server{
		Engine:  engine,
		Streams: NewStreamManager(),
		doc:     doc,
	}
	for _, opt := range opts {
		opt(s)
	}
	return s, nil
}

// NewHandler creates a new HTTP handler for the engine.
func NewHandler(engine Engine, opts ...Option) (http.Handler, error) {
	s, err := NewServer(engine, opts...)
	if err != nil {
		return nil, err
	}
	return s.Handler()
}

// Handler builds the chi router.
func (s *Server) Handler() (http.Handler, error) {
	router, err := newRouter(s.doc)
	if err != nil {
		return nil, fmt.Errorf("openapi router: %w", err)
	}

	r := chi.NewRouter()
	r.Use(enableCORS)
	r.Use(requestValidator(router))

	r.Get("/openapi.yaml", func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "text/yaml")
		w.Write(rawSpec)
	})
	r.Get("/swagger", func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "text/html")
		w.Write([]byte(swaggerHTML))
	})

	r.Get("/health", s.GetHealth)
	r.Get("/info", s.GetInfo)
	r.Get("/metrics", s.GetMetrics)
	r.Get("/events", s.SubscribeEvents)
	r.Route("/models", func(r chi.Router) {
		r.Get("/", s.ListModels)
		r.Get("/{id}", s.GetModelPage)
		r.Get("/{id}/slices", s.ListSlices)
		r.Get("/{id}/slices/{kind}/{name}", s.GetSlice)
		r.Get("/{id}/diagram", s.GetDiagram)
		r.Get("/{id}/diagnostics", s.GetDiagnostics)
	})

	return r, nil
}

func enableCORS(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Access-Control-Allow-Origin", "*")
		w.Header().Set("Access-Control-Allow-Methods", "GET, OPTIONS")
		w.Header().Set("Access-Control-Allow-Headers", "Content-Type")
		if r.Method == "OPTIONS" {
			w.WriteHeader(http.StatusOK)
			return
		}
		next.ServeHTTP(w, r)
	})
}

const swaggerHTML = `
<!DOCTYPE html>
<html lang="en">
<head>
    <meta charset="utf-8" />
    <meta name="viewport" content="width=device-width, initial-scale=1" />
    <title>eventmodel API Documentation</title>
    <link rel="stylesheet" href="https://unpkg.com/swagger-ui-dist@5.11.0/swagger-ui.css" />
</head>
<body>
<div id="swagger-ui"></div>
<script src="https://unpkg.com/swagger-ui-dist@5.11.0/swagger-ui-bundle.js" crossorigin></script>
<script>
    window.onload = () => {
    window.ui = SwaggerUIBundle({
        url: '/openapi.yaml',
        dom_id: '#swagger-ui',
    });
    };
</script>
</body>
</html>
`

// GetHealth handles the GET /health request.
func (s *Server) GetHealth(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, http.StatusOK, map[string]string{"status": "ok"})
}

// GetInfo handles the GET /info request.
func (s *Server) GetInfo(w http.ResponseWriter, r *http.Request) {
	apiVersion := "unknown"
	if s.doc.Info != nil {
		apiVersion = s.doc.Info.Version
	}

	writeJSON(w, http.StatusOK, map[string]string{
		"app":         "eventmodel-http",
		"version":     eventmodel.Version,
		"api_version": apiVersion,
	})
}

// GetMetrics handles the GET /metrics request.
func (s *Server) GetMetrics(w http.ResponseWriter, r *http.Request) {
	if s.metrics == nil {
		http.NotFound(w, r)
		return
	}
	s.metrics.ServeHTTP(w, r)
}

// ListModels handles the GET /models request.
func (s *Server) ListModels(w http.ResponseWriter, r *http.Request) {
	ids, err := s.Engine.Models()
	if err != nil {
		writeError(w, http.StatusInternalServerError, err)
		slog.Error("ListModels failed", "err", err)
		return
	}
	if ids == nil {
		ids = []string{}
	}
	writeJSON(w, http.StatusOK, map[string][]string{"models": ids})
}

// ListSlices handles the GET /models/{id}/slices request.
func (s *Server) ListSlices(w http.ResponseWriter, r *http.Request) {
	view, ok := s.build(w, r)
	if !ok {
		return
	}

	kind, err := queryParam(r, "kind")
	if err != nil {
		writeError(w, http.StatusBadRequest, err)
		return
	}
	if kind != "" {
		filtered := *view
		filtered.Slices = []domain.Slice{}
		for _, sl := range view.Slices {
			if string(sl.Kind) == kind {
				filtered.Slices = append(filtered.Slices, sl)
			}
		}
		view = &filtered
	}
	writeJSON(w, http.StatusOK, view)
}

// GetSlice handles the GET /models/{id}/slices/{kind}/{name} request.
func (s *Server) GetSlice(w http.ResponseWriter, r *http.Request) {
	rawKind, err := pathParam(r, "kind")
	if err != nil {
		writeError(w, http.StatusBadRequest, err)
		return
	}
	kind, err := parseKind(rawKind)
	if err != nil {
		writeError(w, http.StatusBadRequest, err)
		return
	}

	view, ok := s.build(w, r)
	if !ok {
		return
	}

	name, err := pathParam(r, "name")
	if err != nil {
		writeError(w, http.StatusBadRequest, err)
		return
	}
	sl, found := view.Find(kind, name)
	if !found {
		writeError(w, http.StatusNotFound, fmt.Errorf("no %s slice named %q", kind, name))
		return
	}
	writeJSON(w, http.StatusOK, sl)
}

// GetDiagram handles the GET /models/{id}/diagram request.
func (s *Server) GetDiagram(w http.ResponseWriter, r *http.Request) {
	focus, err := queryParam(r, "focus")
	if err != nil {
		writeError(w, http.StatusBadRequest, err)
		return
	}
	var overlay *graph.GraphOverlay
	if focus != "" {
		key, err := parseSliceKey(focus)
		if err != nil {
			writeError(w, http.StatusBadRequest, err)
			return
		}
		overlay = &graph.GraphOverlay{Focus: &key}
	}

	view, ok := s.build(w, r)
	if !ok {
		return
	}

	w.Header().Set("Content-Type", "text/plain; charset=utf-8")
	w.Write([]byte(graph.GenerateMermaid(view, overlay)))
}

// GetDiagnostics handles the GET /models/{id}/diagnostics request.
func (s *Server) GetDiagnostics(w http.ResponseWriter, r *http.Request) {
	id, err := pathParam(r, "id")
	if err != nil {
		writeError(w, http.StatusBadRequest, err)
		return
	}
	model, view, err := s.Engine.Compile(r.Context(), id)
	if err != nil {
		writeError(w, statusFor(err), err)
		return
	}

	diags := compiler.Report(model, view)
	if diags == nil {
		diags = []compiler.Diagnostic{}
	}
	writeJSON(w, http.StatusOK, map[string]any{"diagnostics": diags})
}

// SubscribeEvents handles the GET /events request (SSE).
func (s *Server) SubscribeEvents(w http.ResponseWriter, r *http.Request) {
	flusher, ok := w.(http.Flusher)
	if !ok {
		http.Error(w, "Streaming not supported", http.StatusInternalServerError)
		slog.Error("SubscribeEvents: Streaming not supported")
		return
	}

	model, err := queryParam(r, "model")
	if err != nil {
		writeError(w, http.StatusBadRequest, err)
		return
	}
	ch, cancel := s.Streams.Subscribe(model)
	defer cancel()

	w.Header().Set("Content-Type", "text/event-stream")
	w.Header().Set("Cache-Control", "no-cache")
	w.Header().Set("Connection", "keep-alive")

	fmt.Fprintf(w, "event: ping\ndata: connected\n\n")
	flusher.Flush()

	for {
		select {
		case <-r.Context().Done():
			slog.Debug("SSE Client Disconnected", "model", model)
			return
		case id, ok := <-ch:
			if !ok {
				return
			}
			fmt.Fprintf(w, "event: change\ndata: %s\n\n", id)
			flusher.Flush()
		}
	}
}

// build resolves {id} to a view, writing the error response itself on failure.
func (s *Server) build(w http.ResponseWriter, r *http.Request) (*domain.View, bool) {
	id, err := pathParam(r, "id")
	if err != nil {
		writeError(w, http.StatusBadRequest, err)
		return nil, false
	}
	view, err := s.Engine.Build(r.Context(), id)
	if err != nil {
		status := statusFor(err)
		if status == http.StatusInternalServerError {
			slog.Error("Build failed", "model", id, "err", err)
		}
		writeError(w, status, err)
		return nil, false
	}
	return view, true
}

func statusFor(err error) int {
	var agg *schema.AggregateError
	switch {
	case errors.Is(err, domain.ErrModelNotFound):
		return http.StatusNotFound
	case errors.As(err, &agg),
		errors.Is(err, domain.ErrUnknownElementType),
		errors.Is(err, domain.ErrInvalidProducerKey):
		return http.StatusUnprocessableEntity
	default:
		return http.StatusInternalServerError
	}
}

func parseKind(s string) (domain.SliceKind, error) {
	switch k := domain.SliceKind(s); k {
	case domain.SliceState, domain.SliceCommand:
		return k, nil
	default:
		return "", fmt.Errorf("unknown slice kind %q", s)
	}
}

func parseSliceKey(s string) (domain.SliceKey, error) {
	kind, name, ok := strings.Cut(s, "/")
	if !ok || name == "" {
		return domain.SliceKey{}, fmt.Errorf("focus must be kind/name, got %q", s)
	}
	k, err := parseKind(kind)
	if err != nil {
		return domain.SliceKey{}, err
	}
	return domain.SliceKey{Kind: k, Name: name}, nil
}

func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	if err := json.NewEncoder(w).Encode(v); err != nil {
		slog.Error("Response encode failed", "err", err)
	}
}

func writeError(w http.ResponseWriter, status int, err error) {
	writeJSON(w, status, map[string]string{"error": err.Error()})
}
