// Package mcp exposes slice views to agents over the Model Context Protocol.
package mcp

import (
	"context"
	"encoding/json"
	"fmt"
	"log/slog"
	"net/http"
	"strings"
	"time"

	"github.com/mark3labs/mcp-go/mcp"
	"github.com/mark3labs/mcp-go/server"

	"github.com/aretw0/eventmodel"
	"github.com/aretw0/eventmodel/internal/compiler"
	"github.com/aretw0/eventmodel/internal/presentation/graph"
	"github.com/aretw0/eventmodel/pkg/domain"
)

const (
	modelsURI        = "eventmodel://models"
	sliceTemplateURI = "eventmodel://models/{id}/slices"
)

// Engine is the part of the eventmodel engine the MCP server needs.
type Engine interface {
	Models() ([]string, error)
	Build(ctx context.Context, id string) (*domain.View, error)
	Compile(ctx context.Context, id string) (*domain.Model, *domain.View, error)
}

// SliceSummary is the compact listing entry returned by list_slices.
type SliceSummary struct {
	Kind      domain.SliceKind `json:"kind" jsonschema_description:"Slice kind: state or command"`
	Name      string           `json:"name" jsonschema_description:"State view or command name"`
	Ticks     []int            `json:"ticks" jsonschema_description:"Ticks of every occurrence"`
	Scenarios int              `json:"scenarios" jsonschema_description:"Number of Given/When/Then scenarios"`
}

// SliceList is the list_slices result.
type SliceList struct {
	Model  string         `json:"model"`
	Slices []SliceSummary `json:"slices"`
}

// ModelArgs selects a model.
type ModelArgs struct {
	Model string `json:"model"`
	Kind  string `json:"kind,omitempty"`
}

// SliceArgs selects a single slice.
type SliceArgs struct {
	Model string `json:"model"`
	Kind  string `json:"kind"`
	Name  string `json:"name"`
}

// Server wraps the engine and exposes it as an MCP Server.
type Server struct {
	engine    Engine
	mcpServer *server.MCPServer
}

// NewServer creates a new MCP Server instance.
func NewServer(engine Engine) *Server {
	s := &Server{
		engine:    engine,
		mcpServer: server.NewMCPServer("eventmodel-mcp", eventmodel.Version, server.WithResourceCapabilities(false, false)),
	}
	s.registerTools()
	s.registerResources()
	return s
}

// ServeStdio starts the server on Stdin/Stdout.
func (s *Server) ServeStdio() error {
	return server.ServeStdio(s.mcpServer)
}

// ServeSSE starts the server on the given port using SSE.
func (s *Server) ServeSSE(ctx context.Context, port int) error {
	addr := fmt.Sprintf(":%d", port)
	baseURL := fmt.Sprintf("http://localhost:%d", port)

	sseServer := server.NewSSEServer(s.mcpServer, server.WithBaseURL(baseURL))

	mux := http.NewServeMux()
	mux.Handle("/sse", corsMiddleware(sseServer.SSEHandler()))
	mux.Handle("/message", corsMiddleware(sseServer.MessageHandler()))

	httpServer := &http.Server{
		Addr:              addr,
		Handler:           mux,
		ReadHeaderTimeout: 10 * time.Second,
	}

	// Channel to listen for errors coming from the listener.
	serverErrors := make(chan error, 1)
	go func() {
		slog.Info("MCP Server listening (SSE)", "address", addr)
		serverErrors <- httpServer.ListenAndServe()
	}()

	select {
	case err := <-serverErrors:
		return err
	case <-ctx.Done():
		shutdownCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
		defer cancel()

		slog.Info("Shutdown signal received, shutting down MCP server")
		if err := httpServer.Shutdown(shutdownCtx); err != nil {
			return fmt.Errorf("could not stop server gracefully: %w", err)
		}
		return nil
	}
}

func corsMiddleware(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Access-Control-Allow-Origin", "*")
		w.Header().Set("Access-Control-Allow-Methods", "GET, POST, OPTIONS")
		w.Header().Set("Access-Control-Allow-Headers", "Content-Type, Authorization, X-Requested-With")

		if r.Method == "OPTIONS" {
			w.WriteHeader(http.StatusOK)
			return
		}

		next.ServeHTTP(w, r)
	})
}

func (s *Server) registerTools() {
	s.mcpServer.AddTool(mcp.NewTool("list_models",
		mcp.WithDescription("List the IDs of every event model available."),
	), s.handleListModels)

	s.mcpServer.AddTool(mcp.NewTool("list_slices",
		mcp.WithDescription("List the slices (state views and commands) of a model with their ticks."),
		mcp.WithString("model", mcp.Required(), mcp.Description("Model ID")),
		mcp.WithString("kind", mcp.Description("Only return slices of this kind"), mcp.Enum("state", "command")),
		mcp.WithOutputSchema[SliceList](),
	), mcp.NewStructuredToolHandler(s.handleListSlices))

	s.mcpServer.AddTool(mcp.NewTool("get_slice",
		mcp.WithDescription("Get one slice with its cross-references, examples and Given/When/Then scenarios."),
		mcp.WithString("model", mcp.Required(), mcp.Description("Model ID")),
		mcp.WithString("kind", mcp.Required(), mcp.Description("Slice kind"), mcp.Enum("state", "command")),
		mcp.WithString("name", mcp.Required(), mcp.Description("State view or command name")),
	), s.handleGetSlice)

	s.mcpServer.AddTool(mcp.NewTool("get_diagram",
		mcp.WithDescription("Get a Mermaid flowchart of the model's slices."),
		mcp.WithString("model", mcp.Required(), mcp.Description("Model ID")),
		mcp.WithString("focus", mcp.Description("Slice to emphasise, as kind/name")),
	), s.handleGetDiagram)

	s.mcpServer.AddTool(mcp.NewTool("get_diagnostics",
		mcp.WithDescription("Report dangling references and unmatched specifications in a model."),
		mcp.WithString("model", mcp.Required(), mcp.Description("Model ID")),
	), s.handleGetDiagnostics)
}

func (s *Server) handleListModels(ctx context.Context, request mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	ids, err := s.engine.Models()
	if err != nil {
		return mcp.NewToolResultError(fmt.Sprintf("list models failed: %v", err)), nil
	}
	if ids == nil {
		ids = []string{}
	}
	return jsonResult(map[string][]string{"models": ids})
}

func (s *Server) handleListSlices(ctx context.Context, request mcp.CallToolRequest, args ModelArgs) (SliceList, error) {
	view, err := s.engine.Build(ctx, args.Model)
	if err != nil {
		return SliceList{}, fmt.Errorf("build failed: %w", err)
	}

	out := SliceList{Model: args.Model, Slices: []SliceSummary{}}
	for _, sl := range view.Slices {
		if args.Kind != "" && string(sl.Kind) != args.Kind {
			continue
		}
		out.Slices = append(out.Slices, SliceSummary{
			Kind:      sl.Kind,
			Name:      sl.Name,
			Ticks:     sl.Ticks,
			Scenarios: len(sl.Scenarios),
		})
	}
	return out, nil
}

func (s *Server) handleGetSlice(ctx context.Context, request mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	var args SliceArgs
	if err := request.BindArguments(&args); err != nil {
		return mcp.NewToolResultError(fmt.Sprintf("invalid arguments: %v", err)), nil
	}

	view, err := s.engine.Build(ctx, args.Model)
	if err != nil {
		return mcp.NewToolResultError(fmt.Sprintf("build failed: %v", err)), nil
	}

	sl, ok := view.Find(domain.SliceKind(args.Kind), args.Name)
	if !ok {
		return mcp.NewToolResultError(fmt.Sprintf("no %s slice named %q in %s", args.Kind, args.Name, args.Model)), nil
	}
	return jsonResult(sl)
}

func (s *Server) handleGetDiagram(ctx context.Context, request mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	model := request.GetString("model", "")
	view, err := s.engine.Build(ctx, model)
	if err != nil {
		return mcp.NewToolResultError(fmt.Sprintf("build failed: %v", err)), nil
	}

	var overlay *graph.GraphOverlay
	if focus := request.GetString("focus", ""); focus != "" {
		kind, name, ok := strings.Cut(focus, "/")
		if !ok {
			return mcp.NewToolResultError(fmt.Sprintf("focus must be kind/name, got %q", focus)), nil
		}
		overlay = &graph.GraphOverlay{Focus: &domain.SliceKey{Kind: domain.SliceKind(kind), Name: name}}
	}
	return mcp.NewToolResultText(graph.GenerateMermaid(view, overlay)), nil
}

func (s *Server) handleGetDiagnostics(ctx context.Context, request mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	id := request.GetString("model", "")
	model, view, err := s.engine.Compile(ctx, id)
	if err != nil {
		return mcp.NewToolResultError(fmt.Sprintf("build failed: %v", err)), nil
	}

	diags := compiler.Report(model, view)
	if diags == nil {
		diags = []compiler.Diagnostic{}
	}
	return jsonResult(map[string]any{"diagnostics": diags})
}

func (s *Server) registerResources() {
	s.mcpServer.AddResource(mcp.NewResource(modelsURI, "Event models",
		mcp.WithResourceDescription("IDs of every available model"),
		mcp.WithMIMEType("application/json"),
	), func(ctx context.Context, request mcp.ReadResourceRequest) ([]mcp.ResourceContents, error) {
		ids, err := s.engine.Models()
		if err != nil {
			return nil, fmt.Errorf("failed to list models: %w", err)
		}
		return jsonContents(request.Params.URI, ids)
	})

	s.mcpServer.AddResourceTemplate(mcp.NewResourceTemplate(sliceTemplateURI, "Model slices",
		mcp.WithTemplateDescription("Slice view of a model"),
		mcp.WithTemplateMIMEType("application/json"),
	), s.readSlices)
}

func (s *Server) readSlices(ctx context.Context, request mcp.ReadResourceRequest) ([]mcp.ResourceContents, error) {
	id, ok := modelFromURI(request.Params.URI)
	if !ok {
		return nil, fmt.Errorf("unexpected resource URI %q", request.Params.URI)
	}
	view, err := s.engine.Build(ctx, id)
	if err != nil {
		return nil, fmt.Errorf("failed to build %s: %w", id, err)
	}
	return jsonContents(request.Params.URI, view)
}

// modelFromURI extracts {id} from eventmodel://models/{id}/slices.
func modelFromURI(uri string) (string, bool) {
	rest, ok := strings.CutPrefix(uri, modelsURI+"/")
	if !ok {
		return "", false
	}
	id, ok := strings.CutSuffix(rest, "/slices")
	if !ok || id == "" || strings.Contains(id, "/") {
		return "", false
	}
	return id, true
}

func jsonResult(v any) (*mcp.CallToolResult, error) {
	data, err := json.Marshal(v)
	if err != nil {
		return nil, err
	}
	return mcp.NewToolResultText(string(data)), nil
}

func jsonContents(uri string, v any) ([]mcp.ResourceContents, error) {
	data, err := json.Marshal(v)
	if err != nil {
		return nil, err
	}
	return []mcp.ResourceContents{
		mcp.TextResourceContents{
			URI:      uri,
			MIMEType: "application/json",
			Text:     string(data),
		},
	}, nil
}
