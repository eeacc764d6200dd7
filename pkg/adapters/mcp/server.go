package mcp

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"net/http"
	"strings"
	"time"

	"github.com/aretw0/guidepost"
	"github.com/aretw0/guidepost/internal/logging"
	"github.com/aretw0/guidepost/internal/presentation/graph"
	"github.com/aretw0/guidepost/pkg/domain"
	"github.com/aretw0/guidepost/pkg/ports"
	"github.com/aretw0/guidepost/pkg/schema"
	"github.com/mark3labs/mcp-go/mcp"
	"github.com/mark3labs/mcp-go/server"
)

const (
	scriptURI = "guidepost://script"
	graphURI  = "guidepost://graph"
)

// CommandArgs is the input of the tour_command tool.
type CommandArgs struct {
	Command string `json:"command"`
}

// CommandResponse is the output of the tour_command tool.
type CommandResponse struct {
	Snapshot domain.Snapshot `json:"snapshot" jsonschema_description:"Tour state after the command"`
	Error    string          `json:"error,omitempty" jsonschema_description:"Set when the command was rejected or failed"`
}

// Server exposes a running tour to MCP clients, so an agent can follow or steer it.
type Server struct {
	tour      ports.TourController
	logger    *slog.Logger
	mcpServer *server.MCPServer
}

// NewServer creates an MCP server bound to tour.
func NewServer(tour ports.TourController, logger *slog.Logger) *Server {
	if logger == nil {
		logger = logging.NewNop()
	}
	s := &Server{
		tour:   tour,
		logger: logger.With("component", "mcp"),
		mcpServer: server.NewMCPServer("guidepost-mcp", strings.TrimSpace(guidepost.Version),
			server.WithToolCapabilities(false),
			server.WithResourceCapabilities(false, false),
			server.WithRecovery(),
		),
	}
	s.registerTools()
	s.registerResources()
	return s
}

// MCPServer returns the underlying server, mostly for in-process clients.
func (s *Server) MCPServer() *server.MCPServer { return s.mcpServer }

// ServeStdio serves on the given streams until ctx is cancelled or input ends.
func (s *Server) ServeStdio(ctx context.Context, in io.Reader, out io.Writer) error {
	return server.NewStdioServer(s.mcpServer).Listen(ctx, in, out)
}

// ServeSSE serves on addr using SSE until ctx is cancelled.
func (s *Server) ServeSSE(ctx context.Context, addr, baseURL string) error {
	sseServer := server.NewSSEServer(s.mcpServer, server.WithBaseURL(baseURL))

	mux := http.NewServeMux()
	mux.Handle("/sse", corsMiddleware(sseServer.SSEHandler()))
	mux.Handle("/message", corsMiddleware(sseServer.MessageHandler()))

	httpServer := &http.Server{
		Addr:              addr,
		Handler:           mux,
		ReadHeaderTimeout: 10 * time.Second,
	}

	serverErrors := make(chan error, 1)
	go func() {
		s.logger.Info("MCP server listening (SSE)", "address", addr)
		serverErrors <- httpServer.ListenAndServe()
	}()

	select {
	case err := <-serverErrors:
		if errors.Is(err, http.ErrServerClosed) {
			return nil
		}
		return err
	case <-ctx.Done():
		shutdownCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
		defer cancel()
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
		w.Header().Set("Access-Control-Allow-Headers", "Content-Type, Authorization")

		if r.Method == http.MethodOptions {
			w.WriteHeader(http.StatusOK)
			return
		}
		next.ServeHTTP(w, r)
	})
}

func (s *Server) registerTools() {
	s.mcpServer.AddTool(mcp.NewTool("tour_status",
		mcp.WithDescription("Get the current tour state: status, phase, step and highlight geometry."),
		mcp.WithReadOnlyHintAnnotation(true),
	), func(ctx context.Context, request mcp.CallToolRequest) (*mcp.CallToolResult, error) {
		return mcp.NewToolResultJSON(s.tour.Snapshot())
	})

	s.mcpServer.AddTool(mcp.NewTool("tour_command",
		mcp.WithDescription("Drive the tour: start it, move between steps, pause, hold or end it."),
		mcp.WithString("command",
			mcp.Required(),
			mcp.Enum(ports.Commands...),
			mcp.Description("Command to run"),
		),
		mcp.WithOutputSchema[CommandResponse](),
	), mcp.NewStructuredToolHandler(s.handleCommand))

	s.mcpServer.AddTool(mcp.NewTool("tour_graph",
		mcp.WithDescription("Get the script as a Mermaid diagram with the visited and current steps marked."),
		mcp.WithReadOnlyHintAnnotation(true),
	), func(ctx context.Context, request mcp.CallToolRequest) (*mcp.CallToolResult, error) {
		script := s.tour.Script()
		overlay := graph.OverlayFromSnapshot(script, s.tour.Snapshot())
		return mcp.NewToolResultText(graph.GenerateMermaid(script, overlay)), nil
	})
}

// handleCommand reports rejected commands in the response rather than as a tool
// failure, so the caller still sees the state it acted on.
func (s *Server) handleCommand(ctx context.Context, request mcp.CallToolRequest, args CommandArgs) (CommandResponse, error) {
	err := ports.Dispatch(ctx, s.tour, args.Command)
	resp := CommandResponse{Snapshot: s.tour.Snapshot()}
	if err == nil {
		return resp, nil
	}
	if errors.Is(err, domain.ErrUnknownCommand) {
		return CommandResponse{}, fmt.Errorf("%w: %q", err, args.Command)
	}
	s.logger.Warn("command failed", "command", args.Command, "err", err)
	resp.Error = err.Error()
	return resp, nil
}

func (s *Server) registerResources() {
	s.mcpServer.AddResource(mcp.NewResource(scriptURI, "Tour Script",
		mcp.WithResourceDescription("Ordered steps of the loaded tour script"),
		mcp.WithMIMEType("application/json"),
	), func(ctx context.Context, request mcp.ReadResourceRequest) ([]mcp.ResourceContents, error) {
		jsonBytes, err := json.Marshal(schema.FromScript(s.tour.Script()))
		if err != nil {
			return nil, fmt.Errorf("encode script: %w", err)
		}
		return []mcp.ResourceContents{
			mcp.TextResourceContents{
				URI:      scriptURI,
				MIMEType: "application/json",
				Text:     string(jsonBytes),
			},
		}, nil
	})

	s.mcpServer.AddResource(mcp.NewResource(graphURI, "Tour Graph",
		mcp.WithMIMEType("text/plain"),
	), func(ctx context.Context, request mcp.ReadResourceRequest) ([]mcp.ResourceContents, error) {
		return []mcp.ResourceContents{
			mcp.TextResourceContents{
				URI:      graphURI,
				MIMEType: "text/plain",
				Text:     graph.GenerateMermaid(s.tour.Script(), nil),
			},
		}, nil
	})
}
