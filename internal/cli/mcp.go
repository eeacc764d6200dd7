package cli

import (
	"context"
	"fmt"
	"io"
	"log/slog"

	"github.com/aretw0/guidepost/pkg/adapters/mcp"
	"github.com/aretw0/guidepost/pkg/config"
)

// Transports accepted by ServeMCP.
const (
	TransportStdio = "stdio"
	TransportSSE   = "sse"
)

// MCPOptions tune `guidepost mcp`.
type MCPOptions struct {
	Transport string
	Addr      string // SSE only
	BaseURL   string // SSE only
	Input     io.Reader
	Output    io.Writer
	Host      HostFactory
}

// ServeMCP exposes a tour to MCP clients until ctx is cancelled or stdin closes.
func ServeMCP(ctx context.Context, cfg config.Config, logger *slog.Logger, opts MCPOptions) error {
	if opts.Transport != TransportStdio && opts.Transport != TransportSSE {
		return fmt.Errorf("unknown transport %q, supported: %s, %s", opts.Transport, TransportStdio, TransportSSE)
	}
	if opts.Host == nil {
		opts.Host = BrowserHost(cfg.Host, logger)
	}
	stack, err := BuildTour(ctx, cfg, logger, opts.Host)
	if err != nil {
		return err
	}
	defer stack.Close()

	srv := mcp.NewServer(stack.Tour, logger)
	if opts.Transport == TransportSSE {
		return srv.ServeSSE(ctx, opts.Addr, opts.BaseURL)
	}
	logger.Info("MCP server on stdio", "script", stack.Script.ID)
	return srv.ServeStdio(ctx, opts.Input, opts.Output)
}
