package main

import (
	"context"
	"errors"
	"fmt"
	"log"
	"log/slog"
	"net/http"
	"os"

	"github.com/spf13/cobra"

	"github.com/aretw0/eventmodel/internal/cli"
	"github.com/aretw0/eventmodel/internal/logging"
	"github.com/aretw0/eventmodel/pkg/adapters/mcp"
)

// mcpCmd represents the mcp command
var mcpCmd = &cobra.Command{
	Use:   "mcp",
	Short: "Run the Model Context Protocol (MCP) server",
	Long: `Starts eventmodel as an MCP Server so AI agents can list models, read slices and diagrams.

Supported Transports:
- stdio (default): Uses Standard Input/Output. Ideal for local process integration.
- sse: Uses Server-Sent Events over HTTP. Ideal for remote agents or debuggers.`,
	RunE: func(cmd *cobra.Command, args []string) error {
		transport, _ := cmd.Flags().GetString("transport")
		port, _ := cmd.Flags().GetInt("port")

		cfg, err := loadConfig(cmd)
		if err != nil {
			return err
		}

		// Logs go to stderr so they never corrupt JSON-RPC on stdout.
		level := slog.LevelInfo
		if cfg.Debug {
			level = slog.LevelDebug
		}
		logger := logging.NewWriter(os.Stderr, level, false)
		slog.SetDefault(logger)
		log.SetOutput(os.Stderr)

		engine, err := cli.CreateEngine(cfg, logger)
		if err != nil {
			return err
		}
		srv := mcp.NewServer(engine)

		switch transport {
		case "stdio":
			slog.Info("Starting eventmodel MCP Server (Stdio)...")
			return srv.ServeStdio()
		case "sse":
			slog.Info("Starting eventmodel MCP Server (SSE)", "port", port)

			ctx := cli.NewSignalContext(context.Background())
			defer ctx.Cancel()

			if err := srv.ServeSSE(ctx, port); err != nil && !errors.Is(err, http.ErrServerClosed) {
				return fmt.Errorf("MCP Server execution failed: %w", err)
			}
			slog.Info("MCP Server stopped gracefully")
			return nil
		default:
			return fmt.Errorf("unknown transport: %s. Supported: stdio, sse", transport)
		}
	},
}

func init() {
	rootCmd.AddCommand(mcpCmd)

	mcpCmd.Flags().String("transport", "stdio", "Transport protocol to use: 'stdio' or 'sse'")
	mcpCmd.Flags().Int("port", 8080, "Port to listen on (only for SSE)")
}
