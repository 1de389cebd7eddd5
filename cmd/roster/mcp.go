package main

import (
	"context"
	"errors"
	"fmt"
	"log"
	"net/http"

	"github.com/aretw0/roster/internal/cli"
	"github.com/aretw0/roster/internal/config"
	"github.com/aretw0/roster/pkg/adapters/mcp"
	"github.com/spf13/cobra"
)

// mcpCmd represents the mcp command
var mcpCmd = &cobra.Command{
	Use:   "mcp",
	Short: "Run the Model Context Protocol (MCP) server",
	Long: `Starts the roster engine as an MCP Server.
Agents can read the state and call fetch_users, add_user, edit_user,
delete_user and dismiss_error as tools.

Supported Transports:
- stdio (default): Uses Standard Input/Output. Ideal for local process integration.
- sse: Uses Server-Sent Events over HTTP. Ideal for remote agents or debuggers.`,
	RunE: func(cmd *cobra.Command, args []string) error {
		a, err := loadApp(cmd)
		if err != nil {
			return err
		}
		defer a.Close()

		transport, port := a.cfg.MCP.Transport, a.cfg.MCP.Port
		if cmd.Flags().Changed("transport") {
			transport, _ = cmd.Flags().GetString("transport")
		}
		if cmd.Flags().Changed("port") {
			port, _ = cmd.Flags().GetInt("port")
		}

		srv := mcp.NewServer(a.Engine, mcp.WithLogger(a.logger))

		switch transport {
		case config.TransportStdio:
			// Ensure logs don't corrupt JSON-RPC on Stdout
			log.SetOutput(cmd.ErrOrStderr())
			a.logger.Info("Starting roster MCP Server (Stdio)")
			return srv.ServeStdio()
		case config.TransportSSE:
			a.logger.Info("Starting roster MCP Server (SSE)", "port", port)

			ctx := cli.NewSignalContext(context.Background())
			defer ctx.Cancel()

			if err := srv.ServeSSE(ctx, port); err != nil && !errors.Is(err, http.ErrServerClosed) {
				return fmt.Errorf("MCP server execution failed: %w", err)
			}
			a.logger.Info("MCP Server stopped gracefully", "reason", cli.StopReason(ctx))
			return nil
		}
		return fmt.Errorf("unknown transport: %s. Supported: stdio, sse", transport)
	},
}

func init() {
	rootCmd.AddCommand(mcpCmd)

	mcpCmd.Flags().String("transport", config.TransportStdio, "Transport protocol to use: 'stdio' or 'sse'")
	mcpCmd.Flags().Int("port", 8081, "Port to listen on (only for SSE)")
}
