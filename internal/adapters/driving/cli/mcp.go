package cli

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/custodia-labs/verdict-cli/internal/adapters/driving/mcp"
	"github.com/custodia-labs/verdict-cli/internal/logger"
	"github.com/custodia-labs/verdict-cli/internal/metrics"
)

var mcpCmd = &cobra.Command{
	Use:   "mcp",
	Short: "MCP server commands",
	Long:  `Commands for the Model Context Protocol (MCP) server integration.`,
}

var mcpServeCmd = &cobra.Command{
	Use:   "serve",
	Short: "Start the MCP server",
	Long: `Start the Model Context Protocol server so AI assistants can ask for
product analyses and recommendations.

By default, the server communicates over stdio using JSON-RPC.
Use --port to start an HTTP server instead.

Use --metrics-port to expose Prometheus metrics on /metrics.

Examples:
  # Stdio mode (default, for desktop assistants)
  verdict mcp serve

  # HTTP mode with metrics
  verdict mcp serve --port 8080 --metrics-port 9090

Desktop assistant configuration:
  {
    "mcpServers": {
      "verdict": {
        "command": "/path/to/verdict",
        "args": ["mcp", "serve"]
      }
    }
  }`,
	RunE: runMCPServe,
}

func init() {
	mcpServeCmd.Flags().IntP("port", "p", 0, "HTTP port (0 = use stdio)")
	mcpServeCmd.Flags().Int("metrics-port", 0, "Prometheus metrics port (0 = disabled)")
	mcpCmd.AddCommand(mcpServeCmd)
	rootCmd.AddCommand(mcpCmd)
}

func runMCPServe(cmd *cobra.Command, _ []string) error {
	port, err := cmd.Flags().GetInt("port")
	if err != nil {
		return fmt.Errorf("getting port flag: %w", err)
	}
	metricsPort, err := cmd.Flags().GetInt("metrics-port")
	if err != nil {
		return fmt.Errorf("getting metrics-port flag: %w", err)
	}

	ports := &mcp.Ports{
		Recommendation: recommendationService,
		Product:        productService,
	}

	server, err := mcp.NewServer(ports)
	if err != nil {
		return err
	}

	if metricsPort > 0 {
		addr := fmt.Sprintf(":%d", metricsPort)
		go func() {
			if err := metrics.Serve(cmd.Context(), addr); err != nil {
				logger.Warn("Metrics server stopped: %v", err)
			}
		}()
		logger.Info("Metrics available on http://localhost%s/metrics", addr)
	}

	if port > 0 {
		addr := fmt.Sprintf(":%d", port)
		fmt.Fprintf(cmd.OutOrStdout(), "MCP server listening on http://localhost%s\n", addr)
		return server.RunHTTP(cmd.Context(), addr)
	}

	return server.Run(cmd.Context())
}
