package cli

import (
	"context"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/spf13/cobra"

	"github.com/spyglass-re/spyglass/internal/config"
	"github.com/spyglass-re/spyglass/internal/logging"
	"github.com/spyglass-re/spyglass/internal/mcp"
	"github.com/spyglass-re/spyglass/internal/session"
)

// newServeCmd creates the 'spyglass serve' command.
func newServeCmd() *cobra.Command {
	var (
		configPath string
		transport  string
		host       string
		port       int
		logLevel   string
		audit      bool
	)

	cmd := &cobra.Command{
		Use:   "serve",
		Short: "Run the MCP server",
		Long: `Run the spyglass MCP server.

Without a host GUI the server starts with no bound program; clients see
structured no-active-program results until a host binds a session. Hosts
embedding spyglass use the plugin bridge instead of this command.

Examples:
  # Serve over streamable-http on the default port
  spyglass serve

  # Serve over stdio (for MCP clients that spawn the server)
  spyglass serve --transport stdio`,
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, err := config.Load(configPath)
			if err != nil {
				return err
			}
			if cmd.Flags().Changed("transport") {
				cfg.Server.Transport = transport
			}
			if cmd.Flags().Changed("host") {
				cfg.Server.Host = host
			}
			if cmd.Flags().Changed("port") {
				cfg.Server.Port = port
			}
			if cmd.Flags().Changed("log-level") {
				cfg.Log.Level = logLevel
			}
			if cmd.Flags().Changed("audit") {
				cfg.Tools.Audit = audit
			}
			if err := cfg.Validate(); err != nil {
				return err
			}

			logger := logging.New(logging.Config{
				Level:  cfg.Log.Level,
				Pretty: cfg.Log.Pretty,
			})

			sess := session.NewAdapter(nil, logger)
			server := mcp.New(sess, mcp.Config{
				Transport:    cfg.Server.Transport,
				Host:         cfg.Server.Host,
				Port:         cfg.Server.Port,
				EnabledTools: cfg.Tools.Enabled,
				AuditEnabled: cfg.Tools.Audit,
			}, logger)

			if cfg.Server.Transport == mcp.TransportStdio {
				return server.ServeStdio()
			}

			errCh := make(chan error, 1)
			go func() { errCh <- server.Start() }()

			sigCh := make(chan os.Signal, 1)
			signal.Notify(sigCh, syscall.SIGINT, syscall.SIGTERM)

			select {
			case err := <-errCh:
				return err
			case sig := <-sigCh:
				logger.Info().Str("signal", sig.String()).Msg("shutting down")
				ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
				defer cancel()
				return server.Shutdown(ctx)
			}
		},
	}

	cmd.Flags().StringVarP(&configPath, "config", "c", "", "Path to config file")
	cmd.Flags().StringVar(&transport, "transport", "streamable-http", "Transport: stdio or streamable-http")
	cmd.Flags().StringVar(&host, "host", "127.0.0.1", "Bind address for streamable-http")
	cmd.Flags().IntVar(&port, "port", 8766, "Bind port for streamable-http")
	cmd.Flags().StringVar(&logLevel, "log-level", "info", "Log level (trace, debug, info, warn, error)")
	cmd.Flags().BoolVar(&audit, "audit", false, "Log every tool invocation with its arguments")

	return cmd
}

// newListToolsCmd creates the 'spyglass list-tools' command.
func newListToolsCmd() *cobra.Command {
	var configPath string

	cmd := &cobra.Command{
		Use:   "list-tools",
		Short: "List the tools the server would expose",
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, err := config.Load(configPath)
			if err != nil {
				return err
			}

			logger := logging.New(logging.Config{Level: "error"})
			sess := session.NewAdapter(nil, logger)
			server := mcp.New(sess, mcp.Config{
				Transport:    cfg.Server.Transport,
				Host:         cfg.Server.Host,
				Port:         cfg.Server.Port,
				EnabledTools: cfg.Tools.Enabled,
			}, logger)

			for _, name := range server.ListToolNames() {
				cmd.Println(name)
			}
			return nil
		},
	}

	cmd.Flags().StringVarP(&configPath, "config", "c", "", "Path to config file")
	return cmd
}
