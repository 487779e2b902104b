package cli

import (
	"context"
	"os/signal"
	"syscall"

	"github.com/qiniu/seqmcp/internal/config"
	"github.com/qiniu/seqmcp/internal/mcpserver"
	"github.com/qiniu/seqmcp/internal/observability"
	"github.com/qiniu/seqmcp/internal/seq/client"
	"github.com/qiniu/seqmcp/internal/tools"
	"github.com/rs/zerolog/log"
	"github.com/spf13/cobra"
)

func newServeCommand() *cobra.Command {
	var transport, addr, endpoint string

	cmd := &cobra.Command{
		Use:   "serve",
		Short: "Run the MCP server",
		Example: `  # stdio, for desktop agents
  seqmcp serve

  # streamable HTTP with Prometheus metrics on /metrics
  seqmcp serve --transport http --addr :8080`,
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, err := loadConfig()
			if err != nil {
				return err
			}
			if transport != "" {
				cfg.Server.Transport = transport
			}
			if addr != "" {
				cfg.Server.BindAddr = addr
			}
			if endpoint != "" {
				cfg.Server.Endpoint = endpoint
			}
			if err := cfg.Validate(); err != nil {
				return err
			}

			ctx, stop := signal.NotifyContext(cmd.Context(), syscall.SIGINT, syscall.SIGTERM)
			defer stop()
			return serve(ctx, cfg)
		},
	}

	cmd.Flags().StringVar(&transport, "transport", "", "transport: stdio or http (default from MCP_TRANSPORT)")
	cmd.Flags().StringVar(&addr, "addr", "", "listen address for the http transport")
	cmd.Flags().StringVar(&endpoint, "endpoint", "", "MCP endpoint path for the http transport")
	return cmd
}

func serve(ctx context.Context, cfg *config.Config) error {
	metrics := observability.NewMetricsCollector()
	seqClient := client.NewSeqClient(cfg.Seq, client.WithMetrics(metrics))
	dispatcher := tools.NewDispatcher(seqClient)

	log.Info().
		Str("seq_url", seqClient.BaseURL()).
		Bool("api_key", cfg.Seq.APIKey != "").
		Str("transport", cfg.Server.Transport).
		Msg("Starting Seq MCP server")

	return mcpserver.NewServer(cfg.Server, dispatcher, metrics).Run(ctx)
}
