package cli

import (
	"context"
	"os"
	"strings"

	"github.com/qiniu/seqmcp/internal/config"
	"github.com/qiniu/seqmcp/internal/mcpserver"
	"github.com/rs/zerolog"
	"github.com/rs/zerolog/log"
	"github.com/spf13/cobra"
)

var configFile string

// NewRootCommand builds the seqmcp command tree.
func NewRootCommand() *cobra.Command {
	root := &cobra.Command{
		Use:   "seqmcp",
		Short: "Seq log server tools for AI agents over MCP",
		Long: `seqmcp exposes a Seq server's event search, event lookup, log analysis,
signal listing and health check as Model Context Protocol tools.

Connection settings come from SEQ_URL, SEQ_API_KEY, SEQ_DEFAULT_LIMIT and
SEQ_TIMEOUT, optionally overridden by a YAML or JSON config file.`,
		Version:       mcpserver.ServerVersion,
		SilenceUsage:  true,
		SilenceErrors: true,
	}

	root.PersistentFlags().StringVarP(&configFile, "config", "f", "", "path to a YAML or JSON configuration file")

	root.AddCommand(newServeCommand(), newCallCommand(), newToolsCommand())
	return root
}

// Execute runs the root command and returns the process exit code.
func Execute() int {
	if err := NewRootCommand().ExecuteContext(context.Background()); err != nil {
		printError("%v", err)
		return 1
	}
	return 0
}

func loadConfig() (*config.Config, error) {
	cfg, err := config.Load(configFile)
	if err != nil {
		return nil, err
	}
	setupLogging(cfg.Logging.Level)
	return cfg, nil
}

// setupLogging sends logs to stderr; stdout carries the stdio transport.
func setupLogging(level string) {
	log.Logger = log.Output(zerolog.ConsoleWriter{Out: os.Stderr})

	switch strings.ToLower(level) {
	case "trace":
		zerolog.SetGlobalLevel(zerolog.TraceLevel)
	case "debug":
		zerolog.SetGlobalLevel(zerolog.DebugLevel)
	case "warn", "warning":
		zerolog.SetGlobalLevel(zerolog.WarnLevel)
	case "error":
		zerolog.SetGlobalLevel(zerolog.ErrorLevel)
	default:
		zerolog.SetGlobalLevel(zerolog.InfoLevel)
	}
}
