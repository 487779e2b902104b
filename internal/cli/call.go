package cli

import (
	"encoding/json"
	"fmt"

	"github.com/qiniu/seqmcp/internal/seq/client"
	"github.com/qiniu/seqmcp/internal/tools"
	"github.com/spf13/cobra"
)

func newCallCommand() *cobra.Command {
	return &cobra.Command{
		Use:   "call <tool> [json-arguments]",
		Short: "Invoke one tool against Seq and print its result",
		Example: `  seqmcp call check_health
  seqmcp call search_events '{"level":"Error","count":20}'
  seqmcp call analyze_logs '{"timeRange":"6h","groupBy":"Application"}'`,
		Args: cobra.RangeArgs(1, 2),
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, err := loadConfig()
			if err != nil {
				return err
			}

			callArgs, err := parseArguments(args[1:])
			if err != nil {
				return err
			}

			dispatcher := tools.NewDispatcher(client.NewSeqClient(cfg.Seq))
			text, err := dispatcher.Call(cmd.Context(), args[0], callArgs)
			if err != nil {
				return err
			}
			fmt.Fprintln(cmd.OutOrStdout(), text)
			return nil
		},
	}
}

func parseArguments(args []string) (map[string]any, error) {
	if len(args) == 0 || args[0] == "" {
		return nil, nil
	}
	var out map[string]any
	if err := json.Unmarshal([]byte(args[0]), &out); err != nil {
		return nil, fmt.Errorf("arguments must be a JSON object: %w", err)
	}
	return out, nil
}
