package cli

import (
	"fmt"
	"io"
	"strings"

	"github.com/qiniu/seqmcp/internal/tools"
	"github.com/spf13/cobra"
)

func newToolsCommand() *cobra.Command {
	return &cobra.Command{
		Use:   "tools",
		Short: "List the tools exposed to agents",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			printCatalog(cmd.OutOrStdout(), tools.Catalog())
			return nil
		},
	}
}

func printCatalog(w io.Writer, defs []tools.Definition) {
	for i, def := range defs {
		if i > 0 {
			fmt.Fprintln(w)
		}
		headingColor.Fprintf(w, "%s\n", def.Name)
		fmt.Fprintf(w, "  %s\n", def.Description)
		for _, p := range def.Params {
			fmt.Fprintf(w, "  - %s (%s)%s\n", p.Name, p.Type, paramNotes(p))
			infoColor.Fprintf(w, "      %s\n", p.Description)
		}
	}
}

func paramNotes(p tools.Param) string {
	var notes []string
	if p.Required {
		notes = append(notes, "required")
	}
	if len(p.Enum) > 0 {
		notes = append(notes, "one of "+strings.Join(p.Enum, "|"))
	}
	if p.Min != nil && p.Max != nil {
		notes = append(notes, fmt.Sprintf("%g-%g", *p.Min, *p.Max))
	}
	if p.Default != nil {
		notes = append(notes, fmt.Sprintf("default %v", p.Default))
	}
	if len(notes) == 0 {
		return ""
	}
	return " " + strings.Join(notes, ", ")
}
