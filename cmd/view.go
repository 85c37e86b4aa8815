package cmd

import (
	"fmt"

	"github.com/spf13/cobra"

	m "github.com/burnlist/burnlist/internal/model"
)

// viewCmd represents the view command.
var viewCmd = newViewCmd()

func newViewCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "view REPORT",
		Short: "View a previously saved report",
		Long:  "View a report saved with --output, re-rendered in the format selected by --format.",
		Args:  cobra.ExactArgs(1),
		RunE: func(_ *cobra.Command, args []string) error {
			format, ok := m.ParseFormat(formatFlag)
			if !ok {
				return fmt.Errorf("invalid --format %q: want text, json or yaml", formatFlag)
			}

			return workflow.View(m.Path(args[0]), format)
		},
	}

	return cmd
}

func init() {
	rootCmd.AddCommand(viewCmd)
}
