package cmd

import (
	"fmt"
	"time"

	"github.com/spf13/cobra"

	"github.com/burnlist/burnlist/internal/domain"
)

const watchCmdName = "watch"

var debounceFlag time.Duration

// watchCmd represents the watch command.
var watchCmd = newWatchCmd()

func newWatchCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   watchCmdName + " [directory]",
		Short: "Rescan whenever a source file changes",
		Long: `Scan once, then rescan after every batch of changes to .py, .xml or .js
files below the directory. Runs until interrupted.`,
		Args: cobra.MaximumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			if debounceFlag <= 0 {
				return fmt.Errorf("invalid --debounce %s: must be positive", debounceFlag)
			}

			runArgs, err := parseRunArgs(args)
			if err != nil {
				return err
			}

			return workflow.Watch(cmd.Context(), domain.WatchArgs{
				RunArgs:  runArgs,
				Debounce: debounceFlag,
			})
		},
	}
	cmd.Flags().DurationVarP(&debounceFlag, "debounce", "d", 300*time.Millisecond, "quiet period before a rescan")

	return cmd
}

func init() {
	rootCmd.AddCommand(watchCmd)
}
