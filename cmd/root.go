// Package cmd provides the root command and CLI setup for burnlist.
package cmd

import (
	"context"
	"errors"
	"fmt"
	"os"
	"os/signal"
	"syscall"

	"github.com/spf13/cobra"

	"github.com/burnlist/burnlist/internal/adapter"
	"github.com/burnlist/burnlist/internal/controller"
	"github.com/burnlist/burnlist/internal/domain"
	"github.com/burnlist/burnlist/internal/logging"
	m "github.com/burnlist/burnlist/internal/model"
)

var sourceFSAdapter adapter.SourceFSAdapter
var pythonAdapter adapter.PythonFileAdapter
var javascriptAdapter adapter.JavaScriptFileAdapter
var xmlAdapter adapter.XMLFileAdapter
var reportStore adapter.ReportStore
var workflow domain.Workflow

func init() {
	sourceFSAdapter = adapter.NewLocalSourceFSAdapter()
	pythonAdapter = adapter.NewLocalPythonFileAdapter()
	javascriptAdapter = adapter.NewLocalJavaScriptFileAdapter()
	xmlAdapter = adapter.NewLocalXMLFileAdapter()
	reportStore = adapter.NewReportStore()
}

var formatFlag string
var outputFlag string
var parallelFlag int
var noTUIFlag bool
var verboseFlag bool
var logJSONFlag bool

const rootLongDescription = `Burnlist is a static policy linter for Odoo addon sources.

It scans .py, .xml and .js files below a directory, applies the compiled-in
rule tables and the Python syntax-tree checks, and verifies that every
anchored bypass marker is backed by a test.

Bypass markers:
  # audit-ignore-<category>: Tested by [ANCHOR]   search, cron, view, xpath, mail, i18n
  # burn-ignore-sudo: Tested by [ANCHOR]          approved .sudo() patterns
  # burn-ignore                                   cr.commit() and Markup() only
  <!-- verified-by: [ANCHOR] -->                  links a view to its tour

The exit code is 1 when any error or failed verification remains.`

// rootCmd represents the base command when called without any subcommands.
var rootCmd = newRootCmd()

func newRootCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:           "burnlist [directory]",
		Short:         "Static policy linter for Odoo addons",
		Long:          rootLongDescription,
		Args:          cobra.MaximumNArgs(1),
		SilenceUsage:  true,
		SilenceErrors: true,
		PersistentPreRunE: func(cmd *cobra.Command, _ []string) error {
			return setupWorkflow(cmd)
		},
		RunE: func(cmd *cobra.Command, args []string) error {
			runArgs, err := parseRunArgs(args)
			if err != nil {
				return err
			}

			return workflow.Run(cmd.Context(), runArgs)
		},
	}
	cmd.PersistentFlags().StringVarP(&formatFlag, "format", "f", string(m.FormatText), "report format: text, json or yaml")
	cmd.PersistentFlags().StringVarP(&outputFlag, "output", "o", "", "also write the structured report to this file (.json or .yaml)")
	cmd.PersistentFlags().IntVarP(&parallelFlag, "parallel", "p", 1, "number of files scanned in parallel")
	cmd.PersistentFlags().BoolVar(&noTUIFlag, "no-tui", false, "disable the interactive pager")
	cmd.PersistentFlags().BoolVarP(&verboseFlag, "verbose", "v", false, "enable debug logging on stderr")
	cmd.PersistentFlags().BoolVar(&logJSONFlag, "log-json", false, "write logs as JSON lines")

	return cmd
}

// setupWorkflow builds the workflow once the flags are known. A workflow
// installed beforehand is kept.
func setupWorkflow(cmd *cobra.Command) error {
	if workflow != nil {
		return nil
	}

	logger := logging.New(logging.Config{
		Verbose: verboseFlag,
		JSON:    logJSONFlag,
		Output:  cmd.ErrOrStderr(),
	})

	// The pager would block between watch iterations.
	interactive := !noTUIFlag && cmd.Name() != watchCmdName && controller.IsTTY(cmd.OutOrStdout())

	workflow = domain.NewWorkflow(
		sourceFSAdapter,
		pythonAdapter,
		javascriptAdapter,
		xmlAdapter,
		reportStore,
		adapter.NewLocalWatcher(sourceFSAdapter, logger),
		controller.NewUI(cmd, interactive),
		logger,
	)

	return nil
}

func parseRunArgs(args []string) (domain.RunArgs, error) {
	format, ok := m.ParseFormat(formatFlag)
	if !ok {
		return domain.RunArgs{}, fmt.Errorf("invalid --format %q: want text, json or yaml", formatFlag)
	}

	if parallelFlag < 1 {
		return domain.RunArgs{}, fmt.Errorf("invalid --parallel %d: must be at least 1", parallelFlag)
	}

	root := m.Path(".")
	if len(args) > 0 {
		root = m.Path(args[0])
	}

	return domain.RunArgs{
		ScanArgs: domain.ScanArgs{Root: root, Parallel: parallelFlag},
		Format:   format,
		Output:   m.Path(outputFlag),
	}, nil
}

// Execute adds all child commands to the root command and sets flags appropriately.
// This is called by main.main(). It only needs to happen once to the rootCmd.
func Execute() {
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	err := rootCmd.ExecuteContext(ctx)
	stop()

	if code := exitCode(rootCmd, err); code != 0 {
		os.Exit(code)
	}
}

// exitCode maps a command error to the process exit code. Findings were
// already reported, anything else is printed.
func exitCode(cmd *cobra.Command, err error) int {
	if err == nil {
		return 0
	}

	if !errors.Is(err, domain.ErrFindings) {
		cmd.PrintErrln("Error:", err)
	}

	return 1
}
