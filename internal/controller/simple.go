package controller

import (
	"fmt"

	"github.com/spf13/cobra"

	m "github.com/burnlist/burnlist/internal/model"
)

// SimpleUI implements UI with plain text on the command's output.
type SimpleUI struct {
	cmd *cobra.Command
}

// NewSimpleUI creates a new SimpleUI.
func NewSimpleUI(cmd *cobra.Command) *SimpleUI {
	return &SimpleUI{cmd: cmd}
}

// DisplayReport prints the report without styling.
func (s *SimpleUI) DisplayReport(report m.Report) error {
	renderReport(s.cmd.OutOrStdout(), report, plainPalette())
	return nil
}

// DisplayDocument prints an encoded report as is.
func (s *SimpleUI) DisplayDocument(doc []byte) error {
	_, err := s.cmd.OutOrStdout().Write(doc)
	return err
}

// DisplayRules prints the rule catalogue table.
func (s *SimpleUI) DisplayRules(rules []m.RuleInfo) error {
	renderRules(s.cmd.OutOrStdout(), rules)
	return nil
}

// DisplayWatchEvent announces a rescan.
func (s *SimpleUI) DisplayWatchEvent(changed []m.Path) {
	s.printf("%s\n", watchEventLine(changed))
}

func (s *SimpleUI) printf(format string, args ...interface{}) {
	_, _ = fmt.Fprintf(s.cmd.OutOrStdout(), format, args...)
}
