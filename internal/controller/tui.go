package controller

import (
	"bytes"
	"fmt"
	"io"
	"os"
	"strings"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"
	"golang.org/x/term"

	m "github.com/burnlist/burnlist/internal/model"
)

// TUI implements UI with styled output and a pager for long reports.
type TUI struct {
	output io.Writer
}

// NewTUI creates a new TUI.
func NewTUI(output io.Writer) *TUI {
	return &TUI{output: output}
}

// DisplayReport renders a styled report, paging it when it does not fit.
func (t *TUI) DisplayReport(report m.Report) error {
	var buf bytes.Buffer

	renderReport(&buf, report, styledPalette())

	return t.page("burnlist "+string(report.Root), buf.String())
}

// DisplayDocument writes an encoded report as is.
func (t *TUI) DisplayDocument(doc []byte) error {
	_, err := t.output.Write(doc)
	return err
}

// DisplayRules renders the rule catalogue, paging it when it does not fit.
func (t *TUI) DisplayRules(rules []m.RuleInfo) error {
	var buf bytes.Buffer

	renderRules(&buf, rules)

	return t.page("burnlist rules", buf.String())
}

// DisplayWatchEvent announces a rescan.
func (t *TUI) DisplayWatchEvent(changed []m.Path) {
	style := lipgloss.NewStyle().Foreground(lipgloss.Color("12")).Bold(true)
	_, _ = fmt.Fprintln(t.output, style.Render(watchEventLine(changed)))
}

func (t *TUI) page(title, content string) error {
	model := newPagerModel(title, content)

	// Get initial terminal size
	if f, ok := t.output.(*os.File); ok {
		width, height, err := term.GetSize(int(f.Fd()))
		if err == nil {
			model.width = width
			model.height = height
		}
	}

	// Short content is printed directly
	if !model.needsPagination() {
		_, err := fmt.Fprint(t.output, content)
		return err
	}

	program := tea.NewProgram(model, tea.WithOutput(t.output), tea.WithAltScreen())
	if _, err := program.Run(); err != nil {
		return fmt.Errorf("running pager: %w", err)
	}

	return nil
}

func lineCount(s string) int {
	return strings.Count(strings.TrimRight(s, "\n"), "\n") + 1
}
