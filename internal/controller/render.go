package controller

import (
	"bytes"
	"fmt"
	"io"
	"strings"

	"github.com/charmbracelet/lipgloss"
	"github.com/olekukonko/tablewriter"

	m "github.com/burnlist/burnlist/internal/model"
)

// palette styles the pieces of a rendered report.
type palette struct {
	heading func(string) string
	path    func(string) string
	err     func(string) string
	warn    func(string) string
	snippet func(string) string
	ok      func(string) string
}

func identity(s string) string { return s }

func plainPalette() palette {
	return palette{
		heading: identity,
		path:    identity,
		err:     identity,
		warn:    identity,
		snippet: identity,
		ok:      identity,
	}
}

func styledPalette() palette {
	render := func(style lipgloss.Style) func(string) string {
		return func(s string) string { return style.Render(s) }
	}

	return palette{
		heading: render(lipgloss.NewStyle().Bold(true)),
		path:    render(lipgloss.NewStyle().Foreground(lipgloss.Color("14")).Bold(true)),
		err:     render(lipgloss.NewStyle().Foreground(lipgloss.Color("9")).Bold(true)),
		warn:    render(lipgloss.NewStyle().Foreground(lipgloss.Color("11"))),
		snippet: render(lipgloss.NewStyle().Faint(true)),
		ok:      render(lipgloss.NewStyle().Foreground(lipgloss.Color("10"))),
	}
}

func (p palette) glyph(severity m.Severity) string {
	if severity == m.SeverityError {
		return p.err(severity.Glyph())
	}

	return p.warn(severity.Glyph())
}

// renderReport writes the human-readable report: findings per file, the
// bypass verification section, the summary line and a count table.
func renderReport(w io.Writer, report m.Report, p palette) {
	for _, file := range report.Files {
		_, _ = fmt.Fprintln(w, p.path(string(file.Path)))

		for _, d := range file.Diagnostics {
			_, _ = fmt.Fprintf(w, "  %s L%d: %s\n", p.glyph(d.Severity), d.Line, d.Message)
			if d.Snippet != "" {
				_, _ = fmt.Fprintf(w, "      %s\n", p.snippet("> "+d.Snippet))
			}
		}

		_, _ = fmt.Fprintln(w)
	}

	if len(report.Verifications) > 0 {
		_, _ = fmt.Fprintln(w, p.heading("Bypass verification"))

		for _, v := range report.Verifications {
			renderVerification(w, v, p)
		}

		_, _ = fmt.Fprintln(w)
	}

	s := report.Summary
	_, _ = fmt.Fprintf(w, "scan complete: %d error(s), %d warning(s) in %d file(s)\n", s.Errors, s.Warnings, s.Files)

	var tableBuffer bytes.Buffer

	table := tablewriter.NewWriter(&tableBuffer)
	table.SetHeader([]string{"Severity", "Count"})
	table.SetBorder(false)
	table.SetCenterSeparator("")
	table.SetColumnAlignment([]int{tablewriter.ALIGN_LEFT, tablewriter.ALIGN_RIGHT})
	table.Append([]string{"errors", fmt.Sprintf("%d", s.Errors-s.Failed)})
	table.Append([]string{"warnings", fmt.Sprintf("%d", s.Warnings)})
	table.Append([]string{"bypasses verified", fmt.Sprintf("%d", s.Verified)})
	table.Append([]string{"bypasses failed", fmt.Sprintf("%d", s.Failed)})
	table.SetFooter([]string{"blocking", fmt.Sprintf("%d", s.Errors)})
	table.Render()

	_, _ = fmt.Fprintf(w, "\n%s", tableBuffer.String())
}

func renderVerification(w io.Writer, v m.Verification, p palette) {
	req := v.Request
	where := fmt.Sprintf("%s:%d", req.Path, req.Line)

	if v.OK {
		_, _ = fmt.Fprintf(w, "  %s [%s] %s %s -> %s\n", p.ok("✔"), req.Anchor, req.Kind, where, v.TestPath)
		return
	}

	_, _ = fmt.Fprintf(w, "  %s [%s] %s %s: %s\n", p.err(m.SeverityError.Glyph()), req.Anchor, req.Kind, where, v.Reason)
}

// renderRules writes the rule catalogue as a table.
func renderRules(w io.Writer, rules []m.RuleInfo) {
	var tableBuffer bytes.Buffer

	table := tablewriter.NewWriter(&tableBuffer)
	table.SetHeader([]string{"ID", "Severity", "Scope", "Category", "Description"})
	table.SetBorder(false)
	table.SetCenterSeparator("")
	table.SetAutoWrapText(false)

	errors := 0

	for _, r := range rules {
		if r.Severity == m.SeverityError {
			errors++
		}

		table.Append([]string{r.ID, string(r.Severity), r.Scope, string(r.Category), r.Message})
	}

	table.SetFooter([]string{
		fmt.Sprintf("Total %d", len(rules)),
		fmt.Sprintf("%d errors", errors),
		"", "", "",
	})
	table.Render()

	_, _ = fmt.Fprint(w, tableBuffer.String())
}

func watchEventLine(changed []m.Path) string {
	names := make([]string, 0, len(changed))
	for _, p := range changed {
		names = append(names, string(p))
	}

	return fmt.Sprintf("change detected in %d file(s), rescanning: %s", len(changed), strings.Join(names, ", "))
}
