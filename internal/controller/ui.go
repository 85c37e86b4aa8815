// Package controller renders scan reports and rule listings for the terminal.
package controller

import (
	m "github.com/burnlist/burnlist/internal/model"
)

// UI defines how results reach the user.
// Implementations can use different output methods (simple text, TUI, etc).
type UI interface {
	// DisplayReport renders a report for humans.
	DisplayReport(report m.Report) error
	// DisplayDocument writes an already encoded JSON or YAML report.
	DisplayDocument(doc []byte) error
	DisplayRules(rules []m.RuleInfo) error
	DisplayWatchEvent(changed []m.Path)
}
