// Package model defines the data structures shared by the linter layers.
package model

// Severity classifies a diagnostic. Errors fail the run, warnings do not.
type Severity string

const (
	// SeverityError blocks the build.
	SeverityError Severity = "error"
	// SeverityWarning is reported for manual review only.
	SeverityWarning Severity = "warning"
)

// Glyph returns the report prefix for the severity.
func (s Severity) Glyph() string {
	if s == SeverityError {
		return "✖"
	}

	return "⚠"
}

// Diagnostic is a single finding. It is never mutated after creation.
type Diagnostic struct {
	Severity Severity `json:"severity" yaml:"severity"`
	Path     Path     `json:"path" yaml:"path"`
	Line     int      `json:"line" yaml:"line"`
	Message  string   `json:"message" yaml:"message"`
	Snippet  string   `json:"snippet,omitempty" yaml:"snippet,omitempty"`
	// Category is the bypass category that may suppress this finding on its line.
	Category Category `json:"category,omitempty" yaml:"category,omitempty"`
}

// IsError reports whether the diagnostic blocks the build.
func (d Diagnostic) IsError() bool {
	return d.Severity == SeverityError
}

// NewError builds an error-severity diagnostic.
func NewError(path Path, line int, category Category, message, snippet string) Diagnostic {
	return Diagnostic{
		Severity: SeverityError,
		Path:     path,
		Line:     line,
		Message:  message,
		Snippet:  snippet,
		Category: category,
	}
}

// NewWarning builds a warning-severity diagnostic.
func NewWarning(path Path, line int, category Category, message, snippet string) Diagnostic {
	return Diagnostic{
		Severity: SeverityWarning,
		Path:     path,
		Line:     line,
		Message:  message,
		Snippet:  snippet,
		Category: category,
	}
}
