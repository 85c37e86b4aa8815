package model

// FileReport holds the diagnostics of one scanned file, in line order.
type FileReport struct {
	Path        Path         `json:"path" yaml:"path"`
	Diagnostics []Diagnostic `json:"diagnostics" yaml:"diagnostics"`
}

// Summary aggregates the counts of a run.
type Summary struct {
	Files    int `json:"files" yaml:"files"`
	Errors   int `json:"errors" yaml:"errors"`
	Warnings int `json:"warnings" yaml:"warnings"`
	Verified int `json:"verified" yaml:"verified"`
	Failed   int `json:"failed" yaml:"failed"`
}

// Report is the full outcome of a scan.
type Report struct {
	Root          Path           `json:"root" yaml:"root"`
	Files         []FileReport   `json:"files" yaml:"files"`
	Verifications []Verification `json:"verifications,omitempty" yaml:"verifications,omitempty"`
	Summary       Summary        `json:"summary" yaml:"summary"`
}

// Failed reports whether the run must exit non-zero.
func (r Report) Failed() bool {
	return r.Summary.Errors > 0
}

// Format selects how a report is rendered.
type Format string

// Supported report formats.
const (
	FormatText Format = "text"
	FormatJSON Format = "json"
	FormatYAML Format = "yaml"
)

// ParseFormat validates a user supplied format name.
func ParseFormat(s string) (Format, bool) {
	switch f := Format(s); f {
	case FormatText, FormatJSON, FormatYAML:
		return f, true
	default:
		return "", false
	}
}
