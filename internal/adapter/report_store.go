package adapter

import (
	"encoding/json"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strings"

	"gopkg.in/yaml.v3"

	m "github.com/burnlist/burnlist/internal/model"
)

// ReportStore encodes, persists and reloads scan reports.
type ReportStore interface {
	// Encode writes report to w in a structured format (json or yaml).
	Encode(w io.Writer, report m.Report, format m.Format) error
	// SaveReport writes report to path; the extension picks json or yaml.
	SaveReport(path m.Path, report m.Report) error
	// LoadReport reads a report previously written by SaveReport.
	LoadReport(path m.Path) (m.Report, error)
}

// LocalReportStore keeps reports on the local file system.
type LocalReportStore struct{}

// NewReportStore constructs a ReportStore implementation.
func NewReportStore() ReportStore {
	return &LocalReportStore{}
}

// Encode serializes report as json or yaml.
func (rs *LocalReportStore) Encode(w io.Writer, report m.Report, format m.Format) error {
	switch format {
	case m.FormatJSON:
		enc := json.NewEncoder(w)
		enc.SetIndent("", "  ")

		return enc.Encode(report)
	case m.FormatYAML:
		enc := yaml.NewEncoder(w)
		enc.SetIndent(2)

		if err := enc.Encode(report); err != nil {
			return err
		}

		return enc.Close()
	default:
		return fmt.Errorf("unsupported structured format %q", format)
	}
}

// SaveReport writes the report, creating parent directories as needed.
func (rs *LocalReportStore) SaveReport(path m.Path, report m.Report) error {
	target := string(path)

	if err := os.MkdirAll(filepath.Dir(target), 0o750); err != nil {
		return fmt.Errorf("create report directory: %w", err)
	}

	// #nosec G304 - path is the user-selected report destination
	f, err := os.Create(target)
	if err != nil {
		return fmt.Errorf("create report file: %w", err)
	}

	defer func() {
		_ = f.Close()
	}()

	if err := rs.Encode(f, report, formatForPath(target)); err != nil {
		return fmt.Errorf("write report %s: %w", target, err)
	}

	return nil
}

// LoadReport decodes a saved report.
func (rs *LocalReportStore) LoadReport(path m.Path) (m.Report, error) {
	data, err := os.ReadFile(string(path))
	if err != nil {
		return m.Report{}, fmt.Errorf("read report: %w", err)
	}

	var report m.Report

	if formatForPath(string(path)) == m.FormatJSON {
		err = json.Unmarshal(data, &report)
	} else {
		err = yaml.Unmarshal(data, &report)
	}

	if err != nil {
		return m.Report{}, fmt.Errorf("decode report %s: %w", path, err)
	}

	return report, nil
}

func formatForPath(path string) m.Format {
	if strings.EqualFold(filepath.Ext(path), ".json") {
		return m.FormatJSON
	}

	return m.FormatYAML
}
