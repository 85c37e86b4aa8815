package domain

import (
	"context"
	"errors"
	"fmt"
	"sort"
	"strings"

	"github.com/burnlist/burnlist/internal/adapter"
	m "github.com/burnlist/burnlist/internal/model"
)

// fileScan is the outcome of scanning one source file.
type fileScan struct {
	source      m.Source
	content     string
	diagnostics []m.Diagnostic
	requests    []m.BypassRequest
}

// scanSource reads one file and runs the line pass, then the structural
// checks for its kind. Problems reading or parsing the file become
// diagnostics so the rest of the tree is still scanned.
func (w *workflow) scanSource(ctx context.Context, source m.Source) fileScan {
	result := fileScan{source: source}

	if source.WalkErr != nil {
		w.logger.Warn("walking source failed", "path", source.Path, "error", source.WalkErr)
		result.diagnostics = []m.Diagnostic{
			m.NewError(source.Path, 0, m.CategoryNone, fmt.Sprintf("unreadable path: %v", source.WalkErr), ""),
		}

		return result
	}

	data, err := w.fsAdapter.ReadFile(source.Path)
	if err != nil {
		w.logger.Warn("reading source failed", "path", source.Path, "error", err)
		result.diagnostics = []m.Diagnostic{
			m.NewError(source.Path, 0, m.CategoryNone, fmt.Sprintf("unreadable file: %v", err), ""),
		}

		return result
	}

	content := string(data)
	if source.IsTest {
		result.content = content
	}

	// Test pages are evidence only.
	if source.Kind == m.KindOther {
		return result
	}

	switch source.Kind {
	case m.KindPython:
		result.diagnostics, result.requests = w.scanPython(ctx, source.Path, data)
	case m.KindXML:
		scan := w.engine.ScanLines(source.Path, source.Kind, content)
		result.diagnostics, result.requests = scan.Diagnostics, scan.Requests

		if d, ok := w.validateXML(source.Path, data); ok {
			result.diagnostics = append(result.diagnostics, d)
		}
	case m.KindJavaScript, m.KindOther:
		scan := w.engine.ScanLines(source.Path, source.Kind, content)
		result.diagnostics, result.requests = scan.Diagnostics, scan.Requests
	}

	sort.SliceStable(result.diagnostics, func(i, j int) bool {
		return result.diagnostics[i].Line < result.diagnostics[j].Line
	})

	w.logger.Debug("scanned", "path", source.Path, "diagnostics", len(result.diagnostics), "requests", len(result.requests))

	return result
}

// scanPython parses the file once and shares the tree between the line pass
// and the structural checks, which are skipped when the file does not parse.
func (w *workflow) scanPython(ctx context.Context, path m.Path, data []byte) ([]m.Diagnostic, []m.BypassRequest) {
	tree, err := w.pythonAdapter.ParseTolerant(ctx, data)
	if err != nil {
		w.logger.Warn("parsing python failed", "path", path, "error", err)

		scan := w.engine.ScanLines(path, m.KindPython, string(data))
		diagnostics := append(scan.Diagnostics,
			m.NewError(path, 0, m.CategoryNone, fmt.Sprintf("parse failure: %v", err), ""))

		return diagnostics, scan.Requests
	}
	defer tree.Close()

	root := tree.RootNode()
	scan := w.engine.ScanTree(path, m.KindPython, string(data), root)

	var syntaxErr *adapter.SyntaxError
	if errors.As(adapter.CheckSyntax(root), &syntaxErr) {
		w.logger.Debug("python syntax error", "path", path, "line", syntaxErr.Line)

		diagnostics := append(scan.Diagnostics, m.NewError(path, syntaxErr.Line, m.CategoryNone,
			"syntax error: file could not be parsed, structural checks skipped", lineAt(data, syntaxErr.Line)))

		return diagnostics, scan.Requests
	}

	return append(scan.Diagnostics, VisitPython(path, data, root, scan)...), scan.Requests
}

func (w *workflow) validateXML(path m.Path, data []byte) (m.Diagnostic, bool) {
	err := w.xmlAdapter.Validate(data)
	if err == nil {
		return m.Diagnostic{}, false
	}

	var malformed *adapter.MalformedXMLError
	if errors.As(err, &malformed) {
		return m.NewError(path, malformed.Line, m.CategoryNone,
			"malformed XML: "+malformed.Reason, lineAt(data, malformed.Line)), true
	}

	return m.NewError(path, 0, m.CategoryNone, fmt.Sprintf("malformed XML: %v", err), ""), true
}

// lineAt returns the trimmed 1-based line of data, or "".
func lineAt(data []byte, line int) string {
	if line < 1 {
		return ""
	}

	current := 1
	start := 0

	for i, b := range data {
		if b != '\n' {
			continue
		}

		if current == line {
			return trimSnippet(string(data[start:i]))
		}

		current++
		start = i + 1
	}

	if current == line {
		return trimSnippet(string(data[start:]))
	}

	return ""
}

func trimSnippet(s string) string {
	return strings.TrimSpace(strings.TrimSuffix(s, "\r"))
}
