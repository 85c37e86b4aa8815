package domain

import (
	"context"
	"regexp"
	"strings"

	sitter "github.com/smacker/go-tree-sitter"

	"github.com/burnlist/burnlist/internal/adapter"
	"github.com/burnlist/burnlist/internal/domain/rules"
	m "github.com/burnlist/burnlist/internal/model"
)

const viewMandateMessage = "UI tour mandate: every view/template must be linked to a frontend test " +
	"(add <!-- verified-by: [anchor] --> or audit-ignore-view before the closing tag)"

var (
	recordOpenRe    = regexp.MustCompile(`<record\b[^>]*\bmodel=["']([^"']+)["']`)
	recordCloseRe   = regexp.MustCompile(`</record\s*>`)
	templateOpenRe  = regexp.MustCompile(`<template\b`)
	templateSelfRe  = regexp.MustCompile(`<template\b[^>]*/>`)
	templateCloseRe = regexp.MustCompile(`</template\s*>`)
	searchOpenRe    = regexp.MustCompile(`<search\b`)
	searchCloseRe   = regexp.MustCompile(`</search\s*>|<search\b[^>]*/>`)
	blockTagStartRe = regexp.MustCompile(`<(?:record|template)\b`)
)

// Engine applies the line rule tables and tracks per-file line state.
// Python and JavaScript comments are located with their syntax trees.
type Engine struct {
	errors     []m.Rule
	warnings   []m.Rule
	python     adapter.PythonFileAdapter
	javascript adapter.JavaScriptFileAdapter
}

// NewEngine creates an Engine over the given ordered rule tables. A nil
// parser leaves that language's lines unmasked.
func NewEngine(
	errors, warnings []m.Rule,
	python adapter.PythonFileAdapter,
	javascript adapter.JavaScriptFileAdapter,
) *Engine {
	return &Engine{errors: errors, warnings: warnings, python: python, javascript: javascript}
}

// LineScan is the outcome of scanning the physical lines of one file.
type LineScan struct {
	Diagnostics []m.Diagnostic
	Requests    []m.BypassRequest
	markers     markerIndex
}

// viewBlock is an open <record model="ir.ui.view"> or <template> block.
type viewBlock struct {
	line     int
	snippet  string
	template bool
	linked   bool
}

// pendingTag is a <record> or <template> start tag spread over several lines.
type pendingTag struct {
	line    int
	snippet string
	text    string
}

type lineState struct {
	xmlComment  bool
	pending     *pendingTag
	model       string
	inSearch    bool
	closeRecord bool
	closeSearch bool
	view        *viewBlock
	diagnostics []m.Diagnostic
	requests    []m.BypassRequest
	markers     markerIndex
	path        m.Path
}

// ScanLines runs the line rules and the line state machine over content,
// parsing it first when its language has a grammar.
func (e *Engine) ScanLines(path m.Path, kind m.FileKind, content string) LineScan {
	return e.ScanTree(path, kind, content, nil)
}

// ScanTree is ScanLines over an already parsed root. A nil root makes the
// engine parse content itself.
func (e *Engine) ScanTree(path m.Path, kind m.FileKind, content string, root *sitter.Node) LineScan {
	st := &lineState{
		markers: markerIndex{},
		path:    path,
	}

	codeLines := strings.Split(e.code(kind, content, root), "\n")

	for i, line := range strings.Split(content, "\n") {
		lineNo := i + 1
		line = strings.TrimSuffix(line, "\r")

		lm := parseMarkers(line)
		if !lm.empty() {
			st.markers[lineNo] = lm
			requests, diags := checkMarkers(path, lineNo, line, lm)
			st.requests = append(st.requests, requests...)
			st.diagnostics = append(st.diagnostics, diags...)
		}

		var code string

		switch kind {
		case m.KindPython, m.KindJavaScript:
			code = strings.TrimSuffix(codeLines[i], "\r")
		case m.KindXML:
			code = st.xmlCode(line)
			st.trackXML(lineNo, line, code, lm)
		default:
			continue
		}

		if strings.TrimSpace(code) != "" {
			e.applyRules(st, e.errors, m.SeverityError, lineNo, line, code, lm)
			e.applyRules(st, e.warnings, m.SeverityWarning, lineNo, line, code, lm)
		}

		st.settle()
	}

	if st.view != nil && !st.view.linked {
		st.diagnostics = append(st.diagnostics,
			m.NewError(path, st.view.line, m.CategoryNone, viewMandateMessage, st.view.snippet))
	}

	return LineScan{
		Diagnostics: st.diagnostics,
		Requests:    st.requests,
		markers:     st.markers,
	}
}

func (e *Engine) applyRules(
	st *lineState,
	table []m.Rule,
	severity m.Severity,
	lineNo int,
	line, code string,
	lm lineMarkers,
) {
	for _, r := range table {
		if !r.AppliesTo(string(st.path)) {
			continue
		}

		switch r.Guard {
		case m.GuardResGroupsRecord:
			if st.model != "res.groups" {
				continue
			}
		case m.GuardSearchView:
			if !st.inSearch {
				continue
			}
		case m.GuardNone:
		}

		if !r.Pattern.MatchString(code) {
			continue
		}

		if rules.Exempt(string(st.path), r.ID) || lm.suppresses(r.Category) {
			continue
		}

		st.diagnostics = append(st.diagnostics, m.Diagnostic{
			Severity: severity,
			Path:     st.path,
			Line:     lineNo,
			Message:  r.Message,
			Snippet:  strings.TrimSpace(line),
			Category: r.Category,
		})
	}
}

// code returns content with comments blanked out, plus the bodies of
// Python triple-quoted strings. Byte offsets and line breaks are kept.
func (e *Engine) code(kind m.FileKind, content string, root *sitter.Node) string {
	if root == nil {
		tree := e.parse(kind, []byte(content))
		if tree == nil {
			return content
		}
		defer tree.Close()

		root = tree.RootNode()
	}

	masked := []byte(content)

	walkTree(root, func(n *sitter.Node) {
		switch n.Type() {
		case "comment":
			blank(masked, n.StartByte(), n.EndByte())
		case "string":
			if kind == m.KindPython {
				if from, to, ok := tripleQuotedBody(masked, n); ok {
					blank(masked, from, to)
				}
			}
		}
	})

	return string(masked)
}

func (e *Engine) parse(kind m.FileKind, src []byte) *sitter.Tree {
	var (
		tree *sitter.Tree
		err  error
	)

	switch {
	case kind == m.KindPython && e.python != nil:
		tree, err = e.python.ParseTolerant(context.Background(), src)
	case kind == m.KindJavaScript && e.javascript != nil:
		tree, err = e.javascript.Parse(context.Background(), src)
	default:
		return nil
	}

	if err != nil {
		return nil
	}

	return tree
}

// tripleQuotedBody returns the byte range between the delimiters of a
// triple-quoted string node.
func tripleQuotedBody(src []byte, n *sitter.Node) (uint32, uint32, bool) {
	start, end := n.StartByte(), n.EndByte()
	text := string(src[start:end])

	quote := strings.IndexAny(text, `"'`)
	if quote < 0 || len(text) < quote+6 {
		return 0, 0, false
	}

	delim := text[quote : quote+3]
	if delim != `"""` && delim != `'''` {
		return 0, 0, false
	}

	return start + uint32(quote) + 3, end - 3, true
}

// blank replaces src[from:to] with spaces, keeping line breaks.
func blank(src []byte, from, to uint32) {
	for i := from; i < to && int(i) < len(src); i++ {
		if src[i] != '\n' && src[i] != '\r' {
			src[i] = ' '
		}
	}
}

// xmlCode strips XML comments, which may span several lines.
func (st *lineState) xmlCode(line string) string {
	var b strings.Builder

	rest := line
	for rest != "" {
		if st.xmlComment {
			end := strings.Index(rest, "-->")
			if end < 0 {
				return b.String()
			}

			rest = rest[end+3:]
			st.xmlComment = false

			continue
		}

		start := strings.Index(rest, "<!--")
		if start < 0 {
			b.WriteString(rest)
			break
		}

		b.WriteString(rest[:start])
		rest = rest[start+4:]
		st.xmlComment = true
	}

	return b.String()
}

// trackXML follows record models, search views and view/template blocks.
// Markers are read from the raw line since they live in comments.
func (st *lineState) trackXML(lineNo int, raw, code string, lm lineMarkers) {
	tag, tagLine, tagSnippet := st.startTag(lineNo, raw, code)
	opened := false

	if match := recordOpenRe.FindStringSubmatch(tag); match != nil {
		st.model = match[1]
		if st.model == "ir.ui.view" && st.view == nil {
			st.view = &viewBlock{line: tagLine, snippet: tagSnippet}
			opened = true
		}
	}

	if st.view == nil && templateOpenRe.MatchString(tag) {
		st.view = &viewBlock{line: tagLine, snippet: tagSnippet, template: true}
		opened = true
	}

	if searchOpenRe.MatchString(code) {
		st.inSearch = true
	}

	if st.view != nil && lm.linksView() {
		st.view.linked = true
	}

	if searchCloseRe.MatchString(code) {
		st.closeSearch = true
	}

	if st.view != nil {
		var closed bool
		if st.view.template {
			closed = templateCloseRe.MatchString(code) || (opened && templateSelfRe.MatchString(tag))
		} else {
			closed = recordCloseRe.MatchString(code)
		}

		if closed {
			if !st.view.linked {
				st.diagnostics = append(st.diagnostics,
					m.NewError(st.path, st.view.line, m.CategoryNone, viewMandateMessage, st.view.snippet))
			}

			st.view = nil
		}
	}

	if recordCloseRe.MatchString(code) {
		st.closeRecord = true
	}
}

// startTag returns the text to match <record>/<template> start tags against,
// with the line and snippet where that text begins. A start tag left open at
// the end of a line is held back until its closing '>' so attributes on later
// lines are matched with it.
func (st *lineState) startTag(lineNo int, raw, code string) (string, int, string) {
	if st.pending != nil {
		st.pending.text += " " + code
		if !strings.Contains(code, ">") {
			return "", 0, ""
		}

		p := st.pending
		st.pending = nil

		return p.text, p.line, p.snippet
	}

	snippet := strings.TrimSpace(raw)

	loc := blockTagStartRe.FindStringIndex(code)
	if loc == nil || strings.Contains(code[loc[0]:], ">") {
		return code, lineNo, snippet
	}

	st.pending = &pendingTag{line: lineNo, snippet: snippet, text: code[loc[0]:]}

	return code[:loc[0]], lineNo, snippet
}

// settle applies the closing tags seen on the current line once its rules ran,
// so a one-line <record>...</record> is still guarded by its own model.
func (st *lineState) settle() {
	if st.closeRecord {
		st.model = ""
		st.closeRecord = false
	}

	if st.closeSearch {
		st.inSearch = false
		st.closeSearch = false
	}
}
