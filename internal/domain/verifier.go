package domain

import (
	"context"
	"errors"
	"fmt"
	"strings"

	sitter "github.com/smacker/go-tree-sitter"

	"github.com/burnlist/burnlist/internal/adapter"
	m "github.com/burnlist/burnlist/internal/model"
)

// Calls that show a web-asset test actually drives or renders the UI.
var uiInteractionCalls = []string{
	"click(", "contains(", "trigger:", "run:", "mountWithCleanup(", "expect(", "start_tour(",
}

// evidenceCalls are the calls a Python test must make to prove a bypass of
// the given category. Categories without an entry pass once the anchor resolves.
var evidenceCalls = map[m.Category][]string{
	m.CategoryCron:   {"_trigger"},
	m.CategorySearch: {"assertQueryCount"},
	m.CategoryView:   {"get_view", "_get_view", "_render", "_render_template", "render", "url_open", "start_tour"},
	m.CategoryXPath:  {"get_view", "_get_view", "_render", "_render_template", "render", "url_open", "start_tour"},
	m.CategoryMail:   {"send_mail", "message_post", "_message_log", "message_notify", "send"},
}

// evidenceKeywords are keyword arguments that count as evidence.
var evidenceKeywords = map[m.Category][]string{
	m.CategorySearch: {"limit"},
}

// Verifier checks that every anchored bypass is backed by a test.
type Verifier interface {
	Verify(ctx context.Context, session *Session) []m.Verification
}

type verifier struct {
	python adapter.PythonFileAdapter
}

// NewVerifier creates a Verifier that parses Python test files with python.
func NewVerifier(python adapter.PythonFileAdapter) Verifier {
	return &verifier{python: python}
}

// testLocation is where an anchor resolved: a test function, or a whole
// web-asset file when fn is nil.
type testLocation struct {
	path m.Path
	fn   *sitter.Node
	name string
	line int
}

type parsedTest struct {
	tree *sitter.Tree
	err  error
}

// verifyRun holds the parsed test files of one Verify call.
type verifyRun struct {
	ctx     context.Context
	v       *verifier
	session *Session
	paths   []m.Path
	parsed  map[m.Path]parsedTest
}

func (v *verifier) Verify(ctx context.Context, session *Session) []m.Verification {
	if len(session.Requests) == 0 {
		return nil
	}

	run := &verifyRun{
		ctx:     ctx,
		v:       v,
		session: session,
		paths:   session.TestPaths(),
		parsed:  map[m.Path]parsedTest{},
	}
	defer run.close()

	results := make([]m.Verification, 0, len(session.Requests))
	for _, req := range session.Requests {
		results = append(results, run.verify(req))
	}

	return results
}

func (r *verifyRun) close() {
	for _, p := range r.parsed {
		if p.tree != nil {
			p.tree.Close()
		}
	}
}

func (r *verifyRun) verify(req m.BypassRequest) m.Verification {
	fail := func(path m.Path, format string, args ...any) m.Verification {
		return m.Verification{Request: req, TestPath: path, Reason: fmt.Sprintf(format, args...)}
	}

	var (
		locations []testLocation
		outside   m.Path
	)

	found := false

	for _, path := range r.paths {
		lines := anchorLines(r.session.TestContents[path], req.Anchor)
		if len(lines) == 0 {
			continue
		}

		found = true

		if m.IsWebAsset(path) {
			locations = appendLocation(locations, testLocation{path: path})
			continue
		}

		root, err := r.root(path)
		if err != nil {
			var syntaxErr *adapter.SyntaxError
			if errors.As(err, &syntaxErr) {
				return fail(path, "test file has a syntax error near line %d", syntaxErr.Line)
			}

			return fail(path, "test file could not be parsed: %v", err)
		}

		for _, line := range lines {
			fn := enclosingFunction(root, line)
			if fn == nil {
				outside = path
				continue
			}

			locations = appendLocation(locations, testLocation{
				path: path,
				fn:   fn,
				name: nodeText(fn.ChildByFieldName("name"), []byte(r.session.TestContents[path])),
				line: nodeLine(fn),
			})
		}
	}

	switch {
	case !found:
		return fail("", "orphaned bypass: anchor [%s] not found in any test file", req.Anchor)
	case len(locations) == 0:
		return fail(outside, "anchor [%s] is not inside any test function", req.Anchor)
	case len(locations) > 1:
		return fail(locations[0].path, "ambiguous anchor [%s]: found in %d test locations", req.Anchor, len(locations))
	}

	loc := locations[0]

	if loc.fn == nil {
		content := r.session.TestContents[loc.path]
		if !containsAny(content, uiInteractionCalls) {
			return fail(loc.path, "web test for [%s] never interacts with the UI", req.Anchor)
		}

		return m.Verification{Request: req, OK: true, TestPath: loc.path}
	}

	category := req.Kind.Category()
	if !hasEvidence(loc.fn, []byte(r.session.TestContents[loc.path]), category) {
		return fail(loc.path, "test %s for [%s] lacks %s evidence: expected one of %s",
			loc.name, req.Anchor, category, strings.Join(evidenceNames(category), ", "))
	}

	return m.Verification{Request: req, OK: true, TestPath: loc.path}
}

func (r *verifyRun) root(path m.Path) (*sitter.Node, error) {
	p, ok := r.parsed[path]
	if !ok {
		p.tree, p.err = r.v.python.Parse(r.ctx, []byte(r.session.TestContents[path]))
		r.parsed[path] = p
	}

	if p.err != nil {
		return nil, p.err
	}

	return p.tree.RootNode(), nil
}

func appendLocation(locations []testLocation, loc testLocation) []testLocation {
	for _, l := range locations {
		if l.path == loc.path && l.line == loc.line {
			return locations
		}
	}

	return append(locations, loc)
}

// anchorLines returns the 1-based lines mentioning anchor as a whole word,
// skipping lines that carry a bypass marker themselves.
func anchorLines(content, anchor string) []int {
	var lines []int

	for i, line := range strings.Split(content, "\n") {
		if containsWord(line, anchor) && !isMarkerLine(line) {
			lines = append(lines, i+1)
		}
	}

	return lines
}

func containsWord(s, word string) bool {
	if word == "" {
		return false
	}

	for offset := 0; ; {
		idx := strings.Index(s[offset:], word)
		if idx < 0 {
			return false
		}

		start := offset + idx
		end := start + len(word)

		if (start == 0 || !isWordByte(s[start-1])) && (end == len(s) || !isWordByte(s[end])) {
			return true
		}

		offset = start + 1
	}
}

func isWordByte(b byte) bool {
	return b == '_' || b >= '0' && b <= '9' || b >= 'a' && b <= 'z' || b >= 'A' && b <= 'Z'
}

// enclosingFunction returns the innermost function_definition spanning line.
func enclosingFunction(root *sitter.Node, line int) *sitter.Node {
	var best *sitter.Node

	walkTree(root, func(n *sitter.Node) {
		if n.Type() != "function_definition" {
			return
		}

		if nodeLine(n) <= line && line <= nodeEndLine(n) {
			if best == nil || n.StartByte() >= best.StartByte() {
				best = n
			}
		}
	})

	return best
}

func hasEvidence(fn *sitter.Node, src []byte, category m.Category) bool {
	calls, keywords := evidenceCalls[category], evidenceKeywords[category]
	if len(calls) == 0 && len(keywords) == 0 {
		return true
	}

	found := false

	walkTree(fn, func(n *sitter.Node) {
		if found {
			return
		}

		switch n.Type() {
		case "call":
			found = containsString(calls, callName(n, src))
		case "keyword_argument":
			found = containsString(keywords, nodeText(n.ChildByFieldName("name"), src))
		}
	})

	return found
}

func evidenceNames(category m.Category) []string {
	names := append([]string{}, evidenceCalls[category]...)
	for _, kw := range evidenceKeywords[category] {
		names = append(names, kw+"=")
	}

	return names
}

func containsString(list []string, s string) bool {
	for _, item := range list {
		if item == s {
			return true
		}
	}

	return false
}

func containsAny(s string, needles []string) bool {
	for _, needle := range needles {
		if strings.Contains(s, needle) {
			return true
		}
	}

	return false
}
