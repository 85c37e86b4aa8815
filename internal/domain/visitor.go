package domain

import (
	"strings"

	sitter "github.com/smacker/go-tree-sitter"

	m "github.com/burnlist/burnlist/internal/model"
)

// strictSudoFile is the one module allowed to escalate privileges, and only
// from strictSudoHelpers.
const strictSudoFile = "utils/security.py"

var strictSudoHelpers = map[string]bool{
	"_get_system_parameter": true,
	"_ensure_public_user":   true,
}

// binding is what a local name was last assigned. taint is set directly for
// augmented assignments that grow a string in place.
type binding struct {
	value *sitter.Node
	taint string
}

// scope is the per-function state. Entering a function pushes a fresh scope
// and leaving it restores the previous one.
type scope struct {
	bindings   map[string]binding
	funcName   string
	decorators []string
	kwargsName string
	controller bool
	loopDepth  int
	inClass    bool
}

// visitor walks one Python syntax tree and collects diagnostics.
type visitor struct {
	path        m.Path
	src         []byte
	lines       []string
	markers     markerIndex
	strict      bool
	scope       scope
	pending     []string // decorators of the definition about to be visited
	diagnostics []m.Diagnostic
}

func newVisitor(path m.Path, src []byte, markers markerIndex) *visitor {
	if markers == nil {
		markers = markerIndex{}
	}

	return &visitor{
		path:    path,
		src:     src,
		lines:   strings.Split(string(src), "\n"),
		markers: markers,
		strict:  strings.HasSuffix(strings.ReplaceAll(string(path), "\\", "/"), strictSudoFile),
		scope:   scope{bindings: map[string]binding{}},
	}
}

// VisitPython runs the AST checks over a parsed Python file. markers are the
// bypass markers found by the line pass over the same content.
func VisitPython(path m.Path, src []byte, root *sitter.Node, markers LineScan) []m.Diagnostic {
	v := newVisitor(path, src, markers.markers)
	v.visit(root)

	return v.diagnostics
}

func (v *visitor) snippet(line int) string {
	if line < 1 || line > len(v.lines) {
		return ""
	}

	return strings.TrimSpace(strings.TrimSuffix(v.lines[line-1], "\r"))
}

// emit records a diagnostic unless the line carries an audit marker for its category.
func (v *visitor) emit(severity m.Severity, line int, category m.Category, message string) {
	if v.markers.suppresses(line, category) {
		return
	}

	v.diagnostics = append(v.diagnostics, m.Diagnostic{
		Severity: severity,
		Path:     v.path,
		Line:     line,
		Message:  message,
		Snippet:  v.snippet(line),
		Category: category,
	})
}

func (v *visitor) errorf(line int, category m.Category, message string) {
	v.emit(m.SeverityError, line, category, message)
}

func (v *visitor) warnf(line int, category m.Category, message string) {
	v.emit(m.SeverityWarning, line, category, message)
}

func (v *visitor) visit(n *sitter.Node) {
	if n == nil {
		return
	}

	switch n.Type() {
	case "decorated_definition":
		v.visitDecorated(n)
		return
	case "function_definition":
		v.visitFunction(n)
		return
	case "class_definition":
		v.visitClass(n)
		return
	case "for_statement":
		v.visitFor(n)
		return
	case "assignment":
		v.checkAssignment(n)
	case "augmented_assignment":
		v.checkAugmentedAssignment(n)
	case "call":
		v.checkCall(n)
	case "attribute":
		v.checkAttribute(n)
	case "import_statement":
		v.checkImport(n)
	case "import_from_statement":
		v.checkImportFrom(n)
	case "dictionary":
		v.checkDictionary(n)
	case "except_clause":
		v.checkExcept(n)
	case "keyword_argument":
		v.checkKeyword(n)
	}

	v.visitChildren(n)
}

func (v *visitor) visitChildren(n *sitter.Node) {
	for i := 0; i < int(n.ChildCount()); i++ {
		v.visit(n.Child(i))
	}
}

func (v *visitor) visitDecorated(n *sitter.Node) {
	var names []string

	for i := 0; i < int(n.NamedChildCount()); i++ {
		child := n.NamedChild(i)
		if child.Type() != "decorator" {
			continue
		}

		name := decoratorName(child, v.src)
		names = append(names, name)

		if deprecatedDecorators[name] {
			v.errorf(nodeLine(child), m.CategoryNone,
				"Deprecated decorator @"+name+" was removed from the ORM")
		}

		// Decorator arguments are ordinary expressions.
		v.visitChildren(child)
	}

	v.pending = names
	v.visit(n.ChildByFieldName("definition"))
	v.pending = nil
}

func (v *visitor) visitFunction(n *sitter.Node) {
	nameNode := n.ChildByFieldName("name")
	name := nodeText(nameNode, v.src)
	params := n.ChildByFieldName("parameters")

	if newName, ok := renamedAPIs[name]; ok {
		v.errorf(nodeLine(nameNode), m.CategoryNone, renamedMessage(name, newName))
	}

	decorators := v.pending
	v.pending = nil

	saved := v.scope
	v.scope = scope{
		bindings:   map[string]binding{},
		funcName:   name,
		decorators: decorators,
		kwargsName: catchAllKwargs(params, v.src),
		controller: isController(decorators),
	}

	v.visit(params)
	v.visit(n.ChildByFieldName("body"))

	v.scope = saved
}

func (v *visitor) visitClass(n *sitter.Node) {
	v.pending = nil

	saved := v.scope.inClass
	savedFunc := v.scope.funcName
	v.scope.inClass = true
	v.scope.funcName = ""

	v.visitChildren(n)

	v.scope.inClass = saved
	v.scope.funcName = savedFunc
}

func (v *visitor) visitFor(n *sitter.Node) {
	right := n.ChildByFieldName("right")
	v.visit(n.ChildByFieldName("left"))
	v.visit(right)

	depth := v.scope.loopDepth
	if !v.isChunkingLoop(right) {
		v.scope.loopDepth++
	}

	v.visit(n.ChildByFieldName("body"))
	v.scope.loopDepth = depth

	v.visit(n.ChildByFieldName("alternative"))
}

// isChunkingLoop matches range(start, stop, chunk_size) style batching loops.
func (v *visitor) isChunkingLoop(iter *sitter.Node) bool {
	if nodeType(iter) != "call" || nodeText(iter.ChildByFieldName("function"), v.src) != "range" {
		return false
	}

	args := positionalArgs(iter)
	if len(args) != 3 || args[2].Type() != "identifier" {
		return false
	}

	step := strings.ToLower(nodeText(args[2], v.src))

	return step == "chunk_size" || step == "batch_size"
}

func isController(decorators []string) bool {
	for _, d := range decorators {
		if d == "route" || d == "http.route" || strings.HasSuffix(d, ".route") {
			return true
		}
	}

	return false
}

func (v *visitor) hasDecorator(names ...string) bool {
	for _, d := range v.scope.decorators {
		for _, name := range names {
			if d == name {
				return true
			}
		}
	}

	return false
}
