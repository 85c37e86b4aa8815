package domain

import (
	sitter "github.com/smacker/go-tree-sitter"

	m "github.com/burnlist/burnlist/internal/model"
)

const (
	taintFString       = "f-string"
	taintInterpolation = "% interpolation"
	taintConcatenation = "+ concatenation"
	taintFormat        = ".format()"
)

// taint returns how expr builds a string from dynamic parts, or "" when it
// is a constant or an opaque value. Identifiers follow their bindings.
func (v *visitor) taint(expr *sitter.Node) string {
	return v.taintOf(expr, map[string]bool{})
}

func (v *visitor) taintOf(expr *sitter.Node, visited map[string]bool) string {
	switch nodeType(expr) {
	case "string":
		if isFString(expr, v.src) {
			return taintFString
		}
	case "concatenated_string":
		for i := 0; i < int(expr.NamedChildCount()); i++ {
			if isFString(expr.NamedChild(i), v.src) {
				return taintFString
			}
		}
	case "binary_operator":
		switch binaryOperator(expr, v.src) {
		case "%":
			return taintInterpolation
		case "+":
			return taintConcatenation
		}
	case "call":
		if callName(expr, v.src) == "format" && !isSQLComposition(callReceiver(expr), v.src) {
			return taintFormat
		}
	case "parenthesized_expression":
		if expr.NamedChildCount() > 0 {
			return v.taintOf(expr.NamedChild(0), visited)
		}
	case "identifier":
		name := nodeText(expr, v.src)
		if visited[name] {
			return ""
		}

		visited[name] = true

		b, ok := v.scope.bindings[name]
		if !ok {
			return ""
		}

		if b.taint != "" {
			return b.taint
		}

		return v.taintOf(b.value, visited)
	}

	return ""
}

// isSQLComposition matches SQL("...") receivers of .format().
func isSQLComposition(receiver *sitter.Node, src []byte) bool {
	return nodeType(receiver) == "call" && lastSegment(nodeText(receiver.ChildByFieldName("function"), src)) == "SQL"
}

func (v *visitor) checkAssignment(n *sitter.Node) {
	left := n.ChildByFieldName("left")
	right := n.ChildByFieldName("right")

	switch nodeType(left) {
	case "identifier":
		name := nodeText(left, v.src)
		if right != nil {
			v.scope.bindings[name] = binding{value: right}
		}

		if name == "_sql_constraints" && v.scope.inClass && v.scope.funcName == "" {
			v.warnf(nodeLine(left), m.CategoryNone,
				"_sql_constraints is deprecated; declare models.Constraint attributes instead")
		}
	case "subscript":
		key := left.ChildByFieldName("subscript")
		if isStringNode(key) && uiFeedbackKeys[stringValue(key, v.src)] {
			v.checkTranslated(right)
		}
	}
}

func (v *visitor) checkAugmentedAssignment(n *sitter.Node) {
	left := n.ChildByFieldName("left")
	if nodeType(left) != "identifier" {
		return
	}

	name := nodeText(left, v.src)

	switch nodeText(n.ChildByFieldName("operator"), v.src) {
	case "+=":
		v.scope.bindings[name] = binding{taint: taintConcatenation}
	case "%=":
		v.scope.bindings[name] = binding{taint: taintInterpolation}
	}
}
