package domain

import (
	"strings"

	sitter "github.com/smacker/go-tree-sitter"
)

// Helpers over tree-sitter Python nodes. All of them tolerate nil nodes.

func nodeText(n *sitter.Node, src []byte) string {
	if n == nil {
		return ""
	}

	return n.Content(src)
}

func nodeLine(n *sitter.Node) int {
	return int(n.StartPoint().Row) + 1
}

func nodeEndLine(n *sitter.Node) int {
	return int(n.EndPoint().Row) + 1
}

func nodeType(n *sitter.Node) string {
	if n == nil {
		return ""
	}

	return n.Type()
}

// lastSegment returns "b" for "a.b" and "a" for "a".
func lastSegment(dotted string) string {
	if idx := strings.LastIndexByte(dotted, '.'); idx >= 0 {
		return dotted[idx+1:]
	}

	return dotted
}

// callName returns the called name: the attribute for x.f(), the identifier for f().
func callName(call *sitter.Node, src []byte) string {
	fn := call.ChildByFieldName("function")

	switch nodeType(fn) {
	case "identifier":
		return nodeText(fn, src)
	case "attribute":
		return nodeText(fn.ChildByFieldName("attribute"), src)
	default:
		return ""
	}
}

// callReceiver returns x for x.f() and nil otherwise.
func callReceiver(call *sitter.Node) *sitter.Node {
	fn := call.ChildByFieldName("function")
	if nodeType(fn) != "attribute" {
		return nil
	}

	return fn.ChildByFieldName("object")
}

// positionalArgs returns the plain positional arguments of a call.
func positionalArgs(call *sitter.Node) []*sitter.Node {
	args := call.ChildByFieldName("arguments")
	if nodeType(args) != "argument_list" {
		return nil
	}

	var out []*sitter.Node

	for i := 0; i < int(args.NamedChildCount()); i++ {
		arg := args.NamedChild(i)

		switch arg.Type() {
		case "keyword_argument", "list_splat", "dictionary_splat", "comment":
			continue
		}

		out = append(out, arg)
	}

	return out
}

// keywordArg returns the value of name=... in a call, or nil.
func keywordArg(call *sitter.Node, name string, src []byte) *sitter.Node {
	args := call.ChildByFieldName("arguments")
	if nodeType(args) != "argument_list" {
		return nil
	}

	for i := 0; i < int(args.NamedChildCount()); i++ {
		arg := args.NamedChild(i)
		if arg.Type() != "keyword_argument" {
			continue
		}

		if nodeText(arg.ChildByFieldName("name"), src) == name {
			return arg.ChildByFieldName("value")
		}
	}

	return nil
}

// dictionarySplats returns the expressions unpacked with ** in a call.
func dictionarySplats(call *sitter.Node) []*sitter.Node {
	args := call.ChildByFieldName("arguments")
	if nodeType(args) != "argument_list" {
		return nil
	}

	var out []*sitter.Node

	for i := 0; i < int(args.NamedChildCount()); i++ {
		arg := args.NamedChild(i)
		if arg.Type() == "dictionary_splat" && arg.NamedChildCount() > 0 {
			out = append(out, arg.NamedChild(0))
		}
	}

	return out
}

// isFString reports whether a string node carries an f prefix.
func isFString(n *sitter.Node, src []byte) bool {
	text := nodeText(n, src)
	quote := strings.IndexAny(text, `"'`)

	if quote <= 0 {
		return false
	}

	return strings.ContainsAny(text[:quote], "fF")
}

// stringValue returns the literal body of a string or concatenated_string node.
func stringValue(n *sitter.Node, src []byte) string {
	if nodeType(n) == "concatenated_string" {
		var b strings.Builder
		for i := 0; i < int(n.NamedChildCount()); i++ {
			b.WriteString(stringValue(n.NamedChild(i), src))
		}

		return b.String()
	}

	text := nodeText(n, src)

	quote := strings.IndexAny(text, `"'`)
	if quote < 0 {
		return ""
	}

	body := text[quote:]

	for _, delim := range []string{`"""`, `'''`, `"`, `'`} {
		if strings.HasPrefix(body, delim) && strings.HasSuffix(body, delim) && len(body) >= 2*len(delim) {
			return body[len(delim) : len(body)-len(delim)]
		}
	}

	return body
}

func isStringNode(n *sitter.Node) bool {
	switch nodeType(n) {
	case "string", "concatenated_string":
		return true
	default:
		return false
	}
}

// binaryOperator returns the operator token of a binary_operator node.
func binaryOperator(n *sitter.Node, src []byte) string {
	if op := n.ChildByFieldName("operator"); op != nil {
		return nodeText(op, src)
	}

	return ""
}

// decoratorName returns "api.constrains" for @api.constrains('x') and @api.constrains.
func decoratorName(decorator *sitter.Node, src []byte) string {
	if decorator.NamedChildCount() == 0 {
		return ""
	}

	expr := decorator.NamedChild(0)
	if expr.Type() == "call" {
		return nodeText(expr.ChildByFieldName("function"), src)
	}

	return nodeText(expr, src)
}

// catchAllKwargs returns the name bound by **name in a parameter list.
func catchAllKwargs(params *sitter.Node, src []byte) string {
	if params == nil {
		return ""
	}

	for i := 0; i < int(params.NamedChildCount()); i++ {
		p := params.NamedChild(i)
		if p.Type() == "dictionary_splat_pattern" && p.NamedChildCount() > 0 {
			return nodeText(p.NamedChild(0), src)
		}
	}

	return ""
}

// enclosingCall returns the call whose argument list directly holds n.
func enclosingCall(n *sitter.Node) *sitter.Node {
	args := n.Parent()
	if nodeType(args) != "argument_list" {
		return nil
	}

	call := args.Parent()
	if nodeType(call) != "call" {
		return nil
	}

	return call
}

// walkTree calls fn for n and every descendant in source order.
func walkTree(n *sitter.Node, fn func(*sitter.Node)) {
	if n == nil {
		return
	}

	fn(n)

	for i := 0; i < int(n.ChildCount()); i++ {
		walkTree(n.Child(i), fn)
	}
}
