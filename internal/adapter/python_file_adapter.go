package adapter

import (
	"context"
	"errors"
	"fmt"

	sitter "github.com/smacker/go-tree-sitter"
	"github.com/smacker/go-tree-sitter/python"
)

// ErrSyntax is wrapped by SyntaxError so callers can test with errors.Is.
var ErrSyntax = errors.New("syntax error")

// SyntaxError reports the first line tree-sitter could not parse.
type SyntaxError struct {
	Line int
}

func (e *SyntaxError) Error() string {
	return fmt.Sprintf("syntax error near line %d", e.Line)
}

// Unwrap lets errors.Is match ErrSyntax.
func (e *SyntaxError) Unwrap() error {
	return ErrSyntax
}

// PythonFileAdapter encapsulates Python parsing so the domain layer works on
// syntax trees without knowing how they are produced.
type PythonFileAdapter interface {
	// Parse builds a syntax tree for src. The caller must Close the tree.
	// A source with syntax errors yields a *SyntaxError and no tree.
	Parse(ctx context.Context, src []byte) (*sitter.Tree, error)

	// ParseTolerant builds a syntax tree even when src has syntax errors, so
	// comment and string ranges stay available. Use CheckSyntax on its root.
	ParseTolerant(ctx context.Context, src []byte) (*sitter.Tree, error)
}

// LocalPythonFileAdapter provides a PythonFileAdapter backed by tree-sitter.
type LocalPythonFileAdapter struct{}

// NewLocalPythonFileAdapter constructs a LocalPythonFileAdapter.
func NewLocalPythonFileAdapter() *LocalPythonFileAdapter {
	return &LocalPythonFileAdapter{}
}

// Parse builds a tree-sitter tree and rejects sources with syntax errors.
func (a *LocalPythonFileAdapter) Parse(ctx context.Context, src []byte) (*sitter.Tree, error) {
	tree, err := a.ParseTolerant(ctx, src)
	if err != nil {
		return nil, err
	}

	if err := CheckSyntax(tree.RootNode()); err != nil {
		tree.Close()

		return nil, err
	}

	return tree, nil
}

// ParseTolerant builds a tree-sitter tree. A parser is created per call so
// the adapter is safe for concurrent use.
func (a *LocalPythonFileAdapter) ParseTolerant(ctx context.Context, src []byte) (*sitter.Tree, error) {
	tree, err := parseWith(ctx, python.GetLanguage(), src)
	if err != nil {
		return nil, fmt.Errorf("parsing python: %w", err)
	}

	return tree, nil
}

// CheckSyntax returns a *SyntaxError for the first broken line below root.
func CheckSyntax(root *sitter.Node) error {
	if !root.HasError() {
		return nil
	}

	return &SyntaxError{Line: firstErrorLine(root)}
}

func parseWith(ctx context.Context, lang *sitter.Language, src []byte) (*sitter.Tree, error) {
	parser := sitter.NewParser()
	defer parser.Close()

	parser.SetLanguage(lang)

	return parser.ParseCtx(ctx, nil, src)
}

func firstErrorLine(n *sitter.Node) int {
	if n.Type() == "ERROR" || n.IsMissing() {
		return int(n.StartPoint().Row) + 1
	}

	for i := 0; i < int(n.ChildCount()); i++ {
		child := n.Child(i)
		if child == nil || !child.HasError() && !child.IsMissing() {
			continue
		}

		return firstErrorLine(child)
	}

	return int(n.StartPoint().Row) + 1
}
