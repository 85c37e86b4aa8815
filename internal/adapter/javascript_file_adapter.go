package adapter

import (
	"context"
	"fmt"

	sitter "github.com/smacker/go-tree-sitter"
	"github.com/smacker/go-tree-sitter/javascript"
)

// JavaScriptFileAdapter parses addon JavaScript so the line engine can tell
// comments apart from strings and regular expressions.
type JavaScriptFileAdapter interface {
	// Parse builds a syntax tree for src, tolerating syntax errors.
	// The caller must Close the tree.
	Parse(ctx context.Context, src []byte) (*sitter.Tree, error)
}

// LocalJavaScriptFileAdapter provides a JavaScriptFileAdapter backed by tree-sitter.
type LocalJavaScriptFileAdapter struct{}

// NewLocalJavaScriptFileAdapter constructs a LocalJavaScriptFileAdapter.
func NewLocalJavaScriptFileAdapter() *LocalJavaScriptFileAdapter {
	return &LocalJavaScriptFileAdapter{}
}

// Parse builds a tree-sitter tree with a parser per call.
func (a *LocalJavaScriptFileAdapter) Parse(ctx context.Context, src []byte) (*sitter.Tree, error) {
	tree, err := parseWith(ctx, javascript.GetLanguage(), src)
	if err != nil {
		return nil, fmt.Errorf("parsing javascript: %w", err)
	}

	return tree, nil
}
