// Package adapter contains the infrastructure adapters of the linter: file
// system access, Python and XML parsing, report persistence and file watching.
package adapter

import (
	"fmt"
	"os"
	"path/filepath"
	"sort"
	"strings"

	m "github.com/burnlist/burnlist/internal/model"
)

// Directories never descended into, besides hidden ones.
var ignoredDirs = map[string]struct{}{
	"__pycache__":   {},
	"node_modules":  {},
	"build":         {},
	"dist":          {},
	"venv":          {},
	"env":           {},
	"site-packages": {},
	"tools":         {},
}

// Files never scanned: the legacy linter itself and its guide.
var skippedFiles = map[string]struct{}{
	"check_burn_list.py": {},
	"BURN_LIST_GUIDE.md": {},
}

// SourceFSAdapter abstracts filesystem-specific operations that the domain layer
// relies on when scanning addon trees. It hides direct `os` access so the
// workflow logic can be tested against temporary trees.
type SourceFSAdapter interface {
	// Get collects the scannable files below root in lexical order.
	Get(root m.Path) ([]m.Source, error)

	// Walk traverses root, pruning ignored and hidden directories.
	Walk(root m.Path, fn FilepathWalkFunc) error

	// ReadFile loads a file from disk and returns its contents.
	ReadFile(path m.Path) ([]byte, error)

	// FileInfo returns metadata for a path.
	FileInfo(path m.Path) (os.FileInfo, error)
}

// FilepathWalkFunc mirrors the callback shape used by filepath.Walk. It is
// defined here to avoid leaking the standard-library type directly into the
// domain layer.
type FilepathWalkFunc func(path string, info os.FileInfo, err error) error

// LocalSourceFSAdapter is the os-backed SourceFSAdapter.
type LocalSourceFSAdapter struct{}

// NewLocalSourceFSAdapter constructs a LocalSourceFSAdapter instance ready to
// be wired into the workflow.
func NewLocalSourceFSAdapter() *LocalSourceFSAdapter {
	return &LocalSourceFSAdapter{}
}

// Get collects .py, .xml and .js files below root, plus test pages such
// as tests/*.html. A root naming a single
// file yields that file alone. Paths below root that cannot be walked are
// returned with WalkErr set and the walk goes on.
func (a *LocalSourceFSAdapter) Get(root m.Path) ([]m.Source, error) {
	rootStr := string(root)
	if rootStr == "" {
		rootStr = "."
	}

	info, err := a.FileInfo(m.Path(rootStr))
	if err != nil {
		return nil, fmt.Errorf("root path error: %w", err)
	}

	if !info.IsDir() {
		source, ok := classify(rootStr)
		if !ok {
			return []m.Source{}, nil
		}

		return []m.Source{source}, nil
	}

	sources := []m.Source{}

	err = a.Walk(m.Path(rootStr), func(path string, info os.FileInfo, err error) error {
		if err != nil {
			if path == rootStr {
				return err
			}

			sources = append(sources, m.Source{Path: m.Path(path), Kind: m.KindOf(m.Path(path)), WalkErr: err})

			return nil
		}

		if info.IsDir() {
			return nil
		}

		if source, ok := classify(path); ok {
			sources = append(sources, source)
		}

		return nil
	})
	if err != nil {
		return nil, err
	}

	sort.Slice(sources, func(i, j int) bool {
		return sources[i].Path < sources[j].Path
	})

	return sources, nil
}

// Walk iterates over files under root, skipping ignored directories.
func (a *LocalSourceFSAdapter) Walk(root m.Path, fn FilepathWalkFunc) error {
	rootStr := string(root)

	return filepath.Walk(rootStr, func(path string, info os.FileInfo, err error) error {
		if info != nil && info.IsDir() && path != rootStr && IsIgnoredDir(info.Name()) {
			return filepath.SkipDir
		}

		if err != nil {
			return fn(path, info, err)
		}

		return fn(path, info, nil)
	})
}

// ReadFile loads file contents from disk.
func (a *LocalSourceFSAdapter) ReadFile(path m.Path) ([]byte, error) {
	return os.ReadFile(string(path))
}

// FileInfo returns os.FileInfo metadata for the given path.
func (a *LocalSourceFSAdapter) FileInfo(path m.Path) (os.FileInfo, error) {
	return os.Stat(string(path))
}

// IsIgnoredDir reports whether a directory with the given base name is pruned.
func IsIgnoredDir(name string) bool {
	if strings.HasPrefix(name, ".") && name != "." && name != ".." {
		return true
	}

	_, ok := ignoredDirs[name]

	return ok
}

// IsTestFile reports whether path looks like a test module whose contents can
// back a bypass anchor.
func IsTestFile(path m.Path) bool {
	base := filepath.Base(string(path))
	ext := strings.ToLower(filepath.Ext(base))

	if ext == ".py" && strings.HasPrefix(base, "test_") {
		return true
	}

	if strings.HasSuffix(base, ".test.js") {
		return true
	}

	switch ext {
	case ".py", ".js", ".xml", ".html":
	default:
		return false
	}

	for _, part := range strings.Split(filepath.ToSlash(filepath.Dir(string(path))), "/") {
		if part == "tests" {
			return true
		}
	}

	return false
}

func classify(path string) (m.Source, bool) {
	if _, skip := skippedFiles[filepath.Base(path)]; skip {
		return m.Source{}, false
	}

	kind := m.KindOf(m.Path(path))
	isTest := IsTestFile(m.Path(path))

	// Other test files (tour pages) are only kept as bypass evidence.
	if kind == m.KindOther && !isTest {
		return m.Source{}, false
	}

	return m.Source{
		Path:   m.Path(path),
		Kind:   kind,
		IsTest: isTest,
	}, true
}
