package model

import (
	"path/filepath"
	"strings"
)

// Path represents a file system path.
type Path string

// FileKind classifies scanned files by extension.
type FileKind string

const (
	// KindPython is a .py file.
	KindPython FileKind = "python"
	// KindXML is a .xml file.
	KindXML FileKind = "xml"
	// KindJavaScript is a .js file.
	KindJavaScript FileKind = "javascript"
	// KindOther is anything the linter does not scan.
	KindOther FileKind = "other"
)

// KindOf classifies path by its extension.
func KindOf(path Path) FileKind {
	switch strings.ToLower(filepath.Ext(string(path))) {
	case ".py":
		return KindPython
	case ".xml":
		return KindXML
	case ".js":
		return KindJavaScript
	default:
		return KindOther
	}
}

// Source is one file selected for scanning.
type Source struct {
	Path Path
	Kind FileKind
	// IsTest marks files whose contents are kept for bypass verification.
	IsTest bool
	// WalkErr is set when the path could not be listed or inspected; the
	// scan reports it instead of reading the file.
	WalkErr error
}

// IsWebAsset reports whether a test file can only be checked textually.
func IsWebAsset(path Path) bool {
	switch strings.ToLower(filepath.Ext(string(path))) {
	case ".js", ".xml", ".html":
		return true
	default:
		return false
	}
}
