package domain

import (
	"sort"

	m "github.com/burnlist/burnlist/internal/model"
)

// Session is the cross-file state of a single run: the contents of every
// test file and the bypass requests registered while scanning. A fresh
// Session is created per run so repeated runs do not share state.
type Session struct {
	TestContents map[m.Path]string
	Requests     []m.BypassRequest
}

// NewSession creates an empty Session.
func NewSession() *Session {
	return &Session{TestContents: map[m.Path]string{}}
}

// AddTestContent records the content of a test file.
func (s *Session) AddTestContent(path m.Path, content string) {
	s.TestContents[path] = content
}

// AddRequests appends bypass requests in registration order.
func (s *Session) AddRequests(requests ...m.BypassRequest) {
	s.Requests = append(s.Requests, requests...)
}

// TestPaths returns the recorded test files in lexical order.
func (s *Session) TestPaths() []m.Path {
	paths := make([]m.Path, 0, len(s.TestContents))
	for p := range s.TestContents {
		paths = append(paths, p)
	}

	sort.Slice(paths, func(i, j int) bool { return paths[i] < paths[j] })

	return paths
}
