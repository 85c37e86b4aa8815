package model

import "regexp"

// Guard selects a false-positive guard evaluated before a line rule matches.
type Guard int

const (
	// GuardNone applies the rule everywhere its file pattern matches.
	GuardNone Guard = iota
	// GuardResGroupsRecord applies the rule only inside a res.groups <record>.
	GuardResGroupsRecord
	// GuardSearchView applies the rule only inside a <search> view.
	GuardSearchView
)

// Rule is a line-level textual rule. Tables of rules are read-only.
type Rule struct {
	ID          string
	FilePattern *regexp.Regexp
	Pattern     *regexp.Regexp
	Message     string
	Category    Category
	Guard       Guard
}

// AppliesTo reports whether the rule's file pattern matches path.
func (r Rule) AppliesTo(path string) bool {
	return r.FilePattern.MatchString(path)
}

// RuleInfo describes one line rule or syntax-tree check for listings.
type RuleInfo struct {
	ID       string   `json:"id" yaml:"id"`
	Severity Severity `json:"severity" yaml:"severity"`
	Scope    string   `json:"scope" yaml:"scope"`
	Category Category `json:"category,omitempty" yaml:"category,omitempty"`
	Message  string   `json:"message" yaml:"message"`
}
