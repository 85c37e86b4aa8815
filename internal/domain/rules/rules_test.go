package rules

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	m "github.com/burnlist/burnlist/internal/model"
)

func TestTables(t *testing.T) {
	seen := map[string]bool{}

	for _, r := range append(append([]m.Rule{}, Errors()...), Warnings()...) {
		require.False(t, seen[r.ID], "duplicate rule %s", r.ID)
		seen[r.ID] = true

		assert.NotEmpty(t, r.Message, r.ID)
		assert.NotNil(t, r.FilePattern, r.ID)
		assert.NotNil(t, r.Pattern, r.ID)

		if r.Category != m.CategoryNone {
			assert.True(t, m.IsAuditCategory(r.Category), "%s has category %q", r.ID, r.Category)
		}
	}
}

func TestPatterns(t *testing.T) {
	byID := map[string]m.Rule{}
	for _, r := range append(append([]m.Rule{}, Errors()...), Warnings()...) {
		byID[r.ID] = r
	}

	tests := []struct {
		id      string
		path    string
		matches []string
		misses  []string
	}{
		{
			id:      "xml-tree-tag",
			path:    "v.xml",
			matches: []string{"<tree>", `<tree string="Orders">`, "<tree/>"},
			misses:  []string{"<treeview>", "<list>"},
		},
		{
			id:      "xml-res-groups-legacy",
			path:    "groups.xml",
			matches: []string{`<field name="users"/>`, `<field name='category_id'/>`, `{'group_ids': [1]}`},
			misses:  []string{`<field name="user_ids"/>`},
		},
		{
			id:      "js-legacy-require",
			path:    "a.js",
			matches: []string{`require("web.core")`, `require( 'web.Widget')`},
			misses:  []string{`import { x } from "@web/core"`},
		},
		{
			id:      "py-osv-import",
			path:    "a.py",
			matches: []string{"from odoo.osv import osv", "  from odoo.osv import orm"},
			misses:  []string{"from odoo.osv import expression"},
		},
		{
			id:      "xml-xpath-positional",
			path:    "v.xml",
			matches: []string{`<xpath expr="//group[2]" position="after">`},
			misses:  []string{`<xpath expr="//field[@name='x']" position="after">`},
		},
		{
			id:      "xml-inline-script",
			path:    "t.xml",
			matches: []string{"<script>", `<script type="text/javascript">`},
			misses:  []string{`<script src="/a.js"/>`},
		},
		{
			id:      "py-print",
			path:    "a.py",
			matches: []string{`print("x")`, `    print(x)`},
			misses:  []string{`self.print(x)`, `pprint(x)`},
		},
	}

	for _, tt := range tests {
		t.Run(tt.id, func(t *testing.T) {
			r, ok := byID[tt.id]
			require.True(t, ok)
			assert.True(t, r.AppliesTo(tt.path))

			for _, s := range tt.matches {
				assert.True(t, r.Pattern.MatchString(s), "%q should match", s)
			}

			for _, s := range tt.misses {
				assert.False(t, r.Pattern.MatchString(s), "%q should not match", s)
			}
		})
	}
}

func TestGuards(t *testing.T) {
	guards := map[string]m.Guard{}
	for _, r := range append(append([]m.Rule{}, Errors()...), Warnings()...) {
		guards[r.ID] = r.Guard
	}

	assert.Equal(t, m.GuardResGroupsRecord, guards["xml-res-groups-legacy"])
	assert.Equal(t, m.GuardSearchView, guards["xml-search-group-string"])
	assert.Equal(t, m.GuardNone, guards["xml-tree-tag"])
}

func TestExempt(t *testing.T) {
	tests := []struct {
		path   string
		ruleID string
		want   bool
	}{
		{"addon/static/lib/chart/chart.js", "js-eval", true},
		{"addon/static/src/app.js", "js-eval", false},
		{"addon/migrations/17.0.1.0/post-migrate.py", "py-print", true},
		{"addon\\tests\\test_a.py", "py-print", true},
		{"tests/test_a.py", "py-print", true},
		{"addon/tests/test_a.py", "py-osv-import", false},
		{"addon/contests/a.py", "py-print", false},
	}

	for _, tt := range tests {
		t.Run(tt.path+"/"+tt.ruleID, func(t *testing.T) {
			assert.Equal(t, tt.want, Exempt(tt.path, tt.ruleID))
		})
	}
}
