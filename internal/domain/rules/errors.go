package rules

import m "github.com/burnlist/burnlist/internal/model"

var errorRules = []m.Rule{
	rule("xml-tree-tag", xmlFiles, `<tree[\s>/]`,
		"Deprecated <tree> view tag: use <list>"),
	rule("xml-attrs", xmlFiles, `\battrs=`,
		"Removed 'attrs' attribute: use invisible/readonly/required expressions"),
	rule("xml-states", xmlFiles, `\bstates=`,
		"Removed 'states' attribute: use an invisible expression"),
	rule("xml-t-raw", xmlFiles, `\bt-raw=`,
		"Removed t-raw directive renders unescaped HTML: use t-out with Markup"),
	withGuard(rule("xml-res-groups-legacy", xmlFiles,
		`(?:name=["'](?:users|category_id|group_ids)["']|['"](?:users|category_id|group_ids)['"]\s*:)`,
		"Legacy res.groups relation: use user_ids / privilege_id / implied_ids"),
		m.GuardResGroupsRecord),
	rule("xml-inline-js-handler", xmlFiles, `\bon(?:click|load|error|mouseover)=`,
		"Inline JavaScript event handler in markup: bind events from an Owl component"),
	rule("js-odoo-define", jsFiles, `odoo\.define\(`,
		"Legacy odoo.define() module: use native ES modules (@odoo-module)"),
	rule("js-eval", jsFiles, `\beval\(`,
		"eval() executes arbitrary code"),
	rule("js-legacy-require", jsFiles, `require\(\s*['"]web\.`,
		"Legacy require('web.*') import: use @web/ ES module imports"),
	rule("py-osv-import", pyFiles, `^\s*from\s+odoo\.osv\s+import\s+(?:osv|orm)\b`,
		"Legacy osv/orm API import"),
}

// Errors returns the ordered error-severity rule table.
func Errors() []m.Rule {
	return errorRules
}
