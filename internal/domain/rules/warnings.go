package rules

import m "github.com/burnlist/burnlist/internal/model"

var warningRules = []m.Rule{
	rule("xml-t-esc", xmlFiles, `\bt-esc=`,
		"Deprecated t-esc directive: use t-out"),
	withGuard(rule("xml-search-group-string", xmlFiles, `<group[^>]*\bstring=`,
		"<group string=...> inside a search view is ignored: drop the string attribute"),
		m.GuardSearchView),
	withCategory(rule("xml-xpath-positional", xmlFiles, `<xpath[^>]*expr="[^"]*\[\d+\]`,
		"Positional xpath index breaks when the parent view changes: anchor on a name"),
		m.CategoryXPath),
	withCategory(rule("xml-xpath-replace", xmlFiles, `<xpath[^>]*position=["']replace["']`,
		"xpath position=\"replace\" removes nodes other modules may extend"),
		m.CategoryXPath),
	rule("xml-inline-script", xmlFiles, `<script(?:\s+type=["']text/javascript["'])?\s*>`,
		"Inline <script> in a template: ship code through the asset bundles"),
	rule("js-inner-html", jsFiles, `\.innerHTML\s*=`,
		"Assigning innerHTML is an XSS sink: render through a template"),
	rule("js-console", jsFiles, `console\.(?:log|debug)\(`,
		"Leftover console logging"),
	rule("py-print", pyFiles, `^\s*print\(`,
		"print() in addon code: use the module logger"),
}

// Warnings returns the ordered warning-severity rule table.
func Warnings() []m.Rule {
	return warningRules
}
