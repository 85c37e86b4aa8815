package domain

import (
	m "github.com/burnlist/burnlist/internal/model"
)

const astScope = "python (syntax tree)"

// astChecks lists the syntax-tree checks of the Python visitor.
var astChecks = []m.RuleInfo{
	{ID: "py-sql-injection", Severity: m.SeverityError, Message: "cursor execute() with an f-string, %, + or .format() query"},
	{ID: "py-banned-import", Severity: m.SeverityError, Message: "pickle, cPickle, marshal, shelve or random import"},
	{ID: "py-banned-builtin", Severity: m.SeverityError, Message: "eval(), exec() or __import__()"},
	{ID: "py-insecure-flag", Severity: m.SeverityError, Message: "csrf=False, verify=False or shell=True"},
	{ID: "py-legacy-field-attr", Severity: m.SeverityError, Message: "track_visibility=, oldname=, group_operator= or states= on fields"},
	{ID: "py-removed-api", Severity: m.SeverityError, Message: "groups_id, fields_view_get, name_get or _check_recursion"},
	{ID: "py-deprecated-decorator", Severity: m.SeverityError, Message: "@api.multi, @api.one and other removed decorators"},
	{ID: "py-sudo", Severity: m.SeverityError, Message: ".sudo() outside an approved, marked pattern"},
	{ID: "py-n-plus-one", Severity: m.SeverityError, Category: m.CategorySearch, Message: "search-style call inside a loop"},
	{ID: "py-action-keys", Severity: m.SeverityError, Message: "action dict with view_id and views, or res_id and domain"},
	{ID: "py-cr-commit", Severity: m.SeverityError, Message: "manual cr.commit()"},
	{ID: "py-markup", Severity: m.SeverityError, Message: "Markup() over a dynamically built string"},
	{ID: "py-cron-limit", Severity: m.SeverityError, Category: m.CategoryCron, Message: "search() without limit= in a _cron_ method"},
	{ID: "py-mass-assignment", Severity: m.SeverityError, Message: "controller passes **kwargs to create()/write() (blocking error, not a binding warning)"},
	{ID: "py-weak-hash", Severity: m.SeverityError, Message: "hashlib.md5 or hashlib.sha1"},
	{ID: "py-kwargs-get", Severity: m.SeverityWarning, Message: "controller reads kwargs.get()"},
	{ID: "py-uniqueness", Severity: m.SeverityWarning, Category: m.CategorySearch, Message: "uniqueness search without active_test=False"},
	{ID: "py-unbounded-search", Severity: m.SeverityWarning, Category: m.CategorySearch, Message: "search([]) or search_read([]) without limit="},
	{ID: "py-untranslated", Severity: m.SeverityWarning, Category: m.CategoryI18n, Message: "user-facing string not wrapped in _()"},
	{ID: "py-len-search", Severity: m.SeverityWarning, Message: "len(search()) instead of search_count()"},
	{ID: "py-env-shortcut", Severity: m.SeverityWarning, Message: "self._cr, self._uid or self._context"},
	{ID: "py-requests-timeout", Severity: m.SeverityWarning, Message: "requests call without timeout="},
	{ID: "py-bare-except", Severity: m.SeverityWarning, Message: "bare except:"},
	{ID: "py-sql-constraints", Severity: m.SeverityWarning, Message: "_sql_constraints class attribute"},
	{ID: "py-force-send", Severity: m.SeverityWarning, Category: m.CategoryMail, Message: "send_mail(force_send=True)"},
}

// Catalogue lists the line rules followed by the syntax-tree checks.
func Catalogue(errors, warnings []m.Rule) []m.RuleInfo {
	out := make([]m.RuleInfo, 0, len(errors)+len(warnings)+len(astChecks)+1)

	for _, r := range errors {
		out = append(out, ruleInfo(r, m.SeverityError))
	}

	for _, r := range warnings {
		out = append(out, ruleInfo(r, m.SeverityWarning))
	}

	out = append(out, m.RuleInfo{
		ID:       "xml-view-mandate",
		Severity: m.SeverityError,
		Scope:    ".xml",
		Category: m.CategoryView,
		Message:  "view or template without verified-by or audit-ignore-view",
	})

	for _, check := range astChecks {
		check.Scope = astScope
		out = append(out, check)
	}

	return out
}

func ruleInfo(r m.Rule, severity m.Severity) m.RuleInfo {
	return m.RuleInfo{
		ID:       r.ID,
		Severity: severity,
		Scope:    r.FilePattern.String(),
		Category: r.Category,
		Message:  r.Message,
	}
}
