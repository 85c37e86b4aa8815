package domain

import (
	"regexp"
	"strings"

	sitter "github.com/smacker/go-tree-sitter"

	m "github.com/burnlist/burnlist/internal/model"
)

var bannedImports = map[string]string{
	"pickle":  "unsafe deserialization",
	"cPickle": "unsafe deserialization",
	"marshal": "unsafe deserialization",
	"shelve":  "unsafe deserialization",
	"random":  "non-cryptographic RNG; use secrets",
}

var bannedBuiltins = map[string]bool{
	"eval":       true,
	"exec":       true,
	"__import__": true,
}

var legacyFieldKeywords = map[string]string{
	"track_visibility": "use tracking=True",
	"oldname":          "write a migration script",
	"group_operator":   "use aggregator=",
}

var renamedAPIs = map[string]string{
	"groups_id":        "group_ids",
	"fields_view_get":  "get_view",
	"name_get":         "_compute_display_name",
	"_check_recursion": "_has_cycle",
}

var deprecatedDecorators = map[string]bool{
	"api.multi":   true,
	"api.one":     true,
	"api.cr":      true,
	"api.v7":      true,
	"api.v8":      true,
	"api.returns": true,
	"api.noguess": true,
}

var searchCalls = map[string]bool{
	"search":       true,
	"search_read":  true,
	"search_count": true,
	"search_fetch": true,
	"read_group":   true,
	"_read_group":  true,
}

var cursorNames = map[string]bool{
	"cr":     true,
	"_cr":    true,
	"cursor": true,
}

var exclusiveActionKeys = [][2]string{
	{"view_id", "views"},
	{"res_id", "domain"},
}

var envShortcuts = map[string]string{
	"_cr":      "self.env.cr",
	"_uid":     "self.env.uid",
	"_context": "self.env.context",
}

var requestsVerbs = map[string]bool{
	"get":     true,
	"post":    true,
	"put":     true,
	"patch":   true,
	"delete":  true,
	"head":    true,
	"options": true,
	"request": true,
}

var weakHashes = map[string]bool{
	"md5":  true,
	"sha1": true,
}

var activeTestOffRe = regexp.MustCompile(`active_test['"]?\s*[:=]\s*False`)

func renamedMessage(oldName, newName string) string {
	return "Removed API '" + oldName + "': use '" + newName + "'"
}

func (v *visitor) checkCall(n *sitter.Node) {
	name := callName(n, v.src)
	fn := n.ChildByFieldName("function")
	receiver := callReceiver(n)
	line := nodeLine(n)

	if nodeType(fn) == "identifier" {
		if bannedBuiltins[name] {
			v.errorf(line, m.CategoryNone, "Banned builtin "+name+"(): arbitrary code execution")
		}

		if newName, ok := renamedAPIs[name]; ok {
			v.errorf(line, m.CategoryNone, renamedMessage(name, newName))
		}
	}

	v.checkSQLInjection(n, name, receiver, line)
	v.checkSearchCall(n, name, receiver, line)
	v.checkControllerCall(n, name, receiver, line)
	v.checkMiscCall(n, name, receiver, line)
	v.checkTranslatedCall(n, name)
}

func (v *visitor) checkSQLInjection(n *sitter.Node, name string, receiver *sitter.Node, line int) {
	switch name {
	case "execute":
		if receiver == nil || !cursorNames[lastSegment(nodeText(receiver, v.src))] {
			return
		}

		args := positionalArgs(n)
		if len(args) == 0 {
			return
		}

		if mechanism := v.taint(args[0]); mechanism != "" {
			v.errorf(line, m.CategoryNone,
				"SQL injection: query built with "+mechanism+"; pass parameters to execute() or compose with SQL()")
		}
	case "commit":
		if receiver == nil || !cursorNames[lastSegment(nodeText(receiver, v.src))] {
			return
		}

		if !v.markers.at(line).unconditional {
			v.errorf(line, m.CategoryNone,
				"Manual cr.commit() breaks transaction atomicity")
		}
	case "Markup":
		args := positionalArgs(n)
		if len(args) == 0 {
			return
		}

		mechanism := v.taint(args[0])
		if mechanism != "" && !v.markers.at(line).unconditional {
			v.errorf(line, m.CategoryNone,
				"XSS: Markup() over a string built with "+mechanism+"; escape the dynamic parts")
		}
	}
}

func (v *visitor) checkSearchCall(n *sitter.Node, name string, receiver *sitter.Node, line int) {
	if !searchCalls[name] || receiver == nil || nodeText(receiver, v.src) == "re" {
		return
	}

	limited := keywordArg(n, "limit", v.src) != nil

	if v.scope.loopDepth > 0 {
		v.errorf(line, m.CategorySearch,
			"N+1 query: "+name+"() inside a loop; batch the lookup outside the loop")
	}

	if name == "search" && strings.HasPrefix(v.scope.funcName, "_cron_") && !limited {
		v.errorf(line, m.CategoryCron,
			"Cron batching: search() in a _cron_ method must pass limit= and re-trigger itself")
	}

	if (name == "search" || name == "search_count") && v.checksUniqueness() && !isActiveTestOff(receiver, v.src) {
		v.warnf(line, m.CategorySearch,
			"Uniqueness check ignores archived records; chain with_context(active_test=False) before "+name+"()")
	}

	if (name == "search" || name == "search_read") && !limited {
		if args := positionalArgs(n); len(args) > 0 && args[0].Type() == "list" && args[0].NamedChildCount() == 0 {
			v.warnf(line, m.CategorySearch,
				"Unbounded "+name+"([]) loads the whole table; pass limit=")
		}
	}
}

// checksUniqueness reports whether the current function validates or creates records.
func (v *visitor) checksUniqueness() bool {
	fn := v.scope.funcName

	switch {
	case fn == "create", fn == "write":
		return true
	case strings.HasPrefix(fn, "_check_"), strings.HasPrefix(fn, "_validate_"):
		return true
	default:
		return v.hasDecorator("api.constrains", "api.onchange")
	}
}

func isActiveTestOff(receiver *sitter.Node, src []byte) bool {
	if nodeType(receiver) != "call" || callName(receiver, src) != "with_context" {
		return false
	}

	return activeTestOffRe.MatchString(nodeText(receiver.ChildByFieldName("arguments"), src))
}

func (v *visitor) checkControllerCall(n *sitter.Node, name string, receiver *sitter.Node, line int) {
	kwargs := v.scope.kwargsName
	if !v.scope.controller || kwargs == "" {
		return
	}

	switch name {
	case "create", "write":
		passed := false

		for _, arg := range positionalArgs(n) {
			if arg.Type() == "identifier" && nodeText(arg, v.src) == kwargs {
				passed = true
			}
		}

		for _, splat := range dictionarySplats(n) {
			if splat.Type() == "identifier" && nodeText(splat, v.src) == kwargs {
				passed = true
			}
		}

		if passed {
			v.errorf(line, m.CategoryNone,
				"Mass assignment: request parameters '"+kwargs+"' passed straight to "+name+"(); whitelist the fields")
		}
	case "get":
		if receiver != nil && nodeText(receiver, v.src) == kwargs {
			v.warnf(line, m.CategoryNone,
				"Controller reads '"+kwargs+".get()'; declare the parameter in the route signature")
		}
	}
}

func (v *visitor) checkMiscCall(n *sitter.Node, name string, receiver *sitter.Node, line int) {
	switch {
	case name == "len" && receiver == nil:
		if args := positionalArgs(n); len(args) == 1 && args[0].Type() == "call" && callName(args[0], v.src) == "search" {
			v.warnf(line, m.CategoryNone, "len(search()) fetches every record; use search_count()")
		}
	case receiver != nil && nodeText(receiver, v.src) == "requests" && requestsVerbs[name]:
		if keywordArg(n, "timeout", v.src) == nil {
			v.warnf(line, m.CategoryNone, "requests."+name+"() without timeout= can hang a worker")
		}
	case name == "send_mail":
		if nodeText(keywordArg(n, "force_send", v.src), v.src) == "True" {
			v.warnf(line, m.CategoryMail, "send_mail(force_send=True) sends synchronously; let the mail queue deliver it")
		}
	}
}

func (v *visitor) checkAttribute(n *sitter.Node) {
	attrNode := n.ChildByFieldName("attribute")
	attr := nodeText(attrNode, v.src)
	object := n.ChildByFieldName("object")
	line := nodeLine(attrNode)

	if newName, ok := renamedAPIs[attr]; ok {
		v.errorf(line, m.CategoryNone, renamedMessage(attr, newName))
	}

	if attr == "sudo" {
		v.checkSudo(line)
	}

	switch nodeText(object, v.src) {
	case "self":
		if replacement, ok := envShortcuts[attr]; ok {
			v.warnf(line, m.CategoryNone, "self."+attr+" is deprecated; use "+replacement)
		}
	case "hashlib":
		if weakHashes[attr] {
			v.errorf(line, m.CategoryNone, "Weak hash hashlib."+attr+"; use hashlib.sha256 or stronger")
		}
	}
}

func (v *visitor) checkSudo(line int) {
	if v.strict {
		if !strictSudoHelpers[v.scope.funcName] {
			v.errorf(line, m.CategoryNone,
				"Privilege escalation: .sudo() in "+strictSudoFile+" is reserved for _get_system_parameter and _ensure_public_user")
		}

		return
	}

	lm := v.markers.at(line)
	if !lm.sudo {
		v.errorf(line, m.CategoryNone,
			"Privilege escalation: .sudo() bypasses access rules; add burn-ignore-sudo on an approved pattern")

		return
	}

	if !v.safeSudo(line) {
		v.errorf(line, m.CategoryNone,
			"Privilege escalation: burn-ignore-sudo only covers ir.config_parameter reads and _cron_ methods")
	}
}

func (v *visitor) safeSudo(line int) bool {
	text := v.snippet(line)
	if strings.Contains(text, "ir.config_parameter") && strings.Contains(text, ".sudo().get_param(") {
		return true
	}

	return strings.HasPrefix(v.scope.funcName, "_cron_")
}

func (v *visitor) checkImport(n *sitter.Node) {
	for i := 0; i < int(n.NamedChildCount()); i++ {
		child := n.NamedChild(i)

		module := child
		if child.Type() == "aliased_import" {
			module = child.ChildByFieldName("name")
		}

		v.checkModule(nodeLine(child), nodeText(module, v.src))
	}
}

func (v *visitor) checkImportFrom(n *sitter.Node) {
	moduleNode := n.ChildByFieldName("module_name")
	if nodeType(moduleNode) == "relative_import" {
		return
	}

	module := nodeText(moduleNode, v.src)
	line := nodeLine(n)

	if v.checkModule(line, module) {
		return
	}

	for i := 0; i < int(n.NamedChildCount()); i++ {
		child := n.NamedChild(i)
		if child.StartByte() == moduleNode.StartByte() {
			continue
		}

		name := child
		if child.Type() == "aliased_import" {
			name = child.ChildByFieldName("name")
		}

		if nodeType(name) != "dotted_name" {
			continue
		}

		if v.checkModule(nodeLine(child), module+"."+nodeText(name, v.src)) {
			return
		}
	}
}

// checkModule reports a banned module or any of its submodules.
func (v *visitor) checkModule(line int, module string) bool {
	for banned, reason := range bannedImports {
		if module == banned || strings.HasPrefix(module, banned+".") {
			v.errorf(line, m.CategoryNone, "Banned import '"+banned+"': "+reason)
			return true
		}
	}

	return false
}

func (v *visitor) checkKeyword(n *sitter.Node) {
	name := nodeText(n.ChildByFieldName("name"), v.src)
	value := nodeText(n.ChildByFieldName("value"), v.src)
	line := nodeLine(n)

	switch {
	case name == "csrf" && value == "False":
		v.errorf(line, m.CategoryNone, "csrf=False disables CSRF protection on the route")
	case name == "verify" && value == "False":
		v.errorf(line, m.CategoryNone, "verify=False disables TLS certificate verification")
	case name == "shell" && value == "True":
		v.errorf(line, m.CategoryNone, "shell=True enables shell injection")
	case name == "states":
		if call := enclosingCall(n); call != nil && strings.HasPrefix(nodeText(call.ChildByFieldName("function"), v.src), "fields.") {
			v.errorf(line, m.CategoryNone, "Legacy field attribute states= was removed; use invisible/readonly in views")
		}
	}

	if hint, ok := legacyFieldKeywords[name]; ok {
		v.errorf(line, m.CategoryNone, "Legacy field attribute "+name+"= was removed; "+hint)
	}

	if newName, ok := renamedAPIs[name]; ok {
		v.errorf(line, m.CategoryNone, renamedMessage(name, newName))
	}
}

func (v *visitor) checkDictionary(n *sitter.Node) {
	keys := map[string]bool{}

	for i := 0; i < int(n.NamedChildCount()); i++ {
		pair := n.NamedChild(i)
		if pair.Type() != "pair" {
			continue
		}

		keyNode := pair.ChildByFieldName("key")
		if !isStringNode(keyNode) {
			continue
		}

		key := stringValue(keyNode, v.src)
		keys[key] = true

		if newName, ok := renamedAPIs[key]; ok {
			v.errorf(nodeLine(keyNode), m.CategoryNone, renamedMessage(key, newName))
		}

		if uiFeedbackKeys[key] {
			v.checkTranslated(pair.ChildByFieldName("value"))
		}
	}

	for _, pair := range exclusiveActionKeys {
		if keys[pair[0]] && keys[pair[1]] {
			v.errorf(nodeLine(n), m.CategoryNone,
				"Action dict sets both '"+pair[0]+"' and '"+pair[1]+"'; they are mutually exclusive")
		}
	}
}

func (v *visitor) checkExcept(n *sitter.Node) {
	for i := 0; i < int(n.NamedChildCount()); i++ {
		switch n.NamedChild(i).Type() {
		case "block", "comment":
		default:
			return
		}
	}

	v.warnf(nodeLine(n), m.CategoryNone, "Bare except: catches SystemExit and KeyboardInterrupt; name the exception")
}
