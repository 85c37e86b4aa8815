package domain

import (
	"strings"
	"unicode"

	sitter "github.com/smacker/go-tree-sitter"

	m "github.com/burnlist/burnlist/internal/model"
)

const untranslatedMessage = "Untranslated user-facing string; wrap it in _()"

var uiFeedbackKeys = map[string]bool{
	"title":           true,
	"message":         true,
	"warning_message": true,
}

var userFacingExceptions = map[string]bool{
	"UserError":       true,
	"ValidationError": true,
	"AccessError":     true,
	"RedirectWarning": true,
}

var messageCalls = map[string]bool{
	"message_post":   true,
	"message_notify": true,
	"_message_log":   true,
}

var sqlKeywords = []string{"SELECT", "INSERT", "UPDATE", "DELETE", "WITH", "CREATE", "ALTER", "DROP"}

func (v *visitor) checkTranslatedCall(n *sitter.Node, name string) {
	switch {
	case userFacingExceptions[name]:
		if args := positionalArgs(n); len(args) > 0 {
			v.checkTranslated(args[0])
		}
	case messageCalls[name]:
		v.checkTranslated(keywordArg(n, "body", v.src))
		v.checkTranslated(keywordArg(n, "subject", v.src))
	}
}

func (v *visitor) checkTranslated(value *sitter.Node) {
	if value != nil && v.untranslated(value) {
		v.warnf(nodeLine(value), m.CategoryI18n, untranslatedMessage)
	}
}

func (v *visitor) untranslated(value *sitter.Node) bool {
	switch value.Type() {
	case "string", "concatenated_string":
		if isFString(value, v.src) {
			return true
		}

		return isUserFacingLiteral(stringValue(value, v.src))
	case "binary_operator":
		switch binaryOperator(value, v.src) {
		case "%", "+":
			return !v.isTranslation(value.ChildByFieldName("left")) && !v.isTranslation(value.ChildByFieldName("right"))
		}
	case "call":
		if callName(value, v.src) == "format" {
			return !v.isTranslation(callReceiver(value))
		}
	case "parenthesized_expression":
		if value.NamedChildCount() > 0 {
			return v.untranslated(value.NamedChild(0))
		}
	}

	return false
}

// isTranslation matches _("..."), _lt("...") and env._("...").
func (v *visitor) isTranslation(n *sitter.Node) bool {
	if nodeType(n) == "parenthesized_expression" && n.NamedChildCount() > 0 {
		return v.isTranslation(n.NamedChild(0))
	}

	if nodeType(n) != "call" {
		return false
	}

	switch callName(n, v.src) {
	case "_", "_lt":
		return true
	default:
		return false
	}
}

func isUserFacingLiteral(s string) bool {
	trimmed := strings.TrimSpace(s)
	if trimmed == "" || !strings.ContainsFunc(trimmed, unicode.IsSpace) {
		return false
	}

	upper := strings.ToUpper(trimmed)
	for _, kw := range sqlKeywords {
		if strings.HasPrefix(upper, kw+" ") {
			return false
		}
	}

	return true
}
