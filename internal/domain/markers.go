package domain

import (
	"regexp"
	"strings"

	m "github.com/burnlist/burnlist/internal/model"
)

var (
	auditMarkerRe = regexp.MustCompile(
		`audit-ignore-([A-Za-z0-9_]+(?:-[A-Za-z0-9_]+)*)(?:\s*:\s*Tested by\s*\[([A-Za-z0-9_.:-]+)\])?`)
	sudoMarkerRe = regexp.MustCompile(
		`burn-ignore-sudo(?:\s*:\s*Tested by\s*\[([A-Za-z0-9_.:-]+)\])?`)
	burnTagRe             = regexp.MustCompile(`burn-ignore-([A-Za-z0-9_]+(?:-[A-Za-z0-9_]+)*)`)
	unconditionalMarkerRe = regexp.MustCompile(`burn-ignore(?:$|[^-\w])`)
	verifiedByRe          = regexp.MustCompile(`verified-by:\s*\[([A-Za-z0-9_.:-]+)\]`)
	sudoAccessRe          = regexp.MustCompile(`\.sudo\b`)
)

// Constructs the bare burn-ignore marker may be attached to.
var unconditionalConstructs = []string{"cr.commit()", "Markup("}

type auditMarker struct {
	category m.Category
	anchor   string
}

// lineMarkers are the bypass markers found on one physical line.
type lineMarkers struct {
	audits        []auditMarker
	sudo          bool
	sudoAnchor    string
	unconditional bool
	unknownBurn   []string
	verifiedBy    string
}

func (lm lineMarkers) empty() bool {
	return len(lm.audits) == 0 && !lm.sudo && !lm.unconditional && len(lm.unknownBurn) == 0 && lm.verifiedBy == ""
}

// suppresses reports whether a whitelisted audit marker for c is present.
func (lm lineMarkers) suppresses(c m.Category) bool {
	if c == m.CategoryNone {
		return false
	}

	for _, a := range lm.audits {
		if a.category == c && m.IsAuditCategory(a.category) {
			return true
		}
	}

	return false
}

// linksView reports whether the line proves or explicitly waives view test coverage.
func (lm lineMarkers) linksView() bool {
	return lm.verifiedBy != "" || lm.suppresses(m.CategoryView)
}

func parseMarkers(line string) lineMarkers {
	var lm lineMarkers

	if !strings.Contains(line, "-ignore") && !strings.Contains(line, "verified-by") {
		return lm
	}

	for _, match := range auditMarkerRe.FindAllStringSubmatch(line, -1) {
		lm.audits = append(lm.audits, auditMarker{
			category: m.Category(strings.ToLower(match[1])),
			anchor:   match[2],
		})
	}

	if match := sudoMarkerRe.FindStringSubmatch(line); match != nil {
		lm.sudo = true
		lm.sudoAnchor = match[1]
	}

	for _, match := range burnTagRe.FindAllStringSubmatch(line, -1) {
		if tag := match[1]; tag != "sudo" {
			lm.unknownBurn = append(lm.unknownBurn, tag)
		}
	}

	lm.unconditional = unconditionalMarkerRe.MatchString(line)

	if match := verifiedByRe.FindStringSubmatch(line); match != nil {
		lm.verifiedBy = match[1]
	}

	return lm
}

// isMarkerLine reports whether line carries a bypass marker referencing an anchor.
func isMarkerLine(line string) bool {
	return auditMarkerRe.MatchString(line) || sudoMarkerRe.MatchString(line)
}

// markerIndex maps 1-based line numbers to their markers.
type markerIndex map[int]lineMarkers

func (idx markerIndex) at(line int) lineMarkers {
	return idx[line]
}

func (idx markerIndex) suppresses(line int, c m.Category) bool {
	return idx[line].suppresses(c)
}

// checkMarkers validates the markers of one line and returns the bypass
// requests they register plus any unauthorized-bypass errors.
func checkMarkers(path m.Path, lineNo int, line string, lm lineMarkers) ([]m.BypassRequest, []m.Diagnostic) {
	var (
		requests []m.BypassRequest
		diags    []m.Diagnostic
	)

	snippet := strings.TrimSpace(line)

	for _, a := range lm.audits {
		if !m.IsAuditCategory(a.category) {
			diags = append(diags, m.NewError(path, lineNo, m.CategoryNone,
				"Unauthorized bypass: 'audit-ignore-"+string(a.category)+"' is not a permitted audit category",
				snippet))

			continue
		}

		if a.anchor != "" {
			requests = append(requests, m.BypassRequest{
				Anchor: a.anchor,
				Kind:   m.AuditBypassKind(a.category),
				Path:   path,
				Line:   lineNo,
			})
		}
	}

	if lm.sudo {
		if !sudoAccessRe.MatchString(line) {
			diags = append(diags, m.NewError(path, lineNo, m.CategoryNone,
				"Unauthorized bypass: 'burn-ignore-sudo' on a line without .sudo()", snippet))
		} else if lm.sudoAnchor != "" {
			requests = append(requests, m.BypassRequest{
				Anchor: lm.sudoAnchor,
				Kind:   m.BypassKindSudo,
				Path:   path,
				Line:   lineNo,
			})
		}
	}

	for _, tag := range lm.unknownBurn {
		diags = append(diags, m.NewError(path, lineNo, m.CategoryNone,
			"Unauthorized bypass: 'burn-ignore-"+tag+"' is not a permitted bypass; only burn-ignore-sudo takes a tag",
			snippet))
	}

	if lm.unconditional && !hasUnconditionalConstruct(line) {
		diags = append(diags, m.NewError(path, lineNo, m.CategoryNone,
			"Unauthorized bypass: 'burn-ignore' is only valid on cr.commit() or Markup()", snippet))
	}

	return requests, diags
}

func hasUnconditionalConstruct(line string) bool {
	for _, construct := range unconditionalConstructs {
		if strings.Contains(line, construct) {
			return true
		}
	}

	return false
}
