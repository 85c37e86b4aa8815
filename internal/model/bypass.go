package model

// Category names a family of findings that a categorised bypass marker may suppress.
type Category string

// Whitelisted bypass categories.
const (
	CategoryNone   Category = ""
	CategorySearch Category = "search"
	CategoryCron   Category = "cron"
	CategoryView   Category = "view"
	CategoryXPath  Category = "xpath"
	CategoryMail   Category = "mail"
	CategoryI18n   Category = "i18n"
	CategorySudo   Category = "sudo"
)

// AuditCategories lists the categories accepted after "audit-ignore-".
var AuditCategories = []Category{
	CategorySearch,
	CategoryCron,
	CategoryView,
	CategoryXPath,
	CategoryMail,
	CategoryI18n,
}

// IsAuditCategory reports whether c may follow "audit-ignore-".
func IsAuditCategory(c Category) bool {
	for _, known := range AuditCategories {
		if known == c {
			return true
		}
	}

	return false
}

// BypassKind is the literal marker tag of a bypass request.
type BypassKind string

// BypassKindSudo is the privilege-escalation bypass tag.
const BypassKindSudo BypassKind = "burn-ignore-sudo"

// AuditBypassKind returns the "audit-ignore-<category>" tag for c.
func AuditBypassKind(c Category) BypassKind {
	return BypassKind("audit-ignore-" + string(c))
}

// Category returns the category a bypass kind claims.
func (k BypassKind) Category() Category {
	if k == BypassKindSudo {
		return CategorySudo
	}

	const prefix = "audit-ignore-"
	if len(k) > len(prefix) && string(k[:len(prefix)]) == prefix {
		return Category(k[len(prefix):])
	}

	return CategoryNone
}

// BypassRequest is an anchored bypass awaiting proof in a test file.
type BypassRequest struct {
	Anchor string     `json:"anchor" yaml:"anchor"`
	Kind   BypassKind `json:"kind" yaml:"kind"`
	Path   Path       `json:"path" yaml:"path"`
	Line   int        `json:"line" yaml:"line"`
}

// Verification is the outcome of checking one BypassRequest.
type Verification struct {
	Request BypassRequest `json:"request" yaml:"request"`
	OK      bool          `json:"ok" yaml:"ok"`
	// TestPath is the test file holding the anchor, when one was found.
	TestPath Path   `json:"test_path,omitempty" yaml:"test_path,omitempty"`
	Reason   string `json:"reason,omitempty" yaml:"reason,omitempty"`
}
