// Package classifier holds the fixed table of field-scoped PII matchers and
// the redaction transform bound to each of them.
//
// Standalone rules are sufficient on their own to mark a record as PII.
// Combinatorial rules only nominate a category; whether those fields are
// redacted is decided by the evaluator once the whole record has been seen.
package classifier

import (
	"regexp"
	"slices"
	"strings"
	"unicode/utf8"
)

// Kind distinguishes rules that redact on their own from rules that only
// contribute to the co-occurrence threshold.
type Kind string

const (
	KindStandalone    Kind = "standalone"
	KindCombinatorial Kind = "combinatorial"
)

// Category groups the fields of one combinatorial rule.
type Category string

const (
	CategoryName          Category = "name"
	CategoryEmail         Category = "email"
	CategoryAddress       Category = "address"
	CategoryDeviceContext Category = "device_context"
)

// Transform maps a matched value to its redacted form. Transforms are pure.
type Transform func(string) string

// Rule is one compiled entry of the rule table.
type Rule struct {
	Name     string
	Kind     Kind
	Category Category // empty for standalone rules
	Fields   []string

	pattern           *regexp.Regexp
	minTokens         int
	minLength         int
	singleLabelDomain bool
	redact            Transform
}

// Applies reports whether field is in the rule's field scope.
func (r Rule) Applies(field string) bool {
	return slices.Contains(r.Fields, field)
}

// Matches reports whether value satisfies the rule's predicate. It does not
// check the field scope.
func (r Rule) Matches(value string) bool {
	if r.pattern != nil && !r.pattern.MatchString(value) {
		return false
	}
	if r.singleLabelDomain && !hasSingleLabelDomain(value) {
		return false
	}
	if r.minTokens > 0 && len(strings.Fields(value)) < r.minTokens {
		return false
	}
	if r.minLength > 0 && utf8.RuneCountInString(strings.TrimSpace(value)) < r.minLength {
		return false
	}
	return true
}

// Redact applies the rule's transform.
func (r Rule) Redact(value string) string {
	return r.redact(value)
}

// Rules returns the rule table in priority order.
func Rules() []Rule {
	out := make([]Rule, len(table))
	copy(out, table)
	return out
}

// Match returns the first rule that consumes the field, if any. Only
// non-blank strings are eligible; every other value is never matched.
func Match(field string, value any) (Rule, bool) {
	s, ok := value.(string)
	if !ok || strings.TrimSpace(s) == "" {
		return Rule{}, false
	}
	for _, r := range table {
		if r.Applies(field) && r.Matches(s) {
			return r, true
		}
	}
	return Rule{}, false
}

// hasSingleLabelDomain reports whether the text between the first and second
// "@" contains no dot.
func hasSingleLabelDomain(value string) bool {
	parts := strings.Split(value, "@")
	if len(parts) < 2 {
		return false
	}
	return !strings.Contains(parts[1], ".")
}
