// Package evaluator decides, for one decoded record, which fields are PII and
// returns a redacted copy.
//
// Standalone matches are redacted as soon as they are seen. Combinatorial
// matches are only collected by category; if two or more distinct categories
// occur in the same record, every field of every present category is
// redacted. Evaluation is pure: no I/O, no shared state, safe to run
// concurrently on different records.
package evaluator

import (
	"maps"
	"slices"

	"github.com/dativo-io/piiredact/internal/classifier"
)

// EscalationThreshold is the number of distinct combinatorial categories that
// must co-occur before they are treated as PII.
const EscalationThreshold = 2

// Record is a decoded JSON object. Only string values are ever inspected.
type Record map[string]any

// Finding describes one redacted field. It never carries the original value.
type Finding struct {
	Field     string              `json:"field"`
	Rule      string              `json:"rule"`
	Kind      classifier.Kind     `json:"kind"`
	Category  classifier.Category `json:"category,omitempty"`
	Escalated bool                `json:"escalated,omitempty"`
}

// Result is the outcome of evaluating one record.
type Result struct {
	Redacted Record    `json:"redacted"`
	IsPII    bool      `json:"is_pii"`
	Findings []Finding `json:"findings"`
}

// Evaluate runs the rule table over rec. The returned record has exactly the
// keys of rec; rec itself is not modified.
func Evaluate(rec Record) Result {
	res := Result{
		Redacted: make(Record, len(rec)),
		Findings: []Finding{},
	}
	maps.Copy(res.Redacted, rec)

	present := make(map[classifier.Category]bool)
	for _, field := range slices.Sorted(maps.Keys(rec)) {
		rule, ok := classifier.Match(field, rec[field])
		if !ok {
			continue
		}
		switch rule.Kind {
		case classifier.KindStandalone:
			res.Redacted[field] = rule.Redact(rec[field].(string))
			res.IsPII = true
			res.Findings = append(res.Findings, Finding{
				Field: field,
				Rule:  rule.Name,
				Kind:  rule.Kind,
			})
		case classifier.KindCombinatorial:
			present[rule.Category] = true
		}
	}

	if len(present) < EscalationThreshold {
		return res
	}
	res.IsPII = true

	for _, rule := range classifier.Rules() {
		if rule.Kind != classifier.KindCombinatorial || !present[rule.Category] {
			continue
		}
		// Every field of the category is redacted, including a sibling that
		// did not itself qualify (ip_address alongside a qualifying device_id).
		for _, field := range rule.Fields {
			s, ok := rec[field].(string)
			if !ok {
				continue
			}
			res.Redacted[field] = rule.Redact(s)
			res.Findings = append(res.Findings, Finding{
				Field:     field,
				Rule:      rule.Name,
				Kind:      rule.Kind,
				Category:  rule.Category,
				Escalated: true,
			})
		}
	}

	return res
}

// Process is Evaluate reduced to the (record, flag) pair.
func Process(rec Record) (Record, bool) {
	res := Evaluate(rec)
	return res.Redacted, res.IsPII
}
