// Package patterns provides the embedded record rule table.
// The YAML holds the match side of each rule (field scope, regex, thresholds);
// redaction transforms are bound by rule name in internal/classifier.
package patterns

import _ "embed"

//go:embed record_rules.yaml
var recordRulesYAML []byte

// RecordRulesYAML returns the embedded record rule definitions.
func RecordRulesYAML() []byte { return recordRulesYAML }
