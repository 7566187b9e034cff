package classifier

import (
	"fmt"

	"github.com/dativo-io/piiredact/patterns"
)

// transforms binds every rule in the embedded table to its redaction.
var transforms = map[string]Transform{
	"phone":          RedactPhone,
	"aadhar":         RedactAadhar,
	"passport":       RedactPassport,
	"upi":            RedactUPI,
	"name":           RedactName,
	"email":          RedactEmail,
	"address":        RedactAddress,
	"device_context": RedactIdentifier,
}

// DefaultRuleConfigs returns the rule definitions parsed from the embedded
// record_rules.yaml, in priority order.
func DefaultRuleConfigs() ([]RuleConfig, error) {
	rf, err := ParseRuleFile(patterns.RecordRulesYAML())
	if err != nil {
		return nil, fmt.Errorf("parsing embedded record rules: %w", err)
	}
	return rf.Rules, nil
}

// table is the compiled rule set. It is read-only after init.
var table []Rule

func init() {
	configs, err := DefaultRuleConfigs()
	if err != nil {
		panic(fmt.Sprintf("loading embedded record rules: %v", err))
	}
	compiled, err := CompileRules(configs, transforms)
	if err != nil {
		panic(fmt.Sprintf("compiling embedded record rules: %v", err))
	}
	table = compiled
}
