package classifier

import (
	"fmt"
	"regexp"

	"gopkg.in/yaml.v3"
)

// RuleFile is the top-level YAML structure of the embedded rule table.
type RuleFile struct {
	Rules []RuleConfig `yaml:"rules"`
}

// RuleConfig is the declarative half of a Rule. Order in the file is the
// evaluation priority.
type RuleConfig struct {
	Name     string   `yaml:"name" json:"name"`
	Kind     Kind     `yaml:"kind" json:"kind"`
	Category Category `yaml:"category,omitempty" json:"category,omitempty"`
	Fields   []string `yaml:"fields" json:"fields"`

	// Predicate parameters. Every non-zero parameter must hold for a match;
	// a rule with none of them matches any non-blank string.
	Regex             string `yaml:"regex,omitempty" json:"regex,omitempty"`
	MinTokens         int    `yaml:"min_tokens,omitempty" json:"min_tokens,omitempty"`
	MinLength         int    `yaml:"min_length,omitempty" json:"min_length,omitempty"`
	SingleLabelDomain bool   `yaml:"single_label_domain,omitempty" json:"single_label_domain,omitempty"`
}

// ParseRuleFile parses rule YAML bytes into a RuleFile.
func ParseRuleFile(data []byte) (*RuleFile, error) {
	var rf RuleFile
	if err := yaml.Unmarshal(data, &rf); err != nil {
		return nil, fmt.Errorf("parsing rule YAML: %w", err)
	}
	return &rf, nil
}

// CompileRules turns rule configs into the runtime table, binding each rule
// to its transform by name. It rejects tables where two rules share a field,
// since the evaluator relies on every field having at most one transform.
func CompileRules(configs []RuleConfig, transforms map[string]Transform) ([]Rule, error) {
	rules := make([]Rule, 0, len(configs))
	seenNames := make(map[string]bool, len(configs))
	fieldOwner := make(map[string]string)

	for _, rc := range configs {
		if rc.Name == "" {
			return nil, fmt.Errorf("rule without a name")
		}
		if seenNames[rc.Name] {
			return nil, fmt.Errorf("duplicate rule %q", rc.Name)
		}
		seenNames[rc.Name] = true

		switch rc.Kind {
		case KindStandalone:
			if rc.Category != "" {
				return nil, fmt.Errorf("standalone rule %q must not declare a category", rc.Name)
			}
		case KindCombinatorial:
			if rc.Category == "" {
				return nil, fmt.Errorf("combinatorial rule %q needs a category", rc.Name)
			}
		default:
			return nil, fmt.Errorf("rule %q has unknown kind %q", rc.Name, rc.Kind)
		}

		if len(rc.Fields) == 0 {
			return nil, fmt.Errorf("rule %q has no fields", rc.Name)
		}
		for _, f := range rc.Fields {
			if owner, taken := fieldOwner[f]; taken {
				return nil, fmt.Errorf("field %q claimed by both %q and %q", f, owner, rc.Name)
			}
			fieldOwner[f] = rc.Name
		}

		transform, ok := transforms[rc.Name]
		if !ok || transform == nil {
			return nil, fmt.Errorf("no redaction transform for rule %q", rc.Name)
		}

		rule := Rule{
			Name:              rc.Name,
			Kind:              rc.Kind,
			Category:          rc.Category,
			Fields:            append([]string(nil), rc.Fields...),
			minTokens:         rc.MinTokens,
			minLength:         rc.MinLength,
			singleLabelDomain: rc.SingleLabelDomain,
			redact:            transform,
		}
		if rc.Regex != "" {
			re, err := regexp.Compile(rc.Regex)
			if err != nil {
				return nil, fmt.Errorf("compiling pattern for rule %q: %w", rc.Name, err)
			}
			rule.pattern = re
		}
		rules = append(rules, rule)
	}

	return rules, nil
}
