package rules

import (
	"fmt"
	"os"

	"gopkg.in/yaml.v3"

	dErrors "material-master/domainerrors"
)

// Spec is the YAML form of one rule.
//
//	rules:
//	  - type: duplicate_key
//	    column: MaterialNumber
//	  - type: enum
//	    column: BaseUnit
//	    allowed: [pcs, kg, l]
type Spec struct {
	Type    string   `yaml:"type"`
	Column  string   `yaml:"column"`
	Allowed []string `yaml:"allowed,omitempty"`
}

// File is the top-level document of a rule-set file.
type File struct {
	Rules []Spec `yaml:"rules"`
}

// Valid base units and statuses of the raw material master.
var (
	MaterialBaseUnits = []string{"pcs", "kg", "l"}
	MaterialStatuses  = []string{"Draft", "Approved", "Rejected"}
)

// DefaultMaterialRules is the check list applied to a raw material master
// export when no rule-set file is configured.
func DefaultMaterialRules() []Rule {
	return []Rule{
		DuplicateKey("MaterialNumber"),
		Required("MaterialName"),
		Enumerated("BaseUnit", MaterialBaseUnits...),
		Required("Vendor"),
		Enumerated("Status", MaterialStatuses...),
		Positive("Price"),
	}
}

// Build turns a spec into a rule.
func (s Spec) Build() (Rule, error) {
	if s.Column == "" {
		return nil, fmt.Errorf("rule %q: column is required", s.Type)
	}
	switch s.Type {
	case TypeDuplicateKey:
		return DuplicateKey(s.Column), nil
	case TypeRequired:
		return Required(s.Column), nil
	case TypeEnum:
		if len(s.Allowed) == 0 {
			return nil, fmt.Errorf("rule %q on %s: allowed values are required", s.Type, s.Column)
		}
		return Enumerated(s.Column, s.Allowed...), nil
	case TypePositive:
		return Positive(s.Column), nil
	default:
		return nil, fmt.Errorf("unknown rule type %q", s.Type)
	}
}

// ParseRuleSet decodes a YAML rule-set document.
func ParseRuleSet(data []byte) ([]Rule, error) {
	var f File
	if err := yaml.Unmarshal(data, &f); err != nil {
		return nil, fmt.Errorf("parse rule set: %w", err)
	}
	if len(f.Rules) == 0 {
		return nil, fmt.Errorf("rule set has no rules")
	}
	out := make([]Rule, 0, len(f.Rules))
	for i, s := range f.Rules {
		r, err := s.Build()
		if err != nil {
			return nil, fmt.Errorf("rule %d: %w", i, err)
		}
		out = append(out, r)
	}
	return out, nil
}

// LoadRuleSet reads a rule-set file. An empty path selects
// DefaultMaterialRules.
func LoadRuleSet(path string) ([]Rule, error) {
	if path == "" {
		return DefaultMaterialRules(), nil
	}
	data, err := os.ReadFile(path)
	if os.IsNotExist(err) {
		return nil, dErrors.Wrap(err, dErrors.CodeNotFound, "rule set not found at "+path)
	}
	if err != nil {
		return nil, fmt.Errorf("read %s: %w", path, err)
	}
	return ParseRuleSet(data)
}

// Specs renders rules back into their YAML form.
func Specs(rs []Rule) []Spec {
	out := make([]Spec, 0, len(rs))
	for _, r := range rs {
		s := Spec{Type: r.Name(), Column: r.Column()}
		if e, ok := r.(enumerated); ok {
			s.Allowed = e.Allowed()
		}
		out = append(out, s)
	}
	return out
}
