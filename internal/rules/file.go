package rules

import (
	"bytes"
	"fmt"

	"gopkg.in/yaml.v3"
)

const RuleFileSchemaVersionV1 = "1.0"

// RuleFile is the YAML document rules are seeded from and checked with
// validate-rules. Drafts are wizard forms that have not been saved yet.
type RuleFile struct {
	SchemaVersion string  `yaml:"schemaVersion"`
	Rules         []Rule  `yaml:"rules"`
	Drafts        []Draft `yaml:"drafts,omitempty"`
}

// ParseRuleFile decodes a rule file. Unknown keys are rejected.
func ParseRuleFile(b []byte) (RuleFile, error) {
	var f RuleFile
	dec := yaml.NewDecoder(bytes.NewReader(b))
	dec.KnownFields(true)
	if err := dec.Decode(&f); err != nil {
		return RuleFile{}, fmt.Errorf("decode rule file: %w", err)
	}
	switch f.SchemaVersion {
	case "", RuleFileSchemaVersionV1:
	default:
		return RuleFile{}, fmt.Errorf("unsupported rule file schemaVersion %q", f.SchemaVersion)
	}
	return f, nil
}

// Problem is one validation failure found in a rule file.
type Problem struct {
	Kind   string      `json:"kind"`
	Index  int         `json:"index"`
	Name   string      `json:"name"`
	Fields FieldErrors `json:"fields"`
}

func (p Problem) String() string {
	return fmt.Sprintf("%s[%d] %q: %s", p.Kind, p.Index, p.Name, (&ValidationError{Fields: p.Fields}).Error())
}

// Check validates every rule and draft in the file.
func (f RuleFile) Check() []Problem {
	var problems []Problem
	for i, r := range f.Rules {
		errs := ValidateRule(r)
		if r.AutomationDetails != nil {
			if err := ValidateActionCombination(r.AutomationDetails.Actions); err != nil {
				errs["actions"] = err.Error()
			}
		}
		if !errs.Valid() {
			problems = append(problems, Problem{Kind: "rule", Index: i, Name: r.Name, Fields: errs})
		}
	}
	for i, d := range f.Drafts {
		errs := ValidateDraft(d.Normalize())
		if err := ValidateActionCombination(d.Actions); err != nil {
			errs["actions"] = err.Error()
		}
		if !errs.Valid() {
			problems = append(problems, Problem{Kind: "draft", Index: i, Name: d.Name, Fields: errs})
		}
	}
	return problems
}
