// Package rules holds the rule, condition and protection action model of the
// console together with its validation, matching and filtering semantics.
package rules

import (
	"strings"
	"time"
)

type Status string

const (
	StatusLive     Status = "live"
	StatusDraft    Status = "draft"
	StatusDisabled Status = "disabled"
)

func (s Status) Valid() bool {
	switch s {
	case StatusLive, StatusDraft, StatusDisabled:
		return true
	default:
		return false
	}
}

// ParseStatus normalizes a user supplied status.
func ParseStatus(raw string) (Status, bool) {
	s := Status(strings.ToLower(strings.TrimSpace(raw)))
	return s, s.Valid()
}

type Frequency string

const (
	FrequencyOnce       Frequency = "once"
	FrequencyMultiple   Frequency = "multiple"
	FrequencyContinuous Frequency = "continuous"
)

func (f Frequency) Valid() bool {
	switch f {
	case FrequencyOnce, FrequencyMultiple, FrequencyContinuous:
		return true
	default:
		return false
	}
}

type Category string

const (
	CategoryBusiness Category = "business"
	CategorySecurity Category = "security"
)

// Scope limits an automation rule to departments and channels.
type Scope struct {
	Departments []string `json:"departments" yaml:"departments"`
	Channels    []string `json:"channels" yaml:"channels"`
}

func (s Scope) clone() Scope {
	return Scope{
		Departments: append([]string(nil), s.Departments...),
		Channels:    append([]string(nil), s.Channels...),
	}
}

// TriggerSpec is the source/event pair plus the conditions that must match.
type TriggerSpec struct {
	Source     string      `json:"source" yaml:"source"`
	Event      string      `json:"event" yaml:"event"`
	Conditions []Condition `json:"conditions" yaml:"conditions"`
}

func (t TriggerSpec) clone() TriggerSpec {
	t.Conditions = append([]Condition(nil), t.Conditions...)
	return t
}

type AutomationDetails struct {
	Trigger TriggerSpec  `json:"trigger" yaml:"trigger"`
	Actions []ActionSpec `json:"actions" yaml:"actions"`
}

// Rule is a stored business or security rule. Trigger and Action are display
// summaries; automation rules carry the structured form in AutomationDetails.
type Rule struct {
	ID                string             `json:"id" yaml:"id"`
	Name              string             `json:"name" yaml:"name"`
	Description       string             `json:"description,omitempty" yaml:"description,omitempty"`
	Trigger           string             `json:"trigger" yaml:"trigger"`
	Action            string             `json:"action" yaml:"action"`
	Status            Status             `json:"status" yaml:"status"`
	Frequency         Frequency          `json:"frequency" yaml:"frequency"`
	Category          Category           `json:"category,omitempty" yaml:"category,omitempty"`
	Location          string             `json:"location,omitempty" yaml:"location,omitempty"`
	Classification    string             `json:"classification,omitempty" yaml:"classification,omitempty"`
	LastModified      time.Time          `json:"lastModified" yaml:"lastModified"`
	Scope             *Scope             `json:"scope,omitempty" yaml:"scope,omitempty"`
	AutomationDetails *AutomationDetails `json:"automationDetails,omitempty" yaml:"automationDetails,omitempty"`
}

// IsAutomation reports whether the rule was built with the automation wizard.
func (r Rule) IsAutomation() bool {
	return r.AutomationDetails != nil
}

// Clone returns a deep copy so callers never share slices with a store.
func (r Rule) Clone() Rule {
	out := r
	if r.Scope != nil {
		s := r.Scope.clone()
		out.Scope = &s
	}
	if r.AutomationDetails != nil {
		ad := AutomationDetails{
			Trigger: r.AutomationDetails.Trigger.clone(),
			Actions: cloneActions(r.AutomationDetails.Actions),
		}
		out.AutomationDetails = &ad
	}
	return out
}
