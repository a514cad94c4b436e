package rules

import (
	"strings"
)

// Draft is the automation rule form that the wizard edits step by step.
type Draft struct {
	Name        string       `json:"name" yaml:"name"`
	Description string       `json:"description" yaml:"description"`
	Frequency   Frequency    `json:"frequency" yaml:"frequency"`
	Trigger     TriggerSpec  `json:"trigger" yaml:"trigger"`
	Actions     []ActionSpec `json:"actions" yaml:"actions"`
	Scope       Scope        `json:"scope" yaml:"scope"`
}

// NewDraft returns the form an empty wizard starts from.
func NewDraft() Draft {
	return Draft{
		Frequency: FrequencyContinuous,
		Trigger: TriggerSpec{
			Conditions: []Condition{{Operator: OpEquals, Conjunction: ConjunctionAnd}},
		},
		Actions: []ActionSpec{},
		Scope:   Scope{Departments: []string{}, Channels: []string{}},
	}
}

// DraftFromRule loads a stored automation rule back into the form. Rules
// without automation details start from the rule's name and description.
func DraftFromRule(r Rule) Draft {
	d := NewDraft()
	d.Name = r.Name
	d.Description = r.Description
	if r.Frequency != "" {
		d.Frequency = r.Frequency
	}
	if r.Scope != nil {
		d.Scope = r.Scope.clone()
	}
	if r.AutomationDetails != nil {
		d.Trigger = r.AutomationDetails.Trigger.clone()
		if len(d.Trigger.Conditions) == 0 {
			d.Trigger.Conditions = []Condition{{Operator: OpEquals, Conjunction: ConjunctionAnd}}
		}
		d.Actions = cloneActions(r.AutomationDetails.Actions)
	}
	return d
}

// Normalize trims free text and fills defaults the form would have shown.
func (d Draft) Normalize() Draft {
	d.Name = strings.TrimSpace(d.Name)
	d.Description = strings.TrimSpace(d.Description)
	if d.Frequency == "" {
		d.Frequency = FrequencyContinuous
	}
	d.Trigger = d.Trigger.clone()
	d.Trigger.Source = strings.TrimSpace(d.Trigger.Source)
	d.Trigger.Event = strings.TrimSpace(d.Trigger.Event)
	for i, c := range d.Trigger.Conditions {
		c.Field = strings.TrimSpace(c.Field)
		if c.Operator == "" {
			c.Operator = OpEquals
		}
		c.Conjunction = Conjunction(strings.ToUpper(string(c.Conjunction)))
		d.Trigger.Conditions[i] = c
	}
	d.Actions = cloneActions(d.Actions)
	d.Scope = d.Scope.clone()
	return d
}

// ToRule converts a validated draft into the stored rule shape. Identity,
// status and timestamps are assigned by the store.
func (d Draft) ToRule() Rule {
	d = d.Normalize()
	scope := d.Scope.clone()
	return Rule{
		Name:        d.Name,
		Description: d.Description,
		Trigger:     TriggerSummary(d.Trigger),
		Action:      ActionSummary(d.Actions),
		Frequency:   d.Frequency,
		Category:    CategoryBusiness,
		Location:    strings.Join(scope.Channels, ", "),
		Scope:       &scope,
		AutomationDetails: &AutomationDetails{
			Trigger: d.Trigger.clone(),
			Actions: cloneActions(d.Actions),
		},
	}
}

// TriggerSummary renders "<source> - <event>".
func TriggerSummary(t TriggerSpec) string {
	return t.Source + " - " + t.Event
}
