package rules

import (
	"errors"
	"fmt"
	"sort"
	"strings"
)

// Step is a wizard step; each step gates the next one.
type Step string

const (
	StepDetails Step = "details"
	StepTrigger Step = "trigger"
	StepActions Step = "actions"
	StepReview  Step = "review"
)

var Steps = []Step{StepDetails, StepTrigger, StepActions, StepReview}

// ParseStep accepts a step name or its 1-based number.
func ParseStep(raw string) (Step, bool) {
	raw = strings.ToLower(strings.TrimSpace(raw))
	for i, s := range Steps {
		if raw == string(s) || raw == fmt.Sprint(i+1) {
			return s, true
		}
	}
	return "", false
}

// Next returns the step after s, or s itself for the last step.
func (s Step) Next() Step {
	for i, step := range Steps {
		if step == s && i+1 < len(Steps) {
			return Steps[i+1]
		}
	}
	return s
}

// FieldErrors maps a field path to its message. Empty means valid.
type FieldErrors map[string]string

func (fe FieldErrors) Valid() bool { return len(fe) == 0 }

// Keys returns the field paths in sorted order.
func (fe FieldErrors) Keys() []string {
	keys := make([]string, 0, len(fe))
	for k := range fe {
		keys = append(keys, k)
	}
	sort.Strings(keys)
	return keys
}

// ValidationError wraps field errors so they can travel as an error value.
type ValidationError struct {
	Fields FieldErrors
}

func (e *ValidationError) Error() string {
	if e == nil || len(e.Fields) == 0 {
		return "validation failed"
	}
	keys := e.Fields.Keys()
	parts := make([]string, 0, len(keys))
	for _, k := range keys {
		parts = append(parts, fmt.Sprintf("%s: %s", k, e.Fields[k]))
	}
	return "validation failed: " + strings.Join(parts, "; ")
}

// Err returns nil for valid field errors and a *ValidationError otherwise.
func (fe FieldErrors) Err() error {
	if fe.Valid() {
		return nil
	}
	return &ValidationError{Fields: fe}
}

// ValidateStep checks the draft fields owned by step. The review step runs the
// full schema: every earlier step plus value-domain checks.
func ValidateStep(d Draft, step Step) FieldErrors {
	errs := FieldErrors{}
	switch step {
	case StepDetails:
		validateDetails(d, errs)
	case StepTrigger:
		validateTrigger(d.Trigger, errs)
	case StepActions:
		validateActions(d.Actions, errs)
	case StepReview:
		validateDetails(d, errs)
		validateTrigger(d.Trigger, errs)
		validateActions(d.Actions, errs)
		validateDomains(d, errs)
	default:
		errs["step"] = fmt.Sprintf("Unknown step %q", step)
	}
	return errs
}

// ValidateDraft is the save gate.
func ValidateDraft(d Draft) FieldErrors {
	return ValidateStep(d, StepReview)
}

func validateDetails(d Draft, errs FieldErrors) {
	if strings.TrimSpace(d.Name) == "" {
		errs["name"] = "Name is required"
	}
	if len(d.Scope.Departments) == 0 {
		errs["departments"] = "At least one department is required"
	}
	if len(d.Scope.Channels) == 0 {
		errs["channels"] = "At least one channel is required"
	}
}

func validateTrigger(t TriggerSpec, errs FieldErrors) {
	if strings.TrimSpace(t.Source) == "" {
		errs["source"] = "Source is required"
	}
	if strings.TrimSpace(t.Event) == "" {
		errs["event"] = "Event is required"
	}
	if len(t.Conditions) == 0 {
		errs["conditions"] = "At least one condition is required"
	}
	for i, c := range t.Conditions {
		if strings.TrimSpace(c.Field) == "" {
			errs[fmt.Sprintf("condition_%d_field", i)] = "Field is required"
		}
		if strings.TrimSpace(c.Value) == "" {
			errs[fmt.Sprintf("condition_%d_value", i)] = "Value is required"
		}
	}
}

func validateActions(actions []ActionSpec, errs FieldErrors) {
	if len(actions) == 0 {
		errs["actions"] = "At least one action is required"
	}
	for i, a := range actions {
		if a.Type == "" {
			errs[fmt.Sprintf("action_%d_type", i)] = "Action type is required"
		}
		if strings.TrimSpace(a.Service) == "" {
			errs[fmt.Sprintf("action_%d_service", i)] = "Service is required"
		}
	}
}

func validateDomains(d Draft, errs FieldErrors) {
	if d.Frequency != "" && !d.Frequency.Valid() {
		errs["frequency"] = fmt.Sprintf("Unknown frequency %q", d.Frequency)
	}
	for i, c := range d.Trigger.Conditions {
		if c.Operator != "" && !c.Operator.Valid() {
			errs[fmt.Sprintf("condition_%d_operator", i)] = fmt.Sprintf("Unknown operator %q", c.Operator)
		}
		if !c.Conjunction.Valid() {
			errs[fmt.Sprintf("condition_%d_conjunction", i)] = fmt.Sprintf("Unknown conjunction %q", c.Conjunction)
		}
	}
	for i, a := range d.Actions {
		if a.Type != "" && !a.Type.Valid() {
			errs[fmt.Sprintf("action_%d_type", i)] = fmt.Sprintf("Unknown action type %q", a.Type)
		}
	}
}

// ErrDuplicateAction is returned when two actions share a type.
var ErrDuplicateAction = errors.New("duplicate action type")

// ValidateActionCombination guards the composer: a rule carries at most one
// action of each type.
func ValidateActionCombination(actions []ActionSpec) error {
	seen := make(map[ActionType]int, len(actions))
	for i, a := range actions {
		if a.Type == "" {
			continue
		}
		if prev, ok := seen[a.Type]; ok {
			return fmt.Errorf("%w: only one %s action is allowed per rule (actions %d and %d)", ErrDuplicateAction, a.Type, prev, i)
		}
		seen[a.Type] = i
	}
	return nil
}

// ValidateRule checks the invariants every stored rule must hold.
func ValidateRule(r Rule) FieldErrors {
	errs := FieldErrors{}
	if strings.TrimSpace(r.Name) == "" {
		errs["name"] = "Name is required"
	}
	if r.Status != "" && !r.Status.Valid() {
		errs["status"] = fmt.Sprintf("Unknown status %q", r.Status)
	}
	if r.Frequency != "" && !r.Frequency.Valid() {
		errs["frequency"] = fmt.Sprintf("Unknown frequency %q", r.Frequency)
	}
	if !r.IsAutomation() {
		return errs
	}
	if r.Scope == nil || len(r.Scope.Departments) == 0 {
		errs["departments"] = "At least one department is required"
	}
	if r.Scope == nil || len(r.Scope.Channels) == 0 {
		errs["channels"] = "At least one channel is required"
	}
	validateTrigger(r.AutomationDetails.Trigger, errs)
	validateActions(r.AutomationDetails.Actions, errs)
	return errs
}
