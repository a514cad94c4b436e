package rules

import (
	"errors"
	"testing"
)

func contractFilesDraft() Draft {
	d := NewDraft()
	d.Name = "Contract Files"
	d.Scope = Scope{Departments: []string{"Legal"}, Channels: []string{"Email"}}
	d.Trigger.Source = "endpoint"
	d.Trigger.Event = "create"
	d.Trigger.Conditions = []Condition{{Field: "content_type", Operator: OpContains, Value: "contract"}}
	d.Actions = []ActionSpec{NewAction(ActionTag, TagParams{Tags: []string{"Legal"}})}
	return d
}

func TestValidateDraft_ContractFilesIsValid(t *testing.T) {
	if errs := ValidateDraft(contractFilesDraft()); !errs.Valid() {
		t.Fatalf("ValidateDraft() = %v, want no errors", errs)
	}
}

func TestValidateDraft_SaveGate(t *testing.T) {
	t.Parallel()

	tests := []struct {
		name    string
		mutate  func(*Draft)
		wantKey string
	}{
		{name: "blank name", mutate: func(d *Draft) { d.Name = "  " }, wantKey: "name"},
		{name: "no departments", mutate: func(d *Draft) { d.Scope.Departments = nil }, wantKey: "departments"},
		{name: "no channels", mutate: func(d *Draft) { d.Scope.Channels = nil }, wantKey: "channels"},
		{name: "no source", mutate: func(d *Draft) { d.Trigger.Source = "" }, wantKey: "source"},
		{name: "no event", mutate: func(d *Draft) { d.Trigger.Event = "" }, wantKey: "event"},
		{name: "no conditions", mutate: func(d *Draft) { d.Trigger.Conditions = nil }, wantKey: "conditions"},
		{name: "condition field", mutate: func(d *Draft) { d.Trigger.Conditions[0].Field = "" }, wantKey: "condition_0_field"},
		{name: "condition value", mutate: func(d *Draft) { d.Trigger.Conditions[0].Value = "" }, wantKey: "condition_0_value"},
		{name: "no actions", mutate: func(d *Draft) { d.Actions = nil }, wantKey: "actions"},
		{name: "action type", mutate: func(d *Draft) { d.Actions[0] = ActionSpec{Service: DefaultService} }, wantKey: "action_0_type"},
		{name: "action service", mutate: func(d *Draft) { d.Actions[0].Service = "" }, wantKey: "action_0_service"},
	}

	for _, tc := range tests {
		tc := tc
		t.Run(tc.name, func(t *testing.T) {
			t.Parallel()
			d := contractFilesDraft()
			tc.mutate(&d)
			errs := ValidateDraft(d)
			if _, ok := errs[tc.wantKey]; !ok {
				t.Fatalf("ValidateDraft() = %v, want key %q", errs, tc.wantKey)
			}
		})
	}
}

func TestValidateStep_OnlyChecksOwnFields(t *testing.T) {
	d := NewDraft()
	d.Name = "Only details"
	d.Scope = Scope{Departments: []string{"HR"}, Channels: []string{"Box"}}

	if errs := ValidateStep(d, StepDetails); !errs.Valid() {
		t.Fatalf("details errors = %v, want none", errs)
	}
	errs := ValidateStep(d, StepTrigger)
	for _, key := range []string{"source", "event", "condition_0_field", "condition_0_value"} {
		if _, ok := errs[key]; !ok {
			t.Fatalf("trigger errors = %v, missing %q", errs, key)
		}
	}
	if _, ok := errs["name"]; ok {
		t.Fatalf("trigger step reported a details field: %v", errs)
	}
}

func TestValidateStep_ReviewRejectsUnknownValues(t *testing.T) {
	d := contractFilesDraft()
	d.Trigger.Conditions[0].Operator = "older_than"
	d.Trigger.Conditions[0].Conjunction = "XOR"

	errs := ValidateStep(d, StepReview)
	if _, ok := errs["condition_0_operator"]; !ok {
		t.Fatalf("errors = %v, want condition_0_operator", errs)
	}
	if _, ok := errs["condition_0_conjunction"]; !ok {
		t.Fatalf("errors = %v, want condition_0_conjunction", errs)
	}
}

func TestFieldErrorsErr(t *testing.T) {
	if err := (FieldErrors{}).Err(); err != nil {
		t.Fatalf("Err() = %v, want nil", err)
	}
	err := FieldErrors{"name": "Name is required"}.Err()
	var ve *ValidationError
	if !errors.As(err, &ve) {
		t.Fatalf("Err() = %T, want *ValidationError", err)
	}
	if ve.Fields["name"] == "" {
		t.Fatalf("ValidationError fields = %v", ve.Fields)
	}
}

func TestValidateActionCombination_RejectsDuplicateTypes(t *testing.T) {
	actions := []ActionSpec{
		NewAction(ActionTag, nil),
		{Service: DefaultService},
		{Service: DefaultService},
		NewAction(ActionEncrypt, nil),
	}
	if err := ValidateActionCombination(actions); err != nil {
		t.Fatalf("ValidateActionCombination() error = %v", err)
	}
	actions = append(actions, NewAction(ActionTag, nil))
	if err := ValidateActionCombination(actions); err == nil {
		t.Fatal("expected duplicate tag error")
	}
}

func TestValidateRule_PlainRulesNeedOnlyName(t *testing.T) {
	if errs := ValidateRule(Rule{Name: "CAD Files Protection", Trigger: "File extension is .dwg"}); !errs.Valid() {
		t.Fatalf("ValidateRule() = %v", errs)
	}
	r := contractFilesDraft().ToRule()
	r.Scope.Channels = nil
	if errs := ValidateRule(r); errs["channels"] == "" {
		t.Fatalf("ValidateRule() = %v, want channels error", errs)
	}
}

func TestParseStep(t *testing.T) {
	if s, ok := ParseStep("2"); !ok || s != StepTrigger {
		t.Fatalf("ParseStep(2) = %q, %v", s, ok)
	}
	if s, ok := ParseStep("Review"); !ok || s != StepReview {
		t.Fatalf("ParseStep(Review) = %q, %v", s, ok)
	}
	if _, ok := ParseStep("5"); ok {
		t.Fatal("ParseStep(5) ok, want false")
	}
	if StepReview.Next() != StepReview || StepDetails.Next() != StepTrigger {
		t.Fatal("unexpected Next() order")
	}
}
