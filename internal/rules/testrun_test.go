package rules

import "testing"

func TestTestDraft_InvalidDraft(t *testing.T) {
	res := TestDraft(NewDraft(), nil)
	if res.Status != TestInvalid {
		t.Fatalf("Status = %q, want %q", res.Status, TestInvalid)
	}
	if res.Errors["name"] == "" {
		t.Fatalf("Errors = %v, want name error", res.Errors)
	}
}

func TestTestDraft_NoSample(t *testing.T) {
	res := TestDraft(contractFilesDraft(), nil)
	if res.Status != TestPassed || res.Matched != nil {
		t.Fatalf("result = %+v, want passed without match", res)
	}
}

func TestTestDraft_Sample(t *testing.T) {
	d := contractFilesDraft()

	res := TestDraft(d, map[string]any{"content_type": "Vendor Contract"})
	if res.Status != TestPassed || res.Matched == nil || !*res.Matched {
		t.Fatalf("result = %+v, want match", res)
	}

	res = TestDraft(d, map[string]any{"content_type": "invoice"})
	if res.Matched == nil || *res.Matched {
		t.Fatalf("result = %+v, want no match", res)
	}
}

func TestTestDraft_UnsupportedOperatorFails(t *testing.T) {
	d := contractFilesDraft()
	d.Trigger.Conditions[0].Operator = "older_than"
	res := TestDraft(d, map[string]any{"content_type": "x"})
	if res.Status != TestInvalid {
		t.Fatalf("Status = %q, want %q", res.Status, TestInvalid)
	}
}
