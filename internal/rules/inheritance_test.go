package rules

import "testing"

func countTypes(actions []ActionSpec) map[ActionType]int {
	out := map[ActionType]int{}
	for _, a := range actions {
		out[a.Type]++
	}
	return out
}

func TestApplyInheritance_AppendsOnlyConfiguredProtections(t *testing.T) {
	base := []ActionSpec{
		NewAction(ActionTag, TagParams{Tags: []string{"Legal"}}),
		NewAction(ActionClassify, ClassifyParams{Label: "Confidential"}),
	}
	in := Inheritance{VisualMarking: "Company Confidential Banner", Encryption: "AES-256"}

	out, err := ApplyInheritance(base, in)
	if err != nil {
		t.Fatalf("ApplyInheritance() error = %v", err)
	}
	if len(out) != 4 {
		t.Fatalf("len = %d, want 4: %+v", len(out), out)
	}
	if out[2].Type != ActionVisualMarking || out[3].Type != ActionEncrypt {
		t.Fatalf("appended types = %q, %q", out[2].Type, out[3].Type)
	}
	counts := countTypes(out)
	if counts[ActionWatermark] != 0 || counts[ActionEDRM] != 0 {
		t.Fatalf("unconfigured protections appended: %v", counts)
	}
	if len(base) != 2 {
		t.Fatalf("input slice modified: %+v", base)
	}
}

func TestApplyInheritance_NeverDuplicatesExistingType(t *testing.T) {
	base := []ActionSpec{
		NewAction(ActionClassify, ClassifyParams{Label: "Restricted"}),
		NewAction(ActionWatermark, WatermarkParams{Template: "Static Company Logo"}),
	}
	in := Inheritance{Watermark: "Confidential Diagonal", EDRM: "View Only"}

	out, err := ApplyInheritance(base, in)
	if err != nil {
		t.Fatalf("ApplyInheritance() error = %v", err)
	}
	counts := countTypes(out)
	for typ, n := range counts {
		if n > 1 {
			t.Fatalf("type %q appears %d times", typ, n)
		}
	}
	if p := out[1].Parameters.(WatermarkParams); p.Template != "Confidential Diagonal" {
		t.Fatalf("watermark template = %q, want inherited value", p.Template)
	}
	if counts[ActionEDRM] != 1 {
		t.Fatalf("edrm count = %d, want 1", counts[ActionEDRM])
	}
}

func TestApplyInheritance_EmptyIsNoop(t *testing.T) {
	base := []ActionSpec{NewAction(ActionClassify, ClassifyParams{Label: "Public"})}
	out, err := ApplyInheritance(base, Inheritance{})
	if err != nil {
		t.Fatalf("ApplyInheritance() error = %v", err)
	}
	if len(out) != 1 {
		t.Fatalf("len = %d, want 1", len(out))
	}
}
