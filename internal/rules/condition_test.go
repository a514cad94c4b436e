package rules

import (
	"errors"
	"reflect"
	"testing"
)

func TestConditionListAdd_DefaultsConjunctionAfterFirst(t *testing.T) {
	var l ConditionList
	l = l.Add()
	if l[0].Operator != OpEquals || l[0].Conjunction != "" || l[0].Value != "" {
		t.Fatalf("first condition = %+v, want equals with no conjunction", l[0])
	}
	l = l.Add()
	if l[1].Conjunction != ConjunctionAnd {
		t.Fatalf("second conjunction = %q, want %q", l[1].Conjunction, ConjunctionAnd)
	}
}

func TestConditionListAddRemove_RoundTrip(t *testing.T) {
	base := ConditionList{
		{Field: "content_type", Operator: OpContains, Value: "contract", Conjunction: ConjunctionOr},
		{Field: "location", Operator: OpEquals, Value: "sharepoint"},
	}

	added := base.Add()
	if len(added) != len(base)+1 {
		t.Fatalf("len(added) = %d, want %d", len(added), len(base)+1)
	}
	restored, err := added.Remove(len(base))
	if err != nil {
		t.Fatalf("Remove() error = %v", err)
	}
	if !reflect.DeepEqual(restored, base) {
		t.Fatalf("restored = %+v, want %+v", restored, base)
	}
}

func TestConditionListRemove_AllowsEmpty(t *testing.T) {
	l := ConditionList{{Field: "user", Operator: OpEquals, Value: "alice"}}
	out, err := l.Remove(0)
	if err != nil {
		t.Fatalf("Remove() error = %v", err)
	}
	if len(out) != 0 {
		t.Fatalf("len = %d, want 0", len(out))
	}
	if _, err := out.Remove(0); !errors.Is(err, ErrConditionIndex) {
		t.Fatalf("Remove() on empty error = %v, want ErrConditionIndex", err)
	}
}

func TestConditionListUpdate_PatchesOnlyGivenFields(t *testing.T) {
	l := ConditionList{{Field: "user", Operator: OpEquals, Value: "alice", Conjunction: ConjunctionAnd}}
	value := "bob"
	op := OpStartsWith

	out, err := l.Update(0, ConditionPatch{Value: &value, Operator: &op})
	if err != nil {
		t.Fatalf("Update() error = %v", err)
	}
	want := Condition{Field: "user", Operator: OpStartsWith, Value: "bob", Conjunction: ConjunctionAnd}
	if out[0] != want {
		t.Fatalf("condition = %+v, want %+v", out[0], want)
	}
	if l[0].Value != "alice" {
		t.Fatalf("original list mutated: %+v", l[0])
	}
	if _, err := l.Update(3, ConditionPatch{}); !errors.Is(err, ErrConditionIndex) {
		t.Fatalf("Update(3) error = %v, want ErrConditionIndex", err)
	}
}
