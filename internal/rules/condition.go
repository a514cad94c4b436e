package rules

import (
	"errors"
	"fmt"
	"strings"
)

type Operator string

const (
	OpEquals      Operator = "equals"
	OpContains    Operator = "contains"
	OpGreaterThan Operator = "greater_than"
	OpLessThan    Operator = "less_than"
	OpStartsWith  Operator = "starts_with"
	OpEndsWith    Operator = "ends_with"
)

// Operators lists the supported operators in display order.
var Operators = []Operator{OpEquals, OpContains, OpGreaterThan, OpLessThan, OpStartsWith, OpEndsWith}

func (o Operator) Valid() bool {
	for _, op := range Operators {
		if o == op {
			return true
		}
	}
	return false
}

type Conjunction string

const (
	ConjunctionAnd Conjunction = "AND"
	ConjunctionOr  Conjunction = "OR"
)

func (c Conjunction) Valid() bool {
	return c == "" || c == ConjunctionAnd || c == ConjunctionOr
}

// Condition is one field/operator/value comparison. Conjunction joins this
// condition with the one that follows it; the last condition's conjunction is
// never read.
type Condition struct {
	Field       string      `json:"field" yaml:"field"`
	Operator    Operator    `json:"operator" yaml:"operator"`
	Value       string      `json:"value" yaml:"value"`
	Conjunction Conjunction `json:"conjunction,omitempty" yaml:"conjunction,omitempty"`
}

func (c Condition) String() string {
	if strings.TrimSpace(c.Field) == "" || strings.TrimSpace(c.Value) == "" {
		return "Not configured"
	}
	return fmt.Sprintf("%s %s %s", c.Field, c.Operator, c.Value)
}

// ConditionPatch carries the fields to replace; nil fields are left alone.
type ConditionPatch struct {
	Field       *string      `json:"field,omitempty"`
	Operator    *Operator    `json:"operator,omitempty"`
	Value       *string      `json:"value,omitempty"`
	Conjunction *Conjunction `json:"conjunction,omitempty"`
}

// ErrConditionIndex is returned for indexes outside the condition list.
var ErrConditionIndex = errors.New("condition index out of range")

// ConditionList is the ordered condition sequence edited by the builder.
type ConditionList []Condition

// NewCondition returns the default condition appended at position n.
func NewCondition(n int) Condition {
	c := Condition{Operator: OpEquals}
	if n > 0 {
		c.Conjunction = ConjunctionAnd
	}
	return c
}

// Add appends a default condition.
func (l ConditionList) Add() ConditionList {
	out := make(ConditionList, 0, len(l)+1)
	out = append(out, l...)
	return append(out, NewCondition(len(l)))
}

// Remove drops the condition at index. The list may become empty; saving an
// empty trigger is blocked by validation.
func (l ConditionList) Remove(index int) (ConditionList, error) {
	if index < 0 || index >= len(l) {
		return l, fmt.Errorf("%w: %d", ErrConditionIndex, index)
	}
	out := make(ConditionList, 0, len(l)-1)
	out = append(out, l[:index]...)
	return append(out, l[index+1:]...), nil
}

// Update replaces the patched fields of the condition at index in place.
func (l ConditionList) Update(index int, patch ConditionPatch) (ConditionList, error) {
	if index < 0 || index >= len(l) {
		return l, fmt.Errorf("%w: %d", ErrConditionIndex, index)
	}
	out := append(ConditionList(nil), l...)
	c := out[index]
	if patch.Field != nil {
		c.Field = strings.TrimSpace(*patch.Field)
	}
	if patch.Operator != nil {
		c.Operator = *patch.Operator
	}
	if patch.Value != nil {
		c.Value = *patch.Value
	}
	if patch.Conjunction != nil {
		c.Conjunction = *patch.Conjunction
	}
	out[index] = c
	return out, nil
}
