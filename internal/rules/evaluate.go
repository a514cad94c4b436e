package rules

import (
	"fmt"
	"strconv"
	"strings"
)

// ConditionResult is the outcome of a single condition against a sample.
type ConditionResult struct {
	Index   int    `json:"index"`
	Field   string `json:"field"`
	Matched bool   `json:"matched"`
	Present bool   `json:"present"`
}

// Evaluate folds the conditions left to right: the conjunction stored on
// condition i-1 joins the running result with condition i. There is no
// precedence grouping. An empty list never matches.
func Evaluate(conditions []Condition, attrs map[string]any) (bool, []ConditionResult, error) {
	if len(conditions) == 0 {
		return false, nil, nil
	}

	results := make([]ConditionResult, 0, len(conditions))
	var acc bool
	for i, c := range conditions {
		actual, ok := attrs[c.Field]
		matched := false
		if ok {
			var err error
			matched, err = evalOp(actual, c.Operator, c.Value)
			if err != nil {
				return false, nil, fmt.Errorf("condition %d: %w", i, err)
			}
		}
		results = append(results, ConditionResult{Index: i, Field: c.Field, Matched: matched, Present: ok})

		if i == 0 {
			acc = matched
			continue
		}
		switch conditions[i-1].Conjunction {
		case ConjunctionOr:
			acc = acc || matched
		default:
			acc = acc && matched
		}
	}
	return acc, results, nil
}

func evalOp(actual any, op Operator, expected string) (bool, error) {
	switch op {
	case OpEquals, "":
		return valuesEqual(actual, expected), nil
	case OpGreaterThan, OpLessThan:
		cmp, ok := compareOrdered(actual, expected)
		if !ok {
			return false, nil
		}
		if op == OpGreaterThan {
			return cmp > 0, nil
		}
		return cmp < 0, nil
	case OpContains:
		switch a := actual.(type) {
		case []any:
			for _, v := range a {
				if valuesEqual(v, expected) {
					return true, nil
				}
			}
			return false, nil
		case string:
			return strings.Contains(strings.ToLower(a), strings.ToLower(expected)), nil
		default:
			return false, nil
		}
	case OpStartsWith:
		s, ok := actual.(string)
		return ok && strings.HasPrefix(strings.ToLower(s), strings.ToLower(expected)), nil
	case OpEndsWith:
		s, ok := actual.(string)
		return ok && strings.HasSuffix(strings.ToLower(s), strings.ToLower(expected)), nil
	default:
		return false, fmt.Errorf("unsupported operator %q", op)
	}
}

func valuesEqual(actual any, expected string) bool {
	if af, ok := asFloat(actual); ok {
		if bf, err := strconv.ParseFloat(strings.TrimSpace(expected), 64); err == nil {
			return af == bf
		}
		return false
	}
	switch a := actual.(type) {
	case string:
		return strings.EqualFold(a, expected)
	case bool:
		b, err := strconv.ParseBool(strings.TrimSpace(expected))
		return err == nil && a == b
	default:
		return false
	}
}

func compareOrdered(actual any, expected string) (int, bool) {
	if af, ok := asFloat(actual); ok {
		bf, err := strconv.ParseFloat(strings.TrimSpace(expected), 64)
		if err != nil {
			return 0, false
		}
		return compareFloats(af, bf), true
	}
	as, ok := actual.(string)
	if !ok {
		return 0, false
	}
	// Numeric strings compare numerically, everything else lexically.
	if af, err := strconv.ParseFloat(strings.TrimSpace(as), 64); err == nil {
		if bf, err := strconv.ParseFloat(strings.TrimSpace(expected), 64); err == nil {
			return compareFloats(af, bf), true
		}
	}
	return strings.Compare(as, expected), true
}

func compareFloats(a, b float64) int {
	switch {
	case a < b:
		return -1
	case a > b:
		return 1
	default:
		return 0
	}
}

func asFloat(v any) (float64, bool) {
	switch t := v.(type) {
	case float64:
		return t, true
	case float32:
		return float64(t), true
	case int:
		return float64(t), true
	case int64:
		return float64(t), true
	default:
		return 0, false
	}
}
