package rules

import (
	"sort"
	"strings"
	"time"
)

type DateBucket string

const (
	DateAny     DateBucket = ""
	DateToday   DateBucket = "today"
	DateWeek    DateBucket = "week"
	DateMonth   DateBucket = "month"
	DateQuarter DateBucket = "quarter"
)

func ParseDateBucket(raw string) (DateBucket, bool) {
	b := DateBucket(strings.ToLower(strings.TrimSpace(raw)))
	switch b {
	case DateAny, DateToday, DateWeek, DateMonth, DateQuarter:
		return b, true
	default:
		return DateAny, false
	}
}

// Filter narrows a rule list. Zero fields match everything.
type Filter struct {
	Search         string
	Trigger        string
	Location       string
	Classification string
	Date           DateBucket
}

func (f Filter) IsZero() bool {
	return f == Filter{}
}

// Apply returns the rules matching every set predicate, in input order. The
// date boundaries are computed once from now.
func (f Filter) Apply(rules []Rule, now time.Time) []Rule {
	preds := f.predicates(now)
	out := make([]Rule, 0, len(rules))
	for _, r := range rules {
		if matchesAll(r, preds) {
			out = append(out, r)
		}
	}
	return out
}

type predicate func(Rule) bool

func matchesAll(r Rule, preds []predicate) bool {
	for _, p := range preds {
		if !p(r) {
			return false
		}
	}
	return true
}

func (f Filter) predicates(now time.Time) []predicate {
	var preds []predicate
	if q := strings.ToLower(strings.TrimSpace(f.Search)); q != "" {
		preds = append(preds, func(r Rule) bool {
			return strings.Contains(strings.ToLower(r.Name), q) ||
				strings.Contains(strings.ToLower(r.Description), q)
		})
	}
	if t := strings.ToLower(strings.TrimSpace(f.Trigger)); t != "" {
		preds = append(preds, func(r Rule) bool {
			return strings.Contains(strings.ToLower(r.Trigger), t)
		})
	}
	if loc := strings.TrimSpace(f.Location); loc != "" {
		preds = append(preds, func(r Rule) bool {
			return strings.Contains(r.Location, loc)
		})
	}
	if cls := strings.TrimSpace(f.Classification); cls != "" {
		preds = append(preds, func(r Rule) bool {
			return strings.EqualFold(strings.TrimSpace(r.Classification), cls)
		})
	}
	if f.Date != DateAny {
		preds = append(preds, datePredicate(f.Date, now))
	}
	return preds
}

func datePredicate(bucket DateBucket, now time.Time) predicate {
	switch bucket {
	case DateToday:
		y, m, d := now.Date()
		return func(r Rule) bool {
			ry, rm, rd := r.LastModified.In(now.Location()).Date()
			return ry == y && rm == m && rd == d
		}
	case DateWeek:
		return notBefore(now.AddDate(0, 0, -7))
	case DateMonth:
		return notBefore(now.AddDate(0, -1, 0))
	case DateQuarter:
		return notBefore(now.AddDate(0, -3, 0))
	default:
		return func(Rule) bool { return true }
	}
}

func notBefore(boundary time.Time) predicate {
	return func(r Rule) bool {
		return !r.LastModified.Before(boundary)
	}
}

type SortKey string

const (
	SortNone         SortKey = ""
	SortName         SortKey = "name"
	SortLastModified SortKey = "last_modified"
)

// SortRules orders a copy of rules. Last-modified sorts newest first.
func SortRules(rules []Rule, key SortKey) []Rule {
	out := append([]Rule(nil), rules...)
	switch key {
	case SortName:
		sort.SliceStable(out, func(i, j int) bool {
			return strings.ToLower(out[i].Name) < strings.ToLower(out[j].Name)
		})
	case SortLastModified:
		sort.SliceStable(out, func(i, j int) bool {
			return out[i].LastModified.After(out[j].LastModified)
		})
	}
	return out
}
