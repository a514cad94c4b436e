package tags

import (
	"errors"
	"fmt"
	"sort"
	"strings"
)

var ErrInvalidFilter = errors.New("invalid tag filter")

type SortKey string

const (
	SortName        SortKey = "name"
	SortLastUpdated SortKey = "lastUpdated"
	SortUsageCount  SortKey = "usageCount"
	SortStatus      SortKey = "status"
)

// Filter selects and orders tags. An empty Status means all; the zero
// filter lists every tag, most recently updated first.
type Filter struct {
	Query  string
	Status string
	Sort   SortKey
	Asc    bool
}

func (f Filter) normalize() (Filter, error) {
	f.Query = strings.ToLower(strings.TrimSpace(f.Query))
	f.Status = strings.ToLower(strings.TrimSpace(f.Status))
	switch Status(f.Status) {
	case "", StatusActive, StatusDeprecated:
	default:
		if f.Status != "all" {
			return f, fmt.Errorf("%w: status %q", ErrInvalidFilter, f.Status)
		}
		f.Status = ""
	}
	switch f.Sort {
	case "":
		f.Sort = SortLastUpdated
	case SortName, SortLastUpdated, SortUsageCount, SortStatus:
	default:
		return f, fmt.Errorf("%w: sort %q", ErrInvalidFilter, f.Sort)
	}
	return f, nil
}

func (f Filter) matches(t Tag) bool {
	if f.Status != "" && string(t.Status) != f.Status {
		return false
	}
	if f.Query == "" {
		return true
	}
	return strings.Contains(strings.ToLower(t.Name), f.Query) ||
		strings.Contains(strings.ToLower(t.Description), f.Query)
}

func (f Filter) order(tags []Tag) {
	compare := func(a, b Tag) int {
		switch f.Sort {
		case SortName:
			return strings.Compare(strings.ToLower(a.Name), strings.ToLower(b.Name))
		case SortUsageCount:
			return a.UsageCount - b.UsageCount
		case SortStatus:
			return strings.Compare(string(a.Status), string(b.Status))
		default:
			return a.LastUpdated.Compare(b.LastUpdated)
		}
	}
	sort.SliceStable(tags, func(i, j int) bool {
		c := compare(tags[i], tags[j])
		if f.Asc {
			return c < 0
		}
		return c > 0
	})
}
