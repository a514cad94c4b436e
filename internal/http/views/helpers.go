package views

import (
	"net/url"
	"strconv"
	"strings"

	"github.com/novadlp/nova-console/internal/http/viewmodels"
)

func FormatInt(v int) string {
	return strconv.Itoa(v)
}

func FormatInt64(v int64) string {
	return strconv.FormatInt(v, 10)
}

func QueryEscape(v string) string {
	return url.QueryEscape(v)
}

// RulesListURL builds the rules page link for a filter and page.
func RulesListURL(f viewmodels.RulesFilterData, page int) string {
	values := url.Values{}
	if q := strings.TrimSpace(f.Search); q != "" {
		values.Set("q", q)
	}
	if trigger := strings.TrimSpace(f.Trigger); trigger != "" {
		values.Set("trigger", trigger)
	}
	if location := strings.TrimSpace(f.Location); location != "" {
		values.Set("location", location)
	}
	if classification := strings.TrimSpace(f.Classification); classification != "" {
		values.Set("classification", classification)
	}
	if date := strings.TrimSpace(f.Date); date != "" {
		values.Set("date", date)
	}
	if sort := strings.TrimSpace(f.Sort); sort != "" {
		values.Set("sort", sort)
	}
	if page > 1 {
		values.Set("page", strconv.Itoa(page))
	}
	if len(values) == 0 {
		return "/rules"
	}
	return "/rules?" + values.Encode()
}

func RuleStatusBadgeClass(status string) string {
	switch strings.ToLower(strings.TrimSpace(status)) {
	case "live":
		return "badge badge-success"
	case "draft":
		return "badge badge-warning"
	case "disabled":
		return "badge badge-muted"
	default:
		return "badge"
	}
}

func ToastClass(category string) string {
	switch category {
	case "success", "error", "warning":
		return "toast toast-" + category
	default:
		return "toast toast-info"
	}
}

func PageTitle(title string) string {
	if title = strings.TrimSpace(title); title != "" {
		return title + " | Nova Console"
	}
	return "Nova Console"
}

// RuleActionURL is the rules page POST target for one rule action.
func RuleActionURL(id, action string) string {
	return "/rules/" + url.PathEscape(id) + "/" + action
}

func ShowingText(data viewmodels.RulesViewData) string {
	if data.TotalCount <= 0 {
		return "Showing 0 of 0"
	}
	return "Showing " + FormatInt(data.ShowingFrom) + "-" + FormatInt(data.ShowingTo) + " of " + FormatInt64(data.TotalCount)
}
