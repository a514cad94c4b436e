package handlers

import (
	"net/http"
	"strings"
	"time"

	"github.com/labstack/echo/v5"
	"github.com/novadlp/nova-console/internal/http/viewmodels"
	"github.com/novadlp/nova-console/internal/http/views"
	"github.com/novadlp/nova-console/internal/metrics"
	"github.com/novadlp/nova-console/internal/rules"
)

const (
	ruleDateLayout      = "Jan 2, 2006"
	defaultRulesPerPage = 20
)

func parseRuleFilter(c *echo.Context) (rules.Filter, rules.SortKey) {
	f := rules.Filter{
		Search:         strings.TrimSpace(c.QueryParam("q")),
		Trigger:        strings.TrimSpace(c.QueryParam("trigger")),
		Location:       strings.TrimSpace(c.QueryParam("location")),
		Classification: strings.TrimSpace(c.QueryParam("classification")),
	}
	if bucket, ok := rules.ParseDateBucket(c.QueryParam("date")); ok {
		f.Date = bucket
	}
	var key rules.SortKey
	switch rules.SortKey(strings.ToLower(strings.TrimSpace(c.QueryParam("sort")))) {
	case rules.SortName:
		key = rules.SortName
	case rules.SortLastModified:
		key = rules.SortLastModified
	}
	return f, key
}

func (h *Handlers) filteredRules(c *echo.Context) ([]rules.Rule, rules.Filter, rules.SortKey) {
	f, key := parseRuleFilter(c)
	list := rules.SortRules(f.Apply(h.Rules.Rules(), h.now()), key)
	return list, f, key
}

// ObserveRuleCounts publishes the per-status rule gauge.
func (h *Handlers) ObserveRuleCounts() {
	counts := h.Rules.CountByStatus()
	out := make(map[string]int, len(counts))
	for status, n := range counts {
		out[string(status)] = n
	}
	metrics.ObserveRuleCounts(out)
}

// HandleRulesPage renders the filterable rules list.
func (h *Handlers) HandleRulesPage(c *echo.Context) error {
	list, f, key := h.filteredRules(c)

	editingID := ""
	if editing, ok := h.Rules.EditingRule(); ok {
		editingID = editing.ID
	}

	perPage := h.Cfg.RulesPerPage
	if perPage < 1 {
		perPage = defaultRulesPerPage
	}
	win := paginate(len(list), parsePageParam(c), perPage)
	items := make([]viewmodels.RuleItem, 0, win.End-win.Offset)
	for _, r := range list[win.Offset:win.End] {
		items = append(items, ruleItem(r, editingID))
	}

	counts := h.Rules.CountByStatus()
	statusCounts := make([]viewmodels.RuleStatusCount, 0, 3)
	for _, s := range []rules.Status{rules.StatusLive, rules.StatusDraft, rules.StatusDisabled} {
		statusCounts = append(statusCounts, viewmodels.RuleStatusCount{Status: string(s), Count: counts[s]})
	}

	data := viewmodels.RulesViewData{
		Layout: h.LayoutData(c, "Rules"),
		Filter: viewmodels.RulesFilterData{
			Search:         f.Search,
			Trigger:        f.Trigger,
			Location:       f.Location,
			Classification: f.Classification,
			Date:           string(f.Date),
			Sort:           string(key),
		},
		Items:       items,
		Counts:      statusCounts,
		Channels:    h.Catalog.Get().Channels,
		DateBuckets: []string{string(rules.DateToday), string(rules.DateWeek), string(rules.DateMonth), string(rules.DateQuarter)},
		TotalCount:  int64(len(list)),
		Page:        win.Page,
		TotalPages:  win.TotalPages,
		ShowingFrom: win.From,
		ShowingTo:   win.To,
	}
	if len(items) == 0 {
		data.EmptyState = "No rules match the current filters."
		if h.Rules.Len() == 0 {
			data.EmptyState = "No rules yet. Create one with the rule wizard."
		}
	}
	addVary(c, headerHXRequest, headerHXTarget)
	if isHX(c) && isHXTarget(c, rulesResultsTarget) {
		return h.RenderComponent(c, views.RulesPageResults(data))
	}
	return h.RenderComponent(c, views.RulesPage(data))
}

func ruleItem(r rules.Rule, editingID string) viewmodels.RuleItem {
	lastModified := ""
	if !r.LastModified.IsZero() {
		lastModified = r.LastModified.Format(ruleDateLayout)
	}
	return viewmodels.RuleItem{
		ID:             r.ID,
		Name:           r.Name,
		Description:    r.Description,
		Trigger:        r.Trigger,
		Action:         r.Action,
		Status:         string(r.Status),
		Frequency:      string(r.Frequency),
		Location:       r.Location,
		Classification: r.Classification,
		LastModified:   lastModified,
		Automation:     r.IsAutomation(),
		Editing:        r.ID != "" && r.ID == editingID,
	}
}

// HandleRulePageDuplicate duplicates a rule from the rules page.
func (h *Handlers) HandleRulePageDuplicate(c *echo.Context) error {
	dup, err := h.Rules.DuplicateRule(c.Param("id"))
	return h.finishRuleAction(c, ruleActionDuplicate, dup, err)
}

// HandleRulePageDelete deletes a rule from the rules page.
func (h *Handlers) HandleRulePageDelete(c *echo.Context) error {
	id := c.Param("id")
	r, err := h.Rules.Get(id)
	if err == nil {
		err = h.Rules.DeleteRule(id)
	}
	return h.finishRuleAction(c, ruleActionDelete, r, err)
}

// HandleRulePageStatus switches a rule between live and disabled.
func (h *Handlers) HandleRulePageStatus(c *echo.Context) error {
	status := rules.StatusDisabled
	if ParseBoolForm(c.FormValue("enabled")) {
		status = rules.StatusLive
	}
	r, err := h.Rules.SetStatus(c.Param("id"), status)
	return h.finishRuleAction(c, ruleActionStatus, r, err)
}

// HandleListRules answers the filtered rule list.
func (h *Handlers) HandleListRules(c *echo.Context) error {
	list, _, _ := h.filteredRules(c)
	return respondData(c, http.StatusOK, list)
}

func (h *Handlers) HandleGetRule(c *echo.Context) error {
	id, err := pathID(c)
	if err != nil {
		return h.respondError(c, err)
	}
	r, err := h.Rules.Get(id)
	if err != nil {
		return h.respondError(c, err)
	}
	return respondData(c, http.StatusOK, r)
}

// HandleCreateRule stores a rule posted as JSON.
func (h *Handlers) HandleCreateRule(c *echo.Context) error {
	var in rules.Rule
	if err := decodeJSON(c, &in); err != nil {
		return h.respondError(c, err)
	}
	r, err := h.Rules.AddRule(in)
	metrics.RecordRuleMutation("create", err)
	if err != nil {
		return h.respondError(c, err)
	}
	h.ObserveRuleCounts()
	return respondData(c, http.StatusCreated, r)
}

// HandleUpdateRule replaces the rule named by the path id.
func (h *Handlers) HandleUpdateRule(c *echo.Context) error {
	id, err := pathID(c)
	if err != nil {
		return h.respondError(c, err)
	}
	var in rules.Rule
	if err := decodeJSON(c, &in); err != nil {
		return h.respondError(c, err)
	}
	in.ID = id
	r, err := h.Rules.UpdateRule(in)
	metrics.RecordRuleMutation("update", err)
	if err != nil {
		return h.respondError(c, err)
	}
	return respondData(c, http.StatusOK, r)
}

func (h *Handlers) HandleDeleteRule(c *echo.Context) error {
	id, err := pathID(c)
	if err != nil {
		return h.respondError(c, err)
	}
	err = h.Rules.DeleteRule(id)
	metrics.RecordRuleMutation("delete", err)
	if err != nil {
		return h.respondError(c, err)
	}
	h.ObserveRuleCounts()
	return c.NoContent(http.StatusNoContent)
}

func (h *Handlers) HandleDuplicateRule(c *echo.Context) error {
	id, err := pathID(c)
	if err != nil {
		return h.respondError(c, err)
	}
	dup, err := h.Rules.DuplicateRule(id)
	metrics.RecordRuleMutation("duplicate", err)
	if err != nil {
		return h.respondError(c, err)
	}
	h.ObserveRuleCounts()
	return respondData(c, http.StatusCreated, dup)
}

type ruleStatusRequest struct {
	Status string `json:"status"`
}

func (h *Handlers) HandleSetRuleStatus(c *echo.Context) error {
	id, err := pathID(c)
	if err != nil {
		return h.respondError(c, err)
	}
	var in ruleStatusRequest
	if err := decodeJSON(c, &in); err != nil {
		return h.respondError(c, err)
	}
	status, _ := rules.ParseStatus(in.Status)
	r, err := h.Rules.SetStatus(id, status)
	metrics.RecordRuleMutation("status", err)
	if err != nil {
		return h.respondError(c, err)
	}
	h.ObserveRuleCounts()
	return respondData(c, http.StatusOK, r)
}

type ruleTestRequest struct {
	Draft  *rules.Draft   `json:"draft"`
	Sample map[string]any `json:"sample"`
}

// HandleTestRule dry-runs a draft against an optional sample. Without a draft
// in the body the wizard's session draft is tested.
func (h *Handlers) HandleTestRule(c *echo.Context) error {
	var in ruleTestRequest
	if err := decodeOptionalJSON(c, &in); err != nil {
		return h.respondError(c, err)
	}
	var draft rules.Draft
	if in.Draft != nil {
		draft = *in.Draft
	} else {
		state, err := h.loadWizard(c)
		if err != nil {
			return h.respondError(c, err)
		}
		draft = state.Draft
	}

	start := time.Now()
	res := rules.TestDraft(draft, in.Sample)
	metrics.RuleTestDuration.Observe(time.Since(start).Seconds())
	metrics.RuleTestsTotal.WithLabelValues(string(res.Status)).Inc()

	return respondData(c, http.StatusOK, res)
}

// HandleGetEditingRule answers the rule in the editing slot, or null.
func (h *Handlers) HandleGetEditingRule(c *echo.Context) error {
	r, ok := h.Rules.EditingRule()
	if !ok {
		return c.JSON(http.StatusOK, APIResult{Success: true})
	}
	return respondData(c, http.StatusOK, r)
}

type editingRuleRequest struct {
	ID string `json:"id"`
}

// HandleSetEditingRule fills or clears the editing slot. Filling it also
// loads the rule into the caller's wizard draft.
func (h *Handlers) HandleSetEditingRule(c *echo.Context) error {
	var in editingRuleRequest
	if err := decodeJSON(c, &in); err != nil {
		return h.respondError(c, err)
	}
	id := strings.TrimSpace(in.ID)
	if err := h.Rules.SetEditingRule(id); err != nil {
		return h.respondError(c, err)
	}
	if id == "" {
		return c.JSON(http.StatusOK, APIResult{Success: true})
	}
	r, err := h.Rules.Get(id)
	if err != nil {
		return h.respondError(c, err)
	}
	state := newWizardState()
	state.Draft = rules.DraftFromRule(r)
	state.EditingID = r.ID
	if err := h.saveWizard(c, state); err != nil {
		return h.respondError(c, err)
	}
	return respondData(c, http.StatusOK, r)
}
