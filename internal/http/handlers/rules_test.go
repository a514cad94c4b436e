package handlers

import (
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/novadlp/nova-console/internal/rules"
)

func TestHandleRulesPageFiltersAndRenders(t *testing.T) {
	th := newHarness(t)

	rec := th.call(t, th.h.HandleRulesPage, http.MethodGet, "/rules?q=cad", "", nil)
	if rec.Code != http.StatusOK {
		t.Fatalf("status=%d want %d", rec.Code, http.StatusOK)
	}
	if ct := rec.Header().Get("Content-Type"); !strings.HasPrefix(ct, "text/html") {
		t.Fatalf("content-type = %q", ct)
	}
	body := rec.Body.String()
	if !strings.Contains(body, "CAD Files") {
		t.Fatalf("body missing CAD rule: %s", body)
	}
	if strings.Contains(body, `data-rule-id="orchestration-1"`) {
		t.Fatalf("filtered page contains Contract Files")
	}
}

func TestHandleRulesPagePaginates(t *testing.T) {
	th := newHarness(t)
	th.h.Cfg.RulesPerPage = 4

	body := th.call(t, th.h.HandleRulesPage, http.MethodGet, "/rules?page=3", "", nil).Body.String()
	if !strings.Contains(body, "Showing 9-10 of 10") {
		t.Fatalf("body missing page range: %s", body)
	}
	if !strings.Contains(body, `rel="prev" href="/rules?page=2"`) {
		t.Fatalf("body missing prev link")
	}
}

func TestHandleRulePageStatusSetsFlashToast(t *testing.T) {
	th := newHarness(t)

	req := httptest.NewRequest(http.MethodPost, "/rules/orchestration-1/status", strings.NewReader("enabled=off"))
	req.Header.Set("Content-Type", "application/x-www-form-urlencoded")
	rec := httptest.NewRecorder()
	c := th.e.NewContext(req, rec)
	c.SetPathValues(idParam("orchestration-1"))

	if err := th.h.HandleRulePageStatus(c); err != nil {
		t.Fatalf("HandleRulePageStatus() error = %v", err)
	}
	if rec.Code != http.StatusSeeOther {
		t.Fatalf("status=%d want %d", rec.Code, http.StatusSeeOther)
	}
	r, err := th.h.Rules.Get("orchestration-1")
	if err != nil {
		t.Fatalf("Get() error = %v", err)
	}
	if r.Status != rules.StatusDisabled {
		t.Fatalf("status = %q, want disabled", r.Status)
	}
	if !strings.Contains(rec.Header().Get("Set-Cookie"), flashToastCookieName+"=") {
		t.Fatalf("missing flash toast cookie: %q", rec.Header().Get("Set-Cookie"))
	}
}

func TestHandleRulePageDeleteMissingRedirectsWithError(t *testing.T) {
	th := newHarness(t)
	rec := th.call(t, th.h.HandleRulePageDelete, http.MethodPost, "/rules/missing/delete", "", idParam("missing"))
	if rec.Code != http.StatusSeeOther {
		t.Fatalf("status=%d want %d", rec.Code, http.StatusSeeOther)
	}
	if got := rec.Header().Get("Location"); got != "/rules" {
		t.Fatalf("location = %q", got)
	}
}

func TestHandleCreateRule(t *testing.T) {
	th := newHarness(t)

	rec := th.call(t, th.h.HandleCreateRule, http.MethodPost, "/api/rules", `{"name":"  Board Minutes  ","trigger":"File name contains minutes","action":"classify"}`, nil)
	if rec.Code != http.StatusCreated {
		t.Fatalf("status=%d want %d: %s", rec.Code, http.StatusCreated, rec.Body.String())
	}
	var created rules.Rule
	decodeData(t, decodeResult(t, rec), &created)
	if created.ID == "" || created.Name != "Board Minutes" {
		t.Fatalf("created = %+v", created)
	}
	if created.Status != rules.StatusLive || created.Frequency != rules.FrequencyContinuous {
		t.Fatalf("defaults = %q/%q", created.Status, created.Frequency)
	}
	if !created.LastModified.Equal(testNow) {
		t.Fatalf("lastModified = %v, want %v", created.LastModified, testNow)
	}
}

func TestHandleCreateRuleValidationFailure(t *testing.T) {
	th := newHarness(t)

	rec := th.call(t, th.h.HandleCreateRule, http.MethodPost, "/api/rules", `{"name":" "}`, nil)
	if rec.Code != http.StatusUnprocessableEntity {
		t.Fatalf("status=%d want %d", rec.Code, http.StatusUnprocessableEntity)
	}
	res := decodeResult(t, rec)
	if res.Success || res.Errors["name"] == "" {
		t.Fatalf("result = %+v", res)
	}
}

func TestHandleGetRuleNotFound(t *testing.T) {
	th := newHarness(t)
	rec := th.call(t, th.h.HandleGetRule, http.MethodGet, "/api/rules/nope", "", idParam("nope"))
	if rec.Code != http.StatusNotFound {
		t.Fatalf("status=%d want %d", rec.Code, http.StatusNotFound)
	}
	if res := decodeResult(t, rec); res.Success || res.Error == "" {
		t.Fatalf("result = %+v", res)
	}
}

func TestHandleUpdateRuleKeepsStatus(t *testing.T) {
	th := newHarness(t)
	if _, err := th.h.Rules.SetStatus("security-1", rules.StatusDisabled); err != nil {
		t.Fatalf("SetStatus() error = %v", err)
	}

	rec := th.call(t, th.h.HandleUpdateRule, http.MethodPut, "/api/rules/security-1", `{"name":"Network Share","status":"live","trigger":"Folder path starts with //share"}`, idParam("security-1"))
	if rec.Code != http.StatusOK {
		t.Fatalf("status=%d want %d: %s", rec.Code, http.StatusOK, rec.Body.String())
	}
	var updated rules.Rule
	decodeData(t, decodeResult(t, rec), &updated)
	if updated.Name != "Network Share" || updated.Status != rules.StatusDisabled {
		t.Fatalf("updated = %+v", updated)
	}
}

func TestHandleDuplicateAndDeleteRule(t *testing.T) {
	th := newHarness(t)
	before := th.h.Rules.Len()

	rec := th.call(t, th.h.HandleDuplicateRule, http.MethodPost, "/api/rules/security-3/duplicate", "", idParam("security-3"))
	if rec.Code != http.StatusCreated {
		t.Fatalf("status=%d want %d", rec.Code, http.StatusCreated)
	}
	var dup rules.Rule
	decodeData(t, decodeResult(t, rec), &dup)
	if dup.Name != "CAD Files Protection (copy)" || dup.Status != rules.StatusDraft {
		t.Fatalf("dup = %+v", dup)
	}

	rec = th.call(t, th.h.HandleDeleteRule, http.MethodDelete, "/api/rules/"+dup.ID, "", idParam(dup.ID))
	if rec.Code != http.StatusNoContent {
		t.Fatalf("status=%d want %d", rec.Code, http.StatusNoContent)
	}
	if got := th.h.Rules.Len(); got != before {
		t.Fatalf("Len() = %d, want %d", got, before)
	}
}

func TestHandleSetRuleStatusRejectsUnknownStatus(t *testing.T) {
	th := newHarness(t)
	rec := th.call(t, th.h.HandleSetRuleStatus, http.MethodPost, "/api/rules/security-1/status", `{"status":"paused"}`, idParam("security-1"))
	if rec.Code != http.StatusUnprocessableEntity {
		t.Fatalf("status=%d want %d", rec.Code, http.StatusUnprocessableEntity)
	}
}

func TestHandleListRulesAppliesFilters(t *testing.T) {
	th := newHarness(t)

	rec := th.call(t, th.h.HandleListRules, http.MethodGet, "/api/rules?location=Email&sort=name", "", nil)
	var list []rules.Rule
	decodeData(t, decodeResult(t, rec), &list)
	if len(list) == 0 {
		t.Fatal("expected rules in Email")
	}
	for i, r := range list {
		if !strings.Contains(r.Location, "Email") {
			t.Fatalf("rule %q location %q", r.Name, r.Location)
		}
		if i > 0 && strings.ToLower(list[i-1].Name) > strings.ToLower(r.Name) {
			t.Fatalf("not sorted by name: %q before %q", list[i-1].Name, r.Name)
		}
	}
}

func TestHandleTestRuleWithSample(t *testing.T) {
	th := newHarness(t)

	body := `{
		"draft": {
			"name": "Contract Files",
			"scope": {"departments": ["Legal"], "channels": ["Email"]},
			"trigger": {"source": "endpoint", "event": "create", "conditions": [
				{"field": "content_type", "operator": "contains", "value": "contract"}
			]},
			"actions": [{"type": "tag", "service": "Nova", "parameters": {"tags": ["Legal"]}}]
		},
		"sample": {"content_type": "signed contract"}
	}`
	rec := th.call(t, th.h.HandleTestRule, http.MethodPost, "/api/rules/test", body, nil)
	if rec.Code != http.StatusOK {
		t.Fatalf("status=%d want %d: %s", rec.Code, http.StatusOK, rec.Body.String())
	}
	var res rules.TestResult
	decodeData(t, decodeResult(t, rec), &res)
	if res.Status != rules.TestPassed || res.Matched == nil || !*res.Matched {
		t.Fatalf("result = %+v", res)
	}
}

func TestHandleTestRuleUsesSessionDraft(t *testing.T) {
	th := newHarness(t)

	rec := th.call(t, th.h.HandleTestRule, http.MethodPost, "/api/rules/test", "", nil)
	var res rules.TestResult
	decodeData(t, decodeResult(t, rec), &res)
	if res.Status != rules.TestInvalid || res.Errors["name"] == "" {
		t.Fatalf("result = %+v", res)
	}
}

func TestHandleSetEditingRuleLoadsWizard(t *testing.T) {
	th := newHarness(t)

	rec := th.call(t, th.h.HandleSetEditingRule, http.MethodPut, "/api/rules/editing", `{"id":"orchestration-2"}`, nil)
	if rec.Code != http.StatusOK {
		t.Fatalf("status=%d want %d: %s", rec.Code, http.StatusOK, rec.Body.String())
	}
	editing, ok := th.h.Rules.EditingRule()
	if !ok || editing.ID != "orchestration-2" {
		t.Fatalf("EditingRule() = %+v, %v", editing, ok)
	}

	var view wizardView
	decodeData(t, decodeResult(t, th.call(t, th.h.HandleGetWizard, http.MethodGet, "/api/wizard", "", nil)), &view)
	if view.EditingID != "orchestration-2" || view.Draft.Name != editing.Name {
		t.Fatalf("wizard = %+v", view.wizardState)
	}

	rec = th.call(t, th.h.HandleSetEditingRule, http.MethodPut, "/api/rules/editing", `{"id":""}`, nil)
	if rec.Code != http.StatusOK {
		t.Fatalf("status=%d want %d", rec.Code, http.StatusOK)
	}
	if _, ok := th.h.Rules.EditingRule(); ok {
		t.Fatal("editing slot not cleared")
	}
	res := decodeResult(t, th.call(t, th.h.HandleGetEditingRule, http.MethodGet, "/api/rules/editing", "", nil))
	if !res.Success || len(res.Data) != 0 {
		t.Fatalf("editing result = %+v", res)
	}
}
