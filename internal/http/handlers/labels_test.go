package handlers

import (
	"net/http"
	"testing"

	"github.com/novadlp/nova-console/internal/labels"
)

func TestHandleLabelsCRUD(t *testing.T) {
	th := newHarness(t)

	rec := th.call(t, th.h.HandleCreateLabel, http.MethodPost, "/api/labels", `{"name":"Secret","sensitivityLevel":9,"color":"#000000"}`, nil)
	expectStatus(t, rec.Code, http.StatusCreated, rec.Body.String())
	var created labels.Label
	decodeData(t, decodeResult(t, rec), &created)

	rec = th.call(t, th.h.HandleAddSublabel, http.MethodPost, "/api/labels/"+created.ID+"/sublabels", `{"name":"Secret - Board"}`, idParam(created.ID))
	expectStatus(t, rec.Code, http.StatusCreated, rec.Body.String())
	var sub labels.Label
	decodeData(t, decodeResult(t, rec), &sub)
	if sub.SensitivityLevel != 9 || sub.Color != "#000000" {
		t.Fatalf("sublabel defaults = %d/%q", sub.SensitivityLevel, sub.Color)
	}

	rec = th.call(t, th.h.HandleAddSublabel, http.MethodPost, "/api/labels/"+sub.ID+"/sublabels", `{"name":"Too deep"}`, idParam(sub.ID))
	expectStatus(t, rec.Code, http.StatusBadRequest, rec.Body.String())

	rec = th.call(t, th.h.HandleUpdateLabel, http.MethodPut, "/api/labels/"+created.ID, `{"name":"Top Secret","sensitivityLevel":10}`, idParam(created.ID))
	expectStatus(t, rec.Code, http.StatusOK, rec.Body.String())
	var updated labels.Label
	decodeData(t, decodeResult(t, rec), &updated)
	if updated.Name != "Top Secret" || len(updated.Sublabels) != 1 {
		t.Fatalf("updated = %+v", updated)
	}

	rec = th.call(t, th.h.HandleDeleteLabel, http.MethodDelete, "/api/labels/"+created.ID, "", idParam(created.ID))
	expectStatus(t, rec.Code, http.StatusNoContent, rec.Body.String())
	if _, err := th.h.Labels.Get(created.ID); err == nil {
		t.Fatal("label still present after delete")
	}
}

func TestHandleSetSensitivityRange(t *testing.T) {
	th := newHarness(t)

	tests := []struct {
		name  string
		body  string
		want  int
		level int
	}{
		{name: "in range", body: `{"sensitivityLevel":7}`, want: http.StatusOK, level: 7},
		{name: "too high", body: `{"sensitivityLevel":11}`, want: http.StatusBadRequest},
		{name: "zero", body: `{"sensitivityLevel":0}`, want: http.StatusBadRequest},
	}
	for _, tc := range tests {
		tc := tc
		t.Run(tc.name, func(t *testing.T) {
			rec := th.call(t, th.h.HandleSetSensitivity, http.MethodPut, "/api/labels/1/sensitivity", tc.body, idParam("1"))
			expectStatus(t, rec.Code, tc.want, rec.Body.String())
			if tc.level == 0 {
				return
			}
			l, err := th.h.Labels.Get("1")
			if err != nil {
				t.Fatalf("Get() error = %v", err)
			}
			if l.SensitivityLevel != tc.level {
				t.Fatalf("level = %d, want %d", l.SensitivityLevel, tc.level)
			}
		})
	}
}

func TestHandleSetProtectionNormalizesDomains(t *testing.T) {
	th := newHarness(t)

	rec := th.call(t, th.h.HandleSetProtection, http.MethodPut, "/api/labels/3/protection",
		`{"encryption":"AES-256","emailDomains":["Mail.Example.com","example.com"]}`, idParam("3"))
	expectStatus(t, rec.Code, http.StatusOK, rec.Body.String())
	var l labels.Label
	decodeData(t, decodeResult(t, rec), &l)
	if len(l.Protection.EmailDomains) != 1 || l.Protection.EmailDomains[0] != "example.com" {
		t.Fatalf("domains = %v", l.Protection.EmailDomains)
	}

	rec = th.call(t, th.h.HandleSetProtection, http.MethodPut, "/api/labels/missing/protection", `{}`, idParam("missing"))
	expectStatus(t, rec.Code, http.StatusNotFound, rec.Body.String())
}
