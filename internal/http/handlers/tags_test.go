package handlers

import (
	"net/http"
	"testing"

	"github.com/novadlp/nova-console/internal/tags"
)

func TestHandleTagsLifecycle(t *testing.T) {
	th := newHarness(t)

	rec := th.call(t, th.h.HandleCreateTag, http.MethodPost, "/api/tags", `{"name":"Export Controlled","description":"ITAR material"}`, nil)
	expectStatus(t, rec.Code, http.StatusCreated, rec.Body.String())
	var created tags.Tag
	decodeData(t, decodeResult(t, rec), &created)
	if created.Status != tags.StatusActive || created.CreatedBy != tags.DefaultActor || len(created.History) != 1 {
		t.Fatalf("created = %+v", created)
	}

	rec = th.call(t, th.h.HandleCreateTag, http.MethodPost, "/api/tags", `{"name":"export controlled"}`, nil)
	expectStatus(t, rec.Code, http.StatusBadRequest, rec.Body.String())

	rec = th.call(t, th.h.HandleCreateTag, http.MethodPost, "/api/tags", `{"description":"no name"}`, nil)
	expectStatus(t, rec.Code, http.StatusUnprocessableEntity, rec.Body.String())

	rec = th.call(t, th.h.HandleUpdateTag, http.MethodPut, "/api/tags/"+created.ID, `{"description":"ITAR and EAR material"}`, idParam(created.ID))
	expectStatus(t, rec.Code, http.StatusOK, rec.Body.String())

	rec = th.call(t, th.h.HandleDeprecateTag, http.MethodPost, "/api/tags/"+created.ID+"/deprecate", "", idParam(created.ID))
	expectStatus(t, rec.Code, http.StatusOK, rec.Body.String())

	rec = th.call(t, th.h.HandleTagHistory, http.MethodGet, "/api/tags/"+created.ID+"/history", "", idParam(created.ID))
	expectStatus(t, rec.Code, http.StatusOK, rec.Body.String())
	var history []tags.Change
	decodeData(t, decodeResult(t, rec), &history)
	if len(history) != 3 || history[1].Changes["description"] != "ITAR and EAR material" || history[2].Action != "Deprecated" {
		t.Fatalf("history = %+v", history)
	}

	rec = th.call(t, th.h.HandleListTags, http.MethodGet, "/api/tags?status=deprecated", "", nil)
	expectStatus(t, rec.Code, http.StatusOK, rec.Body.String())
	var deprecated []tags.Tag
	decodeData(t, decodeResult(t, rec), &deprecated)
	if len(deprecated) != 1 || deprecated[0].ID != created.ID {
		t.Fatalf("deprecated = %+v", deprecated)
	}

	rec = th.call(t, th.h.HandleDeprecateTag, http.MethodPost, "/api/tags/missing/deprecate", "", idParam("missing"))
	expectStatus(t, rec.Code, http.StatusNotFound, rec.Body.String())
}

func TestHandleListTagsSortAndFilter(t *testing.T) {
	th := newHarness(t)

	tests := []struct {
		name   string
		target string
		want   int
		first  string
		count  int
	}{
		{name: "default newest first", target: "/api/tags", want: http.StatusOK, first: "GDPR", count: 3},
		{name: "usage ascending", target: "/api/tags?sort=usageCount&order=asc", want: http.StatusOK, first: "Confidential", count: 3},
		{name: "search description", target: "/api/tags?q=identifiable", want: http.StatusOK, first: "PII", count: 1},
		{name: "all status", target: "/api/tags?status=all&sort=name&order=asc", want: http.StatusOK, first: "Confidential", count: 3},
		{name: "unknown status", target: "/api/tags?status=archived", want: http.StatusBadRequest},
	}
	for _, tc := range tests {
		tc := tc
		t.Run(tc.name, func(t *testing.T) {
			rec := th.call(t, th.h.HandleListTags, http.MethodGet, tc.target, "", nil)
			expectStatus(t, rec.Code, tc.want, rec.Body.String())
			if tc.want != http.StatusOK {
				return
			}
			var list []tags.Tag
			decodeData(t, decodeResult(t, rec), &list)
			if len(list) != tc.count || list[0].Name != tc.first {
				t.Fatalf("list = %+v, want %d tags starting with %s", list, tc.count, tc.first)
			}
		})
	}
}

func TestHandleCatalogOffersTagDefinitions(t *testing.T) {
	th := newHarness(t)
	if _, err := th.h.Tags.Deprecate("pii", ""); err != nil {
		t.Fatalf("Deprecate() error = %v", err)
	}

	rec := th.call(t, th.h.HandleCatalog, http.MethodGet, "/api/catalog", "", nil)
	expectStatus(t, rec.Code, http.StatusOK, rec.Body.String())
	var cat struct {
		Tags []string `json:"tags"`
	}
	decodeData(t, decodeResult(t, rec), &cat)
	offered := map[string]bool{}
	for _, name := range cat.Tags {
		offered[name] = true
	}
	if offered["PII"] || !offered["GDPR"] || !offered["Legal"] {
		t.Fatalf("tags = %v", cat.Tags)
	}
	if got := th.h.Catalog.Get().Tags; len(got) == 0 || got[0] != "PII" {
		t.Fatalf("stored catalog tags changed: %v", got)
	}
}
