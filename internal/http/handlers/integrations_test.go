package handlers

import (
	"net/http"
	"testing"

	"github.com/labstack/echo/v5"
	"github.com/novadlp/nova-console/internal/admin"
	"github.com/novadlp/nova-console/internal/integrations"
)

func TestHandleAddIntegration(t *testing.T) {
	th := newHarness(t)

	rec := th.call(t, th.h.HandleAddIntegration, http.MethodPost, "/api/integrations",
		`{"name":"Mail Gateway","type":"dlp","source":"Exchange","connectionType":"api","eventTypes":["send"]}`, nil)
	expectStatus(t, rec.Code, http.StatusCreated, rec.Body.String())
	var created integrations.Integration
	decodeData(t, decodeResult(t, rec), &created)
	if created.Type != "DLP" || created.Status != integrations.StatusConnected || created.LastSync.IsZero() {
		t.Fatalf("created = %+v", created)
	}

	rec = th.call(t, th.h.HandleAddIntegration, http.MethodPost, "/api/integrations", `{"name":"","type":"FTP"}`, nil)
	expectStatus(t, rec.Code, http.StatusUnprocessableEntity, rec.Body.String())
	res := decodeResult(t, rec)
	for _, key := range []string{"name", "type", "source", "connectionType", "eventTypes"} {
		if res.Errors[key] == "" {
			t.Fatalf("errors = %v, missing %q", res.Errors, key)
		}
	}
}

func TestHandleFieldMappings(t *testing.T) {
	th := newHarness(t)

	rec := th.call(t, th.h.HandleAddFieldMapping, http.MethodPost, "/api/integrations/endpoint-dlp/field-mappings", "", idParam("endpoint-dlp"))
	expectStatus(t, rec.Code, http.StatusOK, rec.Body.String())
	var out integrations.Integration
	decodeData(t, decodeResult(t, rec), &out)
	if len(out.FieldMapping) != 2 || out.FieldMapping[1].ExternalField != "username" || out.FieldMapping[1].NovaField != "user" {
		t.Fatalf("mappings = %+v", out.FieldMapping)
	}

	params := echo.PathValues{{Name: "id", Value: "endpoint-dlp"}, {Name: "index", Value: "1"}}
	rec = th.call(t, th.h.HandleUpdateFieldMapping, http.MethodPut, "/api/integrations/endpoint-dlp/field-mappings/1", `{"externalField":"file_name"}`, params)
	expectStatus(t, rec.Code, http.StatusOK, rec.Body.String())
	decodeData(t, decodeResult(t, rec), &out)
	if out.FieldMapping[1].ExternalField != "file_name" || out.FieldMapping[1].NovaField != "user" {
		t.Fatalf("mappings after update = %+v", out.FieldMapping)
	}

	rec = th.call(t, th.h.HandleUpdateFieldMapping, http.MethodPut, "/api/integrations/endpoint-dlp/field-mappings/1", `{"novaField":"event_type"}`, params)
	expectStatus(t, rec.Code, http.StatusBadRequest, rec.Body.String())

	rec = th.call(t, th.h.HandleUpdateFieldMapping, http.MethodPut, "/api/integrations/endpoint-dlp/field-mappings/1", `{"novaField":"hostname"}`, params)
	expectStatus(t, rec.Code, http.StatusBadRequest, rec.Body.String())

	params = echo.PathValues{{Name: "id", Value: "endpoint-dlp"}, {Name: "index", Value: "7"}}
	rec = th.call(t, th.h.HandleRemoveFieldMapping, http.MethodDelete, "/api/integrations/endpoint-dlp/field-mappings/7", "", params)
	expectStatus(t, rec.Code, http.StatusBadRequest, rec.Body.String())

	params = echo.PathValues{{Name: "id", Value: "endpoint-dlp"}, {Name: "index", Value: "0"}}
	rec = th.call(t, th.h.HandleRemoveFieldMapping, http.MethodDelete, "/api/integrations/endpoint-dlp/field-mappings/0", "", params)
	expectStatus(t, rec.Code, http.StatusOK, rec.Body.String())
	decodeData(t, decodeResult(t, rec), &out)
	if len(out.FieldMapping) != 1 || out.FieldMapping[0].ExternalField != "file_name" {
		t.Fatalf("mappings after remove = %+v", out.FieldMapping)
	}
}

func TestHandleSetSites(t *testing.T) {
	th := newHarness(t)

	tests := []struct {
		name  string
		body  string
		want  int
		scope string
	}{
		{name: "all", body: `{"all":true}`, want: http.StatusOK, scope: "all"},
		{name: "subset", body: `{"sites":["1","1","3"]}`, want: http.StatusOK, scope: "selected"},
		{name: "none", body: `{"sites":[]}`, want: http.StatusOK, scope: "none"},
		{name: "unknown site", body: `{"sites":["99"]}`, want: http.StatusBadRequest},
	}
	for _, tc := range tests {
		tc := tc
		t.Run(tc.name, func(t *testing.T) {
			rec := th.call(t, th.h.HandleSetSites, http.MethodPut, "/api/integrations/cloud-dspm/sites", tc.body, idParam("cloud-dspm"))
			expectStatus(t, rec.Code, tc.want, rec.Body.String())
			if tc.scope == "" {
				return
			}
			var out sitesResponse
			decodeData(t, decodeResult(t, rec), &out)
			if out.Scope != tc.scope {
				t.Fatalf("scope = %q, want %q", out.Scope, tc.scope)
			}
		})
	}
}

func TestHandleVerifyConsentRequiresTenant(t *testing.T) {
	th := newHarness(t)

	rec := th.call(t, th.h.HandleVerifyConsent, http.MethodPost, "/api/integrations/consent", `{"tenantId":" "}`, nil)
	expectStatus(t, rec.Code, http.StatusBadRequest, rec.Body.String())

	rec = th.call(t, th.h.HandleVerifyConsent, http.MethodPost, "/api/integrations/consent", `{"tenantId":"contoso"}`, nil)
	expectStatus(t, rec.Code, http.StatusOK, rec.Body.String())
	var res integrations.ConsentResult
	decodeData(t, decodeResult(t, rec), &res)
	if !res.Granted() {
		t.Fatalf("consent = %+v", res)
	}
}

func TestHandleAdminUsers(t *testing.T) {
	th := newHarness(t)

	rec := th.call(t, th.h.HandleAddAdminUser, http.MethodPost, "/api/admin/users",
		`{"name":"Dana Lee","email":"Dana@Example.com","roleId":"custom","customRoleName":"Key Custodian"}`, nil)
	expectStatus(t, rec.Code, http.StatusCreated, rec.Body.String())
	var u admin.User
	decodeData(t, decodeResult(t, rec), &u)
	if u.Role != "Key Custodian" || u.Email != "dana@example.com" || u.Status != admin.StatusActive {
		t.Fatalf("user = %+v", u)
	}

	rec = th.call(t, th.h.HandleAddAdminUser, http.MethodPost, "/api/admin/users", `{"name":"X","email":"x@example.com","roleId":"custom"}`, nil)
	expectStatus(t, rec.Code, http.StatusUnprocessableEntity, rec.Body.String())
	if res := decodeResult(t, rec); res.Errors["customRoleName"] == "" {
		t.Fatalf("errors = %v", res.Errors)
	}

	rec = th.call(t, th.h.HandleSetAdminUserStatus, http.MethodPost, "/api/admin/users/"+u.ID+"/status", `{"status":"Inactive"}`, idParam(u.ID))
	expectStatus(t, rec.Code, http.StatusOK, rec.Body.String())

	rec = th.call(t, th.h.HandleListAdminUsers, http.MethodGet, "/api/admin/users?q=dana&status=inactive", "", nil)
	var list adminUsersResponse
	decodeData(t, decodeResult(t, rec), &list)
	if len(list.Users) != 1 || list.Users[0].ID != u.ID {
		t.Fatalf("users = %+v", list.Users)
	}

	rec = th.call(t, th.h.HandleSetAdminUserStatus, http.MethodPost, "/api/admin/users/missing/status", `{"status":"active"}`, idParam("missing"))
	expectStatus(t, rec.Code, http.StatusNotFound, rec.Body.String())
}
