package handlers

import (
	"net/http"
	"strings"

	"github.com/labstack/echo/v5"
	"github.com/novadlp/nova-console/internal/integrations"
)

func (h *Handlers) HandleListIntegrations(c *echo.Context) error {
	return respondData(c, http.StatusOK, h.Integrations.List())
}

// HandleAddIntegration validates the add-integration form and connects it.
func (h *Handlers) HandleAddIntegration(c *echo.Context) error {
	var in integrations.Integration
	if err := decodeJSON(c, &in); err != nil {
		return h.respondError(c, err)
	}
	created, err := h.Integrations.Add(in)
	if err != nil {
		return h.respondError(c, err)
	}
	c.Logger().Info("integration connected", "integration_id", created.ID, "type", created.Type, "source", created.Source)
	return respondData(c, http.StatusCreated, created)
}

func (h *Handlers) HandleAddFieldMapping(c *echo.Context) error {
	id, err := pathID(c)
	if err != nil {
		return h.respondError(c, err)
	}
	out, err := h.Integrations.AddFieldMapping(id)
	if err != nil {
		return h.respondError(c, err)
	}
	return respondData(c, http.StatusOK, out)
}

func (h *Handlers) HandleRemoveFieldMapping(c *echo.Context) error {
	id, err := pathID(c)
	if err != nil {
		return h.respondError(c, err)
	}
	index, err := pathIndex(c, "index")
	if err != nil {
		return h.respondError(c, err)
	}
	out, err := h.Integrations.RemoveFieldMapping(id, index)
	if err != nil {
		return h.respondError(c, err)
	}
	return respondData(c, http.StatusOK, out)
}

// HandleUpdateFieldMapping edits one mapping row in place.
func (h *Handlers) HandleUpdateFieldMapping(c *echo.Context) error {
	id, err := pathID(c)
	if err != nil {
		return h.respondError(c, err)
	}
	index, err := pathIndex(c, "index")
	if err != nil {
		return h.respondError(c, err)
	}
	var req integrations.FieldMapping
	if err := decodeJSON(c, &req); err != nil {
		return h.respondError(c, err)
	}
	out, err := h.Integrations.UpdateFieldMapping(id, index, req)
	if err != nil {
		return h.respondError(c, err)
	}
	return respondData(c, http.StatusOK, out)
}

type sitesRequest struct {
	Sites []string `json:"sites"`
	All   bool     `json:"all"`
}

type sitesResponse struct {
	Integration integrations.Integration `json:"integration"`
	Scope       string                   `json:"scope"`
}

// HandleSetSites replaces the SharePoint sites an integration scans. "all"
// selects every discovered site.
func (h *Handlers) HandleSetSites(c *echo.Context) error {
	id, err := pathID(c)
	if err != nil {
		return h.respondError(c, err)
	}
	var in sitesRequest
	if err := decodeJSON(c, &in); err != nil {
		return h.respondError(c, err)
	}
	known, err := h.Sites.ListSites(c.Request().Context())
	if err != nil {
		return h.respondError(c, err)
	}
	selected := in.Sites
	if in.All {
		selected = make([]string, 0, len(known))
		for _, site := range known {
			selected = append(selected, site.ID)
		}
	}
	for _, siteID := range selected {
		if !knownSite(known, siteID) {
			return h.respondError(c, badRequest("unknown site %q", siteID))
		}
	}
	out, err := h.Integrations.SetSites(id, selected)
	if err != nil {
		return h.respondError(c, err)
	}
	return respondData(c, http.StatusOK, sitesResponse{Integration: out, Scope: integrations.SiteScope(out.Sites, known)})
}

func knownSite(known []integrations.Site, id string) bool {
	id = strings.TrimSpace(id)
	for _, site := range known {
		if site.ID == id {
			return true
		}
	}
	return id == ""
}

type consentRequest struct {
	TenantID string `json:"tenantId"`
}

// HandleVerifyConsent reports whether the tenant admin granted the Graph
// permissions the SharePoint connector needs.
func (h *Handlers) HandleVerifyConsent(c *echo.Context) error {
	var in consentRequest
	if err := decodeJSON(c, &in); err != nil {
		return h.respondError(c, err)
	}
	if strings.TrimSpace(in.TenantID) == "" {
		return h.respondError(c, badRequest("tenantId is required"))
	}
	res, err := h.Consent.VerifyConsent(c.Request().Context(), in.TenantID)
	if err != nil {
		return h.respondError(c, err)
	}
	return respondData(c, http.StatusOK, res)
}

func (h *Handlers) HandleListSharePointSites(c *echo.Context) error {
	sites, err := h.Sites.ListSites(c.Request().Context())
	if err != nil {
		return h.respondError(c, err)
	}
	return respondData(c, http.StatusOK, sites)
}
