package handlers

import (
	"net/http"
	"strings"

	"github.com/labstack/echo/v5"
	"github.com/novadlp/nova-console/internal/admin"
)

func (h *Handlers) HandleListRoles(c *echo.Context) error {
	return respondData(c, http.StatusOK, h.Admin.Roles())
}

type adminUsersResponse struct {
	Users   []admin.User  `json:"users"`
	Summary admin.Summary `json:"summary"`
}

// HandleListAdminUsers answers the users matching q, role and status.
func (h *Handlers) HandleListAdminUsers(c *echo.Context) error {
	f := admin.Filter{
		Search: strings.TrimSpace(c.QueryParam("q")),
		Role:   strings.TrimSpace(c.QueryParam("role")),
		Status: admin.Status(strings.ToLower(strings.TrimSpace(c.QueryParam("status")))),
	}
	return respondData(c, http.StatusOK, adminUsersResponse{Users: h.Admin.Users(f), Summary: h.Admin.Summary()})
}

func (h *Handlers) HandleAddAdminUser(c *echo.Context) error {
	var in admin.NewUser
	if err := decodeJSON(c, &in); err != nil {
		return h.respondError(c, err)
	}
	u, err := h.Admin.AddUser(in)
	if err != nil {
		return h.respondError(c, err)
	}
	c.Logger().Info("admin user added", "user_id", u.ID, "role", u.Role)
	return respondData(c, http.StatusCreated, u)
}

type adminStatusRequest struct {
	Status string `json:"status"`
}

func (h *Handlers) HandleSetAdminUserStatus(c *echo.Context) error {
	id, err := pathID(c)
	if err != nil {
		return h.respondError(c, err)
	}
	var in adminStatusRequest
	if err := decodeJSON(c, &in); err != nil {
		return h.respondError(c, err)
	}
	u, err := h.Admin.SetUserStatus(id, admin.Status(strings.ToLower(strings.TrimSpace(in.Status))))
	if err != nil {
		return h.respondError(c, err)
	}
	return respondData(c, http.StatusOK, u)
}
