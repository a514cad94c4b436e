package handlers

import (
	"net/http"
	"strings"

	"github.com/labstack/echo/v5"
	"github.com/novadlp/nova-console/internal/metrics"
	"github.com/novadlp/nova-console/internal/tags"
)

// HandleListTags answers tag definitions filtered by q and status, sorted by
// sort and order.
func (h *Handlers) HandleListTags(c *echo.Context) error {
	f := tags.Filter{
		Query:  c.QueryParam("q"),
		Status: c.QueryParam("status"),
		Sort:   tags.SortKey(strings.TrimSpace(c.QueryParam("sort"))),
		Asc:    strings.EqualFold(strings.TrimSpace(c.QueryParam("order")), "asc"),
	}
	list, err := h.Tags.List(f)
	if err != nil {
		return h.respondError(c, err)
	}
	return respondData(c, http.StatusOK, list)
}

func (h *Handlers) HandleCreateTag(c *echo.Context) error {
	var in tags.Tag
	if err := decodeJSON(c, &in); err != nil {
		return h.respondError(c, err)
	}
	t, err := h.Tags.Create(in, "")
	metrics.RecordTagMutation("create", err)
	if err != nil {
		return h.respondError(c, err)
	}
	return respondData(c, http.StatusCreated, t)
}

func (h *Handlers) HandleUpdateTag(c *echo.Context) error {
	id, err := pathID(c)
	if err != nil {
		return h.respondError(c, err)
	}
	var in tags.Edit
	if err := decodeJSON(c, &in); err != nil {
		return h.respondError(c, err)
	}
	t, err := h.Tags.Update(id, in, "")
	metrics.RecordTagMutation("update", err)
	if err != nil {
		return h.respondError(c, err)
	}
	return respondData(c, http.StatusOK, t)
}

func (h *Handlers) HandleDeprecateTag(c *echo.Context) error {
	id, err := pathID(c)
	if err != nil {
		return h.respondError(c, err)
	}
	t, err := h.Tags.Deprecate(id, "")
	metrics.RecordTagMutation("deprecate", err)
	if err != nil {
		return h.respondError(c, err)
	}
	return respondData(c, http.StatusOK, t)
}

func (h *Handlers) HandleTagHistory(c *echo.Context) error {
	id, err := pathID(c)
	if err != nil {
		return h.respondError(c, err)
	}
	history, err := h.Tags.History(id)
	if err != nil {
		return h.respondError(c, err)
	}
	return respondData(c, http.StatusOK, history)
}
