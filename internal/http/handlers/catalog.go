package handlers

import (
	"net/http"

	"github.com/labstack/echo/v5"
)

// HandleCatalog answers the option lists the rule composer offers. Tag
// options follow the tag definitions when a tag store is wired.
func (h *Handlers) HandleCatalog(c *echo.Context) error {
	cat := h.Catalog.Get()
	if h.Tags == nil || cat == nil {
		return respondData(c, http.StatusOK, cat)
	}
	out := *cat
	out.Tags = h.Tags.OfferedNames(cat.Tags)
	return respondData(c, http.StatusOK, &out)
}

// HandleHealthz reports liveness.
func (h *Handlers) HandleHealthz(c *echo.Context) error {
	return c.String(http.StatusOK, "ok")
}
