package handlers

import (
	"net/http"

	"github.com/labstack/echo/v5"
	"github.com/novadlp/nova-console/internal/labels"
	"github.com/novadlp/nova-console/internal/metrics"
)

func (h *Handlers) HandleListLabels(c *echo.Context) error {
	return respondData(c, http.StatusOK, h.Labels.List())
}

func (h *Handlers) HandleCreateLabel(c *echo.Context) error {
	var in labels.Label
	if err := decodeJSON(c, &in); err != nil {
		return h.respondError(c, err)
	}
	l, err := h.Labels.Create(in)
	metrics.RecordLabelMutation("create", err)
	if err != nil {
		return h.respondError(c, err)
	}
	return respondData(c, http.StatusCreated, l)
}

func (h *Handlers) HandleUpdateLabel(c *echo.Context) error {
	id, err := pathID(c)
	if err != nil {
		return h.respondError(c, err)
	}
	var in labels.Label
	if err := decodeJSON(c, &in); err != nil {
		return h.respondError(c, err)
	}
	in.ID = id
	l, err := h.Labels.Update(in)
	metrics.RecordLabelMutation("update", err)
	if err != nil {
		return h.respondError(c, err)
	}
	return respondData(c, http.StatusOK, l)
}

func (h *Handlers) HandleDeleteLabel(c *echo.Context) error {
	id, err := pathID(c)
	if err != nil {
		return h.respondError(c, err)
	}
	err = h.Labels.Delete(id)
	metrics.RecordLabelMutation("delete", err)
	if err != nil {
		return h.respondError(c, err)
	}
	return c.NoContent(http.StatusNoContent)
}

// HandleAddSublabel creates a sublabel under the label in the path.
func (h *Handlers) HandleAddSublabel(c *echo.Context) error {
	id, err := pathID(c)
	if err != nil {
		return h.respondError(c, err)
	}
	var in labels.Label
	if err := decodeJSON(c, &in); err != nil {
		return h.respondError(c, err)
	}
	sub, err := h.Labels.AddSublabel(id, in)
	metrics.RecordLabelMutation("add_sublabel", err)
	if err != nil {
		return h.respondError(c, err)
	}
	return respondData(c, http.StatusCreated, sub)
}

type sensitivityRequest struct {
	SensitivityLevel int `json:"sensitivityLevel"`
}

func (h *Handlers) HandleSetSensitivity(c *echo.Context) error {
	id, err := pathID(c)
	if err != nil {
		return h.respondError(c, err)
	}
	var in sensitivityRequest
	if err := decodeJSON(c, &in); err != nil {
		return h.respondError(c, err)
	}
	l, err := h.Labels.SetSensitivity(id, in.SensitivityLevel)
	metrics.RecordLabelMutation("sensitivity", err)
	if err != nil {
		return h.respondError(c, err)
	}
	return respondData(c, http.StatusOK, l)
}

func (h *Handlers) HandleSetProtection(c *echo.Context) error {
	id, err := pathID(c)
	if err != nil {
		return h.respondError(c, err)
	}
	var in labels.Protection
	if err := decodeJSON(c, &in); err != nil {
		return h.respondError(c, err)
	}
	l, err := h.Labels.SetProtection(id, in)
	metrics.RecordLabelMutation("protection", err)
	if err != nil {
		return h.respondError(c, err)
	}
	return respondData(c, http.StatusOK, l)
}
