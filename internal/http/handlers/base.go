// Package handlers contains HTTP handler logic split by domain.
package handlers

import (
	"errors"
	"fmt"
	"net/http"
	"strings"
	"time"

	"github.com/a-h/templ"
	"github.com/alexedwards/scs/v2"
	"github.com/labstack/echo/v5"
	"github.com/novadlp/nova-console/internal/admin"
	"github.com/novadlp/nova-console/internal/catalog"
	"github.com/novadlp/nova-console/internal/config"
	"github.com/novadlp/nova-console/internal/http/viewmodels"
	"github.com/novadlp/nova-console/internal/integrations"
	"github.com/novadlp/nova-console/internal/labels"
	"github.com/novadlp/nova-console/internal/rules"
	"github.com/novadlp/nova-console/internal/rules/store"
	"github.com/novadlp/nova-console/internal/tags"
)

const (
	// ContextKeyRequestID stores the request id (X-Request-ID) for logging and client error references.
	ContextKeyRequestID = "request_id"

	// InternalErrorCode is a stable error code safe to return to clients.
	InternalErrorCode = "INTERNAL_ERROR"
)

// Handlers groups all HTTP handlers and shared dependencies.
type Handlers struct {
	Cfg          config.Config
	Rules        *store.Store
	Labels       *labels.Store
	Tags         *tags.Store
	Catalog      *catalog.Holder
	Integrations *integrations.Store
	Consent      integrations.ConsentVerifier
	Sites        integrations.SiteLister
	Admin        *admin.Directory
	Sessions     *scs.SessionManager
	Now          func() time.Time
}

func (h *Handlers) now() time.Time {
	if h.Now != nil {
		return h.Now()
	}
	return time.Now()
}

var navItems = []viewmodels.NavItem{
	{Label: "Rules", Href: "/rules"},
}

// LayoutData builds the common layout data for page rendering.
func (h *Handlers) LayoutData(c *echo.Context, title string) viewmodels.LayoutData {
	return viewmodels.LayoutData{
		Title:      title,
		Toast:      popFlashToast(c),
		ActivePath: c.Request().URL.Path,
		Nav:        navItems,
	}
}

// RenderComponent renders a templ component as the response.
func (h *Handlers) RenderComponent(c *echo.Context, component templ.Component) error {
	c.Response().Header().Set("Content-Type", "text/html; charset=utf-8")
	if err := component.Render(c.Request().Context(), c.Response()); err != nil {
		return h.RenderError(c, err)
	}
	return nil
}

// RenderError logs err and returns a generic plain text 500.
func (h *Handlers) RenderError(c *echo.Context, err error) error {
	return c.String(http.StatusInternalServerError, h.internalErrorMessage(c, err))
}

func (h *Handlers) internalErrorMessage(c *echo.Context, err error) string {
	requestID, _ := c.Get(ContextKeyRequestID).(string)
	path := ""
	if req := c.Request(); req != nil && req.URL != nil {
		path = req.URL.Path
	}
	method := ""
	if req := c.Request(); req != nil {
		method = req.Method
	}
	c.Logger().Error("http error",
		"request_id", requestID,
		"method", method,
		"path", path,
		"ip", c.RealIP(),
		"error", err,
	)

	msg := "Internal server error."
	if requestID != "" {
		msg = fmt.Sprintf("%s Reference: %s.", msg, requestID)
	}
	return fmt.Sprintf("%s Code: %s.", msg, InternalErrorCode)
}

// RenderNotFound returns a 404 response.
func RenderNotFound(c *echo.Context) error {
	return c.String(http.StatusNotFound, "404 page not found")
}

// APIResult is the envelope every JSON endpoint answers with.
type APIResult struct {
	Success bool              `json:"success"`
	Error   string            `json:"error,omitempty"`
	Errors  rules.FieldErrors `json:"errors,omitempty"`
	Data    any               `json:"data,omitempty"`
}

func respondData(c *echo.Context, status int, data any) error {
	return c.JSON(status, APIResult{Success: true, Data: data})
}

func respondFailure(c *echo.Context, status int, msg string) error {
	return c.JSON(status, APIResult{Error: msg})
}

var errBadRequest = errors.New("bad request")

// badRequest marks a client input problem the handler detected itself.
func badRequest(format string, args ...any) error {
	return fmt.Errorf("%w: %s", errBadRequest, fmt.Sprintf(format, args...))
}

func isNotFound(err error) bool {
	return errors.Is(err, store.ErrNotFound) ||
		errors.Is(err, labels.ErrNotFound) ||
		errors.Is(err, integrations.ErrNotFound) ||
		errors.Is(err, admin.ErrNotFound) ||
		errors.Is(err, tags.ErrNotFound)
}

func isClientError(err error) bool {
	for _, target := range []error{
		errBadRequest,
		rules.ErrConditionIndex,
		rules.ErrDuplicateAction,
		labels.ErrNestedSublabel,
		labels.ErrSensitivityRange,
		labels.ErrNameRequired,
		labels.ErrInvalidEmailDomain,
		integrations.ErrMappingIndex,
		integrations.ErrMappingsInUse,
		integrations.ErrUnknownField,
		integrations.ErrFieldMapped,
		tags.ErrDuplicateName,
		tags.ErrInvalidFilter,
	} {
		if errors.Is(err, target) {
			return true
		}
	}
	return false
}

func validationFields(err error) rules.FieldErrors {
	var ve *rules.ValidationError
	if errors.As(err, &ve) && len(ve.Fields) > 0 {
		return ve.Fields
	}
	return nil
}

// respondError maps domain errors to API results. Anything unrecognised is
// logged and answered with the generic internal error message.
func (h *Handlers) respondError(c *echo.Context, err error) error {
	switch {
	case validationFields(err) != nil:
		return c.JSON(http.StatusUnprocessableEntity, APIResult{Error: "Validation failed", Errors: validationFields(err)})
	case isNotFound(err):
		return respondFailure(c, http.StatusNotFound, err.Error())
	case isClientError(err):
		return respondFailure(c, http.StatusBadRequest, err.Error())
	default:
		return respondFailure(c, http.StatusInternalServerError, h.internalErrorMessage(c, err))
	}
}

// ParseBoolForm parses a form value as a boolean.
func ParseBoolForm(value string) bool {
	switch strings.ToLower(strings.TrimSpace(value)) {
	case "1", "true", "yes", "on":
		return true
	default:
		return false
	}
}
