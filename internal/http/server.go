package httpapp

import (
	"context"
	"errors"
	"log/slog"
	"net/http"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/labstack/echo/v5"
	"github.com/labstack/echo/v5/middleware"
	"github.com/novadlp/nova-console/internal/http/handlers"
)

const (
	headerRequestID = "X-Request-ID"
	maxRequestIDLen = 128
	shutdownTimeout = 10 * time.Second
)

// EchoServer is the HTTP server wrapper.
type EchoServer struct {
	h *handlers.Handlers
	e *echo.Echo
}

// NewEchoServer creates a new HTTP server.
func NewEchoServer(h *handlers.Handlers, logger *slog.Logger) *EchoServer {
	e := echo.New()
	if logger != nil {
		e.Logger = logger
	}
	es := &EchoServer{h: h, e: e}
	e.HTTPErrorHandler = es.httpErrorHandler
	e.Use(requestIDMiddleware)
	e.Use(middleware.Recover())
	es.registerRoutes()
	return es
}

func (es *EchoServer) registerRoutes() {
	es.e.GET("/healthz", es.h.HandleHealthz)
	es.e.GET("/", func(c *echo.Context) error {
		return c.Redirect(http.StatusSeeOther, "/rules")
	})

	es.e.GET("/rules", es.h.HandleRulesPage)
	es.e.POST("/rules/:id/duplicate", es.h.HandleRulePageDuplicate)
	es.e.POST("/rules/:id/delete", es.h.HandleRulePageDelete)
	es.e.POST("/rules/:id/status", es.h.HandleRulePageStatus)

	api := es.e.Group("/api")

	api.GET("/rules", es.h.HandleListRules)
	api.POST("/rules", es.h.HandleCreateRule)
	api.GET("/rules/editing", es.h.HandleGetEditingRule)
	api.PUT("/rules/editing", es.h.HandleSetEditingRule)
	api.POST("/rules/test", es.h.HandleTestRule)
	api.GET("/rules/:id", es.h.HandleGetRule)
	api.PUT("/rules/:id", es.h.HandleUpdateRule)
	api.DELETE("/rules/:id", es.h.HandleDeleteRule)
	api.POST("/rules/:id/duplicate", es.h.HandleDuplicateRule)
	api.POST("/rules/:id/status", es.h.HandleSetRuleStatus)

	api.GET("/wizard", es.h.HandleGetWizard)
	api.POST("/wizard/reset", es.h.HandleResetWizard)
	api.PUT("/wizard/steps/:step", es.h.HandleWizardStep)
	api.POST("/wizard/conditions", es.h.HandleAddCondition)
	api.PATCH("/wizard/conditions/:index", es.h.HandleUpdateCondition)
	api.DELETE("/wizard/conditions/:index", es.h.HandleRemoveCondition)
	api.POST("/wizard/actions", es.h.HandleAddAction)
	api.PUT("/wizard/actions/:index", es.h.HandleUpdateAction)
	api.DELETE("/wizard/actions/:index", es.h.HandleRemoveAction)
	api.POST("/wizard/actions/:index/inherit", es.h.HandleInheritProtections)
	api.POST("/wizard/save", es.h.HandleSaveWizard)

	api.GET("/labels", es.h.HandleListLabels)
	api.POST("/labels", es.h.HandleCreateLabel)
	api.PUT("/labels/:id", es.h.HandleUpdateLabel)
	api.DELETE("/labels/:id", es.h.HandleDeleteLabel)
	api.POST("/labels/:id/sublabels", es.h.HandleAddSublabel)
	api.PUT("/labels/:id/sensitivity", es.h.HandleSetSensitivity)
	api.PUT("/labels/:id/protection", es.h.HandleSetProtection)

	api.GET("/tags", es.h.HandleListTags)
	api.POST("/tags", es.h.HandleCreateTag)
	api.PUT("/tags/:id", es.h.HandleUpdateTag)
	api.POST("/tags/:id/deprecate", es.h.HandleDeprecateTag)
	api.GET("/tags/:id/history", es.h.HandleTagHistory)

	api.GET("/integrations", es.h.HandleListIntegrations)
	api.POST("/integrations", es.h.HandleAddIntegration)
	api.GET("/integrations/sharepoint/sites", es.h.HandleListSharePointSites)
	api.POST("/integrations/consent", es.h.HandleVerifyConsent)
	api.POST("/integrations/:id/field-mappings", es.h.HandleAddFieldMapping)
	api.PUT("/integrations/:id/field-mappings/:index", es.h.HandleUpdateFieldMapping)
	api.DELETE("/integrations/:id/field-mappings/:index", es.h.HandleRemoveFieldMapping)
	api.PUT("/integrations/:id/sites", es.h.HandleSetSites)

	api.GET("/admin/roles", es.h.HandleListRoles)
	api.GET("/admin/users", es.h.HandleListAdminUsers)
	api.POST("/admin/users", es.h.HandleAddAdminUser)
	api.POST("/admin/users/:id/status", es.h.HandleSetAdminUserStatus)

	api.GET("/catalog", es.h.HandleCatalog)
}

// requestIDMiddleware keeps a sane inbound X-Request-ID or mints one, and
// exposes it to handlers and the client.
func requestIDMiddleware(next echo.HandlerFunc) echo.HandlerFunc {
	return func(c *echo.Context) error {
		id := strings.TrimSpace(c.Request().Header.Get(headerRequestID))
		if id == "" || len(id) > maxRequestIDLen {
			id = uuid.NewString()
		}
		c.Set(handlers.ContextKeyRequestID, id)
		c.Response().Header().Set(headerRequestID, id)
		return next(c)
	}
}

func httpStatusFromError(err error) int {
	var sc interface{ StatusCode() int }
	if errors.As(err, &sc) {
		if code := sc.StatusCode(); code != 0 {
			return code
		}
	}
	return http.StatusInternalServerError
}

// httpErrorHandler never echoes err to the client. Internal errors get a
// reference id; everything else gets the bare status text.
func (es *EchoServer) httpErrorHandler(c *echo.Context, err error) {
	if resp, uErr := echo.UnwrapResponse(c.Response()); uErr == nil && resp.Committed {
		return
	}

	status := httpStatusFromError(err)
	var writeErr error
	switch {
	case status == http.StatusNotFound:
		writeErr = handlers.RenderNotFound(c)
	case status >= http.StatusInternalServerError:
		writeErr = es.h.RenderError(c, err)
	default:
		writeErr = c.String(status, http.StatusText(status))
	}
	if writeErr != nil {
		c.Logger().Error("write error response", "error", writeErr)
	}
}

// Handler is the root handler with session load and save around the router.
func (es *EchoServer) Handler() http.Handler {
	if es.h.Sessions == nil {
		return es.e
	}
	return es.h.Sessions.LoadAndSave(es.e)
}

// Run serves on addr until ctx is cancelled, then shuts down gracefully.
func (es *EchoServer) Run(ctx context.Context, addr string) error {
	srv := &http.Server{
		Addr:              addr,
		Handler:           es.Handler(),
		ReadHeaderTimeout: 10 * time.Second,
	}

	errCh := make(chan error, 1)
	go func() {
		errCh <- srv.ListenAndServe()
	}()

	select {
	case err := <-errCh:
		if errors.Is(err, http.ErrServerClosed) {
			return nil
		}
		return err
	case <-ctx.Done():
	}

	shutdownCtx, cancel := context.WithTimeout(context.Background(), shutdownTimeout)
	defer cancel()
	if err := srv.Shutdown(shutdownCtx); err != nil {
		return err
	}
	if err := <-errCh; err != nil && !errors.Is(err, http.ErrServerClosed) {
		return err
	}
	return nil
}
