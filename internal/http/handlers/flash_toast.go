package handlers

import (
	"encoding/base64"
	"encoding/json"
	"fmt"
	"net/http"
	"strings"
	"time"

	"github.com/labstack/echo/v5"
	"github.com/novadlp/nova-console/internal/http/viewmodels"
	"github.com/novadlp/nova-console/internal/metrics"
	"github.com/novadlp/nova-console/internal/rules"
)

// The toast cookie lives for one redirect back to the rules page.
const (
	flashToastCookieName = "nova_toast"
	flashToastMaxAge     = 30
)

// ruleAction names a mutation made from the rules page. The value doubles
// as the metrics operation label.
type ruleAction string

const (
	ruleActionDuplicate ruleAction = "duplicate"
	ruleActionDelete    ruleAction = "delete"
	ruleActionStatus    ruleAction = "status"
)

// ruleActionToast describes the outcome of a rules page action.
func ruleActionToast(action ruleAction, r rules.Rule, err error) viewmodels.ToastViewData {
	if err != nil {
		desc := err.Error()
		if isNotFound(err) {
			desc = "The rule no longer exists."
		}
		return viewmodels.ToastViewData{Category: "error", Title: "Rule not updated", Description: desc}
	}
	switch action {
	case ruleActionDuplicate:
		return viewmodels.ToastViewData{Category: "success", Title: "Rule duplicated", Description: r.Name}
	case ruleActionDelete:
		return viewmodels.ToastViewData{Category: "success", Title: "Rule deleted", Description: r.Name}
	case ruleActionStatus:
		return viewmodels.ToastViewData{
			Category:    "success",
			Title:       "Rule status updated",
			Description: fmt.Sprintf("%s is now %s", r.Name, r.Status),
		}
	default:
		return viewmodels.ToastViewData{Category: "info", Title: "Rules updated", Description: r.Name}
	}
}

// finishRuleAction records the mutation, leaves a toast and sends the browser
// back to the rules list. Server faults render the error page instead.
func (h *Handlers) finishRuleAction(c *echo.Context, action ruleAction, r rules.Rule, err error) error {
	metrics.RecordRuleMutation(string(action), err)
	if err != nil && !isNotFound(err) && !isClientError(err) {
		return h.RenderError(c, err)
	}
	if err == nil {
		h.ObserveRuleCounts()
	}
	setFlashToast(c, ruleActionToast(action, r, err))
	return redirectToRules(c)
}

func cleanToast(t viewmodels.ToastViewData) (viewmodels.ToastViewData, bool) {
	switch category := strings.ToLower(strings.TrimSpace(t.Category)); category {
	case "success", "error", "warning", "info":
		t.Category = category
	default:
		t.Category = "info"
	}
	t.Title = strings.TrimSpace(t.Title)
	t.Description = strings.TrimSpace(t.Description)
	return t, t.Title != "" || t.Description != ""
}

func setFlashToast(c *echo.Context, toast viewmodels.ToastViewData) {
	toast, ok := cleanToast(toast)
	if !ok {
		return
	}
	payload, err := json.Marshal(toast)
	if err != nil {
		return
	}
	writeToastCookie(c, base64.RawURLEncoding.EncodeToString(payload), flashToastMaxAge)
}

// popFlashToast reads and clears the toast. A damaged cookie is dropped.
func popFlashToast(c *echo.Context) *viewmodels.ToastViewData {
	cookie, err := c.Cookie(flashToastCookieName)
	if err != nil || cookie == nil {
		return nil
	}
	writeToastCookie(c, "", -1)

	raw, err := base64.RawURLEncoding.DecodeString(cookie.Value)
	if err != nil {
		return nil
	}
	var toast viewmodels.ToastViewData
	if err := json.Unmarshal(raw, &toast); err != nil {
		return nil
	}
	toast, ok := cleanToast(toast)
	if !ok {
		return nil
	}
	return &toast
}

func writeToastCookie(c *echo.Context, value string, maxAge int) {
	cookie := &http.Cookie{
		Name:     flashToastCookieName,
		Value:    value,
		Path:     rulesPath,
		MaxAge:   maxAge,
		HttpOnly: true,
		SameSite: http.SameSiteLaxMode,
	}
	if maxAge < 0 {
		cookie.Expires = time.Unix(0, 0)
	}
	c.SetCookie(cookie)
}
