package handlers

import (
	"net/http"
	"strings"

	"github.com/labstack/echo/v5"
)

const (
	headerHXRequest  = "HX-Request"
	headerHXTarget   = "HX-Target"
	headerHXRedirect = "HX-Redirect"

	rulesResultsTarget = "rules-results"
	rulesPath          = "/rules"
)

func isHX(c *echo.Context) bool {
	if c == nil || c.Request() == nil {
		return false
	}
	return strings.EqualFold(strings.TrimSpace(c.Request().Header.Get(headerHXRequest)), "true")
}

func isHXTarget(c *echo.Context, target string) bool {
	if c == nil || c.Request() == nil {
		return false
	}
	got := strings.TrimPrefix(strings.TrimSpace(c.Request().Header.Get(headerHXTarget)), "#")
	return strings.EqualFold(got, strings.TrimSpace(target))
}

// redirectToRules sends the browser back to the rules list. htmx requests
// get an HX-Redirect instead of a 303 so the swap does not follow it.
func redirectToRules(c *echo.Context) error {
	if isHX(c) {
		c.Response().Header().Set(headerHXRedirect, rulesPath)
		return c.NoContent(http.StatusNoContent)
	}
	return c.Redirect(http.StatusSeeOther, rulesPath)
}

// addVary merges header names into Vary without duplicates. A wildcard Vary
// is left alone.
func addVary(c *echo.Context, values ...string) {
	if c == nil || len(values) == 0 {
		return
	}
	header := c.Response().Header()

	var tokens []string
	seen := map[string]struct{}{}
	for _, raw := range append(header.Values(echo.HeaderVary), values...) {
		for _, token := range strings.Split(raw, ",") {
			token = strings.TrimSpace(token)
			if token == "" {
				continue
			}
			if token == "*" {
				header.Set(echo.HeaderVary, "*")
				return
			}
			canonical := http.CanonicalHeaderKey(token)
			if _, ok := seen[canonical]; ok {
				continue
			}
			seen[canonical] = struct{}{}
			tokens = append(tokens, canonical)
		}
	}
	if len(tokens) > 0 {
		header.Set(echo.HeaderVary, strings.Join(tokens, ", "))
	}
}
