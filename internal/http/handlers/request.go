package handlers

import (
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"strconv"
	"strings"

	"github.com/labstack/echo/v5"
)

const maxJSONBodyBytes = 1 << 20

var errEmptyBody = fmt.Errorf("%w: request body is required", errBadRequest)

// decodeJSON reads one JSON document from the request body. Unknown fields
// are rejected.
func decodeJSON(c *echo.Context, dst any) error {
	req := c.Request()
	if req == nil || req.Body == nil {
		return errEmptyBody
	}
	dec := json.NewDecoder(io.LimitReader(req.Body, maxJSONBodyBytes))
	dec.DisallowUnknownFields()
	if err := dec.Decode(dst); err != nil {
		if errors.Is(err, io.EOF) {
			return errEmptyBody
		}
		return badRequest("invalid JSON body: %v", err)
	}
	return nil
}

// decodeOptionalJSON is decodeJSON for endpoints whose body may be empty.
func decodeOptionalJSON(c *echo.Context, dst any) error {
	if err := decodeJSON(c, dst); err != nil && !errors.Is(err, errEmptyBody) {
		return err
	}
	return nil
}

func pathIndex(c *echo.Context, name string) (int, error) {
	raw := strings.TrimSpace(c.Param(name))
	n, err := strconv.Atoi(raw)
	if err != nil || n < 0 {
		return 0, badRequest("invalid %s %q", name, raw)
	}
	return n, nil
}

func pathID(c *echo.Context) (string, error) {
	id := strings.TrimSpace(c.Param("id"))
	if id == "" {
		return "", badRequest("id is required")
	}
	return id, nil
}
