package handlers

import (
	"strconv"
	"strings"

	"github.com/labstack/echo/v5"
)

func parsePageParam(c *echo.Context) int {
	if raw := strings.TrimSpace(c.QueryParam("page")); raw != "" {
		if n, err := strconv.Atoi(raw); err == nil && n > 0 {
			return n
		}
	}
	return 1
}

// pageWindow is one page of a list. From and To are 1-based and both zero
// when the page is empty.
type pageWindow struct {
	Page       int
	TotalPages int
	Offset     int
	End        int
	From       int
	To         int
}

// paginate clamps page into range for total items shown perPage at a time.
func paginate(total, page, perPage int) pageWindow {
	perPage = max(perPage, 1)
	totalPages := max((total+perPage-1)/perPage, 1)
	page = min(max(page, 1), totalPages)

	w := pageWindow{Page: page, TotalPages: totalPages, Offset: (page - 1) * perPage}
	w.End = min(w.Offset+perPage, total)
	if w.End > w.Offset {
		w.From, w.To = w.Offset+1, w.End
	}
	return w
}
