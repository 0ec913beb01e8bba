// Package paging reads page/limit query parameters and builds the
// pagination block returned by list endpoints.
package paging

import (
	"strconv"

	"github.com/labstack/echo/v4"
)

// Page is a resolved 1-based page request.
type Page struct {
	Number int64
	Limit  int64
}

// Skip is the number of rows before this page.
func (p Page) Skip() int64 {
	return (p.Number - 1) * p.Limit
}

// FromQuery reads ?page and ?limit, clamping limit to [1, max].
func FromQuery(c echo.Context, defLimit, max int64) Page {
	page, err := strconv.ParseInt(c.QueryParam("page"), 10, 64)
	if err != nil || page < 1 {
		page = 1
	}
	limit, err := strconv.ParseInt(c.QueryParam("limit"), 10, 64)
	if err != nil || limit < 1 {
		limit = defLimit
	}
	if max > 0 && limit > max {
		limit = max
	}
	return Page{Number: page, Limit: limit}
}

// Meta returns {currentPage, totalPages, <totalKey>, hasNext, hasPrev}.
func (p Page) Meta(total int64, totalKey string) map[string]interface{} {
	pages := int64(0)
	if p.Limit > 0 {
		pages = (total + p.Limit - 1) / p.Limit
	}
	return map[string]interface{}{
		"currentPage": p.Number,
		"totalPages":  pages,
		totalKey:      total,
		"hasNext":     p.Number*p.Limit < total,
		"hasPrev":     p.Number > 1,
	}
}
