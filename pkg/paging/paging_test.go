package paging

import (
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/labstack/echo/v4"
	"github.com/stretchr/testify/assert"
)

func ctx(query string) echo.Context {
	req := httptest.NewRequest(http.MethodGet, "/?"+query, nil)
	return echo.New().NewContext(req, httptest.NewRecorder())
}

func TestFromQuery(t *testing.T) {
	tests := []struct {
		query string
		want  Page
	}{
		{"", Page{Number: 1, Limit: 10}},
		{"page=3&limit=5", Page{Number: 3, Limit: 5}},
		{"page=0&limit=-1", Page{Number: 1, Limit: 10}},
		{"limit=500", Page{Number: 1, Limit: 100}},
		{"page=abc", Page{Number: 1, Limit: 10}},
	}
	for _, tt := range tests {
		t.Run(tt.query, func(t *testing.T) {
			assert.Equal(t, tt.want, FromQuery(ctx(tt.query), 10, 100))
		})
	}
}

func TestPage_Meta(t *testing.T) {
	p := Page{Number: 2, Limit: 10}
	assert.Equal(t, int64(10), p.Skip())

	meta := p.Meta(25, "totalEntries")
	assert.Equal(t, int64(3), meta["totalPages"])
	assert.Equal(t, int64(25), meta["totalEntries"])
	assert.Equal(t, true, meta["hasNext"])
	assert.Equal(t, true, meta["hasPrev"])

	meta = Page{Number: 3, Limit: 10}.Meta(25, "total")
	assert.Equal(t, false, meta["hasNext"])
}
