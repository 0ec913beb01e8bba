package handlers

import (
	"context"
	"fmt"
	"net/http"
	"testing"

	"github.com/anonto42/webapps/backend/internal/papers/models"
	"github.com/anonto42/webapps/backend/internal/papers/paperstest"
	"github.com/anonto42/webapps/backend/internal/papers/repositories"
	"github.com/anonto42/webapps/backend/pkg/logger"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestSubmitPaper(t *testing.T) {
	p := newPortal(t)
	h := NewPaperHandler(p.papers, p.categories, logger.NewNop())
	ada := paperstest.CreateUser(t, p.db, "ada", models.RoleAuthor)
	cat := paperstest.CreateCategory(t, p.db, "Systems")

	body := fmt.Sprintf(`{"title":"Notes on the Engine","abstract":"We describe it.","keywords":"engines","fileName":"engine.pdf","categoryId":%d}`, cat.ID)
	rec, resp := p.serve(t, h.Submit, request{method: http.MethodPost, target: "/papers", body: body, as: ada})
	require.Equal(t, http.StatusCreated, rec.Code, rec.Body.String())

	paper := resp["paper"].(map[string]interface{})
	assert.Equal(t, models.StatusSubmitted, paper["status"])
	assert.Equal(t, float64(ada.ID), paper["authorId"])

	rec, resp = p.serve(t, h.Submit, request{
		method: http.MethodPost, target: "/papers", as: ada,
		body: `{"title":"Orphan","abstract":"x","fileName":"o.pdf","categoryId":999}`,
	})
	assert.Equal(t, http.StatusBadRequest, rec.Code)
	assert.Equal(t, "INVALID_CATEGORY", resp["code"])

	rec, resp = p.serve(t, h.Submit, request{
		method: http.MethodPost, target: "/papers", as: ada,
		body: fmt.Sprintf(`{"title":"No file","abstract":"x","categoryId":%d}`, cat.ID),
	})
	assert.Equal(t, http.StatusBadRequest, rec.Code)
	assert.Equal(t, "VALIDATION_ERROR", resp["code"])
}

func TestGetPaper_Access(t *testing.T) {
	p := newPortal(t)
	h := NewPaperHandler(p.papers, p.categories, logger.NewNop())
	ada := paperstest.CreateUser(t, p.db, "ada", models.RoleAuthor)
	alan := paperstest.CreateUser(t, p.db, "alan", models.RoleAuthor)
	grace := paperstest.CreateUser(t, p.db, "grace", models.RoleReviewer)
	barbara := paperstest.CreateUser(t, p.db, "barbara", models.RoleReviewer)
	admin := paperstest.CreateUser(t, p.db, "root", models.RoleAdmin)
	paper := paperstest.CreatePaper(t, p.db, ada, paperstest.CreateCategory(t, p.db, "Systems"), models.StatusSubmitted)
	_, err := p.papers.Assign(context.Background(), paper.ID, grace.ID)
	require.NoError(t, err)

	tests := []struct {
		name   string
		as     *models.User
		status int
	}{
		{"author", ada, http.StatusOK},
		{"assigned reviewer", grace, http.StatusOK},
		{"admin", admin, http.StatusOK},
		{"other author", alan, http.StatusForbidden},
		{"unassigned reviewer", barbara, http.StatusForbidden},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			rec, _ := p.serve(t, h.Get, request{method: http.MethodGet, target: "/papers/" + idStr(paper.ID), as: tt.as, params: []string{"id", idStr(paper.ID)}})
			assert.Equal(t, tt.status, rec.Code)
		})
	}

	rec, body := p.serve(t, h.Get, request{method: http.MethodGet, target: "/papers/abc", as: ada, params: []string{"id", "abc"}})
	assert.Equal(t, http.StatusNotFound, rec.Code)
	assert.Equal(t, "PAPER_NOT_FOUND", body["code"])
}

func TestDeletePaper_OwnerOnly(t *testing.T) {
	p := newPortal(t)
	h := NewPaperHandler(p.papers, p.categories, logger.NewNop())
	ada := paperstest.CreateUser(t, p.db, "ada", models.RoleAuthor)
	alan := paperstest.CreateUser(t, p.db, "alan", models.RoleAuthor)
	paper := paperstest.CreatePaper(t, p.db, ada, paperstest.CreateCategory(t, p.db, "Systems"), models.StatusSubmitted)
	target := request{method: http.MethodDelete, target: "/papers/" + idStr(paper.ID), params: []string{"id", idStr(paper.ID)}}

	target.as = alan
	rec, body := p.serve(t, h.Delete, target)
	assert.Equal(t, http.StatusForbidden, rec.Code)
	assert.Equal(t, "NOT_OWNER", body["code"])

	target.as = ada
	rec, _ = p.serve(t, h.Delete, target)
	require.Equal(t, http.StatusOK, rec.Code)

	_, err := p.papers.GetByID(context.Background(), paper.ID)
	assert.ErrorIs(t, err, repositories.ErrNotFound)

	rec, _ = p.serve(t, h.Delete, target)
	assert.Equal(t, http.StatusNotFound, rec.Code)
}

func TestAuthorDashboard(t *testing.T) {
	p := newPortal(t)
	h := NewPaperHandler(p.papers, p.categories, logger.NewNop())
	ada := paperstest.CreateUser(t, p.db, "ada", models.RoleAuthor)
	cat := paperstest.CreateCategory(t, p.db, "Systems")
	for _, s := range []string{models.StatusSubmitted, models.StatusSubmitted, models.StatusAccepted} {
		paperstest.CreatePaper(t, p.db, ada, cat, s)
	}
	paperstest.CreatePaper(t, p.db, paperstest.CreateUser(t, p.db, "alan", models.RoleAuthor), cat, models.StatusRejected)

	rec, body := p.serve(t, h.Dashboard, request{method: http.MethodGet, target: "/author/dashboard", as: ada})
	require.Equal(t, http.StatusOK, rec.Code)

	stats := body["stats"].(map[string]interface{})
	assert.Equal(t, float64(3), stats["total"])
	byStatus := stats["byStatus"].(map[string]interface{})
	assert.Equal(t, float64(2), byStatus[models.StatusSubmitted])
	assert.Equal(t, float64(0), byStatus[models.StatusRejected])
	assert.Len(t, body["recentPapers"], 3)
}

func TestMyPapers(t *testing.T) {
	p := newPortal(t)
	h := NewPaperHandler(p.papers, p.categories, logger.NewNop())
	ada := paperstest.CreateUser(t, p.db, "ada", models.RoleAuthor)
	cat := paperstest.CreateCategory(t, p.db, "Systems")
	for i := 0; i < 3; i++ {
		paperstest.CreatePaper(t, p.db, ada, cat, models.StatusSubmitted)
	}

	rec, body := p.serve(t, h.Mine, request{method: http.MethodGet, target: "/papers/mine?limit=2&page=2", as: ada})
	require.Equal(t, http.StatusOK, rec.Code)
	assert.Len(t, body["papers"], 1)
	pagination := body["pagination"].(map[string]interface{})
	assert.Equal(t, float64(3), pagination["totalPapers"])
	assert.Equal(t, false, pagination["hasNext"])
}
