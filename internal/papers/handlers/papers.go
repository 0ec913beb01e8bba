package handlers

import (
	"errors"
	"net/http"
	"strings"

	"github.com/anonto42/webapps/backend/internal/middleware"
	"github.com/anonto42/webapps/backend/internal/papers/models"
	"github.com/anonto42/webapps/backend/internal/papers/repositories"
	"github.com/anonto42/webapps/backend/pkg/httperr"
	"github.com/anonto42/webapps/backend/pkg/logger"
	"github.com/anonto42/webapps/backend/pkg/paging"
	"github.com/labstack/echo/v4"
)

const recentPapers = 5

// PaperHandler serves an author's submissions
type PaperHandler struct {
	papers     repositories.PaperRepository
	categories repositories.CategoryRepository
	log        *logger.Logger
}

func NewPaperHandler(papers repositories.PaperRepository, categories repositories.CategoryRepository, log *logger.Logger) *PaperHandler {
	return &PaperHandler{papers: papers, categories: categories, log: log}
}

// RegisterPaperRoutes registers /papers. auth admits any signed-in role for
// reading a single paper; authorOnly must include auth.
func (h *PaperHandler) RegisterPaperRoutes(g *echo.Group, auth echo.MiddlewareFunc, authorOnly ...echo.MiddlewareFunc) {
	g.POST("", h.Submit, authorOnly...)
	g.GET("/mine", h.Mine, authorOnly...)
	g.GET("/:id", h.Get, auth)
	g.DELETE("/:id", h.Delete, authorOnly...)
}

// RegisterAuthorRoutes registers /author/dashboard.
func (h *PaperHandler) RegisterAuthorRoutes(g *echo.Group, authorOnly ...echo.MiddlewareFunc) {
	g.GET("/dashboard", h.Dashboard, authorOnly...)
}

func (h *PaperHandler) Submit(c echo.Context) error {
	var req models.PaperRequest
	if err := httperr.Bind(c, &req); err != nil {
		return err
	}
	uid, err := callerID(c)
	if err != nil {
		return err
	}
	ctx := c.Request().Context()

	category, err := h.categories.GetByID(ctx, req.CategoryID)
	if err != nil {
		if errors.Is(err, repositories.ErrNotFound) {
			return httperr.BadRequest("INVALID_CATEGORY", "Category does not exist")
		}
		return httperr.Internal("SUBMIT_PAPER_ERROR", "Failed to submit paper", err)
	}

	paper := &models.Paper{
		Title:      strings.TrimSpace(req.Title),
		Abstract:   strings.TrimSpace(req.Abstract),
		Keywords:   strings.TrimSpace(req.Keywords),
		FileName:   strings.TrimSpace(req.FileName),
		CategoryID: category.ID,
		AuthorID:   uid,
	}
	if err := h.papers.Create(ctx, paper); err != nil {
		return httperr.Internal("SUBMIT_PAPER_ERROR", "Failed to submit paper", err)
	}
	paper.Category = category
	h.log.Info("paper submitted", "paper_id", paper.ID, "author_id", uid)

	return c.JSON(http.StatusCreated, echo.Map{
		"message": "Paper submitted successfully",
		"paper":   paper,
	})
}

func (h *PaperHandler) Mine(c echo.Context) error {
	uid, err := callerID(c)
	if err != nil {
		return err
	}
	page := paging.FromQuery(c, 10, 100)
	papers, total, err := h.papers.List(c.Request().Context(), models.PaperFilter{
		AuthorID: uid,
		Status:   c.QueryParam("status"),
		Skip:     int(page.Skip()),
		Limit:    int(page.Limit),
	})
	if err != nil {
		return httperr.Internal("FETCH_PAPERS_ERROR", "Failed to fetch papers", err)
	}
	return c.JSON(http.StatusOK, echo.Map{
		"papers":     papers,
		"pagination": page.Meta(total, "totalPapers"),
	})
}

// Get shows a paper to its author, its assigned reviewers and admins.
func (h *PaperHandler) Get(c echo.Context) error {
	id, err := pathID(c, "id", "PAPER_NOT_FOUND", "Paper not found")
	if err != nil {
		return err
	}
	uid, err := callerID(c)
	if err != nil {
		return err
	}
	ctx := c.Request().Context()

	paper, err := h.papers.GetByID(ctx, id)
	if err != nil {
		return lookupErr(err, "PAPER_NOT_FOUND", "Paper not found", "FETCH_PAPER_ERROR", "Failed to fetch paper")
	}

	allowed := paper.AuthorID == uid
	if !allowed {
		switch middleware.Claims(c).Role {
		case models.RoleAdmin:
			allowed = true
		case models.RoleReviewer:
			allowed, err = h.papers.IsAssigned(ctx, id, uid)
			if err != nil {
				return httperr.Internal("FETCH_PAPER_ERROR", "Failed to fetch paper", err)
			}
		}
	}
	if !allowed {
		return httperr.Forbidden("ACCESS_DENIED", "You do not have access to this paper")
	}
	return c.JSON(http.StatusOK, echo.Map{"paper": paper})
}

func (h *PaperHandler) Delete(c echo.Context) error {
	id, err := pathID(c, "id", "PAPER_NOT_FOUND", "Paper not found")
	if err != nil {
		return err
	}
	uid, err := callerID(c)
	if err != nil {
		return err
	}
	ctx := c.Request().Context()

	paper, err := h.papers.GetByID(ctx, id)
	if err != nil {
		return lookupErr(err, "PAPER_NOT_FOUND", "Paper not found", "DELETE_PAPER_ERROR", "Failed to delete paper")
	}
	if paper.AuthorID != uid {
		return httperr.Forbidden("NOT_OWNER", "You can only delete your own papers")
	}
	if err := h.papers.Delete(ctx, id, uid); err != nil {
		return lookupErr(err, "PAPER_NOT_FOUND", "Paper not found", "DELETE_PAPER_ERROR", "Failed to delete paper")
	}
	h.log.Info("paper deleted", "paper_id", id, "author_id", uid)
	return c.JSON(http.StatusOK, echo.Map{"message": "Paper deleted successfully"})
}

// Dashboard returns the author's papers counted by status and the latest
// submissions.
func (h *PaperHandler) Dashboard(c echo.Context) error {
	uid, err := callerID(c)
	if err != nil {
		return err
	}
	ctx := c.Request().Context()

	counts, err := h.papers.StatusCounts(ctx, uid)
	if err != nil {
		return httperr.Internal("DASHBOARD_ERROR", "Failed to load dashboard", err)
	}
	recent, _, err := h.papers.List(ctx, models.PaperFilter{AuthorID: uid, Limit: recentPapers})
	if err != nil {
		return httperr.Internal("DASHBOARD_ERROR", "Failed to load dashboard", err)
	}
	return c.JSON(http.StatusOK, echo.Map{
		"stats": echo.Map{
			"total":    counts.Total(),
			"byStatus": counts,
		},
		"recentPapers": recent,
	})
}
