package handlers

import (
	"errors"
	"net/http"
	"strings"

	"github.com/anonto42/webapps/backend/internal/papers/models"
	"github.com/anonto42/webapps/backend/internal/papers/repositories"
	"github.com/anonto42/webapps/backend/pkg/httperr"
	"github.com/anonto42/webapps/backend/pkg/logger"
	"github.com/labstack/echo/v4"
)

// ReviewerHandler serves a reviewer's assignments and reviews
type ReviewerHandler struct {
	papers repositories.PaperRepository
	log    *logger.Logger
}

func NewReviewerHandler(papers repositories.PaperRepository, log *logger.Logger) *ReviewerHandler {
	return &ReviewerHandler{papers: papers, log: log}
}

// RegisterReviewerRoutes registers /reviewer. The group must already require
// a reviewer token.
func (h *ReviewerHandler) RegisterReviewerRoutes(g *echo.Group) {
	g.GET("/assignments", h.Assignments)
	g.POST("/papers/:id/review", h.SubmitReview)
	g.GET("/dashboard", h.Dashboard)
}

func (h *ReviewerHandler) Assignments(c echo.Context) error {
	uid, err := callerID(c)
	if err != nil {
		return err
	}
	assignments, err := h.papers.Assignments(c.Request().Context(), uid)
	if err != nil {
		return httperr.Internal("FETCH_ASSIGNMENTS_ERROR", "Failed to fetch assignments", err)
	}
	return c.JSON(http.StatusOK, echo.Map{"assignments": assignments})
}

// SubmitReview stores the caller's review of a paper assigned to them. A
// repeat submission replaces the earlier one.
func (h *ReviewerHandler) SubmitReview(c echo.Context) error {
	id, err := pathID(c, "id", "PAPER_NOT_FOUND", "Paper not found")
	if err != nil {
		return err
	}
	var req models.ReviewRequest
	if err := httperr.Bind(c, &req); err != nil {
		return err
	}
	uid, err := callerID(c)
	if err != nil {
		return err
	}

	review := &models.Review{
		PaperID:        id,
		ReviewerID:     uid,
		Score:          *req.Score,
		Comments:       strings.TrimSpace(req.Comments),
		Recommendation: req.Recommendation,
	}
	status, err := h.papers.SubmitReview(c.Request().Context(), review)
	switch {
	case errors.Is(err, repositories.ErrNotAssigned):
		return httperr.Forbidden("NOT_ASSIGNED", "You are not assigned to review this paper")
	case errors.Is(err, repositories.ErrPaperClosed):
		return httperr.Conflict("PAPER_CLOSED", "A decision has already been made on this paper")
	case err != nil:
		return lookupErr(err, "PAPER_NOT_FOUND", "Paper not found", "SUBMIT_REVIEW_ERROR", "Failed to submit review")
	}
	h.log.Info("review submitted", "paper_id", id, "reviewer_id", uid, "paper_status", status)

	return c.JSON(http.StatusOK, echo.Map{
		"message":     "Review submitted successfully",
		"review":      review,
		"paperStatus": status,
	})
}

func (h *ReviewerHandler) Dashboard(c echo.Context) error {
	uid, err := callerID(c)
	if err != nil {
		return err
	}
	ctx := c.Request().Context()

	stats, err := h.papers.ReviewerStats(ctx, uid)
	if err != nil {
		return httperr.Internal("DASHBOARD_ERROR", "Failed to load dashboard", err)
	}
	reviews, err := h.papers.ReviewsBy(ctx, uid)
	if err != nil {
		return httperr.Internal("DASHBOARD_ERROR", "Failed to load dashboard", err)
	}
	return c.JSON(http.StatusOK, echo.Map{
		"stats":   stats,
		"reviews": reviews,
	})
}
