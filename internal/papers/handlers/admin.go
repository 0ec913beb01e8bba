package handlers

import (
	"context"
	"errors"
	"net/http"
	"strings"
	"time"

	"github.com/anonto42/webapps/backend/internal/papers/models"
	"github.com/anonto42/webapps/backend/internal/papers/repositories"
	"github.com/anonto42/webapps/backend/pkg/cache"
	"github.com/anonto42/webapps/backend/pkg/httperr"
	"github.com/anonto42/webapps/backend/pkg/logger"
	"github.com/anonto42/webapps/backend/pkg/paging"
	"github.com/labstack/echo/v4"
	"golang.org/x/crypto/bcrypt"
	"golang.org/x/sync/errgroup"
)

const (
	dashboardKey = "admin:dashboard"
	dashboardTTL = time.Minute
)

// AdminHandler serves portal administration
type AdminHandler struct {
	users  repositories.UserRepository
	papers repositories.PaperRepository
	cache  *cache.Cache
	log    *logger.Logger
	cost   int
}

// NewAdminHandler creates a new AdminHandler. cache may be nil.
func NewAdminHandler(users repositories.UserRepository, papers repositories.PaperRepository, c *cache.Cache, log *logger.Logger) *AdminHandler {
	return &AdminHandler{users: users, papers: papers, cache: c, log: log, cost: bcryptCost}
}

// RegisterAdminRoutes registers /admin; the group must already require an
// admin token.
func (h *AdminHandler) RegisterAdminRoutes(g *echo.Group) {
	g.GET("/dashboard", h.Dashboard)

	g.GET("/papers", h.Papers)
	g.GET("/papers/:id", h.Paper)
	g.POST("/papers/:id/assign", h.Assign)
	g.DELETE("/papers/:id/assign/:reviewerId", h.Unassign)
	g.PUT("/papers/:id/status", h.SetStatus)

	g.GET("/users", h.Users)
	g.POST("/users", h.CreateUser)
	g.PUT("/users/:id", h.UpdateUser)
	g.DELETE("/users/:id", h.DeleteUser)
	g.GET("/reviewers", h.Reviewers)
}

func (h *AdminHandler) Dashboard(c echo.Context) error {
	stats, err := cache.Remember(c.Request().Context(), h.cache, dashboardKey, dashboardTTL, h.loadStats)
	if err != nil {
		return httperr.Internal("DASHBOARD_ERROR", "Failed to load dashboard", err)
	}
	return c.JSON(http.StatusOK, echo.Map{"stats": stats})
}

func (h *AdminHandler) loadStats(ctx context.Context) (models.PortalStats, error) {
	var (
		stats models.PortalStats
		roles map[string]int64
	)
	g, gctx := errgroup.WithContext(ctx)
	g.Go(func() (err error) {
		roles, err = h.users.CountByRole(gctx)
		return err
	})
	g.Go(func() (err error) {
		stats.PapersByStatus, err = h.papers.StatusCounts(gctx, 0)
		return err
	})
	g.Go(func() (err error) {
		stats.PendingAssignments, err = h.papers.CountAssignments(gctx, models.AssignmentPending)
		return err
	})
	if err := g.Wait(); err != nil {
		return models.PortalStats{}, err
	}

	for _, n := range roles {
		stats.TotalUsers += n
	}
	stats.Authors = roles[models.RoleAuthor]
	stats.Reviewers = roles[models.RoleReviewer]
	stats.TotalPapers = stats.PapersByStatus.Total()
	return stats, nil
}

// invalidate drops the cached dashboard after a write that changes it.
func (h *AdminHandler) invalidate(ctx context.Context) {
	if err := h.cache.Delete(ctx, dashboardKey); err != nil {
		h.log.Warn("failed to invalidate dashboard cache", "error", err)
	}
}

func validStatus(s string) bool {
	for _, v := range models.PaperStatuses {
		if v == s {
			return true
		}
	}
	return false
}

func (h *AdminHandler) Papers(c echo.Context) error {
	status := c.QueryParam("status")
	if status != "" && !validStatus(status) {
		return httperr.BadRequest("INVALID_STATUS", "Unknown paper status")
	}
	page := paging.FromQuery(c, 20, 100)
	papers, total, err := h.papers.List(c.Request().Context(), models.PaperFilter{
		Status: status,
		Skip:   int(page.Skip()),
		Limit:  int(page.Limit),
	})
	if err != nil {
		return httperr.Internal("FETCH_PAPERS_ERROR", "Failed to fetch papers", err)
	}
	return c.JSON(http.StatusOK, echo.Map{
		"papers":     papers,
		"pagination": page.Meta(total, "totalPapers"),
	})
}

// Paper returns a paper with its assignments and reviews.
func (h *AdminHandler) Paper(c echo.Context) error {
	id, err := pathID(c, "id", "PAPER_NOT_FOUND", "Paper not found")
	if err != nil {
		return err
	}
	paper, err := h.papers.Detail(c.Request().Context(), id)
	if err != nil {
		return lookupErr(err, "PAPER_NOT_FOUND", "Paper not found", "FETCH_PAPER_ERROR", "Failed to fetch paper")
	}
	return c.JSON(http.StatusOK, echo.Map{"paper": paper})
}

func (h *AdminHandler) Assign(c echo.Context) error {
	id, err := pathID(c, "id", "PAPER_NOT_FOUND", "Paper not found")
	if err != nil {
		return err
	}
	var req models.AssignRequest
	if err := httperr.Bind(c, &req); err != nil {
		return err
	}
	ctx := c.Request().Context()

	assignment, err := h.papers.Assign(ctx, id, req.ReviewerID)
	switch {
	case errors.Is(err, repositories.ErrDuplicate):
		return httperr.Conflict("ALREADY_ASSIGNED", "Reviewer is already assigned to this paper")
	case errors.Is(err, repositories.ErrNotAssignable):
		return httperr.Conflict("INVALID_PAPER_STATUS", "Reviewers can only be assigned to submitted or under-review papers")
	case errors.Is(err, repositories.ErrNotReviewer):
		return httperr.BadRequest("INVALID_REVIEWER", "User is not a reviewer")
	case errors.Is(err, repositories.ErrReviewerNotFound):
		return httperr.NotFound("REVIEWER_NOT_FOUND", "Reviewer not found")
	case err != nil:
		return lookupErr(err, "PAPER_NOT_FOUND", "Paper not found", "ASSIGN_REVIEWER_ERROR", "Failed to assign reviewer")
	}
	h.invalidate(ctx)
	h.log.Info("reviewer assigned", "paper_id", id, "reviewer_id", req.ReviewerID)

	return c.JSON(http.StatusCreated, echo.Map{
		"message":    "Reviewer assigned successfully",
		"assignment": assignment,
	})
}

func (h *AdminHandler) Unassign(c echo.Context) error {
	id, err := pathID(c, "id", "PAPER_NOT_FOUND", "Paper not found")
	if err != nil {
		return err
	}
	reviewerID, err := pathID(c, "reviewerId", "ASSIGNMENT_NOT_FOUND", "Assignment not found")
	if err != nil {
		return err
	}
	ctx := c.Request().Context()

	err = h.papers.Unassign(ctx, id, reviewerID)
	switch {
	case errors.Is(err, repositories.ErrReviewSubmitted):
		return httperr.Conflict("REVIEW_ALREADY_SUBMITTED", "Cannot remove a reviewer who has already submitted a review")
	case errors.Is(err, repositories.ErrAssignmentNotFound):
		return httperr.NotFound("ASSIGNMENT_NOT_FOUND", "Assignment not found")
	case err != nil:
		return lookupErr(err, "PAPER_NOT_FOUND", "Paper not found", "UNASSIGN_REVIEWER_ERROR", "Failed to remove reviewer")
	}
	h.invalidate(ctx)
	return c.JSON(http.StatusOK, echo.Map{"message": "Reviewer removed successfully"})
}

// SetStatus records a decision. accepted and rejected need a review from
// every assigned reviewer.
func (h *AdminHandler) SetStatus(c echo.Context) error {
	id, err := pathID(c, "id", "PAPER_NOT_FOUND", "Paper not found")
	if err != nil {
		return err
	}
	var req models.StatusRequest
	if err := httperr.Bind(c, &req); err != nil {
		return err
	}
	ctx := c.Request().Context()

	paper, err := h.papers.SetStatus(ctx, id, req.Status)
	if err != nil {
		if errors.Is(err, repositories.ErrReviewsIncomplete) {
			return httperr.Conflict("REVIEWS_INCOMPLETE", "Every assigned reviewer must submit a review first")
		}
		return lookupErr(err, "PAPER_NOT_FOUND", "Paper not found", "UPDATE_STATUS_ERROR", "Failed to update paper status")
	}
	h.invalidate(ctx)
	h.log.Info("paper status changed", "paper_id", id, "status", req.Status)

	return c.JSON(http.StatusOK, echo.Map{
		"message": "Paper status updated successfully",
		"paper":   paper,
	})
}

func (h *AdminHandler) Users(c echo.Context) error {
	role := c.QueryParam("role")
	switch role {
	case "", models.RoleAuthor, models.RoleReviewer, models.RoleAdmin:
	default:
		return httperr.BadRequest("INVALID_ROLE", "Unknown role")
	}
	page := paging.FromQuery(c, 20, 100)
	users, total, err := h.users.List(c.Request().Context(), role, int(page.Skip()), int(page.Limit))
	if err != nil {
		return httperr.Internal("FETCH_USERS_ERROR", "Failed to fetch users", err)
	}
	return c.JSON(http.StatusOK, echo.Map{
		"users":      users,
		"pagination": page.Meta(total, "totalUsers"),
	})
}

func (h *AdminHandler) Reviewers(c echo.Context) error {
	reviewers, err := h.users.Reviewers(c.Request().Context())
	if err != nil {
		return httperr.Internal("FETCH_REVIEWERS_ERROR", "Failed to fetch reviewers", err)
	}
	return c.JSON(http.StatusOK, echo.Map{"reviewers": reviewers})
}

func (h *AdminHandler) CreateUser(c echo.Context) error {
	var req models.UserRequest
	if err := httperr.Bind(c, &req); err != nil {
		return err
	}
	if req.Password == "" {
		return httperr.BadRequest("PASSWORD_REQUIRED", "Password is required")
	}
	hash, err := bcrypt.GenerateFromPassword([]byte(req.Password), h.cost)
	if err != nil {
		return httperr.Internal("CREATE_USER_ERROR", "Failed to create user", err)
	}
	ctx := c.Request().Context()

	user := &models.User{
		Name:        strings.TrimSpace(req.Name),
		Email:       req.Email,
		Password:    string(hash),
		Institution: strings.TrimSpace(req.Institution),
		Role:        req.Role,
	}
	if err := h.users.Create(ctx, user); err != nil {
		if errors.Is(err, repositories.ErrDuplicate) {
			return httperr.Conflict("USER_EXISTS", "An account with this email already exists")
		}
		return httperr.Internal("CREATE_USER_ERROR", "Failed to create user", err)
	}
	h.invalidate(ctx)
	return c.JSON(http.StatusCreated, echo.Map{
		"message": "User created successfully",
		"user":    user,
	})
}

func (h *AdminHandler) UpdateUser(c echo.Context) error {
	id, err := pathID(c, "id", "USER_NOT_FOUND", "User not found")
	if err != nil {
		return err
	}
	var req models.UserRequest
	if err := httperr.Bind(c, &req); err != nil {
		return err
	}
	ctx := c.Request().Context()

	user, err := h.users.GetByID(ctx, id)
	if err != nil {
		return lookupErr(err, "USER_NOT_FOUND", "User not found", "UPDATE_USER_ERROR", "Failed to update user")
	}
	user.Name = strings.TrimSpace(req.Name)
	user.Email = req.Email
	user.Institution = strings.TrimSpace(req.Institution)
	user.Role = req.Role
	if req.Password != "" {
		hash, err := bcrypt.GenerateFromPassword([]byte(req.Password), h.cost)
		if err != nil {
			return httperr.Internal("UPDATE_USER_ERROR", "Failed to update user", err)
		}
		user.Password = string(hash)
	}
	if err := h.users.Update(ctx, user); err != nil {
		if errors.Is(err, repositories.ErrDuplicate) {
			return httperr.Conflict("USER_EXISTS", "An account with this email already exists")
		}
		return httperr.Internal("UPDATE_USER_ERROR", "Failed to update user", err)
	}
	h.invalidate(ctx)
	return c.JSON(http.StatusOK, echo.Map{
		"message": "User updated successfully",
		"user":    user,
	})
}

func (h *AdminHandler) DeleteUser(c echo.Context) error {
	id, err := pathID(c, "id", "USER_NOT_FOUND", "User not found")
	if err != nil {
		return err
	}
	uid, err := callerID(c)
	if err != nil {
		return err
	}
	if id == uid {
		return httperr.BadRequest("CANNOT_DELETE_SELF", "You cannot delete your own account")
	}
	ctx := c.Request().Context()

	if err := h.users.Delete(ctx, id); err != nil {
		if errors.Is(err, repositories.ErrUserHasPapers) {
			return httperr.Conflict("USER_HAS_PAPERS", "Cannot delete a user who has submitted papers")
		}
		return lookupErr(err, "USER_NOT_FOUND", "User not found", "DELETE_USER_ERROR", "Failed to delete user")
	}
	h.invalidate(ctx)
	h.log.Info("user deleted", "user_id", id)
	return c.JSON(http.StatusOK, echo.Map{"message": "User deleted successfully"})
}
