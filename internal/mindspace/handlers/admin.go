package handlers

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"net/http"
	"time"

	"github.com/anonto42/webapps/backend/internal/middleware"
	"github.com/anonto42/webapps/backend/internal/mindspace/models"
	"github.com/anonto42/webapps/backend/internal/mindspace/repositories"
	"github.com/anonto42/webapps/backend/internal/mindspace/services"
	"github.com/anonto42/webapps/backend/pkg/cache"
	"github.com/anonto42/webapps/backend/pkg/httperr"
	"github.com/anonto42/webapps/backend/pkg/logger"
	"github.com/anonto42/webapps/backend/pkg/paging"
	"github.com/labstack/echo/v4"
	"golang.org/x/sync/errgroup"
)

const adminDashboardTTL = 2 * time.Minute

// AdminHandler serves the admin console: dashboards, moderation and exports
type AdminHandler struct {
	admin     repositories.AdminRepository
	community repositories.CommunityRepository
	users     repositories.UserRepository
	prompts   repositories.PromptRepository
	ai        Assistant
	cache     *cache.Cache
	log       *logger.Logger
	now       func() time.Time
}

// NewAdminHandler creates a new AdminHandler. cache may be nil.
func NewAdminHandler(admin repositories.AdminRepository, community repositories.CommunityRepository, users repositories.UserRepository, prompts repositories.PromptRepository, assistant Assistant, c *cache.Cache, log *logger.Logger) *AdminHandler {
	return &AdminHandler{
		admin:     admin,
		community: community,
		users:     users,
		prompts:   prompts,
		ai:        assistant,
		cache:     c,
		log:       log,
		now:       time.Now,
	}
}

// RegisterAdminRoutes registers /admin routes on a group that already
// requires an admin caller.
func (h *AdminHandler) RegisterAdminRoutes(g *echo.Group) {
	g.GET("/dashboard", h.Dashboard)
	g.GET("/users", h.ListUsers)
	g.PUT("/users/:id/status", h.UpdateUserStatus)
	g.GET("/content", h.ListContent)
	g.DELETE("/content/:type/:id", h.DeleteContent)
	g.GET("/analytics", h.Analytics)
	g.GET("/export", h.Export)
}

func periodParam(c echo.Context) string {
	if p := c.QueryParam("period"); p != "" {
		return p
	}
	return "monthly"
}

type dashboardOverview struct {
	TotalUsers        int64 `json:"totalUsers"`
	ActiveUsers       int64 `json:"activeUsers"`
	NewUsers          int64 `json:"newUsers"`
	TotalEntries      int64 `json:"totalEntries"`
	TotalPrompts      int64 `json:"totalPrompts"`
	AvgEntriesPerUser int64 `json:"avgEntriesPerUser"`
	UserRetentionRate int64 `json:"userRetentionRate"`
}

type dashboardAnalytics struct {
	MoodDistribution []models.MoodStat `json:"moodDistribution"`
	UserGrowth       []models.DayCount `json:"userGrowth"`
	EntryGrowth      []models.DayCount `json:"entryGrowth"`
	PopularPrompts   []models.Prompt   `json:"popularPrompts"`
}

type adminDashboard struct {
	Period       string             `json:"period"`
	Overview     dashboardOverview  `json:"overview"`
	Analytics    dashboardAnalytics `json:"analytics"`
	SystemHealth map[string]string  `json:"systemHealth"`
	GeneratedAt  time.Time          `json:"generatedAt"`
}

// Dashboard fans the independent counts and aggregations out concurrently.
func (h *AdminHandler) Dashboard(c echo.Context) error {
	period := periodParam(c)
	dash, err := cache.Remember(c.Request().Context(), h.cache, "admin:dashboard:"+period, adminDashboardTTL,
		func(ctx context.Context) (adminDashboard, error) {
			return h.loadDashboard(ctx, period)
		})
	if err != nil {
		return httperr.Internal("FETCH_DASHBOARD_ERROR", "Failed to fetch admin dashboard", err)
	}
	return c.JSON(http.StatusOK, dash)
}

func (h *AdminHandler) loadDashboard(ctx context.Context, period string) (adminDashboard, error) {
	now := h.now()
	since := services.WindowStart(period, now)
	dash := adminDashboard{Period: period, GeneratedAt: now}
	ov := &dash.Overview
	an := &dash.Analytics

	g, gctx := errgroup.WithContext(ctx)
	g.Go(func() (err error) {
		ov.TotalUsers, err = h.community.CountUsers(gctx, models.UserCountFilter{ActiveOnly: true})
		return err
	})
	g.Go(func() (err error) {
		ov.ActiveUsers, err = h.community.CountUsers(gctx, models.UserCountFilter{ActiveOnly: true, WroteSince: &since})
		return err
	})
	g.Go(func() (err error) {
		ov.NewUsers, err = h.community.CountUsers(gctx, models.UserCountFilter{CreatedSince: &since})
		return err
	})
	g.Go(func() (err error) {
		ov.TotalEntries, err = h.community.CountEntries(gctx, since, false)
		return err
	})
	g.Go(func() (err error) {
		ov.TotalPrompts, err = h.admin.CountPrompts(gctx, false)
		return err
	})
	g.Go(func() (err error) {
		an.MoodDistribution, err = h.community.MoodDistribution(gctx, since, 0)
		return err
	})
	g.Go(func() (err error) {
		an.UserGrowth, err = h.admin.DailyGrowth(gctx, "users", since)
		return err
	})
	g.Go(func() (err error) {
		an.EntryGrowth, err = h.admin.DailyGrowth(gctx, "journals", since)
		return err
	})
	g.Go(func() (err error) {
		an.PopularPrompts, err = h.prompts.PopularPrompts(gctx, 10)
		return err
	})
	if err := g.Wait(); err != nil {
		return adminDashboard{}, err
	}

	ov.AvgEntriesPerUser = services.RoundDiv(ov.TotalEntries, ov.ActiveUsers)
	ov.UserRetentionRate = services.Percent(ov.ActiveUsers, ov.TotalUsers)

	aiStatus := "unavailable"
	if h.ai != nil && h.ai.CheckHealth(ctx).IsRunning {
		aiStatus = "available"
	}
	dash.SystemHealth = map[string]string{"database": "connected", "aiService": aiStatus}
	return dash, nil
}

func (h *AdminHandler) ListUsers(c echo.Context) error {
	page := paging.FromQuery(c, 20, 100)
	filter := models.UserFilter{
		Search: c.QueryParam("search"),
		Role:   c.QueryParam("role"),
		Skip:   page.Skip(),
		Limit:  page.Limit,
	}
	status := c.QueryParam("isActive")
	if status == "" {
		status = c.QueryParam("status")
	}
	switch status {
	case "true", "active":
		active := true
		filter.IsActive = &active
	case "false", "inactive":
		active := false
		filter.IsActive = &active
	}

	users, total, err := h.users.ListUsers(c.Request().Context(), filter)
	if err != nil {
		return httperr.Internal("FETCH_USERS_ERROR", "Failed to fetch users", err)
	}
	return c.JSON(http.StatusOK, echo.Map{
		"users":      users,
		"pagination": page.Meta(total, "totalUsers"),
		"filters": echo.Map{
			"search":   filter.Search,
			"isActive": status,
			"role":     filter.Role,
		},
	})
}

func (h *AdminHandler) UpdateUserStatus(c echo.Context) error {
	var req models.UpdateUserStatusRequest
	if err := c.Bind(&req); err != nil || req.IsActive == nil {
		return httperr.BadRequest("INVALID_STATUS", "isActive must be a boolean value")
	}
	id := c.Param("id")
	if id == middleware.UserID(c) && !*req.IsActive {
		return httperr.BadRequest("CANNOT_DEACTIVATE_SELF", "You cannot deactivate your own account")
	}

	user, err := h.users.SetActive(c.Request().Context(), id, *req.IsActive)
	if err != nil {
		if errors.Is(err, repositories.ErrNotFound) {
			return httperr.NotFound("USER_NOT_FOUND", "User not found")
		}
		return httperr.Internal("UPDATE_USER_STATUS_ERROR", "Failed to update user status", err)
	}

	verb := "deactivated"
	if *req.IsActive {
		verb = "activated"
	}
	h.log.Info("user status changed", "user_id", id, "active", *req.IsActive, "by", middleware.UserID(c))
	return c.JSON(http.StatusOK, echo.Map{
		"message": fmt.Sprintf("User %s successfully", verb),
		"user":    user,
	})
}

// ListContent pages through journals or user-created prompts for moderation.
func (h *AdminHandler) ListContent(c echo.Context) error {
	page := paging.FromQuery(c, 20, 100)
	ctx := c.Request().Context()
	kind := c.QueryParam("type")
	status := c.QueryParam("status")

	var (
		content interface{}
		total   int64
		err     error
	)
	switch kind {
	case "journal", "journals":
		content, total, err = h.admin.ListJournals(ctx, models.ContentFilter{Status: status, Skip: page.Skip(), Limit: page.Limit})
	case "prompt", "prompts":
		content, total, err = h.prompts.ListUserPrompts(ctx, page.Skip(), page.Limit)
	default:
		return httperr.BadRequest("CONTENT_TYPE_REQUIRED", "Content type must be specified (journal or prompt)")
	}
	if err != nil {
		return httperr.Internal("FETCH_CONTENT_ERROR", "Failed to fetch content", err)
	}

	return c.JSON(http.StatusOK, echo.Map{
		"content":    content,
		"pagination": page.Meta(total, "totalContent"),
		"filters":    echo.Map{"type": kind, "status": status},
	})
}

func (h *AdminHandler) DeleteContent(c echo.Context) error {
	ctx := c.Request().Context()
	kind := c.Param("type")
	id := c.Param("id")

	var err error
	switch kind {
	case "journal":
		err = h.admin.DeleteJournal(ctx, id)
	case "prompt":
		err = h.prompts.DeletePrompt(ctx, id)
	default:
		return httperr.BadRequest("CONTENT_TYPE_REQUIRED", "Content type must be specified (journal or prompt)")
	}
	if err != nil {
		if errors.Is(err, repositories.ErrNotFound) {
			return httperr.NotFound("CONTENT_NOT_FOUND", "Content not found")
		}
		return httperr.Internal("DELETE_CONTENT_ERROR", "Failed to delete content", err)
	}

	h.log.Info("content removed", "type", kind, "id", id, "by", middleware.UserID(c))
	return c.JSON(http.StatusOK, echo.Map{
		"message": "Content deleted successfully",
		"deletedContent": echo.Map{
			"id":        id,
			"type":      kind,
			"deletedAt": h.now(),
		},
	})
}

type userEngagement struct {
	TotalUsers    int64             `json:"totalUsers"`
	ActiveUsers   int64             `json:"activeUsers"`
	NewUsers      int64             `json:"newUsers"`
	UserGrowth    []models.DayCount `json:"userGrowth"`
	RetentionRate int64             `json:"retentionRate"`
}

func (h *AdminHandler) userEngagement(ctx context.Context, since time.Time) (*userEngagement, error) {
	out := &userEngagement{}
	g, ctx := errgroup.WithContext(ctx)
	g.Go(func() (err error) {
		out.TotalUsers, err = h.community.CountUsers(ctx, models.UserCountFilter{ActiveOnly: true})
		return err
	})
	g.Go(func() (err error) {
		out.ActiveUsers, err = h.community.CountUsers(ctx, models.UserCountFilter{ActiveOnly: true, WroteSince: &since})
		return err
	})
	g.Go(func() (err error) {
		out.NewUsers, err = h.community.CountUsers(ctx, models.UserCountFilter{CreatedSince: &since})
		return err
	})
	g.Go(func() (err error) {
		out.UserGrowth, err = h.admin.DailyGrowth(ctx, "users", since)
		return err
	})
	if err := g.Wait(); err != nil {
		return nil, err
	}
	out.RetentionRate = services.Percent(out.ActiveUsers, out.TotalUsers)
	return out, nil
}

type contentAnalysis struct {
	TotalEntries      int64             `json:"totalEntries"`
	SharedEntries     int64             `json:"sharedEntries"`
	TotalPrompts      int64             `json:"totalPrompts"`
	UserPrompts       int64             `json:"userPrompts"`
	EntryGrowth       []models.DayCount `json:"entryGrowth"`
	PopularCategories []models.TagCount `json:"popularCategories"`
	SharingRate       int64             `json:"sharingRate"`
}

func (h *AdminHandler) contentAnalysis(ctx context.Context, since time.Time) (*contentAnalysis, error) {
	out := &contentAnalysis{}
	g, ctx := errgroup.WithContext(ctx)
	g.Go(func() (err error) {
		out.TotalEntries, err = h.community.CountEntries(ctx, since, false)
		return err
	})
	g.Go(func() (err error) {
		out.SharedEntries, err = h.community.CountEntries(ctx, since, true)
		return err
	})
	g.Go(func() (err error) {
		out.TotalPrompts, err = h.admin.CountPrompts(ctx, false)
		return err
	})
	g.Go(func() (err error) {
		out.UserPrompts, err = h.admin.CountPrompts(ctx, true)
		return err
	})
	g.Go(func() (err error) {
		out.EntryGrowth, err = h.admin.DailyGrowth(ctx, "journals", since)
		return err
	})
	g.Go(func() (err error) {
		out.PopularCategories, err = h.admin.PopularCategories(ctx, since, 10)
		return err
	})
	if err := g.Wait(); err != nil {
		return nil, err
	}
	out.SharingRate = services.Percent(out.SharedEntries, out.TotalEntries)
	return out, nil
}

type moodTrends struct {
	MoodDistribution []models.MoodStat      `json:"moodDistribution"`
	MoodIntensity    *models.IntensityRange `json:"moodIntensity"`
	MoodTrends       []models.DailyMood     `json:"moodTrends"`
}

func (h *AdminHandler) moodTrends(ctx context.Context, since time.Time) (*moodTrends, error) {
	out := &moodTrends{}
	g, ctx := errgroup.WithContext(ctx)
	g.Go(func() (err error) {
		out.MoodDistribution, err = h.community.MoodDistribution(ctx, since, 0)
		return err
	})
	g.Go(func() (err error) {
		out.MoodIntensity, err = h.admin.MoodIntensity(ctx, since)
		return err
	})
	g.Go(func() (err error) {
		out.MoodTrends, err = h.admin.DailyMoods(ctx, since)
		return err
	})
	if err := g.Wait(); err != nil {
		return nil, err
	}
	return out, nil
}

// Analytics returns one metric group, or all of them when ?type is empty.
func (h *AdminHandler) Analytics(c echo.Context) error {
	period := periodParam(c)
	metric := c.QueryParam("type")
	if metric == "" {
		metric = c.QueryParam("metric")
	}
	ctx := c.Request().Context()
	since := services.WindowStart(period, h.now())

	var (
		analytics interface{}
		err       error
	)
	switch metric {
	case "user-engagement":
		analytics, err = h.userEngagement(ctx, since)
	case "content-analysis":
		analytics, err = h.contentAnalysis(ctx, since)
	case "mood-trends":
		analytics, err = h.moodTrends(ctx, since)
	case "", "all":
		metric = "all"
		all := echo.Map{}
		if all["userEngagement"], err = h.userEngagement(ctx, since); err == nil {
			if all["contentAnalysis"], err = h.contentAnalysis(ctx, since); err == nil {
				all["moodTrends"], err = h.moodTrends(ctx, since)
			}
		}
		analytics = all
	default:
		return httperr.BadRequest("INVALID_METRIC", "Unknown analytics type")
	}
	if err != nil {
		return httperr.Internal("FETCH_ANALYTICS_ERROR", "Failed to fetch analytics", err)
	}

	return c.JSON(http.StatusOK, echo.Map{
		"period":      period,
		"metric":      metric,
		"analytics":   analytics,
		"generatedAt": h.now(),
	})
}

// Export streams users or journals created in the period as a JSON or CSV
// attachment.
func (h *AdminHandler) Export(c echo.Context) error {
	kind := c.QueryParam("type")
	format := c.QueryParam("format")
	if format == "" {
		format = "json"
	}
	if format != "json" && format != "csv" {
		return httperr.BadRequest("INVALID_FORMAT", "Export format must be json or csv")
	}
	period := periodParam(c)
	ctx := c.Request().Context()
	now := h.now()
	since := services.WindowStart(period, now)

	var (
		data interface{}
		csv  bytes.Buffer
		err  error
	)
	switch kind {
	case "users":
		var users []models.User
		if users, err = h.admin.ExportUsers(ctx, since); err == nil {
			data = users
			if format == "csv" {
				err = services.WriteUsersCSV(&csv, users)
			}
		}
	case "journals":
		var journals []models.Journal
		if journals, err = h.admin.ExportJournals(ctx, since); err == nil {
			data = journals
			if format == "csv" {
				err = services.WriteJournalsCSV(&csv, journals)
			}
		}
	default:
		return httperr.BadRequest("EXPORT_TYPE_REQUIRED", "Export type must be specified (users or journals)")
	}
	if err != nil {
		return httperr.Internal("EXPORT_ERROR", "Failed to export data", err)
	}

	filename := services.ExportFilename(kind, period, format, now)
	c.Response().Header().Set(echo.HeaderContentDisposition, fmt.Sprintf("attachment; filename=%q", filename))
	if format == "csv" {
		return c.Blob(http.StatusOK, "text/csv", csv.Bytes())
	}
	return c.JSON(http.StatusOK, echo.Map{
		"type":       kind,
		"period":     period,
		"exportedAt": now,
		"data":       data,
	})
}
