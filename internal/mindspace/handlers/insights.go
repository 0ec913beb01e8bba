package handlers

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"time"

	"github.com/anonto42/webapps/backend/internal/middleware"
	"github.com/anonto42/webapps/backend/internal/mindspace/models"
	"github.com/anonto42/webapps/backend/internal/mindspace/repositories"
	"github.com/anonto42/webapps/backend/internal/mindspace/services"
	"github.com/anonto42/webapps/backend/pkg/ai"
	"github.com/anonto42/webapps/backend/pkg/httperr"
	"github.com/anonto42/webapps/backend/pkg/logger"
	"github.com/anonto42/webapps/backend/pkg/paging"
	"github.com/labstack/echo/v4"
)

// Assistant is the subset of the Ollama client used by mindspace handlers.
type Assistant interface {
	CheckHealth(ctx context.Context) ai.Health
	AnalyzeSentiment(ctx context.Context, text string) ai.Sentiment
	BatchAnalyzeSentiment(ctx context.Context, entries []ai.EntryText) []ai.EntryAnalysis
	GenerateWellnessTips(ctx context.Context, moodData interface{}, preferences interface{}) ai.WellnessTips
	GenerateJournalPrompts(ctx context.Context, category, mood string) ai.PromptSet
}

// InsightHandler handles insight and AI analysis requests
type InsightHandler struct {
	insights repositories.InsightRepository
	journals repositories.JournalRepository
	users    repositories.UserRepository
	ai       Assistant
	log      *logger.Logger
	now      func() time.Time
}

// NewInsightHandler creates a new InsightHandler
func NewInsightHandler(insights repositories.InsightRepository, journals repositories.JournalRepository, users repositories.UserRepository, assistant Assistant, log *logger.Logger) *InsightHandler {
	return &InsightHandler{insights: insights, journals: journals, users: users, ai: assistant, log: log, now: time.Now}
}

// RegisterInsightRoutes registers insight routes on an authenticated group
func (h *InsightHandler) RegisterInsightRoutes(g *echo.Group) {
	g.GET("/insights", h.ListInsights)
	g.GET("/insights/dashboard", h.Dashboard)
	g.POST("/insights/generate", h.Generate)
	g.PUT("/insights/:id/read", h.MarkRead)
	g.POST("/insights/:id/favorite", h.ToggleFavorite)
	g.GET("/insights/wellness-tips", h.WellnessTips)
	g.POST("/insights/analyze-entry", h.AnalyzeEntry)
	g.GET("/insights/ai-health", h.AIHealth)
}

func periodLabel(days int) string {
	return fmt.Sprintf("%d days", days)
}

func insightNotFound(err error, code, message string) error {
	if errors.Is(err, repositories.ErrNotFound) {
		return httperr.NotFound("INSIGHT_NOT_FOUND", "Insight not found")
	}
	return httperr.Internal(code, message, err)
}

func (h *InsightHandler) ListInsights(c echo.Context) error {
	uid, err := callerID(c)
	if err != nil {
		return err
	}
	page := paging.FromQuery(c, 10, 100)

	filter := models.InsightFilter{
		UserID: uid,
		Type:   c.QueryParam("type"),
		Skip:   page.Skip(),
		Limit:  page.Limit,
	}
	if raw := c.QueryParam("isRead"); raw != "" {
		read := raw == "true"
		filter.IsRead = &read
	}

	insights, total, err := h.insights.ListInsights(c.Request().Context(), filter)
	if err != nil {
		return httperr.Internal("FETCH_INSIGHTS_ERROR", "Failed to fetch insights", err)
	}
	return c.JSON(http.StatusOK, echo.Map{
		"insights":   insights,
		"pagination": page.Meta(total, "totalInsights"),
	})
}

// Dashboard combines the mood average with recent and unread insights for the
// last ?period days.
func (h *InsightHandler) Dashboard(c echo.Context) error {
	uid, err := callerID(c)
	if err != nil {
		return err
	}
	ctx := c.Request().Context()
	days := services.DaysBack(c.QueryParam("period"), 30)
	now := h.now()
	since := now.AddDate(0, 0, -days)

	moodStats, err := h.journals.MoodStats(ctx, uid.Hex(), since, now)
	if err != nil {
		return httperr.Internal("FETCH_DASHBOARD_ERROR", "Failed to fetch insights dashboard", err)
	}
	recent, _, err := h.insights.ListInsights(ctx, models.InsightFilter{UserID: uid, Since: &since, Limit: 5})
	if err != nil {
		return httperr.Internal("FETCH_DASHBOARD_ERROR", "Failed to fetch insights dashboard", err)
	}
	unread, err := h.insights.CountUnread(ctx, uid)
	if err != nil {
		return httperr.Internal("FETCH_DASHBOARD_ERROR", "Failed to fetch insights dashboard", err)
	}
	urgent, err := h.insights.HighPriorityUnread(ctx, uid, 3)
	if err != nil {
		return httperr.Internal("FETCH_DASHBOARD_ERROR", "Failed to fetch insights dashboard", err)
	}

	avg, total := services.MoodAverage(moodStats)
	return c.JSON(http.StatusOK, echo.Map{
		"period": periodLabel(days),
		"moodTrend": echo.Map{
			"average":      avg,
			"stats":        moodStats,
			"totalEntries": total,
		},
		"recentInsights":       recent,
		"unreadCount":          unread,
		"highPriorityInsights": urgent,
		"summary": echo.Map{
			"moodStatus":        services.MoodStatus(avg),
			"insightsGenerated": len(recent),
			"hasHighPriority":   len(urgent) > 0,
		},
	})
}

// Generate builds and stores one insight of the requested type.
func (h *InsightHandler) Generate(c echo.Context) error {
	var req models.GenerateInsightRequest
	if err := c.Bind(&req); err != nil {
		return httperr.BadRequest("INVALID_PAYLOAD", "Invalid request payload")
	}
	if req.Type == "" {
		req.Type = models.InsightMoodTrend
	}
	if req.Period == "" {
		req.Period = "weekly"
	}
	uid, err := callerID(c)
	if err != nil {
		return err
	}
	ctx := c.Request().Context()
	now := h.now()

	var insight *models.Insight
	switch req.Type {
	case models.InsightMoodTrend:
		start := services.WindowStart(req.Period, now)
		stats, err := h.journals.MoodStats(ctx, uid.Hex(), start, now)
		if err != nil {
			return httperr.Internal("GENERATE_INSIGHT_ERROR", "Failed to generate insight", err)
		}
		insight = services.MoodTrendInsight(uid, req.Period, start, now, stats)
	case models.InsightWritingPattern:
		entries, err := h.journals.RecentJournals(ctx, uid.Hex(), now.AddDate(0, 0, -30), 0)
		if err != nil {
			return httperr.Internal("GENERATE_INSIGHT_ERROR", "Failed to generate insight", err)
		}
		insight = services.WritingPatternInsight(uid, entries, now)
	case "ai-sentiment":
		start := services.WindowStart(req.Period, now)
		entries, err := h.journals.RecentJournals(ctx, uid.Hex(), start, services.MaxSentimentSample)
		if err != nil {
			return httperr.Internal("GENERATE_INSIGHT_ERROR", "Failed to generate insight", err)
		}
		texts := make([]ai.EntryText, 0, len(entries))
		for _, e := range entries {
			texts = append(texts, ai.EntryText{ID: e.ID.Hex(), Content: e.Content})
		}
		var analyses []ai.EntryAnalysis
		if len(texts) > 0 {
			analyses = h.ai.BatchAnalyzeSentiment(ctx, texts)
		}
		insight = services.SentimentInsight(uid, req.Period, start, now, analyses)
	default:
		return httperr.BadRequest("INVALID_INSIGHT_TYPE", "Invalid insight type")
	}

	if insight == nil {
		return httperr.NotFound("NO_DATA_AVAILABLE", "No data available to generate insights")
	}
	if err := h.insights.CreateInsight(ctx, insight); err != nil {
		return httperr.Internal("GENERATE_INSIGHT_ERROR", "Failed to generate insight", err)
	}
	return c.JSON(http.StatusCreated, echo.Map{
		"message": "Insight generated successfully",
		"insight": insight,
	})
}

func (h *InsightHandler) MarkRead(c echo.Context) error {
	insight, err := h.insights.MarkRead(c.Request().Context(), middleware.UserID(c), c.Param("id"))
	if err != nil {
		return insightNotFound(err, "UPDATE_INSIGHT_ERROR", "Failed to update insight")
	}
	return c.JSON(http.StatusOK, echo.Map{"message": "Insight marked as read", "insight": insight})
}

func (h *InsightHandler) ToggleFavorite(c echo.Context) error {
	ctx := c.Request().Context()
	userID := middleware.UserID(c)

	insight, err := h.insights.GetInsight(ctx, userID, c.Param("id"))
	if err != nil {
		return insightNotFound(err, "FAVORITE_ERROR", "Failed to update favorite status")
	}
	favorite := !insight.IsFavorite
	if err := h.insights.SetFavorite(ctx, userID, c.Param("id"), favorite); err != nil {
		return insightNotFound(err, "FAVORITE_ERROR", "Failed to update favorite status")
	}

	msg := "Insight removed from favorites"
	if favorite {
		msg = "Insight added to favorites"
	}
	return c.JSON(http.StatusOK, echo.Map{"message": msg, "isFavorite": favorite})
}

// WellnessTips asks the model for tips based on the last ?period days (default 7).
func (h *InsightHandler) WellnessTips(c echo.Context) error {
	ctx := c.Request().Context()
	userID := middleware.UserID(c)
	days := services.DaysBack(c.QueryParam("period"), 7)
	now := h.now()

	moodStats, err := h.journals.MoodStats(ctx, userID, now.AddDate(0, 0, -days), now)
	if err != nil {
		return httperr.Internal("WELLNESS_TIPS_ERROR", "Failed to generate wellness tips", err)
	}
	user, err := h.users.GetUserByID(ctx, userID)
	if err != nil {
		return httperr.Internal("WELLNESS_TIPS_ERROR", "Failed to generate wellness tips", err)
	}

	tips := h.ai.GenerateWellnessTips(ctx, moodStats, user.Preferences)
	return c.JSON(http.StatusOK, echo.Map{
		"tips": tips,
		"basedOn": echo.Map{
			"period":   periodLabel(days),
			"moodData": moodStats,
		},
		"generatedAt": now,
	})
}

// AnalyzeEntry runs sentiment analysis on one entry and stores the result on it.
func (h *InsightHandler) AnalyzeEntry(c echo.Context) error {
	var req models.AnalyzeEntryRequest
	if err := c.Bind(&req); err != nil {
		return httperr.BadRequest("INVALID_PAYLOAD", "Invalid request payload")
	}
	if req.EntryID == "" {
		return httperr.BadRequest("ENTRY_ID_REQUIRED", "Entry ID is required")
	}
	ctx := c.Request().Context()

	entry, err := h.journals.GetJournal(ctx, middleware.UserID(c), req.EntryID)
	if err != nil {
		return entryNotFound(err, "ANALYZE_ENTRY_ERROR", "Failed to analyze entry")
	}

	analysis := h.ai.AnalyzeSentiment(ctx, entry.Content)
	analysis.AnalyzedAt = h.now()
	if err := h.journals.SetAnalysis(ctx, entry.ID, &analysis); err != nil {
		return httperr.Internal("ANALYZE_ENTRY_ERROR", "Failed to analyze entry", err)
	}

	return c.JSON(http.StatusOK, echo.Map{
		"message":  "Entry analyzed successfully",
		"analysis": analysis,
		"entry": echo.Map{
			"id":        entry.ID,
			"content":   entry.Content,
			"mood":      entry.Mood,
			"createdAt": entry.CreatedAt,
		},
	})
}

func (h *InsightHandler) AIHealth(c echo.Context) error {
	return c.JSON(http.StatusOK, echo.Map{
		"aiService": h.ai.CheckHealth(c.Request().Context()),
		"timestamp": h.now(),
	})
}
