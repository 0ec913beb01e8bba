package handlers

import (
	"errors"
	"math"
	"net/http"
	"strings"
	"time"

	"github.com/anonto42/webapps/backend/internal/middleware"
	"github.com/anonto42/webapps/backend/internal/mindspace/models"
	"github.com/anonto42/webapps/backend/internal/mindspace/repositories"
	"github.com/anonto42/webapps/backend/internal/mindspace/services"
	"github.com/anonto42/webapps/backend/pkg/httperr"
	"github.com/anonto42/webapps/backend/pkg/logger"
	"github.com/anonto42/webapps/backend/pkg/paging"
	"github.com/labstack/echo/v4"
	"go.mongodb.org/mongo-driver/bson/primitive"
)

const defaultMoodIntensity = 5

// JournalHandler handles journal entry requests
type JournalHandler struct {
	journals repositories.JournalRepository
	prompts  repositories.PromptRepository
	users    repositories.UserRepository
	log      *logger.Logger
	now      func() time.Time
}

// NewJournalHandler creates a new JournalHandler
func NewJournalHandler(journals repositories.JournalRepository, prompts repositories.PromptRepository, users repositories.UserRepository, log *logger.Logger) *JournalHandler {
	return &JournalHandler{journals: journals, prompts: prompts, users: users, log: log, now: time.Now}
}

// RegisterJournalRoutes registers journal routes on an authenticated group
func (h *JournalHandler) RegisterJournalRoutes(g *echo.Group) {
	g.GET("/journals", h.ListJournals)
	g.GET("/journals/stats/overview", h.StatsOverview)
	g.GET("/journals/search", h.SearchJournals)
	g.GET("/journals/:id", h.GetJournal)
	g.POST("/journals", h.CreateJournal)
	g.PUT("/journals/:id", h.UpdateJournal)
	g.DELETE("/journals/:id", h.DeleteJournal)
	g.POST("/journals/:id/favorite", h.ToggleFavorite)
}

func callerID(c echo.Context) (primitive.ObjectID, error) {
	id, err := primitive.ObjectIDFromHex(middleware.UserID(c))
	if err != nil {
		return primitive.NilObjectID, httperr.Unauthorized("INVALID_TOKEN", "Invalid token")
	}
	return id, nil
}

func entryNotFound(err error, code, message string) error {
	if errors.Is(err, repositories.ErrNotFound) {
		return httperr.NotFound("ENTRY_NOT_FOUND", "Journal entry not found")
	}
	return httperr.Internal(code, message, err)
}

// views attaches mood emoji and prompt summaries to entries.
func (h *JournalHandler) views(c echo.Context, journals []models.Journal) []models.JournalView {
	var ids []primitive.ObjectID
	for _, j := range journals {
		if j.Prompt != nil {
			ids = append(ids, *j.Prompt)
		}
	}
	summaries, err := h.prompts.Summaries(c.Request().Context(), ids)
	if err != nil {
		h.log.Warn("failed to load prompt summaries", "error", err)
	}

	out := make([]models.JournalView, 0, len(journals))
	for _, j := range journals {
		v := models.JournalView{Journal: j, MoodEmoji: j.MoodEmoji()}
		if j.Prompt != nil {
			if s, ok := summaries[*j.Prompt]; ok {
				v.PromptSummary = &s
			}
		}
		out = append(out, v)
	}
	return out
}

func parseDate(raw string) *time.Time {
	if raw == "" {
		return nil
	}
	for _, layout := range []string{time.RFC3339, "2006-01-02"} {
		if t, err := time.Parse(layout, raw); err == nil {
			return &t
		}
	}
	return nil
}

func (h *JournalHandler) ListJournals(c echo.Context) error {
	uid, err := callerID(c)
	if err != nil {
		return err
	}
	page := paging.FromQuery(c, 10, 100)

	filter := models.JournalFilter{
		UserID:    uid,
		Mood:      c.QueryParam("mood"),
		StartDate: parseDate(c.QueryParam("startDate")),
		EndDate:   parseDate(c.QueryParam("endDate")),
		SortBy:    c.QueryParam("sortBy"),
		SortDesc:  c.QueryParam("sortOrder") != "asc",
		Skip:      page.Skip(),
		Limit:     page.Limit,
	}
	if tags := c.QueryParam("tags"); tags != "" {
		for _, t := range strings.Split(tags, ",") {
			if t = strings.TrimSpace(t); t != "" {
				filter.Tags = append(filter.Tags, t)
			}
		}
	}

	entries, total, err := h.journals.ListJournals(c.Request().Context(), filter)
	if err != nil {
		return httperr.Internal("FETCH_JOURNALS_ERROR", "Failed to fetch journal entries", err)
	}
	return c.JSON(http.StatusOK, echo.Map{
		"entries":    h.views(c, entries),
		"pagination": page.Meta(total, "totalEntries"),
	})
}

func (h *JournalHandler) GetJournal(c echo.Context) error {
	entry, err := h.journals.GetJournal(c.Request().Context(), middleware.UserID(c), c.Param("id"))
	if err != nil {
		return entryNotFound(err, "FETCH_ENTRY_ERROR", "Failed to fetch journal entry")
	}
	return c.JSON(http.StatusOK, echo.Map{"entry": h.views(c, []models.Journal{*entry})[0]})
}

func applyJournalRequest(j *models.Journal, req *models.JournalRequest) {
	j.Title = req.Title
	j.Content = req.Content
	j.Mood = req.Mood
	j.MoodIntensity = req.MoodIntensity
	if j.MoodIntensity == 0 {
		j.MoodIntensity = defaultMoodIntensity
	}
	j.Tags = req.Tags
	if j.Tags == nil {
		j.Tags = []string{}
	}
	if req.IsPrivate != nil {
		j.IsPrivate = *req.IsPrivate
	}
	j.Prompt = nil
	if req.PromptID != "" {
		if id, err := primitive.ObjectIDFromHex(req.PromptID); err == nil {
			j.Prompt = &id
		}
	}
}

// CreateJournal stores an entry, advances the writer's streak and counts a use
// of the chosen prompt.
func (h *JournalHandler) CreateJournal(c echo.Context) error {
	var req models.JournalRequest
	if err := httperr.Bind(c, &req); err != nil {
		return err
	}
	uid, err := callerID(c)
	if err != nil {
		return err
	}
	ctx := c.Request().Context()

	entry := &models.Journal{User: uid, IsPrivate: true}
	applyJournalRequest(entry, &req)
	if err := h.journals.CreateJournal(ctx, entry); err != nil {
		return httperr.Internal("CREATE_ENTRY_ERROR", "Failed to create journal entry", err)
	}

	user, err := h.users.GetUserByID(ctx, uid.Hex())
	if err != nil {
		h.log.Error("streak update skipped", "user_id", uid.Hex(), "error", err)
	} else if err := h.users.UpdateStreak(ctx, uid, services.UpdateStreak(user.Streak, h.now())); err != nil {
		h.log.Error("streak update failed", "user_id", uid.Hex(), "error", err)
	}

	if entry.Prompt != nil {
		if err := h.prompts.IncrementUsage(ctx, *entry.Prompt); err != nil {
			h.log.Warn("prompt usage not counted", "prompt_id", entry.Prompt.Hex(), "error", err)
		}
	}

	return c.JSON(http.StatusCreated, echo.Map{
		"message": "Journal entry created successfully",
		"entry":   h.views(c, []models.Journal{*entry})[0],
	})
}

func (h *JournalHandler) UpdateJournal(c echo.Context) error {
	var req models.JournalRequest
	if err := httperr.Bind(c, &req); err != nil {
		return err
	}
	ctx := c.Request().Context()

	entry, err := h.journals.GetJournal(ctx, middleware.UserID(c), c.Param("id"))
	if err != nil {
		return entryNotFound(err, "UPDATE_ENTRY_ERROR", "Failed to update journal entry")
	}
	applyJournalRequest(entry, &req)
	if err := h.journals.UpdateJournal(ctx, entry); err != nil {
		return entryNotFound(err, "UPDATE_ENTRY_ERROR", "Failed to update journal entry")
	}
	return c.JSON(http.StatusOK, echo.Map{
		"message": "Journal entry updated successfully",
		"entry":   h.views(c, []models.Journal{*entry})[0],
	})
}

func (h *JournalHandler) DeleteJournal(c echo.Context) error {
	if err := h.journals.DeleteJournal(c.Request().Context(), middleware.UserID(c), c.Param("id")); err != nil {
		return entryNotFound(err, "DELETE_ENTRY_ERROR", "Failed to delete journal entry")
	}
	return c.JSON(http.StatusOK, echo.Map{"message": "Journal entry deleted successfully"})
}

func (h *JournalHandler) ToggleFavorite(c echo.Context) error {
	ctx := c.Request().Context()
	userID := middleware.UserID(c)

	entry, err := h.journals.GetJournal(ctx, userID, c.Param("id"))
	if err != nil {
		return entryNotFound(err, "FAVORITE_ERROR", "Failed to update favorite status")
	}
	favorite := !entry.IsFavorite
	if err := h.journals.SetFavorite(ctx, userID, c.Param("id"), favorite); err != nil {
		return entryNotFound(err, "FAVORITE_ERROR", "Failed to update favorite status")
	}

	msg := "Entry removed from favorites"
	if favorite {
		msg = "Entry added to favorites"
	}
	return c.JSON(http.StatusOK, echo.Map{"message": msg, "isFavorite": favorite})
}

const writingStreakDays = 7

// StatsOverview summarizes the caller's last ?period days (default 30).
func (h *JournalHandler) StatsOverview(c echo.Context) error {
	userID := middleware.UserID(c)
	ctx := c.Request().Context()
	days := services.DaysBack(c.QueryParam("period"), 30)
	now := h.now()
	since := now.AddDate(0, 0, -days)

	moodStats, err := h.journals.MoodStats(ctx, userID, since, now)
	if err != nil {
		return httperr.Internal("FETCH_STATS_ERROR", "Failed to fetch journal statistics", err)
	}
	total, err := h.journals.CountJournals(ctx, userID, since, false)
	if err != nil {
		return httperr.Internal("FETCH_STATS_ERROR", "Failed to fetch journal statistics", err)
	}
	favorites, err := h.journals.CountJournals(ctx, userID, since, true)
	if err != nil {
		return httperr.Internal("FETCH_STATS_ERROR", "Failed to fetch journal statistics", err)
	}
	streaks, err := h.journals.WritingDays(ctx, userID, writingStreakDays)
	if err != nil {
		return httperr.Internal("FETCH_STATS_ERROR", "Failed to fetch journal statistics", err)
	}
	avgWords, err := h.journals.AverageWordCount(ctx, userID, since)
	if err != nil {
		return httperr.Internal("FETCH_STATS_ERROR", "Failed to fetch journal statistics", err)
	}

	return c.JSON(http.StatusOK, models.JournalOverview{
		Period:           periodLabel(days),
		TotalEntries:     total,
		FavoriteCount:    favorites,
		MoodStats:        moodStats,
		WritingStreaks:   streaks,
		AverageWordCount: math.Round(avgWords),
	})
}

func (h *JournalHandler) SearchJournals(c echo.Context) error {
	q := strings.TrimSpace(c.QueryParam("q"))
	if len([]rune(q)) < 2 {
		return httperr.BadRequest("INVALID_SEARCH_QUERY", "Search query must be at least 2 characters long")
	}
	page := paging.FromQuery(c, 10, 100)

	entries, total, err := h.journals.SearchJournals(c.Request().Context(), middleware.UserID(c), q, page.Skip(), page.Limit)
	if err != nil {
		return httperr.Internal("SEARCH_ERROR", "Failed to search journal entries", err)
	}
	return c.JSON(http.StatusOK, echo.Map{
		"entries":    h.views(c, entries),
		"query":      q,
		"pagination": page.Meta(total, "totalEntries"),
	})
}
