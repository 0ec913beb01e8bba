package handlers

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"strconv"
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
	"go.mongodb.org/mongo-driver/bson/primitive"
	"golang.org/x/sync/errgroup"
)

const (
	leaderboardTTL    = 5 * time.Minute
	communityStatsTTL = 10 * time.Minute
	activeWindowDays  = 30
)

// CommunityHandler serves the anonymized community pages
type CommunityHandler struct {
	community repositories.CommunityRepository
	journals  repositories.JournalRepository
	prompts   repositories.PromptRepository
	users     repositories.UserRepository
	cache     *cache.Cache
	log       *logger.Logger
	now       func() time.Time
}

// NewCommunityHandler creates a new CommunityHandler. cache may be nil.
func NewCommunityHandler(community repositories.CommunityRepository, journals repositories.JournalRepository, prompts repositories.PromptRepository, users repositories.UserRepository, c *cache.Cache, log *logger.Logger) *CommunityHandler {
	return &CommunityHandler{
		community: community,
		journals:  journals,
		prompts:   prompts,
		users:     users,
		cache:     c,
		log:       log,
		now:       time.Now,
	}
}

// RegisterCommunityRoutes registers /community routes. The leaderboard takes
// optional auth so a signed-in caller also gets their own position.
func (h *CommunityHandler) RegisterCommunityRoutes(g *echo.Group, auth, optionalAuth echo.MiddlewareFunc) {
	g.GET("/leaderboard", h.Leaderboard, optionalAuth)
	g.GET("/shared-content", h.SharedContent)
	g.GET("/stats", h.Stats)
	g.GET("/trending", h.Trending)
	g.POST("/share-entry", h.ShareEntry, auth)
	g.POST("/unshare-entry", h.UnshareEntry, auth)
}

type leaderboardPage struct {
	Entries           []models.LeaderboardEntry `json:"entries"`
	TotalParticipants int64                     `json:"totalParticipants"`
}

func (h *CommunityHandler) Leaderboard(c echo.Context) error {
	period := c.QueryParam("period")
	if period == "" {
		period = "monthly"
	}
	limit, err := strconv.ParseInt(c.QueryParam("limit"), 10, 64)
	if err != nil || limit < 1 || limit > 100 {
		limit = 10
	}
	ctx := c.Request().Context()
	since := services.WindowStart(period, h.now())

	key := fmt.Sprintf("leaderboard:%s:%d", period, limit)
	board, err := cache.Remember(ctx, h.cache, key, leaderboardTTL, func(ctx context.Context) (leaderboardPage, error) {
		entries, err := h.community.Leaderboard(ctx, since, limit)
		if err != nil {
			return leaderboardPage{}, err
		}
		total, err := h.community.CountUsers(ctx, models.UserCountFilter{ActiveOnly: true, SharingOnly: true})
		if err != nil {
			return leaderboardPage{}, err
		}
		return leaderboardPage{Entries: entries, TotalParticipants: total}, nil
	})
	if err != nil {
		return httperr.Internal("LEADERBOARD_ERROR", "Failed to fetch leaderboard", err)
	}

	var position *models.UserPosition
	if uid := middleware.UserID(c); uid != "" {
		position, err = h.community.UserPosition(ctx, uid, since)
		if err != nil && !errors.Is(err, repositories.ErrNotFound) {
			h.log.Warn("leaderboard position lookup failed", "user_id", uid, "error", err)
		}
	}

	return c.JSON(http.StatusOK, echo.Map{
		"leaderboard":       board.Entries,
		"period":            period,
		"userPosition":      position,
		"totalParticipants": board.TotalParticipants,
	})
}

func (h *CommunityHandler) SharedContent(c echo.Context) error {
	page := paging.FromQuery(c, 20, 50)
	ctx := c.Request().Context()

	entries, total, err := h.community.SharedEntries(ctx, models.SharedFilter{
		Type:     c.QueryParam("type"),
		Category: c.QueryParam("category"),
		Skip:     page.Skip(),
		Limit:    page.Limit,
	})
	if err != nil {
		return httperr.Internal("SHARED_CONTENT_ERROR", "Failed to fetch shared content", err)
	}

	var ids []primitive.ObjectID
	for _, e := range entries {
		if e.Prompt != nil {
			ids = append(ids, *e.Prompt)
		}
	}
	summaries, err := h.prompts.Summaries(ctx, ids)
	if err != nil {
		h.log.Warn("failed to load prompt summaries", "error", err)
	}

	shared := make([]models.SharedEntry, 0, len(entries))
	for i := range entries {
		var prompt *models.PromptSummary
		if p := entries[i].Prompt; p != nil {
			if s, ok := summaries[*p]; ok {
				prompt = &s
			}
		}
		shared = append(shared, entries[i].Share(prompt))
	}

	return c.JSON(http.StatusOK, echo.Map{
		"content":    shared,
		"pagination": page.Meta(total, "totalItems"),
	})
}

func (h *CommunityHandler) Stats(c echo.Context) error {
	stats, err := cache.Remember(c.Request().Context(), h.cache, "community:stats", communityStatsTTL, h.loadStats)
	if err != nil {
		return httperr.Internal("COMMUNITY_STATS_ERROR", "Failed to fetch community statistics", err)
	}
	return c.JSON(http.StatusOK, stats)
}

func (h *CommunityHandler) loadStats(ctx context.Context) (models.CommunityStats, error) {
	var stats models.CommunityStats
	activeSince := h.now().AddDate(0, 0, -activeWindowDays)

	g, ctx := errgroup.WithContext(ctx)
	g.Go(func() (err error) {
		stats.TotalUsers, err = h.community.CountUsers(ctx, models.UserCountFilter{ActiveOnly: true})
		return err
	})
	g.Go(func() (err error) {
		stats.ActiveUsers, err = h.community.CountUsers(ctx, models.UserCountFilter{ActiveOnly: true, WroteSince: &activeSince})
		return err
	})
	g.Go(func() (err error) {
		stats.TotalEntries, err = h.community.CountEntries(ctx, time.Time{}, false)
		return err
	})
	g.Go(func() (err error) {
		stats.MoodDistribution, err = h.community.MoodDistribution(ctx, activeSince, 0)
		return err
	})
	g.Go(func() (err error) {
		stats.PopularTags, err = h.community.PopularTags(ctx, activeSince, 10)
		return err
	})
	if err := g.Wait(); err != nil {
		return models.CommunityStats{}, err
	}

	stats.AvgEntriesPerUser = services.RoundDiv(stats.TotalEntries, stats.TotalUsers)
	return stats, nil
}

func (h *CommunityHandler) setShared(c echo.Context, shared bool) error {
	var req models.AnalyzeEntryRequest
	if err := c.Bind(&req); err != nil {
		return httperr.BadRequest("INVALID_PAYLOAD", "Invalid request payload")
	}
	if req.EntryID == "" {
		return httperr.BadRequest("ENTRY_ID_REQUIRED", "Entry ID is required")
	}
	ctx := c.Request().Context()
	userID := middleware.UserID(c)

	if shared {
		user, err := h.users.GetUserByID(ctx, userID)
		if err != nil {
			if errors.Is(err, repositories.ErrNotFound) {
				return httperr.NotFound("USER_NOT_FOUND", "User not found")
			}
			return httperr.Internal("SHARE_ENTRY_ERROR", "Failed to share entry", err)
		}
		if !user.Preferences.Privacy.ShareAnonymously {
			return httperr.Forbidden("SHARING_NOT_ENABLED", "Anonymous sharing is not enabled in your privacy settings")
		}
	}

	entry, err := h.journals.SetPrivate(ctx, userID, req.EntryID, !shared)
	if err != nil {
		if shared {
			return entryNotFound(err, "SHARE_ENTRY_ERROR", "Failed to share entry")
		}
		return entryNotFound(err, "UNSHARE_ENTRY_ERROR", "Failed to unshare entry")
	}

	msg := "Entry is now private"
	if shared {
		msg = "Entry shared anonymously"
	}
	return c.JSON(http.StatusOK, echo.Map{
		"message": msg,
		"entry": echo.Map{
			"id":        entry.ID,
			"isPrivate": entry.IsPrivate,
		},
	})
}

func (h *CommunityHandler) ShareEntry(c echo.Context) error {
	return h.setShared(c, true)
}

func (h *CommunityHandler) UnshareEntry(c echo.Context) error {
	return h.setShared(c, false)
}

// Trending ranks moods, tags and prompts over the ?period window (default weekly).
func (h *CommunityHandler) Trending(c echo.Context) error {
	period := c.QueryParam("period")
	if period == "" {
		period = "weekly"
	}
	since := services.WindowStart(period, h.now())

	var (
		moods   []models.MoodStat
		tags    []models.TagCount
		prompts []models.TrendingPrompt
	)
	g, ctx := errgroup.WithContext(c.Request().Context())
	g.Go(func() (err error) {
		moods, err = h.community.MoodDistribution(ctx, since, 5)
		return err
	})
	g.Go(func() (err error) {
		tags, err = h.community.PopularTags(ctx, since, 10)
		return err
	})
	g.Go(func() (err error) {
		prompts, err = h.community.TrendingPrompts(ctx, since, 5)
		return err
	})
	if err := g.Wait(); err != nil {
		return httperr.Internal("TRENDING_ERROR", "Failed to fetch trending topics", err)
	}

	return c.JSON(http.StatusOK, echo.Map{
		"trendingMoods":   moods,
		"trendingTags":    tags,
		"trendingPrompts": prompts,
		"period":          period,
	})
}
