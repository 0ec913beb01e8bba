package handlers

import (
	"errors"
	"net/http"
	"strconv"
	"time"

	"github.com/anonto42/webapps/backend/internal/middleware"
	"github.com/anonto42/webapps/backend/internal/mindspace/models"
	"github.com/anonto42/webapps/backend/internal/mindspace/repositories"
	"github.com/anonto42/webapps/backend/pkg/httperr"
	"github.com/labstack/echo/v4"
	"go.mongodb.org/mongo-driver/bson/primitive"
)

// ResourceHandler serves prompts, wellness goals and the exercise catalogue
type ResourceHandler struct {
	prompts repositories.PromptRepository
	users   repositories.UserRepository
	ai      Assistant
	now     func() time.Time
}

// NewResourceHandler creates a new ResourceHandler
func NewResourceHandler(prompts repositories.PromptRepository, users repositories.UserRepository, assistant Assistant) *ResourceHandler {
	return &ResourceHandler{prompts: prompts, users: users, ai: assistant, now: time.Now}
}

// RegisterResourceRoutes registers /resources routes. Browsing is public,
// goals and generation need auth and creating prompts needs an admin.
func (h *ResourceHandler) RegisterResourceRoutes(g *echo.Group, auth echo.MiddlewareFunc) {
	g.GET("/prompts", h.ListPrompts)
	g.GET("/prompts/:id", h.GetPrompt)
	g.POST("/prompts", h.CreatePrompt, auth, middleware.RequireRole(models.RoleAdmin))
	g.POST("/generate-prompts", h.GeneratePrompts, auth)

	g.GET("/goals", h.ListGoals, auth)
	g.POST("/goals", h.CreateGoal, auth)
	g.PUT("/goals/:goalId", h.UpdateGoal, auth)
	g.DELETE("/goals/:goalId", h.DeleteGoal, auth)

	g.GET("/exercises", h.ListExercises)
	g.GET("/categories", h.ListCategories)
}

func (h *ResourceHandler) ListPrompts(c echo.Context) error {
	limit, err := strconv.ParseInt(c.QueryParam("limit"), 10, 64)
	if err != nil || limit < 1 || limit > 50 {
		limit = 10
	}
	filter := models.PromptFilter{
		Category:   c.QueryParam("category"),
		Difficulty: c.QueryParam("difficulty"),
		Limit:      limit,
	}
	random := c.QueryParam("random") == "true"
	popular := c.QueryParam("popular") == "true"
	ctx := c.Request().Context()

	var prompts []models.Prompt
	switch {
	case random:
		filter.Limit = 1
		prompts, err = h.prompts.RandomPrompts(ctx, filter)
	case popular:
		prompts, err = h.prompts.PopularPrompts(ctx, limit)
	default:
		prompts, err = h.prompts.ListPrompts(ctx, filter)
	}
	if err != nil {
		return httperr.Internal("FETCH_PROMPTS_ERROR", "Failed to fetch prompts", err)
	}

	return c.JSON(http.StatusOK, echo.Map{
		"prompts": prompts,
		"filters": echo.Map{
			"category":   filter.Category,
			"difficulty": filter.Difficulty,
			"limit":      limit,
			"random":     random,
			"popular":    popular,
		},
	})
}

func (h *ResourceHandler) GetPrompt(c echo.Context) error {
	prompt, err := h.prompts.GetPrompt(c.Request().Context(), c.Param("id"))
	if err != nil {
		if errors.Is(err, repositories.ErrNotFound) {
			return httperr.NotFound("PROMPT_NOT_FOUND", "Prompt not found")
		}
		return httperr.Internal("FETCH_PROMPT_ERROR", "Failed to fetch prompt", err)
	}
	return c.JSON(http.StatusOK, echo.Map{"prompt": prompt})
}

func (h *ResourceHandler) CreatePrompt(c echo.Context) error {
	var req models.PromptRequest
	if err := httperr.Bind(c, &req); err != nil {
		return err
	}
	uid, err := callerID(c)
	if err != nil {
		return err
	}

	prompt := &models.Prompt{
		Title:          req.Title,
		Content:        req.Content,
		Category:       req.Category,
		Difficulty:     req.Difficulty,
		EstimatedTime:  req.EstimatedTime,
		Tags:           req.Tags,
		TargetAudience: req.TargetAudience,
		IsActive:       true,
		CreatedBy:      &uid,
	}
	if err := h.prompts.CreatePrompt(c.Request().Context(), prompt); err != nil {
		return httperr.Internal("CREATE_PROMPT_ERROR", "Failed to create prompt", err)
	}
	return c.JSON(http.StatusCreated, echo.Map{"message": "Prompt created successfully", "prompt": prompt})
}

// GeneratePrompts asks the model for fresh prompts, trimmed to ?count.
func (h *ResourceHandler) GeneratePrompts(c echo.Context) error {
	var req models.GeneratePromptsRequest
	if err := httperr.Bind(c, &req); err != nil {
		return err
	}
	if req.Category == "" {
		req.Category = "general"
	}
	if req.Mood == "" {
		req.Mood = "neutral"
	}

	set := h.ai.GenerateJournalPrompts(c.Request().Context(), req.Category, req.Mood)
	if req.Count > 0 && len(set.Prompts) > req.Count {
		set.Prompts = set.Prompts[:req.Count]
	}
	return c.JSON(http.StatusOK, echo.Map{
		"message": "Prompts generated successfully",
		"prompts": set.Prompts,
		"metadata": echo.Map{
			"category":      req.Category,
			"difficulty":    set.Difficulty,
			"estimatedTime": set.EstimatedTime,
			"generatedAt":   h.now(),
		},
	})
}

func (h *ResourceHandler) caller(c echo.Context) (*models.User, error) {
	user, err := h.users.GetUserByID(c.Request().Context(), middleware.UserID(c))
	if err != nil {
		if errors.Is(err, repositories.ErrNotFound) {
			return nil, httperr.NotFound("USER_NOT_FOUND", "User not found")
		}
		return nil, httperr.Internal("FETCH_GOALS_ERROR", "Failed to fetch goals", err)
	}
	return user, nil
}

func (h *ResourceHandler) ListGoals(c echo.Context) error {
	user, err := h.caller(c)
	if err != nil {
		return err
	}
	goals := user.WellnessGoals
	if goals == nil {
		goals = []models.WellnessGoal{}
	}
	completed := 0
	for _, g := range goals {
		if g.IsCompleted {
			completed++
		}
	}
	return c.JSON(http.StatusOK, echo.Map{
		"goals":          goals,
		"totalGoals":     len(goals),
		"completedGoals": completed,
	})
}

func goalFromRequest(id primitive.ObjectID, createdAt time.Time, req *models.GoalRequest) models.WellnessGoal {
	return models.WellnessGoal{
		ID:           id,
		Title:        req.Title,
		Description:  req.Description,
		TargetValue:  req.TargetValue,
		CurrentValue: req.CurrentValue,
		Unit:         req.Unit,
		Deadline:     req.Deadline,
		IsCompleted:  req.IsCompleted,
		CreatedAt:    createdAt,
	}
}

func (h *ResourceHandler) CreateGoal(c echo.Context) error {
	var req models.GoalRequest
	if err := httperr.Bind(c, &req); err != nil {
		return err
	}
	uid, err := callerID(c)
	if err != nil {
		return err
	}

	goal := goalFromRequest(primitive.NewObjectID(), h.now(), &req)
	goal.IsCompleted = false
	goal.CurrentValue = 0
	if err := h.users.AddGoal(c.Request().Context(), uid, goal); err != nil {
		return httperr.Internal("CREATE_GOAL_ERROR", "Failed to create goal", err)
	}
	return c.JSON(http.StatusCreated, echo.Map{"message": "Goal created successfully", "goal": goal})
}

func (h *ResourceHandler) UpdateGoal(c echo.Context) error {
	var req models.GoalRequest
	if err := httperr.Bind(c, &req); err != nil {
		return err
	}
	user, err := h.caller(c)
	if err != nil {
		return err
	}

	var existing *models.WellnessGoal
	for i := range user.WellnessGoals {
		if user.WellnessGoals[i].ID.Hex() == c.Param("goalId") {
			existing = &user.WellnessGoals[i]
			break
		}
	}
	if existing == nil {
		return httperr.NotFound("GOAL_NOT_FOUND", "Goal not found")
	}

	goal := goalFromRequest(existing.ID, existing.CreatedAt, &req)
	if err := h.users.UpdateGoal(c.Request().Context(), user.ID, goal); err != nil {
		if errors.Is(err, repositories.ErrNotFound) {
			return httperr.NotFound("GOAL_NOT_FOUND", "Goal not found")
		}
		return httperr.Internal("UPDATE_GOAL_ERROR", "Failed to update goal", err)
	}
	return c.JSON(http.StatusOK, echo.Map{"message": "Goal updated successfully", "goal": goal})
}

func (h *ResourceHandler) DeleteGoal(c echo.Context) error {
	uid, err := callerID(c)
	if err != nil {
		return err
	}
	if err := h.users.DeleteGoal(c.Request().Context(), uid, c.Param("goalId")); err != nil {
		if errors.Is(err, repositories.ErrNotFound) {
			return httperr.NotFound("GOAL_NOT_FOUND", "Goal not found")
		}
		return httperr.Internal("DELETE_GOAL_ERROR", "Failed to delete goal", err)
	}
	return c.JSON(http.StatusOK, echo.Map{"message": "Goal deleted successfully"})
}

// ListExercises filters the static catalogue by ?category and a ?duration cap.
func (h *ResourceHandler) ListExercises(c echo.Context) error {
	category := c.QueryParam("category")
	maxDuration, _ := strconv.Atoi(c.QueryParam("duration"))

	exercises := []models.Exercise{}
	seen := map[string]bool{}
	categories := []string{}
	for _, e := range models.Exercises {
		if !seen[e.Category] {
			seen[e.Category] = true
			categories = append(categories, e.Category)
		}
		if category != "" && e.Category != category {
			continue
		}
		if maxDuration > 0 && e.Duration > maxDuration {
			continue
		}
		exercises = append(exercises, e)
	}
	return c.JSON(http.StatusOK, echo.Map{
		"exercises":      exercises,
		"totalExercises": len(exercises),
		"categories":     categories,
	})
}

func (h *ResourceHandler) ListCategories(c echo.Context) error {
	return c.JSON(http.StatusOK, echo.Map{"categories": models.ResourceCategories})
}
