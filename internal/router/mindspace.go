package router

import (
	"context"
	"fmt"

	"github.com/anonto42/webapps/backend/internal/middleware"
	"github.com/anonto42/webapps/backend/internal/mindspace/handlers"
	"github.com/anonto42/webapps/backend/internal/mindspace/models"
	"github.com/anonto42/webapps/backend/internal/mindspace/repositories"
	"github.com/labstack/echo/v4"
)

// SetupMindspace wires the journaling app onto e.
func SetupMindspace(ctx context.Context, e *echo.Echo, d Deps) error {
	users := repositories.NewMongoUserRepository(d.Mongo)
	journals := repositories.NewMongoJournalRepository(d.Mongo)
	prompts := repositories.NewMongoPromptRepository(d.Mongo)
	insights := repositories.NewMongoInsightRepository(d.Mongo)
	community := repositories.NewMongoCommunityRepository(d.Mongo)
	admin := repositories.NewMongoAdminRepository(d.Mongo)

	if err := users.EnsureIndexes(ctx); err != nil {
		return fmt.Errorf("user indexes: %w", err)
	}
	if err := journals.EnsureIndexes(ctx); err != nil {
		return fmt.Errorf("journal indexes: %w", err)
	}

	authHandler := handlers.NewAuthHandler(users, d.Tokens, d.Mailer, d.Log, d.Config.FrontendURL)
	auth := middleware.JWTAuth(d.Tokens, authHandler.CheckAccount)
	optionalAuth := middleware.OptionalJWTAuth(d.Tokens, authHandler.CheckAccount)
	if d.Firebase == nil {
		d.Log.Warn("Firebase not configured, Google sign-in disabled")
	}

	api := e.Group("/api")
	authHandler.RegisterAuthRoutes(api.Group("/auth", authLimiter(d)), auth, middleware.FirebaseAuth(d.Firebase))

	private := api.Group("", auth)
	handlers.NewJournalHandler(journals, prompts, users, d.Log).RegisterJournalRoutes(private)
	handlers.NewInsightHandler(insights, journals, users, d.Assistant, d.Log).RegisterInsightRoutes(private)

	handlers.NewResourceHandler(prompts, users, d.Assistant).RegisterResourceRoutes(api.Group("/resources"), auth)
	handlers.NewCommunityHandler(community, journals, prompts, users, d.Cache, d.Log).
		RegisterCommunityRoutes(api.Group("/community"), auth, optionalAuth)

	handlers.NewAdminHandler(admin, community, users, prompts, d.Assistant, d.Cache, d.Log).
		RegisterAdminRoutes(api.Group("/admin", auth, middleware.RequireRole(models.RoleAdmin)))

	d.Log.Info("mindspace routes configured")
	return nil
}
