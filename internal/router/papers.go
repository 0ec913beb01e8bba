package router

import (
	"github.com/anonto42/webapps/backend/internal/middleware"
	"github.com/anonto42/webapps/backend/internal/papers/handlers"
	"github.com/anonto42/webapps/backend/internal/papers/models"
	"github.com/anonto42/webapps/backend/internal/papers/repositories"
	"github.com/labstack/echo/v4"
)

// SetupPapers migrates the SQL schema and wires the review portal onto e.
func SetupPapers(e *echo.Echo, d Deps) error {
	if err := repositories.Migrate(d.SQL); err != nil {
		return err
	}
	d.Log.Info("papers migrations completed")

	users := repositories.NewGormUserRepository(d.SQL)
	categories := repositories.NewGormCategoryRepository(d.SQL)
	papers := repositories.NewGormPaperRepository(d.SQL)

	authHandler := handlers.NewAuthHandler(users, d.Tokens, d.Log)
	auth := middleware.JWTAuth(d.Tokens, authHandler.CheckAccount)
	authorOnly := []echo.MiddlewareFunc{auth, middleware.RequireRole(models.RoleAuthor)}
	adminOnly := []echo.MiddlewareFunc{auth, middleware.RequireRole(models.RoleAdmin)}

	api := e.Group("/api")
	authHandler.RegisterAuthRoutes(api.Group("/auth", authLimiter(d)), auth)

	paperHandler := handlers.NewPaperHandler(papers, categories, d.Log)
	paperHandler.RegisterPaperRoutes(api.Group("/papers"), auth, authorOnly...)

	author := api.Group("/author")
	paperHandler.RegisterAuthorRoutes(author, authorOnly...)
	authHandler.RegisterProfileRoutes(author, authorOnly...)

	handlers.NewCategoryHandler(categories, d.Log).RegisterCategoryRoutes(api.Group("/categories"), adminOnly...)
	handlers.NewReviewerHandler(papers, d.Log).
		RegisterReviewerRoutes(api.Group("/reviewer", auth, middleware.RequireRole(models.RoleReviewer)))
	handlers.NewAdminHandler(users, papers, d.Cache, d.Log).RegisterAdminRoutes(api.Group("/admin", adminOnly...))

	d.Log.Info("papers routes configured")
	return nil
}
