package router

import (
	"context"
	"fmt"

	"github.com/anonto42/webapps/backend/internal/market/handlers"
	"github.com/anonto42/webapps/backend/internal/market/models"
	"github.com/anonto42/webapps/backend/internal/market/repositories"
	"github.com/anonto42/webapps/backend/internal/middleware"
	"github.com/labstack/echo/v4"
)

type indexer interface {
	EnsureIndexes(ctx context.Context) error
}

// SetupArtisanmart wires the marketplace onto e.
func SetupArtisanmart(ctx context.Context, e *echo.Echo, d Deps) error {
	users := repositories.NewMongoUserRepository(d.Mongo)
	vendors := repositories.NewMongoVendorRepository(d.Mongo)
	products := repositories.NewMongoProductRepository(d.Mongo)
	reviews := repositories.NewMongoReviewRepository(d.Mongo)
	orders := repositories.NewMongoOrderRepository(d.Mongo)
	favorites := repositories.NewMongoFavoriteRepository(d.Mongo)
	follows := repositories.NewMongoFollowRepository(d.Mongo)
	messages := repositories.NewMongoMessageRepository(d.Mongo)

	for name, repo := range map[string]indexer{
		"user": users, "vendor": vendors, "product": products, "review": reviews,
		"order": orders, "favorite": favorites, "follow": follows, "message": messages,
	} {
		if err := repo.EnsureIndexes(ctx); err != nil {
			return fmt.Errorf("%s indexes: %w", name, err)
		}
	}

	authHandler := handlers.NewAuthHandler(users, vendors, d.Tokens, d.Mailer, d.Log, d.Config.FrontendURL)
	auth := middleware.JWTAuth(d.Tokens, authHandler.CheckAccount)
	vendorOnly := middleware.RequireRole(models.RoleVendor)

	api := e.Group("/api")
	authHandler.RegisterAuthRoutes(api.Group("/auth", authLimiter(d)), auth)

	handlers.NewProductHandler(products, vendors, d.Cache, d.Log).RegisterProductRoutes(api.Group("/products"), auth, vendorOnly)
	handlers.NewVendorHandler(vendors, products, reviews, d.Log).RegisterVendorRoutes(api.Group("/vendors"), auth, vendorOnly)
	handlers.NewReviewHandler(reviews, products, vendors, users, orders, d.Log).RegisterReviewRoutes(api, auth, vendorOnly)
	handlers.NewFavoriteHandler(favorites, products, d.Log).RegisterFavoriteRoutes(api.Group("/favorites"), auth)
	handlers.NewFollowHandler(follows, users, d.Log).RegisterFollowRoutes(api.Group("/follows"), auth)
	handlers.NewChatHandler(messages, users, d.Log).RegisterChatRoutes(api.Group("/chat"), auth)

	handlers.NewPaymentHandler(products, vendors, orders, d.Gateway, d.Config.PaymentWebhookSecret, d.Log).
		RegisterPaymentRoutes(api.Group("/payments"), auth)
	handlers.NewOrderHandler(orders, vendors, d.Log).RegisterOrderRoutes(api, auth, vendorOnly)

	handlers.NewAdminHandler(users, vendors, products, orders, d.Cache, d.Log).
		RegisterAdminRoutes(api.Group("/admin", auth, middleware.RequireRole(models.RoleAdmin)))

	d.Log.Info("artisanmart routes configured")
	return nil
}
