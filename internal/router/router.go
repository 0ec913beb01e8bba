package router

import (
	"time"

	"github.com/anonto42/webapps/backend/internal/middleware"
	"github.com/anonto42/webapps/backend/internal/validators"
	"github.com/anonto42/webapps/backend/pkg/ai"
	"github.com/anonto42/webapps/backend/pkg/cache"
	"github.com/anonto42/webapps/backend/pkg/config"
	"github.com/anonto42/webapps/backend/pkg/firebase"
	"github.com/anonto42/webapps/backend/pkg/httperr"
	"github.com/anonto42/webapps/backend/pkg/logger"
	"github.com/anonto42/webapps/backend/pkg/mailer"
	"github.com/anonto42/webapps/backend/pkg/payments"
	"github.com/anonto42/webapps/backend/pkg/token"
	"github.com/labstack/echo/v4"
	"go.mongodb.org/mongo-driver/mongo"
	"gorm.io/gorm"
)

// Deps carries the connections and clients an app's routes are built from.
// Optional ones may be nil: Cache, Firebase.
type Deps struct {
	Config    *config.Config
	Log       *logger.Logger
	Tokens    *token.Manager
	Mongo     *mongo.Database
	SQL       *gorm.DB
	Cache     *cache.Cache
	Firebase  firebase.TokenVerifier
	Mailer    mailer.Mailer
	Assistant *ai.Client
	Gateway   payments.Gateway
}

// New builds the echo instance shared by every app: validator, error
// handler, global middleware and the health check.
func New(cfg *config.Config, log *logger.Logger) *echo.Echo {
	e := echo.New()
	e.HideBanner = true
	e.HidePort = true
	e.Validator = validators.NewValidator()
	e.HTTPErrorHandler = httperr.Handler(log)

	config.SetupMiddleware(e, cfg, log)

	e.GET("/api/health", HealthCheck(cfg.App))
	return e
}

// authLimiter throttles the /auth group per client IP. Without Redis it is nil
// and lets everything through.
func authLimiter(d Deps) echo.MiddlewareFunc {
	rl := cache.NewRateLimiter(d.Cache, "auth", d.Config.RateLimitPerMinute, time.Minute)
	return middleware.RateLimit(rl, d.Log)
}
