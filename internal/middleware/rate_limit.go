package middleware

import (
	"net/http"
	"strconv"

	"github.com/anonto42/webapps/backend/pkg/cache"
	"github.com/anonto42/webapps/backend/pkg/httperr"
	"github.com/anonto42/webapps/backend/pkg/logger"
	"github.com/labstack/echo/v4"
)

// RateLimit rejects callers over the limiter's window budget with 429.
// Redis errors let the request through.
func RateLimit(rl *cache.RateLimiter, log *logger.Logger) echo.MiddlewareFunc {
	return func(next echo.HandlerFunc) echo.HandlerFunc {
		if rl == nil {
			return next
		}
		return func(c echo.Context) error {
			ok, remaining, err := rl.Allow(c.Request().Context(), c.RealIP())
			if err != nil {
				log.Warn("rate limiter unavailable", "error", err)
				return next(c)
			}
			c.Response().Header().Set("X-RateLimit-Limit", strconv.Itoa(rl.Limit()))
			c.Response().Header().Set("X-RateLimit-Remaining", strconv.Itoa(remaining))
			if !ok {
				return httperr.New(http.StatusTooManyRequests, "RATE_LIMITED", "Too many requests from this IP, please try again later.")
			}
			return next(c)
		}
	}
}
