package middleware

import (
	"github.com/anonto42/webapps/backend/pkg/httperr"
	"github.com/labstack/echo/v4"
)

// RequireRole must run after JWTAuth.
func RequireRole(roles ...string) echo.MiddlewareFunc {
	allowed := make(map[string]struct{}, len(roles))
	for _, r := range roles {
		allowed[r] = struct{}{}
	}
	return func(next echo.HandlerFunc) echo.HandlerFunc {
		return func(c echo.Context) error {
			claims := Claims(c)
			if claims == nil {
				return httperr.Unauthorized("NO_TOKEN", "Access token required")
			}
			if _, ok := allowed[claims.Role]; !ok {
				return httperr.Forbidden("INSUFFICIENT_PERMISSIONS", "You do not have permission to perform this action")
			}
			return next(c)
		}
	}
}
