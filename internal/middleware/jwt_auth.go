package middleware

import (
	"context"
	"errors"
	"strings"

	"github.com/anonto42/webapps/backend/pkg/httperr"
	"github.com/anonto42/webapps/backend/pkg/token"
	"github.com/labstack/echo/v4"
)

const (
	userKey   = "user"
	userIDKey = "userID"
)

// AccountCheck lets an app reject tokens whose account no longer exists or was
// deactivated. It returns nil when the account is usable.
type AccountCheck func(ctx context.Context, claims *token.Claims) *httperr.APIError

// JWTAuth requires a valid bearer token and stores its claims on the context.
func JWTAuth(tm *token.Manager, check AccountCheck) echo.MiddlewareFunc {
	return func(next echo.HandlerFunc) echo.HandlerFunc {
		return func(c echo.Context) error {
			raw := bearerToken(c)
			if raw == "" {
				return httperr.Unauthorized("NO_TOKEN", "Access token required")
			}

			claims, err := tm.Parse(raw)
			if err != nil {
				if errors.Is(err, token.ErrExpired) {
					return httperr.Unauthorized("TOKEN_EXPIRED", "Token expired")
				}
				return httperr.Unauthorized("INVALID_TOKEN", "Invalid token")
			}

			if check != nil {
				if apiErr := check(c.Request().Context(), claims); apiErr != nil {
					return apiErr
				}
			}

			setClaims(c, claims)
			return next(c)
		}
	}
}

// OptionalJWTAuth attaches claims when a usable token is present and never fails.
func OptionalJWTAuth(tm *token.Manager, check AccountCheck) echo.MiddlewareFunc {
	return func(next echo.HandlerFunc) echo.HandlerFunc {
		return func(c echo.Context) error {
			if raw := bearerToken(c); raw != "" {
				if claims, err := tm.Parse(raw); err == nil {
					if check == nil || check(c.Request().Context(), claims) == nil {
						setClaims(c, claims)
					}
				}
			}
			return next(c)
		}
	}
}

// Claims returns the authenticated caller, or nil.
func Claims(c echo.Context) *token.Claims {
	claims, _ := c.Get(userKey).(*token.Claims)
	return claims
}

// UserID returns the authenticated caller's id, or "".
func UserID(c echo.Context) string {
	if claims := Claims(c); claims != nil {
		return claims.UserID
	}
	return ""
}

func setClaims(c echo.Context, claims *token.Claims) {
	c.Set(userKey, claims)
	c.Set(userIDKey, claims.UserID)
}

func bearerToken(c echo.Context) string {
	authHeader := c.Request().Header.Get(echo.HeaderAuthorization)
	parts := strings.SplitN(authHeader, " ", 2)
	if len(parts) != 2 || !strings.EqualFold(parts[0], "bearer") {
		return ""
	}
	return strings.TrimSpace(parts[1])
}
