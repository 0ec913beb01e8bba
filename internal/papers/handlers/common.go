package handlers

import (
	"errors"
	"strconv"

	"github.com/anonto42/webapps/backend/internal/middleware"
	"github.com/anonto42/webapps/backend/internal/papers/repositories"
	"github.com/anonto42/webapps/backend/pkg/httperr"
	"github.com/labstack/echo/v4"
	"golang.org/x/crypto/bcrypt"
)

const bcryptCost = bcrypt.DefaultCost

func parseID(s string) (uint, bool) {
	n, err := strconv.ParseUint(s, 10, 0)
	if err != nil || n == 0 {
		return 0, false
	}
	return uint(n), true
}

func callerID(c echo.Context) (uint, error) {
	id, ok := parseID(middleware.UserID(c))
	if !ok {
		return 0, httperr.Unauthorized("INVALID_TOKEN", "Invalid token")
	}
	return id, nil
}

func pathID(c echo.Context, name, code, message string) (uint, error) {
	id, ok := parseID(c.Param(name))
	if !ok {
		return 0, httperr.NotFound(code, message)
	}
	return id, nil
}

// lookupErr maps a repository miss to 404 and anything else to 500.
func lookupErr(err error, code, message, failCode, failMessage string) error {
	if errors.Is(err, repositories.ErrNotFound) {
		return httperr.NotFound(code, message)
	}
	return httperr.Internal(failCode, failMessage, err)
}
