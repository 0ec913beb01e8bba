package handlers

import (
	"errors"

	"github.com/anonto42/webapps/backend/internal/market/repositories"
	"github.com/anonto42/webapps/backend/internal/middleware"
	"github.com/anonto42/webapps/backend/pkg/httperr"
	"github.com/labstack/echo/v4"
	"go.mongodb.org/mongo-driver/bson/primitive"
)

func callerID(c echo.Context) (primitive.ObjectID, error) {
	id, err := primitive.ObjectIDFromHex(middleware.UserID(c))
	if err != nil {
		return primitive.NilObjectID, httperr.Unauthorized("INVALID_TOKEN", "Invalid token")
	}
	return id, nil
}

func pathID(c echo.Context, name, code, message string) (primitive.ObjectID, error) {
	id, err := primitive.ObjectIDFromHex(c.Param(name))
	if err != nil {
		return primitive.NilObjectID, httperr.NotFound(code, message)
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
