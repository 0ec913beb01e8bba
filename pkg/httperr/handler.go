package httperr

import (
	"errors"
	"fmt"
	"net/http"

	"github.com/anonto42/webapps/backend/pkg/logger"
	"github.com/labstack/echo/v4"
)

// Handler renders every error returned from a route as JSON.
// 5xx responses are logged with their cause; clients only see the code.
func Handler(log *logger.Logger) echo.HTTPErrorHandler {
	return func(err error, c echo.Context) {
		if c.Response().Committed {
			return
		}

		apiErr := toAPIError(err)
		if apiErr.Status >= http.StatusInternalServerError && log != nil {
			log.Error("request failed",
				"method", c.Request().Method,
				"path", c.Path(),
				"code", apiErr.Code,
				"error", err,
			)
		}

		var writeErr error
		if c.Request().Method == http.MethodHead {
			writeErr = c.NoContent(apiErr.Status)
		} else {
			writeErr = c.JSON(apiErr.Status, apiErr)
		}
		if writeErr != nil && log != nil {
			log.Warn("failed to write error response", "error", writeErr)
		}
	}
}

func toAPIError(err error) *APIError {
	var apiErr *APIError
	if errors.As(err, &apiErr) {
		return apiErr
	}

	var he *echo.HTTPError
	if errors.As(err, &he) {
		msg := http.StatusText(he.Code)
		if m, ok := he.Message.(string); ok && m != "" {
			msg = m
		}
		return &APIError{Status: he.Code, Code: fmt.Sprintf("HTTP_%d", he.Code), Message: msg, Err: he.Internal}
	}

	return Internal("INTERNAL_ERROR", "Internal server error", err)
}
