package httperr

import "github.com/labstack/echo/v4"

// Bind decodes the request into req and runs the echo validator on it.
// Both failures are reported as a 400 VALIDATION_ERROR.
func Bind(c echo.Context, req interface{}) error {
	if err := c.Bind(req); err != nil {
		return BadRequest("INVALID_PAYLOAD", "Invalid request payload")
	}
	if err := c.Validate(req); err != nil {
		return ValidationFailed(err)
	}
	return nil
}
