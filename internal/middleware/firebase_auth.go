package middleware

import (
	"github.com/anonto42/webapps/backend/pkg/firebase"
	"github.com/anonto42/webapps/backend/pkg/httperr"
	"github.com/labstack/echo/v4"
)

const firebaseIdentityKey = "firebaseIdentity"

// FirebaseAuth verifies a Firebase ID token sent as a bearer token and stores
// the resulting identity for Google sign-in handlers.
func FirebaseAuth(verifier firebase.TokenVerifier) echo.MiddlewareFunc {
	return func(next echo.HandlerFunc) echo.HandlerFunc {
		return func(c echo.Context) error {
			if verifier == nil {
				return httperr.New(503, "GOOGLE_AUTH_DISABLED", "Google sign-in is not configured")
			}

			idToken := bearerToken(c)
			if idToken == "" {
				return httperr.Unauthorized("NO_TOKEN", "Firebase ID token required")
			}

			tok, err := verifier.VerifyIDToken(c.Request().Context(), idToken)
			if err != nil {
				return httperr.Unauthorized("INVALID_TOKEN", "Invalid or expired ID token")
			}

			identity, err := firebase.IdentityFromToken(tok)
			if err != nil {
				return httperr.Unauthorized("INVALID_TOKEN", err.Error())
			}

			c.Set(firebaseIdentityKey, identity)
			return next(c)
		}
	}
}

// FirebaseIdentity returns the identity stored by FirebaseAuth.
func FirebaseIdentity(c echo.Context) (firebase.Identity, bool) {
	id, ok := c.Get(firebaseIdentityKey).(firebase.Identity)
	return id, ok
}
