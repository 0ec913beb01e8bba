package handlers

import (
	"encoding/json"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/anonto42/webapps/backend/internal/middleware"
	"github.com/anonto42/webapps/backend/internal/validators"
	"github.com/anonto42/webapps/backend/pkg/httperr"
	"github.com/anonto42/webapps/backend/pkg/logger"
	"github.com/anonto42/webapps/backend/pkg/token"
	"github.com/labstack/echo/v4"
	"github.com/stretchr/testify/require"
)

var fixedNow = time.Date(2024, 6, 15, 12, 0, 0, 0, time.UTC)

type harness struct {
	e  *echo.Echo
	tm *token.Manager
}

func newHarness() *harness {
	e := echo.New()
	e.Validator = validators.NewValidator()
	e.HTTPErrorHandler = httperr.Handler(logger.NewNop())
	return &harness{e: e, tm: token.NewManager("test-secret", time.Hour)}
}

// request describes one call to a handler. A non-empty userID sends a bearer
// token through JWTAuth first.
type request struct {
	method string
	target string
	body   string
	userID string
	role   string
	params []string
}

func (h *harness) serve(t *testing.T, handler echo.HandlerFunc, r request) (*httptest.ResponseRecorder, map[string]interface{}) {
	t.Helper()
	var req = httptest.NewRequest(r.method, r.target, strings.NewReader(r.body))
	if r.body != "" {
		req.Header.Set(echo.HeaderContentType, echo.MIMEApplicationJSON)
	}
	if r.userID != "" {
		role := r.role
		if role == "" {
			role = "user"
		}
		tok, err := h.tm.Issue(r.userID, "caller@example.com", role)
		require.NoError(t, err)
		req.Header.Set(echo.HeaderAuthorization, "Bearer "+tok)
		handler = middleware.JWTAuth(h.tm, nil)(handler)
	}

	rec := httptest.NewRecorder()
	c := h.e.NewContext(req, rec)
	if len(r.params) > 0 {
		var names, values []string
		for i := 0; i+1 < len(r.params); i += 2 {
			names = append(names, r.params[i])
			values = append(values, r.params[i+1])
		}
		c.SetParamNames(names...)
		c.SetParamValues(values...)
	}

	if err := handler(c); err != nil {
		h.e.HTTPErrorHandler(err, c)
	}

	body := map[string]interface{}{}
	if strings.HasPrefix(rec.Header().Get(echo.HeaderContentType), echo.MIMEApplicationJSON) {
		require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &body))
	}
	return rec, body
}
