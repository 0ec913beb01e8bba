package handlers

import (
	"encoding/json"
	"net/http/httptest"
	"strconv"
	"strings"
	"testing"
	"time"

	"github.com/anonto42/webapps/backend/internal/middleware"
	"github.com/anonto42/webapps/backend/internal/papers/models"
	"github.com/anonto42/webapps/backend/internal/papers/paperstest"
	"github.com/anonto42/webapps/backend/internal/papers/repositories"
	"github.com/anonto42/webapps/backend/internal/validators"
	"github.com/anonto42/webapps/backend/pkg/httperr"
	"github.com/anonto42/webapps/backend/pkg/logger"
	"github.com/anonto42/webapps/backend/pkg/token"
	"github.com/labstack/echo/v4"
	"github.com/stretchr/testify/require"
	"golang.org/x/crypto/bcrypt"
	"gorm.io/gorm"
)

// portal is a papers app over an in-memory database.
type portal struct {
	e          *echo.Echo
	tm         *token.Manager
	db         *gorm.DB
	users      *repositories.GormUserRepository
	categories *repositories.GormCategoryRepository
	papers     *repositories.GormPaperRepository
}

func newPortal(t *testing.T) *portal {
	e := echo.New()
	e.Validator = validators.NewValidator()
	e.HTTPErrorHandler = httperr.Handler(logger.NewNop())
	db := paperstest.SetupTestDB(t)
	return &portal{
		e:          e,
		tm:         token.NewManager("test-secret", time.Hour),
		db:         db,
		users:      repositories.NewGormUserRepository(db),
		categories: repositories.NewGormCategoryRepository(db),
		papers:     repositories.NewGormPaperRepository(db),
	}
}

// request describes one handler call. A non-nil as authenticates the caller
// with their own id and role.
type request struct {
	method string
	target string
	body   string
	as     *models.User
	params []string
}

func (p *portal) serve(t *testing.T, handler echo.HandlerFunc, r request) (*httptest.ResponseRecorder, map[string]interface{}) {
	t.Helper()
	req := httptest.NewRequest(r.method, r.target, strings.NewReader(r.body))
	if r.body != "" {
		req.Header.Set(echo.HeaderContentType, echo.MIMEApplicationJSON)
	}
	if r.as != nil {
		tok, err := p.tm.Issue(strconv.FormatUint(uint64(r.as.ID), 10), r.as.Email, r.as.Role)
		require.NoError(t, err)
		req.Header.Set(echo.HeaderAuthorization, "Bearer "+tok)
		handler = middleware.JWTAuth(p.tm, nil)(handler)
	}

	rec := httptest.NewRecorder()
	c := p.e.NewContext(req, rec)
	var names, values []string
	for i := 0; i+1 < len(r.params); i += 2 {
		names = append(names, r.params[i])
		values = append(values, r.params[i+1])
	}
	c.SetParamNames(names...)
	c.SetParamValues(values...)

	if err := handler(c); err != nil {
		p.e.HTTPErrorHandler(err, c)
	}

	body := map[string]interface{}{}
	if strings.HasPrefix(rec.Header().Get(echo.HeaderContentType), echo.MIMEApplicationJSON) {
		require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &body))
	}
	return rec, body
}

func idStr(u uint) string { return strconv.FormatUint(uint64(u), 10) }

func fastAuth(p *portal) *AuthHandler {
	h := NewAuthHandler(p.users, p.tm, logger.NewNop())
	h.cost = bcrypt.MinCost
	return h
}

func fastAdmin(p *portal) *AdminHandler {
	h := NewAdminHandler(p.users, p.papers, nil, logger.NewNop())
	h.cost = bcrypt.MinCost
	return h
}
