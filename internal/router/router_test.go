package router

import (
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/alicebob/miniredis/v2"
	"github.com/anonto42/webapps/backend/internal/papers/models"
	"github.com/anonto42/webapps/backend/internal/papers/paperstest"
	"github.com/anonto42/webapps/backend/pkg/cache"
	"github.com/anonto42/webapps/backend/pkg/config"
	"github.com/anonto42/webapps/backend/pkg/logger"
	"github.com/anonto42/webapps/backend/pkg/token"
	"github.com/labstack/echo/v4"
	"github.com/redis/go-redis/v9"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func papersApp(t *testing.T, c *cache.Cache, ratePerMinute int) (*echo.Echo, Deps) {
	t.Helper()
	cfg := &config.Config{App: "papers", FrontendURL: "http://localhost:3000", RateLimitPerMinute: ratePerMinute}
	d := Deps{
		Config: cfg,
		Log:    logger.NewNop(),
		Tokens: token.NewManager("test-secret", time.Hour),
		SQL:    paperstest.SetupTestDB(t),
		Cache:  c,
	}
	e := New(cfg, d.Log)
	require.NoError(t, SetupPapers(e, d))
	return e, d
}

func call(t *testing.T, e *echo.Echo, method, target, body, bearer string) (int, map[string]interface{}) {
	t.Helper()
	req := httptest.NewRequest(method, target, strings.NewReader(body))
	if body != "" {
		req.Header.Set(echo.HeaderContentType, echo.MIMEApplicationJSON)
	}
	if bearer != "" {
		req.Header.Set(echo.HeaderAuthorization, "Bearer "+bearer)
	}
	rec := httptest.NewRecorder()
	e.ServeHTTP(rec, req)

	out := map[string]interface{}{}
	if rec.Body.Len() > 0 {
		require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &out), rec.Body.String())
	}
	return rec.Code, out
}

func TestHealthCheck(t *testing.T) {
	e := New(&config.Config{App: "mindspace"}, logger.NewNop())

	code, body := call(t, e, http.MethodGet, "/api/health", "", "")
	assert.Equal(t, http.StatusOK, code)
	assert.Equal(t, "healthy", body["status"])
	assert.Equal(t, "mindspace", body["service"])
}

func TestPapersRoutes_RoleGuards(t *testing.T) {
	e, _ := papersApp(t, nil, 0)

	code, body := call(t, e, http.MethodPost, "/api/auth/register",
		`{"name":"Ada","email":"ada@uni.example","password":"secret1","institution":"Analytical","role":"author"}`, "")
	require.Equal(t, http.StatusCreated, code, body)
	author := body["token"].(string)

	code, body = call(t, e, http.MethodPost, "/api/auth/register",
		`{"name":"Grace","email":"grace@uni.example","password":"secret1","role":"reviewer"}`, "")
	require.Equal(t, http.StatusCreated, code, body)
	reviewer := body["token"].(string)

	tests := []struct {
		name   string
		method string
		target string
		bearer string
		status int
		code   string
	}{
		{"no token", http.MethodGet, "/api/papers/mine", "", http.StatusUnauthorized, "NO_TOKEN"},
		{"garbage token", http.MethodGet, "/api/papers/mine", "nope", http.StatusUnauthorized, "INVALID_TOKEN"},
		{"author dashboard", http.MethodGet, "/api/author/dashboard", author, http.StatusOK, ""},
		{"reviewer on author route", http.MethodGet, "/api/author/dashboard", reviewer, http.StatusForbidden, "INSUFFICIENT_PERMISSIONS"},
		{"author on reviewer route", http.MethodGet, "/api/reviewer/assignments", author, http.StatusForbidden, "INSUFFICIENT_PERMISSIONS"},
		{"reviewer assignments", http.MethodGet, "/api/reviewer/assignments", reviewer, http.StatusOK, ""},
		{"author on admin route", http.MethodGet, "/api/admin/dashboard", author, http.StatusForbidden, "INSUFFICIENT_PERMISSIONS"},
		{"public categories", http.MethodGet, "/api/categories", "", http.StatusOK, ""},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			code, body := call(t, e, tt.method, tt.target, "", tt.bearer)
			assert.Equal(t, tt.status, code)
			if tt.code != "" {
				assert.Equal(t, tt.code, body["code"])
			}
		})
	}
}

func TestPapersRoutes_ReviewFlow(t *testing.T) {
	e, d := papersApp(t, nil, 0)
	admin := paperstest.CreateUser(t, d.SQL, "root", models.RoleAdmin)
	category := paperstest.CreateCategory(t, d.SQL, "Systems")

	login := func(email, role string) string {
		code, body := call(t, e, http.MethodPost, "/api/auth/login",
			`{"email":"`+email+`","password":"secret1","role":"`+role+`"}`, "")
		require.Equal(t, http.StatusOK, code, body)
		return body["token"].(string)
	}
	adminTok := login(admin.Email, models.RoleAdmin)

	code, body := call(t, e, http.MethodPost, "/api/auth/register",
		`{"name":"Ada","email":"ada@uni.example","password":"secret1","role":"author"}`, "")
	require.Equal(t, http.StatusCreated, code, body)
	authorTok := body["token"].(string)
	grace := paperstest.CreateUser(t, d.SQL, "grace", models.RoleReviewer)
	reviewerTok := login(grace.Email, models.RoleReviewer)

	code, body = call(t, e, http.MethodPost, "/api/papers",
		`{"title":"Notes on the Engine","abstract":"We describe it.","fileName":"engine.pdf","categoryId":`+idString(category.ID)+`}`, authorTok)
	require.Equal(t, http.StatusCreated, code, body)
	paperID := idString(uint(body["paper"].(map[string]interface{})["id"].(float64)))

	code, body = call(t, e, http.MethodPost, "/api/admin/papers/"+paperID+"/assign", `{"reviewerId":`+idString(grace.ID)+`}`, adminTok)
	require.Equal(t, http.StatusCreated, code, body)

	code, body = call(t, e, http.MethodGet, "/api/papers/"+paperID, "", reviewerTok)
	require.Equal(t, http.StatusOK, code, body)

	code, body = call(t, e, http.MethodPost, "/api/reviewer/papers/"+paperID+"/review",
		`{"score":88,"comments":"Clear and careful","recommendation":"minor_revision"}`, reviewerTok)
	require.Equal(t, http.StatusOK, code, body)
	assert.Equal(t, models.StatusReviewed, body["paperStatus"])

	code, body = call(t, e, http.MethodPut, "/api/admin/papers/"+paperID+"/status", `{"status":"accepted"}`, adminTok)
	require.Equal(t, http.StatusOK, code, body)

	code, body = call(t, e, http.MethodGet, "/api/author/dashboard", "", authorTok)
	require.Equal(t, http.StatusOK, code)
	byStatus := body["stats"].(map[string]interface{})["byStatus"].(map[string]interface{})
	assert.Equal(t, float64(1), byStatus[models.StatusAccepted])
}

func TestAuthRateLimit(t *testing.T) {
	mr, err := miniredis.Run()
	require.NoError(t, err)
	t.Cleanup(mr.Close)
	client := redis.NewClient(&redis.Options{Addr: mr.Addr()})
	t.Cleanup(func() { client.Close() })

	e, _ := papersApp(t, cache.NewWithClient(client, "papers"), 2)
	body := `{"email":"nobody@uni.example","password":"secret1","role":"author"}`

	for i := 0; i < 2; i++ {
		code, _ := call(t, e, http.MethodPost, "/api/auth/login", body, "")
		assert.Equal(t, http.StatusUnauthorized, code)
	}
	code, resp := call(t, e, http.MethodPost, "/api/auth/login", body, "")
	assert.Equal(t, http.StatusTooManyRequests, code)
	assert.Equal(t, "RATE_LIMITED", resp["code"])

	code, _ = call(t, e, http.MethodGet, "/api/categories", "", "")
	assert.Equal(t, http.StatusOK, code)
}

func idString(id uint) string {
	b, _ := json.Marshal(id)
	return string(b)
}
