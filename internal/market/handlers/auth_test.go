package handlers

import (
	"context"
	"net/http"
	"strings"
	"testing"
	"time"

	"github.com/anonto42/webapps/backend/internal/market/models"
	"github.com/anonto42/webapps/backend/internal/market/repositories"
	"github.com/anonto42/webapps/backend/pkg/logger"
	"github.com/anonto42/webapps/backend/pkg/mailer"
	"github.com/anonto42/webapps/backend/pkg/token"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"
	"go.mongodb.org/mongo-driver/bson/primitive"
	"golang.org/x/crypto/bcrypt"
)

type captureMailer struct{ sent chan mailer.Message }

func (m *captureMailer) Send(_ context.Context, msg mailer.Message) error {
	m.sent <- msg
	return nil
}

func newAuthHandler(h *harness) (*AuthHandler, *MockUserRepository, *MockVendorRepository) {
	users, vendors := new(MockUserRepository), new(MockVendorRepository)
	handler := NewAuthHandler(users, vendors, h.tm, mailer.NewLogMailer(logger.NewNop()), logger.NewNop(), "http://shop.local")
	handler.cost = bcrypt.MinCost
	handler.now = func() time.Time { return fixedNow }
	return handler, users, vendors
}

func TestRegister(t *testing.T) {
	h := newHarness()

	t.Run("creates account", func(t *testing.T) {
		handler, users, _ := newAuthHandler(h)
		users.On("Create", mock.Anything, mock.MatchedBy(func(u *models.User) bool {
			return u.Email == "maker@example.com" && u.Role == "vendor" &&
				bcrypt.CompareHashAndPassword([]byte(u.Password), []byte("secret1")) == nil
		})).Return(nil)

		rec, body := h.serve(t, handler.Register, request{
			method: http.MethodPost, target: "/auth/register",
			body: `{"name":"Maker","email":"maker@example.com","password":"secret1","role":"vendor"}`,
		})
		require.Equal(t, http.StatusCreated, rec.Code, rec.Body.String())
		assert.NotEmpty(t, body["token"])
		assert.NotContains(t, rec.Body.String(), "secret1")
	})

	t.Run("taken email", func(t *testing.T) {
		handler, users, _ := newAuthHandler(h)
		users.On("Create", mock.Anything, mock.Anything).Return(repositories.ErrDuplicate)

		rec, body := h.serve(t, handler.Register, request{
			method: http.MethodPost, target: "/auth/register",
			body: `{"name":"Maker","email":"maker@example.com","password":"secret1"}`,
		})
		assert.Equal(t, http.StatusBadRequest, rec.Code)
		assert.Equal(t, "USER_EXISTS", body["code"])
	})

	t.Run("admin role is not self-assignable", func(t *testing.T) {
		handler, _, _ := newAuthHandler(h)
		rec, body := h.serve(t, handler.Register, request{
			method: http.MethodPost, target: "/auth/register",
			body: `{"name":"Maker","email":"maker@example.com","password":"secret1","role":"admin"}`,
		})
		assert.Equal(t, http.StatusBadRequest, rec.Code)
		assert.Equal(t, "VALIDATION_ERROR", body["code"])
	})
}

func TestLogin(t *testing.T) {
	h := newHarness()
	hash, err := bcrypt.GenerateFromPassword([]byte("secret1"), bcrypt.MinCost)
	require.NoError(t, err)
	active := &models.User{ID: primitive.NewObjectID(), Email: "maker@example.com", Password: string(hash), Role: "customer", IsActive: true}

	tests := []struct {
		name     string
		user     *models.User
		err      error
		password string
		status   int
		code     string
	}{
		{"success", active, nil, "secret1", http.StatusOK, ""},
		{"wrong password", active, nil, "nope", http.StatusUnauthorized, "INVALID_CREDENTIALS"},
		{"unknown email", nil, repositories.ErrNotFound, "secret1", http.StatusUnauthorized, "INVALID_CREDENTIALS"},
		{"deactivated", &models.User{ID: active.ID, Password: string(hash)}, nil, "secret1", http.StatusUnauthorized, "ACCOUNT_DEACTIVATED"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			handler, users, _ := newAuthHandler(h)
			users.On("GetByEmail", mock.Anything, "maker@example.com").Return(tt.user, tt.err)

			rec, body := h.serve(t, handler.Login, request{
				method: http.MethodPost, target: "/auth/login",
				body: `{"email":"maker@example.com","password":"` + tt.password + `"}`,
			})
			assert.Equal(t, tt.status, rec.Code)
			if tt.code != "" {
				assert.Equal(t, tt.code, body["code"])
			} else {
				assert.NotEmpty(t, body["token"])
			}
		})
	}
}

func TestMe_IncludesShop(t *testing.T) {
	h := newHarness()
	handler, users, vendors := newAuthHandler(h)
	uid := primitive.NewObjectID()

	users.On("GetByID", mock.Anything, uid.Hex()).Return(&models.User{ID: uid, Role: models.RoleVendor}, nil)
	vendors.On("GetByUser", mock.Anything, uid).Return(&models.Vendor{ShopName: "Kiln Co"}, nil)

	rec, body := h.serve(t, handler.Me, request{method: http.MethodGet, target: "/auth/me", userID: uid.Hex(), role: "vendor"})
	require.Equal(t, http.StatusOK, rec.Code)
	shop := body["vendor"].(map[string]interface{})
	assert.Equal(t, "Kiln Co", shop["shopName"])
}

func TestCheckAccount(t *testing.T) {
	h := newHarness()
	handler, users, _ := newAuthHandler(h)
	users.On("GetByID", mock.Anything, "gone").Return(nil, repositories.ErrNotFound)

	claims, err := h.tm.Parse(mustIssue(t, h, "gone"))
	require.NoError(t, err)
	apiErr := handler.CheckAccount(context.Background(), claims)
	require.NotNil(t, apiErr)
	assert.Equal(t, "USER_NOT_FOUND", apiErr.Code)
}

func mustIssue(t *testing.T, h *harness, uid string) string {
	t.Helper()
	tok, err := h.tm.Issue(uid, "caller@example.com", "customer")
	require.NoError(t, err)
	return tok
}

func TestUpdateProfile(t *testing.T) {
	h := newHarness()
	handler, users, _ := newAuthHandler(h)
	uid := primitive.NewObjectID()
	users.On("UpdateProfile", mock.Anything, uid, mock.MatchedBy(func(req models.UpdateProfileRequest) bool {
		return req.Name != nil && *req.Name == "Maker Jane" && req.Phone == nil &&
			req.Address != nil && req.Address.City == "Leeds"
	})).Return(&models.User{ID: uid, Name: "Maker Jane", Address: &models.UserAddress{City: "Leeds"}}, nil)

	rec, body := h.serve(t, handler.UpdateProfile, request{
		method: http.MethodPut, target: "/auth/profile",
		body:   `{"name":"Maker Jane","address":{"city":"Leeds"}}`,
		userID: uid.Hex(),
	})
	require.Equal(t, http.StatusOK, rec.Code, rec.Body.String())
	user := body["user"].(map[string]interface{})
	assert.Equal(t, "Maker Jane", user["name"])
	assert.Equal(t, "Leeds", user["address"].(map[string]interface{})["city"])

	rec, body = h.serve(t, handler.UpdateProfile, request{
		method: http.MethodPut, target: "/auth/profile",
		body:   `{"name":"J"}`,
		userID: uid.Hex(),
	})
	assert.Equal(t, http.StatusBadRequest, rec.Code)
	assert.Equal(t, "VALIDATION_ERROR", body["code"])
}

func TestChangePassword(t *testing.T) {
	h := newHarness()
	hash, err := bcrypt.GenerateFromPassword([]byte("secret1"), bcrypt.MinCost)
	require.NoError(t, err)
	uid := primitive.NewObjectID()
	user := &models.User{ID: uid, Password: string(hash), IsActive: true}

	t.Run("wrong current password", func(t *testing.T) {
		handler, users, _ := newAuthHandler(h)
		users.On("GetByID", mock.Anything, uid.Hex()).Return(user, nil)

		rec, body := h.serve(t, handler.ChangePassword, request{
			method: http.MethodPut, target: "/auth/change-password",
			body:   `{"currentPassword":"nope","newPassword":"secret2"}`,
			userID: uid.Hex(),
		})
		assert.Equal(t, http.StatusBadRequest, rec.Code)
		assert.Equal(t, "INVALID_CURRENT_PASSWORD", body["code"])
		users.AssertNotCalled(t, "SetPassword", mock.Anything, mock.Anything, mock.Anything)
	})

	t.Run("stores new hash", func(t *testing.T) {
		handler, users, _ := newAuthHandler(h)
		users.On("GetByID", mock.Anything, uid.Hex()).Return(user, nil)
		users.On("SetPassword", mock.Anything, uid, mock.MatchedBy(func(hashed string) bool {
			return bcrypt.CompareHashAndPassword([]byte(hashed), []byte("secret2")) == nil
		})).Return(nil)

		rec, _ := h.serve(t, handler.ChangePassword, request{
			method: http.MethodPut, target: "/auth/change-password",
			body:   `{"currentPassword":"secret1","newPassword":"secret2"}`,
			userID: uid.Hex(),
		})
		assert.Equal(t, http.StatusOK, rec.Code)
		users.AssertExpectations(t)
	})

	t.Run("short new password", func(t *testing.T) {
		handler, _, _ := newAuthHandler(h)
		rec, body := h.serve(t, handler.ChangePassword, request{
			method: http.MethodPut, target: "/auth/change-password",
			body:   `{"currentPassword":"secret1","newPassword":"abc"}`,
			userID: uid.Hex(),
		})
		assert.Equal(t, http.StatusBadRequest, rec.Code)
		assert.Equal(t, "VALIDATION_ERROR", body["code"])
	})
}

func TestForgotAndResetPassword(t *testing.T) {
	h := newHarness()
	handler, users, _ := newAuthHandler(h)
	sent := &captureMailer{sent: make(chan mailer.Message, 1)}
	handler.mail = sent
	uid := primitive.NewObjectID()

	var stored string
	users.On("GetByEmail", mock.Anything, "maker@example.com").Return(&models.User{ID: uid, Name: "Maker", Email: "maker@example.com", IsActive: true}, nil)
	users.On("GetByEmail", mock.Anything, "ghost@example.com").Return(nil, repositories.ErrNotFound)
	users.On("SetResetToken", mock.Anything, uid, mock.AnythingOfType("string"), fixedNow.Add(resetTokenTTL)).
		Run(func(args mock.Arguments) { stored = args.String(2) }).Return(nil)

	rec, body := h.serve(t, handler.ForgotPassword, request{
		method: http.MethodPost, target: "/auth/forgot-password",
		body: `{"email":"ghost@example.com"}`,
	})
	assert.Equal(t, http.StatusOK, rec.Code)
	assert.Equal(t, forgotPasswordReply, body["message"])

	rec, body = h.serve(t, handler.ForgotPassword, request{
		method: http.MethodPost, target: "/auth/forgot-password",
		body: `{"email":"maker@example.com"}`,
	})
	require.Equal(t, http.StatusOK, rec.Code)
	assert.Equal(t, forgotPasswordReply, body["message"])
	assert.NotContains(t, rec.Body.String(), "token")

	var msg mailer.Message
	select {
	case msg = <-sent.sent:
	case <-time.After(time.Second):
		t.Fatal("reset email was not sent")
	}
	assert.Equal(t, "Reset your ArtisanMart password", msg.Subject)
	i := strings.Index(msg.TextBody, "token=")
	require.NotEqual(t, -1, i)
	raw := msg.TextBody[i+len("token="):]
	assert.Equal(t, token.HashResetToken(raw), stored)

	users.On("GetByResetToken", mock.Anything, stored, fixedNow).Return(&models.User{ID: uid, IsActive: true}, nil)
	users.On("GetByResetToken", mock.Anything, token.HashResetToken("bogus"), fixedNow).Return(nil, repositories.ErrNotFound)
	users.On("SetPassword", mock.Anything, uid, mock.AnythingOfType("string")).Return(nil)

	rec, body = h.serve(t, handler.ResetPassword, request{
		method: http.MethodPost, target: "/auth/reset-password",
		body: `{"token":"bogus","newPassword":"secret2"}`,
	})
	assert.Equal(t, http.StatusBadRequest, rec.Code)
	assert.Equal(t, "INVALID_RESET_TOKEN", body["code"])

	rec, _ = h.serve(t, handler.ResetPassword, request{
		method: http.MethodPost, target: "/auth/reset-password",
		body: `{"token":"` + raw + `","newPassword":"secret2"}`,
	})
	assert.Equal(t, http.StatusOK, rec.Code)
	users.AssertCalled(t, "SetPassword", mock.Anything, uid, mock.AnythingOfType("string"))
}

func TestDeleteAccount(t *testing.T) {
	h := newHarness()

	t.Run("customer", func(t *testing.T) {
		handler, users, vendors := newAuthHandler(h)
		uid := primitive.NewObjectID()
		users.On("Delete", mock.Anything, uid).Return(nil)

		rec, body := h.serve(t, handler.DeleteAccount, request{
			method: http.MethodDelete, target: "/auth/account", userID: uid.Hex(),
		})
		assert.Equal(t, http.StatusOK, rec.Code)
		assert.Equal(t, "Account deleted successfully", body["message"])
		vendors.AssertNotCalled(t, "GetByUser", mock.Anything, mock.Anything)
	})

	t.Run("vendor closes shop", func(t *testing.T) {
		handler, users, vendors := newAuthHandler(h)
		uid, shop := primitive.NewObjectID(), primitive.NewObjectID()
		vendors.On("GetByUser", mock.Anything, uid).Return(&models.Vendor{ID: shop, UserID: uid}, nil)
		vendors.On("SetApproved", mock.Anything, shop.Hex(), false).Return(&models.Vendor{ID: shop}, nil)
		users.On("Delete", mock.Anything, uid).Return(nil)

		rec, _ := h.serve(t, handler.DeleteAccount, request{
			method: http.MethodDelete, target: "/auth/account", userID: uid.Hex(), role: "vendor",
		})
		assert.Equal(t, http.StatusOK, rec.Code)
		vendors.AssertExpectations(t)
	})

	t.Run("already gone", func(t *testing.T) {
		handler, users, _ := newAuthHandler(h)
		uid := primitive.NewObjectID()
		users.On("Delete", mock.Anything, uid).Return(repositories.ErrNotFound)

		rec, body := h.serve(t, handler.DeleteAccount, request{
			method: http.MethodDelete, target: "/auth/account", userID: uid.Hex(),
		})
		assert.Equal(t, http.StatusNotFound, rec.Code)
		assert.Equal(t, "USER_NOT_FOUND", body["code"])
	})
}
