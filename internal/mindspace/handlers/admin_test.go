package handlers

import (
	"net/http"
	"strings"
	"testing"
	"time"

	"github.com/anonto42/webapps/backend/internal/mindspace/models"
	"github.com/anonto42/webapps/backend/internal/mindspace/repositories"
	"github.com/anonto42/webapps/backend/pkg/ai"
	"github.com/anonto42/webapps/backend/pkg/logger"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"go.mongodb.org/mongo-driver/bson/primitive"
)

type adminMocks struct {
	admin     *MockAdminRepository
	community *MockCommunityRepository
	users     *MockUserRepository
	prompts   *MockPromptRepository
	assistant *MockAssistant
}

func newAdminHandler() (*AdminHandler, adminMocks) {
	m := adminMocks{
		admin:     new(MockAdminRepository),
		community: new(MockCommunityRepository),
		users:     new(MockUserRepository),
		prompts:   new(MockPromptRepository),
		assistant: new(MockAssistant),
	}
	h := NewAdminHandler(m.admin, m.community, m.users, m.prompts, m.assistant, nil, logger.NewNop())
	h.now = func() time.Time { return fixedNow }
	return h, m
}

func TestUpdateUserStatus_CannotDeactivateSelf(t *testing.T) {
	h := newHarness()
	handler, m := newAdminHandler()
	admin := primitive.NewObjectID().Hex()

	rec, body := h.serve(t, handler.UpdateUserStatus, request{
		method: http.MethodPut,
		target: "/api/admin/users/" + admin + "/status",
		body:   `{"isActive":false}`,
		userID: admin,
		role:   models.RoleAdmin,
		params: []string{"id", admin},
	})

	assert.Equal(t, http.StatusBadRequest, rec.Code)
	assert.Equal(t, "CANNOT_DEACTIVATE_SELF", body["code"])
	m.users.AssertNotCalled(t, "SetActive", mock.Anything, mock.Anything, mock.Anything)
}

func TestUpdateUserStatus(t *testing.T) {
	h := newHarness()
	handler, m := newAdminHandler()
	target := primitive.NewObjectID()
	m.users.On("SetActive", mock.Anything, target.Hex(), false).Return(&models.User{ID: target}, nil)

	rec, body := h.serve(t, handler.UpdateUserStatus, request{
		method: http.MethodPut,
		target: "/api/admin/users/" + target.Hex() + "/status",
		body:   `{"isActive":false}`,
		userID: primitive.NewObjectID().Hex(),
		role:   models.RoleAdmin,
		params: []string{"id", target.Hex()},
	})

	assert.Equal(t, http.StatusOK, rec.Code)
	assert.Equal(t, "User deactivated successfully", body["message"])
}

func TestUpdateUserStatus_MissingFlag(t *testing.T) {
	h := newHarness()
	handler, _ := newAdminHandler()
	target := primitive.NewObjectID().Hex()

	rec, body := h.serve(t, handler.UpdateUserStatus, request{
		method: http.MethodPut,
		target: "/api/admin/users/" + target + "/status",
		body:   `{}`,
		userID: primitive.NewObjectID().Hex(),
		role:   models.RoleAdmin,
		params: []string{"id", target},
	})

	assert.Equal(t, http.StatusBadRequest, rec.Code)
	assert.Equal(t, "INVALID_STATUS", body["code"])
}

func TestDeleteContent(t *testing.T) {
	id := primitive.NewObjectID().Hex()
	tests := []struct {
		name   string
		kind   string
		setup  func(m adminMocks)
		status int
		code   string
	}{
		{name: "unknown type", kind: "video", setup: func(adminMocks) {}, status: http.StatusBadRequest, code: "CONTENT_TYPE_REQUIRED"},
		{
			name: "missing journal",
			kind: "journal",
			setup: func(m adminMocks) {
				m.admin.On("DeleteJournal", mock.Anything, id).Return(repositories.ErrNotFound)
			},
			status: http.StatusNotFound,
			code:   "CONTENT_NOT_FOUND",
		},
		{
			name: "prompt removed",
			kind: "prompt",
			setup: func(m adminMocks) {
				m.prompts.On("DeletePrompt", mock.Anything, id).Return(nil)
			},
			status: http.StatusOK,
		},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			h := newHarness()
			handler, m := newAdminHandler()
			tt.setup(m)

			rec, body := h.serve(t, handler.DeleteContent, request{
				method: http.MethodDelete,
				target: "/api/admin/content/" + tt.kind + "/" + id,
				userID: primitive.NewObjectID().Hex(),
				role:   models.RoleAdmin,
				params: []string{"type", tt.kind, "id", id},
			})

			assert.Equal(t, tt.status, rec.Code)
			if tt.code != "" {
				assert.Equal(t, tt.code, body["code"])
				return
			}
			deleted := body["deletedContent"].(map[string]interface{})
			assert.Equal(t, id, deleted["id"])
			assert.Equal(t, tt.kind, deleted["type"])
		})
	}
}

func TestExport_UsersCSV(t *testing.T) {
	h := newHarness()
	handler, m := newAdminHandler()
	m.admin.On("ExportUsers", mock.Anything, mock.Anything).Return([]models.User{
		{ID: primitive.NewObjectID(), Name: "Jane", Email: "jane@example.com", Role: models.RoleUser, IsActive: true, CreatedAt: fixedNow},
	}, nil)

	rec, _ := h.serve(t, handler.Export, request{
		method: http.MethodGet,
		target: "/api/admin/export?type=users&format=csv&period=weekly",
		userID: primitive.NewObjectID().Hex(),
		role:   models.RoleAdmin,
	})

	assert.Equal(t, http.StatusOK, rec.Code)
	assert.Equal(t, `attachment; filename="mindspace-users-weekly-2024-06-15.csv"`, rec.Header().Get("Content-Disposition"))
	lines := strings.Split(strings.TrimSpace(rec.Body.String()), "\n")
	assert.Len(t, lines, 2)
	assert.Equal(t, "id,name,email,role,isActive,currentStreak,longestStreak,lastLogin,createdAt", lines[0])
	assert.Contains(t, lines[1], "jane@example.com")
}

func TestExport_Validation(t *testing.T) {
	h := newHarness()
	handler, _ := newAdminHandler()

	rec, body := h.serve(t, handler.Export, request{method: http.MethodGet, target: "/api/admin/export?type=users&format=xml"})
	assert.Equal(t, http.StatusBadRequest, rec.Code)
	assert.Equal(t, "INVALID_FORMAT", body["code"])

	rec, body = h.serve(t, handler.Export, request{method: http.MethodGet, target: "/api/admin/export?type=insights"})
	assert.Equal(t, http.StatusBadRequest, rec.Code)
	assert.Equal(t, "EXPORT_TYPE_REQUIRED", body["code"])
}

func TestDashboard_Overview(t *testing.T) {
	h := newHarness()
	handler, m := newAdminHandler()
	m.community.On("CountUsers", mock.Anything, mock.MatchedBy(func(f models.UserCountFilter) bool {
		return f.ActiveOnly && f.WroteSince == nil && f.CreatedSince == nil
	})).Return(int64(5), nil)
	m.community.On("CountUsers", mock.Anything, mock.MatchedBy(func(f models.UserCountFilter) bool {
		return f.WroteSince != nil
	})).Return(int64(2), nil)
	m.community.On("CountUsers", mock.Anything, mock.MatchedBy(func(f models.UserCountFilter) bool {
		return f.CreatedSince != nil
	})).Return(int64(1), nil)
	m.community.On("CountEntries", mock.Anything, mock.Anything, false).Return(int64(10), nil)
	m.community.On("MoodDistribution", mock.Anything, mock.Anything, int64(0)).Return([]models.MoodStat{}, nil)
	m.admin.On("CountPrompts", mock.Anything, false).Return(int64(7), nil)
	m.admin.On("DailyGrowth", mock.Anything, mock.Anything, mock.Anything).Return([]models.DayCount{}, nil)
	m.prompts.On("PopularPrompts", mock.Anything, int64(10)).Return([]models.Prompt{}, nil)
	m.assistant.On("CheckHealth", mock.Anything).Return(ai.Health{IsRunning: false})

	rec, body := h.serve(t, handler.Dashboard, request{
		method: http.MethodGet,
		target: "/api/admin/dashboard",
		userID: primitive.NewObjectID().Hex(),
		role:   models.RoleAdmin,
	})

	assert.Equal(t, http.StatusOK, rec.Code)
	overview := body["overview"].(map[string]interface{})
	assert.EqualValues(t, 40, overview["userRetentionRate"])
	assert.EqualValues(t, 5, overview["avgEntriesPerUser"])
	assert.EqualValues(t, 7, overview["totalPrompts"])
	health := body["systemHealth"].(map[string]interface{})
	assert.Equal(t, "unavailable", health["aiService"])
	m.admin.AssertNumberOfCalls(t, "DailyGrowth", 2)
}
