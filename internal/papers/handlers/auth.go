package handlers

import (
	"context"
	"errors"
	"net/http"
	"strconv"
	"strings"

	"github.com/anonto42/webapps/backend/internal/papers/models"
	"github.com/anonto42/webapps/backend/internal/papers/repositories"
	"github.com/anonto42/webapps/backend/pkg/httperr"
	"github.com/anonto42/webapps/backend/pkg/logger"
	"github.com/anonto42/webapps/backend/pkg/token"
	"github.com/labstack/echo/v4"
	"golang.org/x/crypto/bcrypt"
)

// AuthHandler handles portal sign-up, sign-in and profiles
type AuthHandler struct {
	users  repositories.UserRepository
	tokens *token.Manager
	log    *logger.Logger
	cost   int
}

func NewAuthHandler(users repositories.UserRepository, tokens *token.Manager, log *logger.Logger) *AuthHandler {
	return &AuthHandler{users: users, tokens: tokens, log: log, cost: bcryptCost}
}

func (h *AuthHandler) RegisterAuthRoutes(g *echo.Group, auth echo.MiddlewareFunc) {
	g.POST("/register", h.Register)
	g.POST("/login", h.Login)
	g.GET("/me", h.Me, auth)
}

// RegisterProfileRoutes registers /author/profile.
func (h *AuthHandler) RegisterProfileRoutes(g *echo.Group, authorOnly ...echo.MiddlewareFunc) {
	g.PUT("/profile", h.UpdateProfile, authorOnly...)
}

// CheckAccount rejects tokens of deleted accounts and of accounts whose role
// changed since the token was issued.
func (h *AuthHandler) CheckAccount(ctx context.Context, claims *token.Claims) *httperr.APIError {
	id, ok := parseID(claims.UserID)
	if !ok {
		return httperr.Unauthorized("INVALID_TOKEN", "Invalid token")
	}
	user, err := h.users.GetByID(ctx, id)
	if err != nil {
		if errors.Is(err, repositories.ErrNotFound) {
			return httperr.Unauthorized("USER_NOT_FOUND", "User not found")
		}
		return httperr.Internal("AUTH_ERROR", "Authentication failed", err)
	}
	if user.Role != claims.Role {
		return httperr.Unauthorized("INVALID_TOKEN", "Role has changed, please sign in again")
	}
	return nil
}

func (h *AuthHandler) issue(user *models.User) (string, error) {
	return h.tokens.Issue(strconv.FormatUint(uint64(user.ID), 10), user.Email, user.Role)
}

// Register opens an author or reviewer account. Admins are created by
// other admins or the seed command.
func (h *AuthHandler) Register(c echo.Context) error {
	var req models.RegisterRequest
	if err := httperr.Bind(c, &req); err != nil {
		return err
	}

	hash, err := bcrypt.GenerateFromPassword([]byte(req.Password), h.cost)
	if err != nil {
		return httperr.Internal("REGISTRATION_ERROR", "Registration failed", err)
	}
	user := &models.User{
		Name:        strings.TrimSpace(req.Name),
		Email:       req.Email,
		Password:    string(hash),
		Institution: strings.TrimSpace(req.Institution),
		Role:        req.Role,
	}
	if err := h.users.Create(c.Request().Context(), user); err != nil {
		if errors.Is(err, repositories.ErrDuplicate) {
			return httperr.BadRequest("USER_EXISTS", "An account with this email already exists")
		}
		return httperr.Internal("REGISTRATION_ERROR", "Registration failed", err)
	}

	tok, err := h.issue(user)
	if err != nil {
		return httperr.Internal("REGISTRATION_ERROR", "Registration failed", err)
	}
	h.log.Info("portal account created", "user_id", user.ID, "role", user.Role)

	return c.JSON(http.StatusCreated, echo.Map{
		"message": "Registration successful",
		"token":   tok,
		"user":    user,
	})
}

// Login needs the role the account was registered with.
func (h *AuthHandler) Login(c echo.Context) error {
	var req models.LoginRequest
	if err := httperr.Bind(c, &req); err != nil {
		return err
	}

	user, err := h.users.GetByEmail(c.Request().Context(), req.Email)
	if err != nil {
		if errors.Is(err, repositories.ErrNotFound) {
			return httperr.Unauthorized("INVALID_CREDENTIALS", "Invalid email, password or role")
		}
		return httperr.Internal("LOGIN_ERROR", "Login failed", err)
	}
	if bcrypt.CompareHashAndPassword([]byte(user.Password), []byte(req.Password)) != nil || user.Role != req.Role {
		return httperr.Unauthorized("INVALID_CREDENTIALS", "Invalid email, password or role")
	}

	tok, err := h.issue(user)
	if err != nil {
		return httperr.Internal("LOGIN_ERROR", "Login failed", err)
	}
	return c.JSON(http.StatusOK, echo.Map{
		"message": "Login successful",
		"token":   tok,
		"user":    user,
	})
}

func (h *AuthHandler) Me(c echo.Context) error {
	uid, err := callerID(c)
	if err != nil {
		return err
	}
	user, err := h.users.GetByID(c.Request().Context(), uid)
	if err != nil {
		return lookupErr(err, "USER_NOT_FOUND", "User not found", "GET_USER_ERROR", "Failed to get user data")
	}
	return c.JSON(http.StatusOK, echo.Map{"user": user})
}

func (h *AuthHandler) UpdateProfile(c echo.Context) error {
	var req models.ProfileRequest
	if err := httperr.Bind(c, &req); err != nil {
		return err
	}
	uid, err := callerID(c)
	if err != nil {
		return err
	}
	ctx := c.Request().Context()

	user, err := h.users.GetByID(ctx, uid)
	if err != nil {
		return lookupErr(err, "USER_NOT_FOUND", "User not found", "UPDATE_PROFILE_ERROR", "Failed to update profile")
	}
	user.Name = strings.TrimSpace(req.Name)
	user.Institution = strings.TrimSpace(req.Institution)
	if req.Password != "" {
		hash, err := bcrypt.GenerateFromPassword([]byte(req.Password), h.cost)
		if err != nil {
			return httperr.Internal("UPDATE_PROFILE_ERROR", "Failed to update profile", err)
		}
		user.Password = string(hash)
	}
	if err := h.users.Update(ctx, user); err != nil {
		return httperr.Internal("UPDATE_PROFILE_ERROR", "Failed to update profile", err)
	}
	return c.JSON(http.StatusOK, echo.Map{
		"message": "Profile updated successfully",
		"user":    user,
	})
}
