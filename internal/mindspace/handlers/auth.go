package handlers

import (
	"context"
	"errors"
	"net/http"
	"time"

	"github.com/anonto42/webapps/backend/internal/middleware"
	"github.com/anonto42/webapps/backend/internal/mindspace/models"
	"github.com/anonto42/webapps/backend/internal/mindspace/repositories"
	"github.com/anonto42/webapps/backend/pkg/httperr"
	"github.com/anonto42/webapps/backend/pkg/logger"
	"github.com/anonto42/webapps/backend/pkg/mailer"
	"github.com/anonto42/webapps/backend/pkg/token"
	"github.com/labstack/echo/v4"
	"golang.org/x/crypto/bcrypt"
)

const (
	bcryptCost    = 12
	resetTokenTTL = 10 * time.Minute
	mailTimeout   = 30 * time.Second
)

// AuthHandler handles account and session requests
type AuthHandler struct {
	users       repositories.UserRepository
	tokens      *token.Manager
	mail        mailer.Mailer
	log         *logger.Logger
	frontendURL string
	now         func() time.Time
}

// NewAuthHandler creates a new AuthHandler
func NewAuthHandler(users repositories.UserRepository, tokens *token.Manager, mail mailer.Mailer, log *logger.Logger, frontendURL string) *AuthHandler {
	return &AuthHandler{
		users:       users,
		tokens:      tokens,
		mail:        mail,
		log:         log,
		frontendURL: frontendURL,
		now:         time.Now,
	}
}

// RegisterAuthRoutes registers the /auth routes. auth guards session routes and
// google verifies Firebase ID tokens.
func (h *AuthHandler) RegisterAuthRoutes(g *echo.Group, auth, google echo.MiddlewareFunc) {
	g.POST("/register", h.Register)
	g.POST("/login", h.Login)
	g.POST("/google", h.GoogleLogin, google)
	g.POST("/forgot-password", h.ForgotPassword)
	g.POST("/reset-password", h.ResetPassword)

	g.GET("/me", h.Me, auth)
	g.PUT("/profile", h.UpdateProfile, auth)
	g.PUT("/change-password", h.ChangePassword, auth)
	g.POST("/deactivate", h.Deactivate, auth)
	g.GET("/verify-token", h.VerifyToken, auth)
}

// CheckAccount rejects tokens of deleted or deactivated accounts.
func (h *AuthHandler) CheckAccount(ctx context.Context, claims *token.Claims) *httperr.APIError {
	user, err := h.users.GetUserByID(ctx, claims.UserID)
	if err != nil {
		if errors.Is(err, repositories.ErrNotFound) {
			return httperr.Unauthorized("USER_NOT_FOUND", "User not found")
		}
		return httperr.Internal("AUTH_ERROR", "Authentication failed", err)
	}
	if !user.IsActive {
		return httperr.Unauthorized("ACCOUNT_DEACTIVATED", "Account is deactivated")
	}
	return nil
}

func (h *AuthHandler) issue(user *models.User) (string, error) {
	return h.tokens.Issue(user.ID.Hex(), user.Email, user.Role)
}

func (h *AuthHandler) currentUser(c echo.Context) (*models.User, error) {
	user, err := h.users.GetUserByID(c.Request().Context(), middleware.UserID(c))
	if err != nil {
		if errors.Is(err, repositories.ErrNotFound) {
			return nil, httperr.NotFound("USER_NOT_FOUND", "User not found")
		}
		return nil, httperr.Internal("GET_USER_ERROR", "Failed to get user data", err)
	}
	return user, nil
}

// Register creates a password account and sends a welcome email in the background.
func (h *AuthHandler) Register(c echo.Context) error {
	var req models.RegisterRequest
	if err := httperr.Bind(c, &req); err != nil {
		return err
	}
	ctx := c.Request().Context()

	if _, err := h.users.GetUserByEmail(ctx, req.Email); err == nil {
		return httperr.BadRequest("USER_EXISTS", "User already exists with this email")
	} else if !errors.Is(err, repositories.ErrNotFound) {
		return httperr.Internal("REGISTRATION_ERROR", "Registration failed", err)
	}

	hash, err := bcrypt.GenerateFromPassword([]byte(req.Password), bcryptCost)
	if err != nil {
		return httperr.Internal("REGISTRATION_ERROR", "Registration failed", err)
	}

	user := &models.User{
		Name:        req.Name,
		Email:       req.Email,
		Password:    string(hash),
		Role:        models.RoleUser,
		Preferences: models.DefaultPreferences(),
		IsActive:    true,
	}
	if err := h.users.CreateUser(ctx, user); err != nil {
		if errors.Is(err, repositories.ErrDuplicate) {
			return httperr.BadRequest("USER_EXISTS", "User already exists with this email")
		}
		return httperr.Internal("REGISTRATION_ERROR", "Registration failed", err)
	}

	tok, err := h.issue(user)
	if err != nil {
		return httperr.Internal("REGISTRATION_ERROR", "Registration failed", err)
	}

	h.sendAsync(mailer.WelcomeEmail(user.Email, user.Name, h.frontendURL))

	return c.JSON(http.StatusCreated, echo.Map{
		"message": "User registered successfully",
		"token":   tok,
		"user":    user.Profile(),
	})
}

func (h *AuthHandler) sendAsync(msg mailer.Message) {
	go func() {
		ctx, cancel := context.WithTimeout(context.Background(), mailTimeout)
		defer cancel()
		if err := h.mail.Send(ctx, msg); err != nil {
			h.log.Warn("email delivery failed", "to", mailer.RedactEmail(msg.To), "subject", msg.Subject, "error", err)
		}
	}()
}

func (h *AuthHandler) Login(c echo.Context) error {
	var req models.LoginRequest
	if err := httperr.Bind(c, &req); err != nil {
		return err
	}
	ctx := c.Request().Context()

	user, err := h.users.GetUserByEmail(ctx, req.Email)
	if err != nil {
		if errors.Is(err, repositories.ErrNotFound) {
			return httperr.Unauthorized("INVALID_CREDENTIALS", "Invalid email or password")
		}
		return httperr.Internal("LOGIN_ERROR", "Login failed", err)
	}
	if !user.IsActive {
		return httperr.Unauthorized("ACCOUNT_DEACTIVATED", "Account is deactivated")
	}
	if user.Password == "" || bcrypt.CompareHashAndPassword([]byte(user.Password), []byte(req.Password)) != nil {
		return httperr.Unauthorized("INVALID_CREDENTIALS", "Invalid email or password")
	}

	now := h.now()
	if err := h.users.SetLastLogin(ctx, user.ID, now); err != nil {
		h.log.Warn("failed to record last login", "user_id", user.ID.Hex(), "error", err)
	}
	user.LastLogin = &now

	tok, err := h.issue(user)
	if err != nil {
		return httperr.Internal("LOGIN_ERROR", "Login failed", err)
	}
	return c.JSON(http.StatusOK, echo.Map{
		"message": "Login successful",
		"token":   tok,
		"user":    user.Profile(),
	})
}

// GoogleLogin links a verified Firebase identity to an account, creating one
// on first sign-in.
func (h *AuthHandler) GoogleLogin(c echo.Context) error {
	identity, ok := middleware.FirebaseIdentity(c)
	if !ok {
		return httperr.Unauthorized("INVALID_TOKEN", "Invalid or expired ID token")
	}
	ctx := c.Request().Context()

	user, err := h.users.GetUserByGoogleID(ctx, identity.UID)
	if errors.Is(err, repositories.ErrNotFound) && identity.Email != "" {
		user, err = h.users.GetUserByEmail(ctx, identity.Email)
		if err == nil {
			user.GoogleID = identity.UID
			if user.Avatar == "" {
				user.Avatar = identity.Picture
			}
			err = h.users.UpdateUser(ctx, user)
		}
	}
	if errors.Is(err, repositories.ErrNotFound) {
		var req models.GoogleLoginRequest
		_ = c.Bind(&req)
		name := identity.Name
		if name == "" {
			name = req.Name
		}
		user = &models.User{
			Name:        name,
			Email:       identity.Email,
			GoogleID:    identity.UID,
			Avatar:      identity.Picture,
			Role:        models.RoleUser,
			Preferences: models.DefaultPreferences(),
			IsActive:    true,
		}
		err = h.users.CreateUser(ctx, user)
	}
	if err != nil {
		return httperr.Internal("GOOGLE_AUTH_ERROR", "Google sign-in failed", err)
	}
	if !user.IsActive {
		return httperr.Unauthorized("ACCOUNT_DEACTIVATED", "Account is deactivated")
	}

	now := h.now()
	_ = h.users.SetLastLogin(ctx, user.ID, now)

	tok, err := h.issue(user)
	if err != nil {
		return httperr.Internal("GOOGLE_AUTH_ERROR", "Google sign-in failed", err)
	}
	return c.JSON(http.StatusOK, echo.Map{
		"message": "Login successful",
		"token":   tok,
		"user":    user.Profile(),
	})
}

func (h *AuthHandler) Me(c echo.Context) error {
	user, err := h.currentUser(c)
	if err != nil {
		return err
	}
	return c.JSON(http.StatusOK, echo.Map{"user": user.Profile()})
}

func (h *AuthHandler) UpdateProfile(c echo.Context) error {
	var req models.UpdateProfileRequest
	if err := httperr.Bind(c, &req); err != nil {
		return err
	}
	user, err := h.currentUser(c)
	if err != nil {
		return err
	}

	if req.Name != nil {
		user.Name = *req.Name
	}
	if req.Avatar != nil {
		user.Avatar = *req.Avatar
	}
	if req.Preferences != nil {
		user.Preferences = *req.Preferences
	}
	if err := h.users.UpdateUser(c.Request().Context(), user); err != nil {
		return httperr.Internal("PROFILE_UPDATE_ERROR", "Failed to update profile", err)
	}
	return c.JSON(http.StatusOK, echo.Map{
		"message": "Profile updated successfully",
		"user":    user.Profile(),
	})
}

func (h *AuthHandler) ChangePassword(c echo.Context) error {
	var req models.ChangePasswordRequest
	if err := httperr.Bind(c, &req); err != nil {
		return err
	}
	user, err := h.currentUser(c)
	if err != nil {
		return err
	}
	if user.Password == "" || bcrypt.CompareHashAndPassword([]byte(user.Password), []byte(req.CurrentPassword)) != nil {
		return httperr.BadRequest("INVALID_CURRENT_PASSWORD", "Current password is incorrect")
	}

	hash, err := bcrypt.GenerateFromPassword([]byte(req.NewPassword), bcryptCost)
	if err != nil {
		return httperr.Internal("PASSWORD_CHANGE_ERROR", "Failed to change password", err)
	}
	user.Password = string(hash)
	if err := h.users.UpdateUser(c.Request().Context(), user); err != nil {
		return httperr.Internal("PASSWORD_CHANGE_ERROR", "Failed to change password", err)
	}
	return c.JSON(http.StatusOK, echo.Map{"message": "Password changed successfully"})
}

// Deactivate disables the caller's account. Password accounts must confirm
// with their password.
func (h *AuthHandler) Deactivate(c echo.Context) error {
	var req models.DeactivateRequest
	if err := c.Bind(&req); err != nil {
		return httperr.BadRequest("INVALID_PAYLOAD", "Invalid request payload")
	}
	user, err := h.currentUser(c)
	if err != nil {
		return err
	}
	if user.Password != "" {
		if req.Password == "" {
			return httperr.BadRequest("PASSWORD_REQUIRED", "Password is required to deactivate account")
		}
		if bcrypt.CompareHashAndPassword([]byte(user.Password), []byte(req.Password)) != nil {
			return httperr.BadRequest("INVALID_PASSWORD", "Password is incorrect")
		}
	}
	if _, err := h.users.SetActive(c.Request().Context(), user.ID.Hex(), false); err != nil {
		return httperr.Internal("DEACTIVATION_ERROR", "Failed to deactivate account", err)
	}
	return c.JSON(http.StatusOK, echo.Map{"message": "Account deactivated successfully"})
}

func (h *AuthHandler) VerifyToken(c echo.Context) error {
	claims := middleware.Claims(c)
	return c.JSON(http.StatusOK, echo.Map{
		"valid": true,
		"user": echo.Map{
			"id":    claims.UserID,
			"email": claims.Email,
			"role":  claims.Role,
		},
	})
}

const forgotPasswordReply = "If an account with that email exists, a password reset link has been sent."

// ForgotPassword stores a hashed single-use token and mails the raw token.
// The reply never reveals whether the email is registered.
func (h *AuthHandler) ForgotPassword(c echo.Context) error {
	var req models.ForgotPasswordRequest
	if err := httperr.Bind(c, &req); err != nil {
		return err
	}
	ctx := c.Request().Context()

	user, err := h.users.GetUserByEmail(ctx, req.Email)
	if err != nil {
		if !errors.Is(err, repositories.ErrNotFound) {
			h.log.Error("forgot password lookup failed", "error", err)
		}
		return c.JSON(http.StatusOK, echo.Map{"message": forgotPasswordReply})
	}
	if !user.IsActive {
		return c.JSON(http.StatusOK, echo.Map{"message": forgotPasswordReply})
	}

	raw, hash, err := token.NewResetToken()
	if err != nil {
		return httperr.Internal("FORGOT_PASSWORD_ERROR", "Failed to process password reset request", err)
	}
	if err := h.users.SetResetToken(ctx, user.ID, hash, h.now().Add(resetTokenTTL)); err != nil {
		return httperr.Internal("FORGOT_PASSWORD_ERROR", "Failed to process password reset request", err)
	}

	resetURL := h.frontendURL + "/reset-password?token=" + raw
	h.sendAsync(mailer.PasswordResetEmail("MindSpace", user.Email, user.Name, resetURL))

	return c.JSON(http.StatusOK, echo.Map{"message": forgotPasswordReply})
}

func (h *AuthHandler) ResetPassword(c echo.Context) error {
	var req models.ResetPasswordRequest
	if err := httperr.Bind(c, &req); err != nil {
		return err
	}
	ctx := c.Request().Context()

	user, err := h.users.GetUserByResetToken(ctx, token.HashResetToken(req.Token), h.now())
	if err != nil {
		if errors.Is(err, repositories.ErrNotFound) {
			return httperr.BadRequest("INVALID_RESET_TOKEN", "Invalid or expired reset token")
		}
		return httperr.Internal("RESET_PASSWORD_ERROR", "Failed to reset password", err)
	}

	hash, err := bcrypt.GenerateFromPassword([]byte(req.Password), bcryptCost)
	if err != nil {
		return httperr.Internal("RESET_PASSWORD_ERROR", "Failed to reset password", err)
	}
	user.Password = string(hash)
	user.ResetPasswordToken = ""
	user.ResetPasswordExpires = nil
	if err := h.users.UpdateUser(ctx, user); err != nil {
		return httperr.Internal("RESET_PASSWORD_ERROR", "Failed to reset password", err)
	}
	return c.JSON(http.StatusOK, echo.Map{"message": "Password reset successfully. You can now log in with your new password."})
}
