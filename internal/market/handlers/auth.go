package handlers

import (
	"context"
	"errors"
	"net/http"
	"time"

	"github.com/anonto42/webapps/backend/internal/market/models"
	"github.com/anonto42/webapps/backend/internal/market/repositories"
	"github.com/anonto42/webapps/backend/internal/middleware"
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

// AuthHandler handles marketplace accounts
type AuthHandler struct {
	users       repositories.UserRepository
	vendors     repositories.VendorRepository
	tokens      *token.Manager
	mail        mailer.Mailer
	log         *logger.Logger
	frontendURL string
	cost        int
	now         func() time.Time
}

func NewAuthHandler(users repositories.UserRepository, vendors repositories.VendorRepository, tokens *token.Manager, mail mailer.Mailer, log *logger.Logger, frontendURL string) *AuthHandler {
	return &AuthHandler{
		users:       users,
		vendors:     vendors,
		tokens:      tokens,
		mail:        mail,
		log:         log,
		frontendURL: frontendURL,
		cost:        bcryptCost,
		now:         time.Now,
	}
}

func (h *AuthHandler) RegisterAuthRoutes(g *echo.Group, auth echo.MiddlewareFunc) {
	g.POST("/register", h.Register)
	g.POST("/login", h.Login)
	g.POST("/forgot-password", h.ForgotPassword)
	g.POST("/reset-password", h.ResetPassword)

	g.GET("/me", h.Me, auth)
	g.PUT("/profile", h.UpdateProfile, auth)
	g.PUT("/change-password", h.ChangePassword, auth)
	g.DELETE("/account", h.DeleteAccount, auth)
}

// CheckAccount rejects tokens of removed or deactivated accounts.
func (h *AuthHandler) CheckAccount(ctx context.Context, claims *token.Claims) *httperr.APIError {
	user, err := h.users.GetByID(ctx, claims.UserID)
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

func (h *AuthHandler) Register(c echo.Context) error {
	var req models.RegisterRequest
	if err := httperr.Bind(c, &req); err != nil {
		return err
	}
	ctx := c.Request().Context()

	hash, err := bcrypt.GenerateFromPassword([]byte(req.Password), h.cost)
	if err != nil {
		return httperr.Internal("REGISTRATION_ERROR", "Registration failed", err)
	}
	user := &models.User{Name: req.Name, Email: req.Email, Password: string(hash), Role: req.Role}
	if err := h.users.Create(ctx, user); err != nil {
		if errors.Is(err, repositories.ErrDuplicate) {
			return httperr.BadRequest("USER_EXISTS", "User already exists with this email")
		}
		return httperr.Internal("REGISTRATION_ERROR", "Registration failed", err)
	}

	tok, err := h.tokens.Issue(user.ID.Hex(), user.Email, user.Role)
	if err != nil {
		return httperr.Internal("REGISTRATION_ERROR", "Registration failed", err)
	}
	h.log.Info("marketplace account created", "user_id", user.ID.Hex(), "role", user.Role)

	return c.JSON(http.StatusCreated, echo.Map{
		"message": "User registered successfully",
		"token":   tok,
		"user":    user,
	})
}

func (h *AuthHandler) Login(c echo.Context) error {
	var req models.LoginRequest
	if err := httperr.Bind(c, &req); err != nil {
		return err
	}

	user, err := h.users.GetByEmail(c.Request().Context(), req.Email)
	if err != nil {
		if errors.Is(err, repositories.ErrNotFound) {
			return httperr.Unauthorized("INVALID_CREDENTIALS", "Invalid email or password")
		}
		return httperr.Internal("LOGIN_ERROR", "Login failed", err)
	}
	if bcrypt.CompareHashAndPassword([]byte(user.Password), []byte(req.Password)) != nil {
		return httperr.Unauthorized("INVALID_CREDENTIALS", "Invalid email or password")
	}
	if !user.IsActive {
		return httperr.Unauthorized("ACCOUNT_DEACTIVATED", "Account is deactivated")
	}

	tok, err := h.tokens.Issue(user.ID.Hex(), user.Email, user.Role)
	if err != nil {
		return httperr.Internal("LOGIN_ERROR", "Login failed", err)
	}
	return c.JSON(http.StatusOK, echo.Map{
		"message": "Login successful",
		"token":   tok,
		"user":    user,
	})
}

// Me returns the caller and, for vendors, their shop when one exists.
func (h *AuthHandler) Me(c echo.Context) error {
	ctx := c.Request().Context()
	user, err := h.users.GetByID(ctx, middleware.UserID(c))
	if err != nil {
		return lookupErr(err, "USER_NOT_FOUND", "User not found", "GET_USER_ERROR", "Failed to get user data")
	}

	resp := echo.Map{"user": user}
	if user.Role == models.RoleVendor {
		shop, err := h.vendors.GetByUser(ctx, user.ID)
		switch {
		case err == nil:
			resp["vendor"] = shop
		case !errors.Is(err, repositories.ErrNotFound):
			h.log.Warn("vendor profile lookup failed", "user_id", user.ID.Hex(), "error", err)
		}
	}
	return c.JSON(http.StatusOK, resp)
}

func (h *AuthHandler) UpdateProfile(c echo.Context) error {
	var req models.UpdateProfileRequest
	if err := httperr.Bind(c, &req); err != nil {
		return err
	}
	uid, err := callerID(c)
	if err != nil {
		return err
	}
	user, err := h.users.UpdateProfile(c.Request().Context(), uid, req)
	if err != nil {
		return lookupErr(err, "USER_NOT_FOUND", "User not found", "PROFILE_UPDATE_ERROR", "Server error updating profile")
	}
	return c.JSON(http.StatusOK, echo.Map{
		"message": "Profile updated successfully",
		"user":    user,
	})
}

func (h *AuthHandler) ChangePassword(c echo.Context) error {
	var req models.ChangePasswordRequest
	if err := httperr.Bind(c, &req); err != nil {
		return err
	}
	ctx := c.Request().Context()
	user, err := h.users.GetByID(ctx, middleware.UserID(c))
	if err != nil {
		return lookupErr(err, "USER_NOT_FOUND", "User not found", "PASSWORD_CHANGE_ERROR", "Server error changing password")
	}
	if bcrypt.CompareHashAndPassword([]byte(user.Password), []byte(req.CurrentPassword)) != nil {
		return httperr.BadRequest("INVALID_CURRENT_PASSWORD", "Current password is incorrect")
	}

	hash, err := bcrypt.GenerateFromPassword([]byte(req.NewPassword), h.cost)
	if err != nil {
		return httperr.Internal("PASSWORD_CHANGE_ERROR", "Server error changing password", err)
	}
	if err := h.users.SetPassword(ctx, user.ID, string(hash)); err != nil {
		return httperr.Internal("PASSWORD_CHANGE_ERROR", "Server error changing password", err)
	}
	return c.JSON(http.StatusOK, echo.Map{"message": "Password changed successfully"})
}

const forgotPasswordReply = "If an account with that email exists, a password reset link has been sent."

// ForgotPassword mails a single-use reset link. Unknown and deactivated
// emails get the same reply.
func (h *AuthHandler) ForgotPassword(c echo.Context) error {
	var req models.ForgotPasswordRequest
	if err := httperr.Bind(c, &req); err != nil {
		return err
	}
	ctx := c.Request().Context()

	user, err := h.users.GetByEmail(ctx, req.Email)
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

	msg := mailer.PasswordResetEmail("ArtisanMart", user.Email, user.Name, h.frontendURL+"/reset-password?token="+raw)
	go func() {
		ctx, cancel := context.WithTimeout(context.Background(), mailTimeout)
		defer cancel()
		if err := h.mail.Send(ctx, msg); err != nil {
			h.log.Warn("email delivery failed", "to", mailer.RedactEmail(msg.To), "error", err)
		}
	}()

	return c.JSON(http.StatusOK, echo.Map{"message": forgotPasswordReply})
}

func (h *AuthHandler) ResetPassword(c echo.Context) error {
	var req models.ResetPasswordRequest
	if err := httperr.Bind(c, &req); err != nil {
		return err
	}
	ctx := c.Request().Context()

	user, err := h.users.GetByResetToken(ctx, token.HashResetToken(req.Token), h.now())
	if err != nil {
		if errors.Is(err, repositories.ErrNotFound) {
			return httperr.BadRequest("INVALID_RESET_TOKEN", "Invalid or expired reset token")
		}
		return httperr.Internal("RESET_PASSWORD_ERROR", "Failed to reset password", err)
	}

	hash, err := bcrypt.GenerateFromPassword([]byte(req.NewPassword), h.cost)
	if err != nil {
		return httperr.Internal("RESET_PASSWORD_ERROR", "Failed to reset password", err)
	}
	if err := h.users.SetPassword(ctx, user.ID, string(hash)); err != nil {
		return httperr.Internal("RESET_PASSWORD_ERROR", "Failed to reset password", err)
	}
	return c.JSON(http.StatusOK, echo.Map{"message": "Password reset successfully"})
}

// DeleteAccount removes the caller. A vendor's shop is unapproved so its
// listings leave the storefront; orders and reviews keep their ids.
func (h *AuthHandler) DeleteAccount(c echo.Context) error {
	uid, err := callerID(c)
	if err != nil {
		return err
	}
	ctx := c.Request().Context()

	if middleware.Claims(c).Role == models.RoleVendor {
		shop, err := h.vendors.GetByUser(ctx, uid)
		switch {
		case err == nil:
			if _, err := h.vendors.SetApproved(ctx, shop.ID.Hex(), false); err != nil {
				h.log.Warn("failed to close vendor shop", "vendor_id", shop.ID.Hex(), "error", err)
			}
		case !errors.Is(err, repositories.ErrNotFound):
			h.log.Warn("vendor profile lookup failed", "user_id", uid.Hex(), "error", err)
		}
	}

	if err := h.users.Delete(ctx, uid); err != nil {
		return lookupErr(err, "USER_NOT_FOUND", "User not found", "DELETE_ACCOUNT_ERROR", "Server error")
	}
	h.log.Info("marketplace account deleted", "user_id", uid.Hex())
	return c.JSON(http.StatusOK, echo.Map{"message": "Account deleted successfully"})
}
