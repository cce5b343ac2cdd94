package handler

import (
	"context"
	"errors"
	"fmt"
	"log"
	"net/http"
	"strings"
	"time"

	"github.com/labstack/echo/v4"

	"github.com/arunprasath/shopcart/internal/config"
	"github.com/arunprasath/shopcart/internal/model"
	"github.com/arunprasath/shopcart/internal/repository"
	"github.com/arunprasath/shopcart/internal/storage"
	"github.com/arunprasath/shopcart/internal/utils"
)

// MailSender is the slice of the mailer the auth flows need.
type MailSender interface {
	SendOTP(to, subject, otp string) error
	SendReset(to, subject, resetURL string) error
}

// AuthHandler bundles dependencies for registration, the OTP
// verification state machine, sessions, password recovery and the admin
// user management endpoints.
type AuthHandler struct {
	Cfg     config.Config
	Users   repository.UserStore
	Mail    MailSender
	Uploads *storage.Store
}

func NewAuthHandler(cfg config.Config, users repository.UserStore, mail MailSender, uploads *storage.Store) *AuthHandler {
	return &AuthHandler{Cfg: cfg, Users: users, Mail: mail, Uploads: uploads}
}

// ----- DTOs -----

type registerReq struct {
	Name     string `json:"name" form:"name" validate:"required"`
	Email    string `json:"email" form:"email" validate:"required,email"`
	Password string `json:"password" form:"password" validate:"required,min=6,max=25"`
}

type verifyOTPReq struct {
	Email string `json:"email" validate:"required,email"`
	OTP   string `json:"otp" validate:"required,len=6,numeric"`
}

type emailReq struct {
	Email string `json:"email" validate:"required,email"`
}

type loginReq struct {
	Email    string `json:"email" validate:"required,email"`
	Password string `json:"password" validate:"required"`
}

type resetPasswordReq struct {
	Password        string `json:"password" validate:"required,min=6,max=25"`
	ConfirmPassword string `json:"confirmPassword" validate:"required"`
}

type changePasswordReq struct {
	OldPassword string `json:"oldPassword" validate:"required"`
	Password    string `json:"password" validate:"required,min=6,max=25"`
}

// Register creates an unverified account and emails a 6-digit OTP valid
// for five minutes. Re-registering an unverified email regenerates the
// OTP when the previous one expired; a verified email is rejected as a
// duplicate.
func (h *AuthHandler) Register(c echo.Context) error {
	var req registerReq
	if err := c.Bind(&req); err != nil {
		return apiError(c, http.StatusBadRequest, "Invalid request body")
	}
	if err := c.Validate(&req); err != nil {
		return err
	}
	email := strings.ToLower(strings.TrimSpace(req.Email))

	ctx, cancel := reqCtx(c)
	defer cancel()

	existing, err := h.Users.GetByEmail(ctx, email)
	switch {
	case err == nil && existing.IsVerified:
		return apiError(c, http.StatusBadRequest, "User already exists and verified. Please login.")
	case err == nil:
		// Unverified account: hand out a fresh OTP only once the old
		// one has expired, so mail volume stays bounded.
		if existing.OTPExpire != nil && time.Now().After(*existing.OTPExpire) {
			if err := h.issueOTP(ctx, existing, "New Verify OTP For Your Email"); err != nil {
				return err
			}
			return c.JSON(http.StatusOK, echo.Map{
				"success": true,
				"email":   email,
				"message": "Previous OTP expired. New OTP sent to your email.",
			})
		}
		return c.JSON(http.StatusOK, echo.Map{
			"success": true,
			"email":   email,
			"message": "Already registered but not verified. Please check your email for OTP.",
		})
	case !errors.Is(err, repository.ErrNotFound):
		return err
	}

	// Write the avatar only once the account is known to be new, so a
	// rejected registration leaves nothing behind on disk.
	avatar := ""
	if fh, err := c.FormFile("avatar"); err == nil && fh != nil {
		url, err := h.Uploads.Save(fh, storage.AvatarDir)
		if err != nil {
			return fmt.Errorf("save avatar: %w", err)
		}
		avatar = url
	}

	hash, err := utils.HashPassword(req.Password, h.Cfg.BcryptCost)
	if err != nil {
		return fmt.Errorf("hash password: %w", err)
	}
	user := &model.User{
		Name:         strings.TrimSpace(req.Name),
		Email:        email,
		PasswordHash: hash,
		Avatar:       avatar,
		Role:         model.RoleUser,
	}
	if err := h.Users.Create(ctx, user); err != nil {
		if errors.Is(err, repository.ErrEmailExists) {
			return apiError(c, http.StatusBadRequest, "Duplicate email error")
		}
		return err
	}
	if err := h.issueOTP(ctx, user, "Verify Your Email - OTP"); err != nil {
		return err
	}

	return c.JSON(http.StatusCreated, echo.Map{
		"success": true,
		"email":   email,
		"message": "Registered successfully. Please verify OTP sent to your email.",
	})
}

// VerifyOTP confirms email ownership. A correct, unexpired OTP marks
// the user verified exactly once, clears the transient OTP fields and
// opens a session.
func (h *AuthHandler) VerifyOTP(c echo.Context) error {
	var req verifyOTPReq
	if err := c.Bind(&req); err != nil {
		return apiError(c, http.StatusBadRequest, "Invalid request body")
	}
	if err := c.Validate(&req); err != nil {
		return err
	}

	ctx, cancel := reqCtx(c)
	defer cancel()

	user, err := h.Users.GetByEmail(ctx, req.Email)
	if err != nil {
		return notFoundOr(c, err, http.StatusNotFound, "User not found")
	}
	if user.IsVerified {
		return apiError(c, http.StatusBadRequest, "User already verified")
	}
	if !user.OTPValid(req.OTP, time.Now()) {
		return apiError(c, http.StatusBadRequest, "Invalid or expired OTP")
	}

	user.IsVerified = true
	user.ClearOTP()
	user.LastSeen = time.Now().UTC()
	if err := h.Users.Save(ctx, user); err != nil {
		return err
	}
	return h.sendToken(c, user, http.StatusOK)
}

// ResendOTP regenerates the verification code for an unverified account.
func (h *AuthHandler) ResendOTP(c echo.Context) error {
	var req emailReq
	if err := c.Bind(&req); err != nil {
		return apiError(c, http.StatusBadRequest, "Invalid request body")
	}
	if err := c.Validate(&req); err != nil {
		return err
	}

	ctx, cancel := reqCtx(c)
	defer cancel()

	user, err := h.Users.GetByEmail(ctx, req.Email)
	if err != nil {
		return notFoundOr(c, err, http.StatusNotFound, "User not found")
	}
	if user.IsVerified {
		return apiError(c, http.StatusBadRequest, "User already verified. Please login.")
	}
	if err := h.issueOTP(ctx, user, "Resend OTP - Verify Your Email"); err != nil {
		return err
	}
	return c.JSON(http.StatusOK, echo.Map{
		"success": true,
		"message": "New OTP sent to your email.",
	})
}

// Login verifies credentials and opens a session. Unverified accounts
// are turned away: the OTP gate is enforced here, before any session
// exists.
func (h *AuthHandler) Login(c echo.Context) error {
	var req loginReq
	if err := c.Bind(&req); err != nil {
		return apiError(c, http.StatusBadRequest, "Invalid request body")
	}
	if err := c.Validate(&req); err != nil {
		return err
	}

	ctx, cancel := reqCtx(c)
	defer cancel()

	user, err := h.Users.GetByEmail(ctx, req.Email)
	if err != nil {
		if errors.Is(err, repository.ErrNotFound) {
			return apiError(c, http.StatusUnauthorized, "Invalid Email And Password")
		}
		return err
	}
	if !utils.VerifyPassword(user.PasswordHash, req.Password) {
		return apiError(c, http.StatusUnauthorized, "Invalid Email And Password")
	}
	if !user.IsVerified {
		return apiError(c, http.StatusUnauthorized, "Please verify your email before logging in")
	}

	user.LastSeen = time.Now().UTC()
	if err := h.Users.Save(ctx, user); err != nil {
		return err
	}
	return h.sendToken(c, user, http.StatusCreated)
}

// Logout clears the session cookie.
func (h *AuthHandler) Logout(c echo.Context) error {
	c.SetCookie(&http.Cookie{
		Name:     "token",
		Value:    "",
		Path:     "/",
		Expires:  time.Unix(0, 0),
		HttpOnly: true,
	})
	return c.JSON(http.StatusOK, echo.Map{"success": true, "message": "Logout success"})
}

// ForgotPassword emails a single-use reset link. Only the SHA-256
// digest of the token is stored; when the mail cannot be sent the
// token is rolled back so the account is not left with a dangling
// pending reset.
func (h *AuthHandler) ForgotPassword(c echo.Context) error {
	var req emailReq
	if err := c.Bind(&req); err != nil {
		return apiError(c, http.StatusBadRequest, "Invalid request body")
	}
	if err := c.Validate(&req); err != nil {
		return err
	}

	ctx, cancel := reqCtx(c)
	defer cancel()

	user, err := h.Users.GetByEmail(ctx, req.Email)
	if err != nil {
		return notFoundOr(c, err, http.StatusNotFound, "User not found with this email")
	}

	raw, digest, err := utils.NewResetToken()
	if err != nil {
		return fmt.Errorf("generate reset token: %w", err)
	}
	expire := time.Now().UTC().Add(utils.ResetTokenTTL)
	user.ResetPasswordToken = digest
	user.ResetTokenExpire = &expire
	if err := h.Users.Save(ctx, user); err != nil {
		return err
	}

	resetURL := fmt.Sprintf("%s/password/reset/%s", strings.TrimRight(h.Cfg.FrontendURL, "/"), raw)
	if err := h.Mail.SendReset(user.Email, "ShopCart Password Recovery", resetURL); err != nil {
		user.ClearResetToken()
		if saveErr := h.Users.Save(ctx, user); saveErr != nil {
			log.Printf("auth: rollback reset token failed: %v", saveErr)
		}
		return apiError(c, http.StatusInternalServerError, "Could not send recovery email")
	}

	return c.JSON(http.StatusOK, echo.Map{
		"success": true,
		"message": fmt.Sprintf("Email sent to %s", user.Email),
	})
}

// ResetPassword consumes a reset token: it must hash to a stored,
// unexpired digest. The token is cleared on use and a session opened.
func (h *AuthHandler) ResetPassword(c echo.Context) error {
	var req resetPasswordReq
	if err := c.Bind(&req); err != nil {
		return apiError(c, http.StatusBadRequest, "Invalid request body")
	}
	if err := c.Validate(&req); err != nil {
		return err
	}
	if req.Password != req.ConfirmPassword {
		return apiError(c, http.StatusBadRequest, "Password does not match")
	}

	ctx, cancel := reqCtx(c)
	defer cancel()

	user, err := h.Users.GetByResetToken(ctx, utils.HashResetToken(c.Param("token")))
	if err != nil {
		return notFoundOr(c, err, http.StatusBadRequest, "Password reset token is invalid or expired")
	}

	hash, err := utils.HashPassword(req.Password, h.Cfg.BcryptCost)
	if err != nil {
		return fmt.Errorf("hash password: %w", err)
	}
	user.PasswordHash = hash
	user.ClearResetToken()
	if err := h.Users.Save(ctx, user); err != nil {
		return err
	}
	return h.sendToken(c, user, http.StatusCreated)
}

// Profile returns the authenticated user and stamps lastSeen.
func (h *AuthHandler) Profile(c echo.Context) error {
	uid, err := getUserID(c)
	if err != nil {
		return apiError(c, http.StatusUnauthorized, "Unauthorized")
	}

	ctx, cancel := reqCtx(c)
	defer cancel()

	user, err := h.Users.GetByID(ctx, uid)
	if err != nil {
		return notFoundOr(c, err, http.StatusNotFound, "User not found")
	}
	user.LastSeen = time.Now().UTC()
	if err := h.Users.Save(ctx, user); err != nil {
		return err
	}
	return c.JSON(http.StatusOK, echo.Map{
		"success":         true,
		"user":            user,
		"isAuthenticated": user.IsVerified,
	})
}

// ChangePassword swaps the password after checking the old one.
func (h *AuthHandler) ChangePassword(c echo.Context) error {
	uid, err := getUserID(c)
	if err != nil {
		return apiError(c, http.StatusUnauthorized, "Unauthorized")
	}
	var req changePasswordReq
	if err := c.Bind(&req); err != nil {
		return apiError(c, http.StatusBadRequest, "Invalid request body")
	}
	if err := c.Validate(&req); err != nil {
		return err
	}

	ctx, cancel := reqCtx(c)
	defer cancel()

	user, err := h.Users.GetByID(ctx, uid)
	if err != nil {
		return notFoundOr(c, err, http.StatusNotFound, "User not found")
	}
	if !utils.VerifyPassword(user.PasswordHash, req.OldPassword) {
		return apiError(c, http.StatusUnauthorized, "Old password is incorrect")
	}
	hash, err := utils.HashPassword(req.Password, h.Cfg.BcryptCost)
	if err != nil {
		return fmt.Errorf("hash password: %w", err)
	}
	user.PasswordHash = hash
	if err := h.Users.Save(ctx, user); err != nil {
		return err
	}
	return c.JSON(http.StatusOK, echo.Map{"success": true})
}

// UpdateProfile changes name/email and optionally replaces the avatar,
// deleting the previous image file.
func (h *AuthHandler) UpdateProfile(c echo.Context) error {
	uid, err := getUserID(c)
	if err != nil {
		return apiError(c, http.StatusUnauthorized, "Unauthorized")
	}

	ctx, cancel := reqCtx(c)
	defer cancel()

	user, err := h.Users.GetByID(ctx, uid)
	if err != nil {
		return notFoundOr(c, err, http.StatusNotFound, "User not found")
	}

	if name := strings.TrimSpace(c.FormValue("name")); name != "" {
		user.Name = name
	}
	if email := strings.TrimSpace(c.FormValue("email")); email != "" {
		user.Email = email
	}
	if fh, err := c.FormFile("avatar"); err == nil && fh != nil {
		url, err := h.Uploads.Save(fh, storage.AvatarDir)
		if err != nil {
			return fmt.Errorf("save avatar: %w", err)
		}
		if user.Avatar != "" {
			if err := h.Uploads.DeleteByURL(user.Avatar, storage.AvatarDir); err != nil {
				log.Printf("auth: delete old avatar: %v", err)
			}
		}
		user.Avatar = url
	}

	if err := h.Users.Save(ctx, user); err != nil {
		if errors.Is(err, repository.ErrEmailExists) {
			return apiError(c, http.StatusBadRequest, "Duplicate email error")
		}
		return err
	}
	return c.JSON(http.StatusOK, echo.Map{"success": true, "user": user})
}

// ----- admin user management -----

func (h *AuthHandler) AdminListUsers(c echo.Context) error {
	ctx, cancel := reqCtx(c)
	defer cancel()

	users, err := h.Users.All(ctx)
	if err != nil {
		return err
	}
	return c.JSON(http.StatusOK, echo.Map{"success": true, "count": len(users), "users": users})
}

func (h *AuthHandler) AdminGetUser(c echo.Context) error {
	id, err := objectIDParam(c.Param("id"))
	if err != nil {
		return apiError(c, http.StatusBadRequest, "Invalid user id")
	}

	ctx, cancel := reqCtx(c)
	defer cancel()

	user, err := h.Users.GetByID(ctx, id)
	if err != nil {
		return notFoundOr(c, err, http.StatusNotFound, "User not found")
	}
	return c.JSON(http.StatusOK, echo.Map{"success": true, "user": user})
}

// AdminUpdateUser changes name/email/role. Admins cannot change their
// own role, so the store always keeps at least this one admin.
func (h *AuthHandler) AdminUpdateUser(c echo.Context) error {
	id, err := objectIDParam(c.Param("id"))
	if err != nil {
		return apiError(c, http.StatusBadRequest, "Invalid user id")
	}
	adminID, err := getUserID(c)
	if err != nil {
		return apiError(c, http.StatusUnauthorized, "Unauthorized")
	}
	if adminID == id {
		return apiError(c, http.StatusUnauthorized, "You can't change your own role")
	}

	var req struct {
		Name  string `json:"name"`
		Email string `json:"email" validate:"omitempty,email"`
		Role  string `json:"role" validate:"omitempty,oneof=user admin"`
	}
	if err := c.Bind(&req); err != nil {
		return apiError(c, http.StatusBadRequest, "Invalid request body")
	}
	if err := c.Validate(&req); err != nil {
		return err
	}

	ctx, cancel := reqCtx(c)
	defer cancel()

	user, err := h.Users.GetByID(ctx, id)
	if err != nil {
		return notFoundOr(c, err, http.StatusNotFound, "User not found")
	}
	if req.Name != "" {
		user.Name = req.Name
	}
	if req.Email != "" {
		user.Email = req.Email
	}
	if req.Role != "" {
		user.Role = req.Role
	}
	if err := h.Users.Save(ctx, user); err != nil {
		if errors.Is(err, repository.ErrEmailExists) {
			return apiError(c, http.StatusBadRequest, "Duplicate email error")
		}
		return err
	}
	return c.JSON(http.StatusOK, echo.Map{"success": true, "user": user})
}

func (h *AuthHandler) AdminDeleteUser(c echo.Context) error {
	id, err := objectIDParam(c.Param("id"))
	if err != nil {
		return apiError(c, http.StatusBadRequest, "Invalid user id")
	}

	ctx, cancel := reqCtx(c)
	defer cancel()

	if err := h.Users.Delete(ctx, id); err != nil {
		return notFoundOr(c, err, http.StatusNotFound, "User not found")
	}
	return c.JSON(http.StatusOK, echo.Map{"success": true})
}

// ----- helpers -----

// issueOTP regenerates the user's verification code, persists it and
// mails it. Mail failures surface as a 500 distinct from validation
// failures.
func (h *AuthHandler) issueOTP(ctx context.Context, user *model.User, subject string) error {
	otp, err := utils.GenerateOTP()
	if err != nil {
		return fmt.Errorf("generate otp: %w", err)
	}
	expire := time.Now().UTC().Add(utils.OTPTTL)
	user.OTP = otp
	user.OTPExpire = &expire
	if err := h.Users.Save(ctx, user); err != nil {
		return err
	}
	if err := h.Mail.SendOTP(user.Email, subject, otp); err != nil {
		return echo.NewHTTPError(http.StatusInternalServerError, "Could not send verification email")
	}
	return nil
}

// sendToken issues the session JWT, mirrors it into an httpOnly cookie
// and returns the auth payload.
func (h *AuthHandler) sendToken(c echo.Context, user *model.User, status int) error {
	token, err := utils.NewAccessToken(h.Cfg.JWTSecret, user.ID.Hex(), user.Role, h.Cfg.JWTTTLMin)
	if err != nil {
		return fmt.Errorf("issue token: %w", err)
	}
	c.SetCookie(&http.Cookie{
		Name:     "token",
		Value:    token.Token,
		Path:     "/",
		Expires:  token.Exp,
		HttpOnly: true,
	})
	return c.JSON(status, echo.Map{
		"success": true,
		"token":   token.Token,
		"user":    user,
	})
}

func reqCtx(c echo.Context) (context.Context, context.CancelFunc) {
	return context.WithTimeout(c.Request().Context(), 5*time.Second)
}
