package handlers

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"path/filepath"
	"strings"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
	"github.com/sirupsen/logrus"

	"github.com/diaryfi/diaryfi-api/internal/application"
	"github.com/diaryfi/diaryfi-api/internal/auth"
	"github.com/diaryfi/diaryfi-api/internal/domain/repository"
	"github.com/diaryfi/diaryfi-api/pkg/oauth"
	"github.com/diaryfi/diaryfi-api/pkg/response"
	"github.com/diaryfi/diaryfi-api/pkg/validation"
)

type AuthHandler struct {
	Service *auth.Service
	Media   application.MediaStore
	Logger  *logrus.Logger
}

func NewAuthHandler(svc *auth.Service, media application.MediaStore, logger *logrus.Logger) *AuthHandler {
	return &AuthHandler{Service: svc, Media: media, Logger: logger}
}

func normalizeEmail(email string) string {
	return strings.ToLower(strings.TrimSpace(email))
}

// failAuth maps service errors onto the API taxonomy. A locked account is
// reported with the invalid-credentials shape on purpose.
func (h *AuthHandler) failAuth(c *gin.Context, err error) {
	var mismatch *auth.OTPMismatchError
	switch {
	case errors.Is(err, auth.ErrAccountExists):
		response.Error[any](c, http.StatusBadRequest, auth.ErrAccountExists.Error(), nil)
	case errors.Is(err, auth.ErrInvalidCredentials), errors.Is(err, auth.ErrAccountLocked):
		response.Error[any](c, http.StatusBadRequest, auth.ErrInvalidCredentials.Error(), nil)
	case errors.Is(err, auth.ErrUseSocialLogin):
		response.Error[any](c, http.StatusBadRequest, auth.ErrUseSocialLogin.Error(), nil)
	case errors.Is(err, auth.ErrEmailNotVerified):
		response.Error[any](c, http.StatusBadRequest, "email not verified", gin.H{"requires_verification": true})
	case errors.Is(err, auth.ErrNoPassword):
		response.Error[any](c, http.StatusBadRequest, auth.ErrNoPassword.Error(), nil)
	case errors.Is(err, auth.ErrSamePassword):
		response.Error[any](c, http.StatusBadRequest, auth.ErrSamePassword.Error(), nil)
	case errors.Is(err, auth.ErrInvalidResetToken):
		response.Error[any](c, http.StatusBadRequest, auth.ErrInvalidResetToken.Error(), nil)
	case errors.As(err, &mismatch):
		response.Error[any](c, http.StatusBadRequest, mismatch.Error(), gin.H{"remaining_attempts": mismatch.Remaining})
	case errors.Is(err, auth.ErrOTPNotPending),
		errors.Is(err, auth.ErrOTPExpired),
		errors.Is(err, auth.ErrOTPTooManyAttempts),
		errors.Is(err, auth.ErrOTPInvalid):
		response.Error[any](c, http.StatusBadRequest, err.Error(), nil)
	case errors.Is(err, oauth.ErrTokenInvalid), errors.Is(err, oauth.ErrEmailNotVerified):
		response.Error[any](c, http.StatusUnauthorized, "invalid identity token", nil)
	case errors.Is(err, repository.ErrNotFound):
		response.Error[any](c, http.StatusNotFound, "not found", nil)
	default:
		h.Logger.WithError(err).Error("auth request failed")
		response.Error[any](c, http.StatusInternalServerError, "internal server error", nil)
	}
}

type registerRequest struct {
	Name     string `json:"name" binding:"required,max=100"`
	Email    string `json:"email" binding:"required,email"`
	Password string `json:"password" binding:"required,pwd"`
}

// Register POST /api/auth/register
func (h *AuthHandler) Register(c *gin.Context) {
	var req registerRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		response.Error[any](c, http.StatusBadRequest, "validation failed", validation.ToDetails(err))
		return
	}

	res, err := h.Service.Register(c.Request.Context(), strings.TrimSpace(req.Name), normalizeEmail(req.Email), req.Password)
	if err != nil {
		h.failAuth(c, err)
		return
	}

	payload := gin.H{"email": res.Email, "requires_verification": true}
	if res.Linking {
		response.Success(c, http.StatusOK, payload, "verify the code we sent to finish linking email login", nil)
		return
	}
	response.Success(c, http.StatusCreated, payload, "account created, verify the code we sent", nil)
}

type verifyOTPRequest struct {
	Email string `json:"email" binding:"required,email"`
	OTP   string `json:"otp" binding:"required,otpcode"`
}

// VerifyOTP POST /api/auth/verify-otp
func (h *AuthHandler) VerifyOTP(c *gin.Context) {
	var req verifyOTPRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		response.Error[any](c, http.StatusBadRequest, "validation failed", validation.ToDetails(err))
		return
	}

	sess, err := h.Service.VerifyOTP(c.Request.Context(), normalizeEmail(req.Email), req.OTP)
	if err != nil {
		h.failAuth(c, err)
		return
	}
	response.Success(c, http.StatusOK, SessionView{
		Token:     sess.Token,
		ExpiresAt: sess.ExpiresAt,
		User:      toUserView(sess.User),
	}, "email verified", nil)
}

type emailRequest struct {
	Email string `json:"email" binding:"required,email"`
}

// ResendOTP POST /api/auth/resend-otp
// Always answers 200 so account existence is not revealed.
func (h *AuthHandler) ResendOTP(c *gin.Context) {
	var req emailRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		response.Error[any](c, http.StatusBadRequest, "validation failed", validation.ToDetails(err))
		return
	}
	if err := h.Service.ResendOTP(c.Request.Context(), normalizeEmail(req.Email)); err != nil {
		h.failAuth(c, err)
		return
	}
	response.Success[any](c, http.StatusOK, nil, "if a verification is pending, a new code has been sent", nil)
}

type loginRequest struct {
	Email    string `json:"email" binding:"required,email"`
	Password string `json:"password" binding:"required"`
}

// Login POST /api/auth/login
func (h *AuthHandler) Login(c *gin.Context) {
	var req loginRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		response.Error[any](c, http.StatusBadRequest, "validation failed", validation.ToDetails(err))
		return
	}

	sess, err := h.Service.Login(c.Request.Context(), normalizeEmail(req.Email), req.Password)
	if err != nil {
		h.failAuth(c, err)
		return
	}
	response.Success(c, http.StatusOK, SessionView{
		Token:     sess.Token,
		ExpiresAt: sess.ExpiresAt,
		User:      toUserView(sess.User),
	}, "login successful", nil)
}

// ForgotPassword POST /api/auth/forgot-password
// Issues a temporary password by email; always answers 200.
func (h *AuthHandler) ForgotPassword(c *gin.Context) {
	var req emailRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		response.Error[any](c, http.StatusBadRequest, "validation failed", validation.ToDetails(err))
		return
	}
	if err := h.Service.ForgotPassword(c.Request.Context(), normalizeEmail(req.Email)); err != nil {
		h.failAuth(c, err)
		return
	}
	response.Success[any](c, http.StatusOK, nil, "if the account exists, instructions have been sent", nil)
}

// PasswordSetup POST /api/auth/password-setup
// Sends a password-setup link to social-only accounts; always answers 200.
func (h *AuthHandler) PasswordSetup(c *gin.Context) {
	var req emailRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		response.Error[any](c, http.StatusBadRequest, "validation failed", validation.ToDetails(err))
		return
	}
	if err := h.Service.PasswordSetupLink(c.Request.Context(), normalizeEmail(req.Email)); err != nil {
		h.failAuth(c, err)
		return
	}
	response.Success[any](c, http.StatusOK, nil, "if the account exists, instructions have been sent", nil)
}

type resetPasswordRequest struct {
	Token    string `json:"token" binding:"required"`
	Password string `json:"password" binding:"required,pwd"`
}

// ResetPassword POST /api/auth/reset-password
func (h *AuthHandler) ResetPassword(c *gin.Context) {
	var req resetPasswordRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		response.Error[any](c, http.StatusBadRequest, "validation failed", validation.ToDetails(err))
		return
	}
	if err := h.Service.ResetPassword(c.Request.Context(), req.Token, req.Password); err != nil {
		h.failAuth(c, err)
		return
	}
	response.Success[any](c, http.StatusOK, nil, "password updated", nil)
}

type changePasswordRequest struct {
	CurrentPassword string `json:"current_password" binding:"required"`
	NewPassword     string `json:"new_password" binding:"required,pwd"`
}

// ChangePassword POST /api/auth/change-password (auth)
func (h *AuthHandler) ChangePassword(c *gin.Context) {
	var req changePasswordRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		response.Error[any](c, http.StatusBadRequest, "validation failed", validation.ToDetails(err))
		return
	}
	if err := h.Service.ChangePassword(c.Request.Context(), c.GetString("userID"), req.CurrentPassword, req.NewPassword); err != nil {
		h.failAuth(c, err)
		return
	}
	response.Success[any](c, http.StatusOK, nil, "password changed", nil)
}

type idTokenRequest struct {
	IDToken string `json:"id_token" binding:"required"`
}

// Google POST /api/auth/google
func (h *AuthHandler) Google(c *gin.Context) {
	h.oauthSignIn(c, h.Service.SignInWithGoogle)
}

// Apple POST /api/auth/apple
func (h *AuthHandler) Apple(c *gin.Context) {
	h.oauthSignIn(c, h.Service.SignInWithApple)
}

func (h *AuthHandler) oauthSignIn(c *gin.Context, signIn func(ctx context.Context, idToken string) (*auth.Session, error)) {
	var req idTokenRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		response.Error[any](c, http.StatusBadRequest, "validation failed", validation.ToDetails(err))
		return
	}
	sess, err := signIn(c.Request.Context(), req.IDToken)
	if err != nil {
		h.failAuth(c, err)
		return
	}
	response.Success(c, http.StatusOK, SessionView{
		Token:     sess.Token,
		ExpiresAt: sess.ExpiresAt,
		User:      toUserView(sess.User),
	}, "login successful", nil)
}

// Me GET /api/auth/me (auth)
func (h *AuthHandler) Me(c *gin.Context) {
	u, err := h.Service.GetMe(c.Request.Context(), c.GetString("userID"))
	if err != nil {
		h.failAuth(c, err)
		return
	}
	response.Success(c, http.StatusOK, toUserView(u), "", nil)
}

// UpdateProfile PUT /api/profile (auth, multipart)
// Accepts an optional name field and an optional avatar image file.
func (h *AuthHandler) UpdateProfile(c *gin.Context) {
	userID := c.GetString("userID")
	name := strings.TrimSpace(c.PostForm("name"))

	avatarURL := ""
	if file, err := c.FormFile("avatar"); err == nil && file != nil {
		contentType := file.Header.Get("Content-Type")
		if !strings.HasPrefix(contentType, "image/") {
			response.Error[any](c, http.StatusBadRequest, "avatar must be an image", nil)
			return
		}
		src, err := file.Open()
		if err != nil {
			h.failAuth(c, err)
			return
		}
		defer src.Close()

		objectPath := fmt.Sprintf("users/%s/avatar_%s%s", userID, uuid.NewString(), filepath.Ext(file.Filename))
		avatarURL, err = h.Media.Upload(c.Request.Context(), objectPath, contentType, src)
		if err != nil {
			h.failAuth(c, err)
			return
		}
	}

	if name == "" && avatarURL == "" {
		response.Error[any](c, http.StatusBadRequest, "nothing to update", nil)
		return
	}

	u, err := h.Service.UpdateProfile(c.Request.Context(), userID, name, avatarURL)
	if err != nil {
		h.failAuth(c, err)
		return
	}
	response.Success(c, http.StatusOK, toUserView(u), "profile updated", nil)
}
