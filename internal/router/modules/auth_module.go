package modules

import (
	"time"

	"github.com/gin-gonic/gin"

	"github.com/diaryfi/diaryfi-api/internal/container"
	handlers "github.com/diaryfi/diaryfi-api/internal/interface/http"
	"github.com/diaryfi/diaryfi-api/internal/interface/middleware"
	"github.com/diaryfi/diaryfi-api/pkg/helpers"
)

type AuthModule struct {
	Handler *handlers.AuthHandler
	JWT     *helpers.JWTManager
}

func NewAuthModule(h *handlers.AuthHandler, jwt *helpers.JWTManager) *AuthModule {
	return &AuthModule{Handler: h, JWT: jwt}
}

func (m *AuthModule) Register(rg *gin.RouterGroup) {
	rdb := container.GetRedis()

	// Public endpoints with per-IP-and-path limits. Credential guessing gets
	// the tightest budget; OTP entry a little more room.
	credentialLimiter := middleware.RateLimit(rdb, 10, time.Minute, middleware.KeyByIPAndPath(), nil)
	otpLimiter := middleware.RateLimit(rdb, 30, time.Minute, middleware.KeyByIPAndPath(), nil)
	recoveryLimiter := middleware.RateLimit(rdb, 5, time.Minute, middleware.KeyByIPAndPath(), nil)

	rg.POST("/auth/register", credentialLimiter, m.Handler.Register)
	rg.POST("/auth/login", credentialLimiter, m.Handler.Login)
	rg.POST("/auth/verify-otp", otpLimiter, m.Handler.VerifyOTP)
	rg.POST("/auth/resend-otp", recoveryLimiter, m.Handler.ResendOTP)
	rg.POST("/auth/forgot-password", recoveryLimiter, m.Handler.ForgotPassword)
	rg.POST("/auth/password-setup", recoveryLimiter, m.Handler.PasswordSetup)
	rg.POST("/auth/reset-password", otpLimiter, m.Handler.ResetPassword)
	rg.POST("/auth/google", credentialLimiter, m.Handler.Google)
	rg.POST("/auth/apple", credentialLimiter, m.Handler.Apple)

	// Protected
	auth := rg.Group("/")
	auth.Use(middleware.Auth(m.JWT))
	auth.Use(middleware.RateLimit(rdb, 120, time.Minute, middleware.KeyByUserID(), nil))
	{
		auth.GET("/auth/me", m.Handler.Me)
		auth.POST("/auth/change-password", m.Handler.ChangePassword)
		auth.PUT("/profile", m.Handler.UpdateProfile)
	}
}
