package modules

import (
	"time"

	"github.com/gin-gonic/gin"
	"github.com/redis/go-redis/v9"

	handlers "user-service/internal/interface/http"
	"user-service/internal/interface/middleware"
	"user-service/pkg/helpers"
)

type AuthModule struct {
	Handler *handlers.AuthHandler
	RDB     *redis.Client
	JWT     *helpers.JWTManager
}

func NewAuthModule(h *handlers.AuthHandler, rdb *redis.Client, jwt *helpers.JWTManager) *AuthModule {
	return &AuthModule{Handler: h, RDB: rdb, JWT: jwt}
}

func (m *AuthModule) Register(rg *gin.RouterGroup) {
	// Public endpoints with IP-based rate limits
	registerLimiter := middleware.RateLimit(m.RDB, 10, time.Minute, middleware.KeyByIPAndPath(), nil)
	loginLimiter := middleware.RateLimit(m.RDB, 10, time.Minute, middleware.KeyByIP(), nil)
	otpLimiter := middleware.RateLimit(m.RDB, 30, time.Minute, middleware.KeyByIPAndPath(), nil)
	resetLimiter := middleware.RateLimit(m.RDB, 5, time.Minute, middleware.KeyByIPAndPath(), nil)
	refreshLimiter := middleware.RateLimit(m.RDB, 60, time.Minute, middleware.KeyByIP(), nil)

	rg.POST("/auth/register", registerLimiter, m.Handler.Register)
	rg.POST("/auth/login", loginLimiter, m.Handler.Login)
	rg.POST("/auth/2fa/setup", otpLimiter, m.Handler.Setup2FA)
	rg.POST("/auth/2fa/verify", otpLimiter, m.Handler.Verify2FA)
	rg.POST("/auth/reset-password", resetLimiter, m.Handler.ResetPassword)
	rg.POST("/auth/refresh", refreshLimiter, m.Handler.Refresh)

	auth := rg.Group("/")
	auth.Use(middleware.Auth(m.RDB, m.JWT))
	{
		auth.POST("/auth/logout", m.Handler.Logout)
	}
}
