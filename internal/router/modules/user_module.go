package modules

import (
	"time"

	"github.com/gin-gonic/gin"
	"github.com/redis/go-redis/v9"

	handlers "user-service/internal/interface/http"
	"user-service/internal/interface/middleware"
	"user-service/pkg/helpers"
)

type UserModule struct {
	Handler *handlers.UserHandler
	RDB     *redis.Client
	JWT     *helpers.JWTManager
}

func NewUserModule(h *handlers.UserHandler, rdb *redis.Client, jwt *helpers.JWTManager) *UserModule {
	return &UserModule{Handler: h, RDB: rdb, JWT: jwt}
}

func (m *UserModule) Register(rg *gin.RouterGroup) {
	// Public lookup by id or message id so clients can poll for the row an
	// accepted write produced.
	lookupLimiter := middleware.RateLimit(m.RDB, 120, time.Minute, middleware.KeyByIP(), nil)
	rg.GET("/users/:id", lookupLimiter, m.Handler.GetUser)

	auth := rg.Group("/")
	auth.Use(middleware.Auth(m.RDB, m.JWT))
	auth.Use(middleware.RateLimit(m.RDB, 120, time.Minute, middleware.KeyByUserID(), nil))
	{
		auth.GET("/profile", m.Handler.GetProfile)
		auth.POST("/profile/avatar", m.Handler.UploadAvatar)
		auth.GET("/search/users", m.Handler.SearchUsers)
	}
}
