package modules

import (
	"time"

	"github.com/gin-gonic/gin"
	"github.com/redis/go-redis/v9"

	handlers "user-service/internal/interface/http"
	"user-service/internal/interface/middleware"
	"user-service/pkg/helpers"
)

type FriendModule struct {
	Handler *handlers.FriendHandler
	RDB     *redis.Client
	JWT     *helpers.JWTManager
}

func NewFriendModule(h *handlers.FriendHandler, rdb *redis.Client, jwt *helpers.JWTManager) *FriendModule {
	return &FriendModule{Handler: h, RDB: rdb, JWT: jwt}
}

func (m *FriendModule) Register(rg *gin.RouterGroup) {
	auth := rg.Group("/")
	auth.Use(middleware.Auth(m.RDB, m.JWT))
	auth.Use(middleware.RateLimit(m.RDB, 120, time.Minute, middleware.KeyByUserID(), nil))
	{
		auth.POST("/friends/requests", m.Handler.CreateRequest)
		auth.POST("/friends/requests/:id/accept", m.Handler.AcceptRequest)
		auth.POST("/friends/requests/:id/decline", m.Handler.DeclineRequest)
		auth.GET("/friends", m.Handler.ListFriends)
	}
}
