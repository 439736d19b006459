package middleware

import (
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/redis/go-redis/v9"

	"user-service/pkg/helpers"
	"user-service/pkg/response"
)

const CtxUserIDKey = "userID"

// Auth validates the access token and ensures an active session exists in
// Redis whose session id matches the token's. It sets userID, userName, and
// userEmail in the Gin context on success.
func Auth(rdb *redis.Client, jwt *helpers.JWTManager) gin.HandlerFunc {
	return func(c *gin.Context) {
		token, err := c.Cookie("access_token")
		if err != nil || token == "" {
			response.Abort(c, http.StatusUnauthorized, "missing access token", nil)
			return
		}
		claims, err := jwt.ParseAccessToken(token)
		if err != nil {
			response.Abort(c, http.StatusUnauthorized, "invalid access token", err.Error())
			return
		}

		key := "user:session:" + claims.UserID
		data, err := rdb.HGetAll(c.Request.Context(), key).Result()
		if err != nil || len(data) == 0 {
			response.Abort(c, http.StatusUnauthorized, "session not found", nil)
			return
		}
		if claims.SessionID != "" && data["sid"] != claims.SessionID {
			response.Abort(c, http.StatusUnauthorized, "session expired", nil)
			return
		}

		c.Set(CtxUserIDKey, claims.UserID)
		c.Set("userName", data["username"])
		c.Set("userEmail", data["email"])
		c.Next()
	}
}
