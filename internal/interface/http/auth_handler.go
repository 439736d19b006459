package handlers

import (
	"net/http"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
	"github.com/redis/go-redis/v9"
	"github.com/sirupsen/logrus"

	"user-service/internal/bus"
	"user-service/internal/domain/entity"
	"user-service/internal/domain/message"
	"user-service/pkg/helpers"
	"user-service/pkg/validation"
)

const sessionTTL = 24 * time.Hour

type AuthHandler struct {
	Bus     *bus.Bus
	RDB     *redis.Client
	JWT     *helpers.JWTManager
	Cookies *helpers.Manager
	Logger  *logrus.Logger
}

func NewAuthHandler(b *bus.Bus, rdb *redis.Client, jwt *helpers.JWTManager, logger *logrus.Logger, cookieDomain string, cookieSecure bool) *AuthHandler {
	return &AuthHandler{Bus: b, RDB: rdb, JWT: jwt, Logger: logger, Cookies: helpers.NewCookie(cookieDomain, cookieSecure)}
}

func sessionKey(userID string) string { return "user:session:" + userID }

type registerRequest struct {
	Username    string `json:"username" binding:"required,alphanum,min=3,max=32"`
	Email       string `json:"email" binding:"required,email"`
	Password    string `json:"password" binding:"required,strongpwd"`
	FirstName   string `json:"first_name" binding:"required"`
	LastName    string `json:"last_name" binding:"required"`
	BackupEmail string `json:"backup_email" binding:"omitempty,email"`
	Gender      string `json:"gender" binding:"omitempty,oneof=male female other"`
	DateOfBirth string `json:"date_of_birth" binding:"omitempty,datetime=2006-01-02"`
}

func userJSON(u *entity.User) gin.H {
	return gin.H{
		"id":                      u.ID,
		"username":                u.Username,
		"email":                   u.Email,
		"two_factor_auth_enabled": u.TwoFactorAuthEnabled,
		"message_id":              u.MessageID,
	}
}

// Register POST /api/auth/register
func (h *AuthHandler) Register(c *gin.Context) {
	var req registerRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		fail(c, http.StatusBadRequest, "invalid payload", validation.ToDetails(err))
		return
	}

	cmd := message.NewRegister(req.Username, req.Email, req.Password,
		req.FirstName, req.LastName, req.BackupEmail, req.Gender, req.DateOfBirth)
	results, err := h.Bus.Handle(c.Request.Context(), cmd)
	if err != nil {
		failFrom(c, err)
		return
	}
	user := results[0].(*entity.User)
	ok(c, http.StatusCreated, userJSON(user), "registered", nil)
}

type loginRequest struct {
	Username string `json:"username" binding:"required"`
	Password string `json:"password" binding:"required"`
}

// Login POST /api/auth/login
func (h *AuthHandler) Login(c *gin.Context) {
	var req loginRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		fail(c, http.StatusBadRequest, "invalid payload", validation.ToDetails(err))
		return
	}

	results, err := h.Bus.Handle(c.Request.Context(), message.NewLogin(req.Username, req.Password))
	if err != nil {
		failFrom(c, err)
		return
	}
	user := results[0].(*entity.User)

	if err := h.issueSession(c, user); err != nil {
		h.Logger.WithError(err).WithField("user_id", user.ID).Error("issue session failed")
		fail(c, http.StatusInternalServerError, "could not create session", nil)
		return
	}
	ok(c, http.StatusOK, userJSON(user), "login successful", nil)
}

// issueSession generates a token pair under a fresh session id and records
// the session hash in Redis.
func (h *AuthHandler) issueSession(c *gin.Context, user *entity.User) error {
	sid := uuid.NewString()
	access, aexp, err := h.JWT.GenerateAccessToken(user.ID, sid)
	if err != nil {
		return err
	}
	refresh, rexp, err := h.JWT.GenerateRefreshToken(user.ID, sid)
	if err != nil {
		return err
	}

	key := sessionKey(user.ID)
	pipe := h.RDB.Pipeline()
	pipe.HSet(c.Request.Context(), key, map[string]any{
		"user_id":    user.ID,
		"username":   user.Username,
		"email":      user.Email,
		"sid":        sid,
		"created_at": time.Now().UTC().Format(time.RFC3339Nano),
	})
	pipe.Expire(c.Request.Context(), key, sessionTTL)
	if _, err := pipe.Exec(c.Request.Context()); err != nil {
		return err
	}

	h.Cookies.SetPair(c, access, aexp, refresh, rexp)
	return nil
}

// Refresh POST /api/auth/refresh rotates the session id and both tokens.
func (h *AuthHandler) Refresh(c *gin.Context) {
	refresh, err := c.Cookie("refresh_token")
	if err != nil || refresh == "" {
		fail(c, http.StatusUnauthorized, "missing refresh token", nil)
		return
	}
	claims, err := h.JWT.ParseRefreshToken(refresh)
	if err != nil {
		fail(c, http.StatusUnauthorized, "invalid refresh token", nil)
		return
	}

	key := sessionKey(claims.UserID)
	data, err := h.RDB.HGetAll(c.Request.Context(), key).Result()
	if err != nil || len(data) == 0 || data["sid"] != claims.SessionID {
		fail(c, http.StatusUnauthorized, "session expired", nil)
		return
	}

	sid := uuid.NewString()
	access, aexp, err := h.JWT.GenerateAccessToken(claims.UserID, sid)
	if err != nil {
		fail(c, http.StatusInternalServerError, "token generation failed", nil)
		return
	}
	newRefresh, rexp, err := h.JWT.GenerateRefreshToken(claims.UserID, sid)
	if err != nil {
		fail(c, http.StatusInternalServerError, "token generation failed", nil)
		return
	}
	pipe := h.RDB.Pipeline()
	pipe.HSet(c.Request.Context(), key, map[string]any{
		"sid":        sid,
		"updated_at": time.Now().UTC().Format(time.RFC3339Nano),
	})
	pipe.Expire(c.Request.Context(), key, sessionTTL)
	if _, err := pipe.Exec(c.Request.Context()); err != nil {
		fail(c, http.StatusInternalServerError, "could not rotate session", nil)
		return
	}
	h.Cookies.SetPair(c, access, aexp, newRefresh, rexp)
	ok[any](c, http.StatusOK, nil, "token refreshed", nil)
}

// Logout POST /api/auth/logout
func (h *AuthHandler) Logout(c *gin.Context) {
	uid := c.GetString("userID")
	if uid != "" {
		_ = h.RDB.Del(c.Request.Context(), sessionKey(uid)).Err()
	}
	h.Cookies.Clear(c)
	ok[any](c, http.StatusOK, nil, "logged out", nil)
}

type setup2FARequest struct {
	UserID string `json:"user_id" binding:"required,uuid"`
}

// Setup2FA POST /api/auth/2fa/setup delivers the current one-time password
// out of band. Callable without a session: it is part of the login flow for
// accounts that have not enabled 2FA yet.
func (h *AuthHandler) Setup2FA(c *gin.Context) {
	var req setup2FARequest
	if err := c.ShouldBindJSON(&req); err != nil {
		fail(c, http.StatusBadRequest, "invalid payload", validation.ToDetails(err))
		return
	}
	if _, err := h.Bus.Handle(c.Request.Context(), message.NewSetupTwoFactorAuth(req.UserID)); err != nil {
		failFrom(c, err)
		return
	}
	ok[any](c, http.StatusAccepted, nil, "one-time password sent", nil)
}

type verify2FARequest struct {
	UserID  string `json:"user_id" binding:"required,uuid"`
	OTPCode string `json:"otp_code" binding:"required,len=6"`
}

// Verify2FA POST /api/auth/2fa/verify
func (h *AuthHandler) Verify2FA(c *gin.Context) {
	var req verify2FARequest
	if err := c.ShouldBindJSON(&req); err != nil {
		fail(c, http.StatusBadRequest, "invalid payload", validation.ToDetails(err))
		return
	}
	if _, err := h.Bus.Handle(c.Request.Context(), message.NewVerifyTwoFactorAuth(req.UserID, req.OTPCode)); err != nil {
		failFrom(c, err)
		return
	}
	ok[any](c, http.StatusOK, gin.H{"two_factor_auth_enabled": true}, "two-factor auth enabled", nil)
}

type resetPasswordRequest struct {
	Email    string `json:"email" binding:"required,email"`
	Username string `json:"username" binding:"required"`
}

// ResetPassword POST /api/auth/reset-password issues a fresh random password
// and delivers it to the account email.
func (h *AuthHandler) ResetPassword(c *gin.Context) {
	var req resetPasswordRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		fail(c, http.StatusBadRequest, "invalid payload", validation.ToDetails(err))
		return
	}
	if _, err := h.Bus.Handle(c.Request.Context(), message.NewResetPassword(req.Email, req.Username)); err != nil {
		failFrom(c, err)
		return
	}
	ok[any](c, http.StatusAccepted, nil, "new password sent", nil)
}
