// Package handlers exposes the HTTP surface. Handlers translate requests
// into commands on the bus and map application errors to status codes; they
// hold no business logic of their own.
package handlers

import (
	"errors"
	"net/http"

	"github.com/gin-gonic/gin"

	"user-service/internal/application"
	"user-service/pkg/response"
)

func ok[T any](c *gin.Context, status int, data T, msg string, meta any) {
	response.OK(c, status, data, msg, meta)
}

func fail(c *gin.Context, status int, msg string, details any) {
	response.Fail(c, status, msg, details)
}

// failFrom maps application errors onto HTTP statuses. A disabled-2FA login
// gets a 403 carrying the user id so the client can start the setup flow.
func failFrom(c *gin.Context, err error) {
	var twofa *application.TwoFactorAuthNotEnabledError
	switch {
	case errors.As(err, &twofa):
		fail(c, http.StatusForbidden, "two-factor auth not enabled", gin.H{"user_id": twofa.UserID})
	case errors.Is(err, application.ErrEmailExisted),
		errors.Is(err, application.ErrUsernameExisted):
		fail(c, http.StatusConflict, err.Error(), nil)
	case errors.Is(err, application.ErrIncorrectCredentials):
		fail(c, http.StatusUnauthorized, "incorrect credentials", nil)
	case errors.Is(err, application.ErrInvalidOTP):
		fail(c, http.StatusUnauthorized, "invalid one-time password", nil)
	case errors.Is(err, application.ErrSelfFriendRequest):
		fail(c, http.StatusBadRequest, "cannot send a friend request to yourself", nil)
	case errors.Is(err, application.ErrFriendRequestNotFound):
		fail(c, http.StatusNotFound, "friend request not found", nil)
	case errors.Is(err, application.ErrProfileNotFound):
		fail(c, http.StatusNotFound, "profile not found", nil)
	default:
		fail(c, http.StatusInternalServerError, "internal error", nil)
	}
}
