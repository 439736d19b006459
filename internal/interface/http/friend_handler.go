package handlers

import (
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/sirupsen/logrus"

	"user-service/internal/application"
	"user-service/internal/bus"
	"user-service/internal/domain/entity"
	"user-service/internal/domain/message"
	"user-service/pkg/validation"
)

type FriendHandler struct {
	Bus    *bus.Bus
	Views  *application.Views
	Logger *logrus.Logger
}

func NewFriendHandler(b *bus.Bus, views *application.Views, logger *logrus.Logger) *FriendHandler {
	return &FriendHandler{Bus: b, Views: views, Logger: logger}
}

type createFriendRequestRequest struct {
	ReceiverID string `json:"receiver_id" binding:"required,uuid"`
}

// CreateRequest POST /api/friends/requests; the sender is the authenticated
// user.
func (h *FriendHandler) CreateRequest(c *gin.Context) {
	var req createFriendRequestRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		fail(c, http.StatusBadRequest, "invalid payload", validation.ToDetails(err))
		return
	}
	uid := c.GetString("userID")

	results, err := h.Bus.Handle(c.Request.Context(), message.NewCreateFriendRequest(uid, req.ReceiverID))
	if err != nil {
		failFrom(c, err)
		return
	}
	fr := results[0].(*entity.FriendRequest)
	ok(c, http.StatusCreated, gin.H{
		"id":          fr.ID,
		"sender_id":   fr.SenderID,
		"receiver_id": fr.ReceiverID,
	}, "friend request created", nil)
}

// AcceptRequest POST /api/friends/requests/:id/accept
func (h *FriendHandler) AcceptRequest(c *gin.Context) {
	if _, err := h.Bus.Handle(c.Request.Context(), message.NewAcceptFriendRequest(c.Param("id"))); err != nil {
		failFrom(c, err)
		return
	}
	ok[any](c, http.StatusOK, nil, "friend request accepted", nil)
}

// DeclineRequest POST /api/friends/requests/:id/decline
func (h *FriendHandler) DeclineRequest(c *gin.Context) {
	if _, err := h.Bus.Handle(c.Request.Context(), message.NewDeclineFriendRequest(c.Param("id"))); err != nil {
		failFrom(c, err)
		return
	}
	ok[any](c, http.StatusOK, nil, "friend request declined", nil)
}

// ListFriends GET /api/friends
func (h *FriendHandler) ListFriends(c *gin.Context) {
	uid := c.GetString("userID")
	friends, err := h.Views.FriendsOf(c.Request.Context(), uid)
	if err != nil {
		h.Logger.WithError(err).WithField("user_id", uid).Error("list friends failed")
		fail(c, http.StatusInternalServerError, "lookup failed", nil)
		return
	}
	if friends == nil {
		friends = []map[string]any{}
	}
	ok(c, http.StatusOK, friends, "friends", gin.H{"count": len(friends)})
}
