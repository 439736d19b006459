package handlers

import (
	"net/http"
	"path/filepath"
	"strings"

	"cloud.google.com/go/storage"
	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
	"github.com/sirupsen/logrus"

	"user-service/internal/application"
	"user-service/internal/bus"
	"user-service/internal/domain/message"
	"user-service/internal/infrastructure/search"
	"user-service/pkg/helpers"
)

type UserHandler struct {
	Bus       *bus.Bus
	Views     *application.Views
	Search    *search.Indexer
	GCS       *storage.Client
	GCSBucket string
	Logger    *logrus.Logger
}

func NewUserHandler(b *bus.Bus, views *application.Views, idx *search.Indexer, gcs *storage.Client, bucket string, logger *logrus.Logger) *UserHandler {
	return &UserHandler{Bus: b, Views: views, Search: idx, GCS: gcs, GCSBucket: bucket, Logger: logger}
}

// hidden columns never leave the API even though views return whole rows.
var hidden = map[string]bool{"password": true, "secret_token": true}

func sanitize(row map[string]any) map[string]any {
	out := make(map[string]any, len(row))
	for k, v := range row {
		if hidden[k] {
			continue
		}
		out[k] = v
	}
	return out
}

// GetUser GET /api/users/:id accepts an entity id or the originating
// command's message id, so a client can poll for the row its register
// request produced.
func (h *UserHandler) GetUser(c *gin.Context) {
	row, err := h.Views.Fetch(c.Request.Context(), "users", c.Param("id"))
	if err != nil {
		fail(c, http.StatusInternalServerError, "lookup failed", nil)
		return
	}
	if row == nil {
		fail(c, http.StatusNotFound, "user not found", nil)
		return
	}
	ok(c, http.StatusOK, sanitize(row), "user", nil)
}

// GetProfile GET /api/profile returns the authenticated user's profile.
func (h *UserHandler) GetProfile(c *gin.Context) {
	uid := c.GetString("userID")
	row, err := h.Views.FetchProfileByUser(c.Request.Context(), uid)
	if err != nil {
		fail(c, http.StatusInternalServerError, "lookup failed", nil)
		return
	}
	if row == nil {
		fail(c, http.StatusNotFound, "profile not found", nil)
		return
	}
	ok(c, http.StatusOK, sanitize(row), "profile", nil)
}

// SearchUsers GET /api/search/users?q=
func (h *UserHandler) SearchUsers(c *gin.Context) {
	q := strings.TrimSpace(c.Query("q"))
	if q == "" {
		fail(c, http.StatusBadRequest, "q is required", nil)
		return
	}
	hits, err := h.Search.Search(c.Request.Context(), q, 10)
	if err != nil {
		h.Logger.WithError(err).Warn("user search failed")
		fail(c, http.StatusBadGateway, "search unavailable", nil)
		return
	}
	ok(c, http.StatusOK, hits, "search results", gin.H{"count": len(hits)})
}

// UploadAvatar POST /api/profile/avatar stores the image in GCS and records
// the public URL on the profile through the bus.
func (h *UserHandler) UploadAvatar(c *gin.Context) {
	uid := c.GetString("userID")
	file, header, err := c.Request.FormFile("avatar")
	if err != nil {
		fail(c, http.StatusBadRequest, "avatar file is required", nil)
		return
	}
	defer func() { _ = file.Close() }()

	if h.GCS == nil || h.GCSBucket == "" {
		fail(c, http.StatusServiceUnavailable, "avatar storage not configured", nil)
		return
	}

	ext := strings.ToLower(filepath.Ext(header.Filename))
	objectPath := filepath.ToSlash(filepath.Join("avatars", uid, uuid.NewString()+ext))
	contentType := header.Header.Get("Content-Type")
	url, err := helpers.UploadAvatar(c.Request.Context(), h.GCS, h.GCSBucket, objectPath, contentType, file)
	if err != nil {
		h.Logger.WithError(err).WithField("user_id", uid).Error("avatar upload failed")
		fail(c, http.StatusBadGateway, "upload failed", nil)
		return
	}

	if _, err := h.Bus.Handle(c.Request.Context(), message.NewUpdateProfileAvatar(uid, url)); err != nil {
		failFrom(c, err)
		return
	}
	ok(c, http.StatusOK, gin.H{"avatar_url": url}, "avatar updated", nil)
}
