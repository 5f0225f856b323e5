package handlers

import (
	"net/http"

	"github.com/gin-gonic/gin"

	"chatsync-service/internal/blob"
	"chatsync-service/internal/repositories"
	"chatsync-service/internal/telemetry"
	"chatsync-service/pkg/errors"
)

// ProfileHandler serves the caller's own profile record.
type ProfileHandler struct {
	users repositories.UserRepository
	blobs blob.Store
	audit *telemetry.AuditEmitter
}

// NewProfileHandler builds a ProfileHandler.
func NewProfileHandler(users repositories.UserRepository, blobs blob.Store, audit *telemetry.AuditEmitter) *ProfileHandler {
	return &ProfileHandler{users: users, blobs: blobs, audit: audit}
}

// Me returns the authenticated principal's profile.
func (h *ProfileHandler) Me(c *gin.Context) {
	userID := c.GetInt("userID")
	user, err := h.users.GetUser(c.Request.Context(), userID)
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, user)
}

// Update merges the given fields into the profile. Omitted fields keep
// their previous values.
func (h *ProfileHandler) Update(c *gin.Context) {
	var req struct {
		Name     *string `json:"name"`
		Number   *string `json:"number"`
		ImageURL *string `json:"image_url"`
	}
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}
	if req.Number != nil && !isDigitsOnly(*req.Number) {
		respondError(c, errors.ErrInvalidNumber)
		return
	}

	userID := c.GetInt("userID")
	user, err := h.users.UpdateProfile(c.Request.Context(), userID, req.Name, req.Number, req.ImageURL)
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, user)
}

// UploadAvatar stores the uploaded image and merges its URL into the profile.
func (h *ProfileHandler) UploadAvatar(c *gin.Context) {
	file, header, err := c.Request.FormFile("image")
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "image file required"})
		return
	}
	defer file.Close()

	url, err := h.blobs.Save(c.Request.Context(), file, header.Header.Get("Content-Type"))
	if err != nil {
		respondError(c, errors.Store("store avatar", err))
		return
	}

	userID := c.GetInt("userID")
	user, err := h.users.UpdateProfile(c.Request.Context(), userID, nil, nil, &url)
	if err != nil {
		respondError(c, err)
		return
	}

	emitAudit(c, h.audit, "INFO", "avatar updated")
	c.JSON(http.StatusOK, user)
}
