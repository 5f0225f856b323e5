package handlers

import (
	"net/http"
	"time"

	"github.com/gin-gonic/gin"

	"chatsync-service/internal/blob"
	"chatsync-service/internal/models"
	"chatsync-service/internal/repositories"
	"chatsync-service/internal/stream"
	"chatsync-service/internal/telemetry"
	"chatsync-service/pkg/errors"
)

// StatusHandler manages status broadcasts.
type StatusHandler struct {
	statuses repositories.StatusRepository
	chats    repositories.ChatRepository
	users    repositories.UserRepository
	blobs    blob.Store
	bus      *stream.Bus
	audit    *telemetry.AuditEmitter
	window   time.Duration
}

// NewStatusHandler builds a StatusHandler.
func NewStatusHandler(statuses repositories.StatusRepository, chats repositories.ChatRepository, users repositories.UserRepository, blobs blob.Store, bus *stream.Bus, audit *telemetry.AuditEmitter, window time.Duration) *StatusHandler {
	return &StatusHandler{
		statuses: statuses,
		chats:    chats,
		users:    users,
		blobs:    blobs,
		bus:      bus,
		audit:    audit,
		window:   window,
	}
}

// ListStatuses returns the statuses currently visible to the caller: newer
// than the window and owned by someone in the caller's contact set.
func (h *StatusHandler) ListStatuses(c *gin.Context) {
	userID := c.GetInt("userID")

	contacts, err := h.chats.ContactIDs(c.Request.Context(), userID)
	if err != nil {
		respondError(c, errors.Store("load contacts", err))
		return
	}

	cutoff := time.Now().Add(-h.window).UnixMilli()
	statuses, err := h.statuses.ListVisibleStatuses(c.Request.Context(), cutoff, contacts)
	if err != nil {
		respondError(c, errors.Store("load statuses", err))
		return
	}
	if statuses == nil {
		statuses = []models.Status{}
	}
	c.JSON(http.StatusOK, gin.H{"statuses": statuses})
}

// CreateStatus uploads the media and stores a broadcast stamped with the
// owner snapshot and the current time.
func (h *StatusHandler) CreateStatus(c *gin.Context) {
	file, header, err := c.Request.FormFile("image")
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "image file required"})
		return
	}
	defer file.Close()

	userID := c.GetInt("userID")
	owner, err := h.users.GetUser(c.Request.Context(), userID)
	if err != nil {
		respondError(c, err)
		return
	}

	url, err := h.blobs.Save(c.Request.Context(), file, header.Header.Get("Content-Type"))
	if err != nil {
		respondError(c, errors.Store("store status media", err))
		return
	}

	status, err := h.statuses.CreateStatus(c.Request.Context(), models.Snapshot(owner), url, time.Now().UnixMilli())
	if err != nil {
		respondError(c, errors.Store("store status", err))
		return
	}

	h.bus.Publish(stream.TopicStatuses)
	emitAudit(c, h.audit, "INFO", "status created")
	c.JSON(http.StatusCreated, status)
}
