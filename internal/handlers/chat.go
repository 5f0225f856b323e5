package handlers

import (
	"net/http"
	"strconv"

	"github.com/gin-gonic/gin"

	"chatsync-service/internal/models"
	"chatsync-service/internal/repositories"
	"chatsync-service/internal/stream"
	"chatsync-service/internal/telemetry"
	"chatsync-service/pkg/errors"
)

// ChatHandler manages the chat membership index and the message log.
type ChatHandler struct {
	chats     repositories.ChatRepository
	messages  repositories.MessageRepository
	users     repositories.UserRepository
	bus       *stream.Bus
	audit     *telemetry.AuditEmitter
	listLimit int
}

// NewChatHandler builds a ChatHandler.
func NewChatHandler(chats repositories.ChatRepository, messages repositories.MessageRepository, users repositories.UserRepository, bus *stream.Bus, audit *telemetry.AuditEmitter, listLimit int) *ChatHandler {
	return &ChatHandler{
		chats:     chats,
		messages:  messages,
		users:     users,
		bus:       bus,
		audit:     audit,
		listLimit: listLimit,
	}
}

// ListChats returns the caller's chats, most recent first.
func (h *ChatHandler) ListChats(c *gin.Context) {
	userID := c.GetInt("userID")

	chats, err := h.chats.ListChatsForUser(c.Request.Context(), userID, h.listLimit)
	if err != nil {
		respondError(c, errors.Store("load chats", err))
		return
	}
	if chats == nil {
		chats = []models.Chat{}
	}
	c.JSON(http.StatusOK, gin.H{"chats": chats})
}

// StartChat creates the chat for the caller and the partner handle. At most
// one chat exists per unordered pair; a second request reports the conflict.
func (h *ChatHandler) StartChat(c *gin.Context) {
	var req struct {
		Number string `json:"number" binding:"required"`
	}
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}
	if !isDigitsOnly(req.Number) {
		respondError(c, errors.ErrInvalidNumber)
		return
	}

	userID := c.GetInt("userID")
	requester, err := h.users.GetUser(c.Request.Context(), userID)
	if err != nil {
		respondError(c, err)
		return
	}
	if requester.Number == req.Number {
		respondError(c, errors.ErrSelfChat)
		return
	}

	_, err = h.chats.FindChatByNumbers(c.Request.Context(), requester.Number, req.Number)
	if err == nil {
		respondError(c, errors.ErrChatExists)
		return
	}
	if errors.CodeOf(err) != errors.CodeNotFound {
		respondError(c, errors.Store("look up chat", err))
		return
	}

	partner, err := h.users.GetUserByNumber(c.Request.Context(), req.Number)
	if err != nil {
		respondError(c, err)
		return
	}

	chat, err := h.chats.CreateChat(c.Request.Context(), models.Snapshot(requester), models.Snapshot(partner))
	if err != nil {
		respondError(c, err)
		return
	}

	h.bus.Publish(stream.TopicChats)
	emitAudit(c, h.audit, "INFO", "chat created")
	c.JSON(http.StatusCreated, chat)
}

// GetMessages returns the full ordered message log of a chat.
func (h *ChatHandler) GetMessages(c *gin.Context) {
	chatID, ok := parseChatID(c)
	if !ok {
		return
	}

	userID := c.GetInt("userID")
	member, err := h.chats.IsParticipant(c.Request.Context(), chatID, userID)
	if err != nil {
		respondError(c, errors.Store("verify membership", err))
		return
	}
	if !member {
		respondError(c, errors.ErrNotParticipant)
		return
	}

	msgs, err := h.messages.ListMessages(c.Request.Context(), chatID)
	if err != nil {
		respondError(c, errors.Store("load messages", err))
		return
	}
	if msgs == nil {
		msgs = []models.Message{}
	}
	c.JSON(http.StatusOK, gin.H{"messages": msgs})
}

// PostMessage appends a message and wakes the chat's live subscribers. The
// caller gets the stored message back without waiting for any fan-out.
func (h *ChatHandler) PostMessage(c *gin.Context) {
	chatID, ok := parseChatID(c)
	if !ok {
		return
	}

	userID := c.GetInt("userID")
	chat, err := h.chats.GetChat(c.Request.Context(), chatID)
	if err != nil {
		respondError(c, err)
		return
	}
	if !chat.HasParticipant(userID) {
		respondError(c, errors.ErrNotParticipant)
		return
	}

	var req struct {
		Content string `json:"content" binding:"required"`
	}
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	msg, err := h.messages.AppendMessage(c.Request.Context(), chatID, userID, req.Content)
	if err != nil {
		respondError(c, errors.Store("store message", err))
		return
	}

	h.bus.Publish(stream.TopicMessages(chatID))
	c.JSON(http.StatusCreated, msg)
}

func parseChatID(c *gin.Context) (int, bool) {
	chatID, err := strconv.Atoi(c.Param("chat_id"))
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "invalid chat id"})
		return 0, false
	}
	return chatID, true
}
