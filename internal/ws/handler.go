package ws

import (
	"context"
	"net/http"
	"strconv"
	"strings"
	"sync"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/gorilla/websocket"
	"go.opentelemetry.io/otel"

	"chatsync-service/internal/auth"
	"chatsync-service/internal/livefeed"
	"chatsync-service/internal/models"
	"chatsync-service/internal/observability"
	"chatsync-service/internal/repositories"
)

// SubscriptionHandler upgrades websocket connections and pumps live feed
// snapshots into them. One connection serves exactly one subscription.
type SubscriptionHandler struct {
	hub    *Hub
	feeds  *livefeed.Service
	chats  repositories.ChatRepository
	issuer auth.Issuer
}

// NewSubscriptionHandler constructs a SubscriptionHandler.
func NewSubscriptionHandler(hub *Hub, feeds *livefeed.Service, chats repositories.ChatRepository, issuer auth.Issuer) *SubscriptionHandler {
	return &SubscriptionHandler{hub: hub, feeds: feeds, chats: chats, issuer: issuer}
}

var upgrader = websocket.Upgrader{
	CheckOrigin: func(r *http.Request) bool { return true },
}

// HandleChats serves the caller's conversation-set subscription.
func (h *SubscriptionHandler) HandleChats(c *gin.Context) {
	userID, ok := h.authenticate(c)
	if !ok {
		return
	}

	conn, info, ok := h.establish(c, KindChats, userID)
	if !ok {
		return
	}

	feed := h.feeds.SubscribeChats(context.Background(), userID)
	life := newConnLifecycle(h.hub, KindChats, conn, info, feed.Close)
	go life.read()
	go func() {
		for snapshot := range feed.Snapshots() {
			if err := conn.WriteJSON(models.ChatListEvent{Type: KindChats, Chats: snapshot}); err != nil {
				life.fail(err)
				return
			}
		}
	}()
}

// HandleMessages serves one chat's message-log subscription. Participants
// only; closing the socket deregisters the subscription.
func (h *SubscriptionHandler) HandleMessages(c *gin.Context) {
	chatID, err := strconv.Atoi(c.Param("chat_id"))
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "invalid chat id"})
		return
	}

	userID, ok := h.authenticate(c)
	if !ok {
		return
	}

	member, err := h.chats.IsParticipant(c.Request.Context(), chatID, userID)
	if err != nil || !member {
		c.JSON(http.StatusForbidden, gin.H{"error": "not authorized for chat"})
		return
	}

	conn, info, ok := h.establish(c, KindMessages, userID)
	if !ok {
		return
	}

	feed := h.feeds.SubscribeMessages(context.Background(), chatID)
	life := newConnLifecycle(h.hub, KindMessages, conn, info, feed.Close)
	go life.read()
	go func() {
		for snapshot := range feed.Snapshots() {
			if err := conn.WriteJSON(models.MessageListEvent{Type: KindMessages, ChatID: chatID, Messages: snapshot}); err != nil {
				life.fail(err)
				return
			}
		}
	}()
}

// HandleStatuses serves the caller's visible-status subscription.
func (h *SubscriptionHandler) HandleStatuses(c *gin.Context) {
	userID, ok := h.authenticate(c)
	if !ok {
		return
	}

	conn, info, ok := h.establish(c, KindStatuses, userID)
	if !ok {
		return
	}

	feed := h.feeds.SubscribeStatuses(context.Background(), userID)
	life := newConnLifecycle(h.hub, KindStatuses, conn, info, feed.Close)
	go life.read()
	go func() {
		for snapshot := range feed.Snapshots() {
			if err := conn.WriteJSON(models.StatusListEvent{Type: KindStatuses, Statuses: snapshot}); err != nil {
				life.fail(err)
				return
			}
		}
	}()
}

func (h *SubscriptionHandler) authenticate(c *gin.Context) (int, bool) {
	token := c.GetHeader("Authorization")
	if token == "" {
		if query := c.Query("token"); query != "" {
			token = "Bearer " + query
		}
	}

	parts := strings.Split(token, " ")
	if len(parts) != 2 {
		c.JSON(http.StatusUnauthorized, gin.H{"error": "invalid token"})
		return 0, false
	}
	userID, err := h.issuer.Authenticate(c.Request.Context(), parts[1])
	if err != nil {
		c.JSON(http.StatusUnauthorized, gin.H{"error": "invalid token"})
		return 0, false
	}
	return userID, true
}

func (h *SubscriptionHandler) establish(c *gin.Context, kind string, userID int) (*websocket.Conn, ConnInfo, bool) {
	ctx, span := otel.Tracer("chatsync-service/ws").Start(c.Request.Context(), "ws.handshake")
	defer span.End()
	c.Request = c.Request.WithContext(ctx)

	conn, err := upgrader.Upgrade(c.Writer, c.Request, nil)
	if err != nil {
		return nil, ConnInfo{}, false
	}

	info := ConnInfo{
		ConnID:      newConnID(),
		UserID:      userID,
		DeviceID:    observability.DeviceIDFromRequest(c.Request),
		IP:          observability.IPFromRequest(c.Request),
		RequestID:   observability.RequestIDFromRequest(c.Request),
		TraceID:     span.SpanContext().TraceID().String(),
		ConnectedAt: time.Now(),
	}
	h.hub.Add(kind, conn, info)

	observability.IncWSActive(kind)
	observability.IncWSEvent(kind, "ws_connect")
	publishWSEvent(kind, info, "ws_connect", "")
	return conn, info, true
}

// connLifecycle owns the teardown of one websocket subscription. Teardown
// closes the feed before anything else so no snapshot is delivered after
// the connection is gone, and runs at most once.
type connLifecycle struct {
	hub       *Hub
	kind      string
	conn      *websocket.Conn
	info      ConnInfo
	closeFeed func()
	once      sync.Once
}

func newConnLifecycle(hub *Hub, kind string, conn *websocket.Conn, info ConnInfo, closeFeed func()) *connLifecycle {
	return &connLifecycle{hub: hub, kind: kind, conn: conn, info: info, closeFeed: closeFeed}
}

// read drains the connection to detect the peer closing it.
func (l *connLifecycle) read() {
	for {
		if _, _, err := l.conn.ReadMessage(); err != nil {
			if !websocket.IsCloseError(err, websocket.CloseNormalClosure, websocket.CloseGoingAway) {
				observability.IncWSEvent(l.kind, "ws_error")
				publishWSEvent(l.kind, l.info, "ws_error", err.Error())
			}
			l.teardown(err.Error())
			return
		}
	}
}

// fail records a write failure and tears the connection down.
func (l *connLifecycle) fail(err error) {
	observability.IncWSEvent(l.kind, "ws_error")
	publishWSEvent(l.kind, l.info, "ws_error", err.Error())
	l.teardown(err.Error())
}

func (l *connLifecycle) teardown(reason string) {
	l.once.Do(func() {
		l.closeFeed()
		l.hub.Remove(l.kind, l.conn)
		l.conn.Close()
		observability.DecWSActive(l.kind)
		observability.IncWSEvent(l.kind, "ws_disconnect")
		publishWSEvent(l.kind, l.info, "ws_disconnect", reason)
	})
}

func publishWSEvent(kind string, info ConnInfo, event, reason string) {
	details := observability.WSConnDetails{
		Kind:        kind,
		ConnID:      info.ConnID,
		UserID:      info.UserID,
		DeviceID:    info.DeviceID,
		IP:          info.IP,
		ConnectedAt: info.ConnectedAt,
	}
	headers := observability.BuildHeaders(info.RequestID, info.TraceID)
	_ = observability.PublishEvent(context.Background(), "ws_events."+kind, observability.EventEnvelope{
		EventType: "ws_events",
		EventName: event,
		Payload:   observability.WSEventPayload(details, event, reason),
	}, headers)
}
