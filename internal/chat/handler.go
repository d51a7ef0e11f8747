package chat

import (
	"context"
	"strings"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"

	"github.com/gatherly/backend/internal/middleware"
	"github.com/gatherly/backend/internal/models"
	"github.com/gatherly/backend/internal/realtime"
	"github.com/gatherly/backend/pkg/response"
)

const historyLimit = 100

// ChatGate decides whether a user may post in an event's chat.
type ChatGate interface {
	CanUseChat(ctx context.Context, eventID, userID uuid.UUID) (bool, error)
}

// AccessSource checks event access and roles.
type AccessSource interface {
	CanAccessEvent(ctx context.Context, eventID, userID uuid.UUID) (bool, error)
	IsEventOrganizerOrAdmin(ctx context.Context, eventID, userID uuid.UUID) (bool, error)
}

// ConnectionSource checks whether two users hold an accepted connection.
type ConnectionSource interface {
	IsConnected(ctx context.Context, a, b uuid.UUID) (bool, error)
}

// Notifier publishes realtime events to a room.
type Notifier interface {
	PublishToRoom(room, event string, payload interface{})
}

// Handler handles chat HTTP endpoints. Posting is gated by the moderation
// gate; direct messages require an accepted connection.
type Handler struct {
	repo        *Repository
	gate        ChatGate
	access      AccessSource
	connections ConnectionSource
	notifier    Notifier
}

// NewHandler creates a chat handler.
func NewHandler(repo *Repository, gate ChatGate, access AccessSource, connections ConnectionSource, notifier Notifier) *Handler {
	return &Handler{repo: repo, gate: gate, access: access, connections: connections, notifier: notifier}
}

// RoomRequest is the body for POST /events/:id/rooms.
type RoomRequest struct {
	Name string `json:"name" binding:"required"`
}

// MessageRequest is the body for posting a message.
type MessageRequest struct {
	Body string `json:"body" binding:"required"`
}

// CreateRoom handles POST /events/:id/rooms. RequireEventRole(organizer,
// admin) runs before this.
func (h *Handler) CreateRoom(c *gin.Context) {
	eventID, _ := uuid.Parse(c.Param("id"))
	userID := c.MustGet(middleware.ContextUserID).(uuid.UUID)
	var body RoomRequest
	if err := c.ShouldBindJSON(&body); err != nil {
		response.BadRequest(c, "name required")
		return
	}
	room := &models.ChatRoom{
		EventID:   eventID,
		Name:      strings.TrimSpace(body.Name),
		CreatedBy: userID,
	}
	if err := h.repo.CreateRoom(c.Request.Context(), room); err != nil {
		response.Internal(c, "failed to create room")
		return
	}
	response.Created(c, room)
}

// ListRooms handles GET /events/:id/rooms. RequireEventRole runs before this.
func (h *Handler) ListRooms(c *gin.Context) {
	eventID, _ := uuid.Parse(c.Param("id"))
	rooms, err := h.repo.ListRooms(c.Request.Context(), eventID)
	if err != nil {
		response.Internal(c, "failed to load rooms")
		return
	}
	response.OK(c, rooms)
}

// room loads the chat room and verifies the caller can access its event.
func (h *Handler) room(c *gin.Context) (*models.ChatRoom, bool) {
	roomID, err := uuid.Parse(c.Param("id"))
	if err != nil {
		response.BadRequest(c, "invalid room id")
		return nil, false
	}
	room, err := h.repo.Room(c.Request.Context(), roomID)
	if err != nil {
		response.Internal(c, "failed to load room")
		return nil, false
	}
	if room == nil {
		response.NotFound(c, "room not found")
		return nil, false
	}
	userID := c.MustGet(middleware.ContextUserID).(uuid.UUID)
	ok, err := h.access.CanAccessEvent(c.Request.Context(), room.EventID, userID)
	if err != nil {
		response.Internal(c, "failed to check event access")
		return nil, false
	}
	if !ok {
		response.Forbidden(c, "no access to this event")
		return nil, false
	}
	return room, true
}

// PostMessage handles POST /rooms/:id/messages. The moderation gate runs on
// every post; bans and unexpired chat bans block here.
func (h *Handler) PostMessage(c *gin.Context) {
	room, ok := h.room(c)
	if !ok {
		return
	}
	userID := c.MustGet(middleware.ContextUserID).(uuid.UUID)
	allowed, err := h.gate.CanUseChat(c.Request.Context(), room.EventID, userID)
	if err != nil {
		response.Internal(c, "failed to check chat access")
		return
	}
	if !allowed {
		response.Forbidden(c, "you are not allowed to post in this event's chat")
		return
	}
	var body MessageRequest
	if err := c.ShouldBindJSON(&body); err != nil || strings.TrimSpace(body.Body) == "" {
		response.BadRequest(c, "body required")
		return
	}
	msg := &models.ChatMessage{
		RoomID:   room.ID,
		SenderID: userID,
		Body:     strings.TrimSpace(body.Body),
	}
	if err := h.repo.CreateMessage(c.Request.Context(), msg); err != nil {
		response.Internal(c, "failed to store message")
		return
	}
	h.notifier.PublishToRoom(realtime.ChatRoom(room.ID), "chat_message", msg)
	response.Created(c, msg)
}

// ListMessages handles GET /rooms/:id/messages.
func (h *Handler) ListMessages(c *gin.Context) {
	room, ok := h.room(c)
	if !ok {
		return
	}
	list, err := h.repo.ListMessages(c.Request.Context(), room.ID, historyLimit)
	if err != nil {
		response.Internal(c, "failed to load messages")
		return
	}
	response.OK(c, list)
}

// SendDirect handles POST /messages/:userId. Requires an accepted connection
// between sender and recipient.
func (h *Handler) SendDirect(c *gin.Context) {
	senderID := c.MustGet(middleware.ContextUserID).(uuid.UUID)
	recipientID, err := uuid.Parse(c.Param("userId"))
	if err != nil {
		response.BadRequest(c, "invalid user id")
		return
	}
	connected, err := h.connections.IsConnected(c.Request.Context(), senderID, recipientID)
	if err != nil {
		response.Internal(c, "failed to check connection")
		return
	}
	if !connected {
		response.Forbidden(c, "direct messages require an accepted connection")
		return
	}
	var body MessageRequest
	if err := c.ShouldBindJSON(&body); err != nil || strings.TrimSpace(body.Body) == "" {
		response.BadRequest(c, "body required")
		return
	}
	msg := &models.DirectMessage{
		SenderID:    senderID,
		RecipientID: recipientID,
		Body:        strings.TrimSpace(body.Body),
	}
	if err := h.repo.CreateDirectMessage(c.Request.Context(), msg); err != nil {
		response.Internal(c, "failed to store message")
		return
	}
	h.notifier.PublishToRoom(realtime.UserRoom(recipientID), "direct_message", msg)
	response.Created(c, msg)
}

// ListDirect handles GET /messages/:userId.
func (h *Handler) ListDirect(c *gin.Context) {
	userID := c.MustGet(middleware.ContextUserID).(uuid.UUID)
	otherID, err := uuid.Parse(c.Param("userId"))
	if err != nil {
		response.BadRequest(c, "invalid user id")
		return
	}
	connected, err := h.connections.IsConnected(c.Request.Context(), userID, otherID)
	if err != nil {
		response.Internal(c, "failed to check connection")
		return
	}
	if !connected {
		response.Forbidden(c, "direct messages require an accepted connection")
		return
	}
	list, err := h.repo.ListDirectMessages(c.Request.Context(), userID, otherID, historyLimit)
	if err != nil {
		response.Internal(c, "failed to load messages")
		return
	}
	response.OK(c, list)
}
