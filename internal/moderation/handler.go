package moderation

import (
	"github.com/gin-gonic/gin"
	"github.com/google/uuid"

	"github.com/gatherly/backend/internal/middleware"
	"github.com/gatherly/backend/internal/realtime"
	"github.com/gatherly/backend/pkg/response"
)

// Notifier broadcasts moderation transitions to realtime rooms.
type Notifier interface {
	PublishToRoom(room, event string, payload interface{})
}

// Handler handles moderation HTTP endpoints.
type Handler struct {
	gate     *Gate
	notifier Notifier
}

// NewHandler creates a moderation handler.
func NewHandler(gate *Gate, notifier Notifier) *Handler {
	return &Handler{gate: gate, notifier: notifier}
}

// BanRequest is the body for ban and unban endpoints.
type BanRequest struct {
	UserID uuid.UUID `json:"user_id" binding:"required"`
	Reason string    `json:"reason"`
	Notes  string    `json:"notes"`
}

// ChatBanRequest is the body for POST /events/:id/moderation/chat-ban.
type ChatBanRequest struct {
	UserID        uuid.UUID `json:"user_id" binding:"required"`
	Reason        string    `json:"reason"`
	DurationHours *int      `json:"duration_hours"`
	Notes         string    `json:"notes"`
}

func (h *Handler) eventAndModerator(c *gin.Context) (uuid.UUID, uuid.UUID, bool) {
	eventID, err := uuid.Parse(c.Param("id"))
	if err != nil {
		response.BadRequest(c, "invalid event id")
		return uuid.Nil, uuid.Nil, false
	}
	return eventID, c.MustGet(middleware.ContextUserID).(uuid.UUID), true
}

// Ban handles POST /events/:id/moderation/ban.
func (h *Handler) Ban(c *gin.Context) {
	eventID, moderatorID, ok := h.eventAndModerator(c)
	if !ok {
		return
	}
	var body BanRequest
	if err := c.ShouldBindJSON(&body); err != nil {
		response.BadRequest(c, "user_id required")
		return
	}
	rec, err := h.gate.Ban(c.Request.Context(), eventID, body.UserID, moderatorID, body.Reason, body.Notes)
	if err != nil {
		response.Error(c, err)
		return
	}
	h.broadcast(eventID, body.UserID, "user_banned", rec)
	response.OK(c, rec)
}

// Unban handles POST /events/:id/moderation/unban.
func (h *Handler) Unban(c *gin.Context) {
	eventID, moderatorID, ok := h.eventAndModerator(c)
	if !ok {
		return
	}
	var body BanRequest
	if err := c.ShouldBindJSON(&body); err != nil {
		response.BadRequest(c, "user_id required")
		return
	}
	rec, err := h.gate.Unban(c.Request.Context(), eventID, body.UserID, moderatorID)
	if err != nil {
		response.Error(c, err)
		return
	}
	h.broadcast(eventID, body.UserID, "user_unbanned", rec)
	response.OK(c, rec)
}

// ChatBan handles POST /events/:id/moderation/chat-ban.
func (h *Handler) ChatBan(c *gin.Context) {
	eventID, moderatorID, ok := h.eventAndModerator(c)
	if !ok {
		return
	}
	var body ChatBanRequest
	if err := c.ShouldBindJSON(&body); err != nil {
		response.BadRequest(c, "user_id required")
		return
	}
	rec, err := h.gate.ChatBan(c.Request.Context(), eventID, body.UserID, moderatorID, body.Reason, body.DurationHours, body.Notes)
	if err != nil {
		response.Error(c, err)
		return
	}
	h.broadcast(eventID, body.UserID, "chat_banned", rec)
	response.OK(c, rec)
}

// ChatUnban handles POST /events/:id/moderation/chat-unban.
func (h *Handler) ChatUnban(c *gin.Context) {
	eventID, moderatorID, ok := h.eventAndModerator(c)
	if !ok {
		return
	}
	var body BanRequest
	if err := c.ShouldBindJSON(&body); err != nil {
		response.BadRequest(c, "user_id required")
		return
	}
	rec, err := h.gate.ChatUnban(c.Request.Context(), eventID, body.UserID, moderatorID)
	if err != nil {
		response.Error(c, err)
		return
	}
	h.broadcast(eventID, body.UserID, "chat_unbanned", rec)
	response.OK(c, rec)
}

// GetRecord handles GET /events/:id/moderation/:userId.
func (h *Handler) GetRecord(c *gin.Context) {
	eventID, viewerID, ok := h.eventAndModerator(c)
	if !ok {
		return
	}
	userID, err := uuid.Parse(c.Param("userId"))
	if err != nil {
		response.BadRequest(c, "invalid user id")
		return
	}
	rec, err := h.gate.Record(c.Request.Context(), eventID, userID, viewerID)
	if err != nil {
		response.Error(c, err)
		return
	}
	response.OK(c, rec)
}

func (h *Handler) broadcast(eventID, userID uuid.UUID, event string, payload interface{}) {
	if h.notifier == nil {
		return
	}
	h.notifier.PublishToRoom(realtime.EventRoom(eventID), event, payload)
	h.notifier.PublishToRoom(realtime.UserRoom(userID), event, payload)
}
