package connections

import (
	"strings"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"

	"github.com/gatherly/backend/internal/middleware"
	"github.com/gatherly/backend/internal/realtime"
	"github.com/gatherly/backend/pkg/response"
)

// Notifier broadcasts to realtime rooms. Fire-and-forget, at-most-once.
type Notifier interface {
	PublishToRoom(room, event string, payload interface{})
}

// Handler handles connection HTTP endpoints.
type Handler struct {
	graph    *Graph
	notifier Notifier
}

// NewHandler creates a connections handler.
func NewHandler(graph *Graph, notifier Notifier) *Handler {
	return &Handler{graph: graph, notifier: notifier}
}

// RequestBody is the body for POST /connections.
type RequestBody struct {
	RecipientID uuid.UUID  `json:"recipient_id" binding:"required"`
	Icebreaker  string     `json:"icebreaker"`
	EventID     *uuid.UUID `json:"event_id"`
}

// RespondBody is the body for POST /connections/:id/respond.
type RespondBody struct {
	Decision string `json:"decision" binding:"required"`
}

// Request handles POST /connections.
func (h *Handler) Request(c *gin.Context) {
	userID := c.MustGet(middleware.ContextUserID).(uuid.UUID)
	var body RequestBody
	if err := c.ShouldBindJSON(&body); err != nil {
		response.BadRequest(c, "recipient_id required")
		return
	}
	conn, err := h.graph.Request(c.Request.Context(), userID, body.RecipientID, strings.TrimSpace(body.Icebreaker), body.EventID)
	if err != nil {
		response.Error(c, err)
		return
	}
	if h.notifier != nil {
		h.notifier.PublishToRoom(realtime.UserRoom(conn.RecipientID), "connection_request", conn)
	}
	response.Created(c, conn)
}

// Respond handles POST /connections/:id/respond.
func (h *Handler) Respond(c *gin.Context) {
	userID := c.MustGet(middleware.ContextUserID).(uuid.UUID)
	connectionID, err := uuid.Parse(c.Param("id"))
	if err != nil {
		response.BadRequest(c, "invalid connection id")
		return
	}
	var body RespondBody
	if err := c.ShouldBindJSON(&body); err != nil {
		response.BadRequest(c, "decision required")
		return
	}
	conn, err := h.graph.Respond(c.Request.Context(), connectionID, userID, Decision(strings.ToLower(body.Decision)))
	if err != nil {
		response.Error(c, err)
		return
	}
	if h.notifier != nil {
		h.notifier.PublishToRoom(realtime.UserRoom(conn.RequesterID), "connection_response", conn)
	}
	response.OK(c, conn)
}

// List handles GET /connections.
func (h *Handler) List(c *gin.Context) {
	userID := c.MustGet(middleware.ContextUserID).(uuid.UUID)
	list, err := h.graph.ListForUser(c.Request.Context(), userID)
	if err != nil {
		response.Internal(c, "failed to load connections")
		return
	}
	response.OK(c, list)
}

// Status handles GET /connections/status?user_id=. Returns the status of the
// connection between the caller and the given user, if any.
func (h *Handler) Status(c *gin.Context) {
	userID := c.MustGet(middleware.ContextUserID).(uuid.UUID)
	otherID, err := uuid.Parse(c.Query("user_id"))
	if err != nil {
		response.BadRequest(c, "user_id required")
		return
	}
	status, err := h.graph.StatusBetween(c.Request.Context(), userID, otherID)
	if err != nil {
		response.Internal(c, "failed to check connection status")
		return
	}
	if status == "" {
		response.OK(c, gin.H{"status": nil})
		return
	}
	response.OK(c, gin.H{"status": status})
}
