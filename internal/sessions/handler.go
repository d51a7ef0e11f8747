package sessions

import (
	"strings"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"

	"github.com/gatherly/backend/internal/authz"
	"github.com/gatherly/backend/internal/middleware"
	"github.com/gatherly/backend/internal/models"
	"github.com/gatherly/backend/pkg/response"
)

// Handler handles session HTTP endpoints.
type Handler struct {
	repo     *Repository
	resolver *authz.Resolver
}

// NewHandler creates a sessions handler.
func NewHandler(repo *Repository, resolver *authz.Resolver) *Handler {
	return &Handler{repo: repo, resolver: resolver}
}

// CreateRequest is the body for POST /events/:id/sessions.
type CreateRequest struct {
	Title    string     `json:"title" binding:"required"`
	StartsAt time.Time  `json:"starts_at" binding:"required"`
	EndsAt   *time.Time `json:"ends_at"`
}

// AssignRequest is the body for POST /sessions/:id/speakers.
type AssignRequest struct {
	UserID   uuid.UUID          `json:"user_id" binding:"required"`
	Role     models.SessionRole `json:"role" binding:"required"`
	Position int                `json:"position" binding:"required"`
}

// ReorderRequest is the body for PUT /sessions/:id/speakers/order.
type ReorderRequest struct {
	UserIDs []uuid.UUID `json:"user_ids" binding:"required"`
}

// session loads the session and checks the caller holds one of the given
// effective event roles (any role when none given).
func (h *Handler) session(c *gin.Context, roles ...models.EventRole) (*models.Session, bool) {
	sessionID, err := uuid.Parse(c.Param("id"))
	if err != nil {
		response.BadRequest(c, "invalid session id")
		return nil, false
	}
	session, err := h.repo.Get(c.Request.Context(), sessionID)
	if err != nil {
		response.Internal(c, "failed to load session")
		return nil, false
	}
	if session == nil {
		response.NotFound(c, "session not found")
		return nil, false
	}
	userID := c.MustGet(middleware.ContextUserID).(uuid.UUID)
	role, err := h.resolver.EventRole(c.Request.Context(), session.EventID, userID)
	if err != nil {
		response.Internal(c, "failed to resolve event role")
		return nil, false
	}
	if role == "" {
		response.Forbidden(c, "no access to this event")
		return nil, false
	}
	if len(roles) > 0 {
		permitted := false
		for _, r := range roles {
			if role == r {
				permitted = true
				break
			}
		}
		if !permitted {
			response.Forbidden(c, "insufficient event role")
			return nil, false
		}
	}
	return session, true
}

// Create handles POST /events/:id/sessions. RequireEventRole(organizer,
// admin) runs before this.
func (h *Handler) Create(c *gin.Context) {
	eventID, _ := uuid.Parse(c.Param("id"))
	var body CreateRequest
	if err := c.ShouldBindJSON(&body); err != nil {
		response.BadRequest(c, "title and starts_at required")
		return
	}
	session := &models.Session{
		EventID:  eventID,
		Title:    strings.TrimSpace(body.Title),
		StartsAt: body.StartsAt,
		EndsAt:   body.EndsAt,
	}
	if err := h.repo.Create(c.Request.Context(), session); err != nil {
		response.Internal(c, "failed to create session")
		return
	}
	response.Created(c, session)
}

// ListForEvent handles GET /events/:id/sessions.
func (h *Handler) ListForEvent(c *gin.Context) {
	eventID, _ := uuid.Parse(c.Param("id"))
	list, err := h.repo.ListForEvent(c.Request.Context(), eventID)
	if err != nil {
		response.Internal(c, "failed to load sessions")
		return
	}
	response.OK(c, list)
}

// Get handles GET /sessions/:id.
func (h *Handler) Get(c *gin.Context) {
	session, ok := h.session(c)
	if !ok {
		return
	}
	response.OK(c, session)
}

// Delete handles DELETE /sessions/:id.
func (h *Handler) Delete(c *gin.Context) {
	session, ok := h.session(c, models.EventRoleOrganizer, models.EventRoleAdmin)
	if !ok {
		return
	}
	if err := h.repo.Delete(c.Request.Context(), session.ID); err != nil {
		response.Internal(c, "failed to delete session")
		return
	}
	response.NoContent(c)
}

// AssignSpeaker handles POST /sessions/:id/speakers.
func (h *Handler) AssignSpeaker(c *gin.Context) {
	session, ok := h.session(c, models.EventRoleOrganizer, models.EventRoleAdmin)
	if !ok {
		return
	}
	var body AssignRequest
	if err := c.ShouldBindJSON(&body); err != nil {
		response.BadRequest(c, "user_id, role and position required")
		return
	}
	if !body.Role.Valid() {
		response.BadRequest(c, "unknown session role")
		return
	}
	if body.Position < 1 {
		response.BadRequest(c, "position must be positive")
		return
	}
	assignment := &models.SpeakerAssignment{
		SessionID: session.ID,
		UserID:    body.UserID,
		Role:      body.Role,
		Position:  body.Position,
	}
	if err := h.repo.AssignSpeaker(c.Request.Context(), assignment); err != nil {
		response.Error(c, err)
		return
	}
	response.Created(c, assignment)
}

// ListSpeakers handles GET /sessions/:id/speakers.
func (h *Handler) ListSpeakers(c *gin.Context) {
	session, ok := h.session(c)
	if !ok {
		return
	}
	list, err := h.repo.ListAssignments(c.Request.Context(), session.ID)
	if err != nil {
		response.Internal(c, "failed to load speakers")
		return
	}
	response.OK(c, list)
}

// RemoveSpeaker handles DELETE /sessions/:id/speakers/:userId.
func (h *Handler) RemoveSpeaker(c *gin.Context) {
	session, ok := h.session(c, models.EventRoleOrganizer, models.EventRoleAdmin)
	if !ok {
		return
	}
	userID, err := uuid.Parse(c.Param("userId"))
	if err != nil {
		response.BadRequest(c, "invalid user id")
		return
	}
	if err := h.repo.RemoveAssignment(c.Request.Context(), session.ID, userID); err != nil {
		response.Internal(c, "failed to remove speaker")
		return
	}
	response.NoContent(c)
}

// ReorderSpeakers handles PUT /sessions/:id/speakers/order.
func (h *Handler) ReorderSpeakers(c *gin.Context) {
	session, ok := h.session(c, models.EventRoleOrganizer, models.EventRoleAdmin)
	if !ok {
		return
	}
	var body ReorderRequest
	if err := c.ShouldBindJSON(&body); err != nil || len(body.UserIDs) == 0 {
		response.BadRequest(c, "user_ids required")
		return
	}
	if err := h.repo.Reorder(c.Request.Context(), session.ID, body.UserIDs); err != nil {
		response.Error(c, err)
		return
	}
	response.NoContent(c)
}
