package events

import (
	"crypto/rand"
	"encoding/hex"
	"strings"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"

	"github.com/gatherly/backend/internal/authz"
	"github.com/gatherly/backend/internal/middleware"
	"github.com/gatherly/backend/internal/models"
	"github.com/gatherly/backend/pkg/response"
)

// Handler handles event HTTP endpoints.
type Handler struct {
	repo     *Repository
	resolver *authz.Resolver
}

// NewHandler creates an events handler.
func NewHandler(repo *Repository, resolver *authz.Resolver) *Handler {
	return &Handler{repo: repo, resolver: resolver}
}

// CreateRequest is the body for POST /organizations/:id/events.
type CreateRequest struct {
	Title       string     `json:"title" binding:"required"`
	Description string     `json:"description"`
	StartsAt    time.Time  `json:"starts_at" binding:"required"`
	EndsAt      *time.Time `json:"ends_at"`
}

// UpdateRequest is the body for PATCH /events/:id.
type UpdateRequest struct {
	Title       *string    `json:"title"`
	Description *string    `json:"description"`
	StartsAt    *time.Time `json:"starts_at"`
	EndsAt      *time.Time `json:"ends_at"`
}

// MemberRequest is the body for POST /events/:id/members.
type MemberRequest struct {
	UserID uuid.UUID        `json:"user_id" binding:"required"`
	Role   models.EventRole `json:"role" binding:"required"`
}

// MemberUpdateRequest is the body for PATCH /events/:id/members/:userId.
type MemberUpdateRequest struct {
	Role         models.EventRole `json:"role" binding:"required"`
	SpeakerBio   string           `json:"speaker_bio"`
	SpeakerTitle string           `json:"speaker_title"`
}

// InviteRequest is the body for POST /events/:id/invites.
type InviteRequest struct {
	Email string           `json:"email" binding:"required,email"`
	Role  models.EventRole `json:"role" binding:"required"`
}

// Create handles POST /organizations/:id/events. Requires org owner/admin.
// The creator receives an explicit admin membership.
func (h *Handler) Create(c *gin.Context) {
	orgID, err := uuid.Parse(c.Param("id"))
	if err != nil {
		response.BadRequest(c, "invalid organization id")
		return
	}
	userID := c.MustGet(middleware.ContextUserID).(uuid.UUID)
	ok, err := h.resolver.IsOrgAdminOrOwner(c.Request.Context(), orgID, userID)
	if err != nil {
		response.Internal(c, "failed to resolve organization role")
		return
	}
	if !ok {
		response.Forbidden(c, "requires organization owner or admin role")
		return
	}
	var body CreateRequest
	if err := c.ShouldBindJSON(&body); err != nil {
		response.BadRequest(c, "title and starts_at required")
		return
	}
	event := &models.Event{
		OrganizationID: orgID,
		Title:          strings.TrimSpace(body.Title),
		Description:    body.Description,
		StartsAt:       body.StartsAt,
		EndsAt:         body.EndsAt,
		CreatedBy:      userID,
	}
	if err := h.repo.Create(c.Request.Context(), event); err != nil {
		response.Internal(c, "failed to create event")
		return
	}
	response.Created(c, event)
}

// List handles GET /events. Returns events the user belongs to.
func (h *Handler) List(c *gin.Context) {
	userID := c.MustGet(middleware.ContextUserID).(uuid.UUID)
	list, err := h.repo.ListForUser(c.Request.Context(), userID)
	if err != nil {
		response.Internal(c, "failed to load events")
		return
	}
	response.OK(c, list)
}

// Get handles GET /events/:id. RequireEventRole has already checked access.
func (h *Handler) Get(c *gin.Context) {
	eventID, _ := uuid.Parse(c.Param("id"))
	event, err := h.repo.Get(c.Request.Context(), eventID)
	if err != nil || event == nil {
		response.NotFound(c, "event not found")
		return
	}
	response.OK(c, event)
}

// Update handles PATCH /events/:id. Requires organizer/admin via middleware.
func (h *Handler) Update(c *gin.Context) {
	eventID, _ := uuid.Parse(c.Param("id"))
	event, err := h.repo.Get(c.Request.Context(), eventID)
	if err != nil || event == nil {
		response.NotFound(c, "event not found")
		return
	}
	var body UpdateRequest
	if err := c.ShouldBindJSON(&body); err != nil {
		response.BadRequest(c, "invalid body")
		return
	}
	if body.Title != nil {
		event.Title = strings.TrimSpace(*body.Title)
	}
	if body.Description != nil {
		event.Description = *body.Description
	}
	if body.StartsAt != nil {
		event.StartsAt = *body.StartsAt
	}
	if body.EndsAt != nil {
		event.EndsAt = body.EndsAt
	}
	if err := h.repo.Update(c.Request.Context(), event); err != nil {
		response.Internal(c, "failed to update event")
		return
	}
	response.OK(c, event)
}

// Delete handles DELETE /events/:id. Requires admin via middleware.
func (h *Handler) Delete(c *gin.Context) {
	eventID, _ := uuid.Parse(c.Param("id"))
	if err := h.repo.Delete(c.Request.Context(), eventID); err != nil {
		response.Internal(c, "failed to delete event")
		return
	}
	response.NoContent(c)
}

// ListMembers handles GET /events/:id/members.
func (h *Handler) ListMembers(c *gin.Context) {
	eventID, _ := uuid.Parse(c.Param("id"))
	members, err := h.repo.ListMembers(c.Request.Context(), eventID)
	if err != nil {
		response.Internal(c, "failed to load members")
		return
	}
	response.OK(c, members)
}

// AddMember handles POST /events/:id/members. Requires organizer/admin via
// middleware. Creates an explicit membership row; org-derived access is
// never persisted.
func (h *Handler) AddMember(c *gin.Context) {
	eventID, _ := uuid.Parse(c.Param("id"))
	var body MemberRequest
	if err := c.ShouldBindJSON(&body); err != nil {
		response.BadRequest(c, "user_id and role required")
		return
	}
	if !body.Role.Valid() {
		response.BadRequest(c, "unknown event role")
		return
	}
	m, err := h.repo.AddMember(c.Request.Context(), eventID, body.UserID, body.Role)
	if err != nil {
		response.Internal(c, "failed to add member")
		return
	}
	response.Created(c, m)
}

// UpdateMember handles PATCH /events/:id/members/:userId.
func (h *Handler) UpdateMember(c *gin.Context) {
	eventID, _ := uuid.Parse(c.Param("id"))
	userID, err := uuid.Parse(c.Param("userId"))
	if err != nil {
		response.BadRequest(c, "invalid user id")
		return
	}
	var body MemberUpdateRequest
	if err := c.ShouldBindJSON(&body); err != nil {
		response.BadRequest(c, "role required")
		return
	}
	if !body.Role.Valid() {
		response.BadRequest(c, "unknown event role")
		return
	}
	if err := h.repo.UpdateMember(c.Request.Context(), eventID, userID, body.Role, body.SpeakerBio, body.SpeakerTitle); err != nil {
		response.Internal(c, "failed to update member")
		return
	}
	response.NoContent(c)
}

// RemoveMember handles DELETE /events/:id/members/:userId.
func (h *Handler) RemoveMember(c *gin.Context) {
	eventID, _ := uuid.Parse(c.Param("id"))
	userID, err := uuid.Parse(c.Param("userId"))
	if err != nil {
		response.BadRequest(c, "invalid user id")
		return
	}
	if err := h.repo.RemoveMember(c.Request.Context(), eventID, userID); err != nil {
		response.Internal(c, "failed to remove member")
		return
	}
	response.NoContent(c)
}

// CreateInvite handles POST /events/:id/invites. Requires organizer/admin
// via middleware.
func (h *Handler) CreateInvite(c *gin.Context) {
	eventID, _ := uuid.Parse(c.Param("id"))
	userID := c.MustGet(middleware.ContextUserID).(uuid.UUID)
	var body InviteRequest
	if err := c.ShouldBindJSON(&body); err != nil {
		response.BadRequest(c, "email and role required")
		return
	}
	if !body.Role.Valid() {
		response.BadRequest(c, "unknown event role")
		return
	}
	inv := &models.EventInvite{
		EventID:   eventID,
		Email:     strings.ToLower(strings.TrimSpace(body.Email)),
		Role:      body.Role,
		Token:     newInviteToken(),
		InvitedBy: userID,
	}
	if err := h.repo.CreateInvite(c.Request.Context(), inv); err != nil {
		response.Internal(c, "failed to create invite")
		return
	}
	response.Created(c, inv)
}

// AcceptInvite handles POST /invites/:token/accept. The authenticated user
// becomes a member with the invited role.
func (h *Handler) AcceptInvite(c *gin.Context) {
	userID := c.MustGet(middleware.ContextUserID).(uuid.UUID)
	inv, err := h.repo.InviteByToken(c.Request.Context(), c.Param("token"))
	if err != nil {
		response.Internal(c, "failed to load invite")
		return
	}
	if inv == nil {
		response.NotFound(c, "invite not found")
		return
	}
	accepted, err := h.repo.AcceptInvite(c.Request.Context(), inv.ID, userID)
	if err != nil {
		response.Internal(c, "failed to accept invite")
		return
	}
	if !accepted {
		response.Conflict(c, "invite has already been accepted")
		return
	}
	response.OK(c, gin.H{"event_id": inv.EventID, "role": inv.Role})
}

func newInviteToken() string {
	buf := make([]byte, 24)
	_, _ = rand.Read(buf)
	return hex.EncodeToString(buf)
}
