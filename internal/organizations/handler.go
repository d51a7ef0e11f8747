package organizations

import (
	"strings"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"

	"github.com/gatherly/backend/internal/middleware"
	"github.com/gatherly/backend/internal/models"
	"github.com/gatherly/backend/pkg/response"
)

// Handler handles organization HTTP endpoints.
type Handler struct {
	svc *Service
}

// NewHandler creates an organizations handler.
func NewHandler(svc *Service) *Handler {
	return &Handler{svc: svc}
}

// CreateRequest is the body for POST /organizations.
type CreateRequest struct {
	Name string `json:"name" binding:"required"`
}

// MemberRequest is the body for POST /organizations/:id/members.
type MemberRequest struct {
	UserID uuid.UUID      `json:"user_id" binding:"required"`
	Role   models.OrgRole `json:"role" binding:"required"`
}

// RoleRequest is the body for PATCH /organizations/:id/members/:userId.
type RoleRequest struct {
	Role models.OrgRole `json:"role" binding:"required"`
}

// TransferRequest is the body for POST /organizations/:id/transfer-ownership.
type TransferRequest struct {
	ToUserID uuid.UUID `json:"to_user_id" binding:"required"`
}

// Create handles POST /organizations. The creator becomes the owner.
func (h *Handler) Create(c *gin.Context) {
	userID := c.MustGet(middleware.ContextUserID).(uuid.UUID)
	var body CreateRequest
	if err := c.ShouldBindJSON(&body); err != nil {
		response.BadRequest(c, "name required")
		return
	}
	name := strings.TrimSpace(body.Name)
	if len(name) < 1 || len(name) > 255 {
		response.BadRequest(c, "name must be 1–255 characters")
		return
	}
	org, err := h.svc.CreateWithOwner(c.Request.Context(), name, userID)
	if err != nil {
		response.Internal(c, "failed to create organization")
		return
	}
	response.Created(c, org)
}

// List handles GET /organizations. Returns orgs the current user belongs to.
func (h *Handler) List(c *gin.Context) {
	userID := c.MustGet(middleware.ContextUserID).(uuid.UUID)
	orgs, err := h.svc.ListForUser(c.Request.Context(), userID)
	if err != nil {
		response.Internal(c, "failed to load organizations")
		return
	}
	response.OK(c, orgs)
}

// Get handles GET /organizations/:id.
func (h *Handler) Get(c *gin.Context) {
	orgID, err := uuid.Parse(c.Param("id"))
	if err != nil {
		response.BadRequest(c, "invalid organization id")
		return
	}
	userID := c.MustGet(middleware.ContextUserID).(uuid.UUID)
	org, err := h.svc.Get(c.Request.Context(), orgID, userID)
	if err != nil {
		response.Error(c, err)
		return
	}
	response.OK(c, org)
}

// ListMembers handles GET /organizations/:id/members.
func (h *Handler) ListMembers(c *gin.Context) {
	orgID, err := uuid.Parse(c.Param("id"))
	if err != nil {
		response.BadRequest(c, "invalid organization id")
		return
	}
	userID := c.MustGet(middleware.ContextUserID).(uuid.UUID)
	members, err := h.svc.ListMembers(c.Request.Context(), orgID, userID)
	if err != nil {
		response.Error(c, err)
		return
	}
	response.OK(c, members)
}

// AddMember handles POST /organizations/:id/members.
func (h *Handler) AddMember(c *gin.Context) {
	orgID, err := uuid.Parse(c.Param("id"))
	if err != nil {
		response.BadRequest(c, "invalid organization id")
		return
	}
	actorID := c.MustGet(middleware.ContextUserID).(uuid.UUID)
	var body MemberRequest
	if err := c.ShouldBindJSON(&body); err != nil {
		response.BadRequest(c, "user_id and role required")
		return
	}
	m, err := h.svc.AddMember(c.Request.Context(), orgID, actorID, body.UserID, body.Role)
	if err != nil {
		response.Error(c, err)
		return
	}
	response.Created(c, m)
}

// UpdateMemberRole handles PATCH /organizations/:id/members/:userId.
func (h *Handler) UpdateMemberRole(c *gin.Context) {
	orgID, err := uuid.Parse(c.Param("id"))
	if err != nil {
		response.BadRequest(c, "invalid organization id")
		return
	}
	userID, err := uuid.Parse(c.Param("userId"))
	if err != nil {
		response.BadRequest(c, "invalid user id")
		return
	}
	actorID := c.MustGet(middleware.ContextUserID).(uuid.UUID)
	var body RoleRequest
	if err := c.ShouldBindJSON(&body); err != nil {
		response.BadRequest(c, "role required")
		return
	}
	if err := h.svc.UpdateMemberRole(c.Request.Context(), orgID, actorID, userID, body.Role); err != nil {
		response.Error(c, err)
		return
	}
	response.NoContent(c)
}

// RemoveMember handles DELETE /organizations/:id/members/:userId.
func (h *Handler) RemoveMember(c *gin.Context) {
	orgID, err := uuid.Parse(c.Param("id"))
	if err != nil {
		response.BadRequest(c, "invalid organization id")
		return
	}
	userID, err := uuid.Parse(c.Param("userId"))
	if err != nil {
		response.BadRequest(c, "invalid user id")
		return
	}
	actorID := c.MustGet(middleware.ContextUserID).(uuid.UUID)
	if err := h.svc.RemoveMember(c.Request.Context(), orgID, actorID, userID); err != nil {
		response.Error(c, err)
		return
	}
	response.NoContent(c)
}

// TransferOwnership handles POST /organizations/:id/transfer-ownership.
func (h *Handler) TransferOwnership(c *gin.Context) {
	orgID, err := uuid.Parse(c.Param("id"))
	if err != nil {
		response.BadRequest(c, "invalid organization id")
		return
	}
	actorID := c.MustGet(middleware.ContextUserID).(uuid.UUID)
	var body TransferRequest
	if err := c.ShouldBindJSON(&body); err != nil {
		response.BadRequest(c, "to_user_id required")
		return
	}
	if err := h.svc.TransferOwnership(c.Request.Context(), orgID, actorID, body.ToUserID); err != nil {
		response.Error(c, err)
		return
	}
	response.NoContent(c)
}
