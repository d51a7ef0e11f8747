package users

import (
	"context"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"

	"github.com/gatherly/backend/internal/middleware"
	"github.com/gatherly/backend/internal/models"
	"github.com/gatherly/backend/internal/visibility"
	"github.com/gatherly/backend/pkg/response"
)

// MembershipLister lists an event's memberships, for the attendee listing.
type MembershipLister interface {
	ListMembers(ctx context.Context, eventID uuid.UUID) ([]*models.EventMembership, error)
}

// Handler handles user profile HTTP endpoints. Every profile read goes
// through the visibility filter; there is no unfiltered path.
type Handler struct {
	repo    *Repository
	filter  *visibility.Filter
	members MembershipLister
}

// NewHandler creates a users handler.
func NewHandler(repo *Repository, filter *visibility.Filter, members MembershipLister) *Handler {
	return &Handler{repo: repo, filter: filter, members: members}
}

// ProfileUpdateRequest is the body for PATCH /me/profile.
type ProfileUpdateRequest struct {
	FirstName   *string            `json:"first_name"`
	LastName    *string            `json:"last_name"`
	ImageURL    *string            `json:"image_url"`
	CompanyName *string            `json:"company_name"`
	Bio         *string            `json:"bio"`
	SocialLinks *map[string]string `json:"social_links"`
}

// eventCtx reads the optional event_id query parameter.
func eventCtx(c *gin.Context) (*uuid.UUID, bool) {
	raw := c.Query("event_id")
	if raw == "" {
		return nil, true
	}
	id, err := uuid.Parse(raw)
	if err != nil {
		response.BadRequest(c, "invalid event_id")
		return nil, false
	}
	return &id, true
}

// GetProfile handles GET /users/:id/profile. Returns the caller's redacted
// view of the subject's profile, optionally in an event context.
func (h *Handler) GetProfile(c *gin.Context) {
	viewerID := c.MustGet(middleware.ContextUserID).(uuid.UUID)
	subjectID, err := uuid.Parse(c.Param("id"))
	if err != nil {
		response.BadRequest(c, "invalid user id")
		return
	}
	event, ok := eventCtx(c)
	if !ok {
		return
	}
	subject, err := h.repo.Get(c.Request.Context(), subjectID)
	if err != nil {
		response.Internal(c, "failed to load user")
		return
	}
	if subject == nil {
		response.NotFound(c, "user not found")
		return
	}
	proj, err := h.filter.Project(c.Request.Context(), visibility.Viewer(viewerID), subject, event)
	if err != nil {
		response.Internal(c, "failed to compute profile")
		return
	}
	response.OK(c, proj)
}

// Me handles GET /me. Self-view is still a projection, just an unfiltered one.
func (h *Handler) Me(c *gin.Context) {
	userID := c.MustGet(middleware.ContextUserID).(uuid.UUID)
	user, err := h.repo.Get(c.Request.Context(), userID)
	if err != nil || user == nil {
		response.Internal(c, "failed to load user")
		return
	}
	proj, err := h.filter.Project(c.Request.Context(), visibility.Viewer(userID), user, nil)
	if err != nil {
		response.Internal(c, "failed to compute profile")
		return
	}
	response.OK(c, proj)
}

// UpdateProfile handles PATCH /me/profile.
func (h *Handler) UpdateProfile(c *gin.Context) {
	userID := c.MustGet(middleware.ContextUserID).(uuid.UUID)
	user, err := h.repo.Get(c.Request.Context(), userID)
	if err != nil || user == nil {
		response.Internal(c, "failed to load user")
		return
	}
	var body ProfileUpdateRequest
	if err := c.ShouldBindJSON(&body); err != nil {
		response.BadRequest(c, "invalid body")
		return
	}
	if body.FirstName != nil {
		user.FirstName = *body.FirstName
	}
	if body.LastName != nil {
		user.LastName = *body.LastName
	}
	if body.ImageURL != nil {
		user.ImageURL = *body.ImageURL
	}
	if body.CompanyName != nil {
		user.CompanyName = *body.CompanyName
	}
	if body.Bio != nil {
		user.Bio = *body.Bio
	}
	if body.SocialLinks != nil {
		user.SocialLinks = *body.SocialLinks
	}
	if err := h.repo.UpdateProfile(c.Request.Context(), user); err != nil {
		response.Internal(c, "failed to update profile")
		return
	}
	response.OK(c, user)
}

// ListAttendees handles GET /events/:id/attendees. RequireEventRole runs
// before this; every attendee profile is projected for the caller, admins
// included.
func (h *Handler) ListAttendees(c *gin.Context) {
	viewerID := c.MustGet(middleware.ContextUserID).(uuid.UUID)
	eventID, _ := uuid.Parse(c.Param("id"))

	memberships, err := h.members.ListMembers(c.Request.Context(), eventID)
	if err != nil {
		response.Internal(c, "failed to load attendees")
		return
	}
	ids := make([]uuid.UUID, 0, len(memberships))
	for _, m := range memberships {
		ids = append(ids, m.UserID)
	}
	subjects, err := h.repo.ListByIDs(c.Request.Context(), ids)
	if err != nil {
		response.Internal(c, "failed to load attendees")
		return
	}

	viewer := visibility.Viewer(viewerID)
	projections := make([]*models.ProfileProjection, 0, len(memberships))
	for _, m := range memberships {
		subject, ok := subjects[m.UserID]
		if !ok {
			continue
		}
		proj, err := h.filter.Project(c.Request.Context(), viewer, subject, &eventID)
		if err != nil {
			response.Internal(c, "failed to compute attendee profiles")
			return
		}
		projections = append(projections, proj)
	}
	response.OK(c, projections)
}
