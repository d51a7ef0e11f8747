package privacy

import (
	"github.com/gin-gonic/gin"
	"github.com/google/uuid"

	"github.com/gatherly/backend/internal/middleware"
	"github.com/gatherly/backend/internal/models"
	"github.com/gatherly/backend/pkg/response"
)

// Handler handles privacy settings HTTP endpoints.
type Handler struct {
	repo *Repository
}

// NewHandler creates a privacy handler.
func NewHandler(repo *Repository) *Handler {
	return &Handler{repo: repo}
}

// SettingsRequest is the body for PUT /me/privacy. All fields required so
// the stored row is always complete.
type SettingsRequest struct {
	EmailVisibility         models.EmailVisibility         `json:"email_visibility" binding:"required"`
	AllowConnectionRequests models.ConnectionRequestPolicy `json:"allow_connection_requests" binding:"required"`
	ShowSocialLinks         models.SocialLinksVisibility   `json:"show_social_links" binding:"required"`
	ShowCompany             bool                           `json:"show_company"`
	ShowBio                 bool                           `json:"show_bio"`
	ShowPublicEmail         bool                           `json:"show_public_email"`
	PublicEmail             *string                        `json:"public_email"`
}

// OverrideRequest is the body for PUT /me/privacy/events/:id. Nil fields
// fall back to the global setting for that event's context.
type OverrideRequest struct {
	EmailVisibility         *models.EmailVisibility         `json:"email_visibility"`
	AllowConnectionRequests *models.ConnectionRequestPolicy `json:"allow_connection_requests"`
	ShowSocialLinks         *models.SocialLinksVisibility   `json:"show_social_links"`
	ShowCompany             *bool                           `json:"show_company"`
	ShowBio                 *bool                           `json:"show_bio"`
	ShowPublicEmail         *bool                           `json:"show_public_email"`
	PublicEmail             *string                         `json:"public_email"`
}

// GetSettings handles GET /me/privacy. Returns the stored settings or the
// defaults when the user never configured any.
func (h *Handler) GetSettings(c *gin.Context) {
	userID := c.MustGet(middleware.ContextUserID).(uuid.UUID)
	settings, err := h.repo.Settings(c.Request.Context(), userID)
	if err != nil {
		response.Internal(c, "failed to load privacy settings")
		return
	}
	if settings == nil {
		defaults := DefaultPolicy()
		settings = &models.PrivacySettings{
			UserID:                  userID,
			EmailVisibility:         defaults.EmailVisibility,
			AllowConnectionRequests: defaults.AllowConnectionRequests,
			ShowSocialLinks:         defaults.ShowSocialLinks,
			ShowCompany:             defaults.ShowCompany,
			ShowBio:                 defaults.ShowBio,
			ShowPublicEmail:         defaults.ShowPublicEmail,
		}
	}
	response.OK(c, settings)
}

// UpdateSettings handles PUT /me/privacy.
func (h *Handler) UpdateSettings(c *gin.Context) {
	userID := c.MustGet(middleware.ContextUserID).(uuid.UUID)
	var body SettingsRequest
	if err := c.ShouldBindJSON(&body); err != nil {
		response.BadRequest(c, "email_visibility, allow_connection_requests and show_social_links required")
		return
	}
	if !body.EmailVisibility.Valid() || !body.AllowConnectionRequests.Valid() || !body.ShowSocialLinks.Valid() {
		response.BadRequest(c, "unknown privacy tier value")
		return
	}
	settings := &models.PrivacySettings{
		UserID:                  userID,
		EmailVisibility:         body.EmailVisibility,
		AllowConnectionRequests: body.AllowConnectionRequests,
		ShowSocialLinks:         body.ShowSocialLinks,
		ShowCompany:             body.ShowCompany,
		ShowBio:                 body.ShowBio,
		ShowPublicEmail:         body.ShowPublicEmail,
		PublicEmail:             body.PublicEmail,
	}
	if err := h.repo.UpsertSettings(c.Request.Context(), settings); err != nil {
		response.Internal(c, "failed to save privacy settings")
		return
	}
	response.OK(c, settings)
}

// GetOverride handles GET /me/privacy/events/:id.
func (h *Handler) GetOverride(c *gin.Context) {
	userID := c.MustGet(middleware.ContextUserID).(uuid.UUID)
	eventID, err := uuid.Parse(c.Param("id"))
	if err != nil {
		response.BadRequest(c, "invalid event id")
		return
	}
	override, err := h.repo.Override(c.Request.Context(), userID, eventID)
	if err != nil {
		response.Internal(c, "failed to load privacy override")
		return
	}
	if override == nil {
		response.NotFound(c, "no privacy override for this event")
		return
	}
	response.OK(c, override)
}

// UpdateOverride handles PUT /me/privacy/events/:id.
func (h *Handler) UpdateOverride(c *gin.Context) {
	userID := c.MustGet(middleware.ContextUserID).(uuid.UUID)
	eventID, err := uuid.Parse(c.Param("id"))
	if err != nil {
		response.BadRequest(c, "invalid event id")
		return
	}
	var body OverrideRequest
	if err := c.ShouldBindJSON(&body); err != nil {
		response.BadRequest(c, "invalid body")
		return
	}
	if body.EmailVisibility != nil && !body.EmailVisibility.Valid() {
		response.BadRequest(c, "unknown email_visibility value")
		return
	}
	if body.AllowConnectionRequests != nil && !body.AllowConnectionRequests.Valid() {
		response.BadRequest(c, "unknown allow_connection_requests value")
		return
	}
	if body.ShowSocialLinks != nil && !body.ShowSocialLinks.Valid() {
		response.BadRequest(c, "unknown show_social_links value")
		return
	}
	override := &models.PrivacyOverride{
		UserID:                  userID,
		EventID:                 eventID,
		EmailVisibility:         body.EmailVisibility,
		AllowConnectionRequests: body.AllowConnectionRequests,
		ShowSocialLinks:         body.ShowSocialLinks,
		ShowCompany:             body.ShowCompany,
		ShowBio:                 body.ShowBio,
		ShowPublicEmail:         body.ShowPublicEmail,
		PublicEmail:             body.PublicEmail,
	}
	if err := h.repo.UpsertOverride(c.Request.Context(), override); err != nil {
		response.Internal(c, "failed to save privacy override")
		return
	}
	response.OK(c, override)
}

// DeleteOverride handles DELETE /me/privacy/events/:id.
func (h *Handler) DeleteOverride(c *gin.Context) {
	userID := c.MustGet(middleware.ContextUserID).(uuid.UUID)
	eventID, err := uuid.Parse(c.Param("id"))
	if err != nil {
		response.BadRequest(c, "invalid event id")
		return
	}
	if err := h.repo.DeleteOverride(c.Request.Context(), userID, eventID); err != nil {
		response.Internal(c, "failed to delete privacy override")
		return
	}
	response.NoContent(c)
}
