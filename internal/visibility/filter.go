// Package visibility computes field-level redacted profile projections. It
// is the single entry point deciding which fields of a subject's profile a
// viewer may see, combining role standing, the connection graph and the
// subject's effective privacy policy.
package visibility

import (
	"context"

	"github.com/google/uuid"
	"go.uber.org/zap"

	"github.com/gatherly/backend/internal/models"
	"github.com/gatherly/backend/internal/privacy"
)

// ViewerContext identifies the authenticated viewer a projection is computed
// for. It is a mandatory parameter on every projecting call so that an
// unfiltered profile can never be returned by accident.
type ViewerContext struct {
	UserID uuid.UUID
}

// Viewer builds a ViewerContext for the given user.
func Viewer(userID uuid.UUID) ViewerContext {
	return ViewerContext{UserID: userID}
}

// ConnectionSource answers connection-graph questions about a pair of users.
type ConnectionSource interface {
	StatusBetween(ctx context.Context, a, b uuid.UUID) (models.ConnectionStatus, error)
	CanRequest(ctx context.Context, requesterID, recipientID uuid.UUID, eventCtx *uuid.UUID) (bool, error)
}

// PolicySource yields the subject's effective privacy policy.
type PolicySource interface {
	EffectivePolicy(ctx context.Context, subjectID uuid.UUID, eventCtx *uuid.UUID) (privacy.Policy, error)
}

// RoleSource answers whether the viewer holds privileged standing over the
// subject (organizer/admin of a shared event, or owner/admin of an org the
// subject belongs to).
type RoleSource interface {
	SharesPrivilegedContext(ctx context.Context, viewerID, subjectID uuid.UUID) (bool, error)
}

// MembershipSource returns the subject's membership in an event, or nil.
type MembershipSource interface {
	EventMembership(ctx context.Context, eventID, userID uuid.UUID) (*models.EventMembership, error)
}

// Filter produces profile projections.
type Filter struct {
	connections ConnectionSource
	policies    PolicySource
	roles       RoleSource
	memberships MembershipSource
	logger      *zap.Logger
}

// NewFilter creates a visibility filter.
func NewFilter(connections ConnectionSource, policies PolicySource, roles RoleSource, memberships MembershipSource, logger *zap.Logger) *Filter {
	return &Filter{
		connections: connections,
		policies:    policies,
		roles:       roles,
		memberships: memberships,
		logger:      logger,
	}
}

// Project computes the viewer's redacted view of the subject's profile.
// Every field is evaluated independently. Admins receive the same filtered
// projection as any other permitted viewer; moderation visibility and
// profile visibility are separate axes.
func (f *Filter) Project(ctx context.Context, viewer ViewerContext, subject *models.User, eventCtx *uuid.UUID) (*models.ProfileProjection, error) {
	proj := &models.ProfileProjection{
		ID:        subject.ID,
		FirstName: subject.FirstName,
		LastName:  subject.LastName,
		FullName:  subject.FullName(),
		ImageURL:  subject.ImageURL,
	}

	if viewer.UserID == uuid.Nil {
		// Missing viewer identity degrades to the most restrictive output
		// rather than guessing. The log line is for finding the call site.
		f.logger.Warn("projection requested without viewer identity",
			zap.String("subject_id", subject.ID.String()))
		return proj, nil
	}

	if viewer.UserID == subject.ID {
		return f.selfView(ctx, proj, subject, eventCtx)
	}

	status, err := f.connections.StatusBetween(ctx, viewer.UserID, subject.ID)
	if err != nil {
		return nil, err
	}
	connected := status == models.ConnectionAccepted

	sharedPrivileged, err := f.roles.SharesPrivilegedContext(ctx, viewer.UserID, subject.ID)
	if err != nil {
		return nil, err
	}

	policy, err := f.policies.EffectivePolicy(ctx, subject.ID, eventCtx)
	if err != nil {
		return nil, err
	}

	proj.Email = f.emailField(subject, policy, connected, sharedPrivileged)

	// Company and bio are boolean show-flags gated by the same relational
	// test as the email connections_organizers tier.
	if policy.ShowCompany && (connected || sharedPrivileged) && subject.CompanyName != "" {
		proj.CompanyName = &subject.CompanyName
	}
	if policy.ShowBio && (connected || sharedPrivileged) && subject.Bio != "" {
		proj.Bio = &subject.Bio
	}

	switch policy.ShowSocialLinks {
	case models.SocialLinksEveryone:
		proj.SocialLinks = subject.SocialLinks
	case models.SocialLinksConnections:
		if connected {
			proj.SocialLinks = subject.SocialLinks
		}
	}

	if status != "" {
		proj.ConnectionStatus = &status
	}
	if status == "" || status == models.ConnectionDeclined {
		allowed, err := f.connections.CanRequest(ctx, viewer.UserID, subject.ID, eventCtx)
		if err != nil {
			return nil, err
		}
		proj.CanSendConnectionRequest = allowed
	}

	if eventCtx != nil {
		if err := f.attachEventFields(ctx, proj, subject.ID, *eventCtx); err != nil {
			return nil, err
		}
	}
	return proj, nil
}

// selfView returns all fields unfiltered; self-view bypasses every filter.
func (f *Filter) selfView(ctx context.Context, proj *models.ProfileProjection, subject *models.User, eventCtx *uuid.UUID) (*models.ProfileProjection, error) {
	proj.Email = &subject.Email
	if subject.CompanyName != "" {
		proj.CompanyName = &subject.CompanyName
	}
	if subject.Bio != "" {
		proj.Bio = &subject.Bio
	}
	proj.SocialLinks = subject.SocialLinks
	if eventCtx != nil {
		if err := f.attachEventFields(ctx, proj, subject.ID, *eventCtx); err != nil {
			return nil, err
		}
	}
	return proj, nil
}

// emailField evaluates the tiered email rule. When the address would only be
// shown to a stranger under the public tier and the subject configured a
// public email, that lower-sensitivity address is substituted for the real
// one.
func (f *Filter) emailField(subject *models.User, policy privacy.Policy, connected, sharedPrivileged bool) *string {
	var visible bool
	switch policy.EmailVisibility {
	case models.EmailPublic:
		visible = true
	case models.EmailConnectionsOrganizers:
		visible = connected || sharedPrivileged
	case models.EmailConnectionsOnly:
		visible = connected
	case models.EmailHidden:
		visible = false
	}
	if !visible {
		return nil
	}
	if policy.EmailVisibility == models.EmailPublic && !connected && !sharedPrivileged &&
		policy.ShowPublicEmail && policy.PublicEmail != nil && *policy.PublicEmail != "" {
		return policy.PublicEmail
	}
	return &subject.Email
}

// attachEventFields adds event-scoped fields when the subject holds a
// membership in the event. No membership means no event fields; org-derived
// implicit access never surfaces here.
func (f *Filter) attachEventFields(ctx context.Context, proj *models.ProfileProjection, subjectID, eventID uuid.UUID) error {
	membership, err := f.memberships.EventMembership(ctx, eventID, subjectID)
	if err != nil {
		return err
	}
	if membership == nil {
		return nil
	}
	role := membership.Role
	proj.EventRole = &role
	if membership.SpeakerBio != "" {
		bio := membership.SpeakerBio
		proj.SpeakerBio = &bio
	}
	if membership.SpeakerTitle != "" {
		title := membership.SpeakerTitle
		proj.SpeakerTitle = &title
	}
	return nil
}
