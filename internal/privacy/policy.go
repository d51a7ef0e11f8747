// Package privacy holds per-user privacy preferences and produces the
// effective policy for a (subject, event-context) pair by merging global
// settings with an optional per-event override.
package privacy

import (
	"context"

	"github.com/google/uuid"

	"github.com/gatherly/backend/internal/models"
)

// Policy is the effective privacy policy applied for a subject in a given
// event context. Every field is concrete; merging has already happened.
type Policy struct {
	EmailVisibility         models.EmailVisibility
	AllowConnectionRequests models.ConnectionRequestPolicy
	ShowSocialLinks         models.SocialLinksVisibility
	ShowCompany             bool
	ShowBio                 bool
	ShowPublicEmail         bool
	PublicEmail             *string
}

// DefaultPolicy returns the policy applied to users who never configured
// privacy settings. Show flags stay off until explicitly enabled.
func DefaultPolicy() Policy {
	return Policy{
		EmailVisibility:         models.EmailConnectionsOrganizers,
		AllowConnectionRequests: models.RequestsFromEveryone,
		ShowSocialLinks:         models.SocialLinksEveryone,
		ShowCompany:             false,
		ShowBio:                 false,
		ShowPublicEmail:         false,
	}
}

// Store provides the persisted settings reads. Nil results mean the user or
// event has no row, which is a valid state.
type Store interface {
	Settings(ctx context.Context, userID uuid.UUID) (*models.PrivacySettings, error)
	Override(ctx context.Context, userID, eventID uuid.UUID) (*models.PrivacyOverride, error)
}

// Service computes effective policies. Pure reads, no side effects.
type Service struct {
	store Store
}

// NewService creates a privacy policy service.
func NewService(store Store) *Service {
	return &Service{store: store}
}

// EffectivePolicy merges the subject's global settings with the event
// override (when eventCtx is set and an override exists), field by field.
// Present override fields replace the global value; absent fields fall back.
func (s *Service) EffectivePolicy(ctx context.Context, subjectID uuid.UUID, eventCtx *uuid.UUID) (Policy, error) {
	policy := DefaultPolicy()

	settings, err := s.store.Settings(ctx, subjectID)
	if err != nil {
		return Policy{}, err
	}
	if settings != nil {
		policy.EmailVisibility = settings.EmailVisibility
		policy.AllowConnectionRequests = settings.AllowConnectionRequests
		policy.ShowSocialLinks = settings.ShowSocialLinks
		policy.ShowCompany = settings.ShowCompany
		policy.ShowBio = settings.ShowBio
		policy.ShowPublicEmail = settings.ShowPublicEmail
		policy.PublicEmail = settings.PublicEmail
	}

	if eventCtx == nil {
		return policy, nil
	}
	override, err := s.store.Override(ctx, subjectID, *eventCtx)
	if err != nil {
		return Policy{}, err
	}
	if override == nil {
		return policy, nil
	}
	if override.EmailVisibility != nil {
		policy.EmailVisibility = *override.EmailVisibility
	}
	if override.AllowConnectionRequests != nil {
		policy.AllowConnectionRequests = *override.AllowConnectionRequests
	}
	if override.ShowSocialLinks != nil {
		policy.ShowSocialLinks = *override.ShowSocialLinks
	}
	if override.ShowCompany != nil {
		policy.ShowCompany = *override.ShowCompany
	}
	if override.ShowBio != nil {
		policy.ShowBio = *override.ShowBio
	}
	if override.ShowPublicEmail != nil {
		policy.ShowPublicEmail = *override.ShowPublicEmail
	}
	if override.PublicEmail != nil {
		policy.PublicEmail = override.PublicEmail
	}
	return policy, nil
}
