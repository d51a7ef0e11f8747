// Package authz resolves a user's effective role across the
// Organization -> Event -> Session hierarchy, including implicit privilege
// inheritance (an org owner or admin is an admin of every event in that
// organization without an explicit membership row).
package authz

import (
	"context"

	"github.com/google/uuid"
	"go.uber.org/zap"

	"github.com/gatherly/backend/internal/models"
	"github.com/gatherly/backend/pkg/errs"
)

// Store provides the membership lookups the resolver needs. Empty role
// results mean "no role" and are not errors. All reads are point-in-time
// snapshots; the resolver never caches across requests since roles can
// change mid-session.
type Store interface {
	// OrgRole returns the user's role in the organization, or "" if absent.
	OrgRole(ctx context.Context, orgID, userID uuid.UUID) (models.OrgRole, error)
	// Event returns the event, or nil if it does not exist.
	Event(ctx context.Context, eventID uuid.UUID) (*models.Event, error)
	// EventMembershipRole returns the user's explicit event role, or "" if absent.
	EventMembershipRole(ctx context.Context, eventID, userID uuid.UUID) (models.EventRole, error)
	// SessionRole returns the user's speaker assignment role, or "" if absent.
	SessionRole(ctx context.Context, sessionID, userID uuid.UUID) (models.SessionRole, error)
	// HasPrivilegedOverlap reports whether the viewer holds organizer/admin
	// standing over some event the subject belongs to, or owner/admin
	// standing over an organization the subject belongs to.
	HasPrivilegedOverlap(ctx context.Context, viewerID, subjectID uuid.UUID) (bool, error)
}

// Resolver computes effective roles. All checks are pure functions of
// current state.
type Resolver struct {
	store  Store
	logger *zap.Logger
}

// NewResolver creates a role resolver.
func NewResolver(store Store, logger *zap.Logger) *Resolver {
	return &Resolver{store: store, logger: logger}
}

// OrgRole returns the user's role in the organization, or "" if the user
// has no membership.
func (r *Resolver) OrgRole(ctx context.Context, orgID, userID uuid.UUID) (models.OrgRole, error) {
	return r.store.OrgRole(ctx, orgID, userID)
}

// EventRole returns the user's effective role in the event. An explicit
// membership always wins; otherwise org owners and admins are implicitly
// elevated to event admin. "" means no role.
func (r *Resolver) EventRole(ctx context.Context, eventID, userID uuid.UUID) (models.EventRole, error) {
	role, err := r.store.EventMembershipRole(ctx, eventID, userID)
	if err != nil {
		return "", err
	}
	if role != "" {
		return role, nil
	}
	event, err := r.store.Event(ctx, eventID)
	if err != nil {
		return "", err
	}
	if event == nil {
		return "", errs.NotFound("event not found")
	}
	orgRole, err := r.store.OrgRole(ctx, event.OrganizationID, userID)
	if err != nil {
		return "", err
	}
	if orgRole == models.OrgRoleOwner || orgRole == models.OrgRoleAdmin {
		return models.EventRoleAdmin, nil
	}
	return "", nil
}

// SessionRole returns the user's explicit speaker assignment role in the
// session. There is no inheritance from the event role.
func (r *Resolver) SessionRole(ctx context.Context, sessionID, userID uuid.UUID) (models.SessionRole, error) {
	return r.store.SessionRole(ctx, sessionID, userID)
}

// CanAccessEvent reports whether the user has any effective role in the event.
func (r *Resolver) CanAccessEvent(ctx context.Context, eventID, userID uuid.UUID) (bool, error) {
	role, err := r.EventRole(ctx, eventID, userID)
	if err != nil {
		return false, err
	}
	return role != "", nil
}

// IsEventAdmin reports whether the user's effective event role is admin.
func (r *Resolver) IsEventAdmin(ctx context.Context, eventID, userID uuid.UUID) (bool, error) {
	role, err := r.EventRole(ctx, eventID, userID)
	if err != nil {
		return false, err
	}
	return role == models.EventRoleAdmin, nil
}

// IsEventOrganizerOrAdmin reports whether the user's effective event role is
// organizer or admin.
func (r *Resolver) IsEventOrganizerOrAdmin(ctx context.Context, eventID, userID uuid.UUID) (bool, error) {
	role, err := r.EventRole(ctx, eventID, userID)
	if err != nil {
		return false, err
	}
	return role == models.EventRoleAdmin || role == models.EventRoleOrganizer, nil
}

// IsOrgAdminOrOwner reports whether the user is an owner or admin of the
// organization.
func (r *Resolver) IsOrgAdminOrOwner(ctx context.Context, orgID, userID uuid.UUID) (bool, error) {
	role, err := r.store.OrgRole(ctx, orgID, userID)
	if err != nil {
		return false, err
	}
	return role == models.OrgRoleOwner || role == models.OrgRoleAdmin, nil
}

// SharesPrivilegedContext reports whether the viewer has a privileged
// relationship basis over the subject: organizer/admin of a shared event or
// owner/admin of an organization the subject belongs to.
func (r *Resolver) SharesPrivilegedContext(ctx context.Context, viewerID, subjectID uuid.UUID) (bool, error) {
	return r.store.HasPrivilegedOverlap(ctx, viewerID, subjectID)
}
