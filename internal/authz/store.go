package authz

import (
	"context"
	"errors"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/gatherly/backend/internal/models"
)

// PGStore is the PostgreSQL-backed membership store for the resolver.
type PGStore struct {
	pool *pgxpool.Pool
}

// NewPGStore creates a PostgreSQL membership store.
func NewPGStore(pool *pgxpool.Pool) *PGStore {
	return &PGStore{pool: pool}
}

// OrgRole returns the user's role in the organization, or "" if not a member.
func (s *PGStore) OrgRole(ctx context.Context, orgID, userID uuid.UUID) (models.OrgRole, error) {
	const q = `SELECT role FROM org_memberships WHERE organization_id = $1 AND user_id = $2`
	var role models.OrgRole
	err := s.pool.QueryRow(ctx, q, orgID, userID).Scan(&role)
	if errors.Is(err, pgx.ErrNoRows) {
		return "", nil
	}
	if err != nil {
		return "", err
	}
	return role, nil
}

// Event returns the event, or nil if missing.
func (s *PGStore) Event(ctx context.Context, eventID uuid.UUID) (*models.Event, error) {
	const q = `SELECT id, organization_id, title, description, starts_at, ends_at, created_by, created_at, updated_at
		FROM events WHERE id = $1`
	var e models.Event
	err := s.pool.QueryRow(ctx, q, eventID).Scan(&e.ID, &e.OrganizationID, &e.Title, &e.Description,
		&e.StartsAt, &e.EndsAt, &e.CreatedBy, &e.CreatedAt, &e.UpdatedAt)
	if errors.Is(err, pgx.ErrNoRows) {
		return nil, nil
	}
	if err != nil {
		return nil, err
	}
	return &e, nil
}

// EventMembershipRole returns the user's explicit event role, or "" if absent.
func (s *PGStore) EventMembershipRole(ctx context.Context, eventID, userID uuid.UUID) (models.EventRole, error) {
	const q = `SELECT role FROM event_memberships WHERE event_id = $1 AND user_id = $2`
	var role models.EventRole
	err := s.pool.QueryRow(ctx, q, eventID, userID).Scan(&role)
	if errors.Is(err, pgx.ErrNoRows) {
		return "", nil
	}
	if err != nil {
		return "", err
	}
	return role, nil
}

// SessionRole returns the user's speaker assignment role, or "" if absent.
func (s *PGStore) SessionRole(ctx context.Context, sessionID, userID uuid.UUID) (models.SessionRole, error) {
	const q = `SELECT role FROM speaker_assignments WHERE session_id = $1 AND user_id = $2`
	var role models.SessionRole
	err := s.pool.QueryRow(ctx, q, sessionID, userID).Scan(&role)
	if errors.Is(err, pgx.ErrNoRows) {
		return "", nil
	}
	if err != nil {
		return "", err
	}
	return role, nil
}

// HasPrivilegedOverlap checks the three relationship bases: explicit
// organizer/admin membership of a shared event, org owner/admin over an org
// the subject is a member of, and org owner/admin over an org owning an
// event the subject belongs to (implicit elevation).
func (s *PGStore) HasPrivilegedOverlap(ctx context.Context, viewerID, subjectID uuid.UUID) (bool, error) {
	const q = `SELECT
		EXISTS (
			SELECT 1 FROM event_memberships ev
			INNER JOIN event_memberships es ON es.event_id = ev.event_id
			WHERE ev.user_id = $1 AND ev.role IN ('admin', 'organizer') AND es.user_id = $2
		) OR EXISTS (
			SELECT 1 FROM org_memberships ov
			INNER JOIN org_memberships os ON os.organization_id = ov.organization_id
			WHERE ov.user_id = $1 AND ov.role IN ('owner', 'admin') AND os.user_id = $2
		) OR EXISTS (
			SELECT 1 FROM org_memberships ov
			INNER JOIN events e ON e.organization_id = ov.organization_id
			INNER JOIN event_memberships es ON es.event_id = e.id
			WHERE ov.user_id = $1 AND ov.role IN ('owner', 'admin') AND es.user_id = $2
		)`
	var ok bool
	if err := s.pool.QueryRow(ctx, q, viewerID, subjectID).Scan(&ok); err != nil {
		return false, err
	}
	return ok, nil
}
