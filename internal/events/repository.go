package events

import (
	"context"
	"errors"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/gatherly/backend/internal/models"
)

// Repository handles event, event_membership and event_invite persistence.
type Repository struct {
	pool *pgxpool.Pool
}

// NewRepository creates an events repository.
func NewRepository(pool *pgxpool.Pool) *Repository {
	return &Repository{pool: pool}
}

const eventColumns = `id, organization_id, title, description, starts_at, ends_at, created_by, created_at, updated_at`

func scanEvent(row pgx.Row) (*models.Event, error) {
	var e models.Event
	err := row.Scan(&e.ID, &e.OrganizationID, &e.Title, &e.Description, &e.StartsAt, &e.EndsAt,
		&e.CreatedBy, &e.CreatedAt, &e.UpdatedAt)
	if errors.Is(err, pgx.ErrNoRows) {
		return nil, nil
	}
	if err != nil {
		return nil, err
	}
	return &e, nil
}

// Create creates an event under an organization and gives the creator an
// explicit admin membership in the same transaction, so an event is never
// persisted without one.
func (r *Repository) Create(ctx context.Context, e *models.Event) error {
	tx, err := r.pool.Begin(ctx)
	if err != nil {
		return err
	}
	defer tx.Rollback(ctx)

	const q = `INSERT INTO events (id, organization_id, title, description, starts_at, ends_at, created_by)
		VALUES (gen_random_uuid(), $1, $2, $3, $4, $5, $6)
		RETURNING id, created_at, updated_at`
	if err := tx.QueryRow(ctx, q, e.OrganizationID, e.Title, e.Description, e.StartsAt, e.EndsAt, e.CreatedBy).
		Scan(&e.ID, &e.CreatedAt, &e.UpdatedAt); err != nil {
		return err
	}
	const memberQ = `INSERT INTO event_memberships (id, event_id, user_id, role)
		VALUES (gen_random_uuid(), $1, $2, 'admin')`
	if _, err := tx.Exec(ctx, memberQ, e.ID, e.CreatedBy); err != nil {
		return err
	}
	return tx.Commit(ctx)
}

// Get returns an event by ID, or nil.
func (r *Repository) Get(ctx context.Context, id uuid.UUID) (*models.Event, error) {
	const q = `SELECT ` + eventColumns + ` FROM events WHERE id = $1`
	return scanEvent(r.pool.QueryRow(ctx, q, id))
}

// Update updates an event's editable fields.
func (r *Repository) Update(ctx context.Context, e *models.Event) error {
	const q = `UPDATE events SET title = $2, description = $3, starts_at = $4, ends_at = $5, updated_at = NOW()
		WHERE id = $1
		RETURNING updated_at`
	return r.pool.QueryRow(ctx, q, e.ID, e.Title, e.Description, e.StartsAt, e.EndsAt).Scan(&e.UpdatedAt)
}

// Delete deletes an event. Memberships, invites, sessions and moderation
// records cascade.
func (r *Repository) Delete(ctx context.Context, id uuid.UUID) error {
	_, err := r.pool.Exec(ctx, `DELETE FROM events WHERE id = $1`, id)
	return err
}

// ListForUser returns events the user holds an explicit membership in.
func (r *Repository) ListForUser(ctx context.Context, userID uuid.UUID) ([]*models.Event, error) {
	const q = `SELECT e.id, e.organization_id, e.title, e.description, e.starts_at, e.ends_at, e.created_by, e.created_at, e.updated_at
		FROM events e
		INNER JOIN event_memberships m ON m.event_id = e.id
		WHERE m.user_id = $1
		ORDER BY e.starts_at`
	rows, err := r.pool.Query(ctx, q, userID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()
	var list []*models.Event
	for rows.Next() {
		var e models.Event
		if err := rows.Scan(&e.ID, &e.OrganizationID, &e.Title, &e.Description, &e.StartsAt, &e.EndsAt,
			&e.CreatedBy, &e.CreatedAt, &e.UpdatedAt); err != nil {
			return nil, err
		}
		list = append(list, &e)
	}
	return list, rows.Err()
}

const membershipColumns = `id, event_id, user_id, role, COALESCE(speaker_bio, ''), COALESCE(speaker_title, ''), created_at, updated_at`

func scanMembership(row pgx.Row) (*models.EventMembership, error) {
	var m models.EventMembership
	err := row.Scan(&m.ID, &m.EventID, &m.UserID, &m.Role, &m.SpeakerBio, &m.SpeakerTitle, &m.CreatedAt, &m.UpdatedAt)
	if errors.Is(err, pgx.ErrNoRows) {
		return nil, nil
	}
	if err != nil {
		return nil, err
	}
	return &m, nil
}

// EventMembership returns the user's membership in the event, or nil.
func (r *Repository) EventMembership(ctx context.Context, eventID, userID uuid.UUID) (*models.EventMembership, error) {
	const q = `SELECT ` + membershipColumns + ` FROM event_memberships WHERE event_id = $1 AND user_id = $2`
	return scanMembership(r.pool.QueryRow(ctx, q, eventID, userID))
}

// AddMember adds a user to an event, updating the role if the membership
// already exists.
func (r *Repository) AddMember(ctx context.Context, eventID, userID uuid.UUID, role models.EventRole) (*models.EventMembership, error) {
	const q = `INSERT INTO event_memberships (id, event_id, user_id, role)
		VALUES (gen_random_uuid(), $1, $2, $3)
		ON CONFLICT (event_id, user_id) DO UPDATE SET role = EXCLUDED.role, updated_at = NOW()
		RETURNING ` + membershipColumns
	return scanMembership(r.pool.QueryRow(ctx, q, eventID, userID, role))
}

// UpdateMember updates a member's role and speaker fields.
func (r *Repository) UpdateMember(ctx context.Context, eventID, userID uuid.UUID, role models.EventRole, speakerBio, speakerTitle string) error {
	const q = `UPDATE event_memberships
		SET role = $3, speaker_bio = NULLIF($4, ''), speaker_title = NULLIF($5, ''), updated_at = NOW()
		WHERE event_id = $1 AND user_id = $2`
	_, err := r.pool.Exec(ctx, q, eventID, userID, role, speakerBio, speakerTitle)
	return err
}

// RemoveMember deletes a membership.
func (r *Repository) RemoveMember(ctx context.Context, eventID, userID uuid.UUID) error {
	_, err := r.pool.Exec(ctx, `DELETE FROM event_memberships WHERE event_id = $1 AND user_id = $2`, eventID, userID)
	return err
}

// ListMembers returns memberships of an event.
func (r *Repository) ListMembers(ctx context.Context, eventID uuid.UUID) ([]*models.EventMembership, error) {
	const q = `SELECT ` + membershipColumns + ` FROM event_memberships WHERE event_id = $1 ORDER BY created_at ASC`
	rows, err := r.pool.Query(ctx, q, eventID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()
	var list []*models.EventMembership
	for rows.Next() {
		var m models.EventMembership
		if err := rows.Scan(&m.ID, &m.EventID, &m.UserID, &m.Role, &m.SpeakerBio, &m.SpeakerTitle, &m.CreatedAt, &m.UpdatedAt); err != nil {
			return nil, err
		}
		list = append(list, &m)
	}
	return list, rows.Err()
}

const inviteColumns = `id, event_id, email, role, token, invited_by, accepted_at, created_at`

// CreateInvite creates a pending event invite.
func (r *Repository) CreateInvite(ctx context.Context, inv *models.EventInvite) error {
	const q = `INSERT INTO event_invites (id, event_id, email, role, token, invited_by)
		VALUES (gen_random_uuid(), $1, $2, $3, $4, $5)
		RETURNING id, created_at`
	return r.pool.QueryRow(ctx, q, inv.EventID, inv.Email, inv.Role, inv.Token, inv.InvitedBy).
		Scan(&inv.ID, &inv.CreatedAt)
}

// InviteByToken returns the invite for a token, or nil.
func (r *Repository) InviteByToken(ctx context.Context, token string) (*models.EventInvite, error) {
	const q = `SELECT ` + inviteColumns + ` FROM event_invites WHERE token = $1`
	var inv models.EventInvite
	err := r.pool.QueryRow(ctx, q, token).Scan(&inv.ID, &inv.EventID, &inv.Email, &inv.Role,
		&inv.Token, &inv.InvitedBy, &inv.AcceptedAt, &inv.CreatedAt)
	if errors.Is(err, pgx.ErrNoRows) {
		return nil, nil
	}
	if err != nil {
		return nil, err
	}
	return &inv, nil
}

// AcceptInvite marks the invite accepted and creates the membership in one
// transaction. Returns false if the invite was already accepted.
func (r *Repository) AcceptInvite(ctx context.Context, inviteID, userID uuid.UUID) (bool, error) {
	tx, err := r.pool.Begin(ctx)
	if err != nil {
		return false, err
	}
	defer tx.Rollback(ctx)

	var eventID uuid.UUID
	var role models.EventRole
	const claimQ = `UPDATE event_invites SET accepted_at = NOW()
		WHERE id = $1 AND accepted_at IS NULL
		RETURNING event_id, role`
	err = tx.QueryRow(ctx, claimQ, inviteID).Scan(&eventID, &role)
	if errors.Is(err, pgx.ErrNoRows) {
		return false, nil
	}
	if err != nil {
		return false, err
	}

	const memberQ = `INSERT INTO event_memberships (id, event_id, user_id, role)
		VALUES (gen_random_uuid(), $1, $2, $3)
		ON CONFLICT (event_id, user_id) DO NOTHING`
	if _, err := tx.Exec(ctx, memberQ, eventID, userID, role); err != nil {
		return false, err
	}
	return true, tx.Commit(ctx)
}
