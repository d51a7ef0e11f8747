package connections

import (
	"context"
	"errors"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/gatherly/backend/internal/models"
	"github.com/gatherly/backend/pkg/errs"
)

// PGStore is the PostgreSQL-backed connection store.
type PGStore struct {
	pool *pgxpool.Pool
}

// NewPGStore creates a PostgreSQL connection store.
func NewPGStore(pool *pgxpool.Pool) *PGStore {
	return &PGStore{pool: pool}
}

const connectionColumns = `id, requester_id, recipient_id, status, icebreaker, originating_event_id, created_at, updated_at`

func scanConnection(row pgx.Row) (*models.Connection, error) {
	var c models.Connection
	err := row.Scan(&c.ID, &c.RequesterID, &c.RecipientID, &c.Status, &c.Icebreaker,
		&c.OriginatingEventID, &c.CreatedAt, &c.UpdatedAt)
	if errors.Is(err, pgx.ErrNoRows) {
		return nil, nil
	}
	if err != nil {
		return nil, err
	}
	return &c, nil
}

// Get returns the connection by ID, or nil.
func (s *PGStore) Get(ctx context.Context, id uuid.UUID) (*models.Connection, error) {
	const q = `SELECT ` + connectionColumns + ` FROM connections WHERE id = $1`
	return scanConnection(s.pool.QueryRow(ctx, q, id))
}

// Between returns the connection relating the unordered pair, checking both
// directions. The persisted uniqueness constraint only covers one direction,
// so the lookup must not rely on argument order.
func (s *PGStore) Between(ctx context.Context, a, b uuid.UUID) (*models.Connection, error) {
	const q = `SELECT ` + connectionColumns + ` FROM connections
		WHERE (requester_id = $1 AND recipient_id = $2) OR (requester_id = $2 AND recipient_id = $1)`
	return scanConnection(s.pool.QueryRow(ctx, q, a, b))
}

// CreatePending inserts a pending connection inside a transaction holding an
// advisory lock on the canonical pair, re-checking both directions before
// the insert so simultaneous mutual requests cannot both succeed.
func (s *PGStore) CreatePending(ctx context.Context, conn *models.Connection) error {
	tx, err := s.pool.Begin(ctx)
	if err != nil {
		return err
	}
	defer tx.Rollback(ctx)

	lo, hi := models.CanonicalPair(conn.RequesterID, conn.RecipientID)
	if _, err := tx.Exec(ctx, `SELECT pg_advisory_xact_lock(hashtextextended($1, 0))`, lo.String()+":"+hi.String()); err != nil {
		return err
	}

	var exists bool
	const checkQ = `SELECT EXISTS (SELECT 1 FROM connections
		WHERE (requester_id = $1 AND recipient_id = $2) OR (requester_id = $2 AND recipient_id = $1))`
	if err := tx.QueryRow(ctx, checkQ, conn.RequesterID, conn.RecipientID).Scan(&exists); err != nil {
		return err
	}
	if exists {
		return errs.DuplicateConnection("a connection already exists between these users")
	}

	const insertQ = `INSERT INTO connections (id, requester_id, recipient_id, status, icebreaker, originating_event_id)
		VALUES (gen_random_uuid(), $1, $2, $3, $4, $5)
		RETURNING id, created_at, updated_at`
	if err := tx.QueryRow(ctx, insertQ, conn.RequesterID, conn.RecipientID, conn.Status,
		conn.Icebreaker, conn.OriginatingEventID).Scan(&conn.ID, &conn.CreatedAt, &conn.UpdatedAt); err != nil {
		return err
	}
	return tx.Commit(ctx)
}

// Resolve transitions a pending connection to a terminal status. Returns
// false if the row was no longer pending.
func (s *PGStore) Resolve(ctx context.Context, id uuid.UUID, status models.ConnectionStatus) (bool, error) {
	const q = `UPDATE connections SET status = $2, updated_at = NOW() WHERE id = $1 AND status = 'pending'`
	tag, err := s.pool.Exec(ctx, q, id, status)
	if err != nil {
		return false, err
	}
	return tag.RowsAffected() > 0, nil
}

// SharesEvent reports whether both users belong to at least one common event.
func (s *PGStore) SharesEvent(ctx context.Context, a, b uuid.UUID) (bool, error) {
	const q = `SELECT EXISTS (
		SELECT 1 FROM event_memberships ma
		INNER JOIN event_memberships mb ON mb.event_id = ma.event_id
		WHERE ma.user_id = $1 AND mb.user_id = $2)`
	var ok bool
	if err := s.pool.QueryRow(ctx, q, a, b).Scan(&ok); err != nil {
		return false, err
	}
	return ok, nil
}

// IsOrganizerOfSharedEvent reports whether requester holds an explicit
// admin/organizer membership in an event the recipient belongs to.
func (s *PGStore) IsOrganizerOfSharedEvent(ctx context.Context, requesterID, recipientID uuid.UUID) (bool, error) {
	const q = `SELECT EXISTS (
		SELECT 1 FROM event_memberships req
		INNER JOIN event_memberships rec ON rec.event_id = req.event_id
		WHERE req.user_id = $1 AND req.role IN ('admin', 'organizer') AND rec.user_id = $2)`
	var ok bool
	if err := s.pool.QueryRow(ctx, q, requesterID, recipientID).Scan(&ok); err != nil {
		return false, err
	}
	return ok, nil
}

// IsConnectedToOrganizerOf reports whether requester has an accepted
// connection to an admin/organizer of an event the recipient belongs to.
func (s *PGStore) IsConnectedToOrganizerOf(ctx context.Context, requesterID, recipientID uuid.UUID) (bool, error) {
	const q = `SELECT EXISTS (
		SELECT 1 FROM connections c
		INNER JOIN event_memberships org
			ON org.user_id = CASE WHEN c.requester_id = $1 THEN c.recipient_id ELSE c.requester_id END
		INNER JOIN event_memberships rec ON rec.event_id = org.event_id
		WHERE c.status = 'accepted'
			AND (c.requester_id = $1 OR c.recipient_id = $1)
			AND org.role IN ('admin', 'organizer')
			AND rec.user_id = $2)`
	var ok bool
	if err := s.pool.QueryRow(ctx, q, requesterID, recipientID).Scan(&ok); err != nil {
		return false, err
	}
	return ok, nil
}

// ListForUser returns connections where the user is requester or recipient.
func (s *PGStore) ListForUser(ctx context.Context, userID uuid.UUID) ([]*models.Connection, error) {
	const q = `SELECT ` + connectionColumns + ` FROM connections
		WHERE requester_id = $1 OR recipient_id = $1
		ORDER BY created_at DESC`
	rows, err := s.pool.Query(ctx, q, userID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()
	var list []*models.Connection
	for rows.Next() {
		var c models.Connection
		if err := rows.Scan(&c.ID, &c.RequesterID, &c.RecipientID, &c.Status, &c.Icebreaker,
			&c.OriginatingEventID, &c.CreatedAt, &c.UpdatedAt); err != nil {
			return nil, err
		}
		list = append(list, &c)
	}
	return list, rows.Err()
}
