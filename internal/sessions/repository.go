package sessions

import (
	"context"
	"errors"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgconn"
	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/gatherly/backend/internal/models"
	"github.com/gatherly/backend/pkg/errs"
)

// Repository handles session and speaker_assignment persistence.
type Repository struct {
	pool *pgxpool.Pool
}

// NewRepository creates a sessions repository.
func NewRepository(pool *pgxpool.Pool) *Repository {
	return &Repository{pool: pool}
}

const sessionColumns = `id, event_id, title, starts_at, ends_at, created_at, updated_at`

// Create creates a session under an event.
func (r *Repository) Create(ctx context.Context, s *models.Session) error {
	const q = `INSERT INTO sessions (id, event_id, title, starts_at, ends_at)
		VALUES (gen_random_uuid(), $1, $2, $3, $4)
		RETURNING id, created_at, updated_at`
	return r.pool.QueryRow(ctx, q, s.EventID, s.Title, s.StartsAt, s.EndsAt).
		Scan(&s.ID, &s.CreatedAt, &s.UpdatedAt)
}

// Get returns a session by ID, or nil.
func (r *Repository) Get(ctx context.Context, id uuid.UUID) (*models.Session, error) {
	const q = `SELECT ` + sessionColumns + ` FROM sessions WHERE id = $1`
	var s models.Session
	err := r.pool.QueryRow(ctx, q, id).Scan(&s.ID, &s.EventID, &s.Title, &s.StartsAt, &s.EndsAt, &s.CreatedAt, &s.UpdatedAt)
	if errors.Is(err, pgx.ErrNoRows) {
		return nil, nil
	}
	if err != nil {
		return nil, err
	}
	return &s, nil
}

// ListForEvent returns the event's sessions ordered by start time.
func (r *Repository) ListForEvent(ctx context.Context, eventID uuid.UUID) ([]*models.Session, error) {
	const q = `SELECT ` + sessionColumns + ` FROM sessions WHERE event_id = $1 ORDER BY starts_at`
	rows, err := r.pool.Query(ctx, q, eventID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()
	var list []*models.Session
	for rows.Next() {
		var s models.Session
		if err := rows.Scan(&s.ID, &s.EventID, &s.Title, &s.StartsAt, &s.EndsAt, &s.CreatedAt, &s.UpdatedAt); err != nil {
			return nil, err
		}
		list = append(list, &s)
	}
	return list, rows.Err()
}

// Delete deletes a session; speaker assignments cascade.
func (r *Repository) Delete(ctx context.Context, id uuid.UUID) error {
	_, err := r.pool.Exec(ctx, `DELETE FROM sessions WHERE id = $1`, id)
	return err
}

// AssignSpeaker adds a speaker to a session at a position. Positions are
// unique per session; a taken position yields a Conflict error.
func (r *Repository) AssignSpeaker(ctx context.Context, a *models.SpeakerAssignment) error {
	const q = `INSERT INTO speaker_assignments (id, session_id, user_id, role, position)
		VALUES (gen_random_uuid(), $1, $2, $3, $4)
		RETURNING id, created_at`
	err := r.pool.QueryRow(ctx, q, a.SessionID, a.UserID, a.Role, a.Position).Scan(&a.ID, &a.CreatedAt)
	var pgErr *pgconn.PgError
	if errors.As(err, &pgErr) && pgErr.Code == "23505" {
		return errs.Conflict("position or speaker already taken in this session")
	}
	return err
}

// ListAssignments returns the session's speaker assignments in order.
func (r *Repository) ListAssignments(ctx context.Context, sessionID uuid.UUID) ([]*models.SpeakerAssignment, error) {
	const q = `SELECT id, session_id, user_id, role, position, created_at
		FROM speaker_assignments WHERE session_id = $1 ORDER BY position ASC`
	rows, err := r.pool.Query(ctx, q, sessionID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()
	var list []*models.SpeakerAssignment
	for rows.Next() {
		var a models.SpeakerAssignment
		if err := rows.Scan(&a.ID, &a.SessionID, &a.UserID, &a.Role, &a.Position, &a.CreatedAt); err != nil {
			return nil, err
		}
		list = append(list, &a)
	}
	return list, rows.Err()
}

// RemoveAssignment removes a speaker from a session.
func (r *Repository) RemoveAssignment(ctx context.Context, sessionID, userID uuid.UUID) error {
	_, err := r.pool.Exec(ctx, `DELETE FROM speaker_assignments WHERE session_id = $1 AND user_id = $2`, sessionID, userID)
	return err
}

// Reorder rewrites the positions of the session's assignments in one
// transaction. userIDs holds the desired order, positions start at 1.
func (r *Repository) Reorder(ctx context.Context, sessionID uuid.UUID, userIDs []uuid.UUID) error {
	tx, err := r.pool.Begin(ctx)
	if err != nil {
		return err
	}
	defer tx.Rollback(ctx)

	// Park existing positions out of range so the unique constraint does
	// not trip while rewriting.
	if _, err := tx.Exec(ctx, `UPDATE speaker_assignments SET position = position + 10000 WHERE session_id = $1`, sessionID); err != nil {
		return err
	}
	for i, userID := range userIDs {
		tag, err := tx.Exec(ctx, `UPDATE speaker_assignments SET position = $3 WHERE session_id = $1 AND user_id = $2`,
			sessionID, userID, i+1)
		if err != nil {
			return err
		}
		if tag.RowsAffected() == 0 {
			return errs.NotFound("speaker not assigned to this session")
		}
	}
	return tx.Commit(ctx)
}
