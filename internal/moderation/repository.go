package moderation

import (
	"context"
	"errors"
	"time"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/gatherly/backend/internal/models"
)

// Repository is the PostgreSQL-backed moderation record store.
type Repository struct {
	pool *pgxpool.Pool
}

// NewRepository creates a moderation repository.
func NewRepository(pool *pgxpool.Pool) *Repository {
	return &Repository{pool: pool}
}

const recordColumns = `id, event_id, user_id, is_banned, banned_at, banned_by, ban_reason,
	is_chat_banned, chat_ban_until, chat_ban_reason, moderation_notes, created_at, updated_at`

func scanRecord(row pgx.Row) (*models.ModerationRecord, error) {
	var m models.ModerationRecord
	err := row.Scan(&m.ID, &m.EventID, &m.UserID, &m.IsBanned, &m.BannedAt, &m.BannedBy, &m.BanReason,
		&m.IsChatBanned, &m.ChatBanUntil, &m.ChatBanReason, &m.ModerationNotes, &m.CreatedAt, &m.UpdatedAt)
	if errors.Is(err, pgx.ErrNoRows) {
		return nil, nil
	}
	if err != nil {
		return nil, err
	}
	return &m, nil
}

// Record returns the moderation record, or nil.
func (r *Repository) Record(ctx context.Context, eventID, userID uuid.UUID) (*models.ModerationRecord, error) {
	const q = `SELECT ` + recordColumns + ` FROM moderation_records WHERE event_id = $1 AND user_id = $2`
	return scanRecord(r.pool.QueryRow(ctx, q, eventID, userID))
}

// ApplyBan upserts the record with the ban flag set.
func (r *Repository) ApplyBan(ctx context.Context, eventID, userID, moderatorID uuid.UUID, reason, notes string, at time.Time) (*models.ModerationRecord, error) {
	const q = `INSERT INTO moderation_records (id, event_id, user_id, is_banned, banned_at, banned_by, ban_reason, moderation_notes)
		VALUES (gen_random_uuid(), $1, $2, TRUE, $3, $4, $5, $6)
		ON CONFLICT (event_id, user_id) DO UPDATE SET
			is_banned = TRUE,
			banned_at = EXCLUDED.banned_at,
			banned_by = EXCLUDED.banned_by,
			ban_reason = EXCLUDED.ban_reason,
			moderation_notes = EXCLUDED.moderation_notes,
			updated_at = NOW()
		RETURNING ` + recordColumns
	return scanRecord(r.pool.QueryRow(ctx, q, eventID, userID, at, moderatorID, reason, notes))
}

// ClearBan clears the ban flag. Returns nil if no record exists.
func (r *Repository) ClearBan(ctx context.Context, eventID, userID uuid.UUID) (*models.ModerationRecord, error) {
	const q = `UPDATE moderation_records
		SET is_banned = FALSE, banned_at = NULL, banned_by = NULL, ban_reason = '', updated_at = NOW()
		WHERE event_id = $1 AND user_id = $2
		RETURNING ` + recordColumns
	return scanRecord(r.pool.QueryRow(ctx, q, eventID, userID))
}

// ApplyChatBan upserts the record with the chat-ban flag set.
func (r *Repository) ApplyChatBan(ctx context.Context, eventID, userID, moderatorID uuid.UUID, until *time.Time, reason, notes string) (*models.ModerationRecord, error) {
	const q = `INSERT INTO moderation_records (id, event_id, user_id, is_chat_banned, chat_ban_until, chat_ban_reason, banned_by, moderation_notes)
		VALUES (gen_random_uuid(), $1, $2, TRUE, $3, $4, $5, $6)
		ON CONFLICT (event_id, user_id) DO UPDATE SET
			is_chat_banned = TRUE,
			chat_ban_until = EXCLUDED.chat_ban_until,
			chat_ban_reason = EXCLUDED.chat_ban_reason,
			moderation_notes = EXCLUDED.moderation_notes,
			updated_at = NOW()
		RETURNING ` + recordColumns
	return scanRecord(r.pool.QueryRow(ctx, q, eventID, userID, until, reason, moderatorID, notes))
}

// ClearChatBan clears the chat-ban flag. Returns nil if no record exists.
func (r *Repository) ClearChatBan(ctx context.Context, eventID, userID uuid.UUID) (*models.ModerationRecord, error) {
	const q = `UPDATE moderation_records
		SET is_chat_banned = FALSE, chat_ban_until = NULL, chat_ban_reason = '', updated_at = NOW()
		WHERE event_id = $1 AND user_id = $2
		RETURNING ` + recordColumns
	return scanRecord(r.pool.QueryRow(ctx, q, eventID, userID))
}
