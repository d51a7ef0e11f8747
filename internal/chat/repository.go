package chat

import (
	"context"
	"errors"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/gatherly/backend/internal/models"
)

// Repository handles chat room, message and direct message persistence.
type Repository struct {
	pool *pgxpool.Pool
}

// NewRepository creates a chat repository.
func NewRepository(pool *pgxpool.Pool) *Repository {
	return &Repository{pool: pool}
}

// CreateRoom creates a chat room under an event.
func (r *Repository) CreateRoom(ctx context.Context, room *models.ChatRoom) error {
	const q = `INSERT INTO chat_rooms (id, event_id, name, created_by)
		VALUES (gen_random_uuid(), $1, $2, $3)
		RETURNING id, created_at`
	return r.pool.QueryRow(ctx, q, room.EventID, room.Name, room.CreatedBy).Scan(&room.ID, &room.CreatedAt)
}

// Room returns a chat room by ID, or nil.
func (r *Repository) Room(ctx context.Context, id uuid.UUID) (*models.ChatRoom, error) {
	const q = `SELECT id, event_id, name, created_by, created_at FROM chat_rooms WHERE id = $1`
	var room models.ChatRoom
	err := r.pool.QueryRow(ctx, q, id).Scan(&room.ID, &room.EventID, &room.Name, &room.CreatedBy, &room.CreatedAt)
	if errors.Is(err, pgx.ErrNoRows) {
		return nil, nil
	}
	if err != nil {
		return nil, err
	}
	return &room, nil
}

// ListRooms returns the event's chat rooms.
func (r *Repository) ListRooms(ctx context.Context, eventID uuid.UUID) ([]*models.ChatRoom, error) {
	const q = `SELECT id, event_id, name, created_by, created_at
		FROM chat_rooms WHERE event_id = $1 ORDER BY created_at`
	rows, err := r.pool.Query(ctx, q, eventID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()
	var list []*models.ChatRoom
	for rows.Next() {
		var room models.ChatRoom
		if err := rows.Scan(&room.ID, &room.EventID, &room.Name, &room.CreatedBy, &room.CreatedAt); err != nil {
			return nil, err
		}
		list = append(list, &room)
	}
	return list, rows.Err()
}

// CreateMessage stores a chat message.
func (r *Repository) CreateMessage(ctx context.Context, m *models.ChatMessage) error {
	const q = `INSERT INTO chat_messages (id, room_id, sender_id, body)
		VALUES (gen_random_uuid(), $1, $2, $3)
		RETURNING id, created_at`
	return r.pool.QueryRow(ctx, q, m.RoomID, m.SenderID, m.Body).Scan(&m.ID, &m.CreatedAt)
}

// ListMessages returns the room's most recent messages, oldest first.
func (r *Repository) ListMessages(ctx context.Context, roomID uuid.UUID, limit int) ([]*models.ChatMessage, error) {
	const q = `SELECT id, room_id, sender_id, body, created_at FROM (
			SELECT id, room_id, sender_id, body, created_at
			FROM chat_messages WHERE room_id = $1
			ORDER BY created_at DESC LIMIT $2
		) recent ORDER BY created_at ASC`
	rows, err := r.pool.Query(ctx, q, roomID, limit)
	if err != nil {
		return nil, err
	}
	defer rows.Close()
	var list []*models.ChatMessage
	for rows.Next() {
		var m models.ChatMessage
		if err := rows.Scan(&m.ID, &m.RoomID, &m.SenderID, &m.Body, &m.CreatedAt); err != nil {
			return nil, err
		}
		list = append(list, &m)
	}
	return list, rows.Err()
}

// CreateDirectMessage stores a direct message.
func (r *Repository) CreateDirectMessage(ctx context.Context, m *models.DirectMessage) error {
	const q = `INSERT INTO direct_messages (id, sender_id, recipient_id, body)
		VALUES (gen_random_uuid(), $1, $2, $3)
		RETURNING id, created_at`
	return r.pool.QueryRow(ctx, q, m.SenderID, m.RecipientID, m.Body).Scan(&m.ID, &m.CreatedAt)
}

// ListDirectMessages returns the conversation between two users, oldest first.
func (r *Repository) ListDirectMessages(ctx context.Context, a, b uuid.UUID, limit int) ([]*models.DirectMessage, error) {
	const q = `SELECT id, sender_id, recipient_id, body, created_at FROM (
			SELECT id, sender_id, recipient_id, body, created_at
			FROM direct_messages
			WHERE (sender_id = $1 AND recipient_id = $2) OR (sender_id = $2 AND recipient_id = $1)
			ORDER BY created_at DESC LIMIT $3
		) recent ORDER BY created_at ASC`
	rows, err := r.pool.Query(ctx, q, a, b, limit)
	if err != nil {
		return nil, err
	}
	defer rows.Close()
	var list []*models.DirectMessage
	for rows.Next() {
		var m models.DirectMessage
		if err := rows.Scan(&m.ID, &m.SenderID, &m.RecipientID, &m.Body, &m.CreatedAt); err != nil {
			return nil, err
		}
		list = append(list, &m)
	}
	return list, rows.Err()
}
