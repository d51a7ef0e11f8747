package models

import (
	"time"

	"github.com/google/uuid"
)

// ModerationRecord holds per-(event, user) moderation state. Created lazily
// on the first moderation action against a user in an event.
type ModerationRecord struct {
	ID              uuid.UUID  `json:"id"`
	EventID         uuid.UUID  `json:"event_id"`
	UserID          uuid.UUID  `json:"user_id"`
	IsBanned        bool       `json:"is_banned"`
	BannedAt        *time.Time `json:"banned_at,omitempty"`
	BannedBy        *uuid.UUID `json:"banned_by,omitempty"`
	BanReason       string     `json:"ban_reason,omitempty"`
	IsChatBanned    bool       `json:"is_chat_banned"`
	ChatBanUntil    *time.Time `json:"chat_ban_until,omitempty"`
	ChatBanReason   string     `json:"chat_ban_reason,omitempty"`
	ModerationNotes string     `json:"moderation_notes,omitempty"`
	CreatedAt       time.Time  `json:"created_at"`
	UpdatedAt       time.Time  `json:"updated_at"`
}
