package models

import (
	"time"

	"github.com/google/uuid"
)

// Session represents a session (talk, panel, etc.) within an event.
type Session struct {
	ID        uuid.UUID  `json:"id"`
	EventID   uuid.UUID  `json:"event_id"`
	Title     string     `json:"title"`
	StartsAt  time.Time  `json:"starts_at"`
	EndsAt    *time.Time `json:"ends_at,omitempty"`
	CreatedAt time.Time  `json:"created_at"`
	UpdatedAt time.Time  `json:"updated_at"`
}

// SessionRole is the role of a speaker within a session.
type SessionRole string

const (
	SessionRoleHost      SessionRole = "host"
	SessionRoleSpeaker   SessionRole = "speaker"
	SessionRolePanelist  SessionRole = "panelist"
	SessionRoleModerator SessionRole = "moderator"
	SessionRoleKeynote   SessionRole = "keynote"
)

// Valid reports whether the role is one of the known session roles.
func (r SessionRole) Valid() bool {
	switch r {
	case SessionRoleHost, SessionRoleSpeaker, SessionRolePanelist, SessionRoleModerator, SessionRoleKeynote:
		return true
	}
	return false
}

// SpeakerAssignment places a user on a session with a role and a display
// position. Positions are positive and unique per session.
type SpeakerAssignment struct {
	ID        uuid.UUID   `json:"id"`
	SessionID uuid.UUID   `json:"session_id"`
	UserID    uuid.UUID   `json:"user_id"`
	Role      SessionRole `json:"role"`
	Position  int         `json:"position"`
	CreatedAt time.Time   `json:"created_at"`
}
