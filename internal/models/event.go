package models

import (
	"time"

	"github.com/google/uuid"
)

// Event represents an event owned by an organization.
type Event struct {
	ID             uuid.UUID  `json:"id"`
	OrganizationID uuid.UUID  `json:"organization_id"`
	Title          string     `json:"title"`
	Description    string     `json:"description"`
	StartsAt       time.Time  `json:"starts_at"`
	EndsAt         *time.Time `json:"ends_at,omitempty"`
	CreatedBy      uuid.UUID  `json:"created_by"`
	CreatedAt      time.Time  `json:"created_at"`
	UpdatedAt      time.Time  `json:"updated_at"`
}

// EventRole is the role of a user within an event.
type EventRole string

const (
	EventRoleAdmin     EventRole = "admin"
	EventRoleOrganizer EventRole = "organizer"
	EventRoleModerator EventRole = "moderator"
	EventRoleSpeaker   EventRole = "speaker"
	EventRoleAttendee  EventRole = "attendee"
)

// Valid reports whether the role is one of the known event roles.
func (r EventRole) Valid() bool {
	switch r {
	case EventRoleAdmin, EventRoleOrganizer, EventRoleModerator, EventRoleSpeaker, EventRoleAttendee:
		return true
	}
	return false
}

// EventMembership links a user to an event with a role. Memberships are
// always explicit; org-derived access never produces a membership row.
type EventMembership struct {
	ID           uuid.UUID `json:"id"`
	EventID      uuid.UUID `json:"event_id"`
	UserID       uuid.UUID `json:"user_id"`
	Role         EventRole `json:"role"`
	SpeakerBio   string    `json:"speaker_bio,omitempty"`
	SpeakerTitle string    `json:"speaker_title,omitempty"`
	CreatedAt    time.Time `json:"created_at"`
	UpdatedAt    time.Time `json:"updated_at"`
}

// EventInvite is a pending invitation to join an event. Accepting creates an
// EventMembership with the invited role.
type EventInvite struct {
	ID         uuid.UUID  `json:"id"`
	EventID    uuid.UUID  `json:"event_id"`
	Email      string     `json:"email"`
	Role       EventRole  `json:"role"`
	Token      string     `json:"token"`
	InvitedBy  uuid.UUID  `json:"invited_by"`
	AcceptedAt *time.Time `json:"accepted_at,omitempty"`
	CreatedAt  time.Time  `json:"created_at"`
}
