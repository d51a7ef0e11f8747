package models

import "github.com/google/uuid"

// ProfileProjection is the field-level redacted view of a user profile
// produced for a specific viewer. Nil pointer fields mean the viewer is not
// permitted to see the value.
type ProfileProjection struct {
	ID        uuid.UUID `json:"id"`
	FirstName string    `json:"first_name"`
	LastName  string    `json:"last_name"`
	FullName  string    `json:"full_name"`
	ImageURL  string    `json:"image_url"`

	Email       *string           `json:"email"`
	CompanyName *string           `json:"company_name"`
	Bio         *string           `json:"bio"`
	SocialLinks map[string]string `json:"social_links"`

	ConnectionStatus         *ConnectionStatus `json:"connection_status,omitempty"`
	CanSendConnectionRequest bool              `json:"can_send_connection_request"`

	// Event-scoped fields, present only when the projection was computed
	// with an event context and the subject belongs to that event.
	EventRole    *EventRole `json:"event_role,omitempty"`
	SpeakerBio   *string    `json:"speaker_bio,omitempty"`
	SpeakerTitle *string    `json:"speaker_title,omitempty"`
}
