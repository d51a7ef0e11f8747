package models

import (
	"time"

	"github.com/google/uuid"
)

// ConnectionStatus is the lifecycle state of a connection.
type ConnectionStatus string

const (
	ConnectionPending  ConnectionStatus = "pending"
	ConnectionAccepted ConnectionStatus = "accepted"
	ConnectionDeclined ConnectionStatus = "declined"
)

// Connection is a directional connection request with a bidirectional
// result once accepted. At most one logical connection exists per unordered
// pair of users regardless of direction.
type Connection struct {
	ID                 uuid.UUID        `json:"id"`
	RequesterID        uuid.UUID        `json:"requester_id"`
	RecipientID        uuid.UUID        `json:"recipient_id"`
	Status             ConnectionStatus `json:"status"`
	Icebreaker         string           `json:"icebreaker"`
	OriginatingEventID *uuid.UUID       `json:"originating_event_id,omitempty"`
	CreatedAt          time.Time        `json:"created_at"`
	UpdatedAt          time.Time        `json:"updated_at"`
}

// Involves reports whether the user is either side of the connection.
func (c *Connection) Involves(userID uuid.UUID) bool {
	return c.RequesterID == userID || c.RecipientID == userID
}

// Other returns the peer of userID in the connection.
func (c *Connection) Other(userID uuid.UUID) uuid.UUID {
	if c.RequesterID == userID {
		return c.RecipientID
	}
	return c.RequesterID
}

// CanonicalPair orders two user IDs so that an unordered pair has a single
// representation. Used for duplicate detection and lock keys regardless of
// request direction.
func CanonicalPair(a, b uuid.UUID) (uuid.UUID, uuid.UUID) {
	if a.String() > b.String() {
		return b, a
	}
	return a, b
}
