package realtime

import "github.com/google/uuid"

// Room names. Every broadcast targets one of these; the hub itself does not
// care what a room means.

// EventRoom is the room for everyone connected to an event.
func EventRoom(eventID uuid.UUID) string {
	return "event_" + eventID.String()
}

// UserRoom is a user's private room, for direct notifications.
func UserRoom(userID uuid.UUID) string {
	return "user_" + userID.String()
}

// ChatRoom is the room for a chat room's message stream.
func ChatRoom(roomID uuid.UUID) string {
	return "room_" + roomID.String()
}
