package realtime

import (
	"context"
	"encoding/json"
	"net/http"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
	"github.com/gorilla/websocket"
	"go.uber.org/zap"
)

var upgrader = websocket.Upgrader{
	ReadBufferSize:  1024,
	WriteBufferSize: 1024,
	CheckOrigin: func(r *http.Request) bool {
		return true // allow all origins in dev; restrict in production
	},
}

// WSMessage is the WebSocket message envelope.
type WSMessage struct {
	Event string          `json:"event"`
	Data  json.RawMessage `json:"data,omitempty"`
}

// Authenticator validates a token and returns the user ID.
type Authenticator func(token string) (uuid.UUID, error)

// RoomGate decides whether a user may join a room. The hub calls it for every
// join, so room access rules live with the domain packages, not here.
type RoomGate func(ctx context.Context, room string, userID uuid.UUID) (bool, error)

// Client represents a single WebSocket connection.
type Client struct {
	ID       string
	UserID   uuid.UUID
	JoinedAt time.Time
	rooms    map[string]bool // guarded by hub.mu
	hub      *Hub
	conn     *websocket.Conn
	send     chan WSMessage
	logger   *zap.Logger
}

// ServeWs handles the WebSocket upgrade and runs the client loop. The client
// always lands in its own user room; an event_id query parameter joins the
// event room when the gate allows it.
func ServeWs(hub *Hub, logger *zap.Logger, authenticate Authenticator, canJoin RoomGate) gin.HandlerFunc {
	return func(c *gin.Context) {
		token := c.Query("token")
		if token == "" {
			c.JSON(http.StatusBadRequest, gin.H{"error": "token required"})
			return
		}
		userID, err := authenticate(token)
		if err != nil {
			c.JSON(http.StatusUnauthorized, gin.H{"error": "invalid token"})
			return
		}

		var eventRoom string
		if raw := c.Query("event_id"); raw != "" {
			eventID, err := uuid.Parse(raw)
			if err != nil {
				c.JSON(http.StatusBadRequest, gin.H{"error": "invalid event_id"})
				return
			}
			room := EventRoom(eventID)
			ok, err := canJoin(c.Request.Context(), room, userID)
			if err != nil {
				c.JSON(http.StatusInternalServerError, gin.H{"error": "failed to check event access"})
				return
			}
			if !ok {
				c.JSON(http.StatusForbidden, gin.H{"error": "no access to this event"})
				return
			}
			eventRoom = room
		}

		conn, err := upgrader.Upgrade(c.Writer, c.Request, nil)
		if err != nil {
			logger.Warn("websocket upgrade failed", zap.Error(err))
			return
		}

		client := &Client{
			ID:       uuid.New().String(),
			UserID:   userID,
			JoinedAt: time.Now(),
			rooms:    make(map[string]bool),
			hub:      hub,
			conn:     conn,
			send:     make(chan WSMessage, 256),
			logger:   logger,
		}
		hub.Join(client, UserRoom(userID))
		if eventRoom != "" {
			hub.Join(client, eventRoom)
		}
		go client.writePump()
		client.readPump(canJoin)
	}
}

type roomRequest struct {
	Room string `json:"room"`
}

func (c *Client) readPump(canJoin RoomGate) {
	defer func() {
		c.hub.Unregister(c)
		_ = c.conn.Close()
	}()

	c.conn.SetReadLimit(65536)
	_ = c.conn.SetReadDeadline(time.Now().Add(PongWait * time.Second))
	c.conn.SetPongHandler(func(string) error {
		_ = c.conn.SetReadDeadline(time.Now().Add(PongWait * time.Second))
		return nil
	})

	for {
		var msg WSMessage
		if err := c.conn.ReadJSON(&msg); err != nil {
			break
		}
		_ = c.conn.SetReadDeadline(time.Now().Add(PongWait * time.Second))

		switch msg.Event {
		case "join_room":
			var req roomRequest
			if err := json.Unmarshal(msg.Data, &req); err != nil || req.Room == "" {
				continue
			}
			ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
			ok, err := canJoin(ctx, req.Room, c.UserID)
			cancel()
			if err != nil || !ok {
				c.hub.SendToClient(UserRoom(c.UserID), c.ID, "join_denied", map[string]string{"room": req.Room})
				continue
			}
			c.hub.Join(c, req.Room)
		case "leave_room":
			var req roomRequest
			if err := json.Unmarshal(msg.Data, &req); err != nil || req.Room == "" {
				continue
			}
			c.hub.Leave(c, req.Room)
		default:
			// clients receive events over the socket; they do not publish
		}
	}
}

func (c *Client) writePump() {
	ticker := time.NewTicker(PingInterval * time.Second)
	defer func() {
		ticker.Stop()
		_ = c.conn.Close()
	}()

	for {
		select {
		case msg, ok := <-c.send:
			if !ok {
				_ = c.conn.WriteMessage(websocket.CloseMessage, []byte{})
				return
			}
			_ = c.conn.SetWriteDeadline(time.Now().Add(10 * time.Second))
			if err := c.conn.WriteJSON(msg); err != nil {
				return
			}
		case <-ticker.C:
			_ = c.conn.SetWriteDeadline(time.Now().Add(10 * time.Second))
			if err := c.conn.WriteMessage(websocket.PingMessage, nil); err != nil {
				return
			}
		}
	}
}
