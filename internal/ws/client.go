package ws

import (
	"log/slog"
	"time"

	"github.com/gorilla/websocket"

	"github.com/mcoot/hangmanparty/internal/model"
)

const (
	// Time allowed to write a message to the peer
	writeWait = 10 * time.Second

	// Time allowed to read the next pong message from the peer
	pongWait = 60 * time.Second

	// Send pings to peer with this period (must be less than pongWait)
	pingPeriod = (pongWait * 9) / 10

	// Maximum inbound message size
	maxMessageSize = 4096

	// Buffer size for outgoing messages
	sendBufferSize = 64
)

// Client is one authenticated websocket connection
type Client struct {
	conn     *websocket.Conn
	playerID model.PlayerID
	username string
	connID   string
	logger   *slog.Logger

	send chan []byte

	// The room this connection is currently subscribed to; empty until
	// the first join_room
	room model.RoomCode
}

// NewClient wraps an upgraded websocket connection
func NewClient(conn *websocket.Conn, player model.Player, connID string, logger *slog.Logger) *Client {
	return &Client{
		conn:     conn,
		playerID: player.ID,
		username: player.Username,
		connID:   connID,
		logger: logger.With(
			slog.String("player_id", string(player.ID)),
			slog.String("conn_id", connID)),
		send: make(chan []byte, sendBufferSize),
	}
}

// SendEvent queues an outbound event for this client only
func (c *Client) SendEvent(event string, data any) {
	msg, err := marshalEnvelope(event, data)
	if err != nil {
		c.logger.Error("failed to marshal event",
			slog.String("event", event),
			slog.String("error", err.Error()))
		return
	}

	select {
	case c.send <- msg:
	default:
		c.logger.Warn("event dropped - client buffer full",
			slog.String("event", event))
	}
}

// SendError delivers a point-to-point error message to this client
func (c *Client) SendError(message string) {
	c.SendEvent(EventError, message)
}

// readPump reads inbound envelopes and hands them to the dispatcher.
// It exits when the connection drops, after which the handler runs the
// disconnect path.
func (c *Client) readPump(dispatch func(*Client, Envelope)) {
	defer c.conn.Close()

	c.conn.SetReadLimit(maxMessageSize)
	_ = c.conn.SetReadDeadline(time.Now().Add(pongWait))
	c.conn.SetPongHandler(func(string) error {
		return c.conn.SetReadDeadline(time.Now().Add(pongWait))
	})

	for {
		var env Envelope
		if err := c.conn.ReadJSON(&env); err != nil {
			if websocket.IsUnexpectedCloseError(err, websocket.CloseGoingAway, websocket.CloseNormalClosure) {
				c.logger.Warn("connection closed unexpectedly",
					slog.String("error", err.Error()))
			}
			return
		}
		dispatch(c, env)
	}
}

// writePump drains the send buffer to the peer and keeps the connection
// alive with periodic pings
func (c *Client) writePump() {
	ticker := time.NewTicker(pingPeriod)
	defer func() {
		ticker.Stop()
		c.conn.Close()
	}()

	for {
		select {
		case msg, ok := <-c.send:
			_ = c.conn.SetWriteDeadline(time.Now().Add(writeWait))
			if !ok {
				_ = c.conn.WriteMessage(websocket.CloseMessage, []byte{})
				return
			}
			if err := c.conn.WriteMessage(websocket.TextMessage, msg); err != nil {
				return
			}

		case <-ticker.C:
			_ = c.conn.SetWriteDeadline(time.Now().Add(writeWait))
			if err := c.conn.WriteMessage(websocket.PingMessage, nil); err != nil {
				return
			}
		}
	}
}

// Close releases the client's send channel
func (c *Client) Close() {
	close(c.send)
}
