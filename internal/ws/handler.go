package ws

import (
	"context"
	"encoding/json"
	"errors"
	"log/slog"
	"net/http"
	"strings"
	"time"

	"github.com/gorilla/websocket"

	"github.com/mcoot/hangmanparty/internal/dependencies/random"
	"github.com/mcoot/hangmanparty/internal/model"
	"github.com/mcoot/hangmanparty/internal/services/auth"
	"github.com/mcoot/hangmanparty/internal/services/room"
)

// eventTimeout bounds the handling of a single inbound event, including
// storage round-trips and the dictionary lookup
const eventTimeout = 15 * time.Second

// connIDAlphabet is the alphabet for generated connection IDs
const connIDAlphabet = "abcdefghijklmnopqrstuvwxyz0123456789"

// User-facing error strings for the realtime surface
const (
	msgCouldNotJoin   = "Could not join room"
	msgWordTooShort   = "Word too short"
	msgWordInvalid    = "Invalid word (check dictionary)"
	msgDictionaryDown = "Dictionary unavailable, try again"
	msgNotHost        = "Only the host can start the game"
	msgNotWordMaster  = "Only the word master can choose the word"
	msgInternal       = "Something went wrong"
)

// Handler upgrades HTTP requests to websocket connections and dispatches
// game events to the room controller
type Handler struct {
	authService    *auth.Service
	roomController room.ControllerInterface
	hubManager     *HubManager
	registry       *Registry
	random         random.Random
	logger         *slog.Logger

	upgrader websocket.Upgrader
}

// NewHandler creates a new websocket handler
func NewHandler(
	authService *auth.Service,
	roomController room.ControllerInterface,
	hubManager *HubManager,
	registry *Registry,
	rnd random.Random,
	logger *slog.Logger,
) *Handler {
	return &Handler{
		authService:    authService,
		roomController: roomController,
		hubManager:     hubManager,
		registry:       registry,
		random:         rnd,
		logger:         logger.With(slog.String("component", "ws-handler")),
		upgrader: websocket.Upgrader{
			ReadBufferSize:  1024,
			WriteBufferSize: 1024,
			CheckOrigin: func(r *http.Request) bool {
				// Single-origin deployments sit behind the same host;
				// cross-origin policy belongs to the reverse proxy
				return true
			},
		},
	}
}

// ServeHTTP handles GET /ws: the connection is authenticated before the
// upgrade and bound to its player for its whole lifetime
func (h *Handler) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	token := extractToken(r)
	if token == "" {
		http.Error(w, "authentication required", http.StatusUnauthorized)
		return
	}

	player, err := h.authService.GetPlayer(token)
	if err != nil {
		http.Error(w, "invalid or expired session", http.StatusUnauthorized)
		return
	}

	conn, err := h.upgrader.Upgrade(w, r, nil)
	if err != nil {
		h.logger.Warn("websocket upgrade failed", slog.String("error", err.Error()))
		return
	}

	connID := h.random.String(16, connIDAlphabet)
	client := NewClient(conn, *player, connID, h.logger)
	h.registry.Bind(connID, player.ID)

	h.logger.Info("connection established",
		slog.String("player_id", string(player.ID)),
		slog.String("conn_id", connID),
		slog.Int("connections", h.registry.Count()))

	go client.writePump()
	client.readPump(h.dispatch)

	// readPump returned: the peer is gone
	h.disconnect(client)
}

// dispatch routes one inbound envelope to its event handler. Events are
// attributed to the registry binding, so a connection that has been
// released cannot drive the game anymore.
func (h *Handler) dispatch(c *Client, env Envelope) {
	if _, ok := h.registry.Lookup(c.connID); !ok {
		c.logger.Warn("event from released connection",
			slog.String("event", env.Event))
		return
	}

	ctx, cancel := context.WithTimeout(context.Background(), eventTimeout)
	defer cancel()

	switch env.Event {
	case EventJoinRoom:
		h.handleJoin(ctx, c, env.Data)
	case EventStartGame:
		h.handleStart(ctx, c, env.Data)
	case EventSelectWord:
		h.handleSelectWord(ctx, c, env.Data)
	case EventGuessLetter:
		h.handleGuess(ctx, c, env.Data)
	case EventLeaveRoom:
		h.handleLeave(ctx, c, env.Data)
	default:
		c.logger.Warn("unknown event", slog.String("event", env.Event))
	}
}

func (h *Handler) handleJoin(ctx context.Context, c *Client, data json.RawMessage) {
	var payload JoinRoomPayload
	if err := json.Unmarshal(data, &payload); err != nil || payload.RoomID == "" {
		c.SendError(msgCouldNotJoin)
		return
	}

	code := model.NormalizeRoomCode(payload.RoomID)

	// A connection drives at most one room at a time: switching rooms
	// runs the full leave path on the previous one, so no ghost
	// membership is left behind to stall rotation or keep the room alive
	if c.room != "" && c.room != code {
		h.leaveRoom(ctx, c, c.room)
	}

	player := model.Player{ID: c.playerID, Username: c.username}
	rm, err := h.roomController.Join(ctx, code, player, c.connID)
	if err != nil {
		c.logger.Error("join failed",
			slog.String("room", string(code)),
			slog.String("error", err.Error()))
		c.SendError(msgCouldNotJoin)
		return
	}

	c.room = rm.Code
	hub := h.hubManager.GetOrCreateHub(rm.Code)
	hub.Register(c)
	hub.BroadcastRoom(rm)
}

func (h *Handler) handleStart(ctx context.Context, c *Client, data json.RawMessage) {
	var payload StartGamePayload
	if err := json.Unmarshal(data, &payload); err != nil || payload.RoomID == "" {
		return
	}

	code := model.NormalizeRoomCode(payload.RoomID)
	rm, err := h.roomController.Start(ctx, code, c.playerID)
	if err != nil {
		h.sendEventError(c, code, err)
		return
	}

	if hub := h.hubManager.GetHub(code); hub != nil {
		hub.BroadcastRoom(rm)
	}
}

func (h *Handler) handleSelectWord(ctx context.Context, c *Client, data json.RawMessage) {
	var payload SelectWordPayload
	if err := json.Unmarshal(data, &payload); err != nil || payload.RoomID == "" {
		return
	}

	code := model.NormalizeRoomCode(payload.RoomID)
	rm, err := h.roomController.SelectWord(ctx, code, c.playerID, payload.Word)
	if err != nil {
		h.sendEventError(c, code, err)
		return
	}

	if hub := h.hubManager.GetHub(code); hub != nil {
		hub.BroadcastRoom(rm)
	}
}

func (h *Handler) handleGuess(ctx context.Context, c *Client, data json.RawMessage) {
	var payload GuessLetterPayload
	if err := json.Unmarshal(data, &payload); err != nil || payload.RoomID == "" {
		return
	}

	code := model.NormalizeRoomCode(payload.RoomID)
	rm, changed, err := h.roomController.Guess(ctx, code, c.playerID, payload.Letter)
	if err != nil {
		c.logger.Error("guess failed",
			slog.String("room", string(code)),
			slog.String("error", err.Error()))
		c.SendError(msgInternal)
		return
	}
	if !changed {
		return
	}

	if hub := h.hubManager.GetHub(code); hub != nil {
		hub.BroadcastRoom(rm)
	}
}

func (h *Handler) handleLeave(ctx context.Context, c *Client, data json.RawMessage) {
	var payload LeaveRoomPayload
	if err := json.Unmarshal(data, &payload); err != nil || payload.RoomID == "" {
		return
	}

	code := model.NormalizeRoomCode(payload.RoomID)
	h.leaveRoom(ctx, c, code)
}

// leaveRoom removes the player from the room and unsubscribes the
// connection, tearing down the hub when the room itself is gone
func (h *Handler) leaveRoom(ctx context.Context, c *Client, code model.RoomCode) {
	rm, err := h.roomController.Leave(ctx, code, c.playerID)
	if err != nil {
		c.logger.Error("leave failed",
			slog.String("room", string(code)),
			slog.String("error", err.Error()))
		return
	}

	hub := h.hubManager.GetHub(code)
	if hub != nil {
		hub.Unregister(c)
	}
	if c.room == code {
		c.room = ""
	}

	if rm == nil {
		h.hubManager.RemoveHub(code)
		return
	}
	if hub != nil {
		hub.BroadcastRoom(rm)
	}
}

// disconnect runs when a connection drops for any reason; the player is
// removed from their room so the membership doesn't leak
func (h *Handler) disconnect(c *Client) {
	ctx, cancel := context.WithTimeout(context.Background(), eventTimeout)
	defer cancel()

	if c.room != "" {
		h.leaveRoom(ctx, c, c.room)
	}

	h.registry.Release(c.connID)
	c.Close()

	h.logger.Info("connection closed",
		slog.String("player_id", string(c.playerID)),
		slog.String("conn_id", c.connID))
}

// sendEventError maps controller errors to the point-to-point error
// surface. Wrong-status and missing-room conditions are silent no-ops.
func (h *Handler) sendEventError(c *Client, code model.RoomCode, err error) {
	switch {
	case errors.Is(err, model.ErrRoomNotFound), errors.Is(err, model.ErrWrongStatus):
		// Intentionally ignored: no feedback for stale or out-of-order events
	case errors.Is(err, model.ErrWordTooShort):
		c.SendError(msgWordTooShort)
	case errors.Is(err, model.ErrWordNotInDict):
		c.SendError(msgWordInvalid)
	case errors.Is(err, model.ErrDictionaryUnavailable):
		c.SendError(msgDictionaryDown)
	case errors.Is(err, model.ErrNotHost):
		c.SendError(msgNotHost)
	case errors.Is(err, model.ErrNotWordMaster):
		c.SendError(msgNotWordMaster)
	default:
		c.logger.Error("event failed",
			slog.String("room", string(code)),
			slog.String("error", err.Error()))
		c.SendError(msgInternal)
	}
}

// extractToken pulls the session token from the upgrade request.
// Browsers cannot set headers on websocket requests, so a query
// parameter is accepted alongside the standard bearer header.
func extractToken(r *http.Request) string {
	authHeader := r.Header.Get("Authorization")
	if strings.HasPrefix(authHeader, "Bearer ") {
		return strings.TrimPrefix(authHeader, "Bearer ")
	}

	if token := r.URL.Query().Get("token"); token != "" {
		return token
	}

	cookie, err := r.Cookie("session")
	if err == nil {
		return cookie.Value
	}

	return ""
}
