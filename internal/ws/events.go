package ws

import "encoding/json"

// Inbound event names
const (
	EventJoinRoom    = "join_room"
	EventStartGame   = "start_game"
	EventSelectWord  = "select_word"
	EventGuessLetter = "guess_letter"
	EventLeaveRoom   = "leave_room"
)

// Outbound event names
const (
	EventRoomUpdate = "room_update"
	EventError      = "error"
)

// Envelope is the wire format for every message in both directions
type Envelope struct {
	Event string          `json:"event"`
	Data  json.RawMessage `json:"data,omitempty"`
}

// JoinRoomPayload is the inbound payload for join_room.
// UserID and Username are accepted for wire compatibility but ignored:
// the authenticated connection identity is authoritative.
type JoinRoomPayload struct {
	RoomID   string `json:"roomId"`
	UserID   string `json:"userId,omitempty"`
	Username string `json:"username,omitempty"`
}

// StartGamePayload is the inbound payload for start_game
type StartGamePayload struct {
	RoomID string `json:"roomId"`
}

// SelectWordPayload is the inbound payload for select_word
type SelectWordPayload struct {
	RoomID string `json:"roomId"`
	Word   string `json:"word"`
}

// GuessLetterPayload is the inbound payload for guess_letter
type GuessLetterPayload struct {
	RoomID string `json:"roomId"`
	Letter string `json:"letter"`
	UserID string `json:"userId,omitempty"`
}

// LeaveRoomPayload is the inbound payload for leave_room
type LeaveRoomPayload struct {
	RoomID string `json:"roomId"`
	UserID string `json:"userId,omitempty"`
}

// marshalEnvelope builds a wire message for an outbound event
func marshalEnvelope(event string, data any) ([]byte, error) {
	raw, err := json.Marshal(data)
	if err != nil {
		return nil, err
	}
	return json.Marshal(Envelope{Event: event, Data: raw})
}
