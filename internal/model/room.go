package model

import (
	"strings"
	"time"
)

// RoomCode is a short human-shareable identifier for joining rooms.
// Codes are always stored uppercase.
type RoomCode string

// NormalizeRoomCode uppercases a raw room code
func NormalizeRoomCode(raw string) RoomCode {
	return RoomCode(strings.ToUpper(strings.TrimSpace(raw)))
}

// RoomStatus represents the current phase of a room's game
type RoomStatus string

const (
	RoomStatusWaiting   RoomStatus = "waiting"   // No round started yet
	RoomStatusSelection RoomStatus = "selection" // Word master picking the secret word
	RoomStatusGuessing  RoomStatus = "guessing"  // Round in progress
	RoomStatusFinished  RoomStatus = "finished"  // Round resolved, awaiting restart
)

// Winner identifies which side won a finished round
type Winner string

const (
	WinnerNone       Winner = ""
	WinnerGuessers   Winner = "guessers"
	WinnerWordMaster Winner = "wordmaster"
)

// DefaultMaxWrongGuesses is the wrong-guess ceiling for new rooms
const DefaultMaxWrongGuesses = 6

// RoomPlayer represents a player's membership in a room.
// Slice order is significant: it drives word-master rotation.
type RoomPlayer struct {
	ID           PlayerID
	Username     string
	Score        int
	ConnectionID string // Live realtime connection, updated on rejoin
	JoinedAt     time.Time
}

// Room represents a single game session shared by its players
type Room struct {
	Code   RoomCode
	Host   PlayerID // Holds the start/restart privilege
	Status RoomStatus

	Players    []RoomPlayer
	WordMaster PlayerID // Empty only while Status is waiting

	// Round state
	CurrentWord     string   // Uppercase; empty when no round active
	MaskedWord      string   // Same length as CurrentWord, '_' for hidden letters
	GuessedLetters  []string // Single uppercase letters, insertion order, no duplicates
	WrongGuesses    int
	MaxWrongGuesses int
	Winner          Winner // Non-empty iff Status is finished

	CreatedAt time.Time
	UpdatedAt time.Time
}

// GetPlayer returns the member with the given player ID, or nil if not found
func (r *Room) GetPlayer(id PlayerID) *RoomPlayer {
	for i := range r.Players {
		if r.Players[i].ID == id {
			return &r.Players[i]
		}
	}
	return nil
}

// PlayerIndex returns the index of the player in rotation order, or -1
func (r *Room) PlayerIndex(id PlayerID) int {
	for i := range r.Players {
		if r.Players[i].ID == id {
			return i
		}
	}
	return -1
}

// HasGuessed reports whether the letter was already guessed this round
func (r *Room) HasGuessed(letter string) bool {
	for _, l := range r.GuessedLetters {
		if l == letter {
			return true
		}
	}
	return false
}

// NextWordMaster selects the word master for the next round: the player
// after the current word master in join order, wrapping around, or the
// first player when no round has been played yet.
func (r *Room) NextWordMaster() PlayerID {
	if len(r.Players) == 0 {
		return ""
	}
	idx := 0
	if r.WordMaster != "" {
		if cur := r.PlayerIndex(r.WordMaster); cur >= 0 {
			idx = (cur + 1) % len(r.Players)
		}
	}
	return r.Players[idx].ID
}

// RoundActive reports whether a round is currently being guessed
func (r *Room) RoundActive() bool {
	return r.Status == RoomStatusGuessing
}
