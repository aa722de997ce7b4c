package response

import (
	"github.com/mcoot/hangmanparty/internal/model"
	"github.com/mcoot/hangmanparty/internal/services/auth"
)

// Player represents a player in API responses
type Player struct {
	ID       string `json:"id"`
	Username string `json:"username"`
}

// PlayerFromModel converts a model.Player to a response Player
func PlayerFromModel(p *model.Player) Player {
	return Player{
		ID:       string(p.ID),
		Username: p.Username,
	}
}

// AuthResponse is the response for authentication endpoints
type AuthResponse struct {
	Player       Player `json:"player"`
	SessionToken string `json:"session_token"`
}

// AuthResponseFromSession creates an AuthResponse from a session
func AuthResponseFromSession(s *auth.Session) AuthResponse {
	return AuthResponse{
		Player:       PlayerFromModel(&s.Player),
		SessionToken: s.Token,
	}
}

// RoomPlayer represents a room member in API responses
type RoomPlayer struct {
	UserID   string `json:"userId"`
	Username string `json:"username"`
	Score    int    `json:"score"`
}

// Room represents a room snapshot in API responses. The secret word is
// redacted for everyone but the word master while a round is active,
// matching the realtime snapshot rules.
type Room struct {
	RoomID          string       `json:"roomId"`
	Host            string       `json:"host"`
	Players         []RoomPlayer `json:"players"`
	WordMaster      string       `json:"wordMaster"`
	CurrentWord     string       `json:"currentWord"`
	MaskedWord      string       `json:"maskedWord"`
	GuessedLetters  []string     `json:"guessedLetters"`
	WrongGuesses    int          `json:"wrongGuesses"`
	MaxWrongGuesses int          `json:"maxWrongGuesses"`
	GameStatus      string       `json:"gameStatus"`
	Winner          string       `json:"winner"`
}

// RoomFromModel converts model.Room for the given viewer
func RoomFromModel(rm *model.Room, viewer model.PlayerID) Room {
	players := make([]RoomPlayer, len(rm.Players))
	for i, p := range rm.Players {
		players[i] = RoomPlayer{
			UserID:   string(p.ID),
			Username: p.Username,
			Score:    p.Score,
		}
	}

	word := rm.CurrentWord
	if rm.RoundActive() && viewer != rm.WordMaster {
		word = ""
	}

	guessed := rm.GuessedLetters
	if guessed == nil {
		guessed = []string{}
	}

	return Room{
		RoomID:          string(rm.Code),
		Host:            string(rm.Host),
		Players:         players,
		WordMaster:      string(rm.WordMaster),
		CurrentWord:     word,
		MaskedWord:      rm.MaskedWord,
		GuessedLetters:  guessed,
		WrongGuesses:    rm.WrongGuesses,
		MaxWrongGuesses: rm.MaxWrongGuesses,
		GameStatus:      string(rm.Status),
		Winner:          string(rm.Winner),
	}
}
