package ws

import "github.com/mcoot/hangmanparty/internal/model"

// PlayerView is a room member as seen by clients
type PlayerView struct {
	UserID   string `json:"userId"`
	Username string `json:"username"`
	Score    int    `json:"score"`
}

// RoomView is the full room snapshot delivered in room_update events.
// Snapshots are personalized per viewer: the secret word is redacted for
// everyone but the word master while the round is in progress, and only
// revealed to all once the round finishes.
type RoomView struct {
	RoomID          string       `json:"roomId"`
	Host            string       `json:"host"`
	Players         []PlayerView `json:"players"`
	WordMaster      string       `json:"wordMaster"`
	CurrentWord     string       `json:"currentWord"`
	MaskedWord      string       `json:"maskedWord"`
	GuessedLetters  []string     `json:"guessedLetters"`
	WrongGuesses    int          `json:"wrongGuesses"`
	MaxWrongGuesses int          `json:"maxWrongGuesses"`
	GameStatus      string       `json:"gameStatus"`
	Winner          string       `json:"winner"`
}

// NewRoomView renders a room snapshot for the given viewer
func NewRoomView(rm *model.Room, viewer model.PlayerID) RoomView {
	players := make([]PlayerView, len(rm.Players))
	for i, p := range rm.Players {
		players[i] = PlayerView{
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

	return RoomView{
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
