package room

import (
	"context"
	"errors"
	"log/slog"
	"strings"
	"sync"

	"github.com/mcoot/hangmanparty/internal/dependencies/clock"
	"github.com/mcoot/hangmanparty/internal/model"
	"github.com/mcoot/hangmanparty/internal/services/words"
	"github.com/mcoot/hangmanparty/internal/storage"
)

// MinWordLength is the shortest secret word a word master may choose
const MinWordLength = 3

// Controller owns the room state machine. Every mutating operation runs
// load -> validate -> mutate -> persist under a per-room lock, so concurrent
// events on the same room are linearized while distinct rooms proceed in
// parallel. The external dictionary lookup is the one exception: it runs
// before the lock is taken.
type Controller struct {
	storage storage.Storage
	words   words.ServiceInterface
	clock   clock.Clock
	logger  *slog.Logger

	mu    sync.Mutex
	locks map[model.RoomCode]*sync.Mutex
}

// NewController creates a new room controller
func NewController(store storage.Storage, words words.ServiceInterface, clk clock.Clock, logger *slog.Logger) *Controller {
	return &Controller{
		storage: store,
		words:   words,
		clock:   clk,
		logger:  logger.With(slog.String("component", "room")),
		locks:   make(map[model.RoomCode]*sync.Mutex),
	}
}

// lockRoom acquires the exclusive lock for a room code, creating it on
// first use. The returned function releases the lock.
//
// A waiter can win a mutex whose map entry dropLock already discarded,
// while later arrivals got a fresh one; holding the stale mutex would let
// both run the critical section at once. Re-checking the entry after
// acquisition and retrying closes that window.
func (c *Controller) lockRoom(code model.RoomCode) func() {
	for {
		c.mu.Lock()
		l, ok := c.locks[code]
		if !ok {
			l = &sync.Mutex{}
			c.locks[code] = l
		}
		c.mu.Unlock()

		l.Lock()

		c.mu.Lock()
		current := c.locks[code]
		c.mu.Unlock()

		if current == l {
			return l.Unlock
		}
		l.Unlock()
	}
}

// dropLock discards the lock entry for a room that no longer exists.
// Callers must currently hold the lock.
func (c *Controller) dropLock(code model.RoomCode) {
	c.mu.Lock()
	delete(c.locks, code)
	c.mu.Unlock()
}

// GetRoom retrieves a room by code
func (c *Controller) GetRoom(ctx context.Context, code model.RoomCode) (*model.Room, error) {
	return c.storage.GetRoom(ctx, model.NormalizeRoomCode(string(code)))
}

// Join adds a player to a room, creating the room if it does not exist.
// The creator becomes host. Rejoining members only refresh their live
// connection; game progress is never touched.
func (c *Controller) Join(ctx context.Context, code model.RoomCode, player model.Player, connectionID string) (*model.Room, error) {
	code = model.NormalizeRoomCode(string(code))
	if code == "" {
		return nil, model.ErrRoomNotFound
	}

	unlock := c.lockRoom(code)
	defer unlock()

	now := c.clock.Now()

	rm, err := c.storage.GetRoom(ctx, code)
	switch {
	case errors.Is(err, model.ErrRoomNotFound):
		rm = &model.Room{
			Code:   code,
			Host:   player.ID,
			Status: model.RoomStatusWaiting,
			Players: []model.RoomPlayer{{
				ID:           player.ID,
				Username:     player.Username,
				ConnectionID: connectionID,
				JoinedAt:     now,
			}},
			GuessedLetters:  []string{},
			MaxWrongGuesses: model.DefaultMaxWrongGuesses,
			CreatedAt:       now,
			UpdatedAt:       now,
		}
		c.logger.Info("room created",
			slog.String("room", string(code)),
			slog.String("host", string(player.ID)))
	case err != nil:
		return nil, err
	default:
		if existing := rm.GetPlayer(player.ID); existing != nil {
			existing.ConnectionID = connectionID
		} else {
			// Mid-game joins are allowed; the new player simply waits
			// out the current round
			rm.Players = append(rm.Players, model.RoomPlayer{
				ID:           player.ID,
				Username:     player.Username,
				ConnectionID: connectionID,
				JoinedAt:     now,
			})
		}
		rm.UpdatedAt = now
	}

	if err := c.storage.SaveRoom(ctx, rm); err != nil {
		return nil, err
	}

	return rm, nil
}

// Start begins a new round (or restarts after one finished). Only the host
// may start. The word-master role rotates to the player after the previous
// word master in join order, or to the first player for the opening round.
func (c *Controller) Start(ctx context.Context, code model.RoomCode, caller model.PlayerID) (*model.Room, error) {
	code = model.NormalizeRoomCode(string(code))

	unlock := c.lockRoom(code)
	defer unlock()

	rm, err := c.storage.GetRoom(ctx, code)
	if err != nil {
		return nil, err
	}

	if rm.Host != caller {
		return nil, model.ErrNotHost
	}
	if rm.Status != model.RoomStatusWaiting && rm.Status != model.RoomStatusFinished {
		return nil, model.ErrWrongStatus
	}

	rm.WordMaster = rm.NextWordMaster()
	rm.Status = model.RoomStatusSelection
	rm.CurrentWord = ""
	rm.MaskedWord = ""
	rm.GuessedLetters = []string{}
	rm.WrongGuesses = 0
	rm.Winner = model.WinnerNone
	rm.UpdatedAt = c.clock.Now()

	if err := c.storage.SaveRoom(ctx, rm); err != nil {
		return nil, err
	}

	c.logger.Info("round started",
		slog.String("room", string(code)),
		slog.String("word_master", string(rm.WordMaster)))

	return rm, nil
}

// SelectWord sets the secret word for the round. Only the current word
// master may select, and only during selection. The dictionary lookup is
// deliberately performed before the room lock is acquired so a slow
// external call never stalls other room events; status is re-checked
// under the lock before committing.
func (c *Controller) SelectWord(ctx context.Context, code model.RoomCode, caller model.PlayerID, word string) (*model.Room, error) {
	code = model.NormalizeRoomCode(string(code))
	word = strings.ToUpper(strings.TrimSpace(word))

	if len(word) < MinWordLength {
		return nil, model.ErrWordTooShort
	}
	// Guesses are single A-Z letters, so any other character in the word
	// would leave an unrevealable mask position
	for i := 0; i < len(word); i++ {
		if word[i] < 'A' || word[i] > 'Z' {
			return nil, model.ErrWordNotInDict
		}
	}

	valid, err := c.words.IsValidWord(ctx, word)
	if err != nil {
		return nil, err
	}
	if !valid {
		return nil, model.ErrWordNotInDict
	}

	unlock := c.lockRoom(code)
	defer unlock()

	rm, err := c.storage.GetRoom(ctx, code)
	if err != nil {
		return nil, err
	}

	if rm.Status != model.RoomStatusSelection {
		return nil, model.ErrWrongStatus
	}
	if rm.WordMaster != caller {
		return nil, model.ErrNotWordMaster
	}

	rm.CurrentWord = word
	rm.MaskedWord = strings.Repeat("_", len(rm.CurrentWord))
	rm.Status = model.RoomStatusGuessing
	rm.UpdatedAt = c.clock.Now()

	if err := c.storage.SaveRoom(ctx, rm); err != nil {
		return nil, err
	}

	c.logger.Info("word selected",
		slog.String("room", string(code)),
		slog.Int("word_length", len(rm.CurrentWord)))

	return rm, nil
}

// Guess applies a letter guess. Invalid guesses (missing room, wrong
// status, word master guessing, malformed or duplicate letter) are silent
// no-ops: the returned changed flag is false and no error is surfaced,
// matching the intentional idempotence-by-ignoring of the event surface.
func (c *Controller) Guess(ctx context.Context, code model.RoomCode, caller model.PlayerID, letter string) (*model.Room, bool, error) {
	code = model.NormalizeRoomCode(string(code))

	upper := strings.ToUpper(strings.TrimSpace(letter))
	if len(upper) != 1 || upper[0] < 'A' || upper[0] > 'Z' {
		return nil, false, nil
	}

	unlock := c.lockRoom(code)
	defer unlock()

	rm, err := c.storage.GetRoom(ctx, code)
	if err != nil {
		if errors.Is(err, model.ErrRoomNotFound) {
			return nil, false, nil
		}
		return nil, false, err
	}

	if rm.Status != model.RoomStatusGuessing {
		return rm, false, nil
	}
	if caller == rm.WordMaster {
		// The word master holds the word; their guesses don't count
		return rm, false, nil
	}
	if rm.HasGuessed(upper) {
		return rm, false, nil
	}

	rm.GuessedLetters = append(rm.GuessedLetters, upper)

	if strings.Contains(rm.CurrentWord, upper) {
		rm.MaskedWord = revealMask(rm.CurrentWord, rm.GuessedLetters)
		if !strings.Contains(rm.MaskedWord, "_") {
			c.finishRound(rm, model.WinnerGuessers)
		}
	} else {
		rm.WrongGuesses++
		if rm.WrongGuesses >= rm.MaxWrongGuesses {
			c.finishRound(rm, model.WinnerWordMaster)
		}
	}

	rm.UpdatedAt = c.clock.Now()

	if err := c.storage.SaveRoom(ctx, rm); err != nil {
		return nil, false, err
	}

	return rm, true, nil
}

// finishRound resolves the round and awards scores: each guesser scores
// when the word is revealed, the word master scores when the guessers
// run out of wrong attempts.
func (c *Controller) finishRound(rm *model.Room, winner model.Winner) {
	rm.Status = model.RoomStatusFinished
	rm.Winner = winner

	for i := range rm.Players {
		switch winner {
		case model.WinnerGuessers:
			if rm.Players[i].ID != rm.WordMaster {
				rm.Players[i].Score++
			}
		case model.WinnerWordMaster:
			if rm.Players[i].ID == rm.WordMaster {
				rm.Players[i].Score++
			}
		}
	}

	c.logger.Info("round finished",
		slog.String("room", string(rm.Code)),
		slog.String("winner", string(winner)))
}

// Leave removes a player from a room. The last player leaving deletes the
// room. A departing host hands the role to the first remaining player. If
// the word master leaves mid-round, the round aborts back to selection
// with a freshly rotated word master. Returns nil when the room is gone.
func (c *Controller) Leave(ctx context.Context, code model.RoomCode, playerID model.PlayerID) (*model.Room, error) {
	code = model.NormalizeRoomCode(string(code))

	unlock := c.lockRoom(code)
	defer unlock()

	rm, err := c.storage.GetRoom(ctx, code)
	if err != nil {
		if errors.Is(err, model.ErrRoomNotFound) {
			return nil, nil
		}
		return nil, err
	}

	idx := rm.PlayerIndex(playerID)
	if idx < 0 {
		return rm, nil
	}

	wasWordMaster := rm.WordMaster == playerID
	rm.Players = append(rm.Players[:idx], rm.Players[idx+1:]...)

	if len(rm.Players) == 0 {
		if err := c.storage.DeleteRoom(ctx, code); err != nil {
			return nil, err
		}
		c.dropLock(code)
		c.logger.Info("room deleted", slog.String("room", string(code)))
		return nil, nil
	}

	if rm.Host == playerID {
		rm.Host = rm.Players[0].ID
	}

	if wasWordMaster && rm.Status != model.RoomStatusWaiting {
		// The departed master no longer has an index, so rotation falls
		// back to the first remaining player
		rm.WordMaster = rm.NextWordMaster()
		if rm.Status == model.RoomStatusGuessing || rm.Status == model.RoomStatusSelection {
			rm.Status = model.RoomStatusSelection
			rm.CurrentWord = ""
			rm.MaskedWord = ""
			rm.GuessedLetters = []string{}
			rm.WrongGuesses = 0
			rm.Winner = model.WinnerNone
		}
	}

	rm.UpdatedAt = c.clock.Now()

	if err := c.storage.SaveRoom(ctx, rm); err != nil {
		return nil, err
	}

	return rm, nil
}

// revealMask rebuilds the masked word by scanning every position of the
// secret against the full guessed set, not just the newest letter.
func revealMask(word string, guessed []string) string {
	set := make(map[byte]struct{}, len(guessed))
	for _, l := range guessed {
		if len(l) == 1 {
			set[l[0]] = struct{}{}
		}
	}

	mask := make([]byte, len(word))
	for i := 0; i < len(word); i++ {
		if _, ok := set[word[i]]; ok {
			mask[i] = word[i]
		} else {
			mask[i] = '_'
		}
	}
	return string(mask)
}

// Interface for dependency injection
type ControllerInterface interface {
	GetRoom(ctx context.Context, code model.RoomCode) (*model.Room, error)
	Join(ctx context.Context, code model.RoomCode, player model.Player, connectionID string) (*model.Room, error)
	Start(ctx context.Context, code model.RoomCode, caller model.PlayerID) (*model.Room, error)
	SelectWord(ctx context.Context, code model.RoomCode, caller model.PlayerID, word string) (*model.Room, error)
	Guess(ctx context.Context, code model.RoomCode, caller model.PlayerID, letter string) (*model.Room, bool, error)
	Leave(ctx context.Context, code model.RoomCode, playerID model.PlayerID) (*model.Room, error)
}

var _ ControllerInterface = (*Controller)(nil)
