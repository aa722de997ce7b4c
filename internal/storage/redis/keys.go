package redis

import (
	"fmt"

	"github.com/mcoot/hangmanparty/internal/model"
)

// Key prefix for all game-related data
const keyPrefix = "hangman"

// Key generation functions for each entity type

// playerKey returns the Redis key for a Player
func playerKey(id model.PlayerID) string {
	return fmt.Sprintf("%s:player:%s", keyPrefix, id)
}

// registeredPlayerKey returns the Redis key for a RegisteredPlayer
func registeredPlayerKey(playerID model.PlayerID) string {
	return fmt.Sprintf("%s:registered_player:%s", keyPrefix, playerID)
}

// usernameIndexKey returns the Redis key for the username -> player_id index
func usernameIndexKey(username string) string {
	return fmt.Sprintf("%s:idx:username:%s", keyPrefix, username)
}

// roomKey returns the Redis key for a Room
func roomKey(code model.RoomCode) string {
	return fmt.Sprintf("%s:room:%s", keyPrefix, code)
}

// dictionaryCacheKey returns the Redis key for the validated-word set
func dictionaryCacheKey() string {
	return fmt.Sprintf("%s:dictionary_cache", keyPrefix)
}
