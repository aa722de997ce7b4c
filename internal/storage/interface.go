package storage

import (
	"context"

	"github.com/mcoot/hangmanparty/internal/model"
)

// Storage defines the interface for data persistence
type Storage interface {
	// Player operations
	SavePlayer(ctx context.Context, player *model.Player) error
	GetPlayer(ctx context.Context, id model.PlayerID) (*model.Player, error)
	DeletePlayer(ctx context.Context, id model.PlayerID) error

	// Registered player operations
	SaveRegisteredPlayer(ctx context.Context, rp *model.RegisteredPlayer) error
	GetRegisteredPlayer(ctx context.Context, playerID model.PlayerID) (*model.RegisteredPlayer, error)
	GetRegisteredPlayerByUsername(ctx context.Context, username string) (*model.RegisteredPlayer, error)

	// Room operations. SaveRoom is a full-document write; callers are
	// responsible for serializing read-modify-write cycles per room.
	// Returned rooms are private snapshots, never aliased to stored state.
	SaveRoom(ctx context.Context, room *model.Room) error
	GetRoom(ctx context.Context, code model.RoomCode) (*model.Room, error)
	DeleteRoom(ctx context.Context, code model.RoomCode) error

	// Dictionary cache operations: a set of words already confirmed valid
	// by the external dictionary, so repeat lookups skip the network.
	IsCachedWord(ctx context.Context, word string) (bool, error)
	CacheWord(ctx context.Context, word string) error
}
