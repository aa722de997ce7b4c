package factory

import (
	"errors"
	"io"
	"log/slog"

	"github.com/mcoot/hangmanparty/internal/dependencies/clock"
	"github.com/mcoot/hangmanparty/internal/dependencies/random"
	"github.com/mcoot/hangmanparty/internal/services/auth"
	"github.com/mcoot/hangmanparty/internal/services/room"
	"github.com/mcoot/hangmanparty/internal/services/words"
	"github.com/mcoot/hangmanparty/internal/storage"
	"github.com/mcoot/hangmanparty/internal/storage/memory"
	redisstorage "github.com/mcoot/hangmanparty/internal/storage/redis"
	"github.com/mcoot/hangmanparty/internal/ws"
)

// Storage type constants
const (
	StorageTypeMemory = "memory"
	StorageTypeRedis  = "redis"
)

// App contains all wired application components
type App struct {
	// Storage
	Storage storage.Storage

	// External dependencies
	Clock  clock.Clock
	Random random.Random

	// Services
	WordsService   words.ServiceInterface
	RoomController *room.Controller
	AuthService    *auth.Service

	// Realtime
	HubManager *ws.HubManager
	Registry   *ws.Registry
	WSHandler  *ws.Handler
}

// Config holds configuration for the application factory
type Config struct {
	// AuthConfig holds configuration for the auth service (optional)
	// If zero value, defaults to auth.DefaultConfig()
	AuthConfig auth.Config
	// WordsConfig holds configuration for the word validator (optional)
	// If zero value, defaults to words.DefaultConfig()
	WordsConfig words.Config
	// Logger is the application logger (optional)
	// If nil, a no-op logger is used
	Logger *slog.Logger
	// StorageType selects the storage backend ("memory" or "redis")
	// If empty, defaults to "memory"
	StorageType string
	// RedisConfig holds Redis connection settings (required if StorageType is "redis")
	RedisConfig *redisstorage.Config
}

// New creates a new application with all dependencies wired
func New(cfg Config) (*App, error) {
	// Use no-op logger if not provided
	logger := cfg.Logger
	if logger == nil {
		logger = slog.New(slog.NewJSONHandler(io.Discard, nil))
	}

	// Create storage based on type
	var store storage.Storage
	storageType := cfg.StorageType
	if storageType == "" {
		storageType = StorageTypeMemory
	}

	switch storageType {
	case StorageTypeMemory:
		store = memory.New()
	case StorageTypeRedis:
		if cfg.RedisConfig == nil {
			return nil, errors.New("RedisConfig required when StorageType is redis")
		}
		redisStore, err := redisstorage.New(*cfg.RedisConfig)
		if err != nil {
			return nil, err
		}
		store = redisStore
	default:
		return nil, errors.New("invalid StorageType: must be 'memory' or 'redis'")
	}

	// Create external dependencies
	clk := clock.New()
	rnd := random.New()

	// Use default auth config if not provided
	authCfg := cfg.AuthConfig
	if authCfg.SessionDuration == 0 {
		authCfg = auth.DefaultConfig()
	}

	wordsService := words.New(store, cfg.WordsConfig, logger)

	return newWithDependencies(store, clk, rnd, wordsService, authCfg, logger), nil
}

// newWithDependencies creates an App with the given dependencies (useful for testing)
func newWithDependencies(
	store storage.Storage,
	clk clock.Clock,
	rnd random.Random,
	wordsService words.ServiceInterface,
	authCfg auth.Config,
	logger *slog.Logger,
) *App {
	// Create services
	roomController := room.NewController(store, wordsService, clk, logger)
	authService := auth.New(store, clk, authCfg)

	// Realtime wiring
	hubManager := ws.NewHubManager(logger)
	registry := ws.NewRegistry()
	wsHandler := ws.NewHandler(authService, roomController, hubManager, registry, rnd, logger)

	return &App{
		Storage:        store,
		Clock:          clk,
		Random:         rnd,
		WordsService:   wordsService,
		RoomController: roomController,
		AuthService:    authService,
		HubManager:     hubManager,
		Registry:       registry,
		WSHandler:      wsHandler,
	}
}
