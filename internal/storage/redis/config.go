package redis

import "time"

// Config holds Redis connection and behavior settings
type Config struct {
	// URL is the Redis connection URL (e.g., redis://localhost:6379)
	URL string

	// Pool settings
	PoolSize     int
	MinIdleConns int

	// TTL settings. RoomTTL bounds how long an idle room survives;
	// every accepted room event refreshes it.
	RoomTTL            time.Duration
	DictionaryCacheTTL time.Duration
}

// DefaultConfig returns sensible defaults for Redis configuration
func DefaultConfig() Config {
	return Config{
		URL:                "redis://localhost:6379",
		PoolSize:           10,
		MinIdleConns:       2,
		RoomTTL:            24 * time.Hour,
		DictionaryCacheTTL: 7 * 24 * time.Hour,
	}
}
