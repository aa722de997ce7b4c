package model

import "time"

// PlayerID uniquely identifies a player across the system
type PlayerID string

// Player represents a game participant
type Player struct {
	ID        PlayerID
	Username  string
	CreatedAt time.Time
}

// RegisteredPlayer holds a player's credential record
// Stored separately so the password hash never travels with the public record
type RegisteredPlayer struct {
	PlayerID     PlayerID
	Username     string // login username (immutable)
	PasswordHash string // bcrypt hash
	CreatedAt    time.Time
	UpdatedAt    time.Time
}
