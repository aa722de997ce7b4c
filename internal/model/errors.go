package model

import "errors"

// Common errors used across the application
var (
	// Player errors
	ErrPlayerNotFound = errors.New("player not found")

	// Room errors
	ErrRoomNotFound  = errors.New("room not found")
	ErrNotInRoom     = errors.New("player is not in room")
	ErrNotHost       = errors.New("player is not the host")
	ErrNotWordMaster = errors.New("player is not the word master")

	// Round errors
	ErrWrongStatus   = errors.New("operation not valid in current game status")
	ErrWordTooShort  = errors.New("word too short")
	ErrWordNotInDict = errors.New("word not in dictionary")

	// Dictionary errors
	ErrDictionaryUnavailable = errors.New("dictionary lookup unavailable")
)
