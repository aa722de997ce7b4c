package apierr

import (
	"encoding/json"
	"errors"
	"net/http"

	"github.com/mcoot/hangmanparty/internal/model"
	"github.com/mcoot/hangmanparty/internal/services/auth"
)

// APIError represents an API error response
type APIError struct {
	Code    string `json:"code"`
	Message string `json:"message"`
}

// ErrorResponse wraps an APIError
type ErrorResponse struct {
	Error APIError `json:"error"`
}

// Common error codes
const (
	CodeInvalidRequest        = "INVALID_REQUEST"
	CodeUnauthorized          = "UNAUTHORIZED"
	CodePlayerNotFound        = "PLAYER_NOT_FOUND"
	CodeRoomNotFound          = "ROOM_NOT_FOUND"
	CodeNotInRoom             = "NOT_IN_ROOM"
	CodeNotHost               = "NOT_HOST"
	CodeNotWordMaster         = "NOT_WORD_MASTER"
	CodeWrongStatus           = "WRONG_STATUS"
	CodeWordTooShort          = "WORD_TOO_SHORT"
	CodeWordNotInDict         = "WORD_NOT_IN_DICTIONARY"
	CodeDictionaryUnavailable = "DICTIONARY_UNAVAILABLE"
	CodeUsernameExists        = "USERNAME_EXISTS"
	CodeInvalidCredentials    = "INVALID_CREDENTIALS"
	CodeInternalError         = "INTERNAL_ERROR"
)

// httpError combines an HTTP status code with an APIError
type httpError struct {
	status   int
	apiError APIError
}

// Error implements error interface
func (e *httpError) Error() string {
	return e.apiError.Message
}

// WriteError writes an error response to the response writer
func WriteError(w http.ResponseWriter, err error) {
	he := toHTTPError(err)
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(he.status)
	_ = json.NewEncoder(w).Encode(ErrorResponse{Error: he.apiError})
}

// toHTTPError converts an error to an httpError
func toHTTPError(err error) *httpError {
	// Check for specific error types
	var he *httpError
	if errors.As(err, &he) {
		return he
	}

	// Map model errors
	switch {
	case errors.Is(err, model.ErrPlayerNotFound):
		return &httpError{http.StatusNotFound, APIError{CodePlayerNotFound, "Player not found"}}
	case errors.Is(err, model.ErrRoomNotFound):
		return &httpError{http.StatusNotFound, APIError{CodeRoomNotFound, "Room not found"}}
	case errors.Is(err, model.ErrNotInRoom):
		return &httpError{http.StatusNotFound, APIError{CodeNotInRoom, "Not in this room"}}
	case errors.Is(err, model.ErrNotHost):
		return &httpError{http.StatusForbidden, APIError{CodeNotHost, "Only the host can perform this action"}}
	case errors.Is(err, model.ErrNotWordMaster):
		return &httpError{http.StatusForbidden, APIError{CodeNotWordMaster, "Only the word master can perform this action"}}
	case errors.Is(err, model.ErrWrongStatus):
		return &httpError{http.StatusConflict, APIError{CodeWrongStatus, "Not valid in the current game status"}}
	case errors.Is(err, model.ErrWordTooShort):
		return &httpError{http.StatusBadRequest, APIError{CodeWordTooShort, "Word too short"}}
	case errors.Is(err, model.ErrWordNotInDict):
		return &httpError{http.StatusBadRequest, APIError{CodeWordNotInDict, "Word not found in dictionary"}}
	case errors.Is(err, model.ErrDictionaryUnavailable):
		return &httpError{http.StatusServiceUnavailable, APIError{CodeDictionaryUnavailable, "Dictionary lookup unavailable"}}

	// Map auth errors
	case errors.Is(err, auth.ErrInvalidCredentials):
		return &httpError{http.StatusUnauthorized, APIError{CodeInvalidCredentials, "Invalid username or password"}}
	case errors.Is(err, auth.ErrInvalidSession):
		return &httpError{http.StatusUnauthorized, APIError{CodeUnauthorized, "Invalid or expired session"}}
	case errors.Is(err, auth.ErrUsernameExists):
		return &httpError{http.StatusConflict, APIError{CodeUsernameExists, "Username already exists"}}

	default:
		return &httpError{http.StatusInternalServerError, APIError{CodeInternalError, "Internal server error"}}
	}
}

// NewInvalidRequestError creates an invalid request error
func NewInvalidRequestError(message string) error {
	return &httpError{http.StatusBadRequest, APIError{CodeInvalidRequest, message}}
}

// NewUnauthorizedError creates an unauthorized error
func NewUnauthorizedError() error {
	return &httpError{http.StatusUnauthorized, APIError{CodeUnauthorized, "Authentication required"}}
}

// NewInternalError creates an internal server error
func NewInternalError() error {
	return &httpError{http.StatusInternalServerError, APIError{CodeInternalError, "Internal server error"}}
}
