package words

import (
	"context"
	"encoding/json"
	"fmt"
	"log/slog"
	"net/http"
	"net/url"
	"strings"
	"time"

	"github.com/mcoot/hangmanparty/internal/model"
	"github.com/mcoot/hangmanparty/internal/storage"
)

// DefaultBaseURL is the public dictionary API used for word validation
const DefaultBaseURL = "https://api.dictionaryapi.dev/api/v2/entries/en"

// DefaultTimeout bounds a single dictionary lookup. The external call is
// the only suspension point in the event path, so it must not stall.
const DefaultTimeout = 5 * time.Second

// Config holds configuration for the word validator
type Config struct {
	BaseURL string
	Timeout time.Duration
}

// DefaultConfig returns default validator configuration
func DefaultConfig() Config {
	return Config{
		BaseURL: DefaultBaseURL,
		Timeout: DefaultTimeout,
	}
}

// Service validates candidate words against an external dictionary.
// Confirmed words are cached in storage so repeat lookups skip the network.
type Service struct {
	storage storage.Storage
	client  *http.Client
	baseURL string
	logger  *slog.Logger
}

// New creates a new word validation service
func New(store storage.Storage, cfg Config, logger *slog.Logger) *Service {
	if cfg.BaseURL == "" {
		cfg.BaseURL = DefaultBaseURL
	}
	if cfg.Timeout == 0 {
		cfg.Timeout = DefaultTimeout
	}
	return &Service{
		storage: store,
		client:  &http.Client{Timeout: cfg.Timeout},
		baseURL: strings.TrimSuffix(cfg.BaseURL, "/"),
		logger:  logger.With(slog.String("component", "words")),
	}
}

// IsValidWord reports whether the word exists in the dictionary.
// Lookup failures return model.ErrDictionaryUnavailable with valid=false:
// the caller fails closed but can tell "bad word" from "no answer".
func (s *Service) IsValidWord(ctx context.Context, word string) (bool, error) {
	normalized := strings.ToLower(strings.TrimSpace(word))
	if normalized == "" {
		return false, nil
	}

	if cached, err := s.storage.IsCachedWord(ctx, normalized); err == nil && cached {
		return true, nil
	}

	valid, err := s.lookup(ctx, normalized)
	if err != nil {
		return false, err
	}

	if valid {
		if err := s.storage.CacheWord(ctx, normalized); err != nil {
			// Cache misses only cost a future lookup
			s.logger.Warn("failed to cache validated word",
				slog.String("word", normalized),
				slog.String("error", err.Error()))
		}
	}

	return valid, nil
}

// lookup queries the external dictionary API. A 200 with a non-empty entry
// array means the word exists; 404 means it does not; anything else is
// treated as the dictionary being unavailable.
func (s *Service) lookup(ctx context.Context, word string) (bool, error) {
	reqURL := fmt.Sprintf("%s/%s", s.baseURL, url.PathEscape(word))

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, reqURL, nil)
	if err != nil {
		return false, model.ErrDictionaryUnavailable
	}

	resp, err := s.client.Do(req)
	if err != nil {
		s.logger.Warn("dictionary lookup failed",
			slog.String("word", word),
			slog.String("error", err.Error()))
		return false, model.ErrDictionaryUnavailable
	}
	defer resp.Body.Close()

	switch {
	case resp.StatusCode == http.StatusOK:
		var entries []json.RawMessage
		if err := json.NewDecoder(resp.Body).Decode(&entries); err != nil {
			s.logger.Warn("dictionary returned malformed response",
				slog.String("word", word),
				slog.String("error", err.Error()))
			return false, model.ErrDictionaryUnavailable
		}
		return len(entries) > 0, nil
	case resp.StatusCode == http.StatusNotFound:
		return false, nil
	default:
		s.logger.Warn("dictionary returned unexpected status",
			slog.String("word", word),
			slog.Int("status", resp.StatusCode))
		return false, model.ErrDictionaryUnavailable
	}
}

// Interface for dependency injection
type ServiceInterface interface {
	IsValidWord(ctx context.Context, word string) (bool, error)
}

var _ ServiceInterface = (*Service)(nil)
