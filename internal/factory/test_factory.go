package factory

import (
	"context"
	"strings"
	"sync"
	"time"

	"github.com/mcoot/hangmanparty/internal/dependencies/mocks"
	"github.com/mcoot/hangmanparty/internal/model"
	"github.com/mcoot/hangmanparty/internal/services/auth"
	"github.com/mcoot/hangmanparty/internal/storage/memory"
	"github.com/mcoot/hangmanparty/internal/testutil"
)

// StubWords is an in-memory word validator for tests. Words added via
// Allow validate; everything else is rejected without any network call.
// Setting Unavailable simulates the external dictionary being down.
type StubWords struct {
	mu          sync.RWMutex
	valid       map[string]bool
	Unavailable bool
}

// NewStubWords creates a stub validator pre-seeded with the given words
func NewStubWords(words ...string) *StubWords {
	s := &StubWords{valid: make(map[string]bool)}
	s.Allow(words...)
	return s
}

// Allow marks words as valid
func (s *StubWords) Allow(words ...string) {
	s.mu.Lock()
	defer s.mu.Unlock()
	for _, w := range words {
		s.valid[strings.ToLower(w)] = true
	}
}

// IsValidWord implements words.ServiceInterface
func (s *StubWords) IsValidWord(_ context.Context, word string) (bool, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	if s.Unavailable {
		return false, model.ErrDictionaryUnavailable
	}
	return s.valid[strings.ToLower(strings.TrimSpace(word))], nil
}

// TestApp extends App with test-specific helpers
type TestApp struct {
	*App

	// Mocks for test control
	MockClock  *mocks.MockClock
	MockRandom *mocks.MockRandom
	Words      *StubWords
}

// NewTestApp creates an App configured for testing with mocked dependencies
func NewTestApp() *TestApp {
	store := memory.New()
	mockClock := mocks.NewMockClock(time.Date(2024, 1, 1, 12, 0, 0, 0, time.UTC))
	mockRandom := mocks.NewMockRandom()
	stubWords := NewStubWords(
		"cat", "dog", "fox", "tree", "house", "apple", "banana", "guitar",
	)

	app := newWithDependencies(store, mockClock, mockRandom, stubWords, auth.DefaultConfig(), testutil.NopLogger())

	return &TestApp{
		App:        app,
		MockClock:  mockClock,
		MockRandom: mockRandom,
		Words:      stubWords,
	}
}
