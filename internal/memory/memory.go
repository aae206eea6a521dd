package memory

import (
	"context"
	"sync"
	"time"

	"github.com/pgdesk/pgdesk/internal/models"
)

// inMemoryStore implements Store using a per-session slice. Used for
// tests and for running the chat CLI without Redis.
type inMemoryStore struct {
	mu       sync.RWMutex
	sessions map[string][]models.Message
}

// NewMemoryStore creates an empty in-process conversation store.
func NewMemoryStore() Store {
	return &inMemoryStore{
		sessions: make(map[string][]models.Message),
	}
}

// Append implements Store.
func (s *inMemoryStore) Append(ctx context.Context, sessionID, role, text string) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	s.sessions[sessionID] = append(s.sessions[sessionID], models.Message{
		Role:      role,
		Content:   text,
		Timestamp: time.Now().UTC(),
	})
	return nil
}

// Recent implements Store.
func (s *inMemoryStore) Recent(ctx context.Context, sessionID string, n int) ([]models.Message, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	history := s.sessions[sessionID]
	if n > 0 && len(history) > n {
		history = history[len(history)-n:]
	}

	out := make([]models.Message, len(history))
	copy(out, history)
	return out, nil
}

// Close implements Store.
func (s *inMemoryStore) Close() error {
	s.mu.Lock()
	defer s.mu.Unlock()

	s.sessions = nil
	return nil
}
