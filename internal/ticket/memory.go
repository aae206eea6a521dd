package ticket

import (
	"context"
	"sync"
	"time"

	"github.com/pgdesk/pgdesk/internal/models"
)

// memoryStore implements Store with an in-process slice. Used for tests
// and for running the chat CLI without a Supabase project.
type memoryStore struct {
	mu      sync.RWMutex
	tickets []models.Ticket
}

// NewMemoryStore creates an empty in-memory ticket store.
func NewMemoryStore() Store {
	return &memoryStore{}
}

// Create implements Store.
func (s *memoryStore) Create(ctx context.Context, userID, description string) (string, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	now := time.Now().UTC()
	t := models.Ticket{
		ID:          NewTicketID(),
		UserID:      userID,
		Status:      "Open",
		Description: description,
		Log:         now.Format(time.RFC3339) + ": Ticket created.",
		CreatedAt:   now,
	}
	s.tickets = append(s.tickets, t)
	return t.ID, nil
}

// Get implements Store.
func (s *memoryStore) Get(ctx context.Context, ticketID string) (*models.Ticket, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	for i := range s.tickets {
		if s.tickets[i].ID == ticketID {
			t := s.tickets[i]
			return &t, nil
		}
	}
	return nil, nil
}

// List implements Store. Tickets are appended in creation order, so the
// reversed slice is newest first.
func (s *memoryStore) List(ctx context.Context, userID string) ([]models.Ticket, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	var out []models.Ticket
	for i := len(s.tickets) - 1; i >= 0; i-- {
		if s.tickets[i].UserID == userID {
			out = append(out, s.tickets[i])
		}
	}
	return out, nil
}

// Close implements Store.
func (s *memoryStore) Close() error {
	s.mu.Lock()
	defer s.mu.Unlock()

	s.tickets = nil
	return nil
}

// Seed inserts a pre-existing ticket, bypassing ID generation. Demo and
// test helper only.
func (s *memoryStore) Seed(t models.Ticket) {
	s.mu.Lock()
	defer s.mu.Unlock()

	s.tickets = append(s.tickets, t)
}

// Seeder is implemented by stores that accept pre-built tickets.
type Seeder interface {
	Seed(t models.Ticket)
}
