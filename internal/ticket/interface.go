package ticket

import (
	"context"

	"github.com/pgdesk/pgdesk/internal/models"
)

// Store is the system-of-record contract for support tickets.
type Store interface {
	// Create opens a new ticket for the user and returns its identifier.
	Create(ctx context.Context, userID, description string) (string, error)

	// Get retrieves a ticket by ID.
	// Returns nil if the ticket is not found (not an error).
	Get(ctx context.Context, ticketID string) (*models.Ticket, error)

	// List returns the user's tickets, newest first.
	List(ctx context.Context, userID string) ([]models.Ticket, error)

	// Close releases any resources held by the store.
	Close() error
}
