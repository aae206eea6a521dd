package memory

import (
	"context"

	"github.com/pgdesk/pgdesk/internal/models"
)

// Store is the conversation-memory contract. Every processed turn is
// recorded here so future turns can see the full exchange.
type Store interface {
	// Append records a message at the end of the session's history.
	Append(ctx context.Context, sessionID, role, text string) error

	// Recent returns up to n of the session's most recent messages in
	// chronological order (oldest first).
	Recent(ctx context.Context, sessionID string, n int) ([]models.Message, error)

	// Close releases any resources held by the store.
	Close() error
}
