package ticket

import (
	"context"
	"fmt"
	"time"

	"github.com/supabase-community/postgrest-go"
	"github.com/supabase-community/supabase-go"

	"github.com/pgdesk/pgdesk/internal/models"
)

const ticketsTable = "tickets"

// SupabaseConfig holds Supabase connection configuration.
type SupabaseConfig struct {
	URL    string
	APIKey string
}

// supabaseStore implements Store on top of a Supabase "tickets" table
// (ticket_id, user_id, status, description, log, created_at).
type supabaseStore struct {
	client *supabase.Client
}

// NewSupabaseStore creates a Supabase-backed ticket store.
func NewSupabaseStore(cfg SupabaseConfig) (Store, error) {
	if cfg.URL == "" {
		return nil, fmt.Errorf("supabase URL is required")
	}
	if cfg.APIKey == "" {
		return nil, fmt.Errorf("supabase API key is required")
	}

	client, err := supabase.NewClient(cfg.URL, cfg.APIKey, nil)
	if err != nil {
		return nil, fmt.Errorf("failed to create supabase client: %w", err)
	}

	return &supabaseStore{client: client}, nil
}

// Create implements Store. The identifier is generated client side so the
// confirmation message can embed it without a round trip.
func (s *supabaseStore) Create(ctx context.Context, userID, description string) (string, error) {
	now := time.Now().UTC()
	row := models.Ticket{
		ID:          NewTicketID(),
		UserID:      userID,
		Status:      "Open",
		Description: description,
		Log:         now.Format(time.RFC3339) + ": Ticket created.",
		CreatedAt:   now,
	}

	_, _, err := s.client.From(ticketsTable).
		Insert(row, false, "", "", "").
		Execute()
	if err != nil {
		return "", fmt.Errorf("failed to create ticket: %w", err)
	}

	return row.ID, nil
}

// Get implements Store.
func (s *supabaseStore) Get(ctx context.Context, ticketID string) (*models.Ticket, error) {
	var rows []models.Ticket
	_, err := s.client.From(ticketsTable).
		Select("*", "", false).
		Eq("ticket_id", ticketID).
		ExecuteTo(&rows)
	if err != nil {
		return nil, fmt.Errorf("failed to get ticket: %w", err)
	}

	if len(rows) == 0 {
		return nil, nil
	}
	return &rows[0], nil
}

// List implements Store.
func (s *supabaseStore) List(ctx context.Context, userID string) ([]models.Ticket, error) {
	var rows []models.Ticket
	_, err := s.client.From(ticketsTable).
		Select("*", "", false).
		Eq("user_id", userID).
		Order("created_at", &postgrest.OrderOpts{Ascending: false}).
		ExecuteTo(&rows)
	if err != nil {
		return nil, fmt.Errorf("failed to list tickets by user: %w", err)
	}

	return rows, nil
}

// Close implements Store.
func (s *supabaseStore) Close() error {
	// The Supabase client does not require an explicit close.
	return nil
}

// Compile-time check that supabaseStore implements Store.
var _ Store = (*supabaseStore)(nil)
