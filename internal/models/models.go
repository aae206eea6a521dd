package models

import "time"

// Ticket represents a support ticket held in the system of record.
type Ticket struct {
	ID          string    `json:"ticket_id"`
	UserID      string    `json:"user_id"`
	Status      string    `json:"status"`
	Description string    `json:"description"`
	Log         string    `json:"log"`
	CreatedAt   time.Time `json:"created_at"`
}

// Message is a single conversation turn stored in conversation memory.
type Message struct {
	Role      string    `json:"role"` // "user" or "assistant"
	Content   string    `json:"content"`
	Timestamp time.Time `json:"timestamp"`
}

// Roles used in conversation memory.
const (
	RoleUser      = "user"
	RoleAssistant = "assistant"
)

// Document is a knowledge-base fragment returned by the search index.
type Document struct {
	Title   string `json:"title"`
	URL     string `json:"url"`
	Content string `json:"content"`
}

// TurnRequest is the payload a caller sends to process one conversation turn.
// ActiveTicketID carries the session's active-ticket state from the previous
// turn; it is empty when no ticket is the current subject of conversation.
type TurnRequest struct {
	UserID         string `json:"userId"`
	SessionID      string `json:"sessionId"`
	Message        string `json:"message"`
	ActiveTicketID string `json:"activeTicketId,omitempty"`
}

// TurnResult is returned after a turn has been processed. The caller is
// responsible for storing ActiveTicketID and passing it into the next turn.
type TurnResult struct {
	Response       string `json:"response"`
	ActiveTicketID string `json:"activeTicketId,omitempty"`
}
