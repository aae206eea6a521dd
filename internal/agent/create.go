package agent

import (
	"context"
	"fmt"

	log "github.com/pgdesk/pgdesk/internal/logging"
	"github.com/pgdesk/pgdesk/internal/models"
)

// Canned responses for the ticket-creation branch. This is the one
// control path that never calls the generative model.
const (
	askForIssueResponse = "I'd be happy to create a ticket for you, but I need a description of the problem first. Could you tell me what issue you're running into?"

	creationFailedResponse = "I'm sorry, I wasn't able to create a ticket right now. Please try again in a moment."
)

// handleTicketCreation services a TicketCreationRequest turn. The problem
// description is presumed to be the user's most recent prior message, so
// the history is scanned newest-first for a user message other than the
// triggering utterance. Context assembly and synthesis are bypassed
// entirely; the turn is still recorded in conversation memory.
func (a *Agent) handleTicketCreation(ctx context.Context, userID, sessionID, utterance string, history []models.Message, activeTicketID string) (string, string) {
	var description string
	for i := len(history) - 1; i >= 0; i-- {
		m := history[i]
		if m.Role == models.RoleUser && m.Content != utterance {
			description = m.Content
			break
		}
	}

	response := askForIssueResponse
	active := activeTicketID

	if description != "" {
		ticketID, err := a.tickets.Create(ctx, userID, description)
		if err != nil || ticketID == "" {
			log.Errorf("Ticket creation failed for user %s: %v", userID, err)
			response = creationFailedResponse
		} else {
			log.Infof("Created ticket %s for user %s", ticketID, userID)
			response = fmt.Sprintf("I've created ticket %s for your issue: %q. Our support team will follow up on it shortly.", ticketID, description)
			active = ticketID
		}
	}

	a.record(ctx, sessionID, utterance, response)
	return response, active
}
