package agent

import (
	"context"
	"fmt"

	log "github.com/pgdesk/pgdesk/internal/logging"
	"github.com/pgdesk/pgdesk/internal/models"
)

// assembleContext builds the evidence bundle for a classified turn and
// settles two pieces of derived state: the effective search query and
// the outgoing active-ticket identifier.
//
// Per-intent policy:
//
//	TicketInquiry              ticket block (or miss note) + history + search on the ticket description
//	TicketHistoryInquiry       ticket-list block (or empty note) + search on the newest ticket's description
//	ConversationHistoryInquiry history block only, search suppressed
//	NewIssue/GeneralQuestion   history + search on the refined query
//	Greeting                   empty bundle, search suppressed
//
// An empty returned query means no search is performed for the turn.
func (a *Agent) assembleContext(ctx context.Context, result IntentResult, userID, utterance string, history []models.Message, incomingActive, seedQuery string, proactive bool) (*ContextBundle, string, string) {
	bundle := NewContextBundle(a.opts.ContextMaxChars)
	query := seedQuery
	active := incomingActive

	switch result.Intent {
	case IntentTicketInquiry:
		// The extracted identifier becomes the conversation's subject even
		// when the lookup below misses; the user clearly meant this ticket.
		if result.TicketID != "" {
			active = result.TicketID
		}

		lookupID := result.TicketID
		source := SourceTicketLookup
		if lookupID == "" && incomingActive != "" {
			// Follow-up question about the already-active ticket.
			lookupID = incomingActive
			source = SourceActiveTicket
		}

		if t := a.resolveOwnedTicket(ctx, lookupID, userID); t != nil {
			bundle.Append(source, renderTicket(*t))
			if !proactive {
				query = t.Description
				proactive = true
			}
		} else {
			// Absence is evidence, not an error: the synthesis model should
			// tell the user the ticket was not found.
			bundle.Append(source, fmt.Sprintf("No ticket found for ID %q.", lookupID))
		}

		appendHistoryBlock(bundle, history)

	case IntentTicketHistoryInquiry:
		tickets, err := a.tickets.List(ctx, userID)
		if err != nil {
			log.Warnf("Ticket listing for user %s failed: %v", userID, err)
			tickets = nil
		}

		if len(tickets) > 0 {
			// The most recent ticket becomes the active subject.
			active = tickets[0].ID
			fragments := make([]string, len(tickets))
			for i, t := range tickets {
				fragments[i] = renderTicket(t)
			}
			bundle.Append(SourceTicketHistory, fragments...)
			if !proactive {
				query = tickets[0].Description
			}
		} else {
			bundle.Append(SourceTicketHistory, "No tickets on record for this user.")
			query = ""
		}

	case IntentConversationHistoryInquiry:
		appendHistoryBlock(bundle, history)
		query = ""

	case IntentNewIssue, IntentGeneralQuestion:
		if !proactive {
			query = a.refineQuery(ctx, utterance)
		}
		appendHistoryBlock(bundle, history)

	case IntentGreeting:
		// Greetings carry no evidence; the response path still runs.
		query = ""

	case IntentTicketCreationRequest:
		// Handled by the short-circuit branch before assembly.
		query = ""
	}

	return bundle, query, active
}

// appendHistoryBlock adds the conversation history block when any
// history exists.
func appendHistoryBlock(bundle *ContextBundle, history []models.Message) {
	if len(history) == 0 {
		return
	}
	fragments := make([]string, len(history))
	for i, m := range history {
		fragments[i] = renderMessage(m)
	}
	bundle.Append(SourceConversationHistory, fragments...)
}
