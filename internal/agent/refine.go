package agent

import (
	"context"
	"encoding/json"
	"strings"

	"github.com/pgdesk/pgdesk/internal/common"
	log "github.com/pgdesk/pgdesk/internal/logging"
	"github.com/pgdesk/pgdesk/internal/models"
	"github.com/pgdesk/pgdesk/internal/prompts"
)

// refinePayload is the JSON shape the refinement call is instructed to
// produce.
type refinePayload struct {
	Query string `json:"query"`
}

// refineQuery asks the fast model to distill a concise technical search
// query out of the raw utterance. The result is adopted only when it is
// non-empty and actually differs from the utterance; on any failure the
// raw utterance is kept, never an error.
func (a *Agent) refineQuery(ctx context.Context, utterance string) string {
	raw, err := a.llm.Classify(ctx, prompts.RefineSystem, prompts.RefineUser(utterance))
	if err != nil {
		log.Warnf("Query refinement failed, searching with raw utterance: %v", err)
		return utterance
	}

	jsonStr, err := common.ExtractJSON(raw)
	if err != nil {
		return utterance
	}

	var payload refinePayload
	if err := json.Unmarshal([]byte(jsonStr), &payload); err != nil {
		return utterance
	}

	query := strings.TrimSpace(payload.Query)
	if query == "" || strings.EqualFold(query, utterance) {
		return utterance
	}

	log.Debugf("Refined search query: %q -> %q", utterance, query)
	return query
}

// resolveOwnedTicket fetches a ticket and verifies it belongs to the
// requesting user. A ticket owned by someone else is treated exactly
// like a miss; the caller must not learn it exists.
func (a *Agent) resolveOwnedTicket(ctx context.Context, ticketID, userID string) *models.Ticket {
	if ticketID == "" {
		return nil
	}

	t, err := a.tickets.Get(ctx, ticketID)
	if err != nil {
		log.Warnf("Ticket lookup for %s failed: %v", ticketID, err)
		return nil
	}
	if t == nil {
		return nil
	}
	if t.UserID != userID {
		log.Warnf("Ticket %s belongs to a different user, treating as not found", ticketID)
		return nil
	}
	return t
}
