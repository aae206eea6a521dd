package agent

import (
	"context"
	"encoding/json"
	"strings"

	"github.com/pgdesk/pgdesk/internal/common"
	log "github.com/pgdesk/pgdesk/internal/logging"
	"github.com/pgdesk/pgdesk/internal/prompts"
)

// intentPayload is the JSON shape the classifier model is instructed to
// produce.
type intentPayload struct {
	Intent   string  `json:"intent"`
	TicketID *string `json:"ticket_id"`
}

// classifyIntent routes an utterance to one of the closed intents.
// Classification must never abort a turn: on transport failure, missing
// JSON, or an unknown tag it fails open to GeneralQuestion with no
// ticket reference, which only degrades context retrieval.
func (a *Agent) classifyIntent(ctx context.Context, utterance string) IntentResult {
	fallback := IntentResult{Intent: IntentGeneralQuestion}

	raw, err := a.llm.Classify(ctx, prompts.IntentSystem, prompts.IntentUser(utterance))
	if err != nil {
		log.Warnf("Intent classification failed, falling back to general_question: %v", err)
		return fallback
	}

	jsonStr, err := common.ExtractJSON(raw)
	if err != nil {
		log.Warnf("Classifier produced no valid JSON, falling back to general_question")
		return fallback
	}

	var payload intentPayload
	if err := json.Unmarshal([]byte(jsonStr), &payload); err != nil {
		log.Warnf("Failed to decode classifier output, falling back to general_question: %v", err)
		return fallback
	}

	intent, ok := ParseIntent(payload.Intent)
	if !ok {
		log.Warnf("Classifier returned unknown intent %q, falling back to general_question", payload.Intent)
		return fallback
	}

	result := IntentResult{Intent: intent}
	if payload.TicketID != nil {
		result.TicketID = strings.TrimSpace(*payload.TicketID)
	}
	return result
}
