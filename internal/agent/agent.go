package agent

import (
	"context"

	"github.com/pgdesk/pgdesk/internal/llm"
	log "github.com/pgdesk/pgdesk/internal/logging"
	"github.com/pgdesk/pgdesk/internal/memory"
	"github.com/pgdesk/pgdesk/internal/models"
	"github.com/pgdesk/pgdesk/internal/prompts"
	"github.com/pgdesk/pgdesk/internal/search"
	"github.com/pgdesk/pgdesk/internal/ticket"
)

// synthesisFallback is returned when the synthesis model fails; the turn
// still completes and is recorded.
const synthesisFallback = "I'm sorry, I encountered a technical error and couldn't process your request. Please try again."

// Options bounds the per-turn evidence gathering.
type Options struct {
	// SearchTopK is how many knowledge-base documents to retrieve.
	SearchTopK int

	// HistoryDepth is how many recent messages to fetch per turn.
	HistoryDepth int

	// FragmentMaxChars caps each search-result fragment's content.
	FragmentMaxChars int

	// ContextMaxChars is the hard ceiling on the rendered context payload.
	ContextMaxChars int
}

func (o Options) withDefaults() Options {
	if o.SearchTopK <= 0 {
		o.SearchTopK = 3
	}
	if o.HistoryDepth <= 0 {
		o.HistoryDepth = 5
	}
	if o.FragmentMaxChars <= 0 {
		o.FragmentMaxChars = 500
	}
	if o.ContextMaxChars <= 0 {
		o.ContextMaxChars = 6000
	}
	return o
}

// Agent drives one conversation turn at a time. It holds no per-session
// state: the active-ticket identifier is passed into Process and handed
// back to the caller, who owns its persistence between turns.
type Agent struct {
	llm     llm.Client
	tickets ticket.Store
	search  search.Index
	memory  memory.Store
	opts    Options
}

// NewAgent wires the turn pipeline to its collaborators.
func NewAgent(llmClient llm.Client, tickets ticket.Store, index search.Index, mem memory.Store, opts Options) *Agent {
	return &Agent{
		llm:     llmClient,
		tickets: tickets,
		search:  index,
		memory:  mem,
		opts:    opts.withDefaults(),
	}
}

// Process handles a single conversation turn and returns the response
// text together with the outgoing active-ticket identifier ("" when no
// ticket is the subject of conversation). Every path completes: failures
// in any collaborator degrade the turn but never surface as an error,
// and the turn is always recorded in conversation memory.
func (a *Agent) Process(ctx context.Context, userID, sessionID, utterance, activeTicketID string) (string, string) {
	// Conversation history is fetched once and reused by all branches.
	history, err := a.memory.Recent(ctx, sessionID, a.opts.HistoryDepth)
	if err != nil {
		log.Warnf("Failed to load conversation history for session %s: %v", sessionID, err)
		history = nil
	}

	// An active ticket carried in from the previous turn proactively sets
	// the search query to that ticket's description, so follow-up
	// questions search for the actual problem instead of e.g. "and then?".
	var seedQuery string
	proactive := false
	if t := a.resolveOwnedTicket(ctx, activeTicketID, userID); t != nil {
		seedQuery = t.Description
		proactive = true
	}

	result := a.classifyIntent(ctx, utterance)
	log.Infof("Turn intent=%s ticket=%q user=%s session=%s", result.Intent, result.TicketID, userID, sessionID)

	if result.Intent == IntentTicketCreationRequest {
		return a.handleTicketCreation(ctx, userID, sessionID, utterance, history, activeTicketID)
	}

	bundle, query, active := a.assembleContext(ctx, result, userID, utterance, history, activeTicketID, seedQuery, proactive)

	if query != "" {
		docs, err := a.search.Query(ctx, query, a.opts.SearchTopK)
		if err != nil {
			log.Warnf("Knowledge-base search failed: %v", err)
			docs = nil
		}
		if len(docs) > 0 {
			fragments := make([]string, len(docs))
			for i, doc := range docs {
				fragments[i] = renderDocument(doc, a.opts.FragmentMaxChars)
			}
			bundle.Append(SourceSearchResults, fragments...)
		}
	}

	response, err := a.llm.Generate(ctx, prompts.SynthesisSystem, prompts.SynthesisUser(bundle.Render(), utterance))
	if err != nil {
		log.Errorf("Response synthesis failed: %v", err)
		response = synthesisFallback
	}

	a.record(ctx, sessionID, utterance, response)
	return response, active
}

// record writes both sides of the turn into conversation memory. Memory
// failures are logged and swallowed so a storage hiccup cannot lose the
// user's answer.
func (a *Agent) record(ctx context.Context, sessionID, utterance, response string) {
	if err := a.memory.Append(ctx, sessionID, models.RoleUser, utterance); err != nil {
		log.Warnf("Failed to record user message for session %s: %v", sessionID, err)
	}
	if err := a.memory.Append(ctx, sessionID, models.RoleAssistant, response); err != nil {
		log.Warnf("Failed to record assistant message for session %s: %v", sessionID, err)
	}
}
