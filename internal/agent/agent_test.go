package agent

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"testing"
	"time"

	"github.com/pgdesk/pgdesk/internal/memory"
	"github.com/pgdesk/pgdesk/internal/models"
	"github.com/pgdesk/pgdesk/internal/ticket"
)

// fakeLLM scripts the model calls. Classify pops responses off a queue
// so a turn that classifies and then refines can be scripted precisely.
type fakeLLM struct {
	classifyQueue []string
	classifyErr   error
	classifyCalls int

	generateResponse string
	generateErr      error
	generateCalls    int
	lastUserPrompt   string
}

func (f *fakeLLM) Classify(ctx context.Context, system, user string) (string, error) {
	f.classifyCalls++
	if f.classifyErr != nil {
		return "", f.classifyErr
	}
	if len(f.classifyQueue) == 0 {
		return "", errors.New("no scripted classify response")
	}
	resp := f.classifyQueue[0]
	f.classifyQueue = f.classifyQueue[1:]
	return resp, nil
}

func (f *fakeLLM) Generate(ctx context.Context, system, user string) (string, error) {
	f.generateCalls++
	f.lastUserPrompt = user
	if f.generateErr != nil {
		return "", f.generateErr
	}
	if f.generateResponse != "" {
		return f.generateResponse, nil
	}
	return "synthesized answer", nil
}

// fakeIndex records the queries it receives.
type fakeIndex struct {
	docs    []models.Document
	err     error
	queries []string
}

func (f *fakeIndex) Query(ctx context.Context, text string, k int) ([]models.Document, error) {
	f.queries = append(f.queries, text)
	if f.err != nil {
		return nil, f.err
	}
	return f.docs, nil
}

func (f *fakeIndex) Close() error { return nil }

// failingTicketStore wraps a working store but refuses creation.
type failingTicketStore struct {
	ticket.Store
}

func (failingTicketStore) Create(ctx context.Context, userID, description string) (string, error) {
	return "", errors.New("storage unavailable")
}

func intentJSON(tag, ticketID string) string {
	if ticketID == "" {
		return fmt.Sprintf(`{"intent": %q, "ticket_id": null}`, tag)
	}
	return fmt.Sprintf(`{"intent": %q, "ticket_id": %q}`, tag, ticketID)
}

func refineJSON(query string) string {
	return fmt.Sprintf(`{"query": %q}`, query)
}

func seedTicket(t *testing.T, store ticket.Store, tk models.Ticket) {
	t.Helper()
	seeder, ok := store.(ticket.Seeder)
	if !ok {
		t.Fatalf("ticket store does not support seeding")
	}
	seeder.Seed(tk)
}

func newTestAgent(llmClient *fakeLLM, index *fakeIndex) (*Agent, ticket.Store, memory.Store) {
	tickets := ticket.NewMemoryStore()
	mem := memory.NewMemoryStore()
	a := NewAgent(llmClient, tickets, index, mem, Options{})
	return a, tickets, mem
}

func recentMessages(t *testing.T, mem memory.Store, sessionID string, n int) []models.Message {
	t.Helper()
	msgs, err := mem.Recent(context.Background(), sessionID, n)
	if err != nil {
		t.Fatalf("Failed to read conversation memory: %v", err)
	}
	return msgs
}

func TestProcessGreetingSkipsSearch(t *testing.T) {
	llmClient := &fakeLLM{
		classifyQueue:    []string{intentJSON("greeting", "")},
		generateResponse: "Hello! How can I help you with PostgreSQL today?",
	}
	index := &fakeIndex{docs: []models.Document{{Title: "irrelevant", Content: "x"}}}
	a, _, mem := newTestAgent(llmClient, index)

	response, active := a.Process(context.Background(), "1", "s1", "hi there", "")

	if len(index.queries) != 0 {
		t.Errorf("Greeting must not search, got queries %v", index.queries)
	}
	if llmClient.generateCalls != 1 {
		t.Errorf("Expected one synthesis call, got %d", llmClient.generateCalls)
	}
	if response != "Hello! How can I help you with PostgreSQL today?" {
		t.Errorf("Unexpected response %q", response)
	}
	if active != "" {
		t.Errorf("Greeting must not activate a ticket, got %q", active)
	}

	msgs := recentMessages(t, mem, "s1", 10)
	if len(msgs) != 2 || msgs[0].Role != models.RoleUser || msgs[1].Role != models.RoleAssistant {
		t.Errorf("Expected user+assistant recorded, got %+v", msgs)
	}
}

func TestProcessConversationHistoryInquiryNeverSearches(t *testing.T) {
	llmClient := &fakeLLM{classifyQueue: []string{intentJSON("conversation_history_inquiry", "")}}
	index := &fakeIndex{}
	a, _, mem := newTestAgent(llmClient, index)

	ctx := context.Background()
	_ = mem.Append(ctx, "s1", models.RoleUser, "my database keeps crashing")
	_ = mem.Append(ctx, "s1", models.RoleAssistant, "could you share the logs?")

	_, _ = a.Process(ctx, "1", "s1", "what did I ask you before?", "")

	if len(index.queries) != 0 {
		t.Errorf("Conversation recall must not search, got queries %v", index.queries)
	}
	if !strings.Contains(llmClient.lastUserPrompt, "Current Conversation History:") {
		t.Errorf("Expected history block in synthesis prompt:\n%s", llmClient.lastUserPrompt)
	}
	if !strings.Contains(llmClient.lastUserPrompt, "my database keeps crashing") {
		t.Errorf("Expected prior message in synthesis prompt:\n%s", llmClient.lastUserPrompt)
	}
}

func TestProcessTicketInquirySearchesTicketDescription(t *testing.T) {
	llmClient := &fakeLLM{classifyQueue: []string{intentJSON("ticket_inquiry", "TICKET-AB12CD34")}}
	index := &fakeIndex{}
	a, tickets, _ := newTestAgent(llmClient, index)

	seedTicket(t, tickets, models.Ticket{
		ID:          "TICKET-AB12CD34",
		UserID:      "1",
		Status:      "Open",
		Description: "Replication lag keeps growing on the standby.",
		CreatedAt:   time.Now().UTC(),
	})

	_, active := a.Process(context.Background(), "1", "s1", "any update on TICKET-AB12CD34?", "")

	if active != "TICKET-AB12CD34" {
		t.Errorf("Expected inquiry to activate the ticket, got %q", active)
	}
	if len(index.queries) != 1 || index.queries[0] != "Replication lag keeps growing on the standby." {
		t.Errorf("Expected search on the ticket description, got %v", index.queries)
	}
	if !strings.Contains(llmClient.lastUserPrompt, "Ticket Information:") {
		t.Errorf("Expected ticket block in synthesis prompt:\n%s", llmClient.lastUserPrompt)
	}
	// The refiner must not run when the ticket supplies the query.
	if llmClient.classifyCalls != 1 {
		t.Errorf("Expected exactly one classify call, got %d", llmClient.classifyCalls)
	}
}

func TestProcessTicketInquiryMissStillActivates(t *testing.T) {
	llmClient := &fakeLLM{classifyQueue: []string{intentJSON("ticket_inquiry", "TICKET-DEADBEEF")}}
	index := &fakeIndex{}
	a, _, _ := newTestAgent(llmClient, index)

	_, active := a.Process(context.Background(), "1", "s1", "status of TICKET-DEADBEEF?", "")

	if active != "TICKET-DEADBEEF" {
		t.Errorf("Expected extracted ID to become active even on a miss, got %q", active)
	}
	if len(index.queries) != 0 {
		t.Errorf("A missed lookup has no description to search with, got %v", index.queries)
	}
	if !strings.Contains(llmClient.lastUserPrompt, `No ticket found for ID "TICKET-DEADBEEF".`) {
		t.Errorf("Expected miss note in synthesis prompt:\n%s", llmClient.lastUserPrompt)
	}
}

func TestProcessTicketInquiryOtherUsersTicketIsAMiss(t *testing.T) {
	llmClient := &fakeLLM{classifyQueue: []string{intentJSON("ticket_inquiry", "TICKET-AB12CD34")}}
	index := &fakeIndex{}
	a, tickets, _ := newTestAgent(llmClient, index)

	seedTicket(t, tickets, models.Ticket{
		ID:          "TICKET-AB12CD34",
		UserID:      "2",
		Status:      "Open",
		Description: "Someone else's problem.",
	})

	_, _ = a.Process(context.Background(), "1", "s1", "show me TICKET-AB12CD34", "")

	if strings.Contains(llmClient.lastUserPrompt, "Someone else's problem.") {
		t.Errorf("Another user's ticket leaked into the synthesis prompt:\n%s", llmClient.lastUserPrompt)
	}
	if !strings.Contains(llmClient.lastUserPrompt, "No ticket found") {
		t.Errorf("Expected a miss note for the foreign ticket:\n%s", llmClient.lastUserPrompt)
	}
}

func TestProcessTicketHistoryInquiry(t *testing.T) {
	llmClient := &fakeLLM{classifyQueue: []string{intentJSON("ticket_history_inquiry", "")}}
	index := &fakeIndex{}
	a, tickets, _ := newTestAgent(llmClient, index)

	seedTicket(t, tickets, models.Ticket{ID: "TICKET-OLD00001", UserID: "1", Status: "Open", Description: "Old vacuum issue."})
	seedTicket(t, tickets, models.Ticket{ID: "TICKET-NEW00001", UserID: "1", Status: "Open", Description: "Checkpoint storms every hour."})

	_, active := a.Process(context.Background(), "1", "s1", "what tickets do I have?", "")

	if active != "TICKET-NEW00001" {
		t.Errorf("Expected the newest ticket to become active, got %q", active)
	}
	if len(index.queries) != 1 || index.queries[0] != "Checkpoint storms every hour." {
		t.Errorf("Expected search on the newest ticket's description, got %v", index.queries)
	}
	if !strings.Contains(llmClient.lastUserPrompt, "Ticket History:") {
		t.Errorf("Expected ticket history block in synthesis prompt:\n%s", llmClient.lastUserPrompt)
	}
}

func TestProcessTicketHistoryInquiryEmpty(t *testing.T) {
	llmClient := &fakeLLM{classifyQueue: []string{intentJSON("ticket_history_inquiry", "")}}
	index := &fakeIndex{}
	a, _, _ := newTestAgent(llmClient, index)

	_, active := a.Process(context.Background(), "1", "s1", "what tickets do I have?", "")

	if active != "" {
		t.Errorf("No tickets means nothing to activate, got %q", active)
	}
	if len(index.queries) != 0 {
		t.Errorf("Empty ticket history must not search, got %v", index.queries)
	}
	if !strings.Contains(llmClient.lastUserPrompt, "No tickets on record for this user.") {
		t.Errorf("Expected empty-history note in synthesis prompt:\n%s", llmClient.lastUserPrompt)
	}
}

func TestProcessTicketCreationUsesPriorMessage(t *testing.T) {
	llmClient := &fakeLLM{classifyQueue: []string{intentJSON("ticket_creation_request", "")}}
	index := &fakeIndex{}
	a, tickets, mem := newTestAgent(llmClient, index)

	ctx := context.Background()
	_ = mem.Append(ctx, "s1", models.RoleUser, "pg_dump fails with out of memory on large tables")
	_ = mem.Append(ctx, "s1", models.RoleAssistant, "That can happen with very wide rows.")

	response, active := a.Process(ctx, "1", "s1", "yes, please open a ticket", "")

	if llmClient.generateCalls != 0 {
		t.Errorf("Ticket creation must bypass synthesis, got %d calls", llmClient.generateCalls)
	}
	if len(index.queries) != 0 {
		t.Errorf("Ticket creation must not search, got %v", index.queries)
	}
	if active == "" || !strings.HasPrefix(active, "TICKET-") {
		t.Errorf("Expected the new ticket to become active, got %q", active)
	}
	if !strings.Contains(response, active) {
		t.Errorf("Confirmation should name the ticket %q, got %q", active, response)
	}
	if !strings.Contains(response, "pg_dump fails with out of memory on large tables") {
		t.Errorf("Confirmation should echo the description, got %q", response)
	}

	created, err := tickets.Get(ctx, active)
	if err != nil || created == nil {
		t.Fatalf("Expected ticket %s to exist, got %v, %v", active, created, err)
	}
	if created.Status != "Open" {
		t.Errorf("Expected new ticket to be Open, got %q", created.Status)
	}
	if created.Description != "pg_dump fails with out of memory on large tables" {
		t.Errorf("Unexpected ticket description %q", created.Description)
	}

	msgs := recentMessages(t, mem, "s1", 10)
	if len(msgs) != 4 {
		t.Errorf("Expected the creation turn to be recorded, got %d messages", len(msgs))
	}
}

func TestProcessTicketCreationWithoutPriorMessageAsks(t *testing.T) {
	llmClient := &fakeLLM{classifyQueue: []string{intentJSON("ticket_creation_request", "")}}
	index := &fakeIndex{}
	a, tickets, mem := newTestAgent(llmClient, index)

	ctx := context.Background()
	response, active := a.Process(ctx, "1", "s1", "create a ticket", "")

	if response != askForIssueResponse {
		t.Errorf("Expected the ask-for-issue response, got %q", response)
	}
	if active != "" {
		t.Errorf("No ticket should be activated, got %q", active)
	}
	list, err := tickets.List(ctx, "1")
	if err != nil || len(list) != 0 {
		t.Errorf("No ticket should be created, got %v, %v", list, err)
	}

	msgs := recentMessages(t, mem, "s1", 10)
	if len(msgs) != 2 {
		t.Errorf("Expected the turn to still be recorded, got %d messages", len(msgs))
	}
}

func TestProcessTicketCreationFailureKeepsState(t *testing.T) {
	llmClient := &fakeLLM{classifyQueue: []string{intentJSON("ticket_creation_request", "")}}
	index := &fakeIndex{}
	tickets := failingTicketStore{ticket.NewMemoryStore()}
	mem := memory.NewMemoryStore()
	a := NewAgent(llmClient, tickets, index, mem, Options{})

	ctx := context.Background()
	_ = mem.Append(ctx, "s1", models.RoleUser, "autovacuum never finishes")

	response, active := a.Process(ctx, "1", "s1", "open a ticket for that", "TICKET-EXISTING")

	if response != creationFailedResponse {
		t.Errorf("Expected the creation-failed apology, got %q", response)
	}
	if active != "TICKET-EXISTING" {
		t.Errorf("A failed creation must leave the active ticket unchanged, got %q", active)
	}
	if llmClient.generateCalls != 0 {
		t.Errorf("Synthesis must not run on the creation path, got %d calls", llmClient.generateCalls)
	}
}

func TestProcessClassifierFailureFallsOpen(t *testing.T) {
	llmClient := &fakeLLM{classifyErr: errors.New("model unavailable")}
	index := &fakeIndex{}
	a, _, mem := newTestAgent(llmClient, index)

	response, active := a.Process(context.Background(), "1", "s1", "how do I tune work_mem?", "")

	// Fail-open means the turn proceeds as a general question; refinement
	// also fails here, so the raw utterance is the search query.
	if len(index.queries) != 1 || index.queries[0] != "how do I tune work_mem?" {
		t.Errorf("Expected search on the raw utterance, got %v", index.queries)
	}
	if response == "" {
		t.Errorf("Expected a response despite classifier failure")
	}
	if active != "" {
		t.Errorf("Fail-open must not carry a ticket reference, got %q", active)
	}
	if len(recentMessages(t, mem, "s1", 10)) != 2 {
		t.Errorf("Expected the turn to be recorded")
	}
}

func TestProcessGarbageClassifierOutputFallsOpen(t *testing.T) {
	llmClient := &fakeLLM{classifyQueue: []string{
		"I think the user wants something",
		refineJSON("work_mem tuning"),
	}}
	index := &fakeIndex{}
	a, _, _ := newTestAgent(llmClient, index)

	_, _ = a.Process(context.Background(), "1", "s1", "how do I tune work_mem?", "")

	if len(index.queries) != 1 || index.queries[0] != "work_mem tuning" {
		t.Errorf("Expected the refined query after fail-open, got %v", index.queries)
	}
}

func TestProcessGeneralQuestionUsesRefinedQuery(t *testing.T) {
	llmClient := &fakeLLM{
		classifyQueue: []string{
			intentJSON("general_question", ""),
			refineJSON("postgresql max_connections limit"),
		},
	}
	index := &fakeIndex{docs: []models.Document{
		{Title: "Connection limits", URL: "https://example.com/conn", Content: "max_connections bounds concurrent sessions."},
	}}
	a, _, _ := newTestAgent(llmClient, index)

	_, _ = a.Process(context.Background(), "1", "s1", "hey, why can't more people connect to my db?", "")

	if len(index.queries) != 1 || index.queries[0] != "postgresql max_connections limit" {
		t.Errorf("Expected the refined query, got %v", index.queries)
	}
	if !strings.Contains(llmClient.lastUserPrompt, "Relevant Knowledge Base Articles:") {
		t.Errorf("Expected search block in synthesis prompt:\n%s", llmClient.lastUserPrompt)
	}
	if !strings.Contains(llmClient.lastUserPrompt, "max_connections bounds concurrent sessions.") {
		t.Errorf("Expected document content in synthesis prompt:\n%s", llmClient.lastUserPrompt)
	}
}

func TestProcessRefinementEchoKeepsRawUtterance(t *testing.T) {
	utterance := "how does logical replication work?"
	llmClient := &fakeLLM{
		classifyQueue: []string{
			intentJSON("general_question", ""),
			refineJSON(strings.ToUpper(utterance)), // case-insensitive echo
		},
	}
	index := &fakeIndex{}
	a, _, _ := newTestAgent(llmClient, index)

	_, _ = a.Process(context.Background(), "1", "s1", utterance, "")

	if len(index.queries) != 1 || index.queries[0] != utterance {
		t.Errorf("An echoed refinement must keep the raw utterance, got %v", index.queries)
	}
}

func TestProcessActiveTicketSeedsSearchQuery(t *testing.T) {
	llmClient := &fakeLLM{classifyQueue: []string{intentJSON("general_question", "")}}
	index := &fakeIndex{}
	a, tickets, _ := newTestAgent(llmClient, index)

	seedTicket(t, tickets, models.Ticket{
		ID:          "TICKET-AB12CD34",
		UserID:      "1",
		Status:      "Open",
		Description: "WAL files are filling the disk.",
	})

	_, active := a.Process(context.Background(), "1", "s1", "and what should I do next?", "TICKET-AB12CD34")

	if len(index.queries) != 1 || index.queries[0] != "WAL files are filling the disk." {
		t.Errorf("Expected the active ticket's description as search query, got %v", index.queries)
	}
	// No refinement call when the active ticket supplies the query.
	if llmClient.classifyCalls != 1 {
		t.Errorf("Expected exactly one classify call, got %d", llmClient.classifyCalls)
	}
	if active != "TICKET-AB12CD34" {
		t.Errorf("Active ticket must carry over, got %q", active)
	}
}

func TestProcessTicketInquiryFollowUpUsesActiveTicket(t *testing.T) {
	// No ID extracted this turn, but a ticket is already active.
	llmClient := &fakeLLM{classifyQueue: []string{intentJSON("ticket_inquiry", "")}}
	index := &fakeIndex{}
	a, tickets, _ := newTestAgent(llmClient, index)

	seedTicket(t, tickets, models.Ticket{
		ID:          "TICKET-AB12CD34",
		UserID:      "1",
		Status:      "Open",
		Description: "WAL files are filling the disk.",
	})

	_, active := a.Process(context.Background(), "1", "s1", "is it fixed yet?", "TICKET-AB12CD34")

	if active != "TICKET-AB12CD34" {
		t.Errorf("Active ticket must carry over, got %q", active)
	}
	if !strings.Contains(llmClient.lastUserPrompt, "Active Ticket:") {
		t.Errorf("Expected active-ticket block in synthesis prompt:\n%s", llmClient.lastUserPrompt)
	}
}

func TestProcessSynthesisFailureFallback(t *testing.T) {
	llmClient := &fakeLLM{
		classifyQueue: []string{intentJSON("greeting", "")},
		generateErr:   errors.New("model timeout"),
	}
	index := &fakeIndex{}
	a, _, mem := newTestAgent(llmClient, index)

	response, _ := a.Process(context.Background(), "1", "s1", "hello", "")

	if response != synthesisFallback {
		t.Errorf("Expected the synthesis fallback, got %q", response)
	}
	msgs := recentMessages(t, mem, "s1", 10)
	if len(msgs) != 2 || msgs[1].Content != synthesisFallback {
		t.Errorf("Expected the fallback to be recorded, got %+v", msgs)
	}
}

func TestProcessEmptySearchResultsStillSynthesizes(t *testing.T) {
	llmClient := &fakeLLM{
		classifyQueue: []string{
			intentJSON("new_issue", ""),
			refineJSON("index bloat"),
		},
	}
	index := &fakeIndex{} // no docs
	a, _, _ := newTestAgent(llmClient, index)

	response, _ := a.Process(context.Background(), "1", "s1", "my indexes keep growing", "")

	if llmClient.generateCalls != 1 {
		t.Errorf("Expected synthesis to run on empty results, got %d calls", llmClient.generateCalls)
	}
	if strings.Contains(llmClient.lastUserPrompt, "Relevant Knowledge Base Articles:") {
		t.Errorf("No search block expected for empty results:\n%s", llmClient.lastUserPrompt)
	}
	if response == "" {
		t.Errorf("Expected a response")
	}
}

func TestProcessSearchFailureDegrades(t *testing.T) {
	llmClient := &fakeLLM{
		classifyQueue: []string{
			intentJSON("general_question", ""),
			refineJSON("replication slots"),
		},
	}
	index := &fakeIndex{err: errors.New("qdrant unreachable")}
	a, _, _ := newTestAgent(llmClient, index)

	response, _ := a.Process(context.Background(), "1", "s1", "what are replication slots?", "")

	if llmClient.generateCalls != 1 {
		t.Errorf("Expected synthesis despite search failure, got %d calls", llmClient.generateCalls)
	}
	if response == "" {
		t.Errorf("Expected a response despite search failure")
	}
}

func TestResolveOwnedTicket(t *testing.T) {
	a, tickets, _ := newTestAgent(&fakeLLM{}, &fakeIndex{})
	seedTicket(t, tickets, models.Ticket{ID: "TICKET-AB12CD34", UserID: "1", Description: "d"})

	ctx := context.Background()
	if got := a.resolveOwnedTicket(ctx, "", "1"); got != nil {
		t.Errorf("Empty ID must resolve to nil, got %+v", got)
	}
	if got := a.resolveOwnedTicket(ctx, "TICKET-MISSING0", "1"); got != nil {
		t.Errorf("Unknown ID must resolve to nil, got %+v", got)
	}
	if got := a.resolveOwnedTicket(ctx, "TICKET-AB12CD34", "2"); got != nil {
		t.Errorf("Foreign ticket must resolve to nil, got %+v", got)
	}
	if got := a.resolveOwnedTicket(ctx, "TICKET-AB12CD34", "1"); got == nil || got.ID != "TICKET-AB12CD34" {
		t.Errorf("Owned ticket must resolve, got %+v", got)
	}
}
