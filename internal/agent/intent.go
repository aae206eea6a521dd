package agent

// Intent is the closed classification of what a user wants from a turn.
// Every consumer switches exhaustively over these values; adding an
// intent means updating each switch, not falling through a default.
type Intent int

const (
	IntentGreeting Intent = iota
	IntentGeneralQuestion
	IntentNewIssue
	IntentTicketInquiry
	IntentTicketHistoryInquiry
	IntentConversationHistoryInquiry
	IntentTicketCreationRequest
)

// Wire tags used by the classifier model.
const (
	tagGreeting                   = "greeting"
	tagGeneralQuestion            = "general_question"
	tagNewIssue                   = "new_issue"
	tagTicketInquiry              = "ticket_inquiry"
	tagTicketHistoryInquiry       = "ticket_history_inquiry"
	tagConversationHistoryInquiry = "conversation_history_inquiry"
	tagTicketCreationRequest      = "ticket_creation_request"
)

// String returns the wire tag for the intent.
func (i Intent) String() string {
	switch i {
	case IntentGreeting:
		return tagGreeting
	case IntentGeneralQuestion:
		return tagGeneralQuestion
	case IntentNewIssue:
		return tagNewIssue
	case IntentTicketInquiry:
		return tagTicketInquiry
	case IntentTicketHistoryInquiry:
		return tagTicketHistoryInquiry
	case IntentConversationHistoryInquiry:
		return tagConversationHistoryInquiry
	case IntentTicketCreationRequest:
		return tagTicketCreationRequest
	}
	return "unknown"
}

// ParseIntent maps a wire tag to its Intent. The second return value is
// false for tags outside the closed set.
func ParseIntent(tag string) (Intent, bool) {
	switch tag {
	case tagGreeting:
		return IntentGreeting, true
	case tagGeneralQuestion:
		return IntentGeneralQuestion, true
	case tagNewIssue:
		return IntentNewIssue, true
	case tagTicketInquiry:
		return IntentTicketInquiry, true
	case tagTicketHistoryInquiry:
		return IntentTicketHistoryInquiry, true
	case tagConversationHistoryInquiry:
		return IntentConversationHistoryInquiry, true
	case tagTicketCreationRequest:
		return IntentTicketCreationRequest, true
	}
	return IntentGeneralQuestion, false
}

// IntentResult is the outcome of classifying one utterance. TicketID is
// set only when the classifier extracted a ticket reference.
type IntentResult struct {
	Intent   Intent
	TicketID string
}
