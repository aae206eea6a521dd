package agent

import (
	"encoding/json"
	"fmt"
	"strings"

	"github.com/pgdesk/pgdesk/internal/models"
)

// BlockSource tags where an evidence block came from.
type BlockSource int

const (
	SourceActiveTicket BlockSource = iota
	SourceTicketLookup
	SourceTicketHistory
	SourceConversationHistory
	SourceSearchResults
)

// String returns the heading rendered above the block's fragments.
func (s BlockSource) String() string {
	switch s {
	case SourceActiveTicket:
		return "Active Ticket"
	case SourceTicketLookup:
		return "Ticket Information"
	case SourceTicketHistory:
		return "Ticket History"
	case SourceConversationHistory:
		return "Current Conversation History"
	case SourceSearchResults:
		return "Relevant Knowledge Base Articles"
	}
	return "Context"
}

// EvidenceBlock is an ordered group of serialized fragments from one
// source.
type EvidenceBlock struct {
	Source    BlockSource
	Fragments []string
}

// ContextBundle is the ordered evidence passed to the synthesis model.
// Append order encodes evidentiary priority and is never reordered; when
// the rendered payload exceeds the ceiling, trailing content is dropped
// so the highest-priority evidence survives.
type ContextBundle struct {
	blocks  []EvidenceBlock
	ceiling int
}

// NewContextBundle creates an empty bundle with the given character
// ceiling.
func NewContextBundle(ceiling int) *ContextBundle {
	return &ContextBundle{ceiling: ceiling}
}

// Append adds a block to the end of the bundle.
func (b *ContextBundle) Append(source BlockSource, fragments ...string) {
	b.blocks = append(b.blocks, EvidenceBlock{Source: source, Fragments: fragments})
}

// Blocks returns the blocks in append order.
func (b *ContextBundle) Blocks() []EvidenceBlock {
	return b.blocks
}

// Empty reports whether no blocks have been appended.
func (b *ContextBundle) Empty() bool {
	return len(b.blocks) == 0
}

// Render serializes the bundle to a single payload, hard-truncated at
// the ceiling. The cut is deliberately blunt (it may land mid-sentence);
// keeping it deterministic matters more than keeping it pretty, because
// it decides exactly what the synthesis model sees.
func (b *ContextBundle) Render() string {
	var sb strings.Builder
	for _, blk := range b.blocks {
		sb.WriteString(blk.Source.String())
		sb.WriteString(":\n")
		for _, fragment := range blk.Fragments {
			sb.WriteString(fragment)
			sb.WriteString("\n")
		}
	}
	return truncateTail(sb.String(), b.ceiling)
}

// truncationMarker terminates fragments that were cut at the cap.
const truncationMarker = "..."

// TruncateFragment bounds a fragment to max characters, ending it with
// the truncation marker when content was dropped. Strings at or under
// the cap pass through untouched, so the operation is idempotent.
func TruncateFragment(s string, max int) string {
	runes := []rune(s)
	if len(runes) <= max {
		return s
	}
	if max <= len(truncationMarker) {
		return string(runes[:max])
	}
	return string(runes[:max-len(truncationMarker)]) + truncationMarker
}

// truncateTail keeps the first max characters of s. Head content is
// retained because blocks are appended in priority order.
func truncateTail(s string, max int) string {
	runes := []rune(s)
	if max <= 0 || len(runes) <= max {
		return s
	}
	return string(runes[:max])
}

// renderTicket serializes a ticket for use as an evidence fragment.
func renderTicket(t models.Ticket) string {
	data, err := json.Marshal(t)
	if err != nil {
		return fmt.Sprintf("%s [%s]: %s", t.ID, t.Status, t.Description)
	}
	return string(data)
}

// renderMessage serializes a conversation message for use as an evidence
// fragment.
func renderMessage(m models.Message) string {
	return fmt.Sprintf("%s: %s", m.Role, m.Content)
}

// renderDocument serializes a search hit, capping its content at the
// fragment limit.
func renderDocument(d models.Document, fragmentMax int) string {
	return fmt.Sprintf("- %s (%s): %s", d.Title, d.URL, TruncateFragment(d.Content, fragmentMax))
}
