package ticket

import (
	"strings"

	"github.com/google/uuid"
)

// NewTicketID generates a human-readable ticket identifier such as
// "TICKET-A1B2C3D4".
func NewTicketID() string {
	return "TICKET-" + strings.ToUpper(uuid.NewString()[:8])
}
