package domain

import "time"

// ResponseEntry is an immutable record of an agent response on a ticket.
type ResponseEntry struct {
	ID        string
	TicketID  string
	Body      string
	OldStatus TicketStatus
	NewStatus TicketStatus
	CreatedBy string
	CreatedAt time.Time
}
