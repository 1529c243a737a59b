package events

import (
	"time"

	"github.com/spec-kit/shipment-support/internal/domain"
)

// EventType enumerates supported event identifiers.
type EventType string

const (
	EventTicketCreated       EventType = "ticket_created"
	EventTicketStatusChanged EventType = "ticket_status_changed"
	EventTicketResponded     EventType = "ticket_responded"
	EventOrderAutoFilled     EventType = "order_auto_filled"
)

// Event represents a domain event emitted by services.
type Event struct {
	ID        string      `json:"id"`
	Type      EventType   `json:"type"`
	TicketID  string      `json:"ticket_id,omitempty"`
	Actor     string      `json:"actor,omitempty"`
	Timestamp time.Time   `json:"timestamp"`
	Payload   interface{} `json:"payload"`
}

// TicketCreatedPayload payload.
type TicketCreatedPayload struct {
	TicketCode      string                 `json:"ticket_code"`
	OrderNumber     string                 `json:"order_number,omitempty"`
	IssueType       domain.IssueType       `json:"issue_type"`
	ShippingCompany domain.ShippingCompany `json:"shipping_company"`
	Priority        domain.TicketPriority  `json:"priority"`
}

// TicketStatusChangedPayload payload.
type TicketStatusChangedPayload struct {
	TicketCode string              `json:"ticket_code"`
	OldStatus  domain.TicketStatus `json:"old_status"`
	NewStatus  domain.TicketStatus `json:"new_status"`
}

// TicketRespondedPayload payload.
type TicketRespondedPayload struct {
	TicketCode  string              `json:"ticket_code"`
	NewStatus   domain.TicketStatus `json:"new_status"`
	BodyPreview string              `json:"body_preview"`
}

// OrderAutoFilledPayload payload.
type OrderAutoFilledPayload struct {
	LookupKind  string `json:"lookup_kind"`
	OrderNumber string `json:"order_number"`
}
