package repository

import (
	"fmt"
	"strings"
	"sync"
	"time"

	"github.com/google/uuid"

	"github.com/spec-kit/shipment-support/internal/domain"
)

// NewTicket carries validated form data for ticket creation.
type NewTicket struct {
	OrderNumber     string
	AWB             string
	ReferenceNumber string
	IssueType       domain.IssueType
	ShippingCompany domain.ShippingCompany
	IssueCategory   domain.IssueCategory
	Priority        domain.TicketPriority
	Description     string
	Attachments     []string
	CustomerName    string
	Phone           string
	CreatedBy       string
}

// TicketStore is the in-memory source of truth for tickets. It is append-only:
// tickets are never deleted, only their status changes.
type TicketStore struct {
	mu        sync.RWMutex
	tickets   []domain.Ticket
	index     map[string]int
	responses map[string][]domain.ResponseEntry
	seq       int
	now       func() time.Time
}

// TicketStoreOption customises a TicketStore.
type TicketStoreOption func(*TicketStore)

// WithClock overrides the creation timestamp source.
func WithClock(now func() time.Time) TicketStoreOption {
	return func(s *TicketStore) {
		s.now = now
	}
}

// NewTicketStore instantiates an empty store.
func NewTicketStore(opts ...TicketStoreOption) *TicketStore {
	s := &TicketStore{
		index:     make(map[string]int),
		responses: make(map[string][]domain.ResponseEntry),
		now:       time.Now,
	}
	for _, opt := range opts {
		opt(s)
	}
	return s
}

// Create stores a new Open ticket at the head of the list.
func (s *TicketStore) Create(input NewTicket) domain.Ticket {
	s.mu.Lock()
	defer s.mu.Unlock()

	s.seq++
	ticket := domain.Ticket{
		ID:              uuid.NewString(),
		TicketID:        fmt.Sprintf("TK-%03d", s.seq),
		OrderNumber:     strings.TrimSpace(input.OrderNumber),
		AWB:             strings.TrimSpace(input.AWB),
		ReferenceNumber: strings.TrimSpace(input.ReferenceNumber),
		IssueType:       input.IssueType,
		ShippingCompany: input.ShippingCompany,
		IssueCategory:   input.IssueCategory,
		Priority:        input.Priority,
		Status:          domain.TicketStatusOpen,
		Description:     strings.TrimSpace(input.Description),
		Attachments:     append([]string(nil), input.Attachments...),
		CustomerName:    strings.TrimSpace(input.CustomerName),
		Phone:           strings.TrimSpace(input.Phone),
		DateCreated:     s.now(),
		CreatedBy:       input.CreatedBy,
	}
	if ticket.AWB == "" {
		ticket.AWB = generateAWBPlaceholder()
	}
	if !ticket.Priority.Valid() {
		ticket.Priority = domain.TicketPriorityMedium
	}

	s.tickets = append([]domain.Ticket{ticket}, s.tickets...)
	for i := range s.tickets {
		s.index[s.tickets[i].ID] = i
	}
	return ticket.Clone()
}

// UpdateStatus sets the status of a ticket. Any transition is allowed; the
// second return value is false when id is unknown.
func (s *TicketStore) UpdateStatus(id string, status domain.TicketStatus) (domain.Ticket, bool) {
	s.mu.Lock()
	defer s.mu.Unlock()

	i, ok := s.index[id]
	if !ok || !status.Valid() {
		return domain.Ticket{}, false
	}
	s.tickets[i].Status = status
	return s.tickets[i].Clone(), true
}

// Respond records a response and moves the ticket to status.
func (s *TicketStore) Respond(id, body, createdBy string, status domain.TicketStatus) (domain.Ticket, bool) {
	s.mu.Lock()
	defer s.mu.Unlock()

	i, ok := s.index[id]
	if !ok || !status.Valid() {
		return domain.Ticket{}, false
	}
	old := s.tickets[i].Status
	s.tickets[i].Status = status
	s.responses[id] = append(s.responses[id], domain.ResponseEntry{
		ID:        uuid.NewString(),
		TicketID:  id,
		Body:      strings.TrimSpace(body),
		OldStatus: old,
		NewStatus: status,
		CreatedBy: createdBy,
		CreatedAt: s.now(),
	})
	return s.tickets[i].Clone(), true
}

// Get returns a copy of the ticket with the given internal id.
func (s *TicketStore) Get(id string) (domain.Ticket, bool) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	i, ok := s.index[id]
	if !ok {
		return domain.Ticket{}, false
	}
	return s.tickets[i].Clone(), true
}

// List returns a snapshot of all tickets, most recent first.
func (s *TicketStore) List() []domain.Ticket {
	s.mu.RLock()
	defer s.mu.RUnlock()

	result := make([]domain.Ticket, len(s.tickets))
	for i := range s.tickets {
		result[i] = s.tickets[i].Clone()
	}
	return result
}

// Responses returns the response log of a ticket, oldest first.
func (s *TicketStore) Responses(id string) []domain.ResponseEntry {
	s.mu.RLock()
	defer s.mu.RUnlock()

	return append([]domain.ResponseEntry(nil), s.responses[id]...)
}

// Len reports how many tickets are stored.
func (s *TicketStore) Len() int {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return len(s.tickets)
}

func generateAWBPlaceholder() string {
	return "AWB-" + strings.ToUpper(strings.ReplaceAll(uuid.NewString(), "-", "")[:8])
}
