// Package filter derives the visible ticket list from criteria, a status tab
// and a sort specification. Every function here is pure.
package filter

import (
	"sort"
	"strconv"
	"strings"
	"time"

	"github.com/spec-kit/shipment-support/internal/domain"
)

// Criteria narrows the ticket list. Nil pointers and empty strings are absent
// criteria; every present criterion must match.
type Criteria struct {
	IssueType       *domain.IssueType
	ShippingCompany *domain.ShippingCompany
	IssueCategory   *domain.IssueCategory
	Priority        *domain.TicketPriority
	Status          *domain.TicketStatus

	OrderNumber     string
	AWB             string
	ReferenceNumber string
	TicketID        string

	FromDate *time.Time
	ToDate   *time.Time
}

// IsZero reports whether no criterion is set.
func (c Criteria) IsZero() bool {
	return len(c.predicates()) == 0
}

type predicate func(domain.Ticket) bool

func (c Criteria) predicates() []predicate {
	var preds []predicate
	if c.IssueType != nil {
		want := *c.IssueType
		preds = append(preds, func(t domain.Ticket) bool { return t.IssueType == want })
	}
	if c.ShippingCompany != nil {
		want := *c.ShippingCompany
		preds = append(preds, func(t domain.Ticket) bool { return t.ShippingCompany == want })
	}
	if c.IssueCategory != nil {
		want := *c.IssueCategory
		preds = append(preds, func(t domain.Ticket) bool { return t.IssueCategory == want })
	}
	if c.Priority != nil {
		want := *c.Priority
		preds = append(preds, func(t domain.Ticket) bool { return t.Priority == want })
	}
	if c.Status != nil {
		want := *c.Status
		preds = append(preds, func(t domain.Ticket) bool { return t.Status == want })
	}
	if c.OrderNumber != "" {
		preds = append(preds, containsFold(c.OrderNumber, func(t domain.Ticket) string { return t.OrderNumber }))
	}
	if c.AWB != "" {
		preds = append(preds, containsFold(c.AWB, func(t domain.Ticket) string { return t.AWB }))
	}
	if c.ReferenceNumber != "" {
		preds = append(preds, containsFold(c.ReferenceNumber, func(t domain.Ticket) string { return t.ReferenceNumber }))
	}
	if c.TicketID != "" {
		preds = append(preds, containsFold(c.TicketID, func(t domain.Ticket) string { return t.TicketID }))
	}
	if c.FromDate != nil {
		from := day(*c.FromDate)
		preds = append(preds, func(t domain.Ticket) bool { return !day(t.DateCreated).Before(from) })
	}
	if c.ToDate != nil {
		to := day(*c.ToDate)
		preds = append(preds, func(t domain.Ticket) bool { return !day(t.DateCreated).After(to) })
	}
	return preds
}

// Matches reports whether t satisfies every present criterion.
func (c Criteria) Matches(t domain.Ticket) bool {
	for _, p := range c.predicates() {
		if !p(t) {
			return false
		}
	}
	return true
}

// Apply returns the tickets matching c, preserving order.
func Apply(tickets []domain.Ticket, c Criteria) []domain.Ticket {
	result := make([]domain.Ticket, 0, len(tickets))
	preds := c.predicates()
	for _, t := range tickets {
		if matchAll(preds, t) {
			result = append(result, t)
		}
	}
	return result
}

// Visible applies criteria, then the tab, then the sort.
func Visible(tickets []domain.Ticket, c Criteria, tab Tab, spec SortSpec) []domain.Ticket {
	filtered := Apply(tickets, c)
	tabbed := make([]domain.Ticket, 0, len(filtered))
	for _, t := range filtered {
		if tab.Matches(t) {
			tabbed = append(tabbed, t)
		}
	}
	return Sort(tabbed, spec)
}

func matchAll(preds []predicate, t domain.Ticket) bool {
	for _, p := range preds {
		if !p(t) {
			return false
		}
	}
	return true
}

func containsFold(needle string, field func(domain.Ticket) string) predicate {
	needle = strings.ToLower(strings.TrimSpace(needle))
	return func(t domain.Ticket) bool {
		return strings.Contains(strings.ToLower(field(t)), needle)
	}
}

func day(t time.Time) time.Time {
	y, m, d := t.UTC().Date()
	return time.Date(y, m, d, 0, 0, 0, 0, time.UTC)
}

// Tab is the coarse status view selector.
type Tab string

const (
	TabAll       Tab = "all"
	TabOpen      Tab = "open"
	TabResponded Tab = "responded"
	TabClosed    Tab = "closed"
)

// ParseTab maps a tab name to a Tab. "not-responded" is accepted for Open.
func ParseTab(s string) (Tab, bool) {
	switch strings.ToLower(strings.TrimSpace(s)) {
	case "", "all":
		return TabAll, true
	case "open", "not-responded":
		return TabOpen, true
	case "responded":
		return TabResponded, true
	case "closed":
		return TabClosed, true
	}
	return "", false
}

// Matches reports whether t is shown under the tab.
func (tab Tab) Matches(t domain.Ticket) bool {
	switch tab {
	case TabOpen:
		return t.Status == domain.TicketStatusOpen
	case TabResponded:
		return t.Status == domain.TicketStatusResponded
	case TabClosed:
		return t.Status == domain.TicketStatusClosed
	default:
		return true
	}
}

// Counts summarises a ticket list by status.
type Counts struct {
	Total     int
	Open      int
	Responded int
	Closed    int
}

// Summarize counts tickets per status.
func Summarize(tickets []domain.Ticket) Counts {
	counts := Counts{Total: len(tickets)}
	for _, t := range tickets {
		switch t.Status {
		case domain.TicketStatusOpen:
			counts.Open++
		case domain.TicketStatusResponded:
			counts.Responded++
		case domain.TicketStatusClosed:
			counts.Closed++
		}
	}
	return counts
}

// SortField names a sortable ticket column.
type SortField string

const (
	SortNone            SortField = ""
	SortTicketID        SortField = "ticketId"
	SortOrderNumber     SortField = "orderNumber"
	SortAWB             SortField = "awb"
	SortReferenceNumber SortField = "referenceNumber"
	SortIssueType       SortField = "issueType"
	SortShippingCompany SortField = "shippingCompany"
	SortIssueCategory   SortField = "issueCategory"
	SortPriority        SortField = "priority"
	SortStatus          SortField = "status"
	SortCustomerName    SortField = "customerName"
	SortDateCreated     SortField = "dateCreated"
)

var comparators = map[SortField]func(a, b domain.Ticket) int{
	SortTicketID: func(a, b domain.Ticket) int {
		return compareTicketCodes(a.TicketID, b.TicketID)
	},
	SortOrderNumber:     byString(func(t domain.Ticket) string { return t.OrderNumber }),
	SortAWB:             byString(func(t domain.Ticket) string { return t.AWB }),
	SortReferenceNumber: byString(func(t domain.Ticket) string { return t.ReferenceNumber }),
	SortIssueType:       byString(func(t domain.Ticket) string { return string(t.IssueType) }),
	SortShippingCompany: byString(func(t domain.Ticket) string { return string(t.ShippingCompany) }),
	SortIssueCategory:   byString(func(t domain.Ticket) string { return string(t.IssueCategory) }),
	SortStatus:          byString(func(t domain.Ticket) string { return string(t.Status) }),
	SortCustomerName:    byString(func(t domain.Ticket) string { return t.CustomerName }),
	SortPriority: func(a, b domain.Ticket) int {
		return a.Priority.Rank() - b.Priority.Rank()
	},
	SortDateCreated: func(a, b domain.Ticket) int {
		return a.DateCreated.Compare(b.DateCreated)
	},
}

// SortFields lists the sortable columns.
func SortFields() []SortField {
	return []SortField{
		SortTicketID, SortOrderNumber, SortAWB, SortReferenceNumber, SortIssueType,
		SortShippingCompany, SortIssueCategory, SortPriority, SortStatus,
		SortCustomerName, SortDateCreated,
	}
}

// Valid reports whether f is a known sort field or SortNone.
func (f SortField) Valid() bool {
	if f == SortNone {
		return true
	}
	_, ok := comparators[f]
	return ok
}

// SortSpec is the active sort column and direction.
type SortSpec struct {
	Field      SortField
	Descending bool
}

// Toggle returns the spec after the user selects field: the same field flips
// direction, a new field sorts ascending.
func (s SortSpec) Toggle(field SortField) SortSpec {
	if s.Field == field {
		return SortSpec{Field: field, Descending: !s.Descending}
	}
	return SortSpec{Field: field}
}

// Sort returns a stably sorted copy of tickets.
func Sort(tickets []domain.Ticket, spec SortSpec) []domain.Ticket {
	result := make([]domain.Ticket, len(tickets))
	copy(result, tickets)
	cmp, ok := comparators[spec.Field]
	if !ok {
		return result
	}
	sort.SliceStable(result, func(i, j int) bool {
		c := cmp(result[i], result[j])
		if spec.Descending {
			return c > 0
		}
		return c < 0
	})
	return result
}

func byString(field func(domain.Ticket) string) func(a, b domain.Ticket) int {
	return func(a, b domain.Ticket) int {
		return strings.Compare(strings.ToLower(field(a)), strings.ToLower(field(b)))
	}
}

// compareTicketCodes orders codes such as TK-9 and TK-1000 by their numeric
// suffix, falling back to a case-insensitive string comparison.
func compareTicketCodes(a, b string) int {
	pa, na, okA := splitTicketCode(a)
	pb, nb, okB := splitTicketCode(b)
	if !okA || !okB {
		return strings.Compare(strings.ToLower(a), strings.ToLower(b))
	}
	if c := strings.Compare(strings.ToLower(pa), strings.ToLower(pb)); c != 0 {
		return c
	}
	switch {
	case na < nb:
		return -1
	case na > nb:
		return 1
	}
	return 0
}

func splitTicketCode(code string) (string, int, bool) {
	i := strings.LastIndexByte(code, '-')
	if i < 0 {
		return "", 0, false
	}
	n, err := strconv.Atoi(code[i+1:])
	if err != nil {
		return "", 0, false
	}
	return code[:i], n, true
}
