package service

import (
	"github.com/spec-kit/shipment-support/internal/domain"
	"github.com/spec-kit/shipment-support/internal/filter"
)

// Intent is an action a row or header offers to the page.
type Intent string

const (
	IntentView    Intent = "view"
	IntentRespond Intent = "respond"
)

// TicketRow is one rendered line of the ticket table.
type TicketRow struct {
	ID              string
	TicketID        string
	OrderNumber     string
	AWB             string
	ReferenceNumber string
	IssueType       domain.IssueType
	ShippingCompany domain.ShippingCompany
	IssueCategory   domain.IssueCategory
	Priority        domain.TicketPriority
	Status          domain.TicketStatus
	CustomerName    string
	DateCreated     string
	Attachments     int
	Intents         []Intent
}

// ColumnHeader is a sortable table column.
type ColumnHeader struct {
	Field      filter.SortField
	Label      string
	Active     bool
	Descending bool
}

// TicketListView is the rendered ticket table.
type TicketListView struct {
	Columns []ColumnHeader
	Rows    []TicketRow
}

var columnLabels = map[filter.SortField]string{
	filter.SortTicketID:        "Ticket ID",
	filter.SortOrderNumber:     "Order Number",
	filter.SortAWB:             "AWB",
	filter.SortReferenceNumber: "Reference",
	filter.SortIssueType:       "Issue Type",
	filter.SortShippingCompany: "Shipping Company",
	filter.SortIssueCategory:   "Category",
	filter.SortPriority:        "Priority",
	filter.SortStatus:          "Status",
	filter.SortCustomerName:    "Customer",
	filter.SortDateCreated:     "Date Created",
}

// RenderTicketList builds the table for already filtered and sorted tickets.
func RenderTicketList(tickets []domain.Ticket, sort filter.SortSpec) TicketListView {
	fields := filter.SortFields()
	columns := make([]ColumnHeader, 0, len(fields))
	for _, field := range fields {
		active := field == sort.Field
		columns = append(columns, ColumnHeader{
			Field:      field,
			Label:      columnLabels[field],
			Active:     active,
			Descending: active && sort.Descending,
		})
	}

	rows := make([]TicketRow, 0, len(tickets))
	for _, t := range tickets {
		rows = append(rows, TicketRow{
			ID:              t.ID,
			TicketID:        t.TicketID,
			OrderNumber:     t.OrderNumber,
			AWB:             t.AWB,
			ReferenceNumber: t.ReferenceNumber,
			IssueType:       t.IssueType,
			ShippingCompany: t.ShippingCompany,
			IssueCategory:   t.IssueCategory,
			Priority:        t.Priority,
			Status:          t.Status,
			CustomerName:    t.CustomerName,
			DateCreated:     t.DateCreated.Format("2006-01-02"),
			Attachments:     len(t.Attachments),
			Intents:         rowIntents(t),
		})
	}
	return TicketListView{Columns: columns, Rows: rows}
}

func rowIntents(t domain.Ticket) []Intent {
	if t.Status == domain.TicketStatusOpen {
		return []Intent{IntentView, IntentRespond}
	}
	return []Intent{IntentView}
}
