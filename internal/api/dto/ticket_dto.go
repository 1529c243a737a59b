package dto

import (
	"time"

	"github.com/shopspring/decimal"

	"github.com/spec-kit/shipment-support/internal/domain"
)

// TicketResponse is a full ticket.
type TicketResponse struct {
	ID              string                 `json:"id"`
	TicketID        string                 `json:"ticket_id"`
	OrderNumber     string                 `json:"order_number"`
	AWB             string                 `json:"awb"`
	ReferenceNumber string                 `json:"reference_number"`
	IssueType       domain.IssueType       `json:"issue_type"`
	ShippingCompany domain.ShippingCompany `json:"shipping_company"`
	IssueCategory   domain.IssueCategory   `json:"issue_category"`
	Priority        domain.TicketPriority  `json:"priority"`
	Status          domain.TicketStatus    `json:"status"`
	Description     string                 `json:"description"`
	Attachments     []string               `json:"attachments"`
	CustomerName    string                 `json:"customer_name"`
	Phone           string                 `json:"phone"`
	DateCreated     time.Time              `json:"date_created"`
	CreatedBy       string                 `json:"created_by"`
}

// TicketRowResponse is one table row.
type TicketRowResponse struct {
	ID              string                 `json:"id"`
	TicketID        string                 `json:"ticket_id"`
	OrderNumber     string                 `json:"order_number"`
	AWB             string                 `json:"awb"`
	ReferenceNumber string                 `json:"reference_number"`
	IssueType       domain.IssueType       `json:"issue_type"`
	ShippingCompany domain.ShippingCompany `json:"shipping_company"`
	IssueCategory   domain.IssueCategory   `json:"issue_category"`
	Priority        domain.TicketPriority  `json:"priority"`
	Status          domain.TicketStatus    `json:"status"`
	CustomerName    string                 `json:"customer_name"`
	DateCreated     string                 `json:"date_created"`
	Attachments     int                    `json:"attachments"`
	Actions         []string               `json:"actions"`
}

// ColumnResponse is a sortable column header.
type ColumnResponse struct {
	Field      string `json:"field"`
	Label      string `json:"label"`
	Active     bool   `json:"active"`
	Descending bool   `json:"descending"`
}

// CountsResponse holds the summary cards.
type CountsResponse struct {
	Total     int `json:"total"`
	Open      int `json:"open"`
	Responded int `json:"responded"`
	Closed    int `json:"closed"`
}

// SortResponse describes the active sort.
type SortResponse struct {
	Field      string `json:"field"`
	Descending bool   `json:"descending"`
}

// PageResponse is the rendered support page.
type PageResponse struct {
	Columns        []ColumnResponse    `json:"columns"`
	Rows           []TicketRowResponse `json:"rows"`
	Counts         CountsResponse      `json:"counts"`
	Criteria       CriteriaRequest     `json:"criteria"`
	Tab            string              `json:"tab"`
	Sort           SortResponse        `json:"sort"`
	Dialog         string              `json:"dialog"`
	DialogTicketID string              `json:"dialog_ticket_id,omitempty"`
}

// CriteriaRequest carries filter criteria. Empty strings are absent criteria;
// dates use YYYY-MM-DD.
type CriteriaRequest struct {
	IssueType       string `json:"issue_type,omitempty"`
	ShippingCompany string `json:"shipping_company,omitempty"`
	IssueCategory   string `json:"issue_category,omitempty"`
	Priority        string `json:"priority,omitempty"`
	Status          string `json:"status,omitempty"`
	OrderNumber     string `json:"order_number,omitempty"`
	AWB             string `json:"awb,omitempty"`
	ReferenceNumber string `json:"reference_number,omitempty"`
	TicketID        string `json:"ticket_id,omitempty"`
	FromDate        string `json:"from_date,omitempty"`
	ToDate          string `json:"to_date,omitempty"`
}

// TabRequest selects a status tab.
type TabRequest struct {
	Tab string `json:"tab"`
}

// SortRequest toggles sorting on a column.
type SortRequest struct {
	Field string `json:"field"`
}

// FormUpdateRequest edits create-form fields keyed by field name.
type FormUpdateRequest struct {
	Fields map[string]string `json:"fields"`
}

// FormResponse is the create dialog state.
type FormResponse struct {
	OrderNumber     string                 `json:"order_number"`
	AWB             string                 `json:"awb"`
	ReferenceNumber string                 `json:"reference_number"`
	IssueType       domain.IssueType       `json:"issue_type"`
	ShippingCompany domain.ShippingCompany `json:"shipping_company"`
	IssueCategory   domain.IssueCategory   `json:"issue_category"`
	Priority        domain.TicketPriority  `json:"priority"`
	Description     string                 `json:"description"`
	CustomerName    string                 `json:"customer_name"`
	Phone           string                 `json:"phone"`
	Attachments     []string               `json:"attachments"`
	AutoFill        string                 `json:"auto_fill"`
	Pending         bool                   `json:"pending"`
}

// AttachmentFile describes a file offered for upload.
type AttachmentFile struct {
	Name string `json:"name"`
	Size int64  `json:"size"`
}

// AttachmentsRequest offers files to the create dialog.
type AttachmentsRequest struct {
	Files []AttachmentFile `json:"files"`
}

// AttachmentsResponse reports which files were kept.
type AttachmentsResponse struct {
	Accepted []string     `json:"accepted"`
	Form     FormResponse `json:"form"`
}

// RespondDialogResponse describes the open respond dialog.
type RespondDialogResponse struct {
	Ticket        TicketResponse        `json:"ticket"`
	StatusOptions []domain.TicketStatus `json:"status_options"`
	DefaultStatus domain.TicketStatus   `json:"default_status"`
}

// RespondRequest submits a response.
type RespondRequest struct {
	Response string              `json:"response"`
	Status   domain.TicketStatus `json:"status"`
}

// StatusRequest sets a ticket status.
type StatusRequest struct {
	Status domain.TicketStatus `json:"status"`
}

// OrderItemResponse is one order line.
type OrderItemResponse struct {
	Name      string          `json:"name"`
	SKU       string          `json:"sku"`
	Quantity  int             `json:"quantity"`
	UnitPrice decimal.Decimal `json:"unit_price"`
}

// OrderResponse is the order shown in the details panel.
type OrderResponse struct {
	OrderNumber     string              `json:"order_number"`
	AWB             string              `json:"awb"`
	ReferenceNumber string              `json:"reference_number"`
	CustomerName    string              `json:"customer_name"`
	CustomerPhone   string              `json:"customer_phone"`
	CustomerEmail   string              `json:"customer_email"`
	ShippingCompany string              `json:"shipping_company"`
	ShippingAddress string              `json:"shipping_address"`
	TotalAmount     decimal.Decimal     `json:"total_amount"`
	PaymentMethod   string              `json:"payment_method"`
	OrderDate       time.Time           `json:"order_date"`
	Status          string              `json:"status"`
	Items           []OrderItemResponse `json:"items"`
}

// ResponseEntryResponse is one recorded response.
type ResponseEntryResponse struct {
	ID        string              `json:"id"`
	Body      string              `json:"body"`
	OldStatus domain.TicketStatus `json:"old_status"`
	NewStatus domain.TicketStatus `json:"new_status"`
	CreatedBy string              `json:"created_by"`
	CreatedAt time.Time           `json:"created_at"`
}

// TicketDetailsResponse is the details panel.
type TicketDetailsResponse struct {
	Ticket          TicketResponse          `json:"ticket"`
	Order           *OrderResponse          `json:"order"`
	Responses       []ResponseEntryResponse `json:"responses"`
	CanRespond      bool                    `json:"can_respond"`
	StatusShortcuts []domain.TicketStatus   `json:"status_shortcuts"`
}

// NotificationResponse is a drained toast.
type NotificationResponse struct {
	Title       string    `json:"title"`
	Description string    `json:"description"`
	Severity    string    `json:"severity"`
	CreatedAt   time.Time `json:"created_at"`
}
