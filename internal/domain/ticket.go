package domain

import "time"

// TicketStatus enumerates lifecycle states for tickets.
type TicketStatus string

const (
	TicketStatusOpen      TicketStatus = "Open"
	TicketStatusResponded TicketStatus = "Responded"
	TicketStatusClosed    TicketStatus = "Closed"
)

// TicketStatuses lists every status in display order.
var TicketStatuses = []TicketStatus{TicketStatusOpen, TicketStatusResponded, TicketStatusClosed}

// Valid reports whether s is a known status.
func (s TicketStatus) Valid() bool {
	return contains(TicketStatuses, s)
}

// TicketPriority enumerates urgency.
type TicketPriority string

const (
	TicketPriorityLow    TicketPriority = "Low"
	TicketPriorityMedium TicketPriority = "Medium"
	TicketPriorityHigh   TicketPriority = "High"
)

// TicketPriorities lists priorities from lowest to highest.
var TicketPriorities = []TicketPriority{TicketPriorityLow, TicketPriorityMedium, TicketPriorityHigh}

// Valid reports whether p is a known priority.
func (p TicketPriority) Valid() bool {
	return contains(TicketPriorities, p)
}

// Rank orders priorities, Low first. Unknown values rank below Low.
func (p TicketPriority) Rank() int {
	for i, candidate := range TicketPriorities {
		if candidate == p {
			return i
		}
	}
	return -1
}

// IssueType classifies what went wrong with a shipment.
type IssueType string

const (
	IssueIncorrectCustomerInfo IssueType = "Incorrect Customer Information"
	IssueDeliveryDelay         IssueType = "Delivery Delay"
	IssueDamagedGoods          IssueType = "Damaged Goods"
	IssueLostShipment          IssueType = "Lost Shipment"
	IssueIncorrectShipment     IssueType = "Incorrect Shipment"
	IssueCustomsIssue          IssueType = "Customs Issue"
	IssuePaymentDispute        IssueType = "Payment Dispute"
	IssueLabelError            IssueType = "Label Error"
	IssueOther                 IssueType = "Other"
)

var IssueTypes = []IssueType{
	IssueIncorrectCustomerInfo,
	IssueDeliveryDelay,
	IssueDamagedGoods,
	IssueLostShipment,
	IssueIncorrectShipment,
	IssueCustomsIssue,
	IssuePaymentDispute,
	IssueLabelError,
	IssueOther,
}

func (t IssueType) Valid() bool {
	return contains(IssueTypes, t)
}

// IssueCategory attributes the root cause of an issue.
type IssueCategory string

const (
	CategoryCustomerError IssueCategory = "Customer Error"
	CategoryShippingError IssueCategory = "Shipping Error"
	CategorySystemError   IssueCategory = "System Error"
	CategoryProductIssue  IssueCategory = "Product Issue"
	CategoryAddressIssue  IssueCategory = "Address Issue"
	CategoryPaymentIssue  IssueCategory = "Payment Issue"
	CategoryOther         IssueCategory = "Other"
)

var IssueCategories = []IssueCategory{
	CategoryCustomerError,
	CategoryShippingError,
	CategorySystemError,
	CategoryProductIssue,
	CategoryAddressIssue,
	CategoryPaymentIssue,
	CategoryOther,
}

func (c IssueCategory) Valid() bool {
	return contains(IssueCategories, c)
}

// ShippingCompany names a carrier handling the shipment.
type ShippingCompany string

const (
	CarrierDHL    ShippingCompany = "DHL"
	CarrierFedEx  ShippingCompany = "FedEx"
	CarrierUPS    ShippingCompany = "UPS"
	CarrierAramex ShippingCompany = "Aramex"
	CarrierSMSA   ShippingCompany = "SMSA Express"
	CarrierNaqel  ShippingCompany = "Naqel Express"
	CarrierSPL    ShippingCompany = "SPL"
	CarrierOther  ShippingCompany = "Other"
)

var ShippingCompanies = []ShippingCompany{
	CarrierDHL,
	CarrierFedEx,
	CarrierUPS,
	CarrierAramex,
	CarrierSMSA,
	CarrierNaqel,
	CarrierSPL,
	CarrierOther,
}

func (c ShippingCompany) Valid() bool {
	return contains(ShippingCompanies, c)
}

// Ticket is a customer-service case tied to a shipment.
type Ticket struct {
	ID              string
	TicketID        string
	OrderNumber     string
	AWB             string
	ReferenceNumber string
	IssueType       IssueType
	ShippingCompany ShippingCompany
	IssueCategory   IssueCategory
	Priority        TicketPriority
	Status          TicketStatus
	Description     string
	Attachments     []string
	CustomerName    string
	Phone           string
	DateCreated     time.Time
	CreatedBy       string
}

// Clone returns a copy that shares no slices with t.
func (t Ticket) Clone() Ticket {
	if t.Attachments != nil {
		t.Attachments = append([]string(nil), t.Attachments...)
	}
	return t
}

func contains[T comparable](values []T, v T) bool {
	for _, candidate := range values {
		if candidate == v {
			return true
		}
	}
	return false
}
