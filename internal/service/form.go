package service

import (
	"fmt"
	"sort"
	"strings"

	"github.com/spec-kit/shipment-support/internal/domain"
	"github.com/spec-kit/shipment-support/internal/lookup"
	"github.com/spec-kit/shipment-support/internal/repository"
)

// FormField names an editable field of the create-ticket form.
type FormField string

const (
	FieldOrderNumber     FormField = "orderNumber"
	FieldAWB             FormField = "awb"
	FieldReferenceNumber FormField = "referenceNumber"
	FieldIssueType       FormField = "issueType"
	FieldShippingCompany FormField = "shippingCompany"
	FieldIssueCategory   FormField = "issueCategory"
	FieldPriority        FormField = "priority"
	FieldDescription     FormField = "description"
	FieldCustomerName    FormField = "customerName"
	FieldPhone           FormField = "phone"
)

// identifierFields are the fields an auto-fill result depends on. Editing any
// of them invalidates the auto-fill indicator.
var identifierFields = map[FormField]bool{
	FieldOrderNumber:     true,
	FieldAWB:             true,
	FieldReferenceNumber: true,
}

// IsIdentifier reports whether f feeds the order lookup.
func (f FormField) IsIdentifier() bool {
	return identifierFields[f]
}

// TicketForm is the state of the create-ticket dialog.
type TicketForm struct {
	OrderNumber     string
	AWB             string
	ReferenceNumber string
	IssueType       domain.IssueType
	ShippingCompany domain.ShippingCompany
	IssueCategory   domain.IssueCategory
	Priority        domain.TicketPriority
	Description     string
	CustomerName    string
	Phone           string
	Attachments     []string
}

// DefaultTicketForm returns an empty form with default priority.
func DefaultTicketForm() TicketForm {
	return TicketForm{Priority: domain.TicketPriorityMedium}
}

func (f *TicketForm) set(field FormField, value string) error {
	switch field {
	case FieldOrderNumber:
		f.OrderNumber = value
	case FieldAWB:
		f.AWB = value
	case FieldReferenceNumber:
		f.ReferenceNumber = value
	case FieldIssueType:
		f.IssueType = domain.IssueType(value)
	case FieldShippingCompany:
		f.ShippingCompany = domain.ShippingCompany(value)
	case FieldIssueCategory:
		f.IssueCategory = domain.IssueCategory(value)
	case FieldPriority:
		f.Priority = domain.TicketPriority(value)
	case FieldDescription:
		f.Description = value
	case FieldCustomerName:
		f.CustomerName = value
	case FieldPhone:
		f.Phone = value
	default:
		return fmt.Errorf("%w: %q", ErrUnknownField, field)
	}
	return nil
}

func (f TicketForm) clone() TicketForm {
	if f.Attachments != nil {
		f.Attachments = append([]string(nil), f.Attachments...)
	}
	return f
}

// Identifiers returns the lookup identifiers currently entered.
func (f TicketForm) Identifiers() Identifiers {
	return Identifiers{
		OrderNumber:     strings.TrimSpace(f.OrderNumber),
		AWB:             strings.TrimSpace(f.AWB),
		ReferenceNumber: strings.TrimSpace(f.ReferenceNumber),
	}
}

// Validate checks the form before submission.
func (f TicketForm) Validate() ValidationErrors {
	errs := ValidationErrors{}
	if strings.TrimSpace(f.OrderNumber) == "" && strings.TrimSpace(f.AWB) == "" {
		errs[string(FieldOrderNumber)] = "order number or AWB is required"
	}
	if f.IssueType == "" {
		errs[string(FieldIssueType)] = "issue type is required"
	} else if !f.IssueType.Valid() {
		errs[string(FieldIssueType)] = "unknown issue type"
	}
	if f.ShippingCompany == "" {
		errs[string(FieldShippingCompany)] = "shipping company is required"
	} else if !f.ShippingCompany.Valid() {
		errs[string(FieldShippingCompany)] = "unknown shipping company"
	}
	if f.IssueCategory == "" {
		errs[string(FieldIssueCategory)] = "issue category is required"
	} else if !f.IssueCategory.Valid() {
		errs[string(FieldIssueCategory)] = "unknown issue category"
	}
	if f.Priority != "" && !f.Priority.Valid() {
		errs[string(FieldPriority)] = "unknown priority"
	}
	if strings.TrimSpace(f.Description) == "" {
		errs[string(FieldDescription)] = "description is required"
	}
	if len(errs) == 0 {
		return nil
	}
	return errs
}

func (f TicketForm) toNewTicket(createdBy string) repository.NewTicket {
	return repository.NewTicket{
		OrderNumber:     f.OrderNumber,
		AWB:             f.AWB,
		ReferenceNumber: f.ReferenceNumber,
		IssueType:       f.IssueType,
		ShippingCompany: f.ShippingCompany,
		IssueCategory:   f.IssueCategory,
		Priority:        f.Priority,
		Description:     f.Description,
		Attachments:     append([]string(nil), f.Attachments...),
		CustomerName:    f.CustomerName,
		Phone:           f.Phone,
		CreatedBy:       createdBy,
	}
}

// applyOrder copies looked-up order facts into the form. The user's AWB and
// reference number are never touched; customer contact fields only fill blanks.
func (f *TicketForm) applyOrder(order *domain.OrderData) {
	f.OrderNumber = order.OrderNumber
	if carrier, ok := matchCarrier(order.ShippingCompany); ok {
		f.ShippingCompany = carrier
	}
	if strings.TrimSpace(f.CustomerName) == "" {
		f.CustomerName = order.CustomerName
	}
	if strings.TrimSpace(f.Phone) == "" {
		f.Phone = order.CustomerPhone
	}
}

func matchCarrier(name string) (domain.ShippingCompany, bool) {
	name = strings.TrimSpace(name)
	for _, carrier := range domain.ShippingCompanies {
		if strings.EqualFold(string(carrier), name) {
			return carrier, true
		}
	}
	return "", false
}

// Identifiers are the partial order identifiers of a form.
type Identifiers struct {
	OrderNumber     string
	AWB             string
	ReferenceNumber string
}

// Empty reports whether no identifier is present.
func (ids Identifiers) Empty() bool {
	_, _, ok := ids.first()
	return !ok
}

// first picks the identifier to look up: order number, then AWB, then reference.
func (ids Identifiers) first() (lookup.Kind, string, bool) {
	switch {
	case ids.OrderNumber != "":
		return lookup.KindOrderNumber, ids.OrderNumber, true
	case ids.AWB != "":
		return lookup.KindAWB, ids.AWB, true
	case ids.ReferenceNumber != "":
		return lookup.KindReference, ids.ReferenceNumber, true
	}
	return "", "", false
}

// ValidationErrors maps a field name to its problem.
type ValidationErrors map[string]string

func (v ValidationErrors) Error() string {
	fields := make([]string, 0, len(v))
	for field := range v {
		fields = append(fields, field)
	}
	sort.Strings(fields)
	parts := make([]string, 0, len(fields))
	for _, field := range fields {
		parts = append(parts, field+": "+v[field])
	}
	return "validation failed: " + strings.Join(parts, "; ")
}

// FileInfo describes a file offered as an attachment.
type FileInfo struct {
	Name string
	Size int64
}
