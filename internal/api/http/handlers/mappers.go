package handlers

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/spec-kit/shipment-support/internal/api/dto"
	"github.com/spec-kit/shipment-support/internal/domain"
	"github.com/spec-kit/shipment-support/internal/filter"
	"github.com/spec-kit/shipment-support/internal/notify"
	"github.com/spec-kit/shipment-support/internal/service"
	apperrors "github.com/spec-kit/shipment-support/pkg/util"
)

// serviceError translates service sentinels into API errors.
func serviceError(err error) error {
	if err == nil {
		return nil
	}
	var verrs service.ValidationErrors
	if errors.As(err, &verrs) {
		details := make(map[string]any, len(verrs))
		for field, msg := range verrs {
			details[field] = msg
		}
		return apperrors.NewValidationError("validation failed", details)
	}
	switch {
	case errors.Is(err, service.ErrTicketNotFound):
		return apperrors.NewNotFound("ticket", nil)
	case errors.Is(err, service.ErrInvalidStatus),
		errors.Is(err, service.ErrUnknownField),
		errors.Is(err, service.ErrInvalidSortField):
		return apperrors.NewValidationError(err.Error(), nil)
	case errors.Is(err, service.ErrDialogBusy),
		errors.Is(err, service.ErrDialogNotOpen),
		errors.Is(err, service.ErrSubmitPending),
		errors.Is(err, service.ErrAutoFillInProgress),
		errors.Is(err, service.ErrRespondNotAllowed):
		return apperrors.NewConflict(err.Error(), nil)
	case errors.Is(err, context.DeadlineExceeded):
		return apperrors.NewUnavailable("request timed out", err)
	}
	return err
}

func parseCriteria(req dto.CriteriaRequest) (filter.Criteria, error) {
	var c filter.Criteria
	if req.IssueType != "" {
		v := domain.IssueType(req.IssueType)
		if !v.Valid() {
			return c, apperrors.NewValidationError("unknown issue_type", map[string]any{"issue_type": req.IssueType})
		}
		c.IssueType = &v
	}
	if req.ShippingCompany != "" {
		v := domain.ShippingCompany(req.ShippingCompany)
		if !v.Valid() {
			return c, apperrors.NewValidationError("unknown shipping_company", map[string]any{"shipping_company": req.ShippingCompany})
		}
		c.ShippingCompany = &v
	}
	if req.IssueCategory != "" {
		v := domain.IssueCategory(req.IssueCategory)
		if !v.Valid() {
			return c, apperrors.NewValidationError("unknown issue_category", map[string]any{"issue_category": req.IssueCategory})
		}
		c.IssueCategory = &v
	}
	if req.Priority != "" {
		v := domain.TicketPriority(req.Priority)
		if !v.Valid() {
			return c, apperrors.NewValidationError("unknown priority", map[string]any{"priority": req.Priority})
		}
		c.Priority = &v
	}
	if req.Status != "" {
		v := domain.TicketStatus(req.Status)
		if !v.Valid() {
			return c, apperrors.NewValidationError("unknown status", map[string]any{"status": req.Status})
		}
		c.Status = &v
	}
	c.OrderNumber = req.OrderNumber
	c.AWB = req.AWB
	c.ReferenceNumber = req.ReferenceNumber
	c.TicketID = req.TicketID

	var err error
	if c.FromDate, err = parseDay("from_date", req.FromDate); err != nil {
		return c, err
	}
	if c.ToDate, err = parseDay("to_date", req.ToDate); err != nil {
		return c, err
	}
	return c, nil
}

func parseDay(field, val string) (*time.Time, error) {
	if val == "" {
		return nil, nil
	}
	t, err := time.Parse(time.DateOnly, val)
	if err != nil {
		return nil, apperrors.NewValidationError(fmt.Sprintf("%s must be YYYY-MM-DD", field), map[string]any{field: val})
	}
	return &t, nil
}

func criteriaResponse(c filter.Criteria) dto.CriteriaRequest {
	resp := dto.CriteriaRequest{
		OrderNumber:     c.OrderNumber,
		AWB:             c.AWB,
		ReferenceNumber: c.ReferenceNumber,
		TicketID:        c.TicketID,
	}
	if c.IssueType != nil {
		resp.IssueType = string(*c.IssueType)
	}
	if c.ShippingCompany != nil {
		resp.ShippingCompany = string(*c.ShippingCompany)
	}
	if c.IssueCategory != nil {
		resp.IssueCategory = string(*c.IssueCategory)
	}
	if c.Priority != nil {
		resp.Priority = string(*c.Priority)
	}
	if c.Status != nil {
		resp.Status = string(*c.Status)
	}
	if c.FromDate != nil {
		resp.FromDate = c.FromDate.Format(time.DateOnly)
	}
	if c.ToDate != nil {
		resp.ToDate = c.ToDate.Format(time.DateOnly)
	}
	return resp
}

func pageResponse(snap service.PageSnapshot) dto.PageResponse {
	columns := make([]dto.ColumnResponse, 0, len(snap.List.Columns))
	for _, col := range snap.List.Columns {
		columns = append(columns, dto.ColumnResponse{
			Field:      string(col.Field),
			Label:      col.Label,
			Active:     col.Active,
			Descending: col.Descending,
		})
	}
	rows := make([]dto.TicketRowResponse, 0, len(snap.List.Rows))
	for _, row := range snap.List.Rows {
		actions := make([]string, 0, len(row.Intents))
		for _, intent := range row.Intents {
			actions = append(actions, string(intent))
		}
		rows = append(rows, dto.TicketRowResponse{
			ID:              row.ID,
			TicketID:        row.TicketID,
			OrderNumber:     row.OrderNumber,
			AWB:             row.AWB,
			ReferenceNumber: row.ReferenceNumber,
			IssueType:       row.IssueType,
			ShippingCompany: row.ShippingCompany,
			IssueCategory:   row.IssueCategory,
			Priority:        row.Priority,
			Status:          row.Status,
			CustomerName:    row.CustomerName,
			DateCreated:     row.DateCreated,
			Attachments:     row.Attachments,
			Actions:         actions,
		})
	}
	return dto.PageResponse{
		Columns: columns,
		Rows:    rows,
		Counts: dto.CountsResponse{
			Total:     snap.Counts.Total,
			Open:      snap.Counts.Open,
			Responded: snap.Counts.Responded,
			Closed:    snap.Counts.Closed,
		},
		Criteria:       criteriaResponse(snap.Criteria),
		Tab:            string(snap.Tab),
		Sort:           dto.SortResponse{Field: string(snap.Sort.Field), Descending: snap.Sort.Descending},
		Dialog:         string(snap.Dialog),
		DialogTicketID: snap.DialogTicketID,
	}
}

func ticketResponse(t domain.Ticket) dto.TicketResponse {
	attachments := t.Attachments
	if attachments == nil {
		attachments = []string{}
	}
	return dto.TicketResponse{
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
		Description:     t.Description,
		Attachments:     attachments,
		CustomerName:    t.CustomerName,
		Phone:           t.Phone,
		DateCreated:     t.DateCreated,
		CreatedBy:       t.CreatedBy,
	}
}

func formResponse(d *service.CreateTicketDialog) dto.FormResponse {
	form := d.Form()
	attachments := form.Attachments
	if attachments == nil {
		attachments = []string{}
	}
	return dto.FormResponse{
		OrderNumber:     form.OrderNumber,
		AWB:             form.AWB,
		ReferenceNumber: form.ReferenceNumber,
		IssueType:       form.IssueType,
		ShippingCompany: form.ShippingCompany,
		IssueCategory:   form.IssueCategory,
		Priority:        form.Priority,
		Description:     form.Description,
		CustomerName:    form.CustomerName,
		Phone:           form.Phone,
		Attachments:     attachments,
		AutoFill:        string(d.AutoFillState()),
		Pending:         d.Pending(),
	}
}

func respondDialogResponse(d *service.RespondDialog) dto.RespondDialogResponse {
	return dto.RespondDialogResponse{
		Ticket:        ticketResponse(d.Ticket()),
		StatusOptions: d.StatusOptions(),
		DefaultStatus: d.DefaultStatus(),
	}
}

func detailsResponse(details service.TicketDetails) dto.TicketDetailsResponse {
	responses := make([]dto.ResponseEntryResponse, 0, len(details.Responses))
	for _, r := range details.Responses {
		responses = append(responses, dto.ResponseEntryResponse{
			ID:        r.ID,
			Body:      r.Body,
			OldStatus: r.OldStatus,
			NewStatus: r.NewStatus,
			CreatedBy: r.CreatedBy,
			CreatedAt: r.CreatedAt,
		})
	}
	return dto.TicketDetailsResponse{
		Ticket:          ticketResponse(details.Ticket),
		Order:           orderResponse(details.Order),
		Responses:       responses,
		CanRespond:      details.CanRespond,
		StatusShortcuts: details.StatusShortcuts,
	}
}

func orderResponse(order *domain.OrderData) *dto.OrderResponse {
	if order == nil {
		return nil
	}
	items := make([]dto.OrderItemResponse, 0, len(order.Items))
	for _, item := range order.Items {
		items = append(items, dto.OrderItemResponse{
			Name:      item.Name,
			SKU:       item.SKU,
			Quantity:  item.Quantity,
			UnitPrice: item.UnitPrice,
		})
	}
	return &dto.OrderResponse{
		OrderNumber:     order.OrderNumber,
		AWB:             order.AWB,
		ReferenceNumber: order.ReferenceNumber,
		CustomerName:    order.CustomerName,
		CustomerPhone:   order.CustomerPhone,
		CustomerEmail:   order.CustomerEmail,
		ShippingCompany: order.ShippingCompany,
		ShippingAddress: order.ShippingAddress,
		TotalAmount:     order.TotalAmount,
		PaymentMethod:   order.PaymentMethod,
		OrderDate:       order.OrderDate,
		Status:          order.Status,
		Items:           items,
	}
}

func notificationResponses(items []notify.Notification) []dto.NotificationResponse {
	resp := make([]dto.NotificationResponse, 0, len(items))
	for _, n := range items {
		resp = append(resp, dto.NotificationResponse{
			Title:       n.Title,
			Description: n.Description,
			Severity:    string(n.Severity),
			CreatedAt:   n.CreatedAt,
		})
	}
	return resp
}
