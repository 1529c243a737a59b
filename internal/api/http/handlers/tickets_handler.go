package handlers

import (
	"github.com/gofiber/fiber/v2"

	"github.com/spec-kit/shipment-support/internal/api/dto"
	"github.com/spec-kit/shipment-support/internal/domain"
	"github.com/spec-kit/shipment-support/internal/filter"
	"github.com/spec-kit/shipment-support/internal/notify"
	"github.com/spec-kit/shipment-support/internal/service"
	apperrors "github.com/spec-kit/shipment-support/pkg/util"
)

// TicketsHandler serves the ticket list, filters and details panel.
type TicketsHandler struct {
	page *service.PageController
	feed *notify.Feed
}

// NewTicketsHandler constructs handler.
func NewTicketsHandler(page *service.PageController, feed *notify.Feed) *TicketsHandler {
	return &TicketsHandler{page: page, feed: feed}
}

// ListTickets GET /support/tickets.
func (h *TicketsHandler) ListTickets(c *fiber.Ctx) error {
	return c.JSON(fiber.Map{"data": pageResponse(h.page.Snapshot())})
}

// SetFilters PUT /support/filters.
func (h *TicketsHandler) SetFilters(c *fiber.Ctx) error {
	var req dto.CriteriaRequest
	if err := c.BodyParser(&req); err != nil {
		return apperrors.NewValidationError("invalid payload", nil)
	}
	criteria, err := parseCriteria(req)
	if err != nil {
		return err
	}
	h.page.SetCriteria(criteria)
	return h.ListTickets(c)
}

// ResetFilters DELETE /support/filters.
func (h *TicketsHandler) ResetFilters(c *fiber.Ctx) error {
	h.page.ResetCriteria()
	return h.ListTickets(c)
}

// SetTab PUT /support/tab.
func (h *TicketsHandler) SetTab(c *fiber.Ctx) error {
	var req dto.TabRequest
	if err := c.BodyParser(&req); err != nil {
		return apperrors.NewValidationError("invalid payload", nil)
	}
	tab, ok := filter.ParseTab(req.Tab)
	if !ok {
		return apperrors.NewValidationError("unknown tab", map[string]any{"tab": req.Tab})
	}
	h.page.SetTab(tab)
	return h.ListTickets(c)
}

// ToggleSort POST /support/sort.
func (h *TicketsHandler) ToggleSort(c *fiber.Ctx) error {
	var req dto.SortRequest
	if err := c.BodyParser(&req); err != nil {
		return apperrors.NewValidationError("invalid payload", nil)
	}
	if _, err := h.page.ToggleSort(filter.SortField(req.Field)); err != nil {
		return serviceError(err)
	}
	return h.ListTickets(c)
}

// GetTicket GET /support/tickets/:id.
func (h *TicketsHandler) GetTicket(c *fiber.Ctx) error {
	details, err := h.page.Details(c.UserContext(), c.Params("id"))
	if err != nil {
		return serviceError(err)
	}
	return c.JSON(fiber.Map{"data": detailsResponse(details)})
}

// ViewTicket POST /support/tickets/:id/view.
func (h *TicketsHandler) ViewTicket(c *fiber.Ctx) error {
	details, err := h.page.OpenView(c.UserContext(), c.Params("id"))
	if err != nil {
		return serviceError(err)
	}
	return c.JSON(fiber.Map{"data": detailsResponse(details)})
}

// UpdateStatus PUT /support/tickets/:id/status.
func (h *TicketsHandler) UpdateStatus(c *fiber.Ctx) error {
	var req dto.StatusRequest
	if err := c.BodyParser(&req); err != nil {
		return apperrors.NewValidationError("invalid payload", nil)
	}
	if !req.Status.Valid() {
		return apperrors.NewValidationError("unknown status", map[string]any{"status": req.Status})
	}
	ticket, err := h.page.UpdateStatus(c.UserContext(), c.Params("id"), req.Status)
	if err != nil {
		return serviceError(err)
	}
	return c.JSON(fiber.Map{"data": ticketResponse(ticket)})
}

// Notifications GET /support/notifications drains pending toasts.
func (h *TicketsHandler) Notifications(c *fiber.Ctx) error {
	var items []notify.Notification
	if h.feed != nil {
		items = h.feed.Drain()
	}
	return c.JSON(fiber.Map{"data": notificationResponses(items)})
}

// Options GET /support/options lists the values the form selects offer.
func (h *TicketsHandler) Options(c *fiber.Ctx) error {
	return c.JSON(fiber.Map{"data": fiber.Map{
		"issue_types":        domain.IssueTypes,
		"issue_categories":   domain.IssueCategories,
		"shipping_companies": domain.ShippingCompanies,
		"priorities":         domain.TicketPriorities,
		"statuses":           domain.TicketStatuses,
		"sort_fields":        filter.SortFields(),
	}})
}
