package service

import (
	"context"
	"fmt"
	"strings"
	"sync"
	"time"

	"go.uber.org/zap"

	"github.com/spec-kit/shipment-support/internal/domain"
	"github.com/spec-kit/shipment-support/internal/lookup"
	"github.com/spec-kit/shipment-support/internal/notify"
)

// RespondFunc records a response and moves the ticket to status.
type RespondFunc func(ctx context.Context, ticketID, body string, status domain.TicketStatus) (domain.Ticket, error)

// RespondDialog collects a response for one ticket.
type RespondDialog struct {
	ticket   domain.Ticket
	respond  RespondFunc
	notifier notify.Notifier
	logger   *zap.Logger

	mu      sync.Mutex
	pending bool
}

// NewRespondDialog opens a respond dialog for ticket.
func NewRespondDialog(ticket domain.Ticket, respond RespondFunc, notifier notify.Notifier, logger *zap.Logger) *RespondDialog {
	if notifier == nil {
		notifier = notify.Discard
	}
	if logger == nil {
		logger = zap.NewNop()
	}
	return &RespondDialog{ticket: ticket, respond: respond, notifier: notifier, logger: logger}
}

// Ticket returns the ticket being answered.
func (d *RespondDialog) Ticket() domain.Ticket {
	return d.ticket.Clone()
}

// StatusOptions lists the selectable target statuses.
func (d *RespondDialog) StatusOptions() []domain.TicketStatus {
	return append([]domain.TicketStatus(nil), domain.TicketStatuses...)
}

// DefaultStatus is the target status preselected in the dialog.
func (d *RespondDialog) DefaultStatus() domain.TicketStatus {
	return domain.TicketStatusResponded
}

// Pending reports whether a submission is in flight.
func (d *RespondDialog) Pending() bool {
	d.mu.Lock()
	defer d.mu.Unlock()
	return d.pending
}

// Submit sends the response. Empty text is rejected with a notification and no
// mutation. An empty status means Responded.
func (d *RespondDialog) Submit(ctx context.Context, text string, status domain.TicketStatus) (domain.Ticket, error) {
	if strings.TrimSpace(text) == "" {
		d.notifier.Notify(ctx, notify.Notification{
			Title:       "Response required",
			Description: "Please enter a response before submitting.",
			Severity:    notify.SeverityWarning,
		})
		return domain.Ticket{}, ValidationErrors{"response": "response text is required"}
	}
	if status == "" {
		status = d.DefaultStatus()
	}
	if !status.Valid() {
		return domain.Ticket{}, ValidationErrors{"status": "unknown status"}
	}

	d.mu.Lock()
	if d.pending {
		d.mu.Unlock()
		return domain.Ticket{}, ErrSubmitPending
	}
	d.pending = true
	d.mu.Unlock()

	ticket, err := d.respond(ctx, d.ticket.ID, text, status)

	d.mu.Lock()
	d.pending = false
	d.mu.Unlock()

	if err != nil {
		d.logger.Warn("ticket response failed", zap.String("ticket_id", d.ticket.TicketID), zap.Error(err))
		d.notifier.Notify(ctx, notify.Notification{
			Title:       "Response not sent",
			Description: "Something went wrong while sending the response. Please try again.",
			Severity:    notify.SeverityError,
		})
		return domain.Ticket{}, err
	}
	d.notifier.Notify(ctx, notify.Notification{
		Title:       "Response sent",
		Description: fmt.Sprintf("Ticket %s is now %s.", ticket.TicketID, ticket.Status),
		Severity:    notify.SeveritySuccess,
	})
	return ticket, nil
}

// TicketDetails is the read-only details panel for one ticket: ticket facts,
// the related order if it can be found, and the actions the panel offers.
type TicketDetails struct {
	Ticket          domain.Ticket
	Order           *domain.OrderData
	Responses       []domain.ResponseEntry
	CanRespond      bool
	StatusShortcuts []domain.TicketStatus
}

// BuildTicketDetails projects ticket into the details panel. The order is
// looked up by order number, then AWB; lookup problems leave Order nil.
func BuildTicketDetails(ctx context.Context, ticket domain.Ticket, responses []domain.ResponseEntry, svc lookup.Service, timeout time.Duration, logger *zap.Logger) TicketDetails {
	details := TicketDetails{
		Ticket:          ticket,
		Responses:       responses,
		CanRespond:      ticket.Status == domain.TicketStatusOpen,
		StatusShortcuts: statusShortcuts(ticket.Status),
	}
	if svc == nil {
		return details
	}
	if logger == nil {
		logger = zap.NewNop()
	}
	if timeout > 0 {
		var cancel context.CancelFunc
		ctx, cancel = context.WithTimeout(ctx, timeout)
		defer cancel()
	}

	attempts := []struct {
		kind  lookup.Kind
		value string
	}{
		{lookup.KindOrderNumber, ticket.OrderNumber},
		{lookup.KindAWB, ticket.AWB},
	}
	for _, attempt := range attempts {
		if strings.TrimSpace(attempt.value) == "" {
			continue
		}
		order, err := lookup.By(ctx, svc, attempt.kind, attempt.value)
		if err != nil {
			logger.Debug("details order lookup failed", zap.String("ticket_id", ticket.TicketID), zap.Error(err))
			return details
		}
		if order != nil {
			details.Order = order
			return details
		}
	}
	return details
}

func statusShortcuts(current domain.TicketStatus) []domain.TicketStatus {
	shortcuts := make([]domain.TicketStatus, 0, len(domain.TicketStatuses)-1)
	for _, status := range domain.TicketStatuses {
		if status != current {
			shortcuts = append(shortcuts, status)
		}
	}
	return shortcuts
}
