package service

import (
	"context"
	"fmt"
	"sync"
	"time"

	"go.uber.org/zap"

	"github.com/spec-kit/shipment-support/internal/domain"
	"github.com/spec-kit/shipment-support/internal/lookup"
	"github.com/spec-kit/shipment-support/internal/notify"
	"github.com/spec-kit/shipment-support/internal/repository"
)

// DefaultMaxAttachmentBytes caps a single attachment at 5 MB.
const DefaultMaxAttachmentBytes int64 = 5 * 1024 * 1024

// CreateFunc persists a validated ticket.
type CreateFunc func(ctx context.Context, input repository.NewTicket) (domain.Ticket, error)

// CreateDialogConfig tunes a CreateTicketDialog.
type CreateDialogConfig struct {
	MaxAttachmentBytes int64
	SubmitLatency      time.Duration
	CreatedBy          string
}

// CreateTicketDialog holds the create-ticket form and drives its submission.
type CreateTicketDialog struct {
	autofill *AutoFillController
	notifier notify.Notifier
	logger   *zap.Logger
	create   CreateFunc
	cfg      CreateDialogConfig

	mu      sync.Mutex
	form    TicketForm
	pending bool
}

// NewCreateTicketDialog builds a dialog with a default form.
func NewCreateTicketDialog(autofill *AutoFillController, create CreateFunc, notifier notify.Notifier, cfg CreateDialogConfig, logger *zap.Logger) *CreateTicketDialog {
	if notifier == nil {
		notifier = notify.Discard
	}
	if logger == nil {
		logger = zap.NewNop()
	}
	if cfg.MaxAttachmentBytes <= 0 {
		cfg.MaxAttachmentBytes = DefaultMaxAttachmentBytes
	}
	return &CreateTicketDialog{
		autofill: autofill,
		notifier: notifier,
		logger:   logger,
		create:   create,
		cfg:      cfg,
		form:     DefaultTicketForm(),
	}
}

// Form returns a copy of the current form.
func (d *CreateTicketDialog) Form() TicketForm {
	d.mu.Lock()
	defer d.mu.Unlock()
	return d.form.clone()
}

// AutoFillState returns the lookup indicator.
func (d *CreateTicketDialog) AutoFillState() AutoFillState {
	return d.autofill.State()
}

// LookupKind returns the identifier kind of the latest lookup.
func (d *CreateTicketDialog) LookupKind() lookup.Kind {
	return d.autofill.LastKind()
}

// Pending reports whether a submission is in flight.
func (d *CreateTicketDialog) Pending() bool {
	d.mu.Lock()
	defer d.mu.Unlock()
	return d.pending
}

// SetField edits one form field. Identifier edits invalidate the auto-fill
// indicator.
func (d *CreateTicketDialog) SetField(field FormField, value string) error {
	d.mu.Lock()
	err := d.form.set(field, value)
	d.mu.Unlock()
	if err != nil {
		return err
	}
	if field.IsIdentifier() {
		d.autofill.Invalidate()
	}
	return nil
}

// SetFields applies several edits; unknown fields abort before anything changes.
func (d *CreateTicketDialog) SetFields(values map[FormField]string) error {
	for field := range values {
		if err := (&TicketForm{}).set(field, ""); err != nil {
			return err
		}
	}
	for field, value := range values {
		if err := d.SetField(field, value); err != nil {
			return err
		}
	}
	return nil
}

// AutoFill looks up the order for the form's identifiers and fills the form
// on success.
func (d *CreateTicketDialog) AutoFill(ctx context.Context) (AutoFillState, error) {
	d.mu.Lock()
	ids := d.form.Identifiers()
	d.mu.Unlock()

	order, state, err := d.autofill.Trigger(ctx, ids)
	if err != nil || order == nil {
		return state, err
	}

	d.mu.Lock()
	defer d.mu.Unlock()
	if d.form.Identifiers() != ids {
		// edited while the lookup ran; the edit already reset the indicator
		return d.autofill.State(), nil
	}
	d.form.applyOrder(order)
	return state, nil
}

// CancelAutoFill abandons a running lookup.
func (d *CreateTicketDialog) CancelAutoFill() {
	d.autofill.Cancel()
}

// AddAttachments accepts files up to the size cap. Each oversized file is
// rejected with its own notification; the rest of the batch is kept.
func (d *CreateTicketDialog) AddAttachments(ctx context.Context, files []FileInfo) []string {
	var accepted, rejected []string
	d.mu.Lock()
	for _, file := range files {
		if file.Size > d.cfg.MaxAttachmentBytes {
			rejected = append(rejected, file.Name)
			continue
		}
		d.form.Attachments = append(d.form.Attachments, file.Name)
		accepted = append(accepted, file.Name)
	}
	d.mu.Unlock()

	for _, name := range rejected {
		d.notifier.Notify(ctx, notify.Notification{
			Title:       "File too large",
			Description: fmt.Sprintf("%s exceeds the %s limit.", name, formatBytes(d.cfg.MaxAttachmentBytes)),
			Severity:    notify.SeverityWarning,
		})
	}
	return accepted
}

// RemoveAttachment drops the first attachment called name.
func (d *CreateTicketDialog) RemoveAttachment(name string) bool {
	d.mu.Lock()
	defer d.mu.Unlock()
	for i, existing := range d.form.Attachments {
		if existing == name {
			d.form.Attachments = append(d.form.Attachments[:i], d.form.Attachments[i+1:]...)
			return true
		}
	}
	return false
}

// Validate reports what blocks submission.
func (d *CreateTicketDialog) Validate() ValidationErrors {
	d.mu.Lock()
	defer d.mu.Unlock()
	return d.form.Validate()
}

// Submit validates and creates the ticket after the configured latency. While
// a submission is pending further calls fail with ErrSubmitPending. On failure
// the form is kept so the user can retry; on success it is reset.
func (d *CreateTicketDialog) Submit(ctx context.Context) (domain.Ticket, error) {
	d.mu.Lock()
	if d.pending {
		d.mu.Unlock()
		return domain.Ticket{}, ErrSubmitPending
	}
	if errs := d.form.Validate(); len(errs) > 0 {
		d.mu.Unlock()
		return domain.Ticket{}, errs
	}
	d.pending = true
	input := d.form.toNewTicket(d.cfg.CreatedBy)
	d.mu.Unlock()

	ticket, err := d.submit(ctx, input)

	d.mu.Lock()
	d.pending = false
	if err == nil {
		d.form = DefaultTicketForm()
	}
	d.mu.Unlock()

	if err != nil {
		d.logger.Warn("ticket creation failed", zap.Error(err))
		d.notifier.Notify(ctx, notify.Notification{
			Title:       "Ticket not created",
			Description: "Something went wrong while creating the ticket. Please try again.",
			Severity:    notify.SeverityError,
		})
		return domain.Ticket{}, err
	}
	d.autofill.Cancel()
	d.notifier.Notify(ctx, notify.Notification{
		Title:       "Ticket created",
		Description: fmt.Sprintf("Ticket %s has been created.", ticket.TicketID),
		Severity:    notify.SeveritySuccess,
	})
	return ticket, nil
}

func (d *CreateTicketDialog) submit(ctx context.Context, input repository.NewTicket) (domain.Ticket, error) {
	if d.cfg.SubmitLatency > 0 {
		timer := time.NewTimer(d.cfg.SubmitLatency)
		defer timer.Stop()
		select {
		case <-ctx.Done():
			return domain.Ticket{}, ctx.Err()
		case <-timer.C:
		}
	}
	return d.create(ctx, input)
}

func formatBytes(n int64) string {
	const mb = 1024 * 1024
	if n%mb == 0 {
		return fmt.Sprintf("%d MB", n/mb)
	}
	return fmt.Sprintf("%d bytes", n)
}
