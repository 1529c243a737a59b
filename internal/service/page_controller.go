package service

import (
	"context"
	"fmt"
	"strings"
	"sync"
	"time"

	"github.com/google/uuid"
	"go.uber.org/zap"

	"github.com/spec-kit/shipment-support/internal/domain"
	"github.com/spec-kit/shipment-support/internal/events"
	"github.com/spec-kit/shipment-support/internal/filter"
	"github.com/spec-kit/shipment-support/internal/lookup"
	"github.com/spec-kit/shipment-support/internal/notify"
	"github.com/spec-kit/shipment-support/internal/repository"
)

// PageController orchestrates the support page: it owns the ticket store,
// the filter state and the one open dialog, and routes dialog results into
// store mutations.
type PageController struct {
	store      *repository.TicketStore
	lookup     lookup.Service
	notifier   notify.Notifier
	dispatcher events.Dispatcher
	logger     *zap.Logger
	cfg        PageConfig

	mu       sync.Mutex
	criteria filter.Criteria
	tab      filter.Tab
	sort     filter.SortSpec
	dialog   DialogState
}

// PageDependencies bundles collaborators for the page controller.
type PageDependencies struct {
	Store      *repository.TicketStore
	Lookup     lookup.Service
	Notifier   notify.Notifier
	Dispatcher events.Dispatcher
	Logger     *zap.Logger
}

// PageConfig tunes the dialogs opened by the page.
type PageConfig struct {
	LookupTimeout      time.Duration
	SubmitLatency      time.Duration
	MaxAttachmentBytes int64
	CreatedBy          string
}

// PageSnapshot is everything the page renders.
type PageSnapshot struct {
	List           TicketListView
	Counts         filter.Counts
	Criteria       filter.Criteria
	Tab            filter.Tab
	Sort           filter.SortSpec
	Dialog         DialogKind
	DialogTicketID string
}

// NewPageController constructs the controller.
func NewPageController(deps PageDependencies, cfg PageConfig) *PageController {
	if deps.Store == nil {
		deps.Store = repository.NewTicketStore()
	}
	if deps.Notifier == nil {
		deps.Notifier = notify.Discard
	}
	if deps.Logger == nil {
		deps.Logger = zap.NewNop()
	}
	return &PageController{
		store:      deps.Store,
		lookup:     deps.Lookup,
		notifier:   deps.Notifier,
		dispatcher: deps.Dispatcher,
		logger:     deps.Logger,
		cfg:        cfg,
		tab:        filter.TabAll,
		dialog:     NoDialog{},
	}
}

// Snapshot derives the visible list and summary counts. Counts follow the
// criteria but ignore the tab.
func (p *PageController) Snapshot() PageSnapshot {
	p.mu.Lock()
	criteria, tab, spec, dialog := p.criteria, p.tab, p.sort, p.dialog
	p.mu.Unlock()

	matching := filter.Apply(p.store.List(), criteria)
	visible := filter.Visible(matching, filter.Criteria{}, tab, spec)
	return PageSnapshot{
		List:           RenderTicketList(visible, spec),
		Counts:         filter.Summarize(matching),
		Criteria:       criteria,
		Tab:            tab,
		Sort:           spec,
		Dialog:         dialog.Kind(),
		DialogTicketID: dialogTicketID(dialog),
	}
}

// Visible returns the tickets currently shown.
func (p *PageController) Visible() []domain.Ticket {
	p.mu.Lock()
	criteria, tab, spec := p.criteria, p.tab, p.sort
	p.mu.Unlock()
	return filter.Visible(p.store.List(), criteria, tab, spec)
}

// SetCriteria replaces the active criteria.
func (p *PageController) SetCriteria(c filter.Criteria) {
	p.mu.Lock()
	defer p.mu.Unlock()
	p.criteria = c
}

// ResetCriteria clears every criterion.
func (p *PageController) ResetCriteria() {
	p.SetCriteria(filter.Criteria{})
}

// SetTab selects the status tab.
func (p *PageController) SetTab(tab filter.Tab) {
	p.mu.Lock()
	defer p.mu.Unlock()
	p.tab = tab
}

// ToggleSort applies a column header click.
func (p *PageController) ToggleSort(field filter.SortField) (filter.SortSpec, error) {
	if field == filter.SortNone || !field.Valid() {
		return filter.SortSpec{}, fmt.Errorf("%w: %q", ErrInvalidSortField, field)
	}
	p.mu.Lock()
	defer p.mu.Unlock()
	p.sort = p.sort.Toggle(field)
	return p.sort, nil
}

// Dialog returns the open dialog.
func (p *PageController) Dialog() DialogState {
	p.mu.Lock()
	defer p.mu.Unlock()
	return p.dialog
}

// OpenCreate opens a fresh create-ticket dialog in place of any idle dialog.
func (p *PageController) OpenCreate() (*CreateTicketDialog, error) {
	p.mu.Lock()
	defer p.mu.Unlock()
	if err := p.replaceableLocked(); err != nil {
		return nil, err
	}
	autofill := NewAutoFillController(p.lookup, p.notifier, p.cfg.LookupTimeout, p.logger)
	dialog := NewCreateTicketDialog(autofill, p.createTicket, p.notifier, CreateDialogConfig{
		MaxAttachmentBytes: p.cfg.MaxAttachmentBytes,
		SubmitLatency:      p.cfg.SubmitLatency,
		CreatedBy:          p.cfg.CreatedBy,
	}, p.logger)
	p.dialog = CreateDialogState{Dialog: dialog}
	return dialog, nil
}

// CreateDialog returns the open create dialog.
func (p *PageController) CreateDialog() (*CreateTicketDialog, error) {
	p.mu.Lock()
	defer p.mu.Unlock()
	state, ok := p.dialog.(CreateDialogState)
	if !ok {
		return nil, fmt.Errorf("%w: create", ErrDialogNotOpen)
	}
	return state.Dialog, nil
}

// SubmitCreate submits the create dialog and closes it on success.
func (p *PageController) SubmitCreate(ctx context.Context) (domain.Ticket, error) {
	dialog, err := p.CreateDialog()
	if err != nil {
		return domain.Ticket{}, err
	}
	ticket, err := dialog.Submit(ctx)
	if err != nil {
		return domain.Ticket{}, err
	}
	p.closeIf(func(state DialogState) bool {
		s, ok := state.(CreateDialogState)
		return ok && s.Dialog == dialog
	})
	return ticket, nil
}

// AutoFill runs the create dialog's order lookup and fills the form on a hit.
func (p *PageController) AutoFill(ctx context.Context) (AutoFillState, error) {
	dialog, err := p.CreateDialog()
	if err != nil {
		return AutoFillIdle, err
	}
	state, err := dialog.AutoFill(ctx)
	if err != nil || state != AutoFillSuccess {
		return state, err
	}
	p.publishEvent(ctx, events.Event{
		Type:  events.EventOrderAutoFilled,
		Actor: p.cfg.CreatedBy,
		Payload: events.OrderAutoFilledPayload{
			LookupKind:  string(dialog.LookupKind()),
			OrderNumber: dialog.Form().OrderNumber,
		},
	})
	return state, nil
}

// OpenView opens the details panel of a ticket.
func (p *PageController) OpenView(ctx context.Context, id string) (TicketDetails, error) {
	ticket, ok := p.store.Get(id)
	if !ok {
		return TicketDetails{}, ErrTicketNotFound
	}
	p.mu.Lock()
	if err := p.replaceableLocked(); err != nil {
		p.mu.Unlock()
		return TicketDetails{}, err
	}
	p.dialog = ViewDialogState{TicketID: ticket.ID}
	p.mu.Unlock()

	return p.Details(ctx, ticket.ID)
}

// Details builds the details panel without changing the open dialog.
func (p *PageController) Details(ctx context.Context, id string) (TicketDetails, error) {
	ticket, ok := p.store.Get(id)
	if !ok {
		return TicketDetails{}, ErrTicketNotFound
	}
	return BuildTicketDetails(ctx, ticket, p.store.Responses(id), p.lookup, p.cfg.LookupTimeout, p.logger), nil
}

// OpenRespond opens the respond dialog for a ticket.
func (p *PageController) OpenRespond(id string) (*RespondDialog, error) {
	ticket, ok := p.store.Get(id)
	if !ok {
		return nil, ErrTicketNotFound
	}
	if ticket.Status != domain.TicketStatusOpen {
		return nil, fmt.Errorf("%w: ticket is %s", ErrRespondNotAllowed, ticket.Status)
	}
	p.mu.Lock()
	defer p.mu.Unlock()
	if err := p.replaceableLocked(); err != nil {
		return nil, err
	}
	dialog := NewRespondDialog(ticket, p.respondTicket, p.notifier, p.logger)
	p.dialog = RespondDialogState{TicketID: ticket.ID, Dialog: dialog}
	return dialog, nil
}

// SubmitRespond submits the open respond dialog and closes it on success.
func (p *PageController) SubmitRespond(ctx context.Context, text string, status domain.TicketStatus) (domain.Ticket, error) {
	p.mu.Lock()
	state, ok := p.dialog.(RespondDialogState)
	p.mu.Unlock()
	if !ok {
		return domain.Ticket{}, fmt.Errorf("%w: respond", ErrDialogNotOpen)
	}
	ticket, err := state.Dialog.Submit(ctx, text, status)
	if err != nil {
		return domain.Ticket{}, err
	}
	p.closeIf(func(current DialogState) bool {
		s, ok := current.(RespondDialogState)
		return ok && s.Dialog == state.Dialog
	})
	return ticket, nil
}

// CloseDialog closes whatever dialog is open, abandoning a running lookup.
func (p *PageController) CloseDialog() error {
	p.mu.Lock()
	defer p.mu.Unlock()
	if err := p.replaceableLocked(); err != nil {
		return err
	}
	p.dialog = NoDialog{}
	return nil
}

// UpdateStatus sets a ticket's status directly, as the details panel
// shortcuts do.
func (p *PageController) UpdateStatus(ctx context.Context, id string, status domain.TicketStatus) (domain.Ticket, error) {
	if !status.Valid() {
		return domain.Ticket{}, fmt.Errorf("%w: %q", ErrInvalidStatus, status)
	}
	before, ok := p.store.Get(id)
	if !ok {
		return domain.Ticket{}, ErrTicketNotFound
	}
	ticket, ok := p.store.UpdateStatus(id, status)
	if !ok {
		return domain.Ticket{}, ErrTicketNotFound
	}
	p.publishEvent(ctx, events.Event{
		Type:     events.EventTicketStatusChanged,
		TicketID: ticket.ID,
		Payload: events.TicketStatusChangedPayload{
			TicketCode: ticket.TicketID,
			OldStatus:  before.Status,
			NewStatus:  ticket.Status,
		},
	})
	p.notifier.Notify(ctx, notify.Notification{
		Title:       "Status updated",
		Description: fmt.Sprintf("Ticket %s marked as %s.", ticket.TicketID, ticket.Status),
		Severity:    notify.SeveritySuccess,
	})
	return ticket, nil
}

// replaceableLocked refuses to swap out a dialog that is mid-submission.
func (p *PageController) replaceableLocked() error {
	if submitting(p.dialog) {
		return ErrDialogBusy
	}
	if state, ok := p.dialog.(CreateDialogState); ok {
		state.Dialog.CancelAutoFill()
	}
	return nil
}

func (p *PageController) closeIf(match func(DialogState) bool) {
	p.mu.Lock()
	defer p.mu.Unlock()
	if match(p.dialog) {
		p.dialog = NoDialog{}
	}
}

func (p *PageController) createTicket(ctx context.Context, input repository.NewTicket) (domain.Ticket, error) {
	if err := ctx.Err(); err != nil {
		return domain.Ticket{}, err
	}
	ticket := p.store.Create(input)
	p.logger.Info("ticket created", zap.String("ticket_id", ticket.TicketID), zap.String("order_number", ticket.OrderNumber))
	p.publishEvent(ctx, events.Event{
		Type:     events.EventTicketCreated,
		TicketID: ticket.ID,
		Actor:    ticket.CreatedBy,
		Payload: events.TicketCreatedPayload{
			TicketCode:      ticket.TicketID,
			OrderNumber:     ticket.OrderNumber,
			IssueType:       ticket.IssueType,
			ShippingCompany: ticket.ShippingCompany,
			Priority:        ticket.Priority,
		},
	})
	return ticket, nil
}

func (p *PageController) respondTicket(ctx context.Context, id, body string, status domain.TicketStatus) (domain.Ticket, error) {
	if err := ctx.Err(); err != nil {
		return domain.Ticket{}, err
	}
	current, ok := p.store.Get(id)
	if !ok {
		return domain.Ticket{}, ErrTicketNotFound
	}
	if current.Status != domain.TicketStatusOpen {
		return domain.Ticket{}, fmt.Errorf("%w: ticket is %s", ErrRespondNotAllowed, current.Status)
	}
	ticket, ok := p.store.Respond(id, body, p.cfg.CreatedBy, status)
	if !ok {
		return domain.Ticket{}, ErrTicketNotFound
	}
	p.publishEvent(ctx, events.Event{
		Type:     events.EventTicketResponded,
		TicketID: ticket.ID,
		Actor:    p.cfg.CreatedBy,
		Payload: events.TicketRespondedPayload{
			TicketCode:  ticket.TicketID,
			NewStatus:   ticket.Status,
			BodyPreview: stringPreview(body, 120),
		},
	})
	return ticket, nil
}

func (p *PageController) publishEvent(ctx context.Context, event events.Event) {
	if p.dispatcher == nil {
		return
	}
	if event.ID == "" {
		event.ID = uuid.NewString()
	}
	if event.Timestamp.IsZero() {
		event.Timestamp = time.Now()
	}
	if err := p.dispatcher.Publish(ctx, event); err != nil {
		p.logger.Warn("event handler failed", zap.String("event_type", string(event.Type)), zap.Error(err))
	}
}

// stringPreview trims body to at most max runes, marking the cut with "...".
func stringPreview(body string, max int) string {
	body = strings.TrimSpace(body)
	runes := []rune(body)
	if len(runes) <= max {
		return body
	}
	if max <= 3 {
		return string(runes[:max])
	}
	return string(runes[:max-3]) + "..."
}
