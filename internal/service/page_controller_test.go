package service

import (
	"context"
	"strings"
	"sync"
	"testing"
	"time"
	"unicode/utf8"

	"github.com/stretchr/testify/require"

	"github.com/spec-kit/shipment-support/internal/domain"
	"github.com/spec-kit/shipment-support/internal/events"
	"github.com/spec-kit/shipment-support/internal/filter"
	"github.com/spec-kit/shipment-support/internal/lookup"
	"github.com/spec-kit/shipment-support/internal/repository"
)

type pageFixture struct {
	page     *PageController
	store    *repository.TicketStore
	lookup   *stubLookup
	notifier *recordingNotifier

	mu     sync.Mutex
	events []events.Event
}

func newPageFixture(t *testing.T) *pageFixture {
	t.Helper()
	f := &pageFixture{
		store:    repository.NewTicketStore(repository.WithClock(func() time.Time { return fixedNow })),
		lookup:   &stubLookup{order: sampleOrder()},
		notifier: &recordingNotifier{},
	}
	dispatcher := events.NewInMemoryDispatcher()
	record := func(_ context.Context, e events.Event) error {
		f.mu.Lock()
		defer f.mu.Unlock()
		f.events = append(f.events, e)
		return nil
	}
	for _, et := range []events.EventType{events.EventTicketCreated, events.EventTicketStatusChanged, events.EventTicketResponded, events.EventOrderAutoFilled} {
		dispatcher.Subscribe(et, record)
	}
	f.page = NewPageController(PageDependencies{
		Store:      f.store,
		Lookup:     f.lookup,
		Notifier:   f.notifier,
		Dispatcher: dispatcher,
	}, PageConfig{LookupTimeout: time.Second, CreatedBy: "Support Agent"})
	return f
}

func (f *pageFixture) eventTypes() []events.EventType {
	f.mu.Lock()
	defer f.mu.Unlock()
	types := make([]events.EventType, 0, len(f.events))
	for _, e := range f.events {
		types = append(types, e.Type)
	}
	return types
}

func (f *pageFixture) createTicket(t *testing.T, order string) domain.Ticket {
	t.Helper()
	dialog, err := f.page.OpenCreate()
	require.NoError(t, err)
	require.NoError(t, completeForm(dialog))
	require.NoError(t, dialog.SetField(FieldOrderNumber, order))
	ticket, err := f.page.SubmitCreate(context.Background())
	require.NoError(t, err)
	return ticket
}

func TestPageCreateFlow(t *testing.T) {
	f := newPageFixture(t)
	ticket := f.createTicket(t, "ORD-10021")

	require.Equal(t, "TK-001", ticket.TicketID)
	snap := f.page.Snapshot()
	require.Equal(t, DialogNone, snap.Dialog)
	require.Len(t, snap.List.Rows, 1)
	require.Equal(t, filter.Counts{Total: 1, Open: 1}, snap.Counts)

	f.page.SetTab(filter.TabOpen)
	require.Len(t, f.page.Snapshot().List.Rows, 1)
	f.page.SetTab(filter.TabClosed)
	require.Empty(t, f.page.Snapshot().List.Rows)

	require.Equal(t, []events.EventType{events.EventTicketCreated}, f.eventTypes())
	require.Contains(t, f.notifier.Titles(), "Ticket created")
}

func TestPageNewestFirst(t *testing.T) {
	f := newPageFixture(t)
	f.createTicket(t, "ORD-1")
	f.createTicket(t, "ORD-2")

	rows := f.page.Snapshot().List.Rows
	require.Equal(t, "TK-002", rows[0].TicketID)
	require.Equal(t, "TK-001", rows[1].TicketID)
}

func TestPageCountsFollowCriteriaNotTab(t *testing.T) {
	f := newPageFixture(t)
	first := f.createTicket(t, "ORD-1")
	f.createTicket(t, "ORD-2")
	_, err := f.page.UpdateStatus(context.Background(), first.ID, domain.TicketStatusClosed)
	require.NoError(t, err)

	f.page.SetTab(filter.TabOpen)
	snap := f.page.Snapshot()
	require.Equal(t, filter.Counts{Total: 2, Open: 1, Closed: 1}, snap.Counts)
	require.Len(t, snap.List.Rows, 1)

	f.page.SetCriteria(filter.Criteria{OrderNumber: "ord-1"})
	snap = f.page.Snapshot()
	require.Equal(t, filter.Counts{Total: 1, Closed: 1}, snap.Counts)
	require.Empty(t, snap.List.Rows)

	f.page.ResetCriteria()
	require.Equal(t, 2, f.page.Snapshot().Counts.Total)
}

func TestPageUpdateStatus(t *testing.T) {
	f := newPageFixture(t)
	ticket := f.createTicket(t, "ORD-1")

	updated, err := f.page.UpdateStatus(context.Background(), ticket.ID, domain.TicketStatusClosed)
	require.NoError(t, err)
	require.Equal(t, domain.TicketStatusClosed, updated.Status)
	require.Contains(t, f.notifier.Titles(), "Status updated")
	require.Equal(t, []events.EventType{events.EventTicketCreated, events.EventTicketStatusChanged}, f.eventTypes())

	_, err = f.page.UpdateStatus(context.Background(), "missing", domain.TicketStatusClosed)
	require.ErrorIs(t, err, ErrTicketNotFound)
	_, err = f.page.UpdateStatus(context.Background(), ticket.ID, "Escalated")
	require.ErrorIs(t, err, ErrInvalidStatus)
}

func TestPageRespondFlow(t *testing.T) {
	f := newPageFixture(t)
	ticket := f.createTicket(t, "ORD-1")

	_, err := f.page.OpenRespond(ticket.ID)
	require.NoError(t, err)
	require.Equal(t, DialogRespond, f.page.Snapshot().Dialog)
	require.Equal(t, ticket.ID, f.page.Snapshot().DialogTicketID)

	_, err = f.page.SubmitRespond(context.Background(), "", "")
	require.Error(t, err)
	stored, _ := f.store.Get(ticket.ID)
	require.Equal(t, domain.TicketStatusOpen, stored.Status)
	require.Equal(t, DialogRespond, f.page.Snapshot().Dialog)

	responded, err := f.page.SubmitRespond(context.Background(), "Courier will redeliver tomorrow", "")
	require.NoError(t, err)
	require.Equal(t, domain.TicketStatusResponded, responded.Status)
	require.Equal(t, DialogNone, f.page.Snapshot().Dialog)
	require.Len(t, f.store.Responses(ticket.ID), 1)
	require.Equal(t, filter.Counts{Total: 1, Responded: 1}, f.page.Snapshot().Counts)
}

func TestPageRespondWithoutDialog(t *testing.T) {
	f := newPageFixture(t)
	_, err := f.page.SubmitRespond(context.Background(), "text", "")
	require.ErrorIs(t, err, ErrDialogNotOpen)
	_, err = f.page.SubmitCreate(context.Background())
	require.ErrorIs(t, err, ErrDialogNotOpen)
	_, err = f.page.OpenRespond("missing")
	require.ErrorIs(t, err, ErrTicketNotFound)
}

func TestPageRespondRequiresOpenTicket(t *testing.T) {
	f := newPageFixture(t)
	closed := f.createTicket(t, "ORD-1")
	_, err := f.page.UpdateStatus(context.Background(), closed.ID, domain.TicketStatusClosed)
	require.NoError(t, err)

	_, err = f.page.OpenRespond(closed.ID)
	require.ErrorIs(t, err, ErrRespondNotAllowed)
	require.Equal(t, DialogNone, f.page.Snapshot().Dialog)

	open := f.createTicket(t, "ORD-2")
	_, err = f.page.OpenRespond(open.ID)
	require.NoError(t, err)
	_, err = f.page.UpdateStatus(context.Background(), open.ID, domain.TicketStatusResponded)
	require.NoError(t, err)

	_, err = f.page.SubmitRespond(context.Background(), "Too late", "")
	require.ErrorIs(t, err, ErrRespondNotAllowed)
	require.Empty(t, f.store.Responses(open.ID))
	require.Empty(t, f.store.Responses(closed.ID))
}

func TestStringPreviewCutsOnRunes(t *testing.T) {
	body := strings.Repeat("شحنة ", 40)
	preview := stringPreview(body, 120)
	require.True(t, utf8.ValidString(preview))
	require.Equal(t, 120, utf8.RuneCountInString(preview))
	require.True(t, strings.HasSuffix(preview, "..."))

	require.Equal(t, "قصير", stringPreview("  قصير ", 120))
}

func TestPageOpenViewReplacesDialog(t *testing.T) {
	f := newPageFixture(t)
	ticket := f.createTicket(t, "ORD-10021")

	_, err := f.page.OpenCreate()
	require.NoError(t, err)
	details, err := f.page.OpenView(context.Background(), ticket.ID)
	require.NoError(t, err)
	require.NotNil(t, details.Order)
	require.Equal(t, DialogView, f.page.Snapshot().Dialog)

	require.NoError(t, f.page.CloseDialog())
	require.Equal(t, DialogNone, f.page.Snapshot().Dialog)
}

func TestPageAutoFillPublishesEvent(t *testing.T) {
	f := newPageFixture(t)
	dialog, err := f.page.OpenCreate()
	require.NoError(t, err)
	require.NoError(t, dialog.SetField(FieldReferenceNumber, "REF-7781"))

	state, err := f.page.AutoFill(context.Background())
	require.NoError(t, err)
	require.Equal(t, AutoFillSuccess, state)
	require.Equal(t, []lookupCall{{lookup.KindReference, "REF-7781"}}, f.lookup.Calls())
	require.Equal(t, []events.EventType{events.EventOrderAutoFilled}, f.eventTypes())
	require.Equal(t, "ORD-10021", dialog.Form().OrderNumber)
}

func TestPageToggleSort(t *testing.T) {
	f := newPageFixture(t)
	f.createTicket(t, "B")
	f.createTicket(t, "A")

	spec, err := f.page.ToggleSort(filter.SortOrderNumber)
	require.NoError(t, err)
	require.Equal(t, filter.SortSpec{Field: filter.SortOrderNumber}, spec)
	require.Equal(t, "A", f.page.Snapshot().List.Rows[0].OrderNumber)

	spec, err = f.page.ToggleSort(filter.SortOrderNumber)
	require.NoError(t, err)
	require.True(t, spec.Descending)
	require.Equal(t, "B", f.page.Snapshot().List.Rows[0].OrderNumber)

	_, err = f.page.ToggleSort("nope")
	require.ErrorIs(t, err, ErrInvalidSortField)
}

func TestPageBusyDialogCannotBeReplaced(t *testing.T) {
	f := newPageFixture(t)
	ticket := f.createTicket(t, "ORD-1")

	release := make(chan struct{})
	entered := make(chan struct{})
	blocking := NewRespondDialog(ticket, func(ctx context.Context, id, body string, status domain.TicketStatus) (domain.Ticket, error) {
		close(entered)
		<-release
		return f.page.respondTicket(ctx, id, body, status)
	}, f.notifier, nil)
	f.page.mu.Lock()
	f.page.dialog = RespondDialogState{TicketID: ticket.ID, Dialog: blocking}
	f.page.mu.Unlock()

	done := make(chan error, 1)
	go func() {
		_, err := f.page.SubmitRespond(context.Background(), "on it", domain.TicketStatusClosed)
		done <- err
	}()
	<-entered

	_, err := f.page.OpenCreate()
	require.ErrorIs(t, err, ErrDialogBusy)
	require.ErrorIs(t, f.page.CloseDialog(), ErrDialogBusy)

	close(release)
	require.NoError(t, <-done)
	require.Equal(t, DialogNone, f.page.Snapshot().Dialog)
}
