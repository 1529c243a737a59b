package service

import (
	"context"
	"sync"
	"time"

	"github.com/shopspring/decimal"

	"github.com/spec-kit/shipment-support/internal/domain"
	"github.com/spec-kit/shipment-support/internal/lookup"
	"github.com/spec-kit/shipment-support/internal/notify"
)

var fixedNow = time.Date(2024, 3, 14, 9, 30, 0, 0, time.UTC)

type lookupCall struct {
	Kind  lookup.Kind
	Value string
}

// stubLookup records calls and answers with a fixed order or error. When block
// is set each call waits for it or for the context.
type stubLookup struct {
	mu      sync.Mutex
	calls   []lookupCall
	order   *domain.OrderData
	err     error
	block   chan struct{}
	started chan struct{}
}

func (s *stubLookup) ByOrderNumber(ctx context.Context, v string) (*domain.OrderData, error) {
	return s.answer(ctx, lookup.KindOrderNumber, v)
}

func (s *stubLookup) ByAWB(ctx context.Context, v string) (*domain.OrderData, error) {
	return s.answer(ctx, lookup.KindAWB, v)
}

func (s *stubLookup) ByReference(ctx context.Context, v string) (*domain.OrderData, error) {
	return s.answer(ctx, lookup.KindReference, v)
}

func (s *stubLookup) answer(ctx context.Context, kind lookup.Kind, v string) (*domain.OrderData, error) {
	s.mu.Lock()
	s.calls = append(s.calls, lookupCall{Kind: kind, Value: v})
	block, started := s.block, s.started
	s.mu.Unlock()

	if started != nil {
		started <- struct{}{}
	}
	if block != nil {
		select {
		case <-block:
		case <-ctx.Done():
			return nil, ctx.Err()
		}
	}
	if s.err != nil {
		return nil, s.err
	}
	if s.order == nil {
		return nil, nil
	}
	order := *s.order
	return &order, nil
}

func (s *stubLookup) Calls() []lookupCall {
	s.mu.Lock()
	defer s.mu.Unlock()
	return append([]lookupCall(nil), s.calls...)
}

type recordingNotifier struct {
	mu    sync.Mutex
	items []notify.Notification
}

func (r *recordingNotifier) Notify(_ context.Context, n notify.Notification) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.items = append(r.items, n)
}

func (r *recordingNotifier) Titles() []string {
	r.mu.Lock()
	defer r.mu.Unlock()
	titles := make([]string, 0, len(r.items))
	for _, n := range r.items {
		titles = append(titles, n.Title)
	}
	return titles
}

func sampleOrder() *domain.OrderData {
	return &domain.OrderData{
		OrderNumber:     "ORD-10021",
		AWB:             "DHL123456789",
		ReferenceNumber: "REF-7781",
		CustomerName:    "Sara Al-Qahtani",
		CustomerPhone:   "+966500000001",
		ShippingCompany: "dhl",
		TotalAmount:     decimal.RequireFromString("249.90"),
		Status:          "In Transit",
	}
}

func completeForm(d *CreateTicketDialog) error {
	return d.SetFields(map[FormField]string{
		FieldOrderNumber:     "ORD-10021",
		FieldIssueType:       string(domain.IssueDeliveryDelay),
		FieldShippingCompany: string(domain.CarrierDHL),
		FieldIssueCategory:   string(domain.CategoryShippingError),
		FieldDescription:     "Parcel stuck at hub for a week",
	})
}
