package service

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/stretchr/testify/require"

	"github.com/spec-kit/shipment-support/internal/domain"
	"github.com/spec-kit/shipment-support/internal/lookup"
)

func TestRespondDialogOptions(t *testing.T) {
	d := NewRespondDialog(domain.Ticket{ID: "1", TicketID: "TK-001"}, nil, nil, nil)
	require.Equal(t, domain.TicketStatusResponded, d.DefaultStatus())
	require.Equal(t, domain.TicketStatuses, d.StatusOptions())
}

func TestRespondDialogRejectsEmptyText(t *testing.T) {
	notifier := &recordingNotifier{}
	called := false
	d := NewRespondDialog(domain.Ticket{ID: "1"}, func(context.Context, string, string, domain.TicketStatus) (domain.Ticket, error) {
		called = true
		return domain.Ticket{}, nil
	}, notifier, nil)

	_, err := d.Submit(context.Background(), "   ", domain.TicketStatusClosed)
	var verrs ValidationErrors
	require.ErrorAs(t, err, &verrs)
	require.False(t, called)
	require.Equal(t, []string{"Response required"}, notifier.Titles())
}

func TestRespondDialogDefaultsStatus(t *testing.T) {
	var got domain.TicketStatus
	d := NewRespondDialog(domain.Ticket{ID: "1", TicketID: "TK-001"}, func(_ context.Context, _, _ string, status domain.TicketStatus) (domain.Ticket, error) {
		got = status
		return domain.Ticket{TicketID: "TK-001", Status: status}, nil
	}, nil, nil)

	ticket, err := d.Submit(context.Background(), "Courier rescheduled", "")
	require.NoError(t, err)
	require.Equal(t, domain.TicketStatusResponded, got)
	require.Equal(t, domain.TicketStatusResponded, ticket.Status)

	_, err = d.Submit(context.Background(), "hello", "Escalated")
	require.Error(t, err)
}

func TestRespondDialogFailureNotifies(t *testing.T) {
	notifier := &recordingNotifier{}
	d := NewRespondDialog(domain.Ticket{ID: "1"}, func(context.Context, string, string, domain.TicketStatus) (domain.Ticket, error) {
		return domain.Ticket{}, errors.New("down")
	}, notifier, nil)

	_, err := d.Submit(context.Background(), "text", domain.TicketStatusClosed)
	require.Error(t, err)
	require.False(t, d.Pending())
	require.Equal(t, []string{"Response not sent"}, notifier.Titles())
}

func TestBuildTicketDetails(t *testing.T) {
	stub := &stubLookup{order: sampleOrder()}
	ticket := domain.Ticket{ID: "1", TicketID: "TK-001", OrderNumber: "ORD-10021", AWB: "DHL1", Status: domain.TicketStatusOpen}

	details := BuildTicketDetails(context.Background(), ticket, nil, stub, time.Second, nil)
	require.NotNil(t, details.Order)
	require.True(t, details.CanRespond)
	require.Equal(t, []domain.TicketStatus{domain.TicketStatusResponded, domain.TicketStatusClosed}, details.StatusShortcuts)
	require.Equal(t, []lookupCall{{lookup.KindOrderNumber, "ORD-10021"}}, stub.Calls())
}

func TestBuildTicketDetailsFallsBackToAWB(t *testing.T) {
	stub := &stubLookup{}
	ticket := domain.Ticket{ID: "1", OrderNumber: "ORD-X", AWB: "AWB-X", Status: domain.TicketStatusClosed}

	details := BuildTicketDetails(context.Background(), ticket, nil, stub, time.Second, nil)
	require.Nil(t, details.Order)
	require.False(t, details.CanRespond)
	require.Equal(t, []lookupCall{{lookup.KindOrderNumber, "ORD-X"}, {lookup.KindAWB, "AWB-X"}}, stub.Calls())
}

func TestBuildTicketDetailsIgnoresLookupErrors(t *testing.T) {
	details := BuildTicketDetails(context.Background(), domain.Ticket{OrderNumber: "ORD"}, nil, &stubLookup{err: errors.New("down")}, 0, nil)
	require.Nil(t, details.Order)
}
