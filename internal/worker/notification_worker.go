package worker

import (
	"context"

	"github.com/spec-kit/shipment-support/internal/events"
	"github.com/spec-kit/shipment-support/internal/observability"
	"github.com/spec-kit/shipment-support/internal/service"
)

// TicketEvents lists the events ticket workers subscribe to.
var TicketEvents = []events.EventType{
	events.EventTicketCreated,
	events.EventTicketStatusChanged,
	events.EventTicketResponded,
	events.EventOrderAutoFilled,
}

// StartNotificationWorker registers notification handlers.
func StartNotificationWorker(notificationService *service.NotificationService) {
	if notificationService == nil {
		return
	}
	notificationService.RegisterHandlers()
}

// StartEventMetrics counts every ticket event in metrics.
func StartEventMetrics(dispatcher events.Dispatcher, metrics *observability.Metrics) {
	if dispatcher == nil || metrics == nil {
		return
	}
	for _, eventType := range TicketEvents {
		dispatcher.Subscribe(eventType, func(_ context.Context, event events.Event) error {
			metrics.RecordEvent(string(event.Type))
			return nil
		})
	}
}
