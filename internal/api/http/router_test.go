package http

import (
	"bytes"
	"encoding/json"
	"io"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/gofiber/fiber/v2"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"

	"github.com/spec-kit/shipment-support/internal/api/dto"
	"github.com/spec-kit/shipment-support/internal/api/http/handlers"
	"github.com/spec-kit/shipment-support/internal/domain"
	"github.com/spec-kit/shipment-support/internal/events"
	"github.com/spec-kit/shipment-support/internal/lookup"
	"github.com/spec-kit/shipment-support/internal/notify"
	"github.com/spec-kit/shipment-support/internal/observability"
	"github.com/spec-kit/shipment-support/internal/repository"
	"github.com/spec-kit/shipment-support/internal/service"
	"github.com/spec-kit/shipment-support/internal/worker"
)

type envelope[T any] struct {
	Data  T `json:"data"`
	Error *struct {
		Code    string         `json:"code"`
		Message string         `json:"message"`
		Details map[string]any `json:"details"`
	} `json:"error"`
}

func newTestApp(t *testing.T) (*fiber.App, *observability.Metrics) {
	t.Helper()
	logger := zap.NewNop()
	orders := lookup.NewDirectory(domain.OrderData{
		OrderNumber:     "ORD-10021",
		AWB:             "DHL5550001",
		ReferenceNumber: "REF-7781",
		CustomerName:    "Sara Al-Qahtani",
		CustomerPhone:   "+966500000001",
		ShippingCompany: "DHL",
		TotalAmount:     decimal.RequireFromString("249.90"),
	})
	metrics := observability.NewMetrics()
	dispatcher := events.NewInMemoryDispatcher()
	worker.StartEventMetrics(dispatcher, metrics)
	feed := notify.NewFeed(20)
	page := service.NewPageController(service.PageDependencies{
		Store:      repository.NewTicketStore(),
		Lookup:     orders,
		Notifier:   feed,
		Dispatcher: dispatcher,
		Logger:     logger,
	}, service.PageConfig{LookupTimeout: time.Second, CreatedBy: "Support Agent"})

	app := fiber.New()
	RegisterMiddlewares(app, logger, metrics, 5*time.Second)
	RegisterRoutes(app, RouteConfig{
		Health:  handlers.NewHealthHandler("shipment-support", "test", nil, nil, metrics),
		Tickets: handlers.NewTicketsHandler(page, feed),
		Dialogs: handlers.NewDialogsHandler(page),
	})
	return app, metrics
}

func do[T any](t *testing.T, app *fiber.App, method, path string, body any) (int, envelope[T]) {
	t.Helper()
	var reader io.Reader
	if body != nil {
		raw, err := json.Marshal(body)
		require.NoError(t, err)
		reader = bytes.NewReader(raw)
	}
	req := httptest.NewRequest(method, path, reader)
	if body != nil {
		req.Header.Set("Content-Type", "application/json")
	}
	resp, err := app.Test(req, -1)
	require.NoError(t, err)
	defer resp.Body.Close()

	var out envelope[T]
	raw, err := io.ReadAll(resp.Body)
	require.NoError(t, err)
	if len(raw) > 0 {
		require.NoError(t, json.Unmarshal(raw, &out))
	}
	return resp.StatusCode, out
}

func createTicket(t *testing.T, app *fiber.App) dto.TicketResponse {
	t.Helper()
	status, _ := do[dto.FormResponse](t, app, http.MethodPost, "/support/dialogs/create", nil)
	require.Equal(t, http.StatusCreated, status)

	status, _ = do[dto.FormResponse](t, app, http.MethodPatch, "/support/dialogs/create", dto.FormUpdateRequest{Fields: map[string]string{
		"awb":           "DHL5550001",
		"issueType":     string(domain.IssueDeliveryDelay),
		"issueCategory": string(domain.CategoryShippingError),
		"description":   "No movement for five days",
	}})
	require.Equal(t, http.StatusOK, status)

	status, form := do[dto.FormResponse](t, app, http.MethodPost, "/support/dialogs/create/autofill", nil)
	require.Equal(t, http.StatusOK, status)
	require.Equal(t, "success", form.Data.AutoFill)
	require.Equal(t, "ORD-10021", form.Data.OrderNumber)
	require.Equal(t, domain.CarrierDHL, form.Data.ShippingCompany)

	status, created := do[dto.TicketResponse](t, app, http.MethodPost, "/support/dialogs/create/submit", nil)
	require.Equal(t, http.StatusCreated, status)
	return created.Data
}

func TestHealthEndpoints(t *testing.T) {
	app, _ := newTestApp(t)

	status, _ := do[map[string]any](t, app, http.MethodGet, "/health/live", nil)
	require.Equal(t, http.StatusOK, status)

	req := httptest.NewRequest(http.MethodGet, "/health/ready", nil)
	resp, err := app.Test(req, -1)
	require.NoError(t, err)
	var body map[string]any
	require.NoError(t, json.NewDecoder(resp.Body).Decode(&body))
	require.Equal(t, http.StatusOK, resp.StatusCode)
	require.Equal(t, "ready", body["status"])
	require.Equal(t, map[string]any{"postgres": "disabled", "redis": "disabled"}, body["dependencies"])
}

func TestCreateTicketOverHTTP(t *testing.T) {
	app, metrics := newTestApp(t)
	ticket := createTicket(t, app)
	require.Equal(t, "TK-001", ticket.TicketID)
	require.Equal(t, domain.TicketStatusOpen, ticket.Status)
	require.Equal(t, domain.TicketPriorityMedium, ticket.Priority)

	status, page := do[dto.PageResponse](t, app, http.MethodGet, "/support/tickets", nil)
	require.Equal(t, http.StatusOK, status)
	require.Equal(t, "none", page.Data.Dialog)
	require.Len(t, page.Data.Rows, 1)
	require.Equal(t, []string{"view", "respond"}, page.Data.Rows[0].Actions)
	require.Equal(t, dto.CountsResponse{Total: 1, Open: 1}, page.Data.Counts)

	status, toasts := do[[]dto.NotificationResponse](t, app, http.MethodGet, "/support/notifications", nil)
	require.Equal(t, http.StatusOK, status)
	titles := make([]string, 0, len(toasts.Data))
	for _, n := range toasts.Data {
		titles = append(titles, n.Title)
	}
	require.Equal(t, []string{"Order found", "Ticket created"}, titles)

	_, toasts = do[[]dto.NotificationResponse](t, app, http.MethodGet, "/support/notifications", nil)
	require.Empty(t, toasts.Data)

	snap := metrics.Snapshot()
	require.Equal(t, int64(1), snap.Events[string(events.EventTicketCreated)])
	require.Equal(t, int64(1), snap.Events[string(events.EventOrderAutoFilled)])
}

func TestSubmitInvalidFormReturnsValidationError(t *testing.T) {
	app, _ := newTestApp(t)
	do[dto.FormResponse](t, app, http.MethodPost, "/support/dialogs/create", nil)

	status, body := do[any](t, app, http.MethodPost, "/support/dialogs/create/submit", nil)
	require.Equal(t, http.StatusBadRequest, status)
	require.Equal(t, "VALIDATION_FAILED", body.Error.Code)
	require.Contains(t, body.Error.Details, "description")
}

func TestUnknownFormFieldRejected(t *testing.T) {
	app, _ := newTestApp(t)
	do[dto.FormResponse](t, app, http.MethodPost, "/support/dialogs/create", nil)

	status, body := do[any](t, app, http.MethodPatch, "/support/dialogs/create", dto.FormUpdateRequest{Fields: map[string]string{"color": "red"}})
	require.Equal(t, http.StatusBadRequest, status)
	require.Equal(t, "VALIDATION_FAILED", body.Error.Code)
}

func TestRespondFlowOverHTTP(t *testing.T) {
	app, _ := newTestApp(t)
	ticket := createTicket(t, app)

	status, dialog := do[dto.RespondDialogResponse](t, app, http.MethodPost, "/support/tickets/"+ticket.ID+"/respond", nil)
	require.Equal(t, http.StatusCreated, status)
	require.Equal(t, domain.TicketStatusResponded, dialog.Data.DefaultStatus)

	status, body := do[any](t, app, http.MethodPost, "/support/dialogs/respond/submit", dto.RespondRequest{Response: " "})
	require.Equal(t, http.StatusBadRequest, status)
	require.Contains(t, body.Error.Details, "response")

	status, responded := do[dto.TicketResponse](t, app, http.MethodPost, "/support/dialogs/respond/submit", dto.RespondRequest{Response: "Redelivery booked"})
	require.Equal(t, http.StatusOK, status)
	require.Equal(t, domain.TicketStatusResponded, responded.Data.Status)

	status, details := do[dto.TicketDetailsResponse](t, app, http.MethodGet, "/support/tickets/"+ticket.ID, nil)
	require.Equal(t, http.StatusOK, status)
	require.Len(t, details.Data.Responses, 1)
	require.NotNil(t, details.Data.Order)
	require.Equal(t, "249.9", details.Data.Order.TotalAmount.String())
	require.False(t, details.Data.CanRespond)
}

func TestFiltersTabsAndStatus(t *testing.T) {
	app, _ := newTestApp(t)
	ticket := createTicket(t, app)

	status, page := do[dto.PageResponse](t, app, http.MethodPut, "/support/tab", dto.TabRequest{Tab: "closed"})
	require.Equal(t, http.StatusOK, status)
	require.Empty(t, page.Data.Rows)
	require.Equal(t, 1, page.Data.Counts.Total)

	status, updated := do[dto.TicketResponse](t, app, http.MethodPut, "/support/tickets/"+ticket.ID+"/status", dto.StatusRequest{Status: domain.TicketStatusClosed})
	require.Equal(t, http.StatusOK, status)
	require.Equal(t, domain.TicketStatusClosed, updated.Data.Status)

	_, page = do[dto.PageResponse](t, app, http.MethodGet, "/support/tickets", nil)
	require.Len(t, page.Data.Rows, 1)
	require.Equal(t, dto.CountsResponse{Total: 1, Closed: 1}, page.Data.Counts)

	status, page = do[dto.PageResponse](t, app, http.MethodPut, "/support/filters", dto.CriteriaRequest{AWB: "nomatch"})
	require.Equal(t, http.StatusOK, status)
	require.Zero(t, page.Data.Counts.Total)

	status, _ = do[any](t, app, http.MethodPut, "/support/filters", dto.CriteriaRequest{FromDate: "14/03/2024"})
	require.Equal(t, http.StatusBadRequest, status)

	status, page = do[dto.PageResponse](t, app, http.MethodDelete, "/support/filters", nil)
	require.Equal(t, http.StatusOK, status)
	require.Equal(t, 1, page.Data.Counts.Total)

	status, page = do[dto.PageResponse](t, app, http.MethodPost, "/support/sort", dto.SortRequest{Field: "priority"})
	require.Equal(t, http.StatusOK, status)
	require.Equal(t, "priority", page.Data.Sort.Field)

	status, _ = do[any](t, app, http.MethodPut, "/support/tab", dto.TabRequest{Tab: "archived"})
	require.Equal(t, http.StatusBadRequest, status)
}

func TestUnknownTicketReturnsNotFound(t *testing.T) {
	app, _ := newTestApp(t)

	status, body := do[any](t, app, http.MethodPut, "/support/tickets/nope/status", dto.StatusRequest{Status: domain.TicketStatusClosed})
	require.Equal(t, http.StatusNotFound, status)
	require.Equal(t, "NOT_FOUND", body.Error.Code)

	status, _ = do[any](t, app, http.MethodPost, "/support/tickets/nope/view", nil)
	require.Equal(t, http.StatusNotFound, status)
}

func TestDialogConflicts(t *testing.T) {
	app, _ := newTestApp(t)

	status, body := do[any](t, app, http.MethodPost, "/support/dialogs/create/submit", nil)
	require.Equal(t, http.StatusConflict, status)
	require.Equal(t, "CONFLICT", body.Error.Code)

	status, _ = do[any](t, app, http.MethodDelete, "/support/dialogs", nil)
	require.Equal(t, http.StatusNoContent, status)
}

func TestAttachmentsOverHTTP(t *testing.T) {
	app, _ := newTestApp(t)
	do[dto.FormResponse](t, app, http.MethodPost, "/support/dialogs/create", nil)

	status, resp := do[dto.AttachmentsResponse](t, app, http.MethodPost, "/support/dialogs/create/attachments", dto.AttachmentsRequest{Files: []dto.AttachmentFile{
		{Name: "label.pdf", Size: 2048},
		{Name: "huge.mov", Size: service.DefaultMaxAttachmentBytes + 1},
	}})
	require.Equal(t, http.StatusOK, status)
	require.Equal(t, []string{"label.pdf"}, resp.Data.Accepted)
	require.Equal(t, []string{"label.pdf"}, resp.Data.Form.Attachments)

	status, form := do[dto.FormResponse](t, app, http.MethodDelete, "/support/dialogs/create/attachments/label.pdf", nil)
	require.Equal(t, http.StatusOK, status)
	require.Empty(t, form.Data.Attachments)

	status, _ = do[any](t, app, http.MethodDelete, "/support/dialogs/create/attachments/label.pdf", nil)
	require.Equal(t, http.StatusNotFound, status)
}

func TestDialogTicketIDSurvivesLaterRequests(t *testing.T) {
	app, _ := newTestApp(t)
	ticket := createTicket(t, app)

	status, _ := do[dto.TicketDetailsResponse](t, app, http.MethodPost, "/support/tickets/"+ticket.ID+"/view", nil)
	require.Equal(t, http.StatusOK, status)

	filler := strings.Repeat("z", len(ticket.ID))
	for i := 0; i < 50; i++ {
		do[any](t, app, http.MethodGet, "/support/tickets/"+filler, nil)
		do[any](t, app, http.MethodGet, "/health/live?pad="+filler, nil)
	}

	_, page := do[dto.PageResponse](t, app, http.MethodGet, "/support/tickets", nil)
	require.Equal(t, "view", page.Data.Dialog)
	require.Equal(t, ticket.ID, page.Data.DialogTicketID)
}

func TestRespondToClosedTicketConflicts(t *testing.T) {
	app, _ := newTestApp(t)
	ticket := createTicket(t, app)

	status, _ := do[dto.TicketResponse](t, app, http.MethodPut, "/support/tickets/"+ticket.ID+"/status", dto.StatusRequest{Status: domain.TicketStatusClosed})
	require.Equal(t, http.StatusOK, status)

	status, body := do[any](t, app, http.MethodPost, "/support/tickets/"+ticket.ID+"/respond", nil)
	require.Equal(t, http.StatusConflict, status)
	require.Equal(t, "CONFLICT", body.Error.Code)
}

func TestErrorMetricsKeyedByRoute(t *testing.T) {
	app, metrics := newTestApp(t)

	for _, id := range []string{"a", "b", "c"} {
		status, _ := do[any](t, app, http.MethodGet, "/support/tickets/missing-"+id, nil)
		require.Equal(t, http.StatusNotFound, status)
	}

	snap := metrics.Snapshot()
	require.Equal(t, map[string]int64{"/support/tickets/:id|GET|NOT_FOUND": 3}, snap.Errors)
	for key := range snap.Requests {
		require.NotContains(t, key, "missing-")
	}
}
