package http

import (
	"github.com/gofiber/fiber/v2"

	"github.com/spec-kit/shipment-support/internal/api/http/handlers"
)

// RouteConfig bundles dependencies for route registration.
type RouteConfig struct {
	Health  *handlers.HealthHandler
	Tickets *handlers.TicketsHandler
	Dialogs *handlers.DialogsHandler
}

// RegisterRoutes wires HTTP routes.
func RegisterRoutes(app *fiber.App, cfg RouteConfig) {
	app.Get("/health/live", cfg.Health.Live)
	app.Get("/health/ready", cfg.Health.Ready)
	app.Get("/metrics", cfg.Health.Metrics)

	support := app.Group("/support")
	support.Get("/options", cfg.Tickets.Options)
	support.Get("/notifications", cfg.Tickets.Notifications)

	support.Get("/tickets", cfg.Tickets.ListTickets)
	support.Put("/filters", cfg.Tickets.SetFilters)
	support.Delete("/filters", cfg.Tickets.ResetFilters)
	support.Put("/tab", cfg.Tickets.SetTab)
	support.Post("/sort", cfg.Tickets.ToggleSort)

	support.Get("/tickets/:id", cfg.Tickets.GetTicket)
	support.Post("/tickets/:id/view", cfg.Tickets.ViewTicket)
	support.Put("/tickets/:id/status", cfg.Tickets.UpdateStatus)
	support.Post("/tickets/:id/respond", cfg.Dialogs.OpenRespond)

	dialogs := support.Group("/dialogs")
	dialogs.Delete("", cfg.Dialogs.Close)
	dialogs.Post("/create", cfg.Dialogs.OpenCreate)
	dialogs.Get("/create", cfg.Dialogs.GetCreate)
	dialogs.Patch("/create", cfg.Dialogs.UpdateCreate)
	dialogs.Post("/create/autofill", cfg.Dialogs.AutoFill)
	dialogs.Delete("/create/autofill", cfg.Dialogs.CancelAutoFill)
	dialogs.Post("/create/attachments", cfg.Dialogs.AddAttachments)
	dialogs.Delete("/create/attachments/:name", cfg.Dialogs.RemoveAttachment)
	dialogs.Post("/create/submit", cfg.Dialogs.SubmitCreate)
	dialogs.Post("/respond/submit", cfg.Dialogs.SubmitRespond)
}
