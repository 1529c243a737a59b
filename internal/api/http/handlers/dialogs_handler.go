package handlers

import (
	"net/http"

	"github.com/gofiber/fiber/v2"

	"github.com/spec-kit/shipment-support/internal/api/dto"
	"github.com/spec-kit/shipment-support/internal/service"
	apperrors "github.com/spec-kit/shipment-support/pkg/util"
)

// DialogsHandler drives the create and respond dialogs.
type DialogsHandler struct {
	page *service.PageController
}

// NewDialogsHandler constructs handler.
func NewDialogsHandler(page *service.PageController) *DialogsHandler {
	return &DialogsHandler{page: page}
}

// OpenCreate POST /support/dialogs/create.
func (h *DialogsHandler) OpenCreate(c *fiber.Ctx) error {
	dialog, err := h.page.OpenCreate()
	if err != nil {
		return serviceError(err)
	}
	return c.Status(http.StatusCreated).JSON(fiber.Map{"data": formResponse(dialog)})
}

// GetCreate GET /support/dialogs/create.
func (h *DialogsHandler) GetCreate(c *fiber.Ctx) error {
	dialog, err := h.page.CreateDialog()
	if err != nil {
		return serviceError(err)
	}
	return c.JSON(fiber.Map{"data": formResponse(dialog)})
}

// UpdateCreate PATCH /support/dialogs/create.
func (h *DialogsHandler) UpdateCreate(c *fiber.Ctx) error {
	var req dto.FormUpdateRequest
	if err := c.BodyParser(&req); err != nil {
		return apperrors.NewValidationError("invalid payload", nil)
	}
	dialog, err := h.page.CreateDialog()
	if err != nil {
		return serviceError(err)
	}
	values := make(map[service.FormField]string, len(req.Fields))
	for field, value := range req.Fields {
		values[service.FormField(field)] = value
	}
	if err := dialog.SetFields(values); err != nil {
		return serviceError(err)
	}
	return c.JSON(fiber.Map{"data": formResponse(dialog)})
}

// AutoFill POST /support/dialogs/create/autofill.
func (h *DialogsHandler) AutoFill(c *fiber.Ctx) error {
	if _, err := h.page.AutoFill(c.UserContext()); err != nil {
		return serviceError(err)
	}
	return h.GetCreate(c)
}

// CancelAutoFill DELETE /support/dialogs/create/autofill.
func (h *DialogsHandler) CancelAutoFill(c *fiber.Ctx) error {
	dialog, err := h.page.CreateDialog()
	if err != nil {
		return serviceError(err)
	}
	dialog.CancelAutoFill()
	return c.JSON(fiber.Map{"data": formResponse(dialog)})
}

// AddAttachments POST /support/dialogs/create/attachments.
func (h *DialogsHandler) AddAttachments(c *fiber.Ctx) error {
	var req dto.AttachmentsRequest
	if err := c.BodyParser(&req); err != nil {
		return apperrors.NewValidationError("invalid payload", nil)
	}
	dialog, err := h.page.CreateDialog()
	if err != nil {
		return serviceError(err)
	}
	files := make([]service.FileInfo, 0, len(req.Files))
	for _, f := range req.Files {
		files = append(files, service.FileInfo{Name: f.Name, Size: f.Size})
	}
	accepted := dialog.AddAttachments(c.UserContext(), files)
	if accepted == nil {
		accepted = []string{}
	}
	return c.JSON(fiber.Map{"data": dto.AttachmentsResponse{Accepted: accepted, Form: formResponse(dialog)}})
}

// RemoveAttachment DELETE /support/dialogs/create/attachments/:name.
func (h *DialogsHandler) RemoveAttachment(c *fiber.Ctx) error {
	dialog, err := h.page.CreateDialog()
	if err != nil {
		return serviceError(err)
	}
	if !dialog.RemoveAttachment(c.Params("name")) {
		return apperrors.NewNotFound("attachment", map[string]any{"name": c.Params("name")})
	}
	return c.JSON(fiber.Map{"data": formResponse(dialog)})
}

// SubmitCreate POST /support/dialogs/create/submit.
func (h *DialogsHandler) SubmitCreate(c *fiber.Ctx) error {
	ticket, err := h.page.SubmitCreate(c.UserContext())
	if err != nil {
		return serviceError(err)
	}
	return c.Status(http.StatusCreated).JSON(fiber.Map{"data": ticketResponse(ticket)})
}

// OpenRespond POST /support/tickets/:id/respond.
func (h *DialogsHandler) OpenRespond(c *fiber.Ctx) error {
	dialog, err := h.page.OpenRespond(c.Params("id"))
	if err != nil {
		return serviceError(err)
	}
	return c.Status(http.StatusCreated).JSON(fiber.Map{"data": respondDialogResponse(dialog)})
}

// SubmitRespond POST /support/dialogs/respond/submit.
func (h *DialogsHandler) SubmitRespond(c *fiber.Ctx) error {
	var req dto.RespondRequest
	if err := c.BodyParser(&req); err != nil {
		return apperrors.NewValidationError("invalid payload", nil)
	}
	ticket, err := h.page.SubmitRespond(c.UserContext(), req.Response, req.Status)
	if err != nil {
		return serviceError(err)
	}
	return c.JSON(fiber.Map{"data": ticketResponse(ticket)})
}

// Close DELETE /support/dialogs.
func (h *DialogsHandler) Close(c *fiber.Ctx) error {
	if err := h.page.CloseDialog(); err != nil {
		return serviceError(err)
	}
	return c.SendStatus(http.StatusNoContent)
}
