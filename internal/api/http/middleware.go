package http

import (
	"context"
	"time"

	"github.com/gofiber/fiber/v2"
	"go.uber.org/zap"

	"github.com/spec-kit/shipment-support/internal/observability"
	apperrors "github.com/spec-kit/shipment-support/pkg/util"
)

// RegisterMiddlewares installs, outermost first, the request deadline, the
// JSON error envelope and the request logger.
func RegisterMiddlewares(app *fiber.App, logger *zap.Logger, metrics *observability.Metrics, timeout time.Duration) {
	if timeout > 0 {
		app.Use(deadline(timeout))
	}
	app.Use(errorEnvelope)
	app.Use(observability.RequestLogger(logger, metrics))
}

// deadline bounds order lookups and submissions started by a request.
func deadline(timeout time.Duration) fiber.Handler {
	return func(c *fiber.Ctx) error {
		ctx, cancel := context.WithTimeout(c.UserContext(), timeout)
		defer cancel()
		c.SetUserContext(ctx)
		return c.Next()
	}
}

// errorEnvelope renders any handler error as {"error": {code, message, details}}.
func errorEnvelope(c *fiber.Ctx) error {
	err := c.Next()
	if err == nil {
		return nil
	}
	domainErr := apperrors.ToDomainError(err)
	body := fiber.Map{
		"code":    domainErr.Code,
		"message": domainErr.Message,
	}
	if len(domainErr.Details) > 0 {
		body["details"] = domainErr.Details
	}
	return c.Status(domainErr.HTTPStatus).JSON(fiber.Map{"error": body})
}
