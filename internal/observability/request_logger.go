package observability

import (
	"fmt"
	"runtime/debug"
	"time"

	"github.com/gofiber/fiber/v2"
	"go.uber.org/zap"

	apperrors "github.com/spec-kit/shipment-support/pkg/util"
)

// RequestLogger logs every request and records it in metrics. It runs inside
// the error envelope middleware, so failed requests are logged with their
// mapped status and counted under their error code. Panics become internal
// errors here. Metrics are keyed by the registered route pattern, never the
// raw path, so ticket ids do not grow the counters.
func RequestLogger(logger *zap.Logger, metrics *Metrics) fiber.Handler {
	return func(c *fiber.Ctx) (err error) {
		start := time.Now()
		defer func() {
			if r := recover(); r != nil {
				logger.Error("panic recovered", zap.Any("panic", r), zap.ByteString("stack", debug.Stack()))
				err = apperrors.NewInternalError(fmt.Errorf("panic: %v", r))
			}
			record(c, logger, metrics, err, time.Since(start))
		}()
		return c.Next()
	}
}

func record(c *fiber.Ctx, logger *zap.Logger, metrics *Metrics, err error, duration time.Duration) {
	route := routePattern(c)
	status := c.Response().StatusCode()
	fields := []zap.Field{
		zap.String("method", c.Method()),
		zap.String("route", route),
		zap.String("path", c.Path()),
	}
	if err != nil {
		domainErr := apperrors.ToDomainError(err)
		status = domainErr.HTTPStatus
		metrics.RecordError(route, c.Method(), domainErr.Code)
		fields = append(fields, zap.String("code", domainErr.Code), zap.Error(err))
	}
	metrics.RecordRequest(route, c.Method(), status, duration)
	fields = append(fields, zap.Int("status", status), zap.Duration("duration", duration))

	if status >= fiber.StatusInternalServerError {
		logger.Error("http request failed", fields...)
		return
	}
	logger.Info("http request", fields...)
}

// routePattern returns the matched route such as /support/tickets/:id.
func routePattern(c *fiber.Ctx) string {
	if r := c.Route(); r != nil && r.Path != "" {
		return r.Path
	}
	return "unmatched"
}
