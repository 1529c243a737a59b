package service

import (
	"context"
	"errors"
	"fmt"
	"sync"
	"time"

	"go.uber.org/zap"

	"github.com/spec-kit/shipment-support/internal/domain"
	"github.com/spec-kit/shipment-support/internal/lookup"
	"github.com/spec-kit/shipment-support/internal/notify"
)

// AutoFillState is the state of the create dialog's order lookup.
type AutoFillState string

const (
	AutoFillIdle     AutoFillState = "idle"
	AutoFillFetching AutoFillState = "fetching"
	AutoFillSuccess  AutoFillState = "success"
	AutoFillNotFound AutoFillState = "not_found"
	AutoFillFailed   AutoFillState = "failed"
)

// AutoFillController runs one order lookup at a time on behalf of a form.
type AutoFillController struct {
	lookup   lookup.Service
	notifier notify.Notifier
	logger   *zap.Logger
	timeout  time.Duration

	mu     sync.Mutex
	state  AutoFillState
	gen    uint64
	cancel context.CancelFunc
	kind   lookup.Kind
}

// NewAutoFillController creates a controller. A zero timeout leaves lookups
// bounded only by the caller's context.
func NewAutoFillController(svc lookup.Service, notifier notify.Notifier, timeout time.Duration, logger *zap.Logger) *AutoFillController {
	if notifier == nil {
		notifier = notify.Discard
	}
	if logger == nil {
		logger = zap.NewNop()
	}
	return &AutoFillController{
		lookup:   svc,
		notifier: notifier,
		logger:   logger,
		timeout:  timeout,
		state:    AutoFillIdle,
	}
}

// State returns the current state.
func (c *AutoFillController) State() AutoFillState {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.state
}

// LastKind returns the identifier kind used by the most recent lookup.
func (c *AutoFillController) LastKind() lookup.Kind {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.kind
}

// Trigger looks up the order for ids. It calls exactly one lookup method, the
// first of order number, AWB and reference that is present. The returned
// order is non-nil only when the caller should apply it to its form. Lookup
// failures are reported through the notifier, not returned.
func (c *AutoFillController) Trigger(ctx context.Context, ids Identifiers) (*domain.OrderData, AutoFillState, error) {
	kind, value, ok := ids.first()

	c.mu.Lock()
	if c.state == AutoFillFetching {
		c.mu.Unlock()
		return nil, AutoFillFetching, ErrAutoFillInProgress
	}
	if !ok {
		state := c.state
		c.mu.Unlock()
		return nil, state, nil
	}
	var (
		lookupCtx context.Context
		cancel    context.CancelFunc
	)
	if c.timeout > 0 {
		lookupCtx, cancel = context.WithTimeout(ctx, c.timeout)
	} else {
		lookupCtx, cancel = context.WithCancel(ctx)
	}
	c.gen++
	gen := c.gen
	c.cancel = cancel
	c.kind = kind
	c.state = AutoFillFetching
	c.mu.Unlock()
	defer cancel()

	order, err := lookup.By(lookupCtx, c.lookup, kind, value)

	c.mu.Lock()
	if c.gen != gen {
		// cancelled or invalidated while the lookup was running
		state := c.state
		c.mu.Unlock()
		return nil, state, nil
	}
	c.cancel = nil
	var n notify.Notification
	switch {
	case err != nil:
		c.state = AutoFillFailed
		n = failureNotification(err)
		c.logger.Warn("order lookup failed", zap.String("kind", string(kind)), zap.String("value", value), zap.Error(err))
		order = nil
	case order == nil || order.OrderNumber == "":
		c.state = AutoFillNotFound
		n = notify.Notification{
			Title:       "Order not found",
			Description: fmt.Sprintf("No order matches %s %q.", kindLabel(kind), value),
			Severity:    notify.SeverityWarning,
		}
		order = nil
	default:
		c.state = AutoFillSuccess
		n = notify.Notification{
			Title:       "Order found",
			Description: fmt.Sprintf("Ticket details were filled from order %s.", order.OrderNumber),
			Severity:    notify.SeveritySuccess,
		}
	}
	state := c.state
	c.mu.Unlock()

	c.notifier.Notify(ctx, n)
	return order, state, nil
}

// Cancel abandons an in-flight lookup and returns to Idle.
func (c *AutoFillController) Cancel() {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.resetLocked()
}

// Invalidate is called whenever an identifier field changes: any earlier
// result no longer describes the form, and a running lookup is abandoned.
func (c *AutoFillController) Invalidate() {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.resetLocked()
}

func (c *AutoFillController) resetLocked() {
	if c.state == AutoFillFetching {
		c.gen++
		if c.cancel != nil {
			c.cancel()
			c.cancel = nil
		}
	}
	c.state = AutoFillIdle
}

func failureNotification(err error) notify.Notification {
	if errors.Is(err, context.DeadlineExceeded) {
		return notify.Notification{
			Title:       "Lookup timed out",
			Description: "The order service did not respond in time. Please try again.",
			Severity:    notify.SeverityError,
		}
	}
	return notify.Notification{
		Title:       "Lookup failed",
		Description: "Could not fetch order details. Please try again.",
		Severity:    notify.SeverityError,
	}
}

func kindLabel(kind lookup.Kind) string {
	switch kind {
	case lookup.KindOrderNumber:
		return "order number"
	case lookup.KindAWB:
		return "AWB"
	default:
		return "reference number"
	}
}
