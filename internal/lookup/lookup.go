// Package lookup resolves partial order identifiers to order data.
package lookup

import (
	"context"

	"github.com/spec-kit/shipment-support/internal/domain"
)

// Service resolves an order from one identifier. A nil order with a nil error
// means no order matched.
type Service interface {
	ByOrderNumber(ctx context.Context, orderNumber string) (*domain.OrderData, error)
	ByAWB(ctx context.Context, awb string) (*domain.OrderData, error)
	ByReference(ctx context.Context, referenceNumber string) (*domain.OrderData, error)
}

// Kind names the identifier a lookup was made by.
type Kind string

const (
	KindOrderNumber Kind = "order_number"
	KindAWB         Kind = "awb"
	KindReference   Kind = "reference"
)

// By dispatches to the Service method matching kind.
func By(ctx context.Context, svc Service, kind Kind, value string) (*domain.OrderData, error) {
	switch kind {
	case KindOrderNumber:
		return svc.ByOrderNumber(ctx, value)
	case KindAWB:
		return svc.ByAWB(ctx, value)
	default:
		return svc.ByReference(ctx, value)
	}
}
