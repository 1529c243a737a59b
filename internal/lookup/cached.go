package lookup

import (
	"context"
	"encoding/json"
	"errors"
	"strings"
	"time"

	"github.com/redis/go-redis/v9"
	"go.uber.org/zap"

	"github.com/spec-kit/shipment-support/internal/domain"
)

const cacheKeyPrefix = "shipment-support:order:"

// Cached is a read-through Redis cache in front of another Service. Only hits
// are cached; cache failures fall through to the wrapped service.
type Cached struct {
	next   Service
	client redis.Cmdable
	ttl    time.Duration
	logger *zap.Logger
}

// NewCached wraps next with a cache stored in client.
func NewCached(next Service, client redis.Cmdable, ttl time.Duration, logger *zap.Logger) *Cached {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &Cached{next: next, client: client, ttl: ttl, logger: logger}
}

func (c *Cached) ByOrderNumber(ctx context.Context, orderNumber string) (*domain.OrderData, error) {
	return c.get(ctx, KindOrderNumber, orderNumber)
}

func (c *Cached) ByAWB(ctx context.Context, awb string) (*domain.OrderData, error) {
	return c.get(ctx, KindAWB, awb)
}

func (c *Cached) ByReference(ctx context.Context, referenceNumber string) (*domain.OrderData, error) {
	return c.get(ctx, KindReference, referenceNumber)
}

func (c *Cached) get(ctx context.Context, kind Kind, value string) (*domain.OrderData, error) {
	key := cacheKey(kind, value)

	raw, err := c.client.Get(ctx, key).Bytes()
	switch {
	case err == nil:
		var order domain.OrderData
		if jsonErr := json.Unmarshal(raw, &order); jsonErr == nil {
			return &order, nil
		}
		c.logger.Warn("discarding corrupt cached order", zap.String("key", key))
	case !errors.Is(err, redis.Nil):
		c.logger.Warn("order cache read failed", zap.String("key", key), zap.Error(err))
	}

	order, err := By(ctx, c.next, kind, value)
	if err != nil || order == nil {
		return order, err
	}

	payload, err := json.Marshal(order)
	if err != nil {
		return order, nil
	}
	if err := c.client.Set(ctx, key, payload, c.ttl).Err(); err != nil {
		c.logger.Warn("order cache write failed", zap.String("key", key), zap.Error(err))
	}
	return order, nil
}

func cacheKey(kind Kind, value string) string {
	return cacheKeyPrefix + string(kind) + ":" + strings.ToLower(strings.TrimSpace(value))
}
