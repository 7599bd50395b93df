package cache

import (
	"context"
	"encoding/json"
	"errors"
	"time"

	"github.com/redis/go-redis/v9"
	"go.uber.org/zap"

	"vehicle_finance/internal/logger"
	"vehicle_finance/internal/metrics"
	"vehicle_finance/internal/models"
	"vehicle_finance/internal/ports"
)

const (
	keyPrefix  = "contract:"
	DefaultTTL = 10 * time.Minute
)

// Contracts is a read-through cache for contract detail. Contracts are
// never updated after insert, so entries only expire by TTL. Redis failures
// fall back to the wrapped reader.
type Contracts struct {
	next ports.ContractReader
	rdb  redis.Cmdable
	ttl  time.Duration
	log  *zap.Logger
}

func NewContracts(next ports.ContractReader, rdb redis.Cmdable, ttl time.Duration, log *zap.Logger) *Contracts {
	if ttl <= 0 {
		ttl = DefaultTTL
	}
	return &Contracts{next: next, rdb: rdb, ttl: ttl, log: logger.OrNop(log)}
}

func (c *Contracts) Find(ctx context.Context, f ports.ContractFilter) ([]models.Contract, error) {
	return c.next.Find(ctx, f)
}

func (c *Contracts) FindByID(ctx context.Context, id string) (*models.Contract, error) {
	key := keyPrefix + id

	raw, err := c.rdb.Get(ctx, key).Bytes()
	switch {
	case err == nil:
		var out models.Contract
		if uerr := json.Unmarshal(raw, &out); uerr == nil {
			metrics.CacheLookups.WithLabelValues("hit").Inc()
			return &out, nil
		}
		c.log.Warn("[CACHE][DECODE] dropping corrupt entry", zap.String("key", key))
		c.rdb.Del(ctx, key)
	case errors.Is(err, redis.Nil):
	default:
		c.log.Warn("[CACHE][GET] redis unavailable", zap.Error(err))
	}
	metrics.CacheLookups.WithLabelValues("miss").Inc()

	out, err := c.next.FindByID(ctx, id)
	if err != nil {
		return nil, err
	}

	if data, merr := json.Marshal(out); merr == nil {
		if serr := c.rdb.Set(ctx, key, data, c.ttl).Err(); serr != nil {
			c.log.Warn("[CACHE][SET] redis unavailable", zap.Error(serr))
		}
	}
	return out, nil
}
