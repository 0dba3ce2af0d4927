package redis

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	goredis "github.com/redis/go-redis/v9"

	types "github.com/yungbote/production-portal-backend/internal/domain"
	"github.com/yungbote/production-portal-backend/internal/platform/logger"
)

const catalogKeyPrefix = "catalog:v1:"

// CatalogCache is the shared layer under the in-process catalog cache.
type CatalogCache struct {
	log *logger.Logger
	rdb goredis.UniversalClient
	ttl time.Duration
}

func NewCatalogCache(log *logger.Logger, rdb goredis.UniversalClient, ttl time.Duration) *CatalogCache {
	if log == nil {
		log = logger.Nop()
	}
	return &CatalogCache{log: log.With("client", "RedisCatalogCache"), rdb: rdb, ttl: ttl}
}

// Get returns ok=false on a miss. A corrupt value is treated as a miss and dropped.
func (c *CatalogCache) Get(ctx context.Context, kind types.CatalogKind) ([]types.CatalogEntry, bool, error) {
	if c == nil || c.rdb == nil {
		return nil, false, nil
	}
	raw, err := c.rdb.Get(ctx, catalogKeyPrefix+string(kind)).Bytes()
	if errors.Is(err, goredis.Nil) {
		return nil, false, nil
	}
	if err != nil {
		return nil, false, fmt.Errorf("redis get %s: %w", kind, err)
	}
	var out []types.CatalogEntry
	if err := json.Unmarshal(raw, &out); err != nil {
		c.log.Warn("bad cached catalog payload", "kind", kind, "error", err)
		_ = c.rdb.Del(ctx, catalogKeyPrefix+string(kind)).Err()
		return nil, false, nil
	}
	return out, true, nil
}

func (c *CatalogCache) Set(ctx context.Context, kind types.CatalogKind, entries []types.CatalogEntry) error {
	if c == nil || c.rdb == nil {
		return nil
	}
	raw, err := json.Marshal(entries)
	if err != nil {
		return err
	}
	return c.rdb.Set(ctx, catalogKeyPrefix+string(kind), raw, c.ttl).Err()
}

func (c *CatalogCache) Invalidate(ctx context.Context, kind types.CatalogKind) error {
	if c == nil || c.rdb == nil {
		return nil
	}
	return c.rdb.Del(ctx, catalogKeyPrefix+string(kind)).Err()
}
