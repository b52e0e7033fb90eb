package market

import (
	"context"
	"fmt"
	"time"

	"github.com/bytedance/sonic"
	"github.com/redis/go-redis/v9"

	"github.com/mansourplus/crypto-trader/internal/models"
)

// Cache is a read-through redis cache for asset snapshots. A nil redis
// client degrades to a permanent miss so the engine keeps working
// without the cache tier.
type Cache struct {
	rdb *redis.Client
	ttl time.Duration
}

func NewCache(rdb *redis.Client, ttl time.Duration) *Cache {
	return &Cache{rdb: rdb, ttl: ttl}
}

func assetKey(symbol string) string {
	return fmt.Sprintf("market:asset:%s", symbol)
}

// GetAsset returns the cached snapshot and true on a hit.
func (c *Cache) GetAsset(ctx context.Context, symbol string) (*models.Asset, bool) {
	if c == nil || c.rdb == nil {
		return nil, false
	}

	raw, err := c.rdb.Get(ctx, assetKey(symbol)).Bytes()
	if err != nil {
		return nil, false
	}

	var asset models.Asset
	if err := sonic.Unmarshal(raw, &asset); err != nil {
		return nil, false
	}
	return &asset, true
}

// SetAsset stores the snapshot with the configured TTL.
func (c *Cache) SetAsset(ctx context.Context, asset models.Asset) error {
	if c == nil || c.rdb == nil {
		return nil
	}

	data, err := sonic.Marshal(asset)
	if err != nil {
		return fmt.Errorf("Cache.SetAsset: %w", err)
	}
	return c.rdb.Set(ctx, assetKey(asset.Symbol), data, c.ttl).Err()
}
