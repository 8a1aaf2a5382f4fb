package cache

import (
	"context"
	"errors"
	"fmt"
	"strconv"
	"time"

	"github.com/redis/go-redis/v9"

	"github.com/jhoicas/inventario-moda/internal/application/ports"
)

var _ ports.BalanceCache = (*BalanceCache)(nil)

// DefaultBalanceTTL acota cuánto puede vivir un saldo cacheado si se pierde una invalidación.
const DefaultBalanceTTL = 30 * time.Second

// BalanceCache guarda saldos en Redis bajo <prefix>:balance:<location>:<variant>.
// Solo acelera lecturas; el saldo autoritativo sigue en la base.
type BalanceCache struct {
	client *redis.Client
	prefix string
	ttl    time.Duration
}

// NewRedisClient crea el cliente a partir de una URL redis://.
func NewRedisClient(url string) (*redis.Client, error) {
	opts, err := redis.ParseURL(url)
	if err != nil {
		return nil, fmt.Errorf("parse REDIS_URL: %w", err)
	}
	return redis.NewClient(opts), nil
}

// NewBalanceCache construye la caché. ttl <= 0 usa DefaultBalanceTTL.
func NewBalanceCache(client *redis.Client, prefix string, ttl time.Duration) *BalanceCache {
	if ttl <= 0 {
		ttl = DefaultBalanceTTL
	}
	return &BalanceCache{client: client, prefix: prefix, ttl: ttl}
}

func (c *BalanceCache) key(location string, variantID int64) string {
	return c.prefix + ":balance:" + location + ":" + strconv.FormatInt(variantID, 10)
}

// Get devuelve el saldo cacheado; ok=false si no está.
func (c *BalanceCache) Get(ctx context.Context, location string, variantID int64) (int64, bool, error) {
	qty, err := c.client.Get(ctx, c.key(location, variantID)).Int64()
	if err != nil {
		if errors.Is(err, redis.Nil) {
			return 0, false, nil
		}
		return 0, false, fmt.Errorf("redis get balance: %w", err)
	}
	return qty, true, nil
}

// Set guarda el saldo con TTL.
func (c *BalanceCache) Set(ctx context.Context, location string, variantID int64, qty int64) error {
	if err := c.client.Set(ctx, c.key(location, variantID), qty, c.ttl).Err(); err != nil {
		return fmt.Errorf("redis set balance: %w", err)
	}
	return nil
}

// Invalidate borra el saldo cacheado; se llama después de cada commit que lo cambia.
func (c *BalanceCache) Invalidate(ctx context.Context, location string, variantID int64) error {
	if err := c.client.Del(ctx, c.key(location, variantID)).Err(); err != nil {
		return fmt.Errorf("redis del balance: %w", err)
	}
	return nil
}

// Health hace ping a Redis.
func (c *BalanceCache) Health(ctx context.Context) map[string]string {
	if err := c.client.Ping(ctx).Err(); err != nil {
		return map[string]string{"status": "down", "error": err.Error()}
	}
	return map[string]string{"status": "up"}
}

// Close cierra el cliente.
func (c *BalanceCache) Close() error {
	return c.client.Close()
}
