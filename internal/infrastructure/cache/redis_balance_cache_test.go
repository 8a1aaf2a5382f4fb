package cache

import (
	"context"
	"testing"
	"time"

	"github.com/redis/go-redis/v9"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestBalanceCache_Clave(t *testing.T) {
	c := NewBalanceCache(redis.NewClient(&redis.Options{Addr: "127.0.0.1:1"}), "inventario-moda", 0)
	defer c.Close()

	assert.Equal(t, "inventario-moda:balance:S1:42", c.key("S1", 42))
	assert.Equal(t, DefaultBalanceTTL, c.ttl, "ttl no positivo usa el valor por defecto")
}

// Sin Redis disponible los métodos devuelven error en vez de colgarse: el servicio cae a la base.
func TestBalanceCache_SinServidor(t *testing.T) {
	c := NewBalanceCache(redis.NewClient(&redis.Options{
		Addr:        "127.0.0.1:1",
		MaxRetries:  -1,
		DialTimeout: 200 * time.Millisecond,
	}), "test", time.Minute)
	defer c.Close()
	ctx := context.Background()

	_, ok, err := c.Get(ctx, "S1", 1)
	assert.Error(t, err)
	assert.False(t, ok)
	assert.Error(t, c.Set(ctx, "S1", 1, 5))
	assert.Error(t, c.Invalidate(ctx, "S1", 1))
	assert.Equal(t, "down", c.Health(ctx)["status"])
}

func TestNewRedisClient(t *testing.T) {
	client, err := NewRedisClient("redis://localhost:6379/2")
	require.NoError(t, err)
	defer client.Close()
	assert.Equal(t, 2, client.Options().DB)

	_, err = NewRedisClient("http://no-es-redis")
	assert.Error(t, err)
}
