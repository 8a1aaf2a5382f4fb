package config

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestLoad_ValoresPorDefecto(t *testing.T) {
	t.Setenv("APP_ENV", "development")
	cfg, err := Load()
	require.NoError(t, err)

	assert.Equal(t, "es", cfg.App.Lang)
	assert.Equal(t, StorePostgres, cfg.App.Store)
	assert.Equal(t, BrokerNone, cfg.Messaging.Broker)
	assert.Equal(t, 8080, cfg.HTTP.Port)
	assert.Equal(t, 5*time.Second, cfg.DB.StatementTimeout())
	assert.Equal(t, 30*time.Second, cfg.Redis.BalanceTTL)
	assert.NoError(t, cfg.Validate())
}

func TestLoad_DesdeEntorno(t *testing.T) {
	t.Setenv("APP_LANG", "en")
	t.Setenv("STORE", "Memory")
	t.Setenv("MESSAGING_BROKER", "kafka")
	t.Setenv("KAFKA_BROKERS", "k1:9092, k2:9092,")
	t.Setenv("DB_MAX_CONNS", "25")
	t.Setenv("HTTP_PORT", "no-es-numero")

	cfg, err := Load()
	require.NoError(t, err)
	assert.Equal(t, "en", cfg.App.Lang)
	assert.Equal(t, StoreMemory, cfg.App.Store)
	assert.Equal(t, []string{"k1:9092", "k2:9092"}, cfg.Messaging.KafkaBrokers)
	assert.Equal(t, 25, cfg.DB.MaxConns)
	assert.Equal(t, 8080, cfg.HTTP.Port, "un entero inválido vuelve al valor por defecto")
}

func TestValidate(t *testing.T) {
	base := func() *Config {
		return &Config{
			App:       AppConfig{Env: "production", Store: StorePostgres},
			JWT:       JWTConfig{Secret: "s"},
			Messaging: MessagingConfig{Broker: BrokerNone},
		}
	}
	assert.NoError(t, base().Validate())

	c := base()
	c.JWT.Secret = ""
	assert.Error(t, c.Validate(), "sin secreto fuera de development")

	c = base()
	c.Messaging.Broker = "nats"
	assert.Error(t, c.Validate())

	c = base()
	c.App.Store = "sqlite"
	assert.Error(t, c.Validate())
}

func TestConnectionString(t *testing.T) {
	c := DBConfig{Host: "db", Port: 5432, User: "app", Password: "p@ss:word", DBName: "inv", SSLMode: "disable"}
	assert.Equal(t, "postgres://app:p%40ss%3Aword@db:5432/inv?sslmode=disable", c.ConnectionString())

	c.DatabaseURL = "postgres://x"
	assert.Equal(t, "postgres://x", c.ConnectionString())
}
