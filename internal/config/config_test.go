package config

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
)

func TestLoad_Defaults(t *testing.T) {
	t.Chdir(t.TempDir())
	for _, k := range []string{"DB_DRIVER", "DATABASE_URL", "SERVER_PORT", "ACCESS_TOKEN_TTL", "KAFKA_BROKERS", "CORS_ORIGINS", "CART_STOCK_POLICY", "ES_INDEX"} {
		t.Setenv(k, "")
	}
	t.Setenv("JWT_SECRET", "s3cret")

	cfg := Load()

	assert.Equal(t, "sqlite", cfg.DBDriver)
	assert.Equal(t, "instance/fashion_store.db", cfg.DatabaseURL)
	assert.Equal(t, 8080, cfg.ServerPort)
	assert.Equal(t, []byte("s3cret"), cfg.JWTSecret)
	assert.Equal(t, 15*time.Minute, cfg.AccessTokenTTL)
	assert.Nil(t, cfg.KafkaBrokers)
	assert.Equal(t, []string{"http://localhost:5173"}, cfg.CORSOrigins)
	assert.Equal(t, StockPolicyLine, cfg.StockPolicy)
	assert.Equal(t, "products", cfg.ESIndex)
}

func TestLoad_Overrides(t *testing.T) {
	t.Chdir(t.TempDir())
	t.Setenv("DB_DRIVER", "postgres")
	t.Setenv("DATABASE_URL", "postgres://u:p@db:5432/store")
	t.Setenv("KAFKA_BROKERS", "k1:9092,k2:9092")
	t.Setenv("ACCESS_TOKEN_TTL", "1h")
	t.Setenv("CART_STOCK_POLICY", "reserved")

	cfg := Load()

	assert.Equal(t, "postgres", cfg.DBDriver)
	assert.Equal(t, "postgres://u:p@db:5432/store", cfg.DatabaseURL)
	assert.Equal(t, []string{"k1:9092", "k2:9092"}, cfg.KafkaBrokers)
	assert.Equal(t, time.Hour, cfg.AccessTokenTTL)
	assert.Equal(t, StockPolicyReserved, cfg.StockPolicy)
}
