package config

import (
	"context"
	"log/slog"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestLoadDefaults(t *testing.T) {
	cfg, err := Load()
	require.NoError(t, err)

	assert.Equal(t, ":8081", cfg.HTTPAddr)
	assert.Equal(t, []string{"kafka:9092"}, cfg.KafkaBrokers)
	assert.Equal(t, "postgres", cfg.OrderNumberSource)
	assert.Equal(t, "INR", cfg.Currency)
	assert.Equal(t, "0.18", cfg.TaxRate.String())
	assert.Equal(t, "500", cfg.FreeShippingThreshold.String())
	assert.Equal(t, "50", cfg.FlatShippingFee.String())
	assert.Equal(t, 15*time.Second, cfg.RequestTimeout)
	assert.Equal(t, 4, cfg.ProjectorWorkers)
}

func TestLoadFromEnv(t *testing.T) {
	t.Setenv("KAFKA_BROKERS", " k1:9092, ,k2:9092 ")
	t.Setenv("ORDER_NUMBER_SOURCE", "Redis")
	t.Setenv("TAX_RATE", "0.05")
	t.Setenv("PROJECTOR_WORKERS", "0")

	cfg, err := Load()
	require.NoError(t, err)
	assert.Equal(t, []string{"k1:9092", "k2:9092"}, cfg.KafkaBrokers)
	assert.Equal(t, "redis", cfg.OrderNumberSource)
	assert.Equal(t, "0.05", cfg.TaxRate.String())
	assert.Equal(t, 1, cfg.ProjectorWorkers)
}

func TestLoadRejectsBadValues(t *testing.T) {
	t.Run("source", func(t *testing.T) {
		t.Setenv("ORDER_NUMBER_SOURCE", "rpc")
		_, err := Load()
		assert.Error(t, err)
	})
	t.Run("tax", func(t *testing.T) {
		t.Setenv("TAX_RATE", "eighteen")
		_, err := Load()
		assert.Error(t, err)
	})
	t.Run("negative fee", func(t *testing.T) {
		t.Setenv("FLAT_SHIPPING_FEE", "-1")
		_, err := Load()
		assert.Error(t, err)
	})
}

func TestNewLoggerLevel(t *testing.T) {
	log := NewLogger(Config{LogLevel: "WARN", ServiceName: "svc"})
	assert.False(t, log.Enabled(context.Background(), slog.LevelInfo))
	assert.True(t, log.Enabled(context.Background(), slog.LevelError))
}
