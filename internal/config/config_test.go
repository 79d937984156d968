package config

import (
	"testing"

	"github.com/ariefcatur/go-catalog-api/internal/logx"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestLoadDefaults(t *testing.T) {
	cfg, err := Load()
	require.NoError(t, err)

	assert.Equal(t, ":8081", cfg.HTTPAddr)
	assert.Equal(t, "catalog-api", cfg.ServiceName)
	assert.Equal(t, int32(8), cfg.DBMaxConns)
	assert.True(t, cfg.AutoMigrate)
	assert.Empty(t, cfg.KafkaBrokers)
	assert.Equal(t, logx.Development, cfg.LogEnvironment())
}

func TestLoadFromEnv(t *testing.T) {
	t.Setenv("HTTP_ADDR", ":9000")
	t.Setenv("KAFKA_BROKERS", "k1:9092, ,k2:9092")
	t.Setenv("DB_AUTO_MIGRATE", "false")
	t.Setenv("APP_ENV", "production")

	cfg, err := Load()
	require.NoError(t, err)

	assert.Equal(t, ":9000", cfg.HTTPAddr)
	assert.Equal(t, []string{"k1:9092", "k2:9092"}, cfg.KafkaBrokers)
	assert.False(t, cfg.AutoMigrate)
	assert.Equal(t, logx.Production, cfg.LogEnvironment())
}

func TestLoadRejectsBadNumber(t *testing.T) {
	t.Setenv("DB_MAX_CONNS", "many")
	_, err := Load()
	assert.Error(t, err)
}
