package config

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestLoadDefaults(t *testing.T) {
	cfg, err := Load()
	require.NoError(t, err)

	assert.Equal(t, "8098", cfg.HTTPPort)
	assert.Equal(t, 30*time.Minute, cfg.ResponseSLA)
	assert.Equal(t, "support_chat", cfg.DB.Database)
	assert.Empty(t, cfg.KafkaBrokers)
	require.NoError(t, cfg.Validate())
}

func TestLoadOverrides(t *testing.T) {
	t.Setenv("APP_PORT", "9000")
	t.Setenv("RESPONSE_SLA_MINUTES", "45")
	t.Setenv("KAFKA_BROKERS", "kafka-1:9092, kafka-2:9092")

	cfg, err := Load()
	require.NoError(t, err)

	assert.Equal(t, "9000", cfg.HTTPPort)
	assert.Equal(t, 45*time.Minute, cfg.ResponseSLA)
	assert.Equal(t, []string{"kafka-1:9092", "kafka-2:9092"}, cfg.KafkaBrokers)
}

func TestValidate(t *testing.T) {
	cfg, err := Load()
	require.NoError(t, err)

	cfg.DB.Database = ""
	assert.Error(t, cfg.Validate())

	cfg, _ = Load()
	cfg.ResponseSLA = 0
	assert.Error(t, cfg.Validate())

	cfg, _ = Load()
	cfg.AppEnv = "production"
	cfg.DB.Password = ""
	assert.Error(t, cfg.Validate())
}

func TestConnectionStrings(t *testing.T) {
	cfg, err := Load()
	require.NoError(t, err)
	cfg.DB.Password = "p@ss word"

	assert.Contains(t, cfg.DSN(), "dbname=support_chat")
	assert.Contains(t, cfg.DatabaseURL(), "p%40ss+word")
	assert.Equal(t, "0.0.0.0:8098", cfg.Addr())
}
