package config_test

import (
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/vasiliy-maslov/footwear-shop/internal/config"
)

func TestNewConfig_MemoryDefaults(t *testing.T) {
	t.Setenv("STORAGE_DRIVER", "memory")

	cfg, err := config.NewConfig()
	require.NoError(t, err)

	assert.Equal(t, "5000", cfg.App.Port)
	assert.Equal(t, config.StorageDriverMemory, cfg.App.StorageDriver)
	assert.True(t, cfg.Orders.EnforceTransitions)
	assert.Equal(t, 24*time.Hour, cfg.Auth.TokenTTL)
	assert.Equal(t, 5, cfg.Catalog.LowStockThreshold)
}

func TestNewConfig_PostgresRequiresHost(t *testing.T) {
	t.Setenv("STORAGE_DRIVER", "postgres")
	t.Setenv("DB_HOST", "")
	t.Setenv("DB_USER", "")
	t.Setenv("DB_NAME", "")

	_, err := config.NewConfig()
	require.Error(t, err)
	assert.Contains(t, err.Error(), "DB_HOST")
	assert.Contains(t, err.Error(), "DB_NAME")
}

func TestNewConfig_EnvOverrides(t *testing.T) {
	t.Setenv("STORAGE_DRIVER", "postgres")
	t.Setenv("DB_HOST", "db")
	t.Setenv("DB_USER", "postgres")
	t.Setenv("DB_NAME", "footwear_db")
	t.Setenv("DB_MAX_CONNS", "20")
	t.Setenv("JWT_TTL", "2h")
	t.Setenv("ORDERS_ENFORCE_TRANSITIONS", "false")
	t.Setenv("CORS_ORIGINS", "http://localhost:8081, http://10.0.2.2:8081")

	cfg, err := config.NewConfig()
	require.NoError(t, err)

	assert.Equal(t, "db", cfg.Postgres.Host)
	assert.Equal(t, int32(20), cfg.Postgres.MaxConns)
	assert.Equal(t, 2*time.Hour, cfg.Auth.TokenTTL)
	assert.False(t, cfg.Orders.EnforceTransitions)
	assert.Equal(t, []string{"http://localhost:8081", "http://10.0.2.2:8081"}, cfg.App.CORSOrigins)
	assert.Equal(t, "host=db port=5432 user=postgres password= dbname=footwear_db sslmode=disable", cfg.Postgres.DSN())
}

func TestNewConfig_YAMLFile(t *testing.T) {
	path := filepath.Join(t.TempDir(), "config.yaml")
	content := []byte(`
app:
  port: "9090"
  storage_driver: memory
catalog:
  low_stock_threshold: 3
`)
	require.NoError(t, os.WriteFile(path, content, 0o600))
	t.Setenv("CONFIG_PATH", path)
	t.Setenv("STORAGE_DRIVER", "")

	cfg, err := config.NewConfig()
	require.NoError(t, err)
	assert.Equal(t, "9090", cfg.App.Port)
	assert.Equal(t, config.StorageDriverMemory, cfg.App.StorageDriver)
	assert.Equal(t, 3, cfg.Catalog.LowStockThreshold)
}

func TestNewConfig_InvalidDuration(t *testing.T) {
	t.Setenv("STORAGE_DRIVER", "memory")
	t.Setenv("JWT_TTL", "tomorrow")

	_, err := config.NewConfig()
	require.Error(t, err)
	assert.Contains(t, err.Error(), "JWT_TTL")
}
