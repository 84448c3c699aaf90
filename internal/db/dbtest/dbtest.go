// Package dbtest opens the integration database used by repository tests.
package dbtest

import (
	"context"
	"os"
	"path/filepath"
	"runtime"
	"testing"
	"time"

	"github.com/vasiliy-maslov/footwear-shop/internal/config"
	"github.com/vasiliy-maslov/footwear-shop/internal/db"
)

// ConfigFromEnv reads DB_*_TEST variables. ok is false when no test database
// is configured.
func ConfigFromEnv() (cfg config.PostgresConfig, ok bool) {
	host := os.Getenv("DB_HOST_TEST")
	if host == "" {
		return config.PostgresConfig{}, false
	}

	cfg = config.PostgresConfig{
		Host:            host,
		Port:            getenv("DB_PORT_TEST", "5432"),
		User:            getenv("DB_USER_TEST", "postgres"),
		Password:        os.Getenv("DB_PASSWORD_TEST"),
		DBName:          getenv("DB_NAME_TEST", "footwear_test"),
		SSLMode:         getenv("DB_SSLMODE_TEST", "disable"),
		MaxConns:        5,
		MinConns:        1,
		MaxConnLifetime: 5 * time.Minute,
		MigrationsPath:  migrationsDir(),
	}
	return cfg, true
}

// Open connects to the test database and applies migrations, or skips the
// test when DB_HOST_TEST is unset. The connection is closed on cleanup.
func Open(t *testing.T) *db.Postgres {
	t.Helper()

	cfg, ok := ConfigFromEnv()
	if !ok {
		t.Skip("DB_HOST_TEST not set, skipping postgres integration test")
	}

	ctx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
	defer cancel()

	pg, err := db.New(ctx, cfg)
	if err != nil {
		t.Fatalf("Failed to connect to test database: %v (host=%s, port=%s, dbname=%s)", err, cfg.Host, cfg.Port, cfg.DBName)
	}
	t.Cleanup(pg.Close)
	return pg
}

// Truncate empties tables before the test and again after it.
func Truncate(t *testing.T, pg *db.Postgres, tables ...string) {
	t.Helper()

	truncate := func() {
		for _, table := range tables {
			if _, err := pg.Pool.Exec(context.Background(), "TRUNCATE TABLE "+table+" CASCADE"); err != nil {
				t.Fatalf("Failed to truncate table %s: %v", table, err)
			}
		}
	}
	truncate()
	t.Cleanup(truncate)
}

func getenv(key, def string) string {
	if v := os.Getenv(key); v != "" {
		return v
	}
	return def
}

func migrationsDir() string {
	_, file, _, _ := runtime.Caller(0)
	return filepath.Join(filepath.Dir(file), "..", "..", "..", "migrations")
}
