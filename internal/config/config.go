package config

import (
	"errors"
	"fmt"
	"io/fs"
	"os"
	"strconv"
	"strings"
	"time"

	"github.com/joho/godotenv"
	"gopkg.in/yaml.v3"
)

const (
	StorageDriverPostgres = "postgres"
	StorageDriverMemory   = "memory"
)

type AppConfig struct {
	Name            string        `yaml:"name"`
	Port            string        `yaml:"port"`
	LogLevel        string        `yaml:"log_level"`
	LogFormat       string        `yaml:"log_format"`
	StorageDriver   string        `yaml:"storage_driver"`
	ShutdownTimeout time.Duration `yaml:"shutdown_timeout"`
	CORSOrigins     []string      `yaml:"cors_origins"`
}

type PostgresConfig struct {
	Host            string        `yaml:"host"`
	Port            string        `yaml:"port"`
	User            string        `yaml:"user"`
	Password        string        `yaml:"password"`
	DBName          string        `yaml:"dbname"`
	SSLMode         string        `yaml:"sslmode"`
	MaxConns        int32         `yaml:"max_conns"`
	MinConns        int32         `yaml:"min_conns"`
	MaxConnLifetime time.Duration `yaml:"max_conn_lifetime"`
	MigrationsPath  string        `yaml:"migrations_path"`
}

// DSN returns a keyword/value connection string understood by both pgx and lib/pq.
func (c PostgresConfig) DSN() string {
	return fmt.Sprintf("host=%s port=%s user=%s password=%s dbname=%s sslmode=%s",
		c.Host, c.Port, c.User, c.Password, c.DBName, c.SSLMode)
}

type AuthConfig struct {
	JWTSecret string        `yaml:"jwt_secret"`
	TokenTTL  time.Duration `yaml:"token_ttl"`
}

type OrdersConfig struct {
	EnforceTransitions bool `yaml:"enforce_transitions"`
}

type CatalogConfig struct {
	LowStockThreshold int `yaml:"low_stock_threshold"`
}

type Config struct {
	App      AppConfig      `yaml:"app"`
	Postgres PostgresConfig `yaml:"postgres"`
	Auth     AuthConfig     `yaml:"auth"`
	Orders   OrdersConfig   `yaml:"orders"`
	Catalog  CatalogConfig  `yaml:"catalog"`
}

func defaults() *Config {
	cfg := &Config{}
	cfg.App.Name = "footwear-service"
	cfg.App.Port = "5000"
	cfg.App.LogLevel = "info"
	cfg.App.LogFormat = "console"
	cfg.App.StorageDriver = StorageDriverPostgres
	cfg.App.ShutdownTimeout = 15 * time.Second
	cfg.App.CORSOrigins = []string{"*"}

	cfg.Postgres.Port = "5432"
	cfg.Postgres.SSLMode = "disable"
	cfg.Postgres.MaxConns = 10
	cfg.Postgres.MinConns = 2
	cfg.Postgres.MaxConnLifetime = 30 * time.Minute
	cfg.Postgres.MigrationsPath = "migrations"

	cfg.Auth.JWTSecret = "change-me"
	cfg.Auth.TokenTTL = 24 * time.Hour

	cfg.Orders.EnforceTransitions = true
	cfg.Catalog.LowStockThreshold = 5
	return cfg
}

// NewConfig builds the configuration from defaults, an optional YAML file
// (CONFIG_PATH), a .env file when present, and finally the process environment.
func NewConfig() (*Config, error) {
	if err := godotenv.Load(); err != nil && !errors.Is(err, fs.ErrNotExist) {
		return nil, fmt.Errorf("failed to load .env: %w", err)
	}

	cfg := defaults()

	if path := os.Getenv("CONFIG_PATH"); path != "" {
		if err := cfg.loadFile(path); err != nil {
			return nil, err
		}
	}

	if err := cfg.applyEnv(); err != nil {
		return nil, err
	}

	if err := cfg.Validate(); err != nil {
		return nil, err
	}

	return cfg, nil
}

func (c *Config) loadFile(path string) error {
	data, err := os.ReadFile(path)
	if err != nil {
		return fmt.Errorf("failed to read config file: %w", err)
	}
	if err := yaml.Unmarshal(data, c); err != nil {
		return fmt.Errorf("invalid config file %s: %w", path, err)
	}
	return nil
}

func (c *Config) applyEnv() error {
	setString(&c.App.Port, "APP_PORT")
	setString(&c.App.LogLevel, "LOG_LEVEL")
	setString(&c.App.LogFormat, "LOG_FORMAT")
	setString(&c.App.StorageDriver, "STORAGE_DRIVER")
	if v := os.Getenv("CORS_ORIGINS"); v != "" {
		c.App.CORSOrigins = splitList(v)
	}

	setString(&c.Postgres.Host, "DB_HOST")
	setString(&c.Postgres.Port, "DB_PORT")
	setString(&c.Postgres.User, "DB_USER")
	setString(&c.Postgres.Password, "DB_PASSWORD")
	setString(&c.Postgres.DBName, "DB_NAME")
	setString(&c.Postgres.SSLMode, "DB_SSLMODE")
	setString(&c.Postgres.MigrationsPath, "MIGRATIONS_PATH")
	setString(&c.Auth.JWTSecret, "JWT_SECRET")

	if v := os.Getenv("DB_MAX_CONNS"); v != "" {
		n, err := strconv.ParseInt(v, 10, 32)
		if err != nil {
			return fmt.Errorf("invalid DB_MAX_CONNS %q: %w", v, err)
		}
		c.Postgres.MaxConns = int32(n)
	}
	if v := os.Getenv("DB_MIN_CONNS"); v != "" {
		n, err := strconv.ParseInt(v, 10, 32)
		if err != nil {
			return fmt.Errorf("invalid DB_MIN_CONNS %q: %w", v, err)
		}
		c.Postgres.MinConns = int32(n)
	}
	if err := setDuration(&c.Postgres.MaxConnLifetime, "DB_MAX_CONN_LIFETIME"); err != nil {
		return err
	}
	if err := setDuration(&c.Auth.TokenTTL, "JWT_TTL"); err != nil {
		return err
	}
	if err := setDuration(&c.App.ShutdownTimeout, "SHUTDOWN_TIMEOUT"); err != nil {
		return err
	}

	if v := os.Getenv("ORDERS_ENFORCE_TRANSITIONS"); v != "" {
		b, err := strconv.ParseBool(v)
		if err != nil {
			return fmt.Errorf("invalid ORDERS_ENFORCE_TRANSITIONS %q: %w", v, err)
		}
		c.Orders.EnforceTransitions = b
	}
	if v := os.Getenv("LOW_STOCK_THRESHOLD"); v != "" {
		n, err := strconv.Atoi(v)
		if err != nil {
			return fmt.Errorf("invalid LOW_STOCK_THRESHOLD %q: %w", v, err)
		}
		c.Catalog.LowStockThreshold = n
	}

	return nil
}

// Validate checks that the settings needed by the selected storage driver are present.
func (c *Config) Validate() error {
	switch c.App.StorageDriver {
	case StorageDriverMemory:
	case StorageDriverPostgres:
		var missing []string
		if c.Postgres.Host == "" {
			missing = append(missing, "DB_HOST")
		}
		if c.Postgres.User == "" {
			missing = append(missing, "DB_USER")
		}
		if c.Postgres.DBName == "" {
			missing = append(missing, "DB_NAME")
		}
		if len(missing) > 0 {
			return fmt.Errorf("missing required postgres settings: %s", strings.Join(missing, ", "))
		}
	default:
		return fmt.Errorf("unknown storage driver %q", c.App.StorageDriver)
	}

	if c.Auth.JWTSecret == "" {
		return errors.New("JWT_SECRET must not be empty")
	}
	if c.Catalog.LowStockThreshold < 0 {
		return errors.New("LOW_STOCK_THRESHOLD must not be negative")
	}
	return nil
}

func setString(dst *string, key string) {
	if v := os.Getenv(key); v != "" {
		*dst = v
	}
}

func setDuration(dst *time.Duration, key string) error {
	v := os.Getenv(key)
	if v == "" {
		return nil
	}
	d, err := time.ParseDuration(v)
	if err != nil {
		return fmt.Errorf("invalid %s %q: %w", key, v, err)
	}
	*dst = d
	return nil
}

func splitList(v string) []string {
	parts := strings.Split(v, ",")
	out := make([]string, 0, len(parts))
	for _, p := range parts {
		if p = strings.TrimSpace(p); p != "" {
			out = append(out, p)
		}
	}
	return out
}
