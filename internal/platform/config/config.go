// Package config reads process configuration from the environment and the
// dotenv-format credentials file.
package config

import (
	"errors"
	"fmt"
	"io/fs"
	"net"
	"net/url"
	"os"
	"strconv"
	"strings"
	"time"

	"github.com/joho/godotenv"

	platformstrings "addressbook/pkg/platform/strings"
)

const (
	DriverPostgres = "postgres"
	DriverPgx      = "pgx"
	DriverSQLite   = "sqlite"
	DriverRedis    = "redis"
	DriverMemory   = "memory"

	defaultCredentialsFile = "credentials.env"
)

// Config is the full process configuration.
type Config struct {
	Server   Server
	Database Database
	Redis    RedisConfig
	Kafka    Kafka
	Log      Log

	// PhoneRule names the phone validation rule: digits10 or any.
	PhoneRule string
}

// Server captures HTTP server level configuration.
type Server struct {
	Addr            string
	JWTSigningKey   string
	JWTIssuer       string
	ShutdownTimeout time.Duration
}

// Database selects the gateway driver and its connection settings.
type Database struct {
	Driver     string
	URL        string
	Host       string
	Port       string
	Name       string
	User       string
	Password   string
	SQLitePath string
}

// DSN returns DATABASE_URL when set, otherwise a postgres URL composed from
// the individual settings, or the sqlite path for the sqlite driver.
func (d Database) DSN() string {
	if d.URL != "" {
		return d.URL
	}
	if d.Driver == DriverSQLite {
		return d.SQLitePath
	}
	u := url.URL{
		Scheme:   "postgres",
		Host:     net.JoinHostPort(d.Host, d.Port),
		Path:     "/" + d.Name,
		RawQuery: "sslmode=disable",
	}
	if d.User != "" {
		u.User = url.UserPassword(d.User, d.Password)
	}
	return u.String()
}

// RedisConfig holds the go-redis connection settings.
type RedisConfig struct {
	URL          string
	PoolSize     int
	MinIdleConns int
	DialTimeout  time.Duration
	ReadTimeout  time.Duration
	WriteTimeout time.Duration
}

// Kafka configures the change-event publisher. An empty broker list disables it.
type Kafka struct {
	Brokers  []string
	Topic    string
	ClientID string
}

// Log configures the slog handler.
type Log struct {
	Level  string
	Format string
}

// FromEnv builds the configuration from environment variables. Values from
// the credentials file fill in only what the environment leaves unset.
func FromEnv() (Config, error) {
	credsPath := getenv(os.Getenv, "ADDRESSBOOK_CREDENTIALS_FILE", defaultCredentialsFile)
	creds, err := LoadCredentials(credsPath)
	if err != nil {
		return Config{}, err
	}
	return Load(func(key string) string {
		if v, ok := os.LookupEnv(key); ok {
			return v
		}
		return creds[key]
	})
}

// LoadCredentials reads a dotenv file. A missing file yields no credentials.
func LoadCredentials(path string) (map[string]string, error) {
	creds, err := godotenv.Read(path)
	if errors.Is(err, fs.ErrNotExist) {
		return map[string]string{}, nil
	}
	if err != nil {
		return nil, fmt.Errorf("read credentials file %s: %w", path, err)
	}
	return creds, nil
}

// Load builds the configuration from an arbitrary lookup function.
func Load(lookup func(string) string) (Config, error) {
	var errs []error
	duration := func(key string, def time.Duration) time.Duration {
		raw := lookup(key)
		if raw == "" {
			return def
		}
		d, err := time.ParseDuration(raw)
		if err != nil {
			errs = append(errs, fmt.Errorf("%s: %w", key, err))
			return def
		}
		return d
	}
	integer := func(key string, def int) int {
		raw := lookup(key)
		if raw == "" {
			return def
		}
		n, err := strconv.Atoi(raw)
		if err != nil {
			errs = append(errs, fmt.Errorf("%s: %w", key, err))
			return def
		}
		return n
	}

	cfg := Config{
		Server: Server{
			Addr:            getenv(lookup, "ADDRESSBOOK_ADDR", ":8080"),
			JWTSigningKey:   lookup("JWT_SIGNING_KEY"),
			JWTIssuer:       getenv(lookup, "JWT_ISSUER", "addressbook"),
			ShutdownTimeout: duration("ADDRESSBOOK_SHUTDOWN_TIMEOUT", 10*time.Second),
		},
		Database: Database{
			Driver:     strings.ToLower(getenv(lookup, "ADDRESSBOOK_DRIVER", DriverSQLite)),
			URL:        lookup("DATABASE_URL"),
			Host:       getenv(lookup, "DB_HOST", "localhost"),
			Port:       getenv(lookup, "DB_PORT", "5432"),
			Name:       getenv(lookup, "DB_NAME", "addressbook"),
			User:       lookup("DB_USER"),
			Password:   lookup("DB_PASSWORD"),
			SQLitePath: getenv(lookup, "SQLITE_PATH", "addressbook.db"),
		},
		Redis: RedisConfig{
			URL:          lookup("REDIS_URL"),
			PoolSize:     integer("REDIS_POOL_SIZE", 10),
			MinIdleConns: integer("REDIS_MIN_IDLE_CONNS", 2),
			DialTimeout:  duration("REDIS_DIAL_TIMEOUT", 5*time.Second),
			ReadTimeout:  duration("REDIS_READ_TIMEOUT", 3*time.Second),
			WriteTimeout: duration("REDIS_WRITE_TIMEOUT", 3*time.Second),
		},
		Kafka: Kafka{
			Brokers:  platformstrings.SplitList(lookup("KAFKA_BROKERS"), ","),
			Topic:    getenv(lookup, "KAFKA_TOPIC", "addressbook.contacts"),
			ClientID: getenv(lookup, "KAFKA_CLIENT_ID", "addressbook"),
		},
		Log: Log{
			Level:  getenv(lookup, "LOG_LEVEL", "info"),
			Format: getenv(lookup, "LOG_FORMAT", "text"),
		},
		PhoneRule: getenv(lookup, "PHONE_RULE", "digits10"),
	}

	switch cfg.Database.Driver {
	case DriverPostgres, DriverPgx, DriverSQLite, DriverMemory:
	case DriverRedis:
		if cfg.Redis.URL == "" {
			errs = append(errs, errors.New("REDIS_URL is required for the redis driver"))
		}
	default:
		errs = append(errs, fmt.Errorf("ADDRESSBOOK_DRIVER: unknown driver %q", cfg.Database.Driver))
	}

	if err := errors.Join(errs...); err != nil {
		return Config{}, fmt.Errorf("invalid configuration: %w", err)
	}
	return cfg, nil
}

func getenv(lookup func(string) string, key, def string) string {
	if v := strings.TrimSpace(lookup(key)); v != "" {
		return v
	}
	return def
}
