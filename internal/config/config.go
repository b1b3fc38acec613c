package config

import (
	"fmt"
	"time"

	"github.com/ilyakaznacheev/cleanenv"
)

// Config represents the application configuration structure.
// It contains settings for the environment, database connection, auth,
// cart lifecycle, background workers and graceful shutdown behavior.
type Config struct {
	// Environment specifies the current running environment (development, production, etc.)
	Environment string `env:"ENVIRONMENT" env-default:"development" yaml:"environment"`

	// Database contains all database connection related configurations
	Database struct {
		// Username for database authentication
		Username string `env:"DATABASE_USERNAME" env-default:"myuser" yaml:"username"`
		// Password for database authentication
		Password string `env:"DATABASE_PASSWORD" env-default:"mypassword" yaml:"password"`
		// Host is the database server hostname or IP address
		Host string `env:"DATABASE_HOST" env-default:"localhost" yaml:"host"`
		// Port is the database server port number
		Port int `env:"DATABASE_PORT" env-default:"5432" yaml:"port"`
		// SslMode defines the SSL mode for the database connection
		SslMode string `env:"DATABASE_SSL_MODE" env-default:"disable" yaml:"sslMode"`
		// DatabaseName is the name of the database to connect to
		DatabaseName string `env:"DATABASE_NAME" env-default:"shop" yaml:"name"`
		// MaxOpenConnections limits the number of open connections to the database
		MaxOpenConnections int `env:"DATABASE_MAX_OPEN_CONNECTIONS" env-default:"10" yaml:"maxOpenConnections"`
		// MaxIdleConnections limits the number of connections in the idle connection pool
		MaxIdleConnections int `env:"DATABASE_MAX_IDLE_CONNECTIONS" env-default:"8" yaml:"maxIdleConnections"`
		// ConnMaxLifetime is the maximum amount of time a connection may be reused
		ConnMaxLifetime time.Duration `env:"DATABASE_CONNECTION_MAX_LIFETIME" env-default:"3m" yaml:"connMaxLifetime"`
		// ConnMaxIdleTime is the maximum amount of time a connection may be idle
		ConnMaxIdleTime time.Duration `env:"DATABASE_CONNECTION_MAX_IDLE_TIME" env-default:"3m" yaml:"connMaxIdleTime"`
	} `yaml:"database"`

	// Auth contains credential hashing and token issuance settings
	Auth struct {
		// BcryptCost is the cost factor used when hashing account passwords
		BcryptCost int `env:"AUTH_BCRYPT_COST" env-default:"12" yaml:"bcryptCost"`
		// TokenPrivateKey is a PEM-encoded RSA private key used to sign access tokens
		TokenPrivateKey string `env:"AUTH_TOKEN_PRIVATE_KEY" yaml:"tokenPrivateKey"`
		// TokenTTL is how long issued access tokens remain valid
		TokenTTL time.Duration `env:"AUTH_TOKEN_TTL" env-default:"24h" yaml:"tokenTTL"`
	} `yaml:"auth"`

	// Cart controls the lifecycle of shopping carts
	Cart struct {
		// AbandonAfter is how long a cart may sit untouched before it is reaped
		AbandonAfter time.Duration `env:"CART_ABANDON_AFTER" env-default:"72h" yaml:"abandonAfter"`
		// ReapMaxAttempts limits how many times a reap job is retried before it is discarded
		ReapMaxAttempts int `env:"CART_REAP_MAX_ATTEMPTS" env-default:"5" yaml:"reapMaxAttempts"`
	} `yaml:"cart"`

	// Worker contains background job processing configurations
	Worker struct {
		// MaxWorkers is the maximum number of jobs processed concurrently
		MaxWorkers int `env:"WORKER_MAX_WORKERS" env-default:"10" yaml:"maxWorkers"`
	} `yaml:"worker"`

	// GracefulShutdownTimeout is the maximum duration to wait for in-flight work to complete during shutdown
	GracefulShutdownTimeout time.Duration `env:"GRACEFUL_SHUTDOWN_TIMEOUT" env-default:"10s" yaml:"gracefulShutdownTimeout"` //nolint: lll
}

// Load receives the path for yaml config file and returns a filled Config struct.
func Load(configPath string) (*Config, error) {
	var cfg Config
	err := cleanenv.ReadConfig(configPath, &cfg)
	if err != nil {
		return nil, fmt.Errorf("could not read config: %w", err)
	}

	return &cfg, nil
}
