package config

import (
	"fmt"
	"os"
	"strconv"
	"strings"
	"time"

	"github.com/joho/godotenv"
)

func init() {
	// Load .env file - ignore error if file doesn't exist
	if err := godotenv.Load(); err != nil {
		fmt.Printf("Note: .env file not found or could not be loaded: %v\n", err)
	}
}

type Config struct {
	Primary       PrimaryConfig
	Database      DatabaseConfig
	Server        ServerConfig
	Redis         RedisConfig
	Kafka         KafkaConfig
	Observability *ObservabilityConfig
	Paystack      PaystackConfig
	Bytewave      BytewaveConfig
	Admin         AdminConfig
	Prefixes      PrefixConfig
}

type PrimaryConfig struct {
	Env string
}

type DatabaseConfig struct {
	Host            string
	Port            int
	User            string
	Password        string
	Name            string
	SSLMode         string
	MaxOpenConns    int
	MaxIdleConns    int
	ConnMaxLifetime int
	ConnMaxIdleTime int
}

type ServerConfig struct {
	Port         string
	ReadTimeout  int
	WriteTimeout int
	IdleTimeout  int
}

type RedisConfig struct {
	Address      string
	Password     string
	DB           int
	PoolSize     int
	MinIdleConns int
	DialTimeout  time.Duration
	ReadTimeout  time.Duration
	WriteTimeout time.Duration
	KeyPrefix    string
	SubmittedTTL time.Duration
}

type KafkaConfig struct {
	Brokers []string
}

type ObservabilityConfig struct {
	ServiceName string
	Environment string
	Logging     LoggingConfig
	NewRelic    NewRelicConfig
}

type LoggingConfig struct {
	Level  string
	Format string
}

type NewRelicConfig struct {
	LicenseKey                string
	AppLogForwardingEnabled   bool
	DistributedTracingEnabled bool
	DebugLogging              bool
}

type PaystackConfig struct {
	SecretKey   string
	BaseURL     string
	CallTimeout time.Duration
}

// BytewaveConfig configures the bundle fulfillment provider client.
// TLSInsecure relaxes certificate verification for the Bytewave client only;
// the default is strict verification and any relaxation is logged at startup.
type BytewaveConfig struct {
	APIKey      string
	BaseURL     string
	CallTimeout time.Duration
	TLSInsecure bool
}

type AdminConfig struct {
	Secret string
}

// PrefixConfig carries the prefix-to-network assignment as configuration so a
// contested prefix can be moved between networks without a code change. Empty
// slices fall back to the built-in table.
type PrefixConfig struct {
	MTN     []string
	Telecel []string
	AT      []string
}

// Helper functions for parsing env vars
func getEnv(key, fallback string) string {
	if value := os.Getenv(key); value != "" {
		return value
	}
	return fallback
}

func getEnvInt(key string, fallback int) int {
	if value := os.Getenv(key); value != "" {
		if i, err := strconv.Atoi(value); err == nil {
			return i
		}
	}
	return fallback
}

func getEnvBool(key string, fallback bool) bool {
	if value := os.Getenv(key); value != "" {
		if b, err := strconv.ParseBool(value); err == nil {
			return b
		}
	}
	return fallback
}

func getEnvDuration(key string, fallback time.Duration) time.Duration {
	if value := os.Getenv(key); value != "" {
		if d, err := time.ParseDuration(value); err == nil {
			return d
		}
	}
	return fallback
}

func getEnvSlice(key string, fallback []string) []string {
	if value := os.Getenv(key); value != "" {
		return strings.Split(value, ",")
	}
	return fallback
}

func (c *ObservabilityConfig) GetLogLevel() string {
	if c.Logging.Level == "" {
		switch c.Environment {
		case "production":
			return "info"
		case "development":
			return "debug"
		default:
			return "info"
		}
	}
	return c.Logging.Level
}

func (c *ObservabilityConfig) IsProduction() bool {
	return c.Environment == "production"
}

func LoadConfig() (*Config, error) {
	cfg := &Config{
		Primary: PrimaryConfig{
			Env: getEnv("VENDA_ENV", "development"),
		},
		Database: DatabaseConfig{
			Host:            getEnv("VENDA_DB_HOST", "localhost"),
			Port:            getEnvInt("VENDA_DB_PORT", 5432),
			User:            getEnv("VENDA_DB_USER", "venda"),
			Password:        getEnv("VENDA_DB_PASSWORD", ""),
			Name:            getEnv("VENDA_DB_NAME", "venda"),
			SSLMode:         getEnv("VENDA_DB_SSLMODE", "disable"),
			MaxOpenConns:    getEnvInt("VENDA_DB_MAX_OPEN_CONNS", 25),
			MaxIdleConns:    getEnvInt("VENDA_DB_MAX_IDLE_CONNS", 10),
			ConnMaxLifetime: getEnvInt("VENDA_DB_CONN_MAX_LIFETIME", 300),
			ConnMaxIdleTime: getEnvInt("VENDA_DB_CONN_MAX_IDLE_TIME", 60),
		},
		Server: ServerConfig{
			Port:         getEnv("VENDA_SERVER_PORT", "8080"),
			ReadTimeout:  getEnvInt("VENDA_SERVER_READ_TIMEOUT", 30),
			WriteTimeout: getEnvInt("VENDA_SERVER_WRITE_TIMEOUT", 30),
			IdleTimeout:  getEnvInt("VENDA_SERVER_IDLE_TIMEOUT", 60),
		},
		Redis: RedisConfig{
			Address:      getEnv("VENDA_REDIS_ADDRESS", "localhost:6379"),
			Password:     getEnv("VENDA_REDIS_PASSWORD", ""),
			DB:           getEnvInt("VENDA_REDIS_DB", 0),
			PoolSize:     getEnvInt("VENDA_REDIS_POOL_SIZE", 10),
			MinIdleConns: getEnvInt("VENDA_REDIS_MIN_IDLE_CONNS", 5),
			DialTimeout:  getEnvDuration("VENDA_REDIS_DIAL_TIMEOUT", 5*time.Second),
			ReadTimeout:  getEnvDuration("VENDA_REDIS_READ_TIMEOUT", 3*time.Second),
			WriteTimeout: getEnvDuration("VENDA_REDIS_WRITE_TIMEOUT", 3*time.Second),
			KeyPrefix:    getEnv("VENDA_REDIS_KEY_PREFIX", "venda:"),
			SubmittedTTL: getEnvDuration("VENDA_REDIS_SUBMITTED_TTL", 24*time.Hour),
		},
		Kafka: KafkaConfig{
			Brokers: getEnvSlice("VENDA_KAFKA_BROKERS", nil),
		},
		Observability: &ObservabilityConfig{
			ServiceName: "venda",
			Environment: getEnv("VENDA_ENV", "development"),
			Logging: LoggingConfig{
				Level:  getEnv("VENDA_LOG_LEVEL", "debug"),
				Format: getEnv("VENDA_LOG_FORMAT", "console"),
			},
			NewRelic: NewRelicConfig{
				LicenseKey:                getEnv("VENDA_NEWRELIC_LICENSE_KEY", ""),
				AppLogForwardingEnabled:   getEnvBool("VENDA_NEWRELIC_LOG_FORWARDING", true),
				DistributedTracingEnabled: getEnvBool("VENDA_NEWRELIC_DISTRIBUTED_TRACING", true),
				DebugLogging:              getEnvBool("VENDA_NEWRELIC_DEBUG", false),
			},
		},
		Paystack: PaystackConfig{
			SecretKey:   getEnv("VENDA_PAYSTACK_SECRET_KEY", ""),
			BaseURL:     getEnv("VENDA_PAYSTACK_BASE_URL", "https://api.paystack.co"),
			CallTimeout: getEnvDuration("VENDA_PAYSTACK_CALL_TIMEOUT", 5*time.Second),
		},
		Bytewave: BytewaveConfig{
			APIKey:      getEnv("VENDA_BYTEWAVE_API_KEY", ""),
			BaseURL:     getEnv("VENDA_BYTEWAVE_BASE_URL", "https://api.bytewave.com"),
			CallTimeout: getEnvDuration("VENDA_BYTEWAVE_CALL_TIMEOUT", 5*time.Second),
			TLSInsecure: getEnvBool("VENDA_PROVIDER_TLS_INSECURE", false),
		},
		Admin: AdminConfig{
			Secret: getEnv("VENDA_ADMIN_SECRET", ""),
		},
		Prefixes: PrefixConfig{
			MTN:     getEnvSlice("VENDA_PREFIXES_MTN", nil),
			Telecel: getEnvSlice("VENDA_PREFIXES_TELECEL", nil),
			AT:      getEnvSlice("VENDA_PREFIXES_AT", nil),
		},
	}

	// Required secrets. The process refuses to start on a blank value rather
	// than ever running against a baked-in default credential.
	if cfg.Paystack.SecretKey == "" {
		return nil, fmt.Errorf("VENDA_PAYSTACK_SECRET_KEY is required")
	}
	if cfg.Bytewave.APIKey == "" {
		return nil, fmt.Errorf("VENDA_BYTEWAVE_API_KEY is required")
	}
	if cfg.Admin.Secret == "" {
		return nil, fmt.Errorf("VENDA_ADMIN_SECRET is required")
	}
	if cfg.Database.Host == "" {
		return nil, fmt.Errorf("VENDA_DB_HOST is required")
	}
	if cfg.Database.Name == "" {
		return nil, fmt.Errorf("VENDA_DB_NAME is required")
	}

	return cfg, nil
}
