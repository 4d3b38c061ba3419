package config

import (
	"errors"
	"fmt"
	"net"
	"os"
	"strconv"
	"strings"
	"time"

	"github.com/joho/godotenv"
	"go.uber.org/zap"
	"gorm.io/gorm/logger"
)

const (
	EnvProduction  = "production"
	EnvDevelopment = "development"

	devJWTSecret = "worqhub-dev-secret-change-in-production"
)

// DBConfig holds database configuration
type DBConfig struct {
	Host            string
	Port            string
	User            string
	Password        string
	DBName          string
	SSLMode         string
	MaxIdleConns    int
	MaxOpenConns    int
	ConnMaxLifetime time.Duration
	LogLevel        logger.LogLevel
}

// GetDSN returns the PostgreSQL connection string
func (c *DBConfig) GetDSN() string {
	return fmt.Sprintf("host=%s port=%s user=%s password=%s dbname=%s sslmode=%s",
		c.Host, c.Port, c.User, c.Password, c.DBName, c.SSLMode)
}

// ServerConfig holds server configuration. TrustedProxies lists the CIDR
// ranges whose X-Forwarded-For header is believed; with none, the client IP
// is the connection's remote address.
type ServerConfig struct {
	Port           string
	Env            string
	CORSOrigin     string
	TrustedProxies []string
}

// ProxyRanges parses TrustedProxies
func (c *ServerConfig) ProxyRanges() ([]*net.IPNet, error) {
	ranges := make([]*net.IPNet, 0, len(c.TrustedProxies))
	for _, raw := range c.TrustedProxies {
		_, ipNet, err := net.ParseCIDR(raw)
		if err != nil {
			return nil, fmt.Errorf("TRUSTED_PROXIES: %w", err)
		}
		ranges = append(ranges, ipNet)
	}
	return ranges, nil
}

// JWTConfig holds token signing configuration
type JWTConfig struct {
	Secret     string
	Expiration time.Duration
}

// AuthConfig holds password and login throttling configuration
type AuthConfig struct {
	BcryptCost       int
	LoginMaxAttempts int
	LoginWindow      time.Duration
}

// RedisConfig holds the login throttle store configuration.
// An empty Addr disables throttling.
type RedisConfig struct {
	Addr     string
	Password string
	DB       int
}

// LogConfig holds logging configuration
type LogConfig struct {
	Level string
}

// MetricsConfig holds metrics configuration
type MetricsConfig struct {
	Enabled bool
}

// Config holds all configuration
type Config struct {
	DB      DBConfig
	Server  ServerConfig
	JWT     JWTConfig
	Auth    AuthConfig
	Redis   RedisConfig
	Log     LogConfig
	Metrics MetricsConfig
}

// IsProduction reports whether the service runs with the production profile
func (c *Config) IsProduction() bool {
	return c.Server.Env == EnvProduction
}

// Load loads configuration from environment variables
func Load() (*Config, error) {
	// Load .env file if it exists
	if err := godotenv.Load(); err != nil {
		// Not returning error as .env file is optional
		fmt.Printf("Warning: .env file not found, using environment variables\n")
	}

	config := FromEnv()
	if err := config.Validate(); err != nil {
		return nil, err
	}
	return config, nil
}

// FromEnv builds a Config from the current environment without reading .env
func FromEnv() *Config {
	return &Config{
		DB: DBConfig{
			Host:            getEnv("DB_HOST", "localhost"),
			Port:            getEnv("DB_PORT", "5432"),
			User:            getEnv("DB_USER", "postgres"),
			Password:        getEnv("DB_PASSWORD", "password"),
			DBName:          getEnv("DB_NAME", "worqhub"),
			SSLMode:         getEnv("DB_SSL_MODE", "disable"),
			MaxIdleConns:    getEnvAsInt("DB_MAX_IDLE_CONNS", 10),
			MaxOpenConns:    getEnvAsInt("DB_MAX_OPEN_CONNS", 100),
			ConnMaxLifetime: getEnvAsDuration("DB_CONN_MAX_LIFETIME", 1*time.Hour),
			LogLevel:        getEnvAsLogLevel("DB_LOG_LEVEL", logger.Warn),
		},
		Server: ServerConfig{
			Port:           getEnv("SERVER_PORT", "5000"),
			Env:            getEnv("APP_ENV", EnvDevelopment),
			CORSOrigin:     getEnv("CORS_ORIGIN", "http://localhost:3000"),
			TrustedProxies: getEnvAsList("TRUSTED_PROXIES"),
		},
		JWT: JWTConfig{
			Secret:     getEnv("JWT_SECRET", ""),
			Expiration: getEnvAsDuration("JWT_EXPIRATION", 7*24*time.Hour),
		},
		Auth: AuthConfig{
			BcryptCost:       getEnvAsInt("BCRYPT_COST", 10),
			LoginMaxAttempts: getEnvAsInt("LOGIN_MAX_ATTEMPTS", 10),
			LoginWindow:      getEnvAsDuration("LOGIN_WINDOW", 15*time.Minute),
		},
		Redis: RedisConfig{
			Addr:     getEnv("REDIS_ADDR", ""),
			Password: getEnv("REDIS_PASSWORD", ""),
			DB:       getEnvAsInt("REDIS_DB", 0),
		},
		Log: LogConfig{
			Level: getEnv("LOG_LEVEL", "info"),
		},
		Metrics: MetricsConfig{
			Enabled: getEnvAsBool("METRICS_ENABLED", true),
		},
	}
}

// Validate checks required settings. Outside production a missing JWT
// secret falls back to a development default.
func (c *Config) Validate() error {
	if c.JWT.Secret == "" {
		if c.IsProduction() {
			return errors.New("JWT_SECRET must be set in production")
		}
		fmt.Printf("Warning: using default JWT_SECRET in %s, set JWT_SECRET for production\n", c.Server.Env)
		c.JWT.Secret = devJWTSecret
	}
	if c.JWT.Expiration <= 0 {
		return fmt.Errorf("JWT_EXPIRATION must be positive, got %s", c.JWT.Expiration)
	}
	if c.Auth.BcryptCost < 4 || c.Auth.BcryptCost > 31 {
		return fmt.Errorf("BCRYPT_COST must be between 4 and 31, got %d", c.Auth.BcryptCost)
	}
	if _, err := c.Server.ProxyRanges(); err != nil {
		return err
	}
	return nil
}

// LogConfig returns the configuration as a zap logger-friendly format
func (c *Config) LogConfig() []zap.Field {
	return []zap.Field{
		zap.String("environment", c.Server.Env),
		zap.String("db_host", c.DB.Host),
		zap.String("db_port", c.DB.Port),
		zap.String("db_user", c.DB.User),
		zap.String("db_name", c.DB.DBName),
		zap.String("server_port", c.Server.Port),
		zap.Duration("jwt_expiration", c.JWT.Expiration),
		zap.Bool("login_throttle", c.Redis.Addr != ""),
	}
}

// Helper function to get environment variables with defaults
func getEnv(key, defaultValue string) string {
	if value, exists := os.LookupEnv(key); exists {
		return value
	}
	return defaultValue
}

// Helper function to get environment variables as integers
func getEnvAsInt(key string, defaultValue int) int {
	valueStr := getEnv(key, "")
	if value, err := strconv.Atoi(valueStr); err == nil {
		return value
	}
	return defaultValue
}

// Helper function to get environment variables as durations
func getEnvAsDuration(key string, defaultValue time.Duration) time.Duration {
	valueStr := getEnv(key, "")
	if value, err := time.ParseDuration(valueStr); err == nil {
		return value
	}
	return defaultValue
}

// Helper function to get environment variables as booleans
func getEnvAsBool(key string, defaultValue bool) bool {
	valueStr := getEnv(key, "")
	if value, err := strconv.ParseBool(valueStr); err == nil {
		return value
	}
	return defaultValue
}

// Helper function to get environment variables as log levels
func getEnvAsLogLevel(key string, defaultValue logger.LogLevel) logger.LogLevel {
	valueStr := getEnv(key, "")
	switch valueStr {
	case "silent":
		return logger.Silent
	case "error":
		return logger.Error
	case "warn":
		return logger.Warn
	case "info":
		return logger.Info
	default:
		return defaultValue
	}
}

// Helper function to get comma-separated environment variables
func getEnvAsList(key string) []string {
	var out []string
	for _, item := range strings.Split(getEnv(key, ""), ",") {
		if item = strings.TrimSpace(item); item != "" {
			out = append(out, item)
		}
	}
	return out
}
