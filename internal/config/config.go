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
)

type Config struct {
	Database DatabaseConfig
	JWT      JWTConfig
	App      AppConfig
	CORS     CORSConfig
	Cache    CacheConfig
}

type DatabaseConfig struct {
	Host     string
	Port     int
	User     string
	Password string
	Name     string
	SSLMode  string
	MaxConns int32
}

// JWTConfig holds JWT configuration. Access tokens are issued elsewhere with
// the shared secret; SSE tokens are issued by the API.
type JWTConfig struct {
	Secret           string
	AccessExpiration time.Duration
	SSEExpiration    time.Duration
}

// AppConfig holds application configuration
type AppConfig struct {
	Port        int
	Env         string
	LogLevel    string
	Location    *time.Location
	AutoMigrate bool
}

type CORSConfig struct {
	AllowedOrigins []string
}

// CacheConfig controls the record cache. RefreshInterval drops every cached
// collection periodically as a backstop for lost notifications; zero
// disables it.
type CacheConfig struct {
	RefreshInterval   time.Duration
	ListenerReconnect time.Duration
}

// KioskConfig configures the clock terminal.
type KioskConfig struct {
	APIURL         string
	APIToken       string
	QueuePath      string
	ProbeInterval  time.Duration
	RequestTimeout time.Duration
	// QueueLease bounds how long a replay claim blocks other kiosk
	// processes sharing QueuePath.
	QueueLease time.Duration
	LogLevel   string
	Location   *time.Location
}

// loadDotEnv reads .env when present. A missing file is fine; the
// environment alone is a valid configuration.
func loadDotEnv() error {
	if err := godotenv.Load(); err != nil && !errors.Is(err, fs.ErrNotExist) {
		return fmt.Errorf("load .env: %w", err)
	}
	return nil
}

func Load() (*Config, error) {
	if err := loadDotEnv(); err != nil {
		return nil, err
	}

	config := &Config{}

	// Database configuration
	dbPort, err := strconv.Atoi(getEnv("DB_PORT", "5432"))
	if err != nil {
		return nil, fmt.Errorf("invalid DB_PORT: %w", err)
	}
	dbMaxConns, err := strconv.Atoi(getEnv("DB_MAX_CONNS", "25"))
	if err != nil {
		return nil, fmt.Errorf("invalid DB_MAX_CONNS: %w", err)
	}

	config.Database = DatabaseConfig{
		Host:     getEnv("DB_HOST", "localhost"),
		Port:     dbPort,
		User:     getEnv("DB_USER", "postgres"),
		Password: getEnv("DB_PASSWORD", ""),
		Name:     getEnv("DB_NAME", "timeclock"),
		SSLMode:  getEnv("DB_SSL_MODE", "disable"),
		MaxConns: int32(dbMaxConns),
	}

	// Application configuration
	appPort, err := strconv.Atoi(getEnv("APP_PORT", "8080"))
	if err != nil {
		return nil, fmt.Errorf("invalid APP_PORT: %w", err)
	}
	location, err := time.LoadLocation(getEnv("APP_TIMEZONE", "UTC"))
	if err != nil {
		return nil, fmt.Errorf("invalid APP_TIMEZONE: %w", err)
	}
	autoMigrate, err := strconv.ParseBool(getEnv("APP_AUTO_MIGRATE", "true"))
	if err != nil {
		return nil, fmt.Errorf("invalid APP_AUTO_MIGRATE: %w", err)
	}

	config.App = AppConfig{
		Port:        appPort,
		Env:         getEnv("APP_ENV", "development"),
		LogLevel:    getEnv("LOG_LEVEL", "info"),
		Location:    location,
		AutoMigrate: autoMigrate,
	}

	// JWT configuration
	accessExpiration, err := getEnvDuration("JWT_ACCESS_EXPIRATION_TIME", "12h")
	if err != nil {
		return nil, err
	}
	sseExpiration, err := getEnvDuration("JWT_SSE_EXPIRATION_TIME", "5m")
	if err != nil {
		return nil, err
	}

	config.JWT = JWTConfig{
		Secret:           getEnv("JWT_SECRET_KEY", ""),
		AccessExpiration: accessExpiration,
		SSEExpiration:    sseExpiration,
	}

	config.CORS = CORSConfig{
		AllowedOrigins: getEnvSlice("CORS_ALLOWED_ORIGINS"),
	}

	// Cache configuration
	refreshInterval, err := getEnvDuration("CACHE_REFRESH_INTERVAL", "10m")
	if err != nil {
		return nil, err
	}
	listenerReconnect, err := getEnvDuration("CACHE_LISTENER_RECONNECT", "5s")
	if err != nil {
		return nil, err
	}

	config.Cache = CacheConfig{
		RefreshInterval:   refreshInterval,
		ListenerReconnect: listenerReconnect,
	}

	// Validate required fields
	if err := config.Validate(); err != nil {
		return nil, fmt.Errorf("configuration validation failed: %w", err)
	}

	return config, nil
}

// Validate validates the configuration
func (c *Config) Validate() error {
	if c.Database.Password == "" {
		return fmt.Errorf("DB_PASSWORD is required")
	}
	if c.JWT.Secret == "" {
		return fmt.Errorf("JWT_SECRET_KEY is required")
	}
	if c.Database.MaxConns < 2 {
		return fmt.Errorf("DB_MAX_CONNS must be at least 2, one connection is held by the change listener")
	}
	return nil
}

// DatabaseURL returns the PostgreSQL connection string
func (c *Config) DatabaseURL() string {
	return fmt.Sprintf("postgres://%s:%s@%s:%d/%s?sslmode=%s",
		c.Database.User,
		c.Database.Password,
		c.Database.Host,
		c.Database.Port,
		c.Database.Name,
		c.Database.SSLMode,
	)
}

func LoadKiosk() (*KioskConfig, error) {
	if err := loadDotEnv(); err != nil {
		return nil, err
	}

	probeInterval, err := getEnvDuration("KIOSK_PROBE_INTERVAL", "15s")
	if err != nil {
		return nil, err
	}
	requestTimeout, err := getEnvDuration("KIOSK_REQUEST_TIMEOUT", "10s")
	if err != nil {
		return nil, err
	}
	queueLease, err := getEnvDuration("KIOSK_QUEUE_LEASE", "2m")
	if err != nil {
		return nil, err
	}
	location, err := time.LoadLocation(getEnv("APP_TIMEZONE", "UTC"))
	if err != nil {
		return nil, fmt.Errorf("invalid APP_TIMEZONE: %w", err)
	}

	config := &KioskConfig{
		APIURL:         strings.TrimRight(getEnv("KIOSK_API_URL", "http://localhost:8080"), "/"),
		APIToken:       getEnv("KIOSK_API_TOKEN", ""),
		QueuePath:      getEnv("KIOSK_QUEUE_PATH", "timeclock-queue.db"),
		ProbeInterval:  probeInterval,
		RequestTimeout: requestTimeout,
		QueueLease:     queueLease,
		LogLevel:       getEnv("LOG_LEVEL", "info"),
		Location:       location,
	}

	if err := config.Validate(); err != nil {
		return nil, fmt.Errorf("configuration validation failed: %w", err)
	}
	return config, nil
}

func (c *KioskConfig) Validate() error {
	if c.APIURL == "" {
		return fmt.Errorf("KIOSK_API_URL is required")
	}
	if c.APIToken == "" {
		return fmt.Errorf("KIOSK_API_TOKEN is required")
	}
	if c.QueuePath == "" {
		return fmt.Errorf("KIOSK_QUEUE_PATH is required")
	}
	if c.ProbeInterval <= 0 {
		return fmt.Errorf("KIOSK_PROBE_INTERVAL must be positive")
	}
	if c.QueueLease <= c.RequestTimeout {
		return fmt.Errorf("KIOSK_QUEUE_LEASE must be longer than KIOSK_REQUEST_TIMEOUT")
	}
	return nil
}

func getEnv(key, fallback string) string {
	if value := os.Getenv(key); value != "" {
		return value
	}
	return fallback
}

func getEnvDuration(key, fallback string) (time.Duration, error) {
	d, err := time.ParseDuration(getEnv(key, fallback))
	if err != nil {
		return 0, fmt.Errorf("invalid %s: %w", key, err)
	}
	return d, nil
}

func getEnvSlice(env string) []string {
	value := getEnv(env, "")
	if value == "" {
		return []string{}
	}
	var result []string
	for _, part := range strings.Split(value, ",") {
		if part = strings.TrimSpace(part); part != "" {
			result = append(result, part)
		}
	}
	return result
}
