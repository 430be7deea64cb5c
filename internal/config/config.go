package config

import (
	"fmt"
	"log"
	"os"
	"strconv"
	"strings"
	"time"

	"github.com/joho/godotenv"
)

// Storage backends
const (
	StorageMemory   = "memory"
	StorageMySQL    = "mysql"
	StoragePostgres = "postgres"
)

// Config holds all configuration for the application
type Config struct {
	AppMode      string
	Port         string
	Storage      string
	LogLevel     string
	SeedDemoData bool
	Database     DatabaseConfig
	JWT          JWTConfig
	Cookie       CookieConfig
	Bills        BillConfig
}

// DatabaseConfig holds database configuration
type DatabaseConfig struct {
	Host     string
	Port     string
	User     string
	Password string
	DBName   string
	SSLMode  string
}

// JWTConfig holds JWT configuration
type JWTConfig struct {
	Secret           string
	RefreshSecret    string
	AccessTokenMins  int
	RefreshTokenDays int
}

// CookieConfig holds cookie configuration
type CookieConfig struct {
	Secure   bool
	SameSite string
	Domain   string
}

// BillConfig tunes the bill write path
type BillConfig struct {
	WriteRetries   int
	RetryBaseDelay time.Duration
	RetryMaxDelay  time.Duration
}

// Global config instance
var AppConfig *Config

// Load reads configuration from .env file and environment variables
func Load() (*Config, error) {
	// Load .env file (ignore error if file doesn't exist in production)
	if err := godotenv.Load(); err != nil {
		log.Println("Warning: .env file not found, using environment variables")
	}

	// trim spaces for Windows compatibility
	appMode := strings.TrimSpace(getEnv("APP_MODE", "dev"))
	if appMode != "dev" && appMode != "prod" {
		return nil, fmt.Errorf("invalid APP_MODE: '%s' (must be 'dev' or 'prod')", appMode)
	}

	storage := strings.ToLower(strings.TrimSpace(getEnv("STORAGE", StorageMemory)))
	switch storage {
	case StorageMemory, StorageMySQL, StoragePostgres:
	default:
		return nil, fmt.Errorf("invalid STORAGE: '%s' (must be memory, mysql or postgres)", storage)
	}

	bills, err := loadBillConfig()
	if err != nil {
		return nil, err
	}

	config := &Config{
		AppMode:      appMode,
		Port:         getEnv("PORT", "3000"),
		Storage:      storage,
		LogLevel:     getEnv("LOG_LEVEL", ""),
		SeedDemoData: getBool("SEED_DEMO_DATA", appMode == "dev"),
		Database:     loadDatabaseConfig(appMode, storage),
		JWT:          loadJWTConfig(appMode),
		Cookie:       loadCookieConfig(appMode),
		Bills:        bills,
	}

	if config.IsProd() && (config.JWT.Secret == defaultJWTSecret || config.JWT.RefreshSecret == defaultJWTRefreshSecret) {
		return nil, fmt.Errorf("PROD_JWT_SECRET and PROD_JWT_REFRESH_SECRET must be set in prod mode")
	}

	AppConfig = config
	return config, nil
}

// loadDatabaseConfig loads database config based on mode
func loadDatabaseConfig(mode, storage string) DatabaseConfig {
	prefix := modePrefix(mode)

	port, user := "3306", "root"
	if storage == StoragePostgres {
		port, user = "5432", "postgres"
	}

	return DatabaseConfig{
		Host:     getEnv(prefix+"DB_HOST", "localhost"),
		Port:     getEnv(prefix+"DB_PORT", port),
		User:     getEnv(prefix+"DB_USER", user),
		Password: getEnv(prefix+"DB_PASS", ""),
		DBName:   getEnv(prefix+"DB_NAME", "conveyease"),
		SSLMode:  getEnv(prefix+"DB_SSLMODE", "disable"),
	}
}

const (
	defaultJWTSecret        = "default_secret"
	defaultJWTRefreshSecret = "default_refresh_secret"
)

// loadJWTConfig loads JWT config based on mode
func loadJWTConfig(mode string) JWTConfig {
	prefix := modePrefix(mode)

	accessMins, _ := strconv.Atoi(getEnv("ACCESS_TOKEN_MINUTES", "15"))
	refreshDays, _ := strconv.Atoi(getEnv("REFRESH_TOKEN_DAYS", "7"))

	return JWTConfig{
		Secret:           getEnv(prefix+"JWT_SECRET", defaultJWTSecret),
		RefreshSecret:    getEnv(prefix+"JWT_REFRESH_SECRET", defaultJWTRefreshSecret),
		AccessTokenMins:  accessMins,
		RefreshTokenDays: refreshDays,
	}
}

// loadCookieConfig loads cookie config based on mode
func loadCookieConfig(mode string) CookieConfig {
	return CookieConfig{
		Secure:   getBool(modePrefix(mode)+"COOKIE_SECURE", false),
		SameSite: getEnv("COOKIE_SAMESITE", "lax"),
		Domain:   getEnv("COOKIE_DOMAIN", ""),
	}
}

func loadBillConfig() (BillConfig, error) {
	retries, err := strconv.Atoi(getEnv("BILL_WRITE_RETRIES", "3"))
	if err != nil || retries < 0 {
		return BillConfig{}, fmt.Errorf("invalid BILL_WRITE_RETRIES: must be a non-negative integer")
	}
	base, err := time.ParseDuration(getEnv("BILL_RETRY_BASE_DELAY", "10ms"))
	if err != nil {
		return BillConfig{}, fmt.Errorf("invalid BILL_RETRY_BASE_DELAY: %w", err)
	}
	maxDelay, err := time.ParseDuration(getEnv("BILL_RETRY_MAX_DELAY", "200ms"))
	if err != nil {
		return BillConfig{}, fmt.Errorf("invalid BILL_RETRY_MAX_DELAY: %w", err)
	}
	return BillConfig{WriteRetries: retries, RetryBaseDelay: base, RetryMaxDelay: maxDelay}, nil
}

func modePrefix(mode string) string {
	if mode == "prod" {
		return "PROD_"
	}
	return "DEV_"
}

// getEnv gets environment variable with default value
func getEnv(key, defaultValue string) string {
	if value := os.Getenv(key); value != "" {
		return value
	}
	return defaultValue
}

func getBool(key string, defaultValue bool) bool {
	v, err := strconv.ParseBool(getEnv(key, strconv.FormatBool(defaultValue)))
	if err != nil {
		return defaultValue
	}
	return v
}

// IsDev returns true if running in development mode
func (c *Config) IsDev() bool {
	return c.AppMode == "dev"
}

// IsProd returns true if running in production mode
func (c *Config) IsProd() bool {
	return c.AppMode == "prod"
}

// UsesDatabase reports whether a SQL backend is configured
func (c *Config) UsesDatabase() bool {
	return c.Storage == StorageMySQL || c.Storage == StoragePostgres
}

// GetAllowedOrigins returns allowed origins for CORS
func (c *Config) GetAllowedOrigins() string {
	origins := getEnv("ALLOWED_ORIGINS", "")
	if origins == "" {
		if c.IsDev() {
			return "*"
		}
		return "https://conveyease.example.com"
	}
	return origins
}
