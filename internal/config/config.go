package config

import (
	"fmt"
	"log"
	"os"
	"strconv"
	"time"
	_ "time/tzdata" // BOOKING_TIMEZONE must resolve on hosts without a zoneinfo database

	"github.com/joho/godotenv"
)

const PROD_STRING = "prod"

// Config holds all application configuration loaded from environment.
type Config struct {
	IsProduction      bool
	ProdOrigins       string
	HTTPAddr          string
	DBDSN             string
	DBAutoMigrate     bool
	DBMaxConns        int32
	DBMaxConnLifetime time.Duration
	JWTSecret         string
	JWTAccessTokenTTL time.Duration
	BcryptCost        int
	LogLevel          string
	LogFormat         string
	Booking           BookingConfig
}

// BookingConfig describes the business day used to compute availability.
type BookingConfig struct {
	Location  *time.Location
	OpenTime  string // HH:MM
	CloseTime string // HH:MM
	SlotStep  time.Duration
}

// Load loads configuration from .env (optional) and environment variables.
func Load() (*Config, error) {
	// Load .env file if it exists
	err := godotenv.Load()
	if err != nil {
		log.Printf("failed to load .env file: %v", err)
	}

	return FromEnv()
}

// FromEnv builds the configuration from the current process environment only.
func FromEnv() (*Config, error) {
	cfg := &Config{}
	var err error

	// Production origin (default: empty)
	cfg.ProdOrigins = getEnv("PROD_ORIGINS", "")

	// Application environment (default: dev)
	appEnvStr := getEnv("APP_ENV", "dev")
	cfg.IsProduction = appEnvStr == PROD_STRING
	if cfg.IsProduction && cfg.ProdOrigins == "" {
		return nil, fmt.Errorf("PROD_ORIGINS is required when APP_ENV=%s", PROD_STRING)
	}

	// HTTP listen address (default: :8080)
	cfg.HTTPAddr = getEnv("HTTP_ADDR", ":8080")

	// Database DSN is required
	cfg.DBDSN = os.Getenv("DB_DSN")
	if cfg.DBDSN == "" {
		return nil, fmt.Errorf("DB_DSN is required")
	}

	cfg.DBAutoMigrate, err = getEnvAsBool("DB_AUTO_MIGRATE", false)
	if err != nil {
		return nil, fmt.Errorf("invalid DB_AUTO_MIGRATE: %w", err)
	}

	maxConns, err := getEnvAsInt("DB_MAX_CONNS", 0)
	if err != nil {
		return nil, fmt.Errorf("invalid DB_MAX_CONNS: %w", err)
	}
	if maxConns < 0 {
		return nil, fmt.Errorf("invalid DB_MAX_CONNS: must not be negative")
	}
	cfg.DBMaxConns = int32(maxConns)

	cfg.DBMaxConnLifetime, err = getEnvAsDuration("DB_MAX_CONN_LIFETIME", 0)
	if err != nil {
		return nil, fmt.Errorf("invalid DB_MAX_CONN_LIFETIME: %w", err)
	}

	// JWT secret is required for signing tokens
	cfg.JWTSecret = os.Getenv("JWT_SECRET")
	if cfg.JWTSecret == "" {
		return nil, fmt.Errorf("JWT_SECRET is required")
	}

	// JWT access token TTL, parse as time.Duration (e.g. "15m", "1h").
	cfg.JWTAccessTokenTTL, err = getEnvAsDuration("JWT_ACCESS_TOKEN_TTL", 15*time.Minute)
	if err != nil {
		return nil, fmt.Errorf("invalid JWT_ACCESS_TOKEN_TTL: %w", err)
	}

	// Bcrypt cost for password hashing (default: 12)
	cfg.BcryptCost, err = getEnvAsInt("BCRYPT_COST", 12)
	if err != nil {
		return nil, fmt.Errorf("invalid BCRYPT_COST: %w", err)
	}

	cfg.LogLevel = getEnv("LOG_LEVEL", "info")
	cfg.LogFormat = getEnv("LOG_FORMAT", "text")

	// Business day
	tzName := getEnv("BOOKING_TIMEZONE", "Asia/Jakarta")
	cfg.Booking.Location, err = time.LoadLocation(tzName)
	if err != nil {
		return nil, fmt.Errorf("invalid BOOKING_TIMEZONE: %w", err)
	}

	cfg.Booking.OpenTime = getEnv("BOOKING_OPEN_TIME", "10:00")
	cfg.Booking.CloseTime = getEnv("BOOKING_CLOSE_TIME", "20:00")

	cfg.Booking.SlotStep, err = getEnvAsDuration("BOOKING_SLOT_STEP", 15*time.Minute)
	if err != nil {
		return nil, fmt.Errorf("invalid BOOKING_SLOT_STEP: %w", err)
	}
	if cfg.Booking.SlotStep <= 0 {
		return nil, fmt.Errorf("invalid BOOKING_SLOT_STEP: must be positive")
	}

	return cfg, nil
}

// getEnv returns the value of the environment variable if set,
// otherwise returns the provided default value.
func getEnv(key, defaultValue string) string {
	if v, ok := os.LookupEnv(key); ok {
		return v
	}
	return defaultValue
}

// getEnvAsInt retrieves an environment variable as an integer.
// It returns the default value if the variable is not set.
// It returns an error if the variable is set but is not a valid integer.
func getEnvAsInt(key string, defaultValue int) (int, error) {
	valStr := getEnv(key, "")
	if valStr == "" {
		return defaultValue, nil
	}

	val, err := strconv.Atoi(valStr)
	if err != nil {
		return 0, fmt.Errorf("env %s value %q is not a valid integer: %w", key, valStr, err)
	}

	return val, nil
}

func getEnvAsBool(key string, defaultValue bool) (bool, error) {
	valStr := getEnv(key, "")
	if valStr == "" {
		return defaultValue, nil
	}

	val, err := strconv.ParseBool(valStr)
	if err != nil {
		return false, fmt.Errorf("env %s value %q is not a valid bool: %w", key, valStr, err)
	}
	return val, nil
}

func getEnvAsDuration(key string, defaultValue time.Duration) (time.Duration, error) {
	valStr := getEnv(key, "")
	if valStr == "" {
		return defaultValue, nil
	}

	val, err := time.ParseDuration(valStr)
	if err != nil {
		return 0, fmt.Errorf("env %s value %q is not a valid duration: %w", key, valStr, err)
	}
	return val, nil
}
