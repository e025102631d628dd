// Package config provides application configuration loaded from environment variables.
package config

import (
	"errors"
	"fmt"
	"os"
	"strconv"
	"strings"
	"time"
)

// Config holds all application configuration.
type Config struct {
	Server   ServerConfig
	Database DatabaseConfig
	App      AppConfig
	Auth     AuthConfig
	Log      LogConfig
}

// ServerConfig holds HTTP server settings.
type ServerConfig struct {
	Port         string
	ReadTimeout  int // seconds
	WriteTimeout int // seconds
	IdleTimeout  int // seconds
}

// DatabaseConfig holds PostgreSQL connection settings.
// RawDSN (DATABASE_DSN) wins over the individual fields when set.
type DatabaseConfig struct {
	RawDSN   string
	Host     string
	Port     int
	User     string
	Password string
	DBName   string
	SSLMode  string
	Debug    bool
}

// AppConfig holds application-level settings.
type AppConfig struct {
	Dev bool
	// Migrations runs schema migration on startup.
	Migrations bool
	// SQLMigrations switches migration from GORM AutoMigrate to the SQL
	// files in MigrationsDir.
	SQLMigrations bool
	MigrationsDir string
	Seed          bool
}

// AuthConfig holds session settings.
type AuthConfig struct {
	SessionSecret string
	SessionTTL    time.Duration
	// LoginRate is the number of login attempts allowed per minute and IP.
	LoginRate int
}

// LogConfig holds logger settings.
type LogConfig struct {
	Level string
	// File enables rotated file output when non-empty.
	File string
}

// DSN returns the PostgreSQL connection string in key=value format.
func (d DatabaseConfig) DSN() string {
	if d.RawDSN != "" {
		return NormalizeDSN(d.RawDSN)
	}
	return fmt.Sprintf(
		"host=%s port=%d user=%s password=%s dbname=%s sslmode=%s",
		d.Host, d.Port, d.User, d.Password, d.DBName, d.SSLMode,
	)
}

// URL returns the PostgreSQL connection string in URL format, as expected
// by golang-migrate.
func (d DatabaseConfig) URL() string {
	if d.RawDSN != "" {
		return ToURLDSN(NormalizeDSN(d.RawDSN))
	}
	return fmt.Sprintf(
		"postgres://%s:%s@%s:%d/%s?sslmode=%s",
		d.User, d.Password, d.Host, d.Port, d.DBName, d.SSLMode,
	)
}

// Load reads configuration from environment variables.
// It uses sensible defaults for local development.
func Load() *Config {
	return &Config{
		Server: ServerConfig{
			Port:         getEnv("PORT", "8080"),
			ReadTimeout:  getEnvInt("SERVER_READ_TIMEOUT", 15),
			WriteTimeout: getEnvInt("SERVER_WRITE_TIMEOUT", 15),
			IdleTimeout:  getEnvInt("SERVER_IDLE_TIMEOUT", 60),
		},
		Database: DatabaseConfig{
			RawDSN:   os.Getenv("DATABASE_DSN"),
			Host:     getEnv("DB_HOST", "localhost"),
			Port:     getEnvInt("DB_PORT", 5432),
			User:     getEnv("DB_USER", "giardino"),
			Password: getEnv("DB_PASSWORD", "giardino"),
			DBName:   getEnv("DB_NAME", "giardino"),
			SSLMode:  getEnv("DB_SSLMODE", "disable"),
			Debug:    getEnvBool("DB_DEBUG", false),
		},
		App: AppConfig{
			Dev:           getEnvBool("DEV", false),
			Migrations:    getEnvBool("MIGRATIONS", true),
			SQLMigrations: getEnvBool("SQL_MIGRATIONS", false),
			MigrationsDir: getEnv("MIGRATIONS_DIR", "migrations"),
			Seed:          getEnvBool("DB_SEED", false),
		},
		Auth: AuthConfig{
			SessionSecret: getEnv("SESSION_SECRET", DevSessionSecret),
			SessionTTL:    getEnvDuration("SESSION_TTL", 14*24*time.Hour),
			LoginRate:     getEnvInt("LOGIN_RATE_PER_MINUTE", 10),
		},
		Log: LogConfig{
			Level: getEnv("LOG_LEVEL", "info"),
			File:  os.Getenv("LOG_FILE"),
		},
	}
}

// DevSessionSecret signs sessions when SESSION_SECRET is unset. It is public,
// so only dev mode may run with it.
const DevSessionSecret = "devsessionsecret"

// CheckSessionSecret rejects a missing or well-known session secret outside
// dev mode.
func (c *Config) CheckSessionSecret() error {
	if c.App.Dev {
		return nil
	}
	if s := strings.TrimSpace(c.Auth.SessionSecret); s == "" || s == DevSessionSecret {
		return errors.New("SESSION_SECRET must be set to a private value when DEV is false")
	}
	return nil
}

// getEnv returns the value of an environment variable or a default.
func getEnv(key, defaultValue string) string {
	if value := os.Getenv(key); value != "" {
		return value
	}
	return defaultValue
}

// getEnvInt returns the integer value of an environment variable or a default.
func getEnvInt(key string, defaultValue int) int {
	if value := os.Getenv(key); value != "" {
		if i, err := strconv.Atoi(value); err == nil {
			return i
		}
	}
	return defaultValue
}

// getEnvBool returns the boolean value of an environment variable or a default.
// Accepts "1", "true", "yes" as true; everything else is false.
func getEnvBool(key string, defaultValue bool) bool {
	value := strings.ToLower(os.Getenv(key))
	if value == "" {
		return defaultValue
	}
	return value == "1" || value == "true" || value == "yes"
}

func getEnvDuration(key string, defaultValue time.Duration) time.Duration {
	if value := os.Getenv(key); value != "" {
		if d, err := time.ParseDuration(value); err == nil {
			return d
		}
	}
	return defaultValue
}
