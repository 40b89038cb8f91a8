// Package config handles application configuration loading from environment
// variables and an optional .env file. It provides a centralized Config
// struct used across the application.
package config

import (
	"errors"
	"fmt"
	"io/fs"
	"net"
	"os"
	"strconv"
	"time"

	"github.com/joho/godotenv"
)

// Storage backends for featured images.
const (
	StorageLocal = "local"
	StorageS3    = "s3"
)

// Config holds all application configuration values loaded from the environment.
type Config struct {
	// Server settings
	Host string
	Port string
	Env  string // "development", "production", "testing"

	// PostgreSQL connection
	DBHost     string
	DBPort     string
	DBUser     string
	DBPassword string
	DBName     string

	// Valkey (Redis-compatible sessions and cache)
	ValkeyHost     string
	ValkeyPort     string
	ValkeyPassword string

	// HTTP edge
	CORSOrigins        string // comma-separated; "*" allows any origin
	RateLimitPerMinute int    // requests per client IP on /api; 0 disables
	TrustProxy         bool   // honour X-Real-IP / X-Forwarded-For from a fronting proxy

	// Featured image uploads
	StorageBackend string // "local" or "s3"
	UploadDir      string
	UploadMaxBytes int64

	// S3-compatible object storage, used when StorageBackend is "s3"
	S3Endpoint  string
	S3Region    string
	S3AccessKey string
	S3SecretKey string
	S3Bucket    string
	S3KeyPrefix string
	S3PublicURL string

	SessionTTL time.Duration
	LogFormat  string // "text" or "json"
}

// Load reads configuration from the environment, falling back to a .env
// file in the working directory when present.
func Load() (*Config, error) {
	return LoadFiles(".env")
}

// LoadFiles reads configuration from the environment and the given env
// files. Process environment wins over file values; earlier files win over
// later ones. Missing files are skipped. Returns an error if a value does
// not parse or critical values are missing in production mode.
func LoadFiles(paths ...string) (*Config, error) {
	src := source{}
	for _, p := range paths {
		vals, err := godotenv.Read(p)
		if errors.Is(err, fs.ErrNotExist) {
			continue
		}
		if err != nil {
			return nil, fmt.Errorf("read env file %s: %w", p, err)
		}
		for k, v := range vals {
			if _, ok := src[k]; !ok {
				src[k] = v
			}
		}
	}

	cfg := &Config{
		Host: src.get("APP_HOST", "0.0.0.0"),
		Port: src.get("APP_PORT", "8080"),
		Env:  src.get("APP_ENV", "development"),

		DBHost:     src.get("POSTGRES_HOST", "localhost"),
		DBPort:     src.get("POSTGRES_PORT", "5432"),
		DBUser:     src.get("POSTGRES_USER", "blogcore"),
		DBPassword: src.get("POSTGRES_PASSWORD", "changeme"),
		DBName:     src.get("POSTGRES_DB", "blogcore"),

		ValkeyHost:     src.get("VALKEY_HOST", "localhost"),
		ValkeyPort:     src.get("VALKEY_PORT", "6379"),
		ValkeyPassword: src.get("VALKEY_PASSWORD", ""),

		CORSOrigins: src.get("CORS_ORIGIN", "*"),

		StorageBackend: src.get("STORAGE_BACKEND", StorageLocal),
		UploadDir:      src.get("UPLOAD_DIR", "uploads"),

		S3Endpoint:  src.get("S3_ENDPOINT", ""),
		S3Region:    src.get("S3_REGION", "us-east-1"),
		S3AccessKey: src.get("S3_ACCESS_KEY", ""),
		S3SecretKey: src.get("S3_SECRET_KEY", ""),
		S3Bucket:    src.get("S3_BUCKET", ""),
		S3KeyPrefix: src.get("S3_KEY_PREFIX", "uploads"),
		S3PublicURL: src.get("S3_PUBLIC_URL", ""),

		LogFormat: src.get("LOG_FORMAT", "text"),
	}

	var err error
	if cfg.RateLimitPerMinute, err = strconv.Atoi(src.get("RATE_LIMIT_PER_MINUTE", "100")); err != nil || cfg.RateLimitPerMinute < 0 {
		return nil, fmt.Errorf("RATE_LIMIT_PER_MINUTE must be a non-negative integer")
	}
	if cfg.TrustProxy, err = strconv.ParseBool(src.get("TRUST_PROXY", "false")); err != nil {
		return nil, fmt.Errorf("TRUST_PROXY must be a boolean")
	}
	if cfg.UploadMaxBytes, err = strconv.ParseInt(src.get("UPLOAD_MAX_BYTES", "5242880"), 10, 64); err != nil || cfg.UploadMaxBytes <= 0 {
		return nil, fmt.Errorf("UPLOAD_MAX_BYTES must be a positive integer")
	}
	if cfg.SessionTTL, err = time.ParseDuration(src.get("SESSION_TTL", "168h")); err != nil || cfg.SessionTTL <= 0 {
		return nil, fmt.Errorf("SESSION_TTL must be a positive duration")
	}

	switch cfg.StorageBackend {
	case StorageLocal:
	case StorageS3:
		if cfg.S3Endpoint == "" || cfg.S3Bucket == "" || cfg.S3AccessKey == "" || cfg.S3SecretKey == "" {
			return nil, fmt.Errorf("STORAGE_BACKEND=s3 requires S3_ENDPOINT, S3_BUCKET, S3_ACCESS_KEY and S3_SECRET_KEY")
		}
	default:
		return nil, fmt.Errorf("STORAGE_BACKEND must be %q or %q, got %q", StorageLocal, StorageS3, cfg.StorageBackend)
	}

	if cfg.Env == "production" {
		if cfg.DBPassword == "changeme" {
			return nil, fmt.Errorf("POSTGRES_PASSWORD must be set in production")
		}
	}

	return cfg, nil
}

// DSN returns the PostgreSQL connection string.
func (c *Config) DSN() string {
	return fmt.Sprintf(
		"postgres://%s:%s@%s:%s/%s?sslmode=disable",
		c.DBUser, c.DBPassword, c.DBHost, c.DBPort, c.DBName,
	)
}

// Addr returns the server listen address (host:port).
func (c *Config) Addr() string {
	return fmt.Sprintf("%s:%s", c.Host, c.Port)
}

// ValkeyAddr returns the Valkey address (host:port).
func (c *Config) ValkeyAddr() string {
	return net.JoinHostPort(c.ValkeyHost, c.ValkeyPort)
}

// IsDev returns true if the application is running in development mode.
func (c *Config) IsDev() bool {
	return c.Env == "development"
}

// source holds values read from env files.
type source map[string]string

// get reads key from the process environment, then the env files,
// returning fallback if unset or empty in both.
func (s source) get(key, fallback string) string {
	if v := os.Getenv(key); v != "" {
		return v
	}
	if v := s[key]; v != "" {
		return v
	}
	return fallback
}
