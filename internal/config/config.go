package config

import (
	"fmt"
	"os"
	"strings"
	"time"

	"github.com/joho/godotenv"
	"github.com/spf13/viper"
)

// Backend selectors.
const (
	DocStoreFirestore = "firestore"
	DocStoreGORM      = "gorm"
	DocStoreMemory    = "memory"

	IdentityFirebase = "firebase"
	IdentityMemory   = "memory"

	FileStorageLocal = "local"
	FileStorageS3    = "s3"
)

// Config holds all configuration for the application.
type Config struct {
	// Server Configuration
	GinMode       string        `mapstructure:"GIN_MODE"`
	ServerHost    string        `mapstructure:"SERVER_HOST"`
	ServerPort    string        `mapstructure:"SERVER_PORT"`
	ServerTimeout time.Duration `mapstructure:"SERVER_TIMEOUT_SECONDS"`

	// Logging Configuration
	LogLevel  string `mapstructure:"LOG_LEVEL"`
	LogFormat string `mapstructure:"LOG_FORMAT"`

	// Document store
	DocStoreBackend string `mapstructure:"DOCSTORE_BACKEND"`

	// Database Configuration (DOCSTORE_BACKEND=gorm)
	DBDriver          string        `mapstructure:"DB_DRIVER"`
	DBHost            string        `mapstructure:"DB_HOST"`
	DBPort            string        `mapstructure:"DB_PORT"`
	DBUser            string        `mapstructure:"DB_USER"`
	DBPassword        string        `mapstructure:"DB_PASSWORD"`
	DBName            string        `mapstructure:"DB_NAME"`
	DBSSLMode         string        `mapstructure:"DB_SSL_MODE"`
	DBTimezone        string        `mapstructure:"DB_TIMEZONE"`
	DBMaxIdleConns    int           `mapstructure:"DB_MAX_IDLE_CONNS"`
	DBMaxOpenConns    int           `mapstructure:"DB_MAX_OPEN_CONNS"`
	DBConnMaxLifetime time.Duration `mapstructure:"DB_CONN_MAX_LIFETIME_MINUTES"`
	SQLitePath        string        `mapstructure:"SQLITE_PATH"`

	// Identity
	IdentityBackend string `mapstructure:"IDENTITY_BACKEND"`

	// Firebase Configuration
	FirebaseServiceAccountKeyPath string `mapstructure:"FIREBASE_SERVICE_ACCOUNT_KEY_PATH"`
	FirebaseProjectID             string `mapstructure:"FIREBASE_PROJECT_ID"`
	FirebaseWebAPIKey             string `mapstructure:"FIREBASE_WEB_API_KEY"`

	// Elasticsearch Configuration. Empty URL disables event search.
	ElasticsearchURL       string `mapstructure:"ELASTICSEARCH_URL"`
	EventIndexSyncSchedule string `mapstructure:"EVENT_INDEX_SYNC_SCHEDULE"`

	// File storage
	FileStorageBackend string `mapstructure:"FILE_STORAGE_BACKEND"`
	FileStoragePath    string `mapstructure:"FILE_STORAGE_PATH"`
	FilePublicBaseURL  string `mapstructure:"FILE_PUBLIC_BASE_URL"`
	S3Bucket           string `mapstructure:"S3_BUCKET"`
	S3Region           string `mapstructure:"S3_REGION"`
	S3Endpoint         string `mapstructure:"S3_ENDPOINT"`
	S3AccessKeyID      string `mapstructure:"S3_ACCESS_KEY_ID"`
	S3SecretAccessKey  string `mapstructure:"S3_SECRET_ACCESS_KEY"`

	// Page-session contexts
	SessionContextTTL time.Duration `mapstructure:"SESSION_CONTEXT_TTL_MINUTES"`
}

// Load attempts to load configuration from a .env file (if present) and environment variables.
func Load() (*Config, error) {
	if err := godotenv.Load(); err != nil {
		if !os.IsNotExist(err) {
			return nil, fmt.Errorf("error loading .env file: %w", err)
		}
	}

	v := viper.New()

	v.SetDefault("GIN_MODE", "debug")
	v.SetDefault("SERVER_HOST", "0.0.0.0")
	v.SetDefault("SERVER_PORT", "8080")
	v.SetDefault("SERVER_TIMEOUT_SECONDS", 30)

	v.SetDefault("LOG_LEVEL", "info")
	v.SetDefault("LOG_FORMAT", "console")

	v.SetDefault("DOCSTORE_BACKEND", DocStoreFirestore)

	v.SetDefault("DB_DRIVER", "postgres")
	v.SetDefault("DB_HOST", "localhost")
	v.SetDefault("DB_PORT", "5432")
	v.SetDefault("DB_USER", "postgres")
	v.SetDefault("DB_PASSWORD", "password")
	v.SetDefault("DB_NAME", "maatram_portal_db")
	v.SetDefault("DB_SSL_MODE", "disable")
	v.SetDefault("DB_TIMEZONE", "UTC")
	v.SetDefault("DB_MAX_IDLE_CONNS", 10)
	v.SetDefault("DB_MAX_OPEN_CONNS", 100)
	v.SetDefault("DB_CONN_MAX_LIFETIME_MINUTES", 60)
	v.SetDefault("SQLITE_PATH", "maatram_portal.db")

	v.SetDefault("IDENTITY_BACKEND", IdentityFirebase)
	v.SetDefault("FIREBASE_PROJECT_ID", "")
	v.SetDefault("FIREBASE_SERVICE_ACCOUNT_KEY_PATH", "")
	v.SetDefault("FIREBASE_WEB_API_KEY", "")

	v.SetDefault("ELASTICSEARCH_URL", "")
	v.SetDefault("EVENT_INDEX_SYNC_SCHEDULE", "@hourly")

	v.SetDefault("FILE_STORAGE_BACKEND", FileStorageLocal)
	v.SetDefault("FILE_STORAGE_PATH", "./uploads")
	v.SetDefault("FILE_PUBLIC_BASE_URL", "/uploads")
	v.SetDefault("S3_BUCKET", "")
	v.SetDefault("S3_REGION", "auto")
	v.SetDefault("S3_ENDPOINT", "")
	v.SetDefault("S3_ACCESS_KEY_ID", "")
	v.SetDefault("S3_SECRET_ACCESS_KEY", "")

	v.SetDefault("SESSION_CONTEXT_TTL_MINUTES", 30)

	v.AutomaticEnv()

	var cfg Config
	if err := v.Unmarshal(&cfg); err != nil {
		return nil, fmt.Errorf("error unmarshalling configuration: %w", err)
	}

	cfg.ServerTimeout = time.Duration(v.GetInt("SERVER_TIMEOUT_SECONDS")) * time.Second
	cfg.DBConnMaxLifetime = time.Duration(v.GetInt("DB_CONN_MAX_LIFETIME_MINUTES")) * time.Minute
	cfg.SessionContextTTL = time.Duration(v.GetInt("SESSION_CONTEXT_TTL_MINUTES")) * time.Minute

	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return &cfg, nil
}

// Validate checks backend selectors and the settings each selected backend needs.
func (c *Config) Validate() error {
	c.DocStoreBackend = strings.ToLower(strings.TrimSpace(c.DocStoreBackend))
	c.IdentityBackend = strings.ToLower(strings.TrimSpace(c.IdentityBackend))
	c.FileStorageBackend = strings.ToLower(strings.TrimSpace(c.FileStorageBackend))

	switch c.DocStoreBackend {
	case DocStoreFirestore, DocStoreGORM, DocStoreMemory:
	default:
		return fmt.Errorf("unsupported DOCSTORE_BACKEND %q", c.DocStoreBackend)
	}
	switch c.IdentityBackend {
	case IdentityFirebase, IdentityMemory:
	default:
		return fmt.Errorf("unsupported IDENTITY_BACKEND %q", c.IdentityBackend)
	}
	switch c.FileStorageBackend {
	case FileStorageLocal:
	case FileStorageS3:
		if strings.TrimSpace(c.S3Bucket) == "" {
			return fmt.Errorf("S3_BUCKET is required when FILE_STORAGE_BACKEND=s3")
		}
	default:
		return fmt.Errorf("unsupported FILE_STORAGE_BACKEND %q", c.FileStorageBackend)
	}
	if c.DocStoreBackend == DocStoreGORM && c.DBDriver != "postgres" && c.DBDriver != "sqlite" {
		return fmt.Errorf("unsupported DB_DRIVER %q", c.DBDriver)
	}

	if c.UsesFirebase() {
		if strings.TrimSpace(c.FirebaseServiceAccountKeyPath) == "" {
			return fmt.Errorf("FATAL: FIREBASE_SERVICE_ACCOUNT_KEY_PATH is not set. This is required for Firebase Admin SDK initialization")
		}
		if _, err := os.Stat(c.FirebaseServiceAccountKeyPath); os.IsNotExist(err) {
			return fmt.Errorf("FATAL: Firebase service account key file specified in FIREBASE_SERVICE_ACCOUNT_KEY_PATH (%s) not found", c.FirebaseServiceAccountKeyPath)
		}
	}
	if c.IdentityBackend == IdentityFirebase && strings.TrimSpace(c.FirebaseWebAPIKey) == "" {
		return fmt.Errorf("FATAL: FIREBASE_WEB_API_KEY is required for password sign-in")
	}
	return nil
}

// UsesFirebase reports whether any selected backend needs the Firebase Admin SDK.
func (c *Config) UsesFirebase() bool {
	return c.DocStoreBackend == DocStoreFirestore || c.IdentityBackend == IdentityFirebase
}

// SearchEnabled reports whether an Elasticsearch URL is configured.
func (c *Config) SearchEnabled() bool {
	return strings.TrimSpace(c.ElasticsearchURL) != ""
}
