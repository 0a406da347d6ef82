// Package config loads the service settings from the environment.
package config

import (
	"encoding/json"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/spf13/viper"

	// Load .env file to environments
	_ "github.com/joho/godotenv/autoload"

	"github.com/sachin-security/sachin-security-sub000/internal/model"
)

// Config aggregates application settings sourced from environment variables.
type Config struct {
	Server    ServerConfig    `mapstructure:"server"`
	Auth      AuthConfig      `mapstructure:"auth"`
	Database  DatabaseConfig  `mapstructure:"database"`
	Storage   StorageConfig   `mapstructure:"storage"`
	Redis     RedisConfig     `mapstructure:"redis"`
	RateLimit RateLimitConfig `mapstructure:"rate_limit"`
	Log       LogConfig       `mapstructure:"log"`
}

// ServerConfig contains HTTP server settings.
type ServerConfig struct {
	Port         int      `mapstructure:"port"`
	AllowOrigins []string `mapstructure:"allow_origins"`
	AdminDir     string   `mapstructure:"admin_dir"`
}

// AuthConfig holds token and credential settings.
type AuthConfig struct {
	Secret       string        `mapstructure:"secret"`
	TokenTTL     time.Duration `mapstructure:"token_ttl"`
	CookieSecure bool          `mapstructure:"cookie_secure"`
	Revocation   string        `mapstructure:"revocation"`
	AdminUsers   string        `mapstructure:"admin_users"`

	// Identities is parsed from AdminUsers during validation.
	Identities []model.Identity `mapstructure:"-"`
}

// DatabaseConfig selects and configures the document store.
type DatabaseConfig struct {
	Driver            string `mapstructure:"driver"`
	MongoURI          string `mapstructure:"mongo_uri"`
	Name              string `mapstructure:"name"`
	MongoTransactions bool   `mapstructure:"mongo_transactions"`
	PostgresDSN       string `mapstructure:"postgres_dsn"`
}

// StorageConfig selects the object storage backend for uploads.
type StorageConfig struct {
	Backend        string      `mapstructure:"backend"`
	Dir            string      `mapstructure:"dir"`
	MaxUploadBytes int64       `mapstructure:"max_upload_bytes"`
	GCSBucket      string      `mapstructure:"gcs_bucket"`
	MinIO          MinIOConfig `mapstructure:"minio"`
}

// MinIOConfig contains connection options for MinIO/S3-compatible storage.
type MinIOConfig struct {
	Endpoint        string `mapstructure:"endpoint"`
	AccessKeyID     string `mapstructure:"access_key_id"`
	SecretAccessKey string `mapstructure:"secret_access_key"`
	UseSSL          bool   `mapstructure:"use_ssl"`
	Bucket          string `mapstructure:"bucket"`
}

// RedisConfig is used by the redis token revocation list.
type RedisConfig struct {
	Addr     string `mapstructure:"addr"`
	Password string `mapstructure:"password"`
	DB       int    `mapstructure:"db"`
}

// RateLimitConfig limits public write endpoints per client ip.
type RateLimitConfig struct {
	RequestsPerSecond uint `mapstructure:"requests_per_second"`
}

// LogConfig configures slog.
type LogConfig struct {
	Level string `mapstructure:"level"`
}

// Supported backends.
const (
	DriverMongo    = "mongo"
	DriverPostgres = "postgres"
	DriverMemory   = "memory"

	StorageDatabase   = "database"
	StorageFilesystem = "filesystem"
	StorageMinIO      = "minio"
	StorageGCS        = "gcs"

	RevocationNone   = "none"
	RevocationMemory = "memory"
	RevocationRedis  = "redis"
)

// Load reads configuration from environment variables (with defaults).
func Load() (*Config, error) {
	v := viper.New()
	setDefaults(v)
	v.AutomaticEnv()

	if err := bindEnv(v); err != nil {
		return nil, fmt.Errorf("bind env: %w", err)
	}

	var cfg Config
	if err := v.Unmarshal(&cfg); err != nil {
		return nil, fmt.Errorf("unmarshal config: %w", err)
	}

	if err := cfg.Validate(); err != nil {
		return nil, err
	}

	return &cfg, nil
}

func setDefaults(v *viper.Viper) {
	v.SetDefault("server.port", 8080)
	v.SetDefault("server.allow_origins", []string{"http://localhost:3000"})
	v.SetDefault("server.admin_dir", "web/admin")
	v.SetDefault("auth.token_ttl", 12*time.Hour)
	v.SetDefault("auth.cookie_secure", false)
	v.SetDefault("auth.revocation", RevocationNone)
	v.SetDefault("database.driver", DriverMongo)
	v.SetDefault("database.mongo_uri", "mongodb://localhost:27017")
	v.SetDefault("database.name", "sachin_security")
	v.SetDefault("database.mongo_transactions", false)
	v.SetDefault("storage.backend", StorageDatabase)
	v.SetDefault("storage.dir", "uploads")
	v.SetDefault("storage.max_upload_bytes", 5<<20)
	v.SetDefault("storage.minio.endpoint", "localhost:9000")
	v.SetDefault("storage.minio.use_ssl", false)
	v.SetDefault("storage.minio.bucket", "uploads")
	v.SetDefault("redis.addr", "localhost:6379")
	v.SetDefault("redis.db", 0)
	v.SetDefault("rate_limit.requests_per_second", 5)
	v.SetDefault("log.level", "info")
}

func bindEnv(v *viper.Viper) error {
	mappings := map[string]string{
		"server.port":                     "PORT",
		"server.allow_origins":            "ALLOW_ORIGIN",
		"server.admin_dir":                "ADMIN_STATIC_DIR",
		"auth.secret":                     "JWT_SECRET",
		"auth.token_ttl":                  "TOKEN_TTL",
		"auth.cookie_secure":              "COOKIE_SECURE",
		"auth.revocation":                 "AUTH_REVOCATION",
		"auth.admin_users":                "ADMIN_USERS",
		"database.driver":                 "DB_DRIVER",
		"database.mongo_uri":              "MONGO_URI",
		"database.name":                   "MONGO_DB",
		"database.mongo_transactions":     "MONGO_TRANSACTIONS",
		"database.postgres_dsn":           "DB_CONNECTION_STR",
		"storage.backend":                 "STORAGE_BACKEND",
		"storage.dir":                     "STORAGE_DIR",
		"storage.max_upload_bytes":        "MAX_UPLOAD_BYTES",
		"storage.gcs_bucket":              "GCS_BUCKET",
		"storage.minio.endpoint":          "MINIO_ENDPOINT",
		"storage.minio.access_key_id":     "MINIO_ACCESS_KEY_ID",
		"storage.minio.secret_access_key": "MINIO_SECRET_ACCESS_KEY",
		"storage.minio.use_ssl":           "MINIO_USE_SSL",
		"storage.minio.bucket":            "MINIO_BUCKET",
		"redis.addr":                      "REDIS_ADDR",
		"redis.password":                  "REDIS_PASSWORD",
		"redis.db":                        "REDIS_DB",
		"rate_limit.requests_per_second":  "RATE_LIMIT_REQUESTS_PER_SECOND",
		"log.level":                       "LOG_LEVEL",
	}

	for key, env := range mappings {
		if err := v.BindEnv(key, env); err != nil {
			return fmt.Errorf("bind %s to %s: %w", key, env, err)
		}
	}

	return nil
}

// Validate checks required settings and parses the admin identity list.
func (c *Config) Validate() error {
	if c.Server.Port <= 0 {
		return errors.New("server port must be positive")
	}
	if len(c.Auth.Secret) < 16 {
		return errors.New("JWT_SECRET must be at least 16 characters")
	}
	if c.Auth.TokenTTL <= 0 {
		return errors.New("token ttl must be positive")
	}

	identities, err := ParseIdentities(c.Auth.AdminUsers)
	if err != nil {
		return err
	}
	c.Auth.Identities = identities

	switch c.Auth.Revocation {
	case RevocationNone, RevocationMemory:
	case RevocationRedis:
		if c.Redis.Addr == "" {
			return errors.New("redis address is required for redis revocation")
		}
	default:
		return fmt.Errorf("unknown AUTH_REVOCATION %q", c.Auth.Revocation)
	}

	switch c.Database.Driver {
	case DriverMongo:
		if c.Database.MongoURI == "" || c.Database.Name == "" {
			return errors.New("MONGO_URI and MONGO_DB are required for the mongo driver")
		}
	case DriverPostgres:
		if c.Database.PostgresDSN == "" {
			return errors.New("DB_CONNECTION_STR is required for the postgres driver")
		}
	case DriverMemory:
	default:
		return fmt.Errorf("unknown DB_DRIVER %q", c.Database.Driver)
	}

	if c.Storage.MaxUploadBytes <= 0 {
		return errors.New("max upload bytes must be positive")
	}
	switch c.Storage.Backend {
	case StorageDatabase:
	case StorageFilesystem:
		if c.Storage.Dir == "" {
			return errors.New("STORAGE_DIR is required for filesystem storage")
		}
	case StorageMinIO:
		m := c.Storage.MinIO
		if m.Endpoint == "" || m.AccessKeyID == "" || m.SecretAccessKey == "" || m.Bucket == "" {
			return errors.New("minio endpoint, credentials and bucket are required for minio storage")
		}
	case StorageGCS:
		if c.Storage.GCSBucket == "" {
			return errors.New("GCS_BUCKET is required for gcs storage")
		}
	default:
		return fmt.Errorf("unknown STORAGE_BACKEND %q", c.Storage.Backend)
	}

	if c.RateLimit.RequestsPerSecond == 0 {
		c.RateLimit.RequestsPerSecond = 5
	}
	return nil
}

// ParseIdentities decodes the ADMIN_USERS JSON array.
func ParseIdentities(raw string) ([]model.Identity, error) {
	if strings.TrimSpace(raw) == "" {
		return nil, errors.New("ADMIN_USERS is required")
	}

	var identities []model.Identity
	if err := json.Unmarshal([]byte(raw), &identities); err != nil {
		return nil, fmt.Errorf("ADMIN_USERS is not a valid JSON array: %w", err)
	}
	if len(identities) == 0 {
		return nil, errors.New("ADMIN_USERS must contain at least one identity")
	}

	seen := make(map[string]struct{}, len(identities))
	for i, id := range identities {
		if id.UserID == "" || id.Password == "" {
			return nil, fmt.Errorf("ADMIN_USERS entry %d needs userID and password", i)
		}
		if _, dup := seen[id.UserID]; dup {
			return nil, fmt.Errorf("ADMIN_USERS contains duplicate userID %q", id.UserID)
		}
		seen[id.UserID] = struct{}{}
		if identities[i].DisplayName == "" {
			identities[i].DisplayName = id.UserID
		}
		if identities[i].Role == "" {
			identities[i].Role = model.RoleAdmin
		}
	}
	return identities, nil
}
