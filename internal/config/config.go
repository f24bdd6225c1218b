package config

import (
	"fmt"
	"os"
	"strconv"
	"strings"

	"github.com/joho/godotenv"
	"gopkg.in/yaml.v3"
)

const (
	// DefaultConfigPath is used when --config is not provided.
	DefaultConfigPath = "config.yml"

	defaultPort          = 5000
	defaultEnv           = "development"
	defaultMongoURL      = "mongodb://127.0.0.1:27017"
	defaultMongoDatabase = "daily-darshan"
	defaultTimezone      = "Asia/Kolkata"
	defaultStaticDir     = "./public/uploads"
	defaultTempDir       = "./tmp/chunks"
	defaultDataDir       = "./data"
	defaultMaxUploadMB   = 500
	defaultSessionHours  = 24 * 7
	defaultCleanupHours  = 24
	defaultChunkTTLMin   = 60
)

// AppConfig holds runtime startup configuration loaded from YAML and the
// environment.
type AppConfig struct {
	Port            int            `yaml:"port"`
	Env             string         `yaml:"env"` // "development" | "production"
	Mongo           MongoConfig    `yaml:"mongo"`
	RedisURL        string         `yaml:"redis_url"` // empty disables redis-backed middleware
	Timezone        string         `yaml:"timezone"`  // business civil calendar, one per deployment
	JWTSecret       string         `yaml:"jwt_secret"`
	AllowedOrigins  []string       `yaml:"allowed_origins"`
	Admin           AdminConfig    `yaml:"admin"`
	Storage         StorageConfig  `yaml:"storage"`
	Cleanup         CleanupConfig  `yaml:"cleanup"`
	DataDir         string         `yaml:"data_dir"`
	OfflineFallback bool           `yaml:"offline_fallback"`
}

type MongoConfig struct {
	URL      string `yaml:"url"`
	Database string `yaml:"database"`
}

// AdminConfig is the single admin credential the panel logs in with.
// PasswordBcrypt takes precedence over the plaintext Password when set.
type AdminConfig struct {
	Email          string `yaml:"email"`
	Password       string `yaml:"password"`
	PasswordBcrypt string `yaml:"password_bcrypt"`
	SessionHours   int    `yaml:"session_hours"`
}

// StorageConfig selects where uploaded media lands.
type StorageConfig struct {
	Driver      string    `yaml:"driver"` // "local" | "s3"
	StaticDir   string    `yaml:"static_dir"`
	TempDir     string    `yaml:"temp_dir"`
	PublicBase  string    `yaml:"public_base"` // optional absolute URL prefix for local files
	MaxUploadMB int       `yaml:"max_upload_mb"`
	S3          S3Options `yaml:"s3"`
}

type S3Options struct {
	Bucket          string `yaml:"bucket"`
	Region          string `yaml:"region"`
	AccessKeyID     string `yaml:"access_key_id"`
	SecretAccessKey string `yaml:"secret_access_key"`
	Endpoint        string `yaml:"endpoint"`
	CustomDomain    string `yaml:"custom_domain"`
	PathStyleAccess bool   `yaml:"path_style_access"`
}

type CleanupConfig struct {
	DisableSlotCleanup bool `yaml:"disable_slot_cleanup"`
	IntervalHours      int  `yaml:"interval_hours"`
	ChunkTTLMinutes    int  `yaml:"chunk_ttl_minutes"`
}

// rawAppConfig accepts legacy spellings alongside the canonical keys.
type rawAppConfig struct {
	AppConfig `yaml:",inline"`

	NodeEnv     string `yaml:"node_env"`
	MongoDBURI  string `yaml:"mongodb_uri"`
	MongoURL    string `yaml:"mongo_url"`
	TZ          string `yaml:"tz"`
	StaticDir   string `yaml:"static_dir"`
	UploadsDir  string `yaml:"uploads_dir"`
	JWTSecretLC string `yaml:"jwtsecret"`
}

// Load reads configuration from an optional .env file, the YAML file at
// path, and environment variable overrides, in that order of increasing
// precedence. A missing YAML file is not an error; defaults apply.
func Load(path string) (*AppConfig, error) {
	_ = godotenv.Load()

	raw := rawAppConfig{}
	if path == "" {
		path = DefaultConfigPath
	}
	data, err := os.ReadFile(path)
	switch {
	case err == nil:
		if err := yaml.Unmarshal(data, &raw); err != nil {
			return nil, fmt.Errorf("parse config %s: %w", path, err)
		}
	case os.IsNotExist(err):
		// fall through to defaults
	default:
		return nil, fmt.Errorf("read config %s: %w", path, err)
	}

	cfg := raw.AppConfig
	applyLegacyKeys(&cfg, &raw)
	applyEnvOverrides(&cfg)
	applyDefaults(&cfg)
	return &cfg, nil
}

// IsDev reports whether the app runs in development mode.
func (c *AppConfig) IsDev() bool {
	return !strings.EqualFold(strings.TrimSpace(c.Env), "production")
}

func applyLegacyKeys(cfg *AppConfig, raw *rawAppConfig) {
	if cfg.Env == "" {
		cfg.Env = raw.NodeEnv
	}
	if cfg.Mongo.URL == "" {
		cfg.Mongo.URL = firstNonEmpty(raw.MongoDBURI, raw.MongoURL)
	}
	if cfg.Timezone == "" {
		cfg.Timezone = raw.TZ
	}
	if cfg.Storage.StaticDir == "" {
		cfg.Storage.StaticDir = firstNonEmpty(raw.StaticDir, raw.UploadsDir)
	}
	if cfg.JWTSecret == "" {
		cfg.JWTSecret = raw.JWTSecretLC
	}
}

func applyEnvOverrides(cfg *AppConfig) {
	if v := strings.TrimSpace(os.Getenv("PORT")); v != "" {
		if port, err := strconv.Atoi(v); err == nil {
			cfg.Port = port
		}
	}
	if v := strings.TrimSpace(os.Getenv("NODE_ENV")); v != "" {
		cfg.Env = v
	}
	if v := strings.TrimSpace(os.Getenv("MONGODB_URI")); v != "" {
		cfg.Mongo.URL = v
	}
	if v := strings.TrimSpace(os.Getenv("REDIS_URL")); v != "" {
		cfg.RedisURL = v
	}
	if v := strings.TrimSpace(os.Getenv("JWT_SECRET")); v != "" {
		cfg.JWTSecret = v
	}
	if v := strings.TrimSpace(os.Getenv("ADMIN_EMAIL")); v != "" {
		cfg.Admin.Email = v
	}
	if v := strings.TrimSpace(os.Getenv("ADMIN_PASSWORD")); v != "" {
		cfg.Admin.Password = v
	}
	if v := strings.TrimSpace(os.Getenv("TZ")); v != "" && cfg.Timezone == "" {
		cfg.Timezone = v
	}
}

func applyDefaults(cfg *AppConfig) {
	if cfg.Port == 0 {
		cfg.Port = defaultPort
	}
	if cfg.Env == "" {
		cfg.Env = defaultEnv
	}
	if cfg.Mongo.URL == "" {
		cfg.Mongo.URL = defaultMongoURL
	}
	if cfg.Mongo.Database == "" {
		cfg.Mongo.Database = defaultMongoDatabase
	}
	if cfg.Timezone == "" {
		cfg.Timezone = defaultTimezone
	}
	if cfg.Admin.SessionHours <= 0 {
		cfg.Admin.SessionHours = defaultSessionHours
	}
	if cfg.Storage.Driver == "" {
		cfg.Storage.Driver = "local"
	}
	if cfg.Storage.StaticDir == "" {
		cfg.Storage.StaticDir = defaultStaticDir
	}
	if cfg.Storage.TempDir == "" {
		cfg.Storage.TempDir = defaultTempDir
	}
	if cfg.Storage.MaxUploadMB <= 0 {
		cfg.Storage.MaxUploadMB = defaultMaxUploadMB
	}
	if cfg.Cleanup.IntervalHours <= 0 {
		cfg.Cleanup.IntervalHours = defaultCleanupHours
	}
	if cfg.Cleanup.ChunkTTLMinutes <= 0 {
		cfg.Cleanup.ChunkTTLMinutes = defaultChunkTTLMin
	}
	if cfg.DataDir == "" {
		cfg.DataDir = defaultDataDir
	}
}

func firstNonEmpty(values ...string) string {
	for _, v := range values {
		if strings.TrimSpace(v) != "" {
			return v
		}
	}
	return ""
}
