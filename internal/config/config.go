package config

import (
	"errors"
	"fmt"
	"io/fs"
	"os"
	"strconv"
	"time"

	"github.com/joho/godotenv"
	"gopkg.in/yaml.v3"
)

// Config represents the application configuration
type Config struct {
	Server    ServerConfig    `yaml:"server"`
	Database  DatabaseConfig  `yaml:"database"`
	Search    SearchConfig    `yaml:"search"`
	Cache     CacheConfig     `yaml:"cache"`
	Auth      AuthConfig      `yaml:"auth"`
	Admin     AdminConfig     `yaml:"admin"`
	Media     MediaConfig     `yaml:"media"`
	Assistant AssistantConfig `yaml:"assistant"`
	Feed      FeedConfig      `yaml:"feed"`
	RateLimit RateLimitConfig `yaml:"rate_limit"`
	Logging   LoggingConfig   `yaml:"logging"`
	Timezone  string          `yaml:"timezone"`
}

// ServerConfig contains HTTP listener settings
type ServerConfig struct {
	Port         string   `yaml:"port"`
	AllowOrigins []string `yaml:"allow_origins"`
}

// DatabaseConfig contains database settings
type DatabaseConfig struct {
	Type     string         `yaml:"type"`
	MySQL    MySQLConfig    `yaml:"mysql"`
	Postgres PostgresConfig `yaml:"postgres"`
	Mongo    MongoConfig    `yaml:"mongo"`
}

// MySQLConfig contains MySQL connection settings
type MySQLConfig struct {
	Host     string `yaml:"host"`
	Port     int    `yaml:"port"`
	User     string `yaml:"user"`
	Password string `yaml:"password"`
	Database string `yaml:"database"`
}

// PostgresConfig contains PostgreSQL connection settings
type PostgresConfig struct {
	Host     string `yaml:"host"`
	Port     int    `yaml:"port"`
	User     string `yaml:"user"`
	Password string `yaml:"password"`
	Database string `yaml:"database"`
}

// MongoConfig contains MongoDB connection settings
type MongoConfig struct {
	URI      string `yaml:"uri"`
	Database string `yaml:"database"`
}

// SearchConfig contains search engine settings
type SearchConfig struct {
	Enabled         bool              `yaml:"enabled"`
	ReindexSchedule string            `yaml:"reindex_schedule"`
	Meilisearch     MeilisearchConfig `yaml:"meilisearch"`
}

// MeilisearchConfig contains Meilisearch connection settings
type MeilisearchConfig struct {
	Host   string `yaml:"host"`
	APIKey string `yaml:"api_key"`
}

// CacheConfig contains Redis settings. An empty address disables caching.
type CacheConfig struct {
	RedisAddr     string `yaml:"redis_addr"`
	RedisPassword string `yaml:"redis_password"`
	RedisDB       int    `yaml:"redis_db"`
	TTLSeconds    int    `yaml:"ttl_seconds"`
}

// AuthConfig contains session token settings
type AuthConfig struct {
	JWTSecret     string `yaml:"jwt_secret"`
	TokenTTLHours int    `yaml:"token_ttl_hours"`
	// AdminEmail is mapped to the admin role. Demo only.
	AdminEmail string `yaml:"admin_email"`
}

// AdminConfig contains the admin console gate
type AdminConfig struct {
	PIN string `yaml:"pin"`
}

// MediaConfig contains CDN upload settings
type MediaConfig struct {
	CloudName      string `yaml:"cloud_name"`
	UploadPreset   string `yaml:"upload_preset"`
	TimeoutSeconds int    `yaml:"timeout_seconds"`
	MaxUploadMB    int    `yaml:"max_upload_mb"`
}

// AssistantConfig contains text-completion settings
type AssistantConfig struct {
	APIKey              string  `yaml:"api_key"`
	BaseURL             string  `yaml:"base_url"`
	Model               string  `yaml:"model"`
	Temperature         float32 `yaml:"temperature"`
	TimeoutSeconds      int     `yaml:"timeout_seconds"`
	CacheTTLSeconds     int     `yaml:"cache_ttl_seconds"`
	FailureThreshold    int     `yaml:"failure_threshold"`
	ResetTimeoutSeconds int     `yaml:"reset_timeout_seconds"`
}

// FeedConfig contains live feed settings
type FeedConfig struct {
	LoadTimeoutSeconds int    `yaml:"load_timeout_seconds"`
	RepublishSchedule  string `yaml:"republish_schedule"`
}

// RateLimitConfig contains rate limiting settings
type RateLimitConfig struct {
	Enabled           bool `yaml:"enabled"`
	RequestsPerMinute int  `yaml:"requests_per_minute"`
	RequestsPerHour   int  `yaml:"requests_per_hour"`
	RequestsPerDay    int  `yaml:"requests_per_day"`
}

// LoggingConfig contains logging settings
type LoggingConfig struct {
	Level       string `yaml:"level"`
	LogRequests bool   `yaml:"log_requests"`
}

// DefaultConfig returns default configuration
func DefaultConfig() *Config {
	return &Config{
		Server: ServerConfig{
			Port:         "8084",
			AllowOrigins: []string{"http://localhost:5173"},
		},
		Database: DatabaseConfig{
			Type: "memory",
			Mongo: MongoConfig{
				Database: "homequest",
			},
		},
		Search: SearchConfig{
			Enabled:         false,
			ReindexSchedule: "0 3 * * *",
		},
		Cache: CacheConfig{
			TTLSeconds: 300,
		},
		Auth: AuthConfig{
			TokenTTLHours: 24,
			AdminEmail:    "admin@homequest.com",
		},
		Admin: AdminConfig{
			PIN: "54321",
		},
		Media: MediaConfig{
			TimeoutSeconds: 60,
			MaxUploadMB:    50,
		},
		Assistant: AssistantConfig{
			Model:               "gpt-4o",
			Temperature:         0.7,
			TimeoutSeconds:      30,
			CacheTTLSeconds:     600,
			FailureThreshold:    3,
			ResetTimeoutSeconds: 60,
		},
		Feed: FeedConfig{
			LoadTimeoutSeconds: 10,
			RepublishSchedule:  "@every 1m",
		},
		RateLimit: RateLimitConfig{
			Enabled:           true,
			RequestsPerMinute: 30,
			RequestsPerHour:   600,
			RequestsPerDay:    5000,
		},
		Logging: LoggingConfig{
			Level:       "info",
			LogRequests: true,
		},
	}
}

// LoadConfig loads configuration from a YAML file, then applies
// environment overrides. A missing file yields the defaults.
func LoadConfig(filepath string) (*Config, error) {
	config := DefaultConfig()

	data, err := os.ReadFile(filepath)
	switch {
	case errors.Is(err, fs.ErrNotExist):
	case err != nil:
		return nil, fmt.Errorf("failed to read config file: %w", err)
	default:
		if err := yaml.Unmarshal(data, config); err != nil {
			return nil, fmt.Errorf("failed to parse config file: %w", err)
		}
	}

	config.ApplyEnv()
	return config, nil
}

// LoadDotEnv reads .env files into the process environment. Missing files
// are skipped; variables already set are not overwritten.
func LoadDotEnv(paths ...string) error {
	if len(paths) == 0 {
		paths = []string{".env"}
	}
	for _, p := range paths {
		if _, err := os.Stat(p); errors.Is(err, fs.ErrNotExist) {
			continue
		}
		if err := godotenv.Load(p); err != nil {
			return fmt.Errorf("failed to load %s: %w", p, err)
		}
	}
	return nil
}

// ApplyEnv overrides secrets and endpoints from the environment
func (c *Config) ApplyEnv() {
	setString(&c.Server.Port, "PORT")
	setString(&c.Database.Type, "DB_TYPE")
	setString(&c.Database.Mongo.URI, "MONGODB_URI")
	setString(&c.Database.Mongo.Database, "MONGODB_DATABASE")
	setString(&c.Search.Meilisearch.Host, "MEILISEARCH_HOST")
	setString(&c.Search.Meilisearch.APIKey, "MEILISEARCH_KEY")
	setString(&c.Cache.RedisAddr, "REDIS_ADDR")
	setString(&c.Cache.RedisPassword, "REDIS_PASSWORD")
	setString(&c.Auth.JWTSecret, "JWT_SECRET")
	setString(&c.Auth.AdminEmail, "ADMIN_EMAIL")
	setString(&c.Admin.PIN, "ADMIN_PIN")
	setString(&c.Media.CloudName, "CLOUDINARY_CLOUD_NAME")
	setString(&c.Media.UploadPreset, "CLOUDINARY_UPLOAD_PRESET")
	setString(&c.Assistant.APIKey, "OPENAI_API_KEY")
	setString(&c.Assistant.BaseURL, "OPENAI_BASE_URL")
	setString(&c.Assistant.Model, "OPENAI_MODEL")
	if v, err := strconv.ParseBool(os.Getenv("SEARCH_ENABLED")); err == nil {
		c.Search.Enabled = v
	}
}

func setString(dst *string, key string) {
	if v := os.Getenv(key); v != "" {
		*dst = v
	}
}

// Validate reports settings that make startup impossible
func (c *Config) Validate() error {
	switch c.Database.Type {
	case "memory", "mysql", "postgres", "mongo":
	default:
		return fmt.Errorf("unknown database type %q", c.Database.Type)
	}
	if c.Database.Type == "mongo" && c.Database.Mongo.URI == "" {
		return errors.New("database.mongo.uri is required for the mongo store")
	}
	if c.Auth.JWTSecret == "" {
		return errors.New("auth.jwt_secret (or JWT_SECRET) is required")
	}
	return nil
}

// TokenTTL returns the session token lifetime
func (c *AuthConfig) TokenTTL() time.Duration {
	return time.Duration(c.TokenTTLHours) * time.Hour
}

// Timeout returns the upload timeout as a duration
func (c *MediaConfig) Timeout() time.Duration {
	return time.Duration(c.TimeoutSeconds) * time.Second
}

// MaxUploadBytes returns the upload size limit
func (c *MediaConfig) MaxUploadBytes() int64 {
	return int64(c.MaxUploadMB) << 20
}

// Timeout returns the completion timeout as a duration
func (c *AssistantConfig) Timeout() time.Duration {
	return time.Duration(c.TimeoutSeconds) * time.Second
}

// CacheTTL returns how long replies are cached
func (c *AssistantConfig) CacheTTL() time.Duration {
	return time.Duration(c.CacheTTLSeconds) * time.Second
}

// ResetTimeout returns how long the breaker stays open
func (c *AssistantConfig) ResetTimeout() time.Duration {
	return time.Duration(c.ResetTimeoutSeconds) * time.Second
}

// LoadTimeout returns the per-load feed timeout
func (c *FeedConfig) LoadTimeout() time.Duration {
	return time.Duration(c.LoadTimeoutSeconds) * time.Second
}

// TTL returns the cache entry lifetime
func (c *CacheConfig) TTL() time.Duration {
	return time.Duration(c.TTLSeconds) * time.Second
}
