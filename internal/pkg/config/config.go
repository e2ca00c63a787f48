// internal/pkg/config/config.go
package config

import (
	"fmt"
	"log/slog"
	"os"
	"strings"
	"time"

	"github.com/joho/godotenv"
	"github.com/spf13/viper"

	"github.com/ammerola/api-framework/internal/adapters/db"
)

// Config holds all harness configuration
type Config struct {
	App      AppConfig      `mapstructure:"app" validate:"required"`
	Database DatabaseConfig `mapstructure:"db" validate:"required"`
	API      APIConfig      `mapstructure:"api" validate:"required"`
	AWS      AWSConfig      `mapstructure:"aws"`
	Redis    RedisConfig    `mapstructure:"redis"`
	Reports  ReportsConfig  `mapstructure:"reports"`
}

// AppConfig holds process-level settings
type AppConfig struct {
	Name        string `mapstructure:"name" validate:"required"`
	Environment string `mapstructure:"env" validate:"required,oneof=development local test ci staging production"`
	Version     string `mapstructure:"version"`
	LogLevel    string `mapstructure:"log_level" validate:"required,oneof=debug info warn error"`
	LogFormat   string `mapstructure:"log_format" validate:"required,oneof=json text"`
	// LogFiles mirrors every record to these files as JSON
	LogFiles []string `mapstructure:"log_files"`
}

// DatabaseConfig holds database configuration
type DatabaseConfig struct {
	Host               string        `mapstructure:"host" validate:"required,hostname_rfc1123|ip"`
	Port               int           `mapstructure:"port" validate:"required,gt=0,lt=65536"`
	User               string        `mapstructure:"user" validate:"required"`
	Password           string        `mapstructure:"password"`
	PasswordSecretID   string        `mapstructure:"password_secret_id"`
	PasswordSecretKey  string        `mapstructure:"password_secret_key"`
	Name               string        `mapstructure:"name" validate:"required"`
	SSLMode            string        `mapstructure:"ssl_mode" validate:"oneof=disable allow prefer require verify-ca verify-full"`
	MinConnections     int32         `mapstructure:"min_connections" validate:"gte=0"`
	MaxConnections     int32         `mapstructure:"max_connections" validate:"gte=1,gtefield=MinConnections"`
	MaxConnLifetime    time.Duration `mapstructure:"connection_lifetime"`
	MaxConnIdleTime    time.Duration `mapstructure:"idle_time"`
	HealthCheckPeriod  time.Duration `mapstructure:"health_check_period"`
	ConnectTimeout     time.Duration `mapstructure:"connect_timeout"`
	AcquireTimeout     time.Duration `mapstructure:"acquire_timeout" validate:"gte=0"`
	EnableQueryLogging bool          `mapstructure:"query_logging"`
}

// APIConfig holds settings for the services under test
type APIConfig struct {
	BaseURL       string        `mapstructure:"base_url" validate:"required,url"`
	DogAPIBaseURL string        `mapstructure:"dog_base_url" validate:"required,url"`
	Timeout       time.Duration `mapstructure:"timeout" validate:"gt=0"`
	RateLimit     float64       `mapstructure:"rate_limit" validate:"gte=0"`
	RateBurst     int           `mapstructure:"rate_burst" validate:"gte=0"`
	UserAgent     string        `mapstructure:"user_agent"`
}

// AWSConfig holds AWS configuration used for secret lookups and report uploads
type AWSConfig struct {
	Region          string `mapstructure:"region"`
	AccessKeyID     string `mapstructure:"access_key_id"`
	SecretAccessKey string `mapstructure:"secret_access_key"`
}

// RedisConfig enables the GET response cache when URL is set
type RedisConfig struct {
	URL      string        `mapstructure:"url" validate:"omitempty,url"`
	CacheTTL time.Duration `mapstructure:"cache_ttl" validate:"gte=0"`
}

// ReportsConfig names the bucket check reports are uploaded to
type ReportsConfig struct {
	Bucket       string `mapstructure:"bucket"`
	Prefix       string `mapstructure:"prefix"`
	Endpoint     string `mapstructure:"endpoint" validate:"omitempty,url"`
	UsePathStyle bool   `mapstructure:"use_path_style"`
}

// Load reads configuration from the environment, an optional .env file and
// the file named by HARNESS_CONFIG.
func Load(logger *slog.Logger) (*Config, error) {
	return LoadFile(logger, os.Getenv("HARNESS_CONFIG"))
}

// LoadFile is Load with an explicit config file. An empty path skips the file.
func LoadFile(logger *slog.Logger, path string) (*Config, error) {
	env := os.Getenv("APP_ENV")
	if env == "" {
		env = "development"
	}

	if env == "development" || env == "local" {
		if err := godotenv.Load(); err != nil {
			logger.Debug("no .env file found, using environment variables",
				slog.String("error", err.Error()))
		} else {
			logger.Info(".env file loaded successfully")
		}
	}

	v := viper.New()
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	v.AutomaticEnv()
	setDefaults(v, env)
	bindLegacyEnv(v)

	if path != "" {
		v.SetConfigFile(path)
		if err := v.ReadInConfig(); err != nil {
			return nil, fmt.Errorf("failed to read config file %s: %w", path, err)
		}
		logger.Debug("config file loaded", slog.String("path", v.ConfigFileUsed()))
	}

	cfg := &Config{}
	if err := v.Unmarshal(cfg); err != nil {
		return nil, fmt.Errorf("failed to decode configuration: %w", err)
	}

	if err := cfg.Validate(); err != nil {
		return nil, fmt.Errorf("configuration validation failed: %w", err)
	}

	return cfg, nil
}

// DBConfig converts the loaded settings into the accessor's config.
func (c *Config) DBConfig() *db.Config {
	return &db.Config{
		Host:               c.Database.Host,
		Port:               c.Database.Port,
		User:               c.Database.User,
		Password:           c.Database.Password,
		Database:           c.Database.Name,
		SSLMode:            c.Database.SSLMode,
		MinConnections:     c.Database.MinConnections,
		MaxConnections:     c.Database.MaxConnections,
		MaxConnLifetime:    c.Database.MaxConnLifetime,
		MaxConnIdleTime:    c.Database.MaxConnIdleTime,
		HealthCheckPeriod:  c.Database.HealthCheckPeriod,
		ConnectTimeout:     c.Database.ConnectTimeout,
		AcquireTimeout:     c.Database.AcquireTimeout,
		EnableQueryLogging: c.Database.EnableQueryLogging,
	}
}

// GetDatabaseURL returns the formatted database connection string
func (c *Config) GetDatabaseURL() string {
	return c.DBConfig().URL()
}

// IsProduction returns true if running in production
func (c *Config) IsProduction() bool {
	return c.App.Environment == "production"
}

// IsDevelopment returns true if running in development
func (c *Config) IsDevelopment() bool {
	return c.App.Environment == "development" || c.App.Environment == "local"
}

func setDefaults(v *viper.Viper, env string) {
	v.SetDefault("app.name", "api-framework")
	v.SetDefault("app.env", env)
	v.SetDefault("app.version", "dev")
	v.SetDefault("app.log_level", "info")
	v.SetDefault("app.log_format", "text")
	v.SetDefault("app.log_files", []string{})

	v.SetDefault("db.host", "localhost")
	v.SetDefault("db.port", 5432)
	v.SetDefault("db.user", "postgres")
	v.SetDefault("db.password", "")
	v.SetDefault("db.password_secret_id", "")
	v.SetDefault("db.password_secret_key", "password")
	v.SetDefault("db.name", "postgres")
	v.SetDefault("db.ssl_mode", "disable")
	v.SetDefault("db.min_connections", 1)
	v.SetDefault("db.max_connections", 10)
	v.SetDefault("db.connection_lifetime", time.Hour)
	v.SetDefault("db.idle_time", 30*time.Minute)
	v.SetDefault("db.health_check_period", time.Minute)
	v.SetDefault("db.connect_timeout", 10*time.Second)
	v.SetDefault("db.acquire_timeout", 30*time.Second)
	v.SetDefault("db.query_logging", false)

	v.SetDefault("api.base_url", "https://fakerestapi.azurewebsites.net/")
	v.SetDefault("api.dog_base_url", "https://dogapi.dog/api/v2/")
	v.SetDefault("api.timeout", 30*time.Second)
	v.SetDefault("api.rate_limit", 0)
	v.SetDefault("api.rate_burst", 1)
	v.SetDefault("api.user_agent", "api-framework/dev")

	v.SetDefault("aws.region", "us-east-1")
	v.SetDefault("aws.access_key_id", "")
	v.SetDefault("aws.secret_access_key", "")

	v.SetDefault("redis.url", "")
	v.SetDefault("redis.cache_ttl", 5*time.Minute)

	v.SetDefault("reports.bucket", "")
	v.SetDefault("reports.prefix", "harness/reports")
	v.SetDefault("reports.endpoint", "")
	v.SetDefault("reports.use_path_style", false)
}

// bindLegacyEnv maps the short variable names that predate the nested keys.
func bindLegacyEnv(v *viper.Viper) {
	_ = v.BindEnv("app.env", "APP_ENV")
	_ = v.BindEnv("app.log_level", "LOG_LEVEL", "APP_LOG_LEVEL")
	_ = v.BindEnv("app.log_format", "LOG_FORMAT", "APP_LOG_FORMAT")
	_ = v.BindEnv("app.log_files", "LOG_FILES", "APP_LOG_FILES")
	_ = v.BindEnv("api.dog_base_url", "DOG_API_BASE_URL", "API_DOG_BASE_URL")
	_ = v.BindEnv("db.connection_lifetime", "DB_CONNECTION_LIFETIME")
	_ = v.BindEnv("aws.region", "AWS_REGION", "AWS_DEFAULT_REGION")
	_ = v.BindEnv("reports.bucket", "REPORTS_BUCKET", "HARNESS_REPORTS_BUCKET")
}
