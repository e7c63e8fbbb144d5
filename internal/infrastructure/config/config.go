package config

import (
	"fmt"
	"net/url"
	"strings"
	"time"

	"github.com/spf13/viper"
)

// Config holds all exporter configuration
type Config struct {
	App        AppConfig
	Log        LogConfig
	Database   DatabaseConfig
	DocumentDB DatabaseConfig
	Redis      RedisConfig
	Storage    StorageConfig
	Download   DownloadConfig
	Pipeline   PipelineConfig
}

// AppConfig holds application-specific settings
type AppConfig struct {
	Name string
	Env  string
}

// LogConfig holds logging configuration
type LogConfig struct {
	Level  string // debug, info, warn, error
	Format string // json, console
	Output string // stdout, stderr, or file path
}

// DatabaseConfig holds connection settings for a postgres database. The same
// shape serves both the relational store and the document store, which are
// independent databases.
type DatabaseConfig struct {
	Host            string
	Port            int
	User            string
	Password        string
	DBName          string
	SSLMode         string
	MaxOpenConns    int
	MaxIdleConns    int
	ConnMaxLifetime int // in minutes
	ConnMaxIdleTime int // in minutes
}

// RedisConfig holds the optional fingerprint-cache connection settings
type RedisConfig struct {
	Enabled  bool
	Host     string
	Port     int
	Password string
	DB       int
}

// StorageConfig holds object storage settings. Provider selects the adapter
// family: "s3" (pre-signed URLs), "minio" (static container URLs), or
// "stub" (local development).
type StorageConfig struct {
	Provider          string
	Bucket            string
	Endpoint          string
	Region            string
	AccessKey         string
	SecretKey         string
	UseSSL            bool
	UsePathStyle      bool
	PresignExpiration time.Duration
}

// DownloadConfig holds fetcher settings
type DownloadConfig struct {
	Dir             string        // scratch directory for downloaded files
	Timeout         time.Duration // per-request timeout
	MaxAttempts     int           // attempts per download, transient failures only
	BrowserPatterns []string      // URL substrings routed to the browser fetcher
	BrowserSelector string        // CSS selector of the download trigger
	NoSandbox       bool          // required when Chrome runs as root
}

// PipelineConfig holds row processing settings
type PipelineConfig struct {
	AttachmentColumn string
	BaseURL          string
	Client           string
	Source           string
	InputPath        string
	OutputPath       string
	DryRun           bool
}

// Load loads configuration from TOML file and environment variables
// Priority (highest to lowest):
// 1. Environment variables with EXPORTER_ prefix (e.g., EXPORTER_DATABASE_PASSWORD)
// 2. config.toml
// 3. Built-in defaults
func Load() (*Config, error) {
	v := viper.New()

	v.SetConfigName("config")
	v.SetConfigType("toml")
	v.AddConfigPath(".")
	v.AddConfigPath("/app")

	if err := v.ReadInConfig(); err != nil {
		if _, ok := err.(viper.ConfigFileNotFoundError); !ok {
			return nil, fmt.Errorf("error reading config file: %w", err)
		}
		// Config file not found is OK, we'll use defaults and env vars
	}

	v.SetEnvPrefix("EXPORTER")
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	v.AutomaticEnv()

	cfg := &Config{
		App: AppConfig{
			Name: v.GetString("app.name"),
			Env:  v.GetString("app.env"),
		},
		Log: LogConfig{
			Level:  v.GetString("log.level"),
			Format: v.GetString("log.format"),
			Output: v.GetString("log.output"),
		},
		Database:   databaseSection(v, "database"),
		DocumentDB: databaseSection(v, "documentdb"),
		Redis: RedisConfig{
			Enabled:  v.GetBool("redis.enabled"),
			Host:     v.GetString("redis.host"),
			Port:     v.GetInt("redis.port"),
			Password: v.GetString("redis.password"),
			DB:       v.GetInt("redis.db"),
		},
		Storage: StorageConfig{
			Provider:          v.GetString("storage.provider"),
			Bucket:            v.GetString("storage.bucket"),
			Endpoint:          v.GetString("storage.endpoint"),
			Region:            v.GetString("storage.region"),
			AccessKey:         v.GetString("storage.access_key"),
			SecretKey:         v.GetString("storage.secret_key"),
			UseSSL:            v.GetBool("storage.use_ssl"),
			UsePathStyle:      v.GetBool("storage.use_path_style"),
			PresignExpiration: v.GetDuration("storage.presign_expiration"),
		},
		Download: DownloadConfig{
			Dir:             v.GetString("download.dir"),
			Timeout:         v.GetDuration("download.timeout"),
			MaxAttempts:     v.GetInt("download.max_attempts"),
			BrowserPatterns: v.GetStringSlice("download.browser_patterns"),
			BrowserSelector: v.GetString("download.browser_selector"),
			NoSandbox:       v.GetBool("download.no_sandbox"),
		},
		Pipeline: PipelineConfig{
			AttachmentColumn: v.GetString("pipeline.attachment_column"),
			BaseURL:          v.GetString("pipeline.base_url"),
			Client:           v.GetString("pipeline.client"),
			Source:           v.GetString("pipeline.source"),
			InputPath:        v.GetString("pipeline.input_path"),
			OutputPath:       v.GetString("pipeline.output_path"),
			DryRun:           v.GetBool("pipeline.dry_run"),
		},
	}

	applyDefaults(cfg)

	if err := cfg.validate(); err != nil {
		return nil, err
	}

	return cfg, nil
}

func databaseSection(v *viper.Viper, section string) DatabaseConfig {
	return DatabaseConfig{
		Host:            v.GetString(section + ".host"),
		Port:            v.GetInt(section + ".port"),
		User:            v.GetString(section + ".user"),
		Password:        v.GetString(section + ".password"),
		DBName:          v.GetString(section + ".dbname"),
		SSLMode:         v.GetString(section + ".sslmode"),
		MaxOpenConns:    v.GetInt(section + ".max_open_conns"),
		MaxIdleConns:    v.GetInt(section + ".max_idle_conns"),
		ConnMaxLifetime: v.GetInt(section + ".conn_max_lifetime"),
		ConnMaxIdleTime: v.GetInt(section + ".conn_max_idle_time"),
	}
}

// applyDefaults sets default values for any empty config fields
func applyDefaults(cfg *Config) {
	if cfg.App.Name == "" {
		cfg.App.Name = "expense-exporter"
	}
	if cfg.App.Env == "" {
		cfg.App.Env = "development"
	}
	if cfg.Log.Level == "" {
		cfg.Log.Level = "info"
	}
	if cfg.Log.Format == "" {
		cfg.Log.Format = "console"
	}
	if cfg.Log.Output == "" {
		cfg.Log.Output = "stdout"
	}
	applyDatabaseDefaults(&cfg.Database, "hotel_invoices")
	applyDatabaseDefaults(&cfg.DocumentDB, "invoice_documents")
	if cfg.Redis.Host == "" {
		cfg.Redis.Host = "localhost"
	}
	if cfg.Redis.Port == 0 {
		cfg.Redis.Port = 6379
	}
	if cfg.Storage.Provider == "" {
		cfg.Storage.Provider = "s3"
	}
	if cfg.Storage.Region == "" {
		cfg.Storage.Region = "ap-south-1"
	}
	if cfg.Storage.PresignExpiration == 0 {
		cfg.Storage.PresignExpiration = 144 * time.Hour // 6 days
	}
	if cfg.Download.Dir == "" {
		cfg.Download.Dir = "downloads"
	}
	if cfg.Download.Timeout == 0 {
		cfg.Download.Timeout = 30 * time.Second
	}
	if cfg.Download.MaxAttempts == 0 {
		cfg.Download.MaxAttempts = 3
	}
	if cfg.Download.BrowserSelector == "" {
		cfg.Download.BrowserSelector = "a.download-invoice"
	}
	if cfg.Pipeline.AttachmentColumn == "" {
		cfg.Pipeline.AttachmentColumn = "HOTEL_INVOICE_PATH"
	}
	if cfg.Pipeline.BaseURL == "" {
		cfg.Pipeline.BaseURL = "https://files.finkraft.ai/"
	}
	if cfg.Pipeline.Source == "" {
		cfg.Pipeline.Source = "tmc-portal"
	}
}

func applyDatabaseDefaults(d *DatabaseConfig, dbname string) {
	if d.Host == "" {
		d.Host = "localhost"
	}
	if d.Port == 0 {
		d.Port = 5432
	}
	if d.User == "" {
		d.User = "postgres"
	}
	if d.DBName == "" {
		d.DBName = dbname
	}
	if d.SSLMode == "" {
		d.SSLMode = "disable"
	}
	if d.MaxOpenConns == 0 {
		d.MaxOpenConns = 10
	}
	if d.MaxIdleConns == 0 {
		d.MaxIdleConns = 2
	}
	if d.ConnMaxLifetime == 0 {
		d.ConnMaxLifetime = 60
	}
	if d.ConnMaxIdleTime == 0 {
		d.ConnMaxIdleTime = 30
	}
}

// validate performs validation on the configuration
func (c *Config) validate() error {
	if c.Database.MaxOpenConns <= 0 {
		return fmt.Errorf("database.max_open_conns must be positive")
	}
	if c.Database.MaxIdleConns > c.Database.MaxOpenConns {
		return fmt.Errorf("database.max_idle_conns (%d) cannot exceed database.max_open_conns (%d)",
			c.Database.MaxIdleConns, c.Database.MaxOpenConns)
	}

	switch c.Storage.Provider {
	case "s3", "minio", "stub":
	default:
		return fmt.Errorf("storage.provider must be one of s3, minio, stub; got %q", c.Storage.Provider)
	}

	if c.Pipeline.Client == "" && !c.Pipeline.DryRun {
		return fmt.Errorf("pipeline.client is required")
	}
	if c.Pipeline.InputPath == "" {
		return fmt.Errorf("pipeline.input_path is required")
	}

	if c.Download.MaxAttempts < 1 || c.Download.MaxAttempts > 5 {
		return fmt.Errorf("download.max_attempts must be between 1 and 5, got %d", c.Download.MaxAttempts)
	}

	if c.App.Env == "production" {
		if c.Storage.Provider == "stub" {
			return fmt.Errorf("storage.provider cannot be 'stub' in production")
		}
		if c.Storage.AccessKey == "" || c.Storage.SecretKey == "" {
			return fmt.Errorf("storage credentials are required in production")
		}
		if c.Database.Password == "" {
			return fmt.Errorf("database.password is required in production")
		}
		if c.Database.SSLMode == "disable" {
			return fmt.Errorf("database.sslmode cannot be 'disable' in production")
		}
	}

	return nil
}

// DSN returns the database connection string with properly escaped values
func (d *DatabaseConfig) DSN() string {
	u := url.URL{
		Scheme: "postgres",
		User:   url.UserPassword(d.User, d.Password),
		Host:   fmt.Sprintf("%s:%d", d.Host, d.Port),
		Path:   d.DBName,
	}
	q := u.Query()
	q.Set("sslmode", d.SSLMode)
	u.RawQuery = q.Encode()
	return u.String()
}

// Addr returns the host:port address for the Redis client
func (r *RedisConfig) Addr() string {
	return fmt.Sprintf("%s:%d", r.Host, r.Port)
}
