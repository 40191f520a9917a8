package config

import (
	"fmt"
	"os"
	"strings"
	"time"

	"github.com/spf13/viper"
)

// Config holds all application configuration.
type Config struct {
	Server   ServerConfig
	DB       DBConfig
	S3       S3Config
	Upload   UploadConfig
	Log      LogConfig
	CORS     CORSConfig
	Auth     AuthConfig
	Backend  BackendConfig
	Pipeline PipelineConfig
	Notify   NotifyConfig
	Metrics  MetricsConfig
}

// ServerConfig holds HTTP server settings.
type ServerConfig struct {
	Port         string        `mapstructure:"port"`
	ReadTimeout  time.Duration `mapstructure:"read_timeout"`
	WriteTimeout time.Duration `mapstructure:"write_timeout"`
	Environment  string        `mapstructure:"environment"`
}

// DBConfig holds PostgreSQL connection settings.
type DBConfig struct {
	Enabled  bool   `mapstructure:"enabled"`
	Host     string `mapstructure:"host"`
	Port     int    `mapstructure:"port"`
	User     string `mapstructure:"user"`
	Password string `mapstructure:"password"`
	Name     string `mapstructure:"name"`
	SSLMode  string `mapstructure:"sslmode"`
	MaxOpen  int    `mapstructure:"max_open"`
	MaxIdle  int    `mapstructure:"max_idle"`
}

// DSN returns the PostgreSQL connection string.
func (d *DBConfig) DSN() string {
	return fmt.Sprintf(
		"postgres://%s:%s@%s:%d/%s?sslmode=%s",
		d.User, d.Password, d.Host, d.Port, d.Name, d.SSLMode,
	)
}

// S3Config holds AWS S3 settings for the claim document archive.
type S3Config struct {
	Enabled   bool   `mapstructure:"enabled"`
	Region    string `mapstructure:"region"`
	Bucket    string `mapstructure:"bucket"`
	Endpoint  string `mapstructure:"endpoint"`
	AccessKey string `mapstructure:"access_key"`
	SecretKey string `mapstructure:"secret_key"`
	Prefix    string `mapstructure:"prefix"`
}

// UploadConfig bounds what a single claim submission may contain.
type UploadConfig struct {
	MaxFileSizeMB int64    `mapstructure:"max_file_size_mb"`
	MaxFiles      int      `mapstructure:"max_files"`
	AllowedTypes  []string `mapstructure:"allowed_types"`
}

// MaxFileSizeBytes returns the per-file limit in bytes.
func (u *UploadConfig) MaxFileSizeBytes() int64 {
	return u.MaxFileSizeMB * 1024 * 1024
}

// LogConfig holds logging settings.
type LogConfig struct {
	Level string `mapstructure:"level"`
}

// Debug reports whether per-document stage logging is on.
func (l LogConfig) Debug() bool {
	return strings.EqualFold(l.Level, "debug")
}

// CORSConfig holds CORS settings.
type CORSConfig struct {
	AllowedOrigins []string `mapstructure:"allowed_origins"`
}

// AuthConfig holds bearer token settings for API callers.
type AuthConfig struct {
	Enabled  bool          `mapstructure:"enabled"`
	Secret   string        `mapstructure:"secret"`
	Issuer   string        `mapstructure:"issuer"`
	TokenTTL time.Duration `mapstructure:"token_ttl"`
}

// BackendProviderConfig holds settings for a single text-intelligence provider.
type BackendProviderConfig struct {
	Provider     string `mapstructure:"provider"`
	APIKey       string `mapstructure:"api_key"`
	DefaultModel string `mapstructure:"default_model"`
	BaseURL      string `mapstructure:"base_url"`
	TimeoutSecs  int    `mapstructure:"timeout_secs"`
}

// ResilienceConfig tunes retries, the circuit breaker and the rate limiter around the backend.
type ResilienceConfig struct {
	RetryMaxAttempts    int           `mapstructure:"retry_max_attempts"`
	RetryInitialBackoff time.Duration `mapstructure:"retry_initial_backoff"`
	RetryMaxBackoff     time.Duration `mapstructure:"retry_max_backoff"`
	BreakerEnabled      bool          `mapstructure:"breaker_enabled"`
	BreakerMinRequests  uint32        `mapstructure:"breaker_min_requests"`
	BreakerFailureRatio float64       `mapstructure:"breaker_failure_ratio"`
	BreakerOpenTimeout  time.Duration `mapstructure:"breaker_open_timeout"`
	RequestsPerSecond   float64       `mapstructure:"requests_per_second"`
	Burst               int           `mapstructure:"burst"`
}

// BackendConfig holds text-intelligence backend settings with multi-provider support.
type BackendConfig struct {
	// Legacy flat fields
	Provider     string `mapstructure:"provider"`
	APIKey       string `mapstructure:"api_key"`
	DefaultModel string `mapstructure:"default_model"`
	BaseURL      string `mapstructure:"base_url"`
	TimeoutSecs  int    `mapstructure:"timeout_secs"`

	Primary   BackendProviderConfig `mapstructure:"primary"`
	Secondary BackendProviderConfig `mapstructure:"secondary"`
	Tertiary  BackendProviderConfig `mapstructure:"tertiary"`

	Resilience ResilienceConfig `mapstructure:"resilience"`
}

// PrimaryConfig returns the primary provider config, falling back to legacy flat fields.
func (b *BackendConfig) PrimaryConfig() *BackendProviderConfig {
	if b.Primary.Provider != "" {
		return &b.Primary
	}
	return &BackendProviderConfig{
		Provider:     b.Provider,
		APIKey:       b.APIKey,
		DefaultModel: b.DefaultModel,
		BaseURL:      b.BaseURL,
		TimeoutSecs:  b.TimeoutSecs,
	}
}

// SecondaryConfig returns the secondary provider config, or nil if not configured.
func (b *BackendConfig) SecondaryConfig() *BackendProviderConfig {
	if b.Secondary.Provider != "" {
		return &b.Secondary
	}
	return nil
}

// TertiaryConfig returns the tertiary provider config, or nil if not configured.
func (b *BackendConfig) TertiaryConfig() *BackendProviderConfig {
	if b.Tertiary.Provider != "" {
		return &b.Tertiary
	}
	return nil
}

// ProviderChain returns the configured providers in fallback order.
func (b *BackendConfig) ProviderChain() []*BackendProviderConfig {
	chain := []*BackendProviderConfig{b.PrimaryConfig()}
	if s := b.SecondaryConfig(); s != nil {
		chain = append(chain, s)
	}
	if t := b.TertiaryConfig(); t != nil {
		chain = append(chain, t)
	}
	return chain
}

// PipelineConfig is the single source of truth for adjudication policy and prompt limits.
type PipelineConfig struct {
	RequiredDocumentTypes []string `mapstructure:"required_document_types"`
	ComparableFields      []string `mapstructure:"comparable_fields"`
	AutoApproveLimit      float64  `mapstructure:"auto_approve_limit"`
	ClassifyMaxChars      int      `mapstructure:"classify_max_chars"`
	ExtractMaxChars       int      `mapstructure:"extract_max_chars"`
	BackendTimeoutSecs    int      `mapstructure:"backend_timeout_secs"`
	ClassifyTemperature   float64  `mapstructure:"classify_temperature"`
	ExtractTemperature    float64  `mapstructure:"extract_temperature"`
	ReviewRulesFile       string   `mapstructure:"review_rules_file"`
}

// BackendTimeout returns the deadline applied to each backend call.
func (p *PipelineConfig) BackendTimeout() time.Duration {
	if p.BackendTimeoutSecs <= 0 {
		return 60 * time.Second
	}
	return time.Duration(p.BackendTimeoutSecs) * time.Second
}

// NotifyConfig holds manual-review notification settings.
type NotifyConfig struct {
	Provider     string   `mapstructure:"provider"`
	Region       string   `mapstructure:"region"`
	FromAddress  string   `mapstructure:"from_address"`
	FromName     string   `mapstructure:"from_name"`
	Reviewers    []string `mapstructure:"reviewers"`
	DashboardURL string   `mapstructure:"dashboard_url"`
}

// MetricsConfig holds Prometheus exposition settings.
type MetricsConfig struct {
	Enabled bool   `mapstructure:"enabled"`
	Path    string `mapstructure:"path"`
}

// Load reads configuration from environment variables with the CLAIMFLOW_ prefix.
func Load() (*Config, error) {
	v := viper.New()
	v.SetEnvPrefix("CLAIMFLOW")
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	v.AutomaticEnv()

	// Server defaults
	v.SetDefault("server.port", ":8080")
	v.SetDefault("server.read_timeout", "30s")
	v.SetDefault("server.write_timeout", "300s")
	v.SetDefault("server.environment", "development")

	// DB defaults
	v.SetDefault("db.enabled", false)
	v.SetDefault("db.host", "localhost")
	v.SetDefault("db.port", 5432)
	v.SetDefault("db.user", "claimflow")
	v.SetDefault("db.password", "claimflow_secret")
	v.SetDefault("db.name", "claimflow_db")
	v.SetDefault("db.sslmode", "disable")
	v.SetDefault("db.max_open", 25)
	v.SetDefault("db.max_idle", 10)

	// S3 defaults
	v.SetDefault("s3.enabled", false)
	v.SetDefault("s3.region", "us-east-1")
	v.SetDefault("s3.bucket", "claimflow-documents")
	v.SetDefault("s3.endpoint", "")
	v.SetDefault("s3.prefix", "claims")

	// Upload defaults
	v.SetDefault("upload.max_file_size_mb", 10)
	v.SetDefault("upload.max_files", 20)
	v.SetDefault("upload.allowed_types", "pdf,jpg,png,txt")

	v.SetDefault("log.level", "info")

	v.SetDefault("cors.allowed_origins", "http://localhost:3000,http://127.0.0.1:3000")

	// Auth defaults
	v.SetDefault("auth.enabled", false)
	v.SetDefault("auth.secret", "change-me-in-production")
	v.SetDefault("auth.issuer", "claimflow")
	v.SetDefault("auth.token_ttl", "720h")

	// Backend defaults (legacy flat)
	v.SetDefault("backend.provider", "gemini")
	v.SetDefault("backend.api_key", "")
	v.SetDefault("backend.default_model", "")
	v.SetDefault("backend.base_url", "")
	v.SetDefault("backend.timeout_secs", 120)
	for _, tier := range []string{"primary", "secondary", "tertiary"} {
		v.SetDefault("backend."+tier+".provider", "")
		v.SetDefault("backend."+tier+".api_key", "")
		v.SetDefault("backend."+tier+".default_model", "")
		v.SetDefault("backend."+tier+".base_url", "")
		v.SetDefault("backend."+tier+".timeout_secs", 120)
	}

	// Backend resilience defaults
	v.SetDefault("backend.resilience.retry_max_attempts", 1)
	v.SetDefault("backend.resilience.retry_initial_backoff", "200ms")
	v.SetDefault("backend.resilience.retry_max_backoff", "2s")
	v.SetDefault("backend.resilience.breaker_enabled", true)
	v.SetDefault("backend.resilience.breaker_min_requests", 10)
	v.SetDefault("backend.resilience.breaker_failure_ratio", 0.5)
	v.SetDefault("backend.resilience.breaker_open_timeout", "30s")
	v.SetDefault("backend.resilience.requests_per_second", 0)
	v.SetDefault("backend.resilience.burst", 1)

	// Pipeline defaults
	v.SetDefault("pipeline.required_document_types", "bill,id_card")
	v.SetDefault("pipeline.comparable_fields", "patient_name,patient_id")
	v.SetDefault("pipeline.auto_approve_limit", 10000.0)
	v.SetDefault("pipeline.classify_max_chars", 2000)
	v.SetDefault("pipeline.extract_max_chars", 4000)
	v.SetDefault("pipeline.backend_timeout_secs", 60)
	v.SetDefault("pipeline.classify_temperature", 0.0)
	v.SetDefault("pipeline.extract_temperature", 0.1)
	v.SetDefault("pipeline.review_rules_file", "")

	// Notify defaults
	v.SetDefault("notify.provider", "noop")
	v.SetDefault("notify.region", "us-east-1")
	v.SetDefault("notify.from_address", "claims@claimflow.local")
	v.SetDefault("notify.from_name", "Claimflow")
	v.SetDefault("notify.reviewers", "")
	v.SetDefault("notify.dashboard_url", "http://localhost:3000")

	v.SetDefault("metrics.enabled", true)
	v.SetDefault("metrics.path", "/metrics")

	// Bind environment variables explicitly for nested keys
	envBindings := map[string]string{
		"server.port":                             "CLAIMFLOW_SERVER_PORT",
		"server.read_timeout":                     "CLAIMFLOW_SERVER_READ_TIMEOUT",
		"server.write_timeout":                    "CLAIMFLOW_SERVER_WRITE_TIMEOUT",
		"server.environment":                      "CLAIMFLOW_SERVER_ENVIRONMENT",
		"db.enabled":                              "CLAIMFLOW_DB_ENABLED",
		"db.host":                                 "CLAIMFLOW_DB_HOST",
		"db.port":                                 "CLAIMFLOW_DB_PORT",
		"db.user":                                 "CLAIMFLOW_DB_USER",
		"db.password":                             "CLAIMFLOW_DB_PASSWORD",
		"db.name":                                 "CLAIMFLOW_DB_NAME",
		"db.sslmode":                              "CLAIMFLOW_DB_SSLMODE",
		"db.max_open":                             "CLAIMFLOW_DB_MAX_OPEN",
		"db.max_idle":                             "CLAIMFLOW_DB_MAX_IDLE",
		"s3.enabled":                              "CLAIMFLOW_S3_ENABLED",
		"s3.region":                               "CLAIMFLOW_S3_REGION",
		"s3.bucket":                               "CLAIMFLOW_S3_BUCKET",
		"s3.endpoint":                             "CLAIMFLOW_S3_ENDPOINT",
		"s3.access_key":                           "CLAIMFLOW_S3_ACCESS_KEY",
		"s3.secret_key":                           "CLAIMFLOW_S3_SECRET_KEY",
		"s3.prefix":                               "CLAIMFLOW_S3_PREFIX",
		"upload.max_file_size_mb":                 "CLAIMFLOW_UPLOAD_MAX_FILE_SIZE_MB",
		"upload.max_files":                        "CLAIMFLOW_UPLOAD_MAX_FILES",
		"upload.allowed_types":                    "CLAIMFLOW_UPLOAD_ALLOWED_TYPES",
		"log.level":                               "CLAIMFLOW_LOG_LEVEL",
		"cors.allowed_origins":                    "CLAIMFLOW_CORS_ALLOWED_ORIGINS",
		"auth.enabled":                            "CLAIMFLOW_AUTH_ENABLED",
		"auth.secret":                             "CLAIMFLOW_AUTH_SECRET",
		"auth.issuer":                             "CLAIMFLOW_AUTH_ISSUER",
		"auth.token_ttl":                          "CLAIMFLOW_AUTH_TOKEN_TTL",
		"backend.provider":                        "CLAIMFLOW_BACKEND_PROVIDER",
		"backend.api_key":                         "CLAIMFLOW_BACKEND_API_KEY",
		"backend.default_model":                   "CLAIMFLOW_BACKEND_DEFAULT_MODEL",
		"backend.base_url":                        "CLAIMFLOW_BACKEND_BASE_URL",
		"backend.timeout_secs":                    "CLAIMFLOW_BACKEND_TIMEOUT_SECS",
		"backend.resilience.retry_max_attempts":   "CLAIMFLOW_BACKEND_RESILIENCE_RETRY_MAX_ATTEMPTS",
		"backend.resilience.breaker_enabled":      "CLAIMFLOW_BACKEND_RESILIENCE_BREAKER_ENABLED",
		"backend.resilience.breaker_open_timeout": "CLAIMFLOW_BACKEND_RESILIENCE_BREAKER_OPEN_TIMEOUT",
		"backend.resilience.requests_per_second":  "CLAIMFLOW_BACKEND_RESILIENCE_REQUESTS_PER_SECOND",
		"backend.resilience.burst":                "CLAIMFLOW_BACKEND_RESILIENCE_BURST",
		"pipeline.required_document_types":        "CLAIMFLOW_PIPELINE_REQUIRED_DOCUMENT_TYPES",
		"pipeline.comparable_fields":              "CLAIMFLOW_PIPELINE_COMPARABLE_FIELDS",
		"pipeline.auto_approve_limit":             "CLAIMFLOW_PIPELINE_AUTO_APPROVE_LIMIT",
		"pipeline.classify_max_chars":             "CLAIMFLOW_PIPELINE_CLASSIFY_MAX_CHARS",
		"pipeline.extract_max_chars":              "CLAIMFLOW_PIPELINE_EXTRACT_MAX_CHARS",
		"pipeline.backend_timeout_secs":           "CLAIMFLOW_PIPELINE_BACKEND_TIMEOUT_SECS",
		"pipeline.review_rules_file":              "CLAIMFLOW_PIPELINE_REVIEW_RULES_FILE",
		"notify.provider":                         "CLAIMFLOW_NOTIFY_PROVIDER",
		"notify.region":                           "CLAIMFLOW_NOTIFY_REGION",
		"notify.from_address":                     "CLAIMFLOW_NOTIFY_FROM_ADDRESS",
		"notify.from_name":                        "CLAIMFLOW_NOTIFY_FROM_NAME",
		"notify.reviewers":                        "CLAIMFLOW_NOTIFY_REVIEWERS",
		"notify.dashboard_url":                    "CLAIMFLOW_NOTIFY_DASHBOARD_URL",
		"metrics.enabled":                         "CLAIMFLOW_METRICS_ENABLED",
		"metrics.path":                            "CLAIMFLOW_METRICS_PATH",
	}
	for _, tier := range []string{"primary", "secondary", "tertiary"} {
		for _, field := range []string{"provider", "api_key", "default_model", "base_url", "timeout_secs"} {
			key := "backend." + tier + "." + field
			envBindings[key] = "CLAIMFLOW_" + strings.ToUpper(strings.ReplaceAll(key, ".", "_"))
		}
	}
	for key, env := range envBindings {
		_ = v.BindEnv(key, env)
	}

	cfg := &Config{}

	// Platform-provided PORT wins unless CLAIMFLOW_SERVER_PORT is explicitly set.
	serverPort := v.GetString("server.port")
	if port := os.Getenv("PORT"); port != "" && os.Getenv("CLAIMFLOW_SERVER_PORT") == "" {
		serverPort = ":" + port
	}

	cfg.Server = ServerConfig{
		Port:         serverPort,
		ReadTimeout:  v.GetDuration("server.read_timeout"),
		WriteTimeout: v.GetDuration("server.write_timeout"),
		Environment:  v.GetString("server.environment"),
	}
	cfg.DB = DBConfig{
		Enabled:  v.GetBool("db.enabled"),
		Host:     v.GetString("db.host"),
		Port:     v.GetInt("db.port"),
		User:     v.GetString("db.user"),
		Password: v.GetString("db.password"),
		Name:     v.GetString("db.name"),
		SSLMode:  v.GetString("db.sslmode"),
		MaxOpen:  v.GetInt("db.max_open"),
		MaxIdle:  v.GetInt("db.max_idle"),
	}
	cfg.S3 = S3Config{
		Enabled:   v.GetBool("s3.enabled"),
		Region:    v.GetString("s3.region"),
		Bucket:    v.GetString("s3.bucket"),
		Endpoint:  v.GetString("s3.endpoint"),
		AccessKey: v.GetString("s3.access_key"),
		SecretKey: v.GetString("s3.secret_key"),
		Prefix:    v.GetString("s3.prefix"),
	}
	cfg.Upload = UploadConfig{
		MaxFileSizeMB: v.GetInt64("upload.max_file_size_mb"),
		MaxFiles:      v.GetInt("upload.max_files"),
		AllowedTypes:  splitList(v.GetString("upload.allowed_types")),
	}
	cfg.Log = LogConfig{
		Level: v.GetString("log.level"),
	}
	cfg.CORS = CORSConfig{
		AllowedOrigins: splitList(v.GetString("cors.allowed_origins")),
	}
	cfg.Auth = AuthConfig{
		Enabled:  v.GetBool("auth.enabled"),
		Secret:   v.GetString("auth.secret"),
		Issuer:   v.GetString("auth.issuer"),
		TokenTTL: v.GetDuration("auth.token_ttl"),
	}

	cfg.Backend = BackendConfig{
		Provider:     v.GetString("backend.provider"),
		APIKey:       v.GetString("backend.api_key"),
		DefaultModel: v.GetString("backend.default_model"),
		BaseURL:      v.GetString("backend.base_url"),
		TimeoutSecs:  v.GetInt("backend.timeout_secs"),
		Primary:      providerConfig(v, "primary"),
		Secondary:    providerConfig(v, "secondary"),
		Tertiary:     providerConfig(v, "tertiary"),
		Resilience: ResilienceConfig{
			RetryMaxAttempts:    v.GetInt("backend.resilience.retry_max_attempts"),
			RetryInitialBackoff: v.GetDuration("backend.resilience.retry_initial_backoff"),
			RetryMaxBackoff:     v.GetDuration("backend.resilience.retry_max_backoff"),
			BreakerEnabled:      v.GetBool("backend.resilience.breaker_enabled"),
			BreakerMinRequests:  v.GetUint32("backend.resilience.breaker_min_requests"),
			BreakerFailureRatio: v.GetFloat64("backend.resilience.breaker_failure_ratio"),
			BreakerOpenTimeout:  v.GetDuration("backend.resilience.breaker_open_timeout"),
			RequestsPerSecond:   v.GetFloat64("backend.resilience.requests_per_second"),
			Burst:               v.GetInt("backend.resilience.burst"),
		},
	}

	cfg.Pipeline = PipelineConfig{
		RequiredDocumentTypes: splitList(v.GetString("pipeline.required_document_types")),
		ComparableFields:      splitList(v.GetString("pipeline.comparable_fields")),
		AutoApproveLimit:      v.GetFloat64("pipeline.auto_approve_limit"),
		ClassifyMaxChars:      v.GetInt("pipeline.classify_max_chars"),
		ExtractMaxChars:       v.GetInt("pipeline.extract_max_chars"),
		BackendTimeoutSecs:    v.GetInt("pipeline.backend_timeout_secs"),
		ClassifyTemperature:   v.GetFloat64("pipeline.classify_temperature"),
		ExtractTemperature:    v.GetFloat64("pipeline.extract_temperature"),
		ReviewRulesFile:       v.GetString("pipeline.review_rules_file"),
	}

	cfg.Notify = NotifyConfig{
		Provider:     v.GetString("notify.provider"),
		Region:       v.GetString("notify.region"),
		FromAddress:  v.GetString("notify.from_address"),
		FromName:     v.GetString("notify.from_name"),
		Reviewers:    splitList(v.GetString("notify.reviewers")),
		DashboardURL: v.GetString("notify.dashboard_url"),
	}

	cfg.Metrics = MetricsConfig{
		Enabled: v.GetBool("metrics.enabled"),
		Path:    v.GetString("metrics.path"),
	}

	if cfg.Auth.Enabled && cfg.Auth.Secret == "" {
		return nil, fmt.Errorf("auth is enabled but CLAIMFLOW_AUTH_SECRET is empty")
	}
	if cfg.Pipeline.AutoApproveLimit < 0 {
		return nil, fmt.Errorf("pipeline.auto_approve_limit must not be negative: %v", cfg.Pipeline.AutoApproveLimit)
	}

	return cfg, nil
}

func providerConfig(v *viper.Viper, tier string) BackendProviderConfig {
	prefix := "backend." + tier + "."
	return BackendProviderConfig{
		Provider:     v.GetString(prefix + "provider"),
		APIKey:       v.GetString(prefix + "api_key"),
		DefaultModel: v.GetString(prefix + "default_model"),
		BaseURL:      v.GetString(prefix + "base_url"),
		TimeoutSecs:  v.GetInt(prefix + "timeout_secs"),
	}
}

// splitList parses a comma-separated setting, dropping blanks.
func splitList(s string) []string {
	var out []string
	for _, item := range strings.Split(s, ",") {
		item = strings.TrimSpace(item)
		if item != "" {
			out = append(out, item)
		}
	}
	return out
}
