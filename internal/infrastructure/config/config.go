// Package config loads the closet service settings from config.toml, .env and
// CLOSET_* environment variables.
package config

import (
	"errors"
	"fmt"
	"io/fs"
	"net/url"
	"slices"
	"strings"
	"time"

	"github.com/joho/godotenv"
	"github.com/spf13/viper"
)

// EnvPrefix namespaces every environment override, e.g. CLOSET_DATABASE_PASSWORD.
const EnvPrefix = "CLOSET"

type Config struct {
	App       AppConfig       `mapstructure:"app"`
	Database  DatabaseConfig  `mapstructure:"database"`
	Redis     RedisConfig     `mapstructure:"redis"`
	JWT       JWTConfig       `mapstructure:"jwt"`
	Cookie    CookieConfig    `mapstructure:"cookie"`
	Log       LogConfig       `mapstructure:"log"`
	HTTP      HTTPConfig      `mapstructure:"http"`
	Storage   StorageConfig   `mapstructure:"storage"`
	Imaging   ImagingConfig   `mapstructure:"imaging"`
	Scheduler SchedulerConfig `mapstructure:"scheduler"`
	Swagger   SwaggerConfig   `mapstructure:"swagger"`
	Telemetry TelemetryConfig `mapstructure:"telemetry"`
}

type LogConfig struct {
	Level  string `mapstructure:"level"`
	Format string `mapstructure:"format"` // json or console
	Output string `mapstructure:"output"` // stdout, stderr or a file path
}

type AppConfig struct {
	Name string `mapstructure:"name"`
	Env  string `mapstructure:"env"`
	Port string `mapstructure:"port"`
}

func (a AppConfig) IsProduction() bool {
	return a.Env == "production"
}

type DatabaseConfig struct {
	Host            string `mapstructure:"host"`
	Port            int    `mapstructure:"port"`
	User            string `mapstructure:"user"`
	Password        string `mapstructure:"password"`
	DBName          string `mapstructure:"dbname"`
	SSLMode         string `mapstructure:"sslmode"`
	MaxOpenConns    int    `mapstructure:"max_open_conns"`
	MaxIdleConns    int    `mapstructure:"max_idle_conns"`
	ConnMaxLifetime int    `mapstructure:"conn_max_lifetime"`  // minutes
	ConnMaxIdleTime int    `mapstructure:"conn_max_idle_time"` // minutes
	// ConnectTimeout bounds the startup wait for the server to accept connections.
	ConnectTimeout time.Duration `mapstructure:"connect_timeout"`
}

// RedisConfig locates the shared token blacklist. When disabled, revocations
// live in process memory.
type RedisConfig struct {
	Enabled  bool   `mapstructure:"enabled"`
	Host     string `mapstructure:"host"`
	Port     int    `mapstructure:"port"`
	Password string `mapstructure:"password"`
	DB       int    `mapstructure:"db"`
}

func (r RedisConfig) Addr() string {
	return fmt.Sprintf("%s:%d", r.Host, r.Port)
}

type JWTConfig struct {
	Secret                 string        `mapstructure:"secret"`
	RefreshSecret          string        `mapstructure:"refresh_secret"`
	AccessTokenExpiration  time.Duration `mapstructure:"access_token_expiration"`
	RefreshTokenExpiration time.Duration `mapstructure:"refresh_token_expiration"`
	Issuer                 string        `mapstructure:"issuer"`
	MaxRefreshCount        int           `mapstructure:"max_refresh_count"`
}

// CookieConfig controls the HTTP-only cookies login sets next to the JSON tokens.
type CookieConfig struct {
	Enabled          bool   `mapstructure:"enabled"`
	AccessTokenName  string `mapstructure:"access_token_name"`
	RefreshTokenName string `mapstructure:"refresh_token_name"`
	Domain           string `mapstructure:"domain"` // empty means the request host
	Path             string `mapstructure:"path"`
	Secure           bool   `mapstructure:"secure"`
	SameSite         string `mapstructure:"same_site"` // strict, lax or none
}

type HTTPConfig struct {
	ReadTimeout           time.Duration `mapstructure:"read_timeout"`
	WriteTimeout          time.Duration `mapstructure:"write_timeout"`
	IdleTimeout           time.Duration `mapstructure:"idle_timeout"`
	MaxHeaderBytes        int           `mapstructure:"max_header_bytes"`
	MaxBodySize           int64         `mapstructure:"max_body_size"`
	RateLimitEnabled      bool          `mapstructure:"rate_limit_enabled"`
	RateLimitRequests     int           `mapstructure:"rate_limit_requests"`
	RateLimitWindow       time.Duration `mapstructure:"rate_limit_window"`
	AuthRateLimitEnabled  bool          `mapstructure:"auth_rate_limit_enabled"`
	AuthRateLimitRequests int           `mapstructure:"auth_rate_limit_requests"`
	AuthRateLimitWindow   time.Duration `mapstructure:"auth_rate_limit_window"`
	IdempotencyTTL        time.Duration `mapstructure:"idempotency_ttl"`
	CORSAllowOrigins      []string      `mapstructure:"cors_allow_origins"`
	CORSAllowMethods      []string      `mapstructure:"cors_allow_methods"`
	CORSAllowHeaders      []string      `mapstructure:"cors_allow_headers"`
	TrustedProxies        []string      `mapstructure:"trusted_proxies"`
}

// StorageConfig points at the S3-compatible bucket holding item images.
// Leave Endpoint empty for AWS; set it for MinIO.
type StorageConfig struct {
	Endpoint          string        `mapstructure:"endpoint"`
	Region            string        `mapstructure:"region"`
	Bucket            string        `mapstructure:"bucket"`
	AccessKey         string        `mapstructure:"access_key"`
	SecretKey         string        `mapstructure:"secret_key"`
	UsePathStyle      bool          `mapstructure:"use_path_style"`
	PresignExpiration time.Duration `mapstructure:"presign_expiration"`
	CreateBucket      bool          `mapstructure:"create_bucket"`
}

type ImagingConfig struct {
	MaxUploadSize        int64         `mapstructure:"max_upload_size"`
	ThumbnailSize        int           `mapstructure:"thumbnail_size"` // longest edge, px
	ThumbnailQuality     int           `mapstructure:"thumbnail_quality"`
	RemoveBgEnabled      bool          `mapstructure:"remove_bg_enabled"`
	RemoveBgEndpoint     string        `mapstructure:"remove_bg_endpoint"`
	RemoveBgAPIKey       string        `mapstructure:"remove_bg_api_key"`
	RemoveBgTimeout      time.Duration `mapstructure:"remove_bg_timeout"`
	RemoveBgRatePerMin   int           `mapstructure:"remove_bg_rate_per_min"`
	RemoveBgCreditCost   int           `mapstructure:"remove_bg_credit_cost"`
	MaxOutfitPreviewSize int64         `mapstructure:"max_outfit_preview_size"`
}

type SchedulerConfig struct {
	Enabled         bool          `mapstructure:"enabled"`
	SweepSchedule   string        `mapstructure:"sweep_schedule"` // five-field cron
	SweepMinAge     time.Duration `mapstructure:"sweep_min_age"`
	SweepJobTimeout time.Duration `mapstructure:"sweep_job_timeout"`
}

type SwaggerConfig struct {
	Enabled    bool     `mapstructure:"enabled"`
	AllowedIPs []string `mapstructure:"allowed_ips"` // empty allows everyone
}

type TelemetryConfig struct {
	Enabled           bool          `mapstructure:"enabled"`
	MetricsEnabled    bool          `mapstructure:"metrics_enabled"`
	LogsEnabled       bool          `mapstructure:"logs_enabled"`
	CollectorEndpoint string        `mapstructure:"collector_endpoint"` // OTLP gRPC
	SamplingRatio     float64       `mapstructure:"sampling_ratio"`
	ServiceName       string        `mapstructure:"service_name"`
	Insecure          bool          `mapstructure:"insecure"`
	MetricsInterval   time.Duration `mapstructure:"metrics_interval"`

	DBTraceEnabled    bool          `mapstructure:"db_trace_enabled"`
	DBLogFullSQL      bool          `mapstructure:"db_log_full_sql"`
	DBSlowQueryThresh time.Duration `mapstructure:"db_slow_query_threshold"`

	ProfilingEnabled bool   `mapstructure:"profiling_enabled"`
	PyroscopeAddress string `mapstructure:"pyroscope_address"`
}

// defaults registers every key so that CLOSET_* variables reach Unmarshal even
// for keys absent from config.toml. Nil means no default.
var defaults = map[string]any{
	"app.name": "edie-styles",
	"app.env":  "development",
	"app.port": "8080",

	"database.host":               "localhost",
	"database.port":               5432,
	"database.user":               "postgres",
	"database.password":           nil,
	"database.dbname":             "closet",
	"database.sslmode":            "disable",
	"database.max_open_conns":     25,
	"database.max_idle_conns":     5,
	"database.conn_max_lifetime":  60,
	"database.conn_max_idle_time": 30,
	"database.connect_timeout":    30 * time.Second,

	"redis.enabled":  false,
	"redis.host":     "localhost",
	"redis.port":     6379,
	"redis.password": nil,
	"redis.db":       0,

	"jwt.secret":                   nil,
	"jwt.refresh_secret":           nil,
	"jwt.access_token_expiration":  15 * time.Minute,
	"jwt.refresh_token_expiration": 7 * 24 * time.Hour,
	"jwt.issuer":                   "edie-styles",
	"jwt.max_refresh_count":        50,

	"cookie.enabled":            false,
	"cookie.access_token_name":  "access_token",
	"cookie.refresh_token_name": "refresh_token",
	"cookie.domain":             nil,
	"cookie.path":               "/",
	"cookie.secure":             false,
	"cookie.same_site":          "lax",

	"log.level":  "info",
	"log.format": "console",
	"log.output": "stdout",

	"http.read_timeout":             30 * time.Second,
	"http.write_timeout":            60 * time.Second,
	"http.idle_timeout":             60 * time.Second,
	"http.max_header_bytes":         1 << 20,
	"http.max_body_size":            25 << 20,
	"http.rate_limit_enabled":       false,
	"http.rate_limit_requests":      300,
	"http.rate_limit_window":        time.Minute,
	"http.auth_rate_limit_enabled":  false,
	"http.auth_rate_limit_requests": 10,
	"http.auth_rate_limit_window":   time.Minute,
	"http.idempotency_ttl":          24 * time.Hour,
	"http.cors_allow_origins":       []string{},
	"http.cors_allow_methods":       []string{"GET", "POST", "PUT", "DELETE", "PATCH", "OPTIONS"},
	"http.cors_allow_headers":       []string{"Content-Type", "Authorization", "X-Request-ID", "Idempotency-Key"},
	"http.trusted_proxies":          []string{},

	"storage.endpoint":           nil,
	"storage.region":             "us-east-1",
	"storage.bucket":             "closet",
	"storage.access_key":         nil,
	"storage.secret_key":         nil,
	"storage.use_path_style":     false,
	"storage.presign_expiration": time.Hour,
	"storage.create_bucket":      false,

	"imaging.max_upload_size":         20 << 20,
	"imaging.thumbnail_size":          400,
	"imaging.thumbnail_quality":       85,
	"imaging.remove_bg_enabled":       false,
	"imaging.remove_bg_endpoint":      "https://api.remove.bg/v1.0/removebg",
	"imaging.remove_bg_api_key":       nil,
	"imaging.remove_bg_timeout":       30 * time.Second,
	"imaging.remove_bg_rate_per_min":  50,
	"imaging.remove_bg_credit_cost":   1,
	"imaging.max_outfit_preview_size": 5 << 20,

	"scheduler.enabled":           false,
	"scheduler.sweep_schedule":    "30 3 * * *",
	"scheduler.sweep_min_age":     24 * time.Hour,
	"scheduler.sweep_job_timeout": 30 * time.Minute,

	"swagger.enabled":     false,
	"swagger.allowed_ips": []string{},

	"telemetry.enabled":                 false,
	"telemetry.metrics_enabled":         false,
	"telemetry.logs_enabled":            false,
	"telemetry.collector_endpoint":      "localhost:4317",
	"telemetry.sampling_ratio":          1.0,
	"telemetry.service_name":            "edie-styles",
	"telemetry.insecure":                false,
	"telemetry.metrics_interval":        time.Minute,
	"telemetry.db_trace_enabled":        false,
	"telemetry.db_log_full_sql":         false,
	"telemetry.db_slow_query_threshold": 200 * time.Millisecond,
	"telemetry.profiling_enabled":       false,
	"telemetry.pyroscope_address":       "http://localhost:4040",
}

// Load reads configuration. Later sources win: built-in defaults, config.toml
// (in ., ./config or /app), .env, then CLOSET_* variables.
func Load() (*Config, error) {
	if err := godotenv.Load(); err != nil && !errors.Is(err, fs.ErrNotExist) {
		return nil, fmt.Errorf("read .env: %w", err)
	}

	v := viper.New()
	for key, value := range defaults {
		if value == nil {
			value = ""
		}
		v.SetDefault(key, value)
	}

	v.SetConfigName("config")
	v.SetConfigType("toml")
	v.AddConfigPath(".")
	v.AddConfigPath("./config")
	v.AddConfigPath("/app")
	if err := v.ReadInConfig(); err != nil {
		var notFound viper.ConfigFileNotFoundError
		if !errors.As(err, &notFound) {
			return nil, fmt.Errorf("read config file: %w", err)
		}
	}

	v.SetEnvPrefix(EnvPrefix)
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	v.AutomaticEnv()

	cfg := &Config{}
	if err := v.Unmarshal(cfg); err != nil {
		return nil, fmt.Errorf("decode config: %w", err)
	}
	if err := cfg.validate(); err != nil {
		return nil, err
	}
	return cfg, nil
}

func (c *Config) validate() error {
	var problems []string
	check := func(ok bool, format string, args ...any) {
		if !ok {
			problems = append(problems, fmt.Sprintf(format, args...))
		}
	}

	db := c.Database
	check(db.MaxOpenConns > 0, "database.max_open_conns must be positive")
	check(db.MaxIdleConns >= 0, "database.max_idle_conns cannot be negative")
	check(db.MaxIdleConns <= db.MaxOpenConns,
		"database.max_idle_conns (%d) cannot exceed database.max_open_conns (%d)", db.MaxIdleConns, db.MaxOpenConns)

	img := c.Imaging
	check(img.MaxUploadSize <= c.HTTP.MaxBodySize,
		"imaging.max_upload_size (%d) cannot exceed http.max_body_size (%d)", img.MaxUploadSize, c.HTTP.MaxBodySize)
	check(img.ThumbnailSize > 0, "imaging.thumbnail_size must be positive")
	check(img.ThumbnailQuality >= 1 && img.ThumbnailQuality <= 100, "imaging.thumbnail_quality must be between 1 and 100")
	check(!img.RemoveBgEnabled || img.RemoveBgAPIKey != "",
		"imaging.remove_bg_api_key is required when background removal is enabled")
	check(img.RemoveBgCreditCost >= 0, "imaging.remove_bg_credit_cost cannot be negative")

	check(!c.HTTP.RateLimitEnabled || (c.HTTP.RateLimitRequests > 0 && c.HTTP.RateLimitWindow > 0),
		"http.rate_limit_requests and http.rate_limit_window must be positive when rate limiting is enabled")
	check(!c.HTTP.AuthRateLimitEnabled || (c.HTTP.AuthRateLimitRequests > 0 && c.HTTP.AuthRateLimitWindow > 0),
		"http.auth_rate_limit_requests and http.auth_rate_limit_window must be positive when auth rate limiting is enabled")
	check(slices.Contains([]string{"strict", "lax", "none"}, c.Cookie.SameSite),
		"cookie.same_site must be strict, lax or none, got %q", c.Cookie.SameSite)
	check(c.Cookie.SameSite != "none" || c.Cookie.Secure, "cookie.same_site=none requires cookie.secure=true")
	check(c.Telemetry.SamplingRatio >= 0 && c.Telemetry.SamplingRatio <= 1,
		"telemetry.sampling_ratio must be between 0.0 and 1.0, got %g", c.Telemetry.SamplingRatio)

	if c.App.IsProduction() {
		check(len(c.JWT.Secret) >= 32, "jwt.secret must be at least 32 characters in production")
		check(db.Password != "", "database.password is required in production")
		check(db.SSLMode != "disable", "database.sslmode cannot be 'disable' in production")
		check(!c.Cookie.Enabled || c.Cookie.Secure, "cookie.secure must be true in production")
		check(!slices.Contains(c.HTTP.CORSAllowOrigins, "*"), "http.cors_allow_origins cannot contain '*' in production")
		check(c.Storage.AccessKey != "" && c.Storage.SecretKey != "",
			"storage.access_key and storage.secret_key are required in production")
		check(!c.Swagger.Enabled || len(c.Swagger.AllowedIPs) > 0,
			"swagger must be disabled or restricted to allowed_ips in production")
		check(!c.Telemetry.DBLogFullSQL, "telemetry.db_log_full_sql must be false in production")
	}

	if len(problems) > 0 {
		return fmt.Errorf("invalid configuration: %s", strings.Join(problems, "; "))
	}
	return nil
}

// DSN renders a postgres URL with user and password escaped.
func (d *DatabaseConfig) DSN() string {
	u := url.URL{
		Scheme:   "postgres",
		User:     url.UserPassword(d.User, d.Password),
		Host:     fmt.Sprintf("%s:%d", d.Host, d.Port),
		Path:     d.DBName,
		RawQuery: url.Values{"sslmode": {d.SSLMode}}.Encode(),
	}
	return u.String()
}
