package config

import (
	"errors"
	"fmt"
	"os"
	"strconv"
	"strings"
	"time"
)

type Config struct {
	App       AppConfig
	Database  DatabaseConfig
	Store     StoreConfig
	Blob      BlobConfig
	JWT       JWTConfig
	Admin     AdminConfig
	Logo      LogoConfig
	AI        AIConfig
	RateLimit RateLimitConfig
	Redis     RedisConfig
	Notify    NotifyConfig
}

type AppConfig struct {
	AppName     string
	Environment string
	HTTPPort    string
}

// IsDevelopment reports whether downstream error details may be returned to clients.
func (a AppConfig) IsDevelopment() bool {
	return strings.EqualFold(a.Environment, "development")
}

type DatabaseConfig struct {
	DBHost     string
	DBPort     string
	DBName     string
	DBUser     string
	DBPassword string
	DBSSLMode  string

	ConnectTimeout        time.Duration
	PoolMaxConns          int32
	PoolMinConns          int32
	PoolMaxConnLifetime   time.Duration
	PoolMaxConnIdleTime   time.Duration
	PoolHealthCheckPeriod time.Duration
}

// Enabled reports whether a relational database is configured.
func (d DatabaseConfig) Enabled() bool {
	return d.DBHost != "" && d.DBName != ""
}

type StoreConfig struct {
	Driver   string
	Region   string
	Endpoint string

	JobsTable           string
	SarkariJobsTable    string
	InternshipsTable    string
	CertificationsTable string
	WalkingTable        string
	SubscriptionsTable  string
}

type BlobConfig struct {
	Bucket        string
	Region        string
	Endpoint      string
	PresignExpiry time.Duration
}

type JWTConfig struct {
	Secret    string
	ExpiresIn time.Duration
}

type AdminConfig struct {
	Email    string
	Password string
	Name     string
}

type LogoConfig struct {
	BaseURL     string
	Placeholder string
	Timeout     time.Duration
}

type AIConfig struct {
	APIKey  string
	Model   string
	Timeout time.Duration
}

type RateLimitConfig struct {
	APIMax     int
	APIWindow  time.Duration
	AuthMax    int
	AuthWindow time.Duration
	AIMax      int
	AIWindow   time.Duration
}

type RedisConfig struct {
	Addr     string
	Password string
	DB       int
}

type NotifyConfig struct {
	WebsocketEnabled bool
}

var errMissingRequiredEnv = errors.New("missing required environment variables")

func Load() (Config, error) {
	cfg := Config{}

	var missing []string
	var invalid []string
	req := func(key string) string {
		v := strings.TrimSpace(os.Getenv(key))
		if v == "" {
			missing = append(missing, key)
		}
		return v
	}
	opt := func(key string) string {
		return strings.TrimSpace(os.Getenv(key))
	}
	optDefault := func(key, def string) string {
		if v := opt(key); v != "" {
			return v
		}
		return def
	}
	optInt := func(key string, def int) int {
		raw := opt(key)
		if raw == "" {
			return def
		}
		v, err := strconv.Atoi(raw)
		if err != nil {
			invalid = append(invalid, key)
			return def
		}
		return v
	}
	optDuration := func(key string, def time.Duration) time.Duration {
		raw := opt(key)
		if raw == "" {
			return def
		}
		v, err := time.ParseDuration(raw)
		if err != nil || v <= 0 {
			invalid = append(invalid, key)
			return def
		}
		return v
	}
	optBool := func(key string) bool {
		v, _ := strconv.ParseBool(opt(key))
		return v
	}

	cfg.App = AppConfig{
		AppName:     req("APP_NAME"),
		Environment: req("APP_ENV"),
		HTTPPort:    req("HTTP_PORT"),
	}

	cfg.Database = DatabaseConfig{
		DBHost:                opt("DB_HOST"),
		DBPort:                optDefault("DB_PORT", "5432"),
		DBName:                opt("DB_NAME"),
		DBUser:                opt("DB_USER"),
		DBPassword:            opt("DB_PASSWORD"),
		DBSSLMode:             optDefault("DB_SSL_MODE", "disable"),
		ConnectTimeout:        optDuration("DB_CONNECT_TIMEOUT", 5*time.Second),
		PoolMaxConns:          int32(optInt("DB_POOL_MAX_CONNS", 0)),
		PoolMinConns:          int32(optInt("DB_POOL_MIN_CONNS", 0)),
		PoolMaxConnLifetime:   optDuration("DB_POOL_MAX_CONN_LIFETIME", time.Hour),
		PoolMaxConnIdleTime:   optDuration("DB_POOL_MAX_CONN_IDLE_TIME", 30*time.Minute),
		PoolHealthCheckPeriod: optDuration("DB_POOL_HEALTH_CHECK_PERIOD", time.Minute),
	}

	cfg.Store = StoreConfig{
		Driver:              strings.ToLower(optDefault("STORE_DRIVER", "dynamo")),
		Region:              optDefault("AWS_REGION", "ap-south-1"),
		Endpoint:            opt("DYNAMO_ENDPOINT"),
		JobsTable:           optDefault("JOBS_TABLE", "Jobs"),
		SarkariJobsTable:    optDefault("SARKARI_JOBS_TABLE", "SarkariJobs"),
		InternshipsTable:    optDefault("INTERNSHIPS_TABLE", "Internships"),
		CertificationsTable: optDefault("CERTIFICATIONS_TABLE", "Certifications"),
		WalkingTable:        optDefault("WALKING_TABLE", "WalkingInterviews"),
		SubscriptionsTable:  optDefault("SUBSCRIPTIONS_TABLE", "Subscriptions"),
	}

	cfg.Blob = BlobConfig{
		Bucket:        opt("S3_BUCKET"),
		Region:        optDefault("S3_REGION", cfg.Store.Region),
		Endpoint:      opt("S3_ENDPOINT"),
		PresignExpiry: optDuration("S3_PRESIGN_EXPIRY", 5*time.Minute),
	}

	cfg.JWT = JWTConfig{
		Secret:    req("JWT_SECRET"),
		ExpiresIn: optDuration("JWT_EXPIRES_IN", 24*time.Hour),
	}

	cfg.Admin = AdminConfig{
		Email:    opt("ADMIN_EMAIL"),
		Password: opt("ADMIN_PASSWORD"),
		Name:     optDefault("ADMIN_NAME", "Administrator"),
	}

	cfg.Logo = LogoConfig{
		BaseURL:     optDefault("LOGO_BASE_URL", "https://logo.clearbit.com"),
		Placeholder: optDefault("LOGO_PLACEHOLDER", "/images/company-placeholder.png"),
		Timeout:     optDuration("LOGO_TIMEOUT", 5*time.Second),
	}

	cfg.AI = AIConfig{
		APIKey:  opt("GEMINI_API_KEY"),
		Model:   optDefault("GEMINI_MODEL", "gemini-2.5-flash"),
		Timeout: optDuration("AI_TIMEOUT", 30*time.Second),
	}

	cfg.RateLimit = RateLimitConfig{
		APIMax:     optInt("RATE_LIMIT_API_MAX", 100),
		APIWindow:  optDuration("RATE_LIMIT_API_WINDOW", 15*time.Minute),
		AuthMax:    optInt("RATE_LIMIT_AUTH_MAX", 5),
		AuthWindow: optDuration("RATE_LIMIT_AUTH_WINDOW", 15*time.Minute),
		AIMax:      optInt("RATE_LIMIT_AI_MAX", 10),
		AIWindow:   optDuration("RATE_LIMIT_AI_WINDOW", time.Hour),
	}

	cfg.Redis = RedisConfig{
		Addr:     opt("REDIS_ADDR"),
		Password: opt("REDIS_PASSWORD"),
		DB:       optInt("REDIS_DB", 0),
	}

	cfg.Notify = NotifyConfig{
		WebsocketEnabled: optBool("NOTIFY_WS_ENABLED"),
	}

	if len(missing) > 0 {
		return Config{}, fmt.Errorf("%w: %s", errMissingRequiredEnv, strings.Join(missing, ", "))
	}
	if len(invalid) > 0 {
		return Config{}, fmt.Errorf("invalid environment variables: %s", strings.Join(invalid, ", "))
	}
	if cfg.Store.Driver != "dynamo" && cfg.Store.Driver != "memory" {
		return Config{}, fmt.Errorf("unsupported STORE_DRIVER %q", cfg.Store.Driver)
	}

	return cfg, nil
}
