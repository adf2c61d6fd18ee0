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
	Env      string
	HTTPPort string

	ReadinessProbeTimeout        time.Duration
	ServerStartGracePeriod       time.Duration
	ShutdownTimeout              time.Duration
	ShutdownHTTPDrainTimeout     time.Duration
	ShutdownObservabilityTimeout time.Duration

	DatabaseURL string

	RedisAddr      string
	RedisPassword  string
	RedisVerifyDB  int
	RedisHistoryDB int

	JWTIssuer       string
	JWTAudience     string
	JWTSecret       string
	SessionTokenTTL time.Duration

	EmailVerifyBaseURL  string
	EmailVerifyTokenTTL time.Duration
	MailQueueSize       int

	BrowsingHistoryLimit int

	UsernameMinLen int
	UsernameMaxLen int
	PasswordMinLen int
	PasswordMaxLen int

	OTELServiceName           string
	OTELEnvironment           string
	OTELExporterOTLPEndpoint  string
	OTELExporterOTLPInsecure  bool
	OTELMetricsExportInterval time.Duration
	OTELTraceSamplingRatio    float64
	OTELMetricsEnabled        bool
	OTELTracingEnabled        bool
	OTELLogsEnabled           bool
	OTELLogLevel              string
}

func Load() (*Config, error) {
	env := getEnv("APP_ENV", "development")

	cfg := &Config{
		Env:         env,
		HTTPPort:    getEnv("HTTP_PORT", "8080"),
		DatabaseURL: os.Getenv("DATABASE_URL"),

		RedisAddr:      getEnv("REDIS_ADDR", "localhost:6379"),
		RedisPassword:  os.Getenv("REDIS_PASSWORD"),
		RedisVerifyDB:  getEnvInt("REDIS_VERIFY_DB", 1),
		RedisHistoryDB: getEnvInt("REDIS_HISTORY_DB", 2),

		JWTIssuer:   getEnv("JWT_ISSUER", "storefront-backend"),
		JWTAudience: getEnv("JWT_AUDIENCE", "storefront-backend-api"),
		JWTSecret:   os.Getenv("JWT_SECRET"),

		EmailVerifyBaseURL: getEnv("EMAIL_VERIFY_BASE_URL", "http://localhost:8080/emails/verification"),
		MailQueueSize:      getEnvInt("MAIL_QUEUE_SIZE", 128),

		BrowsingHistoryLimit: getEnvInt("BROWSING_HISTORY_LIMIT", 5),

		UsernameMinLen: getEnvInt("USERNAME_MIN_LEN", 5),
		UsernameMaxLen: getEnvInt("USERNAME_MAX_LEN", 20),
		PasswordMinLen: getEnvInt("PASSWORD_MIN_LEN", 8),
		PasswordMaxLen: getEnvInt("PASSWORD_MAX_LEN", 20),

		OTELServiceName:          getEnv("OTEL_SERVICE_NAME", "storefront-backend"),
		OTELEnvironment:          getEnv("OTEL_ENVIRONMENT", env),
		OTELExporterOTLPEndpoint: getEnv("OTEL_EXPORTER_OTLP_ENDPOINT", "localhost:4317"),
		OTELExporterOTLPInsecure: getEnvBool("OTEL_EXPORTER_OTLP_INSECURE", true),
		OTELTraceSamplingRatio:   getEnvFloat("OTEL_TRACE_SAMPLING_RATIO", 1.0),
		OTELMetricsEnabled:       getEnvBool("OTEL_METRICS_ENABLED", true),
		OTELTracingEnabled:       getEnvBool("OTEL_TRACING_ENABLED", true),
		OTELLogsEnabled:          getEnvBool("OTEL_LOGS_ENABLED", true),
		OTELLogLevel:             strings.ToLower(getEnv("OTEL_LOG_LEVEL", "info")),
	}

	sessionTTL, err := time.ParseDuration(getEnv("SESSION_TOKEN_TTL", "24h"))
	if err != nil {
		return nil, fmt.Errorf("parse SESSION_TOKEN_TTL: %w", err)
	}
	cfg.SessionTokenTTL = sessionTTL

	emailTTL, err := time.ParseDuration(getEnv("EMAIL_VERIFY_TOKEN_TTL", "24h"))
	if err != nil {
		return nil, fmt.Errorf("parse EMAIL_VERIFY_TOKEN_TTL: %w", err)
	}
	cfg.EmailVerifyTokenTTL = emailTTL

	for _, d := range []struct {
		key   string
		def   string
		field *time.Duration
	}{
		{"READINESS_PROBE_TIMEOUT", "2s", &cfg.ReadinessProbeTimeout},
		{"SERVER_START_GRACE_PERIOD", "0s", &cfg.ServerStartGracePeriod},
		{"SHUTDOWN_TIMEOUT", "20s", &cfg.ShutdownTimeout},
		{"SHUTDOWN_HTTP_DRAIN_TIMEOUT", "10s", &cfg.ShutdownHTTPDrainTimeout},
		{"SHUTDOWN_OBSERVABILITY_TIMEOUT", "8s", &cfg.ShutdownObservabilityTimeout},
	} {
		v, err := time.ParseDuration(getEnv(d.key, d.def))
		if err != nil {
			return nil, fmt.Errorf("parse %s: %w", d.key, err)
		}
		*d.field = v
	}

	metricsInterval, err := time.ParseDuration(getEnv("OTEL_METRICS_EXPORT_INTERVAL", "10s"))
	if err != nil {
		return nil, fmt.Errorf("parse OTEL_METRICS_EXPORT_INTERVAL: %w", err)
	}
	cfg.OTELMetricsExportInterval = metricsInterval

	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return cfg, nil
}

func (c *Config) Validate() error {
	var errs []string
	if c.DatabaseURL == "" {
		errs = append(errs, "DATABASE_URL is required")
	}
	if len(c.JWTSecret) < 32 {
		errs = append(errs, "JWT_SECRET must be at least 32 chars")
	}
	if c.SessionTokenTTL <= 0 || c.SessionTokenTTL > 30*24*time.Hour {
		errs = append(errs, "SESSION_TOKEN_TTL must be between 1s and 30d")
	}
	if c.EmailVerifyTokenTTL <= 0 {
		errs = append(errs, "EMAIL_VERIFY_TOKEN_TTL must be > 0")
	}
	if c.RedisAddr == "" {
		errs = append(errs, "REDIS_ADDR is required")
	}
	if c.RedisVerifyDB == c.RedisHistoryDB {
		errs = append(errs, "REDIS_VERIFY_DB and REDIS_HISTORY_DB must differ")
	}
	if c.BrowsingHistoryLimit <= 0 {
		errs = append(errs, "BROWSING_HISTORY_LIMIT must be > 0")
	}
	if c.MailQueueSize <= 0 {
		errs = append(errs, "MAIL_QUEUE_SIZE must be > 0")
	}
	if c.UsernameMinLen <= 0 || c.UsernameMaxLen < c.UsernameMinLen {
		errs = append(errs, "username length bounds are invalid")
	}
	if c.PasswordMinLen <= 0 || c.PasswordMaxLen < c.PasswordMinLen {
		errs = append(errs, "password length bounds are invalid")
	}
	if (c.OTELMetricsEnabled || c.OTELTracingEnabled || c.OTELLogsEnabled) && c.OTELExporterOTLPEndpoint == "" {
		errs = append(errs, "OTEL_EXPORTER_OTLP_ENDPOINT is required when OTel is enabled")
	}
	if c.OTELTraceSamplingRatio < 0 || c.OTELTraceSamplingRatio > 1 {
		errs = append(errs, "OTEL_TRACE_SAMPLING_RATIO must be between 0 and 1")
	}
	if c.OTELMetricsExportInterval <= 0 {
		errs = append(errs, "OTEL_METRICS_EXPORT_INTERVAL must be > 0")
	}
	if !isValidLogLevel(c.OTELLogLevel) {
		errs = append(errs, "OTEL_LOG_LEVEL must be one of debug, info, warn, error")
	}
	if len(errs) > 0 {
		return errors.New(strings.Join(errs, "; "))
	}
	return nil
}

func isValidLogLevel(v string) bool {
	switch strings.ToLower(v) {
	case "debug", "info", "warn", "error":
		return true
	default:
		return false
	}
}

func getEnv(key, def string) string {
	v := os.Getenv(key)
	if v == "" {
		return def
	}
	return v
}

func getEnvBool(key string, def bool) bool {
	v := os.Getenv(key)
	if v == "" {
		return def
	}
	b, err := strconv.ParseBool(v)
	if err != nil {
		return def
	}
	return b
}

func getEnvInt(key string, def int) int {
	v := os.Getenv(key)
	if v == "" {
		return def
	}
	n, err := strconv.Atoi(v)
	if err != nil {
		return def
	}
	return n
}

func getEnvFloat(key string, def float64) float64 {
	v := os.Getenv(key)
	if v == "" {
		return def
	}
	f, err := strconv.ParseFloat(v, 64)
	if err != nil {
		return def
	}
	return f
}
