package config

import (
	"strings"
	"time"
)

// Config is the root application configuration.
type Config struct {
	Server   ServerConfig   `yaml:"server"`
	Database DatabaseConfig `yaml:"database"`
	Auth     AuthConfig     `yaml:"auth"`
	Log      LogConfig      `yaml:"log"`
	CORS     CORSConfig     `yaml:"cors"`
	Audit    AuditConfig    `yaml:"audit"`
}

// CORSConfig holds CORS settings.
type CORSConfig struct {
	AllowedOrigins   string `yaml:"allowed_origins"   env:"CORS_ALLOWED_ORIGINS"   env-default:"*"`
	AllowedMethods   string `yaml:"allowed_methods"   env:"CORS_ALLOWED_METHODS"   env-default:"GET,POST,OPTIONS"`
	AllowedHeaders   string `yaml:"allowed_headers"   env:"CORS_ALLOWED_HEADERS"   env-default:"Authorization,Content-Type"`
	AllowCredentials bool   `yaml:"allow_credentials" env:"CORS_ALLOW_CREDENTIALS" env-default:"true"`
	MaxAge           int    `yaml:"max_age"           env:"CORS_MAX_AGE"           env-default:"86400"`
}

// ServerConfig holds HTTP server settings.
type ServerConfig struct {
	Host            string        `yaml:"host"             env:"SERVER_HOST"             env-default:"0.0.0.0"`
	Port            int           `yaml:"port"             env:"SERVER_PORT"             env-default:"8080"`
	ReadTimeout     time.Duration `yaml:"read_timeout"     env:"SERVER_READ_TIMEOUT"     env-default:"10s"`
	WriteTimeout    time.Duration `yaml:"write_timeout"    env:"SERVER_WRITE_TIMEOUT"    env-default:"60s"`
	IdleTimeout     time.Duration `yaml:"idle_timeout"     env:"SERVER_IDLE_TIMEOUT"     env-default:"60s"`
	ShutdownTimeout time.Duration `yaml:"shutdown_timeout" env:"SERVER_SHUTDOWN_TIMEOUT" env-default:"10s"`
}

// DatabaseConfig holds PostgreSQL connection settings.
type DatabaseConfig struct {
	DSN             string        `yaml:"dsn"                env:"DATABASE_DSN"                env-required:"true"`
	MaxConns        int32         `yaml:"max_conns"          env:"DATABASE_MAX_CONNS"          env-default:"25"`
	MinConns        int32         `yaml:"min_conns"          env:"DATABASE_MIN_CONNS"          env-default:"5"`
	MaxConnLifetime time.Duration `yaml:"max_conn_lifetime"  env:"DATABASE_MAX_CONN_LIFETIME"  env-default:"1h"`
	MaxConnIdleTime time.Duration `yaml:"max_conn_idle_time" env:"DATABASE_MAX_CONN_IDLE_TIME" env-default:"30m"`
	AutoMigrate     bool          `yaml:"auto_migrate"       env:"DATABASE_AUTO_MIGRATE"       env-default:"true"`
}

// AuthConfig holds the settings needed to validate bearer tokens issued by
// the session service. Tokens are never issued here.
type AuthConfig struct {
	JWTSecret string `yaml:"jwt_secret" env:"AUTH_JWT_SECRET" env-required:"true"`
	JWTIssuer string `yaml:"jwt_issuer" env:"AUTH_JWT_ISSUER" env-default:"recordkeeper"`
}

// LogConfig holds logging settings.
type LogConfig struct {
	Level  string `yaml:"level"  env:"LOG_LEVEL"  env-default:"info"`
	Format string `yaml:"format" env:"LOG_FORMAT" env-default:"json"`
}

// AuditConfig holds audit pipeline settings.
type AuditConfig struct {
	// Table is the entry store table. Commands that mention it are never captured.
	Table string `yaml:"table" env:"AUDIT_TABLE" env-default:"audit_logs"`

	// ExcludedPrefixesRaw is a comma-separated list of request path prefixes
	// that are never captured.
	ExcludedPrefixesRaw string `yaml:"excluded_prefixes" env:"AUDIT_EXCLUDED_PREFIXES" env-default:"/health,/live,/ready,/metrics,/docs,/swagger,/static,/favicon.ico"`

	QueueSize       int  `yaml:"queue_size"       env:"AUDIT_QUEUE_SIZE"       env-default:"1024"`
	Workers         int  `yaml:"workers"          env:"AUDIT_WORKERS"          env-default:"2"`
	CaptureCommands bool `yaml:"capture_commands" env:"AUDIT_CAPTURE_COMMANDS" env-default:"true"`
	MaxPageSize     int  `yaml:"max_page_size"    env:"AUDIT_MAX_PAGE_SIZE"    env-default:"500"`

	// ExportPerMinute limits export requests per client ip. Zero disables the limit.
	ExportPerMinute int `yaml:"export_per_minute" env:"AUDIT_EXPORT_PER_MINUTE" env-default:"6"`

	// ExcludedPrefixes is parsed from ExcludedPrefixesRaw during validation.
	ExcludedPrefixes []string `yaml:"-" env:"-"`
}

// ParsePrefixes splits a comma-separated prefix list, dropping blanks.
// An empty string returns a nil slice.
func ParsePrefixes(raw string) []string {
	var out []string
	for _, p := range strings.Split(raw, ",") {
		p = strings.TrimSpace(p)
		if p == "" {
			continue
		}
		out = append(out, p)
	}
	return out
}
