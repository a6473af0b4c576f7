package config

import (
	"fmt"
	"regexp"
	"strings"
)

var tableNameRe = regexp.MustCompile(`^[A-Za-z_][A-Za-z0-9_]*(\.[A-Za-z_][A-Za-z0-9_]*)?$`)

// Validate performs business-rule validation on the loaded configuration.
// It must be called after loading; Load calls it automatically.
func (c *Config) Validate() error {
	if len(c.Auth.JWTSecret) < 32 {
		return fmt.Errorf("auth.jwt_secret must be at least 32 characters (got %d)", len(c.Auth.JWTSecret))
	}

	if err := c.Audit.validate(); err != nil {
		return fmt.Errorf("audit: %w", err)
	}

	return nil
}

func (a *AuditConfig) validate() error {
	if !tableNameRe.MatchString(a.Table) {
		return fmt.Errorf("table must be a plain or schema-qualified identifier (got %q)", a.Table)
	}
	if a.QueueSize <= 0 {
		return fmt.Errorf("queue_size must be > 0 (got %d)", a.QueueSize)
	}
	if a.Workers <= 0 {
		return fmt.Errorf("workers must be > 0 (got %d)", a.Workers)
	}
	if a.MaxPageSize <= 0 {
		return fmt.Errorf("max_page_size must be > 0 (got %d)", a.MaxPageSize)
	}
	if a.ExportPerMinute < 0 {
		return fmt.Errorf("export_per_minute must be >= 0 (got %d)", a.ExportPerMinute)
	}

	prefixes := ParsePrefixes(a.ExcludedPrefixesRaw)
	for _, p := range prefixes {
		if !strings.HasPrefix(p, "/") {
			return fmt.Errorf("excluded prefix %q must start with /", p)
		}
	}
	a.ExcludedPrefixes = prefixes

	return nil
}
