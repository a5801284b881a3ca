package db

import (
	"context"
	"net/url"
	"strings"

	"github.com/jackc/pgx/v5/pgxpool"
)

var supportedPGQueryKeys = map[string]struct{}{
	"application_name":       {},
	"channel_binding":        {},
	"client_encoding":        {},
	"connect_timeout":        {},
	"gssencmode":             {},
	"keepalives":             {},
	"keepalives_count":       {},
	"keepalives_idle":        {},
	"keepalives_interval":    {},
	"krbsrvname":             {},
	"options":                {},
	"passfile":               {},
	"service":                {},
	"sslcert":                {},
	"sslcrl":                 {},
	"sslkey":                 {},
	"sslmode":                {},
	"sslpassword":            {},
	"sslrootcert":            {},
	"target_session_attrs":   {},
}

// IsSQLiteURL reports whether rawURL selects the embedded SQLite store
// ("sqlite://path", "sqlite:path" or "file:path").
func IsSQLiteURL(rawURL string) bool {
	lowered := strings.ToLower(strings.TrimSpace(rawURL))
	return strings.HasPrefix(lowered, "sqlite:") || strings.HasPrefix(lowered, "file:")
}

// IsPostgresURL reports whether rawURL names a Postgres database in any of the
// spellings normalizeDatabaseURL accepts.
func IsPostgresURL(rawURL string) bool {
	parsed, err := url.Parse(normalizeDatabaseURL(rawURL))
	if err != nil {
		return false
	}
	return parsed.Scheme == "postgres"
}

// SQLitePath extracts the database file path from a SQLite URL.
// "sqlite://./data/app.db" -> "./data/app.db", "sqlite:///var/app.db" ->
// "/var/app.db". ":memory:" is passed through.
func SQLitePath(rawURL string) string {
	trimmed := strings.TrimSpace(rawURL)
	lowered := strings.ToLower(trimmed)
	switch {
	case strings.HasPrefix(lowered, "sqlite://"):
		trimmed = trimmed[len("sqlite://"):]
	case strings.HasPrefix(lowered, "sqlite:"):
		trimmed = trimmed[len("sqlite:"):]
	case strings.HasPrefix(lowered, "file:"):
		trimmed = trimmed[len("file:"):]
	}
	if idx := strings.Index(trimmed, "?"); idx >= 0 {
		trimmed = trimmed[:idx]
	}
	return trimmed
}

func Connect(ctx context.Context, rawURL string) (*pgxpool.Pool, error) {
	normalized := normalizeDatabaseURL(rawURL)
	cfg, err := pgxpool.ParseConfig(normalized)
	if err != nil {
		return nil, err
	}
	return pgxpool.NewWithConfig(ctx, cfg)
}

func normalizeDatabaseURL(rawURL string) string {
	normalized := strings.TrimSpace(rawURL)
	if strings.HasPrefix(normalized, "prisma+postgres://") {
		normalized = strings.Replace(normalized, "prisma+postgres://", "postgres://", 1)
	}
	if strings.HasPrefix(normalized, "postgresql+psycopg://") {
		normalized = strings.Replace(normalized, "postgresql+psycopg://", "postgres://", 1)
	}
	if strings.HasPrefix(normalized, "postgresql://") {
		normalized = strings.Replace(normalized, "postgresql://", "postgres://", 1)
	}

	parsed, err := url.Parse(normalized)
	if err != nil {
		return normalized
	}
	if parsed.Scheme != "postgres" && parsed.Scheme != "postgresql" {
		return normalized
	}

	queries := parsed.Query()
	filtered := make(url.Values)
	for key, values := range queries {
		if _, ok := supportedPGQueryKeys[key]; ok {
			for _, v := range values {
				filtered.Add(key, v)
			}
		}
	}
	parsed.RawQuery = filtered.Encode()
	return parsed.String()
}
