package store

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgconn"
	"github.com/jackc/pgx/v5/pgxpool"

	"healthcompanion/internal/db"
	"healthcompanion/internal/vitals"
)

const pgUniqueViolation = "23505"

type PostgresStore struct {
	pool *pgxpool.Pool
}

func NewPostgres(ctx context.Context, databaseURL string) (*PostgresStore, error) {
	pool, err := db.Connect(ctx, databaseURL)
	if err != nil {
		return nil, fmt.Errorf("database connect failed: %w", err)
	}
	return &PostgresStore{pool: pool}, nil
}

func (s *PostgresStore) Pool() *pgxpool.Pool {
	return s.pool
}

func (s *PostgresStore) Ping(ctx context.Context) error {
	return s.pool.Ping(ctx)
}

func (s *PostgresStore) Close() error {
	s.pool.Close()
	return nil
}

func (s *PostgresStore) EnsureSchema(ctx context.Context) error {
	statements := []string{
		`CREATE TABLE IF NOT EXISTS users (
			id TEXT PRIMARY KEY,
			username TEXT NOT NULL UNIQUE,
			password_hash TEXT NOT NULL,
			role TEXT NOT NULL DEFAULT 'elderly',
			full_name TEXT NOT NULL DEFAULT '',
			created_at TIMESTAMPTZ NOT NULL DEFAULT NOW()
		)`,
		`CREATE TABLE IF NOT EXISTS vitals (
			id TEXT PRIMARY KEY,
			user_id TEXT NOT NULL REFERENCES users(id),
			timestamp TIMESTAMPTZ NOT NULL,
			type TEXT NOT NULL,
			value DOUBLE PRECISION NOT NULL,
			unit TEXT NOT NULL,
			is_abnormal BOOLEAN NOT NULL DEFAULT FALSE
		)`,
		`CREATE INDEX IF NOT EXISTS idx_vitals_user_timestamp ON vitals(user_id, timestamp DESC)`,
		`CREATE TABLE IF NOT EXISTS alerts (
			id TEXT PRIMARY KEY,
			user_id TEXT NOT NULL REFERENCES users(id),
			created_at TIMESTAMPTZ NOT NULL,
			severity TEXT NOT NULL,
			message TEXT NOT NULL,
			resolved BOOLEAN NOT NULL DEFAULT FALSE
		)`,
		`CREATE INDEX IF NOT EXISTS idx_alerts_user_created ON alerts(user_id, created_at DESC)`,
	}
	for _, statement := range statements {
		if _, err := s.pool.Exec(ctx, statement); err != nil {
			return fmt.Errorf("create schema: %w", err)
		}
	}
	return ValidateRuntimeSchema(ctx, s.pool)
}

func (s *PostgresStore) CreateUser(ctx context.Context, user *User) error {
	if err := prepareUser(user); err != nil {
		return err
	}
	_, err := s.pool.Exec(ctx,
		`INSERT INTO users (id, username, password_hash, role, full_name, created_at)
		 VALUES ($1, $2, $3, $4, $5, $6)`,
		user.ID, user.Username, user.PasswordHash, user.Role, user.FullName, user.CreatedAt,
	)
	var pgErr *pgconn.PgError
	if errors.As(err, &pgErr) && pgErr.Code == pgUniqueViolation {
		return fmt.Errorf("user %q: %w", user.Username, ErrConflict)
	}
	if err != nil {
		return fmt.Errorf("insert user: %w", err)
	}
	return nil
}

func (s *PostgresStore) GetUserByUsername(ctx context.Context, username string) (User, error) {
	var user User
	err := s.pool.QueryRow(ctx,
		`SELECT id, username, password_hash, role, full_name, created_at
		 FROM users WHERE username = $1`,
		strings.TrimSpace(username),
	).Scan(&user.ID, &user.Username, &user.PasswordHash, &user.Role, &user.FullName, &user.CreatedAt)
	if errors.Is(err, pgx.ErrNoRows) {
		return User{}, ErrNotFound
	}
	if err != nil {
		return User{}, fmt.Errorf("scan user row: %w", err)
	}
	user.CreatedAt = user.CreatedAt.UTC()
	return user, nil
}

func (s *PostgresStore) CountUsers(ctx context.Context) (int, error) {
	var count int
	if err := s.pool.QueryRow(ctx, `SELECT COUNT(*) FROM users`).Scan(&count); err != nil {
		return 0, fmt.Errorf("count users: %w", err)
	}
	return count, nil
}

func (s *PostgresStore) RecordReading(ctx context.Context, reading *vitals.Reading, alert *vitals.Alert) error {
	if err := prepareReading(reading, alert); err != nil {
		return err
	}
	tx, err := s.pool.Begin(ctx)
	if err != nil {
		return fmt.Errorf("begin transaction: %w", err)
	}
	defer func() { _ = tx.Rollback(ctx) }()

	if _, err := tx.Exec(ctx,
		`INSERT INTO vitals (id, user_id, timestamp, type, value, unit, is_abnormal)
		 VALUES ($1, $2, $3, $4, $5, $6, $7)`,
		reading.ID, reading.UserID, reading.Timestamp, string(reading.Type),
		reading.Value, reading.Unit, reading.IsAbnormal,
	); err != nil {
		return fmt.Errorf("insert reading: %w", err)
	}
	if alert != nil {
		if _, err := tx.Exec(ctx,
			`INSERT INTO alerts (id, user_id, created_at, severity, message, resolved)
			 VALUES ($1, $2, $3, $4, $5, $6)`,
			alert.ID, alert.UserID, alert.CreatedAt, string(alert.Severity), alert.Message, alert.Resolved,
		); err != nil {
			return fmt.Errorf("insert alert: %w", err)
		}
	}
	return tx.Commit(ctx)
}

func (s *PostgresStore) RecentReadings(ctx context.Context, userID string, limit int) ([]vitals.Reading, error) {
	rows, err := s.pool.Query(ctx,
		`SELECT id, user_id, timestamp, type, value, unit, is_abnormal
		 FROM vitals WHERE user_id = $1
		 ORDER BY timestamp DESC, id DESC
		 LIMIT $2`,
		userID, clampLimit(limit, vitals.DefaultReportLimit),
	)
	if err != nil {
		return nil, fmt.Errorf("query readings: %w", err)
	}
	defer rows.Close()

	readings := make([]vitals.Reading, 0)
	for rows.Next() {
		var reading vitals.Reading
		var vitalType string
		if err := rows.Scan(&reading.ID, &reading.UserID, &reading.Timestamp, &vitalType, &reading.Value, &reading.Unit, &reading.IsAbnormal); err != nil {
			return nil, fmt.Errorf("scan reading row: %w", err)
		}
		reading.Type = vitals.Type(vitalType)
		reading.Timestamp = reading.Timestamp.UTC()
		readings = append(readings, reading)
	}
	return readings, rows.Err()
}

func (s *PostgresStore) RecentAlerts(ctx context.Context, userID string, limit int) ([]vitals.Alert, error) {
	rows, err := s.pool.Query(ctx,
		`SELECT id, user_id, created_at, severity, message, resolved
		 FROM alerts WHERE user_id = $1
		 ORDER BY created_at DESC, id DESC
		 LIMIT $2`,
		userID, clampLimit(limit, vitals.DefaultReportLimit),
	)
	if err != nil {
		return nil, fmt.Errorf("query alerts: %w", err)
	}
	defer rows.Close()

	alerts := make([]vitals.Alert, 0)
	for rows.Next() {
		var alert vitals.Alert
		var severity string
		if err := rows.Scan(&alert.ID, &alert.UserID, &alert.CreatedAt, &severity, &alert.Message, &alert.Resolved); err != nil {
			return nil, fmt.Errorf("scan alert row: %w", err)
		}
		alert.Severity = vitals.Severity(severity)
		alert.CreatedAt = alert.CreatedAt.UTC()
		alerts = append(alerts, alert)
	}
	return alerts, rows.Err()
}

func (s *PostgresStore) ResolveAlert(ctx context.Context, userID, alertID string) error {
	tag, err := s.pool.Exec(ctx,
		`UPDATE alerts SET resolved = TRUE WHERE id = $1 AND user_id = $2`,
		alertID, userID,
	)
	if err != nil {
		return fmt.Errorf("resolve alert: %w", err)
	}
	if tag.RowsAffected() == 0 {
		return ErrNotFound
	}
	return nil
}
