package store

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"time"

	_ "modernc.org/sqlite"

	"healthcompanion/internal/vitals"
)

const (
	busyRetryAttempts = 5
	busyRetryBase     = 20 * time.Millisecond
)

type SQLiteStore struct {
	db *sql.DB
}

// NewSQLite opens (creating if needed) the database file at dbPath in WAL mode.
func NewSQLite(dbPath string) (*SQLiteStore, error) {
	dbPath = strings.TrimSpace(dbPath)
	if dbPath == "" {
		return nil, errors.New("sqlite database path is required")
	}
	if dbPath != ":memory:" {
		if err := os.MkdirAll(filepath.Dir(dbPath), 0o755); err != nil {
			return nil, fmt.Errorf("create database directory: %w", err)
		}
	}

	dsn := "file:" + dbPath + "?_pragma=busy_timeout(5000)&_pragma=journal_mode(WAL)&_pragma=synchronous(NORMAL)&_pragma=foreign_keys(1)"
	conn, err := sql.Open("sqlite", dsn)
	if err != nil {
		return nil, fmt.Errorf("open database: %w", err)
	}
	if dbPath == ":memory:" {
		// Every pooled connection would otherwise get its own empty database.
		conn.SetMaxOpenConns(1)
	} else {
		conn.SetMaxOpenConns(8)
	}
	conn.SetMaxIdleConns(4)
	conn.SetConnMaxLifetime(5 * time.Minute)

	return &SQLiteStore{db: conn}, nil
}

func (s *SQLiteStore) Ping(ctx context.Context) error {
	return s.db.PingContext(ctx)
}

func (s *SQLiteStore) Close() error {
	return s.db.Close()
}

func (s *SQLiteStore) EnsureSchema(ctx context.Context) error {
	query := `
	CREATE TABLE IF NOT EXISTS users (
		id TEXT PRIMARY KEY,
		username TEXT NOT NULL UNIQUE,
		password_hash TEXT NOT NULL,
		role TEXT NOT NULL DEFAULT 'elderly',
		full_name TEXT NOT NULL DEFAULT '',
		created_at INTEGER NOT NULL
	);

	CREATE TABLE IF NOT EXISTS vitals (
		id TEXT PRIMARY KEY,
		user_id TEXT NOT NULL REFERENCES users(id),
		timestamp INTEGER NOT NULL,
		type TEXT NOT NULL,
		value REAL NOT NULL,
		unit TEXT NOT NULL,
		is_abnormal INTEGER NOT NULL DEFAULT 0
	);
	CREATE INDEX IF NOT EXISTS idx_vitals_user_timestamp ON vitals(user_id, timestamp DESC);

	CREATE TABLE IF NOT EXISTS alerts (
		id TEXT PRIMARY KEY,
		user_id TEXT NOT NULL REFERENCES users(id),
		created_at INTEGER NOT NULL,
		severity TEXT NOT NULL,
		message TEXT NOT NULL,
		resolved INTEGER NOT NULL DEFAULT 0
	);
	CREATE INDEX IF NOT EXISTS idx_alerts_user_created ON alerts(user_id, created_at DESC);
	`
	if _, err := s.db.ExecContext(ctx, query); err != nil {
		return fmt.Errorf("create schema: %w", err)
	}
	return nil
}

func (s *SQLiteStore) CreateUser(ctx context.Context, user *User) error {
	if err := prepareUser(user); err != nil {
		return err
	}
	err := withBusyRetry(ctx, func() error {
		_, err := s.db.ExecContext(ctx,
			`INSERT INTO users (id, username, password_hash, role, full_name, created_at)
			 VALUES (?, ?, ?, ?, ?, ?)`,
			user.ID, user.Username, user.PasswordHash, user.Role, user.FullName, user.CreatedAt.UnixNano(),
		)
		return err
	})
	if isSQLiteUniqueViolation(err) {
		return fmt.Errorf("user %q: %w", user.Username, ErrConflict)
	}
	if err != nil {
		return fmt.Errorf("insert user: %w", err)
	}
	return nil
}

func (s *SQLiteStore) GetUserByUsername(ctx context.Context, username string) (User, error) {
	row := s.db.QueryRowContext(ctx,
		`SELECT id, username, password_hash, role, full_name, created_at
		 FROM users WHERE username = ?`,
		strings.TrimSpace(username),
	)

	var user User
	var createdAt int64
	err := row.Scan(&user.ID, &user.Username, &user.PasswordHash, &user.Role, &user.FullName, &createdAt)
	if errors.Is(err, sql.ErrNoRows) {
		return User{}, ErrNotFound
	}
	if err != nil {
		return User{}, fmt.Errorf("scan user row: %w", err)
	}
	user.CreatedAt = time.Unix(0, createdAt).UTC()
	return user, nil
}

func (s *SQLiteStore) CountUsers(ctx context.Context) (int, error) {
	var count int
	if err := s.db.QueryRowContext(ctx, `SELECT COUNT(*) FROM users`).Scan(&count); err != nil {
		return 0, fmt.Errorf("count users: %w", err)
	}
	return count, nil
}

func (s *SQLiteStore) RecordReading(ctx context.Context, reading *vitals.Reading, alert *vitals.Alert) error {
	if err := prepareReading(reading, alert); err != nil {
		return err
	}
	return withBusyRetry(ctx, func() error {
		tx, err := s.db.BeginTx(ctx, nil)
		if err != nil {
			return fmt.Errorf("begin transaction: %w", err)
		}
		defer func() { _ = tx.Rollback() }()

		if _, err := tx.ExecContext(ctx,
			`INSERT INTO vitals (id, user_id, timestamp, type, value, unit, is_abnormal)
			 VALUES (?, ?, ?, ?, ?, ?, ?)`,
			reading.ID, reading.UserID, reading.Timestamp.UnixNano(), string(reading.Type),
			reading.Value, reading.Unit, boolToInt(reading.IsAbnormal),
		); err != nil {
			return fmt.Errorf("insert reading: %w", err)
		}

		if alert != nil {
			if _, err := tx.ExecContext(ctx,
				`INSERT INTO alerts (id, user_id, created_at, severity, message, resolved)
				 VALUES (?, ?, ?, ?, ?, ?)`,
				alert.ID, alert.UserID, alert.CreatedAt.UnixNano(), string(alert.Severity),
				alert.Message, boolToInt(alert.Resolved),
			); err != nil {
				return fmt.Errorf("insert alert: %w", err)
			}
		}
		return tx.Commit()
	})
}

func (s *SQLiteStore) RecentReadings(ctx context.Context, userID string, limit int) ([]vitals.Reading, error) {
	rows, err := s.db.QueryContext(ctx,
		`SELECT id, user_id, timestamp, type, value, unit, is_abnormal
		 FROM vitals WHERE user_id = ?
		 ORDER BY timestamp DESC, id DESC
		 LIMIT ?`,
		userID, clampLimit(limit, vitals.DefaultReportLimit),
	)
	if err != nil {
		return nil, fmt.Errorf("query readings: %w", err)
	}
	defer rows.Close()

	readings := make([]vitals.Reading, 0)
	for rows.Next() {
		var reading vitals.Reading
		var ts int64
		var vitalType string
		var abnormal int
		if err := rows.Scan(&reading.ID, &reading.UserID, &ts, &vitalType, &reading.Value, &reading.Unit, &abnormal); err != nil {
			return nil, fmt.Errorf("scan reading row: %w", err)
		}
		reading.Type = vitals.Type(vitalType)
		reading.Timestamp = time.Unix(0, ts).UTC()
		reading.IsAbnormal = abnormal != 0
		readings = append(readings, reading)
	}
	return readings, rows.Err()
}

func (s *SQLiteStore) RecentAlerts(ctx context.Context, userID string, limit int) ([]vitals.Alert, error) {
	rows, err := s.db.QueryContext(ctx,
		`SELECT id, user_id, created_at, severity, message, resolved
		 FROM alerts WHERE user_id = ?
		 ORDER BY created_at DESC, id DESC
		 LIMIT ?`,
		userID, clampLimit(limit, vitals.DefaultReportLimit),
	)
	if err != nil {
		return nil, fmt.Errorf("query alerts: %w", err)
	}
	defer rows.Close()

	alerts := make([]vitals.Alert, 0)
	for rows.Next() {
		var alert vitals.Alert
		var createdAt int64
		var severity string
		var resolved int
		if err := rows.Scan(&alert.ID, &alert.UserID, &createdAt, &severity, &alert.Message, &resolved); err != nil {
			return nil, fmt.Errorf("scan alert row: %w", err)
		}
		alert.Severity = vitals.Severity(severity)
		alert.CreatedAt = time.Unix(0, createdAt).UTC()
		alert.Resolved = resolved != 0
		alerts = append(alerts, alert)
	}
	return alerts, rows.Err()
}

func (s *SQLiteStore) ResolveAlert(ctx context.Context, userID, alertID string) error {
	var affected int64
	err := withBusyRetry(ctx, func() error {
		result, err := s.db.ExecContext(ctx,
			`UPDATE alerts SET resolved = 1 WHERE id = ? AND user_id = ?`,
			alertID, userID,
		)
		if err != nil {
			return err
		}
		affected, err = result.RowsAffected()
		return err
	})
	if err != nil {
		return fmt.Errorf("resolve alert: %w", err)
	}
	if affected == 0 {
		return ErrNotFound
	}
	return nil
}

// withBusyRetry retries fn with exponential backoff while SQLite reports the
// database as busy or locked.
func withBusyRetry(ctx context.Context, fn func() error) error {
	var err error
	for attempt := 0; attempt < busyRetryAttempts; attempt++ {
		err = fn()
		if err == nil || !isSQLiteBusy(err) {
			return err
		}
		select {
		case <-ctx.Done():
			return ctx.Err()
		case <-time.After(busyRetryBase << attempt):
		}
	}
	return err
}

func isSQLiteBusy(err error) bool {
	if err == nil {
		return false
	}
	msg := err.Error()
	return strings.Contains(msg, "SQLITE_BUSY") || strings.Contains(msg, "database is locked")
}

func isSQLiteUniqueViolation(err error) bool {
	return err != nil && strings.Contains(err.Error(), "UNIQUE constraint failed")
}

func boolToInt(value bool) int {
	if value {
		return 1
	}
	return 0
}
