// Package store persists users, vital readings and alerts. Postgres (pgx) and
// an embedded SQLite database implement the same Store interface.
package store

import (
	"context"
	"crypto/rand"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/oklog/ulid/v2"

	"healthcompanion/internal/db"
	"healthcompanion/internal/vitals"
)

var (
	ErrNotFound = errors.New("not found")
	ErrConflict = errors.New("already exists")
)

const (
	RoleElderly   = "elderly"
	RoleCaregiver = "caregiver"
)

type User struct {
	ID           string    `json:"id"`
	Username     string    `json:"username"`
	PasswordHash string    `json:"-"`
	Role         string    `json:"role"`
	FullName     string    `json:"full_name"`
	CreatedAt    time.Time `json:"created_at"`
}

// DisplayName is the name used to address the user in chat.
func (u User) DisplayName() string {
	if name := strings.TrimSpace(u.FullName); name != "" {
		return name
	}
	return u.Username
}

func NormalizeRole(role string) (string, bool) {
	switch strings.ToLower(strings.TrimSpace(role)) {
	case "", RoleElderly:
		return RoleElderly, true
	case RoleCaregiver:
		return RoleCaregiver, true
	default:
		return "", false
	}
}

type Store interface {
	Ping(ctx context.Context) error
	Close() error

	// EnsureSchema creates missing tables and indexes. It is idempotent.
	EnsureSchema(ctx context.Context) error

	// CreateUser assigns ID and CreatedAt when empty. A duplicate username
	// returns ErrConflict.
	CreateUser(ctx context.Context, user *User) error
	GetUserByUsername(ctx context.Context, username string) (User, error)
	CountUsers(ctx context.Context) (int, error)

	// RecordReading stores the reading and, when alert is non-nil, the alert
	// in the same transaction. Missing IDs are assigned in place.
	RecordReading(ctx context.Context, reading *vitals.Reading, alert *vitals.Alert) error

	// RecentReadings returns at most limit readings, newest first.
	RecentReadings(ctx context.Context, userID string, limit int) ([]vitals.Reading, error)
	// RecentAlerts returns at most limit alerts, newest first.
	RecentAlerts(ctx context.Context, userID string, limit int) ([]vitals.Alert, error)
	// ResolveAlert marks the user's alert resolved or returns ErrNotFound.
	ResolveAlert(ctx context.Context, userID, alertID string) error
}

// Open connects to the database named by databaseURL and ensures the schema.
func Open(ctx context.Context, databaseURL string) (Store, error) {
	var (
		s   Store
		err error
	)
	switch {
	case db.IsSQLiteURL(databaseURL):
		s, err = NewSQLite(db.SQLitePath(databaseURL))
	case db.IsPostgresURL(databaseURL):
		s, err = NewPostgres(ctx, databaseURL)
	default:
		return nil, fmt.Errorf("unsupported DATABASE_URL scheme: %q", databaseURL)
	}
	if err != nil {
		return nil, err
	}
	if err := s.Ping(ctx); err != nil {
		_ = s.Close()
		return nil, fmt.Errorf("ping database: %w", err)
	}
	if err := s.EnsureSchema(ctx); err != nil {
		_ = s.Close()
		return nil, fmt.Errorf("ensure schema: %w", err)
	}
	return s, nil
}

func newUserID() string {
	return uuid.NewString()
}

// newRecordID returns a ULID so readings and alerts sort by creation time.
func newRecordID(at time.Time) string {
	return ulid.MustNew(ulid.Timestamp(at), rand.Reader).String()
}

func prepareUser(user *User) error {
	if user == nil {
		return errors.New("user is nil")
	}
	user.Username = strings.TrimSpace(user.Username)
	if user.Username == "" {
		return errors.New("username is required")
	}
	role, ok := NormalizeRole(user.Role)
	if !ok {
		return fmt.Errorf("unsupported role %q", user.Role)
	}
	user.Role = role
	if user.ID == "" {
		user.ID = newUserID()
	}
	if user.CreatedAt.IsZero() {
		user.CreatedAt = time.Now().UTC()
	}
	return nil
}

func prepareReading(reading *vitals.Reading, alert *vitals.Alert) error {
	if reading == nil {
		return errors.New("reading is nil")
	}
	if strings.TrimSpace(reading.UserID) == "" {
		return errors.New("reading user is required")
	}
	if reading.Timestamp.IsZero() {
		reading.Timestamp = time.Now().UTC()
	}
	if reading.ID == "" {
		reading.ID = newRecordID(reading.Timestamp)
	}
	if alert != nil {
		if alert.UserID == "" {
			alert.UserID = reading.UserID
		}
		if alert.CreatedAt.IsZero() {
			alert.CreatedAt = reading.Timestamp
		}
		if alert.ID == "" {
			alert.ID = newRecordID(alert.CreatedAt)
		}
	}
	return nil
}

func clampLimit(limit, fallback int) int {
	if limit <= 0 {
		return fallback
	}
	return limit
}
