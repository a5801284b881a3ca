package store

import (
	"context"
	"errors"
	"path/filepath"
	"strings"
	"testing"
	"time"

	"github.com/google/go-cmp/cmp"

	"healthcompanion/internal/vitals"
)

type plainHasher struct{}

func (plainHasher) Hash(password string) (string, error) { return "hashed:" + password, nil }

func newTestSQLiteStore(t *testing.T) Store {
	t.Helper()

	s, err := Open(context.Background(), "sqlite://"+filepath.Join(t.TempDir(), "companion.db"))
	if err != nil {
		t.Fatalf("open sqlite store: %v", err)
	}
	t.Cleanup(func() { _ = s.Close() })
	return s
}

func createTestUser(t *testing.T, s Store, username string) User {
	t.Helper()

	user := &User{Username: username, PasswordHash: "x", FullName: "Test " + username}
	if err := s.CreateUser(context.Background(), user); err != nil {
		t.Fatalf("create user: %v", err)
	}
	return *user
}

func TestSQLiteCreateAndGetUser(t *testing.T) {
	ctx := context.Background()
	s := newTestSQLiteStore(t)

	created := createTestUser(t, s, "grandpa_joe")
	if created.ID == "" || created.CreatedAt.IsZero() {
		t.Fatalf("expected id and created_at to be assigned: %+v", created)
	}
	if created.Role != RoleElderly {
		t.Fatalf("expected default role elderly, got %q", created.Role)
	}

	got, err := s.GetUserByUsername(ctx, "grandpa_joe")
	if err != nil {
		t.Fatalf("get user: %v", err)
	}
	if got.ID != created.ID || got.FullName != "Test grandpa_joe" || got.PasswordHash != "x" {
		t.Fatalf("unexpected user %+v", got)
	}
	if !got.CreatedAt.Equal(created.CreatedAt) {
		t.Fatalf("created_at mismatch: %s vs %s", got.CreatedAt, created.CreatedAt)
	}

	if _, err := s.GetUserByUsername(ctx, "nobody"); !errors.Is(err, ErrNotFound) {
		t.Fatalf("expected ErrNotFound, got %v", err)
	}
}

func TestSQLiteCreateUserConflict(t *testing.T) {
	s := newTestSQLiteStore(t)
	createTestUser(t, s, "grandpa_joe")

	err := s.CreateUser(context.Background(), &User{Username: "grandpa_joe", PasswordHash: "y"})
	if !errors.Is(err, ErrConflict) {
		t.Fatalf("expected ErrConflict, got %v", err)
	}
}

func TestSQLiteCreateUserRejectsUnknownRole(t *testing.T) {
	s := newTestSQLiteStore(t)
	err := s.CreateUser(context.Background(), &User{Username: "x", PasswordHash: "y", Role: "admin"})
	if err == nil || !strings.Contains(err.Error(), "unsupported role") {
		t.Fatalf("expected role error, got %v", err)
	}
}

func TestSQLiteRecordReadingWithAlert(t *testing.T) {
	ctx := context.Background()
	s := newTestSQLiteStore(t)
	user := createTestUser(t, s, "grandpa_joe")

	at := time.Date(2024, 1, 1, 8, 0, 0, 0, time.UTC)
	reading, alert := vitals.NewReading(user.ID, vitals.HeartRate, 45, "bpm", at)
	if alert == nil {
		t.Fatal("expected alert for abnormal heart rate")
	}
	if err := s.RecordReading(ctx, &reading, alert); err != nil {
		t.Fatalf("record reading: %v", err)
	}
	if reading.ID == "" || alert.ID == "" {
		t.Fatalf("expected ids to be assigned, got reading=%q alert=%q", reading.ID, alert.ID)
	}

	readings, err := s.RecentReadings(ctx, user.ID, 5)
	if err != nil {
		t.Fatalf("recent readings: %v", err)
	}
	if diff := cmp.Diff([]vitals.Reading{reading}, readings); diff != "" {
		t.Fatalf("readings mismatch (-want +got):\n%s", diff)
	}

	alerts, err := s.RecentAlerts(ctx, user.ID, 5)
	if err != nil {
		t.Fatalf("recent alerts: %v", err)
	}
	if len(alerts) != 1 {
		t.Fatalf("expected 1 alert, got %d", len(alerts))
	}
	if alerts[0].Message != "Abnormal HR detected (45 bpm)" || alerts[0].Severity != vitals.SeverityMedium || alerts[0].Resolved {
		t.Fatalf("unexpected alert %+v", alerts[0])
	}
}

func TestSQLiteNormalReadingCreatesNoAlert(t *testing.T) {
	ctx := context.Background()
	s := newTestSQLiteStore(t)
	user := createTestUser(t, s, "grandpa_joe")

	reading, alert := vitals.NewReading(user.ID, vitals.HeartRate, 72, "bpm", time.Now())
	if err := s.RecordReading(ctx, &reading, alert); err != nil {
		t.Fatalf("record reading: %v", err)
	}
	alerts, err := s.RecentAlerts(ctx, user.ID, 5)
	if err != nil {
		t.Fatalf("recent alerts: %v", err)
	}
	if len(alerts) != 0 {
		t.Fatalf("expected no alerts, got %+v", alerts)
	}
}

func TestSQLiteRecentReadingsNewestFirstAndLimited(t *testing.T) {
	ctx := context.Background()
	s := newTestSQLiteStore(t)
	user := createTestUser(t, s, "grandpa_joe")
	other := createTestUser(t, s, "nurse_sarah")

	base := time.Date(2024, 1, 1, 8, 0, 0, 0, time.UTC)
	// Insert out of order to prove ordering comes from the timestamp.
	for _, offset := range []int{3, 0, 5, 1, 4, 2, 6} {
		reading, alert := vitals.NewReading(user.ID, vitals.HeartRate, float64(60+offset), "bpm", base.Add(time.Duration(offset)*time.Minute))
		if err := s.RecordReading(ctx, &reading, alert); err != nil {
			t.Fatalf("record reading: %v", err)
		}
	}
	foreign, _ := vitals.NewReading(other.ID, vitals.HeartRate, 99, "bpm", base.Add(time.Hour))
	if err := s.RecordReading(ctx, &foreign, nil); err != nil {
		t.Fatalf("record foreign reading: %v", err)
	}

	readings, err := s.RecentReadings(ctx, user.ID, 5)
	if err != nil {
		t.Fatalf("recent readings: %v", err)
	}
	got := make([]float64, 0, len(readings))
	for _, r := range readings {
		got = append(got, r.Value)
	}
	if diff := cmp.Diff([]float64{66, 65, 64, 63, 62}, got); diff != "" {
		t.Fatalf("values mismatch (-want +got):\n%s", diff)
	}
}

func TestSQLiteResolveAlert(t *testing.T) {
	ctx := context.Background()
	s := newTestSQLiteStore(t)
	user := createTestUser(t, s, "grandpa_joe")
	other := createTestUser(t, s, "nurse_sarah")

	reading, alert := vitals.NewReading(user.ID, vitals.SpO2, 90, "%", time.Now())
	if err := s.RecordReading(ctx, &reading, alert); err != nil {
		t.Fatalf("record reading: %v", err)
	}

	if err := s.ResolveAlert(ctx, other.ID, alert.ID); !errors.Is(err, ErrNotFound) {
		t.Fatalf("expected ErrNotFound for another user's alert, got %v", err)
	}
	if err := s.ResolveAlert(ctx, user.ID, alert.ID); err != nil {
		t.Fatalf("resolve alert: %v", err)
	}
	if err := s.ResolveAlert(ctx, user.ID, "missing"); !errors.Is(err, ErrNotFound) {
		t.Fatalf("expected ErrNotFound, got %v", err)
	}

	alerts, err := s.RecentAlerts(ctx, user.ID, 5)
	if err != nil {
		t.Fatalf("recent alerts: %v", err)
	}
	if len(alerts) != 1 || !alerts[0].Resolved {
		t.Fatalf("expected resolved alert, got %+v", alerts)
	}
}

func TestSeedDemoUsersOnlyWhenEmpty(t *testing.T) {
	ctx := context.Background()
	s := newTestSQLiteStore(t)

	seeded, err := SeedDemoUsers(ctx, s, plainHasher{})
	if err != nil || !seeded {
		t.Fatalf("expected seeding, got seeded=%v err=%v", seeded, err)
	}
	joe, err := s.GetUserByUsername(ctx, "grandpa_joe")
	if err != nil {
		t.Fatalf("get grandpa_joe: %v", err)
	}
	if joe.FullName != "Joe Smith" || joe.Role != RoleElderly || joe.PasswordHash != "hashed:password123" {
		t.Fatalf("unexpected demo user %+v", joe)
	}
	sarah, err := s.GetUserByUsername(ctx, "nurse_sarah")
	if err != nil || sarah.Role != RoleCaregiver {
		t.Fatalf("unexpected caregiver %+v err=%v", sarah, err)
	}

	seeded, err = SeedDemoUsers(ctx, s, plainHasher{})
	if err != nil || seeded {
		t.Fatalf("expected no second seeding, got seeded=%v err=%v", seeded, err)
	}

	written, err := SeedDemoVitals(ctx, s, "grandpa_joe", time.Now())
	if err != nil {
		t.Fatalf("seed vitals: %v", err)
	}
	if written != len(demoReadings) {
		t.Fatalf("expected %d readings, got %d", len(demoReadings), written)
	}
	alerts, err := s.RecentAlerts(ctx, joe.ID, 10)
	if err != nil {
		t.Fatalf("recent alerts: %v", err)
	}
	if len(alerts) != 2 {
		t.Fatalf("expected 2 demo alerts (glucose, heart rate), got %d", len(alerts))
	}
}

func TestUserDisplayName(t *testing.T) {
	if got := (User{Username: "joe", FullName: "  "}).DisplayName(); got != "joe" {
		t.Fatalf("expected username fallback, got %q", got)
	}
	if got := (User{Username: "joe", FullName: "Joe Smith"}).DisplayName(); got != "Joe Smith" {
		t.Fatalf("expected full name, got %q", got)
	}
}
