package store

import (
	"context"
	"errors"
	"fmt"
	"time"

	"healthcompanion/internal/vitals"
)

const DemoPassword = "password123"

type DemoUser struct {
	Username string
	FullName string
	Role     string
}

var DemoUsers = []DemoUser{
	{Username: "grandpa_joe", FullName: "Joe Smith", Role: RoleElderly},
	{Username: "nurse_sarah", FullName: "Sarah Jones", Role: RoleCaregiver},
}

// PasswordHasher is satisfied by auth.PasswordManager.
type PasswordHasher interface {
	Hash(password string) (string, error)
}

// SeedDemoUsers creates DemoUsers with DemoPassword when no user exists yet.
// It reports whether anything was created.
func SeedDemoUsers(ctx context.Context, s Store, hasher PasswordHasher) (bool, error) {
	count, err := s.CountUsers(ctx)
	if err != nil {
		return false, err
	}
	if count > 0 {
		return false, nil
	}

	hash, err := hasher.Hash(DemoPassword)
	if err != nil {
		return false, fmt.Errorf("hash demo password: %w", err)
	}
	for _, demo := range DemoUsers {
		user := &User{
			Username:     demo.Username,
			PasswordHash: hash,
			Role:         demo.Role,
			FullName:     demo.FullName,
		}
		if err := s.CreateUser(ctx, user); err != nil && !errors.Is(err, ErrConflict) {
			return false, fmt.Errorf("seed %s: %w", demo.Username, err)
		}
	}
	return true, nil
}

type demoReading struct {
	vitalType vitals.Type
	value     float64
	unit      string
	ago       time.Duration
}

var demoReadings = []demoReading{
	{vitals.HeartRate, 72, "bpm", 6 * time.Hour},
	{vitals.BloodPressureSystolic, 128, "mmHg", 6 * time.Hour},
	{vitals.BloodPressureDiastolic, 82, "mmHg", 6 * time.Hour},
	{vitals.SpO2, 97, "%", 5 * time.Hour},
	{vitals.Glucose, 152, "mg/dL", 3 * time.Hour},
	{vitals.Temperature, 98.4, "°F", 2 * time.Hour},
	{vitals.HeartRate, 104, "bpm", time.Hour},
}

// SeedDemoVitals records a small mixed normal/abnormal history for username,
// ending at now. It returns the number of readings written.
func SeedDemoVitals(ctx context.Context, s Store, username string, now time.Time) (int, error) {
	user, err := s.GetUserByUsername(ctx, username)
	if err != nil {
		return 0, fmt.Errorf("load %s: %w", username, err)
	}
	written := 0
	for _, demo := range demoReadings {
		reading, alert := vitals.NewReading(user.ID, demo.vitalType, demo.value, demo.unit, now.Add(-demo.ago))
		if err := s.RecordReading(ctx, &reading, alert); err != nil {
			return written, err
		}
		written++
	}
	return written, nil
}
