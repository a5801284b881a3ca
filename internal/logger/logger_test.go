package logger

import (
	"bytes"
	"encoding/json"
	"strings"
	"testing"

	"github.com/sirupsen/logrus"
)

func TestNewJSONUsesFieldMap(t *testing.T) {
	log := New("debug", "json")
	var buf bytes.Buffer
	log.SetOutput(&buf)

	log.WithUser("grandpa_joe").Info("chat answered")

	var entry map[string]any
	if err := json.Unmarshal(buf.Bytes(), &entry); err != nil {
		t.Fatalf("decode log line: %v; line=%s", err, buf.String())
	}
	for _, key := range []string{"timestamp", "level", "message", "username"} {
		if _, ok := entry[key]; !ok {
			t.Fatalf("expected key %q in %v", key, entry)
		}
	}
	if entry["message"] != "chat answered" || entry["username"] != "grandpa_joe" {
		t.Fatalf("unexpected entry %v", entry)
	}
	if log.GetLevel() != logrus.DebugLevel {
		t.Fatalf("expected debug level, got %s", log.GetLevel())
	}
}

func TestNewFallsBackToInfoOnBadLevel(t *testing.T) {
	log := New("loud", "text")
	if log.GetLevel() != logrus.InfoLevel {
		t.Fatalf("expected info level, got %s", log.GetLevel())
	}
	if _, ok := log.Formatter.(*logrus.TextFormatter); !ok {
		t.Fatalf("expected text formatter, got %T", log.Formatter)
	}
}

func TestHTTPRequestLevels(t *testing.T) {
	log := New("info", "json")
	var buf bytes.Buffer
	log.SetOutput(&buf)

	log.HTTPRequest("GET", "/health", "127.0.0.1", 200, 3)
	log.HTTPRequest("POST", "/api/v1/chat", "127.0.0.1", 401, 1)

	lines := strings.Split(strings.TrimSpace(buf.String()), "\n")
	if len(lines) != 2 {
		t.Fatalf("expected 2 lines, got %d: %s", len(lines), buf.String())
	}
	wantLevels := []string{"info", "warning"}
	for i, line := range lines {
		var entry map[string]any
		if err := json.Unmarshal([]byte(line), &entry); err != nil {
			t.Fatalf("decode line %d: %v", i, err)
		}
		if entry["level"] != wantLevels[i] {
			t.Fatalf("line %d: expected level %q, got %v", i, wantLevels[i], entry["level"])
		}
	}
}
