package server

import (
	"bytes"
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"os"
	"path/filepath"
	"strings"
	"testing"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/golang-jwt/jwt/v5"
	"github.com/google/uuid"
	"golang.org/x/crypto/bcrypt"

	"healthcompanion/internal/ai"
	"healthcompanion/internal/auth"
	"healthcompanion/internal/companion"
	"healthcompanion/internal/config"
	"healthcompanion/internal/logger"
	"healthcompanion/internal/metrics"
	"healthcompanion/internal/store"
)

var baseTestConfig config.Config

func TestMain(m *testing.M) {
	gin.SetMode(gin.TestMode)
	baseTestConfig = newTestConfig()
	os.Exit(m.Run())
}

func newTestConfig() config.Config {
	return config.Config{
		AppEnv:               "test",
		AppName:              "Health Companion API Test",
		APIPrefix:            "/api/v1",
		AppPort:              "0",
		DatabaseURL:          "sqlite://test",
		JWTSecret:            "test-secret-1234567890",
		JWTAlgorithm:         "HS256",
		JWTAudience:          "",
		JWTIssuer:            "",
		JWTTTLMinutes:        60,
		AIProvider:           config.AIProviderNone,
		AITimeoutSeconds:     2,
		ReportLimit:          5,
		DashboardVitalsLimit: 50,
		DashboardAlertsLimit: 5,
		CORSAllowOrigins: []string{
			"http://localhost:5173",
			"http://localhost:3000",
		},
	}
}

type testEnv struct {
	router  *gin.Engine
	store   store.Store
	metrics *metrics.Metrics
	cfg     config.Config
}

func newTestSQLiteStore(t *testing.T) store.Store {
	t.Helper()

	s, err := store.Open(context.Background(), "sqlite://"+filepath.Join(t.TempDir(), "companion.db"))
	if err != nil {
		t.Fatalf("open sqlite store: %v", err)
	}
	t.Cleanup(func() { _ = s.Close() })
	return s
}

// newTestEnv builds a router over a fresh SQLite store seeded with the demo
// users. A nil client leaves chat on the rule responder.
func newTestEnv(t *testing.T, client ai.Client) testEnv {
	t.Helper()
	return newTestEnvWithConfig(t, baseTestConfig, client)
}

func newTestEnvWithConfig(t *testing.T, cfg config.Config, client ai.Client) testEnv {
	t.Helper()

	s := newTestSQLiteStore(t)
	passwords := auth.NewPasswordManagerWithCost(bcrypt.MinCost)
	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()
	if _, err := store.SeedDemoUsers(ctx, s, passwords); err != nil {
		t.Fatalf("seed demo users: %v", err)
	}

	m := metrics.New()
	log := logger.Discard()
	chat := companion.NewService(s, client,
		companion.WithReportLimit(cfg.ReportLimit),
		companion.WithTimeout(cfg.AITimeout()),
		companion.WithLogger(log),
		companion.WithMetrics(m),
		companion.WithProvider(config.AIProviderMock),
	)
	app := New(cfg, Deps{
		Store:     s,
		Chat:      chat,
		Passwords: passwords,
		Metrics:   m,
		Logger:    log,
	})
	return testEnv{router: app.Router(), store: s, metrics: m, cfg: cfg}
}

func signToken(t *testing.T, sub string, overrides map[string]any) string {
	t.Helper()
	return signTokenWithConfig(t, baseTestConfig, sub, overrides)
}

func signTokenWithConfig(t *testing.T, cfg config.Config, sub string, overrides map[string]any) string {
	t.Helper()

	claims := jwt.MapClaims{
		"exp": time.Now().UTC().Add(1 * time.Hour).Unix(),
		"iat": time.Now().UTC().Add(-1 * time.Minute).Unix(),
	}
	if strings.TrimSpace(sub) != "" {
		claims["sub"] = sub
	}
	if strings.TrimSpace(cfg.JWTAudience) != "" {
		claims["aud"] = cfg.JWTAudience
	}
	if strings.TrimSpace(cfg.JWTIssuer) != "" {
		claims["iss"] = cfg.JWTIssuer
	}
	for key, value := range overrides {
		if value == nil {
			delete(claims, key)
			continue
		}
		claims[key] = value
	}

	token := jwt.NewWithClaims(jwt.SigningMethodHS256, claims)
	signed, err := token.SignedString([]byte(cfg.JWTSecret))
	if err != nil {
		t.Fatalf("sign token: %v", err)
	}
	return signed
}

func performRequest(
	t *testing.T,
	router http.Handler,
	method, targetPath, token string,
	body any,
	headers map[string]string,
) *httptest.ResponseRecorder {
	t.Helper()

	var payload []byte
	if body != nil {
		var err error
		payload, err = json.Marshal(body)
		if err != nil {
			t.Fatalf("marshal request body: %v", err)
		}
	}

	req := httptest.NewRequest(method, targetPath, bytes.NewReader(payload))
	if body != nil {
		req.Header.Set("Content-Type", "application/json")
	}
	if strings.TrimSpace(token) != "" {
		req.Header.Set("Authorization", "Bearer "+token)
	}
	for key, value := range headers {
		req.Header.Set(key, value)
	}

	rec := httptest.NewRecorder()
	router.ServeHTTP(rec, req)
	return rec
}

func decodeJSONMap(t *testing.T, rec *httptest.ResponseRecorder) map[string]any {
	t.Helper()
	var payload map[string]any
	if err := json.Unmarshal(rec.Body.Bytes(), &payload); err != nil {
		t.Fatalf("decode response JSON: %v; body=%s", err, rec.Body.String())
	}
	return payload
}

func responseDetail(t *testing.T, rec *httptest.ResponseRecorder) string {
	t.Helper()
	body := decodeJSONMap(t, rec)
	detail, _ := body["detail"].(string)
	return detail
}

func expectStatus(t *testing.T, rec *httptest.ResponseRecorder, want int) {
	t.Helper()
	if rec.Code != want {
		t.Fatalf("expected status %d, got %d body=%s", want, rec.Code, rec.Body.String())
	}
}

func testID() string {
	return uuid.NewString()
}

func counterValue(t *testing.T, env testEnv, name string, labels map[string]string) float64 {
	t.Helper()

	families, err := env.metrics.Registry().Gather()
	if err != nil {
		t.Fatalf("gather metrics: %v", err)
	}
	for _, family := range families {
		if family.GetName() != name {
			continue
		}
	next:
		for _, metric := range family.GetMetric() {
			for _, pair := range metric.GetLabel() {
				if want, ok := labels[pair.GetName()]; ok && want != pair.GetValue() {
					continue next
				}
			}
			return metric.GetCounter().GetValue()
		}
	}
	return 0
}
