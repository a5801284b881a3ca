package config

import (
	"errors"
	"fmt"
	"os"
	"strconv"
	"strings"
	"time"

	"github.com/joho/godotenv"
)

const (
	AIProviderAuto   = "auto"
	AIProviderGemini = "gemini"
	AIProviderOpenAI = "openai"
	AIProviderMock   = "mock"
	AIProviderNone   = "none"
)

type Config struct {
	AppEnv               string
	AppName              string
	APIPrefix            string
	AppPort              string
	DatabaseURL          string
	JWTSecret            string
	JWTAlgorithm         string
	JWTAudience          string
	JWTIssuer            string
	JWTTTLMinutes        int
	CORSAllowOrigins     []string
	LogLevel             string
	LogFormat            string
	AIProvider           string
	GeminiAPIKey         string
	GeminiModel          string
	GeminiBaseURL        string
	OpenAIAPIKey         string
	OpenAIModel          string
	OpenAIBaseURL        string
	AIMaxOutputTokens    int
	AITimeoutSeconds     int
	ReportLimit          int
	DashboardVitalsLimit int
	DashboardAlertsLimit int
	SeedDemoUsers        bool
}

func Load() Config {
	_ = godotenv.Load(".env")

	appEnv := getEnv("APP_ENV", "local")
	return Config{
		AppEnv:        appEnv,
		AppName:       getEnv("APP_NAME", "Health Companion API"),
		APIPrefix:     getEnv("API_PREFIX", "/api/v1"),
		AppPort:       getEnv("APP_PORT", "8000"),
		DatabaseURL:   getEnv("DATABASE_URL", "sqlite://./data/companion.db"),
		JWTSecret:     getEnv("JWT_SECRET", ""),
		JWTAlgorithm:  getEnv("JWT_ALGORITHM", "HS256"),
		JWTAudience:   getEnv("JWT_AUDIENCE", ""),
		JWTIssuer:     getEnv("JWT_ISSUER", ""),
		JWTTTLMinutes: getEnvInt("JWT_TTL_MINUTES", 720),
		CORSAllowOrigins: getEnvCSV(
			"CORS_ALLOW_ORIGINS",
			[]string{"http://localhost:5173", "http://127.0.0.1:5173", "http://localhost:3000"},
		),
		LogLevel:             getEnv("LOG_LEVEL", "info"),
		LogFormat:            getEnv("LOG_FORMAT", "json"),
		AIProvider:           strings.ToLower(strings.TrimSpace(getEnv("AI_PROVIDER", AIProviderAuto))),
		GeminiAPIKey:         getEnv("GEMINI_API_KEY", ""),
		GeminiModel:          getEnv("GEMINI_MODEL", "gemini-1.5-flash"),
		GeminiBaseURL:        getEnv("GEMINI_BASE_URL", ""),
		OpenAIAPIKey:         getEnv("OPENAI_API_KEY", ""),
		OpenAIModel:          getEnv("OPENAI_MODEL", "gpt-5-mini"),
		OpenAIBaseURL:        getEnv("OPENAI_BASE_URL", "https://api.openai.com/v1"),
		AIMaxOutputTokens:    getEnvInt("AI_MAX_OUTPUT_TOKENS", 600),
		AITimeoutSeconds:     getEnvInt("AI_TIMEOUT_SECONDS", 20),
		ReportLimit:          getEnvInt("REPORT_LIMIT", 5),
		DashboardVitalsLimit: getEnvInt("DASHBOARD_VITALS_LIMIT", 50),
		DashboardAlertsLimit: getEnvInt("DASHBOARD_ALERTS_LIMIT", 5),
		SeedDemoUsers:        getEnvBool("SEED_DEMO_USERS", appEnv == "local"),
	}
}

func (c Config) Validate() error {
	if strings.TrimSpace(c.DatabaseURL) == "" {
		return errors.New("DATABASE_URL is required")
	}
	secret := strings.TrimSpace(c.JWTSecret)
	if secret == "" {
		return errors.New("JWT_SECRET is required")
	}
	if secret == "change-me-in-production" {
		return errors.New("JWT_SECRET must not use insecure default value")
	}
	if len(secret) < 16 {
		return errors.New("JWT_SECRET is too short; use at least 16 characters")
	}
	if strings.TrimSpace(c.JWTAlgorithm) == "" {
		return errors.New("JWT_ALGORITHM is required")
	}
	switch c.AIProvider {
	case AIProviderAuto, AIProviderGemini, AIProviderOpenAI, AIProviderMock, AIProviderNone:
	default:
		return fmt.Errorf("AI_PROVIDER %q is not supported", c.AIProvider)
	}
	if c.ReportLimit <= 0 {
		return errors.New("REPORT_LIMIT must be positive")
	}
	return nil
}

// AITimeout bounds a single text generation call.
func (c Config) AITimeout() time.Duration {
	if c.AITimeoutSeconds <= 0 {
		return 20 * time.Second
	}
	return time.Duration(c.AITimeoutSeconds) * time.Second
}

func (c Config) TokenTTL() time.Duration {
	if c.JWTTTLMinutes <= 0 {
		return 12 * time.Hour
	}
	return time.Duration(c.JWTTTLMinutes) * time.Minute
}

func getEnv(key, fallback string) string {
	if value, ok := os.LookupEnv(key); ok && value != "" {
		return value
	}
	return fallback
}

func getEnvCSV(key string, fallback []string) []string {
	raw, ok := os.LookupEnv(key)
	if !ok || strings.TrimSpace(raw) == "" {
		return fallback
	}

	parts := strings.Split(raw, ",")
	result := make([]string, 0, len(parts))
	for _, item := range parts {
		trimmed := strings.TrimSpace(item)
		if trimmed != "" {
			result = append(result, trimmed)
		}
	}
	if len(result) == 0 {
		return fallback
	}
	return result
}

func getEnvBool(key string, fallback bool) bool {
	value, ok := os.LookupEnv(key)
	if !ok || value == "" {
		return fallback
	}
	parsed, err := strconv.ParseBool(value)
	if err != nil {
		return fallback
	}
	return parsed
}

func getEnvInt(key string, fallback int) int {
	value, ok := os.LookupEnv(key)
	if !ok || strings.TrimSpace(value) == "" {
		return fallback
	}
	parsed, err := strconv.Atoi(strings.TrimSpace(value))
	if err != nil {
		return fallback
	}
	return parsed
}
