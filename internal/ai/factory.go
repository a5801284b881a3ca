package ai

import (
	"context"
	"fmt"
	"strings"

	"healthcompanion/internal/config"
	"healthcompanion/internal/logger"
)

// New selects the generation backend from cfg.AIProvider. A nil Client with
// a nil error means no backend is configured and callers should answer with
// the rule-based responder only. The returned name labels logs and metrics.
func New(ctx context.Context, cfg config.Config, log *logger.Logger) (Client, string, error) {
	provider := strings.ToLower(strings.TrimSpace(cfg.AIProvider))
	if provider == "" || provider == config.AIProviderAuto {
		switch {
		case strings.TrimSpace(cfg.GeminiAPIKey) != "":
			provider = config.AIProviderGemini
		case strings.TrimSpace(cfg.OpenAIAPIKey) != "":
			provider = config.AIProviderOpenAI
		default:
			provider = config.AIProviderNone
		}
	}

	switch provider {
	case config.AIProviderGemini:
		client, err := NewGeminiClient(cfg, log)
		if err != nil {
			return nil, provider, err
		}
		return client, provider, nil
	case config.AIProviderOpenAI:
		if strings.TrimSpace(cfg.OpenAIAPIKey) == "" {
			return nil, provider, fmt.Errorf("OPENAI_API_KEY is required when AI_PROVIDER=%s", provider)
		}
		return NewOpenAIResponsesClient(cfg, log), provider, nil
	case config.AIProviderMock:
		return MockClient{Model: "mock"}, provider, nil
	case config.AIProviderNone:
		return nil, provider, nil
	default:
		return nil, provider, fmt.Errorf("unsupported AI_PROVIDER %q", cfg.AIProvider)
	}
}
