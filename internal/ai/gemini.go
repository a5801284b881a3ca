package ai

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"strings"

	"google.golang.org/api/googleapi"

	"healthcompanion/internal/config"
	"healthcompanion/internal/logger"
)

const defaultGeminiBaseURL = "https://generativelanguage.googleapis.com"

// GeminiClient calls the Generative Language REST API (v1beta generateContent).
type GeminiClient struct {
	apiKey          string
	baseURL         string
	model           string
	maxOutputTokens int
	httpClient      *http.Client
	log             *logger.Logger
}

func NewGeminiClient(cfg config.Config, log *logger.Logger) (*GeminiClient, error) {
	apiKey := strings.TrimSpace(cfg.GeminiAPIKey)
	if apiKey == "" {
		return nil, errors.New("GEMINI_API_KEY is not configured")
	}
	model := strings.TrimSpace(cfg.GeminiModel)
	if model == "" {
		return nil, errors.New("GEMINI_MODEL is not configured")
	}
	baseURL := strings.TrimRight(strings.TrimSpace(cfg.GeminiBaseURL), "/")
	if baseURL == "" {
		baseURL = defaultGeminiBaseURL
	}
	maxTokens := cfg.AIMaxOutputTokens
	if maxTokens <= 0 {
		maxTokens = defaultMaxOutputTokens
	}
	if log == nil {
		log = logger.Discard()
	}
	return &GeminiClient{
		apiKey:          apiKey,
		baseURL:         baseURL,
		model:           model,
		maxOutputTokens: maxTokens,
		httpClient: &http.Client{
			Timeout: cfg.AITimeout(),
		},
		log: log,
	}, nil
}

type geminiPart struct {
	Text string `json:"text"`
}

type geminiContent struct {
	Role  string       `json:"role,omitempty"`
	Parts []geminiPart `json:"parts"`
}

type geminiGenerationConfig struct {
	MaxOutputTokens int `json:"maxOutputTokens,omitempty"`
}

type geminiRequest struct {
	Contents          []geminiContent        `json:"contents"`
	SystemInstruction *geminiContent         `json:"systemInstruction,omitempty"`
	GenerationConfig  geminiGenerationConfig `json:"generationConfig"`
}

type geminiResponse struct {
	Candidates []struct {
		Content      *geminiContent `json:"content"`
		FinishReason string         `json:"finishReason"`
	} `json:"candidates"`
	PromptFeedback *struct {
		BlockReason string `json:"blockReason"`
	} `json:"promptFeedback"`
	UsageMetadata *struct {
		PromptTokenCount     int `json:"promptTokenCount"`
		CandidatesTokenCount int `json:"candidatesTokenCount"`
		TotalTokenCount      int `json:"totalTokenCount"`
	} `json:"usageMetadata"`
}

func (c *GeminiClient) Query(ctx context.Context, req ModelRequest) (ModelResponse, error) {
	model := strings.TrimSpace(req.Model)
	if model == "" {
		model = c.model
	}
	prompt := strings.TrimSpace(req.UserPrompt)
	if prompt == "" {
		return ModelResponse{}, errors.New("AI request input is empty")
	}

	payload := geminiRequest{
		Contents: []geminiContent{{
			Role:  "user",
			Parts: []geminiPart{{Text: prompt}},
		}},
		GenerationConfig: geminiGenerationConfig{MaxOutputTokens: c.maxOutputTokens},
	}
	if system := strings.TrimSpace(req.SystemPrompt); system != "" {
		payload.SystemInstruction = &geminiContent{Parts: []geminiPart{{Text: system}}}
	}

	serverRetries := 0
	for {
		resp, err := c.call(ctx, model, payload)
		if err == nil {
			return resp, nil
		}
		var upstream *googleapi.Error
		if !errors.As(err, &upstream) || upstream.Code < 500 || serverRetries >= maxServerErrorRetries {
			return ModelResponse{}, err
		}
		serverRetries++
		c.log.WithComponent("gemini").WithField("status", upstream.Code).Warn("retrying after upstream server error")
		if ctxErr := ctx.Err(); ctxErr != nil {
			return ModelResponse{}, ctxErr
		}
	}
}

func (c *GeminiClient) call(ctx context.Context, model string, payload geminiRequest) (ModelResponse, error) {
	body, err := json.Marshal(payload)
	if err != nil {
		return ModelResponse{}, fmt.Errorf("encode gemini request: %w", err)
	}

	endpoint := c.baseURL + "/v1beta/" + modelResourceName(model) + ":generateContent"
	httpReq, err := http.NewRequestWithContext(ctx, http.MethodPost, endpoint, bytes.NewReader(body))
	if err != nil {
		return ModelResponse{}, fmt.Errorf("build gemini request: %w", err)
	}
	httpReq.Header.Set("Content-Type", "application/json")
	httpReq.Header.Set("x-goog-api-key", c.apiKey)

	httpResp, err := c.httpClient.Do(httpReq)
	if err != nil {
		return ModelResponse{}, fmt.Errorf("gemini request failed: %w", err)
	}
	defer httpResp.Body.Close()

	if err := googleapi.CheckResponse(httpResp); err != nil {
		return ModelResponse{}, fmt.Errorf("gemini generate content: %w", err)
	}

	var decoded geminiResponse
	if err := json.NewDecoder(httpResp.Body).Decode(&decoded); err != nil {
		return ModelResponse{}, fmt.Errorf("decode gemini response: %w", err)
	}

	answer := geminiAnswer(decoded)
	if answer == "" {
		if decoded.PromptFeedback != nil && decoded.PromptFeedback.BlockReason != "" {
			return ModelResponse{}, fmt.Errorf("gemini blocked the prompt: %s", decoded.PromptFeedback.BlockReason)
		}
		return ModelResponse{}, errors.New("gemini response answer is empty")
	}

	usage := Usage{}
	if meta := decoded.UsageMetadata; meta != nil {
		usage = Usage{
			PromptTokens:     meta.PromptTokenCount,
			CompletionTokens: meta.CandidatesTokenCount,
			TotalTokens:      meta.TotalTokenCount,
		}
	}
	return ModelResponse{Answer: answer, Model: model, Usage: usage}, nil
}

func modelResourceName(model string) string {
	if strings.HasPrefix(model, "models/") {
		return model
	}
	return "models/" + model
}

func geminiAnswer(response geminiResponse) string {
	if len(response.Candidates) == 0 || response.Candidates[0].Content == nil {
		return ""
	}
	parts := make([]string, 0, len(response.Candidates[0].Content.Parts))
	for _, part := range response.Candidates[0].Content.Parts {
		if text := strings.TrimSpace(part.Text); text != "" {
			parts = append(parts, text)
		}
	}
	return strings.TrimSpace(strings.Join(parts, "\n"))
}
