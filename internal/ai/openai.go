package ai

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"strings"

	"healthcompanion/internal/config"
	"healthcompanion/internal/logger"
)

const (
	defaultMaxOutputTokens = 600
	maxServerErrorRetries  = 1
	maxIncompleteRetries   = 1
)

var errIncompleteOutput = errors.New("openai response incomplete due max_output_tokens")

type OpenAIResponsesClient struct {
	apiKey          string
	baseURL         string
	model           string
	maxOutputTokens int
	httpClient      *http.Client
	log             *logger.Logger
}

func NewOpenAIResponsesClient(cfg config.Config, log *logger.Logger) *OpenAIResponsesClient {
	if log == nil {
		log = logger.Discard()
	}
	return &OpenAIResponsesClient{
		apiKey:          strings.TrimSpace(cfg.OpenAIAPIKey),
		baseURL:         strings.TrimRight(strings.TrimSpace(cfg.OpenAIBaseURL), "/"),
		model:           strings.TrimSpace(cfg.OpenAIModel),
		maxOutputTokens: cfg.AIMaxOutputTokens,
		httpClient: &http.Client{
			Timeout: cfg.AITimeout(),
		},
		log: log,
	}
}

type responsesError struct {
	status int
	body   string
}

func (e *responsesError) Error() string {
	return fmt.Sprintf("openai responses error (%d): %s", e.status, e.body)
}

func (c *OpenAIResponsesClient) Query(ctx context.Context, req ModelRequest) (ModelResponse, error) {
	if c.apiKey == "" {
		return ModelResponse{}, errors.New("OPENAI_API_KEY is not configured")
	}
	if c.baseURL == "" {
		return ModelResponse{}, errors.New("OPENAI_BASE_URL is not configured")
	}
	if c.model == "" {
		return ModelResponse{}, errors.New("OPENAI_MODEL is not configured")
	}
	requestModel := strings.TrimSpace(req.Model)
	if requestModel == "" {
		requestModel = c.model
	}
	input := buildResponsesInput(req)
	if len(input) == 0 {
		return ModelResponse{}, errors.New("AI request input is empty")
	}

	maxTokens := c.maxOutputTokens
	if maxTokens <= 0 {
		maxTokens = defaultMaxOutputTokens
	}

	serverRetries := 0
	incompleteRetries := 0
	for {
		resp, err := c.call(ctx, requestModel, input, maxTokens)
		if err == nil {
			return resp, nil
		}

		var upstream *responsesError
		switch {
		case errors.As(err, &upstream) && upstream.status >= 500 && serverRetries < maxServerErrorRetries:
			serverRetries++
			c.log.WithComponent("openai").WithField("status", upstream.status).Warn("retrying after upstream server error")
		case errors.Is(err, errIncompleteOutput) && incompleteRetries < maxIncompleteRetries:
			incompleteRetries++
			maxTokens *= 2
			c.log.WithComponent("openai").WithField("max_output_tokens", maxTokens).Warn("retrying incomplete response with a larger budget")
		default:
			return ModelResponse{}, err
		}
		if ctxErr := ctx.Err(); ctxErr != nil {
			return ModelResponse{}, ctxErr
		}
	}
}

type inputText struct {
	Type string `json:"type"`
	Text string `json:"text"`
}

type inputBlock struct {
	Role    string      `json:"role"`
	Content []inputText `json:"content"`
}

func buildResponsesInput(req ModelRequest) []inputBlock {
	input := make([]inputBlock, 0, 2)
	if system := strings.TrimSpace(req.SystemPrompt); system != "" {
		input = append(input, inputBlock{
			Role:    "system",
			Content: []inputText{{Type: "input_text", Text: system}},
		})
	}
	if user := strings.TrimSpace(req.UserPrompt); user != "" {
		input = append(input, inputBlock{
			Role:    "user",
			Content: []inputText{{Type: "input_text", Text: user}},
		})
	}
	return input
}

func (c *OpenAIResponsesClient) call(ctx context.Context, model string, input []inputBlock, maxTokens int) (ModelResponse, error) {
	payload := map[string]any{
		"model":             model,
		"input":             input,
		"max_output_tokens": maxTokens,
		"reasoning": map[string]any{
			"effort": "low",
		},
		"text": map[string]any{
			"verbosity": "low",
		},
	}
	bodyRaw, err := json.Marshal(payload)
	if err != nil {
		return ModelResponse{}, err
	}

	request, err := http.NewRequestWithContext(ctx, http.MethodPost, c.baseURL+"/responses", bytes.NewReader(bodyRaw))
	if err != nil {
		return ModelResponse{}, err
	}
	request.Header.Set("Authorization", "Bearer "+c.apiKey)
	request.Header.Set("Content-Type", "application/json")

	response, err := c.httpClient.Do(request)
	if err != nil {
		return ModelResponse{}, err
	}
	defer response.Body.Close()

	responseBody, err := io.ReadAll(response.Body)
	if err != nil {
		return ModelResponse{}, err
	}
	if response.StatusCode < 200 || response.StatusCode >= 300 {
		return ModelResponse{}, &responsesError{status: response.StatusCode, body: strings.TrimSpace(string(responseBody))}
	}

	parsed := parseJSONStringMap(responseBody)
	answer := extractResponseAnswer(parsed)
	if answer == "" {
		if isMaxOutputTokenIncomplete(parsed) {
			return ModelResponse{}, errIncompleteOutput
		}
		c.log.WithComponent("openai").WithField("body", truncateForLog(string(responseBody), 1200)).Warn("openai response had no extractable answer")
		return ModelResponse{}, errors.New("openai response answer is empty")
	}

	usageMap, _ := parsed["usage"].(map[string]any)
	modelName := strings.TrimSpace(toString(parsed["model"]))
	if modelName == "" {
		modelName = model
	}
	return ModelResponse{
		Answer: answer,
		Model:  modelName,
		Usage: Usage{
			PromptTokens:     int(extractNumberFromMap(usageMap, "input_tokens", "prompt_tokens")),
			CompletionTokens: int(extractNumberFromMap(usageMap, "output_tokens", "completion_tokens")),
			TotalTokens:      int(extractNumberFromMap(usageMap, "total_tokens")),
		},
	}, nil
}

func extractResponseAnswer(data map[string]any) string {
	if direct := strings.TrimSpace(toString(data["output_text"])); direct != "" {
		return direct
	}

	outputs, ok := data["output"].([]any)
	if !ok {
		return ""
	}
	parts := make([]string, 0)
	for _, item := range outputs {
		block, ok := item.(map[string]any)
		if !ok {
			continue
		}
		contentList, ok := block["content"].([]any)
		if !ok {
			continue
		}
		for _, contentItem := range contentList {
			contentMap, ok := contentItem.(map[string]any)
			if !ok {
				continue
			}
			contentType := strings.ToLower(strings.TrimSpace(toString(contentMap["type"])))
			if contentType != "output_text" && contentType != "text" {
				continue
			}
			if text := strings.TrimSpace(toString(contentMap["text"])); text != "" {
				parts = append(parts, text)
			}
		}
	}
	return strings.TrimSpace(strings.Join(parts, "\n"))
}

func isMaxOutputTokenIncomplete(parsed map[string]any) bool {
	details, ok := parsed["incomplete_details"].(map[string]any)
	if !ok {
		return false
	}
	return strings.ToLower(strings.TrimSpace(toString(details["reason"]))) == "max_output_tokens"
}
