// Package ai holds the text generation backends the chat service can call.
package ai

import (
	"context"
	"strings"
)

type Usage struct {
	PromptTokens     int `json:"prompt_tokens"`
	CompletionTokens int `json:"completion_tokens"`
	TotalTokens      int `json:"total_tokens"`
}

type ModelRequest struct {
	Model        string
	SystemPrompt string
	UserPrompt   string
}

type ModelResponse struct {
	Answer string
	Model  string
	Usage  Usage
}

// Client is a single-shot text generator. Implementations must honor ctx
// cancellation; callers bound every call with a timeout.
type Client interface {
	Query(ctx context.Context, req ModelRequest) (ModelResponse, error)
}

// MockClient answers without any network access. Answer, when set, is
// returned verbatim; otherwise the last prompt line is echoed.
type MockClient struct {
	Model  string
	Answer string
}

func (m MockClient) Query(ctx context.Context, req ModelRequest) (ModelResponse, error) {
	if err := ctx.Err(); err != nil {
		return ModelResponse{}, err
	}

	answer := strings.TrimSpace(m.Answer)
	if answer == "" {
		prompt := strings.TrimSpace(req.UserPrompt)
		if idx := strings.LastIndex(prompt, "\n"); idx >= 0 {
			prompt = strings.TrimSpace(prompt[idx+1:])
		}
		if prompt == "" {
			prompt = "No question provided."
		}
		answer = "Mock response: " + prompt
	}

	model := strings.TrimSpace(req.Model)
	if model == "" {
		model = strings.TrimSpace(m.Model)
	}
	if model == "" {
		model = "mock"
	}
	return ModelResponse{
		Answer: answer,
		Model:  model,
		Usage: Usage{
			PromptTokens:     120,
			CompletionTokens: 80,
			TotalTokens:      200,
		},
	}, nil
}
