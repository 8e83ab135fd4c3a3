package service

import (
	"context"
	"fmt"
	"time"

	"github.com/fadilmartias/hireprep/internal/config"
	"github.com/go-resty/resty/v2"
	"github.com/tidwall/gjson"
)

const ProviderOpenRouter = "openrouter"

type OpenRouterService struct {
	client *resty.Client
	Model  string
}

func NewOpenRouterService(cfg *config.OpenRouterConfig) *OpenRouterService {
	client := resty.New().
		SetBaseURL(cfg.BaseURL).
		SetAuthToken(cfg.APIKey).
		SetHeader("Content-Type", "application/json").
		SetTimeout(90 * time.Second).
		SetRetryCount(2).
		SetRetryWaitTime(time.Second).
		AddRetryCondition(func(r *resty.Response, err error) bool {
			return err != nil || r.StatusCode() == 429 || r.StatusCode() >= 500
		})
	return &OpenRouterService{client: client, Model: cfg.Model}
}

func (s *OpenRouterService) Name() string { return ProviderOpenRouter }

func (s *OpenRouterService) Generate(ctx context.Context, req AIRequest) (*AIResult, error) {
	model := req.Model
	if model == "" {
		model = s.Model
	}

	messages := []map[string]string{}
	if req.SystemPrompt != "" {
		messages = append(messages, map[string]string{"role": "system", "content": req.SystemPrompt})
	}
	messages = append(messages, map[string]string{"role": "user", "content": req.Prompt})

	resp, err := s.client.R().
		SetContext(ctx).
		SetBody(map[string]any{
			"model":       model,
			"messages":    messages,
			"temperature": 0.1,
		}).
		Post("/chat/completions")
	if err != nil {
		return nil, fmt.Errorf("openrouter request failed: %w", err)
	}
	if resp.IsError() {
		msg := gjson.Get(resp.String(), "error.message").String()
		return nil, fmt.Errorf("openrouter returned %d: %s", resp.StatusCode(), msg)
	}

	body := resp.String()
	text := gjson.Get(body, "choices.0.message.content").String()
	if text == "" {
		return nil, fmt.Errorf("no response from LLM")
	}

	// OpenRouter reports the model that actually served the call
	if served := gjson.Get(body, "model").String(); served != "" {
		model = served
	}

	return &AIResult{
		Text:         text,
		Provider:     ProviderOpenRouter,
		Model:        model,
		InputTokens:  int(gjson.Get(body, "usage.prompt_tokens").Int()),
		OutputTokens: int(gjson.Get(body, "usage.completion_tokens").Int()),
	}, nil
}
