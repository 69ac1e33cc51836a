package ai

import (
	"context"
	"fmt"
	"strings"
	"time"

	"github.com/bilgisen/adforge/internal/errs"
	"github.com/go-resty/resty/v2"
)

const (
	anthropicBaseURL = "https://api.anthropic.com"
	anthropicVersion = "2023-06-01"
	providerName     = "Claude"
)

// Completer sends a single-turn prompt to a text-generation model
type Completer interface {
	Complete(ctx context.Context, prompt string, maxTokens int) (*Completion, error)
}

// Completion is the text answer plus token accounting
type Completion struct {
	Text  string
	Usage Usage
}

// Usage reports tokens billed for one completion
type Usage struct {
	InputTokens  int `json:"inputTokens"`
	OutputTokens int `json:"outputTokens"`
}

type AnthropicClient struct {
	client    *resty.Client
	model     string
	maxTokens int
}

type anthropicMessage struct {
	Role    string `json:"role"`
	Content string `json:"content"`
}

type anthropicRequest struct {
	Model     string             `json:"model"`
	MaxTokens int                `json:"max_tokens"`
	Messages  []anthropicMessage `json:"messages"`
}

type anthropicResponse struct {
	Content []struct {
		Type string `json:"type"`
		Text string `json:"text"`
	} `json:"content"`
	Usage struct {
		InputTokens  int `json:"input_tokens"`
		OutputTokens int `json:"output_tokens"`
	} `json:"usage"`
}

type anthropicError struct {
	Error struct {
		Type    string `json:"type"`
		Message string `json:"message"`
	} `json:"error"`
}

// AnthropicOptions configures the Messages API client
type AnthropicOptions struct {
	APIKey    string
	Model     string
	MaxTokens int
	Timeout   time.Duration
	BaseURL   string
}

func NewAnthropicClient(opts AnthropicOptions) *AnthropicClient {
	if opts.BaseURL == "" {
		opts.BaseURL = anthropicBaseURL
	}
	if opts.Timeout == 0 {
		opts.Timeout = 60 * time.Second
	}
	if opts.MaxTokens == 0 {
		opts.MaxTokens = 2000
	}

	client := resty.New().
		SetBaseURL(strings.TrimRight(opts.BaseURL, "/")).
		SetTimeout(opts.Timeout).
		SetHeader("x-api-key", opts.APIKey).
		SetHeader("anthropic-version", anthropicVersion).
		SetHeader("Content-Type", "application/json")

	return &AnthropicClient{
		client:    client,
		model:     opts.Model,
		maxTokens: opts.MaxTokens,
	}
}

// Complete sends prompt as a single user message and returns the first text block.
// maxTokens is capped at the client's configured maximum.
func (a *AnthropicClient) Complete(ctx context.Context, prompt string, maxTokens int) (*Completion, error) {
	if maxTokens <= 0 || maxTokens > a.maxTokens {
		maxTokens = a.maxTokens
	}

	req := anthropicRequest{
		Model:     a.model,
		MaxTokens: maxTokens,
		Messages: []anthropicMessage{{
			Role:    "user",
			Content: prompt,
		}},
	}

	var (
		result anthropicResponse
		apiErr anthropicError
	)
	resp, err := a.client.R().
		SetContext(ctx).
		SetBody(req).
		SetResult(&result).
		SetError(&apiErr).
		Post("/v1/messages")

	if err != nil {
		return nil, &errs.ProviderError{Provider: providerName, Message: err.Error()}
	}

	if resp.IsError() {
		msg := apiErr.Error.Message
		if msg == "" {
			msg = strings.TrimSpace(resp.String())
		}
		return nil, &errs.ProviderError{
			Provider:   providerName,
			StatusCode: resp.StatusCode(),
			Message:    msg,
		}
	}

	for _, block := range result.Content {
		if block.Type == "text" {
			return &Completion{
				Text: block.Text,
				Usage: Usage{
					InputTokens:  result.Usage.InputTokens,
					OutputTokens: result.Usage.OutputTokens,
				},
			}, nil
		}
	}

	return nil, &errs.ParseError{What: "text", Err: fmt.Errorf("no text block in %s response", providerName)}
}
