package imagegen

import (
	"context"
	"encoding/json"
	"fmt"
	"strings"
	"time"

	"github.com/bilgisen/adforge/internal/errs"
	"github.com/go-resty/resty/v2"
)

const (
	replicateBaseURL = "https://api.replicate.com"
	replicateName    = "Replicate"
)

// Provider runs one image prediction and returns its raw output
type Provider interface {
	Run(ctx context.Context, in Input) (json.RawMessage, error)
}

// Input is the model input for one image
type Input struct {
	Prompt string
	Width  int
	Height int
}

type ReplicateClient struct {
	client       *resty.Client
	model        string
	maxPolls     int
	pollInterval time.Duration
}

// ReplicateOptions configures the predictions client
type ReplicateOptions struct {
	Token        string
	Model        string
	BaseURL      string
	Timeout      time.Duration
	MaxPolls     int
	PollInterval time.Duration
}

type predictionRequest struct {
	Input predictionInput `json:"input"`
}

type predictionInput struct {
	Prompt            string `json:"prompt"`
	Width             int    `json:"width"`
	Height            int    `json:"height"`
	NumOutputs        int    `json:"num_outputs"`
	NumInferenceSteps int    `json:"num_inference_steps"`
	GoFast            bool   `json:"go_fast"`
}

type prediction struct {
	ID     string          `json:"id"`
	Status string          `json:"status"`
	Output json.RawMessage `json:"output"`
	Error  interface{}     `json:"error"`
	URLs   struct {
		Get string `json:"get"`
	} `json:"urls"`
}

type replicateError struct {
	Title  string `json:"title"`
	Detail string `json:"detail"`
}

func NewReplicateClient(opts ReplicateOptions) *ReplicateClient {
	if opts.BaseURL == "" {
		opts.BaseURL = replicateBaseURL
	}
	if opts.Timeout == 0 {
		opts.Timeout = 90 * time.Second
	}
	if opts.MaxPolls == 0 {
		opts.MaxPolls = 30
	}
	if opts.PollInterval == 0 {
		opts.PollInterval = time.Second
	}

	client := resty.New().
		SetBaseURL(strings.TrimRight(opts.BaseURL, "/")).
		SetTimeout(opts.Timeout).
		SetAuthToken(opts.Token).
		SetHeader("Content-Type", "application/json")

	return &ReplicateClient{
		client:       client,
		model:        opts.Model,
		maxPolls:     opts.MaxPolls,
		pollInterval: opts.PollInterval,
	}
}

// Run creates a prediction and waits for it to finish
func (r *ReplicateClient) Run(ctx context.Context, in Input) (json.RawMessage, error) {
	body := predictionRequest{Input: predictionInput{
		Prompt:            in.Prompt,
		Width:             in.Width,
		Height:            in.Height,
		NumOutputs:        1,
		NumInferenceSteps: 4, // schnell is tuned for 4 steps
		GoFast:            true,
	}}

	var (
		pred   prediction
		apiErr replicateError
	)
	resp, err := r.client.R().
		SetContext(ctx).
		SetHeader("Prefer", "wait").
		SetBody(body).
		SetResult(&pred).
		SetError(&apiErr).
		Post(fmt.Sprintf("/v1/models/%s/predictions", r.model))
	if err != nil {
		return nil, &errs.ProviderError{Provider: replicateName, Message: err.Error()}
	}
	if resp.IsError() {
		return nil, providerError(resp, apiErr)
	}

	for polls := 0; ; polls++ {
		switch pred.Status {
		case "succeeded":
			return pred.Output, nil
		case "failed", "canceled":
			return nil, &errs.ProviderError{Provider: replicateName, Message: predictionError(pred)}
		}

		if polls >= r.maxPolls || pred.URLs.Get == "" {
			return nil, &errs.ProviderError{
				Provider: replicateName,
				Message:  fmt.Sprintf("prediction %s still %s", pred.ID, pred.Status),
			}
		}

		select {
		case <-ctx.Done():
			return nil, ctx.Err()
		case <-time.After(r.pollInterval):
		}

		next := prediction{}
		resp, err = r.client.R().
			SetContext(ctx).
			SetResult(&next).
			SetError(&apiErr).
			Get(pred.URLs.Get)
		if err != nil {
			return nil, &errs.ProviderError{Provider: replicateName, Message: err.Error()}
		}
		if resp.IsError() {
			return nil, providerError(resp, apiErr)
		}
		pred = next
	}
}

func providerError(resp *resty.Response, apiErr replicateError) error {
	msg := apiErr.Detail
	if msg == "" {
		msg = apiErr.Title
	}
	if msg == "" {
		msg = strings.TrimSpace(resp.String())
	}
	return &errs.ProviderError{
		Provider:   replicateName,
		StatusCode: resp.StatusCode(),
		Message:    msg,
	}
}

func predictionError(p prediction) string {
	if p.Error == nil {
		return fmt.Sprintf("prediction %s %s", p.ID, p.Status)
	}
	return fmt.Sprintf("prediction %s %s: %v", p.ID, p.Status, p.Error)
}
