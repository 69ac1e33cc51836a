package avatar

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
	heygenBaseURL = "https://api.heygen.com"
	heygenName    = "HeyGen"
)

// Provider job states reported by the avatar-video API
const (
	JobPending    = "pending"
	JobWaiting    = "waiting"
	JobProcessing = "processing"
	JobCompleted  = "completed"
	JobFailed     = "failed"
)

// VideoProvider renders talking-head videos asynchronously
type VideoProvider interface {
	Generate(ctx context.Context, in GenerateInput) (string, error)
	Status(ctx context.Context, jobID string) (*JobStatus, error)
}

// GenerateInput is one avatar clip request
type GenerateInput struct {
	Script   string
	AvatarID string
	VoiceID  string
	Width    int
	Height   int
}

// JobStatus is the provider's view of a render job
type JobStatus struct {
	Status       string
	VideoURL     string
	ThumbnailURL string
	Error        string
}

type HeyGenClient struct {
	client *resty.Client
}

type heygenGenerateRequest struct {
	VideoInputs []heygenVideoInput `json:"video_inputs"`
	Dimension   heygenDimension    `json:"dimension"`
}

type heygenVideoInput struct {
	Character struct {
		Type        string `json:"type"`
		AvatarID    string `json:"avatar_id"`
		AvatarStyle string `json:"avatar_style"`
	} `json:"character"`
	Voice struct {
		Type      string `json:"type"`
		InputText string `json:"input_text"`
		VoiceID   string `json:"voice_id"`
	} `json:"voice"`
}

type heygenDimension struct {
	Width  int `json:"width"`
	Height int `json:"height"`
}

type heygenGenerateResponse struct {
	Data struct {
		VideoID string `json:"video_id"`
	} `json:"data"`
}

type heygenStatusResponse struct {
	Data struct {
		Status       string          `json:"status"`
		VideoURL     string          `json:"video_url"`
		ThumbnailURL string          `json:"thumbnail_url"`
		Error        json.RawMessage `json:"error"`
	} `json:"data"`
}

type heygenError struct {
	Message string          `json:"message"`
	Error   json.RawMessage `json:"error"`
}

func NewHeyGenClient(apiKey, baseURL string, timeout time.Duration) *HeyGenClient {
	if baseURL == "" {
		baseURL = heygenBaseURL
	}
	if timeout == 0 {
		timeout = 30 * time.Second
	}

	client := resty.New().
		SetBaseURL(strings.TrimRight(baseURL, "/")).
		SetTimeout(timeout).
		SetHeader("X-Api-Key", apiKey).
		SetHeader("Content-Type", "application/json")

	return &HeyGenClient{client: client}
}

// Generate submits a render job and returns the provider job id
func (h *HeyGenClient) Generate(ctx context.Context, in GenerateInput) (string, error) {
	var input heygenVideoInput
	input.Character.Type = "avatar"
	input.Character.AvatarID = in.AvatarID
	input.Character.AvatarStyle = "normal"
	input.Voice.Type = "text"
	input.Voice.InputText = in.Script
	input.Voice.VoiceID = in.VoiceID

	body := heygenGenerateRequest{
		VideoInputs: []heygenVideoInput{input},
		Dimension:   heygenDimension{Width: in.Width, Height: in.Height},
	}

	var (
		result heygenGenerateResponse
		apiErr heygenError
	)
	resp, err := h.client.R().
		SetContext(ctx).
		SetBody(body).
		SetResult(&result).
		SetError(&apiErr).
		Post("/v2/video/generate")
	if err != nil {
		return "", &errs.ProviderError{Provider: heygenName, Message: err.Error()}
	}
	if resp.IsError() {
		return "", providerError(resp, apiErr)
	}
	if result.Data.VideoID == "" {
		return "", &errs.ProviderError{Provider: heygenName, StatusCode: resp.StatusCode(), Message: "no video_id in response"}
	}

	return result.Data.VideoID, nil
}

// Status reads the current state of a render job
func (h *HeyGenClient) Status(ctx context.Context, jobID string) (*JobStatus, error) {
	var (
		result heygenStatusResponse
		apiErr heygenError
	)
	resp, err := h.client.R().
		SetContext(ctx).
		SetQueryParam("video_id", jobID).
		SetResult(&result).
		SetError(&apiErr).
		Get("/v1/video_status.get")
	if err != nil {
		return nil, &errs.ProviderError{Provider: heygenName, Message: err.Error()}
	}
	if resp.IsError() {
		return nil, providerError(resp, apiErr)
	}

	return &JobStatus{
		Status:       strings.ToLower(result.Data.Status),
		VideoURL:     result.Data.VideoURL,
		ThumbnailURL: result.Data.ThumbnailURL,
		Error:        rawMessage(result.Data.Error),
	}, nil
}

func providerError(resp *resty.Response, apiErr heygenError) error {
	msg := rawMessage(apiErr.Error)
	if msg == "" {
		msg = apiErr.Message
	}
	if msg == "" {
		msg = strings.TrimSpace(resp.String())
	}
	return &errs.ProviderError{
		Provider:   heygenName,
		StatusCode: resp.StatusCode(),
		Message:    msg,
	}
}

// rawMessage flattens HeyGen's error field, which is null, a string or {code, message}
func rawMessage(raw json.RawMessage) string {
	if len(raw) == 0 || string(raw) == "null" {
		return ""
	}
	var s string
	if err := json.Unmarshal(raw, &s); err == nil {
		return s
	}
	var obj struct {
		Code    interface{} `json:"code"`
		Message string      `json:"message"`
		Detail  string      `json:"detail"`
	}
	if err := json.Unmarshal(raw, &obj); err == nil && (obj.Message != "" || obj.Detail != "") {
		if obj.Detail != "" && obj.Message != "" {
			return fmt.Sprintf("%s: %s", obj.Message, obj.Detail)
		}
		return obj.Message + obj.Detail
	}
	return string(raw)
}
