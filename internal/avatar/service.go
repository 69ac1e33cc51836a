package avatar

import (
	"context"
	"fmt"
	"strings"

	"github.com/bilgisen/adforge/internal/errs"
	"github.com/bilgisen/adforge/internal/logger"
	"github.com/bilgisen/adforge/internal/models"
)

// Vertical output size
const (
	videoWidth  = 1080
	videoHeight = 1920
)

// StartRequest asks for one avatar-narrated clip
type StartRequest struct {
	Prompt          string   `json:"prompt" validate:"notblank"`
	ProductName     string   `json:"productName"`
	ProductPrice    string   `json:"productPrice"`
	ProductLink     string   `json:"productLink" validate:"omitempty,url"`
	ProductBenefits []string `json:"productBenefits"`
	BrandColors     []string `json:"brandColors"`
	AvatarID        string   `json:"avatarId"`
}

// StartResult identifies the created record and the provider job
type StartResult struct {
	VideoID       string        `json:"videoId"`
	ProviderJobID string        `json:"providerJobId"`
	Status        models.Status `json:"status"`
}

// Service starts avatar renders and records them
type Service struct {
	store    Store
	provider VideoProvider
	avatarID string
	voiceID  string
}

func NewService(store Store, provider VideoProvider, avatarID, voiceID string) *Service {
	return &Service{store: store, provider: provider, avatarID: avatarID, voiceID: voiceID}
}

// Start creates a pending record, submits the job and moves the record to processing.
// A provider rejection marks the record failed and is returned to the caller.
func (s *Service) Start(ctx context.Context, ownerID string, req StartRequest) (*StartResult, error) {
	req.Prompt = strings.TrimSpace(req.Prompt)
	if req.Prompt == "" {
		return nil, errs.Invalid("prompt", "Prompt is required")
	}
	if s.store == nil {
		return nil, errs.ErrStoreUnavailable
	}

	title := strings.TrimSpace(req.ProductName)
	if title == "" {
		title = "Untitled Video"
	}

	rec := &models.ContentRecord{
		OwnerID:         models.StringPtr(ownerID),
		Title:           title,
		Prompt:          req.Prompt,
		Status:          models.StatusPending,
		Kind:            models.KindAvatarVideo,
		ProductName:     models.StringPtr(req.ProductName),
		ProductPrice:    models.StringPtr(req.ProductPrice),
		ProductLink:     models.StringPtr(req.ProductLink),
		ProductBenefits: req.ProductBenefits,
		BrandColors:     req.BrandColors,
	}
	if err := s.store.Insert(ctx, rec); err != nil {
		return nil, fmt.Errorf("create video record: %w", err)
	}

	avatarID := req.AvatarID
	if avatarID == "" {
		avatarID = s.avatarID
	}

	log := logger.Component("avatar")
	jobID, err := s.provider.Generate(ctx, GenerateInput{
		Script:   req.Prompt,
		AvatarID: avatarID,
		VoiceID:  s.voiceID,
		Width:    videoWidth,
		Height:   videoHeight,
	})
	if err != nil {
		log.Error().Err(err).Str("video_id", rec.ID).Msg("Avatar job rejected")
		if ferr := s.store.Fail(ctx, rec.ID, err.Error()); ferr != nil {
			log.Error().Err(ferr).Str("video_id", rec.ID).Msg("Failed to mark video failed")
		}
		return nil, err
	}

	if err := s.store.MarkProcessing(ctx, rec.ID, jobID); err != nil {
		log.Error().Err(err).Str("video_id", rec.ID).Str("job_id", jobID).Msg("Failed to store provider job id")
		if ferr := s.store.Fail(ctx, rec.ID, "failed to store provider job id"); ferr != nil {
			log.Error().Err(ferr).Str("video_id", rec.ID).Msg("Failed to mark video failed")
		}
		return nil, fmt.Errorf("store provider job id: %w", err)
	}

	log.Info().Str("video_id", rec.ID).Str("job_id", jobID).Msg("Avatar job started")
	return &StartResult{
		VideoID:       rec.ID,
		ProviderJobID: jobID,
		Status:        models.StatusProcessing,
	}, nil
}
