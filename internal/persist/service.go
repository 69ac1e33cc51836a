package persist

import (
	"context"
	"fmt"
	"strings"
	"time"

	"github.com/bilgisen/adforge/internal/errs"
	"github.com/bilgisen/adforge/internal/logger"
	"github.com/bilgisen/adforge/internal/models"
	"github.com/bilgisen/adforge/internal/storage"
	"github.com/bilgisen/adforge/internal/utils"
	"github.com/google/uuid"
)

const keyHashLen = 12

// Fetcher downloads a remote file
type Fetcher interface {
	Fetch(ctx context.Context, url string) (*Download, error)
}

// SaveRequest is an assembled slideshow with its hook and product metadata
type SaveRequest struct {
	Title              string               `json:"title"`
	Hook               *models.Hook         `json:"hook"`
	Slides             models.Slides        `json:"slides"`
	ImageStyle         models.ImageStyle    `json:"imageStyle"`
	SlideshowType      models.SlideshowType `json:"slideshowType"`
	Hashtags           []string             `json:"hashtags"`
	TotalDuration      int                  `json:"totalDuration"`
	ProductName        string               `json:"productName"`
	ProductDescription string               `json:"productDescription"`
	ProductPrice       string               `json:"productPrice"`
	ProductBenefits    []string             `json:"productBenefits"`
	TargetAudience     string               `json:"targetAudience"`
}

// ListResult is one page of saved slideshows
type ListResult struct {
	Videos  []models.ContentRecord `json:"videos"`
	Total   int                    `json:"total"`
	Message string                 `json:"message,omitempty"`
}

// Service turns slideshows into durable content records. With no content
// store it runs in demo mode and fabricates unsaved records.
type Service struct {
	store   storage.ContentStore
	objects storage.ObjectStore
	fetcher Fetcher
	now     func() time.Time
}

func NewService(store storage.ContentStore, objects storage.ObjectStore, fetcher Fetcher) *Service {
	return &Service{store: store, objects: objects, fetcher: fetcher, now: time.Now}
}

// Demo reports whether records are fabricated instead of stored
func (s *Service) Demo() bool {
	return s.store == nil
}

// Save re-hosts slide images and inserts one completed slideshow record
func (s *Service) Save(ctx context.Context, ownerID string, req SaveRequest) (*models.ContentRecord, error) {
	req.Title = strings.TrimSpace(req.Title)
	if req.Title == "" || req.Hook == nil || strings.TrimSpace(req.Hook.Text) == "" || len(req.Slides) == 0 {
		return nil, &errs.ValidationError{Message: "Missing required fields: title, hook, and slides are required"}
	}

	show := models.Slideshow{Title: req.Title, Slides: req.Slides, Hashtags: req.Hashtags}.Normalize()
	if err := show.CheckBounds(); err != nil {
		return nil, err
	}
	rec := s.record(ownerID, req, show)

	if s.store == nil {
		logger.Component("persist").Warn().Msg("Datastore not configured, slideshow not saved")
		rec.ID = "mock-" + uuid.NewString()
		rec.CreatedAt = s.now().UTC()
		rec.UpdatedAt = rec.CreatedAt
		return rec, nil
	}

	rec.ID = uuid.NewString()
	show.Slides = s.rehost(ctx, rec.ID, show.Slides)
	rec.Slides = show.Slides
	rec.ThumbnailURL = models.StringPtr(show.Thumbnail())

	if err := s.store.Insert(ctx, rec); err != nil {
		return nil, fmt.Errorf("failed to save slideshow: %w", err)
	}
	return rec, nil
}

// List returns saved slideshows, newest first
func (s *Service) List(ctx context.Context, ownerID string, limit, offset int) (*ListResult, error) {
	if s.store == nil {
		return &ListResult{
			Videos:  []models.ContentRecord{},
			Message: "Datastore not configured - no saved slideshows",
		}, nil
	}

	records, total, err := s.store.List(ctx, storage.ListQuery{
		OwnerID: ownerID,
		Kind:    models.KindSlideshow,
		Limit:   limit,
		Offset:  offset,
	})
	if err != nil {
		return nil, fmt.Errorf("failed to fetch slideshows: %w", err)
	}
	return &ListResult{Videos: records, Total: total}, nil
}

func (s *Service) record(ownerID string, req SaveRequest, show models.Slideshow) *models.ContentRecord {
	hook := *req.Hook
	return &models.ContentRecord{
		OwnerID:            models.StringPtr(ownerID),
		Title:              show.Title,
		Prompt:             hook.Text,
		Status:             models.StatusCompleted,
		Kind:               models.KindSlideshow,
		ThumbnailURL:       models.StringPtr(show.Thumbnail()),
		ProductName:        models.StringPtr(req.ProductName),
		ProductDescription: models.StringPtr(req.ProductDescription),
		ProductPrice:       models.StringPtr(req.ProductPrice),
		ProductBenefits:    req.ProductBenefits,
		TargetAudience:     models.StringPtr(req.TargetAudience),
		Slides:             show.Slides,
		Hook:               &hook,
		ImageStyle:         models.StringPtr(string(req.ImageStyle)),
		SlideshowType:      models.StringPtr(string(req.SlideshowType)),
		Hashtags:           show.Hashtags,
		TotalDuration:      show.TotalDuration,
	}
}

// rehost copies provider-hosted images into the object store. A slide whose
// copy fails keeps its original URL.
func (s *Service) rehost(ctx context.Context, slideshowID string, slides models.Slides) models.Slides {
	if s.objects == nil || s.fetcher == nil {
		return slides
	}
	log := logger.Component("persist")

	out := append(models.Slides(nil), slides...)
	for i := range out {
		url := out[i].ImageURL
		if !remote(url) || s.objects.IsDurable(url) {
			continue
		}

		durable, err := s.copy(ctx, slideshowID, out[i].SlideNumber, url)
		if err != nil {
			log.Warn().Err(err).
				Int("slide", out[i].SlideNumber).
				Msg("Failed to persist slide image, keeping original URL")
			continue
		}
		out[i].ImageURL = durable
		log.Debug().Int("slide", out[i].SlideNumber).Str("url", durable).Msg("Persisted slide image")
	}
	return out
}

func (s *Service) copy(ctx context.Context, slideshowID string, slideNumber int, url string) (string, error) {
	file, err := s.fetcher.Fetch(ctx, url)
	if err != nil {
		return "", err
	}
	key := fmt.Sprintf("slideshows/%s/slide-%d-%s.webp", slideshowID, slideNumber, utils.ShortHash(file.Body, keyHashLen))
	return s.objects.Put(ctx, key, file.Body, file.ContentType)
}

func remote(url string) bool {
	return strings.HasPrefix(url, "https://") || strings.HasPrefix(url, "http://")
}
