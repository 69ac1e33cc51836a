package avatar

import (
	"context"
	"fmt"
	"time"

	"github.com/bilgisen/adforge/internal/cache"
	"github.com/bilgisen/adforge/internal/logger"
	"github.com/bilgisen/adforge/internal/models"
)

// ReasonTimedOut is recorded when a job exceeds its polling bound
const ReasonTimedOut = "polling timed out"

// Store is the slice of the content store the avatar path needs
type Store interface {
	Insert(ctx context.Context, rec *models.ContentRecord) error
	Get(ctx context.Context, id, ownerID string) (*models.ContentRecord, error)
	MarkProcessing(ctx context.Context, id, jobID string) error
	Complete(ctx context.Context, id, mediaURL, thumbnailURL string) error
	Fail(ctx context.Context, id, reason string) error
}

// StatusView is what a status query returns
type StatusView struct {
	Status       models.Status `json:"status"`
	VideoURL     *string       `json:"video_url"`
	ThumbnailURL *string       `json:"thumbnail_url"`
}

// Poller answers "get status" for avatar jobs. Each call does at most one
// provider round trip, and the number of calls per record is bounded.
type Poller struct {
	store       Store
	provider    VideoProvider
	counter     cache.PollCounter
	maxAttempts int
	timeout     time.Duration
	now         func() time.Time
}

func NewPoller(store Store, provider VideoProvider, counter cache.PollCounter, maxAttempts int, timeout time.Duration) *Poller {
	return &Poller{
		store:       store,
		provider:    provider,
		counter:     counter,
		maxAttempts: maxAttempts,
		timeout:     timeout,
		now:         time.Now,
	}
}

// Status returns the record's status, advancing it from the provider when it is still running
func (p *Poller) Status(ctx context.Context, id, ownerID string) (*StatusView, error) {
	log := logger.Component("poller")

	rec, err := p.store.Get(ctx, id, ownerID)
	if err != nil {
		return nil, err
	}

	if rec.Status.Terminal() {
		return viewOf(rec), nil
	}

	attempts, err := p.counter.Incr(ctx, id, p.timeout)
	if err != nil {
		log.Warn().Err(err).Str("video_id", id).Msg("Poll counter unavailable")
	}
	if attempts > int64(p.maxAttempts) || p.now().Sub(rec.CreatedAt) > p.timeout {
		log.Warn().
			Str("video_id", id).
			Int64("attempts", attempts).
			Msg("Giving up on avatar job")
		return p.fail(ctx, id, ReasonTimedOut)
	}

	// not submitted yet, nothing to ask the provider
	if rec.ProviderJobID == nil {
		return viewOf(rec), nil
	}
	jobID := *rec.ProviderJobID

	job, err := p.provider.Status(ctx, jobID)
	if err != nil {
		log.Error().Err(err).Str("video_id", id).Str("job_id", jobID).Msg("Status check failed")
		return &StatusView{Status: rec.Status}, nil
	}

	switch job.Status {
	case JobCompleted:
		if err := p.store.Complete(ctx, id, job.VideoURL, job.ThumbnailURL); err != nil {
			return nil, fmt.Errorf("complete video %s: %w", id, err)
		}
		p.reset(ctx, id)
		return &StatusView{
			Status:       models.StatusCompleted,
			VideoURL:     models.StringPtr(job.VideoURL),
			ThumbnailURL: models.StringPtr(job.ThumbnailURL),
		}, nil

	case JobFailed:
		reason := job.Error
		if reason == "" {
			reason = "provider reported failure"
		}
		return p.fail(ctx, id, reason)

	case JobPending, JobWaiting, JobProcessing:
		if rec.Status != models.StatusProcessing {
			if err := p.store.MarkProcessing(ctx, id, jobID); err != nil {
				return nil, fmt.Errorf("mark video %s processing: %w", id, err)
			}
		}
		return &StatusView{Status: models.StatusProcessing}, nil

	default:
		log.Warn().Str("job_status", job.Status).Str("video_id", id).Msg("Unknown provider status")
		return &StatusView{Status: rec.Status}, nil
	}
}

func (p *Poller) fail(ctx context.Context, id, reason string) (*StatusView, error) {
	if err := p.store.Fail(ctx, id, reason); err != nil {
		return nil, fmt.Errorf("fail video %s: %w", id, err)
	}
	p.reset(ctx, id)
	return &StatusView{Status: models.StatusFailed}, nil
}

func (p *Poller) reset(ctx context.Context, id string) {
	if err := p.counter.Reset(ctx, id); err != nil {
		logger.Component("poller").Warn().Err(err).Str("video_id", id).Msg("Failed to reset poll counter")
	}
}

func viewOf(rec *models.ContentRecord) *StatusView {
	return &StatusView{
		Status:       rec.Status,
		VideoURL:     rec.MediaURL,
		ThumbnailURL: rec.ThumbnailURL,
	}
}
