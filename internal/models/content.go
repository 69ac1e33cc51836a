package models

import (
	"time"

	"github.com/lib/pq"
)

// Status is the lifecycle state of a content record
type Status string

const (
	StatusPending    Status = "pending"
	StatusProcessing Status = "processing"
	StatusCompleted  Status = "completed"
	StatusFailed     Status = "failed"
)

// Terminal reports whether no further transitions happen
func (s Status) Terminal() bool {
	return s == StatusCompleted || s == StatusFailed
}

// Kind tells slideshows and avatar videos apart
type Kind string

const (
	KindSlideshow   Kind = "slideshow"
	KindAvatarVideo Kind = "avatar_video"
	KindMeme        Kind = "meme"
)

// ContentRecord is the persisted piece of content (a row of the videos table)
type ContentRecord struct {
	ID        string    `db:"id" json:"id"`
	OwnerID   *string   `db:"user_id" json:"user_id"`
	Title     string    `db:"title" json:"title"`
	Prompt    string    `db:"prompt" json:"prompt"`
	Status    Status    `db:"status" json:"status"`
	Kind      Kind      `db:"video_type" json:"video_type"`
	CreatedAt time.Time `db:"created_at" json:"created_at"`
	UpdatedAt time.Time `db:"updated_at" json:"updated_at"`

	// Avatar video. ProviderJobID is only set while the provider renders.
	ProviderJobID *string `db:"provider_job_id" json:"provider_job_id,omitempty"`
	MediaURL      *string `db:"media_url" json:"video_url"`
	ThumbnailURL  *string `db:"thumbnail_url" json:"thumbnail_url"`
	FailureReason *string `db:"failure_reason" json:"failure_reason,omitempty"`

	ProductName        *string        `db:"product_name" json:"product_name"`
	ProductDescription *string        `db:"product_description" json:"product_description"`
	ProductPrice       *string        `db:"product_price" json:"product_price"`
	ProductLink        *string        `db:"product_link" json:"product_link"`
	ProductBenefits    pq.StringArray `db:"product_benefits" json:"product_benefits"`
	BrandColors        pq.StringArray `db:"brand_colors" json:"brand_colors"`
	TargetAudience     *string        `db:"target_audience" json:"target_audience"`

	// Slideshow
	Slides        Slides         `db:"slides" json:"slides,omitempty"`
	Hook          *Hook          `db:"hook" json:"hook,omitempty"`
	ImageStyle    *string        `db:"image_style" json:"image_style,omitempty"`
	SlideshowType *string        `db:"slideshow_type" json:"slideshow_type,omitempty"`
	Hashtags      pq.StringArray `db:"hashtags" json:"hashtags,omitempty"`
	TotalDuration int            `db:"total_duration" json:"total_duration"`

	Views  int64 `db:"views" json:"views"`
	Likes  int64 `db:"likes" json:"likes"`
	Shares int64 `db:"shares" json:"shares"`
	Saves  int64 `db:"saves" json:"saves"`

	// Saved is false for records fabricated without a datastore
	Saved bool `db:"-" json:"saved"`
}

// StringPtr returns nil for empty strings
func StringPtr(s string) *string {
	if s == "" {
		return nil
	}
	return &s
}

// Deref returns the pointed-to string or empty
func Deref(s *string) string {
	if s == nil {
		return ""
	}
	return *s
}
