package imagegen

import (
	"context"
	"errors"

	"github.com/bilgisen/adforge/internal/errs"
	"github.com/bilgisen/adforge/internal/logger"
	"github.com/bilgisen/adforge/internal/models"
)

// SlidePrompt is one slide to illustrate
type SlidePrompt struct {
	SlideNumber int    `json:"slideNumber" validate:"min=1"`
	ImagePrompt string `json:"imagePrompt"`
}

// Result is the outcome for one slide. ImageURL is nil on failure.
type Result struct {
	SlideNumber int     `json:"slideNumber"`
	ImageURL    *string `json:"imageUrl"`
	Success     bool    `json:"success"`
	Error       string  `json:"error,omitempty"`
}

type Summary struct {
	Total      int `json:"total"`
	Successful int `json:"successful"`
	Failed     int `json:"failed"`
}

// BatchResult holds one Result per input slide, in input order
type BatchResult struct {
	Images  []Result `json:"images"`
	Summary Summary  `json:"summary"`
}

// OK reports whether every slide got an image
func (b *BatchResult) OK() bool {
	return b.Summary.Failed == 0
}

// BatchGenerator illustrates slides one at a time, paced by a per-batch Pacer
type BatchGenerator struct {
	gen      *Generator
	newPacer func() Pacer
}

func NewBatchGenerator(gen *Generator, newPacer func() Pacer) *BatchGenerator {
	return &BatchGenerator{gen: gen, newPacer: newPacer}
}

// Generate never fails as a whole; per-slide failures are reported in the results
func (b *BatchGenerator) Generate(ctx context.Context, slides []SlidePrompt, style models.ImageStyle) *BatchResult {
	log := logger.Component("imagegen")
	pacer := b.newPacer()
	size := SizeFor(defaultAspect)
	if style == "" {
		style = models.StyleAesthetic
	}

	out := &BatchResult{Images: make([]Result, 0, len(slides))}
	for i, slide := range slides {
		prompt := EnhancePrompt(slide.ImagePrompt, style, models.StyleAesthetic)

		url, err := b.generateSlide(ctx, pacer, prompt, size)
		if err != nil {
			log.Error().
				Err(err).
				Int("slide", slide.SlideNumber).
				Msg("Image generation failed")
			out.Images = append(out.Images, Result{
				SlideNumber: slide.SlideNumber,
				Error:       failureMessage(err),
			})
			continue
		}

		log.Info().
			Int("slide", slide.SlideNumber).
			Int("done", i+1).
			Int("total", len(slides)).
			Msg("Generated image")
		out.Images = append(out.Images, Result{
			SlideNumber: slide.SlideNumber,
			ImageURL:    &url,
			Success:     true,
		})
	}

	for _, r := range out.Images {
		if r.Success {
			out.Summary.Successful++
		} else {
			out.Summary.Failed++
		}
	}
	out.Summary.Total = len(out.Images)
	return out
}

func (b *BatchGenerator) generateSlide(ctx context.Context, pacer Pacer, prompt string, size Size) (string, error) {
	if err := pacer.Wait(ctx); err != nil {
		return "", err
	}

	url, err := b.gen.render(ctx, prompt, size)
	pacer.Done()
	if err == nil || !errs.IsRateLimited(err) {
		return url, err
	}

	logger.Component("imagegen").Warn().Err(err).Msg("Rate limited, backing off before retry")
	if err := pacer.Backoff(ctx); err != nil {
		return "", err
	}
	if err := pacer.Wait(ctx); err != nil {
		return "", err
	}
	url, err = b.gen.render(ctx, prompt, size)
	pacer.Done()
	return url, err
}

func failureMessage(err error) string {
	switch {
	case errors.Is(err, ErrUnrecognizedOutput):
		return "Failed to extract image URL"
	case errors.Is(err, context.Canceled), errors.Is(err, context.DeadlineExceeded):
		return "Image generation cancelled"
	default:
		return "Failed to generate image"
	}
}
