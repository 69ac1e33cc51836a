package api

import (
	"github.com/bilgisen/adforge/internal/ai"
	"github.com/bilgisen/adforge/internal/imagegen"
	"github.com/bilgisen/adforge/internal/logger"
	"github.com/bilgisen/adforge/internal/middleware"
	"github.com/bilgisen/adforge/internal/models"
	"github.com/bilgisen/adforge/internal/persist"
	"github.com/gofiber/fiber/v2"
)

type hooksRequest struct {
	models.Product
	Tone string `json:"tone"`
}

type scriptRequest struct {
	models.Product
	Hook          string               `json:"hook" validate:"notblank"`
	SlideshowType models.SlideshowType `json:"slideshowType"`
	SlideCount    int                  `json:"slideCount" validate:"omitempty,min=3,max=10"`
	SlideDuration int                  `json:"slideDuration" validate:"omitempty,min=1,max=10"`
}

type imageRequest struct {
	Prompt      string            `json:"prompt" validate:"notblank"`
	Style       models.ImageStyle `json:"style"`
	AspectRatio string            `json:"aspectRatio" validate:"omitempty,oneof=9:16 1:1 16:9"`
}

type batchRequest struct {
	Slides []imagegen.SlidePrompt `json:"slides" validate:"required,min=1,max=12,dive"`
	Style  models.ImageStyle      `json:"style"`
}

type pageQuery struct {
	Limit  int `query:"limit" validate:"omitempty,min=1"`
	Offset int `query:"offset" validate:"omitempty,min=0"`
}

// GenerateHooks handles POST /api/hooks/generate
func (h *Handlers) GenerateHooks(c *fiber.Ctx) error {
	if h.svc.Hooks == nil {
		return notConfigured("Text generation")
	}
	var req hooksRequest
	if err := middleware.BindBody(c, &req); err != nil {
		return err
	}

	res, err := h.svc.Hooks.Generate(c.UserContext(), req.Product, req.Tone)
	if err != nil {
		return err
	}

	logger.Component("api").Info().
		Int("hooks", len(res.Hooks)).
		Int("output_tokens", res.Usage.OutputTokens).
		Msg("Hooks generated")

	return c.JSON(fiber.Map{
		"success": true,
		"hooks":   res.Hooks,
		"usage":   res.Usage,
	})
}

// GenerateScript handles POST /api/slideshow/script. The request's
// slideDuration, or the configured default, overrides every slide's duration.
func (h *Handlers) GenerateScript(c *fiber.Ctx) error {
	if h.svc.Scripts == nil {
		return notConfigured("Text generation")
	}
	var req scriptRequest
	if err := middleware.BindBody(c, &req); err != nil {
		return err
	}

	res, err := h.svc.Scripts.Generate(c.UserContext(), ai.ScriptRequest{
		Hook:       req.Hook,
		Product:    req.Product,
		Type:       req.SlideshowType,
		SlideCount: req.SlideCount,
	})
	if err != nil {
		return err
	}

	show := res.Slideshow
	duration := req.SlideDuration
	if duration == 0 {
		duration = h.svc.SlideDuration
	}
	if duration > 0 {
		if show, err = show.ApplyDuration(duration); err != nil {
			return err
		}
	}

	return c.JSON(fiber.Map{
		"success":   true,
		"slideshow": show,
		"usage":     res.Usage,
	})
}

// GenerateImage handles POST /api/slideshow/image
func (h *Handlers) GenerateImage(c *fiber.Ctx) error {
	if h.svc.Images == nil {
		return notConfigured("Image generation")
	}
	var req imageRequest
	if err := middleware.BindBody(c, &req); err != nil {
		return err
	}
	if req.Style == "" {
		req.Style = models.StyleRealistic
	}

	img, err := h.svc.Images.GenerateOne(c.UserContext(), req.Prompt, req.Style, req.AspectRatio)
	if err != nil {
		return err
	}

	return c.JSON(fiber.Map{
		"success":  true,
		"imageUrl": img.URL,
		"prompt":   img.Prompt,
	})
}

// GenerateImages handles PUT /api/slideshow/image. It answers 200 with
// per-slide results even when some slides failed.
func (h *Handlers) GenerateImages(c *fiber.Ctx) error {
	if h.svc.Batches == nil {
		return notConfigured("Image generation")
	}
	var req batchRequest
	if err := middleware.BindBody(c, &req); err != nil {
		return err
	}

	res := h.svc.Batches.Generate(c.UserContext(), req.Slides, req.Style)

	return c.JSON(fiber.Map{
		"success": res.OK(),
		"images":  res.Images,
		"summary": res.Summary,
	})
}

// SaveSlideshow handles POST /api/slideshow/save
func (h *Handlers) SaveSlideshow(c *fiber.Ctx) error {
	var req persist.SaveRequest
	if err := middleware.BindBody(c, &req); err != nil {
		return err
	}

	rec, err := h.svc.Slideshows.Save(c.UserContext(), middleware.Owner(c), req)
	if err != nil {
		return err
	}

	message := "Slideshow saved successfully"
	if !rec.Saved {
		message = "Slideshow created (not saved - datastore not configured)"
	}
	return c.JSON(fiber.Map{
		"success": true,
		"message": message,
		"video":   rec,
	})
}

// ListSlideshows handles GET /api/slideshow/save
func (h *Handlers) ListSlideshows(c *fiber.Ctx) error {
	var q pageQuery
	if err := middleware.BindQuery(c, &q); err != nil {
		return err
	}

	res, err := h.svc.Slideshows.List(c.UserContext(), middleware.Owner(c), q.Limit, q.Offset)
	if err != nil {
		return err
	}

	body := fiber.Map{
		"success": true,
		"videos":  res.Videos,
		"total":   res.Total,
	}
	if res.Message != "" {
		body["message"] = res.Message
	}
	return c.JSON(body)
}
