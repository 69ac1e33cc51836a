package api

import (
	"context"
	"time"

	"github.com/bilgisen/adforge/internal/ai"
	"github.com/bilgisen/adforge/internal/avatar"
	"github.com/bilgisen/adforge/internal/imagegen"
	"github.com/bilgisen/adforge/internal/models"
	"github.com/bilgisen/adforge/internal/persist"
	"github.com/bilgisen/adforge/internal/storage"
	"github.com/gofiber/fiber/v2"
)

const version = "1.0.0"

type HookGenerator interface {
	Generate(ctx context.Context, product models.Product, tone string) (*ai.HookResult, error)
}

type ScriptGenerator interface {
	Generate(ctx context.Context, req ai.ScriptRequest) (*ai.ScriptResult, error)
}

type ImageGenerator interface {
	GenerateOne(ctx context.Context, prompt string, style models.ImageStyle, aspect string) (*imagegen.Image, error)
}

type BatchImageGenerator interface {
	Generate(ctx context.Context, slides []imagegen.SlidePrompt, style models.ImageStyle) *imagegen.BatchResult
}

type SlideshowService interface {
	Save(ctx context.Context, ownerID string, req persist.SaveRequest) (*models.ContentRecord, error)
	List(ctx context.Context, ownerID string, limit, offset int) (*persist.ListResult, error)
}

type VideoStarter interface {
	Start(ctx context.Context, ownerID string, req avatar.StartRequest) (*avatar.StartResult, error)
}

type StatusPoller interface {
	Status(ctx context.Context, id, ownerID string) (*avatar.StatusView, error)
}

// Services are the collaborators behind the handlers. A nil generator means
// its provider is not configured; a nil Store means demo mode.
type Services struct {
	Hooks      HookGenerator
	Scripts    ScriptGenerator
	Images     ImageGenerator
	Batches    BatchImageGenerator
	Slideshows SlideshowService
	Videos     VideoStarter
	Poller     StatusPoller
	Store      storage.ContentStore

	// SlideDuration replaces generated slide durations when the request names none
	SlideDuration int
}

type Handlers struct {
	svc Services
	now func() time.Time
}

func NewHandlers(svc Services) *Handlers {
	return &Handlers{svc: svc, now: time.Now}
}

// HealthCheck handles the /health endpoint
func (h *Handlers) HealthCheck(c *fiber.Ctx) error {
	return c.JSON(fiber.Map{
		"status":    "ok",
		"version":   version,
		"time":      h.now().Format(time.RFC3339),
		"datastore": h.svc.Store != nil,
	})
}

// Disabled answers billing endpoints, which are switched off
func (h *Handlers) Disabled(c *fiber.Ctx) error {
	return fiber.NewError(fiber.StatusNotImplemented, "Billing is disabled")
}

func notConfigured(what string) error {
	return fiber.NewError(fiber.StatusServiceUnavailable, what+" is not configured")
}
