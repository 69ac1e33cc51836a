package api

import (
	"github.com/bilgisen/adforge/internal/errs"
	"github.com/bilgisen/adforge/internal/middleware"
	"github.com/gofiber/fiber/v2"
)

// SetupRoutes configures all the routes for the application. Generation
// endpoints accept anonymous callers; content management needs an owner.
func SetupRoutes(app *fiber.App, h *Handlers, auth middleware.AuthConfig) {
	app.Get("/health", h.HealthCheck)

	auth.Optional = true
	api := app.Group("/api", middleware.NewAuth(auth))

	// Generation pipeline
	api.Post("/hooks/generate", h.GenerateHooks)

	slideshow := api.Group("/slideshow")
	{
		slideshow.Post("/script", h.GenerateScript)
		slideshow.Post("/image", h.GenerateImage) // single regenerate
		slideshow.Put("/image", h.GenerateImages) // whole batch
		slideshow.Post("/save", h.SaveSlideshow)
		slideshow.Get("/save", h.ListSlideshows)
	}

	// Avatar videos
	api.Post("/generate", h.GenerateVideo)
	api.Get("/videos/:id/status", h.VideoStatus)

	// Owner-scoped content management
	videos := api.Group("/videos", requireOwner)
	{
		videos.Get("", h.ListVideos)
		videos.Post("", h.CreateVideo)
		videos.Delete("/bulk", h.DeleteVideos)
		videos.Post("/bulk", h.BulkAction)
		videos.Get("/:id", h.GetVideo)
	}
	api.Get("/analytics", requireOwner, h.Analytics)

	// Billing is switched off
	stripe := api.Group("/stripe")
	{
		stripe.Post("/checkout", h.Disabled)
		stripe.Post("/webhook", h.Disabled)
	}

	// 404 Handler
	app.Use(func(c *fiber.Ctx) error {
		return fiber.NewError(fiber.StatusNotFound, "Endpoint not found")
	})
}

func requireOwner(c *fiber.Ctx) error {
	if middleware.Owner(c) == "" {
		return errs.ErrUnauthorized
	}
	return c.Next()
}
