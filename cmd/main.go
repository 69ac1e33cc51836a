package main

import (
	"context"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/bilgisen/adforge/internal/ai"
	"github.com/bilgisen/adforge/internal/api"
	"github.com/bilgisen/adforge/internal/avatar"
	"github.com/bilgisen/adforge/internal/cache"
	"github.com/bilgisen/adforge/internal/config"
	"github.com/bilgisen/adforge/internal/imagegen"
	"github.com/bilgisen/adforge/internal/logger"
	"github.com/bilgisen/adforge/internal/middleware"
	"github.com/bilgisen/adforge/internal/persist"
	"github.com/bilgisen/adforge/internal/storage"
	"github.com/gofiber/fiber/v2"
	"github.com/gofiber/fiber/v2/middleware/recover"
)

func main() {
	// Load and validate configuration
	cfg := config.Load()

	// Initialize logger
	output := cfg.LogFile
	if output == "" {
		output = "stdout"
	}
	if err := logger.Init(logger.Config{
		Level:  cfg.LogLevel,
		Output: output,
		Pretty: cfg.Env == "development",
	}); err != nil {
		panic(err)
	}

	log := logger.Get()
	log.Info().Str("env", cfg.Env).Msg("Starting application...")

	ctx := context.Background()

	// Content store. Without one, slideshows are fabricated, not saved.
	var store storage.ContentStore
	if cfg.DatabaseURL != "" {
		pg, err := storage.Open(ctx, cfg.DatabaseURL)
		if err != nil {
			log.Fatal().Err(err).Msg("Failed to initialize content store")
		}
		store = pg
		defer func() {
			log.Info().Msg("Closing content store...")
			if err := store.Close(); err != nil {
				log.Error().Err(err).Msg("Error closing content store")
			}
		}()
	} else {
		log.Warn().Msg("DATABASE_URL not set, running in demo mode")
	}

	// Object store for re-hosted slide images
	var objects storage.ObjectStore
	if cfg.ObjectStoreEnabled() {
		r2, err := storage.NewR2Store(ctx, storage.R2Config{
			Endpoint:  cfg.R2EndpointURL(),
			AccessKey: cfg.R2AccessKey,
			SecretKey: cfg.R2SecretKey,
			Bucket:    cfg.R2Bucket,
			PublicURL: cfg.R2PublicURL,
		})
		if err != nil {
			log.Error().Err(err).Msg("Failed to initialize R2, slide images will not be re-hosted")
		} else {
			objects = r2
		}
	}

	// Poll attempt counter
	var counter cache.PollCounter = cache.NewMemoryCounter()
	if cfg.RedisURL != "" {
		redisClient, err := cache.NewRedisClient(cfg.RedisURL, cfg.RedisPrefix)
		if err != nil {
			log.Warn().Err(err).Msg("Redis unavailable, counting poll attempts in memory")
		} else {
			counter = redisClient
		}
	}
	defer func() {
		if err := counter.Close(); err != nil {
			log.Error().Err(err).Msg("Error closing poll counter")
		}
	}()

	svc := api.Services{
		Slideshows:    persist.NewService(store, objects, persist.NewDownloader(cfg.AITimeout, cfg.MaxFileSize)),
		Store:         store,
		SlideDuration: cfg.DefaultSlideDuration,
	}

	if cfg.AnthropicAPIKey != "" {
		prompts, err := ai.LoadPrompts(cfg.PromptsPath)
		if err != nil {
			log.Fatal().Err(err).Msg("Failed to load prompts")
		}
		llm := ai.NewAnthropicClient(ai.AnthropicOptions{
			APIKey:    cfg.AnthropicAPIKey,
			Model:     cfg.TextModel,
			MaxTokens: cfg.TextMaxTokens,
			Timeout:   cfg.AITimeout,
		})
		svc.Hooks = ai.NewHookGenerator(llm, prompts)
		svc.Scripts = ai.NewScriptGenerator(llm, prompts)
	} else {
		log.Warn().Msg("ANTHROPIC_API_KEY not set, hook and script generation disabled")
	}

	if cfg.ReplicateToken != "" {
		gen := imagegen.NewGenerator(imagegen.NewReplicateClient(imagegen.ReplicateOptions{
			Token:   cfg.ReplicateToken,
			Model:   cfg.ImageModel,
			Timeout: cfg.AITimeout,
		}))
		svc.Images = gen
		svc.Batches = imagegen.NewBatchGenerator(gen, imagegen.SchedulerFactory(cfg.ImageRequestDelay, cfg.ImageRateLimitBackoff))
	} else {
		log.Warn().Msg("REPLICATE_API_TOKEN not set, image generation disabled")
	}

	if cfg.HeyGenAPIKey != "" {
		heygen := avatar.NewHeyGenClient(cfg.HeyGenAPIKey, "", cfg.AITimeout)
		svc.Videos = avatar.NewService(store, heygen, cfg.HeyGenAvatarID, cfg.HeyGenVoiceID)
		if store != nil {
			svc.Poller = avatar.NewPoller(store, heygen, counter, cfg.PollMaxAttempts, cfg.PollTimeout)
		}
	} else {
		log.Warn().Msg("HEYGEN_API_KEY not set, avatar videos disabled")
	}

	// Create Fiber app with custom config
	app := fiber.New(fiber.Config{
		ReadTimeout:  cfg.HTTPTimeout,
		WriteTimeout: cfg.HTTPTimeout,
		IdleTimeout:  120 * time.Second,
		ErrorHandler: middleware.ErrorHandler,
	})

	// Global middleware
	app.Use(recover.New()) // Recover from panics
	app.Use(middleware.RequestLogger())

	api.SetupRoutes(app, api.NewHandlers(svc), middleware.AuthConfig{
		Resolve: middleware.KeyResolver(cfg.APIKeys),
	})

	// Start server in a goroutine
	go func() {
		log.Info().Str("port", cfg.Port).Msg("Starting server")
		if err := app.Listen(":" + cfg.Port); err != nil {
			log.Fatal().Err(err).Msg("Server error")
		}
	}()

	// Wait for interrupt signal to gracefully shut down the server
	quit := make(chan os.Signal, 1)
	signal.Notify(quit, os.Interrupt, syscall.SIGTERM)
	<-quit

	log.Info().Msg("Shutting down server...")

	shutdownCtx, cancel := context.WithTimeout(context.Background(), cfg.ShutdownTimeout)
	defer cancel()

	if err := app.ShutdownWithContext(shutdownCtx); err != nil {
		log.Error().Err(err).Msg("Server forced to shutdown")
	}

	log.Info().Msg("Server exited properly")
}
