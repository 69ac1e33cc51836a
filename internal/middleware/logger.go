package middleware

import (
	"time"

	"github.com/bilgisen/adforge/internal/logger"
	"github.com/gofiber/fiber/v2"
	"github.com/rs/zerolog"
)

// LoggerConfig defines the config for the logger middleware
type LoggerConfig struct {
	// Skip defines a function to skip middleware.
	// Optional. Default: nil
	Next func(c *fiber.Ctx) bool

	// Logger is the zerolog logger instance to use.
	// If not provided, the default logger will be used.
	Logger *zerolog.Logger
}

// NewLogger creates a new middleware handler
func NewLogger(cfg LoggerConfig) fiber.Handler {
	return func(c *fiber.Ctx) error {
		if cfg.Next != nil && cfg.Next(c) {
			return c.Next()
		}

		log := cfg.Logger
		if log == nil {
			log = logger.Get()
		}

		start := time.Now()
		err := c.Next()
		latency := time.Since(start)

		status := c.Response().StatusCode()
		if err != nil {
			// the error handler runs after this middleware returns
			status = statusFor(err)
		}

		event := log.Info()
		if status >= fiber.StatusInternalServerError {
			event = log.Error()
		} else if status >= fiber.StatusBadRequest {
			event = log.Warn()
		}

		event = event.
			Str("method", c.Method()).
			Str("path", c.Path()).
			Int("status", status).
			Str("ip", c.IP()).
			Dur("latency", latency)

		if owner := Owner(c); owner != "" {
			event = event.Str("owner", owner)
		}
		if err != nil {
			event = event.Err(err)
		}

		event.Msg("request")

		return err
	}
}

// RequestLogger is the logger middleware with the default config
func RequestLogger() fiber.Handler {
	return NewLogger(LoggerConfig{
		Next: func(c *fiber.Ctx) bool { return c.Path() == "/health" },
	})
}
