package middleware

import (
	"errors"
	"strings"

	"github.com/bilgisen/adforge/internal/errs"
	"github.com/bilgisen/adforge/internal/logger"
	"github.com/gofiber/fiber/v2"
)

// OwnerKey is the Locals key holding the authenticated owner id
const OwnerKey = "owner"

// AuthConfig defines the config for the auth middleware
type AuthConfig struct {
	// Skip defines a function to skip middleware.
	// Optional. Default: nil
	Next func(c *fiber.Ctx) bool

	// Resolve maps an API key to its owner id.
	// Required.
	Resolve func(key string) (string, bool)

	// Optional lets requests without a key through anonymously. A key that
	// is present but unknown is still rejected.
	Optional bool

	// Header is the header key where to get the API key from.
	// Optional. Default: "X-API-Key"
	Header string
}

// NewAuth creates a new middleware handler
func NewAuth(cfg AuthConfig) fiber.Handler {
	if cfg.Header == "" {
		cfg.Header = "X-API-Key"
	}

	return func(c *fiber.Ctx) error {
		if cfg.Next != nil && cfg.Next(c) {
			return c.Next()
		}

		key := c.Get(cfg.Header)
		if key == "" {
			key = c.Get(fiber.HeaderAuthorization)
		}
		// For "Bearer " prefixed tokens
		key = strings.TrimSpace(strings.TrimPrefix(key, "Bearer "))

		if key == "" {
			if cfg.Optional {
				return c.Next()
			}
			return unauthorized(c, errors.New("missing API key"))
		}

		owner, ok := cfg.Resolve(key)
		if !ok {
			return unauthorized(c, errors.New("invalid API key"))
		}

		c.Locals(OwnerKey, owner)
		return c.Next()
	}
}

// KeyResolver resolves keys against a static key -> owner table
func KeyResolver(keys map[string]string) func(string) (string, bool) {
	return func(key string) (string, bool) {
		owner, ok := keys[key]
		return owner, ok
	}
}

// Owner returns the authenticated owner id, or "" for anonymous requests
func Owner(c *fiber.Ctx) string {
	owner, _ := c.Locals(OwnerKey).(string)
	return owner
}

func unauthorized(c *fiber.Ctx, err error) error {
	logger.Get().Warn().
		Str("method", c.Method()).
		Str("path", c.Path()).
		Str("ip", c.IP()).
		Err(err).
		Msg("Authentication failed")

	return errs.ErrUnauthorized
}
