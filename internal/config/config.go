package config

import (
	"fmt"
	"log"
	"os"
	"strconv"
	"strings"
	"time"

	"github.com/joho/godotenv"
)

// Config holds all configuration for the application
type Config struct {
	// Server configuration
	Port            string        `json:"port"`
	Env             string        `json:"env"`
	ShutdownTimeout time.Duration `json:"shutdown_timeout"`
	HTTPTimeout     time.Duration `json:"http_timeout"`

	// Redis configuration (poll attempt counters)
	RedisURL    string `json:"redis_url"`
	RedisPrefix string `json:"redis_prefix"`

	// PostgreSQL content store. Empty means demo mode.
	DatabaseURL string `json:"database_url"`

	// CloudFlare R2 Configuration
	R2Endpoint  string `json:"r2_endpoint"`
	R2AccessKey string `json:"r2_access_key"`
	R2SecretKey string `json:"r2_secret_key"`
	R2Bucket    string `json:"r2_bucket"`
	R2AccountID string `json:"r2_account_id"`
	R2PublicURL string `json:"r2_public_url"`

	// Text generation
	AnthropicAPIKey string        `json:"anthropic_api_key"`
	TextModel       string        `json:"text_model"`
	TextMaxTokens   int           `json:"text_max_tokens"`
	AITimeout       time.Duration `json:"ai_timeout"`
	PromptsPath     string        `json:"prompts_path"`

	// Image generation
	ReplicateToken        string        `json:"replicate_token"`
	ImageModel            string        `json:"image_model"`
	ImageRequestDelay     time.Duration `json:"image_request_delay"`
	ImageRateLimitBackoff time.Duration `json:"image_rate_limit_backoff"`

	// Avatar video
	HeyGenAPIKey    string        `json:"heygen_api_key"`
	HeyGenAvatarID  string        `json:"heygen_avatar_id"`
	HeyGenVoiceID   string        `json:"heygen_voice_id"`
	PollMaxAttempts int           `json:"poll_max_attempts"`
	PollTimeout     time.Duration `json:"poll_timeout"`

	// Slideshow defaults
	DefaultSlideDuration int   `json:"default_slide_duration"`
	MaxFileSize          int64 `json:"max_file_size"`

	// Logging
	LogLevel string `json:"log_level"`
	LogFile  string `json:"log_file"`

	// Security: API key -> owner id
	APIKeys map[string]string `json:"-"`
}

// Load loads configuration from environment variables and validates it
func Load() *Config {
	// Load .env file if it exists
	if err := godotenv.Load(); err != nil && !os.IsNotExist(err) {
		log.Printf("Warning: Error loading .env file: %v", err)
	}

	cfg := FromEnv()
	if err := cfg.Validate(); err != nil {
		log.Fatalf("Invalid configuration: %v", err)
	}

	return cfg
}

// FromEnv reads the configuration without loading .env or validating
func FromEnv() *Config {
	return &Config{
		Port:            getEnv("PORT", "8080"),
		Env:             getEnv("APP_ENV", "development"),
		ShutdownTimeout: getEnvAsDuration("SHUTDOWN_TIMEOUT", 10*time.Second),
		// image batches of 12 slides with backoff take minutes
		HTTPTimeout: getEnvAsDuration("HTTP_TIMEOUT", 5*time.Minute),

		RedisURL:    getEnv("REDIS_URL", ""),
		RedisPrefix: getEnv("REDIS_PREFIX", "adforge:"),

		DatabaseURL: getEnv("DATABASE_URL", ""),

		R2Endpoint:  getEnv("R2_ENDPOINT", ""),
		R2AccessKey: getEnv("R2_ACCESS_KEY", ""),
		R2SecretKey: getEnv("R2_SECRET_ACCESS_KEY", ""),
		R2Bucket:    getEnv("R2_BUCKET", "slideshow-images"),
		R2AccountID: getEnv("CLOUDFLARE_ACCOUNT_ID", ""),
		R2PublicURL: strings.TrimRight(getEnv("R2_PUBLIC_URL", ""), "/"),

		AnthropicAPIKey: getEnv("ANTHROPIC_API_KEY", ""),
		TextModel:       getEnv("TEXT_MODEL", "claude-sonnet-4-20250514"),
		TextMaxTokens:   getEnvAsInt("TEXT_MAX_TOKENS", 2000),
		AITimeout:       getEnvAsDuration("AI_TIMEOUT", 60*time.Second),
		PromptsPath:     getEnv("PROMPTS_PATH", ""),

		ReplicateToken:        getEnv("REPLICATE_API_TOKEN", ""),
		ImageModel:            getEnv("IMAGE_MODEL", "black-forest-labs/flux-schnell"),
		ImageRequestDelay:     getEnvAsDuration("IMAGE_REQUEST_DELAY", 2*time.Second),
		ImageRateLimitBackoff: getEnvAsDuration("IMAGE_RATE_LIMIT_BACKOFF", 15*time.Second),

		HeyGenAPIKey:    getEnv("HEYGEN_API_KEY", ""),
		HeyGenAvatarID:  getEnv("HEYGEN_AVATAR_ID", "Angela-inblackskirt-20220820"),
		HeyGenVoiceID:   getEnv("HEYGEN_VOICE_ID", "1bd001e7e50f421d891986aad5158bc8"),
		PollMaxAttempts: getEnvAsInt("POLL_MAX_ATTEMPTS", 200),
		PollTimeout:     getEnvAsDuration("POLL_TIMEOUT", 30*time.Minute),

		DefaultSlideDuration: getEnvAsInt("DEFAULT_SLIDE_DURATION", 3),
		MaxFileSize:          getEnvAsInt64("MAX_FILE_SIZE", 10<<20), // 10MB

		LogLevel: getEnv("LOG_LEVEL", "info"),
		LogFile:  getEnv("LOG_FILE", ""),

		APIKeys: parseAPIKeys(getEnv("API_KEYS", "")),
	}
}

// Validate validates the configuration
func (c *Config) Validate() error {
	if c.Port == "" {
		return fmt.Errorf("PORT must not be empty")
	}
	if c.DefaultSlideDuration < 1 || c.DefaultSlideDuration > 10 {
		return fmt.Errorf("DEFAULT_SLIDE_DURATION must be between 1 and 10, got %d", c.DefaultSlideDuration)
	}
	if c.ImageRequestDelay < 0 || c.ImageRateLimitBackoff < 0 {
		return fmt.Errorf("image delays must not be negative")
	}
	if c.PollMaxAttempts <= 0 {
		return fmt.Errorf("POLL_MAX_ATTEMPTS must be positive")
	}
	if c.ObjectStoreEnabled() && c.R2PublicURL == "" {
		return fmt.Errorf("R2_PUBLIC_URL is required when R2 is configured")
	}
	return nil
}

// ObjectStoreEnabled reports whether R2 credentials are present
func (c *Config) ObjectStoreEnabled() bool {
	return c.R2AccessKey != "" && c.R2SecretKey != "" && (c.R2Endpoint != "" || c.R2AccountID != "")
}

// R2EndpointURL returns the S3-compatible endpoint for the account
func (c *Config) R2EndpointURL() string {
	if c.R2Endpoint != "" {
		return c.R2Endpoint
	}
	return fmt.Sprintf("https://%s.r2.cloudflarestorage.com", c.R2AccountID)
}

// parseAPIKeys reads "key1:owner1,key2:owner2"
func parseAPIKeys(raw string) map[string]string {
	keys := make(map[string]string)
	for _, pair := range strings.Split(raw, ",") {
		pair = strings.TrimSpace(pair)
		if pair == "" {
			continue
		}
		key, owner, ok := strings.Cut(pair, ":")
		if !ok || key == "" || owner == "" {
			log.Printf("Ignoring malformed API_KEYS entry")
			continue
		}
		keys[key] = owner
	}
	return keys
}

// Helper functions for environment variable handling
func getEnv(key, defaultValue string) string {
	if value, exists := os.LookupEnv(key); exists {
		return value
	}
	return defaultValue
}

func getEnvAsInt(name string, defaultVal int) int {
	valueStr := getEnv(name, "")
	if valueStr == "" {
		return defaultVal
	}
	value, err := strconv.Atoi(valueStr)
	if err != nil {
		log.Printf("Invalid %s value: %v, using default: %d", name, err, defaultVal)
		return defaultVal
	}
	return value
}

func getEnvAsInt64(name string, defaultVal int64) int64 {
	valueStr := getEnv(name, "")
	if valueStr == "" {
		return defaultVal
	}
	value, err := strconv.ParseInt(valueStr, 10, 64)
	if err != nil {
		log.Printf("Invalid %s value: %v, using default: %d", name, err, defaultVal)
		return defaultVal
	}
	return value
}

func getEnvAsDuration(name string, defaultVal time.Duration) time.Duration {
	valueStr := getEnv(name, "")
	if valueStr == "" {
		return defaultVal
	}
	value, err := time.ParseDuration(valueStr)
	if err != nil {
		log.Printf("Invalid %s value: %v, using default: %v", name, err, defaultVal)
		return defaultVal
	}
	return value
}
