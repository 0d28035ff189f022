package config

import (
	"fmt"
	"os"
	"strconv"
	"strings"
	"time"
)

// Config is the process configuration, sourced from the environment.
type Config struct {
	Port string

	OpenAIKey   string
	OpenAIModel string

	ChatTimeout        time.Duration
	MaxTranscriptChars int

	// DatabaseURL enables the transcript archive when set.
	DatabaseURL string

	// TelemetryURL enables the usage-span sink when set.
	TelemetryURL string

	// APIKey gates the API when set.
	APIKey string

	AllowedOrigins []string
}

// Load reads configuration from environment variables. Callers load
// .env via godotenv before calling Load.
func Load() (*Config, error) {
	cfg := &Config{
		Port:               getEnv("PORT", "8080"),
		OpenAIKey:          os.Getenv("OPENAI_API_KEY"),
		OpenAIModel:        getEnv("OPENAI_MODEL", "gpt-4o-mini"),
		ChatTimeout:        30 * time.Second,
		MaxTranscriptChars: 48000,
		DatabaseURL:        os.Getenv("DATABASE_URL"),
		TelemetryURL:       os.Getenv("TELEMETRY_URL"),
		APIKey:             os.Getenv("SERVICE_API_KEY"),
	}

	if cfg.OpenAIKey == "" {
		return nil, fmt.Errorf("OPENAI_API_KEY environment variable must be set")
	}

	if v := os.Getenv("CHAT_TIMEOUT"); v != "" {
		d, err := time.ParseDuration(v)
		if err != nil {
			return nil, fmt.Errorf("invalid CHAT_TIMEOUT %q: %w", v, err)
		}
		cfg.ChatTimeout = d
	}

	if v := os.Getenv("MAX_TRANSCRIPT_CHARS"); v != "" {
		n, err := strconv.Atoi(v)
		if err != nil {
			return nil, fmt.Errorf("invalid MAX_TRANSCRIPT_CHARS %q: %w", v, err)
		}
		cfg.MaxTranscriptChars = n
	}

	if v := os.Getenv("ALLOWED_ORIGINS"); v != "" {
		for _, origin := range strings.Split(v, ",") {
			if origin = strings.TrimSpace(origin); origin != "" {
				cfg.AllowedOrigins = append(cfg.AllowedOrigins, origin)
			}
		}
	}

	return cfg, nil
}

func getEnv(key, fallback string) string {
	if value := os.Getenv(key); value != "" {
		return value
	}
	return fallback
}
