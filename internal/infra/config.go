package infra

import (
	"fmt"
	"os"
	"strconv"
	"time"
)

// Config represents application configuration loaded from environment variables.
type Config struct {
	AppEnv string
	Port   string

	OpenAIAPIKey  string
	OpenAIBaseURL string
	OpenAIModel   string
	OpenAIVoice   string

	RunwayAPIKey  string
	RunwayBaseURL string
	RunwayVersion string
	VideoModel    string

	PollInterval  time.Duration
	PollJitter    time.Duration
	ImageDeadline time.Duration
	VideoDeadline time.Duration

	HTTPReadTimeout  time.Duration
	HTTPWriteTimeout time.Duration
	HTTPIdleTimeout  time.Duration
}

// LoadConfig loads configuration from environment variables and applies
// defaults where needed. The write timeout must cover the longest polling
// deadline, otherwise the server cuts off wait-mode video responses.
func LoadConfig() (*Config, error) {
	cfg := &Config{
		AppEnv: getEnv("APP_ENV", "development"),
		Port:   getEnv("PORT", "8080"),

		OpenAIAPIKey:  os.Getenv("OPENAI_API_KEY"),
		OpenAIBaseURL: getEnv("OPENAI_BASE_URL", "https://api.openai.com/v1"),
		OpenAIModel:   getEnv("OPENAI_MODEL", "gpt-4o-mini"),
		OpenAIVoice:   getEnv("OPENAI_TTS_VOICE", "alloy"),

		RunwayAPIKey:  os.Getenv("RUNWAY_API_KEY"),
		RunwayBaseURL: getEnv("RUNWAY_BASE_URL", "https://api.dev.runwayml.com/v1"),
		RunwayVersion: getEnv("RUNWAY_API_VERSION", "2024-11-06"),
		VideoModel:    getEnv("RUNWAY_VIDEO_MODEL", "gen3_alpha"),

		PollInterval:  time.Millisecond * time.Duration(getEnvInt("POLL_INTERVAL_MS", 4000)),
		PollJitter:    time.Millisecond * time.Duration(getEnvInt("POLL_JITTER_MS", 800)),
		ImageDeadline: time.Minute * time.Duration(getEnvInt("IMAGE_DEADLINE_MINUTES", 8)),
		VideoDeadline: time.Minute * time.Duration(getEnvInt("VIDEO_DEADLINE_MINUTES", 10)),

		HTTPReadTimeout:  time.Second * time.Duration(getEnvInt("HTTP_READ_TIMEOUT_SECONDS", 15)),
		HTTPWriteTimeout: time.Second * time.Duration(getEnvInt("HTTP_WRITE_TIMEOUT_SECONDS", 660)),
		HTTPIdleTimeout:  time.Second * time.Duration(getEnvInt("HTTP_IDLE_TIMEOUT_SECONDS", 60)),
	}

	if cfg.OpenAIAPIKey == "" {
		return nil, fmt.Errorf("OPENAI_API_KEY is required")
	}

	if cfg.RunwayAPIKey == "" {
		return nil, fmt.Errorf("RUNWAY_API_KEY is required")
	}

	return cfg, nil
}

func getEnv(key, fallback string) string {
	if v, ok := os.LookupEnv(key); ok && v != "" {
		return v
	}
	return fallback
}

func getEnvInt(key string, fallback int) int {
	if v, ok := os.LookupEnv(key); ok && v != "" {
		if i, err := strconv.Atoi(v); err == nil {
			return i
		}
	}
	return fallback
}
