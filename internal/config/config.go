package config

import (
	"fmt"
	"os"
	"strconv"
	"strings"
	"time"
)

// RateLimitConfig indicates how many requests are allowed within a given interval.
type RateLimitConfig struct {
	Requests int
	Interval time.Duration
}

// MailConfig carries the transactional mail provider credentials and endpoints.
type MailConfig struct {
	ClientID     string
	ClientSecret string
	RefreshToken string
	TokenURL     string
	SendURL      string
	FromName     string
	FromEmail    string
}

// LLMConfig carries the generation endpoint settings.
type LLMConfig struct {
	APIKey  string
	BaseURL string
	Model   string
}

// Config aggregates application-wide configuration values.
type Config struct {
	Port            string
	DataDir         string
	LLM             LLMConfig
	Mail            MailConfig
	RateLimitScrape RateLimitConfig
	ScrapeTimeout   time.Duration
}

// Load reads configuration from environment variables and applies sane defaults.
func Load() (*Config, error) {
	cfg := &Config{
		Port:    getEnv("PORT", "8080"),
		DataDir: getEnv("DATA_DIR", "./data"),
		LLM: LLMConfig{
			APIKey:  os.Getenv("LLM_API_KEY"),
			BaseURL: getEnv("LLM_BASE_URL", "https://api.anthropic.com"),
			Model:   getEnv("LLM_MODEL", "claude-3-5-haiku-20241022"),
		},
		Mail: MailConfig{
			ClientID:     os.Getenv("MAIL_CLIENT_ID"),
			ClientSecret: os.Getenv("MAIL_CLIENT_SECRET"),
			RefreshToken: os.Getenv("MAIL_REFRESH_TOKEN"),
			TokenURL:     getEnv("MAIL_TOKEN_URL", "https://accounts.zoho.com/oauth/v2/token"),
			SendURL:      os.Getenv("MAIL_SEND_URL"),
			FromName:     getEnv("MAIL_FROM_NAME", "Outreach"),
			FromEmail:    os.Getenv("MAIL_FROM_EMAIL"),
		},
	}

	timeout, err := time.ParseDuration(getEnv("SCRAPE_TIMEOUT", "30s"))
	if err != nil {
		return nil, fmt.Errorf("invalid SCRAPE_TIMEOUT value: %w", err)
	}
	cfg.ScrapeTimeout = timeout

	rl, err := parseRateLimit(getEnv("RATE_LIMIT_SCRAPE", "5/min"))
	if err != nil {
		return nil, fmt.Errorf("invalid RATE_LIMIT_SCRAPE value: %w", err)
	}
	cfg.RateLimitScrape = rl

	return cfg, nil
}

func parseRateLimit(value string) (RateLimitConfig, error) {
	parts := strings.Split(value, "/")
	if len(parts) != 2 {
		return RateLimitConfig{}, fmt.Errorf("expected format <requests>/<interval>, got %q", value)
	}

	requests, err := strconv.Atoi(strings.TrimSpace(parts[0]))
	if err != nil || requests <= 0 {
		return RateLimitConfig{}, fmt.Errorf("invalid request count: %v", parts[0])
	}

	unit := strings.ToLower(strings.TrimSpace(parts[1]))
	var interval time.Duration
	switch unit {
	case "s", "sec", "second", "seconds":
		interval = time.Second
	case "m", "min", "minute", "minutes":
		interval = time.Minute
	case "h", "hr", "hour", "hours":
		interval = time.Hour
	default:
		return RateLimitConfig{}, fmt.Errorf("unsupported interval unit: %s", unit)
	}

	return RateLimitConfig{Requests: requests, Interval: interval}, nil
}

func getEnv(key, fallback string) string {
	if val, ok := os.LookupEnv(key); ok && val != "" {
		return val
	}
	return fallback
}
