package config

import (
	"errors"
	"fmt"
	"io/fs"
	"os"
	"strconv"
	"time"

	"github.com/joho/godotenv"

	"triage-advisor/internal/core"
	"triage-advisor/internal/llm"
)

// Config is everything the triage server and CLI read from the environment.
type Config struct {
	APIKey        string
	BaseURL       string
	Model         string
	Timeout       time.Duration
	Port          string
	DatabaseURL   string
	NotifyChannel string
	LogLevel      string
	FrontendURL   string
}

// Load reads an optional .env file and then the process environment.  A
// missing NEBIUS_API_KEY is not an error here: evaluations report it to the
// user instead.
func Load(envFiles ...string) (*Config, error) {
	if len(envFiles) == 0 {
		envFiles = []string{".env"}
	}
	for _, f := range envFiles {
		// godotenv never overrides variables that are already set.
		if err := godotenv.Load(f); err != nil && !errors.Is(err, fs.ErrNotExist) {
			return nil, fmt.Errorf("loading %s: %w", f, err)
		}
	}

	timeout, err := durationEnv("TRIAGE_TIMEOUT", 60*time.Second)
	if err != nil {
		return nil, err
	}
	return &Config{
		APIKey:        os.Getenv("NEBIUS_API_KEY"),
		BaseURL:       Get("NEBIUS_BASE_URL", llm.DefaultBaseURL),
		Model:         Get("TRIAGE_MODEL", core.DefaultModel),
		Timeout:       timeout,
		Port:          Get("PORT", "8080"),
		DatabaseURL:   os.Getenv("DATABASE_URL"),
		NotifyChannel: Get("TRIAGE_NOTIFY_CHANNEL", "triage_alerts"),
		LogLevel:      Get("LOG_LEVEL", "info"),
		FrontendURL:   os.Getenv("FRONTEND_URL"),
	}, nil
}

// Settings returns the TriageService settings for this configuration.
func (c *Config) Settings() core.Settings {
	s := core.DefaultSettings(c.APIKey)
	s.Model = c.Model
	return s
}

// Get retrieves an environment variable with a fallback value.
func Get(key, fallback string) string {
	if value, ok := os.LookupEnv(key); ok && value != "" {
		return value
	}
	return fallback
}

func durationEnv(key string, fallback time.Duration) (time.Duration, error) {
	v := os.Getenv(key)
	if v == "" {
		return fallback, nil
	}
	if d, err := time.ParseDuration(v); err == nil {
		return d, nil
	}
	// plain integers are seconds
	secs, err := strconv.Atoi(v)
	if err != nil {
		return 0, fmt.Errorf("invalid %s %q: %w", key, v, err)
	}
	return time.Duration(secs) * time.Second, nil
}
