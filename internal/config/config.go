package config

import (
	"fmt"
	"os"
	"strconv"
	"strings"
	"time"
)

// Config holds all configuration for the PostPilot server.
type Config struct {
	Server   ServerConfig
	Database DatabaseConfig
	Redis    RedisConfig
	Facebook FacebookConfig
	Gen      GenConfig
}

type ServerConfig struct {
	Port int
	Env  string
}

type DatabaseConfig struct {
	URL             string
	MaxOpenConns    int
	MaxIdleConns    int
	ConnMaxLifetime time.Duration
}

type RedisConfig struct {
	URL string
}

// FacebookConfig configures the Graph API adapter. MinScheduleLead is the
// minimum gap Facebook requires between "now" and a scheduled publish time.
type FacebookConfig struct {
	BaseURL         string
	GraphVersion    string
	Timeout         time.Duration
	MinScheduleLead time.Duration
}

// GenConfig configures the content-generation pipeline. VariantsPerTopic
// drafts are produced per extracted topic; MaxJobs caps a whole batch and
// MaxConcurrent bounds in-flight provider calls. Temperature for each job
// is TempBase plus a random value in [0, TempJitter).
type GenConfig struct {
	Provider         string
	RequestTimeout   time.Duration
	VariantsPerTopic int
	MaxJobs          int
	MaxConcurrent    int
	TempBase         float64
	TempJitter       float64
	CacheTTL         time.Duration
	Gemini           GeminiConfig
	OpenAI           OpenAIConfig
}

type GeminiConfig struct {
	BaseURL string
	APIKey  string
	Model   string
}

type OpenAIConfig struct {
	BaseURL string
	APIKey  string
	Model   string
}

var validProviders = map[string]bool{
	"gemini": true,
	"openai": true,
	"mock":   true,
}

// Load reads configuration from environment variables and returns a validated Config.
// Returns an error with a descriptive message if any required value is missing or invalid.
func Load() (*Config, error) {
	cfg := &Config{
		Server: ServerConfig{
			Port: envInt("POSTPILOT_PORT", 8080),
			Env:  envString("POSTPILOT_ENV", "development"),
		},
		Database: DatabaseConfig{
			URL:             os.Getenv("DATABASE_URL"),
			MaxOpenConns:    envInt("DATABASE_MAX_OPEN_CONNS", 25),
			MaxIdleConns:    envInt("DATABASE_MAX_IDLE_CONNS", 5),
			ConnMaxLifetime: envDuration("DATABASE_CONN_MAX_LIFETIME", 5*time.Minute),
		},
		Redis: RedisConfig{
			URL: os.Getenv("REDIS_URL"),
		},
		Facebook: FacebookConfig{
			BaseURL:         envString("FACEBOOK_GRAPH_BASE_URL", "https://graph.facebook.com"),
			GraphVersion:    envString("FACEBOOK_GRAPH_VERSION", "v21.0"),
			Timeout:         envDuration("FACEBOOK_TIMEOUT", 30*time.Second),
			MinScheduleLead: envDuration("FACEBOOK_MIN_SCHEDULE_LEAD", 10*time.Minute),
		},
		Gen: GenConfig{
			Provider:         os.Getenv("GEN_PROVIDER"),
			RequestTimeout:   envDuration("GEN_REQUEST_TIMEOUT", 45*time.Second),
			VariantsPerTopic: envInt("GEN_VARIANTS_PER_TOPIC", 2),
			MaxJobs:          envInt("GEN_MAX_JOBS", 30),
			MaxConcurrent:    envInt("GEN_MAX_CONCURRENT", 8),
			TempBase:         envFloat("GEN_TEMP_BASE", 0.7),
			TempJitter:       envFloat("GEN_TEMP_JITTER", 0.2),
			CacheTTL:         envDuration("GEN_CACHE_TTL", 10*time.Minute),
			Gemini: GeminiConfig{
				BaseURL: envString("GEMINI_BASE_URL", "https://generativelanguage.googleapis.com"),
				APIKey:  os.Getenv("GEMINI_API_KEY"),
				Model:   envString("GEMINI_MODEL", "gemini-2.5-flash"),
			},
			OpenAI: OpenAIConfig{
				BaseURL: envString("OPENAI_BASE_URL", "https://api.openai.com/v1"),
				APIKey:  os.Getenv("OPENAI_API_KEY"),
				Model:   envString("OPENAI_MODEL", "gpt-4o-mini"),
			},
		},
	}

	if err := cfg.validate(); err != nil {
		return nil, err
	}

	return cfg, nil
}

func (c *Config) validate() error {
	if c.Database.URL == "" {
		return fmt.Errorf("DATABASE_URL is required")
	}

	if c.Redis.URL == "" {
		return fmt.Errorf("REDIS_URL is required")
	}

	if !strings.HasPrefix(c.Facebook.BaseURL, "http://") && !strings.HasPrefix(c.Facebook.BaseURL, "https://") {
		return fmt.Errorf("FACEBOOK_GRAPH_BASE_URL must start with http:// or https://, got %q", c.Facebook.BaseURL)
	}

	if c.Gen.Provider == "" {
		return fmt.Errorf("GEN_PROVIDER is required")
	}
	if !validProviders[c.Gen.Provider] {
		return fmt.Errorf("GEN_PROVIDER must be one of gemini, openai, mock; got %q", c.Gen.Provider)
	}

	if c.Gen.Provider == "gemini" && c.Gen.Gemini.APIKey == "" {
		return fmt.Errorf("GEMINI_API_KEY is required when GEN_PROVIDER is gemini")
	}
	if c.Gen.Provider == "openai" && c.Gen.OpenAI.APIKey == "" {
		return fmt.Errorf("OPENAI_API_KEY is required when GEN_PROVIDER is openai")
	}

	if c.Gen.VariantsPerTopic < 1 {
		return fmt.Errorf("GEN_VARIANTS_PER_TOPIC must be at least 1, got %d", c.Gen.VariantsPerTopic)
	}
	if c.Gen.MaxConcurrent < 1 {
		return fmt.Errorf("GEN_MAX_CONCURRENT must be at least 1, got %d", c.Gen.MaxConcurrent)
	}
	if c.Gen.MaxJobs < c.Gen.VariantsPerTopic {
		return fmt.Errorf("GEN_MAX_JOBS (%d) must allow at least one topic at %d variants",
			c.Gen.MaxJobs, c.Gen.VariantsPerTopic)
	}

	return nil
}

func envString(key, defaultVal string) string {
	if v := os.Getenv(key); v != "" {
		return v
	}
	return defaultVal
}

func envInt(key string, defaultVal int) int {
	v := os.Getenv(key)
	if v == "" {
		return defaultVal
	}
	i, err := strconv.Atoi(v)
	if err != nil {
		return defaultVal
	}
	return i
}

func envFloat(key string, defaultVal float64) float64 {
	v := os.Getenv(key)
	if v == "" {
		return defaultVal
	}
	f, err := strconv.ParseFloat(v, 64)
	if err != nil {
		return defaultVal
	}
	return f
}

func envDuration(key string, defaultVal time.Duration) time.Duration {
	v := os.Getenv(key)
	if v == "" {
		return defaultVal
	}
	d, err := time.ParseDuration(v)
	if err != nil {
		return defaultVal
	}
	return d
}
