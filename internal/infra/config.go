package infra

import (
	"fmt"
	"net/url"
	"strings"
	"time"

	"github.com/caarlos0/env/v11"
)

// Config represents application configuration loaded from environment variables.
type Config struct {
	AppEnv      string `env:"APP_ENV" envDefault:"development"`
	Port        string `env:"PORT" envDefault:"8080"`
	DatabaseURL string `env:"DATABASE_URL,required,notEmpty"`
	SiteBaseURL string `env:"SITE_BASE_URL" envDefault:"https://regional.singleboersen-aktuell.de"`

	CacheTTLMonths     int  `env:"CACHE_TTL_MONTHS" envDefault:"6"`
	CacheMemoryEnabled bool `env:"CACHE_MEMORY_ENABLED" envDefault:"true"`

	ContentProvider string `env:"CONTENT_PROVIDER" envDefault:"openai"`
	OpenAIAPIKey    string `env:"OPENAI_API_KEY"`
	OpenAIModel     string `env:"OPENAI_MODEL" envDefault:"gpt-4o-mini"`
	OpenAIBaseURL   string `env:"OPENAI_BASE_URL" envDefault:"https://api.openai.com/v1"`
	OpenAIOrg       string `env:"OPENAI_ORG"`
	OpenAITimeout   int    `env:"OPENAI_TIMEOUT_SECONDS" envDefault:"60"`
	GeminiAPIKey    string `env:"GEMINI_API_KEY"`
	GeminiModel     string `env:"GEMINI_MODEL" envDefault:"gemini-1.5-flash"`
	GeminiBaseURL   string `env:"GEMINI_BASE_URL" envDefault:"https://generativelanguage.googleapis.com/v1beta"`

	PixabayAPIKey  string `env:"PIXABAY_API_KEY"`
	PixabayBaseURL string `env:"PIXABAY_BASE_URL" envDefault:"https://pixabay.com/api/"`
	PixabayTimeout int    `env:"PIXABAY_TIMEOUT_SECONDS" envDefault:"15"`

	StoragePath    string `env:"STORAGE_PATH"`
	StorageBaseURL string `env:"STORAGE_BASE_URL"`

	CORSAllowedOrigins []string `env:"CORS_ALLOWED_ORIGINS" envSeparator:"," envDefault:"*"`

	HTTPReadTimeout  time.Duration `env:"-"`
	HTTPWriteTimeout time.Duration `env:"-"`
	HTTPIdleTimeout  time.Duration `env:"-"`
	ReadSeconds      int           `env:"HTTP_READ_TIMEOUT_SECONDS" envDefault:"15"`
	WriteSeconds     int           `env:"HTTP_WRITE_TIMEOUT_SECONDS" envDefault:"180"`
	IdleSeconds      int           `env:"HTTP_IDLE_TIMEOUT_SECONDS" envDefault:"60"`
	RateLimitPerMin  int           `env:"RATE_LIMIT_PER_MINUTE" envDefault:"30"`
	DBMaxConns       int32         `env:"DB_MAX_CONNS" envDefault:"10"`
}

// LoadConfig loads configuration from environment variables and applies defaults where needed.
func LoadConfig() (*Config, error) {
	cfg := &Config{}
	if err := env.Parse(cfg); err != nil {
		return nil, fmt.Errorf("parse env: %w", err)
	}

	cfg.AppEnv = strings.ToLower(strings.TrimSpace(cfg.AppEnv))
	cfg.SiteBaseURL = strings.TrimRight(strings.TrimSpace(cfg.SiteBaseURL), "/")
	cfg.ContentProvider = strings.ToLower(strings.TrimSpace(cfg.ContentProvider))
	cfg.HTTPReadTimeout = time.Duration(cfg.ReadSeconds) * time.Second
	cfg.HTTPWriteTimeout = time.Duration(cfg.WriteSeconds) * time.Second
	cfg.HTTPIdleTimeout = time.Duration(cfg.IdleSeconds) * time.Second

	if cfg.CacheTTLMonths <= 0 {
		return nil, fmt.Errorf("CACHE_TTL_MONTHS must be positive")
	}
	switch cfg.ContentProvider {
	case "openai", "gemini":
	default:
		return nil, fmt.Errorf("unsupported CONTENT_PROVIDER %q", cfg.ContentProvider)
	}
	if strings.TrimSpace(cfg.StorageBaseURL) == "" {
		cfg.StorageBaseURL = fmt.Sprintf("http://localhost:%s/static", cfg.Port)
	}
	cfg.StorageBaseURL = strings.TrimRight(cfg.StorageBaseURL, "/")
	if _, err := url.Parse(cfg.StorageBaseURL); err != nil {
		return nil, fmt.Errorf("invalid STORAGE_BASE_URL: %w", err)
	}

	origins := cfg.CORSAllowedOrigins[:0]
	for _, origin := range cfg.CORSAllowedOrigins {
		if origin = strings.TrimSpace(origin); origin != "" {
			origins = append(origins, origin)
		}
	}
	cfg.CORSAllowedOrigins = origins

	return cfg, nil
}

// IsProduction reports whether diagnostics must be stripped from responses.
func (c *Config) IsProduction() bool {
	return c != nil && c.AppEnv == "production"
}

// OpenAIHTTPTimeout returns the outbound timeout for text-generation calls.
func (c *Config) OpenAIHTTPTimeout() time.Duration {
	return time.Duration(c.OpenAITimeout) * time.Second
}

// PixabayHTTPTimeout returns the outbound timeout for image search calls.
func (c *Config) PixabayHTTPTimeout() time.Duration {
	return time.Duration(c.PixabayTimeout) * time.Second
}
