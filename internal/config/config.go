// Package config loads service settings from an optional YAML file, a .env
// file and the process environment, in increasing order of precedence.
package config

import (
	"errors"
	"fmt"
	"os"
	"strconv"
	"strings"
	"time"

	"github.com/joho/godotenv"
	"gopkg.in/yaml.v3"

	"github.com/custodia-labs/lectern/internal/core/domain"
)

// ConfigPathEnv names the variable that points at a YAML config file
const ConfigPathEnv = "LECTERN_CONFIG"

// Mode selects which components a process runs
type Mode string

const (
	ModeServe  Mode = "serve"
	ModeWorker Mode = "worker"
	ModeAll    Mode = "all"
	ModeCLI    Mode = "cli" // one-shot commands without storage
)

// Config is the full service configuration
type Config struct {
	Server   ServerConfig   `yaml:"server"`
	Database DatabaseConfig `yaml:"database"`
	Redis    RedisConfig    `yaml:"redis"`
	Cache    CacheConfig    `yaml:"cache"`
	AI       AIConfig       `yaml:"ai"`
	Catalogs CatalogsConfig `yaml:"catalogs"`
	Summary  SummaryConfig  `yaml:"summary"`
	Admin    AdminConfig    `yaml:"admin"`
	Worker   WorkerConfig   `yaml:"worker"`
}

type ServerConfig struct {
	Port           int      `yaml:"port"`
	Environment    string   `yaml:"environment"`
	LogLevel       string   `yaml:"log_level"`
	AllowedOrigins []string `yaml:"allowed_origins"`
	RateLimitRPS   float64  `yaml:"rate_limit_rps"`
	RateLimitBurst int      `yaml:"rate_limit_burst"`
}

type DatabaseConfig struct {
	URL      string `yaml:"url"`
	PoolSize int    `yaml:"pool_size"`
}

type RedisConfig struct {
	URL string `yaml:"url"`
}

type CacheConfig struct {
	TTLSeconds  int `yaml:"ttl_seconds"`
	MaxCapacity int `yaml:"max_capacity"`
}

type AIConfig struct {
	Provider           domain.AIProvider `yaml:"provider"`
	Model              string            `yaml:"model"`
	SummaryModel       string            `yaml:"summary_model"`
	HuggingFaceAPIKey  string            `yaml:"huggingface_api_key"`
	HuggingFaceBaseURL string            `yaml:"huggingface_base_url"`
	OpenAIAPIKey       string            `yaml:"openai_api_key"`
	OpenAIBaseURL      string            `yaml:"openai_base_url"`
	AnthropicAPIKey    string            `yaml:"anthropic_api_key"`
	OllamaHost         string            `yaml:"ollama_host"`
	GeminiAPIKey       string            `yaml:"gemini_api_key"`
}

type CatalogsConfig struct {
	GoogleBooksAPIKey    string  `yaml:"google_books_api_key"`
	GoogleBooksBaseURL   string  `yaml:"google_books_base_url"`
	OpenLibraryBaseURL   string  `yaml:"open_library_base_url"`
	GutenbergBaseURL     string  `yaml:"gutenberg_base_url"`
	RateLimit            float64 `yaml:"rate_limit"`
	SourceTimeoutSeconds int     `yaml:"source_timeout_seconds"`
}

type SummaryConfig struct {
	SupportedLanguages    []string `yaml:"supported_languages"`
	BackendTimeoutSeconds int      `yaml:"backend_timeout_seconds"`
}

type AdminConfig struct {
	KeyHash   string `yaml:"key_hash"`
	JWTSecret string `yaml:"jwt_secret"`
}

type WorkerConfig struct {
	Concurrency int `yaml:"concurrency"`
}

// Default returns the configuration used when nothing is set
func Default() *Config {
	return &Config{
		Server: ServerConfig{
			Port:           10000,
			Environment:    "development",
			LogLevel:       "info",
			AllowedOrigins: []string{"http://localhost:5173", "http://localhost:3000"},
			RateLimitRPS:   10,
			RateLimitBurst: 20,
		},
		Database: DatabaseConfig{PoolSize: 5},
		Cache:    CacheConfig{TTLSeconds: 3600, MaxCapacity: 1000},
		AI: AIConfig{
			Provider:           domain.AIProviderHuggingFace,
			HuggingFaceBaseURL: "https://api-inference.huggingface.co",
		},
		Catalogs: CatalogsConfig{
			GutenbergBaseURL:     "https://gutendex.com",
			RateLimit:            5,
			SourceTimeoutSeconds: 10,
		},
		Summary: SummaryConfig{
			SupportedLanguages:    []string{"en"},
			BackendTimeoutSeconds: 90,
		},
		Worker: WorkerConfig{Concurrency: 2},
	}
}

// Load builds the configuration. path may be empty, in which case
// LECTERN_CONFIG is consulted. A missing .env file is ignored.
func Load(path string) (*Config, error) {
	cfg := Default()

	if path == "" {
		path = os.Getenv(ConfigPathEnv)
	}
	if path != "" {
		data, err := os.ReadFile(path)
		if err != nil {
			return nil, fmt.Errorf("read config file: %w", err)
		}
		if err := yaml.Unmarshal(data, cfg); err != nil {
			return nil, fmt.Errorf("parse config file %s: %w", path, err)
		}
	}

	// Does not override variables already set
	_ = godotenv.Load()

	if err := cfg.applyEnv(); err != nil {
		return nil, err
	}
	return cfg, nil
}

func (c *Config) applyEnv() error {
	var errs []error
	setInt := func(key string, dst *int) {
		if v, ok := lookup(key); ok {
			n, err := strconv.Atoi(v)
			if err != nil {
				errs = append(errs, fmt.Errorf("%s: %q is not an integer", key, v))
				return
			}
			*dst = n
		}
	}
	setFloat := func(key string, dst *float64) {
		if v, ok := lookup(key); ok {
			f, err := strconv.ParseFloat(v, 64)
			if err != nil {
				errs = append(errs, fmt.Errorf("%s: %q is not a number", key, v))
				return
			}
			*dst = f
		}
	}

	setInt("PORT", &c.Server.Port)
	setString("ENVIRONMENT", &c.Server.Environment)
	setString("LOG_LEVEL", &c.Server.LogLevel)
	setList("ALLOWED_ORIGINS", &c.Server.AllowedOrigins)
	setFloat("RATE_LIMIT_RPS", &c.Server.RateLimitRPS)
	setInt("RATE_LIMIT_BURST", &c.Server.RateLimitBurst)

	setString("DATABASE_URL", &c.Database.URL)
	setString("APP_SUPABASE_URL", &c.Database.URL)
	setInt("DATABASE_POOL_SIZE", &c.Database.PoolSize)

	setString("REDIS_URL", &c.Redis.URL)

	setInt("CACHE_TTL_SECONDS", &c.Cache.TTLSeconds)
	setInt("CACHE_MAX_CAPACITY", &c.Cache.MaxCapacity)

	if v, ok := lookup("AI_PROVIDER"); ok {
		c.AI.Provider = domain.AIProvider(strings.ToLower(v))
	}
	setString("AI_MODEL", &c.AI.Model)
	setString("AI_SUMMARY_MODEL", &c.AI.SummaryModel)
	setString("APP_HUGGINGFACE_API_KEY", &c.AI.HuggingFaceAPIKey)
	setString("APP_HUGGINGFACE_API_BASE_URL", &c.AI.HuggingFaceBaseURL)
	setString("OPENAI_API_KEY", &c.AI.OpenAIAPIKey)
	setString("OPENAI_BASE_URL", &c.AI.OpenAIBaseURL)
	setString("ANTHROPIC_API_KEY", &c.AI.AnthropicAPIKey)
	setString("OLLAMA_HOST", &c.AI.OllamaHost)
	setString("GEMINI_API_KEY", &c.AI.GeminiAPIKey)

	setString("GOOGLE_BOOKS_API_KEY", &c.Catalogs.GoogleBooksAPIKey)
	setString("GOOGLE_BOOKS_API_BASE_URL", &c.Catalogs.GoogleBooksBaseURL)
	setString("OPEN_LIBRARY_API_BASE_URL", &c.Catalogs.OpenLibraryBaseURL)
	setString("GUTENBERG_API_BASE_URL", &c.Catalogs.GutenbergBaseURL)
	setFloat("CATALOG_RATE_LIMIT", &c.Catalogs.RateLimit)
	setInt("SOURCE_TIMEOUT_SECONDS", &c.Catalogs.SourceTimeoutSeconds)

	setList("SUPPORTED_LANGUAGES", &c.Summary.SupportedLanguages)
	setInt("BACKEND_TIMEOUT_SECONDS", &c.Summary.BackendTimeoutSeconds)

	setString("ADMIN_KEY_HASH", &c.Admin.KeyHash)
	setString("JWT_SECRET", &c.Admin.JWTSecret)

	setInt("WORKER_CONCURRENCY", &c.Worker.Concurrency)

	return errors.Join(errs...)
}

// Validate reports every missing or malformed value needed by mode
func (c *Config) Validate(mode Mode) error {
	var errs []error

	if c.Server.Port <= 0 || c.Server.Port > 65535 {
		errs = append(errs, fmt.Errorf("PORT: %d is out of range", c.Server.Port))
	}
	if len(c.Summary.SupportedLanguages) == 0 {
		errs = append(errs, errors.New("SUPPORTED_LANGUAGES: at least one language is required"))
	}
	if !c.AI.Provider.IsValid() {
		errs = append(errs, fmt.Errorf("AI_PROVIDER: unknown provider %q", c.AI.Provider))
	}

	switch mode {
	case ModeServe, ModeWorker, ModeAll:
		if c.Database.URL == "" {
			errs = append(errs, errors.New("DATABASE_URL: required"))
		}
		if c.Worker.Concurrency <= 0 && mode != ModeServe {
			errs = append(errs, errors.New("WORKER_CONCURRENCY: must be positive"))
		}
	}

	if mode == ModeServe || mode == ModeAll {
		if c.Admin.KeyHash != "" && c.Admin.JWTSecret == "" {
			errs = append(errs, errors.New("JWT_SECRET: required when ADMIN_KEY_HASH is set"))
		}
	}

	if len(errs) > 0 {
		return fmt.Errorf("%w: %w", domain.ErrInvalidInput, errors.Join(errs...))
	}
	return nil
}

// IsProduction reports whether ENVIRONMENT is production
func (c *Config) IsProduction() bool {
	return strings.EqualFold(c.Server.Environment, "production")
}

// CacheTTL is the response cache lifetime
func (c *Config) CacheTTL() time.Duration {
	return time.Duration(c.Cache.TTLSeconds) * time.Second
}

// SourceTimeout bounds each catalog call
func (c *Config) SourceTimeout() time.Duration {
	return time.Duration(c.Catalogs.SourceTimeoutSeconds) * time.Second
}

// BackendTimeout bounds each summarization call
func (c *Config) BackendTimeout() time.Duration {
	return time.Duration(c.Summary.BackendTimeoutSeconds) * time.Second
}

// BackendSettings returns the settings for the configured provider,
// picking the API key and base URL that belong to it.
func (c *Config) BackendSettings() domain.BackendSettings {
	s := domain.BackendSettings{
		Provider:     c.AI.Provider,
		Model:        c.AI.Model,
		SummaryModel: c.AI.SummaryModel,
	}
	switch c.AI.Provider {
	case domain.AIProviderHuggingFace:
		s.APIKey = c.AI.HuggingFaceAPIKey
		s.BaseURL = c.AI.HuggingFaceBaseURL
	case domain.AIProviderOpenAI:
		s.APIKey = c.AI.OpenAIAPIKey
		s.BaseURL = c.AI.OpenAIBaseURL
	case domain.AIProviderAnthropic:
		s.APIKey = c.AI.AnthropicAPIKey
	case domain.AIProviderOllama:
		s.BaseURL = c.AI.OllamaHost
	case domain.AIProviderGemini:
		s.APIKey = c.AI.GeminiAPIKey
	}
	return s
}

func lookup(key string) (string, bool) {
	v, ok := os.LookupEnv(key)
	v = strings.TrimSpace(v)
	return v, ok && v != ""
}

func setString(key string, dst *string) {
	if v, ok := lookup(key); ok {
		*dst = v
	}
}

func setList(key string, dst *[]string) {
	v, ok := lookup(key)
	if !ok {
		return
	}
	var out []string
	for _, part := range strings.Split(v, ",") {
		if part = strings.TrimSpace(part); part != "" {
			out = append(out, part)
		}
	}
	*dst = out
}
