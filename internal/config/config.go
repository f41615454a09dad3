package config

import (
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/caarlos0/env/v11"
)

const (
	ProviderGemini = "gemini"
	ProviderOpenAI = "openai"
)

var ErrMissingAPIKey = errors.New("LLM API key is missing")

type Config struct {
	Addr            string        `env:"ADDR"              envDefault:":8080"`
	Provider        string        `env:"LLM_PROVIDER"      envDefault:"gemini"`
	GeminiAPIKey    string        `env:"GEMINI_API_KEY"`
	GeminiModel     string        `env:"GEMINI_MODEL"      envDefault:"gemini-2.0-flash"`
	OpenAIAPIKey    string        `env:"OPENAI_API_KEY"`
	OpenAIModel     string        `env:"OPENAI_MODEL"      envDefault:"gpt-4.1-mini"`
	TelegramToken   string        `env:"TELEGRAM_TOKEN"`
	SourcesPath     string        `env:"SOURCES_PATH"`
	FetchTimeout    time.Duration `env:"FETCH_TIMEOUT"     envDefault:"20s"`
	LLMTimeout      time.Duration `env:"LLM_TIMEOUT"       envDefault:"90s"`
	CacheSize       int           `env:"CACHE_SIZE"        envDefault:"10"`
	DefaultMinWords int           `env:"MIN_WORDS_DEFAULT" envDefault:"70"`
	DefaultMaxWords int           `env:"MAX_WORDS_DEFAULT" envDefault:"150"`
}

func Load() (Config, error) {
	var cfg Config
	if err := env.Parse(&cfg); err != nil {
		return Config{}, fmt.Errorf("parse env: %w", err)
	}

	cfg.Provider = strings.ToLower(strings.TrimSpace(cfg.Provider))

	switch cfg.Provider {
	case ProviderGemini, ProviderOpenAI:
	default:
		return Config{}, fmt.Errorf("unknown LLM_PROVIDER %q", cfg.Provider)
	}

	if cfg.FetchTimeout <= 0 || cfg.LLMTimeout <= 0 {
		return Config{}, fmt.Errorf(
			"timeouts must be positive (FETCH_TIMEOUT = %s, LLM_TIMEOUT = %s)",
			cfg.FetchTimeout,
			cfg.LLMTimeout,
		)
	}

	return cfg, nil
}

// CheckProviderKey reports whether the selected provider has a
// credential. A missing key does not stop the process: the UI is still
// served and every action surfaces the configuration error.
func (c Config) CheckProviderKey() error {
	if c.APIKey() == "" {
		return fmt.Errorf("%w (provider = %s)", ErrMissingAPIKey, c.Provider)
	}

	return nil
}

// APIKey returns the credential for the configured provider, which may be
// empty when the corresponding env var is not set.
func (c Config) APIKey() string {
	switch c.Provider {
	case ProviderOpenAI:
		return strings.TrimSpace(c.OpenAIAPIKey)
	default:
		return strings.TrimSpace(c.GeminiAPIKey)
	}
}
