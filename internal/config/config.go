package config

import (
	"errors"
	"fmt"
	"io/fs"
	"log/slog"
	"strings"
	"time"

	"github.com/caarlos0/env/v11"
	"github.com/joho/godotenv"
)

const (
	ProviderOpenAI = "openai"
	ProviderOllama = "ollama"

	TokenFieldMaxCompletionTokens = "max_completion_tokens"
	TokenFieldMaxTokens           = "max_tokens"

	CleanModeText    = "text"
	CleanModeArticle = "article"

	maxTemperature = 2
)

type Config struct {
	Scrape ScrapeConfig
	LLM    LLMConfig

	Telegram TelegramConfig

	// BrowserAuth is loaded for parity with the Web Unlocker environment but nothing reads it.
	BrowserAuth string `env:"BROWSER_AUTH"`

	TargetURL    string     `env:"TARGET_URL"      envDefault:"https://news.google.com/search?q=artificial%20intelligence&hl=en-US&gl=US&ceid=US%3Aen"`
	CleanMode    string     `env:"CLEAN_MODE"      envDefault:"text"`
	PreviewChars int        `env:"PREVIEW_CHARS"   envDefault:"1000"`
	LogLevel     slog.Level `env:"LOG_LEVEL"       envDefault:"info"`
	Spinner      bool       `env:"CONSOLE_SPINNER" envDefault:"true"`
}

type ScrapeConfig struct {
	Token    string        `env:"API_TOKEN,required,notEmpty"`
	Zone     string        `env:"WEB_UNLOCKER_ZONE" envDefault:"mcp_unlocker"`
	Endpoint string        `env:"SCRAPE_ENDPOINT"   envDefault:"https://api.brightdata.com/request"`
	Timeout  time.Duration `env:"SCRAPE_TIMEOUT"    envDefault:"60s"`
}

type LLMConfig struct {
	Provider     string        `env:"LLM_PROVIDER"    envDefault:"openai"`
	OpenAIAPIKey string        `env:"OPENAI_API_KEY"`
	BaseURL      string        `env:"OPENAI_BASE_URL"`
	OllamaURL    string        `env:"OLLAMA_BASE_URL" envDefault:"http://localhost:11434"`
	Model        string        `env:"LLM_MODEL"       envDefault:"gpt-4o"`
	Temperature  float64       `env:"LLM_TEMPERATURE" envDefault:"0.4"`
	MaxTokens    int64         `env:"LLM_MAX_TOKENS"  envDefault:"800"`
	Timeout      time.Duration `env:"LLM_TIMEOUT"     envDefault:"120s"`

	// TokenField names the token limit parameter sent to OpenAI-compatible servers.
	TokenField string `env:"OPENAI_MAX_TOKENS_FIELD" envDefault:"max_completion_tokens"`
}

type TelegramConfig struct {
	Token     string `env:"TELEGRAM_TOKEN"`
	ChatID    int64  `env:"TELEGRAM_CHAT_ID"`
	ServerURL string `env:"TELEGRAM_SERVER_URL"`
}

// Enabled reports whether the summary should also be delivered to Telegram.
func (t TelegramConfig) Enabled() bool {
	return strings.TrimSpace(t.Token) != "" && t.ChatID != 0
}

// Load reads the optional dotenv files and then the process environment.
// Variables already present in the environment win over dotenv values.
func Load(dotenvFiles ...string) (Config, error) {
	for _, path := range dotenvFiles {
		if err := godotenv.Load(path); err != nil && !errors.Is(err, fs.ErrNotExist) {
			return Config{}, fmt.Errorf("load dotenv file (path = %s): %w", path, err)
		}
	}

	cfg, err := env.ParseAs[Config]()
	if err != nil {
		return Config{}, fmt.Errorf("parse env: %w", err)
	}

	cfg.normalize()

	if err = cfg.Validate(); err != nil {
		return Config{}, fmt.Errorf("validate: %w", err)
	}

	return cfg, nil
}

func (c *Config) normalize() {
	c.Scrape.Token = strings.TrimSpace(c.Scrape.Token)
	c.Scrape.Zone = strings.TrimSpace(c.Scrape.Zone)
	c.LLM.Provider = strings.ToLower(strings.TrimSpace(c.LLM.Provider))
	c.LLM.OpenAIAPIKey = strings.TrimSpace(c.LLM.OpenAIAPIKey)
	c.LLM.TokenField = strings.ToLower(strings.TrimSpace(c.LLM.TokenField))
	c.CleanMode = strings.ToLower(strings.TrimSpace(c.CleanMode))
	c.TargetURL = strings.TrimSpace(c.TargetURL)
	c.Telegram.Token = strings.TrimSpace(c.Telegram.Token)
}

func (c Config) Validate() error {
	var errs []error

	if c.Scrape.Token == "" {
		errs = append(errs, errors.New("API_TOKEN is empty"))
	}
	if c.Scrape.Zone == "" {
		errs = append(errs, errors.New("WEB_UNLOCKER_ZONE is empty"))
	}
	if c.Scrape.Timeout <= 0 {
		errs = append(errs, fmt.Errorf("SCRAPE_TIMEOUT must be positive (got %s)", c.Scrape.Timeout))
	}

	switch c.LLM.Provider {
	case ProviderOpenAI:
		if c.LLM.OpenAIAPIKey == "" {
			errs = append(errs, errors.New("OPENAI_API_KEY is required for the openai provider"))
		}
		switch c.LLM.TokenField {
		case TokenFieldMaxCompletionTokens, TokenFieldMaxTokens:
		default:
			errs = append(errs, fmt.Errorf("OPENAI_MAX_TOKENS_FIELD must be %q or %q (got %q)",
				TokenFieldMaxCompletionTokens, TokenFieldMaxTokens, c.LLM.TokenField))
		}
	case ProviderOllama:
	default:
		errs = append(errs, fmt.Errorf("LLM_PROVIDER must be %q or %q (got %q)",
			ProviderOpenAI, ProviderOllama, c.LLM.Provider))
	}

	if strings.TrimSpace(c.LLM.Model) == "" {
		errs = append(errs, errors.New("LLM_MODEL is empty"))
	}
	if c.LLM.Temperature < 0 || c.LLM.Temperature > maxTemperature {
		errs = append(errs, fmt.Errorf("LLM_TEMPERATURE must be within [0, %d] (got %g)",
			maxTemperature, c.LLM.Temperature))
	}
	if c.LLM.MaxTokens <= 0 {
		errs = append(errs, fmt.Errorf("LLM_MAX_TOKENS must be positive (got %d)", c.LLM.MaxTokens))
	}
	if c.LLM.Timeout <= 0 {
		errs = append(errs, fmt.Errorf("LLM_TIMEOUT must be positive (got %s)", c.LLM.Timeout))
	}

	switch c.CleanMode {
	case CleanModeText, CleanModeArticle:
	default:
		errs = append(errs, fmt.Errorf("CLEAN_MODE must be %q or %q (got %q)",
			CleanModeText, CleanModeArticle, c.CleanMode))
	}

	if c.PreviewChars <= 0 {
		errs = append(errs, fmt.Errorf("PREVIEW_CHARS must be positive (got %d)", c.PreviewChars))
	}

	if (c.Telegram.Token == "") != (c.Telegram.ChatID == 0) {
		errs = append(errs, errors.New("TELEGRAM_TOKEN and TELEGRAM_CHAT_ID must be set together"))
	}

	return errors.Join(errs...)
}
