package config

import (
	"errors"
	"fmt"
	"io/fs"
	"os"
	"strconv"
	"strings"
	"time"

	"github.com/joho/godotenv"
)

const (
	BackendHuggingFace = "huggingface"
	BackendOpenAI      = "openai"
)

type Config struct {
	ProPublicaKey     string
	CongressKey       string
	ProPublicaBaseURL string
	CongressBaseURL   string
	HTTPTimeout       time.Duration

	SummarizerBackend string
	SummarizerTimeout time.Duration
	HFToken           string
	HFEndpoint        string
	OpenAIKey         string
	OpenAIBaseURL     string
	OpenAIModel       string

	TelegramToken string
	BindAddr      string

	LogLevel    string
	LogFilePath string
	Environment string
}

// Load reads an optional dotenv file and builds the config from the environment.
// Variables already present in the environment take precedence over the file.
func Load(path string) (Config, error) {
	if err := godotenv.Load(path); err != nil && !errors.Is(err, fs.ErrNotExist) {
		return Config{}, fmt.Errorf("read %s: %w", path, err)
	}

	cfg := Config{
		ProPublicaBaseURL: strings.TrimRight(getenvDefault("PROPUBLICA_BASE_URL", "https://api.propublica.org/congress/v1"), "/"),
		CongressBaseURL:   strings.TrimRight(getenvDefault("CONGRESS_BASE_URL", "https://api.congress.gov/v3"), "/"),
		HTTPTimeout:       time.Duration(getenvIntDefault("HTTP_TIMEOUT_SECONDS", 30)) * time.Second,
		SummarizerBackend: strings.ToLower(getenvDefault("SUMMARIZER_BACKEND", BackendHuggingFace)),
		SummarizerTimeout: time.Duration(getenvIntDefault("SUMMARIZER_TIMEOUT_SECONDS", 300)) * time.Second,
		HFEndpoint:        getenvDefault("HF_ENDPOINT", "https://api-inference.huggingface.co/models/nsi319/legal-led-base-16384"),
		OpenAIBaseURL:     os.Getenv("OPENAI_BASE_URL"),
		OpenAIModel:       getenvDefault("OPENAI_MODEL", "gpt-4o-mini"),
		BindAddr:          getenvDefault("API_BIND_ADDR", "0.0.0.0:8080"),
		LogLevel:          getenvDefault("LOG_LEVEL", "info"),
		LogFilePath:       os.Getenv("LOG_FILE_PATH"),
		Environment:       getenvDefault("APP_ENV", "development"),
	}

	cfg.ProPublicaKey = os.Getenv("PRO_PUBLICA_API_KEY")
	cfg.CongressKey = os.Getenv("CONGRESS_API_KEY")
	if cfg.ProPublicaKey == "" || cfg.CongressKey == "" {
		return cfg, errors.New("PRO_PUBLICA_API_KEY and CONGRESS_API_KEY are required")
	}

	cfg.HFToken = os.Getenv("HF_API_TOKEN")
	cfg.OpenAIKey = os.Getenv("OPENAI_API_KEY")
	cfg.TelegramToken = os.Getenv("TELEGRAM_BOT_TOKEN")

	switch cfg.SummarizerBackend {
	case BackendHuggingFace:
	case BackendOpenAI:
		if cfg.OpenAIKey == "" {
			return cfg, errors.New("OPENAI_API_KEY is required for the openai summarizer backend")
		}
	default:
		return cfg, fmt.Errorf("SUMMARIZER_BACKEND must be %q or %q, got %q", BackendHuggingFace, BackendOpenAI, cfg.SummarizerBackend)
	}

	if cfg.HTTPTimeout <= 0 {
		return cfg, errors.New("HTTP_TIMEOUT_SECONDS must be positive")
	}
	if cfg.SummarizerTimeout <= 0 {
		return cfg, errors.New("SUMMARIZER_TIMEOUT_SECONDS must be positive")
	}

	return cfg, nil
}

// ValidateBot checks the settings only the telegram binary needs.
func (c Config) ValidateBot() error {
	if c.TelegramToken == "" {
		return errors.New("TELEGRAM_BOT_TOKEN is required")
	}
	return nil
}

func (c Config) IsProduction() bool {
	return strings.EqualFold(c.Environment, "production")
}

func getenvDefault(key, def string) string {
	v := strings.TrimSpace(os.Getenv(key))
	if v == "" {
		return def
	}
	return v
}

func getenvIntDefault(key string, def int) int {
	v := strings.TrimSpace(os.Getenv(key))
	if v == "" {
		return def
	}
	n, err := strconv.Atoi(v)
	if err != nil {
		return def
	}
	return n
}
