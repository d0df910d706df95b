// Package config provides configuration management for the agent.
package config

import (
	"errors"
	"fmt"
	"os"
	"time"

	"gopkg.in/yaml.v3"
)

// Environment variable names.
const (
	EnvLLMProvider        = "LLM_PROVIDER"
	EnvOllamaURL          = "OLLAMA_URL"
	EnvOllamaModel        = "OLLAMA_MODEL"
	EnvGeminiAPIKey       = "GEMINI_API_KEY"
	EnvGeminiModel        = "GEMINI_MODEL"
	EnvGoogleProject      = "GOOGLE_CLOUD_PROJECT"
	EnvGoogleLocation     = "GOOGLE_CLOUD_LOCATION"
	EnvWeatherAPIKey      = "WEATHER_API_KEY"
	EnvWeatherURL         = "WEATHER_API_URL"
	EnvExchangeRateAPIKey = "EXCHANGE_RATE_API_KEY"
	EnvExchangeRateURL    = "EXCHANGE_RATE_API_URL"
	EnvKnowledgeBasePath  = "KNOWLEDGE_BASE_PATH"
	EnvHTTPTimeout        = "HTTP_TIMEOUT"
	EnvLLMTimeout         = "LLM_TIMEOUT"
	EnvTelegramToken      = "TELEGRAM_BOT_TOKEN"
)

// Supported LLM back-ends.
const (
	ProviderOllama = "ollama"
	ProviderGemini = "gemini"
)

// Config holds all application configuration.
type Config struct {
	LLMProvider        string        `yaml:"llm_provider"`
	OllamaURL          string        `yaml:"ollama_url"`
	OllamaModel        string        `yaml:"ollama_model"`
	GeminiAPIKey       string        `yaml:"gemini_api_key"`
	GeminiModel        string        `yaml:"gemini_model"`
	GoogleProject      string        `yaml:"google_cloud_project"`
	GoogleLocation     string        `yaml:"google_cloud_location"`
	WeatherAPIKey      string        `yaml:"weather_api_key"`
	WeatherURL         string        `yaml:"weather_api_url"`
	ExchangeRateAPIKey string        `yaml:"exchange_rate_api_key"`
	ExchangeRateURL    string        `yaml:"exchange_rate_api_url"`
	KnowledgeBasePath  string        `yaml:"knowledge_base_path"`
	HTTPTimeout        time.Duration `yaml:"http_timeout"`
	LLMTimeout         time.Duration `yaml:"llm_timeout"`
	TelegramToken      string        `yaml:"telegram_bot_token"`
}

// MissingError reports a required setting that was not provided.
type MissingError struct {
	Name string
}

func (e *MissingError) Error() string {
	return fmt.Sprintf("configuration error: %s is required", e.Name)
}

// Default returns the baseline configuration.
func Default() *Config {
	return &Config{
		LLMProvider:       ProviderOllama,
		OllamaURL:         "http://localhost:11434/api/chat",
		OllamaModel:       "qwen3-coder:30b",
		GeminiModel:       "gemini-2.5-flash",
		GoogleLocation:    "us-central1",
		WeatherURL:        "http://api.weatherapi.com/v1",
		ExchangeRateURL:   "https://api.exchangerate-api.com/v4/latest",
		KnowledgeBasePath: "data-source/knowledge_base.json",
		HTTPTimeout:       15 * time.Second,
		LLMTimeout:        120 * time.Second,
	}
}

// Load builds the configuration from defaults, then the optional YAML file at
// path, then environment variables. An empty path skips the file.
func Load(path string) (*Config, error) {
	cfg := Default()
	if path != "" {
		data, err := os.ReadFile(path)
		if err != nil {
			return nil, fmt.Errorf("reading config file: %w", err)
		}
		if err := yaml.Unmarshal(data, cfg); err != nil {
			return nil, fmt.Errorf("parsing config file %s: %w", path, err)
		}
	}
	if err := cfg.applyEnv(); err != nil {
		return nil, err
	}
	return cfg, nil
}

func (c *Config) applyEnv() error {
	c.LLMProvider = getEnvOrDefault(EnvLLMProvider, c.LLMProvider)
	c.OllamaURL = getEnvOrDefault(EnvOllamaURL, c.OllamaURL)
	c.OllamaModel = getEnvOrDefault(EnvOllamaModel, c.OllamaModel)
	c.GeminiAPIKey = getEnvOrDefault(EnvGeminiAPIKey, c.GeminiAPIKey)
	c.GeminiModel = getEnvOrDefault(EnvGeminiModel, c.GeminiModel)
	c.GoogleProject = getEnvOrDefault(EnvGoogleProject, c.GoogleProject)
	c.GoogleLocation = getEnvOrDefault(EnvGoogleLocation, c.GoogleLocation)
	c.WeatherAPIKey = getEnvOrDefault(EnvWeatherAPIKey, c.WeatherAPIKey)
	c.WeatherURL = getEnvOrDefault(EnvWeatherURL, c.WeatherURL)
	c.ExchangeRateAPIKey = getEnvOrDefault(EnvExchangeRateAPIKey, c.ExchangeRateAPIKey)
	c.ExchangeRateURL = getEnvOrDefault(EnvExchangeRateURL, c.ExchangeRateURL)
	c.KnowledgeBasePath = getEnvOrDefault(EnvKnowledgeBasePath, c.KnowledgeBasePath)
	c.TelegramToken = getEnvOrDefault(EnvTelegramToken, c.TelegramToken)

	var err error
	if c.HTTPTimeout, err = getDurationOrDefault(EnvHTTPTimeout, c.HTTPTimeout); err != nil {
		return err
	}
	if c.LLMTimeout, err = getDurationOrDefault(EnvLLMTimeout, c.LLMTimeout); err != nil {
		return err
	}
	return nil
}

// Validate checks that the credentials required by the tool adapters are set.
// Every missing setting is reported, each as a *MissingError.
func (c *Config) Validate() error {
	var errs []error
	if c.WeatherAPIKey == "" {
		errs = append(errs, &MissingError{Name: EnvWeatherAPIKey})
	}
	if c.ExchangeRateAPIKey == "" {
		errs = append(errs, &MissingError{Name: EnvExchangeRateAPIKey})
	}
	switch c.LLMProvider {
	case ProviderOllama, ProviderGemini:
	default:
		errs = append(errs, fmt.Errorf("configuration error: unknown %s %q", EnvLLMProvider, c.LLMProvider))
	}
	return errors.Join(errs...)
}

func getEnvOrDefault(key, defaultValue string) string {
	if value := os.Getenv(key); value != "" {
		return value
	}
	return defaultValue
}

func getDurationOrDefault(key string, defaultValue time.Duration) (time.Duration, error) {
	value := os.Getenv(key)
	if value == "" {
		return defaultValue, nil
	}
	d, err := time.ParseDuration(value)
	if err != nil {
		return 0, fmt.Errorf("configuration error: %s: %w", key, err)
	}
	return d, nil
}
