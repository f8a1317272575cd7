// Package config loads the service configuration from defaults, an optional
// bookworm.yaml, the environment and command-line flags, in increasing order
// of precedence.
package config

import (
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/spf13/pflag"
	"github.com/spf13/viper"
)

// Config is the resolved configuration
type Config struct {
	Provider     string        `mapstructure:"provider"`
	Model        string        `mapstructure:"model"`
	Temperature  float64       `mapstructure:"temperature"`
	MaxTokens    int           `mapstructure:"max_tokens"`
	LLMTimeout   time.Duration `mapstructure:"llm_timeout"`
	OllamaURL    string        `mapstructure:"ollama_url"`
	OpenAIKey    string        `mapstructure:"openai_api_key"`
	OpenAIURL    string        `mapstructure:"openai_base_url"`
	GeminiKey    string        `mapstructure:"gemini_api_key"`
	OCREngine    string        `mapstructure:"ocr_engine"`
	OCRModel     string        `mapstructure:"ocr_model"`
	Language     string        `mapstructure:"language"`
	ISBNLanguage string        `mapstructure:"isbn_language"`
	CoverPass    bool          `mapstructure:"cover_pass"`
	Port         int           `mapstructure:"port"`
	MaxBodyBytes int64         `mapstructure:"max_body_bytes"`
	Breaker      Breaker       `mapstructure:"breaker"`
}

// Breaker configures the circuit breaker around the model backend.
type Breaker struct {
	Failures    uint32        `mapstructure:"failures"`
	Timeout     time.Duration `mapstructure:"timeout"`
	Interval    time.Duration `mapstructure:"interval"`
	MaxRequests uint32        `mapstructure:"max_requests"`
}

// Default model per provider.
var defaultModels = map[string]string{
	"ollama": "qwen2.5:7b-instruct",
	"openai": "gpt-4o-mini",
	"gemini": "gemini-1.5-flash",
}

// Environment variables the cataloger used before the BOOKWORM_ prefix.
var legacyEnv = map[string][]string{
	"provider":       {"CATALOGING_PROVIDER"},
	"ollama_url":     {"OLLAMA_URL", "OLLAMA_HOST"},
	"openai_api_key": {"OPENAI_API_KEY"},
	"gemini_api_key": {"GEMINI_API_KEY"},
}

// Load builds the configuration. cfgFile may be empty to search "." and
// "$HOME/.bookworm" for bookworm.yaml; a missing file is not an error.
// flags may be nil.
func Load(cfgFile string, flags *pflag.FlagSet) (*Config, error) {
	v := viper.New()
	setDefaults(v)

	v.SetEnvPrefix("BOOKWORM")
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	v.AutomaticEnv()
	for key, names := range legacyEnv {
		args := append([]string{key, "BOOKWORM_" + strings.ToUpper(key)}, names...)
		if err := v.BindEnv(args...); err != nil {
			return nil, fmt.Errorf("failed to bind %s: %w", key, err)
		}
	}

	if cfgFile != "" {
		v.SetConfigFile(cfgFile)
	} else {
		v.SetConfigName("bookworm")
		v.SetConfigType("yaml")
		v.AddConfigPath(".")
		v.AddConfigPath("$HOME/.bookworm")
	}
	if err := v.ReadInConfig(); err != nil {
		var notFound viper.ConfigFileNotFoundError
		if !errors.As(err, &notFound) {
			return nil, fmt.Errorf("error reading config file: %w", err)
		}
	}

	if flags != nil {
		var bindErr error
		// --ocr-engine sets ocr_engine.
		flags.VisitAll(func(f *pflag.Flag) {
			if err := v.BindPFlag(strings.ReplaceAll(f.Name, "-", "_"), f); err != nil && bindErr == nil {
				bindErr = err
			}
		})
		if bindErr != nil {
			return nil, fmt.Errorf("failed to bind flags: %w", bindErr)
		}
	}

	var cfg Config
	if err := v.Unmarshal(&cfg); err != nil {
		return nil, fmt.Errorf("failed to unmarshal config: %w", err)
	}
	cfg.Provider = strings.ToLower(strings.TrimSpace(cfg.Provider))
	if cfg.Model == "" {
		cfg.Model = modelFromEnv(v, cfg.Provider)
	}
	if cfg.OCRModel == "" {
		cfg.OCRModel = cfg.Model
	}
	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return &cfg, nil
}

// Validate reports settings that cannot work.
func (c *Config) Validate() error {
	if _, ok := defaultModels[c.Provider]; !ok {
		return fmt.Errorf("unsupported provider: %s", c.Provider)
	}
	if c.OCREngine != "tesseract" && c.OCREngine != "vision" {
		return fmt.Errorf("unsupported OCR engine: %s", c.OCREngine)
	}
	if c.MaxTokens < 0 || c.LLMTimeout <= 0 {
		return fmt.Errorf("max_tokens must be >= 0 and llm_timeout > 0")
	}
	return nil
}

func setDefaults(v *viper.Viper) {
	v.SetDefault("provider", "ollama")
	v.SetDefault("model", "")
	v.SetDefault("temperature", 0.0)
	v.SetDefault("max_tokens", 800)
	v.SetDefault("llm_timeout", 60*time.Second)
	v.SetDefault("ollama_url", "http://localhost:11434")
	v.SetDefault("openai_api_key", "")
	v.SetDefault("openai_base_url", "")
	v.SetDefault("gemini_api_key", "")
	v.SetDefault("ocr_engine", "tesseract")
	v.SetDefault("ocr_model", "")
	v.SetDefault("language", "rus+eng")
	v.SetDefault("isbn_language", "eng")
	v.SetDefault("cover_pass", true)
	v.SetDefault("port", 5000)
	v.SetDefault("max_body_bytes", 32<<20)
	v.SetDefault("breaker.failures", 5)
	v.SetDefault("breaker.timeout", 30*time.Second)
	v.SetDefault("breaker.interval", time.Minute)
	v.SetDefault("breaker.max_requests", 1)
}

// modelFromEnv honors OLLAMA_MODEL, OPENAI_MODEL and GEMINI_MODEL before the
// built-in default.
func modelFromEnv(v *viper.Viper, provider string) string {
	key := provider + "_model"
	if err := v.BindEnv(key, strings.ToUpper(key)); err == nil {
		if m := v.GetString(key); m != "" {
			return m
		}
	}
	return defaultModels[provider]
}
