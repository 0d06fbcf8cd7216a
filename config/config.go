// Package config loads service settings from YAML, the environment and a dotenv file.
package config

import (
	"errors"
	"fmt"
	"time"
)

// Config is the root settings tree.
type Config struct {
	App           AppConfig           `mapstructure:"app"`
	Server        ServerConfig        `mapstructure:"server"`
	LLM           LLMConfig           `mapstructure:"llm"`
	Observability ObservabilityConfig `mapstructure:"observability"`
}

type AppConfig struct {
	Name string `mapstructure:"name"`
}

// ServerConfig configures the HTTP listener. A zero timeout means none.
type ServerConfig struct {
	Addr            string        `mapstructure:"addr"`
	ReadTimeout     time.Duration `mapstructure:"read_timeout"`
	WriteTimeout    time.Duration `mapstructure:"write_timeout"`
	ShutdownTimeout time.Duration `mapstructure:"shutdown_timeout"`
	CORS            CORSConfig    `mapstructure:"cors"`
}

type CORSConfig struct {
	Enabled        bool     `mapstructure:"enabled"`
	AllowedOrigins []string `mapstructure:"allowed_origins"`
}

// LLMConfig selects the text-generation backend. APIKey is never read from
// the config file; it is resolved from the variable named by APIKeyEnv.
type LLMConfig struct {
	Provider  string        `mapstructure:"provider"`
	Model     string        `mapstructure:"model"`
	APIKeyEnv string        `mapstructure:"api_key_env"`
	BaseURL   string        `mapstructure:"base_url"`
	Timeout   time.Duration `mapstructure:"timeout"`
	APIKey    string        `mapstructure:"-"`
}

type ObservabilityConfig struct {
	Logging LoggingConfig `mapstructure:"logging"`
	Metrics MetricsConfig `mapstructure:"metrics"`
	Tracing TracingConfig `mapstructure:"tracing"`
}

type LoggingConfig struct {
	Level  string `mapstructure:"level"`
	Format string `mapstructure:"format"`
}

type MetricsConfig struct {
	Enabled bool   `mapstructure:"enabled"`
	Path    string `mapstructure:"path"`
}

type TracingConfig struct {
	Enabled    bool    `mapstructure:"enabled"`
	Endpoint   string  `mapstructure:"endpoint"`
	SampleRate float64 `mapstructure:"sample_rate"`
}

// Providers lists the backends NewLLM in main knows how to build.
var Providers = []string{"gemini", "openai", "deepseek", "mock"}

// ErrMissingAPIKey is returned by Validate when the credential is absent.
var ErrMissingAPIKey = errors.New("api key not set")

// Validate checks the settings that must hold before anything is served.
func (c Config) Validate() error {
	known := false
	for _, p := range Providers {
		if c.LLM.Provider == p {
			known = true
			break
		}
	}
	if !known {
		return fmt.Errorf("llm provider %q not supported; known: %v", c.LLM.Provider, Providers)
	}
	if c.LLM.Provider == "mock" {
		return nil
	}
	if c.LLM.APIKey == "" {
		return fmt.Errorf("%s: %w", c.LLM.APIKeyEnv, ErrMissingAPIKey)
	}
	if c.LLM.Provider == "deepseek" && c.LLM.BaseURL == "" {
		// DeepSeek speaks the OpenAI protocol but has no default endpoint in the SDK.
		return errors.New("llm provider deepseek requires base_url (OpenAI-compatible endpoint)")
	}
	return nil
}
