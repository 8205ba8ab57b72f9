package config

import (
	"fmt"
	"strings"
	"time"

	"github.com/joho/godotenv"
	"github.com/spf13/viper"
)

type Config struct {
	Server    ServerConfig    `mapstructure:"server"`
	Scraper   ScraperConfig   `mapstructure:"scraper"`
	Auditor   AuditorConfig   `mapstructure:"auditor"`
	Generator GeneratorConfig `mapstructure:"generator"`
	Pipeline  PipelineConfig  `mapstructure:"pipeline"`
}

type ServerConfig struct {
	Port int        `mapstructure:"port"`
	Mode string     `mapstructure:"mode"`
	CORS CORSConfig `mapstructure:"cors"`
}

type CORSConfig struct {
	AllowedOrigins  []string `mapstructure:"allowed_origins"`
	AllowAllOrigins bool     `mapstructure:"allow_all_origins"`
}

type ScraperConfig struct {
	TimeoutSeconds int `mapstructure:"timeout_seconds"`
}

type AuditorConfig struct {
	Model          string `mapstructure:"model"`
	APIKey         string `mapstructure:"api_key"`
	BaseURL        string `mapstructure:"base_url"`
	TimeoutSeconds int    `mapstructure:"timeout_seconds"`
}

type GeneratorConfig struct {
	APIKey         string `mapstructure:"api_key"`
	BaseURL        string `mapstructure:"base_url"`
	TimeoutSeconds int    `mapstructure:"timeout_seconds"`
}

type PipelineConfig struct {
	Workers   int `mapstructure:"workers"`
	MaxImages int `mapstructure:"max_images"`
}

// Timeout returns the scraper timeout as a duration.
func (c ScraperConfig) Timeout() time.Duration {
	return time.Duration(c.TimeoutSeconds) * time.Second
}

// Timeout returns the auditor request timeout as a duration.
func (c AuditorConfig) Timeout() time.Duration {
	return time.Duration(c.TimeoutSeconds) * time.Second
}

// Timeout returns the generator request timeout as a duration.
func (c GeneratorConfig) Timeout() time.Duration {
	return time.Duration(c.TimeoutSeconds) * time.Second
}

func Load(configPath string) (*Config, error) {
	// Load .env file if exists
	_ = godotenv.Load()

	v := viper.New()

	// Set config file path
	if configPath != "" {
		v.SetConfigFile(configPath)
	} else {
		v.SetConfigName("config")
		v.SetConfigType("yaml")
		v.AddConfigPath("./configs")
		v.AddConfigPath(".")
	}

	// Enable environment variable override
	v.AutomaticEnv()
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))

	// Set defaults
	v.SetDefault("server.port", 8080)
	v.SetDefault("server.mode", "debug")
	v.SetDefault("server.cors.allow_all_origins", false)
	v.SetDefault("server.cors.allowed_origins", []string{"http://localhost:3000"})
	v.SetDefault("scraper.timeout_seconds", 30)
	v.SetDefault("auditor.model", "gemini-2.5-flash")
	v.SetDefault("auditor.base_url", "https://generativelanguage.googleapis.com/v1beta/openai")
	v.SetDefault("auditor.timeout_seconds", 60)
	v.SetDefault("generator.base_url", "https://api.stability.ai")
	v.SetDefault("generator.timeout_seconds", 120)
	v.SetDefault("pipeline.workers", 3)
	v.SetDefault("pipeline.max_images", 5)

	// Read config file
	if err := v.ReadInConfig(); err != nil {
		if _, ok := err.(viper.ConfigFileNotFoundError); !ok {
			return nil, fmt.Errorf("failed to read config file: %w", err)
		}
	}

	// Bind environment variables explicitly for sensitive data
	v.BindEnv("auditor.api_key", "GEMINI_API_KEY")
	v.BindEnv("auditor.base_url", "GEMINI_BASE_URL")
	v.BindEnv("auditor.model", "AUDITOR_MODEL")
	v.BindEnv("generator.api_key", "STABILITY_KEY")
	v.BindEnv("generator.base_url", "STABILITY_BASE_URL")

	var cfg Config
	if err := v.Unmarshal(&cfg); err != nil {
		return nil, fmt.Errorf("failed to unmarshal config: %w", err)
	}

	return &cfg, nil
}
