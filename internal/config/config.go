package config

import (
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
)

// Config represents runtime configuration for the service.
type Config struct {
	BasicConfig BasicConfig               `json:"basic_config"`
	Providers   map[string]ProviderConfig `json:"providers"`
	Databases   map[string]DatabaseConfig `json:"databases"`
	Redis       RedisConfig               `json:"redis"`
}

type ProviderConfig struct {
	BaseURL     string  `json:"base_url"`
	Model       string  `json:"model"`
	APIKey      string  `json:"api_key"`
	Temperature float32 `json:"temperature"`
	MaxTokens   int     `json:"max_tokens"`
}

type BasicConfig struct {
	ServerAddress     string `json:"server_address"`
	FrontendURL       string `json:"frontend_url"`
	DefaultProvider   string `json:"default_provider"`
	AgentMaxSteps     int    `json:"agent_max_steps"`
	QueryTimeout      int    `json:"query_timeout"`       // seconds
	MaxQuestionLength int    `json:"max_question_length"` // characters
	MinWorkers        int    `json:"min_workers"`
	MaxWorkers        int    `json:"max_workers"`
	QueueSize         int    `json:"queue_size"`
	WorkerIdleTimeout int    `json:"worker_idle_timeout"` // minutes
	HistoryLimit      int    `json:"history_limit"`
	LogLevel          string `json:"log_level"`
	LogFormat         string `json:"log_format"`
}

type DatabaseConfig struct {
	DSN      string `json:"dsn"`
	Host     string `json:"host"`
	Port     int    `json:"port"`
	Username string `json:"username"`
	Password string `json:"password"`
	DBName   string `json:"db_name"`
	Params   string `json:"params"`
}

type RedisConfig struct {
	Enabled  bool   `json:"enabled"`
	Host     string `json:"host"`
	Port     int    `json:"port"`
	Username string `json:"username"`
	Password string `json:"password"`
	DB       int    `json:"db"`
}

const (
	DefaultAgentMaxSteps     = 12
	DefaultQueryTimeout      = 90
	DefaultMaxQuestionLength = 2000
	DefaultHistoryLimit      = 50
)

// Load reads configuration from the provided path (defaults to config.json).
func Load(path string) (*Config, error) {
	if path == "" {
		path = "config.json"
	}

	absPath, err := filepath.Abs(path)
	if err != nil {
		return nil, fmt.Errorf("resolve config path: %w", err)
	}

	file, err := os.Open(absPath)
	if err != nil {
		return nil, fmt.Errorf("open config %s: %w", absPath, err)
	}
	defer file.Close()

	var cfg Config
	if err := json.NewDecoder(file).Decode(&cfg); err != nil {
		return nil, fmt.Errorf("decode config: %w", err)
	}

	cfg.ApplyDefaults()
	return &cfg, nil
}

// ApplyDefaults fills unset fields with service defaults.
func (c *Config) ApplyDefaults() {
	if c.BasicConfig.ServerAddress == "" {
		c.BasicConfig.ServerAddress = ":8000"
	}
	if c.BasicConfig.FrontendURL == "" {
		c.BasicConfig.FrontendURL = "http://localhost:8080"
	}
	if c.BasicConfig.DefaultProvider == "" {
		c.BasicConfig.DefaultProvider = "groq"
	}
	if c.BasicConfig.AgentMaxSteps <= 0 {
		c.BasicConfig.AgentMaxSteps = DefaultAgentMaxSteps
	}
	if c.BasicConfig.QueryTimeout <= 0 {
		c.BasicConfig.QueryTimeout = DefaultQueryTimeout
	}
	if c.BasicConfig.MaxQuestionLength <= 0 {
		c.BasicConfig.MaxQuestionLength = DefaultMaxQuestionLength
	}
	if c.BasicConfig.HistoryLimit <= 0 {
		c.BasicConfig.HistoryLimit = DefaultHistoryLimit
	}
	if c.BasicConfig.MinWorkers <= 0 {
		c.BasicConfig.MinWorkers = 2
	}
	if c.BasicConfig.MaxWorkers < c.BasicConfig.MinWorkers {
		c.BasicConfig.MaxWorkers = c.BasicConfig.MinWorkers * 4
	}
	if c.BasicConfig.QueueSize <= 0 {
		c.BasicConfig.QueueSize = 64
	}
}

// Provider returns the configuration for a provider. Missing providers
// resolve to an empty entry so env-only setups still work.
func (c *Config) Provider(name string) ProviderConfig {
	if c == nil || c.Providers == nil {
		return ProviderConfig{}
	}
	return c.Providers[name]
}
