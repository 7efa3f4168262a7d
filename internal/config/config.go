package config

import (
	"encoding/json"
	"fmt"
	"os"

	"github.com/xxxsen/common/logger"
)

type Config struct {
	Port      int              `json:"port"`
	LogConfig logger.LogConfig `json:"log_config"`
	Database  DatabaseConfig   `json:"database"`
	Store     StoreConfig      `json:"store"`
	AI        AIConfig         `json:"ai"`
	Engine    EngineConfig     `json:"engine"`
	Retention RetentionConfig  `json:"retention"`
}

type DatabaseConfig struct {
	DSN      string `json:"dsn"`
	Host     string `json:"host"`
	Port     int    `json:"port"`
	User     string `json:"user"`
	Password string `json:"password"`
	DBName   string `json:"db_name"`
	SSLMode  string `json:"ssl_mode"`
}

type StoreConfig struct {
	Type string      `json:"type"`
	Data interface{} `json:"data"`
}

type AIConfig struct {
	Provider string      `json:"provider"`
	Model    string      `json:"model"`
	Timeout  int         `json:"timeout"`
	Data     interface{} `json:"data"`
}

type EngineConfig struct {
	MaxTokensPerChunk int    `json:"max_tokens_per_chunk"`
	ChunkingThreshold int    `json:"chunking_threshold"`
	Concurrency       int    `json:"concurrency"`
	ValidateAttempts  int    `json:"validate_attempts"`
	PromptCacheTTL    int    `json:"prompt_cache_ttl"`
	PromptLanguage    string `json:"prompt_language"`
}

type RetentionConfig struct {
	Days     int    `json:"days"`
	CronSpec string `json:"cron_spec"`
}

func Load(path string) (*Config, error) {
	file, err := os.Open(path)
	if err != nil {
		return nil, fmt.Errorf("open config: %w", err)
	}
	defer file.Close()

	var cfg Config
	if err := json.NewDecoder(file).Decode(&cfg); err != nil {
		return nil, fmt.Errorf("decode config: %w", err)
	}
	if cfg.Port == 0 {
		cfg.Port = 8080
	}
	if cfg.LogConfig.Level == "" {
		cfg.LogConfig.Level = "info"
	}
	if cfg.Database.DSN == "" && cfg.Database.Host == "" {
		return nil, fmt.Errorf("database.dsn or database.host is required")
	}
	if cfg.Store.Type == "" {
		return nil, fmt.Errorf("store.type is required")
	}
	if cfg.AI.Provider == "" {
		return nil, fmt.Errorf("ai.provider is required")
	}
	if cfg.AI.Model == "" {
		return nil, fmt.Errorf("ai.model is required")
	}
	if cfg.AI.Timeout == 0 {
		cfg.AI.Timeout = 600
	}
	if cfg.Engine.MaxTokensPerChunk == 0 {
		cfg.Engine.MaxTokensPerChunk = 15000
	}
	if cfg.Engine.ChunkingThreshold == 0 {
		cfg.Engine.ChunkingThreshold = 15000
	}
	if cfg.Engine.Concurrency <= 0 {
		cfg.Engine.Concurrency = 4
	}
	if cfg.Engine.ValidateAttempts <= 0 {
		cfg.Engine.ValidateAttempts = 3
	}
	if cfg.Engine.PromptCacheTTL <= 0 {
		cfg.Engine.PromptCacheTTL = 300
	}
	if cfg.Engine.PromptLanguage == "" {
		cfg.Engine.PromptLanguage = "python"
	}
	if cfg.Retention.Days <= 0 {
		cfg.Retention.Days = 30
	}
	if cfg.Retention.CronSpec == "" {
		cfg.Retention.CronSpec = "0 3 * * *"
	}
	return &cfg, nil
}
