package config

import (
	"encoding/json"
	"fmt"
	"os"

	"github.com/xxxsen/common/logger"
)

type Config struct {
	Port        int              `json:"port"`
	LogConfig   logger.LogConfig `json:"log_config"`
	CORSOrigins []string         `json:"cors_origins"`
	AI          AIConfig         `json:"ai"`
	Index       IndexConfig      `json:"index"`
	Classifiers ClassifierConfig `json:"classifiers"`
	Corpus      CorpusConfig     `json:"corpus"`
}

type AIConfig struct {
	EmbedProvider string      `json:"embed_provider"`
	EmbedModel    string      `json:"embed_model"`
	EmbedData     interface{} `json:"embed_data"`
	GenProvider   string      `json:"gen_provider"`
	GenModel      string      `json:"gen_model"`
	GenData       interface{} `json:"gen_data"`
	// Timeout bounds each outbound AI call, in seconds.
	Timeout           int              `json:"timeout"`
	Generation        GenerationConfig `json:"generation"`
	EmbedCacheSize    int              `json:"embed_cache_size"`
	EmbedCacheTTLMins int              `json:"embed_cache_ttl_minutes"`
}

// GenerationConfig holds the decoding parameters forwarded to the text
// generation endpoint.
type GenerationConfig struct {
	MaxNewTokens int     `json:"max_new_tokens"`
	Temperature  float64 `json:"temperature"`
	TopP         float64 `json:"top_p"`
	DoSample     *bool   `json:"do_sample"`
}

type IndexConfig struct {
	Type string      `json:"type"`
	Data interface{} `json:"data"`
}

type ClassifierConfig struct {
	SubredditURL string `json:"subreddit_url"`
	SentimentURL string `json:"sentiment_url"`
	Timeout      int    `json:"timeout"`
	HealthCron   string `json:"health_cron"`
}

type CorpusConfig struct {
	Type string      `json:"type"`
	Data interface{} `json:"data"`
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
		return nil, fmt.Errorf("port is required")
	}
	if cfg.LogConfig.Level == "" {
		cfg.LogConfig.Level = "info"
	}
	if cfg.AI.EmbedProvider == "" {
		return nil, fmt.Errorf("ai.embed_provider is required")
	}
	if cfg.AI.GenProvider == "" {
		return nil, fmt.Errorf("ai.gen_provider is required")
	}
	if cfg.AI.Timeout == 0 {
		cfg.AI.Timeout = 60
	}
	if cfg.AI.EmbedCacheSize == 0 {
		cfg.AI.EmbedCacheSize = 4096
	}
	if cfg.AI.EmbedCacheTTLMins == 0 {
		cfg.AI.EmbedCacheTTLMins = 120
	}
	applyGenerationDefaults(&cfg.AI.Generation)
	if cfg.Index.Type == "" {
		return nil, fmt.Errorf("index.type is required")
	}
	if cfg.Classifiers.Timeout == 0 {
		cfg.Classifiers.Timeout = 10
	}
	if cfg.Classifiers.HealthCron == "" {
		cfg.Classifiers.HealthCron = "*/5 * * * *"
	}
	if cfg.Corpus.Type == "" {
		cfg.Corpus.Type = "local"
	}
	return &cfg, nil
}

func applyGenerationDefaults(gen *GenerationConfig) {
	if gen.MaxNewTokens == 0 {
		gen.MaxNewTokens = 512
	}
	if gen.Temperature == 0 {
		gen.Temperature = 0.3
	}
	if gen.TopP == 0 {
		gen.TopP = 0.9
	}
	if gen.DoSample == nil {
		sample := true
		gen.DoSample = &sample
	}
}
