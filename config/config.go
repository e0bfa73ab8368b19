package config

import (
	"fmt"

	"github.com/spf13/viper"
)

type Config struct {
	Port         string `mapstructure:"port"`
	UploadDir    string `mapstructure:"upload_dir"`
	MongoURI     string `mapstructure:"MONGODB_URI"`
	DatabaseName string `mapstructure:"database_name"`

	WeaviateStoreConfig WeaviateStoreConfig `mapstructure:"weaviate_store_config"`

	AIConfig        AIConfig        `mapstructure:"ai_config"`
	EmbeddingConfig EmbeddingConfig `mapstructure:"embedding_config"`
	IngestConfig    IngestConfig    `mapstructure:"ingest_config"`
}

type WeaviateStoreConfig struct {
	Host   string `mapstructure:"host"`
	APIKey string `mapstructure:"WEAVIATE_APIKEY"`
}

type AIConfig struct {
	// Provider selects the chat backend: "openai" (any OpenAI-compatible
	// endpoint) or "gemini".
	Provider      string   `mapstructure:"provider"`
	Endpoint      string   `mapstructure:"endpoint"`
	Model         string   `mapstructure:"model"`
	APIKey        string   `mapstructure:"OPENAI_API_KEY"`
	GeminiAPIKeys []string `mapstructure:"gemini_api_keys"`
}

type EmbeddingConfig struct {
	Endpoint  string `mapstructure:"endpoint"`
	Model     string `mapstructure:"model"`
	Dimension int    `mapstructure:"dimension"`
}

type IngestConfig struct {
	UnstructuredURL string `mapstructure:"unstructured_url"`
	Workers         int    `mapstructure:"workers"`
	ScrapeTimeout   int    `mapstructure:"scrape_timeout_seconds"`
}

func LoadConfig(configPath string) (*Config, error) {
	v := viper.New()

	v.SetConfigFile(configPath)
	v.SetConfigType("yaml")

	v.AutomaticEnv()

	// Secrets come from the environment, not the config file.
	v.BindEnv("MONGODB_URI")
	v.BindEnv("weaviate_store_config.WEAVIATE_APIKEY", "WEAVIATE_APIKEY")
	v.BindEnv("ai_config.OPENAI_API_KEY", "OPENAI_API_KEY")

	if err := v.ReadInConfig(); err != nil {
		return nil, fmt.Errorf("error reading config file: %w", err)
	}

	var config Config
	if err := v.Unmarshal(&config); err != nil {
		return nil, fmt.Errorf("error unmarshaling config: %w", err)
	}

	if config.IngestConfig.Workers <= 0 {
		config.IngestConfig.Workers = 4
	}
	if config.EmbeddingConfig.Dimension <= 0 {
		config.EmbeddingConfig.Dimension = 384
	}
	if config.IngestConfig.ScrapeTimeout <= 0 {
		config.IngestConfig.ScrapeTimeout = 60
	}

	return &config, nil
}
