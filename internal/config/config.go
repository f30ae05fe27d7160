package config

import (
	"fmt"
	"os"
	"strconv"
	"time"

	"gopkg.in/yaml.v3"
)

type Config struct {
	Port string `yaml:"port"`

	// Auth
	APIKey string `yaml:"api_key"`

	// LLM / embedding backend (OpenAI-compatible endpoint)
	LLMBaseURL     string `yaml:"llm_base_url"`
	LLMAPIKey      string `yaml:"llm_api_key"`
	LLMModel       string `yaml:"llm_model"`
	EmbeddingModel string `yaml:"embedding_model"`

	// Vector store
	VectorDBPath string `yaml:"vector_db_path"`

	// Batch conversion
	PagesPerBatch        int           `yaml:"pages_per_batch"`
	ConcurrencyLimit     int           `yaml:"concurrency_limit"`
	MaxRequestsPerMinute int           `yaml:"max_requests_per_minute"`
	ConvertTimeout       time.Duration `yaml:"convert_timeout"`

	// Chunking and retrieval
	MaxChunkSize    int `yaml:"max_chunk_size"`
	TopK            int `yaml:"top_k"`
	EmbedBatchSize  int `yaml:"embed_batch_size"`
	UpsertBatchSize int `yaml:"upsert_batch_size"`

	// Request budgets
	IngestTimeout time.Duration `yaml:"ingest_timeout"`
	QueryTimeout  time.Duration `yaml:"query_timeout"`

	// Upload limits
	MaxUploadBytes int64 `yaml:"max_upload_bytes"`

	// Ingestion status retention
	StatusTTL time.Duration `yaml:"status_ttl"`

	// PDF
	PDFFallbackPdftotext bool `yaml:"pdf_fallback_pdftotext"`
}

func defaults() Config {
	return Config{
		Port: "8090",

		LLMBaseURL:     "https://api.openai.com/v1",
		LLMModel:       "gpt-4o-mini",
		EmbeddingModel: "text-embedding-3-small",

		VectorDBPath: "./smartpdf-db",

		PagesPerBatch:        20,
		ConcurrencyLimit:     2,
		MaxRequestsPerMinute: 6,
		ConvertTimeout:       2 * time.Minute,

		MaxChunkSize:    1000,
		TopK:            5,
		EmbedBatchSize:  100,
		UpsertBatchSize: 100,

		IngestTimeout: 10 * time.Minute,
		QueryTimeout:  90 * time.Second,

		MaxUploadBytes: 52428800, // 50MB

		StatusTTL: 1 * time.Hour,

		PDFFallbackPdftotext: true,
	}
}

// Load builds the configuration from defaults, an optional YAML file
// (SMARTPDF_CONFIG), and environment variable overrides, in that order.
func Load() (Config, error) {
	cfg := defaults()

	if path := os.Getenv("SMARTPDF_CONFIG"); path != "" {
		data, err := os.ReadFile(path)
		if err != nil {
			return cfg, fmt.Errorf("read config file: %w", err)
		}
		if err := yaml.Unmarshal(data, &cfg); err != nil {
			return cfg, fmt.Errorf("parse config file %s: %w", path, err)
		}
	}

	cfg.Port = envOr("PORT", cfg.Port)

	cfg.APIKey = envOr("SMARTPDF_API_KEY", cfg.APIKey)

	cfg.LLMBaseURL = envOr("LLM_BASE_URL", cfg.LLMBaseURL)
	cfg.LLMAPIKey = envOr("OPENAI_API_KEY", cfg.LLMAPIKey)
	cfg.LLMModel = envOr("LLM_MODEL", cfg.LLMModel)
	cfg.EmbeddingModel = envOr("EMBEDDING_MODEL", cfg.EmbeddingModel)

	cfg.VectorDBPath = envOr("VECTOR_DB_PATH", cfg.VectorDBPath)

	cfg.PagesPerBatch = envInt("PAGES_PER_BATCH", cfg.PagesPerBatch)
	cfg.ConcurrencyLimit = envInt("CONCURRENCY_LIMIT", cfg.ConcurrencyLimit)
	cfg.MaxRequestsPerMinute = envInt("MAX_REQUESTS_PER_MINUTE", cfg.MaxRequestsPerMinute)
	cfg.ConvertTimeout = envDuration("CONVERT_TIMEOUT", cfg.ConvertTimeout)

	cfg.MaxChunkSize = envInt("MAX_CHUNK_SIZE", cfg.MaxChunkSize)
	cfg.TopK = envInt("TOP_K", cfg.TopK)
	cfg.EmbedBatchSize = envInt("EMBED_BATCH_SIZE", cfg.EmbedBatchSize)
	cfg.UpsertBatchSize = envInt("UPSERT_BATCH_SIZE", cfg.UpsertBatchSize)

	cfg.IngestTimeout = envDuration("INGEST_TIMEOUT", cfg.IngestTimeout)
	cfg.QueryTimeout = envDuration("QUERY_TIMEOUT", cfg.QueryTimeout)

	cfg.MaxUploadBytes = envInt64("MAX_UPLOAD_BYTES", cfg.MaxUploadBytes)

	cfg.StatusTTL = envDuration("STATUS_TTL", cfg.StatusTTL)

	cfg.PDFFallbackPdftotext = envBool("PDF_FALLBACK_PDFTOTEXT", cfg.PDFFallbackPdftotext)

	cfg.clamp()
	return cfg, nil
}

// clamp resets nonsensical values back to defaults.
func (c *Config) clamp() {
	d := defaults()
	if c.PagesPerBatch <= 0 {
		c.PagesPerBatch = d.PagesPerBatch
	}
	if c.ConcurrencyLimit <= 0 {
		c.ConcurrencyLimit = d.ConcurrencyLimit
	}
	if c.MaxRequestsPerMinute <= 0 {
		c.MaxRequestsPerMinute = d.MaxRequestsPerMinute
	}
	if c.ConvertTimeout <= 0 {
		c.ConvertTimeout = d.ConvertTimeout
	}
	if c.MaxChunkSize <= 0 {
		c.MaxChunkSize = d.MaxChunkSize
	}
	if c.TopK <= 0 {
		c.TopK = d.TopK
	}
	if c.EmbedBatchSize <= 0 {
		c.EmbedBatchSize = d.EmbedBatchSize
	}
	if c.UpsertBatchSize <= 0 {
		c.UpsertBatchSize = d.UpsertBatchSize
	}
	if c.IngestTimeout <= 0 {
		c.IngestTimeout = d.IngestTimeout
	}
	if c.QueryTimeout <= 0 {
		c.QueryTimeout = d.QueryTimeout
	}
	if c.MaxUploadBytes <= 0 {
		c.MaxUploadBytes = d.MaxUploadBytes
	}
	if c.StatusTTL <= 0 {
		c.StatusTTL = d.StatusTTL
	}
}

func (c Config) Validate() error {
	if c.APIKey == "" {
		return fmt.Errorf("SMARTPDF_API_KEY is required")
	}
	if c.LLMAPIKey == "" {
		return fmt.Errorf("OPENAI_API_KEY is required")
	}
	if c.LLMModel == "" {
		return fmt.Errorf("LLM_MODEL must not be empty")
	}
	if c.EmbeddingModel == "" {
		return fmt.Errorf("EMBEDDING_MODEL must not be empty")
	}
	if c.VectorDBPath == "" {
		return fmt.Errorf("VECTOR_DB_PATH must not be empty")
	}
	return nil
}

func envOr(key, fallback string) string {
	if v := os.Getenv(key); v != "" {
		return v
	}
	return fallback
}

func envInt(key string, fallback int) int {
	if v := os.Getenv(key); v != "" {
		if n, err := strconv.Atoi(v); err == nil {
			return n
		}
	}
	return fallback
}

func envInt64(key string, fallback int64) int64 {
	if v := os.Getenv(key); v != "" {
		if n, err := strconv.ParseInt(v, 10, 64); err == nil {
			return n
		}
	}
	return fallback
}

func envBool(key string, fallback bool) bool {
	if v := os.Getenv(key); v != "" {
		if b, err := strconv.ParseBool(v); err == nil {
			return b
		}
	}
	return fallback
}

func envDuration(key string, fallback time.Duration) time.Duration {
	if v := os.Getenv(key); v != "" {
		if d, err := time.ParseDuration(v); err == nil {
			return d
		}
	}
	return fallback
}
