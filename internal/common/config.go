package common

import (
	"errors"
	"fmt"
	"io/fs"
	"os"
	"strings"
	"time"

	"github.com/ilyakaznacheev/cleanenv"
	"github.com/joho/godotenv"
)

// Config holds all application configuration
type Config struct {
	Env    string       `yaml:"env" env:"APP_ENV" env-default:"local"`
	Server ServerConfig `yaml:"server"`
	LLM    LLMConfig    `yaml:"llm"`
	Vision VisionConfig `yaml:"vision"`
	Index  IndexConfig  `yaml:"index"`
	Cache  CacheConfig  `yaml:"cache"`
}

// ServerConfig holds HTTP/gRPC listener configuration
type ServerConfig struct {
	HTTPAddr       string        `yaml:"http_addr" env:"HTTP_ADDR" env-default:":5000"`
	GRPCHealthAddr string        `yaml:"grpc_health_addr" env:"GRPC_HEALTH_ADDR"`
	AllowedOrigins []string      `yaml:"allowed_origins" env:"CORS_ALLOWED_ORIGINS" env-default:"http://localhost:3000,http://127.0.0.1:3000,https://oohr-erp.web.app"`
	MaxUploadMB    int           `yaml:"max_upload_mb" env:"MAX_UPLOAD_MB" env-default:"20"`
	ReadTimeout    time.Duration `yaml:"read_timeout" env:"HTTP_READ_TIMEOUT" env-default:"30s"`
	WriteTimeout   time.Duration `yaml:"write_timeout" env:"HTTP_WRITE_TIMEOUT" env-default:"5m"`
}

// LLMConfig holds chat and embedding provider configuration
type LLMConfig struct {
	Provider       string        `yaml:"provider" env:"LLM_PROVIDER" env-default:"openai"`
	APIKey         string        `yaml:"openai_api_key" env:"OPENAI_API_KEY"`
	BaseURL        string        `yaml:"openai_base_url" env:"OPENAI_BASE_URL" env-default:"https://api.openai.com/v1"`
	Model          string        `yaml:"model" env:"OPENAI_MODEL" env-default:"gpt-4o"`
	EmbeddingModel string        `yaml:"embedding_model" env:"OPENAI_EMBEDDING_MODEL" env-default:"text-embedding-ada-002"`
	Temperature    float32       `yaml:"temperature" env:"OPENAI_TEMPERATURE" env-default:"0"`
	Timeout        time.Duration `yaml:"timeout" env:"OPENAI_TIMEOUT" env-default:"60s"`
	GeminiAPIKey   string        `yaml:"gemini_api_key" env:"GEMINI_API_KEY"`
	GeminiModel    string        `yaml:"gemini_model" env:"GEMINI_MODEL" env-default:"gemini-1.5-flash"`
}

// VisionConfig holds marksheet page extraction configuration
type VisionConfig struct {
	Model       string  `yaml:"model" env:"VISION_MODEL" env-default:"gpt-4o"`
	MaxTokens   int     `yaml:"max_tokens" env:"VISION_MAX_TOKENS" env-default:"2000"`
	Temperature float32 `yaml:"temperature" env:"VISION_TEMPERATURE" env-default:"0.1"`
	Concurrency int     `yaml:"concurrency" env:"VISION_CONCURRENCY" env-default:"2"`
	Pdftoppm    string  `yaml:"pdftoppm" env:"PDFTOPPM_BIN" env-default:"pdftoppm"`
	Pdftotext   string  `yaml:"pdftotext" env:"PDFTOTEXT_BIN" env-default:"pdftotext"`
	DPI         int     `yaml:"dpi" env:"PDF_DPI" env-default:"200"`
	MaxPages    int     `yaml:"max_pages" env:"PDF_MAX_PAGES" env-default:"0"`
}

// IndexConfig holds similarity index configuration
type IndexConfig struct {
	DSN  string `yaml:"dsn" env:"INDEX_DSN" env-default:"faiss_index/index.db"`
	TopK int    `yaml:"top_k" env:"INDEX_TOP_K" env-default:"4"`
}

// CacheConfig holds the optional embedding cache configuration
type CacheConfig struct {
	RedisURL string        `yaml:"redis_url" env:"REDIS_URL"`
	TTL      time.Duration `yaml:"ttl" env:"EMBED_CACHE_TTL" env-default:"24h"`
}

// LoadConfig loads an optional .env file, then either CONFIG_PATH (YAML with
// env overrides) or the environment alone.
func LoadConfig() (*Config, error) {
	if err := godotenv.Load(); err != nil && !errors.Is(err, fs.ErrNotExist) {
		return nil, fmt.Errorf("load .env: %w", err)
	}

	var cfg Config
	if path := strings.TrimSpace(os.Getenv("CONFIG_PATH")); path != "" {
		if err := cleanenv.ReadConfig(path, &cfg); err != nil {
			return nil, fmt.Errorf("read config %s: %w", path, err)
		}
	} else if err := cleanenv.ReadEnv(&cfg); err != nil {
		return nil, fmt.Errorf("read env: %w", err)
	}
	cfg.LLM.Provider = strings.ToLower(strings.TrimSpace(cfg.LLM.Provider))
	return &cfg, nil
}

// Validate validates the loaded configuration
func (c *Config) Validate() error {
	if c.Server.HTTPAddr == "" {
		return NewAppError("CONFIG_ERROR", "HTTP_ADDR is required", ErrInvalidInput)
	}
	// Embeddings always go through OpenAI, whatever the chat provider is.
	if c.LLM.APIKey == "" {
		return NewAppError("CONFIG_ERROR", "OPENAI_API_KEY is required", ErrInvalidInput)
	}
	switch c.LLM.Provider {
	case "openai":
	case "gemini":
		if c.LLM.GeminiAPIKey == "" {
			return NewAppError("CONFIG_ERROR", "GEMINI_API_KEY is required when LLM_PROVIDER=gemini", ErrInvalidInput)
		}
	default:
		return NewAppError("CONFIG_ERROR", fmt.Sprintf("unsupported LLM_PROVIDER %q", c.LLM.Provider), ErrInvalidInput)
	}
	if c.Index.DSN == "" {
		return NewAppError("CONFIG_ERROR", "INDEX_DSN is required", ErrInvalidInput)
	}
	if c.Index.TopK <= 0 {
		return NewAppError("CONFIG_ERROR", "INDEX_TOP_K must be positive", ErrInvalidInput)
	}
	return nil
}

// MaxUploadBytes returns the multipart size limit in bytes.
func (c *Config) MaxUploadBytes() int64 {
	if c.Server.MaxUploadMB <= 0 {
		return 20 << 20
	}
	return int64(c.Server.MaxUploadMB) << 20
}
