package model

import "time"

// Config holds the full service configuration. Values come from defaults,
// ~/.claimpilot/config.yaml, CLAIMPILOT_* environment variables and CLI flags,
// in increasing priority.
type Config struct {
	LLM         LLMConfig         `yaml:"llm" mapstructure:"llm"`
	OCR         OCRConfig         `yaml:"ocr" mapstructure:"ocr"`
	Pipeline    PipelineConfig    `yaml:"pipeline" mapstructure:"pipeline"`
	Server      ServerConfig      `yaml:"server" mapstructure:"server"`
	Store       StoreConfig       `yaml:"store" mapstructure:"store"`
	Archive     ArchiveConfig     `yaml:"archive" mapstructure:"archive"`
	Concurrency ConcurrencyConfig `yaml:"concurrency" mapstructure:"concurrency"`
	Log         LogConfig         `yaml:"log" mapstructure:"log"`
}

// LLMConfig configures the inference gateway.
type LLMConfig struct {
	// Provider name: "openai" or "ollama"
	Provider string `yaml:"provider" mapstructure:"provider"`

	// Model used for text and structured calls
	Model string `yaml:"model" mapstructure:"model"`

	// VisionModel used for signature/seal detection; falls back to Model
	VisionModel string `yaml:"vision_model" mapstructure:"vision_model"`

	// APIKey for hosted providers
	APIKey string `yaml:"api_key" mapstructure:"api_key"`

	// BaseURL for custom endpoints (e.g. a local Ollama server)
	BaseURL string `yaml:"base_url" mapstructure:"base_url"`

	// Timeout per inference request, seconds
	Timeout int `yaml:"timeout" mapstructure:"timeout"`

	// MaxRetries for failed inference calls. At 0 a single failed call
	// fails the whole claim.
	MaxRetries int `yaml:"max_retries" mapstructure:"max_retries"`

	// RetryBackoff is the initial backoff between retries; doubles per attempt
	RetryBackoff time.Duration `yaml:"retry_backoff" mapstructure:"retry_backoff"`

	// RequestsPerSecond rate-limits gateway calls (0 = unlimited)
	RequestsPerSecond float64 `yaml:"requests_per_second" mapstructure:"requests_per_second"`

	// Burst for the rate limiter
	Burst int `yaml:"burst" mapstructure:"burst"`
}

// OCRConfig configures the text-extraction service client.
type OCRConfig struct {
	// BaseURL of the OCR/orientation service
	BaseURL string `yaml:"base_url" mapstructure:"base_url"`

	// Timeout per extraction request, seconds
	Timeout int `yaml:"timeout" mapstructure:"timeout"`
}

// PipelineConfig tunes the adjudication pipeline itself.
type PipelineConfig struct {
	// MaxImageKB is the size threshold above which images are downscaled
	// before OCR
	MaxImageKB int64 `yaml:"max_image_kb" mapstructure:"max_image_kb"`
}

// ServerConfig configures the HTTP claim-submission boundary.
type ServerConfig struct {
	Host       string `yaml:"host" mapstructure:"host"`
	Port       int    `yaml:"port" mapstructure:"port"`
	UploadsDir string `yaml:"uploads_dir" mapstructure:"uploads_dir"`

	// BodyLimit caps multipart upload size in bytes
	BodyLimit int `yaml:"body_limit" mapstructure:"body_limit"`
}

// StoreConfig selects and configures claim persistence.
type StoreConfig struct {
	// Driver: "disk" (JSON per claim) or "postgres"
	Driver string `yaml:"driver" mapstructure:"driver"`

	// Dir for the disk driver
	Dir string `yaml:"dir" mapstructure:"dir"`

	// CacheTTL for the in-memory read-through cache
	CacheTTL time.Duration `yaml:"cache_ttl" mapstructure:"cache_ttl"`

	Postgres PostgresConfig `yaml:"postgres" mapstructure:"postgres"`
}

// PostgresConfig holds Postgres connection settings for the postgres store.
type PostgresConfig struct {
	Host     string `yaml:"host" mapstructure:"host"`
	Port     string `yaml:"port" mapstructure:"port"`
	User     string `yaml:"user" mapstructure:"user"`
	Password string `yaml:"password" mapstructure:"password"`
	Name     string `yaml:"name" mapstructure:"name"`
	SSLMode  string `yaml:"sslmode" mapstructure:"sslmode"`
}

// ArchiveConfig configures optional S3-compatible archival of uploaded
// evidence files. Disabled when Endpoint is empty.
type ArchiveConfig struct {
	Endpoint  string `yaml:"endpoint" mapstructure:"endpoint"`
	AccessKey string `yaml:"access_key" mapstructure:"access_key"`
	SecretKey string `yaml:"secret_key" mapstructure:"secret_key"`
	Bucket    string `yaml:"bucket" mapstructure:"bucket"`
	UseSSL    bool   `yaml:"use_ssl" mapstructure:"use_ssl"`
}

// ConcurrencyConfig tunes batch processing.
type ConcurrencyConfig struct {
	// Workers processing whole claims in parallel in batch mode
	Workers int `yaml:"workers" mapstructure:"workers"`
}

// LogConfig configures structured logging.
type LogConfig struct {
	Level  string `yaml:"level" mapstructure:"level"`   // debug, info, warn, error
	Format string `yaml:"format" mapstructure:"format"` // text, json
}

// DefaultConfig returns sensible defaults.
func DefaultConfig() *Config {
	return &Config{
		LLM: LLMConfig{
			Provider:     "ollama",
			Model:        "qwen3:8b",
			VisionModel:  "qwen2.5vl:7b-q4_K_M",
			BaseURL:      "",
			Timeout:      120,
			MaxRetries:   0,
			RetryBackoff: time.Second,
		},
		OCR: OCRConfig{
			BaseURL: "http://localhost:8868",
			Timeout: 60,
		},
		Pipeline: PipelineConfig{
			MaxImageKB: 500,
		},
		Server: ServerConfig{
			Host:       "0.0.0.0",
			Port:       8000,
			UploadsDir: "claim-storage",
			BodyLimit:  32 << 20,
		},
		Store: StoreConfig{
			Driver:   "disk",
			Dir:      "claim-storage",
			CacheTTL: 5 * time.Minute,
		},
		Concurrency: ConcurrencyConfig{
			Workers: 2,
		},
		Log: LogConfig{
			Level:  "info",
			Format: "text",
		},
	}
}
