package config

import (
	"fmt"
	"time"

	"github.com/joho/godotenv"
	"github.com/kelseyhightower/envconfig"
)

// Config holds every runtime knob for the service. Values come from the
// environment, optionally seeded from a local .env file.
type Config struct {
	ListenAddr string `envconfig:"LISTEN_ADDR" default:":8080"`
	PublicURL  string `envconfig:"PUBLIC_URL" default:"http://localhost:8080"`

	// AdminMode marks every generated story as paid, skipping the paywall.
	AdminMode bool `envconfig:"ADMIN_MODE" default:"false"`

	// LLM settings
	LLMProvider     string  `envconfig:"LLM_PROVIDER" default:"openai"`
	OpenAIAPIKey    string  `envconfig:"OPENAI_API_KEY"`
	OpenAIBaseURL   string  `envconfig:"OPENAI_BASE_URL"`
	OpenAIModel     string  `envconfig:"OPENAI_MODEL" default:"gpt-4o-mini"`
	AnthropicAPIKey string  `envconfig:"ANTHROPIC_API_KEY"`
	Temperature     float32 `envconfig:"AI_TEMPERATURE" default:"0.8"`

	// When set, story generation goes through the HTTP proxy endpoint at
	// this base URL instead of calling the model provider directly.
	BackendBaseURL string `envconfig:"BACKEND_BASE_URL"`

	// Payment settings
	StripeSecretKey string `envconfig:"STRIPE_SECRET_KEY"`
	PriceCents      int64  `envconfig:"STORY_PRICE_CENTS" default:"299"`
	Currency        string `envconfig:"STORY_CURRENCY" default:"eur"`
	ProductName     string `envconfig:"STORY_PRODUCT_NAME" default:"Cuento personalizado"`

	// Storage
	DataDir   string `envconfig:"DATA_DIR" default:"data"`
	OutputDir string `envconfig:"OUTPUT_DIR" default:"output"`

	// Book shape. The free preview boundary and the page size happen to
	// share a default but are independent knobs.
	PageSize        int `envconfig:"PAGE_SIZE" default:"3"`
	MaxPages        int `envconfig:"MAX_PAGES" default:"20"`
	FreePreviewPage int `envconfig:"FREE_PREVIEW_PAGE" default:"3"`

	// Pacing. MinGenerationDisplay is a perceived-experience floor on the
	// generating screen, not a network timeout.
	MinGenerationDisplay time.Duration `envconfig:"MIN_GENERATION_DISPLAY" default:"5s"`
	ExportDelay          time.Duration `envconfig:"EXPORT_DELAY" default:"500ms"`

	// Rate limit for generation endpoints, requests per minute per IP.
	GenerateRateLimit int `envconfig:"GENERATE_RATE_LIMIT" default:"5"`

	// Logging
	LogLevel    string `envconfig:"LOG_LEVEL" default:"info"`
	LogEncoding string `envconfig:"LOG_ENCODING" default:"console"`

	// TLS
	TLSEnabled  bool   `envconfig:"TLS_ENABLED" default:"false"`
	TLSCertFile string `envconfig:"TLS_CERT_FILE" default:"certs/server.crt"`
	TLSKeyFile  string `envconfig:"TLS_KEY_FILE" default:"certs/server.key"`
}

// Load reads the configuration from the environment. A missing .env file
// is not an error.
func Load() (*Config, error) {
	_ = godotenv.Load()

	var cfg Config
	if err := envconfig.Process("", &cfg); err != nil {
		return nil, fmt.Errorf("parse environment: %w", err)
	}
	if cfg.PageSize < 1 {
		return nil, fmt.Errorf("PAGE_SIZE must be at least 1, got %d", cfg.PageSize)
	}
	if cfg.MaxPages < 1 {
		return nil, fmt.Errorf("MAX_PAGES must be at least 1, got %d", cfg.MaxPages)
	}
	return &cfg, nil
}
