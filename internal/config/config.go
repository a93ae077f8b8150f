package config

import (
	"fmt"
	"time"

	"github.com/joho/godotenv"
	"github.com/kelseyhightower/envconfig"
	"github.com/spf13/pflag"

	"github.com/cloo-solutions/linkdigest/internal/domain"
)

// Renderer names
const (
	RendererChrome = "chrome"
	RendererHTTP   = "http"
)

// Config is built once per process. Every field is read from LINKDIGEST_<NAME>
// and falls back to the bare <NAME>, which is how LOCAL_LLM_URL and
// OPENAI_API_KEY are usually provided.
type Config struct {
	Port  string `envconfig:"PORT" default:"8080"`
	Debug bool   `envconfig:"DEBUG" default:"false"`

	LocalLLMURL    string `envconfig:"LOCAL_LLM_URL"`
	OpenAIAPIKey   string `envconfig:"OPENAI_API_KEY"`
	OpenAIBaseURL  string `envconfig:"OPENAI_BASE_URL"`
	GroqBaseURL    string `envconfig:"GROQ_BASE_URL" default:"https://api.groq.com/openai/v1"`
	GroqModel      string `envconfig:"GROQ_MODEL" default:"llama-3.1-8b-instant"`
	LocalModel     string `envconfig:"LOCAL_MODEL" default:"gpt-3.5-turbo-instruct"`
	LocalMaxTokens int    `envconfig:"LOCAL_MAX_TOKENS" default:"512"`

	EmbeddingModel      string `envconfig:"EMBEDDING_MODEL" default:"text-embedding-3-small"`
	EmbeddingDimensions int    `envconfig:"EMBEDDING_DIMENSIONS" default:"0"`

	DefaultMode  string `envconfig:"DEFAULT_MODE" default:"direct"`
	ChunkSize    int    `envconfig:"CHUNK_SIZE" default:"1000"`
	ChunkOverlap int    `envconfig:"CHUNK_OVERLAP" default:"200"`
	TopK         int    `envconfig:"TOP_K" default:"4"`

	Renderer           string        `envconfig:"RENDERER" default:"chrome"`
	BrowserWSURL       string        `envconfig:"BROWSER_WS_URL"`
	ChromePath         string        `envconfig:"CHROME_PATH"`
	RenderTimeout      time.Duration `envconfig:"RENDER_TIMEOUT" default:"30s"`
	TranscriptLanguage string        `envconfig:"TRANSCRIPT_LANGUAGE" default:"en"`

	RequestTimeout time.Duration `envconfig:"REQUEST_TIMEOUT" default:"120s"`
	MaxRetries     int           `envconfig:"MAX_RETRIES" default:"3"`

	RateLimitRPS   float64 `envconfig:"RATE_LIMIT_RPS" default:"0"`
	RateLimitBurst int     `envconfig:"RATE_LIMIT_BURST" default:"5"`
	// Key rate limits on X-Forwarded-For; only safe behind a trusted proxy
	TrustProxy     bool    `envconfig:"TRUST_PROXY" default:"false"`

	// Summary audit log, disabled when empty
	DatabaseURL  string        `envconfig:"DATABASE_URL"`
	LogRetention time.Duration `envconfig:"LOG_RETENTION" default:"720h"`

	SentryDSN   string `envconfig:"SENTRY_DSN"`
	Environment string `envconfig:"ENVIRONMENT" default:"development"`
}

func Load() (*Config, error) {
	_ = godotenv.Load()

	var cfg Config
	if err := envconfig.Process("LINKDIGEST", &cfg); err != nil {
		return nil, fmt.Errorf("failed to process config: %w", err)
	}

	if err := cfg.Validate(); err != nil {
		return nil, err
	}

	return &cfg, nil
}

// Validate checks values envconfig cannot check on its own.
func (c *Config) Validate() error {
	if c.ChunkSize <= 0 {
		return fmt.Errorf("invalid config: CHUNK_SIZE must be positive, got %d", c.ChunkSize)
	}
	if c.ChunkOverlap < 0 || c.ChunkOverlap >= c.ChunkSize {
		return fmt.Errorf("invalid config: CHUNK_OVERLAP must be in [0, CHUNK_SIZE), got %d", c.ChunkOverlap)
	}
	if c.TopK <= 0 {
		return fmt.Errorf("invalid config: TOP_K must be positive, got %d", c.TopK)
	}
	if mode, err := domain.ParseMode(c.DefaultMode); err != nil || mode == "" {
		return fmt.Errorf("invalid config: DEFAULT_MODE must be direct or retrieval, got %q", c.DefaultMode)
	}
	if c.Renderer != RendererChrome && c.Renderer != RendererHTTP {
		return fmt.Errorf("invalid config: RENDERER must be chrome or http, got %q", c.Renderer)
	}
	if c.MaxRetries < 0 {
		return fmt.Errorf("invalid config: MAX_RETRIES cannot be negative")
	}
	return nil
}

// Mode returns the parsed default mode.
func (c *Config) Mode() domain.Mode {
	mode, _ := domain.ParseMode(c.DefaultMode)
	if mode == "" {
		return domain.ModeDirect
	}
	return mode
}

func (c *Config) HasLocalLLM() bool {
	return c.LocalLLMURL != ""
}

func (c *Config) HasDatabase() bool {
	return c.DatabaseURL != ""
}

func (c *Config) HasRateLimit() bool {
	return c.RateLimitRPS > 0
}

// RegisterFlags defines command-line overrides on fs.
func RegisterFlags(fs *pflag.FlagSet) {
	fs.String("port", "", "HTTP listen port")
	fs.Bool("debug", false, "enable debug logging")
	fs.String("local-llm-url", "", "OpenAI-compatible local endpoint; overrides hosted backends")
	fs.String("mode", "", "default context mode (direct or retrieval)")
	fs.Int("chunk-size", 0, "chunk size in characters")
	fs.Int("chunk-overlap", 0, "chunk overlap in characters")
	fs.Int("top-k", 0, "chunks retrieved per request")
	fs.String("renderer", "", "web page renderer (chrome or http)")
	fs.String("browser-ws-url", "", "remote Chrome DevTools websocket URL")
	fs.String("database-url", "", "Postgres URL for the summary log")
	fs.Bool("trust-proxy", false, "rate limit on X-Forwarded-For (only behind a trusted proxy)")
}

// ApplyFlags copies every flag the user set explicitly into c and validates
// the result. Flags left at their default never override the environment.
func (c *Config) ApplyFlags(fs *pflag.FlagSet) error {
	var err error
	fs.Visit(func(f *pflag.Flag) {
		if err != nil {
			return
		}
		switch f.Name {
		case "port":
			c.Port, err = fs.GetString(f.Name)
		case "debug":
			c.Debug, err = fs.GetBool(f.Name)
		case "local-llm-url":
			c.LocalLLMURL, err = fs.GetString(f.Name)
		case "mode":
			c.DefaultMode, err = fs.GetString(f.Name)
		case "chunk-size":
			c.ChunkSize, err = fs.GetInt(f.Name)
		case "chunk-overlap":
			c.ChunkOverlap, err = fs.GetInt(f.Name)
		case "top-k":
			c.TopK, err = fs.GetInt(f.Name)
		case "renderer":
			c.Renderer, err = fs.GetString(f.Name)
		case "browser-ws-url":
			c.BrowserWSURL, err = fs.GetString(f.Name)
		case "database-url":
			c.DatabaseURL, err = fs.GetString(f.Name)
		case "trust-proxy":
			c.TrustProxy, err = fs.GetBool(f.Name)
		}
	})
	if err != nil {
		return fmt.Errorf("failed to read flags: %w", err)
	}
	return c.Validate()
}
