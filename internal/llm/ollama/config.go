package ollama

import (
	"log/slog"
	"net/http"
	"os"
	"time"
)

// Config for the Ollama client.
type Config struct {
	Host       string        // endpoint base URL; falls back to OLLAMA_HOST, then localhost
	Model      string        // model identifier; falls back to OLLAMA_MODEL
	Timeout    time.Duration // per-request timeout
	StrictJSON bool          // fail structured extraction on the first schema violation instead of sanitizing
}

// Client talks to a local Ollama server over its HTTP API. All calls are
// blocking; nothing is streamed and nothing is retried.
type Client struct {
	cfg        Config
	httpClient *http.Client
	log        *slog.Logger
}

func NewClient(cfg Config, logger *slog.Logger) *Client {
	if cfg.Host == "" {
		cfg.Host = os.Getenv("OLLAMA_HOST")
	}
	if cfg.Host == "" {
		cfg.Host = "http://localhost:11434"
	}
	if cfg.Model == "" {
		cfg.Model = os.Getenv("OLLAMA_MODEL")
	}
	if cfg.Model == "" {
		cfg.Model = "llama3.2"
	}
	if cfg.Timeout <= 0 {
		cfg.Timeout = 120 * time.Second
	}
	if logger == nil {
		logger = slog.Default()
	}
	return &Client{
		cfg:        cfg,
		httpClient: &http.Client{Timeout: cfg.Timeout},
		log:        logger,
	}
}

// Model reports the configured model identifier.
func (c *Client) Model() string {
	return c.cfg.Model
}
