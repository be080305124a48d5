package common

import (
	"os"
	"strconv"
	"time"

	"github.com/joho/godotenv"
)

// Config holds all application configuration
type Config struct {
	Ollama OllamaConfig
	PDF    PDFConfig
	Log    LogConfig
}

// OllamaConfig holds model endpoint configuration
type OllamaConfig struct {
	Host    string
	Model   string
	Timeout time.Duration
}

// PDFConfig holds text extraction configuration
type PDFConfig struct {
	MaxPages int
}

// LogConfig holds logging configuration
type LogConfig struct {
	Level string
}

// LoadConfig loads configuration from environment variables. A .env file in
// the working directory is applied first when present.
func LoadConfig() *Config {
	_ = godotenv.Load()
	return &Config{
		Ollama: OllamaConfig{
			Host:    getEnv("OLLAMA_HOST", "http://localhost:11434"),
			Model:   getEnv("OLLAMA_MODEL", "llama3.2"),
			Timeout: getEnvAsDuration("OLLAMA_TIMEOUT", 120*time.Second),
		},
		PDF: PDFConfig{
			MaxPages: getEnvAsInt("MAX_PDF_PAGES", 10),
		},
		Log: LogConfig{
			Level: getEnv("LOG_LEVEL", "INFO"),
		},
	}
}

// Helper functions for environment variable parsing
func getEnv(key, defaultValue string) string {
	if value := os.Getenv(key); value != "" {
		return value
	}
	return defaultValue
}

func getEnvAsInt(key string, defaultValue int) int {
	if value := os.Getenv(key); value != "" {
		if intVal, err := strconv.Atoi(value); err == nil {
			return intVal
		}
	}
	return defaultValue
}

func getEnvAsDuration(key string, defaultValue time.Duration) time.Duration {
	if value := os.Getenv(key); value != "" {
		if duration, err := time.ParseDuration(value); err == nil {
			return duration
		}
	}
	return defaultValue
}

// Validate validates the loaded configuration
func (c *Config) Validate() error {
	if c.Ollama.Host == "" {
		return NewAppError("CONFIG_ERROR", "OLLAMA_HOST is required", ErrInvalidInput)
	}
	if c.Ollama.Model == "" {
		return NewAppError("CONFIG_ERROR", "OLLAMA_MODEL is required", ErrInvalidInput)
	}
	if c.Ollama.Timeout <= 0 {
		return NewAppError("CONFIG_ERROR", "OLLAMA_TIMEOUT must be positive", ErrInvalidInput)
	}
	if c.PDF.MaxPages <= 0 {
		return NewAppError("CONFIG_ERROR", "MAX_PDF_PAGES must be positive", ErrInvalidInput)
	}
	return nil
}
