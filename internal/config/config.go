package config

import (
	"fmt"
	"log/slog"
	"os"
	"path/filepath"
	"strconv"
	"strings"
	"time"

	"github.com/joho/godotenv"
)

// ServerConfig configures cmd/server.
type ServerConfig struct {
	GeminiAPIKey   string
	HTTPPort       string
	LogLevel       string
	LogFormat      string
	LogFile        string
	ChatModel      string
	TTSModel       string
	TTSVoice       string
	TTSConcurrency int
	MaxAudioBytes  int
	PromptsFile    string
	ReadTimeout    time.Duration
	WriteTimeout   time.Duration
}

// ClientConfig configures cmd/medaid.
type ClientConfig struct {
	ServerURL     string
	DatabasePath  string
	Language      string
	RecordCommand string
	PlayCommand   string
	LogLevel      string
	LogFile       string
	Timeout       time.Duration
}

// loadDotEnv loads a .env file if it exists.
func loadDotEnv() {
	if err := godotenv.Load(); err != nil {
		slog.Debug("No .env file found, relying on environment variables")
	}
}

// LoadServer reads the server configuration from .env and the environment.
func LoadServer() (*ServerConfig, error) {
	loadDotEnv()

	cfg := &ServerConfig{
		GeminiAPIKey:   getEnv("GEMINI_API_KEY", ""),
		HTTPPort:       getEnv("HTTP_PORT", "8080"),
		LogLevel:       getEnv("LOG_LEVEL", "info"),
		LogFormat:      getEnv("LOG_FORMAT", "text"),
		LogFile:        getEnv("LOG_FILE", ""),
		ChatModel:      getEnv("CHAT_MODEL", "gemini-1.5-flash-latest"),
		TTSModel:       getEnv("TTS_MODEL", "gemini-2.5-flash-preview-tts"),
		TTSVoice:       getEnv("TTS_VOICE", "Algenib"),
		TTSConcurrency: getEnvAsInt("TTS_CONCURRENCY", 4),
		MaxAudioBytes:  getEnvAsInt("MAX_AUDIO_BYTES", 10<<20),
		PromptsFile:    getEnv("PROMPTS_FILE", ""),
		ReadTimeout:    getEnvAsDuration("HTTP_READ_TIMEOUT", 15*time.Second),
		WriteTimeout:   getEnvAsDuration("HTTP_WRITE_TIMEOUT", 120*time.Second),
	}

	if err := cfg.Validate(); err != nil {
		return nil, fmt.Errorf("invalid configuration: %w", err)
	}
	return cfg, nil
}

// Validate checks that all required configuration fields are set.
func (c *ServerConfig) Validate() error {
	if c.GeminiAPIKey == "" {
		return fmt.Errorf("GEMINI_API_KEY environment variable is required")
	}
	if c.HTTPPort == "" {
		return fmt.Errorf("HTTP_PORT cannot be empty")
	}
	if c.TTSConcurrency <= 0 {
		return fmt.Errorf("TTS_CONCURRENCY must be > 0, got %d", c.TTSConcurrency)
	}
	if c.MaxAudioBytes <= 0 {
		return fmt.Errorf("MAX_AUDIO_BYTES must be > 0, got %d", c.MaxAudioBytes)
	}
	if f := strings.ToLower(c.LogFormat); f != "text" && f != "json" {
		return fmt.Errorf("LOG_FORMAT must be text or json, got %q", c.LogFormat)
	}
	return nil
}

// LoadClient reads the CLI configuration from .env and the environment.
func LoadClient() (*ClientConfig, error) {
	loadDotEnv()

	cfg := &ClientConfig{
		ServerURL:     strings.TrimRight(getEnv("MEDAID_SERVER_URL", "http://localhost:8080"), "/"),
		DatabasePath:  getEnv("MEDAID_DB_PATH", defaultDatabasePath()),
		Language:      getEnv("MEDAID_LANGUAGE", "en"),
		RecordCommand: getEnv("MEDAID_RECORD_CMD", "arecord -q -f S16_LE -r 16000 -c 1 -t wav -"),
		PlayCommand:   getEnv("MEDAID_PLAY_CMD", "aplay -q"),
		LogLevel:      getEnv("LOG_LEVEL", "warn"),
		LogFile:       getEnv("LOG_FILE", ""),
		Timeout:       getEnvAsDuration("MEDAID_TIMEOUT", 2*time.Minute),
	}

	if err := cfg.Validate(); err != nil {
		return nil, fmt.Errorf("invalid configuration: %w", err)
	}
	return cfg, nil
}

func (c *ClientConfig) Validate() error {
	if c.ServerURL == "" {
		return fmt.Errorf("MEDAID_SERVER_URL cannot be empty")
	}
	if c.DatabasePath == "" {
		return fmt.Errorf("MEDAID_DB_PATH cannot be empty")
	}
	switch c.Language {
	case "en", "hi", "bn":
	default:
		return fmt.Errorf("MEDAID_LANGUAGE must be one of en, hi, bn, got %q", c.Language)
	}
	return nil
}

func defaultDatabasePath() string {
	home, err := os.UserHomeDir()
	if err != nil {
		return "medaid.db"
	}
	return filepath.Join(home, ".medaid", "medaid.db")
}

func getEnv(key string, defaultValue string) string {
	if value, exists := os.LookupEnv(key); exists {
		return value
	}
	return defaultValue
}

func getEnvAsInt(key string, defaultValue int) int {
	valueStr := getEnv(key, "")
	if value, err := strconv.Atoi(strings.TrimSpace(valueStr)); err == nil {
		return value
	}
	return defaultValue
}

func getEnvAsDuration(key string, defaultValue time.Duration) time.Duration {
	valueStr := getEnv(key, "")
	if value, err := time.ParseDuration(strings.TrimSpace(valueStr)); err == nil {
		return value
	}
	return defaultValue
}
