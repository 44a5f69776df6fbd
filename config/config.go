package config

import (
	"fmt"
	"os"
	"strconv"
	"strings"
	"time"

	"github.com/joho/godotenv"
	"github.com/sirupsen/logrus"
)

type Config struct {
	// Server settings
	ServerPort        string        `json:"server_port"`
	ReadHeaderTimeout time.Duration `json:"read_header_timeout"`
	IdleTimeout       time.Duration `json:"idle_timeout"`
	ShutdownTimeout   time.Duration `json:"shutdown_timeout"`
	MaxConcurrent     int           `json:"max_concurrent"`
	Debug             bool          `json:"debug"`
	Version           string        `json:"version"`

	// Application paths
	LogDir    string `json:"log_dir"`
	LogLevel  string `json:"log_level"`
	StaticDir string `json:"static_dir"`

	CORS      CORSConfig      `json:"cors"`
	RateLimit RateLimitConfig `json:"rate_limit"`
	Media     MediaConfig     `json:"media"`
	AI        AIConfig        `json:"ai"`
}

type CORSConfig struct {
	Enabled          bool     `json:"enabled"`
	AllowedOrigins   []string `json:"allowed_origins"`
	AllowedMethods   []string `json:"allowed_methods"`
	AllowedHeaders   []string `json:"allowed_headers"`
	AllowCredentials bool     `json:"allow_credentials"`
	MaxAge           int      `json:"max_age"`
}

type RateLimitConfig struct {
	Enabled           bool `json:"enabled"`
	RequestsPerMinute int  `json:"requests_per_minute"`
	BurstSize         int  `json:"burst_size"`
}

type MediaConfig struct {
	UploadDir       string        `json:"upload_dir"`
	DownloadDir     string        `json:"download_dir"`
	YtDlpPath       string        `json:"ytdlp_path"`
	FFmpegPath      string        `json:"ffmpeg_path"`
	CleanupSchedule string        `json:"cleanup_schedule"`
	StaleAfter      time.Duration `json:"stale_after"`
}

type AIConfig struct {
	// BaseURL overrides the provider endpoint, empty means the public API.
	BaseURL            string `json:"base_url"`
	TranscriptionModel string `json:"transcription_model"`
	ChatModel          string `json:"chat_model"`
	ImageModel         string `json:"image_model"`
	DefaultLanguage    string `json:"default_language"`
}

// Load reads configuration from environment variables, after merging an
// optional .env file. The provider API key is never read here.
func Load() (*Config, error) {
	if err := godotenv.Load(); err != nil && !os.IsNotExist(err) {
		logrus.WithError(err).Warn("Failed to read .env file")
	}

	cfg := &Config{
		ServerPort:        getEnv("PORT", "5000"),
		ReadHeaderTimeout: getEnvAsDuration("READ_HEADER_TIMEOUT", 10*time.Second),
		IdleTimeout:       getEnvAsDuration("IDLE_TIMEOUT", 60*time.Second),
		ShutdownTimeout:   getEnvAsDuration("SHUTDOWN_TIMEOUT", 30*time.Second),
		MaxConcurrent:     getEnvAsInt("MAX_CONCURRENT_REQUESTS", 4),
		Debug:             getEnvAsBool("DEBUG", false),
		Version:           getEnv("VERSION", "1.0.0"),

		LogDir:    getEnv("LOG_DIR", "./logs"),
		LogLevel:  getEnv("LOG_LEVEL", "info"),
		StaticDir: getEnv("STATIC_DIR", "./static"),

		CORS: CORSConfig{
			Enabled:          getEnvAsBool("CORS_ENABLED", true),
			AllowedOrigins:   getEnvAsStringSlice("CORS_ALLOWED_ORIGINS", []string{"*"}),
			AllowedMethods:   getEnvAsStringSlice("CORS_ALLOWED_METHODS", []string{"GET", "POST", "OPTIONS"}),
			AllowedHeaders:   getEnvAsStringSlice("CORS_ALLOWED_HEADERS", []string{"Content-Type"}),
			AllowCredentials: getEnvAsBool("CORS_ALLOW_CREDENTIALS", false),
			MaxAge:           getEnvAsInt("CORS_MAX_AGE", 86400),
		},

		RateLimit: RateLimitConfig{
			Enabled:           getEnvAsBool("RATE_LIMIT_ENABLED", false),
			RequestsPerMinute: getEnvAsInt("RATE_LIMIT_RPM", 60),
			BurstSize:         getEnvAsInt("RATE_LIMIT_BURST", 10),
		},

		Media: MediaConfig{
			UploadDir:       getEnv("UPLOAD_DIR", "temp_uploads"),
			DownloadDir:     getEnv("YOUTUBE_DIR", "youtube_downloads"),
			YtDlpPath:       getEnv("YTDLP_PATH", "yt-dlp"),
			FFmpegPath:      getEnv("FFMPEG_PATH", "ffmpeg"),
			CleanupSchedule: getEnv("CLEANUP_SCHEDULE", "@every 10m"),
			StaleAfter:      getEnvAsDuration("CLEANUP_STALE_AFTER", time.Hour),
		},

		AI: AIConfig{
			BaseURL:            getEnv("AI_BASE_URL", ""),
			TranscriptionModel: getEnv("TRANSCRIPTION_MODEL", "whisper-1"),
			ChatModel:          getEnv("CHAT_MODEL", "gpt-4.5-preview"),
			ImageModel:         getEnv("IMAGE_MODEL", "gpt-image-1"),
			DefaultLanguage:    getEnv("DEFAULT_LANGUAGE", "it"),
		},
	}

	if err := cfg.Validate(); err != nil {
		return nil, err
	}

	return cfg, nil
}

func (c *Config) Validate() error {
	if err := validatePaths(c); err != nil {
		return err
	}

	if c.ServerPort == "" {
		return fmt.Errorf("server port is required")
	}
	if c.MaxConcurrent <= 0 {
		return fmt.Errorf("max concurrent requests must be positive")
	}
	if c.Media.StaleAfter <= 0 {
		return fmt.Errorf("cleanup stale age must be positive")
	}
	if c.RateLimit.Enabled && c.RateLimit.RequestsPerMinute <= 0 {
		return fmt.Errorf("rate limit must be positive when enabled")
	}
	if c.AI.TranscriptionModel == "" || c.AI.ChatModel == "" || c.AI.ImageModel == "" {
		return fmt.Errorf("model names are required")
	}
	if _, err := logrus.ParseLevel(c.LogLevel); err != nil {
		return fmt.Errorf("invalid log level %q: %w", c.LogLevel, err)
	}
	return nil
}

func validatePaths(c *Config) error {
	paths := []struct {
		path string
		name string
	}{
		{c.LogDir, "log directory"},
		{c.Media.UploadDir, "upload directory"},
		{c.Media.DownloadDir, "download directory"},
	}

	for _, p := range paths {
		if p.path == "" {
			return fmt.Errorf("%s is required", p.name)
		}
		if err := os.MkdirAll(p.path, 0755); err != nil {
			return fmt.Errorf("failed to create %s: %w", p.name, err)
		}
	}

	return nil
}

// Helper functions for reading environment variables
func getEnv(key, defaultValue string) string {
	if value, exists := os.LookupEnv(key); exists {
		return value
	}
	return defaultValue
}

func getEnvAsInt(key string, defaultValue int) int {
	if value, exists := os.LookupEnv(key); exists {
		if intVal, err := strconv.Atoi(value); err == nil {
			return intVal
		}
		logrus.WithFields(logrus.Fields{
			"key":          key,
			"value":        value,
			"defaultValue": defaultValue,
		}).Warn("Invalid integer, using default")
	}
	return defaultValue
}

func getEnvAsBool(key string, defaultValue bool) bool {
	if value, exists := os.LookupEnv(key); exists {
		if boolVal, err := strconv.ParseBool(value); err == nil {
			return boolVal
		}
		logrus.WithFields(logrus.Fields{
			"key":          key,
			"value":        value,
			"defaultValue": defaultValue,
		}).Warn("Invalid boolean, using default")
	}
	return defaultValue
}

func getEnvAsDuration(key string, defaultValue time.Duration) time.Duration {
	if value, exists := os.LookupEnv(key); exists {
		if duration, err := time.ParseDuration(value); err == nil {
			return duration
		}
		logrus.WithFields(logrus.Fields{
			"key":          key,
			"value":        value,
			"defaultValue": defaultValue,
		}).Warn("Invalid duration, using default")
	}
	return defaultValue
}

func getEnvAsStringSlice(key string, defaultValue []string) []string {
	if value, exists := os.LookupEnv(key); exists {
		if value = strings.TrimSpace(value); value != "" {
			return strings.Split(value, ",")
		}
	}
	return defaultValue
}
