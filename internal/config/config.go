package config

import (
	"os"
	"strconv"
	"time"
)

// Config holds the application configuration
// Note: This is a stateless configuration - nothing survives a request beyond
// the per-session files under WorkDir, so no database settings exist here.
type Config struct {
	// Environment
	Environment string
	Port        string

	// LLM API Keys
	GeminiAPIKey string // Google Gemini API key
	OpenAIAPIKey string // OpenAI API key (alternate provider)

	// Models
	MoodModel      string // Vision model for mood analysis
	RecommendModel string // Text model for song recommendation
	ImageModel     string // Image generation model

	// Working directories
	WorkDir   string // Per-request artifacts (uploads, audio, merged output)
	CookieDir string // Session cookie files

	// Media tooling
	YtdlpPath        string // yt-dlp binary
	FfmpegPath       string // ffmpeg binary
	CookieRefreshCmd string // login-and-export helper command (empty disables auto refresh)

	// Pipeline limits
	DownloadTimeout time.Duration // Per-attempt acquisition timeout
	RequestTimeout  time.Duration // Whole-pipeline deadline

	// Observability
	SentryDSN         string // Sentry DSN for error tracking
	LangfusePublicKey string // Langfuse public key
	LangfuseSecretKey string // Langfuse secret key
	LangfuseHost      string // Langfuse host URL (cloud or self-hosted)
	LangfuseEnabled   bool   // Feature flag for Langfuse
}

func Load() *Config {
	return &Config{
		Environment:       getEnv("ENVIRONMENT", "development"),
		Port:              getEnv("PORT", "8080"),
		GeminiAPIKey:      getEnv("GEMINI_API_KEY", ""),
		OpenAIAPIKey:      getEnv("OPENAI_API_KEY", ""),
		MoodModel:         getEnv("MOOD_MODEL", "gemini-2.5-flash"),
		RecommendModel:    getEnv("RECOMMEND_MODEL", "gemini-2.5-flash"),
		ImageModel:        getEnv("IMAGE_MODEL", "gemini-3-pro-image-preview"),
		WorkDir:           getEnv("WORK_DIR", "temp"),
		CookieDir:         getEnv("COOKIE_DIR", "cookies"),
		YtdlpPath:         getEnv("YTDLP_PATH", "yt-dlp"),
		FfmpegPath:        getEnv("FFMPEG_PATH", "/usr/bin/ffmpeg"),
		CookieRefreshCmd:  getEnv("COOKIE_REFRESH_CMD", ""),
		DownloadTimeout:   getDurationEnv("DOWNLOAD_TIMEOUT_SECONDS", 180) * time.Second,
		RequestTimeout:    getDurationEnv("REQUEST_TIMEOUT_SECONDS", 600) * time.Second,
		SentryDSN:         getEnv("SENTRY_DSN", ""),
		LangfusePublicKey: getEnv("LANGFUSE_PUBLIC_KEY", ""),
		LangfuseSecretKey: getEnv("LANGFUSE_SECRET_KEY", ""),
		LangfuseHost:      getEnv("LANGFUSE_HOST", "https://cloud.langfuse.com"),
		LangfuseEnabled:   getEnv("LANGFUSE_ENABLED", "false") == "true",
	}
}

func getEnv(key, defaultValue string) string {
	value := os.Getenv(key)
	if value != "" {
		return value
	}
	return defaultValue
}

func getDurationEnv(key string, defaultSeconds int) time.Duration {
	if raw := os.Getenv(key); raw != "" {
		if parsed, err := strconv.Atoi(raw); err == nil && parsed > 0 {
			return time.Duration(parsed)
		}
	}
	return time.Duration(defaultSeconds)
}
