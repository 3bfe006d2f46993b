package config

import (
	"log"
	"os"
	"strconv"
	"time"
)

// Config holds the application configuration
type Config struct {
	// Environment
	Environment string
	Port        string

	// LLM API Keys
	OpenAIAPIKey string // OpenAI API key for GPT models
	GeminiAPIKey string // Google Gemini API key

	// LLM selection
	LLMProvider   string // "openai" or "gemini"; empty infers from the model name
	LLMModel      string // Model used by the producers
	ReviewModel   string // Model used by the director and narrative reviewers
	ReasoningMode string

	// MCP Server (optional)
	MCPServerURL string

	// Database
	DatabaseType string // "sqlite" or "postgres"
	DatabaseURL  string
	SQLitePath   string

	// Observability
	SentryDSN         string // Sentry DSN for error tracking
	LangfusePublicKey string // Langfuse public key
	LangfuseSecretKey string // Langfuse secret key
	LangfuseHost      string // Langfuse host URL (cloud or self-hosted)
	LangfuseEnabled   bool   // Feature flag for Langfuse

	// Auth mode
	// - "none": No auth (self-hosted, local dev)
	// - "gateway": Trust X-User-* headers from an upstream gateway
	// - "jwt": Verify HMAC bearer tokens signed with JWTSecret
	AuthMode  string
	JWTSecret string

	// Revision loops
	DirectorMaxRounds   int
	ScriptMaxRounds     int
	GenerationAttempts  int
	RenderExtraAttempts int
	ReviewAttempts      int
	HeartbeatInterval   time.Duration
	RunTimeout          time.Duration
	DurationEpsilon     float64

	// Output format
	VideoWidth  int
	VideoHeight int
	VideoFPS    int

	// Optional override for the note-routing vocabulary, hot reloaded on change
	NoteVocabularyPath string
}

func Load() *Config {
	return &Config{
		Environment:         getEnv("ENVIRONMENT", "development"),
		Port:                getEnv("PORT", "8080"),
		OpenAIAPIKey:        getEnv("OPENAI_API_KEY", ""),
		GeminiAPIKey:        getEnv("GEMINI_API_KEY", ""),
		LLMProvider:         getEnv("LLM_PROVIDER", ""),
		LLMModel:            getEnv("LLM_MODEL", "gpt-5.1"),
		ReviewModel:         getEnv("REVIEW_MODEL", "gpt-5.1"),
		ReasoningMode:       getEnv("REASONING_MODE", "low"),
		MCPServerURL:        getEnv("MCP_SERVER_URL", ""),
		DatabaseType:        getEnv("DATABASE_TYPE", "sqlite"),
		DatabaseURL:         getEnv("DATABASE_URL", ""),
		SQLitePath:          getEnv("SQLITE_PATH", "reel-director.db"),
		SentryDSN:           getEnv("SENTRY_DSN", ""),
		LangfusePublicKey:   getEnv("LANGFUSE_PUBLIC_KEY", ""),
		LangfuseSecretKey:   getEnv("LANGFUSE_SECRET_KEY", ""),
		LangfuseHost:        getEnv("LANGFUSE_HOST", "https://cloud.langfuse.com"),
		LangfuseEnabled:     getEnv("LANGFUSE_ENABLED", "false") == "true",
		AuthMode:            getEnv("AUTH_MODE", "none"), // Default to no auth for self-hosted
		JWTSecret:           getEnv("JWT_SECRET", ""),
		DirectorMaxRounds:   getEnvInt("DIRECTOR_MAX_ROUNDS", 3),
		ScriptMaxRounds:     getEnvInt("SCRIPT_MAX_ROUNDS", 3),
		GenerationAttempts:  getEnvInt("GENERATION_ATTEMPTS", 3),
		RenderExtraAttempts: getEnvInt("RENDER_EXTRA_ATTEMPTS", 2),
		ReviewAttempts:      getEnvInt("REVIEW_ATTEMPTS", 2),
		HeartbeatInterval:   getEnvDuration("HEARTBEAT_INTERVAL", 5*time.Second),
		RunTimeout:          getEnvDuration("RUN_TIMEOUT", 10*time.Minute),
		DurationEpsilon:     getEnvFloat("DURATION_EPSILON", 1e-6),
		VideoWidth:          getEnvInt("VIDEO_WIDTH", 1080),
		VideoHeight:         getEnvInt("VIDEO_HEIGHT", 1920),
		VideoFPS:            getEnvInt("VIDEO_FPS", 30),
		NoteVocabularyPath:  getEnv("NOTE_VOCABULARY_PATH", ""),
	}
}

func getEnv(key, defaultValue string) string {
	value := os.Getenv(key)
	if value != "" {
		return value
	}
	return defaultValue
}

func getEnvInt(key string, defaultValue int) int {
	value := os.Getenv(key)
	if value == "" {
		return defaultValue
	}
	n, err := strconv.Atoi(value)
	if err != nil {
		log.Printf("⚠️  Invalid %s=%q, using default %d", key, value, defaultValue)
		return defaultValue
	}
	return n
}

func getEnvFloat(key string, defaultValue float64) float64 {
	value := os.Getenv(key)
	if value == "" {
		return defaultValue
	}
	f, err := strconv.ParseFloat(value, 64)
	if err != nil {
		log.Printf("⚠️  Invalid %s=%q, using default %g", key, value, defaultValue)
		return defaultValue
	}
	return f
}

// getEnvDuration accepts Go durations ("90s") or a bare number of seconds
func getEnvDuration(key string, defaultValue time.Duration) time.Duration {
	value := os.Getenv(key)
	if value == "" {
		return defaultValue
	}
	if d, err := time.ParseDuration(value); err == nil {
		return d
	}
	if secs, err := strconv.Atoi(value); err == nil {
		return time.Duration(secs) * time.Second
	}
	log.Printf("⚠️  Invalid %s=%q, using default %v", key, value, defaultValue)
	return defaultValue
}

// IsGatewayMode returns true if running behind an authenticating gateway
func (c *Config) IsGatewayMode() bool {
	return c.AuthMode == "gateway"
}

// IsJWTMode returns true if bearer tokens are verified locally
func (c *Config) IsJWTMode() bool {
	return c.AuthMode == "jwt"
}

// IsProduction reports whether the service runs in production
func (c *Config) IsProduction() bool {
	return c.Environment == "production"
}
