package main

import (
	"context"
	"log"
	"time"

	"github.com/Conceptual-Machines/reel-director/internal/agents/core/coordination"
	"github.com/Conceptual-Machines/reel-director/internal/api"
	"github.com/Conceptual-Machines/reel-director/internal/config"
	"github.com/Conceptual-Machines/reel-director/internal/database"
	"github.com/Conceptual-Machines/reel-director/internal/metrics"
	"github.com/Conceptual-Machines/reel-director/internal/observability"
	"github.com/Conceptual-Machines/reel-director/internal/revision"
	"github.com/getsentry/sentry-go"
	"github.com/gin-gonic/gin"
	"github.com/joho/godotenv"
)

const (
	sentryFlushTimeout    = 2 * time.Second
	environmentProduction = "production"
)

// releaseVersion is set via ldflags during build
var releaseVersion = "dev"

// GetVersion returns the current release version
func GetVersion() string {
	return releaseVersion
}

func main() {
	// Load environment variables
	if err := godotenv.Load(); err != nil {
		log.Println("No .env file found, using environment variables")
	}

	// Load configuration
	cfg := config.Load()

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	// Initialize Sentry
	if cfg.SentryDSN != "" {
		if err := sentry.Init(sentry.ClientOptions{
			Dsn:              cfg.SentryDSN,
			Environment:      cfg.Environment,
			Release:          "reel-director@" + releaseVersion,        // Use embedded release version
			EnableTracing:    true,                                     // Enable tracing for spans
			TracesSampleRate: 1.0,                                      // 100% sampling for now, adjust based on volume
			EnableLogs:       true,                                     // Enable Sentry Logs feature
			Debug:            cfg.Environment != environmentProduction, // Enable debug in non-prod
			BeforeSend: func(event *sentry.Event, _ *sentry.EventHint) *sentry.Event {
				// Filter out sensitive data
				if event.Request != nil {
					event.Request.Headers = filterSensitiveHeaders(event.Request.Headers)
				}
				return event
			},
		}); err != nil {
			log.Printf("Failed to initialize Sentry: %v", err)
		} else {
			log.Printf("✅ Sentry initialized (environment: %s, release: %s)", cfg.Environment, releaseVersion)
			// Flush on shutdown
			defer sentry.Flush(sentryFlushTimeout)
		}
	} else {
		log.Println("⚠️  Sentry not configured (SENTRY_DSN not set)")
	}

	// Initialize database
	db, err := database.Connect(cfg)
	if err != nil {
		sentry.CaptureException(err)
		log.Fatal("Failed to connect to database:", err)
	}

	// Run migrations
	if err := database.Migrate(db); err != nil {
		sentry.CaptureException(err)
		log.Fatal("Failed to run migrations:", err)
	}
	store := database.NewRunStore(db)

	// Observability: Langfuse traces and CloudWatch metrics are both optional
	langfuse := observability.InitializeLangfuse(ctx, cfg)
	cloudwatch, err := metrics.NewClient(ctx, cfg.Environment)
	if err != nil {
		log.Printf("⚠️  CloudWatch metrics unavailable: %v", err)
	}
	metrics.SetDefaultClient(cloudwatch)

	// Note router, optionally with a hot-reloaded vocabulary file
	router := revision.NewNoteRouter(nil)
	if cfg.NoteVocabularyPath != "" {
		loadVocabulary(ctx, router, cfg.NoteVocabularyPath)
	}

	agents, err := coordination.NewAgents(coordination.AgentConfig(cfg), nil)
	if err != nil {
		sentry.CaptureException(err)
		log.Fatal("Failed to initialize agents:", err)
	}
	orchestrator := coordination.NewOrchestrator(agents, coordination.SettingsFromConfig(cfg),
		coordination.WithStore(store),
		coordination.WithRouter(router),
		coordination.WithCloudWatch(cloudwatch),
		coordination.WithLangfuse(langfuse),
	)

	switch {
	case cfg.IsJWTMode() && cfg.JWTSecret == "":
		log.Fatal("AUTH_MODE=jwt requires JWT_SECRET")
	case cfg.IsJWTMode():
		log.Println("🔐 Auth: verifying bearer tokens")
	case cfg.IsGatewayMode():
		log.Println("🔐 Auth: trusting gateway X-User-* headers")
	default:
		log.Println("🔓 Auth: disabled, runs are owned by anonymous")
	}

	// Set Gin mode
	if cfg.IsProduction() {
		gin.SetMode(gin.ReleaseMode)
	}

	// Initialize router
	engine := api.SetupRouter(cfg, api.Dependencies{
		Runner:  orchestrator,
		Store:   store,
		DB:      store,
		Version: GetVersion(),
	})

	log.Printf("🚀 Starting server on port %s", cfg.Port)
	if err := engine.Run(":" + cfg.Port); err != nil {
		sentry.CaptureException(err)
		log.Fatal("Failed to start server:", err)
	}
}

// loadVocabulary applies the vocabulary file and reloads it whenever it changes.
// A broken file keeps the vocabulary that was active before.
func loadVocabulary(ctx context.Context, router *revision.NoteRouter, path string) {
	if err := router.ReloadFile(path); err != nil {
		log.Printf("⚠️  Using the built-in note vocabulary: %v", err)
	}

	if err := config.WatchFile(ctx, path, func(changed string) {
		if err := router.ReloadFile(changed); err != nil {
			log.Printf("⚠️  Keeping previous note vocabulary: %v", err)
		}
	}); err != nil {
		log.Printf("⚠️  Vocabulary hot reload disabled: %v", err)
	}
}

func filterSensitiveHeaders(headers map[string]string) map[string]string {
	filtered := make(map[string]string)
	sensitiveKeys := map[string]bool{
		"authorization": true,
		"cookie":        true,
		"x-api-key":     true,
	}

	for k, v := range headers {
		if sensitiveKeys[k] {
			filtered[k] = "[REDACTED]"
		} else {
			filtered[k] = v
		}
	}
	return filtered
}
