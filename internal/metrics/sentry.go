package metrics

import (
	"context"
	"fmt"
	"net/http"
	"time"

	"github.com/getsentry/sentry-go"
)

const (
	// HTTP status code threshold for considering a request successful
	successStatusCodeThreshold = http.StatusBadRequest
)

// SentryMetrics handles custom metrics for Sentry
type SentryMetrics struct {
	enabled bool
}

// NewSentryMetrics creates a new Sentry metrics client
func NewSentryMetrics() *SentryMetrics {
	return &SentryMetrics{
		enabled: true, // Always enabled if Sentry is configured
	}
}

// RecordAPIRequest records API request metrics
func (m *SentryMetrics) RecordAPIRequest(ctx context.Context, endpoint string, statusCode int, duration time.Duration) {
	if !m.enabled {
		return
	}

	// Create a span for API request tracking using the request context
	span := sentry.StartSpan(ctx, "api.request")
	defer span.Finish()

	// Set span tags
	span.SetTag("endpoint", endpoint)
	span.SetTag("status_code", fmt.Sprintf("%d", statusCode))
	span.SetTag("success", fmt.Sprintf("%t", statusCode < successStatusCodeThreshold))

	// Set span data
	span.SetData("duration_ms", duration.Milliseconds())
	span.SetData("endpoint", endpoint)
	span.SetData("status_code", statusCode)

	// Set span status based on response
	if statusCode < successStatusCodeThreshold {
		span.Status = sentry.SpanStatusOK
	} else {
		span.Status = sentry.SpanStatusInternalError
	}

	// Set span description
	span.Description = fmt.Sprintf("API Request: %s", endpoint)
}

// RecordTokenUsage records LLM token usage metrics
func (m *SentryMetrics) RecordTokenUsage(ctx context.Context, model string, totalTokens, inputTokens, outputTokens, reasoningTokens int) {
	if !m.enabled {
		return
	}

	// Token counts go on the enclosing transaction so they show up in its tag search
	if transaction := sentry.TransactionFromContext(ctx); transaction != nil {
		transaction.SetTag("llm.model", model)
		transaction.SetTag("llm.total_tokens", fmt.Sprintf("%d", totalTokens))
		transaction.SetData("llm.total_tokens", totalTokens)
		transaction.SetData("llm.input_tokens", inputTokens)
		transaction.SetData("llm.output_tokens", outputTokens)
		transaction.SetData("llm.reasoning_tokens", reasoningTokens)
	}

	span := sentry.StartSpan(ctx, "llm.token_usage")
	defer span.Finish()

	// Set span tags and data
	span.SetTag("model", model)
	span.SetTag("total_tokens", fmt.Sprintf("%d", totalTokens))
	span.SetTag("input_tokens", fmt.Sprintf("%d", inputTokens))
	span.SetTag("output_tokens", fmt.Sprintf("%d", outputTokens))
	span.SetTag("reasoning_tokens", fmt.Sprintf("%d", reasoningTokens))

	// Set data fields
	span.SetData("total_tokens", totalTokens)
	span.SetData("input_tokens", inputTokens)
	span.SetData("output_tokens", outputTokens)
	span.SetData("reasoning_tokens", reasoningTokens)

	span.Status = sentry.SpanStatusOK
	span.Description = fmt.Sprintf("Token Usage: %s", model)
}

// RecordMCPUsage records MCP server usage metrics
func (m *SentryMetrics) RecordMCPUsage(ctx context.Context, used bool, callCount int) {
	if !m.enabled {
		return
	}

	span := sentry.StartSpan(ctx, "mcp.usage")
	defer span.Finish()

	// Set span tags
	span.SetTag("mcp_used", fmt.Sprintf("%t", used))

	// Set span data
	span.SetData("used", used)
	span.SetData("call_count", callCount)

	span.Status = sentry.SpanStatusOK
	span.Description = fmt.Sprintf("MCP Usage: %t", used)
}

// RecordGenerationDuration records generation request duration
func (m *SentryMetrics) RecordGenerationDuration(ctx context.Context, duration time.Duration, success bool) {
	if !m.enabled {
		return
	}

	// Create a span for generation tracking using the request context
	span := sentry.StartSpan(ctx, "generation.request")
	defer span.Finish()

	// Set span tags
	span.SetTag("success", fmt.Sprintf("%t", success))

	// Set span data
	span.SetData("duration_ms", duration.Milliseconds())
	span.SetData("success", success)

	// Set span status
	if success {
		span.Status = sentry.SpanStatusOK
	} else {
		span.Status = sentry.SpanStatusInternalError
	}

	span.Description = fmt.Sprintf("Generation Request: %t", success)
}

// RecordRun records the outcome of one pipeline run on the run transaction
func (m *SentryMetrics) RecordRun(ctx context.Context, outcome RunOutcome) {
	if !m.enabled {
		return
	}

	span := sentry.StartSpan(ctx, "pipeline.run")
	defer span.Finish()

	span.SetTag("status", outcome.Status)
	span.SetTag("passed", fmt.Sprintf("%t", outcome.Passed))
	span.SetTag("audio_available", fmt.Sprintf("%t", outcome.AudioAvailable))

	span.SetData("duration_ms", outcome.Duration.Milliseconds())
	span.SetData("director_rounds", outcome.DirectorRounds)
	span.SetData("script_rounds", outcome.ScriptRounds)
	span.SetData("failed_attempts", outcome.FailedAttempts)
	span.SetData("failed_attempts_by_stage", outcome.FailedAttemptsByStage)
	span.SetData("heartbeats", outcome.Heartbeats)
	span.SetTag("music_degraded", fmt.Sprintf("%t", outcome.MusicDegraded))

	if outcome.Status == RunStatusFailed {
		span.Status = sentry.SpanStatusInternalError
	} else {
		span.Status = sentry.SpanStatusOK
	}
	span.Description = fmt.Sprintf("Pipeline Run: %s", outcome.Status)
}
