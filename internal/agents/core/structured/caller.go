// Package structured makes one schema-constrained LLM call and decodes the
// JSON object it returns.
package structured

import (
	"context"
	"encoding/json"
	"fmt"
	"log"
	"time"

	"github.com/Conceptual-Machines/reel-director/internal/agents/core/config"
	"github.com/Conceptual-Machines/reel-director/internal/llm"
	"github.com/Conceptual-Machines/reel-director/internal/logger"
	"github.com/Conceptual-Machines/reel-director/internal/metrics"
	"github.com/Conceptual-Machines/reel-director/internal/observability"
	"github.com/Conceptual-Machines/reel-director/internal/prompt"
	"github.com/Conceptual-Machines/reel-director/internal/revision"
	"github.com/getsentry/sentry-go"
)

// Caller holds what every agent needs to talk to its model
type Caller struct {
	provider     llm.Provider
	name         string
	model        string
	reasoning    string
	mcpServerURL string
	systemPrompt string
	schema       *llm.OutputSchema
	builder      *prompt.Builder
	metrics      *metrics.SentryMetrics
	cloudwatch   *metrics.Client
}

// NewCaller builds the caller for one agent. A nil provider is resolved
// from cfg through the provider factory.
func NewCaller(cfg *config.Config, provider llm.Provider, name string, role prompt.Role, model string, schema *llm.OutputSchema) (*Caller, error) {
	if provider == nil {
		factory := llm.NewProviderFactory(cfg.OpenAIAPIKey, cfg.GeminiAPIKey)
		p, err := factory.GetProvider(context.Background(), model, cfg.Provider)
		if err != nil {
			return nil, fmt.Errorf("%s: %w", name, err)
		}
		provider = p
	}

	builder := prompt.NewPromptBuilder()
	systemPrompt, err := builder.BuildPrompt(role)
	if err != nil {
		return nil, fmt.Errorf("%s: %w", name, err)
	}

	return &Caller{
		provider:     provider,
		name:         name,
		model:        model,
		reasoning:    cfg.ReasoningMode,
		mcpServerURL: cfg.MCPServerURL,
		systemPrompt: systemPrompt,
		schema:       schema,
		builder:      builder,
		metrics:      metrics.NewSentryMetrics(),
		cloudwatch:   metrics.DefaultClient(),
	}, nil
}

// Name returns the agent name used in logs and transactions
func (c *Caller) Name() string {
	return c.name
}

// Model returns the model the caller runs on
func (c *Caller) Model() string {
	return c.model
}

// ProviderName returns the name of the underlying provider
func (c *Caller) ProviderName() string {
	return c.provider.Name()
}

// Call sends payload and notes to the model and returns the decoded JSON
// object. The result is not validated here.
func (c *Caller) Call(ctx context.Context, operation string, payload any, notes []string) (map[string]any, error) {
	startTime := time.Now()
	txName := fmt.Sprintf("%s.%s", c.name, operation)

	transaction := sentry.StartTransaction(ctx, txName)
	defer transaction.Finish()
	transaction.SetTag("model", c.model)
	transaction.SetTag("provider", c.provider.Name())
	transaction.SetData("notes", len(notes))
	ctx = transaction.Context()

	inputArray, err := c.builder.BuildInput(payload, notes)
	if err != nil {
		transaction.SetTag("success", "false")
		return nil, err
	}

	request := &llm.GenerationRequest{
		Model:         c.model,
		InputArray:    inputArray,
		ReasoningMode: c.reasoning,
		SystemPrompt:  c.systemPrompt,
		OutputSchema:  c.schema,
	}
	if c.mcpServerURL != "" {
		request.MCPConfig = &llm.MCPConfig{URL: c.mcpServerURL, Label: llm.MCPLabel(c.mcpServerURL)}
	}

	generation := observability.TraceFromContext(ctx).Generation(txName, map[string]interface{}{
		"agent": c.name,
		"notes": len(notes),
	})
	defer generation.Finish()

	log.Printf("🚀 %s REQUEST: %s model=%s, notes=%d", txName, c.provider.Name(), c.model, len(notes))

	resp, err := c.generate(ctx, txName, request)
	if err != nil {
		transaction.SetTag("success", "false")
		generation.SetLevel("ERROR")
		sentry.CaptureException(err)
		c.recordDuration(ctx, time.Since(startTime), false)
		return nil, fmt.Errorf("provider request failed: %w", err)
	}

	usage := llm.ExtractTokenUsage(resp.Usage)
	generation.LogCompletion(c.model, inputArray, resp.RawOutput, usage, map[string]interface{}{
		"mcp_used": resp.MCPUsed,
	})
	log.Printf("💰 %s: %d tokens (%d in, %d out), %s", txName, usage.Total, usage.Input, usage.Output,
		observability.FormatCost(observability.CalculateCost(c.model, usage)))
	c.metrics.RecordTokenUsage(ctx, c.model, usage.Total, usage.Input, usage.Output, usage.Reasoning)
	c.cloudwatch.RecordTokenUsage(c.model, usage.Total, usage.Input, usage.Output, usage.Reasoning)
	if c.mcpServerURL != "" {
		c.metrics.RecordMCPUsage(ctx, resp.MCPUsed, resp.MCPCalls)
		c.cloudwatch.RecordMCPUsage(resp.MCPUsed, resp.MCPCalls)
	}

	output, err := Decode(resp.RawOutput)
	if err != nil {
		transaction.SetTag("success", "false")
		generation.SetLevel("WARNING")
		c.recordDuration(ctx, time.Since(startTime), false)
		return nil, err
	}

	duration := time.Since(startTime)
	transaction.SetTag("success", "true")
	c.recordDuration(ctx, duration, true)
	logger.LogGenerationRequest(ctx, c.model, duration, usage.Map(), logger.Fields{
		"agent":     c.name,
		"operation": operation,
	})

	return output, nil
}

// Decode parses a model's raw output into a JSON object. Code fences are
// stripped first since some models wrap JSON in them despite the schema.
func Decode(raw string) (map[string]any, error) {
	text := llm.StripCodeFence(raw)
	if text == "" {
		return nil, fmt.Errorf("empty response from model")
	}
	var out map[string]any
	if err := json.Unmarshal([]byte(text), &out); err != nil {
		return nil, fmt.Errorf("response is not a JSON object: %w", err)
	}
	return out, nil
}

// generate streams when a run is listening for progress, so stream milestones
// reach the run's observers; otherwise it makes a plain call
func (c *Caller) generate(ctx context.Context, txName string, request *llm.GenerationRequest) (*llm.GenerationResponse, error) {
	if !revision.ProgressEnabled(ctx) {
		return c.provider.Generate(ctx, request)
	}
	return c.provider.GenerateStream(ctx, request, forwardProgress(ctx, txName))
}

// forwardProgress reports stream milestones as run progress. Text deltas
// are only counted.
func forwardProgress(ctx context.Context, txName string) llm.StreamCallback {
	chunks := 0
	return func(event llm.StreamEvent) error {
		switch event.Type {
		case "text_delta":
			chunks++
		case "heartbeat", "completed":
			revision.ReportProgress(ctx, fmt.Sprintf("%s: %s (%d chunks)", txName, event.Message, chunks))
		default:
			revision.ReportProgress(ctx, fmt.Sprintf("%s: %s", txName, event.Message))
		}
		return nil
	}
}

func (c *Caller) recordDuration(ctx context.Context, d time.Duration, success bool) {
	c.metrics.RecordGenerationDuration(ctx, d, success)
	c.cloudwatch.RecordGenerationDuration(d, success)
}
