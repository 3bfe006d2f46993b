package llm

import (
	"context"
	"fmt"
	"log"
	"strings"
	"time"

	"github.com/getsentry/sentry-go"
	"google.golang.org/genai"
)

const (
	providerNameGemini = "gemini"
	mimeTypeJSON       = "application/json"
	maxLogEventCount   = 5
	geminiUserRole     = "user"
	geminiHeartbeat    = 10
)

// GeminiProvider implements the Provider interface using Google's Gemini API
type GeminiProvider struct {
	client *genai.Client
}

// NewGeminiProvider creates a new Gemini provider
func NewGeminiProvider(ctx context.Context, apiKey string) (*GeminiProvider, error) {
	client, err := genai.NewClient(ctx, &genai.ClientConfig{
		APIKey:  apiKey,
		Backend: genai.BackendGeminiAPI,
	})
	if err != nil {
		return nil, fmt.Errorf("failed to create Gemini client: %w", err)
	}

	return &GeminiProvider{
		client: client,
	}, nil
}

// Name returns the provider name
func (p *GeminiProvider) Name() string {
	return providerNameGemini
}

// Generate implements non-streaming generation using Gemini's API
func (p *GeminiProvider) Generate(ctx context.Context, request *GenerationRequest) (*GenerationResponse, error) {
	startTime := time.Now()
	log.Printf("🎬 GEMINI GENERATION REQUEST STARTED (Model: %s)", request.Model)

	transaction := sentry.StartTransaction(ctx, "gemini.generate")
	defer transaction.Finish()

	transaction.SetTag("model", request.Model)
	transaction.SetTag("provider", providerNameGemini)

	contents := p.buildGeminiContents(request.InputArray)
	config := p.buildConfig(request)

	span := transaction.StartChild("gemini.api_call")
	apiStartTime := time.Now()
	result, err := p.client.Models.GenerateContent(ctx, request.Model, contents, config)
	apiDuration := time.Since(apiStartTime)
	span.Finish()

	if err != nil {
		log.Printf("❌ GEMINI REQUEST FAILED after %v: %v", apiDuration, err)
		transaction.SetTag("success", "false")
		sentry.CaptureException(err)
		return nil, fmt.Errorf("gemini request failed: %w", err)
	}

	log.Printf("⏱️  GEMINI API CALL COMPLETED in %v", apiDuration)

	response, err := p.processGeminiResponse(result, startTime, transaction)
	if err != nil {
		transaction.SetTag("success", "false")
		return nil, err
	}

	transaction.SetTag("success", "true")
	return response, nil
}

// GenerateStream implements streaming generation for Gemini
func (p *GeminiProvider) GenerateStream(
	ctx context.Context, request *GenerationRequest, callback StreamCallback,
) (*GenerationResponse, error) {
	startTime := time.Now()
	log.Printf("🎬 GEMINI STREAMING GENERATION REQUEST STARTED (Model: %s)", request.Model)

	transaction := sentry.StartTransaction(ctx, "gemini.generate_stream")
	defer transaction.Finish()

	transaction.SetTag("model", request.Model)
	transaction.SetTag("provider", providerNameGemini)
	transaction.SetTag("streaming", "true")

	contents := p.buildGeminiContents(request.InputArray)
	config := p.buildConfig(request)

	iter := p.client.Models.GenerateContentStream(ctx, request.Model, contents, config)

	response, err := p.processGeminiStream(iter, callback, startTime)
	if err != nil {
		transaction.SetTag("success", "false")
		sentry.CaptureException(err)
		return nil, err
	}

	transaction.SetTag("success", "true")
	log.Printf("✅ GEMINI STREAMING GENERATION COMPLETED in %v", time.Since(startTime))

	return response, nil
}

// buildConfig sets the system instruction and, when present, the response schema
func (p *GeminiProvider) buildConfig(request *GenerationRequest) *genai.GenerateContentConfig {
	config := &genai.GenerateContentConfig{
		SystemInstruction: &genai.Content{
			Parts: []*genai.Part{{Text: request.SystemPrompt}},
		},
	}
	if request.OutputSchema != nil {
		config.ResponseMIMEType = mimeTypeJSON
		config.ResponseSchema = convertSchemaToGemini(request.OutputSchema.Schema)
	}
	return config
}

// buildGeminiContents converts our input array to Gemini Content format
func (p *GeminiProvider) buildGeminiContents(inputArray []map[string]any) []*genai.Content {
	var contents []*genai.Content

	for _, item := range inputArray {
		_, hasRole := item["role"].(string)
		content, hasContent := item["content"].(string)

		if !hasRole || !hasContent {
			log.Printf("⚠️  Skipping invalid input item (missing role or content): %v", item)
			continue
		}

		// Gemini only knows "user" and "model"; developer messages go as user
		contents = append(contents, &genai.Content{
			Role:  geminiUserRole,
			Parts: []*genai.Part{{Text: content}},
		})
	}

	return contents
}

// convertSchemaToGemini converts a JSON schema map into Gemini's schema type.
// Union types such as ["number","null"] become a nullable schema of the
// non-null type. additionalProperties has no Gemini equivalent and is dropped.
func convertSchemaToGemini(schema map[string]any) *genai.Schema {
	if schema == nil {
		return nil
	}

	out := &genai.Schema{}
	switch t := schema["type"].(type) {
	case string:
		out.Type = geminiType(t)
	case []any:
		for _, v := range t {
			name, _ := v.(string)
			if name == "null" {
				nullable := true
				out.Nullable = &nullable
				continue
			}
			out.Type = geminiType(name)
		}
	case []string:
		for _, name := range t {
			if name == "null" {
				nullable := true
				out.Nullable = &nullable
				continue
			}
			out.Type = geminiType(name)
		}
	}

	if desc, ok := schema["description"].(string); ok {
		out.Description = desc
	}
	out.Enum = stringList(schema["enum"])
	out.Required = stringList(schema["required"])
	if minimum, ok := toFloat(schema["minimum"]); ok {
		out.Minimum = &minimum
	}
	if maximum, ok := toFloat(schema["maximum"]); ok {
		out.Maximum = &maximum
	}

	if props, ok := schema["properties"].(map[string]any); ok {
		out.Properties = make(map[string]*genai.Schema, len(props))
		for name, raw := range props {
			if child, ok := raw.(map[string]any); ok {
				out.Properties[name] = convertSchemaToGemini(child)
			}
		}
	}
	if items, ok := schema["items"].(map[string]any); ok {
		out.Items = convertSchemaToGemini(items)
	}

	return out
}

func geminiType(name string) genai.Type {
	switch strings.ToLower(name) {
	case "object":
		return genai.TypeObject
	case "array":
		return genai.TypeArray
	case "integer":
		return genai.TypeInteger
	case "number":
		return genai.TypeNumber
	case "boolean":
		return genai.TypeBoolean
	default:
		return genai.TypeString
	}
}

func stringList(v any) []string {
	switch list := v.(type) {
	case []string:
		return append([]string(nil), list...)
	case []any:
		out := make([]string, 0, len(list))
		for _, item := range list {
			if s, ok := item.(string); ok {
				out = append(out, s)
			}
		}
		return out
	}
	return nil
}

func toFloat(v any) (float64, bool) {
	switch n := v.(type) {
	case float64:
		return n, true
	case int:
		return float64(n), true
	case int64:
		return float64(n), true
	}
	return 0, false
}

// processGeminiResponse converts Gemini response to our GenerationResponse
func (p *GeminiProvider) processGeminiResponse(
	result *genai.GenerateContentResponse,
	startTime time.Time,
	transaction *sentry.Span,
) (*GenerationResponse, error) {
	span := transaction.StartChild("process_response")
	defer span.Finish()

	if len(result.Candidates) == 0 || result.Candidates[0].Content == nil {
		return nil, fmt.Errorf("no candidates in Gemini response")
	}

	candidate := result.Candidates[0]
	if len(candidate.Content.Parts) == 0 {
		return nil, fmt.Errorf("no parts in Gemini response")
	}

	var text strings.Builder
	for _, part := range candidate.Content.Parts {
		text.WriteString(part.Text)
	}
	textOutput := StripCodeFence(text.String())
	log.Printf("📥 GEMINI RESPONSE: output_length=%d", len(textOutput))

	if textOutput == "" {
		return nil, fmt.Errorf("gemini response did not include any output text")
	}

	if result.UsageMetadata != nil {
		log.Printf("📊 GEMINI USAGE: input=%d, output=%d, total=%d",
			result.UsageMetadata.PromptTokenCount,
			result.UsageMetadata.CandidatesTokenCount,
			result.UsageMetadata.TotalTokenCount)
	}

	log.Printf("✅ GEMINI GENERATION COMPLETED in %v", time.Since(startTime))

	return &GenerationResponse{
		RawOutput: textOutput,
		Usage:     result.UsageMetadata,
		MCPTools:  []string{},
	}, nil
}

// processGeminiStream processes the Gemini streaming response
func (p *GeminiProvider) processGeminiStream(
	iter func(yield func(*genai.GenerateContentResponse, error) bool),
	callback StreamCallback,
	startTime time.Time,
) (*GenerationResponse, error) {
	var accumulated strings.Builder
	var finalUsage *genai.GenerateContentResponseUsageMetadata
	eventCount := 0

	send := func(event StreamEvent) {
		if callback != nil {
			_ = callback(event)
		}
	}
	send(StreamEvent{Type: "output_started", Message: "Generating output..."})

	for chunk, err := range iter {
		if err != nil {
			log.Printf("❌ GEMINI STREAMING ERROR: %v", err)
			return nil, fmt.Errorf("gemini stream error: %w", err)
		}

		eventCount++

		if eventCount%geminiHeartbeat == 0 {
			send(StreamEvent{
				Type:    "heartbeat",
				Message: "Processing...",
				Data: map[string]any{
					"events_received": eventCount,
					"elapsed_seconds": int(time.Since(startTime).Seconds()),
				},
			})
		}

		if len(chunk.Candidates) > 0 && chunk.Candidates[0].Content != nil {
			for _, part := range chunk.Candidates[0].Content.Parts {
				accumulated.WriteString(part.Text)
				if part.Text != "" {
					send(StreamEvent{Type: "text_delta", Message: part.Text})
				}
			}
			if eventCount <= maxLogEventCount {
				log.Printf("✅ Gemini chunk #%d (total: %d chars)", eventCount, accumulated.Len())
			}
		}

		if chunk.UsageMetadata != nil {
			finalUsage = chunk.UsageMetadata
		}
	}

	output := StripCodeFence(accumulated.String())
	log.Printf("📦 Gemini stream complete - accumulated text: %d chars", len(output))
	if output == "" {
		return nil, fmt.Errorf("gemini stream did not include any output text")
	}

	send(StreamEvent{
		Type:    "completed",
		Message: "Generation complete",
		Data: map[string]any{
			"total_length": len(output),
			"event_count":  eventCount,
		},
	})

	return &GenerationResponse{
		RawOutput: output,
		Usage:     finalUsage,
		MCPTools:  []string{},
	}, nil
}
