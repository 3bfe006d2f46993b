package llm

import (
	"context"
	"fmt"
	"log"
	"strings"
	"time"

	"github.com/getsentry/sentry-go"
	"github.com/openai/openai-go"
	"github.com/openai/openai-go/option"
	"github.com/openai/openai-go/responses"
	"github.com/openai/openai-go/shared"
)

const (
	// Role constants
	userRole       = "user"
	developerRole  = "developer"
	maxOutputTrunc = 200
	mcpCallType    = "mcp_call"

	// Reasoning effort levels
	reasoningNone    = "none" // GPT-5.2 default - lowest latency
	reasoningMinimal = "minimal"
	reasoningLow     = "low"
	reasoningMedium  = "medium"
	reasoningHigh    = "high"
	reasoningXHigh   = "xhigh"
	reasoningMin     = "min"
	reasoningMed     = "med"

	// Provider name
	providerNameOpenAI = "openai"

	// Logging limits
	maxArgsLogLength       = 100
	maxLogEventCountOpenAI = 5
	streamHeartbeatEvery   = 50
)

// modelsWithReasoning lists the models that accept a reasoning parameter.
// Models like gpt-4.1-mini do NOT support it.
var modelsWithReasoning = map[string]bool{
	"gpt-5":        true,
	"gpt-5-mini":   true,
	"gpt-5-nano":   true,
	"gpt-5.1":      true,
	"gpt-5.1-mini": true,
	"gpt-5.1-nano": true,
	"gpt-5.2":      true,
	"gpt-5.2-mini": true,
	"gpt-5.2-nano": true,
	"gpt-5.2-pro":  true,
}

// OpenAIProvider implements the Provider interface using OpenAI's Responses API
type OpenAIProvider struct {
	client *openai.Client
}

// NewOpenAIProvider creates a new OpenAI provider
func NewOpenAIProvider(apiKey string) *OpenAIProvider {
	client := openai.NewClient(option.WithAPIKey(apiKey))
	return &OpenAIProvider{
		client: &client,
	}
}

// Name returns the provider name
func (p *OpenAIProvider) Name() string {
	return providerNameOpenAI
}

// Generate implements non-streaming generation using OpenAI's Responses API
func (p *OpenAIProvider) Generate(ctx context.Context, request *GenerationRequest) (*GenerationResponse, error) {
	startTime := time.Now()
	log.Printf("🎬 OPENAI GENERATION REQUEST STARTED (Model: %s)", request.Model)

	// Start Sentry transaction
	transaction := sentry.StartTransaction(ctx, "openai.generate")
	defer transaction.Finish()

	transaction.SetTag("model", request.Model)
	transaction.SetTag("provider", providerNameOpenAI)
	transaction.SetTag("mcp_enabled", fmt.Sprintf("%t", request.MCPConfig != nil))

	params := p.buildRequestParams(request)

	span := transaction.StartChild("openai.api_call")
	apiStartTime := time.Now()
	resp, err := p.client.Responses.New(ctx, params)
	apiDuration := time.Since(apiStartTime)
	span.Finish()

	if err != nil {
		log.Printf("❌ OPENAI REQUEST FAILED after %v: %v", apiDuration, err)
		transaction.SetTag("success", "false")
		sentry.CaptureException(err)
		return nil, fmt.Errorf("openai request failed: %w", err)
	}

	log.Printf("⏱️  OPENAI API CALL COMPLETED in %v", apiDuration)

	return p.processResponse(resp, request, startTime, transaction)
}

// processResponse routes response to appropriate processor
func (p *OpenAIProvider) processResponse(
	resp *responses.Response,
	request *GenerationRequest,
	startTime time.Time,
	transaction *sentry.Span,
) (*GenerationResponse, error) {
	var (
		result *GenerationResponse
		err    error
	)
	if request.OutputSchema != nil {
		result, err = p.processResponseWithJSONSchema(resp, startTime, transaction)
	} else {
		result, err = p.processResponsePlainText(resp, startTime, transaction)
		transaction.SetTag("output_type", "plain_text")
	}
	if err != nil {
		transaction.SetTag("success", "false")
		return nil, err
	}

	mcpUsed, mcpCalls, mcpTools := p.analyzeMCPUsage(resp)
	if request.MCPConfig != nil {
		p.logMCPSummary(mcpUsed, mcpCalls, mcpTools)
	}
	result.MCPUsed = mcpUsed
	result.MCPCalls = mcpCalls
	result.MCPTools = mcpTools

	transaction.SetTag("success", "true")
	return result, nil
}

// buildRequestParams converts GenerationRequest to OpenAI-specific ResponseNewParams
func (p *OpenAIProvider) buildRequestParams(request *GenerationRequest) responses.ResponseNewParams {
	// Convert input_array to OpenAI messages format
	inputItems := responses.ResponseInputParam{}

	for _, item := range request.InputArray {
		role, hasRole := item["role"].(string)
		content, hasContent := item["content"].(string)

		if !hasRole || !hasContent {
			log.Printf("⚠️  Skipping invalid input item (missing role or content): %v", item)
			continue
		}

		var roleEnum responses.EasyInputMessageRole
		switch role {
		case developerRole:
			roleEnum = responses.EasyInputMessageRoleDeveloper
		default:
			roleEnum = responses.EasyInputMessageRoleUser
		}

		inputItems = append(inputItems,
			responses.ResponseInputItemParamOfMessage(content, roleEnum),
		)
	}

	params := responses.ResponseNewParams{
		Model: request.Model,
		Input: responses.ResponseNewParamsInputUnion{
			OfInputItemList: inputItems,
		},
		Instructions:      openai.String(request.SystemPrompt),
		ParallelToolCalls: openai.Bool(true),
	}

	if modelsWithReasoning[request.Model] {
		params.Reasoning = shared.ReasoningParam{
			Effort: reasoningEffort(request.ReasoningMode),
		}
	}

	if request.OutputSchema != nil {
		params.Text = responses.ResponseTextConfigParam{
			Format: responses.ResponseFormatTextConfigParamOfJSONSchema(
				request.OutputSchema.Name,
				request.OutputSchema.Schema,
			),
		}
		log.Printf("📋 JSON SCHEMA CONFIGURED: %s", request.OutputSchema.Name)
	}

	// Add MCP tools if configured
	if request.MCPConfig != nil && request.MCPConfig.URL != "" {
		params.Tools = []responses.ToolUnionParam{
			{
				OfMcp: &responses.ToolMcpParam{
					ServerLabel: request.MCPConfig.Label,
					ServerURL:   request.MCPConfig.URL,
					RequireApproval: responses.ToolMcpRequireApprovalUnionParam{
						OfMcpToolApprovalFilter: &responses.ToolMcpRequireApprovalMcpToolApprovalFilterParam{
							Never: responses.ToolMcpRequireApprovalMcpToolApprovalFilterNeverParam{
								ToolNames: []string{}, // Empty = all tools never require approval
							},
						},
					},
				},
			},
		}
		log.Printf("🔗 MCP SERVER ENABLED: %s (label: %s)", request.MCPConfig.URL, request.MCPConfig.Label)
	}

	return params
}

// reasoningEffort maps a reasoning mode onto the API effort level
func reasoningEffort(mode string) shared.ReasoningEffort {
	switch mode {
	case reasoningMinimal, reasoningMin:
		return shared.ReasoningEffort(reasoningMinimal)
	case reasoningLow:
		return responses.ReasoningEffortLow
	case reasoningMedium, reasoningMed:
		return responses.ReasoningEffortMedium
	case reasoningHigh:
		return responses.ReasoningEffortHigh
	case reasoningXHigh:
		return shared.ReasoningEffort(reasoningXHigh)
	default:
		return shared.ReasoningEffort(reasoningNone)
	}
}

// extractAndCleanTextOutput extracts and cleans text output from response
func (p *OpenAIProvider) extractAndCleanTextOutput(resp *responses.Response) string {
	textOutput := resp.OutputText()
	if textOutput == "" {
		return ""
	}

	cleaned := StripCodeFence(textOutput)
	if cleaned != textOutput {
		log.Printf("🧹 Stripped markdown code blocks from output: %d -> %d chars", len(textOutput), len(cleaned))
	}
	return cleaned
}

// StripCodeFence removes a surrounding markdown code block from model output
func StripCodeFence(text string) string {
	cleaned := strings.TrimSpace(text)
	cleaned = strings.TrimPrefix(cleaned, "```json")
	cleaned = strings.TrimPrefix(cleaned, "```")
	cleaned = strings.TrimSuffix(cleaned, "```")
	return strings.TrimSpace(cleaned)
}

// processResponseWithJSONSchema extracts JSON output from OpenAI response when using JSON Schema
func (p *OpenAIProvider) processResponseWithJSONSchema(
	resp *responses.Response,
	startTime time.Time,
	transaction *sentry.Span,
) (*GenerationResponse, error) {
	span := transaction.StartChild("process_response_json")
	defer span.Finish()

	textOutput := p.extractAndCleanTextOutput(resp)
	log.Printf("📥 OPENAI JSON RESPONSE: output_length=%d, output_items=%d, tokens=%d",
		len(textOutput), len(resp.Output), resp.Usage.TotalTokens)

	if textOutput == "" {
		return nil, fmt.Errorf("openai response did not include any output text")
	}

	p.logUsageStats(resp.Usage)
	log.Printf("✅ OPENAI GENERATION COMPLETED in %v", time.Since(startTime))

	return &GenerationResponse{
		RawOutput: textOutput,
		Usage:     resp.Usage,
	}, nil
}

// processResponsePlainText extracts plain text output from OpenAI response (no schema)
func (p *OpenAIProvider) processResponsePlainText(
	resp *responses.Response,
	startTime time.Time,
	transaction *sentry.Span,
) (*GenerationResponse, error) {
	span := transaction.StartChild("process_response_plaintext")
	defer span.Finish()

	textOutput := p.extractAndCleanTextOutput(resp)
	log.Printf("📥 OPENAI PLAIN TEXT RESPONSE: output_length=%d, tokens=%d",
		len(textOutput), resp.Usage.TotalTokens)

	if textOutput == "" {
		return nil, fmt.Errorf("openai response did not include any output text")
	}

	p.logUsageStats(resp.Usage)
	log.Printf("✅ OPENAI PLAIN TEXT COMPLETED in %v", time.Since(startTime))

	return &GenerationResponse{
		RawOutput: textOutput,
		Usage:     resp.Usage,
	}, nil
}

// analyzeMCPUsage checks if MCP was used and returns usage details
func (p *OpenAIProvider) analyzeMCPUsage(resp *responses.Response) (bool, int, []string) {
	mcpCallCount := 0
	toolsUsed := make(map[string]bool)

	for _, outputItem := range resp.Output {
		if outputItem.Type != mcpCallType {
			continue
		}
		mcpCall := outputItem.AsMcpCall()
		mcpCallCount++
		p.logMCPToolCall(mcpCall)
		toolsUsed[mcpCall.Name] = true

		sentry.AddBreadcrumb(&sentry.Breadcrumb{
			Category: "mcp",
			Message:  fmt.Sprintf("MCP tool called: %s", mcpCall.Name),
			Level:    sentry.LevelInfo,
			Data: map[string]interface{}{
				"tool_name":     mcpCall.Name,
				"server_label":  mcpCall.ServerLabel,
				"has_output":    mcpCall.Output != "",
				"output_length": len(mcpCall.Output),
				"has_error":     mcpCall.Error != "",
			},
		})
	}

	uniqueTools := make([]string, 0, len(toolsUsed))
	for tool := range toolsUsed {
		uniqueTools = append(uniqueTools, tool)
	}
	return mcpCallCount > 0, mcpCallCount, uniqueTools
}

// logMCPToolCall logs details of an MCP tool call
func (p *OpenAIProvider) logMCPToolCall(mcpCall responses.ResponseOutputItemMcpCall) {
	log.Printf("   🛠️  MCP Tool Call: %s", mcpCall.Name)
	if mcpCall.Arguments != "" {
		log.Printf("     Arguments: %s", truncate(mcpCall.Arguments, maxArgsLogLength))
	}
	if mcpCall.Output != "" {
		log.Printf("     Output: %s", truncate(mcpCall.Output, maxOutputTrunc))
	}
	if mcpCall.Error != "" {
		log.Printf("     ⚠️  Error: %s", mcpCall.Error)
	}
}

// logUsageStats logs token usage statistics
func (p *OpenAIProvider) logUsageStats(usage responses.ResponseUsage) {
	log.Printf("📊 USAGE: input=%d, output=%d, reasoning=%d, total=%d",
		usage.InputTokens, usage.OutputTokens,
		usage.OutputTokensDetails.ReasoningTokens, usage.TotalTokens)
}

// logMCPSummary logs a summary of MCP usage
func (p *OpenAIProvider) logMCPSummary(mcpUsed bool, callCount int, tools []string) {
	if mcpUsed {
		log.Printf("🎯 MCP USAGE: %d calls to tools: %v", callCount, tools)
	} else {
		log.Printf("ℹ️  NO MCP USAGE in this generation")
	}
}

// truncate truncates a string to maxLen characters
func truncate(s string, maxLen int) string {
	if len(s) <= maxLen {
		return s
	}
	return s[:maxLen] + "..."
}

// GenerateStream implements streaming generation using OpenAI's Responses API
// It streams text chunks as they arrive from the LLM and calls the callback for each chunk
func (p *OpenAIProvider) GenerateStream(
	ctx context.Context,
	request *GenerationRequest,
	callback StreamCallback,
) (*GenerationResponse, error) {
	startTime := time.Now()
	log.Printf("🎬 OPENAI STREAMING GENERATION REQUEST STARTED (Model: %s)", request.Model)

	transaction := sentry.StartTransaction(ctx, "openai.generate_stream")
	defer transaction.Finish()

	transaction.SetTag("model", request.Model)
	transaction.SetTag("provider", providerNameOpenAI)
	transaction.SetTag("streaming", "true")

	params := p.buildRequestParams(request)

	send := func(event StreamEvent) {
		if callback != nil {
			_ = callback(event)
		}
	}
	send(StreamEvent{Type: "started", Message: "Starting generation..."})

	span := transaction.StartChild("openai.api_stream")
	stream := p.client.Responses.NewStreaming(ctx, params)
	defer stream.Close()

	var accumulated strings.Builder
	var finalResponse *responses.Response
	eventCount := 0

	for stream.Next() {
		event := stream.Current()
		eventCount++

		if eventCount <= maxLogEventCountOpenAI {
			log.Printf("📥 Stream event #%d: type=%s", eventCount, event.Type)
		}

		switch event.Type {
		case "response.output_text.delta":
			delta := event.AsResponseOutputTextDelta().Delta
			if delta != "" {
				accumulated.WriteString(delta)
				send(StreamEvent{
					Type:    "text_delta",
					Message: delta,
					Data: map[string]interface{}{
						"accumulated_length": accumulated.Len(),
					},
				})
			}

		case "response.output_text.done":
			log.Printf("✅ Text output complete: %d chars accumulated", accumulated.Len())

		case "response.completed":
			completedEvent := event.AsResponseCompleted()
			finalResponse = &completedEvent.Response

		case "response.failed":
			failedEvent := event.AsResponseFailed()
			log.Printf("❌ Stream failed: %s", failedEvent.Response.Error.Message)
			span.Finish()
			transaction.SetTag("success", "false")
			return nil, fmt.Errorf("streaming failed: %s", failedEvent.Response.Error.Message)

		case "error":
			errorEvent := event.AsError()
			log.Printf("❌ Stream error: %s", errorEvent.Message)
			span.Finish()
			transaction.SetTag("success", "false")
			return nil, fmt.Errorf("stream error: %s", errorEvent.Message)
		}

		if eventCount%streamHeartbeatEvery == 0 {
			send(StreamEvent{
				Type:    "heartbeat",
				Message: "Processing...",
				Data: map[string]interface{}{
					"events_received": eventCount,
					"elapsed_seconds": int(time.Since(startTime).Seconds()),
				},
			})
		}
	}

	span.Finish()

	if err := stream.Err(); err != nil {
		log.Printf("❌ Stream error: %v", err)
		transaction.SetTag("success", "false")
		sentry.CaptureException(err)
		return nil, fmt.Errorf("stream error: %w", err)
	}

	output := StripCodeFence(accumulated.String())
	log.Printf("✅ OPENAI STREAMING COMPLETE: %d events, %d chars, %v duration",
		eventCount, len(output), time.Since(startTime))

	send(StreamEvent{
		Type:    "completed",
		Message: "Generation complete",
		Data: map[string]interface{}{
			"total_length": len(output),
			"event_count":  eventCount,
		},
	})

	response := &GenerationResponse{RawOutput: output}
	if finalResponse != nil {
		response.Usage = finalResponse.Usage
		response.MCPUsed, response.MCPCalls, response.MCPTools = p.analyzeMCPUsage(finalResponse)
		p.logUsageStats(finalResponse.Usage)
	}

	transaction.SetTag("success", "true")
	return response, nil
}
