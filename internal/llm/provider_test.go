package llm

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"google.golang.org/genai"
)

// MockProvider is a test implementation of the Provider interface
type MockProvider struct {
	name               string
	generateFunc       func(ctx context.Context, request *GenerationRequest) (*GenerationResponse, error)
	generateStreamFunc func(ctx context.Context, request *GenerationRequest, callback StreamCallback) (*GenerationResponse, error)
}

func (m *MockProvider) Name() string {
	return m.name
}

func (m *MockProvider) Generate(ctx context.Context, request *GenerationRequest) (*GenerationResponse, error) {
	if m.generateFunc != nil {
		return m.generateFunc(ctx, request)
	}
	return &GenerationResponse{}, nil
}

func (m *MockProvider) GenerateStream(
	ctx context.Context, request *GenerationRequest, callback StreamCallback,
) (*GenerationResponse, error) {
	if m.generateStreamFunc != nil {
		return m.generateStreamFunc(ctx, request, callback)
	}
	return &GenerationResponse{}, nil
}

func TestProviderInterface(t *testing.T) {
	mock := &MockProvider{
		name: "mock",
	}

	assert.Equal(t, "mock", mock.Name())
}

func TestGenerationRequest(t *testing.T) {
	req := &GenerationRequest{
		Model:         "test-model",
		ReasoningMode: "medium",
		SystemPrompt:  "test prompt",
		InputArray: []map[string]any{
			{"role": "user", "content": "test"},
		},
		OutputSchema: &OutputSchema{
			Name:        "TestSchema",
			Description: "Test schema",
			Schema: map[string]any{
				"type": "object",
			},
		},
	}

	assert.Equal(t, "test-model", req.Model)
	assert.Equal(t, "medium", req.ReasoningMode)
	assert.NotNil(t, req.OutputSchema)
}

func TestGenerationResponse(t *testing.T) {
	resp := &GenerationResponse{
		MCPUsed:  true,
		MCPCalls: 3,
		MCPTools: []string{"search_photos", "search_moods"},
	}

	assert.True(t, resp.MCPUsed)
	assert.Equal(t, 3, resp.MCPCalls)
	assert.Len(t, resp.MCPTools, 2)
}

func TestMockProviderGenerate(t *testing.T) {
	callCount := 0
	mock := &MockProvider{
		name: "test",
		generateFunc: func(_ context.Context, request *GenerationRequest) (*GenerationResponse, error) {
			callCount++
			require.Equal(t, "test-model", request.Model)
			return &GenerationResponse{RawOutput: `{"passed":true}`}, nil
		},
	}

	req := &GenerationRequest{
		Model: "test-model",
	}

	resp, err := mock.Generate(context.Background(), req)
	require.NoError(t, err)
	require.NotNil(t, resp)
	assert.Equal(t, 1, callCount)
	assert.JSONEq(t, `{"passed":true}`, resp.RawOutput)
}

func TestProviderFactory(t *testing.T) {
	tests := []struct {
		name      string
		openaiKey string
		geminiKey string
		model     string
		provider  string
		wantName  string
		wantErr   bool
	}{
		{name: "explicit openai", openaiKey: "k", provider: "openai", wantName: "openai"},
		{name: "explicit provider is case insensitive", openaiKey: "k", provider: "OpenAI", wantName: "openai"},
		{name: "gpt model infers openai", openaiKey: "k", model: "gpt-5-mini", wantName: "openai"},
		{name: "unknown model defaults to openai", openaiKey: "k", model: "mystery", wantName: "openai"},
		{name: "missing openai key", model: "gpt-5-mini", wantErr: true},
		{name: "missing gemini key", openaiKey: "k", provider: "gemini", wantErr: true},
		{name: "gemini model without key", openaiKey: "k", model: "gemini-2.5-flash", wantErr: true},
		{name: "unknown provider", openaiKey: "k", provider: "anthropic", wantErr: true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			factory := NewProviderFactory(tt.openaiKey, tt.geminiKey)
			p, err := factory.GetProvider(context.Background(), tt.model, tt.provider)
			if tt.wantErr {
				assert.Error(t, err)
				return
			}
			require.NoError(t, err)
			assert.Equal(t, tt.wantName, p.Name())
		})
	}
}

func TestStripCodeFence(t *testing.T) {
	tests := []struct {
		in   string
		want string
	}{
		{`{"a":1}`, `{"a":1}`},
		{"```json\n{\"a\":1}\n```", `{"a":1}`},
		{"```\n{\"a\":1}\n```", `{"a":1}`},
		{"  \n```json {\"a\":1}```  ", `{"a":1}`},
	}
	for _, tt := range tests {
		assert.Equal(t, tt.want, StripCodeFence(tt.in))
	}
}

func TestStreamCallback(t *testing.T) {
	callCount := 0
	callback := func(event StreamEvent) error {
		callCount++
		assert.NotEmpty(t, event.Type)
		return nil
	}

	err := callback(StreamEvent{Type: "test", Message: "test message"})
	assert.NoError(t, err)
	assert.Equal(t, 1, callCount)
}

func TestExtractTokenUsage(t *testing.T) {
	tests := []struct {
		name  string
		usage any
		want  TokenUsage
	}{
		{
			name: "gemini metadata",
			usage: &genai.GenerateContentResponseUsageMetadata{
				PromptTokenCount:     100,
				CandidatesTokenCount: 40,
				TotalTokenCount:      150,
				ThoughtsTokenCount:   10,
			},
			want: TokenUsage{Input: 100, Output: 40, Total: 150, Reasoning: 10},
		},
		{
			name:  "nil gemini metadata",
			usage: (*genai.GenerateContentResponseUsageMetadata)(nil),
			want:  TokenUsage{},
		},
		{
			name:  "map from a mock",
			usage: map[string]any{"input_tokens": 5, "output_tokens": float64(3), "total_tokens": int64(8)},
			want:  TokenUsage{Input: 5, Output: 3, Total: 8},
		},
		{
			name:  "unknown",
			usage: "nope",
			want:  TokenUsage{},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, ExtractTokenUsage(tt.usage))
		})
	}
}

func TestTokenUsageMap(t *testing.T) {
	m := TokenUsage{Input: 1, Output: 2, Total: 3}.Map()
	assert.Equal(t, 3, m["total_tokens"])
	assert.Equal(t, 0, m["reasoning_tokens"])
}

func TestMCPLabel(t *testing.T) {
	tests := []struct {
		url  string
		want string
	}{
		{"https://mcp.example.com/mcp", "mcp-example-com"},
		{"http://localhost:8931/sse", "localhost_8931"},
		{"http://127.0.0.1:9000", "mcp-127-0-0-1_9000"},
		{"not a url", "mcp-server"},
		{"", "mcp-server"},
	}
	for _, tt := range tests {
		t.Run(tt.url, func(t *testing.T) {
			assert.Equal(t, tt.want, MCPLabel(tt.url))
		})
	}
}
