// Package llmtest provides a scriptable llm.Provider for tests
package llmtest

import (
	"context"
	"encoding/json"
	"fmt"
	"sync"

	"github.com/Conceptual-Machines/reel-director/internal/llm"
)

// Provider replies from GenerateFunc, or from Responses in order when
// GenerateFunc is nil. Every request is kept for inspection.
type Provider struct {
	GenerateFunc func(ctx context.Context, request *llm.GenerationRequest) (*llm.GenerationResponse, error)
	Responses    []string

	mu       sync.Mutex
	requests []*llm.GenerationRequest
}

// JSON returns a Provider that always answers with v encoded as JSON
func JSON(v any) *Provider {
	raw, err := json.Marshal(v)
	if err != nil {
		panic(err)
	}
	return &Provider{Responses: []string{string(raw)}}
}

func (p *Provider) Name() string {
	return "fake"
}

func (p *Provider) Generate(ctx context.Context, request *llm.GenerationRequest) (*llm.GenerationResponse, error) {
	p.mu.Lock()
	p.requests = append(p.requests, request)
	n := len(p.requests)
	p.mu.Unlock()

	if p.GenerateFunc != nil {
		return p.GenerateFunc(ctx, request)
	}
	if len(p.Responses) == 0 {
		return nil, fmt.Errorf("no scripted response")
	}
	// The last response repeats once the script runs out
	i := n - 1
	if i >= len(p.Responses) {
		i = len(p.Responses) - 1
	}
	return &llm.GenerationResponse{
		RawOutput: p.Responses[i],
		Usage:     map[string]any{"input_tokens": 10, "output_tokens": 5, "total_tokens": 15},
	}, nil
}

// GenerateStream answers like Generate and replays a started, text_delta,
// completed sequence to callback
func (p *Provider) GenerateStream(ctx context.Context, request *llm.GenerationRequest, callback llm.StreamCallback) (*llm.GenerationResponse, error) {
	resp, err := p.Generate(ctx, request)
	if err != nil {
		return nil, err
	}
	if callback != nil {
		events := []llm.StreamEvent{
			{Type: "started", Message: "Starting generation..."},
			{Type: "text_delta", Message: resp.RawOutput},
			{Type: "completed", Message: "Generation complete"},
		}
		for _, event := range events {
			if err := callback(event); err != nil {
				return nil, err
			}
		}
	}
	return resp, nil
}

// Requests returns every request seen so far
func (p *Provider) Requests() []*llm.GenerationRequest {
	p.mu.Lock()
	defer p.mu.Unlock()
	return append([]*llm.GenerationRequest(nil), p.requests...)
}

// LastRequest returns the most recent request, or nil
func (p *Provider) LastRequest() *llm.GenerationRequest {
	p.mu.Lock()
	defer p.mu.Unlock()
	if len(p.requests) == 0 {
		return nil
	}
	return p.requests[len(p.requests)-1]
}
