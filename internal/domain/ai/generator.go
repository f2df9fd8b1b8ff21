package ai

import (
	"context"
)

// Message is one turn in a generation request
type Message struct {
	Role    string `json:"role"`
	Content string `json:"content"`
}

// GenerateRequest is a provider-neutral prompt
type GenerateRequest struct {
	System      string
	Messages    []Message
	MaxTokens   int
	Temperature float64
}

// GenerateResult is a provider-neutral completion
type GenerateResult struct {
	Provider     string
	Model        string
	Text         string
	InputTokens  int
	OutputTokens int
}

// TextGenerator is implemented by each LLM provider adapter
type TextGenerator interface {
	Name() string
	Generate(ctx context.Context, req GenerateRequest) (*GenerateResult, error)
}
