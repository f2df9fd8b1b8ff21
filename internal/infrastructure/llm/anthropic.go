package llm

import (
	"context"
	"strings"
	"time"

	"github.com/shopforge/backend/internal/domain/ai"
	"github.com/shopforge/backend/internal/infrastructure/config"
	"github.com/tidwall/gjson"
)

const (
	ProviderAnthropic       = "anthropic"
	defaultAnthropicBaseURL = "https://api.anthropic.com/v1"
	defaultAnthropicModel   = "claude-3-5-haiku-latest"
	defaultAnthropicVersion = "2023-06-01"

	// the messages API requires max_tokens
	defaultAnthropicMaxTokens = 512
)

// AnthropicProvider speaks the Anthropic-compatible messages API
type AnthropicProvider struct {
	httpProvider
	apiKey  string
	version string
}

// NewAnthropicProvider creates an Anthropic-compatible adapter
func NewAnthropicProvider(cfg config.LLMProviderConfig, timeout time.Duration) *AnthropicProvider {
	baseURL := cfg.BaseURL
	if baseURL == "" {
		baseURL = defaultAnthropicBaseURL
	}
	model := cfg.Model
	if model == "" {
		model = defaultAnthropicModel
	}
	version := cfg.Version
	if version == "" {
		version = defaultAnthropicVersion
	}
	return &AnthropicProvider{
		httpProvider: newHTTPProvider(ProviderAnthropic, baseURL, model, timeout),
		apiKey:       cfg.APIKey,
		version:      version,
	}
}

func (p *AnthropicProvider) Name() string { return ProviderAnthropic }

type anthropicRequest struct {
	Model       string       `json:"model"`
	System      string       `json:"system,omitempty"`
	Messages    []ai.Message `json:"messages"`
	MaxTokens   int          `json:"max_tokens"`
	Temperature float64      `json:"temperature"`
}

// Generate sends a messages request. System-role messages are folded into the system field.
func (p *AnthropicProvider) Generate(ctx context.Context, req ai.GenerateRequest) (*ai.GenerateResult, error) {
	system := req.System
	messages := make([]ai.Message, 0, len(req.Messages))
	for _, m := range req.Messages {
		if m.Role == "system" {
			system = strings.TrimSpace(system + "\n" + m.Content)
			continue
		}
		messages = append(messages, m)
	}
	maxTokens := req.MaxTokens
	if maxTokens <= 0 {
		maxTokens = defaultAnthropicMaxTokens
	}

	raw, err := p.post(ctx, "/messages", anthropicRequest{
		Model:       p.model,
		System:      system,
		Messages:    messages,
		MaxTokens:   maxTokens,
		Temperature: req.Temperature,
	}, map[string]string{
		"x-api-key":         p.apiKey,
		"anthropic-version": p.version,
	})
	if err != nil {
		return nil, err
	}

	text := gjson.GetBytes(raw, "content.0.text").String()
	if text == "" {
		return nil, ErrEmptyCompletion
	}
	model := gjson.GetBytes(raw, "model").String()
	if model == "" {
		model = p.model
	}
	return &ai.GenerateResult{
		Provider:     ProviderAnthropic,
		Model:        model,
		Text:         text,
		InputTokens:  int(gjson.GetBytes(raw, "usage.input_tokens").Int()),
		OutputTokens: int(gjson.GetBytes(raw, "usage.output_tokens").Int()),
	}, nil
}

var _ ai.TextGenerator = (*AnthropicProvider)(nil)
