package llm

import (
	"context"
	"time"

	"github.com/shopforge/backend/internal/domain/ai"
	"github.com/shopforge/backend/internal/infrastructure/config"
	"github.com/tidwall/gjson"
)

const (
	ProviderOpenAI       = "openai"
	defaultOpenAIBaseURL = "https://api.openai.com/v1"
	defaultOpenAIModel   = "gpt-4o-mini"
)

// OpenAIProvider speaks the OpenAI-compatible chat completions API
type OpenAIProvider struct {
	httpProvider
	apiKey string
}

// NewOpenAIProvider creates an OpenAI-compatible adapter
func NewOpenAIProvider(cfg config.LLMProviderConfig, timeout time.Duration) *OpenAIProvider {
	baseURL := cfg.BaseURL
	if baseURL == "" {
		baseURL = defaultOpenAIBaseURL
	}
	model := cfg.Model
	if model == "" {
		model = defaultOpenAIModel
	}
	return &OpenAIProvider{
		httpProvider: newHTTPProvider(ProviderOpenAI, baseURL, model, timeout),
		apiKey:       cfg.APIKey,
	}
}

func (p *OpenAIProvider) Name() string { return ProviderOpenAI }

type openAIRequest struct {
	Model       string       `json:"model"`
	Messages    []ai.Message `json:"messages"`
	MaxTokens   int          `json:"max_tokens,omitempty"`
	Temperature float64      `json:"temperature"`
}

// Generate sends a chat completion. The system prompt becomes the first message.
func (p *OpenAIProvider) Generate(ctx context.Context, req ai.GenerateRequest) (*ai.GenerateResult, error) {
	messages := make([]ai.Message, 0, len(req.Messages)+1)
	if req.System != "" {
		messages = append(messages, ai.Message{Role: "system", Content: req.System})
	}
	messages = append(messages, req.Messages...)

	raw, err := p.post(ctx, "/chat/completions", openAIRequest{
		Model:       p.model,
		Messages:    messages,
		MaxTokens:   req.MaxTokens,
		Temperature: req.Temperature,
	}, map[string]string{"Authorization": "Bearer " + p.apiKey})
	if err != nil {
		return nil, err
	}

	text := gjson.GetBytes(raw, "choices.0.message.content").String()
	if text == "" {
		return nil, ErrEmptyCompletion
	}
	model := gjson.GetBytes(raw, "model").String()
	if model == "" {
		model = p.model
	}
	return &ai.GenerateResult{
		Provider:     ProviderOpenAI,
		Model:        model,
		Text:         text,
		InputTokens:  int(gjson.GetBytes(raw, "usage.prompt_tokens").Int()),
		OutputTokens: int(gjson.GetBytes(raw, "usage.completion_tokens").Int()),
	}, nil
}

var _ ai.TextGenerator = (*OpenAIProvider)(nil)
