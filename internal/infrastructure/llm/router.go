package llm

import (
	"context"
	"fmt"

	"github.com/shopforge/backend/internal/domain/ai"
	"github.com/shopforge/backend/internal/infrastructure/config"
	"go.uber.org/zap"
)

// Router sends requests to the primary provider and falls back to the
// secondary on transport, 5xx and 429 failures
type Router struct {
	primary   ai.TextGenerator
	secondary ai.TextGenerator
	logger    *zap.Logger
}

// NewRouter creates a router. secondary may be nil.
func NewRouter(primary, secondary ai.TextGenerator, logger *zap.Logger) *Router {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &Router{primary: primary, secondary: secondary, logger: logger.Named("llm")}
}

// NewRouterFromConfig wires the configured providers. A provider without an
// API key is skipped; if the primary has none the secondary is promoted.
func NewRouterFromConfig(cfg config.LLMConfig, logger *zap.Logger) (*Router, error) {
	var openai, anthropic ai.TextGenerator
	if cfg.OpenAI.APIKey != "" {
		openai = NewOpenAIProvider(cfg.OpenAI, cfg.Timeout)
	}
	if cfg.Anthropic.APIKey != "" {
		anthropic = NewAnthropicProvider(cfg.Anthropic, cfg.Timeout)
	}

	primary, secondary := openai, anthropic
	if cfg.Primary == ProviderAnthropic {
		primary, secondary = anthropic, openai
	}
	if primary == nil {
		primary, secondary = secondary, nil
	}
	if primary == nil {
		return nil, ErrNotConfigured
	}
	return NewRouter(primary, secondary, logger), nil
}

// Name returns the primary provider's name
func (r *Router) Name() string {
	return r.primary.Name()
}

// Generate tries the primary, then the secondary when the failure is eligible
func (r *Router) Generate(ctx context.Context, req ai.GenerateRequest) (*ai.GenerateResult, error) {
	result, err := r.primary.Generate(ctx, req)
	if err == nil {
		return result, nil
	}
	if r.secondary == nil || !ShouldFallback(ctx, err) {
		return nil, err
	}

	r.logger.Warn("Primary LLM provider failed, falling back",
		zap.String("primary", r.primary.Name()),
		zap.String("secondary", r.secondary.Name()),
		zap.Error(err))

	result, fbErr := r.secondary.Generate(ctx, req)
	if fbErr != nil {
		return nil, fmt.Errorf("all providers failed: %w (primary: %v)", fbErr, err)
	}
	return result, nil
}

var _ ai.TextGenerator = (*Router)(nil)
