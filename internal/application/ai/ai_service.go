package ai

import (
	"context"
	"fmt"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/shopforge/backend/internal/domain/ai"
	"github.com/shopforge/backend/internal/domain/catalog"
	"github.com/shopforge/backend/internal/domain/review"
	"github.com/shopforge/backend/internal/domain/shared"
	"github.com/shopforge/backend/internal/infrastructure/telemetry"
	"github.com/shopspring/decimal"
	"go.uber.org/zap"
)

const (
	defaultMaxTokens = 512
	// reviews beyond this are left out of the summary prompt
	maxSummaryReviews = 50
)

// Metrics receives LLM call metrics
type Metrics interface {
	RecordLLMCall(ctx context.Context, provider, feature, status string, d time.Duration, inputTokens, outputTokens int)
}

// AIService generates store copy with an LLM and logs every call
type AIService struct {
	generator   ai.TextGenerator
	logRepo     ai.LogRepository
	productRepo catalog.ProductRepository
	reviewRepo  review.Repository
	metrics     Metrics
	logger      *zap.Logger
	maxTokens   int
	temperature float64
}

// NewAIService creates a new AIService. generator may be nil when no
// provider is configured; generation then fails with AI_UNAVAILABLE.
func NewAIService(
	generator ai.TextGenerator,
	logRepo ai.LogRepository,
	productRepo catalog.ProductRepository,
	reviewRepo review.Repository,
	logger *zap.Logger,
) *AIService {
	return &AIService{
		generator:   generator,
		logRepo:     logRepo,
		productRepo: productRepo,
		reviewRepo:  reviewRepo,
		logger:      logger,
		maxTokens:   defaultMaxTokens,
		temperature: 0.7,
	}
}

// WithMetrics reports call latency and token usage
func (s *AIService) WithMetrics(m Metrics) *AIService {
	s.metrics = m
	return s
}

// WithLimits sets the completion token cap and sampling temperature
func (s *AIService) WithLimits(maxTokens int, temperature float64) *AIService {
	if maxTokens > 0 {
		s.maxTokens = maxTokens
	}
	if temperature >= 0 {
		s.temperature = temperature
	}
	return s
}

// GenerateProductDescription writes marketing copy for a product and
// optionally stores it as the product description
func (s *AIService) GenerateProductDescription(ctx context.Context, storeID, userID, productID uuid.UUID, req GenerateDescriptionRequest) (*GenerationResponse, error) {
	product, err := s.productRepo.FindByIDForStore(ctx, storeID, productID)
	if err != nil {
		return nil, err
	}

	var prompt strings.Builder
	fmt.Fprintf(&prompt, "Product name: %s\n", product.Name)
	if product.Description != "" {
		fmt.Fprintf(&prompt, "Current description: %s\n", product.Description)
	}
	if len(req.Keywords) > 0 {
		fmt.Fprintf(&prompt, "Keywords: %s\n", strings.Join(req.Keywords, ", "))
	}
	tone := req.Tone
	if tone == "" {
		tone = "friendly"
	}
	fmt.Fprintf(&prompt, "Tone: %s\n", tone)
	prompt.WriteString("Write a product description of two short paragraphs. Return only the description.")

	result, err := s.generate(ctx, storeID, userID, ai.FeatureProductDescription,
		"You are a copywriter for an online shop.", prompt.String())
	if err != nil {
		return nil, err
	}

	response := toGenerationResponse(result)
	if req.Apply {
		product.SetDescription(result.Text)
		if err := s.productRepo.Save(ctx, product); err != nil {
			return nil, err
		}
		response.Applied = true
	}
	return &response, nil
}

// SummarizeReviews condenses the most recent reviews of a product
func (s *AIService) SummarizeReviews(ctx context.Context, storeID, userID, productID uuid.UUID) (*ReviewSummaryResponse, error) {
	product, err := s.productRepo.FindByIDForStore(ctx, storeID, productID)
	if err != nil {
		return nil, err
	}
	reviews, _, err := s.reviewRepo.FindByProduct(ctx, productID, shared.Filter{
		Page:     1,
		PageSize: maxSummaryReviews,
		OrderBy:  "created_at",
		OrderDir: "desc",
	}.Normalize())
	if err != nil {
		return nil, err
	}
	if len(reviews) == 0 {
		return nil, shared.NewDomainError("NO_REVIEWS", "This product has no reviews to summarize")
	}

	var prompt strings.Builder
	fmt.Fprintf(&prompt, "Product: %s\nReviews:\n", product.Name)
	total := 0
	for _, r := range reviews {
		total += r.Rating
		fmt.Fprintf(&prompt, "- (%d/5) %s %s\n", r.Rating, r.Title, r.Body)
	}
	prompt.WriteString("Summarize what customers like and dislike in at most five sentences.")

	result, err := s.generate(ctx, storeID, userID, ai.FeatureReviewSummary,
		"You summarize customer reviews for shop owners.", prompt.String())
	if err != nil {
		return nil, err
	}
	avg := decimal.NewFromInt(int64(total)).Div(decimal.NewFromInt(int64(len(reviews)))).Round(2)
	return &ReviewSummaryResponse{
		GenerationResponse: toGenerationResponse(result),
		ReviewCount:        len(reviews),
		AverageRating:      avg,
	}, nil
}

// ListAiLogs lists call logs. A nil storeID lists every store (site admins).
func (s *AIService) ListAiLogs(ctx context.Context, storeID *uuid.UUID, filter LogListFilter) (shared.Paginated[LogResponse], error) {
	f := ai.LogFilter{
		Filter:  shared.Filter{Page: filter.Page, PageSize: filter.PageSize}.Normalize(),
		StoreID: storeID,
	}
	if filter.Feature != "" {
		feature := ai.Feature(filter.Feature)
		f.Feature = &feature
	}
	if filter.Status != "" {
		status := ai.LogStatus(filter.Status)
		f.Status = &status
	}
	logs, total, err := s.logRepo.FindAll(ctx, f)
	if err != nil {
		return shared.Paginated[LogResponse]{}, err
	}
	items := make([]LogResponse, len(logs))
	for i, l := range logs {
		items[i] = ToLogResponse(l)
	}
	return shared.NewPaginated(items, total, f.Page, f.PageSize), nil
}

// generate calls the provider and writes an AiLog whatever the outcome
func (s *AIService) generate(ctx context.Context, storeID, userID uuid.UUID, feature ai.Feature, system, prompt string) (*ai.GenerateResult, error) {
	if s.generator == nil {
		return nil, shared.NewDomainError("AI_UNAVAILABLE", "No text generation provider is configured")
	}
	ctx, span := telemetry.StartServiceSpan(ctx, "ai", "Generate", telemetry.WithAttribute("ai.feature", string(feature)))
	defer span.End()

	start := time.Now()
	result, err := s.generator.Generate(ctx, ai.GenerateRequest{
		System:      system,
		Messages:    []ai.Message{{Role: "user", Content: prompt}},
		MaxTokens:   s.maxTokens,
		Temperature: s.temperature,
	})
	latency := time.Since(start)

	entry := &ai.Log{
		ID:        uuid.New(),
		StoreID:   &storeID,
		UserID:    &userID,
		Provider:  s.generator.Name(),
		Feature:   feature,
		Prompt:    prompt,
		LatencyMs: latency.Milliseconds(),
		Status:    ai.LogStatusSuccess,
		CreatedAt: time.Now(),
	}
	if err != nil {
		entry.Status = ai.LogStatusError
		entry.Error = err.Error()
		telemetry.RecordError(span, err)
	} else {
		entry.Provider = result.Provider
		entry.Model = result.Model
		entry.Output = result.Text
		entry.InputTokens = result.InputTokens
		entry.OutputTokens = result.OutputTokens
	}
	if saveErr := s.logRepo.Save(ctx, entry); saveErr != nil {
		s.logger.Warn("Failed to save AI log", zap.String("feature", string(feature)), zap.Error(saveErr))
	}
	if s.metrics != nil {
		s.metrics.RecordLLMCall(ctx, entry.Provider, string(feature), string(entry.Status), latency, entry.InputTokens, entry.OutputTokens)
	}

	if err != nil {
		s.logger.Error("Text generation failed",
			zap.String("provider", entry.Provider),
			zap.String("feature", string(feature)),
			zap.Error(err))
		return nil, shared.NewDomainError("AI_PROVIDER_ERROR", "Text generation failed, please try again later")
	}
	return result, nil
}

func toGenerationResponse(r *ai.GenerateResult) GenerationResponse {
	return GenerationResponse{
		Text:         r.Text,
		Provider:     r.Provider,
		Model:        r.Model,
		InputTokens:  r.InputTokens,
		OutputTokens: r.OutputTokens,
	}
}
