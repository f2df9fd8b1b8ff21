package ai

import (
	"time"

	"github.com/google/uuid"
	"github.com/shopforge/backend/internal/domain/ai"
	"github.com/shopspring/decimal"
)

// GenerateDescriptionRequest asks for product copy
type GenerateDescriptionRequest struct {
	Tone     string   `json:"tone" binding:"omitempty,oneof=friendly professional playful luxury minimal"`
	Keywords []string `json:"keywords" binding:"max=10,dive,max=50"`
	// Apply writes the generated text to the product description
	Apply bool `json:"apply"`
}

// GenerationResponse is generated text with provider details
type GenerationResponse struct {
	Text         string `json:"text"`
	Provider     string `json:"provider"`
	Model        string `json:"model"`
	InputTokens  int    `json:"input_tokens"`
	OutputTokens int    `json:"output_tokens"`
	Applied      bool   `json:"applied"`
}

// ReviewSummaryResponse summarizes a product's reviews
type ReviewSummaryResponse struct {
	GenerationResponse
	ReviewCount   int             `json:"review_count"`
	AverageRating decimal.Decimal `json:"average_rating"`
}

// LogListFilter represents filter options for AI log listings
type LogListFilter struct {
	Feature  string `form:"feature" binding:"omitempty,oneof=product_description review_summary"`
	Status   string `form:"status" binding:"omitempty,oneof=success error"`
	Page     int    `form:"page" binding:"omitempty,min=1"`
	PageSize int    `form:"page_size" binding:"omitempty,min=1,max=100"`
}

// LogResponse represents an AI call log in API responses
type LogResponse struct {
	ID           uuid.UUID  `json:"id"`
	StoreID      *uuid.UUID `json:"store_id,omitempty"`
	UserID       *uuid.UUID `json:"user_id,omitempty"`
	Provider     string     `json:"provider"`
	Model        string     `json:"model"`
	Feature      string     `json:"feature"`
	Prompt       string     `json:"prompt"`
	Output       string     `json:"output"`
	InputTokens  int        `json:"input_tokens"`
	OutputTokens int        `json:"output_tokens"`
	LatencyMs    int64      `json:"latency_ms"`
	Status       string     `json:"status"`
	Error        string     `json:"error,omitempty"`
	CreatedAt    time.Time  `json:"created_at"`
}

// ToLogResponse converts a domain log
func ToLogResponse(l *ai.Log) LogResponse {
	return LogResponse{
		ID:           l.ID,
		StoreID:      l.StoreID,
		UserID:       l.UserID,
		Provider:     l.Provider,
		Model:        l.Model,
		Feature:      string(l.Feature),
		Prompt:       l.Prompt,
		Output:       l.Output,
		InputTokens:  l.InputTokens,
		OutputTokens: l.OutputTokens,
		LatencyMs:    l.LatencyMs,
		Status:       string(l.Status),
		Error:        l.Error,
		CreatedAt:    l.CreatedAt,
	}
}
