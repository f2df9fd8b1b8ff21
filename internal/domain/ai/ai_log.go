package ai

import (
	"time"

	"github.com/google/uuid"
)

// Feature names what a generation was used for
type Feature string

const (
	FeatureProductDescription Feature = "product_description"
	FeatureReviewSummary      Feature = "review_summary"
)

// LogStatus is the outcome of a provider call
type LogStatus string

const (
	LogStatusSuccess LogStatus = "success"
	LogStatusError   LogStatus = "error"
)

// Log records one text-generation call
type Log struct {
	ID           uuid.UUID
	StoreID      *uuid.UUID
	UserID       *uuid.UUID
	Provider     string
	Model        string
	Feature      Feature
	Prompt       string
	Output       string
	InputTokens  int
	OutputTokens int
	LatencyMs    int64
	Status       LogStatus
	Error        string
	CreatedAt    time.Time
}
