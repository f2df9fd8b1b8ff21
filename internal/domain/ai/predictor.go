package ai

import (
	"context"
	"math"

	"github.com/google/uuid"
)

// FeatureColumns is the order the demand model was trained on
var FeatureColumns = []string{
	"sales7d", "sales14d", "sales30d",
	"sales7dPerDay", "sales30dPerDay", "salesRatio7To30",
	"views7d", "views30d", "addToCarts7d", "viewToPurchase7d",
	"avgPrice", "minPrice", "maxPrice",
	"avgRating", "ratingCount",
	"inventoryQty", "daysSinceRestock",
	"storeViews7d", "storePurchases7d",
	"dayOfWeek", "isWeekend",
}

// Features is a named feature vector
type Features map[string]float64

// Complete reports whether every model column is present
func (f Features) Complete() bool {
	for _, c := range FeatureColumns {
		if _, ok := f[c]; !ok {
			return false
		}
	}
	return true
}

// PredictionRow is one product to score
type PredictionRow struct {
	ProductID uuid.UUID
	StoreID   uuid.UUID
	Features  Features
}

// Prediction is a scored row
type Prediction struct {
	ProductID       uuid.UUID
	StoreID         uuid.UUID
	Score           float64
	Label           string
	ForecastP50     *float64
	ForecastP90     *float64
	ModelConfidence *float64
	ModelVersion    string
}

// Predictor scores rows against the external demand model
type Predictor interface {
	PredictBatch(ctx context.Context, rows []PredictionRow) ([]Prediction, error)
	Health(ctx context.Context) error
}

const (
	LabelHigh   = "high"
	LabelMedium = "medium"
	LabelLow    = "low"
)

// ClampScore bounds a model score to [0,1]; NaN becomes 0
func ClampScore(score float64) float64 {
	if math.IsNaN(score) || score < 0 {
		return 0
	}
	if score > 1 {
		return 1
	}
	return score
}

// LabelFor buckets a clamped score
func LabelFor(score float64) string {
	switch {
	case score > 0.7:
		return LabelHigh
	case score > 0.4:
		return LabelMedium
	default:
		return LabelLow
	}
}
