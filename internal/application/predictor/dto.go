package predictor

import (
	"time"

	"github.com/google/uuid"
	"github.com/shopforge/backend/internal/domain/analytics"
)

// RunResponse summarizes one prediction refresh
type RunResponse struct {
	StoreID   uuid.UUID      `json:"store_id"`
	Requested int            `json:"requested"`
	Stored    int            `json:"stored"`
	ByLabel   map[string]int `json:"by_label"`
}

// PredictionResponse is the latest demand prediction for a product
type PredictionResponse struct {
	ProductID       uuid.UUID `json:"product_id"`
	ProductName     string    `json:"product_name"`
	Score           float64   `json:"score"`
	Label           string    `json:"label"`
	ForecastP50     *float64  `json:"forecast_p50,omitempty"`
	ForecastP90     *float64  `json:"forecast_p90,omitempty"`
	ModelConfidence *float64  `json:"model_confidence,omitempty"`
	ModelVersion    string    `json:"model_version"`
	ComputedAt      time.Time `json:"computed_at"`
}

// ToPredictionResponse converts a stored prediction
func ToPredictionResponse(st *analytics.PredictorStat, productName string) PredictionResponse {
	return PredictionResponse{
		ProductID:       st.ProductID,
		ProductName:     productName,
		Score:           st.Score,
		Label:           st.Label,
		ForecastP50:     st.ForecastP50,
		ForecastP90:     st.ForecastP90,
		ModelConfidence: st.ModelConfidence,
		ModelVersion:    st.ModelVersion,
		ComputedAt:      st.ComputedAt,
	}
}
