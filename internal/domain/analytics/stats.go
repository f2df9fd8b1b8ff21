package analytics

import (
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
)

// DailyStat holds one day of counters for a product or a store
type DailyStat struct {
	Date       time.Time
	Views      int64
	AddToCarts int64
	Purchases  int64
	Checkouts  int64
	Revenue    decimal.Decimal
}

// ProductDailyStat is keyed by (ProductID, Date)
type ProductDailyStat struct {
	DailyStat
	ProductID uuid.UUID
	StoreID   uuid.UUID
}

// StoreDailyStat is keyed by (StoreID, Date)
type StoreDailyStat struct {
	DailyStat
	StoreID uuid.UUID
}

// ProductTotals is a product's counters summed over a window
type ProductTotals struct {
	ProductID uuid.UUID
	Views     int64
	Purchases int64
	Revenue   decimal.Decimal
}

// PredictorStat is the latest demand prediction for a product
type PredictorStat struct {
	ID              uuid.UUID
	ProductID       uuid.UUID
	StoreID         uuid.UUID
	Score           float64
	Label           string
	ForecastP50     *float64
	ForecastP90     *float64
	ModelConfidence *float64
	ModelVersion    string
	ComputedAt      time.Time
}
