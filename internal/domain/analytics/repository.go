package analytics

import (
	"context"
	"time"

	"github.com/google/uuid"
)

// Repository persists raw events and daily counters
type Repository interface {
	// RecordEvent stores the event and increments both daily stat rows atomically
	RecordEvent(ctx context.Context, e *Event) error
	ProductStats(ctx context.Context, productIDs []uuid.UUID, from, to time.Time) ([]ProductDailyStat, error)
	StoreStats(ctx context.Context, storeID uuid.UUID, from, to time.Time) ([]StoreDailyStat, error)
	TopProducts(ctx context.Context, storeID uuid.UUID, from, to time.Time, limit int) ([]ProductTotals, error)
}

// PredictorStatRepository persists demand predictions
type PredictorStatRepository interface {
	SaveBatch(ctx context.Context, stats []*PredictorStat) error
	// LatestForStore returns the newest prediction per product
	LatestForStore(ctx context.Context, storeID uuid.UUID) ([]*PredictorStat, error)
	LatestForProduct(ctx context.Context, productID uuid.UUID) (*PredictorStat, error)
}
