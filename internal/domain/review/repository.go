package review

import (
	"context"

	"github.com/google/uuid"
	"github.com/shopforge/backend/internal/domain/shared"
	"github.com/shopspring/decimal"
)

// RatingSummary is the aggregate of all ratings for a product
type RatingSummary struct {
	Average decimal.Decimal
	Count   int
}

// Repository persists reviews
type Repository interface {
	FindByID(ctx context.Context, id uuid.UUID) (*Review, error)
	FindByUserAndProduct(ctx context.Context, userID, productID uuid.UUID) (*Review, error)
	FindByProduct(ctx context.Context, productID uuid.UUID, filter shared.Filter) ([]*Review, int64, error)
	FindByStore(ctx context.Context, storeID uuid.UUID, filter shared.Filter) ([]*Review, int64, error)
	Save(ctx context.Context, r *Review) error
	Delete(ctx context.Context, id uuid.UUID) error
	Summarize(ctx context.Context, productID uuid.UUID) (RatingSummary, error)
}
