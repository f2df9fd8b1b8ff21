package inventory

import (
	"context"

	"github.com/google/uuid"
	"github.com/shopforge/backend/internal/domain/shared"
)

// Filter narrows inventory listings for a store
type Filter struct {
	shared.Filter
	ProductID    *uuid.UUID
	LowStockOnly bool
}

// Repository persists inventory records
type Repository interface {
	FindByVariant(ctx context.Context, variantID uuid.UUID) (*Inventory, error)
	// FindByVariantForUpdate locks the row for the current transaction
	FindByVariantForUpdate(ctx context.Context, variantID uuid.UUID) (*Inventory, error)
	FindByVariants(ctx context.Context, variantIDs []uuid.UUID) ([]*Inventory, error)
	FindAllForStore(ctx context.Context, storeID uuid.UUID, filter Filter) ([]*Inventory, int64, error)
	Save(ctx context.Context, inv *Inventory) error
	DeleteByVariant(ctx context.Context, variantID uuid.UUID) error
}
