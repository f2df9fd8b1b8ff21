package catalog

import (
	"context"

	"github.com/google/uuid"
	"github.com/shopforge/backend/internal/domain/shared"
	"github.com/shopspring/decimal"
)

// CategoryRepository persists categories
type CategoryRepository interface {
	FindByIDForStore(ctx context.Context, storeID, id uuid.UUID) (*Category, error)
	FindAllForStore(ctx context.Context, storeID uuid.UUID) ([]*Category, error)
	Save(ctx context.Context, c *Category) error
	DeleteForStore(ctx context.Context, storeID, id uuid.UUID) error
	ExistsBySlug(ctx context.Context, storeID uuid.UUID, slug string) (bool, error)
	HasChildren(ctx context.Context, storeID, id uuid.UUID) (bool, error)
}

// ProductFilter narrows product listings
type ProductFilter struct {
	shared.Filter
	StoreID    *uuid.UUID
	CategoryID *uuid.UUID
	Status     *ProductStatus
}

// ProductRepository persists products
type ProductRepository interface {
	FindByID(ctx context.Context, id uuid.UUID) (*Product, error)
	FindByIDForStore(ctx context.Context, storeID, id uuid.UUID) (*Product, error)
	FindByIDs(ctx context.Context, ids []uuid.UUID) ([]*Product, error)
	FindAll(ctx context.Context, filter ProductFilter) ([]*Product, int64, error)
	FindActiveIDsForStore(ctx context.Context, storeID uuid.UUID) ([]uuid.UUID, error)
	Save(ctx context.Context, p *Product) error
	DeleteForStore(ctx context.Context, storeID, id uuid.UUID) error
	ExistsBySlug(ctx context.Context, storeID uuid.UUID, slug string) (bool, error)
	CountForStore(ctx context.Context, storeID uuid.UUID) (int64, error)
	CountByCategory(ctx context.Context, storeID, categoryID uuid.UUID) (int64, error)
	// UpdateRating writes only the cached rating columns
	UpdateRating(ctx context.Context, productID uuid.UUID, avg decimal.Decimal, count int) error
}

// VariantRepository persists product variants
type VariantRepository interface {
	FindByID(ctx context.Context, id uuid.UUID) (*ProductVariant, error)
	FindByIDForStore(ctx context.Context, storeID, id uuid.UUID) (*ProductVariant, error)
	FindByIDs(ctx context.Context, ids []uuid.UUID) ([]*ProductVariant, error)
	FindByProduct(ctx context.Context, productID uuid.UUID) ([]*ProductVariant, error)
	FindByProducts(ctx context.Context, productIDs []uuid.UUID) ([]*ProductVariant, error)
	Save(ctx context.Context, v *ProductVariant) error
	DeleteForStore(ctx context.Context, storeID, id uuid.UUID) error
	ExistsBySKU(ctx context.Context, storeID uuid.UUID, sku string) (bool, error)
	CountActive(ctx context.Context, productID uuid.UUID) (int64, error)
}
