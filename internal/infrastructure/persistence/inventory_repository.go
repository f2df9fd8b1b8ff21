package persistence

import (
	"context"

	"github.com/google/uuid"
	"github.com/shopforge/backend/internal/domain/inventory"
	"github.com/shopforge/backend/internal/domain/shared"
	"github.com/shopforge/backend/internal/infrastructure/persistence/models"
	"gorm.io/gorm"
	"gorm.io/gorm/clause"
)

// GormInventoryRepository implements inventory.Repository using GORM
type GormInventoryRepository struct {
	db *gorm.DB
}

// NewGormInventoryRepository creates a new GormInventoryRepository
func NewGormInventoryRepository(db *gorm.DB) *GormInventoryRepository {
	return &GormInventoryRepository{db: db}
}

// FindByVariant finds the stock record of a variant
func (r *GormInventoryRepository) FindByVariant(ctx context.Context, variantID uuid.UUID) (*inventory.Inventory, error) {
	var model models.InventoryModel
	if err := r.db.WithContext(ctx).First(&model, "variant_id = ?", variantID).Error; err != nil {
		return nil, translateError(err)
	}
	return model.ToDomain(), nil
}

// FindByVariantForUpdate finds the stock record with a row lock (SELECT ... FOR UPDATE).
// Only meaningful inside a transaction.
func (r *GormInventoryRepository) FindByVariantForUpdate(ctx context.Context, variantID uuid.UUID) (*inventory.Inventory, error) {
	var model models.InventoryModel
	if err := r.db.WithContext(ctx).
		Clauses(clause.Locking{Strength: "UPDATE"}).
		First(&model, "variant_id = ?", variantID).Error; err != nil {
		return nil, translateError(err)
	}
	return model.ToDomain(), nil
}

// FindByVariants loads stock for several variants
func (r *GormInventoryRepository) FindByVariants(ctx context.Context, variantIDs []uuid.UUID) ([]*inventory.Inventory, error) {
	if len(variantIDs) == 0 {
		return []*inventory.Inventory{}, nil
	}
	var rows []models.InventoryModel
	if err := r.db.WithContext(ctx).Where("variant_id IN ?", variantIDs).Find(&rows).Error; err != nil {
		return nil, err
	}
	return inventoriesToDomain(rows), nil
}

// FindAllForStore lists a store's stock, optionally only rows at or below threshold
func (r *GormInventoryRepository) FindAllForStore(ctx context.Context, storeID uuid.UUID, filter inventory.Filter) ([]*inventory.Inventory, int64, error) {
	query := r.db.WithContext(ctx).Model(&models.InventoryModel{}).Where("store_id = ?", storeID)
	if filter.ProductID != nil {
		query = query.Where("product_id = ?", *filter.ProductID)
	}
	if filter.LowStockOnly {
		query = query.Where("quantity - reserved <= low_stock_threshold")
	}

	var total int64
	if err := query.Count(&total).Error; err != nil {
		return nil, 0, err
	}
	var rows []models.InventoryModel
	if err := orderAndPage(query, filter.OrderBy, filter.OrderDir, InventorySortFields, "updated_at", filter.Page, filter.PageSize).
		Find(&rows).Error; err != nil {
		return nil, 0, err
	}
	return inventoriesToDomain(rows), total, nil
}

// Save creates a new stock record, or updates one under optimistic locking.
// A record changed since it was loaded yields shared.ErrConcurrencyConflict.
func (r *GormInventoryRepository) Save(ctx context.Context, inv *inventory.Inventory) error {
	db := r.db.WithContext(ctx)
	if inv.IsNew() {
		if err := db.Create(models.InventoryModelFromDomain(inv)).Error; err != nil {
			return translateError(err)
		}
		inv.MarkPersisted()
		return nil
	}

	version := nextVersion(&inv.BaseAggregateRoot)
	if err := updateVersioned(db, &models.InventoryModel{}, inv.ID, inv.PersistedVersion(), map[string]any{
		"quantity":            inv.Quantity,
		"reserved":            inv.Reserved,
		"low_stock_threshold": inv.LowStockThreshold,
		"last_restocked_at":   inv.LastRestockedAt,
		"version":             version,
		"updated_at":          inv.UpdatedAt,
	}); err != nil {
		return err
	}
	inv.MarkPersisted()
	return nil
}

// DeleteByVariant removes the stock record of a variant
func (r *GormInventoryRepository) DeleteByVariant(ctx context.Context, variantID uuid.UUID) error {
	result := r.db.WithContext(ctx).Where("variant_id = ?", variantID).Delete(&models.InventoryModel{})
	if result.Error != nil {
		return result.Error
	}
	if result.RowsAffected == 0 {
		return shared.ErrNotFound
	}
	return nil
}

func inventoriesToDomain(rows []models.InventoryModel) []*inventory.Inventory {
	out := make([]*inventory.Inventory, len(rows))
	for i := range rows {
		out[i] = rows[i].ToDomain()
	}
	return out
}

var _ inventory.Repository = (*GormInventoryRepository)(nil)
