package persistence

import (
	"context"
	"strings"

	"github.com/google/uuid"
	"github.com/shopforge/backend/internal/domain/catalog"
	"github.com/shopforge/backend/internal/domain/shared"
	"github.com/shopforge/backend/internal/infrastructure/persistence/models"
	"github.com/shopspring/decimal"
	"gorm.io/gorm"
)

// GormProductRepository implements catalog.ProductRepository using GORM
type GormProductRepository struct {
	db *gorm.DB
}

// NewGormProductRepository creates a new GormProductRepository
func NewGormProductRepository(db *gorm.DB) *GormProductRepository {
	return &GormProductRepository{db: db}
}

// FindByID finds a product by ID
func (r *GormProductRepository) FindByID(ctx context.Context, id uuid.UUID) (*catalog.Product, error) {
	var model models.ProductModel
	if err := r.db.WithContext(ctx).First(&model, "id = ?", id).Error; err != nil {
		return nil, translateError(err)
	}
	return model.ToDomain(), nil
}

// FindByIDForStore finds a product by ID within a store
func (r *GormProductRepository) FindByIDForStore(ctx context.Context, storeID, id uuid.UUID) (*catalog.Product, error) {
	var model models.ProductModel
	if err := r.db.WithContext(ctx).
		Where("store_id = ? AND id = ?", storeID, id).
		First(&model).Error; err != nil {
		return nil, translateError(err)
	}
	return model.ToDomain(), nil
}

// FindByIDs loads several products; missing IDs are skipped
func (r *GormProductRepository) FindByIDs(ctx context.Context, ids []uuid.UUID) ([]*catalog.Product, error) {
	if len(ids) == 0 {
		return []*catalog.Product{}, nil
	}
	var rows []models.ProductModel
	if err := r.db.WithContext(ctx).Where("id IN ?", ids).Find(&rows).Error; err != nil {
		return nil, err
	}
	return productsToDomain(rows), nil
}

// FindAll returns a page of products matching the filter
func (r *GormProductRepository) FindAll(ctx context.Context, filter catalog.ProductFilter) ([]*catalog.Product, int64, error) {
	query := r.db.WithContext(ctx).Model(&models.ProductModel{})
	if filter.StoreID != nil {
		query = query.Where("store_id = ?", *filter.StoreID)
	}
	if filter.CategoryID != nil {
		query = query.Where("category_id = ?", *filter.CategoryID)
	}
	if filter.Status != nil {
		query = query.Where("status = ?", *filter.Status)
	}
	if s := strings.TrimSpace(filter.Search); s != "" {
		like := "%" + strings.ToLower(s) + "%"
		query = query.Where("LOWER(name) LIKE ? OR LOWER(description) LIKE ?", like, like)
	}

	var total int64
	if err := query.Count(&total).Error; err != nil {
		return nil, 0, err
	}
	var rows []models.ProductModel
	if err := orderAndPage(query, filter.OrderBy, filter.OrderDir, ProductSortFields, "created_at", filter.Page, filter.PageSize).
		Find(&rows).Error; err != nil {
		return nil, 0, err
	}
	return productsToDomain(rows), total, nil
}

// FindActiveIDsForStore lists the IDs of the store's active products
func (r *GormProductRepository) FindActiveIDsForStore(ctx context.Context, storeID uuid.UUID) ([]uuid.UUID, error) {
	var ids []uuid.UUID
	err := r.db.WithContext(ctx).Model(&models.ProductModel{}).
		Where("store_id = ? AND status = ?", storeID, catalog.ProductStatusActive).
		Order("created_at ASC").
		Pluck("id", &ids).Error
	return ids, err
}

// Save creates or updates a product
func (r *GormProductRepository) Save(ctx context.Context, p *catalog.Product) error {
	return translateError(r.db.WithContext(ctx).Save(models.ProductModelFromDomain(p)).Error)
}

// DeleteForStore deletes a product with its variants and inventory
func (r *GormProductRepository) DeleteForStore(ctx context.Context, storeID, id uuid.UUID) error {
	return r.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		if err := tx.Where("store_id = ? AND product_id = ?", storeID, id).Delete(&models.InventoryModel{}).Error; err != nil {
			return err
		}
		if err := tx.Where("store_id = ? AND product_id = ?", storeID, id).Delete(&models.ProductVariantModel{}).Error; err != nil {
			return err
		}
		result := tx.Where("store_id = ? AND id = ?", storeID, id).Delete(&models.ProductModel{})
		if result.Error != nil {
			return result.Error
		}
		if result.RowsAffected == 0 {
			return shared.ErrNotFound
		}
		return nil
	})
}

// ExistsBySlug checks if a product slug is taken within a store
func (r *GormProductRepository) ExistsBySlug(ctx context.Context, storeID uuid.UUID, slug string) (bool, error) {
	var count int64
	if err := r.db.WithContext(ctx).Model(&models.ProductModel{}).
		Where("store_id = ? AND slug = ?", storeID, slug).
		Count(&count).Error; err != nil {
		return false, err
	}
	return count > 0, nil
}

// CountForStore counts all products in a store regardless of status
func (r *GormProductRepository) CountForStore(ctx context.Context, storeID uuid.UUID) (int64, error) {
	var count int64
	err := r.db.WithContext(ctx).Model(&models.ProductModel{}).Where("store_id = ?", storeID).Count(&count).Error
	return count, err
}

// CountByCategory counts products assigned to a category
func (r *GormProductRepository) CountByCategory(ctx context.Context, storeID, categoryID uuid.UUID) (int64, error) {
	var count int64
	err := r.db.WithContext(ctx).Model(&models.ProductModel{}).
		Where("store_id = ? AND category_id = ?", storeID, categoryID).
		Count(&count).Error
	return count, err
}

// UpdateRating writes the cached rating columns only
func (r *GormProductRepository) UpdateRating(ctx context.Context, productID uuid.UUID, avg decimal.Decimal, count int) error {
	result := r.db.WithContext(ctx).Model(&models.ProductModel{}).
		Where("id = ?", productID).
		Updates(map[string]any{"average_rating": avg.Round(2), "review_count": count})
	if result.Error != nil {
		return result.Error
	}
	if result.RowsAffected == 0 {
		return shared.ErrNotFound
	}
	return nil
}

func productsToDomain(rows []models.ProductModel) []*catalog.Product {
	out := make([]*catalog.Product, len(rows))
	for i := range rows {
		out[i] = rows[i].ToDomain()
	}
	return out
}

// GormVariantRepository implements catalog.VariantRepository using GORM
type GormVariantRepository struct {
	db *gorm.DB
}

// NewGormVariantRepository creates a new GormVariantRepository
func NewGormVariantRepository(db *gorm.DB) *GormVariantRepository {
	return &GormVariantRepository{db: db}
}

func (r *GormVariantRepository) FindByID(ctx context.Context, id uuid.UUID) (*catalog.ProductVariant, error) {
	var model models.ProductVariantModel
	if err := r.db.WithContext(ctx).First(&model, "id = ?", id).Error; err != nil {
		return nil, translateError(err)
	}
	return model.ToDomain(), nil
}

func (r *GormVariantRepository) FindByIDForStore(ctx context.Context, storeID, id uuid.UUID) (*catalog.ProductVariant, error) {
	var model models.ProductVariantModel
	if err := r.db.WithContext(ctx).
		Where("store_id = ? AND id = ?", storeID, id).
		First(&model).Error; err != nil {
		return nil, translateError(err)
	}
	return model.ToDomain(), nil
}

func (r *GormVariantRepository) FindByIDs(ctx context.Context, ids []uuid.UUID) ([]*catalog.ProductVariant, error) {
	if len(ids) == 0 {
		return []*catalog.ProductVariant{}, nil
	}
	return r.findWhere(ctx, "id IN ?", ids)
}

func (r *GormVariantRepository) FindByProduct(ctx context.Context, productID uuid.UUID) ([]*catalog.ProductVariant, error) {
	return r.findWhere(ctx, "product_id = ?", productID)
}

func (r *GormVariantRepository) FindByProducts(ctx context.Context, productIDs []uuid.UUID) ([]*catalog.ProductVariant, error) {
	if len(productIDs) == 0 {
		return []*catalog.ProductVariant{}, nil
	}
	return r.findWhere(ctx, "product_id IN ?", productIDs)
}

func (r *GormVariantRepository) findWhere(ctx context.Context, cond string, arg any) ([]*catalog.ProductVariant, error) {
	var rows []models.ProductVariantModel
	if err := r.db.WithContext(ctx).Where(cond, arg).Order("created_at ASC").Find(&rows).Error; err != nil {
		return nil, err
	}
	out := make([]*catalog.ProductVariant, len(rows))
	for i := range rows {
		out[i] = rows[i].ToDomain()
	}
	return out, nil
}

func (r *GormVariantRepository) Save(ctx context.Context, v *catalog.ProductVariant) error {
	return translateError(r.db.WithContext(ctx).Save(models.ProductVariantModelFromDomain(v)).Error)
}

// DeleteForStore deletes a variant and its inventory row
func (r *GormVariantRepository) DeleteForStore(ctx context.Context, storeID, id uuid.UUID) error {
	return r.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		if err := tx.Where("store_id = ? AND variant_id = ?", storeID, id).Delete(&models.InventoryModel{}).Error; err != nil {
			return err
		}
		result := tx.Where("store_id = ? AND id = ?", storeID, id).Delete(&models.ProductVariantModel{})
		if result.Error != nil {
			return result.Error
		}
		if result.RowsAffected == 0 {
			return shared.ErrNotFound
		}
		return nil
	})
}

// ExistsBySKU checks SKU uniqueness within a store
func (r *GormVariantRepository) ExistsBySKU(ctx context.Context, storeID uuid.UUID, sku string) (bool, error) {
	var count int64
	if err := r.db.WithContext(ctx).Model(&models.ProductVariantModel{}).
		Where("store_id = ? AND sku = ?", storeID, strings.ToUpper(strings.TrimSpace(sku))).
		Count(&count).Error; err != nil {
		return false, err
	}
	return count > 0, nil
}

// CountActive counts a product's variants that are for sale
func (r *GormVariantRepository) CountActive(ctx context.Context, productID uuid.UUID) (int64, error) {
	var count int64
	err := r.db.WithContext(ctx).Model(&models.ProductVariantModel{}).
		Where("product_id = ? AND is_active = ?", productID, true).
		Count(&count).Error
	return count, err
}

var (
	_ catalog.ProductRepository = (*GormProductRepository)(nil)
	_ catalog.VariantRepository = (*GormVariantRepository)(nil)
)
