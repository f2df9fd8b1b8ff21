package persistence

import (
	"context"
	"strings"

	"github.com/google/uuid"
	"github.com/shopforge/backend/internal/domain/catalog"
	"github.com/shopforge/backend/internal/domain/order"
	"github.com/shopforge/backend/internal/domain/shared"
	"github.com/shopforge/backend/internal/domain/store"
	"github.com/shopforge/backend/internal/infrastructure/persistence/models"
	"gorm.io/gorm"
)

// GormStoreRepository implements store.StoreRepository using GORM
type GormStoreRepository struct {
	db *gorm.DB
}

// NewGormStoreRepository creates a new GormStoreRepository
func NewGormStoreRepository(db *gorm.DB) *GormStoreRepository {
	return &GormStoreRepository{db: db}
}

func (r *GormStoreRepository) Save(ctx context.Context, s *store.Store) error {
	return translateError(r.db.WithContext(ctx).Save(models.StoreModelFromDomain(s)).Error)
}

// Delete removes the store and its role assignments
func (r *GormStoreRepository) Delete(ctx context.Context, id uuid.UUID) error {
	return r.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		if err := tx.Where("store_id = ?", id).Delete(&models.StoreRoleModel{}).Error; err != nil {
			return err
		}
		result := tx.Delete(&models.StoreModel{}, "id = ?", id)
		if result.Error != nil {
			return result.Error
		}
		if result.RowsAffected == 0 {
			return shared.ErrNotFound
		}
		return nil
	})
}

func (r *GormStoreRepository) FindByID(ctx context.Context, id uuid.UUID) (*store.Store, error) {
	var model models.StoreModel
	if err := r.db.WithContext(ctx).First(&model, "id = ?", id).Error; err != nil {
		return nil, translateError(err)
	}
	return model.ToDomain(), nil
}

func (r *GormStoreRepository) FindBySlug(ctx context.Context, slug string) (*store.Store, error) {
	var model models.StoreModel
	if err := r.db.WithContext(ctx).First(&model, "slug = ?", slug).Error; err != nil {
		return nil, translateError(err)
	}
	return model.ToDomain(), nil
}

// FindAll lists stores. filter.Filters["active_only"] restricts to active stores.
func (r *GormStoreRepository) FindAll(ctx context.Context, filter shared.Filter) ([]*store.Store, int64, error) {
	query := r.db.WithContext(ctx).Model(&models.StoreModel{})
	if active, ok := filter.Filters["active_only"].(bool); ok && active {
		query = query.Where("is_active = ?", true)
	}
	if s := strings.TrimSpace(filter.Search); s != "" {
		like := "%" + strings.ToLower(s) + "%"
		query = query.Where("LOWER(name) LIKE ? OR slug LIKE ?", like, like)
	}

	var total int64
	if err := query.Count(&total).Error; err != nil {
		return nil, 0, err
	}
	var rows []models.StoreModel
	if err := orderAndPage(query, filter.OrderBy, filter.OrderDir, StoreSortFields, "created_at", filter.Page, filter.PageSize).
		Find(&rows).Error; err != nil {
		return nil, 0, err
	}
	out := make([]*store.Store, len(rows))
	for i := range rows {
		out[i] = rows[i].ToDomain()
	}
	return out, total, nil
}

func (r *GormStoreRepository) FindByIDs(ctx context.Context, ids []uuid.UUID) ([]*store.Store, error) {
	if len(ids) == 0 {
		return []*store.Store{}, nil
	}
	var rows []models.StoreModel
	if err := r.db.WithContext(ctx).Where("id IN ?", ids).Order("name ASC").Find(&rows).Error; err != nil {
		return nil, err
	}
	out := make([]*store.Store, len(rows))
	for i := range rows {
		out[i] = rows[i].ToDomain()
	}
	return out, nil
}

func (r *GormStoreRepository) FindActiveIDs(ctx context.Context) ([]uuid.UUID, error) {
	var ids []uuid.UUID
	err := r.db.WithContext(ctx).Model(&models.StoreModel{}).
		Where("is_active = ?", true).
		Pluck("id", &ids).Error
	return ids, err
}

func (r *GormStoreRepository) ExistsBySlug(ctx context.Context, slug string) (bool, error) {
	var count int64
	if err := r.db.WithContext(ctx).Model(&models.StoreModel{}).Where("slug = ?", slug).Count(&count).Error; err != nil {
		return false, err
	}
	return count > 0, nil
}

// SaveCounters writes only the cached aggregate columns so concurrent profile
// edits are not overwritten.
func (r *GormStoreRepository) SaveCounters(ctx context.Context, s *store.Store) error {
	result := r.db.WithContext(ctx).Model(&models.StoreModel{}).
		Where("id = ?", s.ID).
		Updates(map[string]any{
			"product_count":       s.ProductCount,
			"order_count":         s.OrderCount,
			"total_revenue":       s.TotalRevenue,
			"counters_updated_at": s.CountersUpdatedAt,
		})
	if result.Error != nil {
		return result.Error
	}
	if result.RowsAffected == 0 {
		return shared.ErrNotFound
	}
	return nil
}

// GormStoreRoleRepository implements store.StoreRoleRepository
type GormStoreRoleRepository struct {
	db *gorm.DB
}

func NewGormStoreRoleRepository(db *gorm.DB) *GormStoreRoleRepository {
	return &GormStoreRoleRepository{db: db}
}

func (r *GormStoreRoleRepository) Save(ctx context.Context, sr *store.StoreRole) error {
	return translateError(r.db.WithContext(ctx).Save(models.StoreRoleModelFromDomain(sr)).Error)
}

func (r *GormStoreRoleRepository) Delete(ctx context.Context, storeID, userID uuid.UUID) error {
	result := r.db.WithContext(ctx).
		Where("store_id = ? AND user_id = ?", storeID, userID).
		Delete(&models.StoreRoleModel{})
	if result.Error != nil {
		return result.Error
	}
	if result.RowsAffected == 0 {
		return shared.ErrNotFound
	}
	return nil
}

func (r *GormStoreRoleRepository) Find(ctx context.Context, storeID, userID uuid.UUID) (*store.StoreRole, error) {
	var model models.StoreRoleModel
	if err := r.db.WithContext(ctx).
		Where("store_id = ? AND user_id = ?", storeID, userID).
		First(&model).Error; err != nil {
		return nil, translateError(err)
	}
	return model.ToDomain(), nil
}

func (r *GormStoreRoleRepository) FindByStore(ctx context.Context, storeID uuid.UUID) ([]*store.StoreRole, error) {
	return r.findWhere(ctx, "store_id = ?", storeID)
}

func (r *GormStoreRoleRepository) FindByUser(ctx context.Context, userID uuid.UUID) ([]*store.StoreRole, error) {
	return r.findWhere(ctx, "user_id = ?", userID)
}

func (r *GormStoreRoleRepository) findWhere(ctx context.Context, cond string, arg any) ([]*store.StoreRole, error) {
	var rows []models.StoreRoleModel
	if err := r.db.WithContext(ctx).Where(cond, arg).Order("created_at ASC").Find(&rows).Error; err != nil {
		return nil, err
	}
	out := make([]*store.StoreRole, len(rows))
	for i := range rows {
		out[i] = rows[i].ToDomain()
	}
	return out, nil
}

// FindUserIDsWithRole returns users whose role is min or higher
func (r *GormStoreRoleRepository) FindUserIDsWithRole(ctx context.Context, storeID uuid.UUID, min store.Role) ([]uuid.UUID, error) {
	roles := make([]store.Role, 0, 3)
	for _, role := range []store.Role{store.RoleOwner, store.RoleAdmin, store.RoleModerator} {
		if role.AtLeast(min) {
			roles = append(roles, role)
		}
	}
	var ids []uuid.UUID
	err := r.db.WithContext(ctx).Model(&models.StoreRoleModel{}).
		Where("store_id = ? AND role IN ?", storeID, roles).
		Pluck("user_id", &ids).Error
	return ids, err
}

func (r *GormStoreRoleRepository) CountByRole(ctx context.Context, storeID uuid.UUID, role store.Role) (int64, error) {
	var count int64
	err := r.db.WithContext(ctx).Model(&models.StoreRoleModel{}).
		Where("store_id = ? AND role = ?", storeID, role).
		Count(&count).Error
	return count, err
}

// CounterSource computes store aggregates from the product and order tables
type CounterSource struct {
	products catalog.ProductRepository
	orders   order.Repository
}

// NewCounterSource creates a store.CounterSource backed by repositories
func NewCounterSource(products catalog.ProductRepository, orders order.Repository) *CounterSource {
	return &CounterSource{products: products, orders: orders}
}

func (c *CounterSource) ComputeCounters(ctx context.Context, storeID uuid.UUID) (store.Counters, error) {
	products, err := c.products.CountForStore(ctx, storeID)
	if err != nil {
		return store.Counters{}, err
	}
	orders, err := c.orders.CountForStore(ctx, storeID)
	if err != nil {
		return store.Counters{}, err
	}
	revenue, err := c.orders.SumRevenueForStore(ctx, storeID, order.RevenueStatuses)
	if err != nil {
		return store.Counters{}, err
	}
	return store.Counters{ProductCount: products, OrderCount: orders, TotalRevenue: revenue}, nil
}

var (
	_ store.StoreRepository     = (*GormStoreRepository)(nil)
	_ store.StoreRoleRepository = (*GormStoreRoleRepository)(nil)
	_ store.CounterSource       = (*CounterSource)(nil)
)
