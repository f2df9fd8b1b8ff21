package persistence

import (
	"context"

	"github.com/google/uuid"
	"github.com/shopforge/backend/internal/domain/cart"
	"github.com/shopforge/backend/internal/domain/order"
	"github.com/shopforge/backend/internal/infrastructure/persistence/models"
	"github.com/shopspring/decimal"
	"gorm.io/gorm"
	"gorm.io/gorm/clause"
)

// GormCartRepository implements cart.Repository using GORM
type GormCartRepository struct {
	db *gorm.DB
}

// NewGormCartRepository creates a new GormCartRepository
func NewGormCartRepository(db *gorm.DB) *GormCartRepository {
	return &GormCartRepository{db: db}
}

// FindByUser loads the user's cart with items in insertion order
func (r *GormCartRepository) FindByUser(ctx context.Context, userID uuid.UUID) (*cart.Cart, error) {
	var model models.CartModel
	if err := r.db.WithContext(ctx).
		Preload("Items", func(db *gorm.DB) *gorm.DB { return db.Order("position ASC") }).
		First(&model, "user_id = ?", userID).Error; err != nil {
		return nil, translateError(err)
	}
	return model.ToDomain(), nil
}

// Save replaces the stored cart lines with the current ones
func (r *GormCartRepository) Save(ctx context.Context, c *cart.Cart) error {
	model := models.CartModelFromDomain(c)
	items := model.Items
	model.Items = nil
	return r.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		if err := tx.Omit(clause.Associations).Save(model).Error; err != nil {
			return translateError(err)
		}
		if err := tx.Where("cart_id = ?", c.ID).Delete(&models.CartItemModel{}).Error; err != nil {
			return err
		}
		if len(items) == 0 {
			return nil
		}
		return tx.Create(&items).Error
	})
}

// GormOrderRepository implements order.Repository using GORM
type GormOrderRepository struct {
	db *gorm.DB
}

// NewGormOrderRepository creates a new GormOrderRepository
func NewGormOrderRepository(db *gorm.DB) *GormOrderRepository {
	return &GormOrderRepository{db: db}
}

func (r *GormOrderRepository) withItems(ctx context.Context) *gorm.DB {
	return r.db.WithContext(ctx).
		Preload("Items", func(db *gorm.DB) *gorm.DB { return db.Order("position ASC") })
}

// FindByID finds an order by ID
func (r *GormOrderRepository) FindByID(ctx context.Context, id uuid.UUID) (*order.Order, error) {
	var model models.OrderModel
	if err := r.withItems(ctx).First(&model, "id = ?", id).Error; err != nil {
		return nil, translateError(err)
	}
	return model.ToDomain(), nil
}

// FindByIDForUpdate loads an order and locks its row (SELECT ... FOR UPDATE).
// Only meaningful inside a transaction.
func (r *GormOrderRepository) FindByIDForUpdate(ctx context.Context, id uuid.UUID) (*order.Order, error) {
	var model models.OrderModel
	if err := r.withItems(ctx).
		Clauses(clause.Locking{Strength: "UPDATE"}).
		First(&model, "id = ?", id).Error; err != nil {
		return nil, translateError(err)
	}
	return model.ToDomain(), nil
}

// FindByIDForStore finds an order by ID within a store
func (r *GormOrderRepository) FindByIDForStore(ctx context.Context, storeID, id uuid.UUID) (*order.Order, error) {
	var model models.OrderModel
	if err := r.withItems(ctx).
		Where("store_id = ? AND id = ?", storeID, id).
		First(&model).Error; err != nil {
		return nil, translateError(err)
	}
	return model.ToDomain(), nil
}

// FindByCustomer lists a customer's orders across all stores
func (r *GormOrderRepository) FindByCustomer(ctx context.Context, customerID uuid.UUID, filter order.Filter) ([]*order.Order, int64, error) {
	return r.list(ctx, "customer_id = ?", customerID, filter)
}

// FindByStore lists a store's orders
func (r *GormOrderRepository) FindByStore(ctx context.Context, storeID uuid.UUID, filter order.Filter) ([]*order.Order, int64, error) {
	return r.list(ctx, "store_id = ?", storeID, filter)
}

func (r *GormOrderRepository) list(ctx context.Context, cond string, arg any, filter order.Filter) ([]*order.Order, int64, error) {
	query := r.db.WithContext(ctx).Model(&models.OrderModel{}).Where(cond, arg)
	if filter.Status != nil {
		query = query.Where("status = ?", *filter.Status)
	}
	if filter.Search != "" {
		query = query.Where("order_number LIKE ?", "%"+filter.Search+"%")
	}

	var total int64
	if err := query.Count(&total).Error; err != nil {
		return nil, 0, err
	}
	var rows []models.OrderModel
	if err := orderAndPage(query, filter.OrderBy, filter.OrderDir, OrderSortFields, "created_at", filter.Page, filter.PageSize).
		Preload("Items", func(db *gorm.DB) *gorm.DB { return db.Order("position ASC") }).
		Find(&rows).Error; err != nil {
		return nil, 0, err
	}
	out := make([]*order.Order, len(rows))
	for i := range rows {
		out[i] = rows[i].ToDomain()
	}
	return out, total, nil
}

// Save inserts a new order with its lines, or updates the header of a stored
// one under optimistic locking. Lines never change after placement.
func (r *GormOrderRepository) Save(ctx context.Context, o *order.Order) error {
	db := r.db.WithContext(ctx)
	if o.IsNew() {
		model := models.OrderModelFromDomain(o)
		items := model.Items
		model.Items = nil
		err := db.Transaction(func(tx *gorm.DB) error {
			if err := tx.Omit(clause.Associations).Create(model).Error; err != nil {
				return translateError(err)
			}
			if len(items) == 0 {
				return nil
			}
			return tx.Create(&items).Error
		})
		if err != nil {
			return err
		}
		o.MarkPersisted()
		return nil
	}

	version := nextVersion(&o.BaseAggregateRoot)
	if err := updateVersioned(db, &models.OrderModel{}, o.ID, o.PersistedVersion(), map[string]any{
		"status":       o.Status,
		"note":         o.Note,
		"paid_at":      o.PaidAt,
		"cancelled_at": o.CancelledAt,
		"version":      version,
		"updated_at":   o.UpdatedAt,
	}); err != nil {
		return err
	}
	o.MarkPersisted()
	return nil
}

// HasPurchased reports whether the customer has a committed order containing productID
func (r *GormOrderRepository) HasPurchased(ctx context.Context, customerID, productID uuid.UUID) (bool, error) {
	var count int64
	err := r.db.WithContext(ctx).Model(&models.OrderItemModel{}).
		Joins("JOIN orders ON orders.id = order_items.order_id").
		Where("orders.customer_id = ? AND order_items.product_id = ? AND orders.status IN ?",
			customerID, productID, order.RevenueStatuses).
		Count(&count).Error
	if err != nil {
		return false, err
	}
	return count > 0, nil
}

// CountForStore counts every order of a store
func (r *GormOrderRepository) CountForStore(ctx context.Context, storeID uuid.UUID) (int64, error) {
	var count int64
	err := r.db.WithContext(ctx).Model(&models.OrderModel{}).Where("store_id = ?", storeID).Count(&count).Error
	return count, err
}

// SumRevenueForStore totals order value over the given statuses
func (r *GormOrderRepository) SumRevenueForStore(ctx context.Context, storeID uuid.UUID, statuses []order.Status) (decimal.Decimal, error) {
	if len(statuses) == 0 {
		return decimal.Zero, nil
	}
	var result struct {
		Total decimal.Decimal
	}
	err := r.db.WithContext(ctx).Model(&models.OrderModel{}).
		Select("COALESCE(SUM(total), 0) AS total").
		Where("store_id = ? AND status IN ?", storeID, statuses).
		Scan(&result).Error
	if err != nil {
		return decimal.Zero, err
	}
	return result.Total, nil
}

var (
	_ cart.Repository  = (*GormCartRepository)(nil)
	_ order.Repository = (*GormOrderRepository)(nil)
)
