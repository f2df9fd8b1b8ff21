package persistence

import (
	"context"

	"github.com/google/uuid"
	"github.com/shopforge/backend/internal/domain/review"
	"github.com/shopforge/backend/internal/domain/shared"
	"github.com/shopforge/backend/internal/infrastructure/persistence/models"
	"github.com/shopspring/decimal"
	"gorm.io/gorm"
)

// GormReviewRepository implements review.Repository using GORM
type GormReviewRepository struct {
	db *gorm.DB
}

// NewGormReviewRepository creates a new GormReviewRepository
func NewGormReviewRepository(db *gorm.DB) *GormReviewRepository {
	return &GormReviewRepository{db: db}
}

func (r *GormReviewRepository) FindByID(ctx context.Context, id uuid.UUID) (*review.Review, error) {
	var model models.ReviewModel
	if err := r.db.WithContext(ctx).First(&model, "id = ?", id).Error; err != nil {
		return nil, translateError(err)
	}
	return model.ToDomain(), nil
}

func (r *GormReviewRepository) FindByUserAndProduct(ctx context.Context, userID, productID uuid.UUID) (*review.Review, error) {
	var model models.ReviewModel
	if err := r.db.WithContext(ctx).
		Where("user_id = ? AND product_id = ?", userID, productID).
		First(&model).Error; err != nil {
		return nil, translateError(err)
	}
	return model.ToDomain(), nil
}

// FindByProduct lists a product's reviews, newest first by default
func (r *GormReviewRepository) FindByProduct(ctx context.Context, productID uuid.UUID, filter shared.Filter) ([]*review.Review, int64, error) {
	return r.list(ctx, "product_id = ?", productID, filter)
}

// FindByStore lists reviews across all products of a store
func (r *GormReviewRepository) FindByStore(ctx context.Context, storeID uuid.UUID, filter shared.Filter) ([]*review.Review, int64, error) {
	return r.list(ctx, "store_id = ?", storeID, filter)
}

func (r *GormReviewRepository) list(ctx context.Context, cond string, arg any, filter shared.Filter) ([]*review.Review, int64, error) {
	query := r.db.WithContext(ctx).Model(&models.ReviewModel{}).Where(cond, arg)
	if rating, ok := filter.Filters["rating"].(int); ok && rating > 0 {
		query = query.Where("rating = ?", rating)
	}

	var total int64
	if err := query.Count(&total).Error; err != nil {
		return nil, 0, err
	}
	var rows []models.ReviewModel
	if err := orderAndPage(query, filter.OrderBy, filter.OrderDir, ReviewSortFields, "created_at", filter.Page, filter.PageSize).
		Find(&rows).Error; err != nil {
		return nil, 0, err
	}
	out := make([]*review.Review, len(rows))
	for i := range rows {
		out[i] = rows[i].ToDomain()
	}
	return out, total, nil
}

func (r *GormReviewRepository) Save(ctx context.Context, rv *review.Review) error {
	return translateError(r.db.WithContext(ctx).Save(models.ReviewModelFromDomain(rv)).Error)
}

func (r *GormReviewRepository) Delete(ctx context.Context, id uuid.UUID) error {
	result := r.db.WithContext(ctx).Delete(&models.ReviewModel{}, "id = ?", id)
	if result.Error != nil {
		return result.Error
	}
	if result.RowsAffected == 0 {
		return shared.ErrNotFound
	}
	return nil
}

// Summarize recomputes average and count from every stored rating
func (r *GormReviewRepository) Summarize(ctx context.Context, productID uuid.UUID) (review.RatingSummary, error) {
	var row struct {
		Average float64
		Total   int
	}
	err := r.db.WithContext(ctx).Model(&models.ReviewModel{}).
		Select("COALESCE(AVG(rating), 0) AS average, COUNT(*) AS total").
		Where("product_id = ?", productID).
		Scan(&row).Error
	if err != nil {
		return review.RatingSummary{}, err
	}
	return review.RatingSummary{
		Average: decimal.NewFromFloat(row.Average).Round(2),
		Count:   row.Total,
	}, nil
}

var _ review.Repository = (*GormReviewRepository)(nil)
