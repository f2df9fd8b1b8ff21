package persistence

import (
	"context"

	"github.com/shopforge/backend/internal/domain/ai"
	"github.com/shopforge/backend/internal/infrastructure/persistence/models"
	"gorm.io/gorm"
)

// GormAiLogRepository implements ai.LogRepository using GORM
type GormAiLogRepository struct {
	db *gorm.DB
}

// NewGormAiLogRepository creates a new GormAiLogRepository
func NewGormAiLogRepository(db *gorm.DB) *GormAiLogRepository {
	return &GormAiLogRepository{db: db}
}

// Save appends a log row. Logs are never updated.
func (r *GormAiLogRepository) Save(ctx context.Context, l *ai.Log) error {
	return r.db.WithContext(ctx).Create(models.AiLogModelFromDomain(l)).Error
}

// FindAll lists logs, newest first by default
func (r *GormAiLogRepository) FindAll(ctx context.Context, filter ai.LogFilter) ([]*ai.Log, int64, error) {
	query := r.db.WithContext(ctx).Model(&models.AiLogModel{})
	if filter.StoreID != nil {
		query = query.Where("store_id = ?", *filter.StoreID)
	}
	if filter.Feature != nil {
		query = query.Where("feature = ?", *filter.Feature)
	}
	if filter.Status != nil {
		query = query.Where("status = ?", *filter.Status)
	}

	var total int64
	if err := query.Count(&total).Error; err != nil {
		return nil, 0, err
	}
	var rows []models.AiLogModel
	if err := orderAndPage(query, filter.OrderBy, filter.OrderDir, AiLogSortFields, "created_at", filter.Page, filter.PageSize).
		Find(&rows).Error; err != nil {
		return nil, 0, err
	}
	out := make([]*ai.Log, len(rows))
	for i := range rows {
		out[i] = rows[i].ToDomain()
	}
	return out, total, nil
}

var _ ai.LogRepository = (*GormAiLogRepository)(nil)
