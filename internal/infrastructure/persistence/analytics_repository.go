package persistence

import (
	"context"
	"time"

	"github.com/google/uuid"
	"github.com/shopforge/backend/internal/domain/analytics"
	"github.com/shopforge/backend/internal/infrastructure/persistence/models"
	"github.com/shopspring/decimal"
	"gorm.io/gorm"
	"gorm.io/gorm/clause"
)

// GormAnalyticsRepository implements analytics.Repository using GORM.
// Daily counters are maintained with INSERT ... ON CONFLICT DO UPDATE so
// concurrent events on the same day never lose increments.
type GormAnalyticsRepository struct {
	db *gorm.DB
}

// NewGormAnalyticsRepository creates a new GormAnalyticsRepository
func NewGormAnalyticsRepository(db *gorm.DB) *GormAnalyticsRepository {
	return &GormAnalyticsRepository{db: db}
}

// RecordEvent stores the raw event and bumps the product and store rows for its day
func (r *GormAnalyticsRepository) RecordEvent(ctx context.Context, e *analytics.Event) error {
	delta := e.Delta()
	day := e.Day()
	now := time.Now().UTC()

	return r.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		if err := tx.Create(models.AnalyticsEventModelFromDomain(e)).Error; err != nil {
			return err
		}
		if e.ProductID != nil {
			row := &models.ProductDailyStatModel{
				ProductID:        *e.ProductID,
				Date:             day,
				StoreID:          e.StoreID,
				DailyStatColumns: models.DailyStatColumnsFromDelta(delta, now),
			}
			if err := tx.Clauses(upsertCounters("product_daily_stats", []string{"product_id", "date"}, delta, now)).
				Create(row).Error; err != nil {
				return err
			}
		}
		row := &models.StoreDailyStatModel{
			StoreID:          e.StoreID,
			Date:             day,
			DailyStatColumns: models.DailyStatColumnsFromDelta(delta, now),
		}
		return tx.Clauses(upsertCounters("store_daily_stats", []string{"store_id", "date"}, delta, now)).
			Create(row).Error
	})
}

func upsertCounters(table string, keys []string, d analytics.StatDelta, now time.Time) clause.OnConflict {
	cols := make([]clause.Column, len(keys))
	for i, k := range keys {
		cols[i] = clause.Column{Name: k}
	}
	return clause.OnConflict{
		Columns: cols,
		DoUpdates: clause.Assignments(map[string]any{
			"views":        gorm.Expr(table+".views + ?", d.Views),
			"add_to_carts": gorm.Expr(table+".add_to_carts + ?", d.AddToCarts),
			"purchases":    gorm.Expr(table+".purchases + ?", d.Purchases),
			"checkouts":    gorm.Expr(table+".checkouts + ?", d.Checkouts),
			"revenue":      gorm.Expr(table+".revenue + ?", d.Revenue),
			"updated_at":   now,
		}),
	}
}

// ProductStats returns daily rows for the products within [from, to], oldest first
func (r *GormAnalyticsRepository) ProductStats(ctx context.Context, productIDs []uuid.UUID, from, to time.Time) ([]analytics.ProductDailyStat, error) {
	if len(productIDs) == 0 {
		return []analytics.ProductDailyStat{}, nil
	}
	var rows []models.ProductDailyStatModel
	if err := r.db.WithContext(ctx).
		Where("product_id IN ? AND date >= ? AND date <= ?", productIDs, analytics.TruncateDay(from), analytics.TruncateDay(to)).
		Order("date ASC").
		Find(&rows).Error; err != nil {
		return nil, err
	}
	out := make([]analytics.ProductDailyStat, len(rows))
	for i := range rows {
		out[i] = rows[i].ToDomain()
	}
	return out, nil
}

// StoreStats returns a store's daily rows within [from, to], oldest first
func (r *GormAnalyticsRepository) StoreStats(ctx context.Context, storeID uuid.UUID, from, to time.Time) ([]analytics.StoreDailyStat, error) {
	var rows []models.StoreDailyStatModel
	if err := r.db.WithContext(ctx).
		Where("store_id = ? AND date >= ? AND date <= ?", storeID, analytics.TruncateDay(from), analytics.TruncateDay(to)).
		Order("date ASC").
		Find(&rows).Error; err != nil {
		return nil, err
	}
	out := make([]analytics.StoreDailyStat, len(rows))
	for i := range rows {
		out[i] = rows[i].ToDomain()
	}
	return out, nil
}

// TopProducts ranks a store's products by purchases, then revenue, then views
func (r *GormAnalyticsRepository) TopProducts(ctx context.Context, storeID uuid.UUID, from, to time.Time, limit int) ([]analytics.ProductTotals, error) {
	if limit <= 0 {
		limit = 10
	}
	var rows []struct {
		ProductID uuid.UUID
		Views     int64
		Purchases int64
		Revenue   decimal.Decimal
	}
	err := r.db.WithContext(ctx).Model(&models.ProductDailyStatModel{}).
		Select("product_id, SUM(views) AS views, SUM(purchases) AS purchases, COALESCE(SUM(revenue), 0) AS revenue").
		Where("store_id = ? AND date >= ? AND date <= ?", storeID, analytics.TruncateDay(from), analytics.TruncateDay(to)).
		Group("product_id").
		Order("purchases DESC, revenue DESC, views DESC").
		Limit(limit).
		Scan(&rows).Error
	if err != nil {
		return nil, err
	}
	out := make([]analytics.ProductTotals, len(rows))
	for i, row := range rows {
		out[i] = analytics.ProductTotals{
			ProductID: row.ProductID,
			Views:     row.Views,
			Purchases: row.Purchases,
			Revenue:   row.Revenue,
		}
	}
	return out, nil
}

// GormPredictorStatRepository implements analytics.PredictorStatRepository
type GormPredictorStatRepository struct {
	db *gorm.DB
}

func NewGormPredictorStatRepository(db *gorm.DB) *GormPredictorStatRepository {
	return &GormPredictorStatRepository{db: db}
}

// SaveBatch appends predictions; history is kept and readers pick the newest
func (r *GormPredictorStatRepository) SaveBatch(ctx context.Context, stats []*analytics.PredictorStat) error {
	if len(stats) == 0 {
		return nil
	}
	rows := make([]*models.AiPredictorStatModel, len(stats))
	for i, s := range stats {
		rows[i] = models.AiPredictorStatModelFromDomain(s)
	}
	return r.db.WithContext(ctx).CreateInBatches(rows, 100).Error
}

// LatestForStore returns one row per product: the most recent prediction
func (r *GormPredictorStatRepository) LatestForStore(ctx context.Context, storeID uuid.UUID) ([]*analytics.PredictorStat, error) {
	latest := r.db.Model(&models.AiPredictorStatModel{}).
		Select("product_id, MAX(computed_at) AS latest").
		Where("store_id = ?", storeID).
		Group("product_id")

	var rows []models.AiPredictorStatModel
	if err := r.db.WithContext(ctx).
		Table("ai_predictor_stats AS s").
		Select("s.*").
		Joins("JOIN (?) AS l ON l.product_id = s.product_id AND l.latest = s.computed_at", latest).
		Where("s.store_id = ?", storeID).
		Order("s.score DESC").
		Find(&rows).Error; err != nil {
		return nil, err
	}
	out := make([]*analytics.PredictorStat, 0, len(rows))
	seen := make(map[uuid.UUID]bool, len(rows))
	for i := range rows {
		if seen[rows[i].ProductID] {
			continue
		}
		seen[rows[i].ProductID] = true
		out = append(out, rows[i].ToDomain())
	}
	return out, nil
}

func (r *GormPredictorStatRepository) LatestForProduct(ctx context.Context, productID uuid.UUID) (*analytics.PredictorStat, error) {
	var model models.AiPredictorStatModel
	if err := r.db.WithContext(ctx).
		Where("product_id = ?", productID).
		Order("computed_at DESC").
		First(&model).Error; err != nil {
		return nil, translateError(err)
	}
	return model.ToDomain(), nil
}

var (
	_ analytics.Repository              = (*GormAnalyticsRepository)(nil)
	_ analytics.PredictorStatRepository = (*GormPredictorStatRepository)(nil)
)
