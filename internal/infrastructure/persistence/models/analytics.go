package models

import (
	"time"

	"github.com/google/uuid"
	"github.com/shopforge/backend/internal/domain/ai"
	"github.com/shopforge/backend/internal/domain/analytics"
	"github.com/shopspring/decimal"
)

// AnalyticsEventModel is a raw storefront interaction
type AnalyticsEventModel struct {
	ID         uuid.UUID           `gorm:"type:uuid;primaryKey"`
	StoreID    uuid.UUID           `gorm:"type:uuid;not null;index:idx_analytics_events_store_time"`
	ProductID  *uuid.UUID          `gorm:"type:uuid;index"`
	VariantID  *uuid.UUID          `gorm:"type:uuid"`
	UserID     *uuid.UUID          `gorm:"type:uuid"`
	SessionID  string              `gorm:"type:varchar(100)"`
	Type       analytics.EventType `gorm:"type:varchar(32);not null"`
	Quantity   int                 `gorm:"not null"`
	Revenue    decimal.Decimal     `gorm:"type:decimal(18,2);not null"`
	Metadata   string              `gorm:"type:jsonb"`
	OccurredAt time.Time           `gorm:"not null;index:idx_analytics_events_store_time"`
}

func (AnalyticsEventModel) TableName() string {
	return "analytics_events"
}

func AnalyticsEventModelFromDomain(e *analytics.Event) *AnalyticsEventModel {
	return &AnalyticsEventModel{
		ID:         e.ID,
		StoreID:    e.StoreID,
		ProductID:  e.ProductID,
		VariantID:  e.VariantID,
		UserID:     e.UserID,
		SessionID:  e.SessionID,
		Type:       e.Type,
		Quantity:   e.Quantity,
		Revenue:    e.Revenue,
		Metadata:   marshalJSON(e.Metadata, "{}"),
		OccurredAt: e.OccurredAt,
	}
}

// DailyStatColumns are the counters shared by product and store daily stats
type DailyStatColumns struct {
	Views      int64           `gorm:"not null"`
	AddToCarts int64           `gorm:"not null"`
	Purchases  int64           `gorm:"not null"`
	Checkouts  int64           `gorm:"not null"`
	Revenue    decimal.Decimal `gorm:"type:decimal(18,2);not null"`
	UpdatedAt  time.Time       `gorm:"not null"`
}

func (c DailyStatColumns) toDomain(date time.Time) analytics.DailyStat {
	return analytics.DailyStat{
		Date:       date,
		Views:      c.Views,
		AddToCarts: c.AddToCarts,
		Purchases:  c.Purchases,
		Checkouts:  c.Checkouts,
		Revenue:    c.Revenue,
	}
}

// DailyStatColumnsFromDelta seeds counters for a first insert
func DailyStatColumnsFromDelta(d analytics.StatDelta, now time.Time) DailyStatColumns {
	return DailyStatColumns{
		Views:      d.Views,
		AddToCarts: d.AddToCarts,
		Purchases:  d.Purchases,
		Checkouts:  d.Checkouts,
		Revenue:    d.Revenue,
		UpdatedAt:  now,
	}
}

// ProductDailyStatModel is keyed by (product_id, date)
type ProductDailyStatModel struct {
	ProductID uuid.UUID `gorm:"type:uuid;primaryKey"`
	Date      time.Time `gorm:"type:date;primaryKey"`
	StoreID   uuid.UUID `gorm:"type:uuid;not null;index"`
	DailyStatColumns
}

func (ProductDailyStatModel) TableName() string {
	return "product_daily_stats"
}

func (m *ProductDailyStatModel) ToDomain() analytics.ProductDailyStat {
	return analytics.ProductDailyStat{
		DailyStat: m.toDomain(m.Date),
		ProductID: m.ProductID,
		StoreID:   m.StoreID,
	}
}

// StoreDailyStatModel is keyed by (store_id, date)
type StoreDailyStatModel struct {
	StoreID uuid.UUID `gorm:"type:uuid;primaryKey"`
	Date    time.Time `gorm:"type:date;primaryKey"`
	DailyStatColumns
}

func (StoreDailyStatModel) TableName() string {
	return "store_daily_stats"
}

func (m *StoreDailyStatModel) ToDomain() analytics.StoreDailyStat {
	return analytics.StoreDailyStat{
		DailyStat: m.toDomain(m.Date),
		StoreID:   m.StoreID,
	}
}

// AiPredictorStatModel is one stored demand prediction
type AiPredictorStatModel struct {
	ID              uuid.UUID `gorm:"type:uuid;primaryKey"`
	ProductID       uuid.UUID `gorm:"type:uuid;not null;index:idx_ai_predictor_stats_product_time"`
	StoreID         uuid.UUID `gorm:"type:uuid;not null;index"`
	Score           float64   `gorm:"not null"`
	Label           string    `gorm:"type:varchar(16);not null"`
	ForecastP50     *float64
	ForecastP90     *float64
	ModelConfidence *float64
	ModelVersion    string    `gorm:"type:varchar(64)"`
	ComputedAt      time.Time `gorm:"not null;index:idx_ai_predictor_stats_product_time"`
}

func (AiPredictorStatModel) TableName() string {
	return "ai_predictor_stats"
}

func (m *AiPredictorStatModel) ToDomain() *analytics.PredictorStat {
	return &analytics.PredictorStat{
		ID:              m.ID,
		ProductID:       m.ProductID,
		StoreID:         m.StoreID,
		Score:           m.Score,
		Label:           m.Label,
		ForecastP50:     m.ForecastP50,
		ForecastP90:     m.ForecastP90,
		ModelConfidence: m.ModelConfidence,
		ModelVersion:    m.ModelVersion,
		ComputedAt:      m.ComputedAt,
	}
}

func AiPredictorStatModelFromDomain(s *analytics.PredictorStat) *AiPredictorStatModel {
	return &AiPredictorStatModel{
		ID:              s.ID,
		ProductID:       s.ProductID,
		StoreID:         s.StoreID,
		Score:           s.Score,
		Label:           s.Label,
		ForecastP50:     s.ForecastP50,
		ForecastP90:     s.ForecastP90,
		ModelConfidence: s.ModelConfidence,
		ModelVersion:    s.ModelVersion,
		ComputedAt:      s.ComputedAt,
	}
}

// AiLogModel records one text-generation call
type AiLogModel struct {
	ID           uuid.UUID    `gorm:"type:uuid;primaryKey"`
	StoreID      *uuid.UUID   `gorm:"type:uuid;index"`
	UserID       *uuid.UUID   `gorm:"type:uuid"`
	Provider     string       `gorm:"type:varchar(32);not null"`
	Model        string       `gorm:"type:varchar(100)"`
	Feature      ai.Feature   `gorm:"type:varchar(32);not null;index"`
	Prompt       string       `gorm:"type:text"`
	Output       string       `gorm:"type:text"`
	InputTokens  int          `gorm:"not null"`
	OutputTokens int          `gorm:"not null"`
	LatencyMs    int64        `gorm:"not null"`
	Status       ai.LogStatus `gorm:"type:varchar(16);not null"`
	Error        string       `gorm:"type:text"`
	CreatedAt    time.Time    `gorm:"not null;index"`
}

func (AiLogModel) TableName() string {
	return "ai_logs"
}

func (m *AiLogModel) ToDomain() *ai.Log {
	return &ai.Log{
		ID:           m.ID,
		StoreID:      m.StoreID,
		UserID:       m.UserID,
		Provider:     m.Provider,
		Model:        m.Model,
		Feature:      m.Feature,
		Prompt:       m.Prompt,
		Output:       m.Output,
		InputTokens:  m.InputTokens,
		OutputTokens: m.OutputTokens,
		LatencyMs:    m.LatencyMs,
		Status:       m.Status,
		Error:        m.Error,
		CreatedAt:    m.CreatedAt,
	}
}

func AiLogModelFromDomain(l *ai.Log) *AiLogModel {
	return &AiLogModel{
		ID:           l.ID,
		StoreID:      l.StoreID,
		UserID:       l.UserID,
		Provider:     l.Provider,
		Model:        l.Model,
		Feature:      l.Feature,
		Prompt:       l.Prompt,
		Output:       l.Output,
		InputTokens:  l.InputTokens,
		OutputTokens: l.OutputTokens,
		LatencyMs:    l.LatencyMs,
		Status:       l.Status,
		Error:        l.Error,
		CreatedAt:    l.CreatedAt,
	}
}
