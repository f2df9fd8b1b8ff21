package analytics

import (
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
)

// RecordEventRequest is a storefront view reported by a client
type RecordEventRequest struct {
	StoreID   uuid.UUID         `json:"store_id" binding:"required"`
	ProductID *uuid.UUID        `json:"product_id"`
	SessionID string            `json:"session_id" binding:"max=128"`
	Type      string            `json:"type" binding:"required,oneof=store_view product_view"`
	Metadata  map[string]string `json:"metadata" binding:"max=20"`
}

// RecordInput is an event to record. Revenue is only trusted from
// server-side callers; the HTTP handler never sets it.
type RecordInput struct {
	StoreID   uuid.UUID
	ProductID *uuid.UUID
	VariantID *uuid.UUID
	UserID    *uuid.UUID
	SessionID string
	Type      string
	Quantity  int
	Revenue   decimal.Decimal
	Metadata  map[string]string
}

// DashboardTotals sums a store's counters over the dashboard window
type DashboardTotals struct {
	Views          int64           `json:"views"`
	AddToCarts     int64           `json:"add_to_carts"`
	Checkouts      int64           `json:"checkouts"`
	Purchases      int64           `json:"purchases"`
	Revenue        decimal.Decimal `json:"revenue"`
	ConversionRate float64         `json:"conversion_rate"`
}

// DailyPoint is one day of the dashboard series
type DailyPoint struct {
	Date       string          `json:"date"`
	Views      int64           `json:"views"`
	AddToCarts int64           `json:"add_to_carts"`
	Checkouts  int64           `json:"checkouts"`
	Purchases  int64           `json:"purchases"`
	Revenue    decimal.Decimal `json:"revenue"`
}

// TopProduct is a product ranked on the dashboard
type TopProduct struct {
	ProductID uuid.UUID       `json:"product_id"`
	Name      string          `json:"name"`
	Views     int64           `json:"views"`
	Purchases int64           `json:"purchases"`
	Revenue   decimal.Decimal `json:"revenue"`
}

// DashboardResponse is a store's analytics summary
type DashboardResponse struct {
	StoreID     uuid.UUID       `json:"store_id"`
	Days        int             `json:"days"`
	From        time.Time       `json:"from"`
	To          time.Time       `json:"to"`
	Totals      DashboardTotals `json:"totals"`
	Series      []DailyPoint    `json:"series"`
	TopProducts []TopProduct    `json:"top_products"`
}
