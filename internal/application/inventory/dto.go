package inventory

import (
	"time"

	"github.com/google/uuid"
	"github.com/shopforge/backend/internal/domain/inventory"
)

// InventoryItemResponse represents a variant's stock record in API responses
type InventoryItemResponse struct {
	ID                uuid.UUID  `json:"id"`
	StoreID           uuid.UUID  `json:"store_id"`
	ProductID         uuid.UUID  `json:"product_id"`
	VariantID         uuid.UUID  `json:"variant_id"`
	Quantity          int        `json:"quantity"`
	Reserved          int        `json:"reserved"`
	Available         int        `json:"available"`
	LowStockThreshold int        `json:"low_stock_threshold"`
	IsLowStock        bool       `json:"is_low_stock"`
	LastRestockedAt   *time.Time `json:"last_restocked_at,omitempty"`
	UpdatedAt         time.Time  `json:"updated_at"`
	Version           int        `json:"version"`
}

// InventoryListFilter represents filter options for inventory listings
type InventoryListFilter struct {
	ProductID    *uuid.UUID `form:"product_id"`
	LowStockOnly bool       `form:"low_stock_only"`
	Page         int        `form:"page" binding:"omitempty,min=1"`
	PageSize     int        `form:"page_size" binding:"omitempty,min=1,max=100"`
}

// SetQuantityRequest overwrites the on-hand count after a stock take
type SetQuantityRequest struct {
	Quantity int `json:"quantity" binding:"min=0"`
}

// AdjustStockRequest applies a signed delta to on-hand stock
type AdjustStockRequest struct {
	Delta  int    `json:"delta" binding:"required"`
	Reason string `json:"reason" binding:"max=200"`
}

// SetThresholdRequest changes the low-stock alert threshold
type SetThresholdRequest struct {
	Threshold int `json:"threshold" binding:"min=0"`
}

// ToInventoryItemResponse converts a domain inventory record
func ToInventoryItemResponse(i *inventory.Inventory) InventoryItemResponse {
	return InventoryItemResponse{
		ID:                i.ID,
		StoreID:           i.StoreID,
		ProductID:         i.ProductID,
		VariantID:         i.VariantID,
		Quantity:          i.Quantity,
		Reserved:          i.Reserved,
		Available:         i.Available(),
		LowStockThreshold: i.LowStockThreshold,
		IsLowStock:        i.IsLow(),
		LastRestockedAt:   i.LastRestockedAt,
		UpdatedAt:         i.UpdatedAt,
		Version:           i.GetVersion(),
	}
}
