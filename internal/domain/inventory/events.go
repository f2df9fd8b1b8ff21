package inventory

import (
	"github.com/google/uuid"
	"github.com/shopforge/backend/internal/domain/shared"
)

const AggregateTypeInventory = "Inventory"

const (
	EventTypeInventoryLowStock   = "InventoryLowStock"
	EventTypeInventoryOutOfStock = "InventoryOutOfStock"
)

// StockAlertEvent is published when available stock crosses the threshold
type StockAlertEvent struct {
	shared.BaseDomainEvent
	VariantID uuid.UUID `json:"variant_id"`
	ProductID uuid.UUID `json:"product_id"`
	Available int       `json:"available"`
	Threshold int       `json:"threshold"`
}

func NewStockAlertEvent(eventType string, i *Inventory) *StockAlertEvent {
	return &StockAlertEvent{
		BaseDomainEvent: shared.NewBaseDomainEvent(eventType, AggregateTypeInventory, i.ID, i.StoreID),
		VariantID:       i.VariantID,
		ProductID:       i.ProductID,
		Available:       i.Available(),
		Threshold:       i.LowStockThreshold,
	}
}
