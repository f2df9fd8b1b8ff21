package inventory

import (
	"time"

	"github.com/google/uuid"
	"github.com/shopforge/backend/internal/domain/shared"
)

// DefaultLowStockThreshold applies when a variant is created without one
const DefaultLowStockThreshold = 5

// Inventory tracks stock for one variant. Quantity is on hand; Reserved is
// held by pending orders and is always <= Quantity.
type Inventory struct {
	shared.StoreAggregateRoot
	VariantID         uuid.UUID
	ProductID         uuid.UUID
	Quantity          int
	Reserved          int
	LowStockThreshold int
	LastRestockedAt   *time.Time
}

// NewInventory creates an empty stock record for a variant
func NewInventory(storeID, productID, variantID uuid.UUID) *Inventory {
	return &Inventory{
		StoreAggregateRoot: shared.NewStoreAggregateRoot(storeID),
		VariantID:          variantID,
		ProductID:          productID,
		LowStockThreshold:  DefaultLowStockThreshold,
	}
}

// Available is the quantity that can still be reserved
func (i *Inventory) Available() int {
	return i.Quantity - i.Reserved
}

// IsLow reports whether available stock is at or below the threshold
func (i *Inventory) IsLow() bool {
	return i.Available() <= i.LowStockThreshold
}

// SetQuantity overwrites the on-hand count (stock take)
func (i *Inventory) SetQuantity(qty int) error {
	if qty < 0 {
		return shared.NewDomainError("INVALID_QUANTITY", "Quantity cannot be negative")
	}
	if qty < i.Reserved {
		return shared.NewDomainError("INVALID_QUANTITY", "Quantity cannot be lower than reserved stock")
	}
	if qty > i.Quantity {
		i.markRestocked()
	}
	i.Quantity = qty
	i.changed()
	return nil
}

// Adjust applies a signed delta to the on-hand count
func (i *Inventory) Adjust(delta int) error {
	if delta == 0 {
		return shared.NewDomainError("INVALID_QUANTITY", "Adjustment cannot be zero")
	}
	next := i.Quantity + delta
	if next < i.Reserved {
		return shared.ErrInsufficientStock
	}
	if delta > 0 {
		i.markRestocked()
	}
	i.Quantity = next
	i.changed()
	return nil
}

// SetLowStockThreshold changes the alert threshold
func (i *Inventory) SetLowStockThreshold(threshold int) error {
	if threshold < 0 {
		return shared.NewDomainError("INVALID_THRESHOLD", "Threshold cannot be negative")
	}
	i.LowStockThreshold = threshold
	i.Touch()
	i.IncrementVersion()
	return nil
}

// Reserve holds qty for a pending order
func (i *Inventory) Reserve(qty int) error {
	if qty <= 0 {
		return shared.NewDomainError("INVALID_QUANTITY", "Quantity must be positive")
	}
	if i.Available() < qty {
		return shared.ErrInsufficientStock
	}
	i.Reserved += qty
	i.changed()
	return nil
}

// Release returns a reservation to available stock
func (i *Inventory) Release(qty int) error {
	if qty <= 0 || qty > i.Reserved {
		return shared.NewDomainError("INVALID_QUANTITY", "Cannot release more than reserved")
	}
	i.Reserved -= qty
	i.Touch()
	i.IncrementVersion()
	return nil
}

// Commit converts a reservation into a sale, removing it from on-hand stock
func (i *Inventory) Commit(qty int) error {
	if qty <= 0 || qty > i.Reserved {
		return shared.NewDomainError("INVALID_QUANTITY", "Cannot commit more than reserved")
	}
	i.Reserved -= qty
	i.Quantity -= qty
	i.changed()
	return nil
}

// Restock puts committed quantity back on hand (cancelled paid order)
func (i *Inventory) Restock(qty int) error {
	if qty <= 0 {
		return shared.NewDomainError("INVALID_QUANTITY", "Quantity must be positive")
	}
	i.Quantity += qty
	i.markRestocked()
	i.changed()
	return nil
}

func (i *Inventory) markRestocked() {
	now := time.Now()
	i.LastRestockedAt = &now
}

// changed bumps the version and emits a stock alert when the level is low
func (i *Inventory) changed() {
	i.Touch()
	i.IncrementVersion()
	if !i.IsLow() {
		return
	}
	if i.Available() <= 0 {
		i.AddDomainEvent(NewStockAlertEvent(EventTypeInventoryOutOfStock, i))
		return
	}
	i.AddDomainEvent(NewStockAlertEvent(EventTypeInventoryLowStock, i))
}
