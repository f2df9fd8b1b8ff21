package models

import (
	"time"

	"github.com/google/uuid"
	"github.com/shopforge/backend/internal/domain/inventory"
)

// InventoryModel holds stock for one variant
type InventoryModel struct {
	StoreAggregateModel
	VariantID         uuid.UUID `gorm:"type:uuid;not null;uniqueIndex"`
	ProductID         uuid.UUID `gorm:"type:uuid;not null;index"`
	Quantity          int       `gorm:"not null"`
	Reserved          int       `gorm:"not null"`
	LowStockThreshold int       `gorm:"not null"`
	LastRestockedAt   *time.Time
}

func (InventoryModel) TableName() string {
	return "inventories"
}

func (m *InventoryModel) ToDomain() *inventory.Inventory {
	return &inventory.Inventory{
		StoreAggregateRoot: m.ToStoreAggregateRoot(),
		VariantID:          m.VariantID,
		ProductID:          m.ProductID,
		Quantity:           m.Quantity,
		Reserved:           m.Reserved,
		LowStockThreshold:  m.LowStockThreshold,
		LastRestockedAt:    m.LastRestockedAt,
	}
}

func InventoryModelFromDomain(i *inventory.Inventory) *InventoryModel {
	m := &InventoryModel{
		VariantID:         i.VariantID,
		ProductID:         i.ProductID,
		Quantity:          i.Quantity,
		Reserved:          i.Reserved,
		LowStockThreshold: i.LowStockThreshold,
		LastRestockedAt:   i.LastRestockedAt,
	}
	m.FromDomainStoreAggregateRoot(i.StoreAggregateRoot)
	return m
}
