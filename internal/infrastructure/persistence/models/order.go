package models

import (
	"time"

	"github.com/google/uuid"
	"github.com/shopforge/backend/internal/domain/cart"
	"github.com/shopforge/backend/internal/domain/order"
	"github.com/shopspring/decimal"
)

// CartModel is the persistence model for a user's cart
type CartModel struct {
	AggregateModel
	UserID uuid.UUID       `gorm:"type:uuid;not null;uniqueIndex"`
	Items  []CartItemModel `gorm:"foreignKey:CartID;constraint:OnDelete:CASCADE"`
}

func (CartModel) TableName() string {
	return "carts"
}

// CartItemModel is one cart line
type CartItemModel struct {
	ID        uuid.UUID       `gorm:"type:uuid;primaryKey"`
	CartID    uuid.UUID       `gorm:"type:uuid;not null;index"`
	VariantID uuid.UUID       `gorm:"type:uuid;not null"`
	ProductID uuid.UUID       `gorm:"type:uuid;not null"`
	StoreID   uuid.UUID       `gorm:"type:uuid;not null"`
	Quantity  int             `gorm:"not null"`
	UnitPrice decimal.Decimal `gorm:"type:decimal(18,2);not null"`
	Position  int             `gorm:"not null"`
}

func (CartItemModel) TableName() string {
	return "cart_items"
}

func (m *CartModel) ToDomain() *cart.Cart {
	c := &cart.Cart{
		BaseAggregateRoot: m.ToAggregateRoot(),
		UserID:            m.UserID,
		Items:             make([]cart.Item, 0, len(m.Items)),
	}
	for _, it := range m.Items {
		c.Items = append(c.Items, cart.Item{
			ID:        it.ID,
			VariantID: it.VariantID,
			ProductID: it.ProductID,
			StoreID:   it.StoreID,
			Quantity:  it.Quantity,
			UnitPrice: it.UnitPrice,
		})
	}
	return c
}

func CartModelFromDomain(c *cart.Cart) *CartModel {
	m := &CartModel{UserID: c.UserID}
	m.FromDomainAggregateRoot(c.BaseAggregateRoot)
	m.Items = make([]CartItemModel, 0, len(c.Items))
	for i, it := range c.Items {
		m.Items = append(m.Items, CartItemModel{
			ID:        it.ID,
			CartID:    c.ID,
			VariantID: it.VariantID,
			ProductID: it.ProductID,
			StoreID:   it.StoreID,
			Quantity:  it.Quantity,
			UnitPrice: it.UnitPrice,
			Position:  i,
		})
	}
	return m
}

// OrderModel is the persistence model for the Order aggregate.
// The shipping address is stored as a JSON document.
type OrderModel struct {
	StoreAggregateModel
	OrderNumber     string           `gorm:"type:varchar(32);not null;uniqueIndex"`
	CustomerID      uuid.UUID        `gorm:"type:uuid;not null;index"`
	CustomerEmail   string           `gorm:"type:varchar(200);not null"`
	Subtotal        decimal.Decimal  `gorm:"type:decimal(18,2);not null"`
	ShippingCost    decimal.Decimal  `gorm:"type:decimal(18,2);not null"`
	Total           decimal.Decimal  `gorm:"type:decimal(18,2);not null"`
	ShippingAddress string           `gorm:"type:jsonb;not null"`
	Note            string           `gorm:"type:text"`
	Status          order.Status     `gorm:"type:varchar(20);not null;index"`
	PaidAt          *time.Time
	CancelledAt     *time.Time
	Items           []OrderItemModel `gorm:"foreignKey:OrderID;constraint:OnDelete:CASCADE"`
}

func (OrderModel) TableName() string {
	return "orders"
}

// OrderItemModel is an immutable order line snapshot
type OrderItemModel struct {
	ID          uuid.UUID       `gorm:"type:uuid;primaryKey"`
	OrderID     uuid.UUID       `gorm:"type:uuid;not null;index"`
	ProductID   uuid.UUID       `gorm:"type:uuid;not null;index"`
	VariantID   uuid.UUID       `gorm:"type:uuid;not null"`
	ProductName string          `gorm:"type:varchar(200);not null"`
	VariantName string          `gorm:"type:varchar(200)"`
	SKU         string          `gorm:"column:sku;type:varchar(64)"`
	UnitPrice   decimal.Decimal `gorm:"type:decimal(18,2);not null"`
	Quantity    int             `gorm:"not null"`
	LineTotal   decimal.Decimal `gorm:"type:decimal(18,2);not null"`
	Position    int             `gorm:"not null"`
}

func (OrderItemModel) TableName() string {
	return "order_items"
}

func (m *OrderModel) ToDomain() *order.Order {
	o := &order.Order{
		StoreAggregateRoot: m.ToStoreAggregateRoot(),
		OrderNumber:        m.OrderNumber,
		CustomerID:         m.CustomerID,
		CustomerEmail:      m.CustomerEmail,
		Subtotal:           m.Subtotal,
		ShippingCost:       m.ShippingCost,
		Total:              m.Total,
		Note:               m.Note,
		Status:             m.Status,
		PaidAt:             m.PaidAt,
		CancelledAt:        m.CancelledAt,
		Items:              make([]order.Item, 0, len(m.Items)),
	}
	unmarshalJSON(m.ShippingAddress, &o.ShippingAddress)
	for _, it := range m.Items {
		o.Items = append(o.Items, order.Item{
			ID:          it.ID,
			ProductID:   it.ProductID,
			VariantID:   it.VariantID,
			ProductName: it.ProductName,
			VariantName: it.VariantName,
			SKU:         it.SKU,
			UnitPrice:   it.UnitPrice,
			Quantity:    it.Quantity,
			LineTotal:   it.LineTotal,
		})
	}
	return o
}

func OrderModelFromDomain(o *order.Order) *OrderModel {
	m := &OrderModel{
		OrderNumber:     o.OrderNumber,
		CustomerID:      o.CustomerID,
		CustomerEmail:   o.CustomerEmail,
		Subtotal:        o.Subtotal,
		ShippingCost:    o.ShippingCost,
		Total:           o.Total,
		ShippingAddress: marshalJSON(o.ShippingAddress, "{}"),
		Note:            o.Note,
		Status:          o.Status,
		PaidAt:          o.PaidAt,
		CancelledAt:     o.CancelledAt,
		Items:           make([]OrderItemModel, 0, len(o.Items)),
	}
	m.FromDomainStoreAggregateRoot(o.StoreAggregateRoot)
	for i, it := range o.Items {
		m.Items = append(m.Items, OrderItemModel{
			ID:          it.ID,
			OrderID:     o.ID,
			ProductID:   it.ProductID,
			VariantID:   it.VariantID,
			ProductName: it.ProductName,
			VariantName: it.VariantName,
			SKU:         it.SKU,
			UnitPrice:   it.UnitPrice,
			Quantity:    it.Quantity,
			LineTotal:   it.LineTotal,
			Position:    i,
		})
	}
	return m
}
