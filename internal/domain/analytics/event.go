package analytics

import (
	"time"

	"github.com/google/uuid"
	"github.com/shopforge/backend/internal/domain/shared"
	"github.com/shopspring/decimal"
)

// EventType is the kind of storefront interaction recorded
type EventType string

const (
	EventStoreView   EventType = "store_view"
	EventProductView EventType = "product_view"
	EventAddToCart   EventType = "add_to_cart"
	EventCheckout    EventType = "checkout"
	EventPurchase    EventType = "purchase"
)

// IsValid reports whether t is a known event type
func (t EventType) IsValid() bool {
	switch t {
	case EventStoreView, EventProductView, EventAddToCart, EventCheckout, EventPurchase:
		return true
	}
	return false
}

// RequiresProduct reports whether events of this type must name a product
func (t EventType) RequiresProduct() bool {
	return t == EventProductView || t == EventAddToCart || t == EventPurchase
}

// Event is one recorded interaction
type Event struct {
	ID         uuid.UUID         `json:"id"`
	StoreID    uuid.UUID         `json:"store_id"`
	ProductID  *uuid.UUID        `json:"product_id,omitempty"`
	VariantID  *uuid.UUID        `json:"variant_id,omitempty"`
	UserID     *uuid.UUID        `json:"user_id,omitempty"`
	SessionID  string            `json:"session_id,omitempty"`
	Type       EventType         `json:"type"`
	Quantity   int               `json:"quantity"`
	Revenue    decimal.Decimal   `json:"revenue"`
	Metadata   map[string]string `json:"metadata,omitempty"`
	OccurredAt time.Time         `json:"occurred_at"`
}

// NewEvent validates and creates an analytics event
func NewEvent(storeID uuid.UUID, eventType EventType, productID *uuid.UUID) (*Event, error) {
	if storeID == uuid.Nil {
		return nil, shared.NewDomainError("INVALID_EVENT", "Store is required")
	}
	if !eventType.IsValid() {
		return nil, shared.NewDomainError("INVALID_EVENT", "Unknown analytics event type")
	}
	if eventType.RequiresProduct() && productID == nil {
		return nil, shared.NewDomainError("INVALID_EVENT", "Product is required for this event type")
	}
	return &Event{
		ID:         uuid.New(),
		StoreID:    storeID,
		ProductID:  productID,
		Type:       eventType,
		Quantity:   1,
		Revenue:    decimal.Zero,
		OccurredAt: time.Now().UTC(),
	}, nil
}

// StatDelta is the increment an event contributes to daily counters
type StatDelta struct {
	Views      int64
	AddToCarts int64
	Purchases  int64
	Checkouts  int64
	Revenue    decimal.Decimal
}

// Delta converts the event into counter increments
func (e *Event) Delta() StatDelta {
	d := StatDelta{Revenue: decimal.Zero}
	qty := int64(e.Quantity)
	if qty <= 0 {
		qty = 1
	}
	switch e.Type {
	case EventStoreView, EventProductView:
		d.Views = 1
	case EventAddToCart:
		d.AddToCarts = qty
	case EventCheckout:
		d.Checkouts = 1
	case EventPurchase:
		d.Purchases = qty
		d.Revenue = e.Revenue
	}
	return d
}

// Day truncates the event time to its UTC calendar date
func (e *Event) Day() time.Time {
	return TruncateDay(e.OccurredAt)
}

// TruncateDay returns midnight UTC of t's date
func TruncateDay(t time.Time) time.Time {
	y, m, d := t.UTC().Date()
	return time.Date(y, m, d, 0, 0, 0, 0, time.UTC)
}
