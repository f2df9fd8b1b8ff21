package order

import (
	"fmt"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/shopforge/backend/internal/domain/shared"
	"github.com/shopspring/decimal"
)

// Status is the order lifecycle state
type Status string

const (
	StatusPending    Status = "pending"
	StatusPaid       Status = "paid"
	StatusProcessing Status = "processing"
	StatusShipped    Status = "shipped"
	StatusDelivered  Status = "delivered"
	StatusCancelled  Status = "cancelled"
	StatusRefunded   Status = "refunded"
)

var transitions = map[Status][]Status{
	StatusPending:    {StatusPaid, StatusCancelled},
	StatusPaid:       {StatusProcessing, StatusCancelled},
	StatusProcessing: {StatusShipped, StatusCancelled},
	StatusShipped:    {StatusDelivered},
	StatusDelivered:  {StatusRefunded},
}

// IsValid reports whether s is a known status
func (s Status) IsValid() bool {
	switch s {
	case StatusPending, StatusPaid, StatusProcessing, StatusShipped,
		StatusDelivered, StatusCancelled, StatusRefunded:
		return true
	}
	return false
}

// CanTransitionTo reports whether the state machine allows s -> next
func (s Status) CanTransitionTo(next Status) bool {
	for _, allowed := range transitions[s] {
		if allowed == next {
			return true
		}
	}
	return false
}

// IsCommitted reports whether stock for this order has left inventory
func (s Status) IsCommitted() bool {
	switch s {
	case StatusPaid, StatusProcessing, StatusShipped, StatusDelivered:
		return true
	}
	return false
}

// RevenueStatuses are the statuses counted towards store revenue
var RevenueStatuses = []Status{StatusPaid, StatusProcessing, StatusShipped, StatusDelivered}

// Address is the shipping destination snapshot
type Address struct {
	FullName   string `json:"full_name"`
	Line1      string `json:"line1"`
	Line2      string `json:"line2,omitempty"`
	City       string `json:"city"`
	Region     string `json:"region,omitempty"`
	PostalCode string `json:"postal_code"`
	Country    string `json:"country"`
	Phone      string `json:"phone,omitempty"`
}

// Validate checks the required address fields
func (a Address) Validate() error {
	if strings.TrimSpace(a.FullName) == "" || strings.TrimSpace(a.Line1) == "" ||
		strings.TrimSpace(a.City) == "" || strings.TrimSpace(a.PostalCode) == "" ||
		strings.TrimSpace(a.Country) == "" {
		return shared.NewDomainError("INVALID_ADDRESS", "Shipping address is incomplete")
	}
	return nil
}

// Item is a snapshot of a purchased variant
type Item struct {
	ID          uuid.UUID
	ProductID   uuid.UUID
	VariantID   uuid.UUID
	ProductName string
	VariantName string
	SKU         string
	UnitPrice   decimal.Decimal
	Quantity    int
	LineTotal   decimal.Decimal
}

// Order is a purchase from a single store
type Order struct {
	shared.StoreAggregateRoot
	OrderNumber     string
	CustomerID      uuid.UUID
	CustomerEmail   string
	Items           []Item
	Subtotal        decimal.Decimal
	ShippingCost    decimal.Decimal
	Total           decimal.Decimal
	ShippingAddress Address
	Note            string
	Status          Status
	PaidAt          *time.Time
	CancelledAt     *time.Time
}

// NewOrder builds a pending order. Items must be non-empty and priced.
func NewOrder(storeID, customerID uuid.UUID, customerEmail string, items []Item, shipping decimal.Decimal, addr Address, note string) (*Order, error) {
	if len(items) == 0 {
		return nil, shared.NewDomainError("EMPTY_ORDER", "Order must contain at least one item")
	}
	if err := addr.Validate(); err != nil {
		return nil, err
	}
	if shipping.IsNegative() {
		return nil, shared.NewDomainError("INVALID_SHIPPING", "Shipping cost cannot be negative")
	}

	o := &Order{
		StoreAggregateRoot: shared.NewStoreAggregateRoot(storeID),
		CustomerID:         customerID,
		CustomerEmail:      customerEmail,
		ShippingCost:       shipping,
		ShippingAddress:    addr,
		Note:               strings.TrimSpace(note),
		Status:             StatusPending,
	}
	o.OrderNumber = GenerateOrderNumber(o.CreatedAt, o.ID)

	subtotal := decimal.Zero
	o.Items = make([]Item, 0, len(items))
	for _, it := range items {
		if it.Quantity <= 0 {
			return nil, shared.NewDomainError("INVALID_QUANTITY", "Item quantity must be positive")
		}
		it.ID = uuid.New()
		it.LineTotal = it.UnitPrice.Mul(decimal.NewFromInt(int64(it.Quantity)))
		subtotal = subtotal.Add(it.LineTotal)
		o.Items = append(o.Items, it)
	}
	o.Subtotal = subtotal
	o.Total = subtotal.Add(shipping)

	o.AddDomainEvent(NewOrderPlacedEvent(o))
	return o, nil
}

// GenerateOrderNumber derives a human-readable number from date and id
func GenerateOrderNumber(at time.Time, id uuid.UUID) string {
	return fmt.Sprintf("SF-%s-%s", at.Format("20060102"), strings.ToUpper(id.String()[:8]))
}

// TransitionTo moves the order through the state machine
func (o *Order) TransitionTo(next Status) error {
	if !next.IsValid() {
		return shared.NewDomainError("INVALID_STATUS", "Unknown order status")
	}
	if !o.Status.CanTransitionTo(next) {
		return shared.NewDomainError("INVALID_STATE",
			fmt.Sprintf("Cannot change order status from %s to %s", o.Status, next))
	}
	from := o.Status
	o.Status = next
	now := time.Now()
	switch next {
	case StatusPaid:
		o.PaidAt = &now
	case StatusCancelled:
		o.CancelledAt = &now
	}
	o.UpdatedAt = now
	o.IncrementVersion()

	if next == StatusCancelled {
		o.AddDomainEvent(NewOrderCancelledEvent(o, from))
	} else {
		o.AddDomainEvent(NewOrderStatusChangedEvent(o, from))
	}
	return nil
}

// ContainsProduct reports whether any line is for productID
func (o *Order) ContainsProduct(productID uuid.UUID) bool {
	for _, it := range o.Items {
		if it.ProductID == productID {
			return true
		}
	}
	return false
}

// ItemCount sums line quantities
func (o *Order) ItemCount() int {
	n := 0
	for _, it := range o.Items {
		n += it.Quantity
	}
	return n
}
