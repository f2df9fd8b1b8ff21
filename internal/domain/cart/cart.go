package cart

import (
	"github.com/google/uuid"
	"github.com/shopforge/backend/internal/domain/shared"
	"github.com/shopspring/decimal"
)

// MaxItemQuantity caps a single cart line
const MaxItemQuantity = 999

// Item is a cart line. UnitPrice is a snapshot taken when the line was added.
type Item struct {
	ID        uuid.UUID
	VariantID uuid.UUID
	ProductID uuid.UUID
	StoreID   uuid.UUID
	Quantity  int
	UnitPrice decimal.Decimal
}

// LineTotal returns quantity times unit price
func (i Item) LineTotal() decimal.Decimal {
	return i.UnitPrice.Mul(decimal.NewFromInt(int64(i.Quantity)))
}

// Cart belongs to one user and may hold items from several stores
type Cart struct {
	shared.BaseAggregateRoot
	UserID uuid.UUID
	Items  []Item
}

// NewCart creates an empty cart for user
func NewCart(userID uuid.UUID) *Cart {
	return &Cart{
		BaseAggregateRoot: shared.NewBaseAggregateRoot(),
		UserID:            userID,
		Items:             make([]Item, 0),
	}
}

// AddItem adds qty of a variant, merging with an existing line
func (c *Cart) AddItem(storeID, productID, variantID uuid.UUID, qty int, unitPrice decimal.Decimal) error {
	if qty <= 0 {
		return shared.NewDomainError("INVALID_QUANTITY", "Quantity must be positive")
	}
	for idx := range c.Items {
		if c.Items[idx].VariantID == variantID {
			next := c.Items[idx].Quantity + qty
			if next > MaxItemQuantity {
				return shared.NewDomainError("INVALID_QUANTITY", "Quantity exceeds the per-item limit")
			}
			c.Items[idx].Quantity = next
			c.Items[idx].UnitPrice = unitPrice
			c.Touch()
			return nil
		}
	}
	if qty > MaxItemQuantity {
		return shared.NewDomainError("INVALID_QUANTITY", "Quantity exceeds the per-item limit")
	}
	c.Items = append(c.Items, Item{
		ID:        uuid.New(),
		VariantID: variantID,
		ProductID: productID,
		StoreID:   storeID,
		Quantity:  qty,
		UnitPrice: unitPrice,
	})
	c.Touch()
	return nil
}

// UpdateItem sets the quantity of a line; zero removes it
func (c *Cart) UpdateItem(itemID uuid.UUID, qty int) error {
	if qty < 0 || qty > MaxItemQuantity {
		return shared.NewDomainError("INVALID_QUANTITY", "Quantity must be between 0 and 999")
	}
	if qty == 0 {
		return c.RemoveItem(itemID)
	}
	for idx := range c.Items {
		if c.Items[idx].ID == itemID {
			c.Items[idx].Quantity = qty
			c.Touch()
			return nil
		}
	}
	return shared.ErrNotFound
}

// RemoveItem drops a line
func (c *Cart) RemoveItem(itemID uuid.UUID) error {
	for idx := range c.Items {
		if c.Items[idx].ID == itemID {
			c.Items = append(c.Items[:idx], c.Items[idx+1:]...)
			c.Touch()
			return nil
		}
	}
	return shared.ErrNotFound
}

// Clear empties the cart
func (c *Cart) Clear() {
	c.Items = make([]Item, 0)
	c.Touch()
}

// RemoveStore drops all lines belonging to storeID
func (c *Cart) RemoveStore(storeID uuid.UUID) {
	kept := c.Items[:0]
	for _, it := range c.Items {
		if it.StoreID != storeID {
			kept = append(kept, it)
		}
	}
	c.Items = kept
	c.Touch()
}

// IsEmpty reports whether the cart has no lines
func (c *Cart) IsEmpty() bool {
	return len(c.Items) == 0
}

// Total sums all line totals
func (c *Cart) Total() decimal.Decimal {
	total := decimal.Zero
	for _, it := range c.Items {
		total = total.Add(it.LineTotal())
	}
	return total
}

// GroupByStore splits the lines per store, preserving insertion order of stores
func (c *Cart) GroupByStore() ([]uuid.UUID, map[uuid.UUID][]Item) {
	order := make([]uuid.UUID, 0)
	groups := make(map[uuid.UUID][]Item)
	for _, it := range c.Items {
		if _, ok := groups[it.StoreID]; !ok {
			order = append(order, it.StoreID)
		}
		groups[it.StoreID] = append(groups[it.StoreID], it)
	}
	return order, groups
}
