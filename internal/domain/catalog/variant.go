package catalog

import (
	"strings"

	"github.com/google/uuid"
	"github.com/shopforge/backend/internal/domain/shared"
	"github.com/shopspring/decimal"
)

// ProductVariant is a purchasable SKU of a product
type ProductVariant struct {
	shared.StoreAggregateRoot
	ProductID      uuid.UUID
	SKU            string
	Title          string
	Price          decimal.Decimal
	CompareAtPrice *decimal.Decimal
	Attributes     map[string]string
	IsActive       bool
}

// NewProductVariant creates an active variant for product
func NewProductVariant(product *Product, sku, title string, price decimal.Decimal) (*ProductVariant, error) {
	sku = strings.ToUpper(strings.TrimSpace(sku))
	if err := validateSKU(sku); err != nil {
		return nil, err
	}
	title = strings.TrimSpace(title)
	if title == "" {
		title = product.Name
	}
	if err := validatePrice(price); err != nil {
		return nil, err
	}
	return &ProductVariant{
		StoreAggregateRoot: shared.NewStoreAggregateRoot(product.StoreID),
		ProductID:          product.ID,
		SKU:                sku,
		Title:              title,
		Price:              price,
		Attributes:         map[string]string{},
		IsActive:           true,
	}, nil
}

// SetPrice changes the selling price and optional compare-at price
func (v *ProductVariant) SetPrice(price decimal.Decimal, compareAt *decimal.Decimal) error {
	if err := validatePrice(price); err != nil {
		return err
	}
	if compareAt != nil && compareAt.LessThan(price) {
		return shared.NewDomainError("INVALID_PRICE", "Compare-at price must not be lower than price")
	}
	v.Price = price
	v.CompareAtPrice = compareAt
	v.Touch()
	v.IncrementVersion()
	return nil
}

// SetTitle renames the variant
func (v *ProductVariant) SetTitle(title string) error {
	title = strings.TrimSpace(title)
	if title == "" || len(title) > 200 {
		return shared.NewDomainError("INVALID_TITLE", "Variant title must be 1-200 characters")
	}
	v.Title = title
	v.Touch()
	v.IncrementVersion()
	return nil
}

// SetAttributes replaces option values such as size or colour
func (v *ProductVariant) SetAttributes(attrs map[string]string) {
	if attrs == nil {
		attrs = map[string]string{}
	}
	v.Attributes = attrs
	v.Touch()
	v.IncrementVersion()
}

// SetActive enables or disables the variant for sale
func (v *ProductVariant) SetActive(active bool) {
	v.IsActive = active
	v.Touch()
	v.IncrementVersion()
}

func validateSKU(sku string) error {
	if sku == "" {
		return shared.NewDomainError("INVALID_SKU", "SKU cannot be empty")
	}
	if len(sku) > 64 {
		return shared.NewDomainError("INVALID_SKU", "SKU cannot exceed 64 characters")
	}
	return nil
}

func validatePrice(price decimal.Decimal) error {
	if price.IsNegative() {
		return shared.NewDomainError("INVALID_PRICE", "Price cannot be negative")
	}
	return nil
}
