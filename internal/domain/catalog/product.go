package catalog

import (
	"strings"

	"github.com/google/uuid"
	"github.com/shopforge/backend/internal/domain/shared"
	"github.com/shopspring/decimal"
)

// ProductStatus represents the lifecycle state of a product
type ProductStatus string

const (
	ProductStatusDraft    ProductStatus = "draft"
	ProductStatusActive   ProductStatus = "active"
	ProductStatusArchived ProductStatus = "archived"
)

const maxProductImages = 10

// Product is the aggregate root for the catalog. Sellable units are variants.
type Product struct {
	shared.StoreAggregateRoot
	Name        string
	Slug        string
	Description string
	CategoryID  *uuid.UUID
	Status      ProductStatus
	ImageKeys   []string

	// Cached review aggregates
	AverageRating decimal.Decimal
	ReviewCount   int
}

// NewProduct creates a draft product
func NewProduct(storeID uuid.UUID, name, slug, description string) (*Product, error) {
	name = strings.TrimSpace(name)
	if err := validateProductName(name); err != nil {
		return nil, err
	}
	if slug == "" {
		slug = shared.Slugify(name)
	}
	if !shared.IsValidSlug(slug) {
		return nil, shared.NewDomainError("INVALID_SLUG", "Slug may only contain lowercase letters, digits and dashes")
	}

	p := &Product{
		StoreAggregateRoot: shared.NewStoreAggregateRoot(storeID),
		Name:               name,
		Slug:               slug,
		Description:        strings.TrimSpace(description),
		Status:             ProductStatusDraft,
		ImageKeys:          make([]string, 0),
		AverageRating:      decimal.Zero,
	}
	p.AddDomainEvent(NewProductCreatedEvent(p))
	return p, nil
}

// Update changes name and description
func (p *Product) Update(name, description string) error {
	name = strings.TrimSpace(name)
	if err := validateProductName(name); err != nil {
		return err
	}
	p.Name = name
	p.Description = strings.TrimSpace(description)
	p.Touch()
	p.IncrementVersion()
	return nil
}

// SetDescription replaces only the description (used by generated copy)
func (p *Product) SetDescription(description string) {
	p.Description = strings.TrimSpace(description)
	p.Touch()
	p.IncrementVersion()
}

// SetCategory assigns or clears the category
func (p *Product) SetCategory(categoryID *uuid.UUID) {
	p.CategoryID = categoryID
	p.Touch()
	p.IncrementVersion()
}

// Publish makes the product visible. It needs at least one active variant.
func (p *Product) Publish(activeVariants int) error {
	if p.Status == ProductStatusActive {
		return shared.NewDomainError("ALREADY_ACTIVE", "Product is already active")
	}
	if activeVariants == 0 {
		return shared.NewDomainError("NO_ACTIVE_VARIANT", "Product needs at least one active variant before publishing")
	}
	p.changeStatus(ProductStatusActive)
	return nil
}

// Archive hides the product from the storefront
func (p *Product) Archive() error {
	if p.Status == ProductStatusArchived {
		return shared.NewDomainError("ALREADY_ARCHIVED", "Product is already archived")
	}
	p.changeStatus(ProductStatusArchived)
	return nil
}

func (p *Product) changeStatus(to ProductStatus) {
	from := p.Status
	p.Status = to
	p.Touch()
	p.IncrementVersion()
	p.AddDomainEvent(NewProductStatusChangedEvent(p, from, to))
}

// AddImage appends an object storage key
func (p *Product) AddImage(key string) error {
	if len(p.ImageKeys) >= maxProductImages {
		return shared.NewDomainError("TOO_MANY_IMAGES", "A product can have at most 10 images")
	}
	p.ImageKeys = append(p.ImageKeys, key)
	p.Touch()
	p.IncrementVersion()
	return nil
}

// RemoveImage drops an image key; it reports whether the key existed
func (p *Product) RemoveImage(key string) bool {
	for i, k := range p.ImageKeys {
		if k == key {
			p.ImageKeys = append(p.ImageKeys[:i], p.ImageKeys[i+1:]...)
			p.Touch()
			p.IncrementVersion()
			return true
		}
	}
	return false
}

// ApplyRating replaces the cached rating aggregates
func (p *Product) ApplyRating(avg decimal.Decimal, count int) {
	p.AverageRating = avg.Round(2)
	p.ReviewCount = count
}

// MarkDeleted records the deletion event before the row is removed
func (p *Product) MarkDeleted() {
	p.AddDomainEvent(NewProductDeletedEvent(p))
}

func (p *Product) IsActive() bool { return p.Status == ProductStatusActive }

func validateProductName(name string) error {
	if name == "" {
		return shared.NewDomainError("INVALID_NAME", "Product name cannot be empty")
	}
	if len(name) > 200 {
		return shared.NewDomainError("INVALID_NAME", "Product name cannot exceed 200 characters")
	}
	return nil
}
