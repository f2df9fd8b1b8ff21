package catalog

import (
	"strings"

	"github.com/google/uuid"
	"github.com/shopforge/backend/internal/domain/shared"
)

// Category groups products within a store. Categories form a tree via ParentID.
type Category struct {
	shared.StoreAggregateRoot
	Name        string
	Slug        string
	Description string
	ParentID    *uuid.UUID
}

// NewCategory creates a category in the given store
func NewCategory(storeID uuid.UUID, name, slug, description string) (*Category, error) {
	name = strings.TrimSpace(name)
	if err := validateCategoryName(name); err != nil {
		return nil, err
	}
	if slug == "" {
		slug = shared.Slugify(name)
	}
	if !shared.IsValidSlug(slug) {
		return nil, shared.NewDomainError("INVALID_SLUG", "Slug may only contain lowercase letters, digits and dashes")
	}
	return &Category{
		StoreAggregateRoot: shared.NewStoreAggregateRoot(storeID),
		Name:               name,
		Slug:               slug,
		Description:        strings.TrimSpace(description),
	}, nil
}

// Update renames the category
func (c *Category) Update(name, description string) error {
	name = strings.TrimSpace(name)
	if err := validateCategoryName(name); err != nil {
		return err
	}
	c.Name = name
	c.Description = strings.TrimSpace(description)
	c.Touch()
	c.IncrementVersion()
	return nil
}

// SetParent moves the category under parent (nil for root).
// The parent must live in the same store and cannot be the category itself.
func (c *Category) SetParent(parent *Category) error {
	if parent == nil {
		c.ParentID = nil
		c.Touch()
		return nil
	}
	if parent.ID == c.ID {
		return shared.NewDomainError("INVALID_PARENT", "Category cannot be its own parent")
	}
	if !parent.BelongsTo(c.StoreID) {
		return shared.NewDomainError("INVALID_PARENT", "Parent category belongs to another store")
	}
	id := parent.ID
	c.ParentID = &id
	c.Touch()
	c.IncrementVersion()
	return nil
}

func validateCategoryName(name string) error {
	if name == "" {
		return shared.NewDomainError("INVALID_NAME", "Category name cannot be empty")
	}
	if len(name) > 100 {
		return shared.NewDomainError("INVALID_NAME", "Category name cannot exceed 100 characters")
	}
	return nil
}
