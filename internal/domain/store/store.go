package store

import (
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/shopforge/backend/internal/domain/shared"
	"github.com/shopspring/decimal"
)

// Store is a tenant: it owns products, orders, inventory and roles
type Store struct {
	shared.BaseAggregateRoot
	Name        string
	Slug        string
	Description string
	LogoURL     string
	OwnerID     uuid.UUID
	IsActive    bool

	// Cached aggregates, refreshed by RecomputeCounters
	ProductCount      int64
	OrderCount        int64
	TotalRevenue      decimal.Decimal
	CountersUpdatedAt *time.Time
}

// Counters is a snapshot of the cached store aggregates
type Counters struct {
	ProductCount int64
	OrderCount   int64
	TotalRevenue decimal.Decimal
}

// NewStore creates a store; the slug defaults to the slugified name
func NewStore(ownerID uuid.UUID, name, slug, description string) (*Store, error) {
	name = strings.TrimSpace(name)
	if err := validateName(name); err != nil {
		return nil, err
	}
	if slug == "" {
		slug = shared.Slugify(name)
	}
	if !shared.IsValidSlug(slug) {
		return nil, shared.NewDomainError("INVALID_SLUG", "Slug may only contain lowercase letters, digits and dashes")
	}
	if ownerID == uuid.Nil {
		return nil, shared.NewDomainError("INVALID_OWNER", "Store owner is required")
	}

	s := &Store{
		BaseAggregateRoot: shared.NewBaseAggregateRoot(),
		Name:              name,
		Slug:              slug,
		Description:       strings.TrimSpace(description),
		OwnerID:           ownerID,
		IsActive:          true,
		TotalRevenue:      decimal.Zero,
	}
	s.AddDomainEvent(NewStoreCreatedEvent(s))
	return s, nil
}

// Update applies a partial update; nil fields are left untouched
func (s *Store) Update(name, description, logoURL *string, isActive *bool) error {
	if name != nil {
		n := strings.TrimSpace(*name)
		if err := validateName(n); err != nil {
			return err
		}
		s.Name = n
	}
	if description != nil {
		s.Description = strings.TrimSpace(*description)
	}
	if logoURL != nil {
		s.LogoURL = strings.TrimSpace(*logoURL)
	}
	if isActive != nil {
		s.IsActive = *isActive
	}
	s.Touch()
	s.IncrementVersion()
	return nil
}

// ApplyCounters replaces the cached aggregates
func (s *Store) ApplyCounters(c Counters, at time.Time) {
	s.ProductCount = c.ProductCount
	s.OrderCount = c.OrderCount
	s.TotalRevenue = c.TotalRevenue
	s.CountersUpdatedAt = &at
}

func validateName(name string) error {
	if name == "" {
		return shared.NewDomainError("INVALID_NAME", "Store name cannot be empty")
	}
	if len(name) > 150 {
		return shared.NewDomainError("INVALID_NAME", "Store name cannot exceed 150 characters")
	}
	return nil
}
