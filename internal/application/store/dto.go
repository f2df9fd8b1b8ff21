package store

import (
	"time"

	"github.com/google/uuid"
	"github.com/shopforge/backend/internal/domain/store"
	"github.com/shopspring/decimal"
)

// CreateStoreInput contains the input for opening a store
type CreateStoreInput struct {
	Name        string
	Slug        string
	Description string
}

// UpdateStoreInput is a partial update; nil fields are unchanged
type UpdateStoreInput struct {
	Name        *string
	Description *string
	LogoURL     *string
	IsActive    *bool
}

// AssignRoleInput grants a store role. Either UserID or Email identifies the target.
type AssignRoleInput struct {
	ActorID     uuid.UUID
	ActorIsSite bool // site administrators act as owners
	StoreID     uuid.UUID
	UserID      uuid.UUID
	Email       string
	Role        string
}

// RevokeRoleInput removes a store role
type RevokeRoleInput struct {
	ActorID     uuid.UUID
	ActorIsSite bool
	StoreID     uuid.UUID
	UserID      uuid.UUID
}

// StoreDTO is the public view of a store
type StoreDTO struct {
	ID                uuid.UUID       `json:"id"`
	Name              string          `json:"name"`
	Slug              string          `json:"slug"`
	Description       string          `json:"description"`
	LogoURL           string          `json:"logo_url,omitempty"`
	OwnerID           uuid.UUID       `json:"owner_id"`
	IsActive          bool            `json:"is_active"`
	ProductCount      int64           `json:"product_count"`
	OrderCount        int64           `json:"order_count"`
	TotalRevenue      decimal.Decimal `json:"total_revenue"`
	CountersUpdatedAt *time.Time      `json:"counters_updated_at,omitempty"`
	CreatedAt         time.Time       `json:"created_at"`
	UpdatedAt         time.Time       `json:"updated_at"`
}

// MyStoreDTO is a store together with the caller's role in it
type MyStoreDTO struct {
	StoreDTO
	Role string `json:"role"`
}

// StoreRoleDTO describes a member of a store
type StoreRoleDTO struct {
	UserID     uuid.UUID  `json:"user_id"`
	Email      string     `json:"email,omitempty"`
	FullName   string     `json:"full_name,omitempty"`
	Role       string     `json:"role"`
	AssignedBy *uuid.UUID `json:"assigned_by,omitempty"`
	CreatedAt  time.Time  `json:"created_at"`
}

// ToStoreDTO converts a domain store
func ToStoreDTO(s *store.Store) StoreDTO {
	return StoreDTO{
		ID:                s.ID,
		Name:              s.Name,
		Slug:              s.Slug,
		Description:       s.Description,
		LogoURL:           s.LogoURL,
		OwnerID:           s.OwnerID,
		IsActive:          s.IsActive,
		ProductCount:      s.ProductCount,
		OrderCount:        s.OrderCount,
		TotalRevenue:      s.TotalRevenue,
		CountersUpdatedAt: s.CountersUpdatedAt,
		CreatedAt:         s.CreatedAt,
		UpdatedAt:         s.UpdatedAt,
	}
}
