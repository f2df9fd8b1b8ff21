package models

import (
	"time"

	"github.com/google/uuid"
	"github.com/shopforge/backend/internal/domain/store"
	"github.com/shopspring/decimal"
)

// StoreModel is the persistence model for the Store aggregate
type StoreModel struct {
	AggregateModel
	Name              string          `gorm:"type:varchar(150);not null"`
	Slug              string          `gorm:"type:varchar(100);not null;uniqueIndex"`
	Description       string          `gorm:"type:text"`
	LogoURL           string          `gorm:"type:varchar(500)"`
	OwnerID           uuid.UUID       `gorm:"type:uuid;not null;index"`
	IsActive          bool            `gorm:"not null;index"`
	ProductCount      int64           `gorm:"not null"`
	OrderCount        int64           `gorm:"not null"`
	TotalRevenue      decimal.Decimal `gorm:"type:decimal(18,2);not null"`
	CountersUpdatedAt *time.Time
}

func (StoreModel) TableName() string {
	return "stores"
}

// ToDomain converts the persistence model to a domain Store
func (m *StoreModel) ToDomain() *store.Store {
	return &store.Store{
		BaseAggregateRoot: m.ToAggregateRoot(),
		Name:              m.Name,
		Slug:              m.Slug,
		Description:       m.Description,
		LogoURL:           m.LogoURL,
		OwnerID:           m.OwnerID,
		IsActive:          m.IsActive,
		ProductCount:      m.ProductCount,
		OrderCount:        m.OrderCount,
		TotalRevenue:      m.TotalRevenue,
		CountersUpdatedAt: m.CountersUpdatedAt,
	}
}

// StoreModelFromDomain creates a persistence model from a domain Store
func StoreModelFromDomain(s *store.Store) *StoreModel {
	m := &StoreModel{
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
	}
	m.FromDomainAggregateRoot(s.BaseAggregateRoot)
	return m
}

// StoreRoleModel maps a user's role in a store. (store_id, user_id) is unique.
type StoreRoleModel struct {
	BaseModel
	StoreID    uuid.UUID  `gorm:"type:uuid;not null;uniqueIndex:idx_store_roles_store_user"`
	UserID     uuid.UUID  `gorm:"type:uuid;not null;uniqueIndex:idx_store_roles_store_user;index"`
	Role       store.Role `gorm:"type:varchar(20);not null"`
	AssignedBy *uuid.UUID `gorm:"type:uuid"`
}

func (StoreRoleModel) TableName() string {
	return "store_roles"
}

func (m *StoreRoleModel) ToDomain() *store.StoreRole {
	return &store.StoreRole{
		BaseEntity: m.BaseModel.ToDomain(),
		StoreID:    m.StoreID,
		UserID:     m.UserID,
		Role:       m.Role,
		AssignedBy: m.AssignedBy,
	}
}

func StoreRoleModelFromDomain(r *store.StoreRole) *StoreRoleModel {
	m := &StoreRoleModel{
		StoreID:    r.StoreID,
		UserID:     r.UserID,
		Role:       r.Role,
		AssignedBy: r.AssignedBy,
	}
	m.FromDomainBaseEntity(r.BaseEntity)
	return m
}
