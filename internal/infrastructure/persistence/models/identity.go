package models

import (
	"time"

	"github.com/google/uuid"
	"github.com/shopforge/backend/internal/domain/identity"
)

// UserModel is the persistence model for the User domain entity.
type UserModel struct {
	AggregateModel
	Email         string              `gorm:"type:varchar(200);not null;uniqueIndex"`
	PasswordHash  string              `gorm:"type:varchar(255);not null"`
	FirstName     string              `gorm:"type:varchar(100);not null"`
	LastName      string              `gorm:"type:varchar(100)"`
	Role          identity.SiteRole   `gorm:"type:varchar(20);not null"`
	Status        identity.UserStatus `gorm:"type:varchar(20);not null"`
	EmailVerified bool                `gorm:"not null"`
	LastLoginAt   *time.Time
}

// TableName returns the table name for GORM
func (UserModel) TableName() string {
	return "users"
}

// ToDomain converts the persistence model to a domain User entity.
func (m *UserModel) ToDomain() *identity.User {
	return &identity.User{
		BaseAggregateRoot: m.ToAggregateRoot(),
		Email:             m.Email,
		PasswordHash:      m.PasswordHash,
		FirstName:         m.FirstName,
		LastName:          m.LastName,
		Role:              m.Role,
		Status:            m.Status,
		EmailVerified:     m.EmailVerified,
		LastLoginAt:       m.LastLoginAt,
	}
}

// FromDomain populates the persistence model from a domain User entity.
func (m *UserModel) FromDomain(u *identity.User) {
	m.FromDomainAggregateRoot(u.BaseAggregateRoot)
	m.Email = u.Email
	m.PasswordHash = u.PasswordHash
	m.FirstName = u.FirstName
	m.LastName = u.LastName
	m.Role = u.Role
	m.Status = u.Status
	m.EmailVerified = u.EmailVerified
	m.LastLoginAt = u.LastLoginAt
}

// UserModelFromDomain creates a new persistence model from a domain User entity.
func UserModelFromDomain(u *identity.User) *UserModel {
	m := &UserModel{}
	m.FromDomain(u)
	return m
}

// ConfirmationModel stores hashed single-use tokens
type ConfirmationModel struct {
	BaseModel
	UserID    uuid.UUID        `gorm:"type:uuid;not null;index"`
	Purpose   identity.Purpose `gorm:"type:varchar(32);not null"`
	TokenHash string           `gorm:"type:char(64);not null;uniqueIndex"`
	ExpiresAt time.Time        `gorm:"not null"`
	UsedAt    *time.Time
}

func (ConfirmationModel) TableName() string {
	return "confirmations"
}

func (m *ConfirmationModel) ToDomain() *identity.Confirmation {
	return &identity.Confirmation{
		BaseEntity: m.BaseModel.ToDomain(),
		UserID:     m.UserID,
		Purpose:    m.Purpose,
		TokenHash:  m.TokenHash,
		ExpiresAt:  m.ExpiresAt,
		UsedAt:     m.UsedAt,
	}
}

func ConfirmationModelFromDomain(c *identity.Confirmation) *ConfirmationModel {
	m := &ConfirmationModel{
		UserID:    c.UserID,
		Purpose:   c.Purpose,
		TokenHash: c.TokenHash,
		ExpiresAt: c.ExpiresAt,
		UsedAt:    c.UsedAt,
	}
	m.FromDomainBaseEntity(c.BaseEntity)
	return m
}
