package store

import (
	"github.com/google/uuid"
	"github.com/shopforge/backend/internal/domain/shared"
)

// Role is a user's role inside one store
type Role string

const (
	RoleOwner     Role = "owner"
	RoleAdmin     Role = "admin"
	RoleModerator Role = "moderator"
)

var roleRank = map[Role]int{
	RoleModerator: 1,
	RoleAdmin:     2,
	RoleOwner:     3,
}

// IsValid reports whether r is a known store role
func (r Role) IsValid() bool {
	_, ok := roleRank[r]
	return ok
}

// AtLeast reports whether r grants every permission of min
func (r Role) AtLeast(min Role) bool {
	return roleRank[r] >= roleRank[min]
}

// StoreRole assigns a user a role in a store. (StoreID, UserID) is unique.
type StoreRole struct {
	shared.BaseEntity
	StoreID    uuid.UUID
	UserID     uuid.UUID
	Role       Role
	AssignedBy *uuid.UUID
}

// NewStoreRole creates an assignment
func NewStoreRole(storeID, userID uuid.UUID, role Role, assignedBy *uuid.UUID) (*StoreRole, error) {
	if !role.IsValid() {
		return nil, shared.NewDomainError("INVALID_ROLE", "Unknown store role")
	}
	return &StoreRole{
		BaseEntity: shared.NewBaseEntity(),
		StoreID:    storeID,
		UserID:     userID,
		Role:       role,
		AssignedBy: assignedBy,
	}, nil
}

// CanAssign checks whether an actor holding actorRole may grant target to a
// user whose current role is current (nil when the user has no role yet).
// Owners may do anything. Admins may grant admin or moderator to members
// who are not yet admins, and never touch owners or other admins.
func CanAssign(actorRole Role, current *Role, target Role) bool {
	if actorRole == RoleOwner {
		return true
	}
	if actorRole != RoleAdmin || target == RoleOwner {
		return false
	}
	return current == nil || *current == RoleModerator
}
