package store

import (
	"github.com/google/uuid"
	"github.com/shopforge/backend/internal/domain/shared"
)

const AggregateTypeStore = "Store"

const (
	EventTypeStoreCreated     = "StoreCreated"
	EventTypeStoreRoleChanged = "StoreRoleChanged"
)

// StoreCreatedEvent is published when a store is opened
type StoreCreatedEvent struct {
	shared.BaseDomainEvent
	Name    string    `json:"name"`
	OwnerID uuid.UUID `json:"owner_id"`
}

func NewStoreCreatedEvent(s *Store) *StoreCreatedEvent {
	return &StoreCreatedEvent{
		BaseDomainEvent: shared.NewBaseDomainEvent(EventTypeStoreCreated, AggregateTypeStore, s.ID, s.ID),
		Name:            s.Name,
		OwnerID:         s.OwnerID,
	}
}

// StoreRoleChangedEvent is published on assign and revoke. Role is empty on revoke.
type StoreRoleChangedEvent struct {
	shared.BaseDomainEvent
	UserID uuid.UUID `json:"user_id"`
	Role   Role      `json:"role"`
}

func NewStoreRoleChangedEvent(storeID, userID uuid.UUID, role Role) *StoreRoleChangedEvent {
	return &StoreRoleChangedEvent{
		BaseDomainEvent: shared.NewBaseDomainEvent(EventTypeStoreRoleChanged, AggregateTypeStore, storeID, storeID),
		UserID:          userID,
		Role:            role,
	}
}
