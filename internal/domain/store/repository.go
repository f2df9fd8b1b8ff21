package store

import (
	"context"

	"github.com/google/uuid"
	"github.com/shopforge/backend/internal/domain/shared"
)

// StoreRepository persists stores
type StoreRepository interface {
	Save(ctx context.Context, s *Store) error
	Delete(ctx context.Context, id uuid.UUID) error
	FindByID(ctx context.Context, id uuid.UUID) (*Store, error)
	FindBySlug(ctx context.Context, slug string) (*Store, error)
	FindAll(ctx context.Context, filter shared.Filter) ([]*Store, int64, error)
	FindByIDs(ctx context.Context, ids []uuid.UUID) ([]*Store, error)
	FindActiveIDs(ctx context.Context) ([]uuid.UUID, error)
	ExistsBySlug(ctx context.Context, slug string) (bool, error)
	// SaveCounters writes only the cached aggregate columns
	SaveCounters(ctx context.Context, s *Store) error
}

// StoreRoleRepository persists role assignments
type StoreRoleRepository interface {
	Save(ctx context.Context, r *StoreRole) error
	Delete(ctx context.Context, storeID, userID uuid.UUID) error
	Find(ctx context.Context, storeID, userID uuid.UUID) (*StoreRole, error)
	FindByStore(ctx context.Context, storeID uuid.UUID) ([]*StoreRole, error)
	FindByUser(ctx context.Context, userID uuid.UUID) ([]*StoreRole, error)
	// FindUserIDsWithRole returns users holding at least min in the store
	FindUserIDsWithRole(ctx context.Context, storeID uuid.UUID, min Role) ([]uuid.UUID, error)
	CountByRole(ctx context.Context, storeID uuid.UUID, role Role) (int64, error)
}

// CounterSource computes fresh values for the cached store aggregates
type CounterSource interface {
	ComputeCounters(ctx context.Context, storeID uuid.UUID) (Counters, error)
}
