package order

import (
	"context"

	"github.com/google/uuid"
	"github.com/shopforge/backend/internal/domain/cart"
	"github.com/shopforge/backend/internal/domain/inventory"
	"github.com/shopforge/backend/internal/domain/shared"
	"github.com/shopspring/decimal"
)

// Filter narrows order listings
type Filter struct {
	shared.Filter
	Status *Status
}

// Repository persists orders
type Repository interface {
	FindByID(ctx context.Context, id uuid.UUID) (*Order, error)
	// FindByIDForUpdate locks the order row for the current transaction
	FindByIDForUpdate(ctx context.Context, id uuid.UUID) (*Order, error)
	FindByIDForStore(ctx context.Context, storeID, id uuid.UUID) (*Order, error)
	FindByCustomer(ctx context.Context, customerID uuid.UUID, filter Filter) ([]*Order, int64, error)
	FindByStore(ctx context.Context, storeID uuid.UUID, filter Filter) ([]*Order, int64, error)
	Save(ctx context.Context, o *Order) error
	// HasPurchased reports whether the customer has a committed order containing productID
	HasPurchased(ctx context.Context, customerID, productID uuid.UUID) (bool, error)
	CountForStore(ctx context.Context, storeID uuid.UUID) (int64, error)
	SumRevenueForStore(ctx context.Context, storeID uuid.UUID, statuses []Status) (decimal.Decimal, error)
}

// TransactionalRepositories exposes the repositories bound to one transaction
type TransactionalRepositories interface {
	OrderRepo() Repository
	InventoryRepo() inventory.Repository
	CartRepo() cart.Repository
}

// TransactionScope runs fn atomically. Any error rolls everything back.
type TransactionScope interface {
	Execute(ctx context.Context, fn func(repos TransactionalRepositories) error) error
}
