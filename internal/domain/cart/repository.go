package cart

import (
	"context"

	"github.com/google/uuid"
)

// Repository persists carts. FindByUser returns shared.ErrNotFound when the
// user has never had a cart.
type Repository interface {
	FindByUser(ctx context.Context, userID uuid.UUID) (*Cart, error)
	Save(ctx context.Context, c *Cart) error
}
