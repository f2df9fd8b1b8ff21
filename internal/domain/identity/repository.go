package identity

import (
	"context"

	"github.com/google/uuid"
)

// UserRepository defines the interface for user persistence
type UserRepository interface {
	Save(ctx context.Context, user *User) error
	Delete(ctx context.Context, id uuid.UUID) error
	FindByID(ctx context.Context, id uuid.UUID) (*User, error)
	FindByEmail(ctx context.Context, email string) (*User, error)
	FindByIDs(ctx context.Context, ids []uuid.UUID) ([]*User, error)
	FindAll(ctx context.Context, filter UserFilter) ([]*User, int64, error)
	ExistsByEmail(ctx context.Context, email string) (bool, error)
}

// UserFilter contains filter options for querying users
type UserFilter struct {
	Keyword   string
	Role      *SiteRole
	Status    *UserStatus
	Page      int
	PageSize  int
	SortBy    string
	SortOrder string
}

// ConfirmationRepository stores email confirmation and password reset tokens
type ConfirmationRepository interface {
	Save(ctx context.Context, c *Confirmation) error
	FindByHash(ctx context.Context, purpose Purpose, tokenHash string) (*Confirmation, error)
	// InvalidateForUser marks all unused tokens of a purpose as used
	InvalidateForUser(ctx context.Context, userID uuid.UUID, purpose Purpose) error
}
