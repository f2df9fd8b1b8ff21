package identity

import (
	"context"
	"testing"

	"github.com/google/uuid"
	"github.com/shopforge/backend/internal/domain/identity"
	"github.com/shopforge/backend/internal/domain/shared"
	"github.com/shopforge/backend/internal/infrastructure/auth"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
)

func TestUserService_ListUsers(t *testing.T) {
	repo := new(MockUserRepository)
	svc := NewUserService(repo, newTestJWTService(), auth.NewInMemoryTokenBlacklist(), zap.NewNop())
	ctx := context.Background()
	user := newActiveUser(t)

	repo.On("FindAll", ctx, mock.MatchedBy(func(f identity.UserFilter) bool {
		return f.Role != nil && *f.Role == identity.SiteRoleUser && f.PageSize == 100 && f.Page == 1
	})).Return([]*identity.User{user}, int64(1), nil)

	page, err := svc.ListUsers(ctx, ListUsersInput{Role: "user", PageSize: 500})
	require.NoError(t, err)
	assert.Equal(t, int64(1), page.Total)
	assert.Equal(t, 1, page.TotalPages)
	require.Len(t, page.Items, 1)
	assert.Equal(t, user.Email, page.Items[0].Email)

	_, err = svc.ListUsers(ctx, ListUsersInput{Status: "sleeping"})
	var de *shared.DomainError
	require.ErrorAs(t, err, &de)
	assert.Equal(t, "INVALID_STATUS", de.Code)
}

func TestUserService_SetUserStatus_DisableEndsSessions(t *testing.T) {
	repo := new(MockUserRepository)
	blacklist := auth.NewInMemoryTokenBlacklist()
	jwtSvc := newTestJWTService()
	svc := NewUserService(repo, jwtSvc, blacklist, zap.NewNop())
	ctx := context.Background()
	user := newActiveUser(t)
	repo.On("FindByID", ctx, user.ID).Return(user, nil)
	repo.On("Save", ctx, user).Return(nil)

	pair, err := jwtSvc.GenerateTokenPair(auth.GenerateTokenInput{UserID: user.ID, Email: user.Email})
	require.NoError(t, err)
	claims, err := jwtSvc.ValidateAccessToken(pair.AccessToken)
	require.NoError(t, err)

	dto, err := svc.SetUserStatus(ctx, uuid.New(), user.ID, "disabled")
	require.NoError(t, err)
	assert.Equal(t, "disabled", dto.Status)

	invalidated, err := blacklist.IsUserTokenInvalidated(ctx, user.ID.String(), claims.GetIssuedAtTime())
	require.NoError(t, err)
	assert.True(t, invalidated)
}

func TestUserService_CannotModifySelf(t *testing.T) {
	repo := new(MockUserRepository)
	svc := NewUserService(repo, newTestJWTService(), auth.NewInMemoryTokenBlacklist(), zap.NewNop())
	ctx := context.Background()
	self := uuid.New()

	_, err := svc.SetUserRole(ctx, self, self, "user")
	assert.Error(t, err)
	_, err = svc.SetUserStatus(ctx, self, self, "disabled")
	assert.Error(t, err)
	assert.Error(t, svc.DeleteUser(ctx, self, self))
	repo.AssertNotCalled(t, "FindByID", mock.Anything, mock.Anything)
}

func TestUserService_SetUserRole(t *testing.T) {
	repo := new(MockUserRepository)
	svc := NewUserService(repo, newTestJWTService(), auth.NewInMemoryTokenBlacklist(), zap.NewNop())
	ctx := context.Background()
	user := newActiveUser(t)
	repo.On("FindByID", ctx, user.ID).Return(user, nil)
	repo.On("Save", ctx, user).Return(nil)

	dto, err := svc.SetUserRole(ctx, uuid.New(), user.ID, "admin")
	require.NoError(t, err)
	assert.Equal(t, "admin", dto.Role)

	_, err = svc.SetUserRole(ctx, uuid.New(), user.ID, "superuser")
	var de *shared.DomainError
	require.ErrorAs(t, err, &de)
	assert.Equal(t, "INVALID_ROLE", de.Code)
}

func TestUserService_DeleteUser(t *testing.T) {
	repo := new(MockUserRepository)
	svc := NewUserService(repo, newTestJWTService(), auth.NewInMemoryTokenBlacklist(), zap.NewNop())
	ctx := context.Background()
	missing := uuid.New()
	repo.On("FindByID", ctx, missing).Return(nil, shared.ErrNotFound)

	err := svc.DeleteUser(ctx, uuid.New(), missing)
	assert.True(t, shared.IsNotFound(err))
	repo.AssertNotCalled(t, "Delete", mock.Anything, mock.Anything)
}
