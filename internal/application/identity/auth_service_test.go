package identity

import (
	"context"
	"testing"

	"github.com/shopforge/backend/internal/domain/identity"
	"github.com/shopforge/backend/internal/domain/shared"
	"github.com/shopforge/backend/internal/infrastructure/auth"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
)

type authFixture struct {
	users     *MockUserRepository
	confirms  *MockConfirmationRepository
	publisher *recordingPublisher
	blacklist *auth.InMemoryTokenBlacklist
	jwt       *auth.JWTService
	svc       *AuthService
}

func newAuthFixture() *authFixture {
	f := &authFixture{
		users:     new(MockUserRepository),
		confirms:  new(MockConfirmationRepository),
		publisher: &recordingPublisher{},
		blacklist: auth.NewInMemoryTokenBlacklist(),
		jwt:       newTestJWTService(),
	}
	f.svc = NewAuthService(f.users, f.confirms, f.jwt, f.blacklist, f.publisher, zap.NewNop())
	return f
}

func newActiveUser(t *testing.T) *identity.User {
	t.Helper()
	u, err := identity.NewUser("shopper@example.com", "correct-horse", "Ada", "Lovelace")
	require.NoError(t, err)
	u.ClearDomainEvents()
	return u
}

func TestAuthService_Register(t *testing.T) {
	f := newAuthFixture()
	ctx := context.Background()

	f.users.On("ExistsByEmail", ctx, "new@example.com").Return(false, nil)
	f.users.On("Save", ctx, mock.AnythingOfType("*identity.User")).Return(nil)
	f.confirms.On("InvalidateForUser", ctx, mock.Anything, identity.PurposeEmailConfirmation).Return(nil)
	f.confirms.On("Save", ctx, mock.AnythingOfType("*identity.Confirmation")).Return(nil)

	user, err := f.svc.Register(ctx, RegisterInput{
		Email:     "  New@Example.com ",
		Password:  "long-enough-pw",
		FirstName: "Grace",
		LastName:  "Hopper",
	})
	require.NoError(t, err)
	assert.Equal(t, "new@example.com", user.Email)
	assert.False(t, user.EmailVerified)
	assert.Equal(t, []string{identity.EventTypeUserRegistered, identity.EventTypeConfirmationRequested}, f.publisher.types())

	token := f.publisher.lastToken()
	require.NotNil(t, token)
	assert.NotEmpty(t, token.Token)
	assert.Equal(t, user.ID, token.UserID)
	f.users.AssertExpectations(t)
	f.confirms.AssertExpectations(t)
}

func TestAuthService_Register_DuplicateEmail(t *testing.T) {
	f := newAuthFixture()
	ctx := context.Background()
	f.users.On("ExistsByEmail", ctx, "taken@example.com").Return(true, nil)

	_, err := f.svc.Register(ctx, RegisterInput{Email: "taken@example.com", Password: "long-enough-pw", FirstName: "A"})
	assert.ErrorIs(t, err, shared.ErrAlreadyExists)
	f.users.AssertNotCalled(t, "Save", mock.Anything, mock.Anything)
}

func TestAuthService_Login(t *testing.T) {
	ctx := context.Background()
	user := newActiveUser(t)

	t.Run("success", func(t *testing.T) {
		f := newAuthFixture()
		f.users.On("FindByEmail", ctx, "shopper@example.com").Return(user, nil)
		f.users.On("Save", ctx, user).Return(nil)

		result, err := f.svc.Login(ctx, LoginInput{Email: "Shopper@Example.com", Password: "correct-horse"})
		require.NoError(t, err)
		assert.NotEmpty(t, result.AccessToken)
		assert.NotEmpty(t, result.RefreshToken)
		assert.Equal(t, "Bearer", result.TokenType)
		assert.Equal(t, user.ID, result.User.ID)
		assert.NotNil(t, user.LastLoginAt)

		claims, err := f.jwt.ValidateAccessToken(result.AccessToken)
		require.NoError(t, err)
		assert.Equal(t, "user", claims.Role)
	})

	t.Run("wrong password", func(t *testing.T) {
		f := newAuthFixture()
		f.users.On("FindByEmail", ctx, "shopper@example.com").Return(user, nil)

		_, err := f.svc.Login(ctx, LoginInput{Email: "shopper@example.com", Password: "wrong-password"})
		var de *shared.DomainError
		require.ErrorAs(t, err, &de)
		assert.Equal(t, "INVALID_CREDENTIALS", de.Code)
	})

	t.Run("unknown email", func(t *testing.T) {
		f := newAuthFixture()
		f.users.On("FindByEmail", ctx, "ghost@example.com").Return(nil, shared.ErrNotFound)

		_, err := f.svc.Login(ctx, LoginInput{Email: "ghost@example.com", Password: "whatever-pw"})
		var de *shared.DomainError
		require.ErrorAs(t, err, &de)
		assert.Equal(t, "INVALID_CREDENTIALS", de.Code)
	})

	t.Run("disabled account", func(t *testing.T) {
		f := newAuthFixture()
		disabled := newActiveUser(t)
		require.NoError(t, disabled.SetStatus(identity.UserStatusDisabled))
		f.users.On("FindByEmail", ctx, "shopper@example.com").Return(disabled, nil)

		_, err := f.svc.Login(ctx, LoginInput{Email: "shopper@example.com", Password: "correct-horse"})
		var de *shared.DomainError
		require.ErrorAs(t, err, &de)
		assert.Equal(t, "ACCOUNT_DISABLED", de.Code)
	})
}

func TestAuthService_Refresh_RotatesToken(t *testing.T) {
	f := newAuthFixture()
	ctx := context.Background()
	user := newActiveUser(t)
	f.users.On("FindByID", ctx, user.ID).Return(user, nil)

	pair, err := f.jwt.GenerateTokenPair(auth.GenerateTokenInput{UserID: user.ID, Email: user.Email, Role: "user"})
	require.NoError(t, err)

	rotated, err := f.svc.Refresh(ctx, pair.RefreshToken)
	require.NoError(t, err)
	assert.NotEqual(t, pair.RefreshToken, rotated.RefreshToken)

	_, err = f.svc.Refresh(ctx, pair.RefreshToken)
	var de *shared.DomainError
	require.ErrorAs(t, err, &de)
	assert.Equal(t, "INVALID_REFRESH_TOKEN", de.Code)
}

func TestAuthService_Refresh_RejectsAccessToken(t *testing.T) {
	f := newAuthFixture()
	user := newActiveUser(t)
	pair, err := f.jwt.GenerateTokenPair(auth.GenerateTokenInput{UserID: user.ID, Email: user.Email})
	require.NoError(t, err)

	_, err = f.svc.Refresh(context.Background(), pair.AccessToken)
	var de *shared.DomainError
	require.ErrorAs(t, err, &de)
	assert.Equal(t, "INVALID_REFRESH_TOKEN", de.Code)
}

func TestAuthService_Logout(t *testing.T) {
	f := newAuthFixture()
	ctx := context.Background()
	user := newActiveUser(t)
	pair, err := f.jwt.GenerateTokenPair(auth.GenerateTokenInput{UserID: user.ID, Email: user.Email})
	require.NoError(t, err)
	access, err := f.jwt.ValidateAccessToken(pair.AccessToken)
	require.NoError(t, err)
	refresh, err := f.jwt.ValidateRefreshToken(pair.RefreshToken)
	require.NoError(t, err)

	require.NoError(t, f.svc.Logout(ctx, LogoutInput{
		UserID:       user.ID,
		AccessJTI:    access.ID,
		AccessTTL:    access.GetRemainingTTL(),
		RefreshToken: pair.RefreshToken,
	}))

	revoked, _ := f.blacklist.IsBlacklisted(ctx, access.ID)
	assert.True(t, revoked)
	revoked, _ = f.blacklist.IsBlacklisted(ctx, refresh.ID)
	assert.True(t, revoked)
}

func TestAuthService_ConfirmEmail(t *testing.T) {
	f := newAuthFixture()
	ctx := context.Background()
	user := newActiveUser(t)

	c, plaintext, err := identity.NewConfirmation(user.ID, identity.PurposeEmailConfirmation)
	require.NoError(t, err)
	f.confirms.On("FindByHash", ctx, identity.PurposeEmailConfirmation, identity.HashToken(plaintext)).Return(c, nil)
	f.confirms.On("Save", ctx, c).Return(nil)
	f.users.On("FindByID", ctx, user.ID).Return(user, nil)
	f.users.On("Save", ctx, user).Return(nil).Once()

	require.NoError(t, f.svc.ConfirmEmail(ctx, plaintext))
	assert.True(t, user.EmailVerified)

	// A second use of the same token is rejected
	err = f.svc.ConfirmEmail(ctx, plaintext)
	var de *shared.DomainError
	require.ErrorAs(t, err, &de)
	assert.Equal(t, "TOKEN_USED", de.Code)
}

func TestAuthService_ConfirmEmail_UnknownToken(t *testing.T) {
	f := newAuthFixture()
	ctx := context.Background()
	f.confirms.On("FindByHash", ctx, identity.PurposeEmailConfirmation, identity.HashToken("nope")).Return(nil, shared.ErrNotFound)

	err := f.svc.ConfirmEmail(ctx, "nope")
	var de *shared.DomainError
	require.ErrorAs(t, err, &de)
	assert.Equal(t, "INVALID_TOKEN", de.Code)
}

func TestAuthService_RequestPasswordReset_NoEnumeration(t *testing.T) {
	f := newAuthFixture()
	ctx := context.Background()
	f.users.On("FindByEmail", ctx, "ghost@example.com").Return(nil, shared.ErrNotFound)

	require.NoError(t, f.svc.RequestPasswordReset(ctx, "ghost@example.com"))
	assert.Empty(t, f.publisher.types())
}

func TestAuthService_ResetPassword_EndsSessions(t *testing.T) {
	f := newAuthFixture()
	ctx := context.Background()
	user := newActiveUser(t)

	f.users.On("FindByEmail", ctx, user.Email).Return(user, nil)
	f.users.On("FindByID", ctx, user.ID).Return(user, nil)
	f.users.On("Save", ctx, user).Return(nil)
	f.confirms.On("InvalidateForUser", ctx, user.ID, identity.PurposePasswordReset).Return(nil)

	var issued *identity.Confirmation
	f.confirms.On("Save", ctx, mock.AnythingOfType("*identity.Confirmation")).
		Run(func(args mock.Arguments) { issued = args.Get(1).(*identity.Confirmation) }).
		Return(nil)

	oldPair, err := f.jwt.GenerateTokenPair(auth.GenerateTokenInput{UserID: user.ID, Email: user.Email})
	require.NoError(t, err)

	require.NoError(t, f.svc.RequestPasswordReset(ctx, user.Email))
	event := f.publisher.lastToken()
	require.NotNil(t, event)
	assert.Equal(t, identity.EventTypePasswordResetRequested, event.EventType())

	f.confirms.On("FindByHash", ctx, identity.PurposePasswordReset, identity.HashToken(event.Token)).Return(issued, nil)
	require.NoError(t, f.svc.ResetPassword(ctx, ResetPasswordInput{Token: event.Token, NewPassword: "brand-new-secret"}))

	assert.True(t, user.VerifyPassword("brand-new-secret"))
	assert.Contains(t, f.publisher.types(), identity.EventTypeUserPasswordChanged)

	_, err = f.svc.Refresh(ctx, oldPair.RefreshToken)
	var de *shared.DomainError
	require.ErrorAs(t, err, &de)
	assert.Equal(t, "INVALID_REFRESH_TOKEN", de.Code)
}

func TestAuthService_ChangePassword(t *testing.T) {
	f := newAuthFixture()
	ctx := context.Background()
	user := newActiveUser(t)
	f.users.On("FindByID", ctx, user.ID).Return(user, nil)
	f.users.On("Save", ctx, user).Return(nil)

	err := f.svc.ChangePassword(ctx, ChangePasswordInput{UserID: user.ID, OldPassword: "bad-guess-1", NewPassword: "another-one"})
	var de *shared.DomainError
	require.ErrorAs(t, err, &de)
	assert.Equal(t, "INVALID_PASSWORD", de.Code)

	require.NoError(t, f.svc.ChangePassword(ctx, ChangePasswordInput{UserID: user.ID, OldPassword: "correct-horse", NewPassword: "another-one"}))
	assert.True(t, user.VerifyPassword("another-one"))
}

func TestAuthService_UpdateProfile(t *testing.T) {
	f := newAuthFixture()
	ctx := context.Background()
	user := newActiveUser(t)
	f.users.On("FindByID", ctx, user.ID).Return(user, nil)
	f.users.On("Save", ctx, user).Return(nil)

	dto, err := f.svc.UpdateProfile(ctx, UpdateProfileInput{UserID: user.ID, FirstName: " Augusta ", LastName: "King"})
	require.NoError(t, err)
	assert.Equal(t, "Augusta King", dto.FullName)
}
