package identity

import (
	"context"
	"errors"
	"time"

	"github.com/google/uuid"
	"github.com/shopforge/backend/internal/domain/identity"
	"github.com/shopforge/backend/internal/domain/shared"
	"github.com/shopforge/backend/internal/infrastructure/auth"
	"go.uber.org/zap"
)

// AuthService handles registration, sessions and account recovery
type AuthService struct {
	userRepo    identity.UserRepository
	confirmRepo identity.ConfirmationRepository
	jwtService  *auth.JWTService
	blacklist   auth.TokenBlacklist
	publisher   shared.EventPublisher
	logger      *zap.Logger
}

// NewAuthService creates a new authentication service
func NewAuthService(
	userRepo identity.UserRepository,
	confirmRepo identity.ConfirmationRepository,
	jwtService *auth.JWTService,
	blacklist auth.TokenBlacklist,
	publisher shared.EventPublisher,
	logger *zap.Logger,
) *AuthService {
	return &AuthService{
		userRepo:    userRepo,
		confirmRepo: confirmRepo,
		jwtService:  jwtService,
		blacklist:   blacklist,
		publisher:   publisher,
		logger:      logger,
	}
}

// Register creates an account and sends an email confirmation token
func (s *AuthService) Register(ctx context.Context, input RegisterInput) (*UserDTO, error) {
	email := identity.NormalizeEmail(input.Email)
	exists, err := s.userRepo.ExistsByEmail(ctx, email)
	if err != nil {
		return nil, err
	}
	if exists {
		return nil, shared.NewDomainError("ALREADY_EXISTS", "Email is already registered")
	}

	user, err := identity.NewUser(email, input.Password, input.FirstName, input.LastName)
	if err != nil {
		return nil, err
	}
	if err := s.userRepo.Save(ctx, user); err != nil {
		s.logger.Error("Failed to save registered user", zap.Error(err))
		return nil, err
	}
	if err := shared.PublishAndClear(ctx, s.publisher, user); err != nil {
		s.logger.Warn("Failed to publish user events", zap.Error(err))
	}

	if err := s.issueToken(ctx, user, identity.PurposeEmailConfirmation); err != nil {
		// The account exists; the user can ask for a new confirmation email
		s.logger.Error("Failed to issue confirmation token", zap.String("user_id", user.ID.String()), zap.Error(err))
	}

	s.logger.Info("User registered", zap.String("user_id", user.ID.String()))
	dto := ToUserDTO(user)
	return &dto, nil
}

// Login authenticates a user and returns tokens
func (s *AuthService) Login(ctx context.Context, input LoginInput) (*LoginResult, error) {
	user, err := s.userRepo.FindByEmail(ctx, identity.NormalizeEmail(input.Email))
	if err != nil {
		if shared.IsNotFound(err) {
			s.logger.Warn("Login for unknown email", zap.String("ip", input.IP))
			return nil, shared.NewDomainError("INVALID_CREDENTIALS", "Invalid email or password")
		}
		return nil, err
	}
	if !user.VerifyPassword(input.Password) {
		s.logger.Warn("Invalid password attempt", zap.String("user_id", user.ID.String()), zap.String("ip", input.IP))
		return nil, shared.NewDomainError("INVALID_CREDENTIALS", "Invalid email or password")
	}
	if !user.IsActive() {
		s.logger.Warn("Login attempt for disabled account", zap.String("user_id", user.ID.String()))
		return nil, shared.NewDomainError("ACCOUNT_DISABLED", "Account has been disabled")
	}

	pair, err := s.jwtService.GenerateTokenPair(auth.GenerateTokenInput{
		UserID: user.ID,
		Email:  user.Email,
		Role:   string(user.Role),
	})
	if err != nil {
		s.logger.Error("Failed to generate token pair", zap.Error(err))
		return nil, shared.NewDomainError("INTERNAL_ERROR", "Failed to generate authentication tokens")
	}

	user.RecordLogin()
	if err := s.userRepo.Save(ctx, user); err != nil {
		// Don't fail the login - just log the error
		s.logger.Error("Failed to record login", zap.Error(err))
	}

	s.logger.Info("User logged in", zap.String("user_id", user.ID.String()))
	return &LoginResult{TokenResult: toTokenResult(pair), User: ToUserDTO(user)}, nil
}

// Refresh exchanges a refresh token for a new pair. The presented refresh
// token is revoked so each one can be used once.
func (s *AuthService) Refresh(ctx context.Context, refreshToken string) (*TokenResult, error) {
	claims, err := s.jwtService.ValidateRefreshToken(refreshToken)
	if err != nil {
		s.logger.Warn("Refresh token validation failed", zap.Error(err))
		if errors.Is(err, auth.ErrExpiredToken) {
			return nil, shared.NewDomainError("TOKEN_EXPIRED", "Refresh token has expired")
		}
		return nil, shared.NewDomainError("INVALID_REFRESH_TOKEN", "Invalid refresh token")
	}

	revoked, err := s.isRevoked(ctx, claims)
	if err != nil {
		return nil, err
	}
	if revoked {
		s.logger.Warn("Revoked refresh token presented", zap.String("user_id", claims.UserID))
		return nil, shared.NewDomainError("INVALID_REFRESH_TOKEN", "Refresh token has been revoked")
	}

	userID, err := claims.GetUserUUID()
	if err != nil {
		return nil, shared.NewDomainError("INVALID_REFRESH_TOKEN", "Invalid user ID in token")
	}
	user, err := s.userRepo.FindByID(ctx, userID)
	if err != nil {
		if shared.IsNotFound(err) {
			return nil, shared.NewDomainError("INVALID_REFRESH_TOKEN", "User no longer exists")
		}
		return nil, err
	}
	if !user.IsActive() {
		return nil, shared.NewDomainError("ACCOUNT_DISABLED", "Account has been disabled")
	}

	if err := s.blacklist.AddToBlacklist(ctx, claims.ID, claims.GetRemainingTTL()); err != nil {
		s.logger.Error("Failed to revoke rotated refresh token", zap.Error(err))
		return nil, err
	}

	pair, err := s.jwtService.GenerateTokenPair(auth.GenerateTokenInput{
		UserID: user.ID,
		Email:  user.Email,
		Role:   string(user.Role),
	})
	if err != nil {
		return nil, shared.NewDomainError("INTERNAL_ERROR", "Failed to generate authentication tokens")
	}
	result := toTokenResult(pair)
	return &result, nil
}

// Logout revokes the access token and, when supplied, the refresh token
func (s *AuthService) Logout(ctx context.Context, input LogoutInput) error {
	if input.AccessJTI != "" {
		if err := s.blacklist.AddToBlacklist(ctx, input.AccessJTI, input.AccessTTL); err != nil {
			s.logger.Error("Failed to blacklist access token", zap.Error(err))
			return err
		}
	}
	if input.RefreshToken != "" {
		claims, err := s.jwtService.ValidateRefreshToken(input.RefreshToken)
		if err == nil && claims.UserID == input.UserID.String() {
			if err := s.blacklist.AddToBlacklist(ctx, claims.ID, claims.GetRemainingTTL()); err != nil {
				s.logger.Warn("Failed to blacklist refresh token", zap.Error(err))
			}
		}
	}
	s.logger.Info("User logged out", zap.String("user_id", input.UserID.String()))
	return nil
}

// ConfirmEmail consumes an email confirmation token
func (s *AuthService) ConfirmEmail(ctx context.Context, token string) error {
	c, err := s.consume(ctx, identity.PurposeEmailConfirmation, token)
	if err != nil {
		return err
	}
	user, err := s.userRepo.FindByID(ctx, c.UserID)
	if err != nil {
		return err
	}
	if user.EmailVerified {
		return nil
	}
	if err := user.MarkEmailVerified(); err != nil {
		return err
	}
	if err := s.userRepo.Save(ctx, user); err != nil {
		return err
	}
	s.logger.Info("Email confirmed", zap.String("user_id", user.ID.String()))
	return nil
}

// ResendConfirmation issues a fresh confirmation token, invalidating older ones
func (s *AuthService) ResendConfirmation(ctx context.Context, userID uuid.UUID) error {
	user, err := s.userRepo.FindByID(ctx, userID)
	if err != nil {
		return err
	}
	if user.EmailVerified {
		return shared.NewDomainError("ALREADY_VERIFIED", "Email is already verified")
	}
	return s.issueToken(ctx, user, identity.PurposeEmailConfirmation)
}

// RequestPasswordReset sends a reset token when the email belongs to an
// active account. The outcome is never reported to the caller.
func (s *AuthService) RequestPasswordReset(ctx context.Context, email string) error {
	user, err := s.userRepo.FindByEmail(ctx, identity.NormalizeEmail(email))
	if err != nil {
		if shared.IsNotFound(err) {
			s.logger.Info("Password reset requested for unknown email")
			return nil
		}
		return err
	}
	if !user.IsActive() {
		s.logger.Info("Password reset requested for disabled account", zap.String("user_id", user.ID.String()))
		return nil
	}
	return s.issueToken(ctx, user, identity.PurposePasswordReset)
}

// ResetPassword sets a new password from a reset token and ends every
// existing session of the user
func (s *AuthService) ResetPassword(ctx context.Context, input ResetPasswordInput) error {
	c, err := s.consume(ctx, identity.PurposePasswordReset, input.Token)
	if err != nil {
		return err
	}
	user, err := s.userRepo.FindByID(ctx, c.UserID)
	if err != nil {
		return err
	}
	if err := user.SetPassword(input.NewPassword); err != nil {
		return err
	}
	if err := s.userRepo.Save(ctx, user); err != nil {
		return err
	}
	if err := shared.PublishAndClear(ctx, s.publisher, user); err != nil {
		s.logger.Warn("Failed to publish user events", zap.Error(err))
	}
	if err := s.blacklist.AddUserTokensToBlacklist(ctx, user.ID.String(), s.jwtService.GetRefreshTokenExpiration()); err != nil {
		s.logger.Error("Failed to invalidate sessions after reset", zap.Error(err))
	}
	s.logger.Info("Password reset", zap.String("user_id", user.ID.String()))
	return nil
}

// ChangePassword changes the password after checking the current one
func (s *AuthService) ChangePassword(ctx context.Context, input ChangePasswordInput) error {
	user, err := s.userRepo.FindByID(ctx, input.UserID)
	if err != nil {
		return err
	}
	if err := user.ChangePassword(input.OldPassword, input.NewPassword); err != nil {
		s.logger.Warn("Password change rejected", zap.String("user_id", input.UserID.String()), zap.Error(err))
		return err
	}
	if err := s.userRepo.Save(ctx, user); err != nil {
		return err
	}
	if err := shared.PublishAndClear(ctx, s.publisher, user); err != nil {
		s.logger.Warn("Failed to publish user events", zap.Error(err))
	}
	return nil
}

// GetMe returns the authenticated user
func (s *AuthService) GetMe(ctx context.Context, userID uuid.UUID) (*UserDTO, error) {
	user, err := s.userRepo.FindByID(ctx, userID)
	if err != nil {
		return nil, err
	}
	dto := ToUserDTO(user)
	return &dto, nil
}

// UpdateProfile changes the caller's name
func (s *AuthService) UpdateProfile(ctx context.Context, input UpdateProfileInput) (*UserDTO, error) {
	user, err := s.userRepo.FindByID(ctx, input.UserID)
	if err != nil {
		return nil, err
	}
	if err := user.UpdateProfile(input.FirstName, input.LastName); err != nil {
		return nil, err
	}
	if err := s.userRepo.Save(ctx, user); err != nil {
		return nil, err
	}
	dto := ToUserDTO(user)
	return &dto, nil
}

// issueToken replaces any outstanding token of the purpose and publishes the
// plaintext for the mailer
func (s *AuthService) issueToken(ctx context.Context, user *identity.User, purpose identity.Purpose) error {
	if err := s.confirmRepo.InvalidateForUser(ctx, user.ID, purpose); err != nil {
		return err
	}
	c, plaintext, err := identity.NewConfirmation(user.ID, purpose)
	if err != nil {
		return err
	}
	if err := s.confirmRepo.Save(ctx, c); err != nil {
		return err
	}
	if s.publisher != nil {
		if err := s.publisher.Publish(ctx, identity.NewTokenIssuedEvent(c, user, plaintext)); err != nil {
			s.logger.Warn("Failed to publish token event", zap.String("purpose", string(purpose)), zap.Error(err))
		}
	}
	return nil
}

func (s *AuthService) consume(ctx context.Context, purpose identity.Purpose, token string) (*identity.Confirmation, error) {
	if token == "" {
		return nil, shared.NewDomainError("INVALID_TOKEN", "Token is required")
	}
	c, err := s.confirmRepo.FindByHash(ctx, purpose, identity.HashToken(token))
	if err != nil {
		if shared.IsNotFound(err) {
			return nil, shared.NewDomainError("INVALID_TOKEN", "Token is invalid")
		}
		return nil, err
	}
	if err := c.Consume(time.Now()); err != nil {
		return nil, err
	}
	if err := s.confirmRepo.Save(ctx, c); err != nil {
		return nil, err
	}
	return c, nil
}

func (s *AuthService) isRevoked(ctx context.Context, claims *auth.Claims) (bool, error) {
	blacklisted, err := s.blacklist.IsBlacklisted(ctx, claims.ID)
	if err != nil || blacklisted {
		return blacklisted, err
	}
	return s.blacklist.IsUserTokenInvalidated(ctx, claims.UserID, claims.GetIssuedAtTime())
}

func toTokenResult(pair *auth.TokenPair) TokenResult {
	return TokenResult{
		AccessToken:           pair.AccessToken,
		RefreshToken:          pair.RefreshToken,
		AccessTokenExpiresAt:  pair.AccessTokenExpiresAt,
		RefreshTokenExpiresAt: pair.RefreshTokenExpiresAt,
		TokenType:             pair.TokenType,
	}
}
