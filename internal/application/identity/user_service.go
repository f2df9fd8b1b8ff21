package identity

import (
	"context"

	"github.com/google/uuid"
	"github.com/shopforge/backend/internal/domain/identity"
	"github.com/shopforge/backend/internal/domain/shared"
	"github.com/shopforge/backend/internal/infrastructure/auth"
	"go.uber.org/zap"
)

// UserService handles site administration of accounts
type UserService struct {
	userRepo   identity.UserRepository
	jwtService *auth.JWTService
	blacklist  auth.TokenBlacklist
	logger     *zap.Logger
}

// NewUserService creates a new user service
func NewUserService(
	userRepo identity.UserRepository,
	jwtService *auth.JWTService,
	blacklist auth.TokenBlacklist,
	logger *zap.Logger,
) *UserService {
	return &UserService{
		userRepo:   userRepo,
		jwtService: jwtService,
		blacklist:  blacklist,
		logger:     logger,
	}
}

// ListUsers returns a filtered page of users
func (s *UserService) ListUsers(ctx context.Context, input ListUsersInput) (shared.Paginated[UserDTO], error) {
	page := shared.Filter{Page: input.Page, PageSize: input.PageSize}.Normalize()
	filter := identity.UserFilter{
		Keyword:   input.Keyword,
		Page:      page.Page,
		PageSize:  page.PageSize,
		SortBy:    input.SortBy,
		SortOrder: input.SortOrder,
	}
	if input.Role != "" {
		role := identity.SiteRole(input.Role)
		if !role.IsValid() {
			return shared.Paginated[UserDTO]{}, shared.NewDomainError("INVALID_ROLE", "Unknown site role")
		}
		filter.Role = &role
	}
	if input.Status != "" {
		status := identity.UserStatus(input.Status)
		if !status.IsValid() {
			return shared.Paginated[UserDTO]{}, shared.NewDomainError("INVALID_STATUS", "Unknown user status")
		}
		filter.Status = &status
	}

	users, total, err := s.userRepo.FindAll(ctx, filter)
	if err != nil {
		return shared.Paginated[UserDTO]{}, err
	}
	items := make([]UserDTO, len(users))
	for i, u := range users {
		items[i] = ToUserDTO(u)
	}
	return shared.NewPaginated(items, total, page.Page, page.PageSize), nil
}

// GetUser returns one user
func (s *UserService) GetUser(ctx context.Context, id uuid.UUID) (*UserDTO, error) {
	user, err := s.userRepo.FindByID(ctx, id)
	if err != nil {
		return nil, err
	}
	dto := ToUserDTO(user)
	return &dto, nil
}

// SetUserRole changes a user's site role. Admins cannot demote themselves.
func (s *UserService) SetUserRole(ctx context.Context, actorID, userID uuid.UUID, role string) (*UserDTO, error) {
	if actorID == userID {
		return nil, shared.NewDomainError("CANNOT_MODIFY_SELF", "You cannot change your own role")
	}
	user, err := s.userRepo.FindByID(ctx, userID)
	if err != nil {
		return nil, err
	}
	if err := user.SetRole(identity.SiteRole(role)); err != nil {
		return nil, err
	}
	if err := s.userRepo.Save(ctx, user); err != nil {
		return nil, err
	}
	// Existing tokens carry the old role claim
	s.invalidateSessions(ctx, user.ID)

	s.logger.Info("User role changed",
		zap.String("actor_id", actorID.String()),
		zap.String("user_id", userID.String()),
		zap.String("role", role))
	dto := ToUserDTO(user)
	return &dto, nil
}

// SetUserStatus enables or disables an account. Disabling ends its sessions.
func (s *UserService) SetUserStatus(ctx context.Context, actorID, userID uuid.UUID, status string) (*UserDTO, error) {
	if actorID == userID {
		return nil, shared.NewDomainError("CANNOT_MODIFY_SELF", "You cannot change your own status")
	}
	user, err := s.userRepo.FindByID(ctx, userID)
	if err != nil {
		return nil, err
	}
	if err := user.SetStatus(identity.UserStatus(status)); err != nil {
		return nil, err
	}
	if err := s.userRepo.Save(ctx, user); err != nil {
		return nil, err
	}
	if !user.IsActive() {
		s.invalidateSessions(ctx, user.ID)
	}

	s.logger.Info("User status changed",
		zap.String("actor_id", actorID.String()),
		zap.String("user_id", userID.String()),
		zap.String("status", status))
	dto := ToUserDTO(user)
	return &dto, nil
}

// DeleteUser removes an account
func (s *UserService) DeleteUser(ctx context.Context, actorID, userID uuid.UUID) error {
	if actorID == userID {
		return shared.NewDomainError("CANNOT_MODIFY_SELF", "You cannot delete your own account")
	}
	if _, err := s.userRepo.FindByID(ctx, userID); err != nil {
		return err
	}
	if err := s.userRepo.Delete(ctx, userID); err != nil {
		return err
	}
	s.invalidateSessions(ctx, userID)
	s.logger.Info("User deleted", zap.String("actor_id", actorID.String()), zap.String("user_id", userID.String()))
	return nil
}

func (s *UserService) invalidateSessions(ctx context.Context, userID uuid.UUID) {
	if s.blacklist == nil {
		return
	}
	if err := s.blacklist.AddUserTokensToBlacklist(ctx, userID.String(), s.jwtService.GetRefreshTokenExpiration()); err != nil {
		s.logger.Error("Failed to invalidate user sessions", zap.String("user_id", userID.String()), zap.Error(err))
	}
}
