package store

import (
	"context"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/shopforge/backend/internal/domain/identity"
	"github.com/shopforge/backend/internal/domain/shared"
	"github.com/shopforge/backend/internal/domain/store"
	"go.uber.org/zap"
)

// StoreService manages stores, their members and cached counters
type StoreService struct {
	stores    store.StoreRepository
	roles     store.StoreRoleRepository
	users     identity.UserRepository
	counters  store.CounterSource
	publisher shared.EventPublisher
	logger    *zap.Logger
}

// NewStoreService creates a new store service
func NewStoreService(
	stores store.StoreRepository,
	roles store.StoreRoleRepository,
	users identity.UserRepository,
	counters store.CounterSource,
	publisher shared.EventPublisher,
	logger *zap.Logger,
) *StoreService {
	return &StoreService{
		stores:    stores,
		roles:     roles,
		users:     users,
		counters:  counters,
		publisher: publisher,
		logger:    logger,
	}
}

// CreateStore opens a store and makes the creator its owner
func (s *StoreService) CreateStore(ctx context.Context, ownerID uuid.UUID, input CreateStoreInput) (*StoreDTO, error) {
	slug := strings.TrimSpace(input.Slug)
	if slug == "" {
		slug = shared.Slugify(input.Name)
	}
	exists, err := s.stores.ExistsBySlug(ctx, slug)
	if err != nil {
		return nil, err
	}
	if exists {
		return nil, shared.NewDomainError("ALREADY_EXISTS", "Store slug is already taken")
	}

	st, err := store.NewStore(ownerID, input.Name, slug, input.Description)
	if err != nil {
		return nil, err
	}
	if err := s.stores.Save(ctx, st); err != nil {
		return nil, err
	}
	owner, err := store.NewStoreRole(st.ID, ownerID, store.RoleOwner, &ownerID)
	if err != nil {
		return nil, err
	}
	if err := s.roles.Save(ctx, owner); err != nil {
		s.logger.Error("Failed to assign store owner", zap.String("store_id", st.ID.String()), zap.Error(err))
		return nil, err
	}
	if err := shared.PublishAndClear(ctx, s.publisher, st); err != nil {
		s.logger.Warn("Failed to publish store events", zap.Error(err))
	}

	s.logger.Info("Store created",
		zap.String("store_id", st.ID.String()),
		zap.String("slug", st.Slug),
		zap.String("owner_id", ownerID.String()))
	dto := ToStoreDTO(st)
	return &dto, nil
}

// GetStore resolves a store by ID or slug. Inactive stores are hidden unless
// includeInactive is set.
func (s *StoreService) GetStore(ctx context.Context, ref string, includeInactive bool) (*StoreDTO, error) {
	st, err := s.resolve(ctx, ref)
	if err != nil {
		return nil, err
	}
	if !st.IsActive && !includeInactive {
		return nil, shared.ErrNotFound
	}
	dto := ToStoreDTO(st)
	return &dto, nil
}

// ListStores lists active stores
func (s *StoreService) ListStores(ctx context.Context, filter shared.Filter) (shared.Paginated[StoreDTO], error) {
	filter = filter.Normalize()
	filter.Filters["active_only"] = true
	stores, total, err := s.stores.FindAll(ctx, filter)
	if err != nil {
		return shared.Paginated[StoreDTO]{}, err
	}
	items := make([]StoreDTO, len(stores))
	for i, st := range stores {
		items[i] = ToStoreDTO(st)
	}
	return shared.NewPaginated(items, total, filter.Page, filter.PageSize), nil
}

// ListMyStores lists every store the user holds a role in
func (s *StoreService) ListMyStores(ctx context.Context, userID uuid.UUID) ([]MyStoreDTO, error) {
	roles, err := s.roles.FindByUser(ctx, userID)
	if err != nil {
		return nil, err
	}
	if len(roles) == 0 {
		return []MyStoreDTO{}, nil
	}
	ids := make([]uuid.UUID, len(roles))
	byStore := make(map[uuid.UUID]store.Role, len(roles))
	for i, r := range roles {
		ids[i] = r.StoreID
		byStore[r.StoreID] = r.Role
	}
	stores, err := s.stores.FindByIDs(ctx, ids)
	if err != nil {
		return nil, err
	}
	out := make([]MyStoreDTO, 0, len(stores))
	for _, st := range stores {
		out = append(out, MyStoreDTO{StoreDTO: ToStoreDTO(st), Role: string(byStore[st.ID])})
	}
	return out, nil
}

// UpdateStore applies a partial update
func (s *StoreService) UpdateStore(ctx context.Context, storeID uuid.UUID, input UpdateStoreInput) (*StoreDTO, error) {
	st, err := s.stores.FindByID(ctx, storeID)
	if err != nil {
		return nil, err
	}
	if err := st.Update(input.Name, input.Description, input.LogoURL, input.IsActive); err != nil {
		return nil, err
	}
	if err := s.stores.Save(ctx, st); err != nil {
		return nil, err
	}
	dto := ToStoreDTO(st)
	return &dto, nil
}

// DeleteStore removes a store and its role assignments
func (s *StoreService) DeleteStore(ctx context.Context, storeID uuid.UUID) error {
	if err := s.stores.Delete(ctx, storeID); err != nil {
		return err
	}
	s.logger.Info("Store deleted", zap.String("store_id", storeID.String()))
	return nil
}

// RecomputeCounters refreshes the cached product, order and revenue totals
func (s *StoreService) RecomputeCounters(ctx context.Context, storeID uuid.UUID) (*StoreDTO, error) {
	st, err := s.stores.FindByID(ctx, storeID)
	if err != nil {
		return nil, err
	}
	counters, err := s.counters.ComputeCounters(ctx, storeID)
	if err != nil {
		s.logger.Error("Failed to compute store counters", zap.String("store_id", storeID.String()), zap.Error(err))
		return nil, err
	}
	st.ApplyCounters(counters, time.Now())
	if err := s.stores.SaveCounters(ctx, st); err != nil {
		return nil, err
	}
	s.logger.Debug("Store counters recomputed",
		zap.String("store_id", storeID.String()),
		zap.Int64("products", counters.ProductCount),
		zap.Int64("orders", counters.OrderCount),
		zap.String("revenue", counters.TotalRevenue.StringFixed(2)))
	dto := ToStoreDTO(st)
	return &dto, nil
}

// RecomputeAllCounters refreshes every active store. Failures are logged and skipped.
func (s *StoreService) RecomputeAllCounters(ctx context.Context) (int, error) {
	ids, err := s.stores.FindActiveIDs(ctx)
	if err != nil {
		return 0, err
	}
	done := 0
	for _, id := range ids {
		if ctx.Err() != nil {
			return done, ctx.Err()
		}
		if _, err := s.RecomputeCounters(ctx, id); err != nil {
			continue
		}
		done++
	}
	return done, nil
}

// AssignRole grants or changes a user's role in a store
func (s *StoreService) AssignRole(ctx context.Context, input AssignRoleInput) (*StoreRoleDTO, error) {
	target := store.Role(input.Role)
	if !target.IsValid() {
		return nil, shared.NewDomainError("INVALID_ROLE", "Unknown store role")
	}

	user, err := s.resolveUser(ctx, input.UserID, input.Email)
	if err != nil {
		return nil, err
	}
	actorRole, err := s.actorRole(ctx, input.StoreID, input.ActorID, input.ActorIsSite)
	if err != nil {
		return nil, err
	}

	existing, err := s.roles.Find(ctx, input.StoreID, user.ID)
	if err != nil && !shared.IsNotFound(err) {
		return nil, err
	}
	var current *store.Role
	if existing != nil {
		current = &existing.Role
	}
	if !store.CanAssign(actorRole, current, target) {
		return nil, shared.NewDomainError("FORBIDDEN", "You cannot assign this role")
	}
	if current != nil && *current == store.RoleOwner && target != store.RoleOwner {
		if err := s.ensureAnotherOwner(ctx, input.StoreID); err != nil {
			return nil, err
		}
	}

	actor := input.ActorID
	if existing != nil {
		existing.Role = target
		existing.AssignedBy = &actor
		existing.Touch()
	} else {
		existing, err = store.NewStoreRole(input.StoreID, user.ID, target, &actor)
		if err != nil {
			return nil, err
		}
	}
	if err := s.roles.Save(ctx, existing); err != nil {
		return nil, err
	}
	s.publish(ctx, store.NewStoreRoleChangedEvent(input.StoreID, user.ID, target))

	s.logger.Info("Store role assigned",
		zap.String("store_id", input.StoreID.String()),
		zap.String("user_id", user.ID.String()),
		zap.String("role", string(target)),
		zap.String("actor_id", input.ActorID.String()))
	return &StoreRoleDTO{
		UserID:     user.ID,
		Email:      user.Email,
		FullName:   user.FullName(),
		Role:       string(existing.Role),
		AssignedBy: existing.AssignedBy,
		CreatedAt:  existing.CreatedAt,
	}, nil
}

// RevokeRole removes a member. Members may always leave; the last owner may not.
func (s *StoreService) RevokeRole(ctx context.Context, input RevokeRoleInput) error {
	existing, err := s.roles.Find(ctx, input.StoreID, input.UserID)
	if err != nil {
		return err
	}
	if input.ActorID != input.UserID {
		actorRole, err := s.actorRole(ctx, input.StoreID, input.ActorID, input.ActorIsSite)
		if err != nil {
			return err
		}
		if !store.CanAssign(actorRole, &existing.Role, existing.Role) {
			return shared.NewDomainError("FORBIDDEN", "You cannot revoke this role")
		}
	}
	if existing.Role == store.RoleOwner {
		if err := s.ensureAnotherOwner(ctx, input.StoreID); err != nil {
			return err
		}
	}
	if err := s.roles.Delete(ctx, input.StoreID, input.UserID); err != nil {
		return err
	}
	s.publish(ctx, store.NewStoreRoleChangedEvent(input.StoreID, input.UserID, ""))
	s.logger.Info("Store role revoked",
		zap.String("store_id", input.StoreID.String()),
		zap.String("user_id", input.UserID.String()),
		zap.String("actor_id", input.ActorID.String()))
	return nil
}

// ListRoles lists the members of a store with their account details
func (s *StoreService) ListRoles(ctx context.Context, storeID uuid.UUID) ([]StoreRoleDTO, error) {
	roles, err := s.roles.FindByStore(ctx, storeID)
	if err != nil {
		return nil, err
	}
	ids := make([]uuid.UUID, len(roles))
	for i, r := range roles {
		ids[i] = r.UserID
	}
	users := map[uuid.UUID]*identity.User{}
	if len(ids) > 0 {
		found, err := s.users.FindByIDs(ctx, ids)
		if err != nil {
			return nil, err
		}
		for _, u := range found {
			users[u.ID] = u
		}
	}

	out := make([]StoreRoleDTO, len(roles))
	for i, r := range roles {
		dto := StoreRoleDTO{
			UserID:     r.UserID,
			Role:       string(r.Role),
			AssignedBy: r.AssignedBy,
			CreatedAt:  r.CreatedAt,
		}
		if u, ok := users[r.UserID]; ok {
			dto.Email = u.Email
			dto.FullName = u.FullName()
		}
		out[i] = dto
	}
	return out, nil
}

// CheckRole reports whether the user holds at least min in the store
func (s *StoreService) CheckRole(ctx context.Context, storeID, userID uuid.UUID, min store.Role) (bool, error) {
	r, err := s.roles.Find(ctx, storeID, userID)
	if err != nil {
		if shared.IsNotFound(err) {
			return false, nil
		}
		return false, err
	}
	return r.Role.AtLeast(min), nil
}

func (s *StoreService) resolve(ctx context.Context, ref string) (*store.Store, error) {
	if id, err := uuid.Parse(ref); err == nil {
		return s.stores.FindByID(ctx, id)
	}
	return s.stores.FindBySlug(ctx, strings.ToLower(strings.TrimSpace(ref)))
}

func (s *StoreService) resolveUser(ctx context.Context, id uuid.UUID, email string) (*identity.User, error) {
	if id != uuid.Nil {
		return s.users.FindByID(ctx, id)
	}
	if email == "" {
		return nil, shared.NewDomainError("INVALID_INPUT", "A user ID or email is required")
	}
	return s.users.FindByEmail(ctx, identity.NormalizeEmail(email))
}

func (s *StoreService) actorRole(ctx context.Context, storeID, actorID uuid.UUID, siteAdmin bool) (store.Role, error) {
	if siteAdmin {
		return store.RoleOwner, nil
	}
	r, err := s.roles.Find(ctx, storeID, actorID)
	if err != nil {
		if shared.IsNotFound(err) {
			return "", shared.ErrForbidden
		}
		return "", err
	}
	return r.Role, nil
}

func (s *StoreService) ensureAnotherOwner(ctx context.Context, storeID uuid.UUID) error {
	owners, err := s.roles.CountByRole(ctx, storeID, store.RoleOwner)
	if err != nil {
		return err
	}
	if owners <= 1 {
		return shared.NewDomainError("LAST_OWNER", "A store must keep at least one owner")
	}
	return nil
}

func (s *StoreService) publish(ctx context.Context, events ...shared.DomainEvent) {
	if s.publisher == nil {
		return
	}
	if err := s.publisher.Publish(ctx, events...); err != nil {
		s.logger.Warn("Failed to publish store events", zap.Error(err))
	}
}
