package review

import (
	"context"
	"errors"

	"github.com/google/uuid"
	"github.com/shopforge/backend/internal/domain/catalog"
	"github.com/shopforge/backend/internal/domain/review"
	"github.com/shopforge/backend/internal/domain/shared"
	"github.com/shopforge/backend/internal/domain/store"
	"go.uber.org/zap"
)

// PurchaseChecker answers whether a customer bought a product
type PurchaseChecker interface {
	HasPurchased(ctx context.Context, customerID, productID uuid.UUID) (bool, error)
}

// RoleChecker answers whether a user holds at least a role in a store
type RoleChecker interface {
	CheckRole(ctx context.Context, storeID, userID uuid.UUID, min store.Role) (bool, error)
}

// ReviewService manages product reviews and the cached rating aggregates
type ReviewService struct {
	reviewRepo  review.Repository
	productRepo catalog.ProductRepository
	purchases   PurchaseChecker
	roles       RoleChecker
	publisher   shared.EventPublisher
	logger      *zap.Logger
}

// NewReviewService creates a new ReviewService
func NewReviewService(
	reviewRepo review.Repository,
	productRepo catalog.ProductRepository,
	purchases PurchaseChecker,
	roles RoleChecker,
	publisher shared.EventPublisher,
	logger *zap.Logger,
) *ReviewService {
	return &ReviewService{
		reviewRepo:  reviewRepo,
		productRepo: productRepo,
		purchases:   purchases,
		roles:       roles,
		publisher:   publisher,
		logger:      logger,
	}
}

// Create adds the caller's review of an active product
func (s *ReviewService) Create(ctx context.Context, userID, productID uuid.UUID, req CreateReviewRequest) (*ReviewResponse, error) {
	product, err := s.productRepo.FindByID(ctx, productID)
	if err != nil {
		return nil, err
	}
	if !product.IsActive() {
		return nil, shared.ErrNotFound
	}

	existing, err := s.reviewRepo.FindByUserAndProduct(ctx, userID, productID)
	if err != nil && !errors.Is(err, shared.ErrNotFound) {
		return nil, err
	}
	if existing != nil {
		return nil, shared.NewDomainError("ALREADY_EXISTS", "You have already reviewed this product")
	}

	verified, err := s.purchases.HasPurchased(ctx, userID, productID)
	if err != nil {
		return nil, err
	}
	r, err := review.NewReview(product.StoreID, productID, userID, req.Rating, req.Title, req.Body, verified)
	if err != nil {
		return nil, err
	}
	if err := s.reviewRepo.Save(ctx, r); err != nil {
		return nil, err
	}
	if err := s.recomputeRating(ctx, productID); err != nil {
		return nil, err
	}
	s.publish(ctx, r)

	response := ToReviewResponse(r)
	return &response, nil
}

// Update lets the author change their review
func (s *ReviewService) Update(ctx context.Context, userID, reviewID uuid.UUID, req UpdateReviewRequest) (*ReviewResponse, error) {
	r, err := s.reviewRepo.FindByID(ctx, reviewID)
	if err != nil {
		return nil, err
	}
	if !r.IsAuthor(userID) {
		return nil, shared.ErrForbidden
	}
	if err := r.Edit(req.Rating, req.Title, req.Body); err != nil {
		return nil, err
	}
	if err := s.reviewRepo.Save(ctx, r); err != nil {
		return nil, err
	}
	if err := s.recomputeRating(ctx, r.ProductID); err != nil {
		return nil, err
	}
	s.publish(ctx, r)

	response := ToReviewResponse(r)
	return &response, nil
}

// Delete removes a review. The author and store moderators may delete.
func (s *ReviewService) Delete(ctx context.Context, reviewID uuid.UUID, actor Actor) error {
	r, err := s.reviewRepo.FindByID(ctx, reviewID)
	if err != nil {
		return err
	}
	if !r.IsAuthor(actor.UserID) && !actor.IsSiteAdmin {
		allowed, err := s.roles.CheckRole(ctx, r.StoreID, actor.UserID, store.RoleModerator)
		if err != nil {
			return err
		}
		if !allowed {
			return shared.ErrForbidden
		}
	}
	if err := s.reviewRepo.Delete(ctx, r.ID); err != nil {
		return err
	}
	if err := s.recomputeRating(ctx, r.ProductID); err != nil {
		return err
	}
	r.MarkDeleted()
	s.publish(ctx, r)

	s.logger.Info("Review deleted",
		zap.String("review_id", r.ID.String()),
		zap.String("actor_id", actor.UserID.String()),
	)
	return nil
}

// ListForProduct lists an active product's reviews
func (s *ReviewService) ListForProduct(ctx context.Context, productID uuid.UUID, filter ReviewListFilter) (shared.Paginated[ReviewResponse], error) {
	product, err := s.productRepo.FindByID(ctx, productID)
	if err != nil {
		return shared.Paginated[ReviewResponse]{}, err
	}
	if !product.IsActive() {
		return shared.Paginated[ReviewResponse]{}, shared.ErrNotFound
	}
	f := toDomainFilter(filter)
	reviews, total, err := s.reviewRepo.FindByProduct(ctx, productID, f)
	if err != nil {
		return shared.Paginated[ReviewResponse]{}, err
	}
	return paginate(reviews, total, f), nil
}

// ListForStore lists all reviews for a store's products
func (s *ReviewService) ListForStore(ctx context.Context, storeID uuid.UUID, filter ReviewListFilter) (shared.Paginated[ReviewResponse], error) {
	f := toDomainFilter(filter)
	reviews, total, err := s.reviewRepo.FindByStore(ctx, storeID, f)
	if err != nil {
		return shared.Paginated[ReviewResponse]{}, err
	}
	return paginate(reviews, total, f), nil
}

func (s *ReviewService) recomputeRating(ctx context.Context, productID uuid.UUID) error {
	summary, err := s.reviewRepo.Summarize(ctx, productID)
	if err != nil {
		return err
	}
	return s.productRepo.UpdateRating(ctx, productID, summary.Average.Round(2), summary.Count)
}

func (s *ReviewService) publish(ctx context.Context, r *review.Review) {
	if err := shared.PublishAndClear(ctx, s.publisher, r); err != nil {
		s.logger.Warn("Failed to publish review events", zap.Error(err))
	}
}

func toDomainFilter(filter ReviewListFilter) shared.Filter {
	f := shared.Filter{
		Page:     filter.Page,
		PageSize: filter.PageSize,
		OrderBy:  filter.OrderBy,
		OrderDir: filter.OrderDir,
	}.Normalize()
	if filter.Rating > 0 {
		f.Filters = map[string]any{"rating": filter.Rating}
	}
	return f
}

func paginate(reviews []*review.Review, total int64, f shared.Filter) shared.Paginated[ReviewResponse] {
	items := make([]ReviewResponse, len(reviews))
	for i, r := range reviews {
		items[i] = ToReviewResponse(r)
	}
	return shared.NewPaginated(items, total, f.Page, f.PageSize)
}
