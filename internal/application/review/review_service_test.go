package review

import (
	"context"
	"testing"

	"github.com/google/uuid"
	"github.com/shopforge/backend/internal/domain/catalog"
	"github.com/shopforge/backend/internal/domain/review"
	"github.com/shopforge/backend/internal/domain/shared"
	"github.com/shopforge/backend/internal/domain/store"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
)

// MockReviewRepository is a mock implementation of review.Repository
type MockReviewRepository struct {
	mock.Mock
}

func (m *MockReviewRepository) FindByID(ctx context.Context, id uuid.UUID) (*review.Review, error) {
	args := m.Called(ctx, id)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*review.Review), args.Error(1)
}

func (m *MockReviewRepository) FindByUserAndProduct(ctx context.Context, userID, productID uuid.UUID) (*review.Review, error) {
	args := m.Called(ctx, userID, productID)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*review.Review), args.Error(1)
}

func (m *MockReviewRepository) FindByProduct(ctx context.Context, productID uuid.UUID, filter shared.Filter) ([]*review.Review, int64, error) {
	args := m.Called(ctx, productID, filter)
	return args.Get(0).([]*review.Review), args.Get(1).(int64), args.Error(2)
}

func (m *MockReviewRepository) FindByStore(ctx context.Context, storeID uuid.UUID, filter shared.Filter) ([]*review.Review, int64, error) {
	args := m.Called(ctx, storeID, filter)
	return args.Get(0).([]*review.Review), args.Get(1).(int64), args.Error(2)
}

func (m *MockReviewRepository) Save(ctx context.Context, r *review.Review) error {
	return m.Called(ctx, r).Error(0)
}

func (m *MockReviewRepository) Delete(ctx context.Context, id uuid.UUID) error {
	return m.Called(ctx, id).Error(0)
}

func (m *MockReviewRepository) Summarize(ctx context.Context, productID uuid.UUID) (review.RatingSummary, error) {
	args := m.Called(ctx, productID)
	return args.Get(0).(review.RatingSummary), args.Error(1)
}

// MockProductRepository mocks the product lookups and rating writes reviews need
type MockProductRepository struct {
	catalog.ProductRepository
	mock.Mock
}

func (m *MockProductRepository) FindByID(ctx context.Context, id uuid.UUID) (*catalog.Product, error) {
	args := m.Called(ctx, id)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*catalog.Product), args.Error(1)
}

func (m *MockProductRepository) UpdateRating(ctx context.Context, productID uuid.UUID, avg decimal.Decimal, count int) error {
	return m.Called(ctx, productID, avg, count).Error(0)
}

// MockPurchaseChecker is a mock implementation of PurchaseChecker
type MockPurchaseChecker struct {
	mock.Mock
}

func (m *MockPurchaseChecker) HasPurchased(ctx context.Context, customerID, productID uuid.UUID) (bool, error) {
	args := m.Called(ctx, customerID, productID)
	return args.Bool(0), args.Error(1)
}

// MockRoleChecker is a mock implementation of RoleChecker
type MockRoleChecker struct {
	mock.Mock
}

func (m *MockRoleChecker) CheckRole(ctx context.Context, storeID, userID uuid.UUID, min store.Role) (bool, error) {
	args := m.Called(ctx, storeID, userID, min)
	return args.Bool(0), args.Error(1)
}

type capturePublisher struct {
	types []string
}

func (p *capturePublisher) Publish(_ context.Context, events ...shared.DomainEvent) error {
	for _, e := range events {
		p.types = append(p.types, e.EventType())
	}
	return nil
}

type reviewFixture struct {
	reviews   *MockReviewRepository
	products  *MockProductRepository
	purchases *MockPurchaseChecker
	roles     *MockRoleChecker
	publisher *capturePublisher
	svc       *ReviewService
}

func newReviewFixture() *reviewFixture {
	f := &reviewFixture{
		reviews:   new(MockReviewRepository),
		products:  new(MockProductRepository),
		purchases: new(MockPurchaseChecker),
		roles:     new(MockRoleChecker),
		publisher: &capturePublisher{},
	}
	f.svc = NewReviewService(f.reviews, f.products, f.purchases, f.roles, f.publisher, zap.NewNop())
	return f
}

func activeProduct(t *testing.T) *catalog.Product {
	t.Helper()
	p, err := catalog.NewProduct(uuid.New(), "Walnut Board", "", "")
	require.NoError(t, err)
	require.NoError(t, p.Publish(1))
	return p
}

func matchDecimal(want string) interface{} {
	return mock.MatchedBy(func(d decimal.Decimal) bool {
		return d.Equal(decimal.RequireFromString(want))
	})
}

func TestReviewService_Create(t *testing.T) {
	f := newReviewFixture()
	ctx := context.Background()
	product := activeProduct(t)
	userID := uuid.New()

	f.products.On("FindByID", ctx, product.ID).Return(product, nil)
	f.reviews.On("FindByUserAndProduct", ctx, userID, product.ID).Return(nil, shared.ErrNotFound)
	f.purchases.On("HasPurchased", ctx, userID, product.ID).Return(true, nil)
	f.reviews.On("Save", ctx, mock.AnythingOfType("*review.Review")).Return(nil)
	f.reviews.On("Summarize", ctx, product.ID).Return(review.RatingSummary{Average: decimal.RequireFromString("4.333"), Count: 3}, nil)
	f.products.On("UpdateRating", ctx, product.ID, matchDecimal("4.33"), 3).Return(nil)

	resp, err := f.svc.Create(ctx, userID, product.ID, CreateReviewRequest{Rating: 5, Title: " Great ", Body: "Solid wood"})
	require.NoError(t, err)
	assert.True(t, resp.VerifiedPurchase)
	assert.Equal(t, "Great", resp.Title)
	assert.Equal(t, product.StoreID, resp.StoreID)
	assert.Equal(t, []string{review.EventTypeReviewCreated}, f.publisher.types)
	f.products.AssertExpectations(t)
}

func TestReviewService_Create_Duplicate(t *testing.T) {
	f := newReviewFixture()
	ctx := context.Background()
	product := activeProduct(t)
	userID := uuid.New()
	existing, err := review.NewReview(product.StoreID, product.ID, userID, 3, "", "", false)
	require.NoError(t, err)

	f.products.On("FindByID", ctx, product.ID).Return(product, nil)
	f.reviews.On("FindByUserAndProduct", ctx, userID, product.ID).Return(existing, nil)

	_, err = f.svc.Create(ctx, userID, product.ID, CreateReviewRequest{Rating: 4})
	var de *shared.DomainError
	require.ErrorAs(t, err, &de)
	assert.Equal(t, "ALREADY_EXISTS", de.Code)
	f.reviews.AssertNotCalled(t, "Save", mock.Anything, mock.Anything)
}

func TestReviewService_Create_DraftProductHidden(t *testing.T) {
	f := newReviewFixture()
	ctx := context.Background()
	draft, err := catalog.NewProduct(uuid.New(), "Draft", "", "")
	require.NoError(t, err)
	f.products.On("FindByID", ctx, draft.ID).Return(draft, nil)

	_, err = f.svc.Create(ctx, uuid.New(), draft.ID, CreateReviewRequest{Rating: 4})
	assert.True(t, shared.IsNotFound(err))
}

func TestReviewService_Update_OnlyAuthor(t *testing.T) {
	f := newReviewFixture()
	ctx := context.Background()
	author := uuid.New()
	r, err := review.NewReview(uuid.New(), uuid.New(), author, 2, "", "", false)
	require.NoError(t, err)
	r.ClearDomainEvents()
	f.reviews.On("FindByID", ctx, r.ID).Return(r, nil)

	_, err = f.svc.Update(ctx, uuid.New(), r.ID, UpdateReviewRequest{Rating: 5})
	assert.ErrorIs(t, err, shared.ErrForbidden)

	f.reviews.On("Save", ctx, r).Return(nil)
	f.reviews.On("Summarize", ctx, r.ProductID).Return(review.RatingSummary{Average: decimal.NewFromInt(5), Count: 1}, nil)
	f.products.On("UpdateRating", ctx, r.ProductID, matchDecimal("5"), 1).Return(nil)

	resp, err := f.svc.Update(ctx, author, r.ID, UpdateReviewRequest{Rating: 5, Body: "Changed my mind"})
	require.NoError(t, err)
	assert.Equal(t, 5, resp.Rating)
	assert.Equal(t, []string{review.EventTypeReviewUpdated}, f.publisher.types)
}

func TestReviewService_Delete(t *testing.T) {
	t.Run("moderator may delete", func(t *testing.T) {
		f := newReviewFixture()
		ctx := context.Background()
		r, err := review.NewReview(uuid.New(), uuid.New(), uuid.New(), 1, "", "spam", false)
		require.NoError(t, err)
		r.ClearDomainEvents()
		moderator := uuid.New()

		f.reviews.On("FindByID", ctx, r.ID).Return(r, nil)
		f.roles.On("CheckRole", ctx, r.StoreID, moderator, store.RoleModerator).Return(true, nil)
		f.reviews.On("Delete", ctx, r.ID).Return(nil)
		f.reviews.On("Summarize", ctx, r.ProductID).Return(review.RatingSummary{Average: decimal.Zero}, nil)
		f.products.On("UpdateRating", ctx, r.ProductID, matchDecimal("0"), 0).Return(nil)

		require.NoError(t, f.svc.Delete(ctx, r.ID, Actor{UserID: moderator}))
		assert.Equal(t, []string{review.EventTypeReviewDeleted}, f.publisher.types)
	})

	t.Run("other customer is forbidden", func(t *testing.T) {
		f := newReviewFixture()
		ctx := context.Background()
		r, err := review.NewReview(uuid.New(), uuid.New(), uuid.New(), 4, "", "", false)
		require.NoError(t, err)
		other := uuid.New()

		f.reviews.On("FindByID", ctx, r.ID).Return(r, nil)
		f.roles.On("CheckRole", ctx, r.StoreID, other, store.RoleModerator).Return(false, nil)

		err = f.svc.Delete(ctx, r.ID, Actor{UserID: other})
		assert.ErrorIs(t, err, shared.ErrForbidden)
		f.reviews.AssertNotCalled(t, "Delete", mock.Anything, mock.Anything)
	})
}

func TestReviewService_ListForProduct_RatingFilter(t *testing.T) {
	f := newReviewFixture()
	ctx := context.Background()
	product := activeProduct(t)
	f.products.On("FindByID", ctx, product.ID).Return(product, nil)
	f.reviews.On("FindByProduct", ctx, product.ID, mock.MatchedBy(func(filter shared.Filter) bool {
		return filter.Filters["rating"] == 5 && filter.PageSize == 20
	})).Return([]*review.Review{}, int64(0), nil)

	page, err := f.svc.ListForProduct(ctx, product.ID, ReviewListFilter{Rating: 5})
	require.NoError(t, err)
	assert.Empty(t, page.Items)
}
