package handler

import (
	"context"
	"net/http"
	"testing"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
	reviewapp "github.com/shopforge/backend/internal/application/review"
	"github.com/shopforge/backend/internal/domain/shared"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
)

// MockReviewService is a mock implementation of ReviewService
type MockReviewService struct {
	mock.Mock
}

func (m *MockReviewService) Create(ctx context.Context, userID, productID uuid.UUID, req reviewapp.CreateReviewRequest) (*reviewapp.ReviewResponse, error) {
	args := m.Called(ctx, userID, productID, req)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*reviewapp.ReviewResponse), args.Error(1)
}

func (m *MockReviewService) Update(ctx context.Context, userID, reviewID uuid.UUID, req reviewapp.UpdateReviewRequest) (*reviewapp.ReviewResponse, error) {
	args := m.Called(ctx, userID, reviewID, req)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*reviewapp.ReviewResponse), args.Error(1)
}

func (m *MockReviewService) Delete(ctx context.Context, reviewID uuid.UUID, actor reviewapp.Actor) error {
	return m.Called(ctx, reviewID, actor).Error(0)
}

func (m *MockReviewService) ListForProduct(ctx context.Context, productID uuid.UUID, filter reviewapp.ReviewListFilter) (shared.Paginated[reviewapp.ReviewResponse], error) {
	args := m.Called(ctx, productID, filter)
	return args.Get(0).(shared.Paginated[reviewapp.ReviewResponse]), args.Error(1)
}

func (m *MockReviewService) ListForStore(ctx context.Context, storeID uuid.UUID, filter reviewapp.ReviewListFilter) (shared.Paginated[reviewapp.ReviewResponse], error) {
	args := m.Called(ctx, storeID, filter)
	return args.Get(0).(shared.Paginated[reviewapp.ReviewResponse]), args.Error(1)
}

func setupReviewRouter(svc *MockReviewService, userID uuid.UUID, role string) *gin.Engine {
	h := NewReviewHandler(svc)
	r := gin.New()
	if userID != uuid.Nil {
		r.Use(withUser(userID, role))
	}
	r.GET("/products/:productId/reviews", h.ListForProduct)
	r.POST("/products/:productId/reviews", h.Create)
	r.PUT("/reviews/:reviewId", h.Update)
	r.DELETE("/reviews/:reviewId", h.Delete)
	r.GET("/stores/:storeId/reviews", h.ListForStore)
	return r
}

func TestReviewHandler_Create(t *testing.T) {
	userID, productID := uuid.New(), uuid.New()
	path := "/products/" + productID.String() + "/reviews"

	t.Run("success", func(t *testing.T) {
		svc := new(MockReviewService)
		svc.On("Create", mock.Anything, userID, productID, reviewapp.CreateReviewRequest{Rating: 5, Title: "Great"}).
			Return(&reviewapp.ReviewResponse{ID: uuid.New(), Rating: 5, VerifiedPurchase: true}, nil)

		w := performRequest(setupReviewRouter(svc, userID, "user"), http.MethodPost, path, gin.H{"rating": 5, "title": "Great"})

		assert.Equal(t, http.StatusCreated, w.Code)
		assert.Equal(t, true, decodeResponse(t, w).Data.(map[string]any)["verified_purchase"])
		svc.AssertExpectations(t)
	})

	t.Run("rating out of range", func(t *testing.T) {
		svc := new(MockReviewService)

		w := performRequest(setupReviewRouter(svc, userID, "user"), http.MethodPost, path, gin.H{"rating": 6})

		assert.Equal(t, http.StatusBadRequest, w.Code)
	})

	t.Run("second review", func(t *testing.T) {
		svc := new(MockReviewService)
		svc.On("Create", mock.Anything, userID, productID, mock.Anything).Return(nil, shared.ErrAlreadyExists)

		w := performRequest(setupReviewRouter(svc, userID, "user"), http.MethodPost, path, gin.H{"rating": 4})

		assert.Equal(t, http.StatusConflict, w.Code)
	})

	t.Run("anonymous", func(t *testing.T) {
		svc := new(MockReviewService)

		w := performRequest(setupReviewRouter(svc, uuid.Nil, ""), http.MethodPost, path, gin.H{"rating": 4})

		assert.Equal(t, http.StatusUnauthorized, w.Code)
	})
}

func TestReviewHandler_UpdateDelete(t *testing.T) {
	userID, reviewID := uuid.New(), uuid.New()
	svc := new(MockReviewService)
	svc.On("Update", mock.Anything, userID, reviewID, reviewapp.UpdateReviewRequest{Rating: 3, Body: "Faded"}).
		Return(nil, shared.ErrForbidden)
	svc.On("Delete", mock.Anything, reviewID, reviewapp.Actor{UserID: userID, IsSiteAdmin: true}).Return(nil)
	r := setupReviewRouter(svc, userID, "admin")

	w := performRequest(r, http.MethodPut, "/reviews/"+reviewID.String(), gin.H{"rating": 3, "body": "Faded"})
	assert.Equal(t, http.StatusForbidden, w.Code)

	w = performRequest(r, http.MethodDelete, "/reviews/"+reviewID.String(), nil)
	assert.Equal(t, http.StatusNoContent, w.Code)
	svc.AssertExpectations(t)
}

func TestReviewHandler_Lists(t *testing.T) {
	productID, storeID := uuid.New(), uuid.New()
	svc := new(MockReviewService)
	svc.On("ListForProduct", mock.Anything, productID, reviewapp.ReviewListFilter{Rating: 5}).
		Return(shared.NewPaginated([]reviewapp.ReviewResponse{{Rating: 5}}, 1, 1, 20), nil)
	svc.On("ListForStore", mock.Anything, storeID, reviewapp.ReviewListFilter{OrderBy: "rating", OrderDir: "asc"}).
		Return(shared.NewPaginated([]reviewapp.ReviewResponse{}, 0, 1, 20), nil)
	r := setupReviewRouter(svc, uuid.Nil, "")

	w := performRequest(r, http.MethodGet, "/products/"+productID.String()+"/reviews?rating=5", nil)
	assert.Equal(t, http.StatusOK, w.Code)

	w = performRequest(r, http.MethodGet, "/stores/"+storeID.String()+"/reviews?order_by=rating&order_dir=asc", nil)
	assert.Equal(t, http.StatusOK, w.Code)
	svc.AssertExpectations(t)
}
