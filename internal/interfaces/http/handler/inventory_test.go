package handler

import (
	"context"
	"net/http"
	"testing"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
	inventoryapp "github.com/shopforge/backend/internal/application/inventory"
	"github.com/shopforge/backend/internal/domain/shared"
	"github.com/shopforge/backend/internal/interfaces/http/dto"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"
)

// MockInventoryService is a mock implementation of InventoryService
type MockInventoryService struct {
	mock.Mock
}

func (m *MockInventoryService) item(args mock.Arguments) (*inventoryapp.InventoryItemResponse, error) {
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*inventoryapp.InventoryItemResponse), args.Error(1)
}

func (m *MockInventoryService) GetByVariant(ctx context.Context, storeID, variantID uuid.UUID) (*inventoryapp.InventoryItemResponse, error) {
	return m.item(m.Called(ctx, storeID, variantID))
}

func (m *MockInventoryService) ListForStore(ctx context.Context, storeID uuid.UUID, filter inventoryapp.InventoryListFilter) (shared.Paginated[inventoryapp.InventoryItemResponse], error) {
	args := m.Called(ctx, storeID, filter)
	return args.Get(0).(shared.Paginated[inventoryapp.InventoryItemResponse]), args.Error(1)
}

func (m *MockInventoryService) SetQuantity(ctx context.Context, storeID, variantID uuid.UUID, req inventoryapp.SetQuantityRequest) (*inventoryapp.InventoryItemResponse, error) {
	return m.item(m.Called(ctx, storeID, variantID, req))
}

func (m *MockInventoryService) Adjust(ctx context.Context, storeID, variantID uuid.UUID, req inventoryapp.AdjustStockRequest) (*inventoryapp.InventoryItemResponse, error) {
	return m.item(m.Called(ctx, storeID, variantID, req))
}

func (m *MockInventoryService) SetThreshold(ctx context.Context, storeID, variantID uuid.UUID, req inventoryapp.SetThresholdRequest) (*inventoryapp.InventoryItemResponse, error) {
	return m.item(m.Called(ctx, storeID, variantID, req))
}

func setupInventoryRouter(svc *MockInventoryService) *gin.Engine {
	h := NewInventoryHandler(svc)
	r := gin.New()
	g := r.Group("/stores/:storeId/inventory")
	g.GET("", h.List)
	g.GET("/:variantId", h.Get)
	g.PUT("/:variantId", h.SetQuantity)
	g.POST("/:variantId/adjust", h.Adjust)
	g.PUT("/:variantId/threshold", h.SetThreshold)
	return r
}

func TestInventoryHandler_List(t *testing.T) {
	storeID := uuid.New()
	svc := new(MockInventoryService)
	low := inventoryapp.InventoryItemResponse{ID: uuid.New(), StoreID: storeID, Quantity: 2, Available: 2, LowStockThreshold: 5, IsLowStock: true}
	svc.On("ListForStore", mock.Anything, storeID, mock.MatchedBy(func(f inventoryapp.InventoryListFilter) bool {
		return f.LowStockOnly && f.PageSize == 50
	})).Return(shared.NewPaginated([]inventoryapp.InventoryItemResponse{low}, 1, 1, 50), nil)

	w := performRequest(setupInventoryRouter(svc), http.MethodGet, "/stores/"+storeID.String()+"/inventory?low_stock_only=true&page_size=50", nil)

	assert.Equal(t, http.StatusOK, w.Code)
	resp := decodeResponse(t, w)
	items := resp.Data.([]any)
	require.Len(t, items, 1)
	assert.Equal(t, true, items[0].(map[string]any)["is_low_stock"])
	svc.AssertExpectations(t)
}

func TestInventoryHandler_List_PageSizeTooLarge(t *testing.T) {
	svc := new(MockInventoryService)

	w := performRequest(setupInventoryRouter(svc), http.MethodGet, "/stores/"+uuid.NewString()+"/inventory?page_size=1000", nil)

	assert.Equal(t, http.StatusBadRequest, w.Code)
	svc.AssertNotCalled(t, "ListForStore", mock.Anything, mock.Anything, mock.Anything)
}

func TestInventoryHandler_Get(t *testing.T) {
	storeID, variantID := uuid.New(), uuid.New()

	t.Run("found", func(t *testing.T) {
		svc := new(MockInventoryService)
		svc.On("GetByVariant", mock.Anything, storeID, variantID).
			Return(&inventoryapp.InventoryItemResponse{VariantID: variantID, Quantity: 10, Reserved: 3, Available: 7}, nil)

		w := performRequest(setupInventoryRouter(svc), http.MethodGet, "/stores/"+storeID.String()+"/inventory/"+variantID.String(), nil)

		assert.Equal(t, http.StatusOK, w.Code)
		assert.EqualValues(t, 7, decodeResponse(t, w).Data.(map[string]any)["available"])
	})

	t.Run("not found", func(t *testing.T) {
		svc := new(MockInventoryService)
		svc.On("GetByVariant", mock.Anything, storeID, variantID).Return(nil, shared.ErrNotFound)

		w := performRequest(setupInventoryRouter(svc), http.MethodGet, "/stores/"+storeID.String()+"/inventory/"+variantID.String(), nil)

		assert.Equal(t, http.StatusNotFound, w.Code)
	})

	t.Run("invalid variant id", func(t *testing.T) {
		svc := new(MockInventoryService)

		w := performRequest(setupInventoryRouter(svc), http.MethodGet, "/stores/"+storeID.String()+"/inventory/bad", nil)

		assert.Equal(t, http.StatusBadRequest, w.Code)
		assert.Equal(t, "Invalid variant ID format", decodeResponse(t, w).Error.Message)
	})
}

func TestInventoryHandler_Writes(t *testing.T) {
	storeID, variantID := uuid.New(), uuid.New()
	base := "/stores/" + storeID.String() + "/inventory/" + variantID.String()
	updated := &inventoryapp.InventoryItemResponse{VariantID: variantID, Quantity: 20}

	t.Run("set quantity", func(t *testing.T) {
		svc := new(MockInventoryService)
		svc.On("SetQuantity", mock.Anything, storeID, variantID, inventoryapp.SetQuantityRequest{Quantity: 20}).Return(updated, nil)

		w := performRequest(setupInventoryRouter(svc), http.MethodPut, base, gin.H{"quantity": 20})

		assert.Equal(t, http.StatusOK, w.Code)
		svc.AssertExpectations(t)
	})

	t.Run("negative quantity", func(t *testing.T) {
		svc := new(MockInventoryService)

		w := performRequest(setupInventoryRouter(svc), http.MethodPut, base, gin.H{"quantity": -1})

		assert.Equal(t, http.StatusBadRequest, w.Code)
	})

	t.Run("set below reserved", func(t *testing.T) {
		svc := new(MockInventoryService)
		svc.On("SetQuantity", mock.Anything, storeID, variantID, mock.Anything).Return(nil, shared.ErrInsufficientStock)

		w := performRequest(setupInventoryRouter(svc), http.MethodPut, base, gin.H{"quantity": 1})

		assert.Equal(t, http.StatusBadRequest, w.Code)
		assert.Equal(t, dto.ErrCodeInsufficientStock, decodeResponse(t, w).Error.Code)
	})

	t.Run("adjust", func(t *testing.T) {
		svc := new(MockInventoryService)
		svc.On("Adjust", mock.Anything, storeID, variantID, inventoryapp.AdjustStockRequest{Delta: -4, Reason: "damaged"}).Return(updated, nil)

		w := performRequest(setupInventoryRouter(svc), http.MethodPost, base+"/adjust", gin.H{"delta": -4, "reason": "damaged"})

		assert.Equal(t, http.StatusOK, w.Code)
		svc.AssertExpectations(t)
	})

	t.Run("zero delta", func(t *testing.T) {
		svc := new(MockInventoryService)

		w := performRequest(setupInventoryRouter(svc), http.MethodPost, base+"/adjust", gin.H{"delta": 0})

		assert.Equal(t, http.StatusBadRequest, w.Code)
		svc.AssertNotCalled(t, "Adjust", mock.Anything, mock.Anything, mock.Anything, mock.Anything)
	})

	t.Run("version conflict", func(t *testing.T) {
		svc := new(MockInventoryService)
		svc.On("Adjust", mock.Anything, storeID, variantID, mock.Anything).Return(nil, shared.ErrConcurrencyConflict)

		w := performRequest(setupInventoryRouter(svc), http.MethodPost, base+"/adjust", gin.H{"delta": 2})

		assert.Equal(t, http.StatusConflict, w.Code)
	})

	t.Run("threshold", func(t *testing.T) {
		svc := new(MockInventoryService)
		svc.On("SetThreshold", mock.Anything, storeID, variantID, inventoryapp.SetThresholdRequest{Threshold: 3}).Return(updated, nil)

		w := performRequest(setupInventoryRouter(svc), http.MethodPut, base+"/threshold", gin.H{"threshold": 3})

		assert.Equal(t, http.StatusOK, w.Code)
	})
}
