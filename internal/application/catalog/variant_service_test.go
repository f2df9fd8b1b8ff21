package catalog

import (
	"context"
	"testing"

	"github.com/google/uuid"
	"github.com/shopforge/backend/internal/domain/catalog"
	"github.com/shopforge/backend/internal/domain/inventory"
	"github.com/shopforge/backend/internal/domain/shared"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
)

func TestVariantService_Create_OpensInventory(t *testing.T) {
	products := new(MockProductRepository)
	variants := new(MockVariantRepository)
	stock := new(MockInventoryRepository)
	svc := NewVariantService(products, variants, stock, zap.NewNop())
	ctx := context.Background()
	storeID := uuid.New()
	p := newDraftProduct(t, storeID)
	compareAt := decimal.NewFromInt(50)
	threshold := 2

	products.On("FindByIDForStore", ctx, storeID, p.ID).Return(p, nil)
	variants.On("ExistsBySKU", ctx, storeID, "LS-M").Return(false, nil)
	variants.On("Save", ctx, mock.AnythingOfType("*catalog.ProductVariant")).Return(nil)
	stock.On("Save", ctx, mock.MatchedBy(func(inv *inventory.Inventory) bool {
		return inv.ProductID == p.ID && inv.StoreID == storeID && inv.Quantity == 12 &&
			inv.LowStockThreshold == 2 && len(inv.GetDomainEvents()) == 0
	})).Return(nil)

	resp, err := svc.Create(ctx, storeID, p.ID, CreateVariantRequest{
		SKU:               "ls-m",
		Title:             "Medium",
		Price:             decimal.NewFromInt(40),
		CompareAtPrice:    &compareAt,
		Attributes:        map[string]string{"size": "M"},
		InitialQuantity:   12,
		LowStockThreshold: &threshold,
	})
	require.NoError(t, err)
	assert.Equal(t, "LS-M", resp.SKU)
	assert.Equal(t, "M", resp.Attributes["size"])
	require.NotNil(t, resp.Available)
	assert.Equal(t, 12, *resp.Available)
	stock.AssertExpectations(t)
}

func TestVariantService_Create_DuplicateSKU(t *testing.T) {
	products := new(MockProductRepository)
	variants := new(MockVariantRepository)
	stock := new(MockInventoryRepository)
	svc := NewVariantService(products, variants, stock, zap.NewNop())
	ctx := context.Background()
	storeID := uuid.New()
	p := newDraftProduct(t, storeID)

	products.On("FindByIDForStore", ctx, storeID, p.ID).Return(p, nil)
	variants.On("ExistsBySKU", ctx, storeID, "LS-M").Return(true, nil)

	_, err := svc.Create(ctx, storeID, p.ID, CreateVariantRequest{SKU: "ls-m", Price: decimal.NewFromInt(1)})
	assert.ErrorIs(t, err, shared.ErrAlreadyExists)
	stock.AssertNotCalled(t, "Save", mock.Anything, mock.Anything)
}

func TestVariantService_Update_Price(t *testing.T) {
	variants := new(MockVariantRepository)
	svc := NewVariantService(new(MockProductRepository), variants, new(MockInventoryRepository), zap.NewNop())
	ctx := context.Background()
	storeID := uuid.New()
	p := newDraftProduct(t, storeID)
	v, err := catalog.NewProductVariant(p, "A", "", decimal.NewFromInt(10))
	require.NoError(t, err)
	variants.On("FindByIDForStore", ctx, storeID, v.ID).Return(v, nil)
	variants.On("Save", ctx, v).Return(nil)

	lower := decimal.NewFromInt(5)
	price := decimal.NewFromInt(8)
	_, err = svc.Update(ctx, storeID, v.ID, UpdateVariantRequest{Price: &price, CompareAtPrice: &lower})
	var de *shared.DomainError
	require.ErrorAs(t, err, &de)
	assert.Equal(t, "INVALID_PRICE", de.Code)

	inactive := false
	resp, err := svc.Update(ctx, storeID, v.ID, UpdateVariantRequest{Price: &price, IsActive: &inactive})
	require.NoError(t, err)
	assert.True(t, resp.Price.Equal(price))
	assert.False(t, resp.IsActive)
}

func TestVariantService_Delete_LastActiveVariant(t *testing.T) {
	products := new(MockProductRepository)
	variants := new(MockVariantRepository)
	svc := NewVariantService(products, variants, new(MockInventoryRepository), zap.NewNop())
	ctx := context.Background()
	storeID := uuid.New()
	p := newDraftProduct(t, storeID)
	v, err := catalog.NewProductVariant(p, "A", "", decimal.NewFromInt(10))
	require.NoError(t, err)
	require.NoError(t, p.Publish(1))

	variants.On("FindByIDForStore", ctx, storeID, v.ID).Return(v, nil)
	products.On("FindByIDForStore", ctx, storeID, p.ID).Return(p, nil)
	variants.On("CountActive", ctx, p.ID).Return(int64(1), nil)

	err = svc.Delete(ctx, storeID, v.ID)
	var de *shared.DomainError
	require.ErrorAs(t, err, &de)
	assert.Equal(t, "NO_ACTIVE_VARIANT", de.Code)
	variants.AssertNotCalled(t, "DeleteForStore", mock.Anything, mock.Anything, mock.Anything)
}

func TestVariantService_List_AttachesStock(t *testing.T) {
	products := new(MockProductRepository)
	variants := new(MockVariantRepository)
	stock := new(MockInventoryRepository)
	svc := NewVariantService(products, variants, stock, zap.NewNop())
	ctx := context.Background()
	storeID := uuid.New()
	p := newDraftProduct(t, storeID)
	v, err := catalog.NewProductVariant(p, "A", "", decimal.NewFromInt(10))
	require.NoError(t, err)
	inv := inventory.NewInventory(storeID, p.ID, v.ID)
	inv.Quantity = 7
	inv.Reserved = 2

	products.On("FindByIDForStore", ctx, storeID, p.ID).Return(p, nil)
	variants.On("FindByProduct", ctx, p.ID).Return([]*catalog.ProductVariant{v}, nil)
	stock.On("FindByVariants", ctx, []uuid.UUID{v.ID}).Return([]*inventory.Inventory{inv}, nil)

	out, err := svc.List(ctx, storeID, p.ID)
	require.NoError(t, err)
	require.Len(t, out, 1)
	require.NotNil(t, out[0].Available)
	assert.Equal(t, 5, *out[0].Available)
}
