package catalog

import (
	"context"
	"strings"
	"testing"

	"github.com/google/uuid"
	"github.com/shopforge/backend/internal/domain/catalog"
	"github.com/shopforge/backend/internal/domain/shared"
	"github.com/shopforge/backend/internal/infrastructure/csvimport"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
)

type mockProductWriter struct {
	mock.Mock
}

func (m *mockProductWriter) Create(ctx context.Context, storeID uuid.UUID, req CreateProductRequest) (*ProductResponse, error) {
	args := m.Called(ctx, storeID, req)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*ProductResponse), args.Error(1)
}

func (m *mockProductWriter) Publish(ctx context.Context, storeID, productID uuid.UUID) (*ProductResponse, error) {
	args := m.Called(ctx, storeID, productID)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*ProductResponse), args.Error(1)
}

type mockVariantWriter struct {
	mock.Mock
}

func (m *mockVariantWriter) Create(ctx context.Context, storeID, productID uuid.UUID, req CreateVariantRequest) (*VariantResponse, error) {
	args := m.Called(ctx, storeID, productID, req)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*VariantResponse), args.Error(1)
}

type importFixture struct {
	importer   *ProductImporter
	writer     *mockProductWriter
	variants   *mockVariantWriter
	products   *MockProductRepository
	categories *MockCategoryRepository
	skus       *MockVariantRepository
	storeID    uuid.UUID
	category   *catalog.Category
}

func newImportFixture(t *testing.T) *importFixture {
	t.Helper()
	storeID := uuid.New()
	cat, err := catalog.NewCategory(storeID, "Mugs", "", "")
	require.NoError(t, err)

	f := &importFixture{
		writer:     new(mockProductWriter),
		variants:   new(mockVariantWriter),
		products:   new(MockProductRepository),
		categories: new(MockCategoryRepository),
		skus:       new(MockVariantRepository),
		storeID:    storeID,
		category:   cat,
	}
	f.importer = NewProductImporter(f.writer, f.variants, f.products, f.categories, f.skus, zap.NewNop())
	f.categories.On("FindAllForStore", mock.Anything, storeID).Return([]*catalog.Category{cat}, nil)
	return f
}

const mugCSV = "product,category,sku,variant_title,price,quantity,publish\n" +
	"Stoneware Mug,mugs,MUG-S,Small,12.50,10,yes\n" +
	"Stoneware Mug,Mugs,mug-l,Large,15.00,4,yes\n" +
	"Tea Towel,,TOWEL-1,,6,,no\n"

func TestProductImporter_DryRun(t *testing.T) {
	f := newImportFixture(t)
	f.products.On("ExistsBySlug", mock.Anything, f.storeID, mock.Anything).Return(false, nil)
	f.skus.On("ExistsBySKU", mock.Anything, f.storeID, mock.Anything).Return(false, nil)

	result, err := f.importer.Import(context.Background(), f.storeID, strings.NewReader(mugCSV), true)
	require.NoError(t, err)

	assert.True(t, result.DryRun)
	assert.Equal(t, 3, result.TotalRows)
	assert.Equal(t, 3, result.ValidRows)
	assert.Equal(t, 2, result.Products)
	assert.Zero(t, result.ProductsCreated)
	assert.Empty(t, result.Errors)
	f.writer.AssertNotCalled(t, "Create", mock.Anything, mock.Anything, mock.Anything)
	f.skus.AssertCalled(t, "ExistsBySKU", mock.Anything, f.storeID, "MUG-L")
}

func TestProductImporter_Commit(t *testing.T) {
	f := newImportFixture(t)
	ctx := context.Background()
	mugID, towelID := uuid.New(), uuid.New()

	f.products.On("ExistsBySlug", ctx, f.storeID, "stoneware-mug").Return(false, nil)
	f.products.On("ExistsBySlug", ctx, f.storeID, "tea-towel").Return(false, nil)
	f.skus.On("ExistsBySKU", ctx, f.storeID, mock.Anything).Return(false, nil)

	f.writer.On("Create", ctx, f.storeID, mock.MatchedBy(func(req CreateProductRequest) bool {
		return req.Slug == "stoneware-mug" && req.CategoryID != nil && *req.CategoryID == f.category.ID
	})).Return(&ProductResponse{ID: mugID}, nil).Once()
	f.writer.On("Create", ctx, f.storeID, mock.MatchedBy(func(req CreateProductRequest) bool {
		return req.Slug == "tea-towel" && req.CategoryID == nil
	})).Return(&ProductResponse{ID: towelID}, nil).Once()

	f.variants.On("Create", ctx, f.storeID, mugID, mock.MatchedBy(func(req CreateVariantRequest) bool {
		return req.SKU == "MUG-S" && req.Price.Equal(decimal.RequireFromString("12.50")) && req.InitialQuantity == 10
	})).Return(&VariantResponse{ID: uuid.New()}, nil).Once()
	f.variants.On("Create", ctx, f.storeID, mugID, mock.MatchedBy(func(req CreateVariantRequest) bool {
		return req.SKU == "mug-l" && req.Title == "Large"
	})).Return(&VariantResponse{ID: uuid.New()}, nil).Once()
	f.variants.On("Create", ctx, f.storeID, towelID, mock.MatchedBy(func(req CreateVariantRequest) bool {
		return req.SKU == "TOWEL-1" && req.InitialQuantity == 0 && req.LowStockThreshold == nil
	})).Return(&VariantResponse{ID: uuid.New()}, nil).Once()

	f.writer.On("Publish", ctx, f.storeID, mugID).Return(&ProductResponse{ID: mugID}, nil).Once()

	result, err := f.importer.Import(ctx, f.storeID, strings.NewReader(mugCSV), false)
	require.NoError(t, err)

	assert.Equal(t, 2, result.ProductsCreated)
	assert.Equal(t, 3, result.VariantsCreated)
	assert.Equal(t, 1, result.Published)
	assert.Zero(t, result.TotalErrors)
	f.writer.AssertExpectations(t)
	f.variants.AssertExpectations(t)
}

func TestProductImporter_RowErrorsBlockCommit(t *testing.T) {
	f := newImportFixture(t)
	f.products.On("ExistsBySlug", mock.Anything, f.storeID, "desk-lamp").Return(true, nil)
	f.products.On("ExistsBySlug", mock.Anything, f.storeID, mock.Anything).Return(false, nil)
	f.skus.On("ExistsBySKU", mock.Anything, f.storeID, "TAKEN").Return(true, nil)
	f.skus.On("ExistsBySKU", mock.Anything, f.storeID, mock.Anything).Return(false, nil)

	input := "product,category,sku,price\n" +
		"Desk Lamp,,LAMP-1,20\n" + // slug exists
		"Chair,,TAKEN,40\n" + // SKU exists
		"Table,,TABLE-1,abc\n" + // bad price
		"Stool,Chairs,STOOL-1,10\n" + // unknown category
		"Bench,,table-1,15\n" // duplicate SKU in file

	result, err := f.importer.Import(context.Background(), f.storeID, strings.NewReader(input), false)
	require.NoError(t, err)

	assert.Equal(t, 5, result.TotalRows)
	assert.Equal(t, 5, result.ErrorRows)
	assert.Zero(t, result.ValidRows)
	assert.Zero(t, result.ProductsCreated)

	codes := make(map[int]string)
	for _, e := range result.Errors {
		codes[e.Row] = e.Code
	}
	assert.Equal(t, map[int]string{
		2: csvimport.CodeAlreadyExists,
		3: csvimport.CodeAlreadyExists,
		4: csvimport.CodeInvalidType,
		5: csvimport.CodeNotFound,
		6: csvimport.CodeDuplicateInFile,
	}, codes)
	f.writer.AssertNotCalled(t, "Create", mock.Anything, mock.Anything, mock.Anything)
}

func TestProductImporter_CategoryConflict(t *testing.T) {
	f := newImportFixture(t)
	f.products.On("ExistsBySlug", mock.Anything, f.storeID, mock.Anything).Return(false, nil)
	f.skus.On("ExistsBySKU", mock.Anything, f.storeID, mock.Anything).Return(false, nil)

	input := "product,category,sku,price\n" +
		"Mug,mugs,A,1\n" +
		"Mug,,B,1\n"

	result, err := f.importer.Import(context.Background(), f.storeID, strings.NewReader(input), true)
	require.NoError(t, err)
	require.Len(t, result.Errors, 1)
	assert.Equal(t, 3, result.Errors[0].Row)
	assert.Equal(t, csvimport.CodeConflict, result.Errors[0].Code)
}

func TestProductImporter_VariantRejected(t *testing.T) {
	f := newImportFixture(t)
	ctx := context.Background()
	productID := uuid.New()
	f.products.On("ExistsBySlug", ctx, f.storeID, mock.Anything).Return(false, nil)
	f.skus.On("ExistsBySKU", ctx, f.storeID, mock.Anything).Return(false, nil)
	f.writer.On("Create", ctx, f.storeID, mock.Anything).Return(&ProductResponse{ID: productID}, nil)
	f.variants.On("Create", ctx, f.storeID, productID, mock.Anything).
		Return(nil, shared.NewDomainError("INVALID_PRICE", "Price cannot be negative"))

	input := "product,sku,price,publish\nMug,A,1,yes\n"
	result, err := f.importer.Import(ctx, f.storeID, strings.NewReader(input), false)
	require.NoError(t, err)

	assert.Equal(t, 1, result.ProductsCreated)
	assert.Zero(t, result.VariantsCreated)
	require.Len(t, result.Errors, 1)
	assert.Equal(t, csvimport.CodeRejected, result.Errors[0].Code)
	assert.Equal(t, "Price cannot be negative", result.Errors[0].Message)
	f.writer.AssertNotCalled(t, "Publish", mock.Anything, mock.Anything, mock.Anything)
}

func TestProductImporter_FileErrors(t *testing.T) {
	f := newImportFixture(t)

	tests := []struct {
		name  string
		input string
	}{
		{"empty", ""},
		{"missing columns", "product,price\nMug,1\n"},
		{"header only", "product,sku,price\n"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := f.importer.Import(context.Background(), f.storeID, strings.NewReader(tt.input), true)
			var de *shared.DomainError
			require.ErrorAs(t, err, &de)
			assert.Equal(t, "INVALID_IMPORT_FILE", de.Code)
		})
	}
}
