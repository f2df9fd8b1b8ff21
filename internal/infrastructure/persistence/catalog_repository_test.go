package persistence

import (
	"context"
	"testing"

	"github.com/DATA-DOG/go-sqlmock"
	"github.com/google/uuid"
	"github.com/shopforge/backend/internal/domain/catalog"
	"github.com/shopforge/backend/internal/domain/inventory"
	"github.com/shopforge/backend/internal/domain/shared"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func seedProduct(t *testing.T, repo *GormProductRepository, storeID uuid.UUID, name string) *catalog.Product {
	t.Helper()
	p, err := catalog.NewProduct(storeID, name, "", "A "+name)
	require.NoError(t, err)
	require.NoError(t, repo.Save(context.Background(), p))
	return p
}

func TestGormProductRepository_SaveAndFind(t *testing.T) {
	db := newSQLiteDB(t)
	repo := NewGormProductRepository(db)
	ctx := context.Background()
	storeID := uuid.New()

	p := seedProduct(t, repo, storeID, "Blue Mug")

	t.Run("finds within own store", func(t *testing.T) {
		found, err := repo.FindByIDForStore(ctx, storeID, p.ID)
		require.NoError(t, err)
		assert.Equal(t, "Blue Mug", found.Name)
		assert.Equal(t, catalog.ProductStatusDraft, found.Status)
	})

	t.Run("other store gets not found", func(t *testing.T) {
		_, err := repo.FindByIDForStore(ctx, uuid.New(), p.ID)
		assert.ErrorIs(t, err, shared.ErrNotFound)
	})

	t.Run("slug is scoped per store", func(t *testing.T) {
		exists, err := repo.ExistsBySlug(ctx, storeID, p.Slug)
		require.NoError(t, err)
		assert.True(t, exists)

		exists, err = repo.ExistsBySlug(ctx, uuid.New(), p.Slug)
		require.NoError(t, err)
		assert.False(t, exists)
	})

	t.Run("update rating touches only rating columns", func(t *testing.T) {
		require.NoError(t, repo.UpdateRating(ctx, p.ID, decimal.RequireFromString("4.333"), 3))
		found, err := repo.FindByID(ctx, p.ID)
		require.NoError(t, err)
		assert.True(t, decimal.RequireFromString("4.33").Equal(found.AverageRating))
		assert.Equal(t, 3, found.ReviewCount)
		assert.Equal(t, "Blue Mug", found.Name)
	})

	t.Run("update rating of missing product", func(t *testing.T) {
		err := repo.UpdateRating(ctx, uuid.New(), decimal.Zero, 0)
		assert.ErrorIs(t, err, shared.ErrNotFound)
	})
}

func TestGormProductRepository_FindAll(t *testing.T) {
	db := newSQLiteDB(t)
	repo := NewGormProductRepository(db)
	ctx := context.Background()
	storeID := uuid.New()

	seedProduct(t, repo, storeID, "Red Chair")
	seedProduct(t, repo, storeID, "Red Table")
	seedProduct(t, repo, uuid.New(), "Red Lamp")

	filter := catalog.ProductFilter{StoreID: &storeID}
	filter.Search = "red"
	filter.Page, filter.PageSize = 1, 1

	items, total, err := repo.FindAll(ctx, filter)
	require.NoError(t, err)
	assert.Equal(t, int64(2), total)
	assert.Len(t, items, 1)

	active := catalog.ProductStatusActive
	filter.Status = &active
	_, total, err = repo.FindAll(ctx, filter)
	require.NoError(t, err)
	assert.Equal(t, int64(0), total)
}

func TestGormVariantRepository_DeleteRemovesInventory(t *testing.T) {
	db := newSQLiteDB(t)
	products := NewGormProductRepository(db)
	variants := NewGormVariantRepository(db)
	stock := NewGormInventoryRepository(db)
	ctx := context.Background()
	storeID := uuid.New()

	p := seedProduct(t, products, storeID, "Notebook")
	v, err := catalog.NewProductVariant(p, "nb-a5", "A5", decimal.NewFromInt(12))
	require.NoError(t, err)
	require.NoError(t, variants.Save(ctx, v))
	require.NoError(t, stock.Save(ctx, inventory.NewInventory(storeID, p.ID, v.ID)))

	exists, err := variants.ExistsBySKU(ctx, storeID, " nb-a5 ")
	require.NoError(t, err)
	assert.True(t, exists)

	count, err := variants.CountActive(ctx, p.ID)
	require.NoError(t, err)
	assert.Equal(t, int64(1), count)

	require.NoError(t, variants.DeleteForStore(ctx, storeID, v.ID))
	_, err = stock.FindByVariant(ctx, v.ID)
	assert.ErrorIs(t, err, shared.ErrNotFound)

	assert.ErrorIs(t, variants.DeleteForStore(ctx, storeID, v.ID), shared.ErrNotFound)
}

func TestGormCategoryRepository_DeleteDetachesProducts(t *testing.T) {
	db := newSQLiteDB(t)
	categories := NewGormCategoryRepository(db)
	products := NewGormProductRepository(db)
	ctx := context.Background()
	storeID := uuid.New()

	c, err := catalog.NewCategory(storeID, "Kitchen", "", "")
	require.NoError(t, err)
	require.NoError(t, categories.Save(ctx, c))

	p := seedProduct(t, products, storeID, "Pan")
	p.SetCategory(&c.ID)
	require.NoError(t, products.Save(ctx, p))

	n, err := products.CountByCategory(ctx, storeID, c.ID)
	require.NoError(t, err)
	assert.Equal(t, int64(1), n)

	require.NoError(t, categories.DeleteForStore(ctx, storeID, c.ID))

	found, err := products.FindByID(ctx, p.ID)
	require.NoError(t, err)
	assert.Nil(t, found.CategoryID)
}

func TestGormProductRepository_CountForStore_SQL(t *testing.T) {
	gormDB, mock, mockDB := newMockDB(t)
	defer mockDB.Close()
	repo := NewGormProductRepository(gormDB)
	storeID := uuid.New()

	mock.ExpectQuery(`SELECT count\(\*\) FROM "products" WHERE store_id = \$1`).
		WithArgs(storeID).
		WillReturnRows(sqlmock.NewRows([]string{"count"}).AddRow(7))

	count, err := repo.CountForStore(context.Background(), storeID)
	require.NoError(t, err)
	assert.Equal(t, int64(7), count)
	assert.NoError(t, mock.ExpectationsWereMet())
}
