//go:build integration

package persistence

import (
	"context"
	"errors"
	"sync"
	"sync/atomic"
	"testing"
	"time"

	"github.com/shopforge/backend/internal/domain/catalog"
	"github.com/shopforge/backend/internal/domain/identity"
	"github.com/shopforge/backend/internal/domain/inventory"
	"github.com/shopforge/backend/internal/domain/order"
	"github.com/shopforge/backend/internal/domain/shared"
	"github.com/shopforge/backend/internal/domain/store"
	"github.com/shopforge/backend/internal/infrastructure/persistence/models"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/testcontainers/testcontainers-go"
	tcpostgres "github.com/testcontainers/testcontainers-go/modules/postgres"
	"github.com/testcontainers/testcontainers-go/wait"
	"gorm.io/driver/postgres"
	"gorm.io/gorm"
	gormlogger "gorm.io/gorm/logger"
)

func newPostgresDB(t *testing.T) *gorm.DB {
	t.Helper()
	ctx := context.Background()
	container, err := tcpostgres.Run(ctx,
		"postgres:16-alpine",
		tcpostgres.WithDatabase("shopforge_test"),
		tcpostgres.WithUsername("postgres"),
		tcpostgres.WithPassword("postgres"),
		testcontainers.WithWaitStrategy(
			wait.ForLog("database system is ready to accept connections").
				WithOccurrence(2).
				WithStartupTimeout(60*time.Second)),
	)
	require.NoError(t, err, "Failed to start PostgreSQL container")
	t.Cleanup(func() { _ = container.Terminate(ctx) })

	dsn, err := container.ConnectionString(ctx, "sslmode=disable")
	require.NoError(t, err)

	db, err := gorm.Open(postgres.Open(dsn), &gorm.Config{
		Logger:         gormlogger.Default.LogMode(gormlogger.Silent),
		TranslateError: true,
	})
	require.NoError(t, err)
	require.NoError(t, db.AutoMigrate(models.All()...))
	return db
}

// seedStock creates a store with one variant holding quantity units
func seedStock(t *testing.T, db *gorm.DB, quantity int) *inventory.Inventory {
	t.Helper()
	ctx := context.Background()

	owner, err := identity.NewUser("owner@example.com", "Sup3rSecret!", "Olive", "Owner")
	require.NoError(t, err)
	require.NoError(t, NewGormUserRepository(db).Save(ctx, owner))

	s, err := store.NewStore(owner.ID, "Corner Shop", "", "")
	require.NoError(t, err)
	require.NoError(t, NewGormStoreRepository(db).Save(ctx, s))

	p, err := catalog.NewProduct(s.ID, "Tea", "", "")
	require.NoError(t, err)
	require.NoError(t, NewGormProductRepository(db).Save(ctx, p))

	v, err := catalog.NewProductVariant(p, "TEA-1", "Loose leaf", decimal.NewFromInt(8))
	require.NoError(t, err)
	require.NoError(t, NewGormVariantRepository(db).Save(ctx, v))

	inv := inventory.NewInventory(s.ID, p.ID, v.ID)
	require.NoError(t, inv.SetQuantity(quantity))
	require.NoError(t, NewGormInventoryRepository(db).Save(ctx, inv))
	return inv
}

func TestGormTransactionScope_ConcurrentReservations(t *testing.T) {
	db := newPostgresDB(t)
	inv := seedStock(t, db, 6)
	scope := NewGormTransactionScope(db)

	const buyers = 10
	var (
		wg       sync.WaitGroup
		reserved atomic.Int32
		refused  atomic.Int32
	)
	for i := 0; i < buyers; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			err := scope.Execute(context.Background(), func(repos order.TransactionalRepositories) error {
				locked, err := repos.InventoryRepo().FindByVariantForUpdate(context.Background(), inv.VariantID)
				if err != nil {
					return err
				}
				if err := locked.Reserve(1); err != nil {
					return err
				}
				return repos.InventoryRepo().Save(context.Background(), locked)
			})
			switch {
			case err == nil:
				reserved.Add(1)
			case errors.Is(err, shared.ErrInsufficientStock):
				refused.Add(1)
			default:
				t.Errorf("unexpected error: %v", err)
			}
		}()
	}
	wg.Wait()

	assert.Equal(t, int32(6), reserved.Load())
	assert.Equal(t, int32(buyers-6), refused.Load())

	final, err := NewGormInventoryRepository(db).FindByVariant(context.Background(), inv.VariantID)
	require.NoError(t, err)
	assert.Equal(t, 6, final.Quantity)
	assert.Equal(t, 6, final.Reserved)
	assert.Zero(t, final.Available())
}
