//go:build integration

package migration

import (
	"context"
	"database/sql"
	"testing"
	"time"

	_ "github.com/lib/pq"
	"github.com/shopforge/backend/internal/domain/analytics"
	"github.com/shopforge/backend/internal/domain/catalog"
	"github.com/shopforge/backend/internal/domain/identity"
	"github.com/shopforge/backend/internal/domain/shared"
	"github.com/shopforge/backend/internal/domain/store"
	"github.com/shopforge/backend/internal/infrastructure/persistence"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/testcontainers/testcontainers-go"
	tcpostgres "github.com/testcontainers/testcontainers-go/modules/postgres"
	"github.com/testcontainers/testcontainers-go/wait"
	"go.uber.org/zap/zaptest"
	gormpostgres "gorm.io/driver/postgres"
	"gorm.io/gorm"
)

func startPostgres(t *testing.T) string {
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
	return dsn
}

func TestMigrator_EmbeddedSchemaAgainstPostgres(t *testing.T) {
	dsn := startPostgres(t)
	sqlDB, err := sql.Open("postgres", dsn)
	require.NoError(t, err)
	defer sqlDB.Close()

	m, err := New(sqlDB, "", zaptest.NewLogger(t))
	require.NoError(t, err)
	require.NoError(t, m.Up())

	version, dirty, err := m.Version()
	require.NoError(t, err)
	assert.Equal(t, uint(4), version)
	assert.False(t, dirty)

	// Running again is a no-op
	require.NoError(t, m.Up())

	db, err := gorm.Open(gormpostgres.New(gormpostgres.Config{Conn: sqlDB}), &gorm.Config{TranslateError: true})
	require.NoError(t, err)
	ctx := context.Background()

	owner, err := identity.NewUser("owner@example.com", "Sup3rSecret!", "Olive", "Owner")
	require.NoError(t, err)
	require.NoError(t, persistence.NewGormUserRepository(db).Save(ctx, owner))

	s, err := store.NewStore(owner.ID, "Corner Shop", "", "")
	require.NoError(t, err)
	require.NoError(t, persistence.NewGormStoreRepository(db).Save(ctx, s))

	t.Run("product slug unique within store", func(t *testing.T) {
		products := persistence.NewGormProductRepository(db)
		p1, _ := catalog.NewProduct(s.ID, "Tea", "", "")
		p2, _ := catalog.NewProduct(s.ID, "Tea", "", "")
		require.NoError(t, products.Save(ctx, p1))
		assert.ErrorIs(t, products.Save(ctx, p2), shared.ErrAlreadyExists)
	})

	t.Run("daily stats upsert accumulates", func(t *testing.T) {
		repo := persistence.NewGormAnalyticsRepository(db)
		for i := 0; i < 3; i++ {
			e, err := analytics.NewEvent(s.ID, analytics.EventStoreView, nil)
			require.NoError(t, err)
			require.NoError(t, repo.RecordEvent(ctx, e))
		}
		now := time.Now().UTC()
		stats, err := repo.StoreStats(ctx, s.ID, now, now)
		require.NoError(t, err)
		require.Len(t, stats, 1)
		assert.Equal(t, int64(3), stats[0].Views)
	})

	require.NoError(t, m.Down())
	version, _, err = m.Version()
	require.NoError(t, err)
	assert.Equal(t, uint(0), version)
}
