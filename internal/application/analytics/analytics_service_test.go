package analytics

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/shopforge/backend/internal/domain/analytics"
	"github.com/shopforge/backend/internal/domain/catalog"
	"github.com/shopforge/backend/internal/domain/shared"
	"github.com/shopforge/backend/internal/infrastructure/queue"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
	"go.uber.org/zap/zaptest"
)

// MockAnalyticsRepository is a mock implementation of analytics.Repository
type MockAnalyticsRepository struct {
	mock.Mock
}

func (m *MockAnalyticsRepository) RecordEvent(ctx context.Context, e *analytics.Event) error {
	return m.Called(ctx, e).Error(0)
}

func (m *MockAnalyticsRepository) ProductStats(ctx context.Context, productIDs []uuid.UUID, from, to time.Time) ([]analytics.ProductDailyStat, error) {
	args := m.Called(ctx, productIDs, from, to)
	return args.Get(0).([]analytics.ProductDailyStat), args.Error(1)
}

func (m *MockAnalyticsRepository) StoreStats(ctx context.Context, storeID uuid.UUID, from, to time.Time) ([]analytics.StoreDailyStat, error) {
	args := m.Called(ctx, storeID, from, to)
	return args.Get(0).([]analytics.StoreDailyStat), args.Error(1)
}

func (m *MockAnalyticsRepository) TopProducts(ctx context.Context, storeID uuid.UUID, from, to time.Time, limit int) ([]analytics.ProductTotals, error) {
	args := m.Called(ctx, storeID, from, to, limit)
	return args.Get(0).([]analytics.ProductTotals), args.Error(1)
}

// stubProducts serves products for the dashboard and ownership checks
type stubProducts struct {
	catalog.ProductRepository
	products []*catalog.Product
	err      error
}

func (s *stubProducts) FindByIDs(_ context.Context, _ []uuid.UUID) ([]*catalog.Product, error) {
	return s.products, nil
}

func (s *stubProducts) FindByIDForStore(_ context.Context, storeID, id uuid.UUID) (*catalog.Product, error) {
	if s.err != nil {
		return nil, s.err
	}
	for _, p := range s.products {
		if p.ID == id && p.StoreID == storeID {
			return p, nil
		}
	}
	return nil, shared.ErrNotFound
}

// MockJobQueue is a mock implementation of JobQueue
type MockJobQueue struct {
	mock.Mock
}

func (m *MockJobQueue) Enqueue(ctx context.Context, jobType string, payload any) (*queue.Job, error) {
	args := m.Called(ctx, jobType, payload)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*queue.Job), args.Error(1)
}

// expectEnqueue captures the enqueued event and hands back a job for it
func expectEnqueue(q *MockJobQueue) *analytics.Event {
	captured := new(analytics.Event)
	q.On("Enqueue", mock.Anything, JobTypeRecord, mock.AnythingOfType("*analytics.Event")).
		Run(func(args mock.Arguments) { *captured = *args.Get(2).(*analytics.Event) }).
		Return(&queue.Job{ID: "job-1", Type: JobTypeRecord}, nil)
	return captured
}

func TestAnalyticsService_Record_EnqueuesOnly(t *testing.T) {
	q := new(MockJobQueue)
	repo := new(MockAnalyticsRepository)
	svc := NewAnalyticsService(q, repo, nil, zaptest.NewLogger(t))
	ctx := context.Background()
	storeID, productID := uuid.New(), uuid.New()
	queued := expectEnqueue(q)

	err := svc.Record(ctx, RecordInput{StoreID: storeID, ProductID: &productID, Type: "add_to_cart", Quantity: 3})
	require.NoError(t, err)
	q.AssertExpectations(t)
	repo.AssertNotCalled(t, "RecordEvent", mock.Anything, mock.Anything)

	repo.On("RecordEvent", mock.Anything, mock.MatchedBy(func(e *analytics.Event) bool {
		return e.StoreID == storeID && *e.ProductID == productID && e.Quantity == 3 && e.Type == analytics.EventAddToCart
	})).Return(nil)
	job, err := queue.NewJob(JobTypeRecord, queued)
	require.NoError(t, err)

	require.NoError(t, NewRecordHandler(repo, zap.NewNop()).Handle(ctx, job))
	repo.AssertExpectations(t)
}

func TestAnalyticsService_Record_Validation(t *testing.T) {
	q := new(MockJobQueue)
	svc := NewAnalyticsService(q, new(MockAnalyticsRepository), nil, zap.NewNop())
	ctx := context.Background()

	err := svc.Record(ctx, RecordInput{StoreID: uuid.New(), Type: "purchase"})
	var de *shared.DomainError
	require.ErrorAs(t, err, &de)
	assert.Equal(t, "INVALID_EVENT", de.Code)

	err = svc.Record(ctx, RecordInput{StoreID: uuid.New(), Type: "wishlist"})
	require.ErrorAs(t, err, &de)

	q.AssertNotCalled(t, "Enqueue", mock.Anything, mock.Anything, mock.Anything)
}

func TestAnalyticsService_Record_EnqueueFailure(t *testing.T) {
	q := new(MockJobQueue)
	q.On("Enqueue", mock.Anything, JobTypeRecord, mock.Anything).Return(nil, errors.New("redis down"))
	svc := NewAnalyticsService(q, new(MockAnalyticsRepository), nil, zap.NewNop())

	err := svc.Record(context.Background(), RecordInput{StoreID: uuid.New(), Type: "store_view"})
	assert.ErrorContains(t, err, "redis down")
}

func TestAnalyticsService_RecordStorefront(t *testing.T) {
	storeID := uuid.New()
	own, err := catalog.NewProduct(storeID, "Teapot", "", "")
	require.NoError(t, err)
	foreign, err := catalog.NewProduct(uuid.New(), "Kettle", "", "")
	require.NoError(t, err)
	products := &stubProducts{products: []*catalog.Product{own, foreign}}
	ctx := context.Background()

	t.Run("view of own product is queued without client counters", func(t *testing.T) {
		q := new(MockJobQueue)
		queued := expectEnqueue(q)
		svc := NewAnalyticsService(q, new(MockAnalyticsRepository), products, zap.NewNop())
		variantID := uuid.New()

		err := svc.RecordStorefront(ctx, RecordInput{
			StoreID:   storeID,
			ProductID: &own.ID,
			VariantID: &variantID,
			Type:      "product_view",
			Quantity:  999,
			Revenue:   decimal.NewFromInt(1000),
		})
		require.NoError(t, err)
		assert.Equal(t, analytics.EventProductView, queued.Type)
		assert.Equal(t, 1, queued.Quantity)
		assert.True(t, queued.Revenue.IsZero())
		assert.Nil(t, queued.VariantID)
	})

	for _, eventType := range []string{"add_to_cart", "checkout", "purchase"} {
		t.Run(eventType+" is refused", func(t *testing.T) {
			q := new(MockJobQueue)
			svc := NewAnalyticsService(q, new(MockAnalyticsRepository), products, zap.NewNop())

			err := svc.RecordStorefront(ctx, RecordInput{StoreID: storeID, ProductID: &own.ID, Type: eventType, Quantity: 5})
			var de *shared.DomainError
			require.ErrorAs(t, err, &de)
			assert.Equal(t, "INVALID_EVENT", de.Code)
			q.AssertNotCalled(t, "Enqueue", mock.Anything, mock.Anything, mock.Anything)
		})
	}

	t.Run("product of another store is refused", func(t *testing.T) {
		q := new(MockJobQueue)
		svc := NewAnalyticsService(q, new(MockAnalyticsRepository), products, zap.NewNop())

		err := svc.RecordStorefront(ctx, RecordInput{StoreID: storeID, ProductID: &foreign.ID, Type: "product_view"})
		var de *shared.DomainError
		require.ErrorAs(t, err, &de)
		assert.Equal(t, "INVALID_EVENT", de.Code)
		q.AssertNotCalled(t, "Enqueue", mock.Anything, mock.Anything, mock.Anything)
	})

	t.Run("lookup failure is returned", func(t *testing.T) {
		q := new(MockJobQueue)
		svc := NewAnalyticsService(q, new(MockAnalyticsRepository), &stubProducts{err: errors.New("db down")}, zap.NewNop())

		err := svc.RecordStorefront(ctx, RecordInput{StoreID: storeID, ProductID: &own.ID, Type: "product_view"})
		assert.ErrorContains(t, err, "db down")
	})

	t.Run("store view needs no product", func(t *testing.T) {
		q := new(MockJobQueue)
		queued := expectEnqueue(q)
		svc := NewAnalyticsService(q, new(MockAnalyticsRepository), products, zap.NewNop())

		require.NoError(t, svc.RecordStorefront(ctx, RecordInput{StoreID: storeID, Type: "store_view"}))
		assert.Equal(t, storeID, queued.StoreID)
		assert.Nil(t, queued.ProductID)
	})
}

func TestRecordHandler_FailureIsReturned(t *testing.T) {
	repo := new(MockAnalyticsRepository)
	repo.On("RecordEvent", mock.Anything, mock.Anything).Return(errors.New("db down"))
	event, err := analytics.NewEvent(uuid.New(), analytics.EventStoreView, nil)
	require.NoError(t, err)
	job, err := queue.NewJob(JobTypeRecord, event)
	require.NoError(t, err)

	err = NewRecordHandler(repo, zaptest.NewLogger(t)).Handle(context.Background(), job)
	assert.ErrorContains(t, err, "db down")

	bad := &queue.Job{Type: JobTypeRecord, Payload: []byte(`{"store_id":`)}
	assert.Error(t, NewRecordHandler(repo, zap.NewNop()).Handle(context.Background(), bad))
}

func TestAnalyticsService_Dashboard(t *testing.T) {
	repo := new(MockAnalyticsRepository)
	winner, err := catalog.NewProduct(uuid.New(), "Teapot", "", "")
	require.NoError(t, err)
	svc := NewAnalyticsService(nil, repo, &stubProducts{products: []*catalog.Product{winner}}, zap.NewNop())
	fixed := time.Date(2026, 3, 10, 15, 0, 0, 0, time.UTC)
	svc.now = func() time.Time { return fixed }
	ctx := context.Background()
	storeID := uuid.New()
	from := time.Date(2026, 3, 4, 0, 0, 0, 0, time.UTC)
	to := time.Date(2026, 3, 10, 0, 0, 0, 0, time.UTC)

	repo.On("StoreStats", ctx, storeID, from, to).Return([]analytics.StoreDailyStat{
		{StoreID: storeID, DailyStat: analytics.DailyStat{Date: from, Views: 10, Purchases: 1, Revenue: decimal.NewFromInt(20)}},
		{StoreID: storeID, DailyStat: analytics.DailyStat{Date: to, Views: 30, Purchases: 3, Revenue: decimal.NewFromInt(60)}},
	}, nil)
	repo.On("TopProducts", ctx, storeID, from, to, 10).Return([]analytics.ProductTotals{
		{ProductID: winner.ID, Views: 40, Purchases: 4, Revenue: decimal.NewFromInt(80)},
	}, nil)

	dash, err := svc.Dashboard(ctx, storeID, 7)
	require.NoError(t, err)
	require.Len(t, dash.Series, 7)
	assert.Equal(t, "2026-03-04", dash.Series[0].Date)
	assert.Equal(t, int64(0), dash.Series[3].Views)
	assert.Equal(t, int64(40), dash.Totals.Views)
	assert.Equal(t, int64(4), dash.Totals.Purchases)
	assert.True(t, dash.Totals.Revenue.Equal(decimal.NewFromInt(80)))
	assert.InDelta(t, 0.1, dash.Totals.ConversionRate, 1e-9)
	require.Len(t, dash.TopProducts, 1)
	assert.Equal(t, "Teapot", dash.TopProducts[0].Name)
}
