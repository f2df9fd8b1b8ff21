package analytics

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/shopforge/backend/internal/domain/analytics"
	"github.com/shopforge/backend/internal/domain/catalog"
	"github.com/shopforge/backend/internal/domain/shared"
	"github.com/shopforge/backend/internal/infrastructure/queue"
	"github.com/shopspring/decimal"
	"go.uber.org/zap"
)

// JobTypeRecord is the queue job that persists one analytics event
const JobTypeRecord = "analytics.record"

const (
	defaultDashboardDays = 30
	maxDashboardDays     = 365
	topProductsLimit     = 10
)

// JobQueue accepts background jobs
type JobQueue interface {
	Enqueue(ctx context.Context, jobType string, payload any) (*queue.Job, error)
}

// Recorder records storefront interactions. Cart and order services use it
// to report add-to-cart and purchase events.
type Recorder interface {
	Record(ctx context.Context, in RecordInput) error
}

// AnalyticsService ingests events through the job queue and serves dashboards
type AnalyticsService struct {
	queue       JobQueue
	repo        analytics.Repository
	productRepo catalog.ProductRepository
	logger      *zap.Logger
	now         func() time.Time
}

// NewAnalyticsService creates a new AnalyticsService
func NewAnalyticsService(q JobQueue, repo analytics.Repository, productRepo catalog.ProductRepository, logger *zap.Logger) *AnalyticsService {
	return &AnalyticsService{
		queue:       q,
		repo:        repo,
		productRepo: productRepo,
		logger:      logger,
		now:         time.Now,
	}
}

// Record validates the event and enqueues it. Nothing is written synchronously.
func (s *AnalyticsService) Record(ctx context.Context, in RecordInput) error {
	event, err := analytics.NewEvent(in.StoreID, analytics.EventType(in.Type), in.ProductID)
	if err != nil {
		return err
	}
	event.VariantID = in.VariantID
	event.UserID = in.UserID
	event.SessionID = in.SessionID
	event.Metadata = in.Metadata
	if in.Quantity > 0 {
		event.Quantity = in.Quantity
	}
	if !in.Revenue.IsZero() {
		event.Revenue = in.Revenue
	}

	job, err := s.queue.Enqueue(ctx, JobTypeRecord, event)
	if err != nil {
		return fmt.Errorf("enqueue analytics event: %w", err)
	}
	s.logger.Debug("Analytics event queued",
		zap.String("job_id", job.ID),
		zap.String("type", string(event.Type)),
		zap.String("store_id", event.StoreID.String()),
	)
	return nil
}

// RecordStorefront records an event reported by a client. Clients may only
// report views, and a named product must belong to the store. Cart and
// purchase events come from the cart and order services.
func (s *AnalyticsService) RecordStorefront(ctx context.Context, in RecordInput) error {
	switch analytics.EventType(in.Type) {
	case analytics.EventStoreView, analytics.EventProductView:
	default:
		return shared.NewDomainError("INVALID_EVENT", "Only store and product views can be reported")
	}
	if in.ProductID != nil {
		if _, err := s.productRepo.FindByIDForStore(ctx, in.StoreID, *in.ProductID); err != nil {
			if errors.Is(err, shared.ErrNotFound) {
				return shared.NewDomainError("INVALID_EVENT", "Product does not belong to this store")
			}
			return err
		}
	}
	in.VariantID = nil
	in.Quantity = 0
	in.Revenue = decimal.Zero
	return s.Record(ctx, in)
}

// Dashboard summarises the last days of a store's activity
func (s *AnalyticsService) Dashboard(ctx context.Context, storeID uuid.UUID, days int) (*DashboardResponse, error) {
	if days <= 0 {
		days = defaultDashboardDays
	}
	if days > maxDashboardDays {
		days = maxDashboardDays
	}
	to := analytics.TruncateDay(s.now())
	from := to.AddDate(0, 0, -(days - 1))

	rows, err := s.repo.StoreStats(ctx, storeID, from, to)
	if err != nil {
		return nil, err
	}
	byDay := make(map[string]analytics.StoreDailyStat, len(rows))
	for _, r := range rows {
		byDay[r.Date.Format(time.DateOnly)] = r
	}

	resp := &DashboardResponse{
		StoreID: storeID,
		Days:    days,
		From:    from,
		To:      to,
		Series:  make([]DailyPoint, 0, days),
	}
	resp.Totals.Revenue = decimal.Zero
	for d := from; !d.After(to); d = d.AddDate(0, 0, 1) {
		key := d.Format(time.DateOnly)
		point := DailyPoint{Date: key, Revenue: decimal.Zero}
		if r, ok := byDay[key]; ok {
			point.Views = r.Views
			point.AddToCarts = r.AddToCarts
			point.Checkouts = r.Checkouts
			point.Purchases = r.Purchases
			point.Revenue = r.Revenue
		}
		resp.Series = append(resp.Series, point)

		resp.Totals.Views += point.Views
		resp.Totals.AddToCarts += point.AddToCarts
		resp.Totals.Checkouts += point.Checkouts
		resp.Totals.Purchases += point.Purchases
		resp.Totals.Revenue = resp.Totals.Revenue.Add(point.Revenue)
	}
	if resp.Totals.Views > 0 {
		resp.Totals.ConversionRate = float64(resp.Totals.Purchases) / float64(resp.Totals.Views)
	}

	top, err := s.topProducts(ctx, storeID, from, to)
	if err != nil {
		return nil, err
	}
	resp.TopProducts = top
	return resp, nil
}

func (s *AnalyticsService) topProducts(ctx context.Context, storeID uuid.UUID, from, to time.Time) ([]TopProduct, error) {
	totals, err := s.repo.TopProducts(ctx, storeID, from, to, topProductsLimit)
	if err != nil {
		return nil, err
	}
	out := make([]TopProduct, len(totals))
	if len(totals) == 0 {
		return out, nil
	}

	ids := make([]uuid.UUID, len(totals))
	for i, t := range totals {
		ids[i] = t.ProductID
	}
	names := map[uuid.UUID]string{}
	products, err := s.productRepo.FindByIDs(ctx, ids)
	if err != nil {
		s.logger.Warn("Failed to load product names for dashboard", zap.Error(err))
	}
	for _, p := range products {
		names[p.ID] = p.Name
	}
	for i, t := range totals {
		out[i] = TopProduct{
			ProductID: t.ProductID,
			Name:      names[t.ProductID],
			Views:     t.Views,
			Purchases: t.Purchases,
			Revenue:   t.Revenue,
		}
	}
	return out, nil
}

var _ Recorder = (*AnalyticsService)(nil)
