package predictor

import (
	"context"
	"time"

	"github.com/google/uuid"
	"github.com/shopforge/backend/internal/domain/ai"
	"github.com/shopforge/backend/internal/domain/analytics"
	"github.com/shopforge/backend/internal/domain/catalog"
	"github.com/shopforge/backend/internal/domain/shared"
	"github.com/shopforge/backend/internal/infrastructure/telemetry"
	"go.uber.org/zap"
)

// Metrics receives prediction run metrics
type Metrics interface {
	RecordPredictions(ctx context.Context, byLabel map[string]int)
	RecordPredictorError(ctx context.Context)
}

// StoreLister lists the stores the nightly refresh covers
type StoreLister interface {
	FindActiveIDs(ctx context.Context) ([]uuid.UUID, error)
}

// PredictorService scores products against the demand model and keeps the latest result
type PredictorService struct {
	productRepo catalog.ProductRepository
	statRepo    analytics.PredictorStatRepository
	stores      StoreLister
	builder     *FeatureBuilder
	predictor   ai.Predictor
	metrics     Metrics
	logger      *zap.Logger
	now         func() time.Time
}

// NewPredictorService creates a new PredictorService
func NewPredictorService(
	productRepo catalog.ProductRepository,
	statRepo analytics.PredictorStatRepository,
	stores StoreLister,
	builder *FeatureBuilder,
	predictor ai.Predictor,
	logger *zap.Logger,
) *PredictorService {
	return &PredictorService{
		productRepo: productRepo,
		statRepo:    statRepo,
		stores:      stores,
		builder:     builder,
		predictor:   predictor,
		logger:      logger,
		now:         time.Now,
	}
}

// WithMetrics reports stored predictions and failed runs
func (s *PredictorService) WithMetrics(m Metrics) *PredictorService {
	s.metrics = m
	return s
}

// PredictStore refreshes predictions for every active product of a store
func (s *PredictorService) PredictStore(ctx context.Context, storeID uuid.UUID) (*RunResponse, error) {
	ctx, span := telemetry.StartServiceSpan(ctx, "predictor", "PredictStore")
	defer span.End()

	ids, err := s.productRepo.FindActiveIDsForStore(ctx, storeID)
	if err != nil {
		return nil, err
	}
	if len(ids) == 0 {
		return &RunResponse{StoreID: storeID, ByLabel: map[string]int{}}, nil
	}
	products, err := s.productRepo.FindByIDs(ctx, ids)
	if err != nil {
		return nil, err
	}
	result, err := s.run(ctx, storeID, products)
	if err != nil {
		telemetry.RecordError(span, err)
		return nil, err
	}
	telemetry.SetAttributes(span, "predictor.requested", result.Requested, "predictor.stored", result.Stored)
	return result, nil
}

// PredictProduct refreshes the prediction for a single active product
func (s *PredictorService) PredictProduct(ctx context.Context, storeID, productID uuid.UUID) (*PredictionResponse, error) {
	product, err := s.productRepo.FindByIDForStore(ctx, storeID, productID)
	if err != nil {
		return nil, err
	}
	if !product.IsActive() {
		return nil, shared.NewDomainError("INVALID_STATE", "Only active products can be scored")
	}
	s.builder.Invalidate(productID)
	if _, err := s.run(ctx, storeID, []*catalog.Product{product}); err != nil {
		return nil, err
	}
	stat, err := s.statRepo.LatestForProduct(ctx, productID)
	if err != nil {
		if shared.IsNotFound(err) {
			return nil, shared.NewDomainError("PREDICTION_FAILED", "The model returned no prediction for this product")
		}
		return nil, err
	}
	response := ToPredictionResponse(stat, product.Name)
	return &response, nil
}

// ListPredictions returns the latest prediction per product of a store
func (s *PredictorService) ListPredictions(ctx context.Context, storeID uuid.UUID) ([]PredictionResponse, error) {
	stats, err := s.statRepo.LatestForStore(ctx, storeID)
	if err != nil {
		return nil, err
	}
	ids := make([]uuid.UUID, len(stats))
	for i, st := range stats {
		ids[i] = st.ProductID
	}
	names := make(map[uuid.UUID]string, len(ids))
	if len(ids) > 0 {
		products, err := s.productRepo.FindByIDs(ctx, ids)
		if err != nil {
			return nil, err
		}
		for _, p := range products {
			names[p.ID] = p.Name
		}
	}
	out := make([]PredictionResponse, len(stats))
	for i, st := range stats {
		out[i] = ToPredictionResponse(st, names[st.ProductID])
	}
	return out, nil
}

// RefreshAll predicts every active store in turn. A failing store is logged
// and skipped.
func (s *PredictorService) RefreshAll(ctx context.Context) error {
	storeIDs, err := s.stores.FindActiveIDs(ctx)
	if err != nil {
		return err
	}
	stored, failed := 0, 0
	for _, storeID := range storeIDs {
		if ctx.Err() != nil {
			return ctx.Err()
		}
		result, err := s.PredictStore(ctx, storeID)
		if err != nil {
			failed++
			s.logger.Error("Store prediction refresh failed",
				zap.String("store_id", storeID.String()),
				zap.Error(err))
			continue
		}
		stored += result.Stored
	}
	s.logger.Info("Prediction refresh finished",
		zap.Int("stores", len(storeIDs)),
		zap.Int("failed_stores", failed),
		zap.Int("predictions", stored))
	return nil
}

// Health reports whether the prediction service is reachable
func (s *PredictorService) Health(ctx context.Context) error {
	return s.predictor.Health(ctx)
}

func (s *PredictorService) run(ctx context.Context, storeID uuid.UUID, products []*catalog.Product) (*RunResponse, error) {
	features, err := s.builder.Build(ctx, storeID, products)
	if err != nil {
		return nil, err
	}
	rows := make([]ai.PredictionRow, 0, len(products))
	for _, p := range products {
		rows = append(rows, ai.PredictionRow{ProductID: p.ID, StoreID: storeID, Features: features[p.ID]})
	}

	preds, err := s.predictor.PredictBatch(ctx, rows)
	if err != nil {
		if s.metrics != nil {
			s.metrics.RecordPredictorError(ctx)
		}
		s.logger.Error("Prediction request failed",
			zap.String("store_id", storeID.String()),
			zap.Int("rows", len(rows)),
			zap.Error(err))
		return nil, shared.NewDomainError("PREDICTOR_UNAVAILABLE", "The demand predictor is unavailable")
	}

	computedAt := s.now().UTC()
	stats := make([]*analytics.PredictorStat, 0, len(preds))
	byLabel := map[string]int{}
	for _, p := range preds {
		score := ai.ClampScore(p.Score)
		label := ai.LabelFor(score)
		stats = append(stats, &analytics.PredictorStat{
			ID:              uuid.New(),
			ProductID:       p.ProductID,
			StoreID:         storeID,
			Score:           score,
			Label:           label,
			ForecastP50:     p.ForecastP50,
			ForecastP90:     p.ForecastP90,
			ModelConfidence: p.ModelConfidence,
			ModelVersion:    p.ModelVersion,
			ComputedAt:      computedAt,
		})
		byLabel[label]++
	}
	if len(stats) > 0 {
		if err := s.statRepo.SaveBatch(ctx, stats); err != nil {
			return nil, err
		}
	}
	if s.metrics != nil {
		s.metrics.RecordPredictions(ctx, byLabel)
	}
	return &RunResponse{
		StoreID:   storeID,
		Requested: len(rows),
		Stored:    len(stats),
		ByLabel:   byLabel,
	}, nil
}
