package telemetry

import (
	"context"
	"errors"
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"go.opentelemetry.io/otel/metric"
	"go.uber.org/zap"
)

// ErrMeterNil is returned when no meter is supplied
var ErrMeterNil = errors.New("telemetry: meter cannot be nil")

// BusinessMetrics records storefront, queue, LLM and predictor activity.
// All methods are safe on a nil receiver so services can leave it unset.
type BusinessMetrics struct {
	logger *zap.Logger

	ordersPlaced    *Counter
	orderRevenue    *FloatCounter
	orderCancelled  *Counter
	jobsTotal       *Counter
	jobDuration     *Histogram
	llmCalls        *Counter
	llmTokens       *Counter
	llmDuration     *Histogram
	predictions     *Counter
	predictorErrors *Counter
	stockAlerts     *Counter
}

// NewBusinessMetrics creates the instruments on meter
func NewBusinessMetrics(meter metric.Meter, logger *zap.Logger) (*BusinessMetrics, error) {
	if meter == nil {
		return nil, ErrMeterNil
	}
	if logger == nil {
		logger = zap.NewNop()
	}

	bm := &BusinessMetrics{logger: logger}
	var err error

	if bm.ordersPlaced, err = NewCounter(meter, "shop_orders_placed_total",
		"Orders created at checkout", "{orders}"); err != nil {
		return nil, err
	}
	if bm.orderRevenue, err = NewFloatCounter(meter, "shop_order_value_total",
		"Order value placed at checkout", "{currency}"); err != nil {
		return nil, err
	}
	if bm.orderCancelled, err = NewCounter(meter, "shop_orders_cancelled_total",
		"Orders cancelled", "{orders}"); err != nil {
		return nil, err
	}
	if bm.jobsTotal, err = NewCounter(meter, "shop_queue_jobs_total",
		"Queue jobs processed by outcome", "{jobs}"); err != nil {
		return nil, err
	}
	if bm.jobDuration, err = NewHistogram(meter, HistogramOpts{
		Name:        "shop_queue_job_duration_seconds",
		Description: "Queue job handler latency",
		Unit:        "s",
		Boundaries:  JobDurationBuckets,
	}); err != nil {
		return nil, err
	}
	if bm.llmCalls, err = NewCounter(meter, "shop_llm_calls_total",
		"Text generation calls by provider and status", "{calls}"); err != nil {
		return nil, err
	}
	if bm.llmTokens, err = NewCounter(meter, "shop_llm_tokens_total",
		"Tokens consumed by text generation", "{tokens}"); err != nil {
		return nil, err
	}
	if bm.llmDuration, err = NewHistogram(meter, HistogramOpts{
		Name:        "shop_llm_call_duration_seconds",
		Description: "Text generation latency",
		Unit:        "s",
		Boundaries:  LLMDurationBuckets,
	}); err != nil {
		return nil, err
	}
	if bm.predictions, err = NewCounter(meter, "shop_predictions_total",
		"Demand predictions stored by label", "{predictions}"); err != nil {
		return nil, err
	}
	if bm.predictorErrors, err = NewCounter(meter, "shop_predictor_errors_total",
		"Failed demand prediction runs", "{runs}"); err != nil {
		return nil, err
	}
	if bm.stockAlerts, err = NewCounter(meter, "shop_stock_alerts_total",
		"Stock alerts by kind and whether they were sent or suppressed", "{alerts}"); err != nil {
		return nil, err
	}
	return bm, nil
}

// RecordOrderPlaced counts a new order and its value
func (bm *BusinessMetrics) RecordOrderPlaced(ctx context.Context, storeID uuid.UUID, total decimal.Decimal) {
	if bm == nil {
		return
	}
	attr := AttrStoreID.String(storeID.String())
	bm.ordersPlaced.Inc(ctx, attr)
	bm.orderRevenue.Add(ctx, total.InexactFloat64(), attr)
}

// RecordOrderCancelled counts a cancellation
func (bm *BusinessMetrics) RecordOrderCancelled(ctx context.Context, storeID uuid.UUID) {
	if bm == nil {
		return
	}
	bm.orderCancelled.Inc(ctx, AttrStoreID.String(storeID.String()))
}

// RecordJob records one processed queue job
func (bm *BusinessMetrics) RecordJob(ctx context.Context, jobType, outcome string, d time.Duration) {
	if bm == nil {
		return
	}
	bm.jobsTotal.Inc(ctx, AttrJobType.String(jobType), AttrOutcome.String(outcome))
	bm.jobDuration.RecordDuration(ctx, d, AttrJobType.String(jobType))
}

// RecordLLMCall records one provider call and its token usage
func (bm *BusinessMetrics) RecordLLMCall(ctx context.Context, provider, feature, status string, d time.Duration, inputTokens, outputTokens int) {
	if bm == nil {
		return
	}
	bm.llmCalls.Inc(ctx, AttrProvider.String(provider), AttrFeature.String(feature), AttrStatus.String(status))
	bm.llmDuration.RecordDuration(ctx, d, AttrProvider.String(provider))
	if inputTokens > 0 {
		bm.llmTokens.Add(ctx, int64(inputTokens), AttrProvider.String(provider), AttrOutcome.String("input"))
	}
	if outputTokens > 0 {
		bm.llmTokens.Add(ctx, int64(outputTokens), AttrProvider.String(provider), AttrOutcome.String("output"))
	}
}

// RecordPredictions counts stored predictions per label
func (bm *BusinessMetrics) RecordPredictions(ctx context.Context, byLabel map[string]int) {
	if bm == nil {
		return
	}
	for label, n := range byLabel {
		bm.predictions.Add(ctx, int64(n), AttrLabel.String(label))
	}
}

// RecordPredictorError counts a failed prediction run
func (bm *BusinessMetrics) RecordPredictorError(ctx context.Context) {
	if bm == nil {
		return
	}
	bm.predictorErrors.Inc(ctx)
}

// RecordStockAlert counts a low or out of stock alert
func (bm *BusinessMetrics) RecordStockAlert(ctx context.Context, kind string, sent bool) {
	if bm == nil {
		return
	}
	outcome := "sent"
	if !sent {
		outcome = "suppressed"
	}
	bm.stockAlerts.Inc(ctx, AttrAlertKind.String(kind), AttrOutcome.String(outcome))
}
