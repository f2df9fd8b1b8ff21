package notification

import (
	"context"

	"github.com/shopforge/backend/internal/domain/catalog"
	"github.com/shopforge/backend/internal/domain/inventory"
	"github.com/shopforge/backend/internal/domain/shared"
	"github.com/shopforge/backend/internal/infrastructure/cache"
	"github.com/shopforge/backend/internal/infrastructure/mail"
	"go.uber.org/zap"
)

// AlertMetrics counts stock alerts
type AlertMetrics interface {
	RecordStockAlert(ctx context.Context, kind string, sent bool)
}

// StockAlertHandler emails store staff when a variant runs low or out of
// stock. At most one alert per (store, variant, kind) is sent per cooldown.
type StockAlertHandler struct {
	notifier    *Notifier
	cooldown    cache.Cooldown
	productRepo catalog.ProductRepository
	variantRepo catalog.VariantRepository
	metrics     AlertMetrics
	logger      *zap.Logger
}

// NewStockAlertHandler creates a new StockAlertHandler. metrics may be nil.
func NewStockAlertHandler(
	notifier *Notifier,
	cooldown cache.Cooldown,
	productRepo catalog.ProductRepository,
	variantRepo catalog.VariantRepository,
	metrics AlertMetrics,
	logger *zap.Logger,
) *StockAlertHandler {
	return &StockAlertHandler{
		notifier:    notifier,
		cooldown:    cooldown,
		productRepo: productRepo,
		variantRepo: variantRepo,
		metrics:     metrics,
		logger:      logger,
	}
}

// EventTypes returns the event types this handler is interested in
func (h *StockAlertHandler) EventTypes() []string {
	return []string{
		inventory.EventTypeInventoryLowStock,
		inventory.EventTypeInventoryOutOfStock,
	}
}

// Handle processes a StockAlertEvent
func (h *StockAlertHandler) Handle(ctx context.Context, event shared.DomainEvent) error {
	alert, ok := event.(*inventory.StockAlertEvent)
	if !ok {
		return unexpectedEvent(h.logger, inventory.EventTypeInventoryLowStock, event)
	}
	kind := event.EventType()
	storeID := event.StoreID()

	key := cache.CooldownKey("stock_alert", storeID.String(), alert.VariantID.String(), kind)
	allowed, err := h.cooldown.Allow(ctx, key)
	if err != nil {
		return err
	}
	if !allowed {
		h.logger.Debug("Stock alert suppressed by cooldown",
			zap.String("variant_id", alert.VariantID.String()),
			zap.String("kind", kind))
		h.record(ctx, kind, false)
		return nil
	}

	recipients, err := h.notifier.staffEmails(ctx, storeID)
	if err != nil {
		return err
	}
	if len(recipients) == 0 {
		h.logger.Warn("No staff to alert about stock", zap.String("store_id", storeID.String()))
		h.record(ctx, kind, false)
		return nil
	}

	data := mail.StockAlertEmail{
		StoreName:  h.notifier.storeName(ctx, storeID),
		Available:  alert.Available,
		Threshold:  alert.Threshold,
		OutOfStock: kind == inventory.EventTypeInventoryOutOfStock,
		Link:       h.notifier.link("/dashboard/stores/%s/inventory", storeID),
	}
	if p, err := h.productRepo.FindByID(ctx, alert.ProductID); err == nil {
		data.ProductName = p.Name
	}
	if v, err := h.variantRepo.FindByID(ctx, alert.VariantID); err == nil {
		data.VariantTitle = v.Title
		data.SKU = v.SKU
	}

	if err := h.notifier.deliver(ctx, mail.TemplateLowStockAlert, data, recipients...); err != nil {
		h.logger.Error("Failed to send stock alert",
			zap.String("variant_id", alert.VariantID.String()),
			zap.Error(err))
		h.record(ctx, kind, false)
		return err
	}
	h.record(ctx, kind, true)
	h.logger.Info("Stock alert sent",
		zap.String("store_id", storeID.String()),
		zap.String("variant_id", alert.VariantID.String()),
		zap.String("kind", kind),
		zap.Int("available", alert.Available),
		zap.Int("recipients", len(recipients)))
	return nil
}

func (h *StockAlertHandler) record(ctx context.Context, kind string, sent bool) {
	if h.metrics != nil {
		h.metrics.RecordStockAlert(ctx, kind, sent)
	}
}

var _ shared.EventHandler = (*StockAlertHandler)(nil)
