package notification

import (
	"context"

	"github.com/google/uuid"
	storeapp "github.com/shopforge/backend/internal/application/store"
	"github.com/shopforge/backend/internal/domain/catalog"
	"github.com/shopforge/backend/internal/domain/order"
	"github.com/shopforge/backend/internal/domain/shared"
	"go.uber.org/zap"
)

// CounterRecomputer refreshes a store's cached aggregates
type CounterRecomputer interface {
	RecomputeCounters(ctx context.Context, storeID uuid.UUID) (*storeapp.StoreDTO, error)
}

// StoreCounterHandler recomputes store counters after catalog and order changes
type StoreCounterHandler struct {
	stores CounterRecomputer
	logger *zap.Logger
}

// NewStoreCounterHandler creates a new StoreCounterHandler
func NewStoreCounterHandler(stores CounterRecomputer, logger *zap.Logger) *StoreCounterHandler {
	return &StoreCounterHandler{stores: stores, logger: logger}
}

// EventTypes returns the event types this handler is interested in
func (h *StoreCounterHandler) EventTypes() []string {
	return []string{
		catalog.EventTypeProductCreated,
		catalog.EventTypeProductDeleted,
		order.EventTypeOrderPlaced,
		order.EventTypeOrderStatusChanged,
		order.EventTypeOrderCancelled,
	}
}

// Handle recomputes the counters of the event's store
func (h *StoreCounterHandler) Handle(ctx context.Context, event shared.DomainEvent) error {
	storeID := event.StoreID()
	if storeID == uuid.Nil {
		return nil
	}
	if _, err := h.stores.RecomputeCounters(ctx, storeID); err != nil {
		h.logger.Warn("Failed to recompute store counters",
			zap.String("store_id", storeID.String()),
			zap.String("event_type", event.EventType()),
			zap.Error(err))
		return err
	}
	return nil
}

var _ shared.EventHandler = (*StoreCounterHandler)(nil)
