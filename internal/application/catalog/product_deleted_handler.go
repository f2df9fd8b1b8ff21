package catalog

import (
	"context"
	"fmt"

	"github.com/shopforge/backend/internal/domain/catalog"
	"github.com/shopforge/backend/internal/domain/shared"
	"go.uber.org/zap"
)

// ProductDeletedHandler removes the stored images of a deleted product
type ProductDeletedHandler struct {
	images ImageStorage
	logger *zap.Logger
}

// NewProductDeletedHandler creates a new handler for product deleted events
func NewProductDeletedHandler(images ImageStorage, logger *zap.Logger) *ProductDeletedHandler {
	return &ProductDeletedHandler{
		images: images,
		logger: logger,
	}
}

// EventTypes returns the event types this handler is interested in
func (h *ProductDeletedHandler) EventTypes() []string {
	return []string{catalog.EventTypeProductDeleted}
}

// Handle processes a ProductDeletedEvent. Objects that fail to delete are
// logged; the first error is returned after all keys were attempted.
func (h *ProductDeletedHandler) Handle(ctx context.Context, event shared.DomainEvent) error {
	deleted, ok := event.(*catalog.ProductDeletedEvent)
	if !ok {
		h.logger.Error("unexpected event type",
			zap.String("expected", catalog.EventTypeProductDeleted),
			zap.String("actual", event.EventType()),
		)
		return fmt.Errorf("unexpected event type: expected %s, got %s",
			catalog.EventTypeProductDeleted, event.EventType())
	}
	if h.images == nil || len(deleted.ImageKeys) == 0 {
		return nil
	}

	var firstErr error
	for _, key := range deleted.ImageKeys {
		if err := h.images.DeleteObject(ctx, key); err != nil {
			h.logger.Warn("failed to delete product image",
				zap.String("product_id", deleted.ProductID.String()),
				zap.String("key", key),
				zap.Error(err),
			)
			if firstErr == nil {
				firstErr = err
			}
		}
	}

	h.logger.Info("product images removed",
		zap.String("store_id", event.StoreID().String()),
		zap.String("product_id", deleted.ProductID.String()),
		zap.Int("count", len(deleted.ImageKeys)),
	)
	return firstErr
}

var _ shared.EventHandler = (*ProductDeletedHandler)(nil)
