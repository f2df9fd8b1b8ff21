package inventory

import (
	"context"

	"github.com/google/uuid"
	"github.com/shopforge/backend/internal/domain/inventory"
	"github.com/shopforge/backend/internal/domain/shared"
	"go.uber.org/zap"
)

// InventoryService handles stock level maintenance by store staff.
// Reservations made by orders go through the order service's transaction.
type InventoryService struct {
	inventoryRepo  inventory.Repository
	eventPublisher shared.EventPublisher
	logger         *zap.Logger
}

// NewInventoryService creates a new InventoryService
func NewInventoryService(inventoryRepo inventory.Repository, publisher shared.EventPublisher, logger *zap.Logger) *InventoryService {
	return &InventoryService{
		inventoryRepo:  inventoryRepo,
		eventPublisher: publisher,
		logger:         logger,
	}
}

// GetByVariant returns the stock record of a variant in a store
func (s *InventoryService) GetByVariant(ctx context.Context, storeID, variantID uuid.UUID) (*InventoryItemResponse, error) {
	item, err := s.find(ctx, storeID, variantID)
	if err != nil {
		return nil, err
	}
	response := ToInventoryItemResponse(item)
	return &response, nil
}

// ListForStore lists stock records, optionally only those at or below threshold
func (s *InventoryService) ListForStore(ctx context.Context, storeID uuid.UUID, filter InventoryListFilter) (shared.Paginated[InventoryItemResponse], error) {
	f := inventory.Filter{
		Filter:       shared.Filter{Page: filter.Page, PageSize: filter.PageSize}.Normalize(),
		ProductID:    filter.ProductID,
		LowStockOnly: filter.LowStockOnly,
	}
	items, total, err := s.inventoryRepo.FindAllForStore(ctx, storeID, f)
	if err != nil {
		return shared.Paginated[InventoryItemResponse]{}, err
	}
	out := make([]InventoryItemResponse, len(items))
	for i, item := range items {
		out[i] = ToInventoryItemResponse(item)
	}
	return shared.NewPaginated(out, total, f.Page, f.PageSize), nil
}

// SetQuantity overwrites the on-hand quantity
func (s *InventoryService) SetQuantity(ctx context.Context, storeID, variantID uuid.UUID, req SetQuantityRequest) (*InventoryItemResponse, error) {
	return s.mutate(ctx, storeID, variantID, func(item *inventory.Inventory) error {
		return item.SetQuantity(req.Quantity)
	})
}

// Adjust applies a signed delta; a positive delta counts as a restock
func (s *InventoryService) Adjust(ctx context.Context, storeID, variantID uuid.UUID, req AdjustStockRequest) (*InventoryItemResponse, error) {
	response, err := s.mutate(ctx, storeID, variantID, func(item *inventory.Inventory) error {
		return item.Adjust(req.Delta)
	})
	if err != nil {
		return nil, err
	}
	s.logger.Info("Stock adjusted",
		zap.String("store_id", storeID.String()),
		zap.String("variant_id", variantID.String()),
		zap.Int("delta", req.Delta),
		zap.String("reason", req.Reason),
	)
	return response, nil
}

// SetThreshold changes the low-stock alert threshold
func (s *InventoryService) SetThreshold(ctx context.Context, storeID, variantID uuid.UUID, req SetThresholdRequest) (*InventoryItemResponse, error) {
	return s.mutate(ctx, storeID, variantID, func(item *inventory.Inventory) error {
		return item.SetLowStockThreshold(req.Threshold)
	})
}

func (s *InventoryService) mutate(ctx context.Context, storeID, variantID uuid.UUID, fn func(*inventory.Inventory) error) (*InventoryItemResponse, error) {
	item, err := s.find(ctx, storeID, variantID)
	if err != nil {
		return nil, err
	}
	if err := fn(item); err != nil {
		return nil, err
	}
	if err := s.inventoryRepo.Save(ctx, item); err != nil {
		return nil, err
	}
	if err := shared.PublishAndClear(ctx, s.eventPublisher, item); err != nil {
		s.logger.Warn("Failed to publish inventory events", zap.Error(err))
	}
	response := ToInventoryItemResponse(item)
	return &response, nil
}

func (s *InventoryService) find(ctx context.Context, storeID, variantID uuid.UUID) (*inventory.Inventory, error) {
	item, err := s.inventoryRepo.FindByVariant(ctx, variantID)
	if err != nil {
		return nil, err
	}
	if !item.BelongsTo(storeID) {
		return nil, shared.ErrNotFound
	}
	return item, nil
}
