package handler

import (
	"context"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
	inventoryapp "github.com/shopforge/backend/internal/application/inventory"
	"github.com/shopforge/backend/internal/domain/shared"
)

// InventoryService is the stock API used by InventoryHandler
type InventoryService interface {
	GetByVariant(ctx context.Context, storeID, variantID uuid.UUID) (*inventoryapp.InventoryItemResponse, error)
	ListForStore(ctx context.Context, storeID uuid.UUID, filter inventoryapp.InventoryListFilter) (shared.Paginated[inventoryapp.InventoryItemResponse], error)
	SetQuantity(ctx context.Context, storeID, variantID uuid.UUID, req inventoryapp.SetQuantityRequest) (*inventoryapp.InventoryItemResponse, error)
	Adjust(ctx context.Context, storeID, variantID uuid.UUID, req inventoryapp.AdjustStockRequest) (*inventoryapp.InventoryItemResponse, error)
	SetThreshold(ctx context.Context, storeID, variantID uuid.UUID, req inventoryapp.SetThresholdRequest) (*inventoryapp.InventoryItemResponse, error)
}

// InventoryHandler handles inventory-related API endpoints
type InventoryHandler struct {
	BaseHandler
	inventoryService InventoryService
}

// NewInventoryHandler creates a new InventoryHandler
func NewInventoryHandler(inventoryService InventoryService) *InventoryHandler {
	return &InventoryHandler{inventoryService: inventoryService}
}

// List returns the store's stock records, optionally only low ones.
// GET /stores/:storeId/inventory
func (h *InventoryHandler) List(c *gin.Context) {
	storeID, ok := h.storeID(c)
	if !ok {
		return
	}
	var filter inventoryapp.InventoryListFilter
	if !h.bindQuery(c, &filter) {
		return
	}

	result, err := h.inventoryService.ListForStore(c.Request.Context(), storeID, filter)
	if err != nil {
		h.HandleError(c, err)
		return
	}

	paginated(&h.BaseHandler, c, result)
}

// Get returns the stock record of a variant.
// GET /stores/:storeId/inventory/:variantId
func (h *InventoryHandler) Get(c *gin.Context) {
	storeID, variantID, ok := h.variantTarget(c)
	if !ok {
		return
	}

	item, err := h.inventoryService.GetByVariant(c.Request.Context(), storeID, variantID)
	if err != nil {
		h.HandleError(c, err)
		return
	}

	h.Success(c, item)
}

// SetQuantity overwrites the on-hand count.
// PUT /stores/:storeId/inventory/:variantId
func (h *InventoryHandler) SetQuantity(c *gin.Context) {
	storeID, variantID, ok := h.variantTarget(c)
	if !ok {
		return
	}
	var req inventoryapp.SetQuantityRequest
	if !h.bindJSON(c, &req) {
		return
	}

	item, err := h.inventoryService.SetQuantity(c.Request.Context(), storeID, variantID, req)
	if err != nil {
		h.HandleError(c, err)
		return
	}

	h.Success(c, item)
}

// Adjust applies a signed delta to on-hand stock.
// POST /stores/:storeId/inventory/:variantId/adjust
func (h *InventoryHandler) Adjust(c *gin.Context) {
	storeID, variantID, ok := h.variantTarget(c)
	if !ok {
		return
	}
	var req inventoryapp.AdjustStockRequest
	if !h.bindJSON(c, &req) {
		return
	}

	item, err := h.inventoryService.Adjust(c.Request.Context(), storeID, variantID, req)
	if err != nil {
		h.HandleError(c, err)
		return
	}

	h.Success(c, item)
}

// SetThreshold changes the low-stock alert threshold.
// PUT /stores/:storeId/inventory/:variantId/threshold
func (h *InventoryHandler) SetThreshold(c *gin.Context) {
	storeID, variantID, ok := h.variantTarget(c)
	if !ok {
		return
	}
	var req inventoryapp.SetThresholdRequest
	if !h.bindJSON(c, &req) {
		return
	}

	item, err := h.inventoryService.SetThreshold(c.Request.Context(), storeID, variantID, req)
	if err != nil {
		h.HandleError(c, err)
		return
	}

	h.Success(c, item)
}

func (h *InventoryHandler) variantTarget(c *gin.Context) (uuid.UUID, uuid.UUID, bool) {
	storeID, ok := h.storeID(c)
	if !ok {
		return uuid.Nil, uuid.Nil, false
	}
	variantID, ok := h.uuidParam(c, "variantId", "variant")
	if !ok {
		return uuid.Nil, uuid.Nil, false
	}
	return storeID, variantID, true
}
