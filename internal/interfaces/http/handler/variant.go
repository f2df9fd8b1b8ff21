package handler

import (
	"context"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
	catalogapp "github.com/shopforge/backend/internal/application/catalog"
)

// VariantService is the variant API used by VariantHandler
type VariantService interface {
	Create(ctx context.Context, storeID, productID uuid.UUID, req catalogapp.CreateVariantRequest) (*catalogapp.VariantResponse, error)
	List(ctx context.Context, storeID, productID uuid.UUID) ([]catalogapp.VariantResponse, error)
	Update(ctx context.Context, storeID, variantID uuid.UUID, req catalogapp.UpdateVariantRequest) (*catalogapp.VariantResponse, error)
	Delete(ctx context.Context, storeID, variantID uuid.UUID) error
}

// VariantHandler handles product variant endpoints
type VariantHandler struct {
	BaseHandler
	variantService VariantService
}

// NewVariantHandler creates a new VariantHandler
func NewVariantHandler(variantService VariantService) *VariantHandler {
	return &VariantHandler{variantService: variantService}
}

// Create adds a variant and its inventory record.
// POST /stores/:storeId/products/:productId/variants
func (h *VariantHandler) Create(c *gin.Context) {
	storeID, ok := h.storeID(c)
	if !ok {
		return
	}
	productID, ok := h.uuidParam(c, "productId", "product")
	if !ok {
		return
	}

	var req catalogapp.CreateVariantRequest
	if !h.bindJSON(c, &req) {
		return
	}

	variant, err := h.variantService.Create(c.Request.Context(), storeID, productID, req)
	if err != nil {
		h.HandleError(c, err)
		return
	}

	h.Created(c, variant)
}

// List returns a product's variants with available stock.
// GET /stores/:storeId/products/:productId/variants
func (h *VariantHandler) List(c *gin.Context) {
	storeID, ok := h.storeID(c)
	if !ok {
		return
	}
	productID, ok := h.uuidParam(c, "productId", "product")
	if !ok {
		return
	}

	variants, err := h.variantService.List(c.Request.Context(), storeID, productID)
	if err != nil {
		h.HandleError(c, err)
		return
	}

	h.Success(c, variants)
}

// Update changes a variant.
// PUT /stores/:storeId/variants/:variantId
func (h *VariantHandler) Update(c *gin.Context) {
	storeID, ok := h.storeID(c)
	if !ok {
		return
	}
	variantID, ok := h.uuidParam(c, "variantId", "variant")
	if !ok {
		return
	}

	var req catalogapp.UpdateVariantRequest
	if !h.bindJSON(c, &req) {
		return
	}

	variant, err := h.variantService.Update(c.Request.Context(), storeID, variantID, req)
	if err != nil {
		h.HandleError(c, err)
		return
	}

	h.Success(c, variant)
}

// Delete removes a variant.
// DELETE /stores/:storeId/variants/:variantId
func (h *VariantHandler) Delete(c *gin.Context) {
	storeID, ok := h.storeID(c)
	if !ok {
		return
	}
	variantID, ok := h.uuidParam(c, "variantId", "variant")
	if !ok {
		return
	}

	if err := h.variantService.Delete(c.Request.Context(), storeID, variantID); err != nil {
		h.HandleError(c, err)
		return
	}

	h.NoContent(c)
}
