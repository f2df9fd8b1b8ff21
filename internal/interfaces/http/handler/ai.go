package handler

import (
	"context"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
	aiapp "github.com/shopforge/backend/internal/application/ai"
	"github.com/shopforge/backend/internal/domain/shared"
)

// AIService is the text generation API used by AIHandler
type AIService interface {
	GenerateProductDescription(ctx context.Context, storeID, userID, productID uuid.UUID, req aiapp.GenerateDescriptionRequest) (*aiapp.GenerationResponse, error)
	SummarizeReviews(ctx context.Context, storeID, userID, productID uuid.UUID) (*aiapp.ReviewSummaryResponse, error)
	ListAiLogs(ctx context.Context, storeID *uuid.UUID, filter aiapp.LogListFilter) (shared.Paginated[aiapp.LogResponse], error)
}

// AIHandler handles generated content and AI call logs
type AIHandler struct {
	BaseHandler
	aiService AIService
}

// NewAIHandler creates a new AIHandler
func NewAIHandler(aiService AIService) *AIHandler {
	return &AIHandler{aiService: aiService}
}

// GenerateDescription drafts product copy, optionally saving it.
// POST /stores/:storeId/products/:productId/ai/description
func (h *AIHandler) GenerateDescription(c *gin.Context) {
	userID, storeID, productID, ok := h.productTarget(c)
	if !ok {
		return
	}
	var req aiapp.GenerateDescriptionRequest
	if c.Request.ContentLength != 0 && !h.bindJSON(c, &req) {
		return
	}

	result, err := h.aiService.GenerateProductDescription(c.Request.Context(), storeID, userID, productID, req)
	if err != nil {
		h.HandleError(c, err)
		return
	}

	h.Success(c, result)
}

// SummarizeReviews condenses a product's reviews.
// POST /stores/:storeId/products/:productId/ai/review-summary
func (h *AIHandler) SummarizeReviews(c *gin.Context) {
	userID, storeID, productID, ok := h.productTarget(c)
	if !ok {
		return
	}

	result, err := h.aiService.SummarizeReviews(c.Request.Context(), storeID, userID, productID)
	if err != nil {
		h.HandleError(c, err)
		return
	}

	h.Success(c, result)
}

// ListStoreLogs returns the store's AI call log.
// GET /stores/:storeId/ai/logs
func (h *AIHandler) ListStoreLogs(c *gin.Context) {
	storeID, ok := h.storeID(c)
	if !ok {
		return
	}
	h.listLogs(c, &storeID)
}

// ListAllLogs returns AI calls across all stores.
// GET /admin/ai/logs
func (h *AIHandler) ListAllLogs(c *gin.Context) {
	h.listLogs(c, nil)
}

func (h *AIHandler) listLogs(c *gin.Context, storeID *uuid.UUID) {
	var filter aiapp.LogListFilter
	if !h.bindQuery(c, &filter) {
		return
	}

	result, err := h.aiService.ListAiLogs(c.Request.Context(), storeID, filter)
	if err != nil {
		h.HandleError(c, err)
		return
	}

	paginated(&h.BaseHandler, c, result)
}

func (h *AIHandler) productTarget(c *gin.Context) (userID, storeID, productID uuid.UUID, ok bool) {
	if userID, ok = h.requireUser(c); !ok {
		return
	}
	if storeID, ok = h.storeID(c); !ok {
		return
	}
	productID, ok = h.uuidParam(c, "productId", "product")
	return
}
