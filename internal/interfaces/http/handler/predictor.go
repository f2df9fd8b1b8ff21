package handler

import (
	"context"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
	predictorapp "github.com/shopforge/backend/internal/application/predictor"
	"github.com/shopforge/backend/internal/infrastructure/logger"
	"go.uber.org/zap"
)

// PredictorService is the demand prediction API used by PredictorHandler
type PredictorService interface {
	PredictStore(ctx context.Context, storeID uuid.UUID) (*predictorapp.RunResponse, error)
	PredictProduct(ctx context.Context, storeID, productID uuid.UUID) (*predictorapp.PredictionResponse, error)
	ListPredictions(ctx context.Context, storeID uuid.UUID) ([]predictorapp.PredictionResponse, error)
	RefreshAll(ctx context.Context) error
}

// PredictorHandler handles demand prediction endpoints
type PredictorHandler struct {
	BaseHandler
	predictorService PredictorService
	refreshTimeout   time.Duration
}

// NewPredictorHandler creates a new PredictorHandler. refreshTimeout bounds
// the background run started by RefreshAll.
func NewPredictorHandler(predictorService PredictorService, refreshTimeout time.Duration) *PredictorHandler {
	if refreshTimeout <= 0 {
		refreshTimeout = 30 * time.Minute
	}
	return &PredictorHandler{predictorService: predictorService, refreshTimeout: refreshTimeout}
}

// PredictStore scores every published product of the store.
// POST /stores/:storeId/predictions/refresh
func (h *PredictorHandler) PredictStore(c *gin.Context) {
	storeID, ok := h.storeID(c)
	if !ok {
		return
	}

	result, err := h.predictorService.PredictStore(c.Request.Context(), storeID)
	if err != nil {
		h.HandleError(c, err)
		return
	}

	h.Success(c, result)
}

// PredictProduct scores one product.
// POST /stores/:storeId/products/:productId/predictions
func (h *PredictorHandler) PredictProduct(c *gin.Context) {
	storeID, ok := h.storeID(c)
	if !ok {
		return
	}
	productID, ok := h.uuidParam(c, "productId", "product")
	if !ok {
		return
	}

	prediction, err := h.predictorService.PredictProduct(c.Request.Context(), storeID, productID)
	if err != nil {
		h.HandleError(c, err)
		return
	}

	h.Success(c, prediction)
}

// ListPredictions returns the latest prediction of each product in the store.
// GET /stores/:storeId/predictions
func (h *PredictorHandler) ListPredictions(c *gin.Context) {
	storeID, ok := h.storeID(c)
	if !ok {
		return
	}

	predictions, err := h.predictorService.ListPredictions(c.Request.Context(), storeID)
	if err != nil {
		h.HandleError(c, err)
		return
	}
	if predictions == nil {
		predictions = []predictorapp.PredictionResponse{}
	}

	h.Success(c, predictions)
}

// RefreshAll starts a refresh of every active store and returns immediately.
// POST /admin/predictions/refresh
func (h *PredictorHandler) RefreshAll(c *gin.Context) {
	ctx, cancel := context.WithTimeout(context.WithoutCancel(c.Request.Context()), h.refreshTimeout)
	go func() {
		defer cancel()
		if err := h.predictorService.RefreshAll(ctx); err != nil {
			logger.L(ctx).Error("Prediction refresh failed", zap.Error(err))
		}
	}()

	h.Accepted(c, MessageResponse{Message: "Prediction refresh started"})
}
