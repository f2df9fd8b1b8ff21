package handler

import (
	"context"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
	analyticsapp "github.com/shopforge/backend/internal/application/analytics"
	"github.com/shopforge/backend/internal/interfaces/http/middleware"
)

// AnalyticsService is the analytics API used by AnalyticsHandler
type AnalyticsService interface {
	RecordStorefront(ctx context.Context, in analyticsapp.RecordInput) error
	Dashboard(ctx context.Context, storeID uuid.UUID, days int) (*analyticsapp.DashboardResponse, error)
}

// DashboardQuery selects the dashboard window
type DashboardQuery struct {
	Days int `form:"days" binding:"omitempty,min=1,max=365"`
}

// AnalyticsHandler handles storefront events and store dashboards
type AnalyticsHandler struct {
	BaseHandler
	analyticsService AnalyticsService
}

// NewAnalyticsHandler creates a new AnalyticsHandler
func NewAnalyticsHandler(analyticsService AnalyticsService) *AnalyticsHandler {
	return &AnalyticsHandler{analyticsService: analyticsService}
}

// Record queues a store or product view. Anonymous callers are allowed.
// POST /analytics/events
func (h *AnalyticsHandler) Record(c *gin.Context) {
	var req analyticsapp.RecordEventRequest
	if !h.bindJSON(c, &req) {
		return
	}

	in := analyticsapp.RecordInput{
		StoreID:   req.StoreID,
		ProductID: req.ProductID,
		SessionID: req.SessionID,
		Type:      req.Type,
		Metadata:  req.Metadata,
	}
	if userID, ok := middleware.GetUserUUID(c); ok {
		in.UserID = &userID
	}

	if err := h.analyticsService.RecordStorefront(c.Request.Context(), in); err != nil {
		h.HandleError(c, err)
		return
	}

	h.Accepted(c, MessageResponse{Message: "Event accepted"})
}

// Dashboard returns the store's totals, daily series and top products.
// GET /stores/:storeId/analytics/dashboard
func (h *AnalyticsHandler) Dashboard(c *gin.Context) {
	storeID, ok := h.storeID(c)
	if !ok {
		return
	}
	var q DashboardQuery
	if !h.bindQuery(c, &q) {
		return
	}

	dashboard, err := h.analyticsService.Dashboard(c.Request.Context(), storeID, q.Days)
	if err != nil {
		h.HandleError(c, err)
		return
	}

	h.Success(c, dashboard)
}
