package handler

import (
	"context"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
	orderapp "github.com/shopforge/backend/internal/application/order"
	"github.com/shopforge/backend/internal/domain/shared"
	"github.com/shopforge/backend/internal/interfaces/http/middleware"
)

// OrderService is the order API used by OrderHandler
type OrderService interface {
	Checkout(ctx context.Context, in orderapp.CheckoutInput) ([]orderapp.OrderResponse, error)
	GetOrder(ctx context.Context, orderID uuid.UUID, actor orderapp.Actor) (*orderapp.OrderResponse, error)
	ListMyOrders(ctx context.Context, customerID uuid.UUID, filter orderapp.OrderListFilter) (shared.Paginated[orderapp.OrderResponse], error)
	ListStoreOrders(ctx context.Context, storeID uuid.UUID, filter orderapp.OrderListFilter) (shared.Paginated[orderapp.OrderResponse], error)
	UpdateStatus(ctx context.Context, storeID, orderID uuid.UUID, req orderapp.UpdateStatusRequest) (*orderapp.OrderResponse, error)
	CancelOrder(ctx context.Context, orderID uuid.UUID, actor orderapp.Actor) (*orderapp.OrderResponse, error)
}

// OrderHandler handles checkout and order endpoints
type OrderHandler struct {
	BaseHandler
	orderService OrderService
}

// NewOrderHandler creates a new OrderHandler
func NewOrderHandler(orderService OrderService) *OrderHandler {
	return &OrderHandler{orderService: orderService}
}

// Checkout turns the cart into one order per store.
// POST /orders/checkout
func (h *OrderHandler) Checkout(c *gin.Context) {
	claims := middleware.GetJWTClaims(c)
	if claims == nil {
		h.Unauthorized(c, "Authentication required")
		return
	}
	userID, err := claims.GetUserUUID()
	if err != nil {
		h.Unauthorized(c, "Authentication required")
		return
	}
	var req orderapp.CheckoutRequest
	if !h.bindJSON(c, &req) {
		return
	}

	orders, err := h.orderService.Checkout(c.Request.Context(), orderapp.CheckoutInput{
		CustomerID:      userID,
		CustomerEmail:   claims.Email,
		CheckoutRequest: req,
	})
	if err != nil {
		h.HandleError(c, err)
		return
	}

	h.Created(c, orders)
}

// ListMine returns the caller's orders across stores.
// GET /orders
func (h *OrderHandler) ListMine(c *gin.Context) {
	userID, ok := h.requireUser(c)
	if !ok {
		return
	}
	var filter orderapp.OrderListFilter
	if !h.bindQuery(c, &filter) {
		return
	}

	result, err := h.orderService.ListMyOrders(c.Request.Context(), userID, filter)
	if err != nil {
		h.HandleError(c, err)
		return
	}

	paginated(&h.BaseHandler, c, result)
}

// Get returns an order to its customer or to store staff.
// GET /orders/:orderId
func (h *OrderHandler) Get(c *gin.Context) {
	actor, ok := h.actor(c)
	if !ok {
		return
	}
	orderID, ok := h.uuidParam(c, "orderId", "order")
	if !ok {
		return
	}

	o, err := h.orderService.GetOrder(c.Request.Context(), orderID, actor)
	if err != nil {
		h.HandleError(c, err)
		return
	}

	h.Success(c, o)
}

// Cancel cancels an order. Customers may only cancel pending orders.
// POST /orders/:orderId/cancel
func (h *OrderHandler) Cancel(c *gin.Context) {
	actor, ok := h.actor(c)
	if !ok {
		return
	}
	orderID, ok := h.uuidParam(c, "orderId", "order")
	if !ok {
		return
	}

	o, err := h.orderService.CancelOrder(c.Request.Context(), orderID, actor)
	if err != nil {
		h.HandleError(c, err)
		return
	}

	h.Success(c, o)
}

// ListStore returns the store's orders.
// GET /stores/:storeId/orders
func (h *OrderHandler) ListStore(c *gin.Context) {
	storeID, ok := h.storeID(c)
	if !ok {
		return
	}
	var filter orderapp.OrderListFilter
	if !h.bindQuery(c, &filter) {
		return
	}

	result, err := h.orderService.ListStoreOrders(c.Request.Context(), storeID, filter)
	if err != nil {
		h.HandleError(c, err)
		return
	}

	paginated(&h.BaseHandler, c, result)
}

// UpdateStatus moves a store order through the status machine.
// PUT /stores/:storeId/orders/:orderId/status
func (h *OrderHandler) UpdateStatus(c *gin.Context) {
	storeID, ok := h.storeID(c)
	if !ok {
		return
	}
	orderID, ok := h.uuidParam(c, "orderId", "order")
	if !ok {
		return
	}
	var req orderapp.UpdateStatusRequest
	if !h.bindJSON(c, &req) {
		return
	}

	o, err := h.orderService.UpdateStatus(c.Request.Context(), storeID, orderID, req)
	if err != nil {
		h.HandleError(c, err)
		return
	}

	h.Success(c, o)
}

func (h *OrderHandler) actor(c *gin.Context) (orderapp.Actor, bool) {
	userID, ok := h.requireUser(c)
	if !ok {
		return orderapp.Actor{}, false
	}
	return orderapp.Actor{UserID: userID, IsSiteAdmin: middleware.IsSiteAdmin(c)}, true
}
