package handler

import (
	"context"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
	reviewapp "github.com/shopforge/backend/internal/application/review"
	"github.com/shopforge/backend/internal/domain/shared"
	"github.com/shopforge/backend/internal/interfaces/http/middleware"
)

// ReviewService is the review API used by ReviewHandler
type ReviewService interface {
	Create(ctx context.Context, userID, productID uuid.UUID, req reviewapp.CreateReviewRequest) (*reviewapp.ReviewResponse, error)
	Update(ctx context.Context, userID, reviewID uuid.UUID, req reviewapp.UpdateReviewRequest) (*reviewapp.ReviewResponse, error)
	Delete(ctx context.Context, reviewID uuid.UUID, actor reviewapp.Actor) error
	ListForProduct(ctx context.Context, productID uuid.UUID, filter reviewapp.ReviewListFilter) (shared.Paginated[reviewapp.ReviewResponse], error)
	ListForStore(ctx context.Context, storeID uuid.UUID, filter reviewapp.ReviewListFilter) (shared.Paginated[reviewapp.ReviewResponse], error)
}

// ReviewHandler handles product review endpoints
type ReviewHandler struct {
	BaseHandler
	reviewService ReviewService
}

// NewReviewHandler creates a new ReviewHandler
func NewReviewHandler(reviewService ReviewService) *ReviewHandler {
	return &ReviewHandler{reviewService: reviewService}
}

// ListForProduct returns a product's reviews.
// GET /products/:productId/reviews
func (h *ReviewHandler) ListForProduct(c *gin.Context) {
	productID, ok := h.uuidParam(c, "productId", "product")
	if !ok {
		return
	}
	var filter reviewapp.ReviewListFilter
	if !h.bindQuery(c, &filter) {
		return
	}

	result, err := h.reviewService.ListForProduct(c.Request.Context(), productID, filter)
	if err != nil {
		h.HandleError(c, err)
		return
	}

	paginated(&h.BaseHandler, c, result)
}

// Create reviews a product. One review per user and product.
// POST /products/:productId/reviews
func (h *ReviewHandler) Create(c *gin.Context) {
	userID, ok := h.requireUser(c)
	if !ok {
		return
	}
	productID, ok := h.uuidParam(c, "productId", "product")
	if !ok {
		return
	}
	var req reviewapp.CreateReviewRequest
	if !h.bindJSON(c, &req) {
		return
	}

	review, err := h.reviewService.Create(c.Request.Context(), userID, productID, req)
	if err != nil {
		h.HandleError(c, err)
		return
	}

	h.Created(c, review)
}

// Update changes the caller's review.
// PUT /reviews/:reviewId
func (h *ReviewHandler) Update(c *gin.Context) {
	userID, ok := h.requireUser(c)
	if !ok {
		return
	}
	reviewID, ok := h.uuidParam(c, "reviewId", "review")
	if !ok {
		return
	}
	var req reviewapp.UpdateReviewRequest
	if !h.bindJSON(c, &req) {
		return
	}

	review, err := h.reviewService.Update(c.Request.Context(), userID, reviewID, req)
	if err != nil {
		h.HandleError(c, err)
		return
	}

	h.Success(c, review)
}

// Delete removes a review. Authors and store moderators may delete.
// DELETE /reviews/:reviewId
func (h *ReviewHandler) Delete(c *gin.Context) {
	userID, ok := h.requireUser(c)
	if !ok {
		return
	}
	reviewID, ok := h.uuidParam(c, "reviewId", "review")
	if !ok {
		return
	}

	actor := reviewapp.Actor{UserID: userID, IsSiteAdmin: middleware.IsSiteAdmin(c)}
	if err := h.reviewService.Delete(c.Request.Context(), reviewID, actor); err != nil {
		h.HandleError(c, err)
		return
	}

	h.NoContent(c)
}

// ListForStore returns every review of the store's products.
// GET /stores/:storeId/reviews
func (h *ReviewHandler) ListForStore(c *gin.Context) {
	storeID, ok := h.storeID(c)
	if !ok {
		return
	}
	var filter reviewapp.ReviewListFilter
	if !h.bindQuery(c, &filter) {
		return
	}

	result, err := h.reviewService.ListForStore(c.Request.Context(), storeID, filter)
	if err != nil {
		h.HandleError(c, err)
		return
	}

	paginated(&h.BaseHandler, c, result)
}
