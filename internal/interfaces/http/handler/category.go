package handler

import (
	"context"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
	catalogapp "github.com/shopforge/backend/internal/application/catalog"
)

// CategoryService is the category API used by CategoryHandler
type CategoryService interface {
	Create(ctx context.Context, storeID uuid.UUID, req catalogapp.CreateCategoryRequest) (*catalogapp.CategoryResponse, error)
	GetByID(ctx context.Context, storeID, categoryID uuid.UUID) (*catalogapp.CategoryResponse, error)
	List(ctx context.Context, storeID uuid.UUID) ([]catalogapp.CategoryResponse, error)
	Update(ctx context.Context, storeID, categoryID uuid.UUID, req catalogapp.UpdateCategoryRequest) (*catalogapp.CategoryResponse, error)
	Delete(ctx context.Context, storeID, categoryID uuid.UUID) error
}

// CategoryHandler handles category-related API endpoints
type CategoryHandler struct {
	BaseHandler
	categoryService CategoryService
}

// NewCategoryHandler creates a new CategoryHandler
func NewCategoryHandler(categoryService CategoryService) *CategoryHandler {
	return &CategoryHandler{
		categoryService: categoryService,
	}
}

// Create adds a category to the store.
// POST /stores/:storeId/categories
func (h *CategoryHandler) Create(c *gin.Context) {
	storeID, ok := h.storeID(c)
	if !ok {
		return
	}

	var req catalogapp.CreateCategoryRequest
	if !h.bindJSON(c, &req) {
		return
	}

	category, err := h.categoryService.Create(c.Request.Context(), storeID, req)
	if err != nil {
		h.HandleDomainError(c, err)
		return
	}

	h.Created(c, category)
}

// GetByID returns one category.
// GET /stores/:storeId/categories/:categoryId
func (h *CategoryHandler) GetByID(c *gin.Context) {
	storeID, ok := h.storeID(c)
	if !ok {
		return
	}
	categoryID, ok := h.uuidParam(c, "categoryId", "category")
	if !ok {
		return
	}

	category, err := h.categoryService.GetByID(c.Request.Context(), storeID, categoryID)
	if err != nil {
		h.HandleDomainError(c, err)
		return
	}

	h.Success(c, category)
}

// List returns every category of the store.
// GET /stores/:storeId/categories
func (h *CategoryHandler) List(c *gin.Context) {
	storeID, ok := h.storeID(c)
	if !ok {
		return
	}

	categories, err := h.categoryService.List(c.Request.Context(), storeID)
	if err != nil {
		h.HandleDomainError(c, err)
		return
	}

	h.Success(c, categories)
}

// Update changes a category.
// PUT /stores/:storeId/categories/:categoryId
func (h *CategoryHandler) Update(c *gin.Context) {
	storeID, ok := h.storeID(c)
	if !ok {
		return
	}
	categoryID, ok := h.uuidParam(c, "categoryId", "category")
	if !ok {
		return
	}

	var req catalogapp.UpdateCategoryRequest
	if !h.bindJSON(c, &req) {
		return
	}

	category, err := h.categoryService.Update(c.Request.Context(), storeID, categoryID, req)
	if err != nil {
		h.HandleDomainError(c, err)
		return
	}

	h.Success(c, category)
}

// Delete removes a category without children or products.
// DELETE /stores/:storeId/categories/:categoryId
func (h *CategoryHandler) Delete(c *gin.Context) {
	storeID, ok := h.storeID(c)
	if !ok {
		return
	}
	categoryID, ok := h.uuidParam(c, "categoryId", "category")
	if !ok {
		return
	}

	if err := h.categoryService.Delete(c.Request.Context(), storeID, categoryID); err != nil {
		h.HandleDomainError(c, err)
		return
	}

	h.NoContent(c)
}
