package handler

import (
	"context"
	"io"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
	catalogapp "github.com/shopforge/backend/internal/application/catalog"
	"github.com/shopforge/backend/internal/domain/shared"
)

// ProductService is the product API used by ProductHandler
type ProductService interface {
	Create(ctx context.Context, storeID uuid.UUID, req catalogapp.CreateProductRequest) (*catalogapp.ProductResponse, error)
	GetByID(ctx context.Context, storeID, productID uuid.UUID) (*catalogapp.ProductResponse, error)
	GetPublic(ctx context.Context, productID uuid.UUID) (*catalogapp.ProductResponse, error)
	ListForStore(ctx context.Context, storeID uuid.UUID, filter catalogapp.ProductListFilter) (shared.Paginated[catalogapp.ProductResponse], error)
	ListProducts(ctx context.Context, filter catalogapp.ProductListFilter) (shared.Paginated[catalogapp.ProductResponse], error)
	Update(ctx context.Context, storeID, productID uuid.UUID, req catalogapp.UpdateProductRequest) (*catalogapp.ProductResponse, error)
	Publish(ctx context.Context, storeID, productID uuid.UUID) (*catalogapp.ProductResponse, error)
	Archive(ctx context.Context, storeID, productID uuid.UUID) (*catalogapp.ProductResponse, error)
	Delete(ctx context.Context, storeID, productID uuid.UUID) error
	UploadImage(ctx context.Context, in catalogapp.UploadImageInput) (*catalogapp.ImageResponse, error)
	RemoveImage(ctx context.Context, storeID, productID uuid.UUID, key string) error
}

// ImageFormField is the multipart field carrying a product image
const ImageFormField = "image"

// ProductHandler handles product-related API endpoints
type ProductHandler struct {
	BaseHandler
	productService ProductService
}

// NewProductHandler creates a new ProductHandler
func NewProductHandler(productService ProductService) *ProductHandler {
	return &ProductHandler{
		productService: productService,
	}
}

// RemoveImageRequest names the image to detach
type RemoveImageRequest struct {
	Key string `json:"key" binding:"required,max=300"`
}

// ListPublic is the storefront listing of active products.
// GET /products
func (h *ProductHandler) ListPublic(c *gin.Context) {
	var filter catalogapp.ProductListFilter
	if !h.bindQuery(c, &filter) {
		return
	}
	// the public listing is always active-only
	filter.Status = ""

	result, err := h.productService.ListProducts(c.Request.Context(), filter)
	if err != nil {
		h.HandleError(c, err)
		return
	}

	paginated(&h.BaseHandler, c, result)
}

// GetPublic returns an active product with its variants and images.
// GET /products/:productId
func (h *ProductHandler) GetPublic(c *gin.Context) {
	productID, ok := h.uuidParam(c, "productId", "product")
	if !ok {
		return
	}

	product, err := h.productService.GetPublic(c.Request.Context(), productID)
	if err != nil {
		h.HandleError(c, err)
		return
	}

	h.Success(c, product)
}

// Create adds a draft product to the store.
// POST /stores/:storeId/products
func (h *ProductHandler) Create(c *gin.Context) {
	storeID, ok := h.storeID(c)
	if !ok {
		return
	}

	var req catalogapp.CreateProductRequest
	if !h.bindJSON(c, &req) {
		return
	}

	product, err := h.productService.Create(c.Request.Context(), storeID, req)
	if err != nil {
		h.HandleError(c, err)
		return
	}

	h.Created(c, product)
}

// GetByID returns a store product in any status.
// GET /stores/:storeId/products/:productId
func (h *ProductHandler) GetByID(c *gin.Context) {
	storeID, ok := h.storeID(c)
	if !ok {
		return
	}
	productID, ok := h.uuidParam(c, "productId", "product")
	if !ok {
		return
	}

	product, err := h.productService.GetByID(c.Request.Context(), storeID, productID)
	if err != nil {
		h.HandleError(c, err)
		return
	}

	h.Success(c, product)
}

// List returns the store's products in any status.
// GET /stores/:storeId/products
func (h *ProductHandler) List(c *gin.Context) {
	storeID, ok := h.storeID(c)
	if !ok {
		return
	}

	var filter catalogapp.ProductListFilter
	if !h.bindQuery(c, &filter) {
		return
	}

	result, err := h.productService.ListForStore(c.Request.Context(), storeID, filter)
	if err != nil {
		h.HandleError(c, err)
		return
	}

	paginated(&h.BaseHandler, c, result)
}

// Update changes a product's details.
// PUT /stores/:storeId/products/:productId
func (h *ProductHandler) Update(c *gin.Context) {
	storeID, ok := h.storeID(c)
	if !ok {
		return
	}
	productID, ok := h.uuidParam(c, "productId", "product")
	if !ok {
		return
	}

	var req catalogapp.UpdateProductRequest
	if !h.bindJSON(c, &req) {
		return
	}

	product, err := h.productService.Update(c.Request.Context(), storeID, productID, req)
	if err != nil {
		h.HandleError(c, err)
		return
	}

	h.Success(c, product)
}

// Publish makes the product visible on the storefront.
// POST /stores/:storeId/products/:productId/publish
func (h *ProductHandler) Publish(c *gin.Context) {
	h.transition(c, h.productService.Publish)
}

// Archive hides the product from the storefront.
// POST /stores/:storeId/products/:productId/archive
func (h *ProductHandler) Archive(c *gin.Context) {
	h.transition(c, h.productService.Archive)
}

func (h *ProductHandler) transition(c *gin.Context, fn func(ctx context.Context, storeID, productID uuid.UUID) (*catalogapp.ProductResponse, error)) {
	storeID, ok := h.storeID(c)
	if !ok {
		return
	}
	productID, ok := h.uuidParam(c, "productId", "product")
	if !ok {
		return
	}

	product, err := fn(c.Request.Context(), storeID, productID)
	if err != nil {
		h.HandleError(c, err)
		return
	}

	h.Success(c, product)
}

// Delete removes a product.
// DELETE /stores/:storeId/products/:productId
func (h *ProductHandler) Delete(c *gin.Context) {
	storeID, ok := h.storeID(c)
	if !ok {
		return
	}
	productID, ok := h.uuidParam(c, "productId", "product")
	if !ok {
		return
	}

	if err := h.productService.Delete(c.Request.Context(), storeID, productID); err != nil {
		h.HandleError(c, err)
		return
	}

	h.NoContent(c)
}

// UploadImage stores a multipart image and attaches it to the product.
// POST /stores/:storeId/products/:productId/images
func (h *ProductHandler) UploadImage(c *gin.Context) {
	storeID, ok := h.storeID(c)
	if !ok {
		return
	}
	productID, ok := h.uuidParam(c, "productId", "product")
	if !ok {
		return
	}

	fileHeader, err := c.FormFile(ImageFormField)
	if err != nil {
		h.BadRequest(c, "Missing image file in form field \""+ImageFormField+"\"")
		return
	}
	if fileHeader.Size > catalogapp.MaxImageSize {
		h.BadRequest(c, "Image exceeds the 5MB limit")
		return
	}
	file, err := fileHeader.Open()
	if err != nil {
		h.BadRequest(c, "Unreadable image file")
		return
	}
	defer file.Close()

	data, err := io.ReadAll(io.LimitReader(file, catalogapp.MaxImageSize+1))
	if err != nil {
		h.BadRequest(c, "Unreadable image file")
		return
	}

	image, err := h.productService.UploadImage(c.Request.Context(), catalogapp.UploadImageInput{
		StoreID:     storeID,
		ProductID:   productID,
		Data:        data,
		ContentType: fileHeader.Header.Get("Content-Type"),
	})
	if err != nil {
		h.HandleError(c, err)
		return
	}

	h.Created(c, image)
}

// RemoveImage detaches an image and deletes the stored object.
// DELETE /stores/:storeId/products/:productId/images
func (h *ProductHandler) RemoveImage(c *gin.Context) {
	storeID, ok := h.storeID(c)
	if !ok {
		return
	}
	productID, ok := h.uuidParam(c, "productId", "product")
	if !ok {
		return
	}

	var req RemoveImageRequest
	if !h.bindJSON(c, &req) {
		return
	}

	if err := h.productService.RemoveImage(c.Request.Context(), storeID, productID, req.Key); err != nil {
		h.HandleError(c, err)
		return
	}

	h.NoContent(c)
}
