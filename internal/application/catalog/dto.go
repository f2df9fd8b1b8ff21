package catalog

import (
	"time"

	"github.com/google/uuid"
	"github.com/shopforge/backend/internal/domain/catalog"
	"github.com/shopforge/backend/internal/infrastructure/csvimport"
	"github.com/shopspring/decimal"
)

// CreateCategoryRequest represents a request to create a category
type CreateCategoryRequest struct {
	Name        string     `json:"name" binding:"required,min=1,max=100"`
	Slug        string     `json:"slug" binding:"omitempty,slug"`
	Description string     `json:"description" binding:"max=1000"`
	ParentID    *uuid.UUID `json:"parent_id"`
}

// UpdateCategoryRequest represents a request to update a category
type UpdateCategoryRequest struct {
	Name        string     `json:"name" binding:"required,min=1,max=100"`
	Description string     `json:"description" binding:"max=1000"`
	ParentID    *uuid.UUID `json:"parent_id"`
}

// CategoryResponse represents a category in API responses
type CategoryResponse struct {
	ID          uuid.UUID  `json:"id"`
	StoreID     uuid.UUID  `json:"store_id"`
	Name        string     `json:"name"`
	Slug        string     `json:"slug"`
	Description string     `json:"description"`
	ParentID    *uuid.UUID `json:"parent_id,omitempty"`
	CreatedAt   time.Time  `json:"created_at"`
	UpdatedAt   time.Time  `json:"updated_at"`
}

// CreateProductRequest represents a request to create a new product
type CreateProductRequest struct {
	Name        string     `json:"name" binding:"required,min=1,max=200"`
	Slug        string     `json:"slug" binding:"omitempty,slug"`
	Description string     `json:"description" binding:"max=5000"`
	CategoryID  *uuid.UUID `json:"category_id"`
}

// UpdateProductRequest represents a request to update a product
type UpdateProductRequest struct {
	Name          *string    `json:"name" binding:"omitempty,min=1,max=200"`
	Description   *string    `json:"description" binding:"omitempty,max=5000"`
	CategoryID    *uuid.UUID `json:"category_id"`
	ClearCategory bool       `json:"clear_category"`
}

// ProductListFilter represents filter options for product listings
type ProductListFilter struct {
	Search     string     `form:"search"`
	StoreID    *uuid.UUID `form:"store_id"`
	CategoryID *uuid.UUID `form:"category_id"`
	Status     string     `form:"status" binding:"omitempty,oneof=draft active archived"`
	OrderBy    string     `form:"order_by" binding:"omitempty,oneof=name created_at updated_at average_rating"`
	OrderDir   string     `form:"order_dir" binding:"omitempty,oneof=asc desc"`
	Page       int        `form:"page" binding:"omitempty,min=1"`
	PageSize   int        `form:"page_size" binding:"omitempty,min=1,max=100"`
}

// ProductResponse represents a product in API responses
type ProductResponse struct {
	ID            uuid.UUID         `json:"id"`
	StoreID       uuid.UUID         `json:"store_id"`
	Name          string            `json:"name"`
	Slug          string            `json:"slug"`
	Description   string            `json:"description"`
	CategoryID    *uuid.UUID        `json:"category_id,omitempty"`
	Status        string            `json:"status"`
	ImageKeys     []string          `json:"image_keys"`
	Images        []ImageResponse   `json:"images,omitempty"`
	AverageRating decimal.Decimal   `json:"average_rating"`
	ReviewCount   int               `json:"review_count"`
	Variants      []VariantResponse `json:"variants,omitempty"`
	CreatedAt     time.Time         `json:"created_at"`
	UpdatedAt     time.Time         `json:"updated_at"`
}

// CreateVariantRequest represents a request to add a variant to a product
type CreateVariantRequest struct {
	SKU               string            `json:"sku" binding:"required,min=1,max=64"`
	Title             string            `json:"title" binding:"max=200"`
	Price             decimal.Decimal   `json:"price" binding:"required"`
	CompareAtPrice    *decimal.Decimal  `json:"compare_at_price"`
	Attributes        map[string]string `json:"attributes"`
	InitialQuantity   int               `json:"initial_quantity" binding:"min=0"`
	LowStockThreshold *int              `json:"low_stock_threshold" binding:"omitempty,min=0"`
}

// UpdateVariantRequest represents a request to update a variant
type UpdateVariantRequest struct {
	Title          *string           `json:"title" binding:"omitempty,min=1,max=200"`
	Price          *decimal.Decimal  `json:"price"`
	CompareAtPrice *decimal.Decimal  `json:"compare_at_price"`
	Attributes     map[string]string `json:"attributes"`
	IsActive       *bool             `json:"is_active"`
}

// VariantResponse represents a variant in API responses
type VariantResponse struct {
	ID             uuid.UUID         `json:"id"`
	ProductID      uuid.UUID         `json:"product_id"`
	SKU            string            `json:"sku"`
	Title          string            `json:"title"`
	Price          decimal.Decimal   `json:"price"`
	CompareAtPrice *decimal.Decimal  `json:"compare_at_price,omitempty"`
	Attributes     map[string]string `json:"attributes"`
	IsActive       bool              `json:"is_active"`
	Available      *int              `json:"available,omitempty"`
}

// ImageResponse describes an uploaded product image
type ImageResponse struct {
	Key       string    `json:"key"`
	URL       string    `json:"url"`
	ExpiresAt time.Time `json:"expires_at"`
}

// ToCategoryResponse converts a domain category
func ToCategoryResponse(c *catalog.Category) CategoryResponse {
	return CategoryResponse{
		ID:          c.ID,
		StoreID:     c.StoreID,
		Name:        c.Name,
		Slug:        c.Slug,
		Description: c.Description,
		ParentID:    c.ParentID,
		CreatedAt:   c.CreatedAt,
		UpdatedAt:   c.UpdatedAt,
	}
}

// ToProductResponse converts a domain product
func ToProductResponse(p *catalog.Product) ProductResponse {
	keys := p.ImageKeys
	if keys == nil {
		keys = []string{}
	}
	return ProductResponse{
		ID:            p.ID,
		StoreID:       p.StoreID,
		Name:          p.Name,
		Slug:          p.Slug,
		Description:   p.Description,
		CategoryID:    p.CategoryID,
		Status:        string(p.Status),
		ImageKeys:     keys,
		AverageRating: p.AverageRating,
		ReviewCount:   p.ReviewCount,
		CreatedAt:     p.CreatedAt,
		UpdatedAt:     p.UpdatedAt,
	}
}

// ToVariantResponse converts a domain variant
func ToVariantResponse(v *catalog.ProductVariant) VariantResponse {
	return VariantResponse{
		ID:             v.ID,
		ProductID:      v.ProductID,
		SKU:            v.SKU,
		Title:          v.Title,
		Price:          v.Price,
		CompareAtPrice: v.CompareAtPrice,
		Attributes:     v.Attributes,
		IsActive:       v.IsActive,
	}
}

// ImportResult summarises a CSV product import
type ImportResult struct {
	DryRun          bool                 `json:"dry_run"`
	TotalRows       int                  `json:"total_rows"`
	ValidRows       int                  `json:"valid_rows"`
	ErrorRows       int                  `json:"error_rows"`
	Products        int                  `json:"products"`
	ProductsCreated int                  `json:"products_created"`
	VariantsCreated int                  `json:"variants_created"`
	Published       int                  `json:"published"`
	Errors          []csvimport.RowError `json:"errors,omitempty"`
	TotalErrors     int                  `json:"total_errors"`
	Truncated       bool                 `json:"truncated,omitempty"`
}

func (r *ImportResult) finish(errs *csvimport.Errors) {
	r.Errors = errs.Items()
	r.TotalErrors = errs.Total()
	r.Truncated = errs.Truncated()
	r.ErrorRows = errs.Rows()
	r.ValidRows = r.TotalRows - r.ErrorRows
}
