package catalog

import (
	"context"
	"errors"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/shopforge/backend/internal/domain/catalog"
	"github.com/shopforge/backend/internal/domain/shared"
	"go.uber.org/zap"
)

// ProductService handles product-related business operations
type ProductService struct {
	productRepo   catalog.ProductRepository
	categoryRepo  catalog.CategoryRepository
	variantRepo   catalog.VariantRepository
	images        ImageStorage
	publisher     shared.EventPublisher
	logger        *zap.Logger
	presignExpiry time.Duration
}

// NewProductService creates a new ProductService. images may be nil, in
// which case responses carry image keys without URLs.
func NewProductService(
	productRepo catalog.ProductRepository,
	categoryRepo catalog.CategoryRepository,
	variantRepo catalog.VariantRepository,
	images ImageStorage,
	publisher shared.EventPublisher,
	logger *zap.Logger,
) *ProductService {
	return &ProductService{
		productRepo:   productRepo,
		categoryRepo:  categoryRepo,
		variantRepo:   variantRepo,
		images:        images,
		publisher:     publisher,
		logger:        logger,
		presignExpiry: 15 * time.Minute,
	}
}

// WithPresignExpiry overrides how long generated image URLs stay valid
func (s *ProductService) WithPresignExpiry(d time.Duration) *ProductService {
	if d > 0 {
		s.presignExpiry = d
	}
	return s
}

// Create creates a draft product in a store
func (s *ProductService) Create(ctx context.Context, storeID uuid.UUID, req CreateProductRequest) (*ProductResponse, error) {
	slug := strings.TrimSpace(req.Slug)
	if slug == "" {
		slug = shared.Slugify(req.Name)
	}
	exists, err := s.productRepo.ExistsBySlug(ctx, storeID, slug)
	if err != nil {
		return nil, err
	}
	if exists {
		return nil, shared.NewDomainError("ALREADY_EXISTS", "Product with this slug already exists")
	}

	product, err := catalog.NewProduct(storeID, req.Name, slug, req.Description)
	if err != nil {
		return nil, err
	}
	if req.CategoryID != nil {
		if err := s.checkCategory(ctx, storeID, *req.CategoryID); err != nil {
			return nil, err
		}
		product.SetCategory(req.CategoryID)
	}

	if err := s.productRepo.Save(ctx, product); err != nil {
		return nil, err
	}
	s.publish(ctx, product)

	s.logger.Info("Product created",
		zap.String("store_id", storeID.String()),
		zap.String("product_id", product.ID.String()),
		zap.String("slug", product.Slug),
	)
	response := ToProductResponse(product)
	return &response, nil
}

// GetByID retrieves a product of a store together with its variants
func (s *ProductService) GetByID(ctx context.Context, storeID, productID uuid.UUID) (*ProductResponse, error) {
	product, err := s.productRepo.FindByIDForStore(ctx, storeID, productID)
	if err != nil {
		return nil, err
	}
	return s.detail(ctx, product, false)
}

// GetPublic retrieves an active product for the storefront. Drafts and
// archived products are reported as not found.
func (s *ProductService) GetPublic(ctx context.Context, productID uuid.UUID) (*ProductResponse, error) {
	product, err := s.productRepo.FindByID(ctx, productID)
	if err != nil {
		return nil, err
	}
	if !product.IsActive() {
		return nil, shared.ErrNotFound
	}
	return s.detail(ctx, product, true)
}

// ListForStore lists products of a store in any status
func (s *ProductService) ListForStore(ctx context.Context, storeID uuid.UUID, filter ProductListFilter) (shared.Paginated[ProductResponse], error) {
	f := toDomainFilter(filter)
	f.StoreID = &storeID
	if filter.Status != "" {
		status := catalog.ProductStatus(filter.Status)
		f.Status = &status
	}
	return s.list(ctx, f)
}

// ListProducts is the public listing: active products only, optionally
// narrowed to a store, a category or a search term.
func (s *ProductService) ListProducts(ctx context.Context, filter ProductListFilter) (shared.Paginated[ProductResponse], error) {
	f := toDomainFilter(filter)
	status := catalog.ProductStatusActive
	f.Status = &status
	return s.list(ctx, f)
}

// Update changes a product's name, description or category
func (s *ProductService) Update(ctx context.Context, storeID, productID uuid.UUID, req UpdateProductRequest) (*ProductResponse, error) {
	product, err := s.productRepo.FindByIDForStore(ctx, storeID, productID)
	if err != nil {
		return nil, err
	}

	if req.Name != nil {
		description := product.Description
		if req.Description != nil {
			description = *req.Description
		}
		if err := product.Update(*req.Name, description); err != nil {
			return nil, err
		}
	} else if req.Description != nil {
		product.SetDescription(*req.Description)
	}

	switch {
	case req.ClearCategory:
		product.SetCategory(nil)
	case req.CategoryID != nil:
		if err := s.checkCategory(ctx, storeID, *req.CategoryID); err != nil {
			return nil, err
		}
		product.SetCategory(req.CategoryID)
	}

	if err := s.productRepo.Save(ctx, product); err != nil {
		return nil, err
	}
	return s.detail(ctx, product, false)
}

// Publish makes a product visible in the storefront
func (s *ProductService) Publish(ctx context.Context, storeID, productID uuid.UUID) (*ProductResponse, error) {
	product, err := s.productRepo.FindByIDForStore(ctx, storeID, productID)
	if err != nil {
		return nil, err
	}
	active, err := s.variantRepo.CountActive(ctx, productID)
	if err != nil {
		return nil, err
	}
	if err := product.Publish(int(active)); err != nil {
		return nil, err
	}
	if err := s.productRepo.Save(ctx, product); err != nil {
		return nil, err
	}
	s.publish(ctx, product)
	return s.detail(ctx, product, false)
}

// Archive hides a product from the storefront
func (s *ProductService) Archive(ctx context.Context, storeID, productID uuid.UUID) (*ProductResponse, error) {
	product, err := s.productRepo.FindByIDForStore(ctx, storeID, productID)
	if err != nil {
		return nil, err
	}
	if err := product.Archive(); err != nil {
		return nil, err
	}
	if err := s.productRepo.Save(ctx, product); err != nil {
		return nil, err
	}
	s.publish(ctx, product)
	return s.detail(ctx, product, false)
}

// Delete removes a product with its variants and inventory. Stored images
// are cleaned up by the ProductDeleted handler.
func (s *ProductService) Delete(ctx context.Context, storeID, productID uuid.UUID) error {
	product, err := s.productRepo.FindByIDForStore(ctx, storeID, productID)
	if err != nil {
		return err
	}
	if err := s.productRepo.DeleteForStore(ctx, storeID, productID); err != nil {
		return err
	}
	product.MarkDeleted()
	s.publish(ctx, product)

	s.logger.Info("Product deleted",
		zap.String("store_id", storeID.String()),
		zap.String("product_id", productID.String()),
	)
	return nil
}

func (s *ProductService) list(ctx context.Context, f catalog.ProductFilter) (shared.Paginated[ProductResponse], error) {
	products, total, err := s.productRepo.FindAll(ctx, f)
	if err != nil {
		return shared.Paginated[ProductResponse]{}, err
	}

	ids := make([]uuid.UUID, len(products))
	for i, p := range products {
		ids[i] = p.ID
	}
	variants := map[uuid.UUID][]VariantResponse{}
	if len(ids) > 0 {
		found, err := s.variantRepo.FindByProducts(ctx, ids)
		if err != nil {
			return shared.Paginated[ProductResponse]{}, err
		}
		for _, v := range found {
			variants[v.ProductID] = append(variants[v.ProductID], ToVariantResponse(v))
		}
	}

	items := make([]ProductResponse, len(products))
	for i, p := range products {
		items[i] = ToProductResponse(p)
		items[i].Variants = variants[p.ID]
		items[i].Images = s.imageURLs(ctx, p.ImageKeys)
	}
	return shared.NewPaginated(items, total, f.Page, f.PageSize), nil
}

func (s *ProductService) detail(ctx context.Context, product *catalog.Product, activeOnly bool) (*ProductResponse, error) {
	variants, err := s.variantRepo.FindByProduct(ctx, product.ID)
	if err != nil {
		return nil, err
	}
	response := ToProductResponse(product)
	for _, v := range variants {
		if activeOnly && !v.IsActive {
			continue
		}
		response.Variants = append(response.Variants, ToVariantResponse(v))
	}
	response.Images = s.imageURLs(ctx, product.ImageKeys)
	return &response, nil
}

// imageURLs presigns every key. A failing key is logged and left out.
func (s *ProductService) imageURLs(ctx context.Context, keys []string) []ImageResponse {
	if s.images == nil || len(keys) == 0 {
		return nil
	}
	out := make([]ImageResponse, 0, len(keys))
	for _, key := range keys {
		url, expiresAt, err := s.images.GenerateDownloadURL(ctx, key, s.presignExpiry)
		if err != nil {
			s.logger.Warn("Failed to presign product image", zap.String("key", key), zap.Error(err))
			continue
		}
		out = append(out, ImageResponse{Key: key, URL: url, ExpiresAt: expiresAt})
	}
	return out
}

func (s *ProductService) checkCategory(ctx context.Context, storeID, categoryID uuid.UUID) error {
	if _, err := s.categoryRepo.FindByIDForStore(ctx, storeID, categoryID); err != nil {
		if errors.Is(err, shared.ErrNotFound) {
			return shared.NewDomainError("INVALID_CATEGORY", "Category not found in this store")
		}
		return err
	}
	return nil
}

func (s *ProductService) publish(ctx context.Context, product *catalog.Product) {
	if err := shared.PublishAndClear(ctx, s.publisher, product); err != nil {
		s.logger.Warn("Failed to publish product events", zap.Error(err))
	}
}

func toDomainFilter(filter ProductListFilter) catalog.ProductFilter {
	f := catalog.ProductFilter{
		Filter: shared.Filter{
			Page:     filter.Page,
			PageSize: filter.PageSize,
			OrderBy:  filter.OrderBy,
			OrderDir: filter.OrderDir,
			Search:   filter.Search,
		}.Normalize(),
		StoreID:    filter.StoreID,
		CategoryID: filter.CategoryID,
	}
	return f
}
