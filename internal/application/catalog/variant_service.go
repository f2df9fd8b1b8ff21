package catalog

import (
	"context"

	"github.com/google/uuid"
	"github.com/shopforge/backend/internal/domain/catalog"
	"github.com/shopforge/backend/internal/domain/inventory"
	"github.com/shopforge/backend/internal/domain/shared"
	"go.uber.org/zap"
)

// VariantService manages the sellable variants of a product
type VariantService struct {
	productRepo   catalog.ProductRepository
	variantRepo   catalog.VariantRepository
	inventoryRepo inventory.Repository
	logger        *zap.Logger
}

// NewVariantService creates a new VariantService
func NewVariantService(
	productRepo catalog.ProductRepository,
	variantRepo catalog.VariantRepository,
	inventoryRepo inventory.Repository,
	logger *zap.Logger,
) *VariantService {
	return &VariantService{
		productRepo:   productRepo,
		variantRepo:   variantRepo,
		inventoryRepo: inventoryRepo,
		logger:        logger,
	}
}

// Create adds a variant to a product and opens its inventory record
func (s *VariantService) Create(ctx context.Context, storeID, productID uuid.UUID, req CreateVariantRequest) (*VariantResponse, error) {
	product, err := s.productRepo.FindByIDForStore(ctx, storeID, productID)
	if err != nil {
		return nil, err
	}

	variant, err := catalog.NewProductVariant(product, req.SKU, req.Title, req.Price)
	if err != nil {
		return nil, err
	}
	exists, err := s.variantRepo.ExistsBySKU(ctx, storeID, variant.SKU)
	if err != nil {
		return nil, err
	}
	if exists {
		return nil, shared.NewDomainError("ALREADY_EXISTS", "Variant with this SKU already exists in the store")
	}
	if req.CompareAtPrice != nil {
		if err := variant.SetPrice(req.Price, req.CompareAtPrice); err != nil {
			return nil, err
		}
	}
	if len(req.Attributes) > 0 {
		variant.SetAttributes(req.Attributes)
	}

	inv := inventory.NewInventory(storeID, productID, variant.ID)
	if req.LowStockThreshold != nil {
		if err := inv.SetLowStockThreshold(*req.LowStockThreshold); err != nil {
			return nil, err
		}
	}
	if req.InitialQuantity > 0 {
		if err := inv.SetQuantity(req.InitialQuantity); err != nil {
			return nil, err
		}
	}
	// a fresh variant never alerts on its opening stock
	inv.ClearDomainEvents()

	if err := s.variantRepo.Save(ctx, variant); err != nil {
		return nil, err
	}
	if err := s.inventoryRepo.Save(ctx, inv); err != nil {
		return nil, err
	}

	s.logger.Info("Variant created",
		zap.String("store_id", storeID.String()),
		zap.String("product_id", productID.String()),
		zap.String("sku", variant.SKU),
	)
	response := ToVariantResponse(variant)
	available := inv.Available()
	response.Available = &available
	return &response, nil
}

// List returns a product's variants with their available stock
func (s *VariantService) List(ctx context.Context, storeID, productID uuid.UUID) ([]VariantResponse, error) {
	if _, err := s.productRepo.FindByIDForStore(ctx, storeID, productID); err != nil {
		return nil, err
	}
	variants, err := s.variantRepo.FindByProduct(ctx, productID)
	if err != nil {
		return nil, err
	}
	ids := make([]uuid.UUID, len(variants))
	for i, v := range variants {
		ids[i] = v.ID
	}
	stock := map[uuid.UUID]int{}
	if len(ids) > 0 {
		records, err := s.inventoryRepo.FindByVariants(ctx, ids)
		if err != nil {
			return nil, err
		}
		for _, r := range records {
			stock[r.VariantID] = r.Available()
		}
	}

	out := make([]VariantResponse, len(variants))
	for i, v := range variants {
		out[i] = ToVariantResponse(v)
		if available, ok := stock[v.ID]; ok {
			out[i].Available = &available
		}
	}
	return out, nil
}

// Update changes a variant's title, price, attributes or active flag
func (s *VariantService) Update(ctx context.Context, storeID, variantID uuid.UUID, req UpdateVariantRequest) (*VariantResponse, error) {
	variant, err := s.variantRepo.FindByIDForStore(ctx, storeID, variantID)
	if err != nil {
		return nil, err
	}
	if req.Title != nil {
		if err := variant.SetTitle(*req.Title); err != nil {
			return nil, err
		}
	}
	if req.Price != nil || req.CompareAtPrice != nil {
		price := variant.Price
		if req.Price != nil {
			price = *req.Price
		}
		compareAt := variant.CompareAtPrice
		if req.CompareAtPrice != nil {
			compareAt = req.CompareAtPrice
			if compareAt.IsZero() {
				compareAt = nil
			}
		}
		if err := variant.SetPrice(price, compareAt); err != nil {
			return nil, err
		}
	}
	if req.Attributes != nil {
		variant.SetAttributes(req.Attributes)
	}
	if req.IsActive != nil {
		variant.SetActive(*req.IsActive)
	}

	if err := s.variantRepo.Save(ctx, variant); err != nil {
		return nil, err
	}
	response := ToVariantResponse(variant)
	return &response, nil
}

// Delete removes a variant and its inventory. The last active variant of an
// active product cannot be removed.
func (s *VariantService) Delete(ctx context.Context, storeID, variantID uuid.UUID) error {
	variant, err := s.variantRepo.FindByIDForStore(ctx, storeID, variantID)
	if err != nil {
		return err
	}
	if variant.IsActive {
		product, err := s.productRepo.FindByIDForStore(ctx, storeID, variant.ProductID)
		if err != nil {
			return err
		}
		if product.IsActive() {
			active, err := s.variantRepo.CountActive(ctx, product.ID)
			if err != nil {
				return err
			}
			if active <= 1 {
				return shared.NewDomainError("NO_ACTIVE_VARIANT", "An active product needs at least one active variant")
			}
		}
	}
	return s.variantRepo.DeleteForStore(ctx, storeID, variantID)
}
