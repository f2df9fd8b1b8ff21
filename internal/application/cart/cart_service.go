package cart

import (
	"context"
	"errors"

	"github.com/google/uuid"
	analyticsapp "github.com/shopforge/backend/internal/application/analytics"
	"github.com/shopforge/backend/internal/domain/analytics"
	"github.com/shopforge/backend/internal/domain/cart"
	"github.com/shopforge/backend/internal/domain/catalog"
	"github.com/shopforge/backend/internal/domain/inventory"
	"github.com/shopforge/backend/internal/domain/shared"
	"go.uber.org/zap"
)

// CartService manages the single cart each user owns
type CartService struct {
	cartRepo      cart.Repository
	productRepo   catalog.ProductRepository
	variantRepo   catalog.VariantRepository
	inventoryRepo inventory.Repository
	recorder      analyticsapp.Recorder
	logger        *zap.Logger
}

// NewCartService creates a new CartService. recorder may be nil.
func NewCartService(
	cartRepo cart.Repository,
	productRepo catalog.ProductRepository,
	variantRepo catalog.VariantRepository,
	inventoryRepo inventory.Repository,
	recorder analyticsapp.Recorder,
	logger *zap.Logger,
) *CartService {
	return &CartService{
		cartRepo:      cartRepo,
		productRepo:   productRepo,
		variantRepo:   variantRepo,
		inventoryRepo: inventoryRepo,
		recorder:      recorder,
		logger:        logger,
	}
}

// GetCart returns the user's cart; users without one get an empty cart
func (s *CartService) GetCart(ctx context.Context, userID uuid.UUID) (*CartResponse, error) {
	c, err := s.load(ctx, userID)
	if err != nil {
		return nil, err
	}
	return s.toResponse(ctx, c)
}

// AddItem adds an active variant, merging with an existing line
func (s *CartService) AddItem(ctx context.Context, userID uuid.UUID, req AddItemRequest) (*CartResponse, error) {
	variant, err := s.variantRepo.FindByID(ctx, req.VariantID)
	if err != nil {
		return nil, err
	}
	if !variant.IsActive {
		return nil, shared.NewDomainError("VARIANT_UNAVAILABLE", "This variant is not available for sale")
	}
	product, err := s.productRepo.FindByID(ctx, variant.ProductID)
	if err != nil {
		return nil, err
	}
	if !product.IsActive() {
		return nil, shared.NewDomainError("VARIANT_UNAVAILABLE", "This product is not available for sale")
	}

	c, err := s.load(ctx, userID)
	if err != nil {
		return nil, err
	}
	if err := c.AddItem(variant.StoreID, product.ID, variant.ID, req.Quantity, variant.Price); err != nil {
		return nil, err
	}
	if err := s.cartRepo.Save(ctx, c); err != nil {
		return nil, err
	}

	if s.recorder != nil {
		productID, variantID := product.ID, variant.ID
		uid := userID
		if err := s.recorder.Record(ctx, analyticsapp.RecordInput{
			StoreID:   variant.StoreID,
			ProductID: &productID,
			VariantID: &variantID,
			UserID:    &uid,
			SessionID: req.SessionID,
			Type:      string(analytics.EventAddToCart),
			Quantity:  req.Quantity,
		}); err != nil {
			s.logger.Warn("Failed to record add_to_cart event", zap.Error(err))
		}
	}
	return s.toResponse(ctx, c)
}

// UpdateItem changes a line's quantity
func (s *CartService) UpdateItem(ctx context.Context, userID, itemID uuid.UUID, req UpdateItemRequest) (*CartResponse, error) {
	return s.mutate(ctx, userID, func(c *cart.Cart) error {
		return c.UpdateItem(itemID, req.Quantity)
	})
}

// RemoveItem drops a line
func (s *CartService) RemoveItem(ctx context.Context, userID, itemID uuid.UUID) (*CartResponse, error) {
	return s.mutate(ctx, userID, func(c *cart.Cart) error {
		return c.RemoveItem(itemID)
	})
}

// Clear empties the cart
func (s *CartService) Clear(ctx context.Context, userID uuid.UUID) error {
	_, err := s.mutate(ctx, userID, func(c *cart.Cart) error {
		c.Clear()
		return nil
	})
	return err
}

func (s *CartService) mutate(ctx context.Context, userID uuid.UUID, fn func(*cart.Cart) error) (*CartResponse, error) {
	c, err := s.load(ctx, userID)
	if err != nil {
		return nil, err
	}
	if err := fn(c); err != nil {
		return nil, err
	}
	if err := s.cartRepo.Save(ctx, c); err != nil {
		return nil, err
	}
	return s.toResponse(ctx, c)
}

func (s *CartService) load(ctx context.Context, userID uuid.UUID) (*cart.Cart, error) {
	c, err := s.cartRepo.FindByUser(ctx, userID)
	if errors.Is(err, shared.ErrNotFound) {
		return cart.NewCart(userID), nil
	}
	return c, err
}

func (s *CartService) toResponse(ctx context.Context, c *cart.Cart) (*CartResponse, error) {
	resp := &CartResponse{
		ID:    c.ID,
		Items: make([]CartItemResponse, 0, len(c.Items)),
		Total: c.Total(),
	}
	if c.IsEmpty() {
		return resp, nil
	}

	variantIDs := make([]uuid.UUID, 0, len(c.Items))
	productIDs := make([]uuid.UUID, 0, len(c.Items))
	for _, it := range c.Items {
		variantIDs = append(variantIDs, it.VariantID)
		productIDs = append(productIDs, it.ProductID)
	}
	variants, err := s.variantRepo.FindByIDs(ctx, variantIDs)
	if err != nil {
		return nil, err
	}
	products, err := s.productRepo.FindByIDs(ctx, productIDs)
	if err != nil {
		return nil, err
	}
	stock, err := s.inventoryRepo.FindByVariants(ctx, variantIDs)
	if err != nil {
		return nil, err
	}

	variantByID := make(map[uuid.UUID]*catalog.ProductVariant, len(variants))
	for _, v := range variants {
		variantByID[v.ID] = v
	}
	productByID := make(map[uuid.UUID]*catalog.Product, len(products))
	for _, p := range products {
		productByID[p.ID] = p
	}
	available := make(map[uuid.UUID]int, len(stock))
	for _, inv := range stock {
		available[inv.VariantID] = inv.Available()
	}

	for _, it := range c.Items {
		line := CartItemResponse{
			ID:        it.ID,
			StoreID:   it.StoreID,
			ProductID: it.ProductID,
			VariantID: it.VariantID,
			Quantity:  it.Quantity,
			UnitPrice: it.UnitPrice,
			LineTotal: it.LineTotal(),
		}
		v, vok := variantByID[it.VariantID]
		p, pok := productByID[it.ProductID]
		if vok {
			line.VariantTitle = v.Title
			line.SKU = v.SKU
		}
		if pok {
			line.ProductName = p.Name
		}
		line.Unavailable = !vok || !pok || !v.IsActive || !p.IsActive()
		if n, ok := available[it.VariantID]; ok {
			line.Available = &n
		}
		resp.Items = append(resp.Items, line)
		resp.ItemCount += it.Quantity
	}
	return resp, nil
}
