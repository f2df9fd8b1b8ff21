package order

import (
	"bytes"
	"context"
	"errors"
	"sort"

	"github.com/google/uuid"
	analyticsapp "github.com/shopforge/backend/internal/application/analytics"
	"github.com/shopforge/backend/internal/domain/analytics"
	"github.com/shopforge/backend/internal/domain/catalog"
	"github.com/shopforge/backend/internal/domain/inventory"
	"github.com/shopforge/backend/internal/domain/order"
	"github.com/shopforge/backend/internal/domain/shared"
	"github.com/shopforge/backend/internal/domain/store"
	"github.com/shopforge/backend/internal/infrastructure/telemetry"
	"github.com/shopspring/decimal"
	"go.uber.org/zap"
)

// RoleChecker answers whether a user holds at least a role in a store
type RoleChecker interface {
	CheckRole(ctx context.Context, storeID, userID uuid.UUID, min store.Role) (bool, error)
}

// Metrics receives order business metrics
type Metrics interface {
	RecordOrderPlaced(ctx context.Context, storeID uuid.UUID, total decimal.Decimal)
	RecordOrderCancelled(ctx context.Context, storeID uuid.UUID)
}

// OrderService handles checkout and the order lifecycle
type OrderService struct {
	orderRepo   order.Repository
	productRepo catalog.ProductRepository
	variantRepo catalog.VariantRepository
	txScope     order.TransactionScope
	roles       RoleChecker
	recorder    analyticsapp.Recorder
	metrics     Metrics
	publisher   shared.EventPublisher
	logger      *zap.Logger
	shippingFee decimal.Decimal
}

// NewOrderService creates a new OrderService
func NewOrderService(
	orderRepo order.Repository,
	productRepo catalog.ProductRepository,
	variantRepo catalog.VariantRepository,
	txScope order.TransactionScope,
	roles RoleChecker,
	publisher shared.EventPublisher,
	logger *zap.Logger,
) *OrderService {
	return &OrderService{
		orderRepo:   orderRepo,
		productRepo: productRepo,
		variantRepo: variantRepo,
		txScope:     txScope,
		roles:       roles,
		publisher:   publisher,
		logger:      logger,
		shippingFee: decimal.Zero,
	}
}

// WithRecorder reports checkout and purchase analytics events
func (s *OrderService) WithRecorder(r analyticsapp.Recorder) *OrderService {
	s.recorder = r
	return s
}

// WithMetrics reports placed and cancelled orders
func (s *OrderService) WithMetrics(m Metrics) *OrderService {
	s.metrics = m
	return s
}

// WithShippingFee sets the flat shipping cost charged per order
func (s *OrderService) WithShippingFee(fee decimal.Decimal) *OrderService {
	if !fee.IsNegative() {
		s.shippingFee = fee
	}
	return s
}

// Checkout converts the customer's cart into one pending order per store.
// Stock for every line is reserved in the same transaction; if any line is
// short the whole checkout is rolled back.
func (s *OrderService) Checkout(ctx context.Context, in CheckoutInput) ([]OrderResponse, error) {
	ctx, span := telemetry.StartServiceSpan(ctx, "order", "Checkout")
	defer span.End()

	var (
		placed   []*order.Order
		reserved []*inventory.Inventory
	)
	err := s.txScope.Execute(ctx, func(repos order.TransactionalRepositories) error {
		placed, reserved = nil, nil

		c, err := repos.CartRepo().FindByUser(ctx, in.CustomerID)
		if err != nil && !errors.Is(err, shared.ErrNotFound) {
			return err
		}
		if c == nil || c.IsEmpty() {
			return shared.NewDomainError("EMPTY_CART", "Cart is empty")
		}

		variantIDs := make([]uuid.UUID, 0, len(c.Items))
		productIDs := make([]uuid.UUID, 0, len(c.Items))
		for _, it := range c.Items {
			variantIDs = append(variantIDs, it.VariantID)
			productIDs = append(productIDs, it.ProductID)
		}
		variants, err := s.variantRepo.FindByIDs(ctx, variantIDs)
		if err != nil {
			return err
		}
		products, err := s.productRepo.FindByIDs(ctx, productIDs)
		if err != nil {
			return err
		}
		variantByID := make(map[uuid.UUID]*catalog.ProductVariant, len(variants))
		for _, v := range variants {
			variantByID[v.ID] = v
		}
		productByID := make(map[uuid.UUID]*catalog.Product, len(products))
		for _, p := range products {
			productByID[p.ID] = p
		}

		// Rows are locked in variant ID order so concurrent checkouts cannot deadlock
		lines := append(c.Items[:0:0], c.Items...)
		sort.Slice(lines, func(i, j int) bool {
			return bytes.Compare(lines[i].VariantID[:], lines[j].VariantID[:]) < 0
		})
		invRepo := repos.InventoryRepo()
		for _, it := range lines {
			v, ok := variantByID[it.VariantID]
			p, pok := productByID[it.ProductID]
			if !ok || !pok || !v.IsActive || !p.IsActive() {
				return shared.NewDomainError("VARIANT_UNAVAILABLE", "An item in the cart is no longer available")
			}
			inv, err := invRepo.FindByVariantForUpdate(ctx, it.VariantID)
			if errors.Is(err, shared.ErrNotFound) {
				return shared.NewDomainError("INSUFFICIENT_STOCK", "Not enough stock for "+v.SKU)
			}
			if err != nil {
				return err
			}
			if err := inv.Reserve(it.Quantity); err != nil {
				if errors.Is(err, shared.ErrInsufficientStock) {
					return shared.NewDomainError("INSUFFICIENT_STOCK", "Not enough stock for "+v.SKU)
				}
				return err
			}
			if err := invRepo.Save(ctx, inv); err != nil {
				return err
			}
			reserved = append(reserved, inv)
		}

		storeOrder, groups := c.GroupByStore()
		for _, storeID := range storeOrder {
			items := make([]order.Item, 0, len(groups[storeID]))
			for _, it := range groups[storeID] {
				v := variantByID[it.VariantID]
				items = append(items, order.Item{
					ProductID:   it.ProductID,
					VariantID:   it.VariantID,
					ProductName: productByID[it.ProductID].Name,
					VariantName: v.Title,
					SKU:         v.SKU,
					UnitPrice:   v.Price,
					Quantity:    it.Quantity,
				})
			}
			o, err := order.NewOrder(storeID, in.CustomerID, in.CustomerEmail, items, s.shippingFee,
				in.ShippingAddress.toDomain(), in.Note)
			if err != nil {
				return err
			}
			if err := repos.OrderRepo().Save(ctx, o); err != nil {
				return err
			}
			placed = append(placed, o)
		}

		c.Clear()
		return repos.CartRepo().Save(ctx, c)
	})
	if err != nil {
		telemetry.RecordError(span, err)
		return nil, err
	}

	out := make([]OrderResponse, len(placed))
	for i, o := range placed {
		out[i] = ToOrderResponse(o)
		s.publish(ctx, o)
		if s.metrics != nil {
			s.metrics.RecordOrderPlaced(ctx, o.StoreID, o.Total)
		}
		s.record(ctx, analyticsapp.RecordInput{
			StoreID:   o.StoreID,
			UserID:    &in.CustomerID,
			SessionID: in.SessionID,
			Type:      string(analytics.EventCheckout),
		})
		s.logger.Info("Order placed",
			zap.String("order_id", o.ID.String()),
			zap.String("order_number", o.OrderNumber),
			zap.String("store_id", o.StoreID.String()),
			zap.String("total", o.Total.String()),
		)
	}
	for _, inv := range reserved {
		s.publish(ctx, inv)
	}
	telemetry.SetAttributes(span, "order.count", len(placed))
	return out, nil
}

// GetOrder returns an order to its customer or to store moderators and up
func (s *OrderService) GetOrder(ctx context.Context, orderID uuid.UUID, actor Actor) (*OrderResponse, error) {
	o, err := s.orderRepo.FindByID(ctx, orderID)
	if err != nil {
		return nil, err
	}
	if o.CustomerID != actor.UserID {
		allowed, err := s.hasStoreRole(ctx, o.StoreID, actor, store.RoleModerator)
		if err != nil {
			return nil, err
		}
		if !allowed {
			// hide the order's existence from other customers
			return nil, shared.ErrNotFound
		}
	}
	response := ToOrderResponse(o)
	return &response, nil
}

// ListMyOrders lists the caller's orders across all stores
func (s *OrderService) ListMyOrders(ctx context.Context, customerID uuid.UUID, filter OrderListFilter) (shared.Paginated[OrderResponse], error) {
	f := toDomainFilter(filter)
	orders, total, err := s.orderRepo.FindByCustomer(ctx, customerID, f)
	if err != nil {
		return shared.Paginated[OrderResponse]{}, err
	}
	return paginate(orders, total, f), nil
}

// ListStoreOrders lists a store's orders
func (s *OrderService) ListStoreOrders(ctx context.Context, storeID uuid.UUID, filter OrderListFilter) (shared.Paginated[OrderResponse], error) {
	f := toDomainFilter(filter)
	orders, total, err := s.orderRepo.FindByStore(ctx, storeID, f)
	if err != nil {
		return shared.Paginated[OrderResponse]{}, err
	}
	return paginate(orders, total, f), nil
}

// UpdateStatus moves a store's order to a new status and applies the stock effects
func (s *OrderService) UpdateStatus(ctx context.Context, storeID, orderID uuid.UUID, req UpdateStatusRequest) (*OrderResponse, error) {
	if _, err := s.orderRepo.FindByIDForStore(ctx, storeID, orderID); err != nil {
		return nil, err
	}
	return s.transition(ctx, orderID, order.Status(req.Status))
}

// CancelOrder cancels an order. Customers may cancel their own pending
// orders; store admins may cancel anything the state machine allows.
func (s *OrderService) CancelOrder(ctx context.Context, orderID uuid.UUID, actor Actor) (*OrderResponse, error) {
	o, err := s.orderRepo.FindByID(ctx, orderID)
	if err != nil {
		return nil, err
	}
	isAdmin, err := s.hasStoreRole(ctx, o.StoreID, actor, store.RoleAdmin)
	if err != nil {
		return nil, err
	}
	if !isAdmin {
		if o.CustomerID != actor.UserID {
			return nil, shared.ErrNotFound
		}
		if o.Status != order.StatusPending {
			return nil, shared.NewDomainError("INVALID_STATE", "Only pending orders can be cancelled by the customer")
		}
	}
	return s.transition(ctx, orderID, order.StatusCancelled)
}

// transition applies a status change and its inventory effects atomically
func (s *OrderService) transition(ctx context.Context, orderID uuid.UUID, next order.Status) (*OrderResponse, error) {
	ctx, span := telemetry.StartServiceSpan(ctx, "order", "Transition", telemetry.WithAttribute("order.status", string(next)))
	defer span.End()

	var (
		updated *order.Order
		touched []*inventory.Inventory
		from    order.Status
	)
	err := s.txScope.Execute(ctx, func(repos order.TransactionalRepositories) error {
		touched = nil
		o, err := repos.OrderRepo().FindByIDForUpdate(ctx, orderID)
		if err != nil {
			return err
		}
		from = o.Status
		if err := o.TransitionTo(next); err != nil {
			return err
		}

		effect := stockEffect(from, next)
		if effect != nil {
			invRepo := repos.InventoryRepo()
			for _, it := range o.Items {
				inv, err := invRepo.FindByVariantForUpdate(ctx, it.VariantID)
				if errors.Is(err, shared.ErrNotFound) {
					s.logger.Warn("Inventory missing for order line",
						zap.String("order_id", o.ID.String()),
						zap.String("variant_id", it.VariantID.String()),
					)
					continue
				}
				if err != nil {
					return err
				}
				if err := effect(inv, it.Quantity); err != nil {
					return err
				}
				if err := invRepo.Save(ctx, inv); err != nil {
					return err
				}
				touched = append(touched, inv)
			}
		}

		if err := repos.OrderRepo().Save(ctx, o); err != nil {
			return err
		}
		updated = o
		return nil
	})
	if err != nil {
		telemetry.RecordError(span, err)
		return nil, err
	}

	s.publish(ctx, updated)
	for _, inv := range touched {
		s.publish(ctx, inv)
	}
	switch next {
	case order.StatusPaid:
		s.recordPurchases(ctx, updated)
	case order.StatusCancelled:
		if s.metrics != nil {
			s.metrics.RecordOrderCancelled(ctx, updated.StoreID)
		}
	}

	s.logger.Info("Order status changed",
		zap.String("order_id", updated.ID.String()),
		zap.String("from", string(from)),
		zap.String("to", string(next)),
	)
	response := ToOrderResponse(updated)
	return &response, nil
}

// stockEffect returns the inventory operation a transition implies, or nil
func stockEffect(from, to order.Status) func(*inventory.Inventory, int) error {
	switch {
	case to == order.StatusPaid:
		return (*inventory.Inventory).Commit
	case to == order.StatusCancelled && from == order.StatusPending:
		return (*inventory.Inventory).Release
	case to == order.StatusCancelled && from.IsCommitted():
		return (*inventory.Inventory).Restock
	}
	return nil
}

func (s *OrderService) recordPurchases(ctx context.Context, o *order.Order) {
	for _, it := range o.Items {
		productID, variantID := it.ProductID, it.VariantID
		s.record(ctx, analyticsapp.RecordInput{
			StoreID:   o.StoreID,
			ProductID: &productID,
			VariantID: &variantID,
			UserID:    &o.CustomerID,
			Type:      string(analytics.EventPurchase),
			Quantity:  it.Quantity,
			Revenue:   it.LineTotal,
		})
	}
}

func (s *OrderService) record(ctx context.Context, in analyticsapp.RecordInput) {
	if s.recorder == nil {
		return
	}
	if err := s.recorder.Record(ctx, in); err != nil {
		s.logger.Warn("Failed to record order analytics", zap.String("type", in.Type), zap.Error(err))
	}
}

func (s *OrderService) hasStoreRole(ctx context.Context, storeID uuid.UUID, actor Actor, min store.Role) (bool, error) {
	if actor.IsSiteAdmin {
		return true, nil
	}
	if s.roles == nil {
		return false, nil
	}
	return s.roles.CheckRole(ctx, storeID, actor.UserID, min)
}

func (s *OrderService) publish(ctx context.Context, agg shared.AggregateRoot) {
	if err := shared.PublishAndClear(ctx, s.publisher, agg); err != nil {
		s.logger.Warn("Failed to publish events", zap.Error(err))
	}
}

func toDomainFilter(filter OrderListFilter) order.Filter {
	f := order.Filter{Filter: shared.Filter{Page: filter.Page, PageSize: filter.PageSize}.Normalize()}
	if filter.Status != "" {
		status := order.Status(filter.Status)
		f.Status = &status
	}
	return f
}

func paginate(orders []*order.Order, total int64, f order.Filter) shared.Paginated[OrderResponse] {
	items := make([]OrderResponse, len(orders))
	for i, o := range orders {
		items[i] = ToOrderResponse(o)
	}
	return shared.NewPaginated(items, total, f.Page, f.PageSize)
}
