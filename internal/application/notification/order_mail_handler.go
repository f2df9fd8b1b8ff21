package notification

import (
	"context"
	"errors"

	"github.com/shopforge/backend/internal/domain/order"
	"github.com/shopforge/backend/internal/domain/shared"
	"github.com/shopforge/backend/internal/infrastructure/mail"
	"go.uber.org/zap"
)

// OrderMailHandler emails customers about their orders and alerts store staff
// about new ones
type OrderMailHandler struct {
	notifier *Notifier
	orders   order.Repository
	logger   *zap.Logger
}

// NewOrderMailHandler creates a new OrderMailHandler
func NewOrderMailHandler(notifier *Notifier, orders order.Repository, logger *zap.Logger) *OrderMailHandler {
	return &OrderMailHandler{notifier: notifier, orders: orders, logger: logger}
}

// EventTypes returns the event types this handler is interested in
func (h *OrderMailHandler) EventTypes() []string {
	return []string{
		order.EventTypeOrderPlaced,
		order.EventTypeOrderStatusChanged,
		order.EventTypeOrderCancelled,
	}
}

// Handle sends the mails for one order event
func (h *OrderMailHandler) Handle(ctx context.Context, event shared.DomainEvent) error {
	o, err := h.orders.FindByID(ctx, event.AggregateID())
	if err != nil {
		return err
	}
	data := h.orderEmail(ctx, o)

	switch event.EventType() {
	case order.EventTypeOrderPlaced:
		return errors.Join(
			h.send(ctx, o, mail.TemplateOrderPlaced, data, o.CustomerEmail),
			h.alertStaff(ctx, o, data),
		)
	case order.EventTypeOrderStatusChanged, order.EventTypeOrderCancelled:
		return h.send(ctx, o, mail.TemplateOrderStatusChanged, data, o.CustomerEmail)
	}
	return nil
}

func (h *OrderMailHandler) alertStaff(ctx context.Context, o *order.Order, data mail.OrderEmail) error {
	staff, err := h.notifier.staffEmails(ctx, o.StoreID)
	if err != nil {
		return err
	}
	if len(staff) == 0 {
		return nil
	}
	data.Link = h.notifier.link("/dashboard/stores/%s/orders/%s", o.StoreID, o.ID)
	return h.send(ctx, o, mail.TemplateNewOrder, data, staff...)
}

func (h *OrderMailHandler) send(ctx context.Context, o *order.Order, template string, data mail.OrderEmail, to ...string) error {
	if err := h.notifier.deliver(ctx, template, data, to...); err != nil {
		h.logger.Error("Failed to send order email",
			zap.String("order_id", o.ID.String()),
			zap.String("template", template),
			zap.Error(err))
		return err
	}
	return nil
}

func (h *OrderMailHandler) orderEmail(ctx context.Context, o *order.Order) mail.OrderEmail {
	lines := make([]mail.OrderLine, len(o.Items))
	for i, it := range o.Items {
		name := it.ProductName
		if it.VariantName != "" && it.VariantName != it.ProductName {
			name += " - " + it.VariantName
		}
		lines[i] = mail.OrderLine{
			Name:      name,
			SKU:       it.SKU,
			Quantity:  it.Quantity,
			UnitPrice: it.UnitPrice.StringFixed(2),
			LineTotal: it.LineTotal.StringFixed(2),
		}
	}
	return mail.OrderEmail{
		CustomerName: customerName(o),
		StoreName:    h.notifier.storeName(ctx, o.StoreID),
		OrderNumber:  o.OrderNumber,
		Status:       string(o.Status),
		Items:        lines,
		Subtotal:     o.Subtotal.StringFixed(2),
		Shipping:     o.ShippingCost.StringFixed(2),
		Total:        o.Total.StringFixed(2),
		Link:         h.notifier.link("/orders/%s", o.ID),
	}
}

func customerName(o *order.Order) string {
	if o.ShippingAddress.FullName != "" {
		return o.ShippingAddress.FullName
	}
	return o.CustomerEmail
}

var _ shared.EventHandler = (*OrderMailHandler)(nil)
