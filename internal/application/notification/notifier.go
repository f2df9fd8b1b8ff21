// Package notification turns domain events into emails and keeps the
// cached store counters in step with catalog and order changes.
package notification

import (
	"context"
	"fmt"
	"strings"

	"github.com/google/uuid"
	"github.com/shopforge/backend/internal/domain/identity"
	"github.com/shopforge/backend/internal/domain/shared"
	"github.com/shopforge/backend/internal/domain/store"
	"github.com/shopforge/backend/internal/infrastructure/mail"
	"go.uber.org/zap"
)

// Renderer renders a named email template
type Renderer interface {
	Render(name string, data any, to ...string) (mail.Message, error)
}

// Notifier renders and sends mail and resolves store staff recipients
type Notifier struct {
	sender    mail.Sender
	renderer  Renderer
	users     identity.UserRepository
	stores    store.StoreRepository
	roles     store.StoreRoleRepository
	publicURL string
	logger    *zap.Logger
}

// NewNotifier creates a Notifier. publicURL prefixes links in emails.
func NewNotifier(
	sender mail.Sender,
	renderer Renderer,
	users identity.UserRepository,
	stores store.StoreRepository,
	roles store.StoreRoleRepository,
	publicURL string,
	logger *zap.Logger,
) *Notifier {
	return &Notifier{
		sender:    sender,
		renderer:  renderer,
		users:     users,
		stores:    stores,
		roles:     roles,
		publicURL: strings.TrimRight(publicURL, "/"),
		logger:    logger,
	}
}

func (n *Notifier) deliver(ctx context.Context, template string, data any, to ...string) error {
	msg, err := n.renderer.Render(template, data, to...)
	if err != nil {
		return err
	}
	if err := n.sender.Send(ctx, msg); err != nil {
		return fmt.Errorf("send %s: %w", template, err)
	}
	return nil
}

func (n *Notifier) link(format string, args ...any) string {
	return n.publicURL + fmt.Sprintf(format, args...)
}

// staffEmails returns the addresses of the store's owners and admins
func (n *Notifier) staffEmails(ctx context.Context, storeID uuid.UUID) ([]string, error) {
	ids, err := n.roles.FindUserIDsWithRole(ctx, storeID, store.RoleAdmin)
	if err != nil {
		return nil, err
	}
	if len(ids) == 0 {
		return nil, nil
	}
	users, err := n.users.FindByIDs(ctx, ids)
	if err != nil {
		return nil, err
	}
	emails := make([]string, 0, len(users))
	for _, u := range users {
		if u.IsActive() {
			emails = append(emails, u.Email)
		}
	}
	return emails, nil
}

func (n *Notifier) storeName(ctx context.Context, storeID uuid.UUID) string {
	s, err := n.stores.FindByID(ctx, storeID)
	if err != nil {
		n.logger.Warn("Store lookup for email failed", zap.String("store_id", storeID.String()), zap.Error(err))
		return "your store"
	}
	return s.Name
}

func unexpectedEvent(logger *zap.Logger, expected string, event shared.DomainEvent) error {
	logger.Error("unexpected event type",
		zap.String("expected", expected),
		zap.String("actual", event.EventType()),
	)
	return fmt.Errorf("unexpected event type: expected %s, got %s", expected, event.EventType())
}
