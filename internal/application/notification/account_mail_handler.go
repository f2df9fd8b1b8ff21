package notification

import (
	"context"
	"net/url"

	"github.com/shopforge/backend/internal/domain/identity"
	"github.com/shopforge/backend/internal/domain/shared"
	"github.com/shopforge/backend/internal/infrastructure/mail"
	"go.uber.org/zap"
)

// AccountMailHandler sends email confirmation and password reset links
type AccountMailHandler struct {
	notifier *Notifier
	logger   *zap.Logger
}

// NewAccountMailHandler creates a new AccountMailHandler
func NewAccountMailHandler(notifier *Notifier, logger *zap.Logger) *AccountMailHandler {
	return &AccountMailHandler{notifier: notifier, logger: logger}
}

// EventTypes returns the event types this handler is interested in.
// Registration issues a confirmation token, so UserRegistered arrives here
// as ConfirmationRequested.
func (h *AccountMailHandler) EventTypes() []string {
	return []string{
		identity.EventTypeConfirmationRequested,
		identity.EventTypePasswordResetRequested,
	}
}

// Handle renders and sends the token email
func (h *AccountMailHandler) Handle(ctx context.Context, event shared.DomainEvent) error {
	issued, ok := event.(*identity.TokenIssuedEvent)
	if !ok {
		return unexpectedEvent(h.logger, identity.EventTypeConfirmationRequested, event)
	}

	template, path := mail.TemplateEmailConfirmation, "/verify-email"
	if issued.Purpose == identity.PurposePasswordReset {
		template, path = mail.TemplatePasswordReset, "/reset-password"
	}
	data := mail.TokenEmail{
		Name:      issued.FirstName,
		Link:      h.notifier.link("%s?token=%s", path, url.QueryEscape(issued.Token)),
		ExpiresIn: issued.Purpose.TTL().String(),
	}
	if err := h.notifier.deliver(ctx, template, data, issued.Email); err != nil {
		h.logger.Error("Failed to send account email",
			zap.String("user_id", issued.UserID.String()),
			zap.String("purpose", string(issued.Purpose)),
			zap.Error(err))
		return err
	}
	return nil
}

var _ shared.EventHandler = (*AccountMailHandler)(nil)
