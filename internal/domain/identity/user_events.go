package identity

import (
	"github.com/google/uuid"
	"github.com/shopforge/backend/internal/domain/shared"
)

const (
	AggregateTypeUser         = "User"
	AggregateTypeConfirmation = "Confirmation"
)

const (
	EventTypeUserRegistered         = "UserRegistered"
	EventTypeUserPasswordChanged    = "UserPasswordChanged"
	EventTypeConfirmationRequested  = "ConfirmationRequested"
	EventTypePasswordResetRequested = "PasswordResetRequested"
)

// UserRegisteredEvent is published when an account is created
type UserRegisteredEvent struct {
	shared.BaseDomainEvent
	Email     string `json:"email"`
	FirstName string `json:"first_name"`
}

func NewUserRegisteredEvent(u *User) *UserRegisteredEvent {
	return &UserRegisteredEvent{
		BaseDomainEvent: shared.NewBaseDomainEvent(EventTypeUserRegistered, AggregateTypeUser, u.ID, uuid.Nil),
		Email:           u.Email,
		FirstName:       u.FirstName,
	}
}

// UserPasswordChangedEvent is published after any password change
type UserPasswordChangedEvent struct {
	shared.BaseDomainEvent
	Email string `json:"email"`
}

func NewUserPasswordChangedEvent(u *User) *UserPasswordChangedEvent {
	return &UserPasswordChangedEvent{
		BaseDomainEvent: shared.NewBaseDomainEvent(EventTypeUserPasswordChanged, AggregateTypeUser, u.ID, uuid.Nil),
		Email:           u.Email,
	}
}

// TokenIssuedEvent carries a freshly issued plaintext token to the mailer.
// The plaintext never reaches the database; only its hash is stored.
type TokenIssuedEvent struct {
	shared.BaseDomainEvent
	UserID    uuid.UUID `json:"user_id"`
	Email     string    `json:"email"`
	FirstName string    `json:"first_name"`
	Token     string    `json:"-"`
	Purpose   Purpose   `json:"purpose"`
}

func NewTokenIssuedEvent(c *Confirmation, u *User, plaintext string) *TokenIssuedEvent {
	eventType := EventTypeConfirmationRequested
	if c.Purpose == PurposePasswordReset {
		eventType = EventTypePasswordResetRequested
	}
	return &TokenIssuedEvent{
		BaseDomainEvent: shared.NewBaseDomainEvent(eventType, AggregateTypeConfirmation, c.ID, uuid.Nil),
		UserID:          u.ID,
		Email:           u.Email,
		FirstName:       u.FirstName,
		Token:           plaintext,
		Purpose:         c.Purpose,
	}
}
