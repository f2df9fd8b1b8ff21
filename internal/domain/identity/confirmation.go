package identity

import (
	"crypto/rand"
	"crypto/sha256"
	"encoding/hex"
	"time"

	"github.com/google/uuid"
	"github.com/shopforge/backend/internal/domain/shared"
)

// Purpose distinguishes what a confirmation token unlocks
type Purpose string

const (
	PurposeEmailConfirmation Purpose = "email_confirmation"
	PurposePasswordReset     Purpose = "password_reset"
)

// TTL returns how long a token of this purpose stays valid
func (p Purpose) TTL() time.Duration {
	if p == PurposePasswordReset {
		return time.Hour
	}
	return 24 * time.Hour
}

// Confirmation is a single-use token sent by email
type Confirmation struct {
	shared.BaseEntity
	UserID    uuid.UUID
	Purpose   Purpose
	TokenHash string
	ExpiresAt time.Time
	UsedAt    *time.Time
}

// NewConfirmation issues a token for the user. The plaintext is returned
// once and only its SHA-256 hash is kept on the entity.
func NewConfirmation(userID uuid.UUID, purpose Purpose) (*Confirmation, string, error) {
	buf := make([]byte, 32)
	if _, err := rand.Read(buf); err != nil {
		return nil, "", err
	}
	plaintext := hex.EncodeToString(buf)
	c := &Confirmation{
		BaseEntity: shared.NewBaseEntity(),
		UserID:     userID,
		Purpose:    purpose,
		TokenHash:  HashToken(plaintext),
	}
	c.ExpiresAt = c.CreatedAt.Add(purpose.TTL())
	return c, plaintext, nil
}

// HashToken returns the hex SHA-256 digest used for token lookup
func HashToken(plaintext string) string {
	sum := sha256.Sum256([]byte(plaintext))
	return hex.EncodeToString(sum[:])
}

// Consume marks the token used. Expired or already used tokens are rejected.
func (c *Confirmation) Consume(now time.Time) error {
	if c.UsedAt != nil {
		return shared.NewDomainError("TOKEN_USED", "Token has already been used")
	}
	if now.After(c.ExpiresAt) {
		return shared.NewDomainError("TOKEN_EXPIRED", "Token has expired")
	}
	c.UsedAt = &now
	c.UpdatedAt = now
	return nil
}
