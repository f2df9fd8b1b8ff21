package review

import (
	"strings"

	"github.com/google/uuid"
	"github.com/shopforge/backend/internal/domain/shared"
)

const (
	MinRating = 1
	MaxRating = 5
)

// Review is a customer's rating of a product. One per (user, product).
type Review struct {
	shared.StoreAggregateRoot
	ProductID        uuid.UUID
	UserID           uuid.UUID
	Rating           int
	Title            string
	Body             string
	VerifiedPurchase bool
}

// NewReview creates a review
func NewReview(storeID, productID, userID uuid.UUID, rating int, title, body string, verified bool) (*Review, error) {
	if err := validate(rating, title, body); err != nil {
		return nil, err
	}
	r := &Review{
		StoreAggregateRoot: shared.NewStoreAggregateRoot(storeID),
		ProductID:          productID,
		UserID:             userID,
		Rating:             rating,
		Title:              strings.TrimSpace(title),
		Body:               strings.TrimSpace(body),
		VerifiedPurchase:   verified,
	}
	r.AddDomainEvent(NewReviewChangedEvent(EventTypeReviewCreated, r))
	return r, nil
}

// Edit changes rating and text
func (r *Review) Edit(rating int, title, body string) error {
	if err := validate(rating, title, body); err != nil {
		return err
	}
	r.Rating = rating
	r.Title = strings.TrimSpace(title)
	r.Body = strings.TrimSpace(body)
	r.Touch()
	r.IncrementVersion()
	r.AddDomainEvent(NewReviewChangedEvent(EventTypeReviewUpdated, r))
	return nil
}

// MarkDeleted records the deletion event
func (r *Review) MarkDeleted() {
	r.AddDomainEvent(NewReviewChangedEvent(EventTypeReviewDeleted, r))
}

// IsAuthor reports whether userID wrote the review
func (r *Review) IsAuthor(userID uuid.UUID) bool {
	return r.UserID == userID
}

func validate(rating int, title, body string) error {
	if rating < MinRating || rating > MaxRating {
		return shared.NewDomainError("INVALID_RATING", "Rating must be between 1 and 5")
	}
	if len(strings.TrimSpace(title)) > 200 {
		return shared.NewDomainError("INVALID_TITLE", "Title cannot exceed 200 characters")
	}
	if len(body) > 5000 {
		return shared.NewDomainError("INVALID_BODY", "Review cannot exceed 5000 characters")
	}
	return nil
}
