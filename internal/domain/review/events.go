package review

import (
	"github.com/google/uuid"
	"github.com/shopforge/backend/internal/domain/shared"
)

const AggregateTypeReview = "Review"

const (
	EventTypeReviewCreated = "ReviewCreated"
	EventTypeReviewUpdated = "ReviewUpdated"
	EventTypeReviewDeleted = "ReviewDeleted"
)

// ReviewChangedEvent is published on create, update and delete
type ReviewChangedEvent struct {
	shared.BaseDomainEvent
	ProductID uuid.UUID `json:"product_id"`
	UserID    uuid.UUID `json:"user_id"`
	Rating    int       `json:"rating"`
}

func NewReviewChangedEvent(eventType string, r *Review) *ReviewChangedEvent {
	return &ReviewChangedEvent{
		BaseDomainEvent: shared.NewBaseDomainEvent(eventType, AggregateTypeReview, r.ID, r.StoreID),
		ProductID:       r.ProductID,
		UserID:          r.UserID,
		Rating:          r.Rating,
	}
}
