package models

import (
	"github.com/google/uuid"
	"github.com/shopforge/backend/internal/domain/review"
)

// ReviewModel is the persistence model for a product review.
// (user_id, product_id) is unique.
type ReviewModel struct {
	StoreAggregateModel
	ProductID        uuid.UUID `gorm:"type:uuid;not null;uniqueIndex:idx_reviews_user_product;index"`
	UserID           uuid.UUID `gorm:"type:uuid;not null;uniqueIndex:idx_reviews_user_product"`
	Rating           int       `gorm:"not null"`
	Title            string    `gorm:"type:varchar(200)"`
	Body             string    `gorm:"type:text"`
	VerifiedPurchase bool      `gorm:"not null"`
}

func (ReviewModel) TableName() string {
	return "reviews"
}

func (m *ReviewModel) ToDomain() *review.Review {
	return &review.Review{
		StoreAggregateRoot: m.ToStoreAggregateRoot(),
		ProductID:          m.ProductID,
		UserID:             m.UserID,
		Rating:             m.Rating,
		Title:              m.Title,
		Body:               m.Body,
		VerifiedPurchase:   m.VerifiedPurchase,
	}
}

func ReviewModelFromDomain(r *review.Review) *ReviewModel {
	m := &ReviewModel{
		ProductID:        r.ProductID,
		UserID:           r.UserID,
		Rating:           r.Rating,
		Title:            r.Title,
		Body:             r.Body,
		VerifiedPurchase: r.VerifiedPurchase,
	}
	m.FromDomainStoreAggregateRoot(r.StoreAggregateRoot)
	return m
}
