package models

import (
	"github.com/google/uuid"
	"github.com/shopforge/backend/internal/domain/catalog"
	"github.com/shopspring/decimal"
)

// CategoryModel is the persistence model for the Category aggregate
type CategoryModel struct {
	StoreAggregateModel
	Name        string     `gorm:"type:varchar(100);not null"`
	Slug        string     `gorm:"type:varchar(100);not null"`
	Description string     `gorm:"type:text"`
	ParentID    *uuid.UUID `gorm:"type:uuid;index"`
}

func (CategoryModel) TableName() string {
	return "categories"
}

func (m *CategoryModel) ToDomain() *catalog.Category {
	return &catalog.Category{
		StoreAggregateRoot: m.ToStoreAggregateRoot(),
		Name:               m.Name,
		Slug:               m.Slug,
		Description:        m.Description,
		ParentID:           m.ParentID,
	}
}

func CategoryModelFromDomain(c *catalog.Category) *CategoryModel {
	m := &CategoryModel{
		Name:        c.Name,
		Slug:        c.Slug,
		Description: c.Description,
		ParentID:    c.ParentID,
	}
	m.FromDomainStoreAggregateRoot(c.StoreAggregateRoot)
	return m
}

// ProductModel is the persistence model for the Product aggregate.
// Image keys are kept as a JSON array.
type ProductModel struct {
	StoreAggregateModel
	Name          string                `gorm:"type:varchar(200);not null"`
	Slug          string                `gorm:"type:varchar(100);not null"`
	Description   string                `gorm:"type:text"`
	CategoryID    *uuid.UUID            `gorm:"type:uuid;index"`
	Status        catalog.ProductStatus `gorm:"type:varchar(20);not null;index"`
	ImageKeys     string                `gorm:"type:jsonb"`
	AverageRating decimal.Decimal       `gorm:"type:decimal(3,2);not null"`
	ReviewCount   int                   `gorm:"not null"`
}

func (ProductModel) TableName() string {
	return "products"
}

func (m *ProductModel) ToDomain() *catalog.Product {
	p := &catalog.Product{
		StoreAggregateRoot: m.ToStoreAggregateRoot(),
		Name:               m.Name,
		Slug:               m.Slug,
		Description:        m.Description,
		CategoryID:         m.CategoryID,
		Status:             m.Status,
		ImageKeys:          make([]string, 0),
		AverageRating:      m.AverageRating,
		ReviewCount:        m.ReviewCount,
	}
	unmarshalJSON(m.ImageKeys, &p.ImageKeys)
	return p
}

func ProductModelFromDomain(p *catalog.Product) *ProductModel {
	m := &ProductModel{
		Name:          p.Name,
		Slug:          p.Slug,
		Description:   p.Description,
		CategoryID:    p.CategoryID,
		Status:        p.Status,
		ImageKeys:     marshalJSON(p.ImageKeys, "[]"),
		AverageRating: p.AverageRating,
		ReviewCount:   p.ReviewCount,
	}
	m.FromDomainStoreAggregateRoot(p.StoreAggregateRoot)
	return m
}

// ProductVariantModel is the persistence model for a product variant
type ProductVariantModel struct {
	StoreAggregateModel
	ProductID      uuid.UUID        `gorm:"type:uuid;not null;index"`
	SKU            string           `gorm:"column:sku;type:varchar(64);not null"`
	Title          string           `gorm:"type:varchar(200);not null"`
	Price          decimal.Decimal  `gorm:"type:decimal(18,2);not null"`
	CompareAtPrice *decimal.Decimal `gorm:"type:decimal(18,2)"`
	Attributes     string           `gorm:"type:jsonb"`
	IsActive       bool             `gorm:"not null"`
}

func (ProductVariantModel) TableName() string {
	return "product_variants"
}

func (m *ProductVariantModel) ToDomain() *catalog.ProductVariant {
	v := &catalog.ProductVariant{
		StoreAggregateRoot: m.ToStoreAggregateRoot(),
		ProductID:          m.ProductID,
		SKU:                m.SKU,
		Title:              m.Title,
		Price:              m.Price,
		CompareAtPrice:     m.CompareAtPrice,
		Attributes:         map[string]string{},
		IsActive:           m.IsActive,
	}
	unmarshalJSON(m.Attributes, &v.Attributes)
	return v
}

func ProductVariantModelFromDomain(v *catalog.ProductVariant) *ProductVariantModel {
	m := &ProductVariantModel{
		ProductID:      v.ProductID,
		SKU:            v.SKU,
		Title:          v.Title,
		Price:          v.Price,
		CompareAtPrice: v.CompareAtPrice,
		Attributes:     marshalJSON(v.Attributes, "{}"),
		IsActive:       v.IsActive,
	}
	m.FromDomainStoreAggregateRoot(v.StoreAggregateRoot)
	return m
}
