package domain

import (
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
)

// CategoryID uniquely identifies a catalog category.
type CategoryID uuid.UUID

// BrandID uniquely identifies a brand.
type BrandID uuid.UUID

// ProductID uniquely identifies a sellable product.
type ProductID uuid.UUID

// Category is a node in the catalog tree. ParentID is nil for root
// categories. Names are unique among siblings and the tree never contains
// cycles.
type Category struct {
	// ID is the unique identifier of the category.
	ID CategoryID `json:"id"`
	// Name is the display name, unique within the sibling set.
	Name string `json:"name"`
	// Description is optional free text.
	Description string `json:"description,omitempty"`
	// ParentID points at the parent category; nil for roots.
	ParentID *CategoryID `json:"parentId,omitempty"`

	CreatedAt time.Time `json:"createdAt"`
	UpdatedAt time.Time `json:"updatedAt"`
}

// Brand is flat reference data attached to products. Names are unique.
type Brand struct {
	// ID is the unique identifier of the brand.
	ID BrandID `json:"id"`
	// Name is the globally unique brand name.
	Name string `json:"name"`

	CreatedAt time.Time `json:"createdAt"`
	UpdatedAt time.Time `json:"updatedAt"`
}

// Product is a sellable catalog item. Price is always non-negative and Stock
// never goes below zero; the storage layer enforces both.
type Product struct {
	// ID is the unique identifier of the product.
	ID ProductID `json:"id"`

	// Name is the display name of the product.
	Name string `json:"name"`
	// Description is optional free text.
	Description string `json:"description,omitempty"`

	// Price is the current unit price. Orders snapshot it; carts do not.
	Price decimal.Decimal `json:"price"`
	// Stock is the number of units available for checkout.
	Stock int `json:"stock"`

	// CategoryID places the product in the catalog tree.
	CategoryID CategoryID `json:"categoryId"`
	// BrandID attaches the product to a brand.
	BrandID BrandID `json:"brandId"`

	// RatingAvg is the denormalized mean of live review ratings, 0 when the
	// product has no reviews. Maintained by the reviews service.
	RatingAvg float64 `json:"ratingAvg"`
	// RatingCount is the number of live reviews backing RatingAvg.
	RatingCount int `json:"ratingCount"`

	CreatedAt time.Time `json:"createdAt"`
	UpdatedAt time.Time `json:"updatedAt"`
	// DeletedAt marks when the product was soft-deleted; zero value means live.
	// Soft-deleted products stay referencable by historical order items.
	DeletedAt time.Time `json:"-"`
}
