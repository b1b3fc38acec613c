package domain

import (
	"time"

	"github.com/google/uuid"
)

// ReviewID uniquely identifies a review.
type ReviewID uuid.UUID

// Rating bounds for reviews.
const (
	RatingMin = 1
	RatingMax = 5
)

// Review is user-authored feedback on a product. A user writes at most one
// review per product; the rating is always within [RatingMin, RatingMax].
type Review struct {
	// ID is the unique identifier of the review.
	ID ReviewID `json:"id"`
	// ProductID is the reviewed product.
	ProductID ProductID `json:"productId"`
	// UserID is the author.
	UserID UserID `json:"userId"`

	// Rating is the star rating, RatingMin..RatingMax inclusive.
	Rating int `json:"rating"`
	// Body is the optional review text.
	Body string `json:"body,omitempty"`

	CreatedAt time.Time `json:"createdAt"`
	UpdatedAt time.Time `json:"updatedAt"`
}
