package storage

import (
	"context"
	"shop/pkg/domain"
	"time"
)

// ReviewUpdates describes optional fields applied to a review. Only non-nil
// fields are updated.
type ReviewUpdates struct {
	Rating *int
	// Body replaces the review text; an empty string clears it.
	Body *string
}

// ReviewPage groups a page of reviews with an optional NextCursor used for
// pagination.
type ReviewPage struct {
	Reviews []domain.Review
	// NextCursor is nil when there is no next page.
	NextCursor *time.Time
}

// ReviewStats is the aggregate over a product's live reviews.
type ReviewStats struct {
	// Avg is the mean rating, 0 when Count is 0.
	Avg float64
	// Count is the number of live reviews.
	Count int64
}

// ReviewStorage defines operations for product reviews.
type ReviewStorage interface {
	// CreateReview inserts a review. A second review by the same author for
	// the same product returns *DuplicateError.
	CreateReview(ctx context.Context, review domain.Review) (*domain.Review, error)
	// ReviewByID fetches a review. Returns nil when not found.
	ReviewByID(ctx context.Context, id domain.ReviewID) (*domain.Review, error)
	// ReviewByProductAndUser fetches the author's review of a product.
	// Returns nil when none exists.
	ReviewByProductAndUser(ctx context.Context,
		productID domain.ProductID,
		userID domain.UserID) (*domain.Review, error)
	// UpdateReview applies the field set and returns the updated row, or nil
	// when the review does not exist.
	UpdateReview(ctx context.Context, id domain.ReviewID, updates ReviewUpdates) (*domain.Review, error)
	// DeleteReview removes a review. Returns false when it did not exist.
	DeleteReview(ctx context.Context, id domain.ReviewID) (bool, error)
	// ProductReviews returns a page of a product's reviews created before the
	// optional cursor time, newest first.
	ProductReviews(ctx context.Context,
		productID domain.ProductID,
		cursor time.Time,
		limit uint) (ReviewPage, error)
	// ReviewStats returns the rating aggregate over a product's reviews.
	ReviewStats(ctx context.Context, productID domain.ProductID) (ReviewStats, error)
}
