// Package reviews implements user feedback on products: one review per
// author and product, star ratings within fixed bounds, and a denormalized
// rating aggregate kept fresh on the product row in the same transaction as
// every mutation.
package reviews

import (
	"context"
	"errors"
	"fmt"
	"time"

	"shop/internal/forms"
	"shop/pkg/domain"
	"shop/pkg/metrics"
	"shop/pkg/serrors"
	"shop/pkg/storage"
)

// Review-level failure kinds.
var (
	// ErrDuplicateReview indicates the author already reviewed the product.
	ErrDuplicateReview = serrors.NewKind("DUPLICATE_REVIEW")
	// ErrInvalidRating indicates a rating outside the allowed bounds.
	ErrInvalidRating = serrors.NewKind("INVALID_RATING")
)

// reviews is the concrete implementation of the Reviews interface.
type reviews struct {
	storage storage.Storage
	metrics *metrics.Shop
}

// Submit creates a review for a product. A user may review a product once;
// a repeat submission is rejected before the insert, with the unique index
// as the backstop under concurrency. The product's denormalized rating
// aggregate is refreshed in the same transaction.
func (r reviews) Submit(ctx context.Context,
	userID domain.UserID,
	productID domain.ProductID,
	rating int,
	body string) (*domain.Review, error) {
	if err := validateReview(rating, body); err != nil {
		return nil, err
	}

	var review *domain.Review
	if err := r.storage.WithTx(ctx, func(tx storage.AllStorage) error {
		product, err := tx.ProductByID(ctx, productID)
		if err != nil {
			return fmt.Errorf("could not get product: %w", err)
		}
		if product == nil {
			return serrors.With(serrors.ErrNotFound, "product not found")
		}

		existing, err := tx.ReviewByProductAndUser(ctx, productID, userID)
		if err != nil {
			return fmt.Errorf("could not get review: %w", err)
		}
		if existing != nil {
			return serrors.With(ErrDuplicateReview, "product already reviewed by this user")
		}

		review, err = tx.CreateReview(ctx, domain.Review{
			ProductID: productID,
			UserID:    userID,
			Rating:    rating,
			Body:      body,
		})
		if err != nil {
			if errors.Is(err, storage.ErrDuplicate) {
				return serrors.Wrap(ErrDuplicateReview, err, "product already reviewed by this user")
			}

			return fmt.Errorf("could not create review: %w", err)
		}

		return refreshAggregate(ctx, tx, productID)
	}); err != nil {
		return nil, err
	}

	r.metrics.ReviewsSubmitted.Add(ctx, 1)

	return review, nil
}

// Edit updates a review's rating or text. Only the author may edit.
func (r reviews) Edit(ctx context.Context,
	actor *domain.User,
	id domain.ReviewID,
	rating int,
	body string) (*domain.Review, error) {
	if err := validateReview(rating, body); err != nil {
		return nil, err
	}

	var updated *domain.Review
	if err := r.storage.WithTx(ctx, func(tx storage.AllStorage) error {
		review, err := tx.ReviewByID(ctx, id)
		if err != nil {
			return fmt.Errorf("could not get review: %w", err)
		}
		if review == nil {
			return serrors.With(serrors.ErrNotFound, "review not found")
		}
		if review.UserID != actor.ID {
			return serrors.With(serrors.ErrForbidden, "only the author can edit a review")
		}

		updated, err = tx.UpdateReview(ctx, id, storage.ReviewUpdates{
			Rating: &rating,
			Body:   &body,
		})
		if err != nil {
			return fmt.Errorf("could not update review: %w", err)
		}
		if updated == nil {
			return serrors.With(serrors.ErrNotFound, "review not found")
		}

		return refreshAggregate(ctx, tx, review.ProductID)
	}); err != nil {
		return nil, err
	}

	return updated, nil
}

// Delete removes a review. The author or an admin may delete.
func (r reviews) Delete(ctx context.Context, actor *domain.User, id domain.ReviewID) error {
	return r.storage.WithTx(ctx, func(tx storage.AllStorage) error {
		review, err := tx.ReviewByID(ctx, id)
		if err != nil {
			return fmt.Errorf("could not get review: %w", err)
		}
		if review == nil {
			return serrors.With(serrors.ErrNotFound, "review not found")
		}
		if review.UserID != actor.ID && !actor.Admin {
			return serrors.With(serrors.ErrForbidden, "only the author or an admin can delete a review")
		}

		found, err := tx.DeleteReview(ctx, id)
		if err != nil {
			return fmt.Errorf("could not delete review: %w", err)
		}
		if !found {
			return serrors.With(serrors.ErrNotFound, "review not found")
		}

		return refreshAggregate(ctx, tx, review.ProductID)
	})
}

// defaultPageLimit is used when a caller does not set a page size.
const defaultPageLimit = 20

// ListByProduct returns a page of a product's reviews, newest first. It
// supports cursor-based pagination using an RFC3339 timestamp string and
// returns the next cursor when more results are available. A zero limit
// falls back to defaultPageLimit.
func (r reviews) ListByProduct(ctx context.Context,
	productID domain.ProductID,
	cursor string,
	limit uint) ([]domain.Review, string, error) {
	if limit == 0 {
		limit = defaultPageLimit
	}

	var cursorTime time.Time
	if cursor != "" {
		t, err := time.Parse(time.RFC3339Nano, cursor)
		if err != nil {
			return nil, "", serrors.Wrap(serrors.ErrInvalidInput, err, "invalid cursor")
		}
		cursorTime = t
	}

	page, err := r.storage.ProductReviews(ctx, productID, cursorTime, limit)
	if err != nil {
		return nil, "", fmt.Errorf("could not get product reviews: %w", err)
	}

	var next string
	if page.NextCursor != nil {
		next = page.NextCursor.Format(time.RFC3339Nano)
	}

	return page.Reviews, next, nil
}

func validateReview(rating int, body string) error {
	if rating < domain.RatingMin || rating > domain.RatingMax {
		return serrors.With(ErrInvalidRating,
			"rating must be between %d and %d", domain.RatingMin, domain.RatingMax)
	}

	return forms.ReviewForm{Rating: rating, Body: body}.Validate()
}

// refreshAggregate recomputes the product's denormalized rating columns from
// the review rows. Must run in the same transaction as the mutation it
// follows.
func refreshAggregate(ctx context.Context, tx storage.AllStorage, productID domain.ProductID) error {
	stats, err := tx.ReviewStats(ctx, productID)
	if err != nil {
		return fmt.Errorf("could not get review stats: %w", err)
	}

	count := int(stats.Count)
	if _, err := tx.UpdateProduct(ctx, productID, storage.ProductUpdates{
		RatingAvg:   &stats.Avg,
		RatingCount: &count,
	}); err != nil {
		return fmt.Errorf("could not update product rating: %w", err)
	}

	return nil
}

// New creates a new Reviews service backed by the provided storage.
func New(storage storage.Storage, shopMetrics *metrics.Shop) Reviews {
	return &reviews{storage: storage, metrics: shopMetrics}
}
