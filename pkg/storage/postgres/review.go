package postgres

import (
	"context"
	"database/sql"
	"fmt"
	"shop/pkg/domain"
	"shop/pkg/storage"
	"time"

	"github.com/doug-martin/goqu/v9"
	"github.com/google/uuid"
)

const (
	reviewsTable = "reviews"
)

func (p *PgSQL) CreateReview(ctx context.Context, review domain.Review) (*domain.Review, error) {
	var row PgReview
	row.FromDomain(review)

	var result PgReview
	found, err := p.Builder.Insert(reviewsTable).
		Rows(row).
		Returning(&PgReview{}).
		Executor().ScanStructContext(ctx, &result)
	if err != nil {
		return nil, fmt.Errorf("could not store review into pg: %w", mapUniqueViolation(err, "review"))
	}
	if !found {
		return nil, fmt.Errorf("insert into %s returned no row", reviewsTable)
	}

	return result.ToDomain(), nil
}

func (p *PgSQL) ReviewByID(ctx context.Context, id domain.ReviewID) (*domain.Review, error) {
	return p.reviewBy(ctx, goqu.I("id").Eq(uuid.UUID(id)))
}

func (p *PgSQL) ReviewByProductAndUser(ctx context.Context,
	productID domain.ProductID,
	userID domain.UserID) (*domain.Review, error) {
	return p.reviewBy(ctx,
		goqu.And(
			goqu.I("product_id").Eq(uuid.UUID(productID)),
			goqu.I("user_id").Eq(uuid.UUID(userID)),
		))
}

func (p *PgSQL) reviewBy(ctx context.Context, cond goqu.Expression) (*domain.Review, error) {
	var row PgReview
	found, err := p.Builder.From(reviewsTable).
		Where(cond).
		Executor().ScanStructContext(ctx, &row)
	if err != nil {
		return nil, fmt.Errorf("could not fetch review: %w", err)
	}
	if !found {
		return nil, nil //nolint: nilnil
	}

	return row.ToDomain(), nil
}

func (p *PgSQL) UpdateReview(ctx context.Context,
	id domain.ReviewID,
	updates storage.ReviewUpdates) (*domain.Review, error) {
	rec := goqu.Record{
		"updated_at": goqu.L("CURRENT_TIMESTAMP"),
	}
	if updates.Rating != nil {
		rec["rating"] = *updates.Rating
	}
	if updates.Body != nil {
		rec["body"] = *updates.Body
	}

	var row PgReview
	found, err := p.Builder.Update(reviewsTable).
		Set(rec).Where(
		goqu.I("id").Eq(uuid.UUID(id)),
	).Returning(&PgReview{}).Executor().ScanStructContext(ctx, &row)
	if err != nil {
		return nil, fmt.Errorf("could not update review in pg: %w", err)
	}
	if !found {
		return nil, nil //nolint: nilnil
	}

	return row.ToDomain(), nil
}

func (p *PgSQL) DeleteReview(ctx context.Context, id domain.ReviewID) (bool, error) {
	res, err := p.Builder.Delete(reviewsTable).
		Where(goqu.I("id").Eq(uuid.UUID(id))).
		Executor().ExecContext(ctx)
	if err != nil {
		return false, fmt.Errorf("could not delete review in pg: %w", err)
	}

	rows, err := res.RowsAffected()
	if err != nil {
		return false, fmt.Errorf("could not get affected rows: %w", err)
	}

	return rows > 0, nil
}

// ProductReviews returns a page of reviews ordered by created_at DESC, id
// DESC, fetching one extra row to detect whether a next page exists.
func (p *PgSQL) ProductReviews(ctx context.Context,
	productID domain.ProductID,
	cursor time.Time,
	limit uint) (storage.ReviewPage, error) {
	w := []goqu.Expression{
		goqu.I("product_id").Eq(uuid.UUID(productID)),
	}
	if !cursor.IsZero() {
		w = append(w, goqu.I("created_at").Lt(cursor))
	}

	fetch := limit + 1
	var rows []PgReview
	if err := p.Builder.From(reviewsTable).
		Where(w...).
		Order(goqu.I("created_at").Desc(), goqu.I("id").Desc()).
		Limit(fetch).
		Executor().ScanStructsContext(ctx, &rows); err != nil {
		return storage.ReviewPage{}, fmt.Errorf("could not fetch product reviews from pg: %w", err)
	}

	var nextCursor *time.Time
	if uint(len(rows)) > limit {
		rows = rows[:limit]
		if len(rows) > 0 {
			nextCursor = &rows[len(rows)-1].CreatedAt
		}
	}

	return storage.ReviewPage{
		Reviews:    pgReviewsToDomain(rows),
		NextCursor: nextCursor,
	}, nil
}

// ReviewStats aggregates the product's ratings in one query. AVG over zero
// rows comes back NULL, which maps to a zero-valued aggregate.
func (p *PgSQL) ReviewStats(ctx context.Context, productID domain.ProductID) (storage.ReviewStats, error) {
	var row struct {
		Avg   sql.NullFloat64 `db:"avg"`
		Count int64           `db:"count"`
	}
	found, err := p.Builder.From(reviewsTable).
		Select(
			goqu.AVG("rating").As("avg"),
			goqu.COUNT("*").As("count"),
		).
		Where(goqu.I("product_id").Eq(uuid.UUID(productID))).
		Executor().ScanStructContext(ctx, &row)
	if err != nil {
		return storage.ReviewStats{}, fmt.Errorf("could not fetch review stats from pg: %w", err)
	}
	if !found {
		return storage.ReviewStats{}, nil
	}

	return storage.ReviewStats{
		Avg:   row.Avg.Float64,
		Count: row.Count,
	}, nil
}
